// Package cart holds the per-user cart session: an in-memory snapshot of the
// user's cart and star dust balance, refreshed from the store after every
// mutation and on a polling interval, with change notification for
// subscribers.
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zeriouslyzen/cosmic-sub000/ledger"
	"github.com/zeriouslyzen/cosmic-sub000/models"
	"github.com/zeriouslyzen/cosmic-sub000/store"
)

var (
	ErrNotSignedIn   = errors.New("please sign in")
	ErrBadQuantity   = errors.New("quantity must be positive")
	ErrUnknownItem   = errors.New("cart item not found")
	ErrNoSuchProduct = errors.New("product does not exist")
)

// Snapshot is the computed view of a cart at one point in time. The
// stardust discount is session-scoped: it is not persisted and a checkout
// or clear resets it.
type Snapshot struct {
	Items           []models.CartItem `json:"items"`
	Subtotal        decimal.Decimal   `json:"subtotal"`
	StardustUsed    int               `json:"stardust_used"`
	Discount        decimal.Decimal   `json:"discount"`
	Total           decimal.Decimal   `json:"total"`
	StardustBalance int               `json:"stardust_balance"`
}

func emptySnapshot() Snapshot {
	return Snapshot{
		Subtotal: decimal.Zero,
		Discount: decimal.Zero,
		Total:    decimal.Zero,
	}
}

// Session tracks one user's cart. Mutations write through the store and
// then reload, so the snapshot is always an observed read, never an
// optimistic local update. Concurrent loads race benignly: the last one to
// finish wins the snapshot.
type Session struct {
	userID string
	store  store.Store

	mu           sync.Mutex
	snap         Snapshot
	stardustUsed int
	subs         map[chan Snapshot]struct{}
	closed       bool

	pollOnce sync.Once
	stopPoll chan struct{}
}

func NewSession(s store.Store, userID string) *Session {
	return &Session{
		userID:   userID,
		store:    s,
		snap:     emptySnapshot(),
		subs:     make(map[chan Snapshot]struct{}),
		stopPoll: make(chan struct{}),
	}
}

func (s *Session) UserID() string { return s.userID }

// Load refetches cart items and the star dust balance, recomputes totals and
// notifies subscribers. A stardust discount applied earlier in the session
// is kept, unless the balance no longer covers it.
func (s *Session) Load(ctx context.Context) error {
	items, err := s.store.ListCartItems(ctx, s.userID)
	if err != nil {
		return fmt.Errorf("load cart: %w", err)
	}

	balance := 0
	profile, err := s.store.GetProfile(ctx, s.userID)
	if err == nil {
		balance = profile.StardustBalance
	} else if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("load balance: %w", err)
	}

	s.mu.Lock()
	if s.stardustUsed > balance || len(items) == 0 {
		s.stardustUsed = 0
	}
	s.snap = s.compute(items, balance)
	snap := s.snap
	s.mu.Unlock()

	s.notify(snap)
	return nil
}

// compute derives totals from items and balance; callers hold the lock.
func (s *Session) compute(items []models.CartItem, balance int) Snapshot {
	subtotal := ledger.Subtotal(items)
	discount := ledger.StardustDiscount(s.stardustUsed, subtotal)
	return Snapshot{
		Items:           items,
		Subtotal:        subtotal,
		StardustUsed:    s.stardustUsed,
		Discount:        discount,
		Total:           subtotal.Sub(discount),
		StardustBalance: balance,
	}
}

// AddProduct puts quantity units of the product in the cart. A second add of
// the same product increments the existing row instead of duplicating it.
func (s *Session) AddProduct(ctx context.Context, productID uint, quantity int) error {
	if quantity <= 0 {
		return ErrBadQuantity
	}
	if _, err := s.store.GetProduct(ctx, productID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNoSuchProduct
		}
		return fmt.Errorf("check product: %w", err)
	}

	item, err := s.store.GetCartItem(ctx, s.userID, productID)
	switch {
	case err == nil:
		item.Quantity += quantity
		item.AddedAt = time.Now()
		if err := s.store.SaveCartItem(ctx, item); err != nil {
			return fmt.Errorf("update cart item: %w", err)
		}
	case errors.Is(err, store.ErrNotFound):
		newItem := &models.CartItem{
			UserID:    s.userID,
			ProductID: productID,
			Quantity:  quantity,
			AddedAt:   time.Now(),
		}
		if err := s.store.SaveCartItem(ctx, newItem); err != nil {
			return fmt.Errorf("add cart item: %w", err)
		}
	default:
		return fmt.Errorf("fetch cart item: %w", err)
	}

	return s.Load(ctx)
}

// SetQuantity updates a row's quantity. Zero or below removes the row.
func (s *Session) SetQuantity(ctx context.Context, itemID uint, quantity int) error {
	if quantity <= 0 {
		return s.Remove(ctx, itemID)
	}
	item, err := s.ownedItem(ctx, itemID)
	if err != nil {
		return err
	}
	item.Quantity = quantity
	if err := s.store.SaveCartItem(ctx, item); err != nil {
		return fmt.Errorf("update cart item: %w", err)
	}
	return s.Load(ctx)
}

// Remove deletes a row from the cart.
func (s *Session) Remove(ctx context.Context, itemID uint) error {
	if _, err := s.ownedItem(ctx, itemID); err != nil {
		return err
	}
	if err := s.store.DeleteCartItem(ctx, itemID); err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	return s.Load(ctx)
}

func (s *Session) ownedItem(ctx context.Context, itemID uint) (*models.CartItem, error) {
	item, err := s.store.GetCartItemByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnknownItem
		}
		return nil, fmt.Errorf("fetch cart item: %w", err)
	}
	if item.UserID != s.userID {
		return nil, ErrUnknownItem
	}
	return item, nil
}

// Clear deletes every row for the user and zeroes the in-memory totals
// without a reload round-trip.
func (s *Session) Clear(ctx context.Context) error {
	if err := s.store.ClearCart(ctx, s.userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	s.mu.Lock()
	balance := s.snap.StardustBalance
	s.stardustUsed = 0
	s.snap = emptySnapshot()
	s.snap.StardustBalance = balance
	snap := s.snap
	s.mu.Unlock()

	s.notify(snap)
	return nil
}

// ApplyStardustDiscount earmarks star dust against the current cart. The
// amount is validated against the live balance but not debited until
// checkout; it lives only in this session.
func (s *Session) ApplyStardustDiscount(amount int) error {
	if amount <= 0 {
		return ErrBadQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if amount > s.snap.StardustBalance {
		return ledger.ErrInsufficientStardust
	}
	s.stardustUsed = amount
	s.snap = s.compute(s.snap.Items, s.snap.StardustBalance)
	return nil
}

// Snapshot returns the current computed view.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Subscribe returns a channel receiving a snapshot after every load, and a
// release func the caller must invoke when done listening. Slow consumers
// miss intermediate snapshots rather than blocking the session. Subscribing
// to a closed session yields an already-closed channel.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	release := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
	}
	return ch, release
}

// notify sends under the lock so a concurrent Close cannot close a channel
// between the send decision and the send itself.
func (s *Session) notify(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for ch := range s.subs {
		select {
		case ch <- snap:
		default:
			// drop; subscriber still has an older snapshot pending
		}
	}
}

// StartPolling refreshes the session on a fixed interval until Close.
func (s *Session) StartPolling(interval time.Duration) {
	s.pollOnce.Do(func() {
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					ctx, cancel := context.WithTimeout(context.Background(), interval)
					_ = s.Load(ctx) // transient failures are retried on the next tick
					cancel()
				case <-s.stopPoll:
					return
				}
			}
		}()
	})
}

// Close stops polling and releases subscribers. Safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.stopPoll)
	for ch := range s.subs {
		close(ch)
	}
	s.subs = nil
}
