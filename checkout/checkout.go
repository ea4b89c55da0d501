// Package checkout creates orders from the cart snapshot and routes each
// attempt to its payment flow: hosted checkout redirect or manual
// send-to-handle instructions, plus the reconciliation that runs once
// payment is confirmed.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/zeriouslyzen/cosmic-sub000/cart"
	"github.com/zeriouslyzen/cosmic-sub000/ledger"
	"github.com/zeriouslyzen/cosmic-sub000/models"
	"github.com/zeriouslyzen/cosmic-sub000/store"
)

var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrUnknownMethod = errors.New("invalid payment method")
)

// Result is the outcome of starting a checkout. Exactly one of RedirectURL
// or Instructions is set for pending flows; simulated/hosted-success flows
// carry the earned star dust instead.
type Result struct {
	OrderRef       string               `json:"order_ref"`
	PaymentStatus  models.PaymentStatus `json:"payment_status"`
	RedirectURL    string               `json:"redirect_url,omitempty"`
	Instructions   string               `json:"instructions,omitempty"`
	StardustEarned int                  `json:"stardust_earned,omitempty"`
	Simulated      bool                 `json:"simulated,omitempty"`
}

// Dispatcher owns one checkout attempt end to end.
type Dispatcher struct {
	store  store.Store
	carts  *cart.Manager
	stripe *StripeClient

	venmoHandle   string
	cashAppTag    string
	cryptoAddress string

	notifyOrder func(models.Order)
}

func NewDispatcher(s store.Store, carts *cart.Manager, stripe *StripeClient) *Dispatcher {
	return &Dispatcher{
		store:         s,
		carts:         carts,
		stripe:        stripe,
		venmoHandle:   os.Getenv("VENMO_HANDLE"),
		cashAppTag:    os.Getenv("CASHAPP_TAG"),
		cryptoAddress: os.Getenv("CRYPTO_ADDRESS"),
	}
}

// SetOrderNotifier registers a callback invoked after every order create or
// status change (the owner dashboard's live feed).
func (d *Dispatcher) SetOrderNotifier(fn func(models.Order)) {
	d.notifyOrder = fn
}

func generateOrderRef() string {
	return time.Now().Format("20060102150405") + "-" + uuid.NewString()
}

// Start requires a signed-in user with a non-empty cart, creates the pending
// order (deducting stock and debiting any earmarked star dust in the same
// transaction), then branches by payment method. Failures leave no partial
// state: the transaction rolls back and no order exists.
func (d *Dispatcher) Start(ctx context.Context, userID string, method models.PaymentMethod) (*Result, error) {
	sess, err := d.carts.Session(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := sess.Load(ctx); err != nil {
		return nil, err
	}
	snap := sess.Snapshot()
	if len(snap.Items) == 0 {
		return nil, ErrEmptyCart
	}

	order := &models.Order{
		OrderRef:      generateOrderRef(),
		UserID:        userID,
		Total:         snap.Total.Round(2),
		StardustUsed:  snap.StardustUsed,
		PaymentMethod: method,
		PaymentStatus: models.PaymentStatusPending,
		Status:        models.OrderStatusPending,
		CreatedAt:     time.Now(),
	}
	for _, item := range snap.Items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID:    item.ProductID,
			ProductTitle: item.Product.Title,
			UnitPrice:    item.Product.Price,
			Quantity:     item.Quantity,
		})
	}

	err = d.store.Atomic(ctx, func(tx store.Store) error {
		for _, item := range snap.Items {
			if err := tx.DeductStock(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		if snap.StardustUsed > 0 {
			reason := fmt.Sprintf("Stardust discount on order %s", order.OrderRef)
			if _, err := ledger.Debit(ctx, tx, userID, snap.StardustUsed, reason); err != nil {
				return err
			}
		}
		return tx.CreateOrder(ctx, order)
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	d.broadcast(*order)

	switch method {
	case models.PaymentMethodStripe:
		return d.startHosted(ctx, order)
	case models.PaymentMethodVenmo:
		return d.manualInstructions(order, "Venmo", d.venmoHandle), nil
	case models.PaymentMethodCashApp:
		return d.manualInstructions(order, "Cash App", d.cashAppTag), nil
	case models.PaymentMethodCrypto:
		return d.manualInstructions(order, "the wallet address", d.cryptoAddress), nil
	default:
		return nil, ErrUnknownMethod
	}
}

// startHosted redirects to the provider's hosted page, or simulates the
// whole payment when no credential is configured (development mode).
func (d *Dispatcher) startHosted(ctx context.Context, order *models.Order) (*Result, error) {
	if !d.stripe.Configured() {
		reconciled, earned, err := d.Reconcile(ctx, order.OrderRef)
		if err != nil {
			return nil, err
		}
		return &Result{
			OrderRef:       reconciled.OrderRef,
			PaymentStatus:  reconciled.PaymentStatus,
			StardustEarned: earned,
			Simulated:      true,
		}, nil
	}

	_, url, err := d.stripe.CreateSession(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return &Result{
		OrderRef:      order.OrderRef,
		PaymentStatus: models.PaymentStatusPending,
		RedirectURL:   url,
	}, nil
}

func (d *Dispatcher) manualInstructions(order *models.Order, label, handle string) *Result {
	return &Result{
		OrderRef:      order.OrderRef,
		PaymentStatus: models.PaymentStatusPending,
		Instructions: fmt.Sprintf(
			"Send $%s to %s via %s and include order %s in the note. Your order ships once payment is confirmed.",
			order.Total.StringFixed(2), handle, label, order.OrderRef,
		),
	}
}

// Reconcile marks the order paid/processing, credits the star dust earned
// from its stored total and clears the cart, all in one transaction. It is
// idempotent: a second delivery of the same confirmation is a no-op, so
// duplicate webhooks cannot double-credit.
func (d *Dispatcher) Reconcile(ctx context.Context, orderRef string) (*models.Order, int, error) {
	order, err := d.store.GetOrderByRef(ctx, orderRef)
	if err != nil {
		return nil, 0, err
	}
	if order.PaymentStatus == models.PaymentStatusPaid {
		return order, 0, nil
	}

	earned := ledger.EarnOnPurchase(order.Total)
	err = d.store.Atomic(ctx, func(tx store.Store) error {
		// Re-check under the transaction; two confirmations racing past the
		// fast path above must still credit only once.
		current, err := tx.GetOrderByRef(ctx, orderRef)
		if err != nil {
			return err
		}
		if current.PaymentStatus == models.PaymentStatusPaid {
			earned = 0
			return nil
		}
		if err := tx.UpdatePaymentStatus(ctx, orderRef, models.PaymentStatusPaid); err != nil {
			return err
		}
		if err := tx.UpdateOrderStatus(ctx, orderRef, models.OrderStatusProcessing); err != nil {
			return err
		}
		if earned > 0 {
			reason := fmt.Sprintf("Earned on order %s ($%s)", orderRef, order.Total.StringFixed(2))
			if _, err := ledger.Credit(ctx, tx, order.UserID, earned, reason); err != nil {
				return err
			}
		}
		return tx.ClearCart(ctx, order.UserID)
	})
	if err != nil {
		return nil, 0, fmt.Errorf("reconcile order %s: %w", orderRef, err)
	}

	order.PaymentStatus = models.PaymentStatusPaid
	order.Status = models.OrderStatusProcessing
	d.carts.Refresh(ctx, order.UserID)
	d.broadcast(*order)
	return order, earned, nil
}

func (d *Dispatcher) broadcast(order models.Order) {
	if d.notifyOrder != nil {
		d.notifyOrder(order)
	}
}
