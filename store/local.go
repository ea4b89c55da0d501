package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/zeriouslyzen/cosmic-sub000/models"
)

// localStore is the development fallback used when no database credentials
// are configured. Each collection is serialized as a JSON file under the
// data directory, mirroring the browser localStorage blobs the hosted
// backend replaces. A single mutex guards every operation, so Atomic simply
// holds the lock across the callback and restores a snapshot on failure.
type localStore struct {
	mu sync.Mutex
	tx localTx
}

type localData struct {
	Profiles  []models.Profile
	Products  []models.Product
	CartItems []models.CartItem
	Orders    []models.Order
	Stardust  []models.StardustTransaction
}

type localTx struct {
	dir  string
	data localData
	next map[string]uint
}

var localFiles = map[string]string{
	"profiles":              "profiles.json",
	"products":              "products.json",
	"cart_items":            "cart_items.json",
	"orders":                "orders.json",
	"stardust_transactions": "stardust_transactions.json",
}

// OpenLocal loads (or creates) the JSON collections under dir.
func OpenLocal(dir string) (Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	s := &localStore{tx: localTx{dir: dir, next: make(map[string]uint)}}
	t := &s.tx
	if err := loadJSON(dir, localFiles["profiles"], &t.data.Profiles); err != nil {
		return nil, err
	}
	if err := loadJSON(dir, localFiles["products"], &t.data.Products); err != nil {
		return nil, err
	}
	if err := loadJSON(dir, localFiles["cart_items"], &t.data.CartItems); err != nil {
		return nil, err
	}
	if err := loadJSON(dir, localFiles["orders"], &t.data.Orders); err != nil {
		return nil, err
	}
	if err := loadJSON(dir, localFiles["stardust_transactions"], &t.data.Stardust); err != nil {
		return nil, err
	}
	t.seedCounters()
	return s, nil
}

func loadJSON(dir, name string, out interface{}) error {
	raw, err := os.ReadFile(filepath.Join(dir, name))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

func (t *localTx) seedCounters() {
	for _, p := range t.data.Products {
		if p.ID >= t.next["products"] {
			t.next["products"] = p.ID + 1
		}
	}
	for _, ci := range t.data.CartItems {
		if ci.ID >= t.next["cart_items"] {
			t.next["cart_items"] = ci.ID + 1
		}
	}
	for _, o := range t.data.Orders {
		if o.ID >= t.next["orders"] {
			t.next["orders"] = o.ID + 1
		}
		for _, it := range o.Items {
			if it.ID >= t.next["order_items"] {
				t.next["order_items"] = it.ID + 1
			}
		}
	}
	for _, st := range t.data.Stardust {
		if st.ID >= t.next["stardust_transactions"] {
			t.next["stardust_transactions"] = st.ID + 1
		}
	}
}

func (t *localTx) nextID(collection string) uint {
	id := t.next[collection]
	if id == 0 {
		id = 1
	}
	t.next[collection] = id + 1
	return id
}

func (t *localTx) save(collection string, v interface{}) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", collection, err)
	}
	if err := os.WriteFile(filepath.Join(t.dir, localFiles[collection]), raw, 0644); err != nil {
		return fmt.Errorf("write %s: %w", collection, err)
	}
	return nil
}

func (t *localTx) saveAll() error {
	if err := t.save("profiles", t.data.Profiles); err != nil {
		return err
	}
	if err := t.save("products", t.data.Products); err != nil {
		return err
	}
	if err := t.save("cart_items", t.data.CartItems); err != nil {
		return err
	}
	if err := t.save("orders", t.data.Orders); err != nil {
		return err
	}
	return t.save("stardust_transactions", t.data.Stardust)
}

// ---------------- Profiles ----------------

func (t *localTx) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	for i := range t.data.Profiles {
		if t.data.Profiles[i].ID == userID {
			p := t.data.Profiles[i]
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (t *localTx) GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	for i := range t.data.Profiles {
		if strings.EqualFold(t.data.Profiles[i].Email, email) {
			p := t.data.Profiles[i]
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (t *localTx) UpsertProfile(ctx context.Context, profile *models.Profile) error {
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = time.Now()
	}
	for i := range t.data.Profiles {
		if t.data.Profiles[i].ID == profile.ID {
			t.data.Profiles[i] = *profile
			return t.save("profiles", t.data.Profiles)
		}
	}
	t.data.Profiles = append(t.data.Profiles, *profile)
	return t.save("profiles", t.data.Profiles)
}

// ---------------- Products ----------------

func (t *localTx) ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	var out []models.Product
	for _, p := range t.data.Products {
		if filter.Search != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.Zodiac != "" && !p.HasZodiac(filter.Zodiac) {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.MinPrice != nil && p.Price.LessThan(*filter.MinPrice) {
			continue
		}
		if filter.MaxPrice != nil && p.Price.GreaterThan(*filter.MaxPrice) {
			continue
		}
		out = append(out, p)
	}

	asc := strings.ToLower(filter.SortOrder) == "asc"
	sort.SliceStable(out, func(i, j int) bool {
		var less bool
		switch filter.SortBy {
		case "price":
			less = out[i].Price.LessThan(out[j].Price)
		case "title":
			less = out[i].Title < out[j].Title
		default:
			less = out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		if asc {
			return less
		}
		return !less
	})
	return out, nil
}

func (t *localTx) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	for i := range t.data.Products {
		if t.data.Products[i].ID == id {
			p := t.data.Products[i]
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (t *localTx) CreateProduct(ctx context.Context, product *models.Product) error {
	product.ID = t.nextID("products")
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now
	t.data.Products = append(t.data.Products, *product)
	return t.save("products", t.data.Products)
}

func (t *localTx) UpdateProduct(ctx context.Context, product *models.Product) error {
	for i := range t.data.Products {
		if t.data.Products[i].ID == product.ID {
			product.UpdatedAt = time.Now()
			t.data.Products[i] = *product
			return t.save("products", t.data.Products)
		}
	}
	return ErrNotFound
}

func (t *localTx) DeleteProduct(ctx context.Context, id uint) error {
	for i := range t.data.Products {
		if t.data.Products[i].ID == id {
			t.data.Products = append(t.data.Products[:i], t.data.Products[i+1:]...)
			return t.save("products", t.data.Products)
		}
	}
	return ErrNotFound
}

func (t *localTx) DeductStock(ctx context.Context, productID uint, quantity int) error {
	for i := range t.data.Products {
		if t.data.Products[i].ID == productID {
			if t.data.Products[i].Stock < quantity {
				return fmt.Errorf("%w: %s", ErrInsufficientStock, t.data.Products[i].Title)
			}
			t.data.Products[i].Stock -= quantity
			t.data.Products[i].UpdatedAt = time.Now()
			return t.save("products", t.data.Products)
		}
	}
	return ErrNotFound
}

// ---------------- Cart items ----------------

func (t *localTx) ListCartItems(ctx context.Context, userID string) ([]models.CartItem, error) {
	var out []models.CartItem
	for _, item := range t.data.CartItems {
		if item.UserID != userID {
			continue
		}
		if p, err := t.GetProduct(ctx, item.ProductID); err == nil {
			item.Product = *p
		}
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AddedAt.Before(out[j].AddedAt) })
	return out, nil
}

func (t *localTx) GetCartItem(ctx context.Context, userID string, productID uint) (*models.CartItem, error) {
	for _, item := range t.data.CartItems {
		if item.UserID == userID && item.ProductID == productID {
			if p, err := t.GetProduct(ctx, item.ProductID); err == nil {
				item.Product = *p
			}
			return &item, nil
		}
	}
	return nil, ErrNotFound
}

func (t *localTx) GetCartItemByID(ctx context.Context, id uint) (*models.CartItem, error) {
	for _, item := range t.data.CartItems {
		if item.ID == id {
			if p, err := t.GetProduct(ctx, item.ProductID); err == nil {
				item.Product = *p
			}
			return &item, nil
		}
	}
	return nil, ErrNotFound
}

func (t *localTx) SaveCartItem(ctx context.Context, item *models.CartItem) error {
	stored := *item
	stored.Product = models.Product{} // snapshot is joined at read time, not stored
	if stored.AddedAt.IsZero() {
		stored.AddedAt = time.Now()
	}
	if stored.ID == 0 {
		stored.ID = t.nextID("cart_items")
		item.ID = stored.ID
		t.data.CartItems = append(t.data.CartItems, stored)
		return t.save("cart_items", t.data.CartItems)
	}
	for i := range t.data.CartItems {
		if t.data.CartItems[i].ID == stored.ID {
			t.data.CartItems[i] = stored
			return t.save("cart_items", t.data.CartItems)
		}
	}
	return ErrNotFound
}

func (t *localTx) DeleteCartItem(ctx context.Context, id uint) error {
	for i := range t.data.CartItems {
		if t.data.CartItems[i].ID == id {
			t.data.CartItems = append(t.data.CartItems[:i], t.data.CartItems[i+1:]...)
			return t.save("cart_items", t.data.CartItems)
		}
	}
	return ErrNotFound
}

func (t *localTx) ClearCart(ctx context.Context, userID string) error {
	kept := t.data.CartItems[:0]
	for _, item := range t.data.CartItems {
		if item.UserID != userID {
			kept = append(kept, item)
		}
	}
	t.data.CartItems = kept
	return t.save("cart_items", t.data.CartItems)
}

// ---------------- Orders ----------------

func (t *localTx) CreateOrder(ctx context.Context, order *models.Order) error {
	order.ID = t.nextID("orders")
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	for i := range order.Items {
		order.Items[i].ID = t.nextID("order_items")
		order.Items[i].OrderID = order.ID
	}
	t.data.Orders = append(t.data.Orders, *order)
	return t.save("orders", t.data.Orders)
}

func (t *localTx) GetOrderByRef(ctx context.Context, ref string) (*models.Order, error) {
	for i := range t.data.Orders {
		if t.data.Orders[i].OrderRef == ref {
			o := t.data.Orders[i]
			return &o, nil
		}
	}
	return nil, ErrNotFound
}

func (t *localTx) ListUserOrders(ctx context.Context, userID string) ([]models.Order, error) {
	var out []models.Order
	for _, o := range t.data.Orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (t *localTx) ListOrders(ctx context.Context) ([]models.Order, error) {
	out := make([]models.Order, len(t.data.Orders))
	copy(out, t.data.Orders)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (t *localTx) UpdateOrderStatus(ctx context.Context, ref string, status models.OrderStatus) error {
	for i := range t.data.Orders {
		if t.data.Orders[i].OrderRef == ref {
			t.data.Orders[i].Status = status
			return t.save("orders", t.data.Orders)
		}
	}
	return ErrNotFound
}

func (t *localTx) UpdatePaymentStatus(ctx context.Context, ref string, status models.PaymentStatus) error {
	for i := range t.data.Orders {
		if t.data.Orders[i].OrderRef == ref {
			t.data.Orders[i].PaymentStatus = status
			return t.save("orders", t.data.Orders)
		}
	}
	return ErrNotFound
}

// ---------------- Stardust ledger ----------------

func (t *localTx) AppendStardust(ctx context.Context, txn *models.StardustTransaction) error {
	txn.ID = t.nextID("stardust_transactions")
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now()
	}
	t.data.Stardust = append(t.data.Stardust, *txn)
	return t.save("stardust_transactions", t.data.Stardust)
}

func (t *localTx) ListStardust(ctx context.Context, userID string) ([]models.StardustTransaction, error) {
	var out []models.StardustTransaction
	for _, txn := range t.data.Stardust {
		if txn.UserID == userID {
			out = append(out, txn)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Atomic inside a transaction is a no-op join; the outer call already holds
// the lock and the snapshot.
func (t *localTx) Atomic(ctx context.Context, fn func(Store) error) error {
	return fn(t)
}

func (t *localTx) Close() error { return nil }

// snapshot deep-copies the collections through JSON so a failed Atomic can
// roll back both memory and files.
func (t *localTx) snapshot() (localData, error) {
	raw, err := json.Marshal(t.data)
	if err != nil {
		return localData{}, err
	}
	var copied localData
	if err := json.Unmarshal(raw, &copied); err != nil {
		return localData{}, err
	}
	return copied, nil
}

// ---------------- Locked wrappers ----------------

func (s *localStore) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.GetProfile(ctx, userID)
}

func (s *localStore) GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.GetProfileByEmail(ctx, email)
}

func (s *localStore) UpsertProfile(ctx context.Context, profile *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.UpsertProfile(ctx, profile)
}

func (s *localStore) ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.ListProducts(ctx, filter)
}

func (s *localStore) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.GetProduct(ctx, id)
}

func (s *localStore) CreateProduct(ctx context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.CreateProduct(ctx, product)
}

func (s *localStore) UpdateProduct(ctx context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.UpdateProduct(ctx, product)
}

func (s *localStore) DeleteProduct(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.DeleteProduct(ctx, id)
}

func (s *localStore) DeductStock(ctx context.Context, productID uint, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.DeductStock(ctx, productID, quantity)
}

func (s *localStore) ListCartItems(ctx context.Context, userID string) ([]models.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.ListCartItems(ctx, userID)
}

func (s *localStore) GetCartItem(ctx context.Context, userID string, productID uint) (*models.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.GetCartItem(ctx, userID, productID)
}

func (s *localStore) GetCartItemByID(ctx context.Context, id uint) (*models.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.GetCartItemByID(ctx, id)
}

func (s *localStore) SaveCartItem(ctx context.Context, item *models.CartItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.SaveCartItem(ctx, item)
}

func (s *localStore) DeleteCartItem(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.DeleteCartItem(ctx, id)
}

func (s *localStore) ClearCart(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.ClearCart(ctx, userID)
}

func (s *localStore) CreateOrder(ctx context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.CreateOrder(ctx, order)
}

func (s *localStore) GetOrderByRef(ctx context.Context, ref string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.GetOrderByRef(ctx, ref)
}

func (s *localStore) ListUserOrders(ctx context.Context, userID string) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.ListUserOrders(ctx, userID)
}

func (s *localStore) ListOrders(ctx context.Context) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.ListOrders(ctx)
}

func (s *localStore) UpdateOrderStatus(ctx context.Context, ref string, status models.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.UpdateOrderStatus(ctx, ref, status)
}

func (s *localStore) UpdatePaymentStatus(ctx context.Context, ref string, status models.PaymentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.UpdatePaymentStatus(ctx, ref, status)
}

func (s *localStore) AppendStardust(ctx context.Context, txn *models.StardustTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.AppendStardust(ctx, txn)
}

func (s *localStore) ListStardust(ctx context.Context, userID string) ([]models.StardustTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.ListStardust(ctx, userID)
}

// Atomic holds the lock for the whole callback and rolls memory and files
// back to the entry snapshot when fn fails.
func (s *localStore) Atomic(ctx context.Context, fn func(Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	before, err := s.tx.snapshot()
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	nextBefore := make(map[string]uint, len(s.tx.next))
	for k, v := range s.tx.next {
		nextBefore[k] = v
	}

	if err := fn(&s.tx); err != nil {
		s.tx.data = before
		s.tx.next = nextBefore
		if saveErr := s.tx.saveAll(); saveErr != nil {
			return fmt.Errorf("rollback: %v (original: %w)", saveErr, err)
		}
		return err
	}
	return nil
}

func (s *localStore) Close() error { return nil }
