package store

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/zeriouslyzen/cosmic-sub000/models"
)

func newLocalStore(t *testing.T) (Store, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := OpenLocal(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, dir
}

func TestLocalProductCRUD(t *testing.T) {
	ctx := context.Background()
	s, _ := newLocalStore(t)

	p := &models.Product{
		Title:    "Aries Fire Mug",
		Price:    decimal.RequireFromString("14.50"),
		Zodiac:   "aries,leo",
		Category: "kitchen",
		Stock:    10,
	}
	require.NoError(t, s.CreateProduct(ctx, p))
	require.NotZero(t, p.ID)

	got, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "Aries Fire Mug", got.Title)

	got.Stock = 7
	require.NoError(t, s.UpdateProduct(ctx, got))
	got, err = s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, 7, got.Stock)

	require.NoError(t, s.DeleteProduct(ctx, p.ID))
	_, err = s.GetProduct(ctx, p.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLocalProductFilters(t *testing.T) {
	ctx := context.Background()
	s, _ := newLocalStore(t)

	seed := []models.Product{
		{Title: "Aries Fire Mug", Price: decimal.RequireFromString("14.50"), Zodiac: "aries", Category: "kitchen"},
		{Title: "Leo Sun Lamp", Price: decimal.RequireFromString("49.00"), Zodiac: "leo", Category: "decor"},
		{Title: "Pisces Dream Pillow", Price: decimal.RequireFromString("22.00"), Zodiac: "pisces,cancer", Category: "decor"},
	}
	for i := range seed {
		require.NoError(t, s.CreateProduct(ctx, &seed[i]))
	}

	// substring title search, case-insensitive
	out, err := s.ListProducts(ctx, ProductFilter{Search: "sun"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "Leo Sun Lamp", out[0].Title)

	// zodiac tag matches any sign in the comma-joined list
	out, err = s.ListProducts(ctx, ProductFilter{Zodiac: "cancer"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "Pisces Dream Pillow", out[0].Title)

	// category + price window
	min := decimal.RequireFromString("20")
	max := decimal.RequireFromString("30")
	out, err = s.ListProducts(ctx, ProductFilter{Category: "decor", MinPrice: &min, MaxPrice: &max})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "Pisces Dream Pillow", out[0].Title)

	// price ascending
	out, err = s.ListProducts(ctx, ProductFilter{SortBy: "price", SortOrder: "asc"})
	require.NoError(t, err)
	require.Len(t, out, 3)
	require.Equal(t, "Aries Fire Mug", out[0].Title)
	require.Equal(t, "Leo Sun Lamp", out[2].Title)
}

func TestLocalCartJoinsProduct(t *testing.T) {
	ctx := context.Background()
	s, _ := newLocalStore(t)

	p := &models.Product{Title: "Taurus Tea", Price: decimal.RequireFromString("9.99"), Stock: 3}
	require.NoError(t, s.CreateProduct(ctx, p))

	require.NoError(t, s.SaveCartItem(ctx, &models.CartItem{UserID: "u1", ProductID: p.ID, Quantity: 2}))

	items, err := s.ListCartItems(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "Taurus Tea", items[0].Product.Title, "reads join the product snapshot")
	require.Equal(t, "9.99", items[0].Product.Price.StringFixed(2))

	require.NoError(t, s.ClearCart(ctx, "u1"))
	items, err = s.ListCartItems(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestLocalDataSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	s, dir := newLocalStore(t)

	p := &models.Product{Title: "Gemini Twin Candles", Price: decimal.RequireFromString("18.00"), Stock: 5}
	require.NoError(t, s.CreateProduct(ctx, p))
	require.NoError(t, s.UpsertProfile(ctx, &models.Profile{ID: "u1", Email: "luna@example.com", StardustBalance: 250}))

	reopened, err := OpenLocal(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "Gemini Twin Candles", got.Title)

	profile, err := reopened.GetProfileByEmail(ctx, "luna@example.com")
	require.NoError(t, err)
	require.Equal(t, 250, profile.StardustBalance)

	// ID counters resume past existing rows
	p2 := &models.Product{Title: "Another", Price: decimal.RequireFromString("1.00")}
	require.NoError(t, reopened.CreateProduct(ctx, p2))
	require.Greater(t, p2.ID, p.ID)
}

func TestLocalAtomicRollback(t *testing.T) {
	ctx := context.Background()
	s, dir := newLocalStore(t)

	p := &models.Product{Title: "Virgo Vase", Price: decimal.RequireFromString("30.00"), Stock: 2}
	require.NoError(t, s.CreateProduct(ctx, p))

	boom := errors.New("boom")
	err := s.Atomic(ctx, func(tx Store) error {
		if err := tx.DeductStock(ctx, p.ID, 2); err != nil {
			return err
		}
		if err := tx.CreateOrder(ctx, &models.Order{OrderRef: "lost", UserID: "u1", Total: decimal.RequireFromString("60.00")}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// in-memory state restored
	got, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, 2, got.Stock)
	_, err = s.GetOrderByRef(ctx, "lost")
	require.ErrorIs(t, err, ErrNotFound)

	// file state restored too
	reopened, err := OpenLocal(dir)
	require.NoError(t, err)
	defer reopened.Close()
	got, err = reopened.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, 2, got.Stock)
	_, err = reopened.GetOrderByRef(ctx, "lost")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLocalDeductStockInsufficient(t *testing.T) {
	ctx := context.Background()
	s, _ := newLocalStore(t)

	p := &models.Product{Title: "Libra Scale", Price: decimal.RequireFromString("40.00"), Stock: 1}
	require.NoError(t, s.CreateProduct(ctx, p))

	err := s.DeductStock(ctx, p.ID, 2)
	require.ErrorIs(t, err, ErrInsufficientStock)

	got, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.Stock)
}

func TestLocalOrderStatusUpdates(t *testing.T) {
	ctx := context.Background()
	s, _ := newLocalStore(t)

	order := &models.Order{
		OrderRef:      "ref-1",
		UserID:        "u1",
		Total:         decimal.RequireFromString("12.00"),
		PaymentMethod: models.PaymentMethodVenmo,
		PaymentStatus: models.PaymentStatusPending,
		Status:        models.OrderStatusPending,
		Items: []models.OrderItem{
			{ProductID: 1, ProductTitle: "X", UnitPrice: decimal.RequireFromString("12.00"), Quantity: 1},
		},
	}
	require.NoError(t, s.CreateOrder(ctx, order))
	require.NotZero(t, order.Items[0].ID)

	require.NoError(t, s.UpdatePaymentStatus(ctx, "ref-1", models.PaymentStatusPaid))
	require.NoError(t, s.UpdateOrderStatus(ctx, "ref-1", models.OrderStatusShipped))

	got, err := s.GetOrderByRef(ctx, "ref-1")
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusPaid, got.PaymentStatus)
	require.Equal(t, models.OrderStatusShipped, got.Status)

	require.ErrorIs(t, s.UpdateOrderStatus(ctx, "no-such-ref", models.OrderStatusShipped), ErrNotFound)
}
