package checkout

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/zeriouslyzen/cosmic-sub000/cart"
	"github.com/zeriouslyzen/cosmic-sub000/models"
	"github.com/zeriouslyzen/cosmic-sub000/store"
)

type fixture struct {
	store     store.Store
	carts     *cart.Manager
	d         *Dispatcher
	productID uint
	notified  []models.Order
}

// newFixture wires a dispatcher over a throwaway store with no provider
// credential, so hosted checkout simulates success. One user, one product.
func newFixture(t *testing.T, balance int, price string, stock int) *fixture {
	t.Helper()
	ctx := context.Background()

	t.Setenv("STRIPE_SECRET_KEY", "")
	t.Setenv("STRIPE_API_URL", "")
	t.Setenv("VENMO_HANDLE", "@cosmic-deals")
	t.Setenv("CASHAPP_TAG", "$cosmicdeals")
	t.Setenv("CRYPTO_ADDRESS", "0xDEADBEEF")

	s, err := store.OpenLocal(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.UpsertProfile(ctx, &models.Profile{
		ID:              "u1",
		Email:           "vega@example.com",
		StardustBalance: balance,
	}))
	p := &models.Product{Title: "Leo Sun Lamp", Price: decimal.RequireFromString(price), Stock: stock}
	require.NoError(t, s.CreateProduct(ctx, p))

	carts := cart.NewManager(s)
	carts.SetPollInterval(0)
	t.Cleanup(carts.Close)

	f := &fixture{
		store:     s,
		carts:     carts,
		productID: p.ID,
	}
	f.d = NewDispatcher(s, carts, NewStripeClientFromEnv())
	f.d.SetOrderNotifier(func(o models.Order) { f.notified = append(f.notified, o) })
	return f
}

func (f *fixture) addToCart(t *testing.T, quantity int) {
	t.Helper()
	sess, err := f.carts.Session(context.Background(), "u1")
	require.NoError(t, err)
	require.NoError(t, sess.AddProduct(context.Background(), f.productID, quantity))
}

func TestStartRequiresNonEmptyCart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0, "19.99", 5)

	_, err := f.d.Start(ctx, "u1", models.PaymentMethodStripe)
	require.ErrorIs(t, err, ErrEmptyCart)

	_, err = f.d.Start(ctx, "", models.PaymentMethodStripe)
	require.ErrorIs(t, err, cart.ErrNotSignedIn)
}

func TestSimulatedHostedPayment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0, "19.99", 5)
	f.addToCart(t, 2) // $39.98

	res, err := f.d.Start(ctx, "u1", models.PaymentMethodStripe)
	require.NoError(t, err)
	require.True(t, res.Simulated)
	require.Equal(t, models.PaymentStatusPaid, res.PaymentStatus)
	require.Equal(t, 39, res.StardustEarned, "one point per whole dollar")
	require.Empty(t, res.RedirectURL)

	order, err := f.store.GetOrderByRef(ctx, res.OrderRef)
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)
	require.Equal(t, models.OrderStatusProcessing, order.Status)
	require.Equal(t, "39.98", order.Total.StringFixed(2))
	require.Len(t, order.Items, 1)
	require.Equal(t, "Leo Sun Lamp", order.Items[0].ProductTitle)

	// stock deducted, cart emptied, earnings credited
	p, err := f.store.GetProduct(ctx, f.productID)
	require.NoError(t, err)
	require.Equal(t, 3, p.Stock)

	items, err := f.store.ListCartItems(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, items)

	profile, err := f.store.GetProfile(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 39, profile.StardustBalance)
}

func TestManualPaymentInstructions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0, "19.99", 5)
	f.addToCart(t, 1)

	res, err := f.d.Start(ctx, "u1", models.PaymentMethodVenmo)
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusPending, res.PaymentStatus)
	require.Contains(t, res.Instructions, "@cosmic-deals")
	require.Contains(t, res.Instructions, res.OrderRef)
	require.Zero(t, res.StardustEarned)

	// stock is reserved up front, but nothing is credited or cleared yet
	p, err := f.store.GetProduct(ctx, f.productID)
	require.NoError(t, err)
	require.Equal(t, 4, p.Stock)

	items, err := f.store.ListCartItems(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 1, "cart clears at reconciliation, not at start")

	profile, err := f.store.GetProfile(ctx, "u1")
	require.NoError(t, err)
	require.Zero(t, profile.StardustBalance)
}

func TestUnknownPaymentMethod(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0, "19.99", 5)
	f.addToCart(t, 1)

	_, err := f.d.Start(ctx, "u1", models.PaymentMethod("paypal"))
	require.ErrorIs(t, err, ErrUnknownMethod)
}

func TestReconcileIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0, "19.99", 5)
	f.addToCart(t, 1)

	res, err := f.d.Start(ctx, "u1", models.PaymentMethodCashApp)
	require.NoError(t, err)

	order, earned, err := f.d.Reconcile(ctx, res.OrderRef)
	require.NoError(t, err)
	require.Equal(t, 19, earned)
	require.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)

	// a duplicate confirmation must be a no-op
	_, earned, err = f.d.Reconcile(ctx, res.OrderRef)
	require.NoError(t, err)
	require.Zero(t, earned)

	profile, err := f.store.GetProfile(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 19, profile.StardustBalance, "no double credit")

	txns, err := f.store.ListStardust(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, txns, 1)
	require.Equal(t, models.StardustEarned, txns[0].Type)
	require.Contains(t, txns[0].Description, "19.99", "ledger row names the purchase amount")
}

func TestStardustEarmarkDebitedAtStart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 500, "10.00", 5)
	f.addToCart(t, 1)

	sess, err := f.carts.Session(ctx, "u1")
	require.NoError(t, err)
	require.NoError(t, sess.ApplyStardustDiscount(300)) // $3 off

	res, err := f.d.Start(ctx, "u1", models.PaymentMethodCrypto)
	require.NoError(t, err)

	order, err := f.store.GetOrderByRef(ctx, res.OrderRef)
	require.NoError(t, err)
	require.Equal(t, "7.00", order.Total.StringFixed(2))
	require.Equal(t, 300, order.StardustUsed)

	profile, err := f.store.GetProfile(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 200, profile.StardustBalance, "earmark debited with the order")

	// earnings come from the discounted total
	_, earned, err := f.d.Reconcile(ctx, res.OrderRef)
	require.NoError(t, err)
	require.Equal(t, 7, earned)

	profile, err = f.store.GetProfile(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 207, profile.StardustBalance)
}

func TestInsufficientStockRollsBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 500, "10.00", 1)
	f.addToCart(t, 3)

	sess, err := f.carts.Session(ctx, "u1")
	require.NoError(t, err)
	require.NoError(t, sess.ApplyStardustDiscount(300))

	_, err = f.d.Start(ctx, "u1", models.PaymentMethodVenmo)
	require.ErrorIs(t, err, store.ErrInsufficientStock)

	// nothing persisted: no order, stock intact, star dust intact
	orders, err := f.store.ListOrders(ctx)
	require.NoError(t, err)
	require.Empty(t, orders)

	p, err := f.store.GetProduct(ctx, f.productID)
	require.NoError(t, err)
	require.Equal(t, 1, p.Stock)

	profile, err := f.store.GetProfile(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 500, profile.StardustBalance)
}

func TestOrderNotifierFires(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0, "19.99", 5)
	f.addToCart(t, 1)

	res, err := f.d.Start(ctx, "u1", models.PaymentMethodVenmo)
	require.NoError(t, err)
	require.Len(t, f.notified, 1, "order creation broadcasts")

	_, _, err = f.d.Reconcile(ctx, res.OrderRef)
	require.NoError(t, err)
	require.Len(t, f.notified, 2, "reconciliation broadcasts")
	require.Equal(t, models.PaymentStatusPaid, f.notified[1].PaymentStatus)
}
