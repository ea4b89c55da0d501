package store

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"github.com/zeriouslyzen/cosmic-sub000/models"
)

var (
	// ErrNotFound is returned for lookups that match no row. Callers can
	// tell it apart from backend failures, which come back wrapped.
	ErrNotFound = errors.New("record not found")

	// ErrInsufficientStock is returned by DeductStock when the product
	// cannot cover the requested quantity.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// ProductFilter narrows and orders ListProducts results.
type ProductFilter struct {
	Search    string // substring match on title
	Zodiac    string // single sign tag
	Category  string
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
	SortBy    string // created_at | price | title
	SortOrder string // asc | desc
}

// Store is the persistence contract shared by the Postgres backend and the
// local JSON-file fallback. The implementation is chosen once at startup by
// Open and never switched at runtime. Higher layers hold only this
// interface.
type Store interface {
	// Profiles
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error)
	UpsertProfile(ctx context.Context, profile *models.Profile) error

	// Products
	ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	GetProduct(ctx context.Context, id uint) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id uint) error
	DeductStock(ctx context.Context, productID uint, quantity int) error

	// Cart items (each read enriched with its product snapshot)
	ListCartItems(ctx context.Context, userID string) ([]models.CartItem, error)
	GetCartItem(ctx context.Context, userID string, productID uint) (*models.CartItem, error)
	GetCartItemByID(ctx context.Context, id uint) (*models.CartItem, error)
	SaveCartItem(ctx context.Context, item *models.CartItem) error
	DeleteCartItem(ctx context.Context, id uint) error
	ClearCart(ctx context.Context, userID string) error

	// Orders
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByRef(ctx context.Context, ref string) (*models.Order, error)
	ListUserOrders(ctx context.Context, userID string) ([]models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, ref string, status models.OrderStatus) error
	UpdatePaymentStatus(ctx context.Context, ref string, status models.PaymentStatus) error

	// Stardust ledger (append-only)
	AppendStardust(ctx context.Context, txn *models.StardustTransaction) error
	ListStardust(ctx context.Context, userID string) ([]models.StardustTransaction, error)

	// Atomic runs fn inside a single transactional boundary. Nested calls
	// join the enclosing transaction.
	Atomic(ctx context.Context, fn func(Store) error) error

	Close() error
}

// Open selects the backend from the environment: Postgres when database
// credentials are configured, otherwise the local JSON-file store under
// DATA_DIR. The choice is fixed for the process lifetime.
func Open() (Store, error) {
	if dsn := postgresDSN(); dsn != "" {
		return OpenPostgres(dsn)
	}
	dir := os.Getenv("DATA_DIR")
	if dir == "" {
		dir = "./data"
	}
	return OpenLocal(dir)
}

func postgresDSN() string {
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		return databaseURL
	}
	host := os.Getenv("DB_HOST")
	if host == "" {
		return ""
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		host,
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)
}
