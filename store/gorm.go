package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zeriouslyzen/cosmic-sub000/models"
)

// gormStore is the remote-mode Store backed by Postgres through GORM.
type gormStore struct {
	db *gorm.DB
}

// OpenPostgres connects to Postgres and migrates the schema.
func OpenPostgres(dsn string) (Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return OpenGorm(db)
}

// OpenGorm wraps an existing GORM connection (used by tests with an
// in-memory SQLite database) and migrates the schema.
func OpenGorm(db *gorm.DB) (Store, error) {
	if err := db.AutoMigrate(
		&models.Profile{},
		&models.Product{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.StardustTransaction{},
	); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &gormStore{db: db}, nil
}

func wrapGormErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ---------------- Profiles ----------------

func (s *gormStore) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var profile models.Profile
	err := s.db.WithContext(ctx).Where("id = ?", userID).First(&profile).Error
	if err != nil {
		return nil, wrapGormErr("get profile", err)
	}
	return &profile, nil
}

func (s *gormStore) GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var profile models.Profile
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&profile).Error
	if err != nil {
		return nil, wrapGormErr("get profile by email", err)
	}
	return &profile, nil
}

func (s *gormStore) UpsertProfile(ctx context.Context, profile *models.Profile) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(profile).Error
	return wrapGormErr("upsert profile", err)
}

// ---------------- Products ----------------

func (s *gormStore) ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	query := s.db.WithContext(ctx).Model(&models.Product{})

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(title) LIKE ?", pattern)
	}
	if filter.Zodiac != "" {
		pattern := "%" + strings.ToLower(filter.Zodiac) + "%"
		query = query.Where("LOWER(zodiac) LIKE ?", pattern)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", filter.MaxPrice)
	}

	sortBy := filter.SortBy
	switch sortBy {
	case "price", "title", "created_at":
	default:
		sortBy = "created_at"
	}
	sortOrder := strings.ToLower(filter.SortOrder)
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	var products []models.Product
	if err := query.Order(sortBy + " " + sortOrder).Find(&products).Error; err != nil {
		return nil, wrapGormErr("list products", err)
	}
	return products, nil
}

func (s *gormStore) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).First(&product, id).Error
	if err != nil {
		return nil, wrapGormErr("get product", err)
	}
	return &product, nil
}

func (s *gormStore) CreateProduct(ctx context.Context, product *models.Product) error {
	return wrapGormErr("create product", s.db.WithContext(ctx).Create(product).Error)
}

func (s *gormStore) UpdateProduct(ctx context.Context, product *models.Product) error {
	res := s.db.WithContext(ctx).Save(product)
	return wrapGormErr("update product", res.Error)
}

func (s *gormStore) DeleteProduct(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return wrapGormErr("delete product", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormStore) DeductStock(ctx context.Context, productID uint, quantity int) error {
	return s.Atomic(ctx, func(tx Store) error {
		g := tx.(*gormStore)
		var product models.Product
		if err := g.db.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&product, productID).Error; err != nil {
			return wrapGormErr("deduct stock", err)
		}
		if product.Stock < quantity {
			return fmt.Errorf("%w: %s", ErrInsufficientStock, product.Title)
		}
		product.Stock -= quantity
		return wrapGormErr("deduct stock", g.db.WithContext(ctx).Save(&product).Error)
	})
}

// ---------------- Cart items ----------------

func (s *gormStore) ListCartItems(ctx context.Context, userID string) ([]models.CartItem, error) {
	var items []models.CartItem
	err := s.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("added_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, wrapGormErr("list cart items", err)
	}
	return items, nil
}

func (s *gormStore) GetCartItem(ctx context.Context, userID string, productID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := s.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&item).Error
	if err != nil {
		return nil, wrapGormErr("get cart item", err)
	}
	return &item, nil
}

func (s *gormStore) GetCartItemByID(ctx context.Context, id uint) (*models.CartItem, error) {
	var item models.CartItem
	err := s.db.WithContext(ctx).Preload("Product").First(&item, id).Error
	if err != nil {
		return nil, wrapGormErr("get cart item", err)
	}
	return &item, nil
}

func (s *gormStore) SaveCartItem(ctx context.Context, item *models.CartItem) error {
	return wrapGormErr("save cart item", s.db.WithContext(ctx).Omit("Product").Save(item).Error)
}

func (s *gormStore) DeleteCartItem(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.CartItem{}, id)
	if res.Error != nil {
		return wrapGormErr("delete cart item", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormStore) ClearCart(ctx context.Context, userID string) error {
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartItem{}).Error
	return wrapGormErr("clear cart", err)
}

// ---------------- Orders ----------------

func (s *gormStore) CreateOrder(ctx context.Context, order *models.Order) error {
	return wrapGormErr("create order", s.db.WithContext(ctx).Create(order).Error)
}

func (s *gormStore) GetOrderByRef(ctx context.Context, ref string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("order_ref = ?", ref).
		First(&order).Error
	if err != nil {
		return nil, wrapGormErr("get order", err)
	}
	return &order, nil
}

func (s *gormStore) ListUserOrders(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, wrapGormErr("list user orders", err)
	}
	return orders, nil
}

func (s *gormStore) ListOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, wrapGormErr("list orders", err)
	}
	return orders, nil
}

func (s *gormStore) UpdateOrderStatus(ctx context.Context, ref string, status models.OrderStatus) error {
	res := s.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("order_ref = ?", ref).
		Update("status", status)
	if res.Error != nil {
		return wrapGormErr("update order status", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormStore) UpdatePaymentStatus(ctx context.Context, ref string, status models.PaymentStatus) error {
	res := s.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("order_ref = ?", ref).
		Update("payment_status", status)
	if res.Error != nil {
		return wrapGormErr("update payment status", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ---------------- Stardust ledger ----------------

func (s *gormStore) AppendStardust(ctx context.Context, txn *models.StardustTransaction) error {
	return wrapGormErr("append stardust", s.db.WithContext(ctx).Create(txn).Error)
}

func (s *gormStore) ListStardust(ctx context.Context, userID string) ([]models.StardustTransaction, error) {
	var txns []models.StardustTransaction
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&txns).Error
	if err != nil {
		return nil, wrapGormErr("list stardust", err)
	}
	return txns, nil
}

// ---------------- Transactions ----------------

func (s *gormStore) Atomic(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

func (s *gormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
