package models

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string
type PaymentStatus string
type PaymentMethod string

const (
	// Order statuses
	OrderStatusPending    OrderStatus = "pending"    // Order placed, awaiting payment
	OrderStatusProcessing OrderStatus = "processing" // Paid, being prepared
	OrderStatusShipped    OrderStatus = "shipped"    // Out for delivery
	OrderStatusDelivered  OrderStatus = "delivered"  // Customer received the item

	// Payment statuses
	PaymentStatusPending PaymentStatus = "pending" // Payment not completed yet
	PaymentStatusPaid    PaymentStatus = "paid"    // Payment completed successfully

	// Payment methods
	PaymentMethodStripe  PaymentMethod = "stripe"  // Hosted checkout redirect
	PaymentMethodVenmo   PaymentMethod = "venmo"   // Manual send-to-handle
	PaymentMethodCashApp PaymentMethod = "cashapp" // Manual send-to-tag
	PaymentMethodCrypto  PaymentMethod = "crypto"  // Manual send-to-address
)

type Order struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	OrderRef      string          `gorm:"uniqueIndex;not null" json:"order_ref"`
	UserID        string          `gorm:"index;not null" json:"user_id"`
	Items         []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Total         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`
	StardustUsed  int             `json:"stardust_used"`
	PaymentMethod PaymentMethod   `gorm:"type:VARCHAR(20);not null" json:"payment_method"`
	PaymentStatus PaymentStatus   `gorm:"type:VARCHAR(20);default:'pending'" json:"payment_status"`
	Status        OrderStatus     `gorm:"type:VARCHAR(20);default:'pending'" json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}

// OrderItem carries a snapshot of the product at purchase time so later
// catalog edits do not rewrite order history.
type OrderItem struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	OrderID      uint            `gorm:"index" json:"order_id"`
	ProductID    uint            `json:"product_id"`
	ProductTitle string          `json:"product_title"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(10,2)" json:"unit_price"`
	Quantity     int             `json:"quantity"`
}

// ParseOrderStatus maps a string to an OrderStatus.
func ParseOrderStatus(status string) (OrderStatus, error) {
	switch strings.ToLower(status) {
	case string(OrderStatusPending):
		return OrderStatusPending, nil
	case string(OrderStatusProcessing):
		return OrderStatusProcessing, nil
	case string(OrderStatusShipped):
		return OrderStatusShipped, nil
	case string(OrderStatusDelivered):
		return OrderStatusDelivered, nil
	default:
		return "", errors.New("invalid order status")
	}
}

// ParsePaymentStatus maps a string to a PaymentStatus.
func ParsePaymentStatus(status string) (PaymentStatus, error) {
	switch strings.ToLower(status) {
	case string(PaymentStatusPending):
		return PaymentStatusPending, nil
	case string(PaymentStatusPaid):
		return PaymentStatusPaid, nil
	default:
		return "", errors.New("invalid payment status")
	}
}

// ParsePaymentMethod maps a string to a PaymentMethod.
func ParsePaymentMethod(method string) (PaymentMethod, error) {
	switch strings.ToLower(method) {
	case string(PaymentMethodStripe):
		return PaymentMethodStripe, nil
	case string(PaymentMethodVenmo):
		return PaymentMethodVenmo, nil
	case string(PaymentMethodCashApp):
		return PaymentMethodCashApp, nil
	case string(PaymentMethodCrypto):
		return PaymentMethodCrypto, nil
	default:
		return "", errors.New("invalid payment method")
	}
}
