// Package ledger holds the cart/stardust arithmetic: subtotal, the
// stardust-to-dollar discount, and purchase earnings. Monetary values are
// decimal dollars; stardust is an integer point count.
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/zeriouslyzen/cosmic-sub000/models"
)

// PointsPerDollar is the fixed redemption rate: 100 star dust = $1 off.
const PointsPerDollar = 100

// Subtotal sums unit price times quantity over the cart. An empty cart
// yields zero.
func Subtotal(items []models.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		line := item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(line)
	}
	return total
}

// StardustDiscount converts spent points to a dollar discount, clamped so it
// never exceeds the subtotal. The conversion floors on points (integer
// division), never on dollars.
func StardustDiscount(stardustUsed int, subtotal decimal.Decimal) decimal.Decimal {
	if stardustUsed <= 0 {
		return decimal.Zero
	}
	discount := decimal.NewFromInt(int64(stardustUsed / PointsPerDollar))
	if discount.GreaterThan(subtotal) {
		return subtotal
	}
	return discount
}

// EarnOnPurchase returns the star dust earned for a completed purchase:
// one point per whole dollar. Non-positive totals earn nothing.
func EarnOnPurchase(total decimal.Decimal) int {
	if total.LessThanOrEqual(decimal.Zero) {
		return 0
	}
	return int(total.IntPart())
}
