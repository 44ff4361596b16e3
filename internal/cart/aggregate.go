package cart

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wardshop/ward-backend/pkg/db/models"
)

// recomputeTotals derives (totalItems, totalPrice) from the cart lines.
// An empty cart yields (0, 0).
func recomputeTotals(items []models.CartItem) (int, decimal.Decimal) {
	totalItems := 0
	totalPrice := decimal.Zero
	for i := range items {
		totalItems += items[i].Quantity
		line := items[i].Price.Mul(decimal.NewFromInt(int64(items[i].Quantity)))
		totalPrice = totalPrice.Add(line)
	}
	return totalItems, totalPrice
}

// refreshAggregate recomputes derived totals and bumps lastUpdated. Every
// structural mutation goes through here before the cart is saved.
func refreshAggregate(cart *models.Cart, now time.Time) {
	cart.TotalItems, cart.TotalPrice = recomputeTotals(cart.Items)
	cart.LastUpdated = now
}
