package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart is the server-persisted, per-user cart aggregate. Totals are derived
// from Items and recomputed on every mutation; Version backs the optimistic
// write guard, so rows are never updated without it.
type Cart struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	UserID      uuid.UUID       `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_carts_user_id"`
	Items       []CartItem      `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	TotalItems  int             `gorm:"column:total_items;not null;default:0"`
	TotalPrice  decimal.Decimal `gorm:"column:total_price;type:numeric(12,2);not null;default:0"`
	Version     int64           `gorm:"column:version;not null;default:1"`
	LastUpdated time.Time       `gorm:"column:last_updated;not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// ItemIndex returns the position of the line with the given product id, or -1.
func (c *Cart) ItemIndex(productID int64) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}
