package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is one product line inside a Cart. Name, price and image are
// snapshots captured at add-time; catalog changes never rewrite an existing
// line. A (cart_id, product_id) pair is unique and quantity is always >= 1,
// since a line that would drop to zero is deleted instead.
type CartItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	CartID    uuid.UUID       `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:ux_cart_items_cart_product"`
	ProductID int64           `gorm:"column:product_id;not null;uniqueIndex:ux_cart_items_cart_product"`
	NameEn    string          `gorm:"column:name_en;not null"`
	NameAr    string          `gorm:"column:name_ar;not null"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	ImageURL  string          `gorm:"column:image_url;not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	AddedAt   time.Time       `gorm:"column:added_at;not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
