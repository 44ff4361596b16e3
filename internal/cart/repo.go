package cart

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/wardshop/ward-backend/pkg/db"
	"github.com/wardshop/ward-backend/pkg/db/models"
)

// ErrVersionConflict is returned by Save when the guarded update matched no
// row, meaning a concurrent writer bumped the cart version first.
var ErrVersionConflict = errors.New("cart version conflict")

// Repository exposes persistence operations for user carts.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByUser loads the user's cart with its lines. An absent cart is not an
// error; it returns (nil, nil).
func (r *Repository) FindByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var record models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("added_at ASC")
		}).
		Where("user_id = ?", userID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// GetOrCreate returns the user's cart, inserting an empty one on first use.
// A unique-violation race on the first insert is resolved by re-reading.
func (r *Repository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	record, err := r.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if record != nil {
		return record, nil
	}

	record = &models.Cart{
		ID:          uuid.New(),
		UserID:      userID,
		Version:     1,
		LastUpdated: time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_carts_user_id") {
			return r.FindByUser(ctx, userID)
		}
		return nil, err
	}
	return record, nil
}

// Save persists the cart header behind a version guard and replaces its
// lines. Callers run it inside a transaction; a guard miss returns
// ErrVersionConflict without touching the lines.
func (r *Repository) Save(ctx context.Context, cart *models.Cart) error {
	db := r.db.WithContext(ctx)

	res := db.Model(&models.Cart{}).
		Where("id = ? AND version = ?", cart.ID, cart.Version).
		Updates(map[string]any{
			"total_items":  cart.TotalItems,
			"total_price":  cart.TotalPrice,
			"last_updated": cart.LastUpdated,
			"version":      cart.Version + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	cart.Version++

	if err := db.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	if len(cart.Items) == 0 {
		return nil
	}
	for i := range cart.Items {
		cart.Items[i].CartID = cart.ID
		if cart.Items[i].ID == uuid.Nil {
			cart.Items[i].ID = uuid.New()
		}
	}
	return db.Create(&cart.Items).Error
}
