package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wardshop/ward-backend/pkg/db/models"
)

// CartRepository defines the persistence surface required by the cart service.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	FindByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) error
}

// LocalStore holds guest cart snapshots keyed by an opaque session id.
type LocalStore interface {
	Load(ctx context.Context, guestID string) ([]LocalCartEntry, error)
	Save(ctx context.Context, guestID string, entries []LocalCartEntry) error
	Clear(ctx context.Context, guestID string) error
}
