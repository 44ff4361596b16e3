package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/wardshop/ward-backend/pkg/db/models"
	"github.com/wardshop/ward-backend/pkg/enums"
	pkgerrors "github.com/wardshop/ward-backend/pkg/errors"
	"github.com/wardshop/ward-backend/pkg/logger"
	"github.com/wardshop/ward-backend/pkg/outbox"
)

// maxConflictRetries bounds how often a mutation is replayed after losing a
// version race. Retries only ever happen on ErrVersionConflict.
const maxConflictRetries = 3

// errNoChange short-circuits a mutation that leaves the cart untouched so
// the version is not bumped for nothing.
var errNoChange = errors.New("cart unchanged")

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service exposes cart read, mutation and reconciliation operations.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	Count(ctx context.Context, userID uuid.UUID) (int, error)
	AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID uuid.UUID, productID int64) (*models.Cart, error)
	SetQuantity(ctx context.Context, userID uuid.UUID, productID int64, quantity int) (*models.Cart, error)
	Clear(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	Reconcile(ctx context.Context, userID uuid.UUID, entries []LocalCartEntry) (*models.Cart, *MergeReport, error)
	SyncFromGuest(ctx context.Context, userID uuid.UUID, guestID string) (*models.Cart, *MergeReport, error)
}

type service struct {
	repo   CartRepository
	tx     txRunner
	events eventEmitter
	local  LocalStore
	logg   *logger.Logger
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, tx txRunner, events eventEmitter, local LocalStore, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if events == nil {
		return nil, fmt.Errorf("event emitter required")
	}
	if local == nil {
		return nil, fmt.Errorf("local cart store required")
	}
	return &service{
		repo:   repo,
		tx:     tx,
		events: events,
		local:  local,
		logg:   logg,
	}, nil
}

// AddItemInput captures the payload for adding or incrementing a cart line.
// Quantity defaults to 1; the snapshot fields are only required when the
// product is not in the cart yet.
type AddItemInput struct {
	ProductID int64
	Quantity  *int
	NameEn    string
	NameAr    string
	Price     *decimal.Decimal
	ImageURL  string
}

// SkippedEntry records one local snapshot line that could not be merged.
type SkippedEntry struct {
	ProductID int64  `json:"productId"`
	Reason    string `json:"reason"`
}

// MergeReport summarizes a reconciliation run.
type MergeReport struct {
	Merged  int            `json:"merged"`
	Skipped []SkippedEntry `json:"skipped,omitempty"`
	SkipErr error          `json:"-"`
}

type cartEventPayload struct {
	UserID     string `json:"userId"`
	TotalItems int    `json:"totalItems"`
	TotalPrice string `json:"totalPrice"`
	Version    int64  `json:"version"`
}

// Get returns the user's cart, or an empty unsaved cart when none exists.
// Reads never create a row.
func (s *service) Get(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	record, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if record == nil {
		return &models.Cart{
			UserID:      userID,
			TotalPrice:  decimal.Zero,
			LastUpdated: time.Now(),
		}, nil
	}
	return record, nil
}

// Count returns the badge count (sum of line quantities) without materializing
// an empty cart.
func (s *service) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	record, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if record == nil {
		return 0, nil
	}
	return record.TotalItems, nil
}

// AddItem increments an existing line or appends a new one.
func (s *service) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*models.Cart, error) {
	return s.mutate(ctx, userID, enums.EventCartUpdated, func(record *models.Cart, now time.Time) error {
		return applyAdd(record, input, now)
	})
}

// RemoveItem deletes the line for the product. Removing an absent product is
// a no-op.
func (s *service) RemoveItem(ctx context.Context, userID uuid.UUID, productID int64) (*models.Cart, error) {
	return s.mutate(ctx, userID, enums.EventCartUpdated, func(record *models.Cart, now time.Time) error {
		idx := record.ItemIndex(productID)
		if idx < 0 {
			return errNoChange
		}
		record.Items = append(record.Items[:idx], record.Items[idx+1:]...)
		return nil
	})
}

// SetQuantity replaces the quantity of an existing line. A quantity of zero
// or less removes the line; a missing line is NotFound.
func (s *service) SetQuantity(ctx context.Context, userID uuid.UUID, productID int64, quantity int) (*models.Cart, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, userID, productID)
	}
	return s.mutate(ctx, userID, enums.EventCartUpdated, func(record *models.Cart, now time.Time) error {
		idx := record.ItemIndex(productID)
		if idx < 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not in cart")
		}
		if record.Items[idx].Quantity == quantity {
			return errNoChange
		}
		record.Items[idx].Quantity = quantity
		return nil
	})
}

// Clear drops every line from the cart. The record persists with lastUpdated
// refreshed even when there was nothing to drop.
func (s *service) Clear(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	return s.mutate(ctx, userID, enums.EventCartUpdated, func(record *models.Cart, now time.Time) error {
		record.Items = nil
		return nil
	})
}

// Reconcile drains a local snapshot into the user cart additively. Entries
// that fail validation are skipped and reported; any other failure aborts
// the run. An empty snapshot short-circuits, so replays are harmless.
func (s *service) Reconcile(ctx context.Context, userID uuid.UUID, entries []LocalCartEntry) (*models.Cart, *MergeReport, error) {
	report := &MergeReport{}
	if len(entries) == 0 {
		record, err := s.Get(ctx, userID)
		return record, report, err
	}

	var skipErrs []error
	record, err := s.mutate(ctx, userID, enums.EventCartReconciled, func(record *models.Cart, now time.Time) error {
		// The closure can replay after a version conflict, so the report is
		// rebuilt from scratch each attempt.
		report.Merged = 0
		report.Skipped = report.Skipped[:0]
		skipErrs = skipErrs[:0]

		for _, entry := range entries {
			if entry.ProductID == 0 || entry.Quantity <= 0 {
				report.Skipped = append(report.Skipped, SkippedEntry{
					ProductID: entry.ProductID,
					Reason:    "missing product id or non-positive quantity",
				})
				continue
			}
			qty := entry.Quantity
			input := AddItemInput{
				ProductID: entry.ProductID,
				Quantity:  &qty,
				NameEn:    entry.NameEn,
				NameAr:    entry.NameAr,
				Price:     entry.Price,
				ImageURL:  entry.ImageURL,
			}
			if err := applyAdd(record, input, now); err != nil {
				if pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
					report.Skipped = append(report.Skipped, SkippedEntry{
						ProductID: entry.ProductID,
						Reason:    err.Error(),
					})
					skipErrs = append(skipErrs, err)
					continue
				}
				return err
			}
			report.Merged++
		}
		if report.Merged == 0 {
			return errNoChange
		}
		return nil
	})
	report.SkipErr = multierr.Combine(skipErrs...)
	if err != nil {
		return record, report, err
	}
	return record, report, nil
}

// SyncFromGuest merges the guest snapshot into the user cart and clears the
// snapshot once the merge committed.
func (s *service) SyncFromGuest(ctx context.Context, userID uuid.UUID, guestID string) (*models.Cart, *MergeReport, error) {
	entries, err := s.local.Load(ctx, guestID)
	if err != nil {
		return nil, nil, err
	}

	record, report, err := s.Reconcile(ctx, userID, entries)
	if err != nil {
		return record, report, err
	}

	if len(entries) > 0 {
		if clearErr := s.local.Clear(ctx, guestID); clearErr != nil && s.logg != nil {
			// The merge already committed; a dangling snapshot re-merges
			// additively on the next sync, so log and move on.
			s.logg.Error(logCtx(s.logg, ctx, userID, guestID), "clearing guest cart snapshot failed", clearErr)
		}
	}
	return record, report, nil
}

func (s *service) mutate(ctx context.Context, userID uuid.UUID, event enums.OutboxEventType, fn func(record *models.Cart, now time.Time) error) (*models.Cart, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	var saved *models.Cart
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			txRepo := s.repo.WithTx(tx)
			record, err := txRepo.GetOrCreate(ctx, userID)
			if err != nil {
				return err
			}
			now := time.Now()
			if err := fn(record, now); err != nil {
				if errors.Is(err, errNoChange) {
					saved = record
				}
				return err
			}
			refreshAggregate(record, now)
			if err := txRepo.Save(ctx, record); err != nil {
				return err
			}
			if err := s.events.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     event,
				AggregateType: enums.AggregateCart,
				AggregateID:   record.ID,
				Actor:         &outbox.ActorRef{UserID: userID},
				Data: cartEventPayload{
					UserID:     userID.String(),
					TotalItems: record.TotalItems,
					TotalPrice: record.TotalPrice.StringFixed(2),
					Version:    record.Version,
				},
			}); err != nil {
				return err
			}
			saved = record
			return nil
		})
		switch {
		case err == nil:
			return saved, nil
		case errors.Is(err, errNoChange):
			return saved, nil
		case errors.Is(err, ErrVersionConflict):
			continue
		default:
			if typed := pkgerrors.As(err); typed != nil {
				return nil, typed
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart")
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeConflict, "cart is being modified concurrently")
}

// applyAdd folds one add into the cart lines. Incrementing an existing line
// ignores the snapshot fields; a new line requires all of them.
func applyAdd(record *models.Cart, input AddItemInput, now time.Time) error {
	if input.ProductID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	qty := 1
	if input.Quantity != nil {
		qty = *input.Quantity
	}
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	if idx := record.ItemIndex(input.ProductID); idx >= 0 {
		record.Items[idx].Quantity += qty
		return nil
	}

	if strings.TrimSpace(input.NameEn) == "" ||
		strings.TrimSpace(input.NameAr) == "" ||
		strings.TrimSpace(input.ImageURL) == "" ||
		input.Price == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "new cart lines require nameEn, nameAr, price and imageUrl")
	}
	if input.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}

	record.Items = append(record.Items, models.CartItem{
		ID:        uuid.New(),
		CartID:    record.ID,
		ProductID: input.ProductID,
		NameEn:    input.NameEn,
		NameAr:    input.NameAr,
		Price:     *input.Price,
		ImageURL:  input.ImageURL,
		Quantity:  qty,
		AddedAt:   now,
	})
	return nil
}

func logCtx(logg *logger.Logger, ctx context.Context, userID uuid.UUID, guestID string) context.Context {
	ctx = logg.WithUserID(ctx, userID.String())
	return logg.WithGuestID(ctx, guestID)
}
