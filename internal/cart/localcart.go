package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wardshop/ward-backend/pkg/config"
	pkgerrors "github.com/wardshop/ward-backend/pkg/errors"
	"github.com/wardshop/ward-backend/pkg/redis"
)

// LocalCartEntry is one line of a guest cart snapshot as the storefront
// serializes it. Price may be absent for entries that only bump quantity.
type LocalCartEntry struct {
	ProductID int64            `json:"id"`
	NameEn    string           `json:"nameEn,omitempty"`
	NameAr    string           `json:"nameAr,omitempty"`
	Price     *decimal.Decimal `json:"price,omitempty"`
	ImageURL  string           `json:"imageUrl,omitempty"`
	Quantity  int              `json:"quantity"`
}

// snapshotKV is the slice of the redis client the local store needs.
type snapshotKV interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	GuestCartKey(guestID string) string
}

type localStore struct {
	kv         snapshotKV
	ttl        time.Duration
	maxEntries int
}

// NewLocalStore builds the redis-backed guest snapshot store.
func NewLocalStore(kv snapshotKV, cfg config.GuestCartConfig) (LocalStore, error) {
	if kv == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("guest cart ttl must be positive")
	}
	if cfg.MaxEntries <= 0 {
		return nil, fmt.Errorf("guest cart max entries must be positive")
	}
	return &localStore{kv: kv, ttl: cfg.TTL, maxEntries: cfg.MaxEntries}, nil
}

// Load returns the snapshot for the guest session, or nil when none exists.
func (s *localStore) Load(ctx context.Context, guestID string) ([]LocalCartEntry, error) {
	key, err := s.key(guestID)
	if err != nil {
		return nil, err
	}

	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load guest cart")
	}

	var entries []LocalCartEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode guest cart snapshot")
	}
	return entries, nil
}

// Save replaces the snapshot, refreshing its TTL.
func (s *localStore) Save(ctx context.Context, guestID string, entries []LocalCartEntry) error {
	key, err := s.key(guestID)
	if err != nil {
		return err
	}
	if len(entries) > s.maxEntries {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("guest cart exceeds %d entries", s.maxEntries))
	}

	payload, err := json.Marshal(entries)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode guest cart snapshot")
	}
	if err := s.kv.Set(ctx, key, payload, s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save guest cart")
	}
	return nil
}

// Clear deletes the snapshot. Clearing an absent snapshot is a no-op.
func (s *localStore) Clear(ctx context.Context, guestID string) error {
	key, err := s.key(guestID)
	if err != nil {
		return err
	}
	if err := s.kv.Del(ctx, key); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear guest cart")
	}
	return nil
}

func (s *localStore) key(guestID string) (string, error) {
	if strings.TrimSpace(guestID) == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "guest session id is required")
	}
	return s.kv.GuestCartKey(guestID), nil
}
