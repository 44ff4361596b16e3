package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/wardshop/ward-backend/api/middleware"
	cartsvc "github.com/wardshop/ward-backend/internal/cart"
	pkgerrors "github.com/wardshop/ward-backend/pkg/errors"
)

type stubLocalStore struct {
	entries map[string][]cartsvc.LocalCartEntry
	err     error
}

func newStubLocalStore() *stubLocalStore {
	return &stubLocalStore{entries: map[string][]cartsvc.LocalCartEntry{}}
}

func (s *stubLocalStore) Load(ctx context.Context, guestID string) ([]cartsvc.LocalCartEntry, error) {
	return s.entries[guestID], s.err
}

func (s *stubLocalStore) Save(ctx context.Context, guestID string, entries []cartsvc.LocalCartEntry) error {
	if s.err != nil {
		return s.err
	}
	s.entries[guestID] = entries
	return nil
}

func (s *stubLocalStore) Clear(ctx context.Context, guestID string) error {
	delete(s.entries, guestID)
	return s.err
}

func guestRequest(method, target, guestID, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	if guestID != "" {
		req = req.WithContext(middleware.WithGuestID(req.Context(), guestID))
	}
	return req
}

func TestGuestCartGetEmptySnapshot(t *testing.T) {
	handler := GuestCartGet(newStubLocalStore(), nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, guestRequest(http.MethodGet, "/api/v1/guest/cart", "guest-1", ""))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data guestCartResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Items == nil || len(envelope.Data.Items) != 0 {
		t.Fatalf("expected empty items array, got %+v", envelope.Data.Items)
	}
}

func TestGuestCartPutRoundTrip(t *testing.T) {
	store := newStubLocalStore()
	put := GuestCartPut(store, nil)

	body := `{"items":[{"id":7,"nameEn":"Rose","nameAr":"وردة","price":50,"imageUrl":"x","quantity":2}]}`
	resp := httptest.NewRecorder()
	put.ServeHTTP(resp, guestRequest(http.MethodPut, "/api/v1/guest/cart", "guest-1", body))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	saved := store.entries["guest-1"]
	if len(saved) != 1 || saved[0].ProductID != 7 || saved[0].Quantity != 2 {
		t.Fatalf("unexpected saved snapshot: %+v", saved)
	}
	if saved[0].Price == nil || !saved[0].Price.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("price not preserved: %+v", saved[0].Price)
	}
}

func TestGuestCartDelete(t *testing.T) {
	store := newStubLocalStore()
	store.entries["guest-1"] = []cartsvc.LocalCartEntry{{ProductID: 1, Quantity: 1}}
	handler := GuestCartDelete(store, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, guestRequest(http.MethodDelete, "/api/v1/guest/cart", "guest-1", ""))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if _, ok := store.entries["guest-1"]; ok {
		t.Fatal("snapshot not cleared")
	}
}

func TestGuestCartRequiresSession(t *testing.T) {
	handler := GuestCartGet(newStubLocalStore(), nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, guestRequest(http.MethodGet, "/api/v1/guest/cart", "", ""))

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestGuestCartPutSurfacesStoreErrors(t *testing.T) {
	store := newStubLocalStore()
	store.err = pkgerrors.New(pkgerrors.CodeValidation, "guest cart exceeds 200 entries")
	handler := GuestCartPut(store, nil)

	body := `{"items":[{"id":1,"quantity":1}]}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, guestRequest(http.MethodPut, "/api/v1/guest/cart", "guest-1", body))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
