package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGuestRequiresHeader(t *testing.T) {
	t.Parallel()

	handler := Guest(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without a guest session")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/guest/cart", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestGuestRejectsOversizedID(t *testing.T) {
	t.Parallel()

	handler := Guest(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run with an oversized guest id")
	}))

	r := httptest.NewRequest(http.MethodGet, "/api/v1/guest/cart", nil)
	r.Header.Set("X-Guest-Session", strings.Repeat("a", maxGuestIDLength+1))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestGuestSeedsContext(t *testing.T) {
	t.Parallel()

	var seen string
	handler := Guest(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GuestIDFromContext(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/api/v1/guest/cart", nil)
	r.Header.Set("X-Guest-Session", "guest-123")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if seen != "guest-123" {
		t.Fatalf("expected guest id in context, got %q", seen)
	}
}

func TestOptionalGuestPassesThroughWithoutHeader(t *testing.T) {
	t.Parallel()

	var called bool
	handler := OptionalGuest(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if got := GuestIDFromContext(r.Context()); got != "" {
			t.Fatalf("expected empty guest id, got %q", got)
		}
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/cart/sync", nil))

	if !called {
		t.Fatal("handler must run without a guest session")
	}
}
