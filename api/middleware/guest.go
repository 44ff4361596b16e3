package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/wardshop/ward-backend/api/responses"
	pkgerrors "github.com/wardshop/ward-backend/pkg/errors"
	"github.com/wardshop/ward-backend/pkg/logger"
)

const guestSessionHeader = "X-Guest-Session"

// maxGuestIDLength bounds the opaque session id so the redis keyspace cannot
// be abused with arbitrary payloads.
const maxGuestIDLength = 128

// Guest requires an opaque guest session header and seeds the request context
// with it. The id is never minted server-side; the storefront owns it.
func Guest(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			guestID := strings.TrimSpace(r.Header.Get(guestSessionHeader))
			if guestID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing guest session"))
				return
			}
			if len(guestID) > maxGuestIDLength {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "guest session id too long"))
				return
			}

			ctx := context.WithValue(r.Context(), ctxGuestID, guestID)
			if logg != nil {
				ctx = logg.WithGuestID(ctx, guestID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalGuest seeds the guest id when the header is present but lets the
// request through either way. The sync endpoint uses it to merge snapshots
// for freshly signed-in users.
func OptionalGuest(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			guestID := strings.TrimSpace(r.Header.Get(guestSessionHeader))
			if guestID == "" || len(guestID) > maxGuestIDLength {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ctxGuestID, guestID)
			if logg != nil {
				ctx = logg.WithGuestID(ctx, guestID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
