package controllers

import (
	"net/http"

	"github.com/wardshop/ward-backend/api/middleware"
	"github.com/wardshop/ward-backend/api/responses"
	"github.com/wardshop/ward-backend/api/validators"
	cartsvc "github.com/wardshop/ward-backend/internal/cart"
	pkgerrors "github.com/wardshop/ward-backend/pkg/errors"
	"github.com/wardshop/ward-backend/pkg/logger"
)

type guestCartResponse struct {
	Items []cartsvc.LocalCartEntry `json:"items"`
}

// GuestCartGet returns the guest snapshot, empty when none exists.
func GuestCartGet(store cartsvc.LocalStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guestID, err := guestIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, err := store.Load(r.Context(), guestID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if entries == nil {
			entries = []cartsvc.LocalCartEntry{}
		}
		responses.WriteSuccess(w, guestCartResponse{Items: entries})
	}
}

type putGuestCartRequest struct {
	Items []cartsvc.LocalCartEntry `json:"items" validate:"required"`
}

// GuestCartPut replaces the guest snapshot wholesale and refreshes its TTL.
func GuestCartPut(store cartsvc.LocalStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guestID, err := guestIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload putGuestCartRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := store.Save(r.Context(), guestID, payload.Items); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, guestCartResponse{Items: payload.Items})
	}
}

// GuestCartDelete clears the guest snapshot.
func GuestCartDelete(store cartsvc.LocalStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guestID, err := guestIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := store.Clear(r.Context(), guestID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "cleared"})
	}
}

func guestIDFromRequest(r *http.Request) (string, error) {
	guestID := middleware.GuestIDFromContext(r.Context())
	if guestID == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing guest session")
	}
	return guestID, nil
}
