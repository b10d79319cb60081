package controllers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kinaskak/storefront-backend/api/middleware"
	"github.com/kinaskak/storefront-backend/api/responses"
	"github.com/kinaskak/storefront-backend/api/validators"
	checkoutsvc "github.com/kinaskak/storefront-backend/internal/checkout"
	"github.com/kinaskak/storefront-backend/pkg/config"
	"github.com/kinaskak/storefront-backend/pkg/enums"
	pkgerrors "github.com/kinaskak/storefront-backend/pkg/errors"
	"github.com/kinaskak/storefront-backend/pkg/logger"
)

// StartCheckout validates the shipping form and hands the cart off to the
// hosted payment page. The cart cookie is cleared on success so the shopper
// starts a fresh cart when they return.
func StartCheckout(svc checkoutsvc.Service, tokenCfg config.CartTokenConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		// Field validation happens in the service so the storefront's
		// user-facing messages come back; the controller only parses JSON.
		var details checkoutsvc.ShippingDetails
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&details); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body"))
			return
		}

		result, err := svc.Start(r.Context(), middleware.CartIDFromContext(r.Context()), details)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		middleware.ClearCartCookie(w, tokenCfg)
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// UpdateCheckoutStatus transitions a checkout record out of pending when the
// shopper returns from the hosted page.
func UpdateCheckoutStatus(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload updateCheckoutStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := svc.UpdateStatus(r.Context(), payload.CheckoutID, enums.CheckoutStatus(payload.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, status)
	}
}

// GetCheckoutStatus returns the lifecycle view of a checkout record.
func GetCheckoutStatus(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		checkoutID, err := uuid.Parse(checkoutIDParam(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid checkout id"))
			return
		}

		status, err := svc.GetStatus(r.Context(), checkoutID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, status)
	}
}

func checkoutIDParam(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "id"))
}

type updateCheckoutStatusRequest struct {
	CheckoutID uuid.UUID `json:"checkoutId" validate:"required"`
	Status     string    `json:"status" validate:"required"`
}
