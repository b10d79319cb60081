package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/kinaskak/storefront-backend/api/middleware"
	"github.com/kinaskak/storefront-backend/api/responses"
	"github.com/kinaskak/storefront-backend/api/validators"
	cartsvc "github.com/kinaskak/storefront-backend/internal/cart"
	"github.com/kinaskak/storefront-backend/pkg/config"
	pkgerrors "github.com/kinaskak/storefront-backend/pkg/errors"
	"github.com/kinaskak/storefront-backend/pkg/logger"
)

// ViewCart renders the shopper's cart. A missing or stale cart cookie yields
// an empty cart, never an error.
func ViewCart(svc cartsvc.Service, tokenCfg config.CartTokenConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		requestCartID := middleware.CartIDFromContext(r.Context())
		view, err := svc.View(r.Context(), requestCartID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		refreshCartCookie(r, w, tokenCfg, requestCartID, view, logg)
		responses.WriteSuccess(w, view)
	}
}

// AddCartItem adds quantity to a cart line, creating the durable cart (and
// minting its cookie) on first use.
func AddCartItem(svc cartsvc.Service, tokenCfg config.CartTokenConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quantity := 1
		if payload.Quantity != nil {
			quantity = *payload.Quantity
		}

		requestCartID := middleware.CartIDFromContext(r.Context())
		view, err := svc.AddItem(r.Context(), requestCartID, payload.ProductID, payload.VariantID, quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		refreshCartCookie(r, w, tokenCfg, requestCartID, view, logg)
		responses.WriteSuccess(w, view)
	}
}

// UpdateCartItem sets a cart line to an absolute quantity; zero removes it.
func UpdateCartItem(svc cartsvc.Service, tokenCfg config.CartTokenConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var payload updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		requestCartID := middleware.CartIDFromContext(r.Context())
		view, err := svc.SetItemQuantity(r.Context(), requestCartID, payload.VariantID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		refreshCartCookie(r, w, tokenCfg, requestCartID, view, logg)
		responses.WriteSuccess(w, view)
	}
}

// RemoveCartItem deletes a cart line. Removing an absent line is a no-op.
func RemoveCartItem(svc cartsvc.Service, tokenCfg config.CartTokenConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var payload removeCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		requestCartID := middleware.CartIDFromContext(r.Context())
		view, err := svc.RemoveItem(r.Context(), requestCartID, payload.VariantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		refreshCartCookie(r, w, tokenCfg, requestCartID, view, logg)
		responses.WriteSuccess(w, view)
	}
}

type addCartItemRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	VariantID uuid.UUID `json:"variantId" validate:"required"`
	Quantity  *int      `json:"quantity,omitempty" validate:"omitempty,min=1"`
}

type updateCartItemRequest struct {
	VariantID uuid.UUID `json:"variantId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"min=0"`
}

type removeCartItemRequest struct {
	VariantID uuid.UUID `json:"variantId" validate:"required"`
}

// refreshCartCookie keeps the signed cookie in step with the response cart:
// a fresh cart id mints a new cookie, a stale id gets cleared, an unchanged
// id is left alone. A mint failure is logged; the request already succeeded.
func refreshCartCookie(r *http.Request, w http.ResponseWriter, tokenCfg config.CartTokenConfig, requestCartID *uuid.UUID, view *cartsvc.CartDTO, logg *logger.Logger) {
	if view == nil || view.ID == nil {
		if requestCartID != nil {
			middleware.ClearCartCookie(w, tokenCfg)
		}
		return
	}
	if requestCartID != nil && *requestCartID == *view.ID {
		return
	}
	if err := middleware.SetCartCookie(w, tokenCfg, *view.ID); err != nil && logg != nil {
		logg.Error(r.Context(), "failed to set cart cookie", err)
	}
}
