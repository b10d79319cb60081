package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kinaskak/storefront-backend/api/responses"
	catalogsvc "github.com/kinaskak/storefront-backend/internal/catalog"
	pkgerrors "github.com/kinaskak/storefront-backend/pkg/errors"
	"github.com/kinaskak/storefront-backend/pkg/logger"
)

// ListProducts returns the available storefront catalog.
func ListProducts(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		products, err := svc.ListProducts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, products)
	}
}

// GetProduct returns a single product by its URL handle.
func GetProduct(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		handle := strings.TrimSpace(chi.URLParam(r, "handle"))
		if handle == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product handle is required"))
			return
		}

		product, err := svc.GetProductByHandle(r.Context(), handle)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}
