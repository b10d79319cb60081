package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/kinaskak/storefront-backend/internal/catalog"
	pkgerrors "github.com/kinaskak/storefront-backend/pkg/errors"
	"github.com/kinaskak/storefront-backend/pkg/logger"
)

// Service keeps the shopper's durable cart in sync with the catalog and
// renders the priced cart view. A nil or stale cart id always yields an empty
// cart; mutations create the durable cart on first use.
type Service interface {
	View(ctx context.Context, cartID *uuid.UUID) (*CartDTO, error)
	AddItem(ctx context.Context, cartID *uuid.UUID, productID, variantID uuid.UUID, quantity int) (*CartDTO, error)
	SetItemQuantity(ctx context.Context, cartID *uuid.UUID, variantID uuid.UUID, quantity int) (*CartDTO, error)
	RemoveItem(ctx context.Context, cartID *uuid.UUID, variantID uuid.UUID) (*CartDTO, error)
}

type service struct {
	store    Store
	catalog  catalog.Service
	currency string
	logg     *logger.Logger
}

// NewService constructs the cart service. The currency labels the cart view's
// totals; amounts themselves are currency-agnostic.
func NewService(store Store, catalogSvc catalog.Service, currency string, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if catalogSvc == nil {
		return nil, fmt.Errorf("catalog service required")
	}
	if currency == "" {
		return nil, fmt.Errorf("currency required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{store: store, catalog: catalogSvc, currency: currency, logg: logg}, nil
}

// View renders the cart. Lines whose catalog reference no longer resolves are
// dropped from the view without failing the request.
func (s *service) View(ctx context.Context, cartID *uuid.UUID) (*CartDTO, error) {
	id, ok, err := s.resolveCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return emptyCartDTO(s.currency), nil
	}
	return s.render(ctx, id)
}

func (s *service) AddItem(ctx context.Context, cartID *uuid.UUID, productID, variantID uuid.UUID, quantity int) (*CartDTO, error) {
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	resolved, err := s.catalog.ResolveLines(ctx, []catalog.LineRef{
		{ProductID: productID, VariantID: variantID, Quantity: quantity},
	})
	if err != nil {
		return nil, err
	}
	if len(resolved) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product variant not found")
	}

	id, err := s.ensureCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if err := s.store.AddItem(ctx, id, productID, variantID, quantity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: add cart item")
	}
	return s.render(ctx, id)
}

// SetItemQuantity sets the line to an absolute quantity. Zero or less removes
// the line. A stale cart id is treated as an empty cart, not an error.
func (s *service) SetItemQuantity(ctx context.Context, cartID *uuid.UUID, variantID uuid.UUID, quantity int) (*CartDTO, error) {
	id, ok, err := s.resolveCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return emptyCartDTO(s.currency), nil
	}
	if err := s.store.SetItemQuantity(ctx, id, variantID, quantity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update cart item")
	}
	return s.render(ctx, id)
}

func (s *service) RemoveItem(ctx context.Context, cartID *uuid.UUID, variantID uuid.UUID) (*CartDTO, error) {
	id, ok, err := s.resolveCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return emptyCartDTO(s.currency), nil
	}
	if err := s.store.RemoveItem(ctx, id, variantID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: remove cart item")
	}
	return s.render(ctx, id)
}

// resolveCart reports whether the id points at an active cart. Converted and
// unknown carts both read as "no cart".
func (s *service) resolveCart(ctx context.Context, cartID *uuid.UUID) (uuid.UUID, bool, error) {
	if cartID == nil {
		return uuid.Nil, false, nil
	}
	found, err := s.store.FindCart(ctx, *cartID)
	if err != nil {
		if errors.Is(err, ErrCartNotFound) {
			return uuid.Nil, false, nil
		}
		return uuid.Nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart")
	}
	if !found.Status.IsOpen() {
		return uuid.Nil, false, nil
	}
	return found.ID, true, nil
}

// ensureCart returns the active cart's id, creating a fresh cart when the
// shopper has none or carries a stale id.
func (s *service) ensureCart(ctx context.Context, cartID *uuid.UUID) (uuid.UUID, error) {
	id, ok, err := s.resolveCart(ctx, cartID)
	if err != nil {
		return uuid.Nil, err
	}
	if ok {
		return id, nil
	}
	created, err := s.store.CreateCart(ctx)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: create cart")
	}
	ctx = s.logg.WithCartID(ctx, created.ID.String())
	s.logg.Info(ctx, "created cart")
	return created.ID, nil
}

func (s *service) render(ctx context.Context, cartID uuid.UUID) (*CartDTO, error) {
	items, err := s.store.GetItems(ctx, cartID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart items")
	}
	refs := make([]catalog.LineRef, 0, len(items))
	for _, item := range items {
		refs = append(refs, catalog.LineRef{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		})
	}
	resolved, err := s.catalog.ResolveLines(ctx, refs)
	if err != nil {
		return nil, err
	}
	return buildCartDTO(cartID, resolved, s.currency), nil
}
