package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kinaskak/storefront-backend/pkg/db/models"
	pkgerrors "github.com/kinaskak/storefront-backend/pkg/errors"
	"github.com/kinaskak/storefront-backend/pkg/logger"
)

// Service exposes storefront catalog reads.
type Service interface {
	GetProductByHandle(ctx context.Context, handle string) (*ProductDTO, error)
	ListProducts(ctx context.Context) ([]ProductDTO, error)
	ResolveLines(ctx context.Context, refs []LineRef) ([]ResolvedLine, error)
}

type service struct {
	repo *Repository
	logg *logger.Logger
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) GetProductByHandle(ctx context.Context, handle string) (*ProductDTO, error) {
	product, err := s.repo.FindByHandle(ctx, handle)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	dto := toProductDTO(*product)
	return &dto, nil
}

func (s *service) ListProducts(ctx context.Context) ([]ProductDTO, error) {
	products, err := s.repo.ListAvailable(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list products")
	}
	dtos := make([]ProductDTO, 0, len(products))
	for _, product := range products {
		dtos = append(dtos, toProductDTO(product))
	}
	return dtos, nil
}

// ResolveLines joins cart line references with live catalog rows. References
// whose product or variant has been removed are skipped so a stale cart still
// renders; the skip is logged for visibility.
func (s *service) ResolveLines(ctx context.Context, refs []LineRef) ([]ResolvedLine, error) {
	if len(refs) == 0 {
		return nil, nil
	}

	productIDs := make([]uuid.UUID, 0, len(refs))
	variantIDs := make([]uuid.UUID, 0, len(refs))
	seenProducts := map[uuid.UUID]bool{}
	for _, ref := range refs {
		if !seenProducts[ref.ProductID] {
			seenProducts[ref.ProductID] = true
			productIDs = append(productIDs, ref.ProductID)
		}
		variantIDs = append(variantIDs, ref.VariantID)
	}

	products, err := s.repo.FindProductsByIDs(ctx, productIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load products for lines")
	}
	variants, err := s.repo.FindVariantsByIDs(ctx, variantIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load variants for lines")
	}

	productsByID := make(map[uuid.UUID]models.Product, len(products))
	for _, product := range products {
		productsByID[product.ID] = product
	}
	variantsByID := make(map[uuid.UUID]models.ProductVariant, len(variants))
	for _, variant := range variants {
		variantsByID[variant.ID] = variant
	}

	resolved := make([]ResolvedLine, 0, len(refs))
	for _, ref := range refs {
		product, okProduct := productsByID[ref.ProductID]
		variant, okVariant := variantsByID[ref.VariantID]
		if !okProduct || !okVariant || variant.ProductID != ref.ProductID {
			lineCtx := s.logg.WithFields(ctx, map[string]any{
				"product_id": ref.ProductID.String(),
				"variant_id": ref.VariantID.String(),
			})
			s.logg.Warn(lineCtx, "skipping cart line with unresolved catalog reference")
			continue
		}
		resolved = append(resolved, ResolvedLine{
			ProductID:   product.ID,
			VariantID:   variant.ID,
			Handle:      product.Handle,
			ProductName: product.Name,
			VariantName: variant.Name,
			ImageURL:    product.ImageURL,
			UnitPrice:   variant.EffectivePrice(product.BasePrice),
			Quantity:    ref.Quantity,
		})
	}
	return resolved, nil
}
