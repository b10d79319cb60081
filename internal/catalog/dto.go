package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kinaskak/storefront-backend/internal/pricing"
	"github.com/kinaskak/storefront-backend/pkg/db/models"
)

// ProductDTO is the storefront-facing product shape.
type ProductDTO struct {
	ID          uuid.UUID    `json:"id"`
	Handle      string       `json:"handle"`
	Name        string       `json:"name"`
	Description *string      `json:"description,omitempty"`
	Price       string       `json:"price"`
	IsAvailable bool         `json:"isAvailable"`
	ImageURL    *string      `json:"imageUrl,omitempty"`
	Variants    []VariantDTO `json:"variants"`
}

// VariantDTO is one purchasable option of a product with its effective price.
type VariantDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Price       string    `json:"price"`
	IsAvailable bool      `json:"isAvailable"`
}

func toProductDTO(product models.Product) ProductDTO {
	dto := ProductDTO{
		ID:          product.ID,
		Handle:      product.Handle,
		Name:        product.Name,
		Description: product.Description,
		Price:       pricing.FormatAmount(product.BasePrice),
		IsAvailable: product.IsAvailable,
		ImageURL:    product.ImageURL,
		Variants:    make([]VariantDTO, 0, len(product.Variants)),
	}
	for _, variant := range product.Variants {
		dto.Variants = append(dto.Variants, VariantDTO{
			ID:          variant.ID,
			Name:        variant.Name,
			Price:       pricing.FormatAmount(variant.EffectivePrice(product.BasePrice)),
			IsAvailable: variant.IsAvailable,
		})
	}
	return dto
}

// LineRef identifies a cart line to be priced against the live catalog.
type LineRef struct {
	ProductID uuid.UUID
	VariantID uuid.UUID
	Quantity  int
}

// ResolvedLine is a cart line joined with current catalog data. Lines whose
// product or variant no longer resolves are dropped, not errored.
type ResolvedLine struct {
	ProductID   uuid.UUID
	VariantID   uuid.UUID
	Handle      string
	ProductName string
	VariantName string
	ImageURL    *string
	UnitPrice   decimal.Decimal
	Quantity    int
}

// PricingLine converts the resolved line to the pricing engine's input shape.
func (l ResolvedLine) PricingLine() pricing.Line {
	return pricing.Line{
		ProductID: l.ProductID,
		VariantID: l.VariantID,
		UnitPrice: l.UnitPrice,
		Quantity:  l.Quantity,
	}
}
