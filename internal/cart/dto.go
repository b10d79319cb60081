package cart

import (
	"github.com/google/uuid"

	"github.com/kinaskak/storefront-backend/internal/catalog"
	"github.com/kinaskak/storefront-backend/internal/pricing"
)

// CartDTO is the storefront cart view: durable lines joined with live catalog
// prices, plus recomputed totals. ID is nil until the first mutation creates
// a durable cart.
type CartDTO struct {
	ID            *uuid.UUID    `json:"id"`
	Items         []CartLineDTO `json:"items"`
	TotalQuantity int           `json:"totalQuantity"`
	Subtotal      string        `json:"subtotal"`
	Tax           string        `json:"tax"`
	Total         string        `json:"total"`
	Currency      string        `json:"currency"`
}

// CartLineDTO is one rendered cart line.
type CartLineDTO struct {
	ProductID   uuid.UUID `json:"productId"`
	VariantID   uuid.UUID `json:"variantId"`
	Handle      string    `json:"handle"`
	Name        string    `json:"name"`
	VariantName string    `json:"variantName"`
	ImageURL    *string   `json:"imageUrl,omitempty"`
	UnitPrice   string    `json:"unitPrice"`
	Quantity    int       `json:"quantity"`
	LineTotal   string    `json:"lineTotal"`
}

func emptyCartDTO(currency string) *CartDTO {
	totals := pricing.Compute(nil)
	return &CartDTO{
		Items:         []CartLineDTO{},
		TotalQuantity: totals.TotalQuantity,
		Subtotal:      pricing.FormatAmount(totals.Subtotal),
		Tax:           pricing.FormatAmount(totals.Tax),
		Total:         pricing.FormatAmount(totals.Total),
		Currency:      currency,
	}
}

func buildCartDTO(cartID uuid.UUID, resolved []catalog.ResolvedLine, currency string) *CartDTO {
	lines := make([]pricing.Line, 0, len(resolved))
	items := make([]CartLineDTO, 0, len(resolved))
	for _, line := range resolved {
		lines = append(lines, line.PricingLine())
		items = append(items, CartLineDTO{
			ProductID:   line.ProductID,
			VariantID:   line.VariantID,
			Handle:      line.Handle,
			Name:        line.ProductName,
			VariantName: line.VariantName,
			ImageURL:    line.ImageURL,
			UnitPrice:   pricing.FormatAmount(line.UnitPrice),
			Quantity:    line.Quantity,
			LineTotal:   pricing.FormatAmount(line.PricingLine().LineTotal()),
		})
	}
	totals := pricing.Compute(lines)
	id := cartID
	return &CartDTO{
		ID:            &id,
		Items:         items,
		TotalQuantity: totals.TotalQuantity,
		Subtotal:      pricing.FormatAmount(totals.Subtotal),
		Tax:           pricing.FormatAmount(totals.Tax),
		Total:         pricing.FormatAmount(totals.Total),
		Currency:      currency,
	}
}
