// Package pricing computes cart and checkout totals. Prices are VAT-inclusive
// (Icelandic standard rate), so the tax figure is carved out of the subtotal
// rather than added on top.
package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VATRate is the Icelandic standard VAT rate applied to all catalog items.
var VATRate = decimal.NewFromFloat(0.24)

var one = decimal.NewFromInt(1)

// Line is one priced cart line: the variant's effective unit price at the time
// of computation and the quantity held in the cart.
type Line struct {
	ProductID uuid.UUID
	VariantID uuid.UUID
	UnitPrice decimal.Decimal
	Quantity  int
}

// LineTotal is the extended price for the line.
func (l Line) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Totals is the result of pricing a set of lines. Total equals Subtotal
// because VAT is already included in unit prices. TotalQuantity is the sum of
// line quantities, counting only lines that contributed to the subtotal.
type Totals struct {
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	Total         decimal.Decimal
	TotalQuantity int
}

// Compute prices the given lines. Lines with non-positive quantity contribute
// nothing. Tax is the included VAT portion: S - S/(1+rate), rounded to 2
// decimal places.
func Compute(lines []Line) Totals {
	subtotal := decimal.Zero
	totalQuantity := 0
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		subtotal = subtotal.Add(line.LineTotal())
		totalQuantity += line.Quantity
	}
	subtotal = subtotal.Round(2)
	tax := subtotal.Sub(subtotal.Div(one.Add(VATRate))).Round(2)
	return Totals{
		Subtotal:      subtotal,
		Tax:           tax,
		Total:         subtotal,
		TotalQuantity: totalQuantity,
	}
}

// FormatAmount renders a monetary value the way the API and the payment
// provider expect it: fixed two decimal places.
func FormatAmount(value decimal.Decimal) string {
	return value.StringFixed(2)
}
