package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func line(price string, qty int) Line {
	return Line{
		ProductID: uuid.New(),
		VariantID: uuid.New(),
		UnitPrice: decimal.RequireFromString(price),
		Quantity:  qty,
	}
}

func TestComputeSingleLine(t *testing.T) {
	totals := Compute([]Line{line("2000.00", 1)})

	if got := FormatAmount(totals.Subtotal); got != "2000.00" {
		t.Fatalf("subtotal = %s, want 2000.00", got)
	}
	if got := FormatAmount(totals.Tax); got != "387.10" {
		t.Fatalf("tax = %s, want 387.10", got)
	}
	if got := FormatAmount(totals.Total); got != "2000.00" {
		t.Fatalf("total = %s, want 2000.00", got)
	}
}

func TestComputeMultipleLines(t *testing.T) {
	totals := Compute([]Line{
		line("1500.00", 2),
		line("499.50", 3),
	})

	// 2*1500 + 3*499.50 = 4498.50
	if got := FormatAmount(totals.Subtotal); got != "4498.50" {
		t.Fatalf("subtotal = %s, want 4498.50", got)
	}
	// 4498.50 - 4498.50/1.24 = 870.68 (rounded)
	if got := FormatAmount(totals.Tax); got != "870.68" {
		t.Fatalf("tax = %s, want 870.68", got)
	}
	if !totals.Total.Equal(totals.Subtotal) {
		t.Fatalf("total %s should equal subtotal %s", totals.Total, totals.Subtotal)
	}
	if totals.TotalQuantity != 5 {
		t.Fatalf("total quantity = %d, want 5", totals.TotalQuantity)
	}
}

func TestComputeEmptyCart(t *testing.T) {
	totals := Compute(nil)

	if got := FormatAmount(totals.Subtotal); got != "0.00" {
		t.Fatalf("subtotal = %s, want 0.00", got)
	}
	if got := FormatAmount(totals.Tax); got != "0.00" {
		t.Fatalf("tax = %s, want 0.00", got)
	}
	if got := FormatAmount(totals.Total); got != "0.00" {
		t.Fatalf("total = %s, want 0.00", got)
	}
	if totals.TotalQuantity != 0 {
		t.Fatalf("total quantity = %d, want 0", totals.TotalQuantity)
	}
}

func TestComputeSkipsNonPositiveQuantities(t *testing.T) {
	totals := Compute([]Line{
		line("1000.00", 1),
		line("9999.00", 0),
		line("9999.00", -2),
	})

	if got := FormatAmount(totals.Subtotal); got != "1000.00" {
		t.Fatalf("subtotal = %s, want 1000.00", got)
	}
	if totals.TotalQuantity != 1 {
		t.Fatalf("total quantity = %d, want 1", totals.TotalQuantity)
	}
}

func TestTaxNeverExceedsSubtotal(t *testing.T) {
	cases := []string{"0.01", "1.00", "123.45", "2000.00", "999999.99"}
	for _, price := range cases {
		totals := Compute([]Line{line(price, 1)})
		if totals.Tax.GreaterThan(totals.Subtotal) {
			t.Errorf("price %s: tax %s exceeds subtotal %s", price, totals.Tax, totals.Subtotal)
		}
		if totals.Tax.IsNegative() {
			t.Errorf("price %s: negative tax %s", price, totals.Tax)
		}
	}
}

func TestLineTotal(t *testing.T) {
	l := line("250.00", 4)
	if got := FormatAmount(l.LineTotal()); got != "1000.00" {
		t.Fatalf("line total = %s, want 1000.00", got)
	}
}
