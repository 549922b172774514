package entity

import (
	"math"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// LineAmounts holds the monetary fields derived for a line
type LineAmounts struct {
	Subtotal       int64
	DiscountAmount int64
	Total          int64
}

// ComputeLineAmounts derives subtotal, discount and total for a line.
// The discount is computed exactly and rounded once, half away from zero,
// so the same inputs always give the same amounts.
func ComputeLineAmounts(unitPrice int64, quantity int, discountPercent decimal.Decimal) LineAmounts {
	subtotal := unitPrice * int64(quantity)
	discount := decimal.NewFromInt(subtotal).Mul(discountPercent).Div(hundred).Round(0).IntPart()
	total := subtotal - discount
	if total < 0 {
		total = 0
	}
	return LineAmounts{Subtotal: subtotal, DiscountAmount: discount, Total: total}
}

// SubtotalOverflows reports whether unitPrice * quantity does not fit in an int64
func SubtotalOverflows(unitPrice int64, quantity int) bool {
	return unitPrice > 0 && int64(quantity) > math.MaxInt64/unitPrice
}

// ValidDiscountPercent reports whether pct lies in [0, 100]
func ValidDiscountPercent(pct decimal.Decimal) bool {
	return !pct.IsNegative() && pct.LessThanOrEqual(hundred)
}

// Totals is the header view of a set of lines
type Totals struct {
	Subtotal int64
	Discount int64
	Total    int64
}

// SumLines adds up the monetary fields of lines. No lines yields zero totals.
func SumLines(lines []InvoiceLine) Totals {
	var t Totals
	for _, l := range lines {
		t.Subtotal += l.Subtotal
		t.Discount += l.DiscountAmount
		t.Total += l.Total
	}
	return t
}
