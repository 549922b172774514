package entity

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComputeLineAmounts(t *testing.T) {
	tests := []struct {
		name      string
		unitPrice int64
		quantity  int
		pct       string
		want      LineAmounts
	}{
		{"no discount", 1000, 3, "0", LineAmounts{3000, 0, 3000}},
		{"fractional percent", 1000, 3, "12.5", LineAmounts{3000, 375, 2625}},
		{"rounds half away from zero", 1, 1, "50", LineAmounts{1, 1, 0}},
		{"rounds down below half", 333, 1, "10", LineAmounts{333, 33, 300}},
		{"full discount", 999, 2, "100", LineAmounts{1998, 1998, 0}},
		{"free product", 0, 4, "20", LineAmounts{0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeLineAmounts(tt.unitPrice, tt.quantity, decimal.RequireFromString(tt.pct))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeLineAmountsIsReproducible(t *testing.T) {
	pct := decimal.RequireFromString("12.5")
	first := ComputeLineAmounts(1000, 3, pct)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ComputeLineAmounts(1000, 3, pct))
	}
}

func TestValidDiscountPercent(t *testing.T) {
	assert.True(t, ValidDiscountPercent(decimal.Zero))
	assert.True(t, ValidDiscountPercent(decimal.NewFromInt(100)))
	assert.False(t, ValidDiscountPercent(decimal.NewFromInt(-1)))
	assert.False(t, ValidDiscountPercent(decimal.RequireFromString("100.01")))
}

func TestSumLines(t *testing.T) {
	assert.Equal(t, Totals{}, SumLines(nil))

	lines := []InvoiceLine{
		{Subtotal: 3000, DiscountAmount: 375, Total: 2625},
		{Subtotal: 500, DiscountAmount: 0, Total: 500},
	}
	assert.Equal(t, Totals{Subtotal: 3500, Discount: 375, Total: 3125}, SumLines(lines))
}

func TestLineKeyEquality(t *testing.T) {
	seen := map[LineKey]bool{{InvoiceID: 1, LineNumber: 2}: true}
	l := InvoiceLine{InvoiceID: 1, LineNumber: 2}
	assert.True(t, seen[l.Key()])
	assert.False(t, seen[LineKey{InvoiceID: 2, LineNumber: 1}])
	assert.Equal(t, "1/2", l.Key().String())
}

func TestSubtotalOverflows(t *testing.T) {
	assert.False(t, SubtotalOverflows(1000, 3))
	assert.False(t, SubtotalOverflows(0, math.MaxInt32))
	assert.False(t, SubtotalOverflows(math.MaxInt64, 1))
	assert.True(t, SubtotalOverflows(math.MaxInt64, 2))
	assert.True(t, SubtotalOverflows(math.MaxInt64/2+1, 2))
}
