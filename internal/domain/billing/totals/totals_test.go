package totals

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"stockbook/internal/core/types"
)

func line(qty, price string) Line {
	q, err := types.ParseQuantity(qty)
	if err != nil {
		panic(err)
	}
	return Line{Quantity: q, UnitPrice: types.MustMoney(price)}
}

func TestLineTotal_RoundsPerLine(t *testing.T) {
	// 3 × 0.335 = 1.005, rounds to 1.01 before summing.
	got := LineTotal(line("3", "0.335"))
	assert.True(t, got.Equal(types.MustMoney("1.01")), "got %s", got)
}

func TestLineTotal_FractionalQuantity(t *testing.T) {
	// 2.5 × 4.10 = 10.25
	got := LineTotal(line("2.5", "4.10"))
	assert.True(t, got.Equal(types.MustMoney("10.25")), "got %s", got)
}

func TestSubtotal_SumsRoundedLines(t *testing.T) {
	// Each line rounds to 1.01; the subtotal is the sum of stored line
	// totals (2.02), not round(2 × 1.005) = 2.01.
	got := Subtotal([]Line{line("3", "0.335"), line("3", "0.335")})
	assert.True(t, got.Equal(types.MustMoney("2.02")), "got %s", got)
}

func TestTax_HalfCentRoundsUp(t *testing.T) {
	// 0.1 × 5% = 0.005 → 0.01
	got := Tax(types.MustMoney("0.10"), decimal.NewFromInt(5))
	assert.True(t, got.Equal(types.MustMoney("0.01")), "got %s", got)
}

func TestTax_ZeroRate(t *testing.T) {
	got := Tax(types.MustMoney("100.00"), decimal.Zero)
	assert.True(t, got.IsZero(), "got %s", got)
}

func TestCompute_TaxBaseIncludesExtraCharges(t *testing.T) {
	// subtotal 20.00, extras 3.00, 5% on 23.00 = 1.15, total 24.15
	b := Compute(
		[]Line{line("10", "2.00")},
		[]types.Money{types.MustMoney("3.00")},
		decimal.NewFromInt(5),
	)
	assert.True(t, b.Subtotal.Equal(types.MustMoney("20.00")), "subtotal %s", b.Subtotal)
	assert.True(t, b.ExtraChargesTotal.Equal(types.MustMoney("3.00")), "extras %s", b.ExtraChargesTotal)
	assert.True(t, b.Tax.Equal(types.MustMoney("1.15")), "tax %s", b.Tax)
	assert.True(t, b.Total.Equal(types.MustMoney("24.15")), "total %s", b.Total)
}

func TestCompute_Empty(t *testing.T) {
	b := Compute(nil, nil, DefaultSalesTaxRate)
	assert.True(t, b.Subtotal.IsZero())
	assert.True(t, b.Tax.IsZero())
	assert.True(t, b.Total.IsZero())
}

func TestDefaultRates(t *testing.T) {
	assert.True(t, DefaultSalesTaxRate.Equal(decimal.NewFromInt(10)))
	assert.True(t, DefaultPurchaseTaxRate.IsZero())
}
