// Package totals computes bill monetary totals.
// Shared by the sales and purchase transaction services; pure functions,
// no storage access.
package totals

import (
	"stockbook/internal/core/types"

	"github.com/shopspring/decimal"
)

// Default tax rates when the caller does not supply one.
var (
	DefaultSalesTaxRate    = decimal.NewFromInt(10)
	DefaultPurchaseTaxRate = decimal.Zero
)

// Line is one bill line for subtotal purposes.
type Line struct {
	Quantity  types.Quantity
	UnitPrice types.Money
}

// LineTotal returns quantity × unit price rounded to currency granularity.
// Rounding happens per line, before summing, so the stored line totals
// always add up to the stored subtotal.
func LineTotal(l Line) types.Money {
	return types.Round2(l.Quantity.Decimal().Mul(l.UnitPrice))
}

// Subtotal sums rounded line totals.
func Subtotal(lines []Line) types.Money {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(LineTotal(l))
	}
	return sum
}

// ExtraChargesTotal sums extra charge amounts.
func ExtraChargesTotal(amounts []types.Money) types.Money {
	sum := decimal.Zero
	for _, a := range amounts {
		sum = sum.Add(a)
	}
	return sum
}

// Tax computes round(base × rate / 100, 2).
//
// The tax base is subtotal + extra charges for both bill types: tax is
// charged on goods plus extras, not on the goods subtotal alone.
func Tax(base, rate types.Money) types.Money {
	return types.Round2(base.Mul(rate).Div(decimal.NewFromInt(100)))
}

// Breakdown holds every derived total of a bill.
type Breakdown struct {
	Subtotal          types.Money
	ExtraChargesTotal types.Money
	Tax               types.Money
	Total             types.Money
}

// Compute derives all totals for a bill in one pass.
// Grand total = subtotal + extra charges + tax.
func Compute(lines []Line, charges []types.Money, taxRate types.Money) Breakdown {
	sub := Subtotal(lines)
	extra := ExtraChargesTotal(charges)
	tax := Tax(sub.Add(extra), taxRate)
	return Breakdown{
		Subtotal:          sub,
		ExtraChargesTotal: extra,
		Tax:               tax,
		Total:             sub.Add(extra).Add(tax),
	}
}
