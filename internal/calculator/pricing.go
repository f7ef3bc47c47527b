// Package calculator holds the money math used by checkout.
//
// Amounts are accumulated exactly with decimal.Decimal; rounding to two
// places happens only in Format, at presentation time.
package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/storefront/internal/models"
)

// LineTotal computes price × quantity without rounding.
func LineTotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}

// Subtotal sums LineTotal over lines.
// Based on: subtotal = Σ unit_price × quantity
func Subtotal(lines []models.CheckoutLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(LineTotal(l.UnitPrice, l.Quantity))
	}
	return sum
}

// Total sums the subtotals of all groups.
func Total(groups []models.AddressGroup) decimal.Decimal {
	sum := decimal.Zero
	for _, g := range groups {
		sum = sum.Add(g.Subtotal)
	}
	return sum
}

// Format renders an amount with exactly two decimal places, rounding half
// away from zero.
func Format(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
