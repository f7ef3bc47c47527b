package models

import "github.com/shopspring/decimal"

// CheckoutLine is one cart entry staged for order creation.
//
// A line is valid only when ProductID and Quantity are both positive.
// Invalid lines are dropped before grouping, never coerced.
type CheckoutLine struct {
	CartItemID  int64
	ProductID   int64
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int

	// AddressID is zero when the line has no delivery address yet.
	AddressID int64

	// AddressSnapshot is the address as it was when the item was carted.
	AddressSnapshot *Address

	Notes string
}

// Valid reports whether the line satisfies the checkout invariants.
func (l CheckoutLine) Valid() bool {
	return l.ProductID > 0 && l.Quantity > 0
}

// AddressGroup buckets checkout lines that share a delivery address.
// One order is created per group.
type AddressGroup struct {
	// Key is the address id in decimal, or the no-address sentinel.
	Key string

	// AddressID is the address the lines were carted with; zero for the sentinel group.
	AddressID int64

	// SelectedAddress is the address the order will ship to. Nil until selected.
	SelectedAddress *Address

	// Lines keep the order in which they were staged.
	Lines []CheckoutLine

	// Subtotal is the unrounded sum of UnitPrice × Quantity over Lines.
	Subtotal decimal.Decimal
}
