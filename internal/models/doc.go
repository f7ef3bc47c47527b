// Package models defines the storefront's wire and checkout types.
//
// # Wire Models
//
// These mirror the JSON the e-commerce backend returns inside its
// {success, message, data} envelope:
//   - User: the authenticated profile
//   - Product, Category: the public catalog
//   - CartItem: one row of the user's cart
//   - Address: a delivery address
//   - Order, OrderItem: created orders
//
// # Checkout Models
//
// CheckoutLine and AddressGroup only exist client-side, for the duration of
// one checkout flow. They are never persisted.
//
// IDs are the backend's integer primary keys. Zero means "absent".
// Prices use decimal.Decimal so sums never accumulate float rounding error.
package models
