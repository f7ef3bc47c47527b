package models

import "github.com/shopspring/decimal"

// CartItem is one row of the cart list endpoint.
type CartItem struct {
	ID int64 `json:"id"`

	// ProductRef is the product's primary key as the cart serializer names it.
	// Some backend versions send ProductID instead; use Product() to read it.
	ProductRef   int64           `json:"product"`
	ProductID    int64           `json:"product_id,omitempty"`
	ProductName  string          `json:"product_name"`
	ProductPrice decimal.Decimal `json:"product_price"`
	ProductImage string          `json:"product_image,omitempty"`
	ProductSKU   string          `json:"product_sku,omitempty"`

	Quantity int `json:"quantity"`

	// AddressID is the delivery address chosen when the item was added. Zero when none.
	AddressID   int64    `json:"address,omitempty"`
	AddressInfo *Address `json:"address_info,omitempty"`

	Notes string `json:"notes,omitempty"`
}

// Product returns the product id, preferring product_id over product.
func (c CartItem) Product() int64 {
	if c.ProductID != 0 {
		return c.ProductID
	}
	return c.ProductRef
}

// AddCartItem is the body of the cart create endpoint.
type AddCartItem struct {
	ProductID int64  `json:"product"`
	Quantity  int    `json:"quantity"`
	AddressID *int64 `json:"address"`
	Notes     string `json:"notes"`
}
