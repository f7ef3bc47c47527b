package models

import "github.com/shopspring/decimal"

// Product is a catalog entry. The list endpoint fills PrimaryImage; the
// detail endpoint fills Images.
type Product struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	SKU          string          `json:"sku,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock"`
	CategoryID   int64           `json:"category,omitempty"`
	CategoryName string          `json:"category_name,omitempty"`
	IsFeatured   bool            `json:"is_featured"`
	PrimaryImage string          `json:"primary_image,omitempty"`
	Images       []ProductImage  `json:"images,omitempty"`
}

// ProductImage is one image of a product.
type ProductImage struct {
	ID        int64  `json:"id"`
	Image     string `json:"image"`
	IsPrimary bool   `json:"is_primary"`
}

// Category groups products.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ProductFilter holds the query parameters of the product list endpoint.
// Zero values are not sent.
type ProductFilter struct {
	CategoryID int64
	Search     string
	// Featured restricts the list to featured products when true.
	Featured bool
}
