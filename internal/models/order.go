package models

import "github.com/shopspring/decimal"

// Order is a created order. The client only relies on ID; the remaining
// fields are informational.
type Order struct {
	ID          int64           `json:"id"`
	OrderNo     string          `json:"order_no,omitempty"`
	Status      string          `json:"status,omitempty"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	AddressID   int64           `json:"address_id,omitempty"`
	Remark      string          `json:"remark,omitempty"`
	Items       []OrderItem     `json:"items,omitempty"`
	CreatedAt   string          `json:"created_at,omitempty"`
}

// OrderItem is one line of an order.
type OrderItem struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

// OrderLine is the {product_id, quantity} pair the create endpoint accepts.
type OrderLine struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// CreateOrderRequest is the body of the order create endpoint.
type CreateOrderRequest struct {
	AddressID int64       `json:"address_id"`
	Items     []OrderLine `json:"items"`
	Remark    string      `json:"remark"`
}
