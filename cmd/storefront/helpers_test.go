package main

import (
	"strconv"

	"github.com/mmynk/storefront/internal/models"
)

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

func productFilterSearch(s string) models.ProductFilter {
	return models.ProductFilter{Search: s}
}

func cartItems(ids ...int64) []models.CartItem {
	out := make([]models.CartItem, len(ids))
	for i, id := range ids {
		out[i] = models.CartItem{ID: id, ProductRef: id, Quantity: 1}
	}
	return out
}
