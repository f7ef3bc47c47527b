package service

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/mmynk/storefront/internal/apierr"
	"github.com/mmynk/storefront/internal/gateway"
	"github.com/mmynk/storefront/internal/models"
)

// CartService manages the caller's cart.
type CartService struct {
	sender Sender
	logger *slog.Logger
}

func NewCartService(sender Sender, logger *slog.Logger) *CartService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CartService{sender: sender, logger: logger}
}

func (s *CartService) List(ctx context.Context) ([]models.CartItem, error) {
	raw, err := s.sender.Send(ctx, gateway.PathCart, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[models.CartItem](raw)
}

// AddItem puts a product in the cart. A zero AddressID is sent as null.
func (s *CartService) AddItem(ctx context.Context, item models.AddCartItem) (*models.CartItem, error) {
	if item.ProductID <= 0 || item.Quantity <= 0 {
		return nil, &apierr.Error{Kind: apierr.KindRequestFailed, Message: "invalid product or quantity"}
	}
	if item.AddressID != nil && *item.AddressID <= 0 {
		item.AddressID = nil
	}

	raw, err := s.sender.Send(ctx, gateway.PathCartCreate, http.MethodPost, item)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Cart item added", "product_id", item.ProductID, "quantity", item.Quantity)
	return decodeObject[models.CartItem](raw)
}

// UpdateItem sets the quantity of a cart line. Quantity must be positive;
// use DeleteItem to remove a line.
func (s *CartService) UpdateItem(ctx context.Context, id int64, quantity int) (*models.CartItem, error) {
	if quantity <= 0 {
		return nil, &apierr.Error{Kind: apierr.KindRequestFailed, Message: "quantity must be at least 1"}
	}

	raw, err := s.sender.Send(ctx, gateway.PathCartUpdate(id), http.MethodPut, map[string]any{"quantity": quantity})
	if err != nil {
		return nil, err
	}
	return decodeObject[models.CartItem](raw)
}

func (s *CartService) DeleteItem(ctx context.Context, id int64) error {
	_, err := s.sender.Send(ctx, gateway.PathCartDelete(id), http.MethodDelete, nil)
	return err
}
