package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/mmynk/storefront/internal/apierr"
	"github.com/mmynk/storefront/internal/gateway"
	"github.com/mmynk/storefront/internal/models"
)

// orderIDPaths lists where create responses have been seen to put the new id.
var orderIDPaths = []string{"id", "order.id", "data.id"}

// OrderService creates and reads orders.
type OrderService struct {
	sender Sender
	logger *slog.Logger
}

func NewOrderService(sender Sender, logger *slog.Logger) *OrderService {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderService{sender: sender, logger: logger}
}

// Create places one order. A missing address is an AddressRequired error;
// there is no fallback address. Items must be non-empty with positive
// product ids and quantities, else EmptySelection.
func (s *OrderService) Create(ctx context.Context, req models.CreateOrderRequest) (*models.Order, error) {
	if req.AddressID <= 0 {
		return nil, apierr.AddressRequired("")
	}
	if len(req.Items) == 0 {
		return nil, apierr.EmptySelection("order has no items")
	}
	for _, it := range req.Items {
		if it.ProductID <= 0 || it.Quantity <= 0 {
			return nil, apierr.EmptySelection("order has an invalid item")
		}
	}

	raw, err := s.sender.Send(ctx, gateway.PathOrderCreate, http.MethodPost, req)
	if err != nil {
		return nil, err
	}

	order, err := decodeCreatedOrder(raw)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order created", "order_id", order.ID, "address_id", req.AddressID, "items", len(req.Items))
	return order, nil
}

// decodeCreatedOrder finds the created order in a create response. Only
// the id is required; the rest is decoded when it sits next to the id.
func decodeCreatedOrder(raw json.RawMessage) (*models.Order, error) {
	res := gjson.ParseBytes(raw)
	for _, p := range orderIDPaths {
		id := res.Get(p)
		if !id.Exists() || id.Int() <= 0 {
			continue
		}

		order := &models.Order{}
		parent := res
		if i := len(p) - len(".id"); i > 0 {
			parent = res.Get(p[:i])
		}
		if err := json.Unmarshal([]byte(parent.Raw), order); err != nil {
			order = &models.Order{}
		}
		order.ID = id.Int()
		return order, nil
	}
	return nil, malformed(errors.New("create order response has no id"))
}

func (s *OrderService) List(ctx context.Context) ([]models.Order, error) {
	raw, err := s.sender.Send(ctx, gateway.PathOrders, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[models.Order](raw)
}

func (s *OrderService) Detail(ctx context.Context, id int64) (*models.Order, error) {
	raw, err := s.sender.Send(ctx, gateway.PathOrder(id), http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	return decodeObject[models.Order](raw)
}

func (s *OrderService) Delete(ctx context.Context, id int64) error {
	_, err := s.sender.Send(ctx, gateway.PathOrderDelete(id), http.MethodDelete, nil)
	return err
}
