package service

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mmynk/storefront/internal/gateway"
	"github.com/mmynk/storefront/internal/models"
)

// ProductService reads the public catalog. None of its calls need a token.
type ProductService struct {
	sender Sender
}

func NewProductService(sender Sender) *ProductService {
	return &ProductService{sender: sender}
}

// List returns products matching filter.
func (s *ProductService) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	q := url.Values{}
	if filter.CategoryID > 0 {
		q.Set("category", strconv.FormatInt(filter.CategoryID, 10))
	}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	if filter.Featured {
		q.Set("is_featured", "true")
	}

	raw, err := s.sender.Send(ctx, gateway.PathProducts, http.MethodGet, q)
	if err != nil {
		return nil, err
	}
	return decodeList[models.Product](raw)
}

func (s *ProductService) Detail(ctx context.Context, id int64) (*models.Product, error) {
	raw, err := s.sender.Send(ctx, gateway.PathProduct(id), http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	return decodeObject[models.Product](raw)
}

func (s *ProductService) Categories(ctx context.Context) ([]models.Category, error) {
	raw, err := s.sender.Send(ctx, gateway.PathCategories, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[models.Category](raw)
}
