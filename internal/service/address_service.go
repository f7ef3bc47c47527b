package service

import (
	"context"
	"net/http"

	"github.com/mmynk/storefront/internal/gateway"
	"github.com/mmynk/storefront/internal/models"
)

// AddressService manages the caller's delivery addresses.
type AddressService struct {
	sender Sender
}

func NewAddressService(sender Sender) *AddressService {
	return &AddressService{sender: sender}
}

func (s *AddressService) List(ctx context.Context) ([]models.Address, error) {
	raw, err := s.sender.Send(ctx, gateway.PathAddresses, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[models.Address](raw)
}

func (s *AddressService) Detail(ctx context.Context, id int64) (*models.Address, error) {
	raw, err := s.sender.Send(ctx, gateway.PathAddress(id), http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	return decodeObject[models.Address](raw)
}

func (s *AddressService) Create(ctx context.Context, addr models.Address) (*models.Address, error) {
	addr.ID = 0
	raw, err := s.sender.Send(ctx, gateway.PathAddresses, http.MethodPost, addr)
	if err != nil {
		return nil, err
	}
	return decodeObject[models.Address](raw)
}

func (s *AddressService) Update(ctx context.Context, id int64, addr models.Address) (*models.Address, error) {
	addr.ID = 0
	raw, err := s.sender.Send(ctx, gateway.PathAddress(id), http.MethodPut, addr)
	if err != nil {
		return nil, err
	}
	return decodeObject[models.Address](raw)
}

func (s *AddressService) Delete(ctx context.Context, id int64) error {
	_, err := s.sender.Send(ctx, gateway.PathAddress(id), http.MethodDelete, nil)
	return err
}

// DefaultAddress returns the first address marked default, else the first
// address, else nil.
func DefaultAddress(addrs []models.Address) *models.Address {
	for i := range addrs {
		if addrs[i].IsDefault {
			return &addrs[i]
		}
	}
	if len(addrs) > 0 {
		return &addrs[0]
	}
	return nil
}
