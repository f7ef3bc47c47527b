package mockbackend

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/storefront/internal/auth"
	"github.com/mmynk/storefront/internal/models"
)

// Demo account created by Seed.
const (
	DemoUsername = "admin"
	DemoPassword = "admin123"
)

// Seed loads a small catalog and the demo account.
func Seed(ctx context.Context, store *Store, authenticator auth.Authenticator) error {
	tea := store.AddCategory(models.Category{Name: "Tea", Description: "Loose leaf and pressed tea"})
	ware := store.AddCategory(models.Category{Name: "Teaware", Description: "Pots, cups and kettles"})

	products := []models.Product{
		{
			Name: "Longjing Green Tea", SKU: "TEA-001", CategoryID: tea.ID,
			Description: "Spring harvest, 100g tin",
			Price:       decimal.RequireFromString("10.00"), Stock: 100, IsFeatured: true,
			Images: []models.ProductImage{{Image: "/media/products/longjing.jpg", IsPrimary: true}},
		},
		{
			Name: "Aged Pu'er Cake", SKU: "TEA-002", CategoryID: tea.ID,
			Description: "357g pressed cake",
			Price:       decimal.RequireFromString("5.00"), Stock: 50,
			Images: []models.ProductImage{{Image: "/media/products/puer.jpg", IsPrimary: true}},
		},
		{
			Name: "Oolong Sampler", SKU: "TEA-003", CategoryID: tea.ID,
			Description: "Five oolongs, 25g each",
			Price:       decimal.RequireFromString("7.00"), Stock: 30, IsFeatured: true,
			Images: []models.ProductImage{{Image: "/media/products/oolong.jpg", IsPrimary: true}},
		},
		{
			Name: "Yixing Clay Teapot", SKU: "WARE-001", CategoryID: ware.ID,
			Description: "Handmade, 200ml",
			Price:       decimal.RequireFromString("89.90"), Stock: 5,
			Images: []models.ProductImage{
				{Image: "/media/products/teapot.jpg", IsPrimary: true},
				{Image: "/media/products/teapot-side.jpg"},
			},
		},
		{
			Name: "Celadon Cup", SKU: "WARE-002", CategoryID: ware.ID,
			Description: "Single cup, 60ml",
			Price:       decimal.RequireFromString("12.50"), Stock: 1,
			Images: []models.ProductImage{{Image: "/media/products/cup.jpg", IsPrimary: true}},
		},
	}
	for _, p := range products {
		store.AddProduct(p)
	}

	_, err := authenticator.Register(ctx, models.RegisterRequest{
		Username: DemoUsername,
		Password: DemoPassword,
		Nickname: "Demo",
	})
	if err != nil && !errors.Is(err, auth.ErrUsernameExists) {
		return fmt.Errorf("seed demo account: %w", err)
	}
	return nil
}
