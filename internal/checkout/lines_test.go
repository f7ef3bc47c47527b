package checkout

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/storefront/internal/models"
)

func TestLinesFromCart(t *testing.T) {
	items := []models.CartItem{
		{
			ID:           1,
			ProductRef:   10,
			ProductName:  "Tea",
			ProductPrice: decimal.RequireFromString("12.50"),
			Quantity:     2,
			AddressID:    4,
			AddressInfo:  &models.Address{ID: 4, Name: "Home"},
			Notes:        "gift",
		},
		{ID: 2, ProductID: 11, ProductRef: 99, Quantity: 1},
		{ID: 3, Quantity: 1},
		{ID: 4, ProductRef: 12, Quantity: 1, AddressInfo: &models.Address{ID: 6}},
	}

	lines := LinesFromCart(items)
	require.Len(t, lines, 3)

	assert.Equal(t, int64(1), lines[0].CartItemID)
	assert.Equal(t, int64(10), lines[0].ProductID)
	assert.Equal(t, int64(4), lines[0].AddressID)
	assert.Equal(t, "Home", lines[0].AddressSnapshot.Name)
	assert.Equal(t, "gift", lines[0].Notes)
	assert.True(t, lines[0].UnitPrice.Equal(decimal.RequireFromString("12.5")))

	assert.Equal(t, int64(11), lines[1].ProductID)
	assert.Zero(t, lines[1].AddressID)

	assert.Equal(t, int64(6), lines[2].AddressID)

	// The snapshot is a copy.
	items[0].AddressInfo.Name = "Office"
	assert.Equal(t, "Home", lines[0].AddressSnapshot.Name)
}

func TestGroupLines_SnapshotBecomesSelection(t *testing.T) {
	lines := []models.CheckoutLine{
		{ProductID: 1, Quantity: 1, AddressID: 4, AddressSnapshot: &models.Address{ID: 4, City: "Hangzhou"}},
		{ProductID: 2, Quantity: 1},
	}
	groups := groupLines(lines)
	require.Len(t, groups, 2)
	assert.Equal(t, "Hangzhou", groups[0].SelectedAddress.City)
	assert.Equal(t, NoAddressKey, groups[1].Key)
	assert.Zero(t, groups[1].AddressID)
	assert.Nil(t, groups[1].SelectedAddress)
}

func TestOrderRequest(t *testing.T) {
	g := models.AddressGroup{
		Key:             "4",
		SelectedAddress: &models.Address{ID: 4},
		Lines: []models.CheckoutLine{
			{ProductID: 1, Quantity: 2, Notes: "first"},
			{ProductID: 2, Quantity: 3, Notes: "second"},
		},
	}
	req := orderRequest(g)
	assert.Equal(t, int64(4), req.AddressID)
	assert.Equal(t, "first", req.Remark)
	assert.Equal(t, []models.OrderLine{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 3}}, req.Items)
}
