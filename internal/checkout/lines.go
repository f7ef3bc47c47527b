package checkout

import (
	"strconv"

	"github.com/mmynk/storefront/internal/calculator"
	"github.com/mmynk/storefront/internal/models"
)

// NoAddressKey is the group key of lines carted without a delivery address.
const NoAddressKey = "no_address"

// LinesFromCart maps cart rows to checkout lines. Rows without a product
// are dropped; quantity is carried as is and checked by Validate.
func LinesFromCart(items []models.CartItem) []models.CheckoutLine {
	lines := make([]models.CheckoutLine, 0, len(items))
	for _, it := range items {
		productID := it.Product()
		if productID <= 0 {
			continue
		}

		addressID := it.AddressID
		if addressID == 0 && it.AddressInfo != nil {
			addressID = it.AddressInfo.ID
		}

		var snapshot *models.Address
		if it.AddressInfo != nil {
			a := *it.AddressInfo
			snapshot = &a
		}

		lines = append(lines, models.CheckoutLine{
			CartItemID:      it.ID,
			ProductID:       productID,
			ProductName:     it.ProductName,
			UnitPrice:       it.ProductPrice,
			Quantity:        it.Quantity,
			AddressID:       addressID,
			AddressSnapshot: snapshot,
			Notes:           it.Notes,
		})
	}
	return lines
}

// groupKey returns the address id in decimal, or NoAddressKey.
func groupKey(l models.CheckoutLine) string {
	if l.AddressID > 0 {
		return strconv.FormatInt(l.AddressID, 10)
	}
	return NoAddressKey
}

// groupLines buckets lines by address. Groups appear in the order their
// first line was staged and lines keep their staged order.
func groupLines(lines []models.CheckoutLine) []models.AddressGroup {
	var groups []models.AddressGroup
	index := make(map[string]int)

	for _, l := range lines {
		key := groupKey(l)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			g := models.AddressGroup{Key: key}
			if key != NoAddressKey {
				g.AddressID = l.AddressID
			}
			groups = append(groups, g)
		}
		g := &groups[i]
		g.Lines = append(g.Lines, l)
		if g.SelectedAddress == nil && l.AddressSnapshot != nil && l.AddressSnapshot.ID == l.AddressID && key != NoAddressKey {
			a := *l.AddressSnapshot
			g.SelectedAddress = &a
		}
	}

	for i := range groups {
		g := &groups[i]
		if g.SelectedAddress == nil && g.AddressID > 0 {
			g.SelectedAddress = &models.Address{ID: g.AddressID}
		}
		g.Subtotal = calculator.Subtotal(g.Lines)
	}
	return groups
}

// orderRequest builds the create-order body for g. The remark is the first
// line's notes.
func orderRequest(g models.AddressGroup) models.CreateOrderRequest {
	req := models.CreateOrderRequest{
		Items: make([]models.OrderLine, len(g.Lines)),
	}
	if g.SelectedAddress != nil {
		req.AddressID = g.SelectedAddress.ID
	}
	for i, l := range g.Lines {
		req.Items[i] = models.OrderLine{ProductID: l.ProductID, Quantity: l.Quantity}
	}
	if len(g.Lines) > 0 {
		req.Remark = g.Lines[0].Notes
	}
	return req
}
