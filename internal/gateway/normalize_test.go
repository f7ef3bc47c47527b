package gateway

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/storefront/internal/models"
)

func TestNormalize_Fields(t *testing.T) {
	got, err := Normalize(map[string]any{
		"name":       []string{"A", "l", "i"},
		"chars":      []any{"x", "y"},
		"is_default": []any{true},
		"flag":       []bool{false},
		"phone":      "123",
		"tags":       []any{"a", 1},
		"words":      []any{"tea", "coffee"},
		"labels":     []string{"green", "black"},
		"city":       []any{"北", "京"},
	})
	require.NoError(t, err)

	m := got.(map[string]any)
	assert.Equal(t, "Ali", m["name"])
	assert.Equal(t, "xy", m["chars"])
	assert.Equal(t, true, m["is_default"])
	assert.Equal(t, false, m["flag"])
	assert.Equal(t, "123", m["phone"])
	assert.Equal(t, []any{"a", 1}, m["tags"])
	assert.Equal(t, []any{"tea", "coffee"}, m["words"])
	assert.Equal(t, []string{"green", "black"}, m["labels"])
	assert.Equal(t, "北京", m["city"])
}

func TestNormalize_Items(t *testing.T) {
	got, err := Normalize(map[string]any{
		"items": []any{
			map[string]any{"product_id": "5", "quantity": 2.7, "name": "tea"},
			map[string]any{"product_id": "abc", "quantity": json.Number("3")},
			map[string]any{"product_id": 9},
		},
	})
	require.NoError(t, err)

	items := got.(map[string]any)["items"].([]any)
	require.Len(t, items, 3)
	assert.Equal(t, map[string]any{"product_id": int64(5), "quantity": int64(2)}, items[0])
	assert.Equal(t, map[string]any{"product_id": nil, "quantity": int64(3)}, items[1])
	assert.Equal(t, map[string]any{"product_id": int64(9), "quantity": nil}, items[2])
}

func TestNormalize_Struct(t *testing.T) {
	got, err := Normalize(models.CreateOrderRequest{
		AddressID: 4,
		Items:     []models.OrderLine{{ProductID: 1, Quantity: 2}},
		Remark:    "leave at door",
	})
	require.NoError(t, err)

	b, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"address_id":4,"items":[{"product_id":1,"quantity":2}],"remark":"leave at door"}`, string(b))
}

func TestNormalize_PassThrough(t *testing.T) {
	got, err := Normalize(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = Normalize([]int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, json.RawMessage(`[1,2]`), got)

	raw := json.RawMessage(`{"a":1}`)
	got, err = Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, got)
}

func TestIsAnonymous(t *testing.T) {
	tests := []struct {
		path   string
		method string
		want   bool
	}{
		{PathLogin, http.MethodPost, true},
		{PathRegister, http.MethodPost, true},
		{PathProducts, http.MethodGet, true},
		{PathProducts + "?search=tea", http.MethodGet, true},
		{PathProduct(12), http.MethodGet, true},
		{PathCategories, http.MethodGet, true},
		{PathProducts, http.MethodPost, false},
		{PathProfile, http.MethodGet, false},
		{PathCart, http.MethodGet, false},
		{PathOrderCreate, http.MethodPost, false},
		{PathAddresses, http.MethodGet, false},
	}
	for _, tt := range tests {
		if got := IsAnonymous(tt.path, tt.method); got != tt.want {
			t.Errorf("IsAnonymous(%q, %s) = %v, want %v", tt.path, tt.method, got, tt.want)
		}
	}
}
