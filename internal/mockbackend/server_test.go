package mockbackend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

// setupTestServer starts a seeded mock backend.
func setupTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	srv, err := New(context.Background(), Config{Seed: true, BcryptCost: bcrypt.MinCost})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

type testEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func call(t *testing.T, ts *httptest.Server, method, path, token string, body any) (int, testEnvelope) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, ts.URL+path, r)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env testEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("%s %s: decode: %v", method, path, err)
	}
	return resp.StatusCode, env
}

func login(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	code, env := call(t, ts, http.MethodPost, "/api/v1/auth/login/", "", map[string]string{
		"username": DemoUsername,
		"password": DemoPassword,
	})
	if code != http.StatusOK {
		t.Fatalf("login status = %d, message = %q", code, env.Message)
	}
	var data struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil || data.AccessToken == "" {
		t.Fatalf("login data = %s", env.Data)
	}
	return data.AccessToken
}

func TestLogin(t *testing.T) {
	_, ts := setupTestServer(t)

	token := login(t, ts)
	if token == "" {
		t.Fatal("expected token")
	}

	code, env := call(t, ts, http.MethodPost, "/api/v1/auth/login/", "", map[string]string{
		"username": DemoUsername,
		"password": "wrong-password",
	})
	if code != http.StatusBadRequest || env.Success {
		t.Errorf("bad password: status = %d, success = %v", code, env.Success)
	}
}

func TestRegister(t *testing.T) {
	_, ts := setupTestServer(t)

	code, _ := call(t, ts, http.MethodPost, "/api/v1/auth/register/", "", map[string]string{
		"username": "bob",
		"password": "secret1",
	})
	if code != http.StatusCreated {
		t.Fatalf("register status = %d", code)
	}

	code, _ = call(t, ts, http.MethodPost, "/api/v1/auth/register/", "", map[string]string{
		"username": "bob",
		"password": "secret1",
	})
	if code != http.StatusConflict {
		t.Errorf("duplicate register status = %d, want %d", code, http.StatusConflict)
	}

	code, _ = call(t, ts, http.MethodPost, "/api/v1/auth/register/", "", map[string]string{
		"username": "carol",
		"password": "123",
	})
	if code != http.StatusBadRequest {
		t.Errorf("weak password status = %d, want %d", code, http.StatusBadRequest)
	}
}

func TestProtectedEndpointsRequireToken(t *testing.T) {
	_, ts := setupTestServer(t)

	for _, path := range []string{"/api/v1/cart/cart/", "/api/v1/orders/", "/api/v1/addresses/", "/api/v1/auth/profile/"} {
		code, env := call(t, ts, http.MethodGet, path, "", nil)
		if code != http.StatusUnauthorized || env.Success {
			t.Errorf("GET %s without token: status = %d", path, code)
		}
		code, _ = call(t, ts, http.MethodGet, path, "not-a-jwt", nil)
		if code != http.StatusUnauthorized {
			t.Errorf("GET %s with bad token: status = %d", path, code)
		}
	}
}

func TestProducts(t *testing.T) {
	_, ts := setupTestServer(t)

	code, env := call(t, ts, http.MethodGet, "/api/v1/products/", "", nil)
	if code != http.StatusOK {
		t.Fatalf("list status = %d", code)
	}
	var all []map[string]any
	if err := json.Unmarshal(env.Data, &all); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("len(products) = %d, want 5", len(all))
	}

	_, env = call(t, ts, http.MethodGet, "/api/v1/products/?is_featured=true", "", nil)
	var featured []map[string]any
	_ = json.Unmarshal(env.Data, &featured)
	if len(featured) != 2 {
		t.Errorf("len(featured) = %d, want 2", len(featured))
	}

	_, env = call(t, ts, http.MethodGet, "/api/v1/products/?search=TEAPOT", "", nil)
	var found []map[string]any
	_ = json.Unmarshal(env.Data, &found)
	if len(found) != 1 {
		t.Errorf("len(search) = %d, want 1", len(found))
	}

	code, _ = call(t, ts, http.MethodGet, "/api/v1/products/categories/", "", nil)
	if code != http.StatusOK {
		t.Errorf("categories status = %d", code)
	}

	code, _ = call(t, ts, http.MethodGet, "/api/v1/products/9999/", "", nil)
	if code != http.StatusNotFound {
		t.Errorf("missing product status = %d, want 404", code)
	}
}

func TestCreateOrder_StockIsChecked(t *testing.T) {
	srv, ts := setupTestServer(t)
	token := login(t, ts)

	code, env := call(t, ts, http.MethodPost, "/api/v1/addresses/", token, map[string]any{
		"name": "Ali", "phone": "13800000000", "city": "Hangzhou",
	})
	if code != http.StatusCreated {
		t.Fatalf("create address status = %d, message = %q", code, env.Message)
	}
	var addr struct {
		ID        int64 `json:"id"`
		IsDefault bool  `json:"is_default"`
	}
	_ = json.Unmarshal(env.Data, &addr)
	if !addr.IsDefault {
		t.Error("first address should be default")
	}

	var cupID int64
	for _, p := range srv.Store().Products(productFilterAll) {
		if p.SKU == "WARE-002" {
			cupID = p.ID
		}
	}

	code, env = call(t, ts, http.MethodPost, "/api/v1/orders/create/", token, map[string]any{
		"address_id": addr.ID,
		"items":      []map[string]any{{"product_id": cupID, "quantity": 2}},
	})
	if code != http.StatusBadRequest || env.Message != "insufficient stock" {
		t.Fatalf("oversell: status = %d, message = %q", code, env.Message)
	}

	code, env = call(t, ts, http.MethodPost, "/api/v1/orders/create/", token, map[string]any{
		"address_id": addr.ID,
		"items":      []map[string]any{{"product_id": cupID, "quantity": 1}},
		"remark":     "gift wrap",
	})
	if code != http.StatusCreated {
		t.Fatalf("create order status = %d, message = %q", code, env.Message)
	}
	var order struct {
		ID          int64  `json:"id"`
		OrderNo     string `json:"order_no"`
		TotalAmount string `json:"total_amount"`
	}
	if err := json.Unmarshal(env.Data, &order); err != nil {
		t.Fatalf("decode order: %v", err)
	}
	if order.ID == 0 || order.OrderNo == "" || order.TotalAmount != "12.5" {
		t.Errorf("order = %+v", order)
	}

	code, _ = call(t, ts, http.MethodPost, "/api/v1/orders/create/", token, map[string]any{
		"items": []map[string]any{{"product_id": cupID, "quantity": 1}},
	})
	if code != http.StatusBadRequest {
		t.Errorf("missing address status = %d, want 400", code)
	}
}

func TestCart(t *testing.T) {
	_, ts := setupTestServer(t)
	token := login(t, ts)

	code, env := call(t, ts, http.MethodPost, "/api/v1/cart/cart/create/", token, map[string]any{
		"product": 3, "quantity": 1, "address": nil,
	})
	if code != http.StatusCreated {
		t.Fatalf("add status = %d, message = %q", code, env.Message)
	}
	var item struct {
		ID       int64 `json:"id"`
		Quantity int   `json:"quantity"`
	}
	_ = json.Unmarshal(env.Data, &item)

	// Same product again tops the line up.
	_, env = call(t, ts, http.MethodPost, "/api/v1/cart/cart/create/", token, map[string]any{
		"product": 3, "quantity": 2,
	})
	_ = json.Unmarshal(env.Data, &item)
	if item.Quantity != 3 {
		t.Errorf("quantity = %d, want 3", item.Quantity)
	}

	code, _ = call(t, ts, http.MethodPut, "/api/v1/cart/cart/"+itoa(item.ID)+"/update/", token, map[string]any{"quantity": 0})
	if code != http.StatusBadRequest {
		t.Errorf("zero quantity update status = %d, want 400", code)
	}

	code, _ = call(t, ts, http.MethodDelete, "/api/v1/cart/cart/"+itoa(item.ID)+"/delete/", token, nil)
	if code != http.StatusOK {
		t.Errorf("delete status = %d", code)
	}
	code, _ = call(t, ts, http.MethodDelete, "/api/v1/cart/cart/"+itoa(item.ID)+"/delete/", token, nil)
	if code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", code)
	}
}
