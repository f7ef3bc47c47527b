package gateway

import (
	"fmt"
	"net/http"
	"strings"
)

// Backend paths. These are fixed contracts; trailing slashes matter.
const (
	PathLogin    = "/api/v1/auth/login/"
	PathRegister = "/api/v1/auth/register/"
	PathProfile  = "/api/v1/auth/profile/"

	PathProducts   = "/api/v1/products/"
	PathCategories = "/api/v1/products/categories/"

	PathCart       = "/api/v1/cart/cart/"
	PathCartCreate = "/api/v1/cart/cart/create/"

	PathOrders      = "/api/v1/orders/"
	PathOrderCreate = "/api/v1/orders/create/"

	PathAddresses = "/api/v1/addresses/"
)

func PathProduct(id int64) string     { return fmt.Sprintf("/api/v1/products/%d/", id) }
func PathCartUpdate(id int64) string  { return fmt.Sprintf("/api/v1/cart/cart/%d/update/", id) }
func PathCartDelete(id int64) string  { return fmt.Sprintf("/api/v1/cart/cart/%d/delete/", id) }
func PathOrder(id int64) string       { return fmt.Sprintf("/api/v1/orders/%d/", id) }
func PathOrderDelete(id int64) string { return fmt.Sprintf("/api/v1/orders/%d/delete/", id) }
func PathAddress(id int64) string     { return fmt.Sprintf("/api/v1/addresses/%d/", id) }

// IsAnonymous reports whether the endpoint may be called without a token:
// login, register, and GETs of the public catalog (list, detail, categories).
func IsAnonymous(path, method string) bool {
	path = stripQuery(path)
	if isLogin(path) || strings.Contains(path, "/auth/register") {
		return true
	}
	return method == http.MethodGet && strings.HasPrefix(path, PathProducts)
}

// isLogin reports whether path is the login endpoint, which must never
// carry an Authorization header.
func isLogin(path string) bool {
	return strings.Contains(stripQuery(path), "/auth/login")
}

func stripQuery(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i]
	}
	return path
}
