// Package mockbackend is an in-memory stand-in for the storefront REST
// backend. It serves every endpoint the client uses, with the same paths,
// envelope and bearer-token rules, for local development and end-to-end
// tests.
package mockbackend

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/mmynk/storefront/internal/auth"
	"github.com/mmynk/storefront/internal/middleware"
	"github.com/mmynk/storefront/internal/models"
)

// Config configures a Server.
type Config struct {
	JWTSecret string
	TokenTTL  time.Duration
	// BcryptCost zero selects the bcrypt default.
	BcryptCost int
	// Seed loads the demo catalog and the demo account.
	Seed   bool
	Logger *slog.Logger
}

// Server holds the handlers and their state.
type Server struct {
	store         *Store
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	logger        *slog.Logger
}

// New creates a Server with an empty store, seeded when cfg.Seed is set.
func New(ctx context.Context, cfg Config) (*Server, error) {
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "mock-backend-secret"
	}
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	store := NewStore()
	s := &Server{
		store:         store,
		authenticator: auth.NewPasswordAuthenticator(store, cfg.BcryptCost),
		jwtManager:    auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL),
		logger:        cfg.Logger,
	}
	if cfg.Seed {
		if err := Seed(ctx, store, s.authenticator); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Store exposes the backing store, for seeding and inspection in tests.
func (s *Server) Store() *Store { return s.store }

// Handler builds the HTTP router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logging(s.logger))
	r.Use(middleware.CORS)

	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints
		r.Post("/auth/login/", s.login)
		r.Post("/auth/register/", s.register)
		r.Get("/products/", s.listProducts)
		r.Get("/products/categories/", s.listCategories)
		r.Get("/products/{id}/", s.getProduct)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(s.jwtManager))

			r.Get("/auth/profile/", s.getProfile)
			r.Put("/auth/profile/", s.updateProfile)

			r.Get("/cart/cart/", s.listCart)
			r.Post("/cart/cart/create/", s.addCartItem)
			r.Put("/cart/cart/{id}/update/", s.updateCartItem)
			r.Delete("/cart/cart/{id}/delete/", s.deleteCartItem)

			r.Get("/orders/", s.listOrders)
			r.Post("/orders/create/", s.createOrder)
			r.Get("/orders/{id}/", s.getOrder)
			r.Delete("/orders/{id}/delete/", s.deleteOrder)

			r.Get("/addresses/", s.listAddresses)
			r.Post("/addresses/", s.createAddress)
			r.Get("/addresses/{id}/", s.getAddress)
			r.Put("/addresses/{id}/", s.updateAddress)
			r.Delete("/addresses/{id}/", s.deleteAddress)
		})
	})

	// health
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r
}

// --- Helpers ---

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func ok(w http.ResponseWriter, code int, message string, data any) {
	writeJSON(w, code, envelope{Success: true, Message: message, Data: data})
}

func fail(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, envelope{Success: false, Message: message})
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func notFoundOr(w http.ResponseWriter, err error, what string) {
	if errors.Is(err, errNotFound) {
		fail(w, http.StatusNotFound, what+" not found")
		return
	}
	fail(w, http.StatusInternalServerError, err.Error())
}

// --- Auth ---

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.authenticator.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}
	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		fail(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	ok(w, http.StatusOK, "login successful", map[string]any{
		"user":          user,
		"access_token":  token,
		"refresh_token": uuid.NewString(),
	})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.authenticator.Register(r.Context(), req)
	switch {
	case errors.Is(err, auth.ErrUsernameExists):
		fail(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrUsernameRequired):
		fail(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.logger.Error("Registration failed", "username", req.Username, "error", err)
		fail(w, http.StatusInternalServerError, "registration failed")
		return
	}

	s.logger.Info("User registered", "user_id", user.ID, "username", user.Username)
	ok(w, http.StatusCreated, "registered", map[string]any{"user": user})
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	user, err := s.store.User(middleware.GetUserID(r.Context()))
	if err != nil {
		notFoundOr(w, err, "user")
		return
	}
	ok(w, http.StatusOK, "", user)
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.ProfileUpdate
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user, err := s.store.UpdateUser(middleware.GetUserID(r.Context()), req)
	if err != nil {
		notFoundOr(w, err, "user")
		return
	}
	ok(w, http.StatusOK, "profile updated", user)
}

// --- Catalog ---

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.ProductFilter{Search: q.Get("search")}
	if c := q.Get("category"); c != "" {
		id, err := strconv.ParseInt(c, 10, 64)
		if err != nil {
			fail(w, http.StatusBadRequest, "invalid category")
			return
		}
		filter.CategoryID = id
	}
	switch strings.ToLower(q.Get("is_featured")) {
	case "true", "1":
		filter.Featured = true
	}

	ok(w, http.StatusOK, "", s.store.Products(filter))
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	ok(w, http.StatusOK, "", s.store.Categories())
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(r)
	if !valid {
		fail(w, http.StatusNotFound, "product not found")
		return
	}
	p, err := s.store.Product(id)
	if err != nil {
		notFoundOr(w, err, "product")
		return
	}
	ok(w, http.StatusOK, "", p)
}

// --- Cart ---

func (s *Server) listCart(w http.ResponseWriter, r *http.Request) {
	ok(w, http.StatusOK, "", s.store.CartItems(middleware.GetUserID(r.Context())))
}

func (s *Server) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Product  int64  `json:"product"`
		Quantity int    `json:"quantity"`
		Address  *int64 `json:"address"`
		Notes    string `json:"notes"`
	}
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Product <= 0 || req.Quantity <= 0 {
		fail(w, http.StatusBadRequest, "product and a positive quantity are required")
		return
	}
	var addressID int64
	if req.Address != nil {
		addressID = *req.Address
	}

	item, err := s.store.AddCartItem(middleware.GetUserID(r.Context()), req.Product, req.Quantity, addressID, req.Notes)
	if errors.Is(err, errNotFound) {
		fail(w, http.StatusBadRequest, "product or address not found")
		return
	} else if err != nil {
		fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	ok(w, http.StatusCreated, "added to cart", item)
}

func (s *Server) updateCartItem(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(r)
	if !valid {
		fail(w, http.StatusNotFound, "cart item not found")
		return
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := decode(r, &req); err != nil || req.Quantity <= 0 {
		fail(w, http.StatusBadRequest, "a positive quantity is required")
		return
	}

	item, err := s.store.UpdateCartItem(middleware.GetUserID(r.Context()), id, req.Quantity)
	if err != nil {
		notFoundOr(w, err, "cart item")
		return
	}
	ok(w, http.StatusOK, "cart updated", item)
}

func (s *Server) deleteCartItem(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(r)
	if !valid {
		fail(w, http.StatusNotFound, "cart item not found")
		return
	}
	if err := s.store.DeleteCartItem(middleware.GetUserID(r.Context()), id); err != nil {
		notFoundOr(w, err, "cart item")
		return
	}
	ok(w, http.StatusOK, "removed from cart", nil)
}

// --- Orders ---

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	ok(w, http.StatusOK, "", s.store.Orders(middleware.GetUserID(r.Context())))
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var req models.CreateOrderRequest
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AddressID <= 0 {
		fail(w, http.StatusBadRequest, "address_id is required")
		return
	}
	if len(req.Items) == 0 {
		fail(w, http.StatusBadRequest, "items must not be empty")
		return
	}
	for _, it := range req.Items {
		if it.ProductID <= 0 || it.Quantity <= 0 {
			fail(w, http.StatusBadRequest, "every item needs product_id and a positive quantity")
			return
		}
	}

	userID := middleware.GetUserID(r.Context())
	order, err := s.store.CreateOrder(userID, req, orderNumber())
	switch {
	case errors.Is(err, errInsufficientStock):
		fail(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, errNotFound):
		fail(w, http.StatusBadRequest, "address or product not found")
		return
	case err != nil:
		fail(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.logger.Info("Order created", "order_id", order.ID, "user_id", userID, "total", order.TotalAmount.StringFixed(2))
	ok(w, http.StatusCreated, "order created", order)
}

// orderNumber returns a date-prefixed, collision-free order number.
func orderNumber() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return time.Now().Format("20060102") + id[:12]
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(r)
	if !valid {
		fail(w, http.StatusNotFound, "order not found")
		return
	}
	order, err := s.store.Order(middleware.GetUserID(r.Context()), id)
	if err != nil {
		notFoundOr(w, err, "order")
		return
	}
	ok(w, http.StatusOK, "", order)
}

func (s *Server) deleteOrder(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(r)
	if !valid {
		fail(w, http.StatusNotFound, "order not found")
		return
	}
	if err := s.store.DeleteOrder(middleware.GetUserID(r.Context()), id); err != nil {
		notFoundOr(w, err, "order")
		return
	}
	ok(w, http.StatusOK, "order deleted", nil)
}

// --- Addresses ---

func (s *Server) listAddresses(w http.ResponseWriter, r *http.Request) {
	ok(w, http.StatusOK, "", s.store.Addresses(middleware.GetUserID(r.Context())))
}

func (s *Server) getAddress(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(r)
	if !valid {
		fail(w, http.StatusNotFound, "address not found")
		return
	}
	addr, err := s.store.Address(middleware.GetUserID(r.Context()), id)
	if err != nil {
		notFoundOr(w, err, "address")
		return
	}
	ok(w, http.StatusOK, "", addr)
}

func (s *Server) createAddress(w http.ResponseWriter, r *http.Request) {
	s.saveAddress(w, r, 0)
}

func (s *Server) updateAddress(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(r)
	if !valid {
		fail(w, http.StatusNotFound, "address not found")
		return
	}
	s.saveAddress(w, r, id)
}

func (s *Server) saveAddress(w http.ResponseWriter, r *http.Request, id int64) {
	var addr models.Address
	if err := decode(r, &addr); err != nil {
		fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(addr.Name) == "" || strings.TrimSpace(addr.Phone) == "" {
		fail(w, http.StatusBadRequest, "name and phone are required")
		return
	}

	saved, err := s.store.SaveAddress(middleware.GetUserID(r.Context()), id, addr)
	if err != nil {
		notFoundOr(w, err, "address")
		return
	}
	code := http.StatusOK
	if id == 0 {
		code = http.StatusCreated
	}
	ok(w, code, "address saved", saved)
}

func (s *Server) deleteAddress(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(r)
	if !valid {
		fail(w, http.StatusNotFound, "address not found")
		return
	}
	if err := s.store.DeleteAddress(middleware.GetUserID(r.Context()), id); err != nil {
		notFoundOr(w, err, "address")
		return
	}
	ok(w, http.StatusOK, "address deleted", nil)
}
