package mockbackend

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/mmynk/storefront/internal/auth"
	"github.com/mmynk/storefront/internal/models"
)

var (
	errNotFound          = errors.New("not found")
	errInsufficientStock = errors.New("insufficient stock")
)

type cartRow struct {
	owner int64
	item  models.CartItem
}

type addressRow struct {
	owner int64
	addr  models.Address
}

type orderRow struct {
	owner int64
	order models.Order
}

// Store is the in-memory state of the mock backend. It implements
// auth.AccountStorage. Safe for concurrent use.
type Store struct {
	mu sync.RWMutex

	nextID int64

	accounts   map[string]*auth.Account
	categories []models.Category
	products   map[int64]*models.Product
	cart       []*cartRow
	addresses  []*addressRow
	orders     []*orderRow
}

func NewStore() *Store {
	return &Store{
		accounts: make(map[string]*auth.Account),
		products: make(map[int64]*models.Product),
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// CreateAccount stores a new account and assigns its user ID.
func (s *Store) CreateAccount(ctx context.Context, account *auth.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[account.User.Username]; ok {
		return auth.ErrUsernameExists
	}
	account.User.ID = s.id()
	stored := *account
	s.accounts[account.User.Username] = &stored
	return nil
}

// GetAccountByUsername returns nil, nil when no account exists.
func (s *Store) GetAccountByUsername(ctx context.Context, username string) (*auth.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[username]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (s *Store) User(userID int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.accounts {
		if a.User.ID == userID {
			u := a.User
			return &u, nil
		}
	}
	return nil, errNotFound
}

func (s *Store) UpdateUser(userID int64, update models.ProfileUpdate) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.accounts {
		if a.User.ID != userID {
			continue
		}
		if update.Nickname != "" {
			a.User.Nickname = update.Nickname
		}
		if update.Email != "" {
			a.User.Email = update.Email
		}
		if update.Phone != "" {
			a.User.Phone = update.Phone
		}
		if update.Avatar != "" {
			a.User.Avatar = update.Avatar
		}
		u := a.User
		return &u, nil
	}
	return nil, errNotFound
}

// Catalog

func (s *Store) AddCategory(c models.Category) models.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.id()
	s.categories = append(s.categories, c)
	return c
}

func (s *Store) AddProduct(p models.Product) models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id()
	for _, c := range s.categories {
		if c.ID == p.CategoryID {
			p.CategoryName = c.Name
		}
	}
	for i := range p.Images {
		p.Images[i].ID = s.id()
		if p.Images[i].IsPrimary {
			p.PrimaryImage = p.Images[i].Image
		}
	}
	cp := p
	s.products[p.ID] = &cp
	return p
}

func (s *Store) Categories() []models.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.categories)
}

// Products lists products in id order. Images are omitted; the list
// endpoint carries only the primary image.
func (s *Store) Products(f models.ProductFilter) []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(f.Search)
	out := []models.Product{}
	for _, p := range s.products {
		if f.CategoryID > 0 && p.CategoryID != f.CategoryID {
			continue
		}
		if f.Featured && !p.IsFeatured {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		cp := *p
		cp.Images = nil
		out = append(out, cp)
	}
	slices.SortFunc(out, func(a, b models.Product) int { return int(a.ID - b.ID) })
	return out
}

func (s *Store) Product(id int64) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *p
	cp.Images = slices.Clone(p.Images)
	return &cp, nil
}

// Cart

func (s *Store) CartItems(owner int64) []models.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.CartItem{}
	for _, r := range s.cart {
		if r.owner == owner {
			out = append(out, r.item)
		}
	}
	return out
}

// AddCartItem adds quantity of a product to the cart. A line with the same
// product and address is topped up instead of duplicated.
func (s *Store) AddCartItem(owner, productID int64, quantity int, addressID int64, notes string) (*models.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[productID]
	if !ok {
		return nil, errNotFound
	}
	var addrInfo *models.Address
	if addressID > 0 {
		a := s.address(owner, addressID)
		if a == nil {
			return nil, errNotFound
		}
		cp := a.addr
		addrInfo = &cp
	}

	for _, r := range s.cart {
		if r.owner == owner && r.item.ProductRef == productID && r.item.AddressID == addressID {
			r.item.Quantity += quantity
			if notes != "" {
				r.item.Notes = notes
			}
			item := r.item
			return &item, nil
		}
	}

	row := &cartRow{owner: owner, item: models.CartItem{
		ID:           s.id(),
		ProductRef:   p.ID,
		ProductName:  p.Name,
		ProductPrice: p.Price,
		ProductImage: p.PrimaryImage,
		ProductSKU:   p.SKU,
		Quantity:     quantity,
		AddressID:    addressID,
		AddressInfo:  addrInfo,
		Notes:        notes,
	}}
	s.cart = append(s.cart, row)
	item := row.item
	return &item, nil
}

func (s *Store) UpdateCartItem(owner, id int64, quantity int) (*models.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.cart {
		if r.owner == owner && r.item.ID == id {
			r.item.Quantity = quantity
			item := r.item
			return &item, nil
		}
	}
	return nil, errNotFound
}

func (s *Store) DeleteCartItem(owner, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range s.cart {
		if r.owner == owner && r.item.ID == id {
			s.cart = slices.Delete(s.cart, i, i+1)
			return nil
		}
	}
	return errNotFound
}

// Addresses

func (s *Store) address(owner, id int64) *addressRow {
	for _, r := range s.addresses {
		if r.owner == owner && r.addr.ID == id {
			return r
		}
	}
	return nil
}

func (s *Store) Addresses(owner int64) []models.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Address{}
	for _, r := range s.addresses {
		if r.owner == owner {
			out = append(out, r.addr)
		}
	}
	return out
}

func (s *Store) Address(owner, id int64) (*models.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r := s.address(owner, id)
	if r == nil {
		return nil, errNotFound
	}
	a := r.addr
	return &a, nil
}

// SaveAddress creates the address when id is zero and replaces it
// otherwise. Marking an address default clears the flag on the others;
// a user's first address is always default.
func (s *Store) SaveAddress(owner, id int64, addr models.Address) (*models.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var row *addressRow
	if id == 0 {
		row = &addressRow{owner: owner}
		addr.ID = s.id()
		first := true
		for _, r := range s.addresses {
			if r.owner == owner {
				first = false
				break
			}
		}
		addr.IsDefault = addr.IsDefault || first
		s.addresses = append(s.addresses, row)
	} else {
		row = s.address(owner, id)
		if row == nil {
			return nil, errNotFound
		}
		addr.ID = id
	}
	row.addr = addr

	if addr.IsDefault {
		for _, r := range s.addresses {
			if r.owner == owner && r != row {
				r.addr.IsDefault = false
			}
		}
	}
	a := row.addr
	return &a, nil
}

func (s *Store) DeleteAddress(owner, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range s.addresses {
		if r.owner == owner && r.addr.ID == id {
			s.addresses = slices.Delete(s.addresses, i, i+1)
			return nil
		}
	}
	return errNotFound
}

// Orders

// CreateOrder checks stock for every item before reserving any of it, so
// a rejected order leaves stock untouched.
func (s *Store) CreateOrder(owner int64, req models.CreateOrderRequest, orderNo string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.address(owner, req.AddressID) == nil {
		return nil, errNotFound
	}

	need := make(map[int64]int)
	for _, it := range req.Items {
		if _, ok := s.products[it.ProductID]; !ok {
			return nil, errNotFound
		}
		need[it.ProductID] += it.Quantity
	}
	for pid, qty := range need {
		if s.products[pid].Stock < qty {
			return nil, errInsufficientStock
		}
	}

	order := models.Order{
		ID:        s.id(),
		OrderNo:   orderNo,
		Status:    "pending",
		AddressID: req.AddressID,
		Remark:    req.Remark,
	}
	total := decimal.Zero
	for _, it := range req.Items {
		p := s.products[it.ProductID]
		p.Stock -= it.Quantity
		order.Items = append(order.Items, models.OrderItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    it.Quantity,
			Price:       p.Price,
		})
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	order.TotalAmount = total

	s.orders = append(s.orders, &orderRow{owner: owner, order: order})
	return &order, nil
}

// Orders lists the owner's orders, newest first.
func (s *Store) Orders(owner int64) []models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Order{}
	for i := len(s.orders) - 1; i >= 0; i-- {
		if r := s.orders[i]; r.owner == owner {
			out = append(out, r.order)
		}
	}
	return out
}

func (s *Store) Order(owner, id int64) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.orders {
		if r.owner == owner && r.order.ID == id {
			o := r.order
			return &o, nil
		}
	}
	return nil, errNotFound
}

func (s *Store) DeleteOrder(owner, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range s.orders {
		if r.owner == owner && r.order.ID == id {
			s.orders = slices.Delete(s.orders, i, i+1)
			return nil
		}
	}
	return errNotFound
}
