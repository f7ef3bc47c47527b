package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mmynk/storefront/internal/apierr"
	"github.com/mmynk/storefront/internal/calculator"
	"github.com/mmynk/storefront/internal/checkout"
	"github.com/mmynk/storefront/internal/config"
	"github.com/mmynk/storefront/internal/gateway"
	"github.com/mmynk/storefront/internal/metrics"
	"github.com/mmynk/storefront/internal/models"
	"github.com/mmynk/storefront/internal/service"
	"github.com/mmynk/storefront/internal/session"
	"github.com/mmynk/storefront/internal/storage"
)

var errUsage = errors.New("invalid usage")

type app struct {
	cfg    config.Config
	out    io.Writer
	logger *slog.Logger

	registry *prometheus.Registry
	metrics  *metrics.Metrics

	session   *session.Store
	auth      *service.AuthService
	products  *service.ProductService
	cart      *service.CartService
	orders    *service.OrderService
	addresses *service.AddressService
}

func newApp(cfg config.Config, persist storage.SessionStore, out io.Writer, logger *slog.Logger) *app {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	sess := session.New(session.WithPersistence(persist), session.WithLogger(logger))
	gw := gateway.New(sess, gateway.Config{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Logger:  logger,
		Metrics: m,
	})

	return &app{
		cfg:       cfg,
		out:       out,
		logger:    logger,
		registry:  reg,
		metrics:   m,
		session:   sess,
		auth:      service.NewAuthService(gw, sess, logger),
		products:  service.NewProductService(gw),
		cart:      service.NewCartService(gw, logger),
		orders:    service.NewOrderService(gw, logger),
		addresses: service.NewAddressService(gw),
	}
}

func (a *app) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		return a.login(ctx, args)
	case "logout":
		a.auth.Logout()
		fmt.Fprintln(a.out, "logged out")
		return nil
	case "whoami":
		return a.whoami(ctx)
	case "products":
		return a.listProducts(ctx, args)
	case "categories":
		return a.listCategories(ctx)
	case "cart":
		return a.listCart(ctx)
	case "add":
		return a.addToCart(ctx, args)
	case "update":
		return a.updateCart(ctx, args)
	case "remove":
		return a.removeFromCart(ctx, args)
	case "checkout":
		return a.checkout(ctx, args)
	case "orders":
		return a.listOrders(ctx, args)
	case "addresses":
		return a.manageAddresses(ctx, args)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := a.flags("login")
	username := fs.String("u", "", "username")
	password := fs.String("p", "", "password")
	if err := parse(fs, args); err != nil {
		return err
	}

	user, err := a.auth.Login(ctx, *username, *password)
	if err != nil {
		return err
	}
	if user != nil {
		fmt.Fprintf(a.out, "logged in as %s\n", displayName(user))
	} else {
		fmt.Fprintln(a.out, "logged in")
	}
	return nil
}

func (a *app) whoami(ctx context.Context) error {
	user, err := a.auth.Profile(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s (id %d)\n", displayName(user), user.ID)
	if user.Email != "" {
		fmt.Fprintf(a.out, "email: %s\n", user.Email)
	}
	if user.Phone != "" {
		fmt.Fprintf(a.out, "phone: %s\n", user.Phone)
	}
	return nil
}

func displayName(u *models.User) string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Username
}

func (a *app) listProducts(ctx context.Context, args []string) error {
	fs := a.flags("products")
	id := fs.Int64("id", 0, "show one product")
	search := fs.String("search", "", "search term")
	category := fs.Int64("category", 0, "category id")
	featured := fs.Bool("featured", false, "featured products only")
	if err := parse(fs, args); err != nil {
		return err
	}

	if *id > 0 {
		p, err := a.products.Detail(ctx, *id)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s  ¥%s  (stock %d)\n", p.Name, calculator.Format(p.Price), p.Stock)
		if p.Description != "" {
			fmt.Fprintln(a.out, p.Description)
		}
		return nil
	}

	list, err := a.products.List(ctx, models.ProductFilter{CategoryID: *category, Search: *search, Featured: *featured})
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tSTOCK")
	for _, p := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", p.ID, p.Name, calculator.Format(p.Price), p.Stock)
	}
	return tw.Flush()
}

func (a *app) listCategories(ctx context.Context) error {
	cats, err := a.products.Categories(ctx)
	if err != nil {
		return err
	}
	for _, c := range cats {
		fmt.Fprintf(a.out, "%d\t%s\n", c.ID, c.Name)
	}
	return nil
}

func (a *app) listCart(ctx context.Context) error {
	items, err := a.cart.List(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(a.out, "cart is empty")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPRODUCT\tQTY\tPRICE\tADDRESS")
	for _, it := range items {
		addr := "-"
		if it.AddressID > 0 {
			addr = strconv.FormatInt(it.AddressID, 10)
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", it.ID, it.ProductName, it.Quantity, calculator.Format(it.ProductPrice), addr)
	}
	return tw.Flush()
}

func (a *app) addToCart(ctx context.Context, args []string) error {
	fs := a.flags("add")
	product := fs.Int64("product", 0, "product id")
	qty := fs.Int("qty", 1, "quantity")
	address := fs.Int64("address", 0, "delivery address id")
	notes := fs.String("notes", "", "notes for this line")
	if err := parse(fs, args); err != nil {
		return err
	}

	req := models.AddCartItem{ProductID: *product, Quantity: *qty, Notes: *notes}
	if *address > 0 {
		req.AddressID = address
	}
	item, err := a.cart.AddItem(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "added %s (cart line %d, qty %d)\n", item.ProductName, item.ID, item.Quantity)
	return nil
}

func (a *app) updateCart(ctx context.Context, args []string) error {
	fs := a.flags("update")
	id := fs.Int64("id", 0, "cart line id")
	qty := fs.Int("qty", 0, "new quantity")
	if err := parse(fs, args); err != nil {
		return err
	}

	item, err := a.cart.UpdateItem(ctx, *id, *qty)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "cart line %d now qty %d\n", item.ID, item.Quantity)
	return nil
}

func (a *app) removeFromCart(ctx context.Context, args []string) error {
	fs := a.flags("remove")
	id := fs.Int64("id", 0, "cart line id")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := a.cart.DeleteItem(ctx, *id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "removed cart line %d\n", *id)
	return nil
}

func (a *app) checkout(ctx context.Context, args []string) error {
	fs := a.flags("checkout")
	itemsFlag := fs.String("items", "", "comma-separated cart line ids (default: all)")
	address := fs.Int64("address", 0, "address for lines carted without one (default: your default address)")
	if err := parse(fs, args); err != nil {
		return err
	}

	items, err := a.cart.List(ctx)
	if err != nil {
		return err
	}
	items, err = selectItems(items, *itemsFlag)
	if err != nil {
		return err
	}

	o := checkout.New(a.orders, a.cart,
		checkout.WithSession(a.session),
		checkout.WithLogger(a.logger),
		checkout.WithMetrics(a.metrics),
		checkout.WithMaxConcurrent(a.cfg.MaxConcurrentOrders),
	)
	if err := o.Stage(checkout.LinesFromCart(items)); err != nil {
		return err
	}
	groups, err := o.Validate()
	if err != nil {
		return err
	}

	if !o.Ready() {
		fallback, err := a.fallbackAddress(ctx, *address)
		if err != nil {
			return err
		}
		for _, g := range groups {
			if g.SelectedAddress == nil {
				if err := o.SelectAddress(g.Key, *fallback); err != nil {
					return err
				}
			}
		}
		groups = o.Groups()
	}

	for _, g := range groups {
		fmt.Fprintf(a.out, "address %d: %d line(s), subtotal %s\n", g.SelectedAddress.ID, len(g.Lines), calculator.Format(g.Subtotal))
	}
	fmt.Fprintf(a.out, "total %s\n", calculator.Format(calculator.Total(groups)))

	res, err := o.Submit(ctx)
	if res != nil {
		for _, oc := range res.Outcomes {
			switch {
			case oc.Order != nil:
				fmt.Fprintf(a.out, "order %d created\n", oc.Order.ID)
			case !apierr.IsSilent(oc.Err):
				fmt.Fprintf(a.out, "address %s failed: %s\n", oc.Group.Key, apierr.UserMessage(oc.Err))
			}
		}
		if res.Created() > 0 {
			fmt.Fprintln(a.out, res.Summary())
		}
	}
	return err
}

// fallbackAddress resolves the address used for lines carted without one.
func (a *app) fallbackAddress(ctx context.Context, id int64) (*models.Address, error) {
	if id > 0 {
		return a.addresses.Detail(ctx, id)
	}
	list, err := a.addresses.List(ctx)
	if err != nil {
		return nil, err
	}
	addr := service.DefaultAddress(list)
	if addr == nil {
		return nil, apierr.AddressRequired("add a delivery address first: storefront addresses -add ...")
	}
	return addr, nil
}

// selectItems keeps the cart lines named in csv, in cart order. Empty csv
// keeps everything.
func selectItems(items []models.CartItem, csv string) ([]models.CartItem, error) {
	if strings.TrimSpace(csv) == "" {
		return items, nil
	}
	want := make(map[int64]bool)
	for _, f := range strings.Split(csv, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(f), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad cart line id %q", errUsage, f)
		}
		want[id] = true
	}

	var out []models.CartItem
	for _, it := range items {
		if want[it.ID] {
			out = append(out, it)
		}
	}
	return out, nil
}

func (a *app) listOrders(ctx context.Context, args []string) error {
	fs := a.flags("orders")
	id := fs.Int64("id", 0, "show one order")
	del := fs.Int64("delete", 0, "delete an order")
	if err := parse(fs, args); err != nil {
		return err
	}

	switch {
	case *del > 0:
		if err := a.orders.Delete(ctx, *del); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "deleted order %d\n", *del)
		return nil
	case *id > 0:
		o, err := a.orders.Detail(ctx, *id)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "order %d  %s  %s  total %s\n", o.ID, o.OrderNo, o.Status, calculator.Format(o.TotalAmount))
		for _, it := range o.Items {
			fmt.Fprintf(a.out, "  %s x%d @ %s\n", it.ProductName, it.Quantity, calculator.Format(it.Price))
		}
		return nil
	}

	list, err := a.orders.List(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNUMBER\tSTATUS\tTOTAL")
	for _, o := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", o.ID, o.OrderNo, o.Status, calculator.Format(o.TotalAmount))
	}
	return tw.Flush()
}

func (a *app) manageAddresses(ctx context.Context, args []string) error {
	fs := a.flags("addresses")
	add := fs.Bool("add", false, "add an address")
	del := fs.Int64("delete", 0, "delete an address")
	var addr models.Address
	fs.StringVar(&addr.Name, "name", "", "recipient name")
	fs.StringVar(&addr.Phone, "phone", "", "recipient phone")
	fs.StringVar(&addr.Province, "province", "", "province")
	fs.StringVar(&addr.City, "city", "", "city")
	fs.StringVar(&addr.District, "district", "", "district")
	fs.StringVar(&addr.Street, "street", "", "street")
	fs.StringVar(&addr.DetailAddress, "detail", "", "building, unit, room")
	fs.BoolVar(&addr.IsDefault, "default", false, "make this the default address")
	if err := parse(fs, args); err != nil {
		return err
	}

	switch {
	case *del > 0:
		if err := a.addresses.Delete(ctx, *del); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "deleted address %d\n", *del)
		return nil
	case *add:
		saved, err := a.addresses.Create(ctx, addr)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "added address %d\n", saved.ID)
		return nil
	}

	list, err := a.addresses.List(ctx)
	if err != nil {
		return err
	}
	for _, ad := range list {
		mark := " "
		if ad.IsDefault {
			mark = "*"
		}
		fmt.Fprintf(a.out, "%s %d  %s %s  %s%s%s %s %s\n", mark, ad.ID, ad.Name, ad.Phone,
			ad.Province, ad.City, ad.District, ad.Street, ad.DetailAddress)
	}
	return nil
}

func (a *app) writeMetrics(w io.Writer) {
	if err := metrics.WriteText(w, a.registry); err != nil {
		a.logger.Warn("Could not write metrics", "error", err)
	}
}
