// Package checkout turns selected cart lines into orders, one per delivery
// address.
//
// An attempt moves Staged → Validated → Submitting → Completed | Failed.
// Submission issues every group's create call concurrently and is not
// atomic: orders that were created stay created when a sibling group fails.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mmynk/storefront/internal/apierr"
	"github.com/mmynk/storefront/internal/metrics"
	"github.com/mmynk/storefront/internal/models"
)

// State of a checkout attempt.
type State int

const (
	StateEmpty State = iota
	StateStaged
	StateValidated
	StateSubmitting
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateStaged:
		return "staged"
	case StateValidated:
		return "validated"
	case StateSubmitting:
		return "submitting"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "empty"
	}
}

var (
	// ErrSubmitting is returned when the attempt is in flight. Submission
	// cannot be cancelled or restaged until it finishes.
	ErrSubmitting = errors.New("checkout: submission in progress")
	// ErrInvalidState is returned when an operation does not apply to the
	// current state.
	ErrInvalidState = errors.New("checkout: invalid state")
	// ErrUnknownGroup is returned by SelectAddress for a key with no group.
	ErrUnknownGroup = errors.New("checkout: unknown address group")
)

// OrderCreator creates one order.
type OrderCreator interface {
	Create(ctx context.Context, req models.CreateOrderRequest) (*models.Order, error)
}

// CartItemDeleter removes one cart line.
type CartItemDeleter interface {
	DeleteItem(ctx context.Context, id int64) error
}

// SessionChecker reports whether the caller is logged in.
type SessionChecker interface {
	LoggedIn() bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithSession makes Submit fail with a silent AuthRequired, without any
// network call, while logged out.
func WithSession(s SessionChecker) Option {
	return func(o *Orchestrator) { o.session = s }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithMaxConcurrent bounds concurrent create and delete calls. Zero or
// less means one call per group at once.
func WithMaxConcurrent(n int) Option {
	return func(o *Orchestrator) { o.maxConcurrent = n }
}

// Orchestrator owns the lines of one checkout attempt at a time.
// It is safe for concurrent use.
type Orchestrator struct {
	orders OrderCreator
	cart   CartItemDeleter

	session       SessionChecker
	logger        *slog.Logger
	metrics       *metrics.Metrics
	maxConcurrent int

	mu       sync.Mutex
	state    State
	lines    []models.CheckoutLine
	groups   []models.AddressGroup
	selected map[string]models.Address
}

// New creates an Orchestrator. cart may be nil, in which case ordered lines
// are left in the cart.
func New(orders OrderCreator, cart CartItemDeleter, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		orders:   orders,
		cart:     cart,
		logger:   slog.Default(),
		selected: make(map[string]models.Address),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns the current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Stage replaces the staged lines and starts a new attempt. Zero lines is
// an EmptySelection error and leaves the orchestrator unchanged.
func (o *Orchestrator) Stage(lines []models.CheckoutLine) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state == StateSubmitting {
		return ErrSubmitting
	}
	if len(lines) == 0 {
		return apierr.EmptySelection("")
	}

	o.lines = append([]models.CheckoutLine(nil), lines...)
	o.groups = nil
	o.selected = make(map[string]models.Address)
	o.state = StateStaged
	return nil
}

// Validate drops invalid lines and groups the rest by address. It may be
// called again while Validated; address selections are kept. If no valid
// line remains the attempt fails with EmptySelection.
func (o *Orchestrator) Validate() ([]models.AddressGroup, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch o.state {
	case StateStaged, StateValidated:
	case StateSubmitting:
		return nil, ErrSubmitting
	default:
		return nil, fmt.Errorf("%w: validate while %s", ErrInvalidState, o.state)
	}

	valid := o.lines[:0:0]
	for _, l := range o.lines {
		if l.Valid() {
			valid = append(valid, l)
			continue
		}
		o.logger.Debug("Dropping invalid checkout line",
			"cart_item_id", l.CartItemID,
			"product_id", l.ProductID,
			"quantity", l.Quantity,
		)
	}
	if len(valid) == 0 {
		o.lines = nil
		o.groups = nil
		o.state = StateFailed
		return nil, apierr.EmptySelection("")
	}

	o.lines = valid
	o.groups = groupLines(valid)
	for i := range o.groups {
		if addr, ok := o.selected[o.groups[i].Key]; ok {
			a := addr
			o.groups[i].SelectedAddress = &a
		}
	}
	o.state = StateValidated
	return cloneGroups(o.groups), nil
}

// Groups returns a copy of the current address groups.
func (o *Orchestrator) Groups() []models.AddressGroup {
	o.mu.Lock()
	defer o.mu.Unlock()
	return cloneGroups(o.groups)
}

// SelectAddress sets the delivery address of the group with key.
func (o *Orchestrator) SelectAddress(key string, addr models.Address) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state == StateSubmitting {
		return ErrSubmitting
	}
	if o.state != StateValidated {
		return fmt.Errorf("%w: select address while %s", ErrInvalidState, o.state)
	}
	if addr.ID <= 0 {
		return apierr.AddressRequired("")
	}

	for i := range o.groups {
		if o.groups[i].Key == key {
			a := addr
			o.groups[i].SelectedAddress = &a
			o.selected[key] = addr
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownGroup, key)
}

// Ready reports whether every group has a delivery address.
func (o *Orchestrator) Ready() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state == StateValidated && missingAddress(o.groups) == ""
}

// Abandon discards the attempt. It fails only while submitting.
func (o *Orchestrator) Abandon() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state == StateSubmitting {
		return ErrSubmitting
	}
	o.reset()
	return nil
}

func (o *Orchestrator) reset() {
	o.lines = nil
	o.groups = nil
	o.selected = make(map[string]models.Address)
	o.state = StateEmpty
}

// Submit creates one order per group, all concurrently. ctx values are
// used for the calls but its cancellation is not: once issued, calls run
// to completion.
//
// On full success staged lines are deleted from the cart (best effort) and
// the attempt is Completed. Otherwise the attempt is Failed and nothing is
// rolled back. The error is PartialCheckout when some orders were created,
// else the first group's error. The Result is returned in both cases.
func (o *Orchestrator) Submit(ctx context.Context) (*Result, error) {
	o.mu.Lock()
	switch o.state {
	case StateValidated:
	case StateSubmitting:
		o.mu.Unlock()
		return nil, ErrSubmitting
	default:
		state := o.state
		o.mu.Unlock()
		return nil, fmt.Errorf("%w: submit while %s", ErrInvalidState, state)
	}
	if o.session != nil && !o.session.LoggedIn() {
		o.mu.Unlock()
		return nil, apierr.AuthRequired()
	}
	if key := missingAddress(o.groups); key != "" {
		o.mu.Unlock()
		return nil, apierr.AddressRequired(fmt.Sprintf("please select a delivery address for group %s", key))
	}
	groups := cloneGroups(o.groups)
	o.state = StateSubmitting
	o.mu.Unlock()

	ctx = context.WithoutCancel(ctx)
	result := o.createOrders(ctx, groups)

	created, total := result.Created(), result.Total()
	if created == total {
		o.deleteCartLines(ctx, groups)

		o.mu.Lock()
		o.reset()
		o.state = StateCompleted
		o.mu.Unlock()

		o.metrics.ObserveCheckout(metrics.CheckoutCompleted, created)
		o.logger.Info("Checkout completed", "orders", created, "order_ids", result.OrderIDs())
		return result, nil
	}

	o.mu.Lock()
	o.state = StateFailed
	o.mu.Unlock()

	failures := result.Failures()
	if created == 0 {
		o.metrics.ObserveCheckout(metrics.CheckoutFailed, 0)
		return result, allFailed(failures)
	}

	o.metrics.ObserveCheckout(metrics.CheckoutPartial, created)
	o.logger.Warn("Checkout partially failed",
		"created", created,
		"total", total,
		"order_ids", result.OrderIDs(),
	)
	return result, apierr.PartialCheckout(created, total, joinFailures(failures))
}

// allFailed reports a checkout in which no order was created. A single
// failure, or failures that are all silent, are returned as the first error.
// Otherwise the group errors are joined under a RequestFailed carrying the
// first displayable message.
func allFailed(failures []GroupOutcome) error {
	if len(failures) == 1 {
		return failures[0].Err
	}
	for _, f := range failures {
		if apierr.IsSilent(f.Err) {
			continue
		}
		return &apierr.Error{
			Kind:    apierr.KindRequestFailed,
			Message: apierr.UserMessage(f.Err),
			Err:     joinFailures(failures),
		}
	}
	return failures[0].Err
}

func joinFailures(failures []GroupOutcome) error {
	errs := make([]error, len(failures))
	for i, f := range failures {
		errs[i] = fmt.Errorf("group %s: %w", f.Group.Key, f.Err)
	}
	return errors.Join(errs...)
}

func (o *Orchestrator) createOrders(ctx context.Context, groups []models.AddressGroup) *Result {
	outcomes := make([]GroupOutcome, len(groups))

	var g errgroup.Group
	if o.maxConcurrent > 0 {
		g.SetLimit(o.maxConcurrent)
	}
	for i := range groups {
		g.Go(func() error {
			order, err := o.orders.Create(ctx, orderRequest(groups[i]))
			outcomes[i] = GroupOutcome{Group: groups[i], Order: order, Err: err}
			if err != nil {
				outcomes[i].Order = nil
				if !apierr.IsSilent(err) {
					o.logger.Error("Order creation failed", "group", groups[i].Key, "error", err)
				}
			} else if order == nil {
				outcomes[i].Err = errors.New("order creator returned no order")
			}
			return nil
		})
	}
	_ = g.Wait()

	return &Result{Outcomes: outcomes}
}

func (o *Orchestrator) deleteCartLines(ctx context.Context, groups []models.AddressGroup) {
	if o.cart == nil {
		return
	}

	var g errgroup.Group
	if o.maxConcurrent > 0 {
		g.SetLimit(o.maxConcurrent)
	}
	for _, grp := range groups {
		for _, l := range grp.Lines {
			if l.CartItemID <= 0 {
				continue
			}
			g.Go(func() error {
				if err := o.cart.DeleteItem(ctx, l.CartItemID); err != nil && !apierr.IsSilent(err) {
					o.logger.Warn("Failed to remove ordered item from cart", "cart_item_id", l.CartItemID, "error", err)
				}
				return nil
			})
		}
	}
	_ = g.Wait()
}

// missingAddress returns the key of the first group without a usable
// address, or "".
func missingAddress(groups []models.AddressGroup) string {
	for _, g := range groups {
		if g.SelectedAddress == nil || g.SelectedAddress.ID <= 0 {
			return g.Key
		}
	}
	return ""
}

func cloneGroups(in []models.AddressGroup) []models.AddressGroup {
	if in == nil {
		return nil
	}
	out := make([]models.AddressGroup, len(in))
	for i, g := range in {
		out[i] = g
		out[i].Lines = append([]models.CheckoutLine(nil), g.Lines...)
		if g.SelectedAddress != nil {
			a := *g.SelectedAddress
			out[i].SelectedAddress = &a
		}
	}
	return out
}
