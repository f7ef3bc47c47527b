package checkout

import (
	"fmt"

	"github.com/mmynk/storefront/internal/models"
)

// GroupOutcome is the result of one group's order-creation call.
type GroupOutcome struct {
	Group models.AddressGroup
	// Order is set when the order was created.
	Order *models.Order
	Err   error
}

// Result reports every group of a submission in group order.
type Result struct {
	Outcomes []GroupOutcome
}

// Orders returns the created orders.
func (r *Result) Orders() []models.Order {
	var out []models.Order
	for _, o := range r.Outcomes {
		if o.Order != nil {
			out = append(out, *o.Order)
		}
	}
	return out
}

// OrderIDs returns the ids of the created orders.
func (r *Result) OrderIDs() []int64 {
	var ids []int64
	for _, o := range r.Outcomes {
		if o.Order != nil {
			ids = append(ids, o.Order.ID)
		}
	}
	return ids
}

// Failures returns the groups whose order was not created.
func (r *Result) Failures() []GroupOutcome {
	var out []GroupOutcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			out = append(out, o)
		}
	}
	return out
}

func (r *Result) Created() int { return len(r.OrderIDs()) }

func (r *Result) Total() int { return len(r.Outcomes) }

// Summary reads "N of M orders created".
func (r *Result) Summary() string {
	return fmt.Sprintf("%d of %d orders created", r.Created(), r.Total())
}
