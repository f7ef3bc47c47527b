// Package metrics exposes Prometheus collectors for the gateway and the
// checkout orchestrator. A nil *Metrics is valid and records nothing.
package metrics

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

// Request outcomes.
const (
	OutcomeOK            = "ok"
	OutcomeAuthRequired  = "auth_required"
	OutcomeAuthExpired   = "auth_expired"
	OutcomeRequestFailed = "request_failed"
	OutcomeNetwork       = "network_error"
)

// Checkout outcomes.
const (
	CheckoutCompleted = "completed"
	CheckoutPartial   = "partial"
	CheckoutFailed    = "failed"
)

type Metrics struct {
	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	ordersCreated prometheus.Counter
	checkouts     *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. A nil reg skips
// registration.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "gateway",
				Name:      "requests_total",
				Help:      "Total number of backend requests by outcome.",
			},
			[]string{"method", "endpoint", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "gateway",
				Name:      "request_duration_seconds",
				Help:      "Duration of backend requests that reached the network.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
			},
			[]string{"method", "endpoint"},
		),
		ordersCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "checkout",
				Name:      "orders_created_total",
				Help:      "Total number of orders created by checkout.",
			},
		),
		checkouts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "checkout",
				Name:      "submissions_total",
				Help:      "Total number of checkout submissions by outcome.",
			},
			[]string{"outcome"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.requests, m.duration, m.ordersCreated, m.checkouts)
	}
	return m
}

// ObserveRequest records one gateway call. d is ignored when zero
// (pre-flight rejections never reach the network).
func (m *Metrics) ObserveRequest(method, path, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	endpoint := EndpointLabel(path)
	m.requests.WithLabelValues(method, endpoint, outcome).Inc()
	if d > 0 {
		m.duration.WithLabelValues(method, endpoint).Observe(d.Seconds())
	}
}

// ObserveCheckout records a finished submission and the orders it created.
func (m *Metrics) ObserveCheckout(outcome string, created int) {
	if m == nil {
		return
	}
	m.checkouts.WithLabelValues(outcome).Inc()
	if created > 0 {
		m.ordersCreated.Add(float64(created))
	}
}

// EndpointLabel collapses numeric path segments so ids do not explode
// label cardinality: /api/v1/orders/42/ becomes /api/v1/orders/{id}/.
func EndpointLabel(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if p != "" && isDigits(p) {
			parts[i] = "{id}"
		}
	}
	return strings.Join(parts, "/")
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Handler serves the collectors registered with g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// WriteText writes one line per counter series and one per histogram
// series (count and sum) gathered from g, sorted by name. It is meant for
// short-lived processes that exit before anything could scrape them.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			pairs := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				pairs = append(pairs, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}
			labels := ""
			if len(pairs) > 0 {
				labels = "{" + strings.Join(pairs, ",") + "}"
			}

			switch {
			case m.GetCounter() != nil:
				lines = append(lines, fmt.Sprintf("%s%s %g", mf.GetName(), labels, m.GetCounter().GetValue()))
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				lines = append(lines,
					fmt.Sprintf("%s_count%s %d", mf.GetName(), labels, h.GetSampleCount()),
					fmt.Sprintf("%s_sum%s %g", mf.GetName(), labels, h.GetSampleSum()),
				)
			}
		}
	}
	sort.Strings(lines)

	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}
