package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg *prometheus.Registry

	OrdersCreated     prometheus.Counter
	OrdersCancelled   prometheus.Counter
	CheckoutFailures  prometheus.Counter
	StockConflicts    prometheus.Counter
	CheckoutDuration  prometheus.Histogram
	CompensationFails prometheus.Counter
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	created := prometheus.NewCounter(prometheus.CounterOpts{Name: "shop_orders_created_total"})
	cancelled := prometheus.NewCounter(prometheus.CounterOpts{Name: "shop_orders_cancelled_total"})
	failures := prometheus.NewCounter(prometheus.CounterOpts{Name: "shop_checkout_failures_total"})
	conflicts := prometheus.NewCounter(prometheus.CounterOpts{Name: "shop_stock_reservation_conflicts_total"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "shop_checkout_duration_seconds",
		Buckets: prometheus.DefBuckets,
	})
	compensations := prometheus.NewCounter(prometheus.CounterOpts{Name: "shop_compensation_failures_total"})

	r.MustRegister(created, cancelled, failures, conflicts, duration, compensations)

	return &Registry{
		reg:               r,
		OrdersCreated:     created,
		OrdersCancelled:   cancelled,
		CheckoutFailures:  failures,
		StockConflicts:    conflicts,
		CheckoutDuration:  duration,
		CompensationFails: compensations,
	}
}

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
