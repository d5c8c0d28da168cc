package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "storefront"

const (
	ResultSuccess     = "success"
	ResultEmptyCart   = "empty_cart"
	ResultNoStock     = "insufficient_stock"
	ResultValidation  = "validation"
	ResultCartChanged = "cart_changed"
	ResultError       = "error"
)

type CheckoutMetrics struct {
	Checkouts       *prometheus.CounterVec
	OrderTotal      prometheus.Histogram
	StockRejections *prometheus.CounterVec
	Cancellations   prometheus.Counter
}

func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	m := &CheckoutMetrics{
		Checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkouts_total",
			Help:      "Checkout attempts by result.",
		}, []string{"result"}),
		OrderTotal: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "order_total",
			Help:      "Order grand totals in currency units.",
			Buckets:   prometheus.ExponentialBuckets(10000, 2.5, 10),
		}),
		StockRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_rejections_total",
			Help:      "Cart and checkout operations rejected for lack of stock.",
		}, []string{"operation"}),
		Cancellations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_cancellations_total",
			Help:      "Orders cancelled with stock restored.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Checkouts, m.OrderTotal, m.StockRejections, m.Cancellations)
	}
	return m
}

// The methods below are nil-safe so services can run without metrics.

func (m *CheckoutMetrics) Checkout(result string, total int64) {
	if m == nil {
		return
	}
	m.Checkouts.WithLabelValues(result).Inc()
	if result == ResultSuccess {
		m.OrderTotal.Observe(float64(total))
	}
}

func (m *CheckoutMetrics) StockRejected(operation string) {
	if m == nil {
		return
	}
	m.StockRejections.WithLabelValues(operation).Inc()
}

func (m *CheckoutMetrics) Cancelled() {
	if m == nil {
		return
	}
	m.Cancellations.Inc()
}
