package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gather(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	out := make(map[string]*dto.MetricFamily, len(mfs))
	for _, mf := range mfs {
		out[mf.GetName()] = mf
	}
	return out
}

func TestCheckoutMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewCheckoutMetrics(reg)

	m.Checkout(ResultSuccess, 130000)
	m.Checkout(ResultSuccess, 530000)
	m.Checkout(ResultNoStock, 0)
	m.StockRejected("cart_add")
	m.Cancelled()

	fams := gather(t, reg)

	checkouts := fams["storefront_checkouts_total"]
	require.NotNil(t, checkouts)
	byResult := map[string]float64{}
	for _, metric := range checkouts.GetMetric() {
		byResult[metric.GetLabel()[0].GetValue()] = metric.GetCounter().GetValue()
	}
	assert.Equal(t, 2.0, byResult[ResultSuccess])
	assert.Equal(t, 1.0, byResult[ResultNoStock])

	hist := fams["storefront_order_total"].GetMetric()[0].GetHistogram()
	assert.Equal(t, uint64(2), hist.GetSampleCount())
	assert.Equal(t, 660000.0, hist.GetSampleSum())

	assert.Equal(t, 1.0, fams["storefront_order_cancellations_total"].GetMetric()[0].GetCounter().GetValue())
}

func TestCheckoutMetrics_NilSafe(t *testing.T) {
	t.Parallel()

	var m *CheckoutMetrics
	assert.NotPanics(t, func() {
		m.Checkout(ResultSuccess, 1)
		m.StockRejected("x")
		m.Cancelled()
	})
}
