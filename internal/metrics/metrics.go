// Package metrics exposes Prometheus instruments for quote calculation and
// persistence.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "juzely"

// Metrics is safe to use as a nil pointer; every method becomes a no-op.
type Metrics struct {
	calculations   *prometheus.CounterVec
	calcDuration   *prometheus.HistogramVec
	quoteTotal     *prometheus.HistogramVec
	storeOps       *prometheus.CounterVec
	storeDuration  *prometheus.HistogramVec
	matrixInvalids prometheus.Counter
}

// New registers the instruments on reg. A nil registerer yields no-op metrics.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	m := &Metrics{
		calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_calculations_total",
			Help:      "Quote calculations by garment and outcome.",
		}, []string{"garment", "outcome"}),
		calcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quote_calculation_duration_seconds",
			Help:      "Duration of quote calculations in seconds.",
			Buckets:   []float64{.00001, .0001, .0005, .001, .005, .01},
		}, []string{"garment"}),
		quoteTotal: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quote_total_price",
			Help:      "Total price of calculated quotes.",
			Buckets:   prometheus.ExponentialBuckets(10, 2, 12),
		}, []string{"garment"}),
		storeOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Quote store operations by operation and outcome.",
		}, []string{"op", "outcome"}),
		storeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_duration_seconds",
			Help:      "Duration of quote store operations in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		matrixInvalids: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "size_matrix_invalid_cells_total",
			Help:      "Size matrix cell edits that fell outside the accepted range.",
		}),
	}
	reg.MustRegister(m.calculations, m.calcDuration, m.quoteTotal, m.storeOps, m.storeDuration, m.matrixInvalids)
	return m
}

// ObserveCalculation records one calculation. total is ignored on failure.
func (m *Metrics) ObserveCalculation(garment string, duration time.Duration, total float64, err error) {
	if m == nil || m.calculations == nil {
		return
	}
	garment = normalizeLabel(garment)
	if err != nil {
		m.calculations.WithLabelValues(garment, "failure").Inc()
		return
	}
	m.calculations.WithLabelValues(garment, "success").Inc()
	m.calcDuration.WithLabelValues(garment).Observe(duration.Seconds())
	m.quoteTotal.WithLabelValues(garment).Observe(total)
}

// ObserveStore records one store operation.
func (m *Metrics) ObserveStore(op string, duration time.Duration, err error) {
	if m == nil || m.storeOps == nil {
		return
	}
	op = normalizeLabel(op)
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.storeOps.WithLabelValues(op, outcome).Inc()
	m.storeDuration.WithLabelValues(op).Observe(duration.Seconds())
}

func (m *Metrics) IncInvalidCell() {
	if m == nil || m.matrixInvalids == nil {
		return
	}
	m.matrixInvalids.Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
