package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the checkout service.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration    *prometheus.HistogramVec
	gatewayErrors      *prometheus.CounterVec
	checkoutsTotal     *prometheus.CounterVec
	splitOverallocated prometheus.Counter
	cacheHits          *prometheus.CounterVec
	cacheMisses        *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "checkout_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		gatewayErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "checkout_gateway_errors_total",
				Help: "Total gateway failures by pipeline step.",
			},
			[]string{"step"},
		),
		checkoutsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "checkout_requests_total",
				Help: "Total checkouts processed by outcome.",
			},
			[]string{"status"},
		),
		splitOverallocated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "checkout_split_overallocation_total",
				Help: "Subscriptions whose commission sum exceeded the split pool.",
			},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "checkout_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "checkout_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrGatewayError increments the gateway error counter for a step.
func (m *Metrics) IncrGatewayError(step string) {
	m.gatewayErrors.WithLabelValues(step).Inc()
}

// IncrCheckout increments the checkout counter with an outcome label.
func (m *Metrics) IncrCheckout(status string) {
	m.checkoutsTotal.WithLabelValues(status).Inc()
}

// IncrSplitOverallocation records a subscription split exceeding the pool.
func (m *Metrics) IncrSplitOverallocation() {
	m.splitOverallocated.Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// CheckoutCount returns the current value of the checkout counter for a
// given outcome label. Used by tests to observe warnings-as-metrics.
func (m *Metrics) CheckoutCount(status string) float64 {
	return getCounterValue(m.checkoutsTotal, status)
}

// SplitOverallocationCount returns the over-allocation counter value.
func (m *Metrics) SplitOverallocationCount() float64 {
	var out dto.Metric
	if err := m.splitOverallocated.Write(&out); err != nil {
		return 0
	}
	if out.Counter != nil && out.Counter.Value != nil {
		return *out.Counter.Value
	}
	return 0
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
