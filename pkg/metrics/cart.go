package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics tracks cart mutations, recalculation latency and cache hits.
type CartMetrics struct {
	mutations   *prometheus.CounterVec
	recalculate prometheus.Histogram
	cache       *prometheus.CounterVec
}

// NewCartMetrics registers the cart collectors on reg.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_mutations_total",
		Help:      "Committed cart mutations by operation.",
	}, []string{"op"})
	recalculate := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "cart_recalculate_seconds",
		Help:      "Duration of cart totals recalculation.",
		Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
	})
	cache := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_cache_lookups_total",
		Help:      "Cart read cache lookups by result.",
	}, []string{"result"})
	reg.MustRegister(mutations, recalculate, cache)
	return &CartMetrics{mutations: mutations, recalculate: recalculate, cache: cache}
}

func (m *CartMetrics) IncMutation(op string) {
	if m == nil || m.mutations == nil {
		return
	}
	m.mutations.WithLabelValues(normalizeLabel(op)).Inc()
}

func (m *CartMetrics) ObserveRecalculate(d time.Duration) {
	if m == nil || m.recalculate == nil {
		return
	}
	m.recalculate.Observe(d.Seconds())
}

// CacheLookup records a read cache hit or miss.
func (m *CartMetrics) CacheLookup(hit bool) {
	if m == nil || m.cache == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cache.WithLabelValues(result).Inc()
}
