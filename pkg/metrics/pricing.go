package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// PricingMetrics counts pricing requests by configuration kind and outcome.
type PricingMetrics struct {
	requests *prometheus.CounterVec
	rejected *prometheus.CounterVec
}

// NewPricingMetrics registers the pricing collectors on reg. A nil registerer
// yields a no-op instance.
func NewPricingMetrics(reg prometheus.Registerer) *PricingMetrics {
	if reg == nil {
		return &PricingMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pricing_requests_total",
		Help:      "Pricing requests by configuration kind and outcome.",
	}, []string{"kind", "outcome"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pricing_rejections_total",
		Help:      "Rejected configurations by reason.",
	}, []string{"reason"})
	reg.MustRegister(requests, rejected)
	return &PricingMetrics{requests: requests, rejected: rejected}
}

// Observe records a finished pricing request.
func (m *PricingMetrics) Observe(kind, outcome string) {
	if m == nil || m.requests == nil {
		return
	}
	m.requests.WithLabelValues(normalizeLabel(kind), normalizeLabel(outcome)).Inc()
}

// Rejected records the configuration error reason of a rejected request.
func (m *PricingMetrics) Rejected(reason string) {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.WithLabelValues(normalizeLabel(reason)).Inc()
}
