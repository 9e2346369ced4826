package augment

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for severity augmentation
type Metrics struct {
	CallsTotal    *prometheus.CounterVec
	CallDuration  *prometheus.HistogramVec
	OutcomesTotal *prometheus.CounterVec
}

// NewMetrics registers and returns augmentation metrics on the given registerer
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "symptriage_augment_calls_total",
			Help: "Severity estimate lookups by provider and result.",
		}, []string{"provider", "result"}),
		CallDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "symptriage_augment_call_duration_seconds",
			Help:    "Duration of remote severity estimate calls in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms .. ~25s
		}, []string{"provider"}),
		OutcomesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "symptriage_augment_outcomes_total",
			Help: "Augmentation attempts by provider and outcome.",
		}, []string{"provider", "outcome"}),
	}

	reg.MustRegister(m.CallsTotal, m.CallDuration, m.OutcomesTotal)

	return m
}

// Hooks returns Hooks that update the corresponding metrics
func (m *Metrics) Hooks() Hooks {
	return Hooks{
		OnCall: func(provider string, seconds float64, cached bool, err error) {
			result := "success"
			switch {
			case cached:
				result = "cache_hit"
			case err != nil:
				result = "error"
			}
			m.CallsTotal.WithLabelValues(provider, result).Inc()
			if !cached {
				m.CallDuration.WithLabelValues(provider).Observe(seconds)
			}
		},
		OnOutcome: func(provider string, outcome Outcome) {
			m.OutcomesTotal.WithLabelValues(provider, string(outcome)).Inc()
		},
	}
}
