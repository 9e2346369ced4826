package api

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ppiankov/symptriage/internal/model"
)

// Metrics holds Prometheus metrics for the HTTP endpoint
type Metrics struct {
	TriagesTotal   *prometheus.CounterVec
	TriageDuration prometheus.Histogram
	RequestsTotal  *prometheus.CounterVec
}

// NewMetrics registers and returns API metrics on the given registerer
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TriagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "symptriage_triages_total",
			Help: "Triage results by urgency and source.",
		}, []string{"urgency", "source"}),
		TriageDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "symptriage_triage_duration_seconds",
			Help:    "Time to produce a triage result, including augmentation.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10), // 0.5ms .. ~131s
		}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "symptriage_http_requests_total",
			Help: "Triage endpoint requests by status code.",
		}, []string{"code"}),
	}

	reg.MustRegister(m.TriagesTotal, m.TriageDuration, m.RequestsTotal)

	return m
}

func (m *Metrics) observeTriage(result *model.TriageResult, seconds float64) {
	m.TriagesTotal.WithLabelValues(string(result.Urgency), string(result.Source)).Inc()
	m.TriageDuration.Observe(seconds)
}

func (m *Metrics) observeRequest(code int) {
	m.RequestsTotal.WithLabelValues(strconv.Itoa(code)).Inc()
}
