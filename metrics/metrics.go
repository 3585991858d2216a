package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the proxy collectors. A nil *Metrics records nothing.
type Metrics struct {
	requests           *prometheus.CounterVec
	generationDuration prometheus.Histogram
	generationFailures prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gemini_proxy_requests_total",
				Help: "Requests answered by the proxy, by HTTP status code",
			},
			[]string{"code"},
		),
		generationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "gemini_proxy_generation_duration_seconds",
				Help:    "Latency of upstream generateContent calls",
				Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
			},
		),
		generationFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "gemini_proxy_generation_failures_total",
				Help: "Upstream generation calls that returned an error",
			},
		),
	}
	reg.MustRegister(m.requests, m.generationDuration, m.generationFailures)
	return m
}

// RecordRequest counts one answered request.
func (m *Metrics) RecordRequest(code int) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(strconv.Itoa(code)).Inc()
}

// ObserveGeneration records one upstream call.
func (m *Metrics) ObserveGeneration(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.generationDuration.Observe(d.Seconds())
	if err != nil {
		m.generationFailures.Inc()
	}
}
