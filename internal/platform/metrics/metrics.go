// Package metrics holds the prometheus collectors exported on /metrics.
// Every observer is safe to call on a nil receiver so components can run
// without instrumentation in tests.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "carepoint"

// Availability outcome labels.
const (
	OutcomeOK       = "ok"
	OutcomeVacation = "vacation"
	OutcomeInvalid  = "invalid"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Availability counts availability computations and the number of free slots
// they returned.
type Availability struct {
	requests  *prometheus.CounterVec
	available prometheus.Histogram
}

func NewAvailability(reg prometheus.Registerer) *Availability {
	m := &Availability{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "availability",
			Name:      "requests_total",
			Help:      "Availability computations by outcome",
		}, []string{"outcome"}),
		available: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "availability",
			Name:      "available_slots",
			Help:      "Free slots returned per successful computation",
			Buckets:   prometheus.LinearBuckets(0, 4, 9),
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requests, m.available)
	return m
}

func (m *Availability) Observe(outcome string, availableCount int) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
	if outcome == OutcomeOK {
		m.available.Observe(float64(availableCount))
	}
}

// HTTP tracks request counts and latency by method, route and status.
type HTTP struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

func NewHTTP(reg prometheus.Registerer) *HTTP {
	m := &HTTP{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests handled",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requests, m.latency)
	return m
}

func (m *HTTP) Observe(method, route string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(method, route).Observe(seconds)
}
