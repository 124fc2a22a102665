// Package metrics holds the Prometheus collectors exported on the metrics port.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/MikeSquared-Agency/Weigh/internal/bwm"
)

const (
	OutcomeConsistent   = "consistent"
	OutcomeInconsistent = "inconsistent"
	OutcomeRejected     = "rejected"
)

type Metrics struct {
	Evaluations      *prometheus.CounterVec
	ConsistencyRatio prometheus.Histogram
	CriteriaCount    prometheus.Histogram
	HTTPRequests     *prometheus.CounterVec
}

// New creates the collectors and registers them on reg. A nil reg leaves them
// unregistered, which is what most tests want.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "weigh_evaluations_total",
			Help: "BWM evaluations by outcome.",
		}, []string{"outcome"}),
		ConsistencyRatio: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "weigh_consistency_ratio",
			Help:    "Consistency ratio of successful evaluations.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.075, bwm.ConsistencyThreshold, 0.2, 0.3, 0.5, 1},
		}),
		CriteriaCount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "weigh_criteria_count",
			Help:    "Number of criteria per evaluated problem.",
			Buckets: []float64{2, 3, 4, 5, 7, 9, 12, 20, 50},
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "weigh_http_requests_total",
			Help: "HTTP requests by method, route pattern and status.",
		}, []string{"method", "route", "status"}),
	}
	if reg != nil {
		reg.MustRegister(m.Evaluations, m.ConsistencyRatio, m.CriteriaCount, m.HTTPRequests)
	}
	return m
}

// ObserveResult records a successful evaluation of a problem with n criteria.
func (m *Metrics) ObserveResult(n int, res bwm.Result) {
	if m == nil {
		return
	}
	outcome := OutcomeInconsistent
	if res.IsConsistent {
		outcome = OutcomeConsistent
	}
	m.Evaluations.WithLabelValues(outcome).Inc()
	m.ConsistencyRatio.Observe(res.ConsistencyRatio)
	m.CriteriaCount.Observe(float64(n))
}

// ObserveRejected records a problem the engine refused.
func (m *Metrics) ObserveRejected() {
	if m == nil {
		return
	}
	m.Evaluations.WithLabelValues(OutcomeRejected).Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, status int) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}
