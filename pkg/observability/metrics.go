package observability

import (
	"context"
	"net/http"
	"strconv"

	"github.com/aretw0/rootseek/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rootseek"

// Metrics holds the explorer's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	phases        *prometheus.CounterVec
	searches      *prometheus.CounterVec
	retries       *prometheus.CounterVec
	intersections *prometheus.CounterVec
	iterations    *prometheus.HistogramVec
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		phases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "phase_enter_total",
			Help:      "Total number of refinement loop phase entries.",
		}, []string{"phase"}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "root_searches_total",
			Help:      "Guarded root searches by equation and outcome.",
		}, []string{"equation", "outcome", "retry"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retry_decisions_total",
			Help:      "Answers given at the retry prompt.",
		}, []string{"decision"}),
		intersections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intersections_total",
			Help:      "Intersection searches by convergence.",
		}, []string{"converged"}),
		iterations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "solver_iterations",
			Help:      "Newton iterations used by accepted searches.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21, 34, 55, 100},
		}, []string{"kind"}),
	}
	m.registry.MustRegister(m.phases, m.searches, m.retries, m.intersections, m.iterations)
	return m
}

// Registry exposes the underlying registry, e.g. for tests or extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRoot records one root search.
func (m *Metrics) ObserveRoot(id domain.EquationID, out domain.RootOutcome, retry bool) {
	outcome := "not_found"
	if out.Found {
		outcome = "found"
		m.iterations.WithLabelValues("root").Observe(float64(out.Iterations))
	}
	m.searches.WithLabelValues(string(id), outcome, strconv.FormatBool(retry)).Inc()
}

// ObserveIntersection records one intersection search.
func (m *Metrics) ObserveIntersection(res domain.IntersectionResult) {
	m.intersections.WithLabelValues(strconv.FormatBool(res.Converged)).Inc()
	if res.Converged {
		m.iterations.WithLabelValues("intersection").Observe(float64(res.Iterations))
	}
}

// Hooks returns lifecycle hooks that feed the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPhaseEnter: func(_ context.Context, e *domain.PhaseEvent) {
			m.phases.WithLabelValues(string(e.Phase)).Inc()
		},
		OnRootSearch: func(_ context.Context, e *domain.SearchEvent) {
			m.ObserveRoot(e.Equation, e.Outcome, e.Retry)
		},
		OnRetry: func(_ context.Context, e *domain.RetryEvent) {
			m.retries.WithLabelValues(e.Decision).Inc()
		},
		OnIntersection: func(_ context.Context, e *domain.IntersectionEvent) {
			m.ObserveIntersection(e.Result)
		},
	}
}
