package observability

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/vali/pkg/domain"
)

// Metrics holds the Prometheus collectors fed by engine lifecycle hooks.
type Metrics struct {
	registry    *prometheus.Registry
	validations *prometheus.CounterVec
	failures    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	loads       *prometheus.CounterVec
	changes     *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on a dedicated
// registry, so several engines in one process do not collide.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vali_validations_total",
				Help: "Total number of validations by scheme and outcome",
			},
			[]string{"scheme", "outcome"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vali_field_failures_total",
				Help: "Total number of validation failures by scheme and field",
			},
			[]string{"scheme", "field"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vali_validation_duration_seconds",
				Help:    "Duration of validations",
				Buckets: prometheus.ExponentialBuckets(0.00005, 4, 8),
			},
			[]string{"scheme"},
		),
		loads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vali_scheme_loads_total",
				Help: "Total number of scheme lookups by source",
			},
			[]string{"scheme", "source"},
		),
		changes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vali_scheme_changes_total",
				Help: "Total number of scheme saves and deletes",
			},
			[]string{"scheme", "type"},
		),
	}
	m.registry.MustRegister(m.validations, m.failures, m.duration, m.loads, m.changes)
	return m
}

// Registry returns the Prometheus registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the collected metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Hooks returns lifecycle hooks recording into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnValidateEnd: func(_ context.Context, e *domain.ValidationEvent) {
			outcome := "valid"
			switch {
			case e.Usage:
				outcome = "usage_error"
			case !e.Valid:
				outcome = "invalid"
				m.failures.WithLabelValues(e.Scheme, e.Field).Inc()
			}
			m.validations.WithLabelValues(e.Scheme, outcome).Inc()
			m.duration.WithLabelValues(e.Scheme).Observe(e.Duration.Seconds())
		},
		OnSchemeLoad: func(_ context.Context, e *domain.SchemeEvent) {
			source := "store"
			if e.Cached {
				source = "cache"
			}
			if e.Err != nil {
				source = "error"
			}
			m.loads.WithLabelValues(e.Scheme, source).Inc()
		},
		OnSchemeChange: func(_ context.Context, e *domain.SchemeEvent) {
			m.changes.WithLabelValues(e.Scheme, string(e.Type)).Inc()
		},
	}
}
