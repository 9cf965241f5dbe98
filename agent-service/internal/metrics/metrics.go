// Package metrics holds the Prometheus collectors for the agent service.
//
// Collectors are registered against the Registerer passed to New so tests can
// use an isolated registry. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "vendor_catalog"

type Metrics struct {
	GatewayDuration    *prometheus.HistogramVec
	GatewayErrors      *prometheus.CounterVec
	Evaluations        *prometheus.CounterVec
	Admissions         *prometheus.CounterVec
	SideEffectFailures *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		GatewayDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "gateway",
				Name:      "request_duration_seconds",
				Help:      "Duration of model runner chat completion calls.",
				Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 20, 30, 60},
			},
			[]string{"outcome"},
		),
		GatewayErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "gateway",
				Name:      "errors_total",
				Help:      "Model runner failures by kind.",
			},
			[]string{"kind"},
		),
		Evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "evaluation",
				Name:      "total",
				Help:      "Completed product evaluations by method and decision.",
			},
			[]string{"method", "decision"},
		),
		Admissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "admission",
				Name:      "total",
				Help:      "Catalog admission outcomes.",
			},
			[]string{"status"},
		),
		SideEffectFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "evaluation",
				Name:      "side_effect_failures_total",
				Help:      "Audit and event publish failures.",
			},
			[]string{"sink"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.GatewayDuration, m.GatewayErrors, m.Evaluations, m.Admissions, m.SideEffectFailures)
	}
	return m
}

func (m *Metrics) ObserveGateway(d time.Duration, errKind string) {
	if m == nil {
		return
	}
	outcome := "ok"
	if errKind != "" {
		outcome = "error"
		m.GatewayErrors.WithLabelValues(errKind).Inc()
	}
	m.GatewayDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

func (m *Metrics) IncEvaluation(method, decision string) {
	if m == nil {
		return
	}
	m.Evaluations.WithLabelValues(method, decision).Inc()
}

func (m *Metrics) IncAdmission(status string) {
	if m == nil {
		return
	}
	m.Admissions.WithLabelValues(status).Inc()
}

func (m *Metrics) IncSideEffectFailure(sink string) {
	if m == nil {
		return
	}
	m.SideEffectFailures.WithLabelValues(sink).Inc()
}

// Handler exposes the gatherer in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
