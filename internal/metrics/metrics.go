// Package metrics exposes guard decisions and grant lookups to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics implements authz.Recorder on a private registry, so several guards
// (and tests) can coexist in one process.
type Metrics struct {
	reg       *prometheus.Registry
	decisions *prometheus.CounterVec
	lookups   prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roleguard_decisions_total",
				Help: "Authorization decisions by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		lookups: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "roleguard_grant_seconds",
				Help:    "Time spent resolving the role grant behind a token",
				Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
		),
	}
	m.reg.MustRegister(m.decisions, m.lookups)
	m.reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return m
}

func (m *Metrics) Decision(op, outcome string) {
	m.decisions.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) TokenLookup(d time.Duration) {
	m.lookups.Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}
