// Package metrics exposes bot counters to Prometheus and serves the ops
// endpoints (/healthz, /metrics, /list).
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the bot's collectors on a private registry. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	events          *prometheus.CounterVec
	eventDuration   *prometheus.HistogramVec
	gatewayFailures *prometheus.CounterVec
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shoplist_events_total",
				Help: "Handled bot events by event kind and outcome.",
			},
			[]string{"kind", "result"},
		),
		eventDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shoplist_event_duration_seconds",
				Help:    "Time to handle one event, including persistence and replies.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		gatewayFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shoplist_gateway_failures_total",
				Help: "Outbound gateway calls that failed.",
			},
			[]string{"op"},
		),
	}
	m.registry.MustRegister(m.events, m.eventDuration, m.gatewayFailures)
	return m
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveEvent counts one handled event.
func (m *Metrics) ObserveEvent(kind, result string, d time.Duration) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(kind, result).Inc()
	m.eventDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// GatewayFailure counts one failed outbound call.
func (m *Metrics) GatewayFailure(op string) {
	if m == nil {
		return
	}
	m.gatewayFailures.WithLabelValues(op).Inc()
}

// WatchGauge registers a gauge whose value is read from fn at scrape time.
func (m *Metrics) WatchGauge(name, help string, fn func() float64) {
	if m == nil {
		return
	}
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{Name: name, Help: help},
		fn,
	))
}
