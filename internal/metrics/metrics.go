// Package metrics exposes Prometheus collectors for the refresh feeds and the
// web boundary. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vitos/crypto_dashboard/internal/domain"
)

const namespace = "crypto_dashboard"

type Metrics struct {
	registry *prometheus.Registry

	fetches      *prometheus.CounterVec
	fetchLatency *prometheus.HistogramVec
	ticksSkipped *prometheus.CounterVec
	commits      *prometheus.CounterVec
	refreshState *prometheus.GaugeVec
	wsClients    prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "feed",
				Name:      "fetch_total",
				Help:      "Price source fetches by outcome.",
			},
			[]string{"feed", "outcome"},
		),
		fetchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "feed",
				Name:      "fetch_duration_seconds",
				Help:      "Duration of price source fetches.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~5s
			},
			[]string{"feed"},
		),
		ticksSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "feed",
				Name:      "ticks_skipped_total",
				Help:      "Ticks dropped because the previous cycle was still in flight.",
			},
			[]string{"feed"},
		),
		commits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "feed",
				Name:      "commits_total",
				Help:      "Refresh results applied (applied) or dropped after stop (discarded).",
			},
			[]string{"feed", "result"},
		),
		refreshState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "feed",
				Name:      "refresh_state",
				Help:      "Current refresh state: 0 idle, 1 fetching, 2 ready, 3 degraded.",
			},
			[]string{"feed"},
		),
		wsClients: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "web",
				Name:      "ws_clients",
				Help:      "Connected WebSocket clients.",
			},
		),
	}

	m.registry.MustRegister(
		m.fetches,
		m.fetchLatency,
		m.ticksSkipped,
		m.commits,
		m.refreshState,
		m.wsClients,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveFetch(feed string, err error, took time.Duration) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(feed, domain.FetchOutcome(err)).Inc()
	m.fetchLatency.WithLabelValues(feed).Observe(took.Seconds())
}

func (m *Metrics) TickSkipped(feed string) {
	if m == nil {
		return
	}
	m.ticksSkipped.WithLabelValues(feed).Inc()
}

func (m *Metrics) Commit(feed string, applied bool) {
	if m == nil {
		return
	}
	result := "applied"
	if !applied {
		result = "discarded"
	}
	m.commits.WithLabelValues(feed, result).Inc()
}

func (m *Metrics) SetState(feed string, state domain.RefreshState) {
	if m == nil {
		return
	}
	var v float64
	switch state {
	case domain.StateFetching:
		v = 1
	case domain.StateReady:
		v = 2
	case domain.StateDegraded:
		v = 3
	}
	m.refreshState.WithLabelValues(feed).Set(v)
}

func (m *Metrics) SetWSClients(n int) {
	if m == nil {
		return
	}
	m.wsClients.Set(float64(n))
}
