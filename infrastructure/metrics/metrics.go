// Package metrics exposes prometheus collectors for the stream and catalog pipelines.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	CacheHit  = "hit"
	CacheMiss = "miss"

	StatusOK    = "ok"
	StatusError = "error"

	OperationListFlat    = "list_flat"
	OperationListFormats = "list_formats"
	OperationSearch      = "search"
)

// Metrics holds the collectors of one registry. A nil *Metrics records nothing.
type Metrics struct {
	registry         *prometheus.Registry
	StreamCache      *prometheus.CounterVec
	ProviderCalls    *prometheus.CounterVec
	ProviderDuration *prometheus.HistogramVec
	SourceFailures   prometheus.Counter
	StreamsResolved  prometheus.Counter
}

// New creates the collectors on a dedicated registry together with the Go runtime collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		StreamCache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "api_music_stream_cache_total",
				Help: "Stream cache lookups by result",
			},
			[]string{"result"},
		),
		ProviderCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "api_music_provider_calls_total",
				Help: "Calls to the media provider by operation and status",
			},
			[]string{"operation", "status"},
		),
		ProviderDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "api_music_provider_call_duration_seconds",
				Help:    "Time spent in media provider calls",
				Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"operation"},
		),
		SourceFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "api_music_source_failures_total",
				Help: "Catalog sources skipped because the provider failed or found nothing",
			},
		),
		StreamsResolved: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "api_music_streams_resolved_total",
				Help: "Stream URLs resolved through the provider",
			},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.StreamCache,
		m.ProviderCalls,
		m.ProviderDuration,
		m.SourceFailures,
		m.StreamsResolved,
	)
	return m
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) RecordCache(result string) {
	if m == nil {
		return
	}
	m.StreamCache.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordProviderCall(operation string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	m.ProviderCalls.WithLabelValues(operation, status).Inc()
	m.ProviderDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (m *Metrics) RecordSourceFailure() {
	if m == nil {
		return
	}
	m.SourceFailures.Inc()
}

func (m *Metrics) RecordStreamResolved() {
	if m == nil {
		return
	}
	m.StreamsResolved.Inc()
}
