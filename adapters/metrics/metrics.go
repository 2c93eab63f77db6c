// Package metrics provides Prometheus metrics collection for MediaVault.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds all Prometheus metrics for MediaVault.
type Collector struct {
	// Request metrics
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	// Auth metrics
	AuthFailures *prometheus.CounterVec

	// Analytics metrics
	AnalyticsQueries  *prometheus.CounterVec
	AnalyticsDuration *prometheus.HistogramVec

	// Ingest metrics
	IngestRecords prometheus.Counter
	IngestErrors  prometheus.Counter

	// Cleanup metrics
	CleanupRuns     prometheus.Counter
	CleanupDeleted  prometheus.Counter
	CleanupFailures prometheus.Counter

	// Config metrics
	ConfigReloads      prometheus.Counter
	ConfigReloadErrors prometheus.Counter
	ConfigLastReload   prometheus.Gauge
}

// New creates a new metrics collector registered on the default registry.
func New() *Collector {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a new metrics collector with a custom registry.
// Useful for testing to avoid global state.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		// Request metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "mediavault",
				Name:      "requests_total",
				Help:      "Total number of requests processed",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "mediavault",
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path", "status"},
		),
		RequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "mediavault",
				Name:      "requests_in_flight",
				Help:      "Number of requests currently being processed",
			},
		),

		// Auth metrics
		AuthFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "mediavault",
				Name:      "auth_failures_total",
				Help:      "Total number of authentication failures",
			},
			[]string{"reason"},
		),

		// Analytics metrics
		AnalyticsQueries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "mediavault",
				Name:      "analytics_queries_total",
				Help:      "Total number of bandwidth analytics queries",
			},
			[]string{"query"},
		),
		AnalyticsDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "mediavault",
				Name:      "analytics_query_duration_seconds",
				Help:      "Bandwidth analytics query duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"query"},
		),

		// Ingest metrics
		IngestRecords: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "mediavault",
				Name:      "ingest_records_total",
				Help:      "Total number of access-log records ingested",
			},
		),
		IngestErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "mediavault",
				Name:      "ingest_errors_total",
				Help:      "Total number of access-log ingest failures",
			},
		),

		// Cleanup metrics
		CleanupRuns: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "mediavault",
				Name:      "cleanup_runs_total",
				Help:      "Total number of retention cleanup runs",
			},
		),
		CleanupDeleted: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "mediavault",
				Name:      "cleanup_deleted_total",
				Help:      "Total number of assets permanently removed by cleanup",
			},
		),
		CleanupFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "mediavault",
				Name:      "cleanup_failures_total",
				Help:      "Total number of per-asset cleanup failures",
			},
		),

		// Config metrics
		ConfigReloads: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "mediavault",
				Name:      "config_reloads_total",
				Help:      "Total number of successful config reloads",
			},
		),
		ConfigReloadErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "mediavault",
				Name:      "config_reload_errors_total",
				Help:      "Total number of config reload errors",
			},
		),
		ConfigLastReload: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "mediavault",
				Name:      "config_last_reload_timestamp",
				Help:      "Unix timestamp of last successful config reload",
			},
		),
	}
}
