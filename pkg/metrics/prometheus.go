// Package metrics provides Prometheus metrics for the member sync service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus metric the sync service records.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Fetch pipeline metrics
	recordsFetched   *prometheus.CounterVec
	fetchPages       prometheus.Counter
	fetchTruncations prometheus.Counter
	recordsExcluded  prometheus.Counter

	// Reconciliation metrics
	syncOutcomes  *prometheus.CounterVec
	runsTotal     prometheus.Counter
	runDuration   prometheus.Histogram
	batchFailures prometheus.Counter

	// Remote API latency metrics
	sourceRequestDuration prometheus.Histogram
	targetRequestDuration *prometheus.HistogramVec

	// Admin HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "abcghl",
		subsystem:        "sync",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.recordsFetched = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "records_fetched_total",
		Help:      "Source records surviving filters, by record kind.",
	}, []string{"kind"})

	m.fetchPages = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetch_pages_total",
		Help:      "Pages fetched from the source system.",
	})

	m.fetchTruncations = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetch_truncations_total",
		Help:      "Fetches cut short by the page safety cap.",
	})

	m.recordsExcluded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "records_excluded_total",
		Help:      "Records dropped by the membership/service type exclusion set.",
	})

	m.syncOutcomes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "outcomes_total",
		Help:      "Per-record sync outcomes, by record kind and outcome.",
	}, []string{"kind", "outcome"})

	m.runsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_total",
		Help:      "Completed sync runs.",
	})

	m.runDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "run_duration_ms",
		Help:      "Wall-clock duration of a full sync run in milliseconds.",
		Buckets:   m.histogramBuckets,
	})

	m.batchFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batch_failures_total",
		Help:      "Club/kind batches that could not fetch at all.",
	})

	m.sourceRequestDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "source_request_duration_ms",
		Help:      "Source API round-trip latency in milliseconds.",
		Buckets:   m.histogramBuckets,
	})

	m.targetRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "target_request_duration_ms",
		Help:      "Target API round-trip latency in milliseconds, by operation.",
		Buckets:   m.histogramBuckets,
	}, []string{"op"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Admin API requests, by endpoint, method, and status code.",
	}, []string{"endpoint", "method", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_ms",
		Help:      "Admin API request duration in milliseconds.",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})
}

// GetRegistry returns the custom registry metrics are collected on.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package-level helpers recording on the global manager.

// RecordFetchPage counts one fetched source page.
func RecordFetchPage() {
	if globalManager.enabled {
		globalManager.fetchPages.Inc()
	}
}

// RecordFetchTruncation counts a fetch cut short by the page cap.
func RecordFetchTruncation() {
	if globalManager.enabled {
		globalManager.fetchTruncations.Inc()
	}
}

// RecordRecordsFetched counts records that survived filtering for a kind.
func RecordRecordsFetched(kind string, n int) {
	if globalManager.enabled && n > 0 {
		globalManager.recordsFetched.WithLabelValues(kind).Add(float64(n))
	}
}

// RecordExcluded counts records dropped by the exclusion set.
func RecordExcluded(n int) {
	if globalManager.enabled && n > 0 {
		globalManager.recordsExcluded.Add(float64(n))
	}
}

// RecordSyncOutcome counts one per-record outcome.
func RecordSyncOutcome(kind, outcome string) {
	if globalManager.enabled {
		globalManager.syncOutcomes.WithLabelValues(kind, outcome).Inc()
	}
}

// RecordRun counts a completed run and observes its duration.
func RecordRun(durationMs float64) {
	if globalManager.enabled {
		globalManager.runsTotal.Inc()
		globalManager.runDuration.Observe(durationMs)
	}
}

// RecordBatchFailure counts a club/kind batch that failed to fetch.
func RecordBatchFailure() {
	if globalManager.enabled {
		globalManager.batchFailures.Inc()
	}
}

// ObserveSourceRequest observes one source API round trip.
func ObserveSourceRequest(durationMs float64) {
	if globalManager.enabled {
		globalManager.sourceRequestDuration.Observe(durationMs)
	}
}

// ObserveTargetRequest observes one target API round trip.
func ObserveTargetRequest(op string, durationMs float64) {
	if globalManager.enabled {
		globalManager.targetRequestDuration.WithLabelValues(op).Observe(durationMs)
	}
}

// RecordHTTPRequest counts one admin API request.
func RecordHTTPRequest(endpoint, method, status string) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
	}
}

// RecordHTTPRequestDuration observes one admin API request duration.
func RecordHTTPRequestDuration(endpoint, method, status string, durationMs float64) {
	if globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(durationMs)
	}
}
