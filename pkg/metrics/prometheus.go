// Package metrics provides Prometheus metrics for the candles service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus metrics for the candles service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Core business metrics
	candlesCreated      prometheus.Counter
	candlesDeleted      prometheus.Counter
	rateLimitRejections prometheus.Counter
	sessionsIssued      prometheus.Counter
	challengeFailures   prometheus.Counter

	// Audit side-channel metrics
	auditReports prometheus.Counter
	auditDropped prometheus.Counter
	auditErrors  prometheus.Counter

	// Store metrics
	storeCandles      prometheus.Gauge
	storeWriteLatency prometheus.Histogram
	storeReadLatency  prometheus.Histogram

	// HTTP performance metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error tracking
	errorsByComponent *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "candles",
		subsystem:        "map",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.candlesCreated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "candles_created_total",
		Help:      "Total number of candles created",
	})

	m.candlesDeleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "candles_deleted_total",
		Help:      "Total number of candles deleted by their owners",
	})

	m.rateLimitRejections = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rate_limit_rejections_total",
		Help:      "Total number of candle submissions rejected by rate limiting",
	})

	m.sessionsIssued = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_issued_total",
		Help:      "Total number of anonymous sessions issued",
	})

	m.challengeFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "challenge_failures_total",
		Help:      "Total number of failed human-verification challenges",
	})

	m.auditReports = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "audit_reports_total",
		Help:      "Total number of audit reports accepted by the side-channel",
	})

	m.auditDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "audit_dropped_total",
		Help:      "Total number of audit reports dropped on queue overflow",
	})

	m.auditErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "audit_errors_total",
		Help:      "Total number of audit sink failures (never surfaced to callers)",
	})

	m.storeCandles = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_candles",
		Help:      "Current number of candles in the store",
	})

	m.storeWriteLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_write_latency_milliseconds",
		Help:      "Candle store write latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.storeReadLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_read_latency_milliseconds",
		Help:      "Candle store read latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorsByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total number of errors by component",
		},
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})
}

// GetRegistry returns the registry backing the global manager, for
// serving via promhttp.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// RecordCandleCreated increments the created-candles counter.
func RecordCandleCreated() {
	globalManager.candlesCreated.Inc()
}

// RecordCandleDeleted increments the deleted-candles counter.
func RecordCandleDeleted() {
	globalManager.candlesDeleted.Inc()
}

// RecordRateLimitRejection increments the rate-limit rejections counter.
func RecordRateLimitRejection() {
	globalManager.rateLimitRejections.Inc()
}

// RecordSessionIssued increments the issued-sessions counter.
func RecordSessionIssued() {
	globalManager.sessionsIssued.Inc()
}

// RecordChallengeFailure increments the failed-challenges counter.
func RecordChallengeFailure() {
	globalManager.challengeFailures.Inc()
}

// RecordAuditReport increments the accepted audit reports counter.
func RecordAuditReport() {
	globalManager.auditReports.Inc()
}

// RecordAuditDrop increments the dropped audit reports counter.
func RecordAuditDrop() {
	globalManager.auditDropped.Inc()
}

// RecordAuditError increments the audit sink failure counter.
func RecordAuditError() {
	globalManager.auditErrors.Inc()
}

// UpdateStoreCandles sets the current candle count gauge.
func UpdateStoreCandles(count int) {
	globalManager.storeCandles.Set(float64(count))
}

// RecordStoreWriteLatency records a store write latency in milliseconds.
func RecordStoreWriteLatency(latencyMs float64) {
	globalManager.storeWriteLatency.Observe(latencyMs)
}

// RecordStoreReadLatency records a store read latency in milliseconds.
func RecordStoreReadLatency(latencyMs float64) {
	globalManager.storeReadLatency.Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByComponent increments the per-component error counter.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the memory usage gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}
