// Package metrics provides Prometheus metrics for the poker league service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Upstream API
	upstreamRequests  *prometheus.CounterVec
	upstreamLatency   *prometheus.HistogramVec
	upstreamFallbacks *prometheus.CounterVec
	upstreamThrottled prometheus.Counter

	// Response cache
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
	cacheSize   prometheus.Gauge

	// Aggregation
	aggregationLatency prometheus.Histogram
	aggregatedRows     prometheus.Gauge
	aggregatedSeasons  prometheus.Histogram

	// Fetch pool
	poolJobs        *prometheus.CounterVec
	poolJobLatency  prometheus.Histogram
	poolConcurrency prometheus.Gauge

	// Snapshot refresher
	snapshotRefreshes *prometheus.CounterVec
	snapshotAge       prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec
	errorsByType        *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // registry without default Go collectors

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Configure rebuilds the global collectors on a fresh registry with opts.
// Call it once at startup, before any metric is recorded and before
// GetRegistry is handed to an exporter.
func Configure(opts ...Option) {
	customRegistry = prometheus.NewRegistry()
	globalManager = NewManager(append([]Option{WithPrometheusRegistry(customRegistry)}, opts...)...)
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "poker",
		subsystem:        "league",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.constLabels}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.upstreamRequests = auto.NewCounterVec(
		m.counterOpts("upstream_requests_total", "Upstream API requests by action, strategy and outcome"),
		[]string{"action", "strategy", "outcome"},
	)
	m.upstreamLatency = auto.NewHistogramVec(
		m.histogramOpts("upstream_latency_milliseconds", "Upstream API latency in milliseconds", m.histogramBuckets),
		[]string{"action", "strategy"},
	)
	m.upstreamFallbacks = auto.NewCounterVec(
		m.counterOpts("upstream_fallbacks_total", "Requests that fell back to callback (JSONP) delivery"),
		[]string{"action"},
	)
	m.upstreamThrottled = auto.NewCounter(
		m.counterOpts("upstream_throttled_total", "Upstream requests that waited on the rate limiter"),
	)

	m.cacheHits = auto.NewCounter(m.counterOpts("cache_hits_total", "Upstream responses served from cache"))
	m.cacheMisses = auto.NewCounter(m.counterOpts("cache_misses_total", "Upstream responses not found in cache"))
	m.cacheSize = auto.NewGauge(m.gaugeOpts("cache_entries", "Entries held by the response cache"))

	m.aggregationLatency = auto.NewHistogram(
		m.histogramOpts("aggregation_latency_milliseconds", "Ranking aggregation latency in milliseconds",
			[]float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50}),
	)
	m.aggregatedRows = auto.NewGauge(m.gaugeOpts("aggregated_rows", "Rows produced by the last aggregation"))
	m.aggregatedSeasons = auto.NewHistogram(
		m.histogramOpts("aggregated_seasons", "Season rankings merged per aggregation", []float64{1, 2, 3, 4, 6, 8, 12, 16, 24}),
	)

	m.poolJobs = auto.NewCounterVec(m.counterOpts("pool_jobs_total", "Fetch pool jobs by outcome"), []string{"outcome"})
	m.poolJobLatency = auto.NewHistogram(
		m.histogramOpts("pool_job_latency_milliseconds", "Fetch pool job latency in milliseconds", m.histogramBuckets),
	)
	m.poolConcurrency = auto.NewGauge(m.gaugeOpts("pool_concurrency", "Configured fetch pool concurrency"))

	m.snapshotRefreshes = auto.NewCounterVec(
		m.counterOpts("snapshot_refreshes_total", "Snapshot refreshes by result (published, stale, failed)"),
		[]string{"result"},
	)
	m.snapshotAge = auto.NewGauge(m.gaugeOpts("snapshot_published_unix", "Unix time of the last published snapshot"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "HTTP requests by endpoint, method and status"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)
	m.errorsByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "HTTP errors by endpoint, method and error type"),
		[]string{"endpoint", "method", "error_type"},
	)
	m.errorsByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Errors by type and severity"),
		[]string{"error_type", "severity"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Heap bytes allocated"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_time_milliseconds", "Average GC pause time in milliseconds",
			[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100}),
	)
}

// RecordUpstreamRequest counts one upstream request and its latency.
func RecordUpstreamRequest(action, strategy, outcome string, latencyMs float64) {
	globalManager.upstreamRequests.WithLabelValues(action, strategy, outcome).Inc()
	globalManager.upstreamLatency.WithLabelValues(action, strategy).Observe(latencyMs)
}

// RecordUpstreamFallback counts a switch to callback delivery.
func RecordUpstreamFallback(action string) {
	globalManager.upstreamFallbacks.WithLabelValues(action).Inc()
}

// RecordUpstreamThrottled counts a request delayed by the rate limiter.
func RecordUpstreamThrottled() {
	globalManager.upstreamThrottled.Inc()
}

// RecordCacheHit increments the cache hit counter.
func RecordCacheHit() {
	globalManager.cacheHits.Inc()
}

// RecordCacheMiss increments the cache miss counter.
func RecordCacheMiss() {
	globalManager.cacheMisses.Inc()
}

// UpdateCacheSize sets the number of cached entries.
func UpdateCacheSize(n int64) {
	globalManager.cacheSize.Set(float64(n))
}

// RecordAggregation records one ranking aggregation.
func RecordAggregation(seasons, rows int, latencyMs float64) {
	globalManager.aggregationLatency.Observe(latencyMs)
	globalManager.aggregatedSeasons.Observe(float64(seasons))
	globalManager.aggregatedRows.Set(float64(rows))
}

// RecordPoolJob records a fetch pool job outcome ("ok", "error", "canceled").
func RecordPoolJob(outcome string, latencyMs float64) {
	globalManager.poolJobs.WithLabelValues(outcome).Inc()
	globalManager.poolJobLatency.Observe(latencyMs)
}

// UpdatePoolConcurrency sets the fetch pool concurrency gauge.
func UpdatePoolConcurrency(n int) {
	globalManager.poolConcurrency.Set(float64(n))
}

// RecordSnapshotRefresh counts a refresher result ("published", "stale", "failed").
func RecordSnapshotRefresh(result string) {
	globalManager.snapshotRefreshes.WithLabelValues(result).Inc()
}

// UpdateSnapshotPublished stores the unix time of the last published snapshot.
func UpdateSnapshotPublished(unix int64) {
	globalManager.snapshotAge.Set(float64(unix))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorsByType.WithLabelValues(errorType, severity).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
