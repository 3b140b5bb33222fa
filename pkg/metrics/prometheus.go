// Package metrics provides Prometheus metrics for the Pitching+ service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Pipeline
	pitchesIngested    prometheus.Counter
	pitchesFiltered    *prometheus.CounterVec
	pitchesScored      *prometheus.CounterVec
	pitchesUnscored    prometheus.Counter
	missingBaselines   prometheus.Counter
	unjoinedPitchers   prometheus.Counter
	pipelineRuns       *prometheus.CounterVec
	pipelineDuration   prometheus.Histogram
	leaderboardPitcher prometheus.Gauge

	// Model registry
	modelLoads *prometheus.CounterVec

	// Feeds
	feedRequests *prometheus.CounterVec
	feedLatency  *prometheus.HistogramVec
	feedRows     *prometheus.CounterVec

	// Refresh queue and worker
	refreshEnqueued prometheus.Counter
	refreshRejected prometheus.Counter
	refreshQueueLen prometheus.Gauge
	refreshJobs     *prometheus.CounterVec

	// Repository
	storeQueryLatency prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Process
	memoryBytes prometheus.Gauge
	goroutines  prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // process-wide metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // avoids default Go collectors

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "pitchplus",
		subsystem:        "leaderboard",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.pitchesIngested = m.counter("pitches_ingested_total", "Raw pitch records handed to the feature builder")
	m.pitchesFiltered = m.counterVec("pitches_filtered_total", "Pitch records dropped before scoring", "reason")
	m.pitchesScored = m.counterVec("pitches_scored_total", "Pitches that received a Pitching+ score", "family")
	m.pitchesUnscored = m.counter("pitches_unscored_total", "Pitches whose pitch name maps to no model family")
	m.missingBaselines = m.counter("missing_baselines_total", "Pitchers without fastball pitches to build a baseline from")
	m.unjoinedPitchers = m.counter("unjoined_pitchers_total", "Leaderboard pitchers without a roster row")
	m.pipelineRuns = m.counterVec("pipeline_runs_total", "Pipeline runs by outcome", "outcome")
	m.pipelineDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pipeline_duration_seconds",
		Help:      "Wall time of a full feature-score-aggregate run",
		Buckets:   m.histogramBuckets,
	})
	m.leaderboardPitcher = m.gauge("pitchers", "Pitchers in the current leaderboard snapshot")

	m.modelLoads = m.counterVec("model_loads_total", "Classifier artifact loads by family and outcome", "family", "outcome")

	m.feedRequests = m.counterVec("feed_requests_total", "External feed requests by feed and status", "feed", "status")
	m.feedLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feed_latency_seconds",
		Help:      "External feed request latency",
		Buckets:   m.histogramBuckets,
	}, []string{"feed"})
	m.feedRows = m.counterVec("feed_rows_total", "Rows decoded from external feeds", "feed")

	m.refreshEnqueued = m.counter("refresh_enqueued_total", "Refresh jobs accepted by the queue")
	m.refreshRejected = m.counter("refresh_rejected_total", "Refresh jobs rejected by the queue")
	m.refreshQueueLen = m.gauge("refresh_queue_length", "Refresh jobs waiting for the worker")
	m.refreshJobs = m.counterVec("refresh_jobs_total", "Refresh jobs processed by outcome", "outcome")

	m.storeQueryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_query_latency_seconds",
		Help:      "Leaderboard store read latency",
		Buckets:   m.histogramBuckets,
	})

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.memoryBytes = m.gauge("system_memory_bytes", "Heap bytes allocated by the process")
	m.goroutines = m.gauge("system_goroutines", "Live goroutines")
}

// RecordPitchesIngested adds n raw pitches.
func RecordPitchesIngested(n int) { globalManager.pitchesIngested.Add(float64(n)) }

// RecordPitchesFiltered adds n pitches dropped for reason.
func RecordPitchesFiltered(reason string, n int) {
	globalManager.pitchesFiltered.WithLabelValues(reason).Add(float64(n))
}

// RecordPitchesScored adds n pitches scored by the family's classifier.
func RecordPitchesScored(family string, n int) {
	globalManager.pitchesScored.WithLabelValues(family).Add(float64(n))
}

// RecordPitchesUnscored adds n pitches that no family claims.
func RecordPitchesUnscored(n int) { globalManager.pitchesUnscored.Add(float64(n)) }

// RecordMissingBaselines adds n baseline-less pitchers.
func RecordMissingBaselines(n int) { globalManager.missingBaselines.Add(float64(n)) }

// RecordUnjoinedPitchers adds n pitchers absent from the roster.
func RecordUnjoinedPitchers(n int) { globalManager.unjoinedPitchers.Add(float64(n)) }

// RecordPipelineRun records a pipeline outcome and its duration in seconds.
func RecordPipelineRun(outcome string, seconds float64) {
	globalManager.pipelineRuns.WithLabelValues(outcome).Inc()
	globalManager.pipelineDuration.Observe(seconds)
}

// UpdateLeaderboardPitchers sets the snapshot size.
func UpdateLeaderboardPitchers(n int) { globalManager.leaderboardPitcher.Set(float64(n)) }

// RecordModelLoad records a classifier artifact load.
func RecordModelLoad(family, outcome string) {
	globalManager.modelLoads.WithLabelValues(family, outcome).Inc()
}

// RecordFeedRequest records one feed HTTP attempt.
func RecordFeedRequest(feed, status string, seconds float64) {
	globalManager.feedRequests.WithLabelValues(feed, status).Inc()
	globalManager.feedLatency.WithLabelValues(feed).Observe(seconds)
}

// RecordFeedRows adds n decoded rows for feed.
func RecordFeedRows(feed string, n int) {
	globalManager.feedRows.WithLabelValues(feed).Add(float64(n))
}

// RecordRefreshEnqueued counts an accepted refresh job.
func RecordRefreshEnqueued() { globalManager.refreshEnqueued.Inc() }

// RecordRefreshRejected counts a refresh job the queue could not take.
func RecordRefreshRejected() { globalManager.refreshRejected.Inc() }

// UpdateRefreshQueueLength sets the number of waiting refresh jobs.
func UpdateRefreshQueueLength(n int) { globalManager.refreshQueueLen.Set(float64(n)) }

// RecordRefreshJob records a processed refresh job outcome.
func RecordRefreshJob(outcome string) { globalManager.refreshJobs.WithLabelValues(outcome).Inc() }

// RecordStoreQueryLatency records a store read in seconds.
func RecordStoreQueryLatency(seconds float64) { globalManager.storeQueryLatency.Observe(seconds) }

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string, seconds float64) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(seconds)
}

// UpdateSystemMemoryUsage sets the allocated heap size.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.memoryBytes.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(n int) { globalManager.goroutines.Set(float64(n)) }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
