package metrics

import (
	"strconv"

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

	// Engine
	normalizations   *prometheus.CounterVec
	duplicates       prometheus.Counter
	normalizeLatency prometheus.Histogram
	edgePercentage   *prometheus.HistogramVec
	clarityScore     prometheus.Histogram
	validationErrors prometheus.Counter

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter
	queueWaitLatency   prometheus.Histogram

	// Workers
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Store
	storeRecords      prometheus.Gauge
	storeSaveLatency  prometheus.Histogram
	storeQueryLatency prometheus.Histogram

	// Stream
	streamClients  prometheus.Gauge
	streamMessages prometheus.Counter
	streamDropped  prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpRateLimited     prometheus.Counter

	errorsByComponent *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "unisig",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
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
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: buckets}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.normalizations = auto.NewCounterVec(
		m.counterOpts("normalizations_total", "Matches normalized by sport and confidence tier"),
		[]string{"sport", "confidence"},
	)
	m.duplicates = auto.NewCounter(m.counterOpts("duplicates_total", "Submissions rejected as already seen"))
	m.normalizeLatency = auto.NewHistogram(m.histogramOpts("normalize_latency_milliseconds", "Time spent computing one signal bundle", m.histogramBuckets))
	m.edgePercentage = auto.NewHistogramVec(
		m.histogramOpts("edge_percentage", "Distribution of strength edge magnitudes", []float64{0, 2, 4, 8, 12, 16, 20}),
		[]string{"direction"},
	)
	m.clarityScore = auto.NewHistogram(m.histogramOpts("clarity_score", "Distribution of clarity scores", []float64{20, 25, 45, 50, 70, 75, 100}))
	m.validationErrors = auto.NewCounter(m.counterOpts("validation_errors_total", "Match inputs rejected at the boundary"))

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Current number of queued match requests"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Maximum queue capacity"))
	m.queueEnqueued = auto.NewCounter(m.counterOpts("queue_enqueue_total", "Match requests enqueued"))
	m.queueDequeued = auto.NewCounter(m.counterOpts("queue_dequeue_total", "Match requests dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counterOpts("queue_enqueue_errors_total", "Enqueue attempts rejected by backpressure or closure"))
	m.queueWaitLatency = auto.NewHistogram(m.histogramOpts("queue_wait_latency_milliseconds", "Time between submission and dequeue", m.histogramBuckets))

	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Configured number of workers"))
	m.workerActiveCount = auto.NewGauge(m.gaugeOpts("worker_active_count", "Workers currently processing a match"))
	m.workerProcessingLatency = auto.NewHistogram(m.histogramOpts("worker_processing_latency_milliseconds", "End to end worker processing time", m.histogramBuckets))
	m.workerErrors = auto.NewCounter(m.counterOpts("worker_errors_total", "Worker failures"))

	m.storeRecords = auto.NewGauge(m.gaugeOpts("store_records_total", "Signal bundles held by the store"))
	m.storeSaveLatency = auto.NewHistogram(m.histogramOpts("store_save_latency_milliseconds", "Store save latency", m.histogramBuckets))
	m.storeQueryLatency = auto.NewHistogram(m.histogramOpts("store_query_latency_milliseconds", "Store query latency", m.histogramBuckets))

	m.streamClients = auto.NewGauge(m.gaugeOpts("stream_clients", "Connected websocket subscribers"))
	m.streamMessages = auto.NewCounter(m.counterOpts("stream_messages_total", "Signal bundles delivered to subscribers"))
	m.streamDropped = auto.NewCounter(m.counterOpts("stream_dropped_total", "Signal bundles dropped for slow subscribers"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "HTTP requests by endpoint, method and status code"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRateLimited = auto.NewCounter(m.counterOpts("http_rate_limited_total", "Requests rejected by the rate limiter"))

	m.errorsByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Errors by component and type"),
		[]string{"component", "error_type"},
	)
}

// RecordNormalization records one computed bundle.
func (m *Manager) RecordNormalization(sport, confidence, direction string, edge, clarity int, latencyMs float64) {
	m.normalizations.WithLabelValues(sport, confidence).Inc()
	m.edgePercentage.WithLabelValues(direction).Observe(float64(edge))
	m.clarityScore.Observe(float64(clarity))
	m.normalizeLatency.Observe(latencyMs)
}

// Global helpers delegate to the process-wide manager.

// RecordNormalization records one computed bundle.
func RecordNormalization(sport, confidence, direction string, edge, clarity int, latencyMs float64) {
	globalManager.RecordNormalization(sport, confidence, direction, edge, clarity, latencyMs)
}

// RecordDuplicate increments the duplicate submissions counter.
func RecordDuplicate() { globalManager.duplicates.Inc() }

// RecordValidationError increments the rejected input counter.
func RecordValidationError() { globalManager.validationErrors.Inc() }

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() { globalManager.queueEnqueued.Inc() }

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() { globalManager.queueDequeued.Inc() }

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() { globalManager.queueEnqueueErrors.Inc() }

// RecordQueueWaitLatency records how long a request sat in the queue.
func RecordQueueWaitLatency(latencyMs float64) { globalManager.queueWaitLatency.Observe(latencyMs) }

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

// UpdateWorkerActiveCount sets the number of busy workers.
func UpdateWorkerActiveCount(count int) { globalManager.workerActiveCount.Set(float64(count)) }

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() { globalManager.workerErrors.Inc() }

// UpdateStoreRecords sets the number of stored bundles.
func UpdateStoreRecords(count int) { globalManager.storeRecords.Set(float64(count)) }

// RecordStoreSaveLatency records store save latency.
func RecordStoreSaveLatency(latencyMs float64) { globalManager.storeSaveLatency.Observe(latencyMs) }

// RecordStoreQueryLatency records store query latency.
func RecordStoreQueryLatency(latencyMs float64) { globalManager.storeQueryLatency.Observe(latencyMs) }

// UpdateStreamClients sets the number of connected subscribers.
func UpdateStreamClients(count int) { globalManager.streamClients.Set(float64(count)) }

// RecordStreamMessage increments the delivered message counter.
func RecordStreamMessage() { globalManager.streamMessages.Inc() }

// RecordStreamDropped increments the dropped message counter.
func RecordStreamDropped() { globalManager.streamDropped.Inc() }

// RecordHTTPRequest records an HTTP request and its duration.
func RecordHTTPRequest(endpoint, method string, statusCode int, durationMs float64) {
	code := strconv.Itoa(statusCode)
	globalManager.httpRequests.WithLabelValues(endpoint, method, code).Inc()
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, code).Observe(durationMs)
}

// RecordRateLimited increments the rate limited request counter.
func RecordRateLimited() { globalManager.httpRateLimited.Inc() }

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
