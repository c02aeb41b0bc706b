// Package metrics provides Prometheus metrics for the heat AOI service.
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

	// Identification
	identifyLatency     prometheus.Histogram
	windowSize          prometheus.Gauge
	aoisSelected        prometheus.Counter
	exhaustedSelections prometheus.Counter
	degenerateLayers    *prometheus.CounterVec

	// Jobs
	jobsSubmitted prometheus.Counter
	jobsDuplicate prometheus.Counter
	jobsCompleted *prometheus.CounterVec
	runsStored    prometheus.Gauge

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueueErrors prometheus.Counter
	queueDequeued      prometheus.Counter

	// Workers
	workerCount       prometheus.Gauge
	workerActiveCount prometheus.Gauge

	// Validation
	validationBuildings prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton used by the Record* helpers

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // exposed on /healthz

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "heataoi",
		subsystem:        "service",
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

func (m *Manager) counter(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gauge(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogram(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
		Buckets:     m.histogramBuckets,
	}
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.identifyLatency = auto.NewHistogram(m.histogram(
		"identify_latency_milliseconds", "End-to-end identification latency in milliseconds"))
	m.windowSize = auto.NewGauge(m.gauge(
		"window_size_pixels", "Window side length of the last identification in pixels"))
	m.aoisSelected = auto.NewCounter(m.counter(
		"aois_selected_total", "Total number of AOIs returned"))
	m.exhaustedSelections = auto.NewCounter(m.counter(
		"exhausted_selections_total", "Identifications that found fewer AOIs than requested"))
	m.degenerateLayers = auto.NewCounterVec(m.counter(
		"degenerate_layers_total", "Layers normalised without dynamic range"), []string{"layer"})

	m.jobsSubmitted = auto.NewCounter(m.counter(
		"jobs_submitted_total", "Asynchronous jobs accepted onto the queue"))
	m.jobsDuplicate = auto.NewCounter(m.counter(
		"jobs_duplicate_total", "Job submissions answered from the request-ID cache"))
	m.jobsCompleted = auto.NewCounterVec(m.counter(
		"jobs_completed_total", "Jobs finished by a worker, by final status"), []string{"status"})
	m.runsStored = auto.NewGauge(m.gauge(
		"runs_stored", "Runs currently held by the run store"))

	m.queueSize = auto.NewGauge(m.gauge(
		"queue_size", "Jobs waiting in the queue"))
	m.queueCapacity = auto.NewGauge(m.gauge(
		"queue_capacity", "Maximum number of queued jobs"))
	m.queueEnqueueErrors = auto.NewCounter(m.counter(
		"queue_enqueue_errors_total", "Jobs rejected by the queue"))
	m.queueDequeued = auto.NewCounter(m.counter(
		"queue_dequeued_total", "Jobs handed to workers"))

	m.workerCount = auto.NewGauge(m.gauge(
		"worker_count", "Configured worker goroutines"))
	m.workerActiveCount = auto.NewGauge(m.gauge(
		"worker_active_count", "Workers currently running an identification"))

	m.validationBuildings = auto.NewCounter(m.counter(
		"validation_buildings_total", "Buildings evaluated by height validation"))

	m.httpRequests = auto.NewCounterVec(m.counter(
		"http_requests_total", "HTTP requests by endpoint, method and status"),
		[]string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogram(
		"http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(m.counter(
		"errors_total", "Errors by component and type"), []string{"component", "error_type"})
}

// RecordIdentifyLatency records end-to-end identification latency.
func RecordIdentifyLatency(latencyMs float64) {
	globalManager.identifyLatency.Observe(latencyMs)
}

// UpdateWindowSize sets the window size of the last identification.
func UpdateWindowSize(pixels int) {
	globalManager.windowSize.Set(float64(pixels))
}

// RecordAOIsSelected adds n returned AOIs.
func RecordAOIsSelected(n int) {
	globalManager.aoisSelected.Add(float64(n))
}

// RecordExhaustedSelection counts a selection that ran out of candidates.
func RecordExhaustedSelection() {
	globalManager.exhaustedSelections.Inc()
}

// RecordDegenerateLayer counts a layer without dynamic range.
func RecordDegenerateLayer(layer string) {
	globalManager.degenerateLayers.WithLabelValues(layer).Inc()
}

// RecordJobSubmitted counts a job accepted onto the queue.
func RecordJobSubmitted() {
	globalManager.jobsSubmitted.Inc()
}

// RecordJobDuplicate counts a resubmitted request ID.
func RecordJobDuplicate() {
	globalManager.jobsDuplicate.Inc()
}

// RecordJobCompleted counts a finished job by status.
func RecordJobCompleted(status string) {
	globalManager.jobsCompleted.WithLabelValues(status).Inc()
}

// UpdateRunsStored sets the number of stored runs.
func UpdateRunsStored(count int) {
	globalManager.runsStored.Set(float64(count))
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueueError counts a rejected enqueue.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordQueueDequeue counts a job handed to a worker.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of busy workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordValidationBuildings adds n evaluated buildings.
func RecordValidationBuildings(n int) {
	globalManager.validationBuildings.Add(float64(n))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
