// Package metrics provides Prometheus metrics for the riftbalance service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Quality is reported on a 0-100 scale.
var qualityBuckets = []float64{10, 25, 50, 75, 90, 95, 99, 100} //nolint:gochecknoglobals

var swapBuckets = []float64{0, 1, 2, 3, 5, 8, 13, 21, 50, 100} //nolint:gochecknoglobals

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Balancing
	balanceRequests  *prometheus.CounterVec
	balanceErrors    *prometheus.CounterVec
	balanceLatency   *prometheus.HistogramVec
	balanceImbalance *prometheus.GaugeVec
	balanceQuality   *prometheus.HistogramVec
	refineSwaps      *prometheus.HistogramVec
	seedStrategyWins *prometheus.CounterVec

	// Game ingestion
	gamesAccepted  prometheus.Counter
	gamesDuplicate prometheus.Counter
	gamesRecorded  prometheus.Counter
	gamesRejected  prometheus.Counter
	totalPlayers   prometheus.Gauge

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors *prometheus.CounterVec

	// Workers
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Repository
	repositoryUpdateLatency prometheus.Histogram
	repositoryQueryLatency  prometheus.Histogram

	// Riot API
	riotRequests *prometheus.CounterVec
	riotLatency  *prometheus.HistogramVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec

	// Process
	systemMemoryUsage prometheus.Gauge
	systemGoroutines  prometheus.Gauge
	systemGCPause     prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals

func init() { //nolint:gochecknoinits
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "riftbalance",
		subsystem:        "",
		histogramBuckets: prometheus.DefBuckets,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	if buckets == nil {
		buckets = m.histogramBuckets
	}
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen
	auto := promauto.With(m.registry)

	m.balanceRequests = auto.NewCounterVec(
		m.counterOpts("balance_requests_total", "Balance requests served, by mode"),
		[]string{"mode"})
	m.balanceErrors = auto.NewCounterVec(
		m.counterOpts("balance_errors_total", "Balance requests rejected, by mode and reason"),
		[]string{"mode", "reason"})
	m.balanceLatency = auto.NewHistogramVec(
		m.histogramOpts("balance_latency_milliseconds", "Time spent computing a split, by mode", nil),
		[]string{"mode"})
	m.balanceImbalance = auto.NewGaugeVec(
		m.gaugeOpts("balance_last_imbalance", "Objective difference of the most recent split, by mode"),
		[]string{"mode"})
	m.balanceQuality = auto.NewHistogramVec(
		m.histogramOpts("balance_quality", "Balance quality score (0-100), by mode", qualityBuckets),
		[]string{"mode"})
	m.refineSwaps = auto.NewHistogramVec(
		m.histogramOpts("balance_refine_swaps", "Swaps applied by local search, by mode", swapBuckets),
		[]string{"mode"})
	m.seedStrategyWins = auto.NewCounterVec(
		m.counterOpts("balance_seed_strategy_total", "Seed strategy that produced the final split"),
		[]string{"strategy"})

	m.gamesAccepted = auto.NewCounter(m.counterOpts("games_accepted_total", "Games accepted for ingestion"))
	m.gamesDuplicate = auto.NewCounter(m.counterOpts("games_duplicate_total", "Games dropped as duplicates"))
	m.gamesRecorded = auto.NewCounter(m.counterOpts("games_recorded_total", "Games folded into player stats"))
	m.gamesRejected = auto.NewCounter(m.counterOpts("games_rejected_total", "Games that failed to record"))
	m.totalPlayers = auto.NewGauge(m.gaugeOpts("players_total", "Registered players"))

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Games waiting in the ingestion queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Capacity of the ingestion queue"))
	m.queueUtilization = auto.NewGauge(m.gaugeOpts("queue_utilization", "Queue fill ratio (0-1)"))
	m.queueEnqueued = auto.NewCounter(m.counterOpts("queue_enqueued_total", "Games enqueued"))
	m.queueDequeued = auto.NewCounter(m.counterOpts("queue_dequeued_total", "Games dequeued by workers"))
	m.queueEnqueueErrors = auto.NewCounterVec(
		m.counterOpts("queue_enqueue_errors_total", "Failed enqueues, by reason"),
		[]string{"reason"})

	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Running ingestion workers"))
	m.workerProcessingLatency = auto.NewHistogram(
		m.histogramOpts("worker_processing_latency_milliseconds", "Time to record one game", nil))
	m.workerErrors = auto.NewCounter(m.counterOpts("worker_errors_total", "Games a worker failed to record"))

	m.repositoryUpdateLatency = auto.NewHistogram(
		m.histogramOpts("repository_update_latency_milliseconds", "Store write latency", nil))
	m.repositoryQueryLatency = auto.NewHistogram(
		m.histogramOpts("repository_query_latency_milliseconds", "Store read latency", nil))

	m.riotRequests = auto.NewCounterVec(
		m.counterOpts("riot_requests_total", "Riot API calls, by endpoint and outcome"),
		[]string{"endpoint", "outcome"})
	m.riotLatency = auto.NewHistogramVec(
		m.histogramOpts("riot_request_latency_milliseconds", "Riot API call latency, including rate-limit waits", nil),
		[]string{"endpoint"})

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "HTTP requests by endpoint, method and status"),
		[]string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration", nil),
		[]string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(
		m.counterOpts("errors_total", "Errors by component and type"),
		[]string{"component", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_bytes", "Heap bytes allocated"))
	m.systemGoroutines = auto.NewGauge(m.gaugeOpts("system_goroutines", "Live goroutines"))
	m.systemGCPause = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_milliseconds", "Average GC pause", nil))
}

// Balancing

// RecordBalance records a completed balance request.
func RecordBalance(mode, strategy string, latencyMs, imbalance, quality float64, swaps int) {
	globalManager.balanceRequests.WithLabelValues(mode).Inc()
	globalManager.balanceLatency.WithLabelValues(mode).Observe(latencyMs)
	globalManager.balanceImbalance.WithLabelValues(mode).Set(imbalance)
	globalManager.balanceQuality.WithLabelValues(mode).Observe(quality)
	globalManager.refineSwaps.WithLabelValues(mode).Observe(float64(swaps))
	if strategy != "" {
		globalManager.seedStrategyWins.WithLabelValues(strategy).Inc()
	}
}

// RecordBalanceError records a rejected balance request.
func RecordBalanceError(mode, reason string) {
	globalManager.balanceErrors.WithLabelValues(mode, reason).Inc()
}

// Ingestion

func RecordGameAccepted()  { globalManager.gamesAccepted.Inc() }
func RecordGameDuplicate() { globalManager.gamesDuplicate.Inc() }
func RecordGameRecorded()  { globalManager.gamesRecorded.Inc() }
func RecordGameRejected()  { globalManager.gamesRejected.Inc() }

// UpdateTotalPlayers sets the registered player gauge.
func UpdateTotalPlayers(count int) { globalManager.totalPlayers.Set(float64(count)) }

// Queue

func UpdateQueueSize(size int)              { globalManager.queueSize.Set(float64(size)) }
func UpdateQueueCapacity(capacity int)      { globalManager.queueCapacity.Set(float64(capacity)) }
func UpdateQueueUtilization(ratio float64)  { globalManager.queueUtilization.Set(ratio) }
func RecordQueueEnqueue()                   { globalManager.queueEnqueued.Inc() }
func RecordQueueDequeue()                   { globalManager.queueDequeued.Inc() }
func RecordQueueEnqueueError(reason string) { globalManager.queueEnqueueErrors.WithLabelValues(reason).Inc() }

// Workers

func UpdateWorkerCount(count int)                     { globalManager.workerCount.Set(float64(count)) }
func RecordWorkerProcessingLatency(latencyMs float64) { globalManager.workerProcessingLatency.Observe(latencyMs) }
func RecordWorkerError()                              { globalManager.workerErrors.Inc() }

// Repository

func RecordRepositoryUpdateLatency(latencyMs float64) {
	globalManager.repositoryUpdateLatency.Observe(latencyMs)
}

func RecordRepositoryQueryLatency(latencyMs float64) {
	globalManager.repositoryQueryLatency.Observe(latencyMs)
}

// RecordRiotRequest records one Riot API call. outcome is "ok", "not_found",
// "rate_limited" or "error".
func RecordRiotRequest(endpoint, outcome string, latencyMs float64) {
	globalManager.riotRequests.WithLabelValues(endpoint, outcome).Inc()
	globalManager.riotLatency.WithLabelValues(endpoint).Observe(latencyMs)
}

// HTTP

func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent counts an error raised by a component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// Process

func UpdateSystemMemoryUsage(bytes uint64)    { globalManager.systemMemoryUsage.Set(float64(bytes)) }
func UpdateSystemGoroutineCount(count int)    { globalManager.systemGoroutines.Set(float64(count)) }
func RecordSystemGCPauseTime(pauseMs float64) { globalManager.systemGCPause.Observe(pauseMs) }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
