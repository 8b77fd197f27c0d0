package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run results.
const (
	ResultSuccess = "success"
	ResultEmpty   = "empty"
	ResultError   = "error"
)

// Manager manages all Prometheus metrics for the rating service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Rating runs
	runsTotal           *prometheus.CounterVec
	runDuration         prometheus.Histogram
	observationsTotal   prometheus.Counter
	participantsTotal   prometheus.Counter
	lateAdmittedTotal   prometheus.Counter
	lastRunParticipants prometheus.Gauge
	lastRatedDayUnix    prometheus.Gauge
	playersTotal        prometheus.Gauge

	// Repository
	repositoryLatency *prometheus.HistogramVec
	repositoryErrors  *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec
	configReloads     *prometheus.CounterVec
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
		namespace:        "syaroho",
		subsystem:        "rating",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one block per collector
	auto := promauto.With(m.registry)

	m.runsTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "runs_total",
		Help:        "Daily rating runs by result",
		ConstLabels: m.constLabels,
	}, []string{"result"})

	m.runDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "run_duration_milliseconds",
		Help:        "Duration of a daily rating run in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})

	m.observationsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "observations_total",
		Help:        "Observations read from both fetches",
		ConstLabels: m.constLabels,
	})

	m.participantsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "participants_total",
		Help:        "Participants admitted across all rated days",
		ConstLabels: m.constLabels,
	})

	m.lateAdmittedTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "late_admitted_total",
		Help:        "Participants recovered from the late-catch fetch",
		ConstLabels: m.constLabels,
	})

	m.lastRunParticipants = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "last_run_participants",
		Help:        "Participants of the most recently rated day",
		ConstLabels: m.constLabels,
	})

	m.lastRatedDayUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "last_rated_day_timestamp_seconds",
		Help:        "Target instant of the most recently rated day",
		ConstLabels: m.constLabels,
	})

	m.playersTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "players",
		Help:        "Players in the latest rating snapshot",
		ConstLabels: m.constLabels,
	})

	m.repositoryLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "repository_latency_milliseconds",
		Help:        "Repository operation latency in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"operation"})

	m.repositoryErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "repository_errors_total",
		Help:        "Failed repository operations",
		ConstLabels: m.constLabels,
	}, []string{"operation"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "Total number of HTTP requests by endpoint and method",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "errors_by_component_total",
		Help:        "Errors by component and type",
		ConstLabels: m.constLabels,
	}, []string{"component", "error_type"})

	m.configReloads = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "config_reloads_total",
		Help:        "Configuration reloads by result",
		ConstLabels: m.constLabels,
	}, []string{"result"})
}

// RecordRun counts a finished run and its duration.
func RecordRun(result string, duration time.Duration) {
	globalManager.runsTotal.WithLabelValues(result).Inc()
	globalManager.runDuration.Observe(float64(duration) / float64(time.Millisecond))
}

// RecordDay records the admission counters of a rated day.
func RecordDay(day time.Time, observed, admitted, late int) {
	globalManager.observationsTotal.Add(float64(observed))
	globalManager.participantsTotal.Add(float64(admitted))
	globalManager.lateAdmittedTotal.Add(float64(late))
	globalManager.lastRunParticipants.Set(float64(admitted))
	globalManager.lastRatedDayUnix.Set(float64(day.Unix()))
}

// UpdatePlayers sets the number of players in the latest snapshot.
func UpdatePlayers(count int) {
	globalManager.playersTotal.Set(float64(count))
}

// RecordRepositoryOperation records the latency of a repository call and
// counts it as failed when err is not nil.
func RecordRepositoryOperation(operation string, latency time.Duration, err error) {
	globalManager.repositoryLatency.WithLabelValues(operation).Observe(float64(latency) / float64(time.Millisecond))
	if err != nil {
		globalManager.repositoryErrors.WithLabelValues(operation).Inc()
	}
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

// RecordConfigReload counts a configuration reload attempt.
func RecordConfigReload(err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	globalManager.configReloads.WithLabelValues(result).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
