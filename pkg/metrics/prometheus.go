// Package metrics provides Prometheus metrics for the feint mock API server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus metrics for the server.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// HTTP surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByScenario    *prometheus.CounterVec

	// Stall scenario (deliberate suspend on /no-response)
	stallsStarted   prometheus.Counter
	stallsCancelled prometheus.Counter
	stallsCompleted prometheus.Counter

	// POST body diagnostics
	bodiesLogged *prometheus.CounterVec

	// Configuration snapshot gauges
	scenarioCount prometheus.Gauge
	stallSeconds  prometheus.Gauge

	// System health
	systemMemoryBytes prometheus.Gauge
	systemGoroutines  prometheus.Gauge
}

// Global manager backed by a custom registry so default Go collectors do
// not pollute the scrape output.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // registry served on /healthz

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager, registering all metrics on the
// configured registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "feint",
		subsystem:        "server",
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

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests served, by scenario, method, and status",
	}, []string{"scenario", "method", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "Histogram of request handling time in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"scenario", "method", "status"})

	m.errorsByScenario = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_errors_total",
		Help:      "Total non-2xx responses, by scenario and error class",
	}, []string{"scenario", "method", "type"})

	m.stallsStarted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stalls_started_total",
		Help:      "Total deliberate response stalls started",
	})

	m.stallsCancelled = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stalls_cancelled_total",
		Help:      "Total stalls abandoned because the client disconnected",
	})

	m.stallsCompleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stalls_completed_total",
		Help:      "Total stalls that ran to completion and emitted a body",
	})

	m.bodiesLogged = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "post_bodies_logged_total",
		Help:      "Total POST bodies logged for diagnostics, by detected format",
	}, []string{"format"})

	m.scenarioCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scenario_count",
		Help:      "Number of canned scenarios in the route registry",
	})

	m.stallSeconds = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stall_seconds",
		Help:      "Configured stall duration for the no-response scenario",
	})

	m.systemMemoryBytes = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Current heap allocation in bytes",
	})

	m.systemGoroutines = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines",
	})
}

// GetRegistry returns the registry served by the health endpoint.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package-level helpers against the global manager.

// RecordHTTPRequest counts a finished request.
func RecordHTTPRequest(scenario, method, status string) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(scenario, method, status).Inc()
	}
}

// RecordHTTPRequestDuration observes request handling time in milliseconds.
func RecordHTTPRequestDuration(scenario, method, status string, ms float64) {
	if globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(scenario, method, status).Observe(ms)
	}
}

// RecordError counts a non-2xx response.
func RecordError(scenario, method, errorType string) {
	if globalManager.enabled {
		globalManager.errorsByScenario.WithLabelValues(scenario, method, errorType).Inc()
	}
}

// RecordStallStarted counts a stall entering its suspend.
func RecordStallStarted() {
	if globalManager.enabled {
		globalManager.stallsStarted.Inc()
	}
}

// RecordStallCancelled counts a stall abandoned by client disconnect.
func RecordStallCancelled() {
	if globalManager.enabled {
		globalManager.stallsCancelled.Inc()
	}
}

// RecordStallCompleted counts a stall that ran its full duration.
func RecordStallCompleted() {
	if globalManager.enabled {
		globalManager.stallsCompleted.Inc()
	}
}

// RecordBodyLogged counts a diagnostically logged POST body. Format is one
// of "json", "form", or "raw".
func RecordBodyLogged(format string) {
	if globalManager.enabled {
		globalManager.bodiesLogged.WithLabelValues(format).Inc()
	}
}

// UpdateScenarioCount publishes the registry size.
func UpdateScenarioCount(n int) {
	if globalManager.enabled {
		globalManager.scenarioCount.Set(float64(n))
	}
}

// UpdateStallSeconds publishes the configured stall duration.
func UpdateStallSeconds(seconds float64) {
	if globalManager.enabled {
		globalManager.stallSeconds.Set(seconds)
	}
}

// UpdateSystemMemoryUsage publishes current heap allocation.
func UpdateSystemMemoryUsage(bytes uint64) {
	if globalManager.enabled {
		globalManager.systemMemoryBytes.Set(float64(bytes))
	}
}

// UpdateSystemGoroutineCount publishes the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	if globalManager.enabled {
		globalManager.systemGoroutines.Set(float64(count))
	}
}
