package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Console HTTP metrics
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_requests_total",
			Help: "Total number of HTTP requests served by the console",
		},
		[]string{"method", "route", "status_code"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_requests_duration_seconds",
			Help:    "Console HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status_code"},
	)

	// Outgoing API call metrics
	apiCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_call_duration_seconds",
			Help:    "ThreatLens API call duration in seconds",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		},
		[]string{"method", "path", "status_code"},
	)

	// Session metrics
	sessionInvalidationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "session_invalidations_total",
			Help: "Total number of session invalidations triggered by 401 responses",
		},
	)

	sessionTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_transitions_total",
			Help: "Total number of session state transitions",
		},
		[]string{"state"},
	)

	// Credential store metrics
	storeOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credential_store_operations_total",
			Help: "Total number of credential store operations",
		},
		[]string{"backend", "operation", "status"}, // get/set/clear, success/failure
	)
)

// Init initializes the metrics
func Init() error {
	// Register metrics
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		apiCallDuration,
		sessionInvalidationsTotal,
		sessionTransitionsTotal,
		storeOperationsTotal,
	)

	return nil
}

// HTTPMetricsMiddleware records HTTP metrics
func HTTPMetricsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		// Process request
		err := c.Next()

		// Record metrics
		duration := time.Since(start).Seconds()
		method := c.Method()
		route := c.Route().Path
		if route == "" {
			route = c.Path()
		}
		statusCode := strconv.Itoa(c.Response().StatusCode())

		httpRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
		httpRequestDuration.WithLabelValues(method, route, statusCode).Observe(duration)

		return err
	}
}

// RecordAPICall records metrics for outgoing backend API calls
func RecordAPICall(method, path string, statusCode int, duration time.Duration) {
	statusStr := strconv.Itoa(statusCode)
	apiCallDuration.WithLabelValues(method, path, statusStr).Observe(duration.Seconds())
}

// RecordInvalidation records a 401-triggered session invalidation
func RecordInvalidation() {
	sessionInvalidationsTotal.Inc()
}

// RecordSessionTransition records a session state transition
func RecordSessionTransition(state string) {
	sessionTransitionsTotal.WithLabelValues(state).Inc()
}

// RecordStoreOperation records credential store operations
func RecordStoreOperation(backend, operation, status string) {
	storeOperationsTotal.WithLabelValues(backend, operation, status).Inc()
}

// PrometheusHandler returns the Prometheus metrics handler
func PrometheusHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
