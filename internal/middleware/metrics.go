package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus metrics for application monitoring. All metrics are registered
// in the default registry and exposed via the /metrics endpoint.

var (
	// httpRequestsTotal counts all HTTP requests by method, path, and status.
	// Use for request rate monitoring and error rate calculation.
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration measures request processing time.
	// Use for latency analysis and SLO tracking (P50, P95, P99).
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// httpResponseSize tracks response body sizes for bandwidth monitoring.
	httpResponseSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// authAttemptsTotal counts authentication attempts by strategy and result.
	// Use for security monitoring: a spike in failures on one strategy is
	// the first sign of credential stuffing.
	//
	// Labels: strategy (local, google, register), result (success, invalid_credentials, ...)
	authAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"strategy", "result"},
	)

	// secretOperationsTotal counts secret CRUD operations by kind and result.
	//
	// Labels: operation (list, create, update, delete), result (success, not_found, invalid, error)
	secretOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "secret_operations_total",
			Help: "Total number of secret operations",
		},
		[]string{"operation", "result"},
	)

	// sessionsSweptTotal counts expired sessions removed by the background
	// sweep.
	sessionsSweptTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sessions_swept_total",
			Help: "Total number of expired sessions removed by the sweeper",
		},
	)
)

// init registers all metrics with the Prometheus default registry.
// Panics if any metric name conflicts with existing registrations.
func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(httpResponseSize)
	prometheus.MustRegister(authAttemptsTotal)
	prometheus.MustRegister(secretOperationsTotal)
	prometheus.MustRegister(sessionsSweptTotal)
}

// Metrics creates middleware for collecting HTTP metrics.
// Records request count, duration, and response size for every request.
//
// The middleware wraps the response writer to capture status code and bytes
// written, which are not normally accessible.
//
// Example Prometheus queries:
//
//	# Request rate by endpoint
//	rate(http_requests_total[5m])
//
//	# Error rate percentage
//	sum(rate(http_requests_total{status=~"5.."}[5m])) / sum(rate(http_requests_total[5m]))
//
//	# P95 latency
//	histogram_quantile(0.95, rate(http_request_duration_seconds_bucket[5m]))
//
// Usage:
//
//	r.Use(middleware.Metrics())
func Metrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(ww.Status())

			httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
			httpResponseSize.WithLabelValues(r.Method, r.URL.Path).Observe(float64(ww.BytesWritten()))
		})
	}
}

// MetricsHandler returns the Prometheus metrics HTTP handler.
// Exposes all registered metrics in Prometheus text format for scraping.
//
// Usage:
//
//	r.Get("/metrics", middleware.MetricsHandler().ServeHTTP)
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// IncrementAuthAttempts increments the authentication attempts counter.
// Call this in authentication handlers to track success and failure rates.
//
// Example:
//
//	user, err := localSvc.Login(ctx, req.Email, req.Password)
//	if err != nil {
//	    middleware.IncrementAuthAttempts("local", "invalid_credentials")
//	    return
//	}
//	middleware.IncrementAuthAttempts("local", "success")
func IncrementAuthAttempts(strategy, result string) {
	authAttemptsTotal.WithLabelValues(strategy, result).Inc()
}

// RecordSecretOperation increments the secret operations counter.
func RecordSecretOperation(operation, result string) {
	secretOperationsTotal.WithLabelValues(operation, result).Inc()
}

// AddSessionsSwept records how many expired sessions a sweep pass removed.
func AddSessionsSwept(count int64) {
	sessionsSweptTotal.Add(float64(count))
}
