package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/negroni"

	"mch/internal/metrics"
)

// MetricsConfig holds configuration for the metrics middleware
type MetricsConfig struct {
	// SkipPaths are paths that should not be recorded
	SkipPaths []string
	// Routes are the first path segments recorded as-is; any other prefix
	// is recorded as otherPath
	Routes []string
}

// otherPath labels requests outside the known routes
const otherPath = "/other"

// DefaultMetricsConfig returns the default metrics configuration
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		SkipPaths: []string{"/metrics", "/health", "/healthz", "/livez", "/readyz"},
		Routes:    []string{"/content", "/version", "/health", "/healthz", "/livez", "/readyz"},
	}
}

// Metrics returns a middleware that records Prometheus metrics
func Metrics(config MetricsConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip metrics for certain paths
			for _, path := range config.SkipPaths {
				if strings.HasPrefix(r.URL.Path, path) {
					next.ServeHTTP(w, r)
					return
				}
			}

			// Track in-flight requests
			metrics.HTTPRequestsInFlight.Inc()
			defer metrics.HTTPRequestsInFlight.Dec()

			// Wrap response writer to capture status code
			wrapped := negroni.NewResponseWriter(w)

			// Record start time
			start := time.Now()

			// Process request
			next.ServeHTTP(wrapped, r)

			// Record metrics
			duration := time.Since(start).Seconds()
			path := normalizePath(r.URL.Path, config.Routes)
			code := wrapped.Status()
			if code == 0 {
				code = http.StatusOK
			}
			status := strconv.Itoa(code)

			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
		})
	}
}

// normalizePath normalizes the path for metrics to avoid high cardinality
func normalizePath(path string, routes []string) string {
	if path == "/" {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		return otherPath
	}

	prefix := path
	if i := strings.IndexByte(path[1:], '/'); i >= 0 {
		prefix = path[:i+1]
	}
	if !slices.Contains(routes, prefix) {
		return otherPath
	}

	// Everything below the route prefix is a content name
	if len(path) > len(prefix)+1 {
		return prefix + "/{path}"
	}
	return prefix
}
