package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mch_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mch_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mch_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Middleware names used as the "middleware" label.
const (
	MiddlewareCompression = "compression"
	MiddlewareConditional = "conditional"
	MiddlewareRange       = "range"
)

// Middleware outcomes used as the "outcome" label.
const (
	OutcomePassthrough   = "passthrough"
	OutcomeCompressed    = "compressed"
	OutcomeError         = "error"
	OutcomeNotModified   = "not_modified"
	OutcomePartial       = "partial"
	OutcomeUnsatisfiable = "unsatisfiable"
)

// Response middleware metrics
var (
	MiddlewareDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mch_middleware_decisions_total",
			Help: "Total number of responses handled by each response middleware, by outcome",
		},
		[]string{"middleware", "outcome"},
	)

	CompressionBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mch_compression_bytes_total",
			Help: "Bytes fed into and produced by the gzip middleware",
		},
		[]string{"direction"}, // "in" or "out"
	)

	RangeServedBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mch_range_served_bytes",
			Help:    "Size of partial content bodies served by the range middleware",
			Buckets: prometheus.ExponentialBuckets(16, 4, 10),
		},
	)
)

// Content source metrics
var (
	SourceReadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mch_source_reads_total",
			Help: "Total number of content reads by backend and status",
		},
		[]string{"backend", "status"},
	)

	SourceReadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mch_source_read_duration_seconds",
			Help:    "Content read duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"backend"},
	)
)

// Filesystem retry metrics
var (
	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mch_filesystem_retry_attempts_total",
			Help: "Total number of filesystem operation retries after ESTALE",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mch_filesystem_retry_success_total",
			Help: "Total number of filesystem operations that succeeded after retrying",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mch_filesystem_retry_failures_total",
			Help: "Total number of filesystem operations that failed after exhausting retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mch_filesystem_stale_errors_total",
			Help: "Total number of ESTALE errors observed",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mch_filesystem_retry_duration_seconds",
			Help:    "Total duration of filesystem operations including retries",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2},
		},
		[]string{"operation", "volume"},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mch_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}

// RecordDecision counts one response handled by a response middleware.
func RecordDecision(middleware, outcome string) {
	MiddlewareDecisionsTotal.WithLabelValues(middleware, outcome).Inc()
}
