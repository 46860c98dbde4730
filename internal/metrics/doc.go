// Package metrics provides Prometheus instrumentation for mch.
//
// All metrics are registered with the default registry through promauto and
// are prefixed with "mch_".
//
// # Metric Categories
//
// ## HTTP Metrics
//
//   - HTTPRequestsTotal: Counter of total requests by method, path, and status
//   - HTTPRequestDuration: Histogram of request duration by method and path
//   - HTTPRequestsInFlight: Gauge of currently processing requests
//
// ## Response Middleware Metrics
//
//   - MiddlewareDecisionsTotal: Counter by middleware (compression, conditional,
//     range) and outcome (compressed, not_modified, partial, unsatisfiable,
//     passthrough, error)
//   - CompressionBytesTotal: Bytes in and out of the gzip middleware
//   - RangeServedBytes: Histogram of 206 body sizes
//
// ## Content Source Metrics
//
//   - SourceReadsTotal: Counter by backend (local, minio) and status
//   - SourceReadDuration: Histogram of read duration by backend
//
// ## Filesystem Metrics
//
// Retry counters for ESTALE handling in the local content backend, recorded
// through the filesystem.Observer returned by NewFilesystemObserver.
//
// Call InitializeMetrics once at startup so every label combination is
// exported from the first scrape.
package metrics
