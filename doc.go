// Command mch serves thread content over HTTP behind a chain of
// response-transforming middleware.
//
// # Commands
//
//	mch serve [--env-file .env]   start the content and metrics servers
//	mch version                   print build information
//
// # Request Pipeline
//
// Every request to the application port passes through, outermost first:
//
//  1. Metrics: Prometheus request counters and latency
//  2. Logger: W3C access log line and X-Request-ID
//  3. Range: single byte ranges (206 / 416), Accept-Ranges: bytes
//  4. Compression: gzip when the client accepts it
//  5. Conditional: If-Modified-Since against Last-Modified (304)
//  6. Router: content, health and version handlers
//
// Because Range wraps Compression, byte offsets in a Range request index
// the gzip-encoded body when the client also sent Accept-Encoding: gzip.
//
// # Content Sources
//
// CONTENT_BACKEND selects a local directory (CONTENT_ROOT) or a MinIO / S3
// bucket (MINIO_*). Local reads retry NFS stale file handles.
//
// # Lifecycle
//
//  1. Configuration: .env file, environment, defaults (see package startup)
//  2. Memory: GOMEMLIMIT sized from MEMORY_LIMIT
//  3. Metrics: collectors initialized, filesystem observer installed
//  4. Content source opened
//  5. HTTP servers started; readiness flips to ready
//  6. Graceful shutdown on SIGINT/SIGTERM
package main
