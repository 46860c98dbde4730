// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// [LoadConfig] reads an optional .env file with godotenv and then resolves
// every key through viper, falling back to the defaults declared in the
// `default` struct tags of [Config]. Environment variable names are the
// upper-cased keys with dots replaced by underscores:
//
//   - SERVER_PORT: HTTP server port (default: 8080)
//   - SERVER_METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - SERVER_SHUTDOWN_TIMEOUT: Graceful shutdown budget (default: 30s)
//   - METRICS_ENABLED: Enable or disable the metrics server (default: true)
//   - LOG_LEVEL: debug, info, warn, error (default: info)
//   - LOG_FORMAT: json or console (default: json)
//   - LOG_STATIC_FILES: Log content requests (default: false)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//   - CONTENT_BACKEND: local or minio (default: local)
//   - CONTENT_ROOT: Content directory for the local backend (default: ./content)
//   - COMPRESSION_LEVEL: gzip level, -1 for the library default (default: -1)
//   - COMPRESSION_MIN_SIZE: Smallest body worth compressing (default: 0)
//   - MEMORY_LIMIT: Container memory limit in bytes, sizes GOMEMLIMIT (default: unset)
//   - MEMORY_RATIO: Share of MEMORY_LIMIT given to the Go heap (default: 0.85)
//   - MINIO_ENDPOINT, MINIO_ACCESS_KEY, MINIO_SECRET_KEY, MINIO_BUCKET,
//     MINIO_USE_SSL, MINIO_REGION, MINIO_TIMEOUT_SECONDS: object store settings
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo].
//
// # Lifecycle Logging
//
//   - [LogMemoryConfig]: GOMEMLIMIT sizing
//   - [LogContentSourceInit]: content backend and location
//   - [LogMiddlewareChain]: response middleware order
//   - [LogHTTPRoutes]: registered HTTP routes (debug level)
//   - [LogServerStarted]: server endpoints and startup duration
//   - [LogShutdownInitiated], [LogShutdownComplete]: graceful shutdown
package startup
