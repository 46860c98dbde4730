// Package middleware provides HTTP middleware for mch.
//
// Response transformers, each func(http.Handler) http.Handler that buffers
// the wrapped handler's response and rewrites it for one HTTP semantic:
//   - Compression: gzip Content-Encoding negotiated from Accept-Encoding
//   - Conditional: If-Modified-Since against Last-Modified, answering 304
//   - Range: single byte ranges, answering 206 or 416
//
// Ambient middleware:
//   - Logger: request logging in W3C Extended Log Format with request IDs
//   - Metrics: Prometheus request counters and latency histograms
//
// Chain composes any of them in a fixed order at startup.
package middleware
