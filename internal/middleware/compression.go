package middleware

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"

	"mch/internal/logging"
	"mch/internal/metrics"
)

// CompressionConfig holds configuration for the compression middleware
type CompressionConfig struct {
	// MinSize is the minimum response size in bytes before compression is applied
	MinSize int
	// Level is the gzip compression level (gzip.BestSpeed to gzip.BestCompression)
	Level int
	// CompressibleTypes restricts compression to these media types.
	// Empty means every content type is compressed.
	CompressibleTypes []string
}

// DefaultCompressionConfig compresses every response the client accepts
// gzip for, at the default level.
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		MinSize: 0,
		Level:   gzip.DefaultCompression,
	}
}

// newGzipWriterPool returns a pool of writers at the configured level.
// An invalid level falls back to gzip.DefaultCompression.
func newGzipWriterPool(level int) *sync.Pool {
	if _, err := gzip.NewWriterLevel(io.Discard, level); err != nil {
		logging.Warn("Invalid gzip level %d, using default: %v", level, err)
		level = gzip.DefaultCompression
	}
	return &sync.Pool{
		New: func() interface{} {
			w, _ := gzip.NewWriterLevel(io.Discard, level)
			return w
		},
	}
}

// gzipBytes compresses data in one shot using a pooled writer
func gzipBytes(pool *sync.Pool, data []byte) ([]byte, error) {
	var out bytes.Buffer
	out.Grow(len(data)/2 + 64)

	gz := pool.Get().(*gzip.Writer)
	defer pool.Put(gz)
	gz.Reset(&out)

	if _, err := gz.Write(data); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// acceptsGzip reports whether the Accept-Encoding values list the gzip
// token with a non-zero quality.
func acceptsGzip(r *http.Request) bool {
	for _, value := range r.Header.Values("Accept-Encoding") {
		for _, part := range strings.Split(value, ",") {
			coding, params, _ := strings.Cut(part, ";")
			if !strings.EqualFold(strings.TrimSpace(coding), "gzip") {
				continue
			}
			if qualityIsZero(params) {
				return false
			}
			return true
		}
	}
	return false
}

// qualityIsZero reports whether params contain q=0 (in any spelling).
func qualityIsZero(params string) bool {
	for _, param := range strings.Split(params, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(param), "=")
		if !ok || !strings.EqualFold(strings.TrimSpace(name), "q") {
			continue
		}
		q, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		return err == nil && q == 0
	}
	return false
}

// shouldCompressContentType checks if the content type should be compressed
func shouldCompressContentType(header http.Header, config CompressionConfig) bool {
	if len(config.CompressibleTypes) == 0 {
		return true
	}

	contentType := header.Get("Content-Type")
	if contentType == "" {
		return false
	}

	// Extract the media type (ignore charset and other parameters)
	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))

	for _, compressible := range config.CompressibleTypes {
		if mediaType == compressible {
			return true
		}
	}

	return false
}

// shouldCompress decides whether the captured response is gzip-encoded
func shouldCompress(r *http.Request, resp *capturedResponse, config CompressionConfig) bool {
	if resp.header.Get("Content-Encoding") != "" {
		// Never double-encode
		return false
	}
	if !acceptsGzip(r) {
		return false
	}
	if !bodyAllowedForStatus(resp.status) {
		return false
	}
	if len(resp.Bytes()) < config.MinSize {
		return false
	}
	return shouldCompressContentType(resp.header, config)
}

// addVary appends token to the Vary header unless it is already listed
func addVary(header http.Header, token string) {
	for _, value := range header.Values("Vary") {
		for _, existing := range strings.Split(value, ",") {
			if strings.EqualFold(strings.TrimSpace(existing), token) {
				return
			}
		}
	}
	header.Add("Vary", token)
}

// Compression returns a middleware that gzip-encodes the whole response body
// when the client accepts gzip and the response is not already encoded.
// Content-Length is removed rather than recomputed.
func Compression(config CompressionConfig) func(http.Handler) http.Handler {
	pool := newGzipWriterPool(config.Level)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if bypassCapture(r) {
				next.ServeHTTP(w, r)
				return
			}

			resp := capture(next, w, r)

			if !shouldCompress(r, resp, config) {
				metrics.RecordDecision(metrics.MiddlewareCompression, metrics.OutcomePassthrough)
				resp.forward(w)
				return
			}

			original := resp.Bytes()
			compressed, err := gzipBytes(pool, original)
			if err != nil {
				logging.Warn("gzip failed for %s, sending uncompressed: %v", r.URL.Path, err)
				metrics.RecordDecision(metrics.MiddlewareCompression, metrics.OutcomeError)
				resp.forward(w)
				return
			}

			metrics.CompressionBytesTotal.WithLabelValues("in").Add(float64(len(original)))
			metrics.CompressionBytesTotal.WithLabelValues("out").Add(float64(len(compressed)))
			resp.release()

			resp.header.Set("Content-Encoding", "gzip")
			resp.header.Del("Content-Length")
			addVary(resp.header, "Accept-Encoding")

			metrics.RecordDecision(metrics.MiddlewareCompression, metrics.OutcomeCompressed)
			resp.respond(w, resp.status, compressed)
		})
	}
}

// bypassCapture reports requests whose responses must not be buffered:
// connection upgrades and Server-Sent Events.
func bypassCapture(r *http.Request) bool {
	if r.Header.Get("Upgrade") != "" {
		return true
	}
	return r.Header.Get("Accept") == "text/event-stream"
}
