package middleware

import (
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"mch/internal/logging"
	"mch/internal/metrics"
)

// rangePattern matches a single byte-range-spec or suffix-byte-range-spec
var rangePattern = regexp.MustCompile(`^bytes=([0-9]+)?-([0-9]+)?$`)

// byteRange is a parsed Range header. At least one bound is present.
// When only end is present it is a suffix length, not a position.
type byteRange struct {
	begin, end       int64
	hasBegin, hasEnd bool
}

// parseRange parses a single-range Range header value. ok is false when the
// value does not match the pattern, names neither bound, or a bound
// overflows int64.
func parseRange(value string) (br byteRange, ok bool) {
	m := rangePattern.FindStringSubmatch(value)
	if m == nil || (m[1] == "" && m[2] == "") {
		return byteRange{}, false
	}

	if m[1] != "" {
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return byteRange{}, false
		}
		br.begin, br.hasBegin = n, true
	}
	if m[2] != "" {
		n, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil {
			return byteRange{}, false
		}
		br.end, br.hasEnd = n, true
	}
	return br, true
}

// satisfiable checks the range against a representation of total bytes.
// The checks run in a fixed order: reversed bounds, end past the last
// byte, begin past the last byte, empty suffix.
func (br byteRange) satisfiable(total int64) bool {
	if br.hasBegin && br.hasEnd && br.end < br.begin {
		return false
	}
	if br.hasEnd && total <= br.end {
		return false
	}
	if br.hasBegin && total <= br.begin {
		return false
	}
	// "bytes=-0" asks for nothing
	if !br.hasBegin && br.end == 0 {
		return false
	}
	return true
}

// bounds returns the inclusive first and last byte positions to serve.
// Only valid for a satisfiable range.
func (br byteRange) bounds(total int64) (first, last int64) {
	switch {
	case br.hasBegin && br.hasEnd:
		return br.begin, br.end
	case br.hasBegin:
		return br.begin, total - 1
	default:
		return total - br.end, total - 1
	}
}

// contentRange formats a Content-Range value for a satisfied range
func contentRange(first, last, total int64) string {
	return fmt.Sprintf("bytes %d-%d/%d", first, last, total)
}

// Range returns a middleware serving single byte ranges of 2xx responses.
// Every response advertises Accept-Ranges: bytes, the RFC 9110 header name
// rather than the singular Accept-Range. Multi-range requests and
// non-2xx responses pass through untouched; malformed or unsatisfiable
// ranges get 416 with an empty body.
func Range() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if bypassCapture(r) {
				next.ServeHTTP(w, r)
				return
			}

			resp := capture(next, w, r)

			if resp.header.Get("Accept-Ranges") == "" {
				resp.header.Set("Accept-Ranges", "bytes")
			}

			value := r.Header.Get("Range")
			if value == "" || strings.Contains(value, ",") || !statusIsSuccess(resp.status) {
				metrics.RecordDecision(metrics.MiddlewareRange, metrics.OutcomePassthrough)
				resp.forward(w)
				return
			}

			br, ok := parseRange(value)
			if !ok {
				logging.Debug("Malformed Range %q for %s", value, r.URL.Path)
				rangeNotSatisfiable(w, resp, -1)
				return
			}

			content := resp.Bytes()
			total := int64(len(content))
			if !br.satisfiable(total) {
				logging.Debug("Unsatisfiable Range %q for %s (%d bytes)", value, r.URL.Path, total)
				rangeNotSatisfiable(w, resp, total)
				return
			}

			first, last := br.bounds(total)
			part := content[first : last+1]

			resp.header.Set("Content-Range", contentRange(first, last, total))
			resp.header.Del("Content-Length")

			metrics.RecordDecision(metrics.MiddlewareRange, metrics.OutcomePartial)
			metrics.RangeServedBytes.Observe(float64(len(part)))
			resp.respond(w, http.StatusPartialContent, part)
		})
	}
}

// rangeNotSatisfiable discards the captured body and answers 416. When the
// representation length is known (total >= 0) it is reported through
// Content-Range: bytes */total.
func rangeNotSatisfiable(w http.ResponseWriter, resp *capturedResponse, total int64) {
	resp.release()
	resp.header.Del("Content-Length")
	if total >= 0 {
		resp.header.Set("Content-Range", fmt.Sprintf("bytes */%d", total))
	}
	metrics.RecordDecision(metrics.MiddlewareRange, metrics.OutcomeUnsatisfiable)
	resp.respond(w, http.StatusRequestedRangeNotSatisfiable, nil)
}
