package middleware

import (
	"net/http"
	"time"

	"mch/internal/logging"
	"mch/internal/metrics"
)

// parseHTTPDate parses an HTTP-date in any of the three formats allowed by
// RFC 9110. It never fails loudly: ok is false for empty or malformed input.
func parseHTTPDate(value string) (t time.Time, ok bool) {
	if value == "" {
		return time.Time{}, false
	}
	t, err := http.ParseTime(value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// notModified reports whether a resource last modified at lastModified is
// unchanged for a client holding a copy dated since. Equal instants count as
// not modified.
func notModified(since, lastModified time.Time) bool {
	return !since.Before(lastModified)
}

// Conditional returns a middleware implementing If-Modified-Since against the
// Last-Modified header set by the wrapped handler. A fresh client copy gets
// 304 Not Modified with the captured headers and no body. Unparsable dates
// on either side are treated as if If-Modified-Since were absent.
func Conditional() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if bypassCapture(r) {
				next.ServeHTTP(w, r)
				return
			}

			resp := capture(next, w, r)

			lastModifiedValue := resp.header.Get("Last-Modified")
			sinceValue := r.Header.Get("If-Modified-Since")
			if lastModifiedValue == "" || sinceValue == "" {
				metrics.RecordDecision(metrics.MiddlewareConditional, metrics.OutcomePassthrough)
				resp.forward(w)
				return
			}

			lastModified, lmOK := parseHTTPDate(lastModifiedValue)
			since, sinceOK := parseHTTPDate(sinceValue)
			if !lmOK || !sinceOK {
				logging.Debug("Ignoring If-Modified-Since for %s: unparsable date (Last-Modified=%q, If-Modified-Since=%q)",
					r.URL.Path, lastModifiedValue, sinceValue)
				metrics.RecordDecision(metrics.MiddlewareConditional, metrics.OutcomePassthrough)
				resp.forward(w)
				return
			}

			if !notModified(since, lastModified) {
				metrics.RecordDecision(metrics.MiddlewareConditional, metrics.OutcomePassthrough)
				resp.forward(w)
				return
			}

			metrics.RecordDecision(metrics.MiddlewareConditional, metrics.OutcomeNotModified)
			resp.release()
			resp.respond(w, http.StatusNotModified, nil)
		})
	}
}
