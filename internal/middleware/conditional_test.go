package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"mch/internal/metrics"
)

func TestParseHTTPDate(t *testing.T) {
	want := time.Date(2015, time.October, 21, 7, 28, 0, 0, time.UTC)

	tests := []struct {
		name   string
		value  string
		wantOK bool
	}{
		{name: "IMF-fixdate", value: "Wed, 21 Oct 2015 07:28:00 GMT", wantOK: true},
		{name: "RFC 850", value: "Wednesday, 21-Oct-15 07:28:00 GMT", wantOK: true},
		{name: "asctime", value: "Wed Oct 21 07:28:00 2015", wantOK: true},
		{name: "empty", value: "", wantOK: false},
		{name: "garbage", value: "yesterday-ish", wantOK: false},
		{name: "unix timestamp", value: "1445412480", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseHTTPDate(tt.value)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.True(t, want.Equal(got), "got %v", got)
			} else {
				assert.True(t, got.IsZero())
			}
		})
	}
}

func TestConditionalMiddleware(t *testing.T) {
	const lastModified = "Wed, 21 Oct 2015 07:28:00 GMT"

	tests := []struct {
		name            string
		lastModified    string
		ifModifiedSince string
		status          int
		expectStatus    int
		expectBody      string
	}{
		{
			name:            "Equal instants are not modified",
			lastModified:    lastModified,
			ifModifiedSince: lastModified,
			status:          http.StatusOK,
			expectStatus:    http.StatusNotModified,
			expectBody:      "",
		},
		{
			name:            "Client copy newer than resource",
			lastModified:    lastModified,
			ifModifiedSince: "Thu, 22 Oct 2015 00:00:00 GMT",
			status:          http.StatusOK,
			expectStatus:    http.StatusNotModified,
			expectBody:      "",
		},
		{
			name:            "Client copy older than resource",
			lastModified:    lastModified,
			ifModifiedSince: "Wed, 21 Oct 2015 07:27:59 GMT",
			status:          http.StatusOK,
			expectStatus:    http.StatusOK,
			expectBody:      "thread body",
		},
		{
			name:            "Different date formats compare by instant",
			lastModified:    lastModified,
			ifModifiedSince: "Wed Oct 21 07:28:00 2015",
			status:          http.StatusOK,
			expectStatus:    http.StatusNotModified,
			expectBody:      "",
		},
		{
			name:            "No If-Modified-Since",
			lastModified:    lastModified,
			ifModifiedSince: "",
			status:          http.StatusOK,
			expectStatus:    http.StatusOK,
			expectBody:      "thread body",
		},
		{
			name:            "No Last-Modified",
			lastModified:    "",
			ifModifiedSince: lastModified,
			status:          http.StatusOK,
			expectStatus:    http.StatusOK,
			expectBody:      "thread body",
		},
		{
			name:            "Malformed If-Modified-Since",
			lastModified:    lastModified,
			ifModifiedSince: "not a date",
			status:          http.StatusOK,
			expectStatus:    http.StatusOK,
			expectBody:      "thread body",
		},
		{
			name:            "Malformed Last-Modified",
			lastModified:    "sometime in 2015",
			ifModifiedSince: lastModified,
			status:          http.StatusOK,
			expectStatus:    http.StatusOK,
			expectBody:      "thread body",
		},
		{
			name:            "Both malformed",
			lastModified:    "???",
			ifModifiedSince: "!!!",
			status:          http.StatusOK,
			expectStatus:    http.StatusOK,
			expectBody:      "thread body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{"Content-Type": "text/plain"}
			if tt.lastModified != "" {
				headers["Last-Modified"] = tt.lastModified
			}
			h := Conditional()(fixedHandler(tt.status, headers, "thread body"))

			req := httptest.NewRequest(http.MethodGet, "/content/a.dat", http.NoBody)
			if tt.ifModifiedSince != "" {
				req.Header.Set("If-Modified-Since", tt.ifModifiedSince)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, tt.expectStatus, w.Code)
			assert.Equal(t, tt.expectBody, w.Body.String())
			assert.Equal(t, "text/plain", w.Header().Get("Content-Type"), "captured headers are forwarded")
			if tt.lastModified != "" {
				assert.Equal(t, tt.lastModified, w.Header().Get("Last-Modified"))
			}
		})
	}
}

func TestConditionalNotModifiedKeepsHeaders(t *testing.T) {
	headers := map[string]string{
		"Last-Modified": "Wed, 21 Oct 2015 07:28:00 GMT",
		"Cache-Control": "max-age=60",
		"Content-Type":  "text/plain",
	}
	h := Conditional()(fixedHandler(http.StatusOK, headers, "thread body"))

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Set("If-Modified-Since", "Wed, 21 Oct 2015 07:28:00 GMT")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotModified, w.Code)
	assert.Equal(t, "max-age=60", w.Header().Get("Cache-Control"))
	assert.Zero(t, w.Body.Len())
}

func TestNotModified(t *testing.T) {
	base := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, notModified(base, base))
	assert.True(t, notModified(base.Add(time.Second), base))
	assert.False(t, notModified(base.Add(-time.Second), base))
}

func TestConditionalRecordsDecisions(t *testing.T) {
	headers := map[string]string{"Last-Modified": "Wed, 21 Oct 2015 07:28:00 GMT"}
	h := Conditional()(fixedHandler(http.StatusOK, headers, "x"))
	before := decisions(metrics.MiddlewareConditional, metrics.OutcomeNotModified)

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Set("If-Modified-Since", "Wed, 21 Oct 2015 07:28:00 GMT")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, before+1, decisions(metrics.MiddlewareConditional, metrics.OutcomeNotModified))
}
