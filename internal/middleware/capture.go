package middleware

import (
	"bytes"
	"net/http"
	"sync"

	"mch/internal/logging"
)

// bufferPool reduces allocations by reusing capture buffers
var bufferPool = sync.Pool{
	New: func() interface{} {
		return new(bytes.Buffer)
	},
}

// capturedResponse is an http.ResponseWriter that records everything the
// wrapped handler does instead of sending it. One value is created per
// request; the body buffer comes from bufferPool and must go back exactly
// once through release.
type capturedResponse struct {
	header      http.Header
	status      int
	wroteHeader bool
	body        *bytes.Buffer
}

var _ http.ResponseWriter = &capturedResponse{}

// capture runs next against a fresh capturedResponse. Headers already set on
// w by outer middleware are visible to next.
func capture(next http.Handler, w http.ResponseWriter, r *http.Request) *capturedResponse {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()

	c := &capturedResponse{
		header: w.Header().Clone(),
		status: http.StatusOK,
		body:   buf,
	}
	next.ServeHTTP(c, r)
	return c
}

// Header returns the captured header map
func (c *capturedResponse) Header() http.Header {
	return c.header
}

// WriteHeader records the status code; only the first call counts
func (c *capturedResponse) WriteHeader(statusCode int) {
	if c.wroteHeader {
		return
	}
	c.status = statusCode
	c.wroteHeader = true
}

// Write buffers the body
func (c *capturedResponse) Write(data []byte) (int, error) {
	if !c.wroteHeader {
		c.WriteHeader(http.StatusOK)
	}
	return c.body.Write(data)
}

// Bytes returns the captured body. The slice is only valid until release.
func (c *capturedResponse) Bytes() []byte {
	if c.body == nil {
		return nil
	}
	return c.body.Bytes()
}

// release returns the body buffer to the pool. Safe to call more than once;
// only the first call has an effect.
func (c *capturedResponse) release() {
	if c.body == nil {
		return
	}
	buf := c.body
	c.body = nil
	bufferPool.Put(buf)
}

// forward sends the captured response unchanged and releases it.
func (c *capturedResponse) forward(w http.ResponseWriter) {
	c.respond(w, c.status, c.Bytes())
}

// respond sends the captured headers with the given status and body, then
// releases the capture. body may alias the captured buffer.
func (c *capturedResponse) respond(w http.ResponseWriter, status int, body []byte) {
	defer c.release()

	copyHeader(w.Header(), c.header)
	w.WriteHeader(status)
	if len(body) == 0 {
		return
	}
	if _, err := w.Write(body); err != nil {
		logging.Debug("Response write failed (status %d, %d bytes): %v", status, len(body), err)
	}
}

// copyHeader makes dst equal to src, dropping names src no longer carries.
func copyHeader(dst, src http.Header) {
	for name := range dst {
		if _, ok := src[name]; !ok {
			delete(dst, name)
		}
	}
	for name, values := range src {
		dst[name] = values
	}
}

// statusIsSuccess reports whether status is 2xx
func statusIsSuccess(status int) bool {
	return status >= 200 && status < 300
}

// bodyAllowedForStatus reports whether a response with status may carry a body
func bodyAllowedForStatus(status int) bool {
	switch {
	case status >= 100 && status <= 199:
		return false
	case status == http.StatusNoContent:
		return false
	case status == http.StatusNotModified:
		return false
	}
	return true
}
