package handlers

import (
	"sync/atomic"
	"time"

	"mch/internal/source"
)

// Handlers serves content and service endpoints.
type Handlers struct {
	source    source.Source
	backend   string
	startTime time.Time
	ready     atomic.Bool
}

// New creates Handlers reading content from src. backend is the configured
// backend name and is only reported by the health endpoint.
func New(src source.Source, backend string) *Handlers {
	return &Handlers{
		source:    src,
		backend:   backend,
		startTime: time.Now(),
	}
}

// SetReady marks the service as ready (or not) to accept traffic.
func (h *Handlers) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports whether SetReady(true) has been called.
func (h *Handlers) IsReady() bool {
	return h.ready.Load()
}
