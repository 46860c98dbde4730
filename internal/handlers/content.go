package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"mch/internal/logging"
	"mch/internal/source"
)

// contentReadTimeout bounds a single read from the content backend.
const contentReadTimeout = 30 * time.Second

// GetContent writes the object named by the {path} route variable. The
// response carries Last-Modified and the full body; conditional, range and
// compression handling is left to the middleware chain.
func (h *Handlers) GetContent(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["path"]
	if name == "" {
		http.Error(w, "Path is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), contentReadTimeout)
	defer cancel()

	obj, err := h.source.Open(ctx, name)
	switch {
	case err == nil:
	case errors.Is(err, source.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
		return
	case errors.Is(err, source.ErrInvalidName):
		logging.Debug("Rejected content path %q", name)
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	default:
		logging.Error("Failed to read content %q: %v", name, err)
		http.Error(w, "Failed to read content", http.StatusInternalServerError)
		return
	}

	header := w.Header()
	header.Set("Content-Type", obj.ContentType)
	header.Set("Content-Length", strconv.Itoa(len(obj.Data)))
	if !obj.ModTime.IsZero() {
		header.Set("Last-Modified", obj.ModTime.UTC().Format(http.TimeFormat))
	}

	// HEAD writes the body as well; net/http discards it on the wire.
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(obj.Data); err != nil {
		logging.Debug("Failed to write content %q: %v", name, err)
	}
}
