package source

import (
	"context"
	"errors"
	"mime"
	"path"
	"strings"
	"time"

	"mch/internal/metrics"
)

// Backend names used in configuration and as the "backend" metric label.
const (
	BackendLocal = "local"
	BackendMinio = "minio"
)

var (
	// ErrNotFound is returned when the named content does not exist.
	ErrNotFound = errors.New("content not found")
	// ErrInvalidName is returned for names that are empty or escape the root.
	ErrInvalidName = errors.New("invalid content name")
)

// Object is a fully read piece of content.
type Object struct {
	Name        string
	ContentType string
	ModTime     time.Time
	Data        []byte
}

// Source opens content by slash-separated name.
type Source interface {
	Open(ctx context.Context, name string) (*Object, error)
}

// cleanName normalizes a request path into a relative object name.
// Names that are empty or climb above the root are rejected.
func cleanName(name string) (string, error) {
	if name == "" || strings.ContainsRune(name, 0) {
		return "", ErrInvalidName
	}
	for _, segment := range strings.Split(name, "/") {
		if segment == ".." {
			return "", ErrInvalidName
		}
	}

	cleaned := strings.TrimPrefix(path.Clean("/"+name), "/")
	if cleaned == "" {
		return "", ErrInvalidName
	}
	return cleaned, nil
}

// contentTypeFor guesses a MIME type from the name's extension.
// Thread files (.dat) are served as UTF-8 text.
func contentTypeFor(name string) string {
	ext := strings.ToLower(path.Ext(name))
	if ext == ".dat" {
		return "text/plain; charset=utf-8"
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// readStatus maps a read error to the "status" metric label.
func readStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidName):
		return "not_found"
	default:
		return "error"
	}
}

func observeRead(backend string, start time.Time, err error) {
	metrics.SourceReadsTotal.WithLabelValues(backend, readStatus(err)).Inc()
	metrics.SourceReadDuration.WithLabelValues(backend).Observe(time.Since(start).Seconds())
}
