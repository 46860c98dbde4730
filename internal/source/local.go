package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"mch/internal/filesystem"
	"mch/internal/logging"
)

// Local serves files below a root directory.
type Local struct {
	root  string
	retry filesystem.RetryConfig
}

// NewLocal creates a Local source rooted at dir. The directory must exist.
func NewLocal(dir string, retry filesystem.RetryConfig) (*Local, error) {
	absRoot, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve content root %s: %w", dir, err)
	}

	info, err := filesystem.StatWithRetry(absRoot, retry)
	if err != nil {
		return nil, fmt.Errorf("stat content root %s: %w", absRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content root %s is not a directory", absRoot)
	}

	return &Local{root: absRoot, retry: retry}, nil
}

// Root returns the absolute content directory.
func (l *Local) Root() string {
	return l.root
}

// Open reads the named file. Directories are reported as not found.
func (l *Local) Open(ctx context.Context, name string) (obj *Object, err error) {
	start := time.Now()
	defer func() { observeRead(BackendLocal, start, err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cleaned, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	fullPath := filepath.Join(l.root, filepath.FromSlash(cleaned))

	info, err := filesystem.StatWithRetry(fullPath, l.retry)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("stat %s: %w", cleaned, err)
	}
	if info.IsDir() {
		return nil, ErrNotFound
	}

	data, err := filesystem.ReadFileWithRetry(fullPath, l.retry)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read %s: %w", cleaned, err)
	}

	logging.Debug("Read %s from %s (%d bytes)", cleaned, l.root, len(data))

	return &Object{
		Name:        cleaned,
		ContentType: contentTypeFor(cleaned),
		ModTime:     info.ModTime(),
		Data:        data,
	}, nil
}
