package filesystem

import (
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRetryConfig(t *testing.T) {
	config := DefaultRetryConfig()

	if config.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", config.MaxRetries)
	}
	if config.InitialBackoff != 50*time.Millisecond {
		t.Errorf("InitialBackoff = %v, want 50ms", config.InitialBackoff)
	}
	if config.MaxBackoff != 500*time.Millisecond {
		t.Errorf("MaxBackoff = %v, want 500ms", config.MaxBackoff)
	}
	if config.VolumeResolver != nil {
		t.Error("VolumeResolver should be nil by default")
	}
}

func TestIsNFSStaleError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil error", err: nil, want: false},
		{name: "ESTALE error", err: syscall.ESTALE, want: true},
		{name: "wrapped ESTALE", err: &os.PathError{Op: "open", Path: "/x", Err: syscall.ESTALE}, want: true},
		{name: "ENOENT error", err: syscall.ENOENT, want: false},
		{name: "generic error", err: os.ErrNotExist, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := isNFSStaleError(tt.err)
			if got != tt.want {
				t.Errorf("isNFSStaleError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVolumeResolver_Resolve(t *testing.T) {
	vr := NewVolumeResolver(map[string]string{
		"content": "/srv/content",
		"archive": "/srv/content/archive",
	})

	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "content root", path: "/srv/content", want: "content"},
		{name: "content file", path: "/srv/content/board/1234.dat", want: "content"},
		{name: "longest prefix wins", path: "/srv/content/archive/1.dat", want: "archive"},
		{name: "sibling with shared prefix", path: "/srv/contentious/file", want: "unknown"},
		{name: "unknown path", path: "/etc/hosts", want: "unknown"},
		{name: "root path", path: "/", want: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := vr.Resolve(tt.path)
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestVolumeResolver_Resolve_NilResolver(t *testing.T) {
	var vr *VolumeResolver
	assert.Equal(t, "unknown", vr.Resolve("/srv/content/a.dat"))
}

type recordingObserver struct {
	attempts, successes, failures, stale, durations int
}

func (o *recordingObserver) ObserveRetryAttempt(string, string)           { o.attempts++ }
func (o *recordingObserver) ObserveRetrySuccess(string, string)           { o.successes++ }
func (o *recordingObserver) ObserveRetryFailure(string, string)           { o.failures++ }
func (o *recordingObserver) ObserveRetryDuration(string, string, float64) { o.durations++ }
func (o *recordingObserver) ObserveStaleError(string, string)             { o.stale++ }

func installObserver(t *testing.T) *recordingObserver {
	t.Helper()
	o := &recordingObserver{}
	SetObserver(o)
	t.Cleanup(func() { SetObserver(nil) })
	return o
}

func fastConfig(retries int) RetryConfig {
	return RetryConfig{
		MaxRetries:     retries,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
	}
}

func TestWithRetry_SucceedsAfterStale(t *testing.T) {
	obs := installObserver(t)
	calls := 0

	err := withRetry("read", "/srv/content/a.dat", fastConfig(3), func() error {
		calls++
		if calls < 3 {
			return &os.PathError{Op: "open", Path: "/srv/content/a.dat", Err: syscall.ESTALE}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, obs.stale)
	assert.Equal(t, 2, obs.attempts)
	assert.Equal(t, 1, obs.successes)
	assert.Equal(t, 0, obs.failures)
	assert.Equal(t, 1, obs.durations)
}

func TestWithRetry_GivesUpAfterMaxRetries(t *testing.T) {
	obs := installObserver(t)
	calls := 0

	err := withRetry("stat", "/srv/content/a.dat", fastConfig(2), func() error {
		calls++
		return syscall.ESTALE
	})

	require.Error(t, err)
	assert.True(t, isNFSStaleError(err))
	assert.Equal(t, 3, calls, "initial attempt plus two retries")
	assert.Equal(t, 1, obs.failures)
	assert.Equal(t, 0, obs.successes)
}

func TestWithRetry_NonStaleErrorIsNotRetried(t *testing.T) {
	obs := installObserver(t)
	calls := 0

	err := withRetry("read", "/srv/content/a.dat", fastConfig(3), func() error {
		calls++
		return os.ErrNotExist
	})

	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, obs.attempts)
	assert.Equal(t, 0, obs.failures)
}

func TestWithRetry_NilObserverIsSafe(t *testing.T) {
	SetObserver(nil)
	assert.NotPanics(t, func() {
		_ = withRetry("read", "/x", fastConfig(1), func() error { return syscall.ESTALE })
	})
}

func TestReadFileWithRetry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "thread.dat")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0o644))

	data, err := ReadFileWithRetry(path, DefaultRetryConfig())
	require.NoError(t, err)
	assert.Equal(t, []byte("0123456789"), data)

	_, err = ReadFileWithRetry(filepath.Join(dir, "missing.dat"), DefaultRetryConfig())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestStatWithRetry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "thread.dat")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0o644))

	info, err := StatWithRetry(path, DefaultRetryConfig())
	require.NoError(t, err)
	assert.Equal(t, int64(3), info.Size())

	_, err = StatWithRetry(filepath.Join(dir, "missing.dat"), DefaultRetryConfig())
	assert.ErrorIs(t, err, os.ErrNotExist)
}
