package filesystem

// Observer records filesystem retry metrics. Implementations are provided
// by the metrics package to break the import cycle between filesystem and metrics.
type Observer interface {
	// retryOp is the retried operation: "stat" or "read".
	// volume is the resolved mount label (e.g., "content").
	ObserveRetryAttempt(retryOp, volume string)
	ObserveRetrySuccess(retryOp, volume string)
	ObserveRetryFailure(retryOp, volume string)
	ObserveRetryDuration(retryOp, volume string, durationSeconds float64)
	ObserveStaleError(retryOp, volume string)
}

// defaultObserver is the package-level observer set at startup.
// If nil, metric recording is silently skipped (safe for tests).
var defaultObserver Observer

// SetObserver sets the package-level metrics observer.
// Call this once at startup after creating the observer implementation.
func SetObserver(o Observer) {
	defaultObserver = o
}

type noopObserver struct{}

func (noopObserver) ObserveRetryAttempt(string, string)           {}
func (noopObserver) ObserveRetrySuccess(string, string)           {}
func (noopObserver) ObserveRetryFailure(string, string)           {}
func (noopObserver) ObserveRetryDuration(string, string, float64) {}
func (noopObserver) ObserveStaleError(string, string)             {}

// observe is a nil-safe helper for the package-level observer.
func observe() Observer {
	if defaultObserver == nil {
		return noopObserver{}
	}
	return defaultObserver
}
