package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	decisions := map[string][]string{
		MiddlewareCompression: {OutcomeCompressed, OutcomePassthrough, OutcomeError},
		MiddlewareConditional: {OutcomeNotModified, OutcomePassthrough},
		MiddlewareRange:       {OutcomePartial, OutcomeUnsatisfiable, OutcomePassthrough},
	}
	for mw, outcomes := range decisions {
		for _, outcome := range outcomes {
			MiddlewareDecisionsTotal.WithLabelValues(mw, outcome)
		}
	}

	CompressionBytesTotal.WithLabelValues("in")
	CompressionBytesTotal.WithLabelValues("out")

	for _, backend := range []string{"local", "minio"} {
		for _, status := range []string{"success", "not_found", "error"} {
			SourceReadsTotal.WithLabelValues(backend, status)
		}
		SourceReadDuration.WithLabelValues(backend)
	}

	for _, op := range []string{"stat", "read"} {
		for _, vol := range []string{"content", "unknown"} {
			FilesystemRetryAttempts.WithLabelValues(op, vol)
			FilesystemRetrySuccess.WithLabelValues(op, vol)
			FilesystemRetryFailures.WithLabelValues(op, vol)
			FilesystemStaleErrors.WithLabelValues(op, vol)
			FilesystemRetryDuration.WithLabelValues(op, vol)
		}
	}
}
