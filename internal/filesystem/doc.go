/*
Package filesystem provides resilient filesystem reads with automatic retry logic
for NFS stale file handle errors.

# Purpose

The local content backend may sit on an NFS export. Reads racing with
server-side replacement of a file can fail with ESTALE; those are retried with
exponential backoff (github.com/cenkalti/backoff). Every other error fails
immediately.

# Usage

	info, err := filesystem.StatWithRetry("/srv/content/thread.dat", filesystem.DefaultRetryConfig())
	data, err := filesystem.ReadFileWithRetry("/srv/content/thread.dat", filesystem.DefaultRetryConfig())

# Retry Behavior

Defaults: 3 retries, 50ms initial backoff doubling up to 500ms.

Metrics are reported through the Observer installed with SetObserver, labeled
by the volume name resolved by the VolumeResolver installed with
SetDefaultVolumeResolver.
*/
package filesystem
