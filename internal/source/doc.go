// Package source resolves content names to byte payloads for the content
// handler.
//
// Two backends implement Source:
//   - Local reads files below a root directory, retrying NFS stale file
//     handles through the filesystem package
//   - Minio reads objects from an S3 compatible bucket
//
// Both report read counts and latency through the metrics package.
package source
