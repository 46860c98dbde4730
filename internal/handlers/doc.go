// Package handlers provides the HTTP request handlers behind the response
// middleware chain.
//
// It includes handlers for:
//   - Content retrieval from the configured source
//   - Health, liveness and readiness probes
//   - Build and version information
package handlers
