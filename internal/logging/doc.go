// Package logging provides a simple leveled logging interface for mch.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information
//   - INFO: General operational messages
//   - WARN: Warning conditions
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the application
//
// The log level is configured via the LOG_LEVEL environment variable and
// records are written by zerolog as JSON on stdout. Set LOG_FORMAT=console
// for human readable output during development.
package logging
