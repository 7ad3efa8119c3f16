// Package logging builds the slog loggers used across mediavault.
//
// It supports console and JSON output formats, fans output out to stdout and
// the configured log file, and supplies helpers for the standardized
// structured fields (component, request_id, fingerprint, phase) that the
// resolution pipeline attaches to every log line.
package logging
