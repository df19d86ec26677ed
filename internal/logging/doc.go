// Package logging assembles structured slog loggers and formatting helpers used
// across the importer.
//
// It owns the console/JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so per-file code automatically tags log
// lines with the run ID, step, recording, and session key. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
package logging
