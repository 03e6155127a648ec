// Package logging assembles structured slog loggers and formatting helpers
// used across webpconv.
//
// It owns the console and JSON handlers, tees records into the optional JSON
// log file, and exposes context-aware helpers so batch code tags lines with
// the batch ID and the source image automatically. NewNop gives tests and
// optional collaborators a logger that cannot fail.
package logging
