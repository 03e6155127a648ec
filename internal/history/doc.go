// Package history keeps a SQLite record of finished batches for the history
// command. Each row holds one batch report's totals; per-file outcomes are
// not stored.
package history
