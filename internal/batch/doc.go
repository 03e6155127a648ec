// Package batch drives a conversion run over a directory tree.
//
// The Orchestrator discovers candidates, hands one conversion.Job per file
// to a fixed worker pool, and merges every Outcome into the batch statistics
// from a single collector goroutine. Events are reported through an Observer
// instead of a global logger. A per-root file lock keeps two processes from
// converting the same tree at once.
package batch
