// Package conversion holds the per-file workflow: staleness check, encode,
// output validation, and the statistics that outcomes are merged into.
//
// A Job produces exactly one Outcome. Discarded outputs are deleted before
// the Outcome is returned, and Skipped outcomes never touch the existing
// output.
package conversion
