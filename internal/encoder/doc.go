// Package encoder wraps the external cwebp binary.
//
// Arguments are passed as a list to exec.CommandContext, never through a
// shell. CommandLine exists only to show the equivalent shell command in
// debug logs.
package encoder
