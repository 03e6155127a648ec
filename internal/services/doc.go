// Package services defines shared error markers and context helpers consumed
// by the conversion pipeline and the CLI.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper, so batch-fatal conditions
//     (missing directory, missing encoder) stay classifiable with errors.Is
//     after being annotated with stage context.
//   - ExitCode, the single mapping from batch errors to process exit status.
//   - Context helpers that stamp batch IDs and source paths for logging.
package services
