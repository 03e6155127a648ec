// Package preflight provides readiness checks for the cwebp encoder and the
// directories webpconv reads and writes.
//
// These checks run in two contexts:
//   - The convert command calls CheckEncoder before discovery; a missing
//     encoder aborts the batch with exit status 127.
//   - The check command renders RunAll results as status lines.
package preflight
