package preflight

import (
	"context"

	"webpconv/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the checks shown by the check command: the encoder binary,
// the state directory, and the conversion root when one is given.
func RunAll(ctx context.Context, cfg *config.Config, root string) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{CheckEncoderStatus(ctx, cfg.Encoder.Binary)}
	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))
	if root != "" {
		results = append(results, CheckDirectoryAccess("Image directory", root))
	}
	return results
}
