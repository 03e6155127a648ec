package conversion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"webpconv/internal/discovery"
	"webpconv/internal/encoder"
	"webpconv/internal/logging"
	"webpconv/internal/services"
)

// Encoder is the subset of encoder.Encoder a job needs.
type Encoder interface {
	Encode(ctx context.Context, src, dst string, params encoder.Params) (encoder.Result, error)
}

// Job converts one discovered file.
type Job struct {
	Entry           discovery.FileEntry
	OutputExtension string
	Params          encoder.Params
	Encoder         Encoder
	Logger          *slog.Logger
}

// Run walks the file through staleness check, encode and validation and
// returns exactly one terminal Outcome. Errors never escape; they become
// Failed outcomes. Encoder failures are not retried.
func (j Job) Run(ctx context.Context) Outcome {
	ctx = services.WithSource(ctx, j.Entry.Path)
	logger := logging.WithContext(ctx, logging.NewComponentLogger(j.Logger, "conversion"))

	out := Outcome{Source: j.Entry.Path, Output: OutputPath(j.Entry.Path, j.OutputExtension)}

	stale, err := IsStale(j.Entry, out.Output)
	if err != nil {
		return j.fail(logger, out, err)
	}
	if !stale {
		out.Kind = Skipped
		if size, err := j.Entry.Size(); err == nil {
			out.SourceSize = size
		}
		return out
	}

	if err := ctx.Err(); err != nil {
		return j.fail(logger, out, err)
	}

	result, err := j.Encoder.Encode(ctx, out.Source, out.Output, j.Params)
	out.Elapsed = result.Elapsed
	if err != nil {
		return j.fail(logger, out, err)
	}
	out.SourceSize = result.SourceSize
	out.OutputSize = result.OutputSize

	decision := Validate(result.SourceSize, result.OutputSize)
	switch decision {
	case Keep:
		out.Kind = Converted
		return out
	case DiscardEmpty:
		out.Kind = DiscardedEmpty
	default:
		out.Kind = DiscardedLarger
	}

	if err := os.Remove(out.Output); err != nil && !errors.Is(err, os.ErrNotExist) {
		return j.fail(logger, out, fmt.Errorf("remove discarded output (%s): %w", decision, err))
	}
	return out
}

func (j Job) fail(logger *slog.Logger, out Outcome, err error) Outcome {
	out.Kind = Failed
	out.Err = err
	if errors.Is(err, context.Canceled) {
		logger.Debug("conversion cancelled", logging.String(logging.FieldOutput, out.Output))
		return out
	}
	logging.ErrorWithContext(logger, "conversion failed", "conversion_failed",
		logging.String(logging.FieldOutput, out.Output),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "run with --verbose to see the encoder command"),
	)
	return out
}
