package encoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"webpconv/internal/logging"
	"webpconv/internal/services"
)

// Result carries the sizes read from disk after a successful encode and the
// wall time spent in the external process.
type Result struct {
	SourceSize int64
	OutputSize int64
	Elapsed    time.Duration
}

// Encoder runs the cwebp binary, one process per image.
type Encoder struct {
	binary  string
	timeout time.Duration
	logger  *slog.Logger
}

// Option customizes an Encoder.
type Option func(*Encoder)

// WithTimeout bounds each invocation. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(e *Encoder) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithLogger attaches a logger for the debug command line.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Encoder) {
		e.logger = logger
	}
}

// New constructs an Encoder for the given binary.
func New(binary string, opts ...Option) *Encoder {
	e := &Encoder{binary: strings.TrimSpace(binary)}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = logging.NewComponentLogger(e.logger, "encoder")
	return e
}

// Binary returns the configured encoder command.
func (e *Encoder) Binary() string {
	return e.binary
}

const stderrTail = 512

// Encode converts src into dst. A non-zero exit, a launch failure or a
// timeout returns an ErrExternalTool error and the caller must not touch
// dst. When ctx itself is cancelled the returned error wraps ctx.Err().
// Whenever the process is killed, a partially written dst is removed.
func (e *Encoder) Encode(ctx context.Context, src, dst string, params Params) (Result, error) {
	args := params.Args(src, dst)
	logging.WithContext(ctx, e.logger).Debug("encoder command",
		logging.String("command", CommandLine(runtime.GOOS, e.binary, args)),
	)

	runCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, e.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		killed := runCtx.Err() != nil
		if killed {
			// The process may have left a truncated file whose mtime would
			// make the next run skip this source.
			e.removePartial(ctx, dst)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{Elapsed: elapsed}, fmt.Errorf("encode %s: %w", src, ctxErr)
		}
		message := fmt.Sprintf("encode %s", src)
		if killed && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			message = fmt.Sprintf("encode %s: timed out after %s", src, e.timeout)
		} else if tail := tailString(stderr.String(), stderrTail); tail != "" {
			message = fmt.Sprintf("encode %s: %s", src, tail)
		}
		return Result{Elapsed: elapsed}, services.Wrap(services.ErrExternalTool, "encoder", "run cwebp", message, err)
	}

	result := Result{Elapsed: elapsed}
	srcInfo, err := os.Stat(src)
	if err != nil {
		return result, services.Wrap(services.ErrExternalTool, "encoder", "stat source", src, err)
	}
	result.SourceSize = srcInfo.Size()

	// A successful exit without an output file counts as an empty output.
	dstInfo, err := os.Stat(dst)
	switch {
	case err == nil:
		result.OutputSize = dstInfo.Size()
	case !errors.Is(err, os.ErrNotExist):
		return result, services.Wrap(services.ErrExternalTool, "encoder", "stat output", dst, err)
	}
	return result, nil
}

func tailString(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}

func (e *Encoder) removePartial(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.WarnWithContext(logging.WithContext(ctx, e.logger), "partial output not removed", "partial_output_remove_failed",
			logging.String(logging.FieldOutput, path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "delete the file manually before the next run"),
		)
	}
}
