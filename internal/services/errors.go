package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExternalTool   = errors.New("external tool error")
	ErrEncoderMissing = errors.New("encoder missing")
	ErrValidation     = errors.New("validation error")
	ErrConfiguration  = errors.New("configuration error")
	ErrNotFound       = errors.New("not found")
	ErrBatchLocked    = errors.New("batch already running")
)

// Exit codes surfaced by the CLI for batch-fatal conditions.
const (
	ExitOK             = 0
	ExitFailure        = 1
	ExitEncoderMissing = 127
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ExitCode maps a batch error to the process exit status. Only a missing
// encoder gets a dedicated code; every other failure exits with 1.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrEncoderMissing):
		return ExitEncoderMissing
	default:
		return ExitFailure
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
