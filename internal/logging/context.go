package logging

import (
	"context"
	"log/slog"

	"webpconv/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldBatchID identifies one convert or cleanup invocation.
	FieldBatchID = "batch_id"
	// FieldSource is the source image path.
	FieldSource = "source"
	// FieldOutput is the derived .webp path.
	FieldOutput = "output"
	// FieldOutcome is the per-file result (converted, skipped, ...).
	FieldOutcome = "outcome"
	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint is the suggested next step for the operator.
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if id, ok := services.BatchIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldBatchID, id))
	}
	if source, ok := services.SourceFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldSource, source))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
