package services

import "context"

type contextKey string

const (
	batchIDKey contextKey = "batch_id"
	sourceKey  contextKey = "source"
)

// WithBatchID annotates context with the batch identifier.
func WithBatchID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, batchIDKey, id)
}

// BatchIDFromContext extracts the batch identifier if present.
func BatchIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(batchIDKey).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// WithSource annotates context with the source file currently being converted.
func WithSource(ctx context.Context, path string) context.Context {
	if path == "" {
		return ctx
	}
	return context.WithValue(ctx, sourceKey, path)
}

// SourceFromContext extracts the source path if present.
func SourceFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(sourceKey).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
