package logging

import (
	"context"
	"log/slog"
)

// teeHandler writes each record to every sink whose own level accepts it.
// The console usually runs at info while the log file keeps debug records.
type teeHandler struct {
	sinks []slog.Handler
}

// TeeHandler combines handlers, dropping nil entries. Zero handlers yield a
// NoopHandler and a single handler is returned as is.
func TeeHandler(handlers ...slog.Handler) slog.Handler {
	sinks := make([]slog.Handler, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			sinks = append(sinks, h)
		}
	}
	switch len(sinks) {
	case 0:
		return NoopHandler{}
	case 1:
		return sinks[0]
	}
	return &teeHandler{sinks: sinks}
}

func (t *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, sink := range t.sinks {
		if sink.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t *teeHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, sink := range t.sinks {
		if !sink.Enabled(ctx, record.Level) {
			continue
		}
		// Handlers may append attrs to the record; each sink gets its own copy.
		if err := sink.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

func (t *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return t.derive(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (t *teeHandler) WithGroup(name string) slog.Handler {
	return t.derive(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (t *teeHandler) derive(fn func(slog.Handler) slog.Handler) slog.Handler {
	next := make([]slog.Handler, len(t.sinks))
	for i, sink := range t.sinks {
		next[i] = fn(sink)
	}
	return &teeHandler{sinks: next}
}
