package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
)

func TestTeeHandlerCollapsesNilHandlers(t *testing.T) {
	if _, ok := TeeHandler(nil, nil).(NoopHandler); !ok {
		t.Fatal("expected NoopHandler when every handler is nil")
	}

	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)
	if h := TeeHandler(nil, inner, nil); h != inner {
		t.Fatal("expected single non-nil handler to be returned unwrapped")
	}
}

func TestTeeHandlerRoutesByLevel(t *testing.T) {
	var console, file bytes.Buffer
	h := TeeHandler(
		slog.NewJSONHandler(&console, &slog.HandlerOptions{Level: slog.LevelWarn}),
		slog.NewJSONHandler(&file, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)
	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected debug enabled when any handler accepts it")
	}

	logger := slog.New(h)
	logger.Debug("skipped image", slog.String(FieldSource, "/photos/a.jpg"))

	if console.Len() != 0 {
		t.Fatalf("expected warn-level handler to stay silent, got %q", console.String())
	}
	if !bytes.Contains(file.Bytes(), []byte("/photos/a.jpg")) {
		t.Fatalf("expected debug record in file handler, got %q", file.String())
	}
}

func TestTeeHandlerPropagatesAttrsAndGroups(t *testing.T) {
	var a, b bytes.Buffer
	h := TeeHandler(slog.NewJSONHandler(&a, nil), slog.NewJSONHandler(&b, nil))
	logger := slog.New(h).With(slog.String(FieldBatchID, "b-1")).WithGroup("stats")
	logger.Info("batch finished", slog.Int("converted", 3))

	for name, buf := range map[string]*bytes.Buffer{"first": &a, "second": &b} {
		out := buf.Bytes()
		if !bytes.Contains(out, []byte(`"batch_id":"b-1"`)) {
			t.Errorf("%s handler missing batch_id: %s", name, out)
		}
		if !bytes.Contains(out, []byte(`"stats":{"converted":3}`)) {
			t.Errorf("%s handler missing grouped attr: %s", name, out)
		}
	}
}
