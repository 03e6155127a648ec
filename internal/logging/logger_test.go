package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"webpconv/internal/services"
	"webpconv/internal/testsupport"
)

func TestNewConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger = NewComponentLogger(logger, "batch")
	logger.Info("converted image", String(FieldSource, "/photos/my cat.jpg"), Int64("saved", 42), String(FieldBatchID, "abc"))
	logger.Debug("hidden")

	out := buf.String()
	if strings.Count(out, "\n") != 1 {
		t.Fatalf("expected exactly one line, got %q", out)
	}
	for _, want := range []string{"INFO batch: converted image", `source="/photos/my cat.jpg"`, "saved=42"} {
		if !strings.Contains(out, want) {
			t.Errorf("console output %q missing %q", out, want)
		}
	}
	if strings.Contains(out, "batch_id") {
		t.Errorf("console output should hide batch_id: %q", out)
	}
}

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("dropped")
	logger.Warn("encoder failed", Error(errors.New("exit status 2")))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if record["level"] != "warn" || record["msg"] != "encoder failed" {
		t.Fatalf("unexpected record: %v", record)
	}
	if _, ok := record["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", record)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNewFromConfigTeesToFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Logging.File = true

	var console bytes.Buffer
	logger, closer, err := NewFromConfig(cfg, &console, true)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	defer closer.Close()
	logger.Debug("scanning", String(FieldSource, "/photos"))

	if !strings.Contains(console.String(), "scanning") {
		t.Fatalf("verbose console should include debug records, got %q", console.String())
	}
	data, err := os.ReadFile(cfg.LogFilePath())
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"scanning"`) {
		t.Fatalf("log file missing record: %s", data)
	}
	if filepath.Dir(cfg.LogFilePath()) != cfg.Paths.LogDir {
		t.Fatalf("log file %s outside log dir %s", cfg.LogFilePath(), cfg.Paths.LogDir)
	}
}

func TestLogFileKeepsDebugRecords(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Logging.File = true

	var console bytes.Buffer
	logger, closer, err := NewFromConfig(cfg, &console, false)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	defer closer.Close()
	logger.Debug("skipped image", String(FieldSource, "/photos/a.jpg"))

	if console.Len() != 0 {
		t.Fatalf("info console should drop debug records, got %q", console.String())
	}
	data, err := os.ReadFile(cfg.LogFilePath())
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "/photos/a.jpg") {
		t.Fatalf("log file missing debug record: %s", data)
	}
}

func TestNewFromConfigCloserReleasesFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	_, closer, err := NewFromConfig(cfg, io.Discard, false)
	if err != nil {
		t.Fatalf("NewFromConfig without file: %v", err)
	}
	if err := closer.Close(); err != nil {
		t.Fatalf("close without file: %v", err)
	}

	cfg.Logging.File = true
	_, closer, err = NewFromConfig(cfg, io.Discard, false)
	if err != nil {
		t.Fatalf("NewFromConfig with file: %v", err)
	}
	if err := closer.Close(); err != nil {
		t.Fatalf("close log file: %v", err)
	}
	if err := closer.Close(); err == nil {
		t.Fatal("expected second close of the log file to fail")
	}
}

func TestWithContextAddsBatchFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := services.WithSource(services.WithBatchID(context.Background(), "b-42"), "/photos/a.png")
	WithContext(ctx, logger).Info("encoding")

	out := buf.String()
	if !strings.Contains(out, `"batch_id":"b-42"`) || !strings.Contains(out, `"source":"/photos/a.png"`) {
		t.Fatalf("expected context fields, got %s", out)
	}
	if WithContext(context.Background(), logger) != logger {
		t.Fatal("expected logger unchanged without context fields")
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := New(Options{Format: "json", Writer: &buf})
	WarnWithContext(logger, "webp larger than source", "webp_bigger", String(FieldImpact, "webp removed"))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if record[FieldEventType] != "webp_bigger" || record[FieldImpact] != "webp removed" {
		t.Fatalf("unexpected fields: %v", record)
	}
	if record[FieldErrorHint] == "" || record[FieldErrorHint] == nil {
		t.Fatalf("expected default error_hint, got %v", record)
	}
}

func TestFormatBytes(t *testing.T) {
	cases := map[int64]string{0: "0 B", 1536: "1.5 KiB", -2048: "-2.0 KiB"}
	for in, want := range cases {
		if got := FormatBytes(in); got != want {
			t.Errorf("FormatBytes(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatClock(t *testing.T) {
	cases := map[time.Duration]string{
		0:                              "00:00",
		1500 * time.Millisecond:        "00:02",
		75 * time.Second:               "01:15",
		61*time.Minute + 5*time.Second: "61:05",
		-time.Second:                   "00:00",
	}
	for in, want := range cases {
		if got := FormatClock(in); got != want {
			t.Errorf("FormatClock(%s) = %q, want %q", in, got, want)
		}
	}
}
