package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"webpconv/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// File logging is off so tests do not leave log files behind unless they ask.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "state", "logs")
	cfgVal.History.Path = filepath.Join(base, "state", "history.db")
	cfgVal.Logging.File = false

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// StubMode selects what the stub encoder writes.
type StubMode int

const (
	// StubHalf writes the first half of the source bytes.
	StubHalf StubMode = iota
	// StubBigger writes the source twice.
	StubBigger
	// StubEmpty creates a zero-length output.
	StubEmpty
	// StubFail exits non-zero without writing anything.
	StubFail
)

// StubScript returns a POSIX shell script that mimics the cwebp argument
// contract: the value after -o is the output, the remaining positional
// argument is the source. -version prints a version string.
func StubScript(mode StubMode) string {
	var write string
	switch mode {
	case StubBigger:
		write = `cat "$src" "$src" > "$out"`
	case StubEmpty:
		write = `: > "$out"`
	case StubFail:
		write = `echo "stub encoder failure" >&2; exit 1`
	default:
		write = `size=$(wc -c < "$src"); head -c $((size / 2)) "$src" > "$out"`
	}
	return `#!/bin/sh
out=""
src=""
while [ $# -gt 0 ]; do
  case "$1" in
    -version) echo "1.4.0"; exit 0 ;;
    -o) out="$2"; shift 2 ;;
    -q|-m|-z) shift 2 ;;
    -*) shift ;;
    *) src="$1"; shift ;;
  esac
done
if [ -z "$out" ] || [ -z "$src" ]; then
  echo "usage: cwebp [options] input -o output" >&2
  exit 2
fi
` + write + "\n"
}

// WriteStub writes an executable stub script into dir and returns its path.
func WriteStub(t testing.TB, dir, name string, mode StubMode) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	target := filepath.Join(dir, name)
	if err := os.WriteFile(target, []byte(StubScript(mode)), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return target
}

// WithStubbedEncoder writes a stub cwebp into the test's bin directory,
// points the config at it and prepends the directory to PATH.
func WithStubbedEncoder(mode StubMode) ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		b.cfg.Encoder.Binary = WriteStub(b.t, binDir, "cwebp", mode)
		b.t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}

// WithWorkers overrides the worker pool size.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Batch.Workers = n
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
