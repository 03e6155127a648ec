package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"webpconv/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	// Writer receives console or JSON output. Defaults to stderr so stdout
	// stays reserved for reports.
	Writer io.Writer
	// File, when set, additionally receives JSON records at debug level
	// regardless of Format. The caller owns and closes it.
	File        io.Writer
	Development bool
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	level := parseLevel(opts.Level)
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)

	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}

	addSource := opts.Development || level <= slog.LevelDebug

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}

	var primary slog.Handler
	switch format {
	case "json":
		primary = newJSONHandler(writer, levelVar, addSource)
	case "console":
		primary = newPrettyHandler(writer, levelVar, addSource)
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	if opts.File == nil {
		return slog.New(primary), nil
	}

	fileLevel := new(slog.LevelVar)
	fileLevel.Set(slog.LevelDebug)
	return slog.New(TeeHandler(primary, newJSONHandler(opts.File, fileLevel, addSource))), nil
}

// NewFromConfig creates a logger using application config defaults. verbose
// forces debug level for the current invocation. The returned closer releases
// the log file and must be closed once the logger is no longer used.
func NewFromConfig(cfg *config.Config, w io.Writer, verbose bool) (*slog.Logger, io.Closer, error) {
	if cfg == nil {
		logger, err := New(Options{Level: "info", Format: "console", Writer: w})
		return logger, nopCloser{}, err
	}

	opts := Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Writer: w,
	}
	if verbose {
		opts.Level = "debug"
	}
	if !cfg.Logging.File || strings.TrimSpace(cfg.Paths.LogDir) == "" {
		logger, err := New(opts)
		return logger, nopCloser{}, err
	}

	file, err := openLogFile(cfg.LogFilePath())
	if err != nil {
		return nil, nil, err
	}
	opts.File = file
	logger, err := New(opts)
	if err != nil {
		_ = file.Close()
		return nil, nil, err
	}
	return logger, file, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, nil
}

func newJSONHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	opts := slog.HandlerOptions{
		Level:     lvl,
		AddSource: addSource,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.TimeKey:
				attr.Key = "ts"
				if attr.Value.Kind() == slog.KindTime {
					attr.Value = slog.StringValue(attr.Value.Time().UTC().Format(time.RFC3339))
				}
			case slog.LevelKey:
				attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
			case slog.SourceKey:
				if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
					attr.Value = slog.StringValue(fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
				}
			}
			return attr
		},
	}
	return slog.NewJSONHandler(w, &opts)
}
