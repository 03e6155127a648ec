package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeEncoder()
	c.normalizeBatch()
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir()
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.StateDir, defaultLogDirName)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeEncoder() {
	c.Encoder.Binary = strings.TrimSpace(c.Encoder.Binary)
	if value, ok := os.LookupEnv("WEBPCONV_ENCODER"); ok && strings.TrimSpace(value) != "" {
		c.Encoder.Binary = strings.TrimSpace(value)
	}
	if c.Encoder.Binary == "" {
		c.Encoder.Binary = defaultEncoderBinary
	}
	c.Encoder.OutputExtension = NormalizeExtension(c.Encoder.OutputExtension)
	if c.Encoder.OutputExtension == "" {
		c.Encoder.OutputExtension = defaultOutputExtension
	}
	if c.Encoder.TimeoutSeconds < 0 {
		c.Encoder.TimeoutSeconds = 0
	}
}

func (c *Config) normalizeBatch() {
	exts := make([]string, 0, len(c.Batch.Extensions))
	seen := make(map[string]struct{}, len(c.Batch.Extensions))
	for _, ext := range c.Batch.Extensions {
		normalized := NormalizeExtension(ext)
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		exts = append(exts, normalized)
	}
	if len(exts) == 0 {
		exts = DefaultExtensions()
	}
	c.Batch.Extensions = exts
	if c.Batch.Workers <= 0 {
		c.Batch.Workers = defaultWorkers
	}
}

func (c *Config) normalizeHistory() error {
	var err error
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = filepath.Join(c.Paths.StateDir, defaultHistoryFile)
	}
	if c.History.Path, err = expandPath(c.History.Path); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// NormalizeExtension trims whitespace and a leading dot. Case is preserved
// because extension matching is case-sensitive unless configured otherwise.
func NormalizeExtension(ext string) string {
	return strings.TrimPrefix(strings.TrimSpace(ext), ".")
}
