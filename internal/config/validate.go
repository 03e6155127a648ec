package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateEncoder(); err != nil {
		return err
	}
	if err := c.validateBatch(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateEncoder() error {
	if strings.TrimSpace(c.Encoder.Binary) == "" {
		return errors.New("encoder.binary must be set")
	}
	if strings.ContainsAny(c.Encoder.OutputExtension, `/\`) {
		return fmt.Errorf("encoder.output_extension %q must not contain path separators", c.Encoder.OutputExtension)
	}
	if err := ValidateLevel("encoder.quality", c.Encoder.Quality, MaxQuality); err != nil {
		return err
	}
	if err := ValidateLevel("encoder.method", c.Encoder.Method, MaxMethod); err != nil {
		return err
	}
	if err := ValidateLevel("encoder.lossless", c.Encoder.Lossless, MaxLossless); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateBatch() error {
	if c.Batch.Workers < 1 {
		return errors.New("batch.workers must be >= 1")
	}
	for _, ext := range c.Batch.Extensions {
		same := ext == c.Encoder.OutputExtension
		if c.Batch.CaseInsensitiveExtensions {
			same = strings.EqualFold(ext, c.Encoder.OutputExtension)
		}
		if same {
			return fmt.Errorf("batch.extensions must not include the output extension %q", ext)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}
}

// ValidateLevel checks an optional encoder parameter against [0, max].
// A nil value is always valid.
func ValidateLevel(name string, value *int, max int) error {
	if value == nil {
		return nil
	}
	if *value < 0 || *value > max {
		return fmt.Errorf("%s must be between 0 and %d, got %d", name, max, *value)
	}
	return nil
}
