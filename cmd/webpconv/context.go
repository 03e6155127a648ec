package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"webpconv/internal/config"
	"webpconv/internal/logging"
)

type commandContext struct {
	configFlag *string
	verbose    *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	closers []io.Closer
}

func newCommandContext(configFlag *string, verbose *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		verbose:    verbose,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) isVerbose() bool {
	return c.verbose != nil && *c.verbose
}

// logger builds the command logger on the command's stderr so stdout stays
// reserved for reports and JSON.
func (c *commandContext) logger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, error) {
	var w io.Writer = cmd.ErrOrStderr()
	logger, closer, err := logging.NewFromConfig(cfg, w, c.isVerbose())
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, closer)
	return logger, nil
}

// close releases log files opened by logger. It runs once Execute returns,
// whether or not the command failed.
func (c *commandContext) close() {
	for _, closer := range c.closers {
		_ = closer.Close()
	}
	c.closers = nil
}

// resolveRoot expands the directory argument to an absolute path with
// symlinks resolved, so a linked and a real path share one lock and one
// history root. A missing path is returned unresolved for discovery to
// report.
func resolveRoot(arg string) (string, error) {
	expanded, err := config.ExpandPath(strings.TrimSpace(arg))
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, nil
		}
		return "", fmt.Errorf("resolve %s: %w", expanded, err)
	}
	return resolved, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
