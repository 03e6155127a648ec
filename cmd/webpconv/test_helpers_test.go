package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"webpconv/internal/config"
	"webpconv/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	root       string
}

func setupCLITestEnv(t *testing.T, mode testsupport.StubMode) *cliTestEnv {
	t.Helper()

	t.Setenv("WEBPCONV_ENCODER", "")
	for _, key := range []string{"LC_ALL", "LC_NUMERIC", "LANG"} {
		t.Setenv(key, "")
	}
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedEncoder(mode))
	base := testsupport.BaseDir(cfg)

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	root := filepath.Join(base, "images")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("mkdir images: %v", err)
	}
	root, err := filepath.EvalSymlinks(root)
	if err != nil {
		t.Fatalf("resolve images dir: %v", err)
	}
	return &cliTestEnv{cfg: cfg, configPath: configPath, root: root}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[encoder]\nbinary = %q\n\n[paths]\nstate_dir = %q\nlog_dir = %q\n\n[history]\nenabled = %t\npath = %q\n\n[logging]\nfile = false\n",
		cfg.Encoder.Binary,
		cfg.Paths.StateDir,
		cfg.Paths.LogDir,
		cfg.History.Enabled,
		cfg.History.Path,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath, stdin string) (string, string, error) {
	t.Helper()
	cmd, cmdCtx := newRootCommand()
	defer cmdCtx.close()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
