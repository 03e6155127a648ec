package deps

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"

	"webpconv/internal/testsupport"
)

func TestCheckBinaries(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs require a POSIX shell")
	}
	present := testsupport.WriteStub(t, t.TempDir(), "cwebp", testsupport.StubHalf)
	reqs := []Requirement{
		EncoderRequirement(present),
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	if !results[0].Available || results[0].Path != present {
		t.Fatalf("expected encoder stub to resolve, got %#v", results[0])
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}

	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary to be unavailable with detail, got %#v", results[1])
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}

	if results[2].Available || results[2].Detail != "command not configured" {
		t.Fatalf("expected blank command to be reported, got %#v", results[2])
	}
}

func TestVersion(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs require a POSIX shell")
	}
	stub := testsupport.WriteStub(t, t.TempDir(), "cwebp", testsupport.StubHalf)

	version, err := Version(context.Background(), stub)
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	if version != "1.4.0" {
		t.Fatalf("version = %q, want 1.4.0", version)
	}

	if _, err := Version(context.Background(), filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing binary")
	}
}
