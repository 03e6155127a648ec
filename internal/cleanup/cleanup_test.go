package cleanup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"

	"webpconv/internal/services"
	"webpconv/internal/testsupport"
)

func seed(t *testing.T) (string, []string) {
	t.Helper()
	root := t.TempDir()
	webps := []string{
		filepath.Join(root, "a.jpg.webp"),
		filepath.Join(root, "sub", "b.png.webp"),
	}
	for _, p := range webps {
		testsupport.WriteFile(t, p, 5)
	}
	testsupport.WriteFile(t, filepath.Join(root, "a.jpg"), 10)
	testsupport.WriteFile(t, filepath.Join(root, "sub", "UPPER.WEBP"), 5)
	sort.Strings(webps)
	return root, webps
}

func TestFindMatchesOutputExtension(t *testing.T) {
	root, webps := seed(t)
	found, err := Find(root, "webp", false, nil)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	sort.Strings(found)
	if len(found) != len(webps) || found[0] != webps[0] || found[1] != webps[1] {
		t.Fatalf("found %v, want %v", found, webps)
	}

	loose, err := Find(root, ".webp", true, nil)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(loose) != 3 {
		t.Fatalf("case-insensitive find returned %v", loose)
	}
}

func TestFindMissingRoot(t *testing.T) {
	if _, err := Find(filepath.Join(t.TempDir(), "gone"), "webp", false, nil); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRemoveDryRunKeepsFiles(t *testing.T) {
	_, webps := seed(t)
	result := Remove(context.Background(), webps, true, nil)
	if !result.DryRun || len(result.Removed) != 2 || len(result.Errors) != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
	for _, p := range webps {
		if !testsupport.Exists(t, p) {
			t.Fatalf("dry run deleted %s", p)
		}
	}
}

func TestRemoveDeletesFiles(t *testing.T) {
	root, webps := seed(t)
	paths := append(webps, filepath.Join(root, "already-gone.webp"))
	result := Remove(context.Background(), paths, false, nil)
	if len(result.Removed) != 3 || len(result.Errors) != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
	for _, p := range webps {
		if testsupport.Exists(t, p) {
			t.Fatalf("%s not deleted", p)
		}
	}
	if !testsupport.Exists(t, filepath.Join(root, "a.jpg")) {
		t.Fatal("source image deleted")
	}
}

func TestRemoveReportsErrors(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}
	root, webps := seed(t)
	sub := filepath.Join(root, "sub")
	if err := os.Chmod(sub, 0o555); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(sub, 0o755) })

	result := Remove(context.Background(), webps, false, nil)
	if len(result.Removed) != 1 || len(result.Errors) != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.Errors[0].Path != filepath.Join(sub, "b.png.webp") {
		t.Fatalf("unexpected error path %s", result.Errors[0].Path)
	}
}

func TestRemoveStopsWhenCancelled(t *testing.T) {
	_, webps := seed(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result := Remove(ctx, webps, false, nil)
	if len(result.Removed) != 0 {
		t.Fatalf("cancelled cleanup removed %v", result.Removed)
	}
}
