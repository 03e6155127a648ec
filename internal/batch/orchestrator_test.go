package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"testing"

	"webpconv/internal/conversion"
	"webpconv/internal/encoder"
	"webpconv/internal/services"
	"webpconv/internal/testsupport"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs require a POSIX shell")
	}
}

func stubOrchestrator(t *testing.T, mode testsupport.StubMode, opts ...Option) *Orchestrator {
	t.Helper()
	requireShell(t)
	stub := testsupport.WriteStub(t, filepath.Join(t.TempDir(), "bin"), "cwebp", mode)
	return New(encoder.New(stub), opts...)
}

func seedImages(t *testing.T, root string, sizes map[string]int64) {
	t.Helper()
	for rel, size := range sizes {
		testsupport.WriteFile(t, filepath.Join(root, rel), size)
	}
}

func request(root string, workers int) Request {
	return Request{
		Root:            root,
		Extensions:      []string{"jpg", "jpeg", "png"},
		OutputExtension: "webp",
		Workers:         workers,
	}
}

type recorder struct {
	starts   []Start
	progress []Progress
	reports  []Report
}

func (r *recorder) BatchStarted(s Start) { r.starts = append(r.starts, s) }

func (r *recorder) FileFinished(p Progress) { r.progress = append(r.progress, p) }

func (r *recorder) BatchFinished(rep Report) { r.reports = append(r.reports, rep) }

func TestRunHalfSizeEncoder(t *testing.T) {
	root := t.TempDir()
	seedImages(t, root, map[string]int64{"a.jpg": 100, "sub/b.png": 200, "sub/deep/c.jpeg": 300, "notes.txt": 50})

	rec := &recorder{}
	orc := stubOrchestrator(t, testsupport.StubHalf, WithObserver(rec))
	report, err := orc.Run(context.Background(), request(root, 1))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := conversion.Totals{Total: 3, Converted: 3, SourceBytes: 600, OutputBytes: 300}
	got := report.Totals
	got.Elapsed = 0
	if got != want {
		t.Fatalf("totals = %+v, want %+v", got, want)
	}
	if report.CompressionRatio() != 2 {
		t.Fatalf("ratio = %v, want 2", report.CompressionRatio())
	}
	if report.BatchID == "" || report.Cancelled {
		t.Fatalf("unexpected report %+v", report)
	}
	if !testsupport.Exists(t, filepath.Join(root, "sub", "b.png.webp")) {
		t.Fatal("expected output beside source")
	}
	if testsupport.Exists(t, filepath.Join(root, "notes.txt.webp")) {
		t.Fatal("non-image converted")
	}

	if len(rec.starts) != 1 || rec.starts[0].Total != 3 {
		t.Fatalf("unexpected start events %+v", rec.starts)
	}
	if len(rec.progress) != 3 || rec.progress[2].Done != 3 || rec.progress[2].Totals.Converted != 3 {
		t.Fatalf("unexpected progress events %+v", rec.progress)
	}
	if len(rec.reports) != 1 || rec.reports[0].BatchID != report.BatchID {
		t.Fatalf("unexpected finish events %+v", rec.reports)
	}
}

func TestRunTwiceSkipsEverything(t *testing.T) {
	root := t.TempDir()
	seedImages(t, root, map[string]int64{"a.jpg": 100, "b.png": 200})
	orc := stubOrchestrator(t, testsupport.StubHalf)

	if _, err := orc.Run(context.Background(), request(root, 2)); err != nil {
		t.Fatalf("first run: %v", err)
	}
	report, err := orc.Run(context.Background(), request(root, 2))
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if report.Totals.Converted != 0 || report.Totals.Skipped != 2 {
		t.Fatalf("second run totals = %+v", report.Totals)
	}
}

func TestRunLargerOutputDiscarded(t *testing.T) {
	root := t.TempDir()
	seedImages(t, root, map[string]int64{"a.png": 100})
	orc := stubOrchestrator(t, testsupport.StubBigger)

	report, err := orc.Run(context.Background(), request(root, 1))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Totals.DiscardedLarger != 1 || report.Totals.SourceBytes != 0 || report.Totals.OutputBytes != 0 {
		t.Fatalf("totals = %+v", report.Totals)
	}
	if testsupport.Exists(t, filepath.Join(root, "a.png.webp")) {
		t.Fatal("discarded output left on disk")
	}
}

func TestRunEncoderFailureContinues(t *testing.T) {
	root := t.TempDir()
	seedImages(t, root, map[string]int64{"a.png": 100, "b.jpg": 100})
	orc := stubOrchestrator(t, testsupport.StubFail)

	report, err := orc.Run(context.Background(), request(root, 2))
	if err != nil {
		t.Fatalf("per-file failures must not fail the batch: %v", err)
	}
	if report.Totals.Failed != 2 || len(report.Failures) != 2 {
		t.Fatalf("report = %+v", report)
	}
}

// countingEncoder writes half-size outputs without spawning a process, except
// for sources whose size is divisible by 3, which get a larger output so the
// batch also produces DiscardedLarger outcomes.
type countingEncoder struct{ calls atomic.Int64 }

func (c *countingEncoder) Encode(_ context.Context, src, dst string, _ encoder.Params) (encoder.Result, error) {
	c.calls.Add(1)
	info, err := os.Stat(src)
	if err != nil {
		return encoder.Result{}, err
	}
	size := info.Size() / 2
	if info.Size()%3 == 0 {
		size = info.Size() + 1
	}
	if err := os.WriteFile(dst, make([]byte, size), 0o644); err != nil {
		return encoder.Result{}, err
	}
	return encoder.Result{SourceSize: info.Size(), OutputSize: size}, nil
}

func TestRunConcurrencyMatchesSequential(t *testing.T) {
	sizes := map[string]int64{}
	for i := 1; i <= 40; i++ {
		sizes[fmt.Sprintf("d%d/img%02d.jpg", i%5, i)] = int64(i * 10)
	}

	run := func(workers int) conversion.Totals {
		root := t.TempDir()
		seedImages(t, root, sizes)
		report, err := New(&countingEncoder{}).Run(context.Background(), request(root, workers))
		if err != nil {
			t.Fatalf("Run(workers=%d): %v", workers, err)
		}
		return report.Totals
	}

	sequential := run(1)
	parallel := run(8)
	if sequential != parallel {
		t.Fatalf("sequential %+v != parallel %+v", sequential, parallel)
	}
	if sequential.Total != 40 || sequential.Processed() != 40 || sequential.DiscardedLarger == 0 {
		t.Fatalf("unexpected totals %+v", sequential)
	}
}

func TestRunMissingRoot(t *testing.T) {
	rec := &recorder{}
	_, err := New(&countingEncoder{}, WithObserver(rec)).Run(context.Background(), request(filepath.Join(t.TempDir(), "nope"), 1))
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if services.ExitCode(err) != services.ExitFailure {
		t.Fatalf("exit code = %d", services.ExitCode(err))
	}
	if len(rec.starts) != 0 {
		t.Fatal("batch must not start for a missing root")
	}
}

func TestRunRejectsInvalidParams(t *testing.T) {
	bad := 7
	req := request(t.TempDir(), 1)
	req.Params.Method = &bad
	if _, err := New(&countingEncoder{}).Run(context.Background(), req); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestRunLockedRoot(t *testing.T) {
	root := t.TempDir()
	lockDir := t.TempDir()
	held, err := acquireLock(lockDir, root)
	if err != nil {
		t.Fatalf("acquireLock: %v", err)
	}
	defer held.Unlock()

	_, err = New(&countingEncoder{}, WithLockDir(lockDir)).Run(context.Background(), request(root, 1))
	if !errors.Is(err, services.ErrBatchLocked) {
		t.Fatalf("expected ErrBatchLocked, got %v", err)
	}

	if err := held.Unlock(); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if _, err := New(&countingEncoder{}, WithLockDir(lockDir)).Run(context.Background(), request(root, 1)); err != nil {
		t.Fatalf("Run after unlock: %v", err)
	}
}

func TestRunCancelledBeforeStart(t *testing.T) {
	root := t.TempDir()
	seedImages(t, root, map[string]int64{"a.jpg": 10, "b.jpg": 10})
	enc := &countingEncoder{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := New(enc).Run(ctx, request(root, 2))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !report.Cancelled || report.Totals.Total != 2 {
		t.Fatalf("unexpected report %+v", report)
	}
	if enc.calls.Load() != 0 {
		t.Fatalf("encoder ran %d times after cancellation", enc.calls.Load())
	}
}

func TestLockPathStable(t *testing.T) {
	a := LockPath("/locks", "/photos/")
	b := LockPath("/locks", "/photos")
	if a != b {
		t.Fatalf("lock path should ignore trailing separators: %s vs %s", a, b)
	}
	if LockPath("/locks", "/other") == a {
		t.Fatal("different roots must not share a lock")
	}
}
