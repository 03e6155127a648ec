package logging

import "testing"

func TestProgressSamplerBuckets(t *testing.T) {
	s := NewProgressSampler(25)
	var logged []int
	for done := 1; done <= 8; done++ {
		if s.ShouldLog(done, 8) {
			logged = append(logged, done)
		}
	}
	want := []int{1, 2, 4, 6, 8}
	if len(logged) != len(want) {
		t.Fatalf("logged %v, want %v", logged, want)
	}
	for i := range want {
		if logged[i] != want[i] {
			t.Fatalf("logged %v, want %v", logged, want)
		}
	}
}

func TestProgressSamplerFinalOnce(t *testing.T) {
	s := NewProgressSampler(0)
	if !s.ShouldLog(3, 3) {
		t.Fatal("expected completion to log")
	}
	if s.ShouldLog(3, 3) {
		t.Fatal("expected completion to log only once")
	}
	s.Reset()
	if !s.ShouldLog(1, 3) {
		t.Fatal("expected reset sampler to log first bucket")
	}
}

func TestProgressSamplerNilAndEmpty(t *testing.T) {
	var s *ProgressSampler
	if !s.ShouldLog(1, 10) {
		t.Fatal("nil sampler should always log")
	}
	if NewProgressSampler(10).ShouldLog(0, 0) {
		t.Fatal("empty batch should not log progress")
	}
}
