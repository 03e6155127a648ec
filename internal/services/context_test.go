package services

import (
	"context"
	"testing"
)

func TestBatchIDRoundTrip(t *testing.T) {
	ctx := WithBatchID(context.Background(), "abc")
	got, ok := BatchIDFromContext(ctx)
	if !ok || got != "abc" {
		t.Fatalf("expected batch id abc, got %q (ok=%v)", got, ok)
	}
}

func TestEmptyValuesAreNotStored(t *testing.T) {
	ctx := WithSource(WithBatchID(context.Background(), ""), "")
	if _, ok := BatchIDFromContext(ctx); ok {
		t.Fatal("expected no batch id")
	}
	if _, ok := SourceFromContext(ctx); ok {
		t.Fatal("expected no source")
	}
}

func TestSourceFromContext(t *testing.T) {
	ctx := WithSource(context.Background(), "/photos/a.jpg")
	got, ok := SourceFromContext(ctx)
	if !ok || got != "/photos/a.jpg" {
		t.Fatalf("unexpected source %q", got)
	}
}
