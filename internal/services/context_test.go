package services_test

import (
	"context"
	"testing"

	"brecimport/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-1")
	ctx = services.WithStage(ctx, "dedup_check")
	ctx = services.WithFile(ctx, "/rec/a.flv")
	ctx = services.WithSessionKey(ctx, "f7d111fd8e96abad")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-1" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "dedup_check" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if file, ok := services.FileFromContext(ctx); !ok || file != "/rec/a.flv" {
		t.Fatalf("unexpected file: %v %v", file, ok)
	}
	if key, ok := services.SessionKeyFromContext(ctx); !ok || key != "f7d111fd8e96abad" {
		t.Fatalf("unexpected session key: %v %v", key, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestStageBlankPreservesContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
}
