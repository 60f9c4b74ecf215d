package store

import (
	"context"
	"testing"
	"time"

	"github.com/rcliao/coldsteel/internal/model"
)

func TestExportImport(t *testing.T) {
	ctx := context.Background()
	src := newTestStore(t)
	dst := newTestStore(t)

	now := time.Now()
	src.SaveArtifact(ctx, model.Artifact{ID: "a", Title: "A", Content: "first", Timestamp: now})
	src.SaveArtifact(ctx, model.Artifact{ID: "b", Title: "B", Content: "second", Timestamp: now.Add(time.Second)})

	exported, err := src.ExportArtifacts(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	dst.SaveArtifact(ctx, model.Artifact{ID: "a", Title: "A", Content: "kept", Timestamp: now})
	n, err := dst.ImportArtifacts(ctx, exported)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 imported, got %d", n)
	}

	a, _ := dst.GetArtifact(ctx, "a")
	if a.Content != "kept" {
		t.Errorf("existing artifact overwritten: %q", a.Content)
	}
	list, _ := dst.ListArtifacts(ctx)
	if len(list) != 2 || list[0].ID != "b" {
		t.Errorf("unexpected vault after import: %+v", list)
	}
}
