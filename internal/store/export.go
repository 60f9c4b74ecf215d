package store

import (
	"context"
	"errors"

	"github.com/rcliao/coldsteel/internal/model"
)

// ExportArtifacts returns the whole vault, newest first.
func (s *SQLiteStore) ExportArtifacts(ctx context.Context) ([]model.Artifact, error) {
	return s.ListArtifacts(ctx)
}

// ImportArtifacts stores artifacts from an export. Artifacts are immutable,
// so ids already in the vault are skipped rather than overwritten.
func (s *SQLiteStore) ImportArtifacts(ctx context.Context, artifacts []model.Artifact) (int, error) {
	imported := 0
	for _, a := range artifacts {
		_, err := s.GetArtifact(ctx, a.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return imported, err
		}
		if err := s.SaveArtifact(ctx, a); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}
