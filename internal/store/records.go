package store

import (
	"context"

	"go.uber.org/zap"

	"github.com/rcliao/coldsteel/internal/model"
)

// SaveIdentity persists an identity.
func (s *SQLiteStore) SaveIdentity(ctx context.Context, id model.Identity) error {
	return s.Put(ctx, Identities, id)
}

// GetIdentity loads an identity by id.
func (s *SQLiteStore) GetIdentity(ctx context.Context, id string) (model.Identity, error) {
	var ident model.Identity
	err := s.Get(ctx, Identities, id, &ident)
	return ident, err
}

// SaveProvider persists a provider config.
func (s *SQLiteStore) SaveProvider(ctx context.Context, p model.ProviderConfig) error {
	return s.Put(ctx, ProviderConfigs, p)
}

// DeleteProvider removes a provider config.
func (s *SQLiteStore) DeleteProvider(ctx context.Context, id string) error {
	return s.Delete(ctx, ProviderConfigs, id)
}

// ListProviders returns every provider config in insertion order.
func (s *SQLiteStore) ListProviders(ctx context.Context) ([]model.ProviderConfig, error) {
	raws, err := s.ListAll(ctx, ProviderConfigs)
	if err != nil {
		return nil, err
	}
	return decodeAll[model.ProviderConfig](ProviderConfigs, raws)
}

// SaveMessage appends a message to the log.
func (s *SQLiteStore) SaveMessage(ctx context.Context, m model.Message) error {
	return s.Put(ctx, Logs, m)
}

// ListLogs returns the log oldest first.
func (s *SQLiteStore) ListLogs(ctx context.Context) ([]model.Message, error) {
	raws, err := s.ListAll(ctx, Logs)
	if err != nil {
		return nil, err
	}
	return decodeAll[model.Message](Logs, raws)
}

// SaveArtifact persists an artifact to the vault.
func (s *SQLiteStore) SaveArtifact(ctx context.Context, a model.Artifact) error {
	return s.Put(ctx, Artifacts, a)
}

// GetArtifact loads one artifact by id.
func (s *SQLiteStore) GetArtifact(ctx context.Context, id string) (model.Artifact, error) {
	var a model.Artifact
	err := s.Get(ctx, Artifacts, id, &a)
	return a, err
}

// ListArtifacts returns the vault newest first.
func (s *SQLiteStore) ListArtifacts(ctx context.Context) ([]model.Artifact, error) {
	raws, err := s.ListAll(ctx, Artifacts)
	if err != nil {
		return nil, err
	}
	return decodeAll[model.Artifact](Artifacts, raws)
}

// PurgeLogs clears the log collection only.
func (s *SQLiteStore) PurgeLogs(ctx context.Context) error {
	return s.Clear(ctx, Logs)
}

// FactoryReset deletes the named identity and clears the log. Provider
// configs and artifacts are left untouched; callers bootstrap again to
// restore the default identity.
func (s *SQLiteStore) FactoryReset(ctx context.Context, identityID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("begin reset", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM identities WHERE id = ?`, identityID); err != nil {
		return unavailable("reset identity", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM logs`); err != nil {
		return unavailable("reset logs", err)
	}
	if err := tx.Commit(); err != nil {
		return unavailable("commit reset", err)
	}
	s.logger.Warn("factory reset", zap.String("identity", identityID))
	return nil
}
