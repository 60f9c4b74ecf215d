package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rcliao/coldsteel/internal/model"
)

// BootstrapResult is the state loaded at process start.
type BootstrapResult struct {
	Identity  model.Identity
	Providers []model.ProviderConfig
	// RestoredIdentity is true when the default identity was inserted.
	RestoredIdentity bool
	// SeededProviders is true when the default provider set was inserted.
	SeededProviders bool
}

// Bootstrap ensures the primary identity and a provider set exist. It never
// overwrites an existing identity or a non-empty provider set, so calling it
// repeatedly is safe. Any error is fatal to startup.
func (s *SQLiteStore) Bootstrap(ctx context.Context) (*BootstrapResult, error) {
	res := &BootstrapResult{}

	ident, err := s.GetIdentity(ctx, model.PrimaryIdentityID)
	switch {
	case errors.Is(err, ErrNotFound):
		s.logger.Warn("identity amnesia detected, restoring primary anchor")
		ident = model.DefaultIdentity(s.now())
		if err := s.SaveIdentity(ctx, ident); err != nil {
			return nil, fmt.Errorf("bootstrap identity: %w", err)
		}
		res.RestoredIdentity = true
	case err != nil:
		return nil, fmt.Errorf("bootstrap identity: %w", err)
	}
	res.Identity = ident

	providers, err := s.ListProviders(ctx)
	if err != nil {
		return nil, fmt.Errorf("bootstrap providers: %w", err)
	}
	if len(providers) == 0 {
		s.logger.Warn("module void detected, injecting default provider stack")
		providers = model.DefaultProviders()
		for _, p := range providers {
			if err := s.SaveProvider(ctx, p); err != nil {
				return nil, fmt.Errorf("bootstrap providers: %w", err)
			}
		}
		res.SeededProviders = true
	}
	res.Providers = providers

	s.logger.Debug("bootstrap complete",
		zap.String("identity", ident.ID),
		zap.Int("providers", len(providers)))
	return res, nil
}
