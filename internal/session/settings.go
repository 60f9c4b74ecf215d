package session

import (
	"context"
	"fmt"

	"github.com/rcliao/coldsteel/internal/model"
)

// Identity returns a copy of the loaded identity.
func (s *Session) Identity() (model.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return model.Identity{}, false
	}
	return s.identity.Clone(), true
}

// Providers returns copies of all provider configs in insertion order.
func (s *Session) Providers() []model.ProviderConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ProviderConfig, 0, len(s.providers))
	for _, p := range s.providers {
		out = append(out, p.Clone())
	}
	return out
}

// ActiveProvider returns the selected provider config, if it exists.
func (s *Session) ActiveProvider() (model.ProviderConfig, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeLocked()
}

func (s *Session) activeLocked() (model.ProviderConfig, bool) {
	if i := s.indexLocked(s.activeID); i >= 0 {
		return s.providers[i].Clone(), true
	}
	return model.ProviderConfig{}, false
}

func (s *Session) indexLocked(id string) int {
	for i, p := range s.providers {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// UpdateIdentity validates and persists a replacement identity.
func (s *Session) UpdateIdentity(ctx context.Context, ident model.Identity) error {
	if err := ident.Validate(); err != nil {
		return err
	}
	ident = ident.Clone()
	ident.LastActiveAt = s.now()
	if err := s.store.SaveIdentity(ctx, ident); err != nil {
		return fmt.Errorf("update identity: %w", err)
	}
	s.mu.Lock()
	s.identity = &ident
	s.mu.Unlock()
	return nil
}

// SetTheme persists a new identity theme.
func (s *Session) SetTheme(ctx context.Context, theme model.Theme) error {
	if !model.ValidThemes[theme] {
		return &model.ValidationError{Fields: map[string]string{"theme": "unknown theme " + string(theme)}}
	}
	ident, ok := s.Identity()
	if !ok {
		return ErrNoIdentity
	}
	ident.Theme = theme
	return s.UpdateIdentity(ctx, ident)
}

// AddProvider validates and persists a new provider config.
func (s *Session) AddProvider(ctx context.Context, p model.ProviderConfig) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexLocked(p.ID) >= 0 {
		return &model.ValidationError{Fields: map[string]string{"id": "provider " + p.ID + " already exists"}}
	}
	p = p.Clone()
	if err := s.store.SaveProvider(ctx, p); err != nil {
		return fmt.Errorf("add provider: %w", err)
	}
	s.providers = append(s.providers, p)
	return nil
}

// DeleteProvider removes a provider config. Deleting the active provider
// leaves the session without one until another is selected.
func (s *Session) DeleteProvider(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownProvider, id)
	}
	if err := s.store.DeleteProvider(ctx, id); err != nil {
		return fmt.Errorf("delete provider: %w", err)
	}
	s.providers = append(s.providers[:i], s.providers[i+1:]...)
	return nil
}

// SelectProvider makes id the active provider.
func (s *Session) SelectProvider(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexLocked(id) < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownProvider, id)
	}
	s.activeID = id
	return nil
}

// SetProviderEnabled toggles a provider. Enabling requires a base URL and
// an API key.
func (s *Session) SetProviderEnabled(ctx context.Context, id string, enabled bool) error {
	return s.updateProvider(ctx, id, func(p *model.ProviderConfig) error {
		p.Enabled = enabled
		return nil
	})
}

// SetAPIKey replaces a provider's credential.
func (s *Session) SetAPIKey(ctx context.Context, id, key string) error {
	return s.updateProvider(ctx, id, func(p *model.ProviderConfig) error {
		p.APIKey = key
		return nil
	})
}

// SetBaseURL replaces a provider's endpoint.
func (s *Session) SetBaseURL(ctx context.Context, id, url string) error {
	return s.updateProvider(ctx, id, func(p *model.ProviderConfig) error {
		p.BaseURL = url
		return nil
	})
}

// SetSelectedModel selects one of the provider's models.
func (s *Session) SetSelectedModel(ctx context.Context, id, modelID string) error {
	return s.updateProvider(ctx, id, func(p *model.ProviderConfig) error {
		if !p.HasModel(modelID) {
			return &model.ValidationError{Fields: map[string]string{"selectedModelId": modelID + " is not one of the provider's models"}}
		}
		p.SelectedModelID = modelID
		return nil
	})
}

// updateProvider applies fn to a copy and persists it. The enable transition
// is validated; field edits on an already enabled provider are not.
func (s *Session) updateProvider(ctx context.Context, id string, fn func(*model.ProviderConfig) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownProvider, id)
	}
	next := s.providers[i].Clone()
	if err := fn(&next); err != nil {
		return err
	}
	if next.Enabled && !s.providers[i].Enabled {
		if err := next.ValidateEnable(); err != nil {
			return err
		}
	}
	if err := s.store.SaveProvider(ctx, next); err != nil {
		return fmt.Errorf("update provider: %w", err)
	}
	s.providers[i] = next
	return nil
}

// Online reports whether provider calls are enabled.
func (s *Session) Online() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online
}

// SetOnline toggles network access for subsequent tasks.
func (s *Session) SetOnline(online bool) {
	s.mu.Lock()
	s.online = online
	s.mu.Unlock()
}

// Priority returns the priority applied to the next task.
func (s *Session) Priority() model.PriorityLevel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.priority
}

// SetPriority selects the priority for subsequent tasks.
func (s *Session) SetPriority(p model.PriorityLevel) error {
	if !p.Valid() {
		return &model.ValidationError{Fields: map[string]string{"priority": "unknown priority " + string(p)}}
	}
	s.mu.Lock()
	s.priority = p
	s.mu.Unlock()
	return nil
}

// PurgeLogs clears the message log.
func (s *Session) PurgeLogs(ctx context.Context) error {
	if err := s.store.PurgeLogs(ctx); err != nil {
		return fmt.Errorf("purge logs: %w", err)
	}
	return nil
}

// FactoryReset wipes the identity and logs, then bootstraps the defaults
// again.
func (s *Session) FactoryReset(ctx context.Context) error {
	id := model.PrimaryIdentityID
	if ident, ok := s.Identity(); ok {
		id = ident.ID
	}
	if err := s.store.FactoryReset(ctx, id); err != nil {
		return fmt.Errorf("factory reset: %w", err)
	}
	s.mu.Lock()
	s.identity = nil
	s.mu.Unlock()
	return s.Load(ctx)
}
