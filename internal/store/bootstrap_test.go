package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rcliao/coldsteel/internal/model"
)

func TestBootstrapSeedsDefaults(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	res, err := s.Bootstrap(ctx)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if !res.RestoredIdentity || !res.SeededProviders {
		t.Errorf("expected defaults inserted, got %+v", res)
	}
	if res.Identity.ID != model.PrimaryIdentityID || res.Identity.DisplayName != "Operator" {
		t.Errorf("unexpected identity %+v", res.Identity)
	}
	if len(res.Providers) != 2 {
		t.Errorf("expected 2 default providers, got %d", len(res.Providers))
	}
}

func TestBootstrapIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.Bootstrap(ctx); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	ident, _ := s.GetIdentity(ctx, model.PrimaryIdentityID)
	ident.DisplayName = "Custodian"
	s.SaveIdentity(ctx, ident)
	s.DeleteProvider(ctx, "provider_openai")

	res, err := s.Bootstrap(ctx)
	if err != nil {
		t.Fatalf("second bootstrap: %v", err)
	}
	if res.RestoredIdentity || res.SeededProviders {
		t.Errorf("second bootstrap must not insert defaults: %+v", res)
	}
	if res.Identity.DisplayName != "Custodian" {
		t.Errorf("identity overwritten: %q", res.Identity.DisplayName)
	}
	if len(res.Providers) != 1 {
		t.Errorf("provider set overwritten: %d", len(res.Providers))
	}
}

func TestBootstrapAfterFactoryReset(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"), WithClock(func() time.Time { return fixed }))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	defer s.Close()

	s.Bootstrap(ctx)
	s.FactoryReset(ctx, model.PrimaryIdentityID)

	res, err := s.Bootstrap(ctx)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if !res.RestoredIdentity {
		t.Error("expected identity restored after reset")
	}
	if res.SeededProviders {
		t.Error("providers survive a reset and must not be reseeded")
	}
	if !res.Identity.CreatedAt.Equal(fixed) {
		t.Errorf("expected clock time, got %v", res.Identity.CreatedAt)
	}
}

func TestBootstrapClosedStore(t *testing.T) {
	s := newTestStore(t)
	s.Close()
	if _, err := s.Bootstrap(context.Background()); err == nil {
		t.Fatal("expected bootstrap failure to surface")
	}
}
