package v1

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/programmeradu/ownai/internal/core/domain"
	"github.com/programmeradu/ownai/middleware"
)

// SettingsService implements the operations of the settings pages: password
// change and external provider credentials. Every mutating operation refuses
// the demo identity on its own, independent of the gate that admitted it.
type SettingsService struct {
	creds     *CredentialStore
	settings  domain.SettingsRepository
	providers []string
}

// NewSettingsService creates a SettingsService. providers is the ordered
// catalog of external provider names.
func NewSettingsService(creds *CredentialStore, settings domain.SettingsRepository, providers []string) *SettingsService {
	return &SettingsService{
		creds:     creds,
		settings:  settings,
		providers: providers,
	}
}

// realUser returns the user behind id, or the error for a demo or missing identity.
func realUser(id domain.Identity) (domain.User, error) {
	if id.IsDemo() {
		return domain.User{}, ErrDemoForbidden
	}
	u, ok := id.RealUser()
	if !ok {
		return domain.User{}, ErrUnauthenticated
	}
	return u, nil
}

// ChangePassword replaces the caller's password. The confirmation must
// match, the current password must verify, and the new password must pass
// ValidateNewPassword; nothing is written otherwise.
func (s *SettingsService) ChangePassword(ctx context.Context, id domain.Identity, req domain.ChangePasswordRequest) error {
	ctx, span := middleware.StartSpan(ctx, "settings.change_password", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("identity", id.Kind().String()),
	))
	defer span.End()

	user, err := realUser(id)
	if err != nil {
		return err
	}

	if req.NewPassword != req.NewPasswordConfirmed {
		return ErrPasswordMismatch
	}

	ok, err := s.creds.Verify(ctx, user.Username, req.CurrentPassword)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if !ok {
		return fmt.Errorf("check current password: %w", ErrInvalidCredentials)
	}

	if err := ValidateNewPassword(req.NewPassword, req.NewPasswordConfirmed); err != nil {
		return err
	}

	if err := s.creds.SetPassword(ctx, user.Username, req.NewPassword); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// ExternalProviders returns the provider catalog with the caller's stored
// values. The demo identity sees the catalog with no values.
func (s *SettingsService) ExternalProviders(ctx context.Context, id domain.Identity) (*domain.ExternalProvidersResponse, error) {
	resp := &domain.ExternalProvidersResponse{
		Names:    s.Providers(),
		Settings: map[string]string{},
	}

	if id.IsDemo() {
		return resp, nil
	}
	user, err := realUser(id)
	if err != nil {
		return nil, err
	}

	all, err := s.all(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	resp.Settings = all.Domain(domain.ExternalProvidersDomain)
	return resp, nil
}

// SaveExternalProviders applies a submitted form over the whole catalog in
// one transaction: a non-blank value is stored trimmed, a blank or missing
// value clears the key. Form keys outside the catalog are ignored.
func (s *SettingsService) SaveExternalProviders(ctx context.Context, id domain.Identity, form map[string]string) error {
	ctx, span := middleware.StartSpan(ctx, "settings.save_external_providers", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("identity", id.Kind().String()),
		attribute.Int("form.keys", len(form)),
	))
	defer span.End()

	user, err := realUser(id)
	if err != nil {
		return err
	}

	err = s.settings.Batch(ctx, func(ctx context.Context, w domain.SettingsWriter) error {
		for _, name := range s.providers {
			if err := w.UpsertOrClear(ctx, user.ID, domain.ExternalProvidersDomain, name, form[name]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		middleware.SettingsBatchesTotal.WithLabelValues("rolled_back").Inc()
		return fmt.Errorf("save external providers: %w: %w", ErrStoreUnavailable, err)
	}

	middleware.SettingsBatchesTotal.WithLabelValues("committed").Inc()
	return nil
}

// All returns every setting of a real user grouped by domain.
func (s *SettingsService) All(ctx context.Context, id domain.Identity) (domain.Settings, error) {
	user, err := realUser(id)
	if err != nil {
		return nil, err
	}
	return s.all(ctx, user.ID)
}

func (s *SettingsService) all(ctx context.Context, userID int) (domain.Settings, error) {
	all, err := s.settings.GetAll(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w: %w", ErrStoreUnavailable, err)
	}
	return all, nil
}

// Providers returns a copy of the provider catalog.
func (s *SettingsService) Providers() []string {
	out := make([]string, len(s.providers))
	copy(out, s.providers)
	return out
}
