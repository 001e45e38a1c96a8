package domain

import "context"

// ExternalProvidersDomain groups third-party provider credentials.
const ExternalProvidersDomain = "external-providers"

// Setting is one stored (user, domain, name) → value row.
type Setting struct {
	UserID int
	Domain string
	Name   string
	Value  string
}

// Settings is the nested domain → name → value view of a user's rows.
type Settings map[string]map[string]string

// Domain returns the values stored under d, or an empty map.
func (s Settings) Domain(d string) map[string]string {
	if m, ok := s[d]; ok {
		return m
	}
	return map[string]string{}
}

// GroupSettings projects flat rows into the nested view. Later rows with the
// same key overwrite earlier ones.
func GroupSettings(rows []Setting) Settings {
	out := make(Settings)
	for _, r := range rows {
		m, ok := out[r.Domain]
		if !ok {
			m = make(map[string]string)
			out[r.Domain] = m
		}
		m[r.Name] = r.Value
	}
	return out
}

// SettingsWriter applies upsert-or-clear writes. Writers handed out by
// SettingsRepository.Batch are bound to a single transaction.
type SettingsWriter interface {
	// UpsertOrClear stores the trimmed value for the key, or deletes the key
	// when the trimmed value is empty. Deleting an absent key is a no-op.
	UpsertOrClear(ctx context.Context, userID int, domain, name, value string) error
}

// SettingsRepository defines the data-access contract for per-user settings.
// It is catalog-agnostic: any domain and name are accepted.
type SettingsRepository interface {
	SettingsWriter

	// GetAll returns every setting of userID grouped by domain.
	GetAll(ctx context.Context, userID int) (Settings, error)

	// Batch runs fn inside one transaction. All writes made through the
	// writer commit together when fn returns nil and are rolled back otherwise.
	Batch(ctx context.Context, fn func(ctx context.Context, w SettingsWriter) error) error
}
