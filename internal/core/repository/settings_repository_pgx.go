package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/programmeradu/ownai/internal/core/domain"
)

// PgxSettingsRepository implements domain.SettingsRepository on top of pgx.
type PgxSettingsRepository struct {
	db DB
}

// NewSettingsRepository creates a new PgxSettingsRepository. db must be able
// to begin transactions for Batch.
func NewSettingsRepository(db DB) *PgxSettingsRepository {
	return &PgxSettingsRepository{db: db}
}

// GetAll returns every setting of userID grouped by domain. The nested map is
// rebuilt from rows on each call.
func (r *PgxSettingsRepository) GetAll(ctx context.Context, userID int) (domain.Settings, error) {
	query := `SELECT domain, name, value FROM settings WHERE user_id = $1`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("select settings: %w", err)
	}
	defer rows.Close()

	var flat []domain.Setting
	for rows.Next() {
		s := domain.Setting{UserID: userID}
		if err := rows.Scan(&s.Domain, &s.Name, &s.Value); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		flat = append(flat, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate settings: %w", err)
	}

	return domain.GroupSettings(flat), nil
}

// UpsertOrClear writes a single key outside of any batch.
func (r *PgxSettingsRepository) UpsertOrClear(ctx context.Context, userID int, dom, name, value string) error {
	return settingsWriter{db: r.db}.UpsertOrClear(ctx, userID, dom, name, value)
}

// Batch runs fn with a writer bound to one transaction.
func (r *PgxSettingsRepository) Batch(ctx context.Context, fn func(ctx context.Context, w domain.SettingsWriter) error) error {
	return WithTx(ctx, r.db, func(ctx context.Context, tx DBTX) error {
		return fn(ctx, settingsWriter{db: tx})
	})
}

type settingsWriter struct {
	db DBTX
}

func (w settingsWriter) UpsertOrClear(ctx context.Context, userID int, dom, name, value string) error {
	value = strings.TrimSpace(value)

	if value == "" {
		query := `DELETE FROM settings WHERE user_id = $1 AND domain = $2 AND name = $3`
		if _, err := w.db.Exec(ctx, query, userID, dom, name); err != nil {
			return fmt.Errorf("delete setting %s/%s: %w", dom, name, err)
		}
		return nil
	}

	query := `INSERT INTO settings (user_id, domain, name, value) VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, domain, name) DO UPDATE SET value = EXCLUDED.value`
	if _, err := w.db.Exec(ctx, query, userID, dom, name, value); err != nil {
		return fmt.Errorf("upsert setting %s/%s: %w", dom, name, err)
	}
	return nil
}
