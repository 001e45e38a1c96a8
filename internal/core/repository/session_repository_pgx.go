package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/programmeradu/ownai/internal/core/domain"
)

// PgxSessionRepository implements domain.SessionRepository on top of pgx.
type PgxSessionRepository struct {
	db DBTX
}

// NewSessionRepository creates a new PgxSessionRepository.
func NewSessionRepository(db DBTX) *PgxSessionRepository {
	return &PgxSessionRepository{db: db}
}

// Create inserts a new session for the given user id.
func (r *PgxSessionRepository) Create(ctx context.Context, userID int, token string, expiresAt time.Time) error {
	query := `INSERT INTO sessions (token, user_id, expires_at) VALUES ($1, $2, $3)`
	if _, err := r.db.Exec(ctx, query, token, userID, expiresAt); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetByToken returns the session row for token.
// Returns (nil, nil) when the token does not match any session.
func (r *PgxSessionRepository) GetByToken(ctx context.Context, token string) (*domain.SessionRow, error) {
	query := `SELECT token, user_id, expires_at FROM sessions WHERE token = $1`

	var row domain.SessionRow
	err := r.db.QueryRow(ctx, query, token).Scan(&row.Token, &row.UserID, &row.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select session: %w", err)
	}

	return &row, nil
}

// DeleteExpired removes sessions whose expiry is at or before now.
func (r *PgxSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `DELETE FROM sessions WHERE expires_at <= $1`
	tag, err := r.db.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Delete removes the session identified by token.
func (r *PgxSessionRepository) Delete(ctx context.Context, token string) error {
	query := `DELETE FROM sessions WHERE token = $1`
	if _, err := r.db.Exec(ctx, query, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
