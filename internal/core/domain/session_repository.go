package domain

import (
	"context"
	"time"
)

// SessionRow binds an opaque cookie token to a user id, which may be
// DemoUserID for an explicitly activated demo session.
type SessionRow struct {
	Token     string
	UserID    int
	ExpiresAt time.Time
}

// Expired reports whether the session is no longer usable at now.
func (s SessionRow) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionRepository defines the data-access contract for session operations.
// Implementations live in internal/core/repository (Core layer).
type SessionRepository interface {
	// Create inserts a new session for the given user id.
	Create(ctx context.Context, userID int, token string, expiresAt time.Time) error

	// GetByToken returns the session row for token.
	// Returns (nil, nil) when the token does not match any session.
	GetByToken(ctx context.Context, token string) (*SessionRow, error)

	// Delete removes the session; deleting an unknown token is not an error.
	Delete(ctx context.Context, token string) error

	// DeleteExpired removes every session that expired at or before now and
	// returns how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
