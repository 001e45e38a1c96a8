package domain

import "context"

// UserRow represents a user record returned from the database.
// It includes the password hash so the Logic layer can verify credentials.
type UserRow struct {
	ID           int
	Username     string
	PasswordHash string
}

// User returns the public view of the row.
func (r UserRow) User() User {
	return User{ID: r.ID, Username: r.Username}
}

// UserRepository defines the data-access contract for user operations.
// Implementations live in internal/core/repository (Core layer).
// The Logic layer depends on this interface only, never on SQL or pgx directly.
type UserRepository interface {
	// GetByUsername returns the user matching the given username.
	// Returns (nil, nil) when no user is found.
	GetByUsername(ctx context.Context, username string) (*UserRow, error)

	// GetByID returns the user with the given id.
	// Returns (nil, nil) when no user is found.
	GetByID(ctx context.Context, id int) (*UserRow, error)

	// Create inserts a new user and returns the generated user ID.
	// Returns ErrDuplicate when the username is taken.
	Create(ctx context.Context, username, passwordHash string) (int, error)

	// UpdatePasswordHash overwrites the stored hash for username and reports
	// whether a row was updated.
	UpdatePasswordHash(ctx context.Context, username, passwordHash string) (bool, error)
}
