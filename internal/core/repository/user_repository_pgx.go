package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/programmeradu/ownai/internal/core/domain"
)

const uniqueViolation = "23505"

// PgxUserRepository implements domain.UserRepository on top of pgx.
type PgxUserRepository struct {
	db DBTX
}

// NewUserRepository creates a new PgxUserRepository.
func NewUserRepository(db DBTX) *PgxUserRepository {
	return &PgxUserRepository{db: db}
}

// GetByUsername returns the user matching the given username.
// Returns (nil, nil) when no user is found.
func (r *PgxUserRepository) GetByUsername(ctx context.Context, username string) (*domain.UserRow, error) {
	query := `SELECT id, username, password_hash FROM users WHERE username = $1`
	return r.getOne(ctx, query, username)
}

// GetByID returns the user with the given id.
// Returns (nil, nil) when no user is found.
func (r *PgxUserRepository) GetByID(ctx context.Context, id int) (*domain.UserRow, error) {
	query := `SELECT id, username, password_hash FROM users WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *PgxUserRepository) getOne(ctx context.Context, query string, arg any) (*domain.UserRow, error) {
	var row domain.UserRow
	err := r.db.QueryRow(ctx, query, arg).Scan(&row.ID, &row.Username, &row.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &row, nil
}

// Create inserts a new user and returns the generated user ID.
func (r *PgxUserRepository) Create(ctx context.Context, username, passwordHash string) (int, error) {
	query := `INSERT INTO users (username, password_hash) VALUES ($1, $2) RETURNING id`

	var userID int
	err := r.db.QueryRow(ctx, query, username, passwordHash).Scan(&userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, fmt.Errorf("insert user %q: %w", username, domain.ErrDuplicate)
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}

	return userID, nil
}

// UpdatePasswordHash overwrites the password hash of username.
func (r *PgxUserRepository) UpdatePasswordHash(ctx context.Context, username, passwordHash string) (bool, error) {
	query := `UPDATE users SET password_hash = $2 WHERE username = $1`
	tag, err := r.db.Exec(ctx, query, username, passwordHash)
	if err != nil {
		return false, fmt.Errorf("update password hash: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
