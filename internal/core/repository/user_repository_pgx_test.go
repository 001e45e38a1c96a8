package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/programmeradu/ownai/internal/core/domain"
)

const selectUserQ = `^SELECT id, username, password_hash FROM users WHERE `

func TestUserRepository_GetByUsername_Found(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(selectUserQ + `username = \$1$`).
		WithArgs("test").
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "password_hash"}).AddRow(1, "test", "$2a$hash"))

	got, err := repo.GetByUsername(context.Background(), "test")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.UserRow{ID: 1, Username: "test", PasswordHash: "$2a$hash"}, *got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByUsername_NotFound(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(selectUserQ + `username = \$1$`).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.GetByUsername(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUserRepository_GetByID_DBError(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(selectUserQ + `id = \$1$`).
		WithArgs(3).
		WillReturnError(errors.New("db down"))

	_, err := repo.GetByID(context.Background(), 3)
	require.ErrorContains(t, err, "select user: db down")
}

func TestUserRepository_Create(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(`^INSERT INTO users \(username, password_hash\) VALUES \(\$1, \$2\) RETURNING id$`).
		WithArgs("alice", "hash").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(42))

	id, err := repo.Create(context.Background(), "alice", "hash")
	require.NoError(t, err)
	assert.Equal(t, 42, id)
}

func TestUserRepository_Create_Duplicate(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(`^INSERT INTO users`).
		WithArgs("alice", "hash").
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value"})

	_, err := repo.Create(context.Background(), "alice", "hash")
	require.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestUserRepository_UpdatePasswordHash(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock)

	mock.ExpectExec(`^UPDATE users SET password_hash = \$2 WHERE username = \$1$`).
		WithArgs("test", "newhash").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`^UPDATE users SET password_hash`).
		WithArgs("ghost", "newhash").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	ok, err := repo.UpdatePasswordHash(context.Background(), "test", "newhash")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.UpdatePasswordHash(context.Background(), "ghost", "newhash")
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}
