package v1

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestCredentialStore_Verify(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ok, err := f.creds.Verify(ctx, testUser, testPassword)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.creds.Verify(ctx, testUser, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.creds.Verify(ctx, "a", testPassword)
	require.NoError(t, err, "unknown users must not raise")
	assert.False(t, ok)
}

func TestCredentialStore_SetPasswordRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, pw := range []string{"a", "another-password", testPassword} {
		require.NoError(t, f.creds.SetPassword(ctx, testUser, pw))

		ok, err := f.creds.Verify(ctx, testUser, pw)
		require.NoError(t, err)
		assert.True(t, ok, "just-set password %q must verify", pw)

		ok, err = f.creds.Verify(ctx, testUser, pw+"x")
		require.NoError(t, err)
		assert.False(t, ok)
	}

	// Setting the same password twice leaves it verifying.
	require.NoError(t, f.creds.SetPassword(ctx, testUser, testPassword))
	ok, err := f.creds.Verify(ctx, testUser, testPassword)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCredentialStore_SetPassword_UnknownUser(t *testing.T) {
	f := newFixture(t)

	err := f.creds.SetPassword(context.Background(), "ghost", "whatever-password")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestNewCredentialStore_RejectsInvalidCost(t *testing.T) {
	users := newFakeUsers()

	for _, cost := range []int{bcrypt.MinCost - 1, 0, bcrypt.MaxCost + 1} {
		store, err := NewCredentialStore(users, cost)
		require.Error(t, err, "cost %d", cost)
		assert.Nil(t, store)

		var costErr bcrypt.InvalidCostError
		assert.ErrorAs(t, err, &costErr)
	}
}

func TestNewCredentialStore_PlaceholderHash(t *testing.T) {
	store, err := NewCredentialStore(newFakeUsers(), bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEmpty(t, store.dummyHash)

	cost, err := bcrypt.Cost(store.dummyHash)
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)
}

func TestCredentialStore_StoresHashNotPassword(t *testing.T) {
	f := newFixture(t)

	row, err := f.users.GetByUsername(context.Background(), testUser)
	require.NoError(t, err)
	assert.NotEqual(t, testPassword, row.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(testPassword)))
}

func TestCredentialStore_AddUser_Duplicate(t *testing.T) {
	f := newFixture(t)

	_, err := f.creds.AddUser(context.Background(), testUser, "other-password")
	require.ErrorIs(t, err, ErrUserExists)

	_, err = f.creds.AddUser(context.Background(), "", "other-password")
	require.ErrorIs(t, err, ErrValidationFailed)
}

func TestCredentialStore_StoreFailure(t *testing.T) {
	f := newFixture(t)
	f.users.err = errors.New("connection refused")

	ok, err := f.creds.Verify(context.Background(), testUser, testPassword)
	assert.False(t, ok)
	require.ErrorIs(t, err, ErrStoreUnavailable)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)

	err = f.creds.SetPassword(context.Background(), testUser, "new-password-1")
	require.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestValidateNewPassword(t *testing.T) {
	tests := []struct {
		name    string
		pw      string
		confirm string
		want    error
	}{
		{"ok", "0123456789", "0123456789", nil},
		{"too short", "012345678", "012345678", ErrPasswordTooShort},
		{"mismatch", "0123456789", "0123456780", ErrPasswordMismatch},
		{"counts characters not bytes", "ääääääääää", "ääääääääää", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNewPassword(tt.pw, tt.confirm)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, ErrValidationFailed)
		})
	}
}
