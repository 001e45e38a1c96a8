package v1

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"github.com/programmeradu/ownai/internal/core/domain"
	"github.com/programmeradu/ownai/middleware"
)

// MinPasswordLength is the minimum number of characters of a new password.
const MinPasswordLength = 10

// CredentialStore owns password hashes. It verifies and replaces them but
// does not enforce password policy; see ValidateNewPassword.
type CredentialStore struct {
	users     domain.UserRepository
	cost      int
	dummyHash []byte
}

// NewCredentialStore creates a CredentialStore hashing with the given bcrypt
// cost, which must lie within [bcrypt.MinCost, bcrypt.MaxCost].
func NewCredentialStore(users domain.UserRepository, cost int) (*CredentialStore, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d outside [%d, %d]: %w", cost, bcrypt.MinCost, bcrypt.MaxCost, bcrypt.InvalidCostError(cost))
	}

	// Compared against when the user is unknown so both paths pay for one bcrypt run.
	dummy, err := bcrypt.GenerateFromPassword([]byte("ownai-unknown-user"), cost)
	if err != nil {
		return nil, fmt.Errorf("hash placeholder password: %w", err)
	}

	return &CredentialStore{
		users:     users,
		cost:      cost,
		dummyHash: dummy,
	}, nil
}

// Verify reports whether candidate is the password of username. Unknown
// users yield false; the error is non-nil only when the store fails.
func (s *CredentialStore) Verify(ctx context.Context, username, candidate string) (bool, error) {
	row, err := s.authenticate(ctx, username, candidate)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return false, nil
		}
		return false, err
	}
	return row != nil, nil
}

// authenticate returns the user row when the password matches, or
// ErrInvalidCredentials for an unknown user or wrong password.
func (s *CredentialStore) authenticate(ctx context.Context, username, candidate string) (*domain.UserRow, error) {
	ctx, span := middleware.StartSpan(ctx, "credentials.verify", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("username", username),
	))
	defer span.End()

	row, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("lookup user %q: %w: %w", username, ErrStoreUnavailable, err)
	}

	if row == nil {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(candidate))
		span.SetAttributes(attribute.Bool("auth.success", false))
		return nil, fmt.Errorf("authenticate user %q: %w", username, ErrInvalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(candidate)); err != nil {
		span.SetAttributes(attribute.Bool("auth.success", false))
		return nil, fmt.Errorf("authenticate user %q: %w", username, ErrInvalidCredentials)
	}

	span.SetAttributes(attribute.Bool("auth.success", true))
	return row, nil
}

// SetPassword replaces the password hash of username.
func (s *CredentialStore) SetPassword(ctx context.Context, username, newPassword string) error {
	ctx, span := middleware.StartSpan(ctx, "credentials.set_password", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("username", username),
	))
	defer span.End()

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("hash password: %w", err)
	}

	updated, err := s.users.UpdatePasswordHash(ctx, username, string(hash))
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("set password for %q: %w: %w", username, ErrStoreUnavailable, err)
	}
	if !updated {
		return fmt.Errorf("set password for %q: %w", username, ErrUserNotFound)
	}

	span.AddEvent("password.changed")
	return nil
}

// AddUser registers a new user and returns its id.
func (s *CredentialStore) AddUser(ctx context.Context, username, password string) (int, error) {
	ctx, span := middleware.StartSpan(ctx, "credentials.add_user", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("username", username),
	))
	defer span.End()

	if username == "" {
		return 0, fmt.Errorf("username is required: %w", ErrValidationFailed)
	}

	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("check existing user: %w: %w", ErrStoreUnavailable, err)
	}
	if existing != nil {
		return 0, fmt.Errorf("register user %q: %w", username, ErrUserExists)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("hash password: %w", err)
	}

	id, err := s.users.Create(ctx, username, string(hash))
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, domain.ErrDuplicate) {
			return 0, fmt.Errorf("register user %q: %w", username, ErrUserExists)
		}
		return 0, fmt.Errorf("insert user: %w: %w", ErrStoreUnavailable, err)
	}

	span.AddEvent("user.registered")
	return id, nil
}

// ValidateNewPassword applies the password policy: the confirmation must
// match and the password must have at least MinPasswordLength characters.
func ValidateNewPassword(newPassword, confirmation string) error {
	if newPassword != confirmation {
		return ErrPasswordMismatch
	}
	if utf8.RuneCountInString(newPassword) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}
