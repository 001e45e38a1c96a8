package v1

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/programmeradu/ownai/internal/core/domain"
	"github.com/programmeradu/ownai/internal/logger"
	"github.com/programmeradu/ownai/middleware"
)

// SessionService resolves session tokens to identities and manages the
// sign-in, demo activation and sign-out lifecycle.
type SessionService struct {
	users    domain.UserRepository
	sessions domain.SessionRepository
	creds    *CredentialStore
	demoMode func() bool
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionService creates a SessionService. demoMode is called on every
// resolution so that toggling the flag takes effect immediately.
func NewSessionService(
	users domain.UserRepository,
	sessions domain.SessionRepository,
	creds *CredentialStore,
	demoMode func() bool,
	ttl time.Duration,
) *SessionService {
	return &SessionService{
		users:    users,
		sessions: sessions,
		creds:    creds,
		demoMode: demoMode,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Resolve maps a session token to the request identity.
//
// An empty, unknown or expired token counts as no token: the result is the
// demo identity when demo mode is on and no identity otherwise, and nothing
// is written to the session store. A session holding the demo sentinel
// resolves to the demo identity without a user lookup while demo mode is on;
// once it is off the session is deleted and resolves to no identity. A
// session whose user was deleted resolves to no identity without an error.
// Only store failures are returned as errors.
func (s *SessionService) Resolve(ctx context.Context, token string) (domain.Identity, error) {
	ctx, span := middleware.StartSpan(ctx, "session.resolve", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	id, err := s.resolve(ctx, token)
	if err != nil {
		span.RecordError(err)
		return domain.NoIdentity(), err
	}

	span.SetAttributes(attribute.String("identity", id.Kind().String()))
	middleware.SessionResolutionsTotal.WithLabelValues(id.Kind().String()).Inc()
	return id, nil
}

func (s *SessionService) resolve(ctx context.Context, token string) (domain.Identity, error) {
	if token == "" {
		return s.anonymous(), nil
	}

	row, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		return domain.NoIdentity(), fmt.Errorf("lookup session: %w: %w", ErrStoreUnavailable, err)
	}
	if row == nil || row.Expired(s.now()) {
		return s.anonymous(), nil
	}

	if row.UserID == domain.DemoUserID {
		if !s.demoMode() {
			s.revoke(ctx, token)
			return domain.NoIdentity(), nil
		}
		return domain.DemoIdentity(), nil
	}

	user, err := s.users.GetByID(ctx, row.UserID)
	if err != nil {
		return domain.NoIdentity(), fmt.Errorf("lookup session user: %w: %w", ErrStoreUnavailable, err)
	}
	if user == nil {
		logger.FromContext(ctx).Debug().
			Err(ErrStaleSession).
			Int("user_id", row.UserID).
			Msg("Ignoring stale session")
		return domain.NoIdentity(), nil
	}

	return domain.RealIdentity(user.User()), nil
}

// revoke deletes a session that may no longer be used. Failures are logged
// only; the caller already treats the session as absent.
func (s *SessionService) revoke(ctx context.Context, token string) {
	if err := s.sessions.Delete(ctx, token); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Msg("Failed to delete revoked demo session")
	}
}

func (s *SessionService) anonymous() domain.Identity {
	if s.demoMode() {
		return domain.DemoIdentity()
	}
	return domain.NoIdentity()
}

// SignIn verifies the credentials and opens a session for the user.
func (s *SessionService) SignIn(ctx context.Context, req domain.LoginRequest) (string, domain.User, error) {
	ctx, span := middleware.StartSpan(ctx, "session.sign_in", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("username", req.Username),
	))
	defer span.End()

	row, err := s.creds.authenticate(ctx, req.Username, req.Password)
	if err != nil {
		outcome := "error"
		if errors.Is(err, ErrInvalidCredentials) {
			outcome = "rejected"
		}
		middleware.SignInTotal.WithLabelValues(outcome).Inc()
		return "", domain.User{}, err
	}

	token, err := s.open(ctx, row.ID)
	if err != nil {
		span.RecordError(err)
		middleware.SignInTotal.WithLabelValues("error").Inc()
		return "", domain.User{}, err
	}

	middleware.SignInTotal.WithLabelValues("success").Inc()
	span.AddEvent("user.authenticated")
	return token, row.User(), nil
}

// ActivateDemo opens a session bound to the demo sentinel. It fails with
// ErrDemoDisabled when demo mode is off.
func (s *SessionService) ActivateDemo(ctx context.Context) (string, error) {
	if !s.demoMode() {
		return "", ErrDemoDisabled
	}
	token, err := s.open(ctx, domain.DemoUserID)
	if err != nil {
		return "", err
	}
	middleware.SignInTotal.WithLabelValues("demo").Inc()
	return token, nil
}

// SignOut deletes the session identified by token, if any.
func (s *SessionService) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("sign out: %w: %w", ErrStoreUnavailable, err)
	}
	return nil
}

// TTL returns the lifetime of new sessions.
func (s *SessionService) TTL() time.Duration { return s.ttl }

// open creates a session for userID. Expired sessions are pruned first so
// the table stays bounded by the number of live sessions.
func (s *SessionService) open(ctx context.Context, userID int) (string, error) {
	now := s.now()
	if n, err := s.sessions.DeleteExpired(ctx, now); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Msg("Failed to prune expired sessions")
	} else if n > 0 {
		logger.FromContext(ctx).Debug().Int64("count", n).Msg("Pruned expired sessions")
	}

	token, err := newSessionToken()
	if err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	if err := s.sessions.Create(ctx, userID, token, now.Add(s.ttl)); err != nil {
		return "", fmt.Errorf("create session: %w: %w", ErrStoreUnavailable, err)
	}
	return token, nil
}

// newSessionToken returns 32 random bytes as hex.
func newSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
