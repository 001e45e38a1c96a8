package v1

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/programmeradu/ownai/internal/core/domain"
)

// --- users ---

type fakeUsers struct {
	mu     sync.Mutex
	byName map[string]*domain.UserRow
	nextID int
	err    error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byName: map[string]*domain.UserRow{}, nextID: 1}
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*domain.UserRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if r, ok := f.byName[username]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int) (*domain.UserRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, r := range f.byName {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) Create(_ context.Context, username, hash string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	if _, ok := f.byName[username]; ok {
		return 0, domain.ErrDuplicate
	}
	id := f.nextID
	f.nextID++
	f.byName[username] = &domain.UserRow{ID: id, Username: username, PasswordHash: hash}
	return id, nil
}

func (f *fakeUsers) UpdatePasswordHash(_ context.Context, username, hash string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	r, ok := f.byName[username]
	if !ok {
		return false, nil
	}
	r.PasswordHash = hash
	return true, nil
}

func (f *fakeUsers) delete(username string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byName, username)
}

func (f *fakeUsers) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byName)
}

// --- sessions ---

type fakeSessions struct {
	mu      sync.Mutex
	rows    map[string]domain.SessionRow
	err     error
	creates int
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{rows: map[string]domain.SessionRow{}}
}

func (f *fakeSessions) Create(_ context.Context, userID int, token string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.creates++
	f.rows[token] = domain.SessionRow{Token: token, UserID: userID, ExpiresAt: expiresAt}
	return nil
}

func (f *fakeSessions) GetByToken(_ context.Context, token string) (*domain.SessionRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	r, ok := f.rows[token]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (f *fakeSessions) Delete(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	delete(f.rows, token)
	return nil
}

func (f *fakeSessions) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	var n int64
	for token, r := range f.rows {
		if r.Expired(now) {
			delete(f.rows, token)
			n++
		}
	}
	return n, nil
}

func (f *fakeSessions) has(token string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.rows[token]
	return ok
}

// --- settings ---

type settingKey struct {
	userID int
	domain string
	name   string
}

// fakeSettings stages batch writes on a copy and swaps it in on success,
// so a failed batch leaves no trace.
type fakeSettings struct {
	mu      sync.Mutex
	rows    map[settingKey]string
	failOn  string
	readErr error
	writes  int
}

func newFakeSettings() *fakeSettings {
	return &fakeSettings{rows: map[settingKey]string{}}
}

func (f *fakeSettings) GetAll(_ context.Context, userID int) (domain.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	var flat []domain.Setting
	for k, v := range f.rows {
		if k.userID == userID {
			flat = append(flat, domain.Setting{UserID: k.userID, Domain: k.domain, Name: k.name, Value: v})
		}
	}
	return domain.GroupSettings(flat), nil
}

func (f *fakeSettings) UpsertOrClear(ctx context.Context, userID int, dom, name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.apply(f.rows, userID, dom, name, value)
}

func (f *fakeSettings) Batch(ctx context.Context, fn func(ctx context.Context, w domain.SettingsWriter) error) error {
	f.mu.Lock()
	staged := make(map[settingKey]string, len(f.rows))
	for k, v := range f.rows {
		staged[k] = v
	}
	f.mu.Unlock()

	if err := fn(ctx, &stagedWriter{f: f, rows: staged}); err != nil {
		return err
	}

	f.mu.Lock()
	f.rows = staged
	f.mu.Unlock()
	return nil
}

func (f *fakeSettings) apply(rows map[settingKey]string, userID int, dom, name, value string) error {
	if f.failOn != "" && name == f.failOn {
		return fmt.Errorf("write %s: disk full", name)
	}
	if userID == domain.DemoUserID {
		return fmt.Errorf("foreign key violation for user %d", userID)
	}
	f.writes++
	k := settingKey{userID: userID, domain: dom, name: name}
	value = strings.TrimSpace(value)
	if value == "" {
		delete(rows, k)
		return nil
	}
	rows[k] = value
	return nil
}

type stagedWriter struct {
	f    *fakeSettings
	rows map[settingKey]string
}

func (w *stagedWriter) UpsertOrClear(_ context.Context, userID int, dom, name, value string) error {
	return w.f.apply(w.rows, userID, dom, name, value)
}

// --- fixtures ---

type fixture struct {
	users    *fakeUsers
	sessions *fakeSessions
	settings *fakeSettings
	creds    *CredentialStore
	svc      *SessionService
	account  *SettingsService
	demo     bool
}

const (
	testUser     = "test"
	testPassword = "test-password"
)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		users:    newFakeUsers(),
		sessions: newFakeSessions(),
		settings: newFakeSettings(),
	}
	creds, err := NewCredentialStore(f.users, bcrypt.MinCost)
	require.NoError(t, err)
	f.creds = creds
	f.svc = NewSessionService(f.users, f.sessions, f.creds, func() bool { return f.demo }, time.Hour)
	f.account = NewSettingsService(f.creds, f.settings, []string{"OPENAI_API_KEY", "COHERE_API_KEY", "WRITER_ORG_ID"})

	_, err = f.creds.AddUser(context.Background(), testUser, testPassword)
	require.NoError(t, err)
	return f
}

func (f *fixture) realIdentity(t *testing.T) domain.Identity {
	t.Helper()
	row, err := f.users.GetByUsername(context.Background(), testUser)
	require.NoError(t, err)
	require.NotNil(t, row)
	return domain.RealIdentity(row.User())
}
