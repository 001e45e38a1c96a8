package domain

import "context"

// Demo identity constants. The demo user is synthesized per request and
// never stored; DemoUserID is distinct from every database-assigned id.
const (
	DemoUserID   = -1
	DemoUsername = "demo"
)

// User is the public view of an account. It never carries the password hash.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

// IdentityKind tags the variant held by an Identity.
type IdentityKind int

const (
	IdentityNone IdentityKind = iota
	IdentityReal
	IdentityDemo
)

func (k IdentityKind) String() string {
	switch k {
	case IdentityReal:
		return "real"
	case IdentityDemo:
		return "demo"
	default:
		return "none"
	}
}

// Identity is the request-scoped result of session resolution: a real
// user, the demo identity, or nobody. The zero value is no identity.
//
// Only a real identity exposes a user id through RealUser, so code that
// writes per-user data cannot reach the demo sentinel by accident.
type Identity struct {
	kind IdentityKind
	user User
}

// NoIdentity returns the unauthenticated identity.
func NoIdentity() Identity { return Identity{} }

// DemoIdentity returns the synthetic demo identity.
func DemoIdentity() Identity { return Identity{kind: IdentityDemo} }

// RealIdentity wraps a persisted user.
func RealIdentity(u User) Identity { return Identity{kind: IdentityReal, user: u} }

func (i Identity) Kind() IdentityKind { return i.kind }

// IsAuthenticated reports whether any identity, real or demo, is present.
func (i Identity) IsAuthenticated() bool { return i.kind != IdentityNone }

func (i Identity) IsDemo() bool { return i.kind == IdentityDemo }

// RealUser returns the persisted user behind a real identity.
func (i Identity) RealUser() (User, bool) {
	if i.kind != IdentityReal {
		return User{}, false
	}
	return i.user, true
}

// Display returns the user to show to the client: the real user, the
// synthetic demo user, or false when nobody is signed in.
func (i Identity) Display() (User, bool) {
	switch i.kind {
	case IdentityReal:
		return i.user, true
	case IdentityDemo:
		return User{ID: DemoUserID, Username: DemoUsername}, true
	default:
		return User{}, false
	}
}

type identityCtxKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, id)
}

// IdentityFromContext returns the identity stored by WithIdentity.
// The boolean is false when session resolution has not run.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityCtxKey{}).(Identity)
	return id, ok
}
