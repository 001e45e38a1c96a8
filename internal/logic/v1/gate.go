package v1

import "github.com/programmeradu/ownai/internal/core/domain"

// Policy selects which identities an admission check accepts.
type Policy int

const (
	// PolicyStrict admits real users only.
	PolicyStrict Policy = iota
	// PolicyPermissive admits real users and the demo identity.
	PolicyPermissive
)

func (p Policy) String() string {
	if p == PolicyPermissive {
		return "permissive"
	}
	return "strict"
}

// Admission is the outcome of an admission check: either admitted with the
// identity, or rejected with ErrUnauthenticated or ErrDemoForbidden.
type Admission struct {
	identity domain.Identity
	reason   error
}

func admitted(id domain.Identity) Admission { return Admission{identity: id} }

func rejected(reason error) Admission { return Admission{reason: reason} }

// Admitted reports whether the protected operation may run.
func (a Admission) Admitted() bool { return a.reason == nil }

// Identity returns the admitted identity; it is NoIdentity on rejection.
func (a Admission) Identity() domain.Identity { return a.identity }

// Reason returns why the request was rejected, or nil.
func (a Admission) Reason() error { return a.reason }

// Strict admits only a real user.
func Strict(id domain.Identity) Admission {
	switch id.Kind() {
	case domain.IdentityReal:
		return admitted(id)
	case domain.IdentityDemo:
		return rejected(ErrDemoForbidden)
	default:
		return rejected(ErrUnauthenticated)
	}
}

// Permissive admits a real user or the demo identity.
func Permissive(id domain.Identity) Admission {
	if !id.IsAuthenticated() {
		return rejected(ErrUnauthenticated)
	}
	return admitted(id)
}

// Admit applies policy p to id.
func Admit(p Policy, id domain.Identity) Admission {
	if p == PolicyPermissive {
		return Permissive(id)
	}
	return Strict(id)
}
