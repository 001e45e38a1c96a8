package v1

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/programmeradu/ownai/internal/core/domain"
)

func TestGate(t *testing.T) {
	realID := domain.RealIdentity(domain.User{ID: 1, Username: "test"})

	tests := []struct {
		name   string
		policy Policy
		id     domain.Identity
		want   error
	}{
		{"strict rejects nobody", PolicyStrict, domain.NoIdentity(), ErrUnauthenticated},
		{"strict rejects demo", PolicyStrict, domain.DemoIdentity(), ErrDemoForbidden},
		{"strict admits real", PolicyStrict, realID, nil},
		{"permissive rejects nobody", PolicyPermissive, domain.NoIdentity(), ErrUnauthenticated},
		{"permissive admits demo", PolicyPermissive, domain.DemoIdentity(), nil},
		{"permissive admits real", PolicyPermissive, realID, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Admit(tt.policy, tt.id)
			if tt.want != nil {
				assert.False(t, a.Admitted())
				assert.ErrorIs(t, a.Reason(), tt.want)
				assert.False(t, a.Identity().IsAuthenticated())
				return
			}
			assert.True(t, a.Admitted())
			assert.NoError(t, a.Reason())
			assert.Equal(t, tt.id, a.Identity())
		})
	}
}

func TestPolicyString(t *testing.T) {
	assert.Equal(t, "strict", PolicyStrict.String())
	assert.Equal(t, "permissive", PolicyPermissive.String())
}
