package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "nil", err: nil, want: ""},
		{name: "user not found", err: ErrUserNotFound, want: KindUserNotFound},
		{name: "wrapped not authenticated", err: fmt.Errorf("session s1: %w", ErrNotAuthenticated), want: KindNotAuthenticated},
		{name: "permission denied", err: Denied("participant", "view_companies"), want: KindPermissionDenied},
		{name: "invalid filter", err: InvalidFilter("bad field %q", "x"), want: KindInvalidFilter},
		{name: "backend", err: Backend(errors.New("timeout")), want: KindBackend},
		{name: "other", err: errors.New("boom"), want: KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestBackend(t *testing.T) {
	t.Run("nil cause", func(t *testing.T) {
		assert.NoError(t, Backend(nil))
	})

	t.Run("unwraps to cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := Backend(cause)
		require.Error(t, err)
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, "backend error: connection refused", err.Error())
	})

	t.Run("does not double wrap", func(t *testing.T) {
		inner := Backend(errors.New("x"))
		outer := Backend(fmt.Errorf("query: %w", inner))
		assert.Same(t, inner, outer)
	})
}

func TestPermissionDeniedMessage(t *testing.T) {
	assert.Equal(t,
		`permission denied: role "advisor" lacks "view_participants"`,
		Denied("advisor", "view_participants").Error())
	assert.Equal(t,
		`permission denied: role "company_admin" cannot access company "C3"`,
		DeniedResource("company_admin", "view_participants", `company "C3"`).Error())
}
