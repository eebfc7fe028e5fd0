package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	cause := errors.New("stripe: card declined")

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validation("bad csv"), KindValidation},
		{"conflict wrapped", fmt.Errorf("auth.Register: %w", Conflict("Username already exists")), KindConflict},
		{"authentication", Authentication("invalid username or password"), KindAuthentication},
		{"authorization", Authorization("Please login"), KindAuthorization},
		{"security", Security("Webhook signature verification failed", cause), KindSecurity},
		{"provider", Provider("Failed to cancel subscription", cause), KindProvider},
		{"plain error", cause, KindInternal},
		{"nil", nil, KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestError_UnwrapAndMessage(t *testing.T) {
	cause := errors.New("timeout")
	err := fmt.Errorf("billing.Cancel: %w", Provider("Failed to cancel subscription", cause))

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "Failed to cancel subscription: timeout")

	msg, ok := Message(err)
	assert.True(t, ok)
	assert.Equal(t, "Failed to cancel subscription", msg)

	_, ok = Message(cause)
	assert.False(t, ok)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "validation", KindValidation.String())
	assert.Equal(t, "provider", KindProvider.String())
	assert.Equal(t, "internal", Kind(99).String())
}
