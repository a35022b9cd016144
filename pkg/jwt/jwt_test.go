package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager_EmptySecret(t *testing.T) {
	t.Parallel()

	_, err := NewManager("", time.Hour, "wes-chat")
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestIssueAndValidate(t *testing.T) {
	t.Parallel()

	m, err := NewManager("secret", time.Hour, "wes-chat")
	require.NoError(t, err)

	token, err := m.Issue("user-1")
	require.NoError(t, err)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "wes-chat", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestIssue_TokensAreDistinct(t *testing.T) {
	t.Parallel()

	m, err := NewManager("secret", 0, "")
	require.NoError(t, err)

	a, err := m.Issue("user-1")
	require.NoError(t, err)
	b, err := m.Issue("user-1")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestValidate_Rejects(t *testing.T) {
	t.Parallel()

	m, err := NewManager("secret", time.Hour, "wes-chat")
	require.NoError(t, err)
	other, err := NewManager("other-secret", time.Hour, "wes-chat")
	require.NoError(t, err)
	foreignIssuer, err := NewManager("secret", time.Hour, "someone-else")
	require.NoError(t, err)

	forged, err := other.Issue("user-1")
	require.NoError(t, err)
	wrongIssuer, err := foreignIssuer.Issue("user-1")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-jwt"},
		{name: "empty", token: ""},
		{name: "wrong secret", token: forged},
		{name: "wrong issuer", token: wrongIssuer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := m.Validate(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestValidate_Expired(t *testing.T) {
	t.Parallel()

	m, err := NewManager("secret", time.Minute, "wes-chat")
	require.NoError(t, err)

	issuedAt := time.Now().Add(-time.Hour)
	m.now = func() time.Time { return issuedAt }
	token, err := m.Issue("user-1")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Validate(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}
