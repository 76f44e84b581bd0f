package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	id := uuid.New()

	token, err := m.GenerateToken(id, "ana@example.com", "Ana", "STAFF", []string{"order:create"}, "v1")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, "Ana", claims.Name)
	assert.Equal(t, []string{"order:create"}, claims.Privileges)
	assert.Equal(t, "v1", claims.TokenVersion)
}

func TestRejectsForeignAndExpiredTokens(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	other := NewManager("another-secret", time.Hour)

	token, err := other.GenerateToken(uuid.New(), "x@example.com", "X", "STAFF", nil, "v1")
	require.NoError(t, err)
	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	token, err = m.GenerateToken(uuid.New(), "x@example.com", "X", "STAFF", nil, "v1")
	require.NoError(t, err)
	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.ValidateToken("")
	assert.ErrorIs(t, err, ErrMissingToken)
}
