package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func newTestGate() *Gate {
	return NewGate(secret, "quill-test")
}

func TestVerifyValidToken(t *testing.T) {
	g := newTestGate()
	token, err := g.Issue(Identity{
		UserID:      "user-1",
		Email:       "user@example.com",
		Roles:       []string{"reviewer"},
		Permissions: []string{PermUpload, PermView},
	}, time.Minute)
	require.NoError(t, err)

	id, err := g.Verify(token, PermUpload)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id.UserID)
	assert.Equal(t, "user@example.com", id.Email)
	assert.True(t, id.HasPermission(PermView))
	assert.False(t, id.IsAdmin())
}

func TestVerifyMissingToken(t *testing.T) {
	g := newTestGate()
	_, err := g.Verify("", PermUpload)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyExpiredToken(t *testing.T) {
	g := newTestGate()
	token, err := g.Issue(Identity{UserID: "user-1", Permissions: []string{PermUpload}}, -time.Minute)
	require.NoError(t, err)

	_, err = g.Verify(token, PermUpload)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyWrongSecret(t *testing.T) {
	other := NewGate([]byte("other-secret"), "quill-test")
	token, err := other.Issue(Identity{UserID: "user-1", Permissions: []string{PermUpload}}, time.Minute)
	require.NoError(t, err)

	_, err = newTestGate().Verify(token, PermUpload)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyUnderScopedToken(t *testing.T) {
	g := newTestGate()
	token, err := g.Issue(Identity{UserID: "user-1", Permissions: []string{PermView}}, time.Minute)
	require.NoError(t, err)

	_, err = g.Verify(token, PermContinue)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	// Authentication alone still succeeds.
	id, err := g.Verify(token, "")
	require.NoError(t, err)
	assert.Equal(t, "user-1", id.UserID)
}

func TestVerifyAdminRole(t *testing.T) {
	g := newTestGate()
	token, err := g.Issue(Identity{UserID: "admin-1", Roles: []string{RoleAdmin}, Permissions: []string{PermView}}, time.Minute)
	require.NoError(t, err)

	id, err := g.Verify(token, PermView)
	require.NoError(t, err)
	assert.True(t, id.IsAdmin())
}
