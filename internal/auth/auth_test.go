package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	m := &Manager{Secret: []byte("secret"), AccessTTL: time.Hour, Issuer: "tdc-backend"}
	token, expires, err := m.NewAccessToken("u1", "admin@example.com", RoleAdmin)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.Equal(t, "admin@example.com", claims.Email)

	other := &Manager{Secret: []byte("other"), AccessTTL: time.Hour, Issuer: "tdc-backend"}
	_, err = other.Parse(token)
	assert.Error(t, err)
}

func TestExpiredToken(t *testing.T) {
	m := &Manager{Secret: []byte("secret"), AccessTTL: -time.Minute, Issuer: "tdc-backend"}
	token, _, err := m.NewAccessToken("u1", "", RoleAdmin)
	require.NoError(t, err)
	_, err = m.Parse(token)
	assert.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, "s3cret"))
	assert.Error(t, ComparePassword(hash, "wrong"))
	_, err = HashPassword("")
	assert.ErrorIs(t, err, ErrEmptyPassword)
	_, err = HashPassword(strings.Repeat("x", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
	assert.Error(t, ComparePassword("", "s3cret"))
}
