// internal/common/auth/auth_test.go
package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churnshield/internal/common/config"
)

func TestJWTIssueAndValidate(t *testing.T) {
	m := NewJWTManager(config.AuthConfig{JWTSecret: "unit-test-secret", TokenTTL: 10, Issuer: "churnshield"})

	token, err := m.Issue("admin", "Admin User")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, "Admin User", claims.FullName)
	assert.Equal(t, "churnshield", claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), claims.ExpiresAt.Time, time.Minute)
}

func TestJWTValidate_WrongSecret(t *testing.T) {
	issuer := NewJWTManager(config.AuthConfig{JWTSecret: "secret-a", TokenTTL: 10})
	verifier := NewJWTManager(config.AuthConfig{JWTSecret: "secret-b", TokenTTL: 10})

	token, err := issuer.Issue("admin", "")
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTValidate_Garbage(t *testing.T) {
	m := NewJWTManager(config.AuthConfig{JWTSecret: "s", TokenTTL: 10})
	_, err := m.Validate("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_FallbackSecret(t *testing.T) {
	m := NewJWTManager(config.AuthConfig{})

	token, err := m.Issue("admin", "")
	require.NoError(t, err)
	_, err = m.Validate(token)
	assert.NoError(t, err)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", hash)

	assert.True(t, VerifyPassword(hash, "s3cret!"))
	assert.False(t, VerifyPassword(hash, "wrong"))
	assert.False(t, VerifyPassword("not-a-hash", "s3cret!"))
}
