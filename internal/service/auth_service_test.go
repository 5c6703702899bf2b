package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajatc17/india-ecom/config"
	"github.com/rajatc17/india-ecom/internal/models"
)

func testAuthService() *AuthService {
	return &AuthService{
		cfg: config.AuthConfig{
			JWTSecret:     "test-secret",
			TokenTTLHours: 1,
			BcryptCost:    4,
		},
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "user@example.com", normalizeEmail("  User@Example.COM "))
	assert.Equal(t, "a@b.in", normalizeEmail("a@b.in"))
}

func TestIssueAndVerifyToken(t *testing.T) {
	as := testAuthService()
	user := &models.User{ID: "user-1", Email: "user@example.com", Role: models.RoleAdmin}

	result, err := as.issueToken(user)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), result.ExpiresAt, 5*time.Second)

	claims, err := as.VerifyToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	as := testAuthService()
	result, err := as.issueToken(&models.User{ID: "user-1", Role: models.RoleUser})
	require.NoError(t, err)

	other := testAuthService()
	other.cfg.JWTSecret = "different-secret"

	_, err = other.VerifyToken(result.Token)
	assert.Error(t, err)
}

func TestVerifyTokenGarbage(t *testing.T) {
	as := testAuthService()

	_, err := as.VerifyToken("not-a-token")
	assert.Error(t, err)
}

func TestValidRoles(t *testing.T) {
	assert.True(t, validRoles[models.RoleUser])
	assert.True(t, validRoles[models.RoleAdmin])
	assert.False(t, validRoles["superadmin"])
}
