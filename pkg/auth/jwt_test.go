package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() JWTService {
	return NewJWTService(Config{
		Secret:        "access-secret",
		RefreshSecret: "refresh-secret",
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()

	token, err := svc.GenerateAccessToken(userID, "h.benali", "PHYSICIAN")
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "h.benali", claims.Username)
	assert.Equal(t, "PHYSICIAN", claims.Role)
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()

	access, err := svc.GenerateAccessToken(userID, "h.benali", "PHYSICIAN")
	require.NoError(t, err)
	refresh, err := svc.GenerateRefreshToken(userID, "h.benali", "PHYSICIAN")
	require.NoError(t, err)

	_, err = svc.ValidateRefreshToken(access)
	assert.Error(t, err)
	_, err = svc.ValidateAccessToken(refresh)
	assert.Error(t, err)
}

func TestExpiredTokenIsRejected(t *testing.T) {
	svc := NewJWTService(Config{
		Secret:        "access-secret",
		RefreshSecret: "refresh-secret",
		Expiry:        -time.Minute,
	})

	token, err := svc.GenerateAccessToken(uuid.New(), "h.benali", "PHYSICIAN")
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestTamperedTokenIsRejected(t *testing.T) {
	svc := newTestService()

	token, err := svc.GenerateAccessToken(uuid.New(), "h.benali", "PHYSICIAN")
	require.NoError(t, err)

	other := NewJWTService(Config{Secret: "different-secret", RefreshSecret: "different-refresh"})
	_, err = other.ValidateAccessToken(token)
	assert.Error(t, err)
}
