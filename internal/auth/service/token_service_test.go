package service_test

import (
	"testing"
	"time"

	"github.com/consulio/auth-service/internal/auth/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService() *service.TokenService {
	return service.NewTokenService("access-secret", "refresh-secret", 15, 20)
}

func TestTokenService_GeneratePair(t *testing.T) {
	ts := newTestTokenService()

	pair, err := ts.GeneratePair("user-id", "test@example.com", "user")

	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	assert.True(t, pair.RefreshExpiresAt.After(pair.AccessExpiresAt))
}

func TestTokenService_VerifyRoundTrip(t *testing.T) {
	ts := newTestTokenService()

	pair, err := ts.GeneratePair("user-id", "test@example.com", "user")
	require.NoError(t, err)

	access, err := ts.Verify(pair.AccessToken, service.TokenClassAccess)
	require.NoError(t, err)
	assert.Equal(t, "user-id", access.UserID)
	assert.Equal(t, "test@example.com", access.Email)
	assert.Equal(t, "user", access.Role)
	assert.Equal(t, string(service.TokenClassAccess), access.TokenType)
	assert.NotEmpty(t, access.ID)

	refresh, err := ts.Verify(pair.RefreshToken, service.TokenClassRefresh)
	require.NoError(t, err)
	assert.Equal(t, string(service.TokenClassRefresh), refresh.TokenType)

	// The two tokens carry independent jtis.
	assert.NotEqual(t, access.ID, refresh.ID)
}

func TestTokenService_VerifyRejectsWrongClass(t *testing.T) {
	ts := newTestTokenService()

	pair, err := ts.GeneratePair("user-id", "test@example.com", "user")
	require.NoError(t, err)

	_, err = ts.Verify(pair.AccessToken, service.TokenClassRefresh)
	assert.Error(t, err)

	_, err = ts.Verify(pair.RefreshToken, service.TokenClassAccess)
	assert.Error(t, err)
}

func TestTokenService_VerifyRejectsWrongClassWithSharedSecret(t *testing.T) {
	// With both secrets equal the signature check alone cannot tell the
	// classes apart; the token_type claim must.
	ts := service.NewTokenService("same-secret", "same-secret", 15, 20)

	pair, err := ts.GeneratePair("user-id", "test@example.com", "user")
	require.NoError(t, err)

	_, err = ts.Verify(pair.RefreshToken, service.TokenClassAccess)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "token class")
}

func TestTokenService_VerifyRejectsTamperedToken(t *testing.T) {
	ts := newTestTokenService()

	pair, err := ts.GeneratePair("user-id", "test@example.com", "user")
	require.NoError(t, err)

	tampered := pair.AccessToken[:len(pair.AccessToken)-2] + "xx"

	_, err = ts.Verify(tampered, service.TokenClassAccess)
	assert.Error(t, err)
}

func TestTokenService_VerifyRejectsExpiredToken(t *testing.T) {
	ts := service.NewTokenService("access-secret", "refresh-secret", -1, -1)

	pair, err := ts.GeneratePair("user-id", "test@example.com", "user")
	require.NoError(t, err)

	_, err = ts.Verify(pair.AccessToken, service.TokenClassAccess)
	assert.Error(t, err)
}

func TestTokenService_DecodeWithoutVerification(t *testing.T) {
	ts := newTestTokenService()

	pair, err := ts.GeneratePair("user-id", "test@example.com", "user")
	require.NoError(t, err)

	claims := ts.Decode(pair.AccessToken)
	require.NotNil(t, claims)
	assert.Equal(t, "user-id", claims.UserID)
	assert.NotNil(t, claims.ExpiresAt)

	assert.Nil(t, ts.Decode("not-a-jwt"))
}

func TestTokenService_Getters(t *testing.T) {
	ts := newTestTokenService()

	assert.Equal(t, 15*time.Minute, ts.GetAccessTokenExpiry())
	assert.Equal(t, 20*time.Minute, ts.GetRefreshTokenExpiry())
}
