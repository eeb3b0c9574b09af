package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tokenString, err := GenerateAccessToken(42, "malika", true)
	require.NoError(t, err)

	claims, err := ValidateAccessToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "malika", claims.Username)
	assert.True(t, claims.IsStaff)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	tokenString, err := GenerateRefreshToken(42)
	require.NoError(t, err)

	claims, err := ValidateRefreshToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
}

// Access and refresh tokens carry different issuers, so neither kind is
// accepted where the other is expected. In particular an access token must
// not work against the refresh endpoint.
func TestTokenKindsAreNotInterchangeable(t *testing.T) {
	accessToken, err := GenerateAccessToken(7, "dilnoza", false)
	require.NoError(t, err)
	refreshToken, err := GenerateRefreshToken(7)
	require.NoError(t, err)

	_, err = ValidateRefreshToken(accessToken)
	assert.Error(t, err, "access token must not validate as a refresh token")

	_, err = ValidateAccessToken(refreshToken)
	assert.Error(t, err, "refresh token must not validate as an access token")
}

func TestValidateAccessToken_Garbage(t *testing.T) {
	_, err := ValidateAccessToken("not-a-token")
	assert.Error(t, err)
}
