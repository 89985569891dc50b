package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTMaker_GenerateAndParseToken_ValidCases(t *testing.T) {
	secretKey := "test_secret_key_1234567890"
	accessTTL := 15 * time.Minute
	refreshTTL := 30 * 24 * time.Hour
	maker := NewJWTMaker(secretKey, accessTTL, refreshTTL)

	tests := []struct {
		name    string
		userUID string
		email   string
	}{
		{
			name:    "regular user",
			userUID: "550e8400-e29b-41d4-a716-446655440000",
			email:   "user@example.com",
		},
		{
			name:    "email with plus sign",
			userUID: "6f1b1d2a-0000-4000-8000-000000000001",
			email:   "billing+test@example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := maker.GenerateAccessToken(tt.userUID, tt.email)
			require.NoError(t, err)
			assert.NotEmpty(t, token)

			claims, err := maker.ParseToken(token)
			require.NoError(t, err)

			assert.Equal(t, tt.userUID, claims.Subject)
			assert.Equal(t, tt.email, claims.Email)
			assert.Equal(t, TokenTypeAccess, claims.TokenType)
			assert.WithinDuration(t, time.Now(), claims.IssuedAt.Time, time.Second)
			assert.WithinDuration(t, time.Now().Add(accessTTL), claims.ExpiresAt.Time, time.Second)
		})
	}
}

func TestJWTMaker_RefreshTokenType(t *testing.T) {
	maker := NewJWTMaker("test_secret_key", 15*time.Minute, 30*24*time.Hour)

	token, err := maker.GenerateRefreshToken("uid-1", "user@example.com")
	require.NoError(t, err)

	claims, err := maker.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, claims.TokenType)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), claims.ExpiresAt.Time, time.Second)
}

func TestJWTMaker_ParseToken_InvalidTokens(t *testing.T) {
	secretKey := "test_secret_key_1234567890"
	maker := NewJWTMaker(secretKey, 15*time.Minute, time.Hour)

	validToken, err := maker.GenerateAccessToken("uid-1", "user@example.com")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{
			name:  "empty token",
			token: "",
		},
		{
			name:  "malformed token",
			token: "invalid.token.here",
		},
		{
			name:  "expired token",
			token: createExpiredToken(t, secretKey),
		},
		{
			name:  "wrong secret key",
			token: createTokenWithWrongSecret(t),
		},
		{
			name:  "tampered token",
			token: validToken + "tampered",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := maker.ParseToken(tt.token)
			assert.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}

func TestJWTMaker_DifferentSecretKeys(t *testing.T) {
	maker1 := NewJWTMaker("first_secret_key", 15*time.Minute, time.Hour)
	maker2 := NewJWTMaker("different_secret_key", 15*time.Minute, time.Hour)

	token, err := maker1.GenerateAccessToken("uid-1", "user@example.com")
	require.NoError(t, err)

	claims, err := maker2.ParseToken(token)
	assert.Error(t, err)
	assert.Nil(t, claims)

	claims, err = maker1.ParseToken(token)
	assert.NoError(t, err)
	assert.NotNil(t, claims)
}

func createExpiredToken(t *testing.T, secretKey string) string {
	maker := NewJWTMaker(secretKey, -time.Hour, -time.Hour)
	token, err := maker.GenerateAccessToken("uid-1", "user@example.com")
	require.NoError(t, err)
	return token
}

func createTokenWithWrongSecret(t *testing.T) string {
	wrongMaker := NewJWTMaker("wrong_secret_key", 15*time.Minute, time.Hour)
	token, err := wrongMaker.GenerateAccessToken("uid-1", "user@example.com")
	require.NoError(t, err)
	return token
}
