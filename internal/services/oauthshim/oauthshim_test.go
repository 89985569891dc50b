package oauthshim

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/config"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/services/auth"
)

type memoryCodeStore struct {
	values map[string]string
}

func newMemoryCodeStore() *memoryCodeStore {
	return &memoryCodeStore{values: make(map[string]string)}
}

func (s *memoryCodeStore) SetString(_ context.Context, key, value string, _ time.Duration) error {
	s.values[key] = value
	return nil
}

func (s *memoryCodeStore) GetDel(_ context.Context, key string) (string, bool, error) {
	value, ok := s.values[key]
	if ok {
		delete(s.values, key)
	}
	return value, ok, nil
}

type stubIssuer struct{}

func (stubIssuer) IssueTokens(_ context.Context, userUID string) (*auth.TokenPair, error) {
	return &auth.TokenPair{AccessToken: "access-" + userUID, RefreshToken: "refresh-" + userUID}, nil
}

func (stubIssuer) RefreshTokens(_ context.Context, refreshToken string) (*auth.TokenPair, error) {
	return &auth.TokenPair{AccessToken: "new-access", RefreshToken: refreshToken}, nil
}

func testConfig() config.OAuthBridge {
	return config.OAuthBridge{
		ClientID:       "automation-client",
		ClientSecret:   "automation-secret",
		RedirectURIs:   []string{"https://hooks.example.com/oauth/callback"},
		ConsentPageURL: "https://app.example.com/consent",
		CodeTTL:        10 * time.Minute,
	}
}

func TestValidateAuthorizeRequest(t *testing.T) {
	svc := New(testConfig(), newMemoryCodeStore(), stubIssuer{})

	tests := []struct {
		name         string
		responseType string
		clientID     string
		redirectURI  string
		wantErr      error
	}{
		{"valid", "code", "automation-client", "https://hooks.example.com/oauth/callback", nil},
		{"wrong response type", "token", "automation-client", "https://hooks.example.com/oauth/callback", ErrUnsupportedResponseType},
		{"unknown client", "code", "other-client", "https://hooks.example.com/oauth/callback", ErrUnknownClient},
		{"redirect not allowed", "code", "automation-client", "https://evil.example.com/cb", ErrRedirectNotAllowed},
		{"missing redirect", "code", "automation-client", "", ErrRedirectNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.ValidateAuthorizeRequest(tt.responseType, tt.clientID, tt.redirectURI)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestIssueAndExchangeCode(t *testing.T) {
	store := newMemoryCodeStore()
	svc := New(testConfig(), store, stubIssuer{})
	ctx := context.Background()

	redirectTo, err := svc.IssueCode(ctx, "user-1", "https://hooks.example.com/oauth/callback", "xyz")
	require.NoError(t, err)

	parsed, err := url.Parse(redirectTo)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(redirectTo, "https://hooks.example.com/oauth/callback"))
	assert.Equal(t, "xyz", parsed.Query().Get("state"))

	code := parsed.Query().Get("code")
	require.NotEmpty(t, code)

	tokens, err := svc.ExchangeCode(ctx, "automation-client", "automation-secret", code, "https://hooks.example.com/oauth/callback")
	require.NoError(t, err)
	assert.Equal(t, "access-user-1", tokens.AccessToken)
	assert.Equal(t, "bearer", tokens.TokenType)
}

func TestExchangeCode_SingleUse(t *testing.T) {
	store := newMemoryCodeStore()
	svc := New(testConfig(), store, stubIssuer{})
	ctx := context.Background()

	redirectTo, err := svc.IssueCode(ctx, "user-1", "https://hooks.example.com/oauth/callback", "")
	require.NoError(t, err)
	parsed, _ := url.Parse(redirectTo)
	code := parsed.Query().Get("code")

	_, err = svc.ExchangeCode(ctx, "automation-client", "automation-secret", code, "https://hooks.example.com/oauth/callback")
	require.NoError(t, err)

	// Повторный обмен того же кода отклоняется.
	_, err = svc.ExchangeCode(ctx, "automation-client", "automation-secret", code, "https://hooks.example.com/oauth/callback")
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestExchangeCode_ClientChecks(t *testing.T) {
	svc := New(testConfig(), newMemoryCodeStore(), stubIssuer{})
	ctx := context.Background()

	_, err := svc.ExchangeCode(ctx, "bad-client", "automation-secret", "code", "https://hooks.example.com/oauth/callback")
	assert.ErrorIs(t, err, ErrUnknownClient)

	_, err = svc.ExchangeCode(ctx, "automation-client", "bad-secret", "code", "https://hooks.example.com/oauth/callback")
	assert.ErrorIs(t, err, ErrInvalidClientSecret)

	_, err = svc.ExchangeCode(ctx, "automation-client", "automation-secret", "code", "https://evil.example.com/cb")
	assert.ErrorIs(t, err, ErrRedirectNotAllowed)

	_, err = svc.ExchangeCode(ctx, "automation-client", "automation-secret", "unknown-code", "https://hooks.example.com/oauth/callback")
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestIssueCode_RejectsForeignRedirect(t *testing.T) {
	svc := New(testConfig(), newMemoryCodeStore(), stubIssuer{})

	_, err := svc.IssueCode(context.Background(), "user-1", "https://evil.example.com/cb", "")
	assert.ErrorIs(t, err, ErrRedirectNotAllowed)
}

func TestConsentURL(t *testing.T) {
	svc := New(testConfig(), newMemoryCodeStore(), stubIssuer{})

	consent := svc.ConsentURL("https://hooks.example.com/oauth/callback", "abc")
	parsed, err := url.Parse(consent)
	require.NoError(t, err)
	assert.Equal(t, "https://hooks.example.com/oauth/callback", parsed.Query().Get("redirect_uri"))
	assert.Equal(t, "abc", parsed.Query().Get("state"))
}
