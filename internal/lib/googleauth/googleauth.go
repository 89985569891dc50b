// Package googleauth обменивает сохранённый refresh-токен Gmail
// на свежий access-токен через OAuth2-эндпоинт Google.
package googleauth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Exchanger хранит клиентские данные приложения в Google Cloud.
type Exchanger struct {
	clientID     string
	clientSecret string
}

// NewExchanger создает новый Exchanger.
func NewExchanger(clientID, clientSecret string) *Exchanger {
	return &Exchanger{clientID: clientID, clientSecret: clientSecret}
}

// RefreshAccessToken возвращает свежий access-токен для refresh-токена пользователя.
func (e *Exchanger) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	const op = "googleauth.RefreshAccessToken"

	cfg := &oauth2.Config{
		ClientID:     e.clientID,
		ClientSecret: e.clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{"https://mail.google.com/"},
	}

	source := cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := source.Token()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("%s: empty access token in response", op)
	}
	return token.AccessToken, nil
}
