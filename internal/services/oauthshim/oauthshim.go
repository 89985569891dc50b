// Package oauthshim реализует минимальный OAuth2-провайдер поверх
// собственной аутентификации сервиса. Платформа автоматизации видит
// стандартный authorization code flow: страница согласия, одноразовый
// код и обмен кода на пару JWT.
package oauthshim

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/config"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/services/auth"
)

// Ошибки протокола OAuth2, отдаваемые клиенту платформы автоматизации.
var (
	ErrUnsupportedResponseType = errors.New("unsupported response_type, expected 'code'")
	ErrUnknownClient           = errors.New("unknown client_id")
	ErrInvalidClientSecret     = errors.New("invalid client_secret")
	ErrRedirectNotAllowed      = errors.New("redirect_uri is not in the allow-list")
	ErrInvalidCode             = errors.New("invalid or expired authorization code")
)

const codeKeyPrefix = "oauth_code:"

// CodeStore хранит одноразовые авторизационные коды с TTL.
// GetDel атомарно читает и удаляет код: повторный обмен невозможен.
type CodeStore interface {
	SetString(ctx context.Context, key, value string, expiration time.Duration) error
	GetDel(ctx context.Context, key string) (string, bool, error)
}

// TokenIssuer выдает и обновляет пары JWT для аутентифицированных пользователей.
type TokenIssuer interface {
	IssueTokens(ctx context.Context, userUID string) (*auth.TokenPair, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*auth.TokenPair, error)
}

// Service — OAuth-мост: единственный зарегистрированный клиент,
// белый список redirect_uri и одноразовые коды в Redis.
type Service struct {
	cfg    config.OAuthBridge
	codes  CodeStore
	issuer TokenIssuer
}

// New создает новый Service.
func New(cfg config.OAuthBridge, codes CodeStore, issuer TokenIssuer) *Service {
	return &Service{
		cfg:    cfg,
		codes:  codes,
		issuer: issuer,
	}
}

// TokenResponse — ответ token-эндпоинта в формате RFC 6749.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// ValidateAuthorizeRequest проверяет параметры authorization-запроса:
// тип ответа, клиента и redirect_uri из белого списка.
func (s *Service) ValidateAuthorizeRequest(responseType, clientID, redirectURI string) error {
	if responseType != "code" {
		return ErrUnsupportedResponseType
	}
	if clientID != s.cfg.ClientID {
		return ErrUnknownClient
	}
	if redirectURI == "" || !s.redirectAllowed(redirectURI) {
		return ErrRedirectNotAllowed
	}
	return nil
}

// ConsentURL возвращает адрес страницы согласия с прокинутыми параметрами
// исходного authorization-запроса.
func (s *Service) ConsentURL(redirectURI, state string) string {
	consent, err := url.Parse(s.cfg.ConsentPageURL)
	if err != nil {
		return s.cfg.ConsentPageURL
	}
	q := consent.Query()
	q.Set("redirect_uri", redirectURI)
	if state != "" {
		q.Set("state", state)
	}
	consent.RawQuery = q.Encode()
	return consent.String()
}

// IssueCode выдает одноразовый код для аутентифицированного пользователя
// и возвращает redirect_uri с добавленными code и state.
func (s *Service) IssueCode(ctx context.Context, userUID, redirectURI, state string) (string, error) {
	const op = "oauthshim.IssueCode"

	if !s.redirectAllowed(redirectURI) {
		return "", ErrRedirectNotAllowed
	}

	code := uuid.NewString()
	if err := s.codes.SetString(ctx, codeKeyPrefix+code, userUID, s.cfg.CodeTTL); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	target, err := url.Parse(redirectURI)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	q := target.Query()
	q.Set("code", code)
	if state != "" {
		q.Set("state", state)
	}
	target.RawQuery = q.Encode()
	return target.String(), nil
}

// ExchangeCode обменивает одноразовый код на пару JWT. Код удаляется
// атомарно при чтении: повторная попытка обмена отклоняется.
func (s *Service) ExchangeCode(ctx context.Context, clientID, clientSecret, code, redirectURI string) (*TokenResponse, error) {
	const op = "oauthshim.ExchangeCode"

	if clientID != s.cfg.ClientID {
		return nil, ErrUnknownClient
	}
	if clientSecret != s.cfg.ClientSecret {
		return nil, ErrInvalidClientSecret
	}
	if !s.redirectAllowed(redirectURI) {
		return nil, ErrRedirectNotAllowed
	}

	userUID, found, err := s.codes.GetDel(ctx, codeKeyPrefix+code)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return nil, ErrInvalidCode
	}

	pair, err := s.issuer.IssueTokens(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.tokenResponse(pair), nil
}

// Refresh обменивает refresh-токен на новую пару JWT.
func (s *Service) Refresh(ctx context.Context, clientID, clientSecret, refreshToken string) (*TokenResponse, error) {
	const op = "oauthshim.Refresh"

	if clientID != s.cfg.ClientID {
		return nil, ErrUnknownClient
	}
	if clientSecret != s.cfg.ClientSecret {
		return nil, ErrInvalidClientSecret
	}

	pair, err := s.issuer.RefreshTokens(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.tokenResponse(pair), nil
}

func (s *Service) tokenResponse(pair *auth.TokenPair) *TokenResponse {
	return &TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
		ExpiresIn:    3600,
	}
}

func (s *Service) redirectAllowed(redirectURI string) bool {
	for _, allowed := range s.cfg.RedirectURIs {
		if redirectURI == allowed {
			return true
		}
	}
	return false
}
