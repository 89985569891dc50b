// Package token реализует token-эндпоинт OAuth-моста.
//
// Принимает form-данные по RFC 6749 и поддерживает два grant_type:
// authorization_code (обмен одноразового кода) и refresh_token.
package token

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/http/response"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/lib/sl"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/services/oauthshim"
)

// Handler управляет HTTP-запросами token-эндпоинта.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс OAuth-моста для обмена кодов и refresh-токенов.
type Service interface {
	ExchangeCode(ctx context.Context, clientID, clientSecret, code, redirectURI string) (*oauthshim.TokenResponse, error)
	Refresh(ctx context.Context, clientID, clientSecret, refreshToken string) (*oauthshim.TokenResponse, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary OAuth token-эндпоинт
// @Description Обменивает одноразовый код или refresh-токен на пару JWT.
// @Tags OAuth
// @Accept  x-www-form-urlencoded
// @Produce  json
// @Param grant_type formData string true "authorization_code или refresh_token"
// @Param client_id formData string true "Идентификатор клиента"
// @Param client_secret formData string true "Секрет клиента"
// @Param code formData string false "Одноразовый код (authorization_code)"
// @Param redirect_uri formData string false "Адрес возврата (authorization_code)"
// @Param refresh_token formData string false "Refresh-токен (refresh_token)"
// @Success 200 {object} oauthshim.TokenResponse "Пара токенов"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос или код"
// @Failure 401 {object} response.ErrorResponse "Неверные данные клиента"
// @Router /oauth/token [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.oauth.token"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if err := r.ParseForm(); err != nil {
		log.Error("failed to parse form", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	grantType := r.PostFormValue("grant_type")
	clientID := r.PostFormValue("client_id")
	clientSecret := r.PostFormValue("client_secret")

	var (
		tokens *oauthshim.TokenResponse
		err    error
	)
	switch grantType {
	case "authorization_code":
		tokens, err = h.service.ExchangeCode(r.Context(), clientID, clientSecret,
			r.PostFormValue("code"), r.PostFormValue("redirect_uri"))
	case "refresh_token":
		tokens, err = h.service.Refresh(r.Context(), clientID, clientSecret,
			r.PostFormValue("refresh_token"))
	default:
		log.Error("unsupported grant type", slog.String("grant_type", grantType))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("unsupported grant_type"))
		return
	}

	if err != nil {
		switch {
		case errors.Is(err, oauthshim.ErrUnknownClient),
			errors.Is(err, oauthshim.ErrInvalidClientSecret):
			log.Error("client authentication failed", sl.Err(err))
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error(err.Error()))
		case errors.Is(err, oauthshim.ErrRedirectNotAllowed),
			errors.Is(err, oauthshim.ErrInvalidCode):
			log.Error("token request rejected", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
		default:
			log.Error("failed to issue tokens", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("could not issue tokens"))
		}
		return
	}

	log.Info("tokens issued", slog.String("grant_type", grantType))
	render.JSON(w, r, tokens)
}
