// Package authorize реализует authorization-эндпоинт OAuth-моста.
//
// Проверяет параметры запроса платформы автоматизации и перенаправляет
// пользователя на страницу согласия. Выдача кода происходит отдельным
// запросом после подтверждения.
package authorize

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/http/response"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/lib/sl"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/services/oauthshim"
)

// Handler управляет HTTP-запросами authorization-эндпоинта.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс OAuth-моста для authorization-запросов.
type Service interface {
	ValidateAuthorizeRequest(responseType, clientID, redirectURI string) error
	ConsentURL(redirectURI, state string) string
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary OAuth authorization-эндпоинт
// @Description Проверяет параметры запроса и перенаправляет на страницу согласия.
// @Tags OAuth
// @Param response_type query string true "Тип ответа, всегда code"
// @Param client_id query string true "Идентификатор клиента"
// @Param redirect_uri query string true "Адрес возврата из белого списка"
// @Param state query string false "Произвольное состояние клиента"
// @Success 302 "Перенаправление на страницу согласия"
// @Failure 400 {object} response.ErrorResponse "Некорректные параметры запроса"
// @Router /oauth/authorize [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.oauth.authorize"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	q := r.URL.Query()
	responseType := q.Get("response_type")
	clientID := q.Get("client_id")
	redirectURI := q.Get("redirect_uri")
	state := q.Get("state")

	if err := h.service.ValidateAuthorizeRequest(responseType, clientID, redirectURI); err != nil {
		log.Error("authorization request rejected", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		switch {
		case errors.Is(err, oauthshim.ErrUnsupportedResponseType),
			errors.Is(err, oauthshim.ErrUnknownClient),
			errors.Is(err, oauthshim.ErrRedirectNotAllowed):
			render.JSON(w, r, response.Error(err.Error()))
		default:
			render.JSON(w, r, response.Error("invalid authorization request"))
		}
		return
	}

	http.Redirect(w, r, h.service.ConsentURL(redirectURI, state), http.StatusFound)
}
