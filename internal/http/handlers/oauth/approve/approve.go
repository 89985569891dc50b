// Package approve реализует подтверждение согласия в OAuth-мосте.
//
// Вызывается страницей согласия от имени аутентифицированного пользователя.
// Выдает одноразовый код и возвращает адрес возврата с кодом и state.
package approve

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/http/middlewarectx"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/http/response"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/lib/sl"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/services/oauthshim"
)

// Handler управляет HTTP-запросами подтверждения согласия.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс OAuth-моста для выдачи кода.
type Service interface {
	IssueCode(ctx context.Context, userUID, redirectURI, state string) (string, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// Request — тело запроса подтверждения согласия.
type Request struct {
	RedirectURI string `json:"redirect_uri" validate:"required,url"`
	State       string `json:"state"`
}

// ServeHTTP godoc
// @Summary Подтвердить согласие
// @Description Выдает одноразовый код и возвращает адрес возврата с кодом.
// @Tags OAuth
// @Accept  json
// @Produce  json
// @Param request body Request true "Адрес возврата и state"
// @Success 200 {object} map[string]any "Адрес возврата с кодом"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /oauth/approve [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.oauth.approve"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	redirectTo, err := h.service.IssueCode(r.Context(), userUID, req.RedirectURI, req.State)
	if err != nil {
		if errors.Is(err, oauthshim.ErrRedirectNotAllowed) {
			log.Error("redirect uri rejected")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}
		log.Error("failed to issue authorization code", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not issue authorization code"))
		return
	}

	log.Info("authorization code issued")
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"redirect_to": redirectTo,
	}))
}
