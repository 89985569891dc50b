// Package subscribe реализует HTTP-обработчик создания webhook-подписки
// платформы автоматизации. Сразу после подписки на адрес уходит текущая
// сводка по просроченным счетам.
package subscribe

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/http/middlewarectx"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/http/response"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/lib/sl"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/models"
)

// Handler управляет HTTP-запросами на создание webhook-подписки.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики создания webhook-подписки.
type Service interface {
	Subscribe(ctx context.Context, userUID, hookURL string) (int, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Подписаться на уведомления
// @Description Сохраняет webhook-адрес платформы автоматизации и отправляет на него текущую сводку.
// @Tags Automation
// @Accept  json
// @Produce  json
// @Param request body models.DummyWebhookSubscribe true "Webhook-адрес"
// @Success 200 {object} map[string]any "Подписка создана"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /automation/subscribe [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.automation.subscribe"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyWebhookSubscribe
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

	id, err := h.service.Subscribe(r.Context(), userUID, req.HookURL)
	if err != nil {
		log.Error("failed to create webhook subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create webhook subscription"))
		return
	}

	log.Info("webhook subscription created", slog.Int("id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"id": id,
	}))
}
