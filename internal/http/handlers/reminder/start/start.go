// Package start реализует HTTP-обработчик включения периодических напоминаний.
//
// Включение сопровождается немедленной рассылкой: если она не удалась,
// периодические напоминания не включаются.
package start

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/http/middlewarectx"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/http/response"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/lib/sl"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/services/mailconfig"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/services/reminder"
)

// Handler управляет HTTP-запросами на включение напоминаний.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики включения напоминаний.
type Service interface {
	Start(ctx context.Context, userUID string) (reminder.Result, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Включить напоминания
// @Description Немедленно рассылает напоминания и включает ежедневную рассылку.
// @Tags Reminders
// @Produce  json
// @Success 200 {object} map[string]any "Напоминания включены"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 412 {object} response.ErrorResponse "Почта не настроена"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /reminders/start [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reminder.start"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	result, err := h.service.Start(r.Context(), userUID)
	if err != nil {
		if errors.Is(err, mailconfig.ErrNotConfigured) {
			log.Error("mail is not configured")
			w.WriteHeader(http.StatusPreconditionFailed)
			render.JSON(w, r, response.Error("mail is not configured"))
			return
		}
		log.Error("failed to start reminders", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not start reminders"))
		return
	}

	log.Info("reminders started", slog.Int("count", result.Count), slog.Int("total", result.Total))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"is_active": true,
		"count":     result.Count,
		"total":     result.Total,
	}))
}
