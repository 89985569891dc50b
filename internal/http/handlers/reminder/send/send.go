// Package send реализует HTTP-обработчик немедленной рассылки напоминаний.
//
// Рассылка идет по всем просроченным счетам текущего пользователя.
// Отсутствие просроченных счетов — успешный пустой результат.
package send

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

// Handler управляет HTTP-запросами на немедленную рассылку.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики немедленной рассылки.
type Service interface {
	SendImmediate(ctx context.Context, userUID string) (reminder.Result, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Разослать напоминания
// @Description Немедленно отправляет напоминания по всем просроченным счетам.
// @Tags Reminders
// @Produce  json
// @Success 200 {object} map[string]any "Итог рассылки"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 412 {object} response.ErrorResponse "Почта не настроена"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /reminders/send [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reminder.send"
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

	result, err := h.service.SendImmediate(r.Context(), userUID)
	if err != nil {
		if errors.Is(err, mailconfig.ErrNotConfigured) {
			log.Error("mail is not configured")
			w.WriteHeader(http.StatusPreconditionFailed)
			render.JSON(w, r, response.Error("mail is not configured"))
			return
		}
		log.Error("failed to send reminders", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not send reminders"))
		return
	}

	log.Info("reminders sent", slog.Int("count", result.Count), slog.Int("total", result.Total))
	render.JSON(w, r, response.StatusOKWithData(result))
}
