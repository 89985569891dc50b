// Package read реализует HTTP-обработчик чтения шаблона письма-напоминания.
package read

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
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/models"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/services/mailconfig"
)

// Handler управляет HTTP-запросами на чтение шаблона письма.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения шаблона письма.
type Service interface {
	GetTemplate(ctx context.Context, userUID string) (*models.EmailTemplate, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить шаблон письма
// @Description Возвращает пользовательский шаблон письма-напоминания.
// @Tags MailConfig
// @Produce  json
// @Success 200 {object} map[string]any "Шаблон письма"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Почтовая конфигурация не найдена"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /mail-config/template [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.mailtemplate.read"
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

	tmpl, err := h.service.GetTemplate(r.Context(), userUID)
	if err != nil {
		if errors.Is(err, mailconfig.ErrNotConfigured) {
			log.Info("mail config not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("mail config not found"))
			return
		}
		log.Error("failed to get email template", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not get email template"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(tmpl))
}
