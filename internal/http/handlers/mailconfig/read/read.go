// Package read реализует HTTP-обработчик чтения почтовой конфигурации.
//
// Секреты (пароль и токены) в ответ не попадают: сервис отдает
// конфигурацию в отредактированном виде.
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

// Handler управляет HTTP-запросами на чтение почтовой конфигурации.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения почтовой конфигурации.
type Service interface {
	Get(ctx context.Context, userUID string) (*models.MailConfig, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить почтовую конфигурацию
// @Description Возвращает конфигурацию исходящей почты без секретов.
// @Tags MailConfig
// @Produce  json
// @Success 200 {object} map[string]any "Почтовая конфигурация"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Конфигурация не найдена"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /mail-config [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.mailconfig.read"
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

	cfg, err := h.service.Get(r.Context(), userUID)
	if err != nil {
		if errors.Is(err, mailconfig.ErrNotConfigured) {
			log.Info("mail config not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("mail config not found"))
			return
		}
		log.Error("failed to get mail config", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not get mail config"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"provider":            cfg.Provider,
		"host":                cfg.Host,
		"port":                cfg.Port,
		"secure":              cfg.Secure,
		"user":                cfg.Username,
		"is_configured":       cfg.IsConfigured,
		"use_custom_template": cfg.UseCustomTemplate,
	}))
}
