// Package recurring реализует HTTP-обработчик создания рекуррентной подписки
// в платёжном шлюзе. Активация подписки происходит через webhook шлюза.
package recurring

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
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/paymentprovider"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/services/billing"
)

// Handler управляет HTTP-запросами на создание рекуррентной подписки.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики создания рекуррентной подписки.
type Service interface {
	CreateRecurring(ctx context.Context, userUID, plan string) (*paymentprovider.SubscriptionResponse, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// Request — тело запроса создания рекуррентной подписки.
type Request struct {
	Plan string `json:"plan" validate:"required,oneof=pro enterprise"`
}

// ServeHTTP godoc
// @Summary Создать рекуррентную подписку
// @Description Создает подписку в платёжном шлюзе, возвращает ссылку на оплату.
// @Tags Billing
// @Accept  json
// @Produce  json
// @Param request body Request true "Выбранный план"
// @Success 200 {object} map[string]any "Данные подписки шлюза"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или план"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /billing/subscriptions [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.recurring"
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

	sub, err := h.service.CreateRecurring(r.Context(), userUID, req.Plan)
	if err != nil {
		if errors.Is(err, billing.ErrUnknownPlan) {
			log.Error("unknown plan", slog.String("plan", req.Plan))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("unknown plan"))
			return
		}
		log.Error("failed to create recurring subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create recurring subscription"))
		return
	}

	log.Info("recurring subscription created", slog.String("gateway_subscription_id", sub.ID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"gateway_subscription_id": sub.ID,
		"status":                  sub.Status,
		"short_url":               sub.ShortURL,
	}))
}
