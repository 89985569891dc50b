// Package createorder реализует HTTP-обработчик создания заказа в платёжном шлюзе.
package createorder

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
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/services/billing"
)

// Handler управляет HTTP-запросами на создание заказа.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики создания заказа.
type Service interface {
	CreateOrder(ctx context.Context, userUID, plan string) (*billing.OrderInfo, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// Request — тело запроса создания заказа.
type Request struct {
	Plan string `json:"plan" validate:"required,oneof=pro enterprise"`
}

// ServeHTTP godoc
// @Summary Создать заказ
// @Description Создает разовый заказ в платёжном шлюзе на месяц выбранного плана.
// @Tags Billing
// @Accept  json
// @Produce  json
// @Param request body Request true "Выбранный план"
// @Success 200 {object} billing.OrderInfo "Данные заказа для чекаута"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или план"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /billing/orders [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.createorder"
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

	order, err := h.service.CreateOrder(r.Context(), userUID, req.Plan)
	if err != nil {
		if errors.Is(err, billing.ErrUnknownPlan) {
			log.Error("unknown plan", slog.String("plan", req.Plan))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("unknown plan"))
			return
		}
		log.Error("failed to create order", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create order"))
		return
	}

	log.Info("order created", slog.String("order_id", order.OrderID))
	render.JSON(w, r, response.StatusOKWithData(order))
}
