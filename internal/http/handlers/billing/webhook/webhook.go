// Package webhook реализует HTTP-обработчик webhook-уведомлений платёжного шлюза.
//
// Подпись считается по сырому телу запроса и сверяется с заголовком
// X-Razorpay-Signature до разбора JSON. Запрос без подписи отклоняется.
package webhook

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/lib/sl"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/services/billing"
)

// Service описывает интерфейс обработки webhook-событий шлюза.
type Service interface {
	VerifyWebhook(body []byte, signature string) bool
	ProcessWebhookEvent(ctx context.Context, payload billing.WebhookPayload) error
}

// Handler управляет HTTP-запросами webhook-эндпоинта.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Webhook платёжного шлюза
// @Description Принимает события подписок от шлюза, проверяя HMAC-подпись тела.
// @Tags Billing
// @Accept  json
// @Success 200 "Событие обработано"
// @Failure 400 "Некорректное тело запроса или неверная подпись"
// @Router /billing/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.webhook"
	log := h.log.With(slog.String("op", op))

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	signature := r.Header.Get("X-Razorpay-Signature")
	if signature == "" || !h.service.VerifyWebhook(body, signature) {
		log.Error("invalid or missing webhook signature")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var payload billing.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Error("failed to unmarshal webhook payload", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if err := h.service.ProcessWebhookEvent(r.Context(), payload); err != nil {
		log.Error("failed to process webhook event", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	log.Info("webhook processed successfully", slog.String("event", payload.Event))
	w.WriteHeader(http.StatusOK)
}
