// Package billing содержит логику бизнес-уровня для платных подписок:
// создание заказов в платёжном шлюзе, подтверждение оплаты и обработка
// webhook-событий шлюза.
package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/config"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/lib/sl"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/models"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/paymentprovider"
)

// Цены тарифных планов в рупиях за месяц.
const (
	PriceProINR        = 499
	PriceEnterpriseINR = 1999
)

const subscriptionCacheTTL = 5 * time.Minute

// Ошибки биллинга.
var (
	ErrUnknownPlan      = errors.New("unknown plan")
	ErrSignatureInvalid = errors.New("payment signature verification failed")
)

// Repository описывает контракт хранилища биллинговых записей.
type Repository interface {
	GetSubscription(ctx context.Context, userUID string) (*models.Subscription, error)
	SetGatewayOrder(ctx context.Context, userUID, orderID string, amount float64, currency string) error
	SetGatewaySubscription(ctx context.Context, userUID, gatewaySubscriptionID, plan, interval string) error
	ActivateSubscription(ctx context.Context, sub models.Subscription) error
	UpdateStatusByGatewaySubscription(ctx context.Context, gatewaySubscriptionID, status string) (int, error)
	ExpireSubscription(ctx context.Context, userUID string) error
}

// Gateway описывает контракт клиента платёжного шлюза.
type Gateway interface {
	CreateOrder(reqParams paymentprovider.CreateOrderRequest) (*paymentprovider.OrderResponse, error)
	CreateSubscription(reqParams paymentprovider.CreateSubscriptionRequest) (*paymentprovider.SubscriptionResponse, error)
}

// Cache кэширует биллинговые записи между чтениями.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Service — биллинг подписок поверх платёжного шлюза.
type Service struct {
	repo    Repository
	gateway Gateway
	cache   Cache
	cfg     config.PaymentGateway
	log     *slog.Logger
}

// New создает новый Service.
func New(repo Repository, gateway Gateway, cache Cache, cfg config.PaymentGateway, log *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		gateway: gateway,
		cache:   cache,
		cfg:     cfg,
		log:     log,
	}
}

// OrderInfo — данные заказа для чекаута на стороне клиента.
type OrderInfo struct {
	OrderID  string  `json:"order_id"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	KeyID    string  `json:"key_id"`
	Plan     string  `json:"plan"`
}

func planPrice(plan string) (float64, error) {
	switch plan {
	case models.PlanPro:
		return PriceProINR, nil
	case models.PlanEnterprise:
		return PriceEnterpriseINR, nil
	default:
		return 0, ErrUnknownPlan
	}
}

// CreateOrder создает разовый заказ в шлюзе на месяц выбранного плана.
// Сумма передаётся шлюзу в пайсах.
func (s *Service) CreateOrder(ctx context.Context, userUID, plan string) (*OrderInfo, error) {
	const op = "billing.CreateOrder"

	price, err := planPrice(plan)
	if err != nil {
		return nil, err
	}

	order, err := s.gateway.CreateOrder(paymentprovider.CreateOrderRequest{
		Amount:   int64(price * 100),
		Currency: "INR",
		Receipt:  "sub_" + userUID,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.SetGatewayOrder(ctx, userUID, order.ID, price, order.Currency); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, userUID)

	return &OrderInfo{
		OrderID:  order.ID,
		Amount:   price,
		Currency: order.Currency,
		KeyID:    s.cfg.KeyID,
		Plan:     plan,
	}, nil
}

// CreateRecurring создает рекуррентную подписку в шлюзе по заранее
// заведённому там плану. Активация происходит через webhook.
func (s *Service) CreateRecurring(ctx context.Context, userUID, plan string) (*paymentprovider.SubscriptionResponse, error) {
	const op = "billing.CreateRecurring"

	var planID string
	switch plan {
	case models.PlanPro:
		planID = s.cfg.PlanIDPro
	case models.PlanEnterprise:
		planID = s.cfg.PlanIDEnterprise
	default:
		return nil, ErrUnknownPlan
	}

	sub, err := s.gateway.CreateSubscription(paymentprovider.CreateSubscriptionRequest{
		PlanID:         planID,
		TotalCount:     12,
		CustomerNotify: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.SetGatewaySubscription(ctx, userUID, sub.ID, plan, "month"); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, userUID)
	return sub, nil
}

// VerifyCheckout проверяет подпись завершённого чекаута и активирует
// подписку на один месяц. Неверная подпись — ErrSignatureInvalid.
func (s *Service) VerifyCheckout(ctx context.Context, userUID, orderID, paymentID, signature, plan string) error {
	const op = "billing.VerifyCheckout"

	if !paymentprovider.VerifyPaymentSignature(s.cfg.KeySecret, orderID, paymentID, signature) {
		return ErrSignatureInvalid
	}

	price, err := planPrice(plan)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	periodEnd := now.AddDate(0, 1, 0)
	sub := models.Subscription{
		UserUID:            userUID,
		Plan:               plan,
		Status:             models.SubscriptionStatusActive,
		CurrentPeriodStart: &now,
		CurrentPeriodEnd:   &periodEnd,
		GatewayPaymentID:   paymentID,
		Amount:             price,
		Currency:           "INR",
		Interval:           "month",
	}
	if err := s.repo.ActivateSubscription(ctx, sub); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, userUID)
	return nil
}

// GetCurrent возвращает биллинговую запись пользователя с ленивой проверкой
// истечения: завершившийся пробный или оплаченный период переводит запись
// на бесплатный план со статусом expired.
func (s *Service) GetCurrent(ctx context.Context, userUID string) (*models.Subscription, error) {
	const op = "billing.GetCurrent"
	cacheKey := "subscription:" + userUID

	var cached models.Subscription
	found, err := s.cache.Get(ctx, cacheKey, &cached)
	if err != nil {
		s.log.Error("failed to read subscription cache", sl.Err(err))
	}
	if found && !s.expired(&cached) {
		return &cached, nil
	}

	sub, err := s.repo.GetSubscription(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.expired(sub) {
		if err := s.repo.ExpireSubscription(ctx, userUID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		sub.Plan = models.PlanFree
		sub.Status = models.SubscriptionStatusExpired
	}

	if err := s.cache.Set(ctx, cacheKey, sub, subscriptionCacheTTL); err != nil {
		s.log.Error("failed to write subscription cache", sl.Err(err))
	}
	return sub, nil
}

func (s *Service) expired(sub *models.Subscription) bool {
	now := time.Now().UTC()
	switch sub.Status {
	case models.SubscriptionStatusTrial:
		return sub.TrialEndDate != nil && sub.TrialEndDate.Before(now)
	case models.SubscriptionStatusActive:
		return sub.CurrentPeriodEnd != nil && sub.CurrentPeriodEnd.Before(now)
	default:
		return false
	}
}

func (s *Service) invalidate(ctx context.Context, userUID string) {
	if err := s.cache.Invalidate(ctx, "subscription:"+userUID); err != nil {
		s.log.Error("failed to invalidate subscription cache", sl.Err(err))
	}
}

// WebhookPayload — тело webhook-уведомления платёжного шлюза.
type WebhookPayload struct {
	Event   string `json:"event"`
	Payload struct {
		Subscription struct {
			Entity struct {
				ID     string `json:"id"`
				Status string `json:"status"`
				PlanID string `json:"plan_id"`
			} `json:"entity"`
		} `json:"subscription"`
	} `json:"payload"`
}

// VerifyWebhook проверяет подпись сырого тела webhook-запроса.
func (s *Service) VerifyWebhook(body []byte, signature string) bool {
	return paymentprovider.VerifyWebhookSignature(s.cfg.WebhookSecret, body, signature)
}

// ProcessWebhookEvent применяет событие шлюза к биллинговой записи.
// Незнакомые события логируются и игнорируются.
func (s *Service) ProcessWebhookEvent(ctx context.Context, payload WebhookPayload) error {
	const op = "billing.ProcessWebhookEvent"
	log := s.log.With(slog.String("op", op), slog.String("event", payload.Event))

	var status string
	switch payload.Event {
	case "subscription.activated":
		status = models.SubscriptionStatusActive
	case "subscription.cancelled":
		status = models.SubscriptionStatusCancelled
	case "subscription.completed":
		status = models.SubscriptionStatusExpired
	default:
		log.Info("ignoring unknown webhook event")
		return nil
	}

	gatewaySubID := payload.Payload.Subscription.Entity.ID
	count, err := s.repo.UpdateStatusByGatewaySubscription(ctx, gatewaySubID, status)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count == 0 {
		log.Warn("webhook event matched no subscription",
			slog.String("gateway_subscription_id", gatewaySubID))
		return nil
	}
	log.Info("subscription status updated",
		slog.String("gateway_subscription_id", gatewaySubID),
		slog.String("status", status))
	return nil
}
