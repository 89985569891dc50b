package billing

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/config"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/models"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/paymentprovider"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) GetSubscription(ctx context.Context, userUID string) (*models.Subscription, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}
func (m *RepoMock) SetGatewayOrder(ctx context.Context, userUID, orderID string, amount float64, currency string) error {
	return m.Called(ctx, userUID, orderID, amount, currency).Error(0)
}
func (m *RepoMock) SetGatewaySubscription(ctx context.Context, userUID, gatewaySubscriptionID, plan, interval string) error {
	return m.Called(ctx, userUID, gatewaySubscriptionID, plan, interval).Error(0)
}
func (m *RepoMock) ActivateSubscription(ctx context.Context, sub models.Subscription) error {
	return m.Called(ctx, sub).Error(0)
}
func (m *RepoMock) UpdateStatusByGatewaySubscription(ctx context.Context, gatewaySubscriptionID, status string) (int, error) {
	args := m.Called(ctx, gatewaySubscriptionID, status)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) ExpireSubscription(ctx context.Context, userUID string) error {
	return m.Called(ctx, userUID).Error(0)
}

type GatewayMock struct{ mock.Mock }

func (m *GatewayMock) CreateOrder(req paymentprovider.CreateOrderRequest) (*paymentprovider.OrderResponse, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.OrderResponse), args.Error(1)
}
func (m *GatewayMock) CreateSubscription(req paymentprovider.CreateSubscriptionRequest) (*paymentprovider.SubscriptionResponse, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.SubscriptionResponse), args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(ctx context.Context, key string, result any) (bool, error) {
	args := m.Called(ctx, key, result)
	return args.Bool(0), args.Error(1)
}
func (m *CacheMock) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	return m.Called(ctx, key, value, expiration).Error(0)
}
func (m *CacheMock) Invalidate(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func testGatewayConfig() config.PaymentGateway {
	return config.PaymentGateway{
		KeyID:         "rzp_test_key",
		KeySecret:     "rzp_test_secret",
		WebhookSecret: "webhook_secret",
	}
}

func newTestService(repo *RepoMock, gateway *GatewayMock, cache *CacheMock) *Service {
	return New(repo, gateway, cache, testGatewayConfig(), newNoopLogger())
}

const testUID = "0b0f52a3-94cf-4f9b-9a20-6a8cc35f271f"

func TestCreateOrder(t *testing.T) {
	repo := new(RepoMock)
	gateway := new(GatewayMock)
	cache := new(CacheMock)

	gateway.On("CreateOrder", paymentprovider.CreateOrderRequest{
		Amount:   49900,
		Currency: "INR",
		Receipt:  "sub_" + testUID,
	}).Return(&paymentprovider.OrderResponse{ID: "order_123", Currency: "INR"}, nil)
	repo.On("SetGatewayOrder", mock.Anything, testUID, "order_123", float64(499), "INR").Return(nil)
	cache.On("Invalidate", mock.Anything, "subscription:"+testUID).Return(nil)

	svc := newTestService(repo, gateway, cache)
	order, err := svc.CreateOrder(context.Background(), testUID, models.PlanPro)

	assert.NoError(t, err)
	assert.Equal(t, "order_123", order.OrderID)
	assert.Equal(t, float64(499), order.Amount)
	assert.Equal(t, "rzp_test_key", order.KeyID)
}

func TestCreateOrder_UnknownPlan(t *testing.T) {
	svc := newTestService(new(RepoMock), new(GatewayMock), new(CacheMock))

	_, err := svc.CreateOrder(context.Background(), testUID, "platinum")
	assert.ErrorIs(t, err, ErrUnknownPlan)
}

func TestVerifyCheckout_InvalidSignature(t *testing.T) {
	repo := new(RepoMock)
	svc := newTestService(repo, new(GatewayMock), new(CacheMock))

	err := svc.VerifyCheckout(context.Background(), testUID, "order_1", "pay_1", "bogus", models.PlanPro)
	assert.ErrorIs(t, err, ErrSignatureInvalid)
	repo.AssertNotCalled(t, "ActivateSubscription", mock.Anything, mock.Anything)
}

func TestVerifyCheckout_ActivatesSubscription(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)

	mac := hmac.New(sha256.New, []byte("rzp_test_secret"))
	mac.Write([]byte("order_1|pay_1"))
	signature := hex.EncodeToString(mac.Sum(nil))

	repo.On("ActivateSubscription", mock.Anything, mock.MatchedBy(func(sub models.Subscription) bool {
		return sub.UserUID == testUID &&
			sub.Plan == models.PlanPro &&
			sub.Status == models.SubscriptionStatusActive &&
			sub.GatewayPaymentID == "pay_1" &&
			sub.Amount == PriceProINR
	})).Return(nil)
	cache.On("Invalidate", mock.Anything, "subscription:"+testUID).Return(nil)

	svc := newTestService(repo, new(GatewayMock), cache)
	err := svc.VerifyCheckout(context.Background(), testUID, "order_1", "pay_1", signature, models.PlanPro)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestGetCurrent_LazyExpiry(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)

	past := time.Now().UTC().AddDate(0, 0, -1)
	sub := &models.Subscription{
		UserUID:      testUID,
		Plan:         models.PlanFree,
		Status:       models.SubscriptionStatusTrial,
		TrialEndDate: &past,
	}
	cache.On("Get", mock.Anything, "subscription:"+testUID, mock.Anything).Return(false, nil)
	cache.On("Set", mock.Anything, "subscription:"+testUID, mock.Anything, mock.Anything).Return(nil)
	repo.On("GetSubscription", mock.Anything, testUID).Return(sub, nil)
	repo.On("ExpireSubscription", mock.Anything, testUID).Return(nil)

	svc := newTestService(repo, new(GatewayMock), cache)
	got, err := svc.GetCurrent(context.Background(), testUID)

	assert.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusExpired, got.Status)
	assert.Equal(t, models.PlanFree, got.Plan)
	repo.AssertCalled(t, "ExpireSubscription", mock.Anything, testUID)
}

func TestGetCurrent_ActiveNotExpired(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)

	future := time.Now().UTC().AddDate(0, 0, 10)
	sub := &models.Subscription{
		UserUID:          testUID,
		Plan:             models.PlanPro,
		Status:           models.SubscriptionStatusActive,
		CurrentPeriodEnd: &future,
	}
	cache.On("Get", mock.Anything, "subscription:"+testUID, mock.Anything).Return(false, nil)
	cache.On("Set", mock.Anything, "subscription:"+testUID, mock.Anything, mock.Anything).Return(nil)
	repo.On("GetSubscription", mock.Anything, testUID).Return(sub, nil)

	svc := newTestService(repo, new(GatewayMock), cache)
	got, err := svc.GetCurrent(context.Background(), testUID)

	assert.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusActive, got.Status)
	repo.AssertNotCalled(t, "ExpireSubscription", mock.Anything, mock.Anything)
}

func TestProcessWebhookEvent(t *testing.T) {
	tests := []struct {
		event      string
		wantStatus string
	}{
		{"subscription.activated", models.SubscriptionStatusActive},
		{"subscription.cancelled", models.SubscriptionStatusCancelled},
		{"subscription.completed", models.SubscriptionStatusExpired},
	}
	for _, tt := range tests {
		t.Run(tt.event, func(t *testing.T) {
			repo := new(RepoMock)
			repo.On("UpdateStatusByGatewaySubscription", mock.Anything, "sub_gw_1", tt.wantStatus).Return(1, nil)

			svc := newTestService(repo, new(GatewayMock), new(CacheMock))

			var payload WebhookPayload
			payload.Event = tt.event
			payload.Payload.Subscription.Entity.ID = "sub_gw_1"

			err := svc.ProcessWebhookEvent(context.Background(), payload)
			assert.NoError(t, err)
			repo.AssertExpectations(t)
		})
	}
}

func TestProcessWebhookEvent_UnknownEventIgnored(t *testing.T) {
	repo := new(RepoMock)
	svc := newTestService(repo, new(GatewayMock), new(CacheMock))

	var payload WebhookPayload
	payload.Event = "payment.captured"

	err := svc.ProcessWebhookEvent(context.Background(), payload)
	assert.NoError(t, err)
	repo.AssertNotCalled(t, "UpdateStatusByGatewaySubscription", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyWebhook(t *testing.T) {
	svc := newTestService(new(RepoMock), new(GatewayMock), new(CacheMock))
	body := []byte(`{"event":"subscription.activated"}`)

	mac := hmac.New(sha256.New, []byte("webhook_secret"))
	mac.Write(body)
	signature := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, svc.VerifyWebhook(body, signature))
	assert.False(t, svc.VerifyWebhook(body, "tampered"))
	assert.False(t, svc.VerifyWebhook([]byte(`{"event":"subscription.cancelled"}`), signature))
}
