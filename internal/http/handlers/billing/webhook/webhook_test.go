package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/services/billing"
)

const webhookSecret = "webhook_secret"

type ServiceMock struct{ mock.Mock }

func (m *ServiceMock) VerifyWebhook(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (m *ServiceMock) ProcessWebhookEvent(ctx context.Context, payload billing.WebhookPayload) error {
	return m.Called(ctx, payload).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestServeHTTP_MissingSignature(t *testing.T) {
	service := new(ServiceMock)
	handler := New(newNoopLogger(), service)

	req := httptest.NewRequest(http.MethodPost, "/billing/webhook",
		bytes.NewReader([]byte(`{"event":"subscription.activated"}`)))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	service.AssertNotCalled(t, "ProcessWebhookEvent", mock.Anything, mock.Anything)
}

func TestServeHTTP_TamperedBody(t *testing.T) {
	service := new(ServiceMock)
	handler := New(newNoopLogger(), service)

	signature := sign([]byte(`{"event":"subscription.activated"}`))
	req := httptest.NewRequest(http.MethodPost, "/billing/webhook",
		bytes.NewReader([]byte(`{"event":"subscription.cancelled"}`)))
	req.Header.Set("X-Razorpay-Signature", signature)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	service.AssertNotCalled(t, "ProcessWebhookEvent", mock.Anything, mock.Anything)
}

func TestServeHTTP_ValidSignature(t *testing.T) {
	service := new(ServiceMock)
	handler := New(newNoopLogger(), service)

	body := []byte(`{"event":"subscription.activated","payload":{"subscription":{"entity":{"id":"sub_gw_1","status":"active"}}}}`)
	service.On("ProcessWebhookEvent", mock.Anything, mock.MatchedBy(func(p billing.WebhookPayload) bool {
		return p.Event == "subscription.activated" &&
			p.Payload.Subscription.Entity.ID == "sub_gw_1"
	})).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/billing/webhook", bytes.NewReader(body))
	req.Header.Set("X-Razorpay-Signature", sign(body))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	service.AssertExpectations(t)
}

func TestServeHTTP_MalformedJSON(t *testing.T) {
	service := new(ServiceMock)
	handler := New(newNoopLogger(), service)

	body := []byte(`{"event":`)
	req := httptest.NewRequest(http.MethodPost, "/billing/webhook", bytes.NewReader(body))
	req.Header.Set("X-Razorpay-Signature", sign(body))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	service.AssertNotCalled(t, "ProcessWebhookEvent", mock.Anything, mock.Anything)
}
