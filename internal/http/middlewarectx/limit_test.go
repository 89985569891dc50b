package middlewarectx

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func doLimitedRequest(t *testing.T, handler http.Handler, userUID string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/invoices", nil)
	req = req.WithContext(context.WithValue(req.Context(), UserUID, userUID))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr.Code
}

func TestRateLimitMiddleware_PerUserBuckets(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RateLimitMiddleware(log)(next)

	// Первый пользователь выбирает весь burst.
	for i := 0; i < limiterBurst; i++ {
		assert.Equal(t, http.StatusOK, doLimitedRequest(t, handler, "user-a"))
	}
	assert.Equal(t, http.StatusTooManyRequests, doLimitedRequest(t, handler, "user-a"))

	// Ведро второго пользователя не тронуто.
	assert.Equal(t, http.StatusOK, doLimitedRequest(t, handler, "user-b"))
}
