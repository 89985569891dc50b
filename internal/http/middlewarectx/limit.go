package middlewarectx

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/render"
	"golang.org/x/time/rate"
)

// Параметры ведра для одного пользователя.
const (
	limiterRate  rate.Limit = 10
	limiterBurst            = 30
)

var (
	limitersMu sync.Mutex
	limiters   = make(map[string]*rate.Limiter)
)

func limiterFor(userUID string) *rate.Limiter {
	limitersMu.Lock()
	defer limitersMu.Unlock()
	l, ok := limiters[userUID]
	if !ok {
		l = rate.NewLimiter(limiterRate, limiterBurst)
		limiters[userUID] = l
	}
	return l
}

// RateLimitMiddleware ограничивает частоту запросов отдельно для каждого
// аутентифицированного пользователя. Ставится после JWTMiddleware.
func RateLimitMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userUID, _ := r.Context().Value(UserUID).(string)
			if !limiterFor(userUID).Allow() {
				log.Error("too many requests", slog.String("user_uid", userUID))
				w.WriteHeader(http.StatusTooManyRequests)
				render.JSON(w, r, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
