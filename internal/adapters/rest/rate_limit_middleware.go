package rest

import (
	"net/http"

	"property-search-service/internal/contextkeys"

	"golang.org/x/time/rate"
)

// RateLimitMiddleware ограничивает число запросов на процесс. nil-лимитер пропускает все.
func RateLimitMiddleware(limiter *rate.Limiter) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				contextkeys.LoggerFromContext(r.Context()).Warn("Rate limit exceeded", nil)
				w.Header().Set("Retry-After", "1")
				WriteJSONError(w, http.StatusTooManyRequests, "Too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NewLimiter возвращает nil, если rps не задан.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}
