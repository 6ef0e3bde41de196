package httpapi

import (
	"net/http"

	"golang.org/x/time/rate"
)

// RateLimitMiddleware rejects requests beyond limit per second with 429.
// burst allows short spikes above the sustained rate. The bucket is shared
// by every client of the router.
func RateLimitMiddleware(limit rate.Limit, burst int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(limit, burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Retry-After", "1")
				WriteJSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
