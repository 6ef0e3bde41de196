package httpapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestRateLimitMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	// A near-zero refill rate leaves exactly burst requests through.
	h := RateLimitMiddleware(rate.Limit(1e-6), 2)(ok)

	assert.Equal(t, http.StatusNoContent, get(t, h, "/teams").Code)
	assert.Equal(t, http.StatusNoContent, get(t, h, "/teams").Code)

	w := get(t, h, "/teams")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	resp := decode[ErrorResponse](t, w)
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.Equal(t, "rate limit exceeded", resp.Message)
}

func TestRateLimitMiddleware_Unlimited(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	h := RateLimitMiddleware(rate.Inf, 0)(ok)
	for range 50 {
		require.Equal(t, http.StatusNoContent, get(t, h, "/teams").Code)
	}
}
