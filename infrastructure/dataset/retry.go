package dataset

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"
)

// Default retry policy for remote fetches.
const (
	DefaultMaxRetries = 2
	DefaultBaseDelay  = 250 * time.Millisecond
	DefaultMaxDelay   = 5 * time.Second
)

// StatusError reports a non-200 response from a dataset server.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("failed to fetch dataset %s: status %s", e.URL, e.Status)
}

// Temporary reports whether the server may succeed on a later attempt.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// retryable reports whether a failed fetch should be attempted again.
// Decode failures and client errors are final.
func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	var fe *fetchError
	return errors.As(err, &fe)
}

// fetchError marks a transport failure before any response arrived.
type fetchError struct{ err error }

func (e *fetchError) Error() string { return e.err.Error() }
func (e *fetchError) Unwrap() error { return e.err }

// withRetry runs fn until it succeeds, fails permanently, or the retry
// budget runs out. Delays grow exponentially with ±25% jitter.
func (o *Opener) withRetry(ctx context.Context, fn func() ([]map[string]any, error)) ([]map[string]any, error) {
	maxRetries := o.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		records, err := fn()
		if err == nil {
			return records, nil
		}
		lastErr = err

		if ctx.Err() != nil || !retryable(err) || attempt == maxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(o.delay(attempt)):
		}
	}

	if maxRetries > 0 && retryable(lastErr) {
		return nil, fmt.Errorf("dataset fetch failed after %d attempts: %w", maxRetries+1, lastErr)
	}
	return nil, lastErr
}

func (o *Opener) delay(attempt int) time.Duration {
	base, ceiling := o.BaseDelay, o.MaxDelay
	if base <= 0 {
		base = DefaultBaseDelay
	}
	if ceiling <= 0 {
		ceiling = DefaultMaxDelay
	}
	attempt = min(max(attempt, 0), 30)

	// #nosec G115 - attempt is bounded between 0 and 30
	d := time.Duration(float64(base) * float64(uint64(1)<<uint(attempt)))
	// #nosec G404 - jitter does not need a secure source
	jitter := time.Duration(rand.Float64() * float64(d) * 0.5)
	d = d + jitter - d/4
	return min(d, ceiling)
}
