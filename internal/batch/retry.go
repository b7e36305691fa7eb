package batch

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"charsmith/internal/core/domain"
)

// RetryConfig defines retry behavior for one job.
type RetryConfig struct {
	MaxRetries   int // additional attempts after the first
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// DefaultRetryConfig provides sensible defaults.
var DefaultRetryConfig = RetryConfig{
	MaxRetries:   3,
	InitialDelay: 2 * time.Second,
	MaxDelay:     60 * time.Second,
}

// Operation executes one job attempt and returns the result location.
type Operation func(ctx context.Context) (string, error)

// RunWithRetry executes op with bounded retries and jittered exponential
// backoff. Transient failures are retried up to cfg.MaxRetries additional
// times; a permanent failure returns immediately. The attempt count and
// the last error are surfaced to the caller.
func RunWithRetry(ctx context.Context, op Operation, cfg RetryConfig) (string, int, error) {
	var lastErr error

	maxAttempts := cfg.MaxRetries + 1
	for attempt := 0; attempt < maxAttempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, attempt + 1, nil
		}

		lastErr = err

		if Classify(err) == domain.CategoryPermanent {
			return "", attempt + 1, err
		}

		if attempt == maxAttempts-1 {
			break
		}

		delay := backoffDelay(attempt, cfg)
		select {
		case <-ctx.Done():
			return "", attempt + 1, ctx.Err()
		case <-time.After(delay):
		}
	}

	return "", maxAttempts, fmt.Errorf("transient failure after %d attempts: %w", maxAttempts, lastErr)
}

// backoffDelay computes InitialDelay * 2^attempt capped at MaxDelay,
// with ±20% jitter. The jitter is load-bearing: when one upstream
// incident fails many jobs at once, unjittered backoff would
// resynchronize all their retries into further contention.
func backoffDelay(attempt int, cfg RetryConfig) time.Duration {
	delay := float64(cfg.InitialDelay) * math.Pow(2, float64(attempt))
	if delay > float64(cfg.MaxDelay) {
		delay = float64(cfg.MaxDelay)
	}
	jitter := 0.8 + 0.4*rand.Float64()
	return time.Duration(delay * jitter)
}
