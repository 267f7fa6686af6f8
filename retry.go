package doclai

import (
	"context"
	"errors"
	"time"

	"github.com/ZaguanLabs/doclai/logger"
)

// RetryConfig holds configuration for retry behavior.
type RetryConfig struct {
	MaxAttempts int           // Total attempts, including the first one
	Delay       time.Duration // Fixed pause between attempts
}

// DefaultRetryConfig returns a single retry after one second.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 2,
		Delay:       1 * time.Second,
	}
}

// RetryFunc is a function that can be retried.
type RetryFunc[T any] func() (T, error)

// WithRetry executes fn up to cfg.MaxAttempts times with a fixed delay between
// attempts. It returns the number of attempts made alongside the result.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, fn RetryFunc[T]) (T, int, error) {
	var lastErr error
	var zero T

	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		select {
		case <-ctx.Done():
			return zero, attempt - 1, ctx.Err()
		default:
		}

		result, err := fn()
		if err == nil {
			return result, attempt, nil
		}

		lastErr = err

		if !IsRetryable(err) {
			return zero, attempt, err
		}

		if attempt < attempts {
			logger.Warn("generator call failed (attempt %d/%d): %v; retrying in %v", attempt, attempts, err, cfg.Delay)
			select {
			case <-ctx.Done():
				return zero, attempt, ctx.Err()
			case <-time.After(cfg.Delay):
			}
		}
	}

	return zero, attempts, lastErr
}

// IsRetryable reports whether err is a transient generator failure.
// Errors are transient unless a ProviderError says otherwise or the
// context was cancelled.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Retryable
	}

	return true
}
