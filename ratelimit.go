package doclai

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter throttles generator calls with a token bucket.
type RateLimiter struct {
	bucket *rate.Limiter
}

// RateLimitConfig configures the rate limiter.
type RateLimitConfig struct {
	RequestsPerMinute int // Maximum requests per minute
	BurstSize         int // Maximum burst size (default: 1)
}

// NewRateLimiter creates a new rate limiter.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	rpm := float64(cfg.RequestsPerMinute)
	if rpm <= 0 {
		rpm = 60 // Default: 60 RPM
	}

	burst := cfg.BurstSize
	if burst <= 0 {
		burst = 1
	}

	return &RateLimiter{
		bucket: rate.NewLimiter(rate.Limit(rpm/60.0), burst),
	}
}

// Wait blocks until a token is available or the context is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.bucket.Wait(ctx)
}

// TryAcquire takes a token without blocking.
func (r *RateLimiter) TryAcquire() bool {
	return r.bucket.Allow()
}

// Available returns the current number of available tokens.
func (r *RateLimiter) Available() float64 {
	return r.bucket.Tokens()
}

// RateLimitedGenerator wraps a Generator with rate limiting.
type RateLimitedGenerator struct {
	generator Generator
	limiter   *RateLimiter
}

// NewRateLimitedGenerator creates a new rate-limited generator.
func NewRateLimitedGenerator(generator Generator, cfg RateLimitConfig) *RateLimitedGenerator {
	return &RateLimitedGenerator{
		generator: generator,
		limiter:   NewRateLimiter(cfg),
	}
}

// Generate implements Generator with rate limiting.
func (g *RateLimitedGenerator) Generate(ctx context.Context, prompt Prompt) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", &ProviderError{
			Message:   "rate limit wait cancelled",
			Cause:     err,
			Retryable: false,
		}
	}

	return g.generator.Generate(ctx, prompt)
}

// Limiter returns the underlying rate limiter for inspection.
func (g *RateLimitedGenerator) Limiter() *RateLimiter {
	return g.limiter
}

var _ Generator = (*RateLimitedGenerator)(nil)
