package doclai

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 2,
		Delay:       10 * time.Millisecond,
	}
}

func TestWithRetry_Success(t *testing.T) {
	callCount := 0
	result, attempts, err := WithRetry(context.Background(), testRetryConfig(), func() (string, error) {
		callCount++
		return "success", nil
	})

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if result != "success" {
		t.Errorf("Expected 'success', got %q", result)
	}

	if callCount != 1 || attempts != 1 {
		t.Errorf("Expected 1 call, got %d (attempts=%d)", callCount, attempts)
	}
}

func TestWithRetry_RetriesOnce(t *testing.T) {
	callCount := 0
	result, attempts, err := WithRetry(context.Background(), testRetryConfig(), func() (string, error) {
		callCount++
		if callCount == 1 {
			return "", errors.New("connection reset")
		}
		return "success", nil
	})

	if err != nil {
		t.Fatalf("Expected no error after retry, got: %v", err)
	}

	if result != "success" {
		t.Errorf("Expected 'success', got %q", result)
	}

	if attempts != 2 {
		t.Errorf("Expected 2 attempts, got %d", attempts)
	}
}

func TestWithRetry_NeverMoreThanTwoCalls(t *testing.T) {
	callCount := 0
	_, attempts, err := WithRetry(context.Background(), testRetryConfig(), func() (string, error) {
		callCount++
		return "", &ProviderError{Message: "rate limited", Retryable: true}
	})

	if err == nil {
		t.Fatal("Expected error after last attempt")
	}

	if callCount != 2 || attempts != 2 {
		t.Errorf("Expected 2 calls, got %d (attempts=%d)", callCount, attempts)
	}
}

func TestWithRetry_NonRetryableError(t *testing.T) {
	callCount := 0
	_, _, err := WithRetry(context.Background(), testRetryConfig(), func() (string, error) {
		callCount++
		return "", &ProviderError{Message: "invalid API key", Retryable: false}
	})

	if err == nil {
		t.Fatal("Expected error for non-retryable error")
	}

	if callCount != 1 {
		t.Errorf("Expected 1 call for non-retryable error, got %d", callCount)
	}
}

func TestWithRetry_ContextCanceled(t *testing.T) {
	cfg := RetryConfig{
		MaxAttempts: 2,
		Delay:       1 * time.Second, // Long delay
	}

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, _, err := WithRetry(ctx, cfg, func() (string, error) {
		return "", errors.New("temporary")
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got: %v", err)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"retryable provider error", &ProviderError{Retryable: true}, true},
		{"non-retryable provider error", &ProviderError{Retryable: false}, false},
		{"generic error", errors.New("some error"), true},
		{"context canceled", context.Canceled, false},
		{"context deadline", context.DeadlineExceeded, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsRetryable(tt.err)
			if result != tt.expected {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, result, tt.expected)
			}
		})
	}
}

func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()

	if cfg.MaxAttempts != 2 {
		t.Errorf("Expected MaxAttempts 2, got %d", cfg.MaxAttempts)
	}

	if cfg.Delay != 1*time.Second {
		t.Errorf("Expected Delay 1s, got %v", cfg.Delay)
	}
}
