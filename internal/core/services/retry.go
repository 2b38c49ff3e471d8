package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/clausewise/internal/core/domain"
	"github.com/custodia-labs/clausewise/internal/logger"
)

// maxAttempts is one call plus at most one retry.
const maxAttempts = 2

// retryPolicy bounds every external provider call.
type retryPolicy struct {
	timeout time.Duration
	backoff time.Duration
}

func newRetryPolicy(cfg *domain.Config) retryPolicy {
	return retryPolicy{timeout: cfg.ProviderTimeout, backoff: cfg.RetryBackoff}
}

// call runs fn with a per-attempt timeout and retries once after the backoff.
// Cancellation of the parent context is returned as-is and never retried.
// Any other failure is returned as a *domain.ProviderError.
func call[T any](ctx context.Context, p retryPolicy, provider string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := attemptOnce(ctx, p.timeout, fn)
		if err == nil {
			return result, nil
		}
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		lastErr = classify(provider, err)
		logger.Debug("%s attempt %d/%d failed: %v", provider, attempt, maxAttempts, err)

		if attempt < maxAttempts && p.backoff > 0 {
			timer := time.NewTimer(p.backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
		}
	}

	return zero, lastErr
}

func attemptOnce[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		return fn(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(attemptCtx)
}

func classify(provider string, err error) error {
	var pe *domain.ProviderError
	if errors.As(err, &pe) {
		return pe
	}
	kind := domain.ProviderUnavailable
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, domain.ErrProviderTimeout) {
		kind = domain.ProviderTimeout
	}
	return &domain.ProviderError{Provider: provider, Kind: kind, Err: err}
}

// recoverStage converts a panic inside a non-fatal stage into an error.
func recoverStage(stage domain.StageName, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%s panicked: %v", stage, r)
	}
}
