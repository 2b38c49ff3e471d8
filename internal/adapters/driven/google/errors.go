package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/clausewise/internal/core/domain"
)

// Classify converts a Google API client error into a *domain.ProviderError.
// Context errors pass through unchanged. A 429 records a backoff on limiter.
func Classify(provider string, err error, limiter *RateLimiter) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return &domain.ProviderError{Provider: provider, Kind: domain.ProviderUnavailable, Err: err}
	}

	switch gerr.Code {
	case http.StatusTooManyRequests:
		limiter.RecordRateLimitError(retryAfter(gerr.Header))
		return &domain.ProviderError{
			Provider: provider,
			Kind:     domain.ProviderUnavailable,
			Err:      fmt.Errorf("%w: %s", domain.ErrRateLimited, gerr.Message),
		}
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return &domain.ProviderError{Provider: provider, Kind: domain.ProviderTimeout, Err: gerr}
	default:
		return &domain.ProviderError{Provider: provider, Kind: domain.ProviderUnavailable, Err: gerr}
	}
}

// IsUnauthorized returns true if the error indicates invalid credentials.
func IsUnauthorized(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusUnauthorized || gerr.Code == http.StatusForbidden
	}
	return false
}

func retryAfter(h http.Header) time.Duration {
	if h == nil {
		return 0
	}
	secs, err := strconv.Atoi(h.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// IsBadRequest returns true for a 400 response.
func IsBadRequest(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusBadRequest
}
