// Package httperr maps HTTP failures from provider APIs onto domain errors.
package httperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/custodia-labs/clausewise/internal/core/domain"
)

// maxBodyInError bounds how much of a response body is quoted in an error.
const maxBodyInError = 512

// Status converts a non-2xx response into a *domain.ProviderError.
// 429 also matches domain.ErrRateLimited; 408 and 504 are timeouts.
func Status(provider string, code int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxBodyInError {
		msg = msg[:maxBodyInError] + "..."
	}

	var cause error
	switch code {
	case http.StatusTooManyRequests:
		cause = fmt.Errorf("%w: status %d: %s", domain.ErrRateLimited, code, msg)
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return &domain.ProviderError{
			Provider: provider,
			Kind:     domain.ProviderTimeout,
			Err:      fmt.Errorf("status %d: %s", code, msg),
		}
	default:
		cause = fmt.Errorf("status %d: %s", code, msg)
	}
	return &domain.ProviderError{Provider: provider, Kind: domain.ProviderUnavailable, Err: cause}
}

// Transport wraps an error from http.Client.Do. Context errors pass through
// untouched so callers can tell cancellation from provider failure.
func Transport(provider string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &domain.ProviderError{Provider: provider, Kind: domain.ProviderUnavailable, Err: err}
}
