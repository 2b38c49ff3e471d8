package httperr

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/clausewise/internal/core/domain"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		code   int
		target error
	}{
		{429, domain.ErrRateLimited},
		{429, domain.ErrProviderUnavailable},
		{504, domain.ErrProviderTimeout},
		{408, domain.ErrProviderTimeout},
		{500, domain.ErrProviderUnavailable},
		{401, domain.ErrProviderUnavailable},
	}
	for _, tt := range tests {
		assert.ErrorIs(t, Status("p", tt.code, nil), tt.target, "status %d", tt.code)
	}
}

func TestStatus_TruncatesBody(t *testing.T) {
	err := Status("p", 500, []byte(strings.Repeat("x", 2000)))
	assert.Less(t, len(err.Error()), 600)
}

func TestTransport_PassesContextErrors(t *testing.T) {
	assert.Equal(t, context.Canceled, Transport("p", context.Canceled))
	assert.ErrorIs(t, Transport("p", errors.New("dial tcp")), domain.ErrProviderUnavailable)
}
