package driving

import (
	"context"

	"github.com/custodia-labs/clausewise/internal/core/domain"
)

// StatusService reports provider availability.
type StatusService interface {
	// Status probes every configured provider.
	Status(ctx context.Context) domain.SystemStatus
}
