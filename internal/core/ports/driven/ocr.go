package driven

import (
	"context"

	"github.com/custodia-labs/clausewise/internal/core/domain"
)

// OCRProvider turns uploaded bytes into text.
// Providers are tried in priority order by the extraction service; an error
// from one provider moves the chain on to the next.
//
// Implementations include:
//   - Google Cloud Vision (cloud)
//   - PDF text layer and Tesseract (local)
type OCRProvider interface {
	// Name identifies the provider in logs and results.
	Name() string

	// Supports reports whether the provider can handle the mime type.
	Supports(mimeType string) bool

	// Extract returns the text found in data. Confidence is 0 when the
	// provider has no confidence model; the caller substitutes a default.
	Extract(ctx context.Context, data []byte, mimeType string) (*domain.ExtractionResult, error)
}

// Pinger is implemented by providers that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}
