// Package vision provides an OCR provider backed by Google Cloud Vision.
package vision

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	visionapi "google.golang.org/api/vision/v1"

	"github.com/custodia-labs/clausewise/internal/adapters/driven/google"
	"github.com/custodia-labs/clausewise/internal/core/domain"
	"github.com/custodia-labs/clausewise/internal/core/ports/driven"
	"github.com/custodia-labs/clausewise/internal/logger"
)

// Ensure Provider implements the interfaces.
var (
	_ driven.OCRProvider = (*Provider)(nil)
	_ driven.Pinger      = (*Provider)(nil)
)

const (
	providerName = "google-vision"

	// featureType is dense-text OCR, which also returns page structure.
	featureType = "DOCUMENT_TEXT_DETECTION"

	// maxSyncPDFPages is the page limit of the synchronous files:annotate call.
	maxSyncPDFPages = 5
)

// Provider extracts text with Cloud Vision. Images go through
// images:annotate and PDFs through files:annotate.
type Provider struct {
	svc     *visionapi.Service
	limiter *google.RateLimiter
}

// Config holds configuration for the Vision provider.
type Config struct {
	// Settings carries the Google credentials.
	Settings domain.GoogleSettings

	// Endpoint overrides the API base URL (tests only).
	Endpoint string

	// Limiter throttles requests; shared with the translate adapter.
	Limiter *google.RateLimiter
}

// New creates a Vision provider. It returns google.ErrNoCredentials when no
// credential is configured.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	opts, err := google.ClientOptions(cfg.Settings, cfg.Endpoint)
	if err != nil {
		return nil, err
	}
	svc, err := visionapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("vision: create service: %w", err)
	}
	return &Provider{svc: svc, limiter: cfg.Limiter}, nil
}

// Name identifies the provider.
func (p *Provider) Name() string {
	return providerName
}

// Supports reports whether Vision can read the mime type.
func (p *Provider) Supports(mimeType string) bool {
	return mimeType == domain.MimePDF || domain.IsImageMimeType(mimeType)
}

// Extract sends data to Vision and collects text, confidence and blocks.
func (p *Provider) Extract(ctx context.Context, data []byte, mimeType string) (*domain.ExtractionResult, error) {
	if !p.Supports(mimeType) {
		return nil, fmt.Errorf("%w: %s cannot read %s", domain.ErrUnsupportedType, providerName, mimeType)
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	content := base64.StdEncoding.EncodeToString(data)
	features := []*visionapi.Feature{{Type: featureType}}

	var responses []*visionapi.AnnotateImageResponse
	if mimeType == domain.MimePDF {
		logger.Debug("vision: files:annotate (%d bytes)", len(data))
		resp, err := p.svc.Files.Annotate(&visionapi.BatchAnnotateFilesRequest{
			Requests: []*visionapi.AnnotateFileRequest{{
				InputConfig: &visionapi.InputConfig{Content: content, MimeType: mimeType},
				Features:    features,
				Pages:       firstPages(maxSyncPDFPages),
			}},
		}).Context(ctx).Do()
		if err != nil {
			return nil, google.Classify(providerName, err, p.limiter)
		}
		for _, fr := range resp.Responses {
			if fr.Error != nil && fr.Error.Code != 0 {
				return nil, statusError(fr.Error)
			}
			responses = append(responses, fr.Responses...)
		}
	} else {
		logger.Debug("vision: images:annotate (%d bytes)", len(data))
		resp, err := p.svc.Images.Annotate(&visionapi.BatchAnnotateImagesRequest{
			Requests: []*visionapi.AnnotateImageRequest{{
				Image:    &visionapi.Image{Content: content},
				Features: features,
			}},
		}).Context(ctx).Do()
		if err != nil {
			return nil, google.Classify(providerName, err, p.limiter)
		}
		responses = resp.Responses
	}

	return collect(responses)
}

// Ping checks credentials and reachability with an empty batch request.
// Vision rejects the empty batch as a bad request, which still proves the
// endpoint accepted the credentials.
func (p *Provider) Ping(ctx context.Context) error {
	_, err := p.svc.Images.Annotate(&visionapi.BatchAnnotateImagesRequest{}).Context(ctx).Do()
	if err == nil || google.IsBadRequest(err) {
		return nil
	}
	return google.Classify(providerName, err, nil)
}

// collect merges per-page responses into one result.
func collect(responses []*visionapi.AnnotateImageResponse) (*domain.ExtractionResult, error) {
	result := &domain.ExtractionResult{Provider: providerName}

	var texts []string
	var confSum float64
	var confN int

	for i, r := range responses {
		if r == nil {
			continue
		}
		if r.Error != nil && r.Error.Code != 0 {
			return nil, statusError(r.Error)
		}
		pageNum := i + 1
		if r.Context != nil && r.Context.PageNumber > 0 {
			pageNum = int(r.Context.PageNumber)
		}
		result.Pages++

		ann := r.FullTextAnnotation
		if ann == nil {
			continue
		}
		if t := strings.TrimSpace(ann.Text); t != "" {
			texts = append(texts, t)
		}
		for _, page := range ann.Pages {
			if page.Confidence > 0 {
				confSum += page.Confidence
				confN++
			}
			result.Blocks = append(result.Blocks, pageBlocks(pageNum, page)...)
		}
	}

	result.Text = strings.Join(texts, "\n\n")
	if confN > 0 {
		result.Confidence = confSum / float64(confN)
	}
	return result, nil
}

// pageBlocks flattens Vision blocks and paragraphs into domain blocks.
func pageBlocks(pageNum int, page *visionapi.Page) []domain.TextBlock {
	var blocks []domain.TextBlock
	for _, b := range page.Blocks {
		if b == nil {
			continue
		}
		blocks = append(blocks, domain.TextBlock{
			Page:       pageNum,
			Kind:       strings.ToLower(b.BlockType),
			Text:       blockText(b),
			Confidence: b.Confidence,
			Box:        boundingBox(b.BoundingBox),
		})
	}
	return blocks
}

// blockText rebuilds block text from symbols and their detected breaks.
func blockText(b *visionapi.Block) string {
	var sb strings.Builder
	for pi, para := range b.Paragraphs {
		if pi > 0 {
			sb.WriteString("\n")
		}
		for _, w := range para.Words {
			for _, s := range w.Symbols {
				sb.WriteString(s.Text)
				if s.Property == nil || s.Property.DetectedBreak == nil {
					continue
				}
				switch s.Property.DetectedBreak.Type {
				case "SPACE", "SURE_SPACE":
					sb.WriteString(" ")
				case "EOL_SURE_SPACE", "LINE_BREAK", "HYPHEN":
					sb.WriteString("\n")
				}
			}
		}
	}
	return strings.TrimSpace(sb.String())
}

// boundingBox converts a polygon into its enclosing rectangle. Vertices
// absent from the response are reported at the origin.
func boundingBox(poly *visionapi.BoundingPoly) domain.BoundingBox {
	if poly == nil {
		return domain.BoundingBox{}
	}
	var minX, minY, maxX, maxY int64
	seen := false
	for _, v := range poly.Vertices {
		if v == nil {
			continue
		}
		if !seen {
			minX, maxX, minY, maxY = v.X, v.X, v.Y, v.Y
			seen = true
			continue
		}
		minX, maxX = min(minX, v.X), max(maxX, v.X)
		minY, maxY = min(minY, v.Y), max(maxY, v.Y)
	}
	return domain.BoundingBox{
		X:      int(minX),
		Y:      int(minY),
		Width:  int(maxX - minX),
		Height: int(maxY - minY),
	}
}

func firstPages(n int) []int64 {
	pages := make([]int64, n)
	for i := range pages {
		pages[i] = int64(i + 1)
	}
	return pages
}

func statusError(s *visionapi.Status) error {
	return &domain.ProviderError{
		Provider: providerName,
		Kind:     domain.ProviderUnavailable,
		Err:      fmt.Errorf("code %d: %s", s.Code, s.Message),
	}
}
