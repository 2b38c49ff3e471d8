// Package google provides language detection and translation backed by the
// Google Cloud Translation v2 API.
package google

import (
	"context"
	"fmt"
	"strings"

	translateapi "google.golang.org/api/translate/v2"

	gcp "github.com/custodia-labs/clausewise/internal/adapters/driven/google"
	"github.com/custodia-labs/clausewise/internal/core/domain"
	"github.com/custodia-labs/clausewise/internal/core/ports/driven"
)

// Ensure Client implements the interfaces.
var (
	_ driven.LanguageDetector = (*Client)(nil)
	_ driven.Translator       = (*Client)(nil)
	_ driven.Pinger           = (*Client)(nil)
)

const providerName = "google-translate"

// Config holds configuration for the Translation client.
type Config struct {
	// Settings carries the Google credentials.
	Settings domain.GoogleSettings

	// Endpoint overrides the API base URL (tests only).
	Endpoint string

	// Limiter throttles requests; shared with the Vision adapter.
	Limiter *gcp.RateLimiter
}

// Client detects and translates text.
type Client struct {
	svc     *translateapi.Service
	limiter *gcp.RateLimiter
}

// New creates a Translation client. It returns google.ErrNoCredentials when
// no credential is configured.
func New(ctx context.Context, cfg Config) (*Client, error) {
	opts, err := gcp.ClientOptions(cfg.Settings, cfg.Endpoint)
	if err != nil {
		return nil, err
	}
	svc, err := translateapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("translate: create service: %w", err)
	}
	return &Client{svc: svc, limiter: cfg.Limiter}, nil
}

// Name identifies the client.
func (c *Client) Name() string {
	return providerName
}

// Detect returns the most confident detection for text.
func (c *Client) Detect(ctx context.Context, text string) (*domain.LanguageResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.svc.Detections.List([]string{text}).Context(ctx).Do()
	if err != nil {
		return nil, gcp.Classify(providerName, err, c.limiter)
	}

	var best *translateapi.DetectionsResourceItem
	for _, detections := range resp.Detections {
		for _, d := range detections {
			if d == nil || d.Language == "" || d.Language == "und" {
				continue
			}
			if best == nil || d.Confidence > best.Confidence {
				best = d
			}
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%s: no language detected", providerName)
	}

	return &domain.LanguageResult{
		Code:       baseLanguage(best.Language),
		Confidence: best.Confidence,
		Provider:   providerName,
	}, nil
}

// Translate translates text into target.
func (c *Client) Translate(ctx context.Context, text, target string) (*domain.Translation, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.svc.Translations.List([]string{text}, target).Format("text").Context(ctx).Do()
	if err != nil {
		return nil, gcp.Classify(providerName, err, c.limiter)
	}
	if len(resp.Translations) == 0 || resp.Translations[0] == nil {
		return nil, fmt.Errorf("%s: empty translation response", providerName)
	}

	tr := resp.Translations[0]
	return &domain.Translation{
		Text:           tr.TranslatedText,
		SourceLanguage: baseLanguage(tr.DetectedSourceLanguage),
		TargetLanguage: target,
		Provider:       providerName,
	}, nil
}

// Ping lists supported languages, which needs valid credentials.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.svc.Languages.List().Context(ctx).Do(); err != nil {
		return gcp.Classify(providerName, err, nil)
	}
	return nil
}

// baseLanguage reduces region-tagged codes such as "zh-CN" to "zh".
func baseLanguage(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(code, "-_"); i > 0 {
		return code[:i]
	}
	return code
}
