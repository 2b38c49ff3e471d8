// Package local provides an offline OCR provider. PDFs are read through
// their embedded text layer first; scanned PDFs are rasterised with
// pdftoppm and, like images, recognised with tesseract.
package local

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/clausewise/internal/core/domain"
	"github.com/custodia-labs/clausewise/internal/core/ports/driven"
	"github.com/custodia-labs/clausewise/internal/logger"
)

// Ensure Provider implements the interfaces.
var (
	_ driven.OCRProvider = (*Provider)(nil)
	_ driven.Pinger      = (*Provider)(nil)
)

const providerName = "local"

// plainTextConfidence is reported for text/plain uploads, which need no recognition.
const plainTextConfidence = 1.0

// errNoTextLayer is returned when a PDF has no extractable text.
var errNoTextLayer = errors.New("pdf has no text layer")

// Config holds configuration for the local provider.
type Config struct {
	Settings domain.LocalOCRSettings

	// MaxPages caps rasterised pages for scanned PDFs; 0 means no limit.
	MaxPages int

	// TempDir is where rasterised pages are written; empty uses os.TempDir.
	TempDir string
}

// Provider is the offline extraction engine.
type Provider struct {
	cfg    Config
	runner Runner
}

// New creates a local provider using the system's tesseract and pdftoppm.
func New(cfg Config) *Provider {
	d := domain.DefaultConfig().LocalOCR
	if cfg.Settings.Tesseract == "" {
		cfg.Settings.Tesseract = d.Tesseract
	}
	if cfg.Settings.Pdftoppm == "" {
		cfg.Settings.Pdftoppm = d.Pdftoppm
	}
	if cfg.Settings.Language == "" {
		cfg.Settings.Language = d.Language
	}
	if cfg.Settings.DPI <= 0 {
		cfg.Settings.DPI = d.DPI
	}
	return &Provider{cfg: cfg, runner: execRunner{}}
}

// SetRunner replaces the command runner.
func (p *Provider) SetRunner(r Runner) {
	p.runner = r
}

// Name identifies the provider.
func (p *Provider) Name() string {
	return providerName
}

// Supports reports whether the provider can handle the mime type.
func (p *Provider) Supports(mimeType string) bool {
	return mimeType == domain.MimePDF || mimeType == domain.MimeText || domain.IsImageMimeType(mimeType)
}

// Extract returns the text of data.
func (p *Provider) Extract(ctx context.Context, data []byte, mimeType string) (*domain.ExtractionResult, error) {
	switch {
	case mimeType == domain.MimeText:
		if !utf8.Valid(data) {
			return nil, fmt.Errorf("local: text upload is not valid UTF-8")
		}
		return &domain.ExtractionResult{
			Text:       string(data),
			Confidence: plainTextConfidence,
			Provider:   providerName,
			Pages:      1,
		}, nil

	case mimeType == domain.MimePDF:
		text, pages, err := textLayer(data)
		if err == nil {
			logger.Debug("local: read text layer of %d pages", pages)
			return &domain.ExtractionResult{Text: text, Provider: providerName, Pages: pages}, nil
		}
		logger.Debug("local: %v, falling back to OCR", err)
		return p.scannedPDF(ctx, data)

	case domain.IsImageMimeType(mimeType):
		return p.image(ctx, data, mimeType)

	default:
		return nil, fmt.Errorf("%w: %s cannot read %s", domain.ErrUnsupportedType, providerName, mimeType)
	}
}

// Ping checks that tesseract is installed.
func (p *Provider) Ping(ctx context.Context) error {
	if _, errb, err := p.runner.Run(ctx, p.cfg.Settings.Tesseract, "--version"); err != nil {
		return &domain.ProviderError{
			Provider: providerName,
			Kind:     domain.ProviderUnavailable,
			Err:      fmt.Errorf("tesseract: %w %s", err, strings.TrimSpace(string(errb))),
		}
	}
	return nil
}

// textLayer reads embedded text from every page. The pdf library panics on
// some malformed files, so panics are turned into errors.
func textLayer(data []byte) (text string, pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("open pdf: %w", err)
	}

	pages = reader.NumPage()
	var parts []string
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		t, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if t = strings.TrimSpace(t); t != "" {
			parts = append(parts, t)
		}
	}
	if len(parts) == 0 {
		return "", pages, errNoTextLayer
	}
	return strings.Join(parts, "\n\n"), pages, nil
}

func (p *Provider) scannedPDF(ctx context.Context, data []byte) (*domain.ExtractionResult, error) {
	dir, err := os.MkdirTemp(p.cfg.TempDir, "clausewise-pdf-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(in, data, 0600); err != nil {
		return nil, err
	}

	prefix := filepath.Join(dir, "page")
	// pdftoppm -r 300 -png <in.pdf> <dir/page>
	_, errb, err := p.runner.Run(ctx, p.cfg.Settings.Pdftoppm,
		"-r", strconv.Itoa(p.cfg.Settings.DPI), "-png", in, prefix)
	if err != nil {
		return nil, p.commandError("pdftoppm", err, errb)
	}

	images, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(images)
	if p.cfg.MaxPages > 0 && len(images) > p.cfg.MaxPages {
		images = images[:p.cfg.MaxPages]
	}
	if len(images) == 0 {
		return nil, p.commandError("pdftoppm", errors.New("no pages rendered"), nil)
	}

	result := &domain.ExtractionResult{Provider: providerName}
	var texts []string
	var confSum float64
	for i, img := range images {
		page, err := p.tesseract(ctx, img, i+1)
		if err != nil {
			return nil, err
		}
		result.Pages++
		result.Blocks = append(result.Blocks, page.blocks...)
		confSum += page.confidence
		if t := strings.TrimSpace(page.text); t != "" {
			texts = append(texts, t)
		}
	}
	result.Text = strings.Join(texts, "\n\n")
	result.Confidence = confSum / float64(result.Pages)
	return result, nil
}

func (p *Provider) image(ctx context.Context, data []byte, mimeType string) (*domain.ExtractionResult, error) {
	f, err := os.CreateTemp(p.cfg.TempDir, "clausewise-img-*"+imageExt(mimeType))
	if err != nil {
		return nil, err
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.Write(data); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}

	page, err := p.tesseract(ctx, path, 1)
	if err != nil {
		return nil, err
	}
	return &domain.ExtractionResult{
		Text:       page.text,
		Confidence: page.confidence,
		Provider:   providerName,
		Pages:      1,
		Blocks:     page.blocks,
	}, nil
}

// tesseract runs one image through tesseract in TSV mode.
func (p *Provider) tesseract(ctx context.Context, path string, page int) (tsvPage, error) {
	// tesseract <file> stdout -l <lang> tsv
	out, errb, err := p.runner.Run(ctx, p.cfg.Settings.Tesseract,
		path, "stdout", "-l", p.cfg.Settings.Language, "tsv")
	if err != nil {
		return tsvPage{}, p.commandError("tesseract", err, errb)
	}
	return parseTSV(string(out), page), nil
}

func (p *Provider) commandError(tool string, err error, stderr []byte) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	msg := strings.TrimSpace(string(stderr))
	if msg != "" {
		err = fmt.Errorf("%s: %w: %s", tool, err, truncate(msg, 512))
	} else {
		err = fmt.Errorf("%s: %w", tool, err)
	}
	return &domain.ProviderError{Provider: providerName, Kind: domain.ProviderUnavailable, Err: err}
}

func imageExt(mimeType string) string {
	switch mimeType {
	case domain.MimePNG:
		return ".png"
	case domain.MimeJPEG:
		return ".jpg"
	case domain.MimeTIFF:
		return ".tiff"
	case domain.MimeWebP:
		return ".webp"
	case domain.MimeGIF:
		return ".gif"
	case domain.MimeBMP:
		return ".bmp"
	default:
		return ""
	}
}
