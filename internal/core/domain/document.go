package domain

import (
	"strings"
	"time"
)

// DefaultLocalConfidence is used when an extraction provider reports no
// confidence of its own, which is the case for text layers and rule-based OCR.
const DefaultLocalConfidence = 0.5

// Supported upload mime types.
const (
	MimePDF  = "application/pdf"
	MimePNG  = "image/png"
	MimeJPEG = "image/jpeg"
	MimeTIFF = "image/tiff"
	MimeWebP = "image/webp"
	MimeGIF  = "image/gif"
	MimeBMP  = "image/bmp"
	MimeText = "text/plain"
)

// SupportedMimeTypes returns every mime type the extraction chain accepts.
func SupportedMimeTypes() []string {
	return []string{MimePDF, MimePNG, MimeJPEG, MimeTIFF, MimeWebP, MimeGIF, MimeBMP, MimeText}
}

// IsSupportedMimeType reports whether mime can be handed to the extractor.
func IsSupportedMimeType(mime string) bool {
	for _, m := range SupportedMimeTypes() {
		if m == mime {
			return true
		}
	}
	return false
}

// mimeByExtension maps lower-case file extensions onto supported mime types.
var mimeByExtension = map[string]string{
	".pdf":  MimePDF,
	".png":  MimePNG,
	".jpg":  MimeJPEG,
	".jpeg": MimeJPEG,
	".tif":  MimeTIFF,
	".tiff": MimeTIFF,
	".webp": MimeWebP,
	".gif":  MimeGIF,
	".bmp":  MimeBMP,
	".txt":  MimeText,
	".text": MimeText,
}

// MimeTypeForExtension returns the supported mime type for a file
// extension such as ".pdf", or "" if the extension is unknown.
func MimeTypeForExtension(ext string) string {
	return mimeByExtension[strings.ToLower(ext)]
}

// IsImageMimeType reports whether mime is a raster image.
func IsImageMimeType(mime string) bool {
	switch mime {
	case MimePNG, MimeJPEG, MimeTIFF, MimeWebP, MimeGIF, MimeBMP:
		return true
	default:
		return false
	}
}

// BoundingBox is an axis-aligned rectangle in page pixel space.
type BoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// TextBlock is a region of recognised text reported by an OCR provider.
type TextBlock struct {
	Page       int         `json:"page"`
	Kind       string      `json:"kind"`
	Text       string      `json:"text"`
	Confidence float64     `json:"confidence"`
	Box        BoundingBox `json:"bounding_box"`
}

// ExtractionResult is the normalised output of any extraction provider.
type ExtractionResult struct {
	// Text is the full extracted text.
	Text string

	// Confidence is in [0,1].
	Confidence float64

	// Provider names the provider that produced the text.
	Provider string

	// Pages is the number of pages processed, 0 if unknown.
	Pages int

	// Blocks carries per-block geometry when the provider supports it.
	Blocks []TextBlock
}

// Document is an uploaded document after successful extraction.
// It is immutable once created; a failed extraction produces no Document.
type Document struct {
	// ID uniquely identifies the document.
	ID string `json:"id"`

	// SourceRef is an opaque handle to the raw bytes held by external storage.
	SourceRef string `json:"source_ref,omitempty"`

	// Filename is the original upload name, if known.
	Filename string `json:"filename,omitempty"`

	// MimeType is the upload mime type.
	MimeType string `json:"mime_type"`

	// ExtractedText is the full text produced by the extraction chain.
	ExtractedText string `json:"text"`

	// Language is the detected ISO 639-1 language code.
	Language string `json:"language"`

	// LanguageConfidence is the detector confidence in [0,1].
	LanguageConfidence float64 `json:"language_confidence"`

	// ExtractionConfidence is the OCR confidence in [0,1].
	ExtractionConfidence float64 `json:"confidence"`

	// Provider names the extraction provider that succeeded.
	Provider string `json:"provider"`

	// Blocks carries OCR geometry when available.
	Blocks []TextBlock `json:"blocks,omitempty"`

	// CreatedAt is when extraction completed.
	CreatedAt time.Time `json:"created_at"`
}

// LanguageResult is the output of the language detection stage.
type LanguageResult struct {
	Code       string  `json:"language"`
	Confidence float64 `json:"confidence"`
	Provider   string  `json:"provider"`
}

// Translation is the output of a translation request.
type Translation struct {
	Text           string `json:"translated_text"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
	Provider       string `json:"provider"`
}

// Upload is a document handed to the pipeline by a driving adapter.
type Upload struct {
	Filename  string
	MimeType  string
	Data      []byte
	SourceRef string
}
