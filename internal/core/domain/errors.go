package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider or mime type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Generative summaries and chat answers fall back to rule-based output.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrTranslatorUnavailable indicates no translation provider is configured.
	ErrTranslatorUnavailable = errors.New("translator unavailable")

	// Extraction Errors.

	// ErrEmptyDocument indicates extraction produced no usable text.
	ErrEmptyDocument = errors.New("empty document")

	// ErrAllProvidersFailed indicates every OCR provider in the chain failed.
	ErrAllProvidersFailed = errors.New("all extraction providers failed")

	// Provider Errors.

	// ErrProviderTimeout indicates an external provider call exceeded its deadline.
	ErrProviderTimeout = errors.New("provider timeout")

	// ErrProviderUnavailable indicates an external provider rejected or failed a call.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrRateLimited indicates the provider rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

// ValidationCode is the machine-readable reason attached to a ValidationError.
type ValidationCode string

// Validation reason codes.
const (
	ValidationEmptyFile       ValidationCode = "empty_file"
	ValidationUnsupportedType ValidationCode = "unsupported_type"
	ValidationFileTooLarge    ValidationCode = "file_too_large"
	ValidationEmptyQuestion   ValidationCode = "empty_question"
	ValidationBadConfig       ValidationCode = "invalid_config"
)

// ValidationError rejects input before the pipeline starts.
type ValidationError struct {
	Code    ValidationCode
	Message string
}

// NewValidationError creates a ValidationError with a formatted message.
func NewValidationError(code ValidationCode, format string, args ...any) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed (%s): %s", e.Code, e.Message)
}

// Is lets errors.Is match ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// ExtractionReason distinguishes the two fatal extraction outcomes.
type ExtractionReason string

// Extraction failure reasons.
const (
	ExtractionEmptyDocument      ExtractionReason = "empty_document"
	ExtractionAllProvidersFailed ExtractionReason = "all_providers_failed"
)

// ExtractionError is fatal to the whole pipeline.
type ExtractionError struct {
	Reason ExtractionReason

	// Attempts lists the per-provider failures in the order they were tried.
	Attempts []error
}

func (e *ExtractionError) Error() string {
	switch e.Reason {
	case ExtractionEmptyDocument:
		return "extraction failed: document contains no readable text"
	case ExtractionAllProvidersFailed:
		if len(e.Attempts) == 0 {
			return "extraction failed: no providers configured"
		}
		msgs := make([]string, 0, len(e.Attempts))
		for _, a := range e.Attempts {
			msgs = append(msgs, a.Error())
		}
		return "extraction failed: " + strings.Join(msgs, "; ")
	default:
		return "extraction failed"
	}
}

// Is maps the reason onto the matching sentinel.
func (e *ExtractionError) Is(target error) bool {
	switch e.Reason {
	case ExtractionEmptyDocument:
		return target == ErrEmptyDocument
	case ExtractionAllProvidersFailed:
		return target == ErrAllProvidersFailed
	}
	return false
}

// ProviderErrorKind classifies an external provider failure.
type ProviderErrorKind string

// Provider failure kinds.
const (
	ProviderTimeout     ProviderErrorKind = "timeout"
	ProviderUnavailable ProviderErrorKind = "unavailable"
)

// ProviderError wraps a failure from an OCR, language or LLM provider.
// It never reaches callers directly; services absorb it into a fallback.
type ProviderError struct {
	Provider string
	Kind     ProviderErrorKind
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Provider, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is maps the kind onto ErrProviderTimeout or ErrProviderUnavailable.
func (e *ProviderError) Is(target error) bool {
	switch e.Kind {
	case ProviderTimeout:
		return target == ErrProviderTimeout
	case ProviderUnavailable:
		return target == ErrProviderUnavailable
	}
	return false
}
