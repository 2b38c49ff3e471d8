package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/custodia-labs/clausewise/internal/core/domain"
)

// errorResponse is the body of every non-2xx reply.
type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// statusFor maps a domain error onto an HTTP status and reason code.
func statusFor(err error) (int, string) {
	var (
		validation *domain.ValidationError
		extraction *domain.ExtractionError
	)
	switch {
	case errors.As(err, &validation):
		switch validation.Code {
		case domain.ValidationFileTooLarge:
			return http.StatusRequestEntityTooLarge, string(validation.Code)
		case domain.ValidationUnsupportedType:
			return http.StatusUnsupportedMediaType, string(validation.Code)
		default:
			return http.StatusBadRequest, string(validation.Code)
		}
	case errors.As(err, &extraction):
		return http.StatusUnprocessableEntity, string(extraction.Reason)
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, domain.ErrTranslatorUnavailable),
		errors.Is(err, domain.ErrProviderUnavailable),
		errors.Is(err, domain.ErrLLMUnavailable):
		return http.StatusServiceUnavailable, "provider_unavailable"
	case errors.Is(err, domain.ErrProviderTimeout),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, ""
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	reqID := middleware.GetReqID(r.Context())
	if status >= http.StatusInternalServerError {
		s.log.Error("%s %s [%s]: %v", r.Method, r.URL.Path, reqID, err)
	} else {
		s.log.Debug("%s %s [%s]: %v", r.Method, r.URL.Path, reqID, err)
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Error: msg, Code: code, RequestID: reqID})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
