package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/custodia-labs/clausewise/internal/core/domain"
)

// multipartOverhead is allowed on top of the upload cap for form framing.
const multipartOverhead = 1 << 20

// maxJSONBody caps chat and translate request bodies.
const maxJSONBody = 4 << 20

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type translateRequest struct {
	Text           string `json:"text"`
	TargetLanguage string `json:"target_language"`
}

type suggestedQuestionsResponse struct {
	Questions []string `json:"questions"`
}

type historyResponse struct {
	Analyses []domain.AnalysisSummary `json:"analyses"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "healthy", Version: s.version})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if s.ports.Status == nil {
		writeJSON(w, http.StatusOK, domain.SystemStatus{Version: s.version, Providers: []domain.ProviderStatus{}})
		return
	}
	writeJSON(w, http.StatusOK, s.ports.Status.Status(r.Context()))
}

// POST /analyze with multipart field "file".
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if s.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxBody+multipartOverhead)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, r, domain.NewValidationError(domain.ValidationFileTooLarge,
				"file exceeds the %d byte limit", s.maxBody))
			return
		}
		s.writeError(w, r, domain.NewValidationError(domain.ValidationEmptyFile,
			"multipart field \"file\" is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, r, domain.NewValidationError(domain.ValidationFileTooLarge, "failed to read upload: %v", err))
		return
	}

	upload := domain.Upload{
		Filename:  header.Filename,
		MimeType:  detectMime(header.Header.Get("Content-Type"), header.Filename, data),
		Data:      data,
		SourceRef: middleware.GetReqID(r.Context()),
	}

	analysis, err := s.ports.Analysis.Analyze(r.Context(), upload)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	analysis, err := s.ports.Analysis.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleDeleteAnalysis(w http.ResponseWriter, r *http.Request) {
	if err := s.ports.Analysis.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /analyses/history?limit=
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.writeError(w, r, domain.NewValidationError(domain.ValidationBadConfig,
				"limit must be a non-negative integer, got %q", raw))
			return
		}
		limit = n
	}

	rows, err := s.ports.Analysis.History(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if rows == nil {
		rows = []domain.AnalysisSummary{}
	}
	writeJSON(w, http.StatusOK, historyResponse{Analyses: rows})
}

// POST /chat with {message, document_context, analysis_id?, session_id?}.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req domain.ChatRequest
	if !s.decode(w, r, &req) {
		return
	}

	reply, err := s.ports.Chat.Ask(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.ports.Chat.Session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// GET /suggested-questions?analysis_id=
func (s *Server) handleSuggestedQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := s.ports.Chat.SuggestedQuestions(r.Context(), r.URL.Query().Get("analysis_id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestedQuestionsResponse{Questions: questions})
}

// POST /translate with {text, target_language}.
func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if !s.decode(w, r, &req) {
		return
	}
	if s.ports.Translation == nil {
		s.writeError(w, r, domain.ErrTranslatorUnavailable)
		return
	}

	tr, err := s.ports.Translation.Translate(r.Context(), req.Text, req.TargetLanguage)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tr)
}

// decode reads a JSON body into v, writing a 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		s.writeError(w, r, domain.NewValidationError(domain.ValidationBadConfig, "invalid request body: %v", err))
		return false
	}
	return true
}

// detectMime prefers the part header, then the file extension, then sniffing.
func detectMime(header, filename string, data []byte) string {
	if header != "" && header != "application/octet-stream" {
		return header
	}
	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" {
		if m := mime.TypeByExtension(ext); m != "" {
			return m
		}
	}
	return http.DetectContentType(data)
}
