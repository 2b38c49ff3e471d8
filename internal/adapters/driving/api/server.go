// Package api exposes the analysis pipeline over HTTP using a chi router.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/custodia-labs/clausewise/internal/core/ports/driving"
	"github.com/custodia-labs/clausewise/internal/logger"
)

// Server timeouts. Analysis may run several provider calls in sequence, so
// the write timeout is generous.
const (
	readTimeout     = 30 * time.Second
	writeTimeout    = 5 * time.Minute
	shutdownTimeout = 10 * time.Second
)

// Ports holds the driving ports the HTTP surface serves.
// Translation and Status may be nil; their endpoints then answer 503.
type Ports struct {
	Analysis    driving.AnalysisService
	Chat        driving.ChatService
	Status      driving.StatusService
	Translation driving.TranslationService
}

// Server is the HTTP front end.
type Server struct {
	mu       sync.Mutex
	ports    Ports
	version  string
	maxBody  int64
	router   *chi.Mux
	server   *http.Server
	listener net.Listener
	errChan  chan error
	log      *logger.Scoped
}

// NewServer creates a server. maxUpload caps multipart bodies in bytes;
// zero disables the cap.
func NewServer(ports Ports, version string, maxUpload int64) *Server {
	s := &Server{
		ports:   ports,
		version: version,
		maxBody: maxUpload,
		errChan: make(chan error, 1),
		log:     logger.With("http"),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  logger.Printer{},
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/models/status", s.handleStatus)

	r.Post("/analyze", s.handleAnalyze)
	r.Route("/analyses", func(r chi.Router) {
		r.Get("/history", s.handleHistory)
		r.Get("/{id}", s.handleGetAnalysis)
		r.Delete("/{id}", s.handleDeleteAnalysis)
	})

	r.Post("/chat", s.handleChat)
	r.Get("/chat/sessions/{id}", s.handleSession)
	r.Get("/suggested-questions", s.handleSuggestedQuestions)

	r.Post("/translate", s.handleTranslate)
	return r
}

// Handler returns the router for embedding or testing.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on addr and serves in the background.
// An addr with port 0 picks a free port; see Addr.
func (s *Server) Start(addr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener
	s.server = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: readTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case s.errChan <- err:
			default:
			}
		}
	}()

	s.log.Info("Listening on %s", listener.Addr())
	return nil
}

// Wait blocks until ctx is cancelled or the server fails, then shuts down.
func (s *Server) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return s.Stop()
	case err := <-s.errChan:
		return err
	}
}

// Stop shuts the server down, letting in-flight requests finish.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := s.server.Shutdown(ctx)
	s.server = nil
	return err
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}
