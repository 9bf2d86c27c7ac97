// Package server exposes interview sessions over a JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/highlog/interviewer/internal/interview"
)

// Interviews is the session surface the API drives.
type Interviews interface {
	Start(ctx context.Context, p interview.StartParams) (*interview.TurnResult, error)
	ProcessTurn(ctx context.Context, id, answer string, responseTime int) (*interview.TurnResult, error)
	Abandon(ctx context.Context, id string) (*interview.Session, error)
	Session(ctx context.Context, id string) (*interview.Session, error)
	OpeningQuestion() string
}

// Reports produces the final evaluation of a finished session.
type Reports interface {
	Generate(ctx context.Context, id string) (*interview.Report, error)
}

type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server is the HTTP API.
type Server struct {
	interviews Interviews
	reports    Reports
	tokens     *TokenService
	validate   *validator.Validate
	logger     *slog.Logger
	httpServer *http.Server
}

func New(cfg Config, interviews Interviews, reports Reports, tokens *TokenService, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		interviews: interviews,
		reports:    reports,
		tokens:     tokens,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		logger:     logger,
	}
	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("GET /v1/interviews/opening", s.requireAuth(s.handleOpening))
	mux.HandleFunc("POST /v1/interviews", s.requireAuth(s.handleStart))
	mux.HandleFunc("GET /v1/interviews/{id}", s.requireAuth(s.handleGet))
	mux.HandleFunc("POST /v1/interviews/{id}/answers", s.requireAuth(s.handleAnswer))
	mux.HandleFunc("POST /v1/interviews/{id}/abandon", s.requireAuth(s.handleAbandon))
	mux.HandleFunc("GET /v1/interviews/{id}/report", s.requireAuth(s.handleReport))

	return s.withRecover(s.withLogging(mux))
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("encoding JSON response", "error", err)
	}
}

// decode reads a JSON body into dst and validates it.
func (s *Server) decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request body: %w", interview.ErrInvalidInput, err)
	}
	return s.validate.Struct(dst)
}
