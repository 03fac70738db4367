// Package server exposes the dive pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fathom-search/fathom/internal/dive"
	"github.com/fathom-search/fathom/internal/model"
)

// Runner executes one dive pipeline invocation.
type Runner interface {
	Run(ctx context.Context, req dive.Request) (*model.DiveResult, error)
}

// Server handles dive API requests.
type Server struct {
	runner  Runner
	limiter *ClientLimiter
	session SessionValidator
}

// New creates a Server around runner with the given gates. A nil session
// validator disables the session gate.
func New(runner Runner, limiter *ClientLimiter, session SessionValidator) *Server {
	return &Server{runner: runner, limiter: limiter, session: session}
}

// Router builds the chi router with cors, request-id logging, and the
// rate-limit and session gates applied ahead of the pipeline.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Session-Token"},
	}))
	r.Use(requestLogger)

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		if s.limiter != nil {
			r.Use(s.limiter.Middleware)
		}
		if s.session != nil {
			r.Use(sessionGate(s.session))
		}
		r.Post("/api/dive", s.handleDive)
	})

	return r
}

// diveRequest is the inbound JSON body.
type diveRequest struct {
	Query string            `json:"query"`
	Pages []model.Candidate `json:"pages"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDive(w http.ResponseWriter, r *http.Request) {
	var req diveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.runner.Run(r.Context(), dive.Request{
		Query:      req.Query,
		Candidates: req.Pages,
	})
	if err != nil {
		status, msg := mapError(err)
		writeError(w, status, msg)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// mapError translates pipeline errors to HTTP status and a human-readable
// message. Unknown errors are treated as synthesis-side failures.
func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, dive.ErrValidation):
		return http.StatusBadRequest, "query and at least one page are required"
	case errors.Is(err, dive.ErrNoContent):
		return http.StatusInternalServerError, "Could not fetch meaningful content from the provided pages. Please try a different search."
	default:
		return http.StatusInternalServerError, "Failed to generate an answer. Please try again."
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// requestLogger tags each request with an ID and logs its outcome.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		start := time.Now()
		next.ServeHTTP(ww, r)

		zap.L().Info("http request",
			zap.String("request_id", reqID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}
