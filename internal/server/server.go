// Package server exposes the profile and search tools over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"linkedin-scraper/internal/models"
	"linkedin-scraper/internal/orchestrator"
)

const maxBodyBytes = 1 << 16

// Tools is the part of the orchestrator the server calls
type Tools interface {
	GetProfile(ctx context.Context, ref string, opts orchestrator.ProfileOptions, sink orchestrator.ProgressSink) orchestrator.ToolResult
	SearchProfiles(ctx context.Context, name string, sink orchestrator.ProgressSink) orchestrator.ToolResult
}

type Server struct {
	tools          Tools
	addr           string
	requestTimeout time.Duration
	logger         *zap.Logger
}

// New creates a server listening on cfg.Host:cfg.Port
func New(tools Tools, cfg models.Config, logger *zap.Logger) *Server {
	return &Server{
		tools:          tools,
		addr:           net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		requestTimeout: cfg.RequestTimeout,
		logger:         logger.Named("server"),
	}
}

type profileRequest struct {
	Profile string `json:"profile"`
	orchestrator.ProfileOptions
}

type searchRequest struct {
	Name string `json:"name"`
}

// Handler returns the routes of the tool server
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(s.recoverMiddleware)

	router.Get("/healthz", s.handleHealthz)
	router.Get("/metrics", promhttp.Handler().ServeHTTP)
	router.Route("/tools", func(r chi.Router) {
		r.Post("/linkedin_profile", s.handleProfile)
		r.Post("/profile_search", s.handleSearch)
	})
	return router
}

// ListenAndServe serves until ctx is cancelled, then drains in-flight
// requests
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", s.addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Profile) == "" {
		writeError(w, http.StatusBadRequest, "profile is required")
		return
	}

	ctx, cancel := s.toolContext(r)
	defer cancel()
	result := s.tools.GetProfile(ctx, req.Profile, req.ProfileOptions, s.progress(r))
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	ctx, cancel := s.toolContext(r)
	defer cancel()
	result := s.tools.SearchProfiles(ctx, req.Name, s.progress(r))
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) toolContext(r *http.Request) (context.Context, context.CancelFunc) {
	if s.requestTimeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), s.requestTimeout)
}

// progress logs milestones against the request id
func (s *Server) progress(r *http.Request) orchestrator.ProgressSink {
	logger := s.logger.With(zap.String("request_id", middleware.GetReqID(r.Context())))
	return orchestrator.ProgressFunc(func(_ context.Context, p orchestrator.Progress) {
		logger.Debug("progress", zap.Int("percent", p.Percent), zap.String("message", p.Message))
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.logger.Error("handler panic",
					zap.Any("panic", rec),
					zap.String("path", r.URL.Path),
					zap.Stack("stack"))
				writeError(w, http.StatusInternalServerError, fmt.Sprint(rec))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
