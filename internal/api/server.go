// Package api exposes the status server: health plus the outcome of the
// most recent reconciliation run.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/rhacs-labs/acs-ops/internal/logger"
)

// Server represents the status API server
type Server struct {
	router  *mux.Router
	store   RunStore
	version string
	timeout time.Duration
}

// NewServer creates a new status server backed by the given run store
func NewServer(store RunStore, version string, timeout time.Duration) *Server {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	s := &Server{
		router:  mux.NewRouter(),
		store:   store,
		version: version,
		timeout: timeout,
	}
	s.routes()
	return s
}

// routes sets up the API routes
func (s *Server) routes() {
	s.router.HandleFunc("/api/v1/health", s.healthCheck).Methods("GET")
	s.router.HandleFunc("/api/v1/version", s.versionInfo).Methods("GET")
	s.router.HandleFunc("/api/v1/runs/last", s.lastRun).Methods("GET")
}

// Handler returns the root handler, exposed for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the server until ctx is cancelled
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.timeout,
		WriteTimeout: s.timeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("status server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// healthCheck handles the health check endpoint
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// versionInfo reports the binary version
func (s *Server) versionInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// lastRun returns the most recent reconciliation run
func (s *Server) lastRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.Last()
	if errors.Is(err, ErrNoRuns) {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "no runs recorded"})
		return
	}
	if err != nil {
		logger.Error().Err(err).Msg("failed to load last run")
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load last run"})
		return
	}
	s.writeJSON(w, http.StatusOK, run)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error().Err(err).Msg("failed to encode response")
	}
}

// Addr formats a host/port pair into a listen address
func Addr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
