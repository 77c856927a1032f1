package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/wonny/aegis-panel/pkg/config"
	"github.com/wonny/aegis-panel/pkg/logger"
)

// Server represents the HTTP API server
// ⭐ SSOT: API 서버 설정은 이 파일에서만
type Server struct {
	httpServer *http.Server
	logger     *logger.Logger
	config     *config.Config
}

// New creates a new API server
func New(cfg *config.Config, log *logger.Logger, router http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: writeTimeout(cfg.Panel.FetchTimeout, narratorBudget(cfg)),
			IdleTimeout:  60 * time.Second,
		},
		logger: log,
		config: cfg,
	}
}

// writeTimeout leaves room for a full evaluation: every section may hit its fetch timeout
// and the narrator adds two sequential rounds (styles, then consensus).
func writeTimeout(fetchTimeout, narrate time.Duration) time.Duration {
	timeout := 15 * time.Second
	if budget := 2*fetchTimeout + narrate + 5*time.Second; budget > timeout {
		timeout = budget
	}
	return timeout
}

// narratorBudget is zero without a narrator; each round may retry once
func narratorBudget(cfg *config.Config) time.Duration {
	if cfg.Panel.NarratorURL == "" {
		return 0
	}
	return 2 * (2*cfg.Panel.NarratorTimeout + time.Second)
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.WithFields(map[string]interface{}{
		"port": s.config.Port,
		"env":  s.config.Env,
	}).Info("Starting API server")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}
