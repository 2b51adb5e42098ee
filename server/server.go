package server

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/spektr-org/sharkscope/config"
)

// Server owns the HTTP listener.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

// NewServer wires handler to the configured listener. A nil logger discards
// output.
func NewServer(cfg config.Server, handler http.Handler, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &http.Server{
		Addr:         cfg.ListenAddress,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return &Server{httpServer: s, logger: logger}
}

// Start blocks until the listener fails or Stop is called. A clean stop
// returns nil.
func (s *Server) Start() error {
	s.logger.Info("starting sharkscope HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully shuts the listener down within ctx.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping sharkscope HTTP server")
	return s.httpServer.Shutdown(ctx)
}
