package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/turtacn/PhytoTrait-Intelligence/internal/config"
	"github.com/turtacn/PhytoTrait-Intelligence/internal/infrastructure/monitoring/logging"
)

// Server wraps the standard http.Server around the gin route tree.
type Server struct {
	srv    *http.Server
	logger logging.Logger
}

// NewServer builds a server from the router config and server settings.
func NewServer(cfg config.ServerConfig, routerCfg RouterConfig, log logging.Logger) *Server {
	if log == nil {
		log = logging.NewNopLogger()
	}
	routerCfg.Mode = cfg.Mode

	return &Server{
		logger: log.Named("http.server"),
		srv: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      NewRouter(routerCfg),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
	}
}

// Start blocks serving requests until Stop is called.
func (s *Server) Start() error {
	s.logger.Info("http server listening", logging.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop drains in-flight requests and shuts the listener down.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.srv.Shutdown(ctx)
}

// Handler exposes the route tree for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}
