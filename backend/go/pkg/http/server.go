package http

import (
	"Abridge_1.0/backend/go/internal/config"
	"Abridge_1.0/backend/go/pkg/logger"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// Server wraps the standard http.Server with configured timeouts
// and a graceful shutdown bound.
type Server struct {
	httpServer      *http.Server
	shutdownTimeout time.Duration
	log             *logger.Logger
}

// ServerOption defines a function for configuring a Server.
type ServerOption func(*Server)

// WithAddress sets the address for the server to listen on.
func WithAddress(addr string) ServerOption {
	return func(s *Server) {
		s.httpServer.Addr = addr
	}
}

// WithLogger sets the logger used for lifecycle messages.
func WithLogger(log *logger.Logger) ServerOption {
	return func(s *Server) {
		s.log = log
	}
}

// NewServer creates a Server serving handler according to cfg.
func NewServer(cfg config.ServerConfig, handler http.Handler, opts ...ServerOption) (*Server, error) {
	if handler == nil {
		return nil, errors.New("handler is required")
	}
	srv := &Server{
		httpServer: &http.Server{
			Addr:              cfg.Address,
			Handler:           handler,
			ReadHeaderTimeout: config.Duration(cfg.ReadHeaderTimeout, 5*time.Second),
		},
		shutdownTimeout: config.Duration(cfg.ShutdownTimeout, 15*time.Second),
		log:             logger.Discard(),
	}

	for _, opt := range opts {
		opt(srv)
	}

	if srv.httpServer.Addr == "" {
		srv.httpServer.Addr = ":8000"
	}
	return srv, nil
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// ListenAndServe starts the HTTP server. It returns nil after a graceful shutdown.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln.
func (s *Server) Serve(ln net.Listener) error {
	s.log.WithField("address", ln.Addr().String()).Info("HTTP 服务器开始监听")
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting at most the configured
// shutdown timeout for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()
	s.log.Info("HTTP 服务器正在关闭")
	return s.httpServer.Shutdown(ctx)
}
