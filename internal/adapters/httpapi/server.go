package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ServerOptions holds the listener settings
type ServerOptions struct {
	ListenAddress   string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server runs the REST API
type Server struct {
	httpServer      *http.Server
	logger          *zap.Logger
	shutdownTimeout time.Duration
	listener        net.Listener
}

// NewServer creates a new API server around the router
func NewServer(router *gin.Engine, logger *zap.Logger, opts ServerOptions) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              opts.ListenAddress,
			Handler:           router,
			ReadTimeout:       opts.ReadTimeout,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      opts.WriteTimeout,
		},
		logger:          logger,
		shutdownTimeout: opts.ShutdownTimeout,
	}
}

// Start binds the listen address and serves in the background
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	s.listener = ln

	s.logger.Info("API server starting", zap.String("address", ln.Addr().String()))

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", zap.Error(err))
		}
	}()
	return nil
}

// Addr returns the bound address once started
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.httpServer.Addr
	}
	return s.listener.Addr().String()
}

// Stop waits for in-flight requests up to the shutdown timeout
func (s *Server) Stop() error {
	timeout := s.shutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("API server stopping")
	return s.httpServer.Shutdown(ctx)
}
