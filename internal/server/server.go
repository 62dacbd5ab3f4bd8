package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/ajith05/url-shortener/internal/config"
	"github.com/ajith05/url-shortener/internal/httpx"
	"github.com/ajith05/url-shortener/internal/shortener"
)

// route binds a ServeMux pattern to its handler.
type route struct {
	pattern string
	handler http.HandlerFunc
}

// Server is the public HTTP surface of the shortener.
type Server struct {
	cfg     config.ServerConfig
	env     string
	logger  *slog.Logger
	handler http.Handler
	http    *http.Server
}

// New wires the routes and middleware. Nothing listens until Start.
func New(cfg *config.Config, logger *slog.Logger, links *shortener.Handler) *Server {
	s := &Server{
		cfg:    cfg.Server,
		env:    cfg.App.Environment,
		logger: logger,
	}

	mux := http.NewServeMux()
	for _, rt := range s.routes(links) {
		mux.HandleFunc(rt.pattern, rt.handler)
	}

	s.handler = httpx.Chain(
		httpx.Recovery(logger),
		httpx.RequestID,
		httpx.Logger(logger),
	)(mux)

	s.http = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}
	return s
}

func (s *Server) routes(links *shortener.Handler) []route {
	return []route{
		{"GET /healthcheck", s.health},
		{"POST /create", links.CreateLink},
		{"GET " + shortener.LinkPathPrefix + "{code}", links.ResolveLink},
	}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens on the configured address and serves until ctx is done.
// In-flight requests get ShutdownTimeout to finish.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.http.Addr, err)
	}

	s.logger.Info("starting http server", "addr", ln.Addr().String(), "env", s.env)

	serveErr := make(chan error, 1)
	go func() { serveErr <- s.http.Serve(ln) }()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// Shutdown stops accepting connections and waits for active requests. When
// ctx expires first the remaining connections are closed.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	err := s.http.Shutdown(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		s.logger.Warn("shutdown deadline hit, closing connections")
		return s.http.Close()
	}
	return err
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
