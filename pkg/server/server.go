// Package server wires a config.Config into a registry, a render adapter and
// an http.ServeMux.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/goliatone/go-renderhttp/pkg/config"
	"github.com/goliatone/go-renderhttp/pkg/logging"
	"github.com/goliatone/go-renderhttp/pkg/registry"
	"github.com/goliatone/go-renderhttp/pkg/render"
)

// Server serves the routes of a config.
type Server struct {
	cfg      config.Config
	logger   *slog.Logger
	registry *registry.Registry
	handler  http.Handler
	patterns []string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logging.OrNop(logger)
	}
}

// New loads the templates and mounts the routes described by cfg.
func New(cfg config.Config, opts ...Option) (*Server, error) {
	s := &Server{cfg: cfg, logger: logging.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	reg, err := registry.New(
		registry.WithGlobalData(cfg.Globals),
		registry.WithLogger(s.logger),
	)
	if err != nil {
		return nil, err
	}
	if len(cfg.Directories) > 0 {
		if err := reg.RegisterTemplatesDirectories(cfg.Extension, cfg.Directories...); err != nil {
			return nil, err
		}
	}
	for _, g := range cfg.Globs {
		root := g.Root
		if root == "" {
			root = "."
		}
		if err := reg.RegisterTemplatesGlob(os.DirFS(root), g.Pattern, g.Extension); err != nil {
			return nil, err
		}
	}
	s.registry = reg

	renderer := render.New(reg, render.WithLogger(s.logger))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	patterns, err := render.RegisterRoutes(mux, cfg.BasePath, renderer, routes(cfg.Routes), render.WithHandlerLogger(s.logger))
	if err != nil {
		return nil, err
	}
	s.patterns = patterns
	s.handler = logRequests(s.logger, mux)

	s.logger.Info("templates loaded", "count", len(reg.Names()), "routes", len(patterns))
	return s, nil
}

func routes(in []config.Route) []render.Route {
	out := make([]render.Route, 0, len(in))
	for _, r := range in {
		out = append(out, render.Route{
			Pattern:   r.Path,
			Template:  r.Template,
			Extension: r.Extension,
			Status:    r.Status,
			Data: render.MergeData(
				render.StaticData(r.Data),
				render.QueryValues(r.Query...),
				render.PathValues(r.Params...),
			),
		})
	}
	return out
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Registry exposes the loaded templates.
func (s *Server) Registry() *registry.Registry {
	return s.registry
}

// Patterns lists the mounted route patterns.
func (s *Server) Patterns() []string {
	return append([]string(nil), s.patterns...)
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down, waiting up to grace for in-flight requests.
func (s *Server) Run(ctx context.Context, grace time.Duration) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server: listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}
