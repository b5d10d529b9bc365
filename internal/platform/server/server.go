// Package server assembles the router, middleware stack and huma API, and
// runs the HTTP server until its context is cancelled.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/NullSpells/NomadSquare/internal/http/health"
	"github.com/NullSpells/NomadSquare/internal/http/v1/routes"
	"github.com/NullSpells/NomadSquare/internal/platform/config"
	applog "github.com/NullSpells/NomadSquare/internal/platform/logging"
	appmiddleware "github.com/NullSpells/NomadSquare/internal/platform/middleware"
	"github.com/NullSpells/NomadSquare/internal/platform/respond"
)

const (
	apiTitle       = "NomadSquare API"
	maxRequestBody = 1 << 20 // 1 MiB
	maxHeaderBytes = 64 << 10
)

// APIConfig returns the huma configuration shared by the server and tests.
func APIConfig(cfg config.Config, version string) huma.Config {
	c := huma.DefaultConfig(apiTitle, version)
	c.DocsPath = cfg.DocsPath
	// Drop the schema link transformer: bodies must not gain a $schema field.
	c.CreateHooks = nil
	return c
}

// NewRouter builds the chi router with the full middleware stack and every
// route registered. The huma API is returned so callers can add operations.
func NewRouter(cfg config.Config, version string) (*chi.Mux, huma.API) {
	router := chi.NewRouter()
	router.NotFound(respond.NotFoundHandler())
	router.MethodNotAllowed(respond.MethodNotAllowedHandler())

	router.Use(
		appmiddleware.Security(cfg.DocsPath),
		appmiddleware.Vary(),
		appmiddleware.CORS(),
		appmiddleware.RequestID(),
		// RealIP trusts X-Forwarded-For; only run behind a trusted proxy.
		chimiddleware.RealIP,
		chimiddleware.RequestSize(maxRequestBody),
		applog.RequestLogger(),
		applog.AccessLogger(),
		respond.Recoverer(),
		// HEAD falls through to the GET route when none is registered.
		chimiddleware.GetHead,
	)

	router.Get("/health", health.Handler)

	api := humachi.New(router, APIConfig(cfg, version))
	api.OpenAPI().OnAddOperation = append(api.OpenAPI().OnAddOperation, advertiseCBOR)
	routes.Register(api)

	return router, api
}

// advertiseCBOR lists application/cbor next to every JSON media type of op.
func advertiseCBOR(_ *huma.OpenAPI, op *huma.Operation) {
	if op.RequestBody != nil && op.RequestBody.Content != nil {
		if mt, ok := op.RequestBody.Content["application/json"]; ok {
			op.RequestBody.Content["application/cbor"] = mt
		}
	}
	for _, resp := range op.Responses {
		if resp.Content == nil {
			continue
		}
		if mt, ok := resp.Content["application/json"]; ok {
			resp.Content["application/cbor"] = mt
		}
	}
}

// Server runs the HTTP API.
type Server struct {
	cfg  config.Config
	http *http.Server
}

// New creates a Server for cfg. version is reported in the OpenAPI document.
func New(cfg config.Config, version string) *Server {
	router, _ := NewRouter(cfg, version)
	return &Server{
		cfg: cfg,
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           router,
			ReadTimeout:       5 * time.Second,
			ReadHeaderTimeout: 2 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
			MaxHeaderBytes:    maxHeaderBytes,
		},
	}
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.http.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully
// within the configured timeout. ln is closed on return.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	addr := ln.Addr().String()
	applog.LogInfo(ctx, "server listening", zap.String("addr", addr))

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.http.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve %s: %w", addr, err)
	case <-ctx.Done():
	}

	// ctx is already done; shutdown gets a fresh deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	applog.LogInfo(shutdownCtx, "shutting down", zap.Duration("timeout", s.cfg.ShutdownTimeout))
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	applog.LogInfo(shutdownCtx, "server exited")
	return nil
}
