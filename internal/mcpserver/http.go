package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mark3labs/mcp-go/server"

	"github.com/stacklok/pyxis-mcp-server/internal/telemetry"
)

const (
	// EndpointPath is where the streamable HTTP transport is mounted
	EndpointPath = "/mcp"

	// HealthPath serves the liveness probe
	HealthPath = "/health"

	// MetricsPath serves Prometheus metrics when a metrics handler is set
	MetricsPath = "/metrics"

	defaultGracefulTimeout = 10 * time.Second
	serverReadTimeout      = 10 * time.Second
	serverIdleTimeout      = 60 * time.Second
)

// HTTPHandler returns the router serving the streamable HTTP transport at
// EndpointPath together with the health and optional metrics endpoints. The returned shutdown func
// closes open MCP sessions.
func (s *Server) HTTPHandler() (http.Handler, func(context.Context) error, error) {
	httpMetrics, err := telemetry.NewHTTPMetrics(s.meterProvider)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create HTTP metrics: %w", err)
	}

	streamable := server.NewStreamableHTTPServer(s.mcp, server.WithEndpointPath(EndpointPath))

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		LoggingMiddleware,
		httpMetrics.Middleware,
		telemetry.TracingMiddleware(s.tracerProvider),
	)
	r.Get(HealthPath, healthHandler)
	if s.metricsHandler != nil {
		r.Method(http.MethodGet, MetricsPath, s.metricsHandler)
	}
	r.Handle(EndpointPath, streamable)

	return r, streamable.Shutdown, nil
}

// ServeHTTP listens on address and serves the HTTP transport until ctx is
// done, then shuts down gracefully.
func (s *Server) ServeHTTP(ctx context.Context, address string) error {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", address, err)
	}
	return s.serveListener(ctx, listener)
}

func (s *Server) serveListener(ctx context.Context, listener net.Listener) error {
	handler, closeSessions, err := s.HTTPHandler()
	if err != nil {
		_ = listener.Close()
		return err
	}

	// No write timeout: responses may be long-lived event streams
	httpServer := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: serverReadTimeout,
		IdleTimeout:       serverIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Serving MCP over streamable HTTP",
			"address", listener.Addr().String(),
			"endpoint", EndpointPath)
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultGracefulTimeout)
	defer cancel()

	err = errors.Join(
		closeSessions(shutdownCtx),
		httpServer.Shutdown(shutdownCtx),
	)
	if err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("HTTP server shutdown complete")
	return nil
}

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		slog.DebugContext(r.Context(), "HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}
