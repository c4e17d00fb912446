// Package mcpserver builds the Pyxis MCP server and serves it over stdio or
// streamable HTTP.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/pyxis-mcp-server/internal/otel"
	"github.com/stacklok/pyxis-mcp-server/internal/telemetry"
	"github.com/stacklok/pyxis-mcp-server/internal/tools"
	"github.com/stacklok/pyxis-mcp-server/internal/versions"
)

const (
	// ServerName is the name the server reports during MCP initialization
	ServerName = "pyxis"

	// TracerName is the name of the tracer used for tool call spans
	TracerName = "github.com/stacklok/pyxis-mcp-server/mcpserver"

	// Instructions is sent to clients during initialization
	Instructions = `Tools for the Red Hat Pyxis container catalog.

Use search_images, search_certification_projects, search_operators and
search_repositories to find resources, then the matching get_*_details tool
with the returned ID. get_image_vulnerabilities lists the CVEs reported for an
image, grouped by severity. All tools are read-only.`
)

// Option configures the MCP server
type Option func(*options)

type options struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	metricsHandler http.Handler
	version        string
}

// WithTracerProvider enables a span per tool call
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tracerProvider = tp
	}
}

// WithMeterProvider enables tool call and HTTP transport metrics
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = mp
	}
}

// WithMetricsHandler serves h at MetricsPath on the HTTP transport
func WithMetricsHandler(h http.Handler) Option {
	return func(o *options) {
		o.metricsHandler = h
	}
}

// WithVersion overrides the version reported to clients
func WithVersion(version string) Option {
	return func(o *options) {
		o.version = version
	}
}

// Server is the Pyxis MCP server
type Server struct {
	mcp            *server.MCPServer
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	metricsHandler http.Handler
}

// New creates the MCP server and registers the given tool sets on it.
func New(toolsets []tools.Interface, opts ...Option) (*Server, error) {
	o := &options{version: versions.GetVersionInfo().Version}
	for _, opt := range opts {
		opt(o)
	}

	toolMetrics, err := telemetry.NewToolMetrics(o.meterProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to create tool metrics: %w", err)
	}

	var tracer trace.Tracer
	if o.tracerProvider != nil {
		tracer = o.tracerProvider.Tracer(TracerName)
	}

	s := server.NewMCPServer(
		ServerName,
		o.version,
		server.WithToolCapabilities(true),
		server.WithInstructions(Instructions),
		server.WithRecovery(),
		server.WithToolHandlerMiddleware(toolMiddleware(tracer, toolMetrics)),
	)
	for _, ts := range toolsets {
		ts.Init(s)
	}

	return &Server{
		mcp:            s,
		tracerProvider: o.tracerProvider,
		meterProvider:  o.meterProvider,
		metricsHandler: o.metricsHandler,
	}, nil
}

// MCPServer returns the underlying mcp-go server
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// ServeStdio serves MCP over the given reader and writer until ctx is done or
// the input is closed.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(slog.Default().Handler(), slog.LevelError))

	slog.InfoContext(ctx, "Serving MCP over stdio")
	err := stdio.Listen(ctx, in, out)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
		return fmt.Errorf("stdio transport failed: %w", err)
	}
	return nil
}

// toolMiddleware wraps every tool handler with a span, metrics, a log line
// and panic recovery. Panics become "Unexpected error" tool results.
func toolMiddleware(tracer trace.Tracer, metrics *telemetry.ToolMetrics) server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (result *mcp.CallToolResult, err error) {
			tool := req.Params.Name
			ctx, span := otel.StartSpan(ctx, tracer, "mcp.tool/"+tool,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(otel.AttrToolName.String(tool)),
			)
			defer span.End()

			metrics.CallStarted(ctx, tool)
			start := time.Now()

			defer func() {
				if r := recover(); r != nil {
					slog.ErrorContext(ctx, "Tool handler panicked", "tool", tool, "panic", r)
					result = mcp.NewToolResultError(fmt.Sprintf("%s: %v", tools.UnexpectedErrorPrefix, r))
					err = nil
				}

				outcome := tools.Outcome(result)
				if err != nil {
					outcome = tools.OutcomeUnexpected
					otel.RecordError(span, err)
				} else if outcome != tools.OutcomeSuccess {
					span.SetStatus(codes.Error, outcome)
				}

				duration := time.Since(start)
				metrics.RecordCall(ctx, tool, outcome, duration)
				slog.InfoContext(ctx, "Tool call",
					"tool", tool,
					"outcome", outcome,
					"error", outcome != tools.OutcomeSuccess,
					"duration", duration)
			}()

			return next(ctx, req)
		}
	}
}
