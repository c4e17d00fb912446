package tools

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/pyxis-mcp-server/internal/otel"
	"github.com/stacklok/pyxis-mcp-server/internal/pyxis"
)

// Outcome labels reported for a tool call.
const (
	OutcomeSuccess    = "success"
	OutcomeAuth       = "auth_error"
	OutcomeConnection = "connection_error"
	OutcomeNotFound   = "not_found"
	OutcomeRateLimit  = "rate_limited"
	OutcomeValidation = "invalid_request"
	OutcomeAPI        = "api_error"
	OutcomeUnexpected = "unexpected_error"
)

// UnexpectedErrorPrefix starts the message of errors outside the Pyxis taxonomy.
const UnexpectedErrorPrefix = "Unexpected error"

type errorKind struct {
	kind    error
	prefix  string
	outcome string
}

// Order matters only for errors that match several kinds, which the client
// never produces.
var errorKinds = []errorKind{
	{kind: pyxis.ErrAuth, prefix: "Authentication failed", outcome: OutcomeAuth},
	{kind: pyxis.ErrConnection, prefix: "Connection error", outcome: OutcomeConnection},
	{kind: pyxis.ErrNotFound, prefix: "Not found", outcome: OutcomeNotFound},
	{kind: pyxis.ErrRateLimited, prefix: "Rate limit exceeded", outcome: OutcomeRateLimit},
	{kind: pyxis.ErrValidation, prefix: "Invalid request", outcome: OutcomeValidation},
	{kind: pyxis.ErrAPI, prefix: "Pyxis API error", outcome: OutcomeAPI},
}

// ErrorMessage renders err as the text returned to the MCP client. The prefix
// names the error kind.
func ErrorMessage(err error) string {
	for _, k := range errorKinds {
		if errors.Is(err, k.kind) {
			return k.prefix + ": " + describe(err, k.kind)
		}
	}
	return UnexpectedErrorPrefix + ": " + err.Error()
}

// describe returns the error text without the redundant kind prefix.
func describe(err, kind error) string {
	var pyxisErr *pyxis.Error
	if errors.As(err, &pyxisErr) && pyxisErr.Message != "" {
		return pyxisErr.Message
	}
	return strings.TrimPrefix(err.Error(), kind.Error()+": ")
}

// Outcome classifies a tool result for metrics and logs.
func Outcome(result *mcp.CallToolResult) string {
	if result == nil {
		return OutcomeUnexpected
	}
	if !result.IsError {
		return OutcomeSuccess
	}

	text := resultText(result)
	for _, k := range errorKinds {
		if strings.HasPrefix(text, k.prefix+":") {
			return k.outcome
		}
	}
	return OutcomeUnexpected
}

func resultText(result *mcp.CallToolResult) string {
	for _, c := range result.Content {
		switch tc := c.(type) {
		case mcp.TextContent:
			return tc.Text
		case *mcp.TextContent:
			return tc.Text
		}
	}
	return ""
}

// errorResult converts err into an error tool result.
func errorResult(ctx context.Context, tool string, err error) *mcp.CallToolResult {
	result := mcp.NewToolResultError(ErrorMessage(err))
	outcome := Outcome(result)

	trace.SpanFromContext(ctx).SetAttributes(otel.AttrErrorKind.String(outcome))
	slog.WarnContext(ctx, "Tool call failed",
		"tool", tool,
		"outcome", outcome,
		"error", err)

	return result
}
