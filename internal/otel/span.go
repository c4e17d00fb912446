// Package otel provides OpenTelemetry span helpers shared by the Pyxis client and the tool layer.
package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys shared by client and tool spans.
const (
	AttrEndpoint    = attribute.Key("pyxis.endpoint")
	AttrResourceID  = attribute.Key("pyxis.resource_id")
	AttrQuery       = attribute.Key("pyxis.query")
	AttrPage        = attribute.Key("pagination.page")
	AttrPageSize    = attribute.Key("pagination.page_size")
	AttrResultCount = attribute.Key("result.count")
	AttrResultTotal = attribute.Key("result.total")
	AttrToolName    = attribute.Key("mcp.tool.name")
	AttrErrorKind   = attribute.Key("error.kind")
)

// StartSpan starts a child span of ctx. With a nil tracer it starts nothing
// and returns ctx with a non-recording span, so ending it leaves the span in
// ctx open.
func StartSpan(
	ctx context.Context,
	tracer trace.Tracer,
	name string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(context.Background())
	}
	return tracer.Start(ctx, name, opts...)
}

// RecordError adds err to span as an exception event and marks the span
// failed. Upstream error bodies can echo request headers, so the status
// description stays generic.
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, "operation failed")
}
