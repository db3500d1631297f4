package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Span names, one per pipeline stage.
const (
	SpanParse       = "parse"
	SpanParseStyled = "parse.styled"
	SpanEngine      = "engine.invoke"
	SpanDecode      = "decode"
	SpanReconstruct = "ranges.reconstruct"
	SpanStyle       = "style.map"
)

// Span attribute keys.
const (
	AttrEngine      = "engine.name"
	AttrLexer       = "engine.lexer"
	AttrExitCode    = "engine.exit_code"
	AttrStdoutBytes = "engine.stdout_bytes"
	AttrStderrBytes = "engine.stderr_bytes"
	AttrTextBytes   = "text.bytes"
	AttrUnit        = "ranges.unit"
	AttrTokens      = "tokens.decoded"
	AttrMatched     = "tokens.matched"
	AttrDropped     = "tokens.dropped"
	AttrStyled      = "tokens.styled"
	AttrTheme       = "theme.name"

	AttrErrorMessage = "error.message"
)

// Event names.
const (
	EventDiagnostic = "diagnostic"
)

// Start opens a stage span. A nil tracer starts a no-op span.
func Start(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("noop")
	}
	return tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// End records err on span, if any, and ends it.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
