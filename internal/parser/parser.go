// Package parser runs the full pipeline: engine, decoder, range reconstruction
// and, for styled parses, the style mapper.
//
// A parse is synchronous. Every callback fires before Parse returns. A fatal
// error (engine misconfigured, engine failed, context ended) is returned
// before any callback fires; everything else is a soft failure that drops one
// unit and is reported only through diagnostics.
package parser

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dsabanin/pygmentskit/internal/decode"
	"github.com/dsabanin/pygmentskit/internal/diag"
	"github.com/dsabanin/pygmentskit/internal/engine"
	"github.com/dsabanin/pygmentskit/internal/log"
	"github.com/dsabanin/pygmentskit/internal/pubsub"
	"github.com/dsabanin/pygmentskit/internal/ranges"
	"github.com/dsabanin/pygmentskit/internal/style"
	"github.com/dsabanin/pygmentskit/internal/theme"
	"github.com/dsabanin/pygmentskit/internal/token"
	"github.com/dsabanin/pygmentskit/internal/tracing"
)

// TokenFunc receives one matched token.
type TokenFunc func(ranges.Range, token.Token)

// StyledFunc receives one matched token that resolved to a style.
type StyledFunc func(ranges.Range, token.Token, style.Attributes)

// Parser is safe for concurrent use when its engine is; it keeps no state
// between calls.
type Parser struct {
	engine engine.Engine
	sink   diag.Sink
	unit   ranges.Unit
	tracer trace.Tracer
}

// Option configures a Parser.
type Option func(*Parser)

// WithDiagnostics delivers every dropped unit and every fatal engine failure
// to sink. Options accumulate.
func WithDiagnostics(sink diag.Sink) Option {
	return func(p *Parser) {
		p.sink = diag.Tee(p.sink, sink)
	}
}

// WithBroker publishes diagnostics on b.
func WithBroker(b pubsub.Publisher[diag.Diagnostic]) Option {
	return WithDiagnostics(diag.Publish(b))
}

// WithUnit selects the unit ranges are measured in. Bytes by default.
func WithUnit(u ranges.Unit) Option {
	return func(p *Parser) {
		p.unit = u
	}
}

// WithTracer records a span per pipeline stage.
func WithTracer(t trace.Tracer) Option {
	return func(p *Parser) {
		p.tracer = t
	}
}

// New returns a Parser that tokenizes with e.
func New(e engine.Engine, opts ...Option) *Parser {
	p := &Parser{engine: e}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// With returns a copy of p with opts applied on top of its own.
func (p *Parser) With(opts ...Option) *Parser {
	c := *p
	for _, opt := range opts {
		opt(&c)
	}
	return &c
}

// Engine returns the engine the parser runs.
func (p *Parser) Engine() engine.Engine {
	return p.engine
}

// Parse tokenizes code with lexer and calls onToken once per matched token,
// in source order. It fails with an error matching engine.ErrConfiguration,
// engine.ErrEngine or the context's error, in which case onToken was never
// called.
func (p *Parser) Parse(ctx context.Context, code, lexer string, onToken TokenFunc) (err error) {
	ctx, span := tracing.Start(ctx, p.tracer, tracing.SpanParse,
		attribute.String(tracing.AttrEngine, p.engine.Name()),
		attribute.String(tracing.AttrLexer, lexer),
		attribute.Int(tracing.AttrTextBytes, len(code)),
		attribute.String(tracing.AttrUnit, p.unit.String()),
	)
	defer func() { tracing.End(span, err) }()

	out, err := p.invoke(ctx, code, lexer)
	if err != nil {
		p.sink.Emit(diag.Diagnostic{
			Stage:  diag.StageEngine,
			Reason: diag.ReasonEngineFailed,
			Text:   err.Error(),
		})
		log.ErrorErr(log.CatEngine, "Parse failed", err, "engine", p.engine.Name(), "lexer", lexer)
		return err
	}

	sink := diag.Tee(p.sink, spanSink(span))
	tokens := p.decode(ctx, out.Stdout, sink)
	p.reconstruct(ctx, code, tokens, sink, onToken)
	return nil
}

// ParseStyled runs Parse and passes each matched token through the style
// mapper. Tokens whose kind has no selector or whose selector th does not
// resolve produce no callback.
func (p *Parser) ParseStyled(ctx context.Context, code, lexer string, th theme.Theme, onToken StyledFunc) (err error) {
	if th == nil {
		return fmt.Errorf("%w: nil theme", engine.ErrConfiguration)
	}

	var attrs []attribute.KeyValue
	if named, ok := th.(interface{ Name() string }); ok {
		attrs = append(attrs, attribute.String(tracing.AttrTheme, named.Name()))
	}
	ctx, span := tracing.Start(ctx, p.tracer, tracing.SpanStyle, attrs...)
	defer func() { tracing.End(span, err) }()

	styled, unstyled := 0, 0
	err = p.Parse(ctx, code, lexer, func(r ranges.Range, tok token.Token) {
		a, ok := style.Style(r, tok, th)
		if !ok {
			unstyled++
			return
		}
		styled++
		onToken(r, tok, a)
	})
	if err != nil {
		return err
	}

	span.SetAttributes(attribute.Int(tracing.AttrStyled, styled))
	log.Debug(log.CatStyle, "Styled tokens", "styled", styled, "unstyled", unstyled)
	return nil
}

func (p *Parser) invoke(ctx context.Context, code, lexer string) (engine.Output, error) {
	ctx, span := tracing.Start(ctx, p.tracer, tracing.SpanEngine,
		attribute.String(tracing.AttrEngine, p.engine.Name()),
		attribute.String(tracing.AttrLexer, lexer),
	)

	out, err := p.engine.Tokenize(ctx, code, lexer)

	span.SetAttributes(
		attribute.Int(tracing.AttrStdoutBytes, len(out.Stdout)),
		attribute.Int(tracing.AttrStderrBytes, len(out.Stderr)),
	)
	var engErr *engine.EngineError
	if errors.As(err, &engErr) {
		span.SetAttributes(attribute.Int(tracing.AttrExitCode, engErr.ExitCode))
	}
	tracing.End(span, err)
	return out, err
}

func (p *Parser) decode(ctx context.Context, stdout []byte, sink diag.Sink) []token.Token {
	_, span := tracing.Start(ctx, p.tracer, tracing.SpanDecode)
	defer span.End()

	tokens := decode.Decode(stdout, decode.WithSink(sink))
	span.SetAttributes(attribute.Int(tracing.AttrTokens, len(tokens)))
	return tokens
}

func (p *Parser) reconstruct(ctx context.Context, code string, tokens []token.Token, sink diag.Sink, onToken TokenFunc) {
	_, span := tracing.Start(ctx, p.tracer, tracing.SpanReconstruct)
	defer span.End()

	r := ranges.New(code, onToken, ranges.WithUnit(p.unit), ranges.WithSink(sink))
	for _, tok := range tokens {
		if !r.Feed(tok) {
			break
		}
	}
	r.Finish(len(tokens))

	span.SetAttributes(
		attribute.Int(tracing.AttrMatched, r.Matched()),
		attribute.Int(tracing.AttrDropped, r.Dropped()),
	)
}

// spanSink records diagnostics as events on span.
func spanSink(span trace.Span) diag.Sink {
	if !span.IsRecording() {
		return nil
	}
	return func(d diag.Diagnostic) {
		span.AddEvent(tracing.EventDiagnostic, trace.WithAttributes(
			attribute.String("stage", string(d.Stage)),
			attribute.String("reason", string(d.Reason)),
			attribute.Int("line", d.Line),
		))
	}
}
