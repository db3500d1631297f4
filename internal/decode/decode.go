// Package decode interprets the engine's raw line protocol:
//
//	<KIND>\t<QUOTE><hex-byte-pairs><QUOTE>\n
//
// Every malformed line is dropped on its own; decoding never fails as a whole.
package decode

import (
	"bytes"
	"encoding/hex"
	"unicode/utf8"

	"github.com/dsabanin/pygmentskit/internal/diag"
	"github.com/dsabanin/pygmentskit/internal/log"
	"github.com/dsabanin/pygmentskit/internal/token"
)

// Option configures decoding.
type Option func(*options)

type options struct {
	sink diag.Sink
}

// WithSink delivers a diagnostic for every dropped line.
func WithSink(s diag.Sink) Option {
	return func(o *options) {
		o.sink = s
	}
}

// Decode returns the tokens of raw in line order.
func Decode(raw []byte, opts ...Option) []token.Token {
	var tokens []token.Token
	Each(raw, func(t token.Token) {
		tokens = append(tokens, t)
	}, opts...)
	return tokens
}

// Each calls fn for every well-formed line of raw, in order.
// Output that is not valid UTF-8 text as a whole yields no tokens.
func Each(raw []byte, fn func(token.Token), opts ...Option) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	if !utf8.Valid(raw) {
		drop(o.sink, diag.ReasonUndecodableOutput, 0, "")
		return
	}

	lineNo := 0
	for len(raw) > 0 {
		lineNo++
		var line []byte
		if i := bytes.IndexByte(raw, '\n'); i >= 0 {
			line, raw = raw[:i], raw[i+1:]
		} else {
			line, raw = raw, nil
		}
		line = bytes.TrimSuffix(line, []byte{'\r'})
		if len(line) == 0 {
			continue
		}
		if tok, ok := decodeLine(line, lineNo, o.sink); ok {
			fn(tok)
		}
	}
}

// decodeLine validates and decodes a single non-empty protocol line.
func decodeLine(line []byte, lineNo int, sink diag.Sink) (token.Token, bool) {
	fields := bytes.Split(line, []byte{'\t'})
	if len(fields) != 2 {
		drop(sink, diag.ReasonFieldCount, lineNo, string(line))
		return token.Token{}, false
	}

	kindName, field := string(fields[0]), fields[1]

	kind, ok := token.ParseKind(kindName)
	if !ok {
		drop(sink, diag.ReasonUnknownKind, lineNo, kindName)
		return token.Token{}, false
	}

	if len(field) < 2 || len(field)%2 != 0 {
		drop(sink, diag.ReasonPayloadLength, lineNo, string(field))
		return token.Token{}, false
	}

	payload, err := Unhex(field[1 : len(field)-1])
	if err != nil {
		drop(sink, diag.ReasonHexDigit, lineNo, string(field))
		return token.Token{}, false
	}

	if !utf8.Valid(payload) {
		drop(sink, diag.ReasonInvalidUTF8, lineNo, string(field))
		return token.Token{}, false
	}

	return token.Token{Kind: kind, Payload: string(payload)}, true
}

// Unhex decodes pairs of hex digits into bytes.
func Unhex(pairs []byte) ([]byte, error) {
	out := make([]byte, hex.DecodedLen(len(pairs)))
	n, err := hex.Decode(out, pairs)
	if err != nil {
		return nil, err
	}
	return out[:n], nil
}

// Hex encodes payload as lowercase hex digit pairs; the inverse of Unhex.
func Hex(payload []byte) []byte {
	out := make([]byte, hex.EncodedLen(len(payload)))
	hex.Encode(out, payload)
	return out
}

// Line formats one protocol line for kind and payload, including the
// trailing newline. Engines implemented in Go use it to speak the protocol.
func Line(kind string, payload []byte) []byte {
	out := make([]byte, 0, len(kind)+hex.EncodedLen(len(payload))+4)
	out = append(out, kind...)
	out = append(out, '\t', Quote)
	out = append(out, Hex(payload)...)
	out = append(out, Quote, '\n')
	return out
}

// Quote is the wrapper character written around the hex payload.
const Quote = '\''

func drop(sink diag.Sink, reason diag.Reason, lineNo int, text string) {
	log.Warn(log.CatDecode, "dropped line", "reason", reason, "line", lineNo, "text", text)
	sink.Emit(diag.Diagnostic{
		Stage:  diag.StageDecode,
		Reason: reason,
		Line:   lineNo,
		Text:   text,
	})
}
