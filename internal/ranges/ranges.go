// Package ranges re-derives where each decoded token sits in the original
// text. The engine reports no offsets, so ranges come from a single forward
// pass: each payload is searched for at or after the end of the previous
// match. A payload that also occurs earlier than its true position (a
// repeated substring, or an upstream decode anomaly) moves the cursor to the
// wrong place for every later token. That behavior is deterministic and kept
// as is.
package ranges

import (
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/dsabanin/pygmentskit/internal/diag"
	"github.com/dsabanin/pygmentskit/internal/log"
	"github.com/dsabanin/pygmentskit/internal/token"
)

// Range locates a payload in the original text.
type Range struct {
	Start  int
	Length int
}

// End returns the offset just past the range.
func (r Range) End() int {
	return r.Start + r.Length
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start, r.End())
}

// Unit selects the code unit ranges are measured in.
type Unit int

const (
	// UnitBytes measures in bytes of the Go string.
	UnitBytes Unit = iota
	// UnitRunes measures in Unicode code points.
	UnitRunes
	// UnitUTF16 measures in UTF-16 code units.
	UnitUTF16
)

func (u Unit) String() string {
	switch u {
	case UnitBytes:
		return "bytes"
	case UnitRunes:
		return "runes"
	case UnitUTF16:
		return "utf16"
	default:
		return "unknown"
	}
}

// ParseUnit maps a config value to a Unit. The empty string means bytes.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(s) {
	case "", "bytes", "byte":
		return UnitBytes, nil
	case "runes", "rune", "codepoints":
		return UnitRunes, nil
	case "utf16", "utf-16":
		return UnitUTF16, nil
	}
	return UnitBytes, fmt.Errorf("unknown offset unit: %s", s)
}

// Option configures a Reconstructor.
type Option func(*Reconstructor)

// WithUnit sets the unit emitted ranges are measured in.
func WithUnit(u Unit) Option {
	return func(r *Reconstructor) {
		r.unit = u
	}
}

// WithSink reports dropped tokens.
func WithSink(s diag.Sink) Option {
	return func(r *Reconstructor) {
		r.sink = s
	}
}

// Reconstructor matches a stream of tokens against one text. The zero value
// is not usable; create one with New.
type Reconstructor struct {
	text    string
	cursor  int // byte offset where the next search starts
	index   int // index of the next token fed
	onMatch func(Range, token.Token)
	unit    Unit
	sink    diag.Sink

	// Unit conversion is incremental: convByte is a byte offset already
	// converted to convUnit units. Both only move forward.
	convByte int
	convUnit int

	matched int
	dropped int
}

// New creates a Reconstructor over text that calls onMatch once per matched
// token, synchronously and in order.
func New(text string, onMatch func(Range, token.Token), opts ...Option) *Reconstructor {
	r := &Reconstructor{
		text:    text,
		onMatch: onMatch,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconstruct matches every token against text in one forward pass.
func Reconstruct(text string, tokens []token.Token, onMatch func(Range, token.Token), opts ...Option) {
	r := New(text, onMatch, opts...)
	for _, tok := range tokens {
		if !r.Feed(tok) {
			break
		}
	}
	r.Finish(len(tokens))
}

// Feed matches one token. It returns false once the cursor has reached the end
// of the text; tokens fed after that are discarded without a callback.
func (r *Reconstructor) Feed(tok token.Token) bool {
	idx := r.index
	r.index++

	if r.Exhausted() {
		r.dropped++
		r.report(diag.ReasonTruncated, idx, tok.Payload)
		return false
	}

	o := -1
	if tok.Payload != "" {
		if i := strings.Index(r.text[r.cursor:], tok.Payload); i >= 0 {
			o = r.cursor + i
		}
	}
	if o < 0 {
		r.dropped++
		r.report(diag.ReasonUnmatched, idx, tok.Payload)
		return true
	}

	end := o + len(tok.Payload)
	rng := Range{Start: r.convert(o)}
	rng.Length = r.convert(end) - rng.Start
	r.cursor = end
	r.matched++

	if r.onMatch != nil {
		r.onMatch(rng, tok)
	}
	return !r.Exhausted()
}

// Finish accounts for tokens that were never fed because the caller stopped
// early. total is the number of tokens the caller had.
func (r *Reconstructor) Finish(total int) {
	if skipped := total - r.index; skipped > 0 {
		r.dropped += skipped
		r.report(diag.ReasonTruncated, r.index, fmt.Sprintf("%d tokens past end of text", skipped))
	}
	log.Debug(log.CatRanges, "reconstructed",
		"matched", r.matched, "dropped", r.dropped, "cursor", r.cursor, "len", len(r.text))
}

// Exhausted reports whether the cursor has reached the end of the text.
func (r *Reconstructor) Exhausted() bool {
	return r.cursor >= len(r.text)
}

// Matched returns the number of tokens emitted so far.
func (r *Reconstructor) Matched() int {
	return r.matched
}

// Dropped returns the number of tokens dropped so far.
func (r *Reconstructor) Dropped() int {
	return r.dropped
}

// convert maps a byte offset at or after convByte to the configured unit.
func (r *Reconstructor) convert(b int) int {
	if r.unit == UnitBytes {
		return b
	}
	seg := r.text[r.convByte:b]
	switch r.unit {
	case UnitRunes:
		r.convUnit += utf8.RuneCountInString(seg)
	case UnitUTF16:
		for _, c := range seg {
			n := utf16.RuneLen(c)
			if n < 0 {
				n = 1
			}
			r.convUnit += n
		}
	}
	r.convByte = b
	return r.convUnit
}

func (r *Reconstructor) report(reason diag.Reason, idx int, text string) {
	r.sink.Emit(diag.Diagnostic{
		Stage:  diag.StageRanges,
		Reason: reason,
		Line:   idx,
		Text:   text,
	})
}
