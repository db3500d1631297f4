// Package render turns styled token ranges into ANSI-colored terminal text.
package render

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/dsabanin/pygmentskit/internal/parser"
	"github.com/dsabanin/pygmentskit/internal/ranges"
	"github.com/dsabanin/pygmentskit/internal/style"
	"github.com/dsabanin/pygmentskit/internal/theme"
	"github.com/dsabanin/pygmentskit/internal/token"
)

// Span is a styled byte range of the source.
type Span struct {
	Range ranges.Range
	Attrs style.Attributes
}

// ANSI renders source text with terminal color escapes.
type ANSI struct {
	r           *lipgloss.Renderer
	lineNumbers bool
	gutter      lipgloss.Style
}

// Option configures an ANSI renderer.
type Option func(*ANSI)

// WithLineNumbers prefixes every line with its 1-based number.
func WithLineNumbers(color theme.Color) Option {
	return func(a *ANSI) {
		a.lineNumbers = true
		if color.IsSet() {
			a.gutter = a.gutter.Foreground(lipgloss.Color(color))
		}
	}
}

// New returns a renderer that targets w with the given color profile.
func New(w io.Writer, profile termenv.Profile, opts ...Option) *ANSI {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(profile)
	a := &ANSI{
		r:      r,
		gutter: r.NewStyle().Faint(true),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ParseProfile maps a profile name to a termenv profile. "auto" detects the
// profile of w.
func ParseProfile(name string, w io.Writer) (termenv.Profile, error) {
	switch strings.ToLower(name) {
	case "", "auto":
		return termenv.NewOutput(w).EnvColorProfile(), nil
	case "truecolor", "24bit":
		return termenv.TrueColor, nil
	case "256", "ansi256":
		return termenv.ANSI256, nil
	case "16", "ansi":
		return termenv.ANSI, nil
	case "none", "ascii":
		return termenv.Ascii, nil
	}
	return termenv.Ascii, fmt.Errorf("unknown color profile: %s", name)
}

// Render writes src with spans colored. Spans must be byte ranges in source
// order; a span that overlaps an earlier one is skipped. Text outside every
// span is written unstyled.
func (a *ANSI) Render(src string, spans []Span) string {
	var b strings.Builder
	b.Grow(len(src) * 2)

	line := 1
	total := strings.Count(src, "\n")
	if !strings.HasSuffix(src, "\n") {
		total++
	}
	if a.lineNumbers {
		a.writeGutter(&b, line, total)
	}

	emit := func(text string, st *lipgloss.Style) {
		for {
			i := strings.IndexByte(text, '\n')
			seg := text
			if i >= 0 {
				seg = text[:i]
			}
			if seg != "" {
				if st != nil {
					b.WriteString(st.Render(seg))
				} else {
					b.WriteString(seg)
				}
			}
			if i < 0 {
				return
			}
			b.WriteByte('\n')
			line++
			if a.lineNumbers && line <= total {
				a.writeGutter(&b, line, total)
			}
			text = text[i+1:]
		}
	}

	cursor := 0
	for _, sp := range spans {
		start, end := sp.Range.Start, sp.Range.End()
		if start < cursor || end > len(src) {
			continue
		}
		emit(src[cursor:start], nil)
		st := a.style(sp.Attrs)
		emit(src[start:end], &st)
		cursor = end
	}
	emit(src[cursor:], nil)

	return b.String()
}

func (a *ANSI) style(attrs style.Attributes) lipgloss.Style {
	st := a.r.NewStyle().TabWidth(lipgloss.NoTabConversion)
	if attrs.Foreground.IsSet() {
		st = st.Foreground(lipgloss.Color(attrs.Foreground))
	}
	if attrs.Background.IsSet() {
		st = st.Background(lipgloss.Color(attrs.Background))
	}
	return st
}

func (a *ANSI) writeGutter(b *strings.Builder, line, total int) {
	width := len(fmt.Sprint(total))
	b.WriteString(a.gutter.Render(fmt.Sprintf("%*d", width, line)))
	b.WriteString("  ")
}

// Highlight parses src with p and renders it with th. Ranges are always taken
// in bytes, whatever unit p was configured with.
func (a *ANSI) Highlight(ctx context.Context, p *parser.Parser, src, lexer string, th theme.Theme) (string, error) {
	var spans []Span
	err := p.With(parser.WithUnit(ranges.UnitBytes)).ParseStyled(ctx, src, lexer, th, func(r ranges.Range, _ token.Token, attrs style.Attributes) {
		if attrs.IsZero() {
			return
		}
		spans = append(spans, Span{Range: r, Attrs: attrs})
	})
	if err != nil {
		return "", err
	}
	return a.Render(src, spans), nil
}
