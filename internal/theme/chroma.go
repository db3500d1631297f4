package theme

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/dsabanin/pygmentskit/internal/engine"
	"github.com/dsabanin/pygmentskit/internal/token"
)

// SelectorFunc names the scope selector a Kind is styled under.
type SelectorFunc func(token.Kind) (string, bool)

// ChromaStyles returns the names of the registered chroma styles.
func ChromaStyles() []string {
	return styles.Names()
}

// FromChroma builds rules from a registered chroma style. Each Kind that has a
// selector gets the style entry of its chroma token type. A token background
// equal to the style's own background is dropped so that only real
// highlights surface. When two kinds share a selector the first Kind wins.
func FromChroma(name string, selector SelectorFunc) (Rules, error) {
	style, ok := styles.Registry[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown chroma style: %s", name)
	}

	base := style.Get(chroma.Background).Background
	rules := make(Rules)
	for _, kind := range token.Kinds() {
		sel, ok := selector(kind)
		if !ok {
			continue
		}
		if _, taken := rules[sel]; taken {
			continue
		}
		tt, ok := engine.ChromaType(kind)
		if !ok {
			continue
		}
		scope := scopeFromEntry(style.Get(tt), base)
		if scope.IsZero() {
			continue
		}
		rules[sel] = scope
	}
	return rules, nil
}

func scopeFromEntry(e chroma.StyleEntry, base chroma.Colour) Scope {
	var scope Scope
	if e.Colour.IsSet() {
		scope.Foreground = Color(e.Colour.String())
	}
	if e.Background.IsSet() && e.Background != base {
		scope.Background = Color(e.Background.String())
	}

	var fonts []string
	if e.Bold == chroma.Yes {
		fonts = append(fonts, "bold")
	}
	if e.Italic == chroma.Yes {
		fonts = append(fonts, "italic")
	}
	if e.Underline == chroma.Yes {
		fonts = append(fonts, "underline")
	}
	scope.FontStyle = strings.Join(fonts, " ")
	return scope
}
