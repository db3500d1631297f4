// Package style maps classified tokens to display attributes through a theme.
package style

import (
	"github.com/dsabanin/pygmentskit/internal/ranges"
	"github.com/dsabanin/pygmentskit/internal/theme"
	"github.com/dsabanin/pygmentskit/internal/token"
)

// Attributes are the display overrides for one token. An unset color means
// no override. Font styles are not carried.
type Attributes struct {
	Foreground theme.Color
	Background theme.Color
}

// IsZero reports whether a carries no override at all.
func (a Attributes) IsZero() bool {
	return a == Attributes{}
}

// Style resolves the attributes for tok. It reports false when the token's
// kind has no selector or the theme has no rule for it; the caller must then
// emit nothing for the token. A matching rule that sets neither color still
// yields true with empty Attributes.
func Style(_ ranges.Range, tok token.Token, th theme.Theme) (Attributes, bool) {
	selector, ok := Selector(tok.Kind)
	if !ok {
		return Attributes{}, false
	}
	scope, ok := th.ResolveScope(selector)
	if !ok {
		return Attributes{}, false
	}
	return Attributes{
		Foreground: scope.Foreground,
		Background: scope.Background,
	}, true
}
