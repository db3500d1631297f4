// Package theme resolves TextMate-style scope selectors to display colors.
//
// A Theme is the collaborator the style mapper consults for each token. The
// package ships a handful of preset rule sets, can derive rules from a chroma
// style, and wraps any Theme in a resolution cache.
package theme

import (
	"sort"
	"strings"
)

// Color is a "#rrggbb" hex color. The empty Color means "no override".
type Color string

// IsSet reports whether c carries a color.
func (c Color) IsSet() bool {
	return c != ""
}

// Scope is what a theme rule carries. FontStyle is opaque to the style mapper.
type Scope struct {
	Foreground Color
	Background Color
	FontStyle  string
}

// IsZero reports whether s carries nothing at all.
func (s Scope) IsZero() bool {
	return s == Scope{}
}

// Theme resolves a scope selector such as "entity.name.function".
type Theme interface {
	ResolveScope(selector string) (Scope, bool)
}

// Func adapts a function to Theme.
type Func func(selector string) (Scope, bool)

func (f Func) ResolveScope(selector string) (Scope, bool) {
	return f(selector)
}

// Rules maps selectors to scopes. A lookup matches the longest rule that is
// the selector itself or a dot-separated prefix of it, so a rule for
// "entity.name" answers "entity.name.function" when no more specific rule
// exists.
type Rules map[string]Scope

// ResolveScope implements Theme.
func (r Rules) ResolveScope(selector string) (Scope, bool) {
	for s := selector; s != ""; {
		if scope, ok := r[s]; ok {
			return scope, true
		}
		i := strings.LastIndexByte(s, '.')
		if i < 0 {
			break
		}
		s = s[:i]
	}
	return Scope{}, false
}

// Selectors returns the rule selectors, sorted.
func (r Rules) Selectors() []string {
	out := make([]string, 0, len(r))
	for s := range r {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
