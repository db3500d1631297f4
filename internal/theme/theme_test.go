package theme

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dsabanin/pygmentskit/internal/token"
)

func TestRules_LongestPrefix(t *testing.T) {
	rules := Rules{
		"entity":               {Foreground: "#111111"},
		"entity.name":          {Foreground: "#222222"},
		"entity.name.function": {Foreground: "#333333"},
	}

	tests := []struct {
		selector string
		want     Color
		found    bool
	}{
		{"entity.name.function", "#333333", true},
		{"entity.name.function.decorator", "#333333", true},
		{"entity.name.class", "#222222", true},
		{"entity.other", "#111111", true},
		{"entity", "#111111", true},
		{"entityx", "", false},
		{"keyword", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			scope, ok := rules.ResolveScope(tt.selector)
			require.Equal(t, tt.found, ok)
			require.Equal(t, tt.want, scope.Foreground)
		})
	}
}

func TestParseRule(t *testing.T) {
	scope, err := ParseRule("#F92672 bg:#000 bold italic")
	require.NoError(t, err)
	require.Equal(t, Scope{Foreground: "#f92672", Background: "#000000", FontStyle: "bold italic"}, scope)
	require.Equal(t, "#f92672 bg:#000000 bold italic", scope.String())

	scope, err = ParseRule("fg:#abc")
	require.NoError(t, err)
	require.Equal(t, Color("#aabbcc"), scope.Foreground)

	scope, err = ParseRule("underline")
	require.NoError(t, err)
	require.Equal(t, Scope{FontStyle: "underline"}, scope)
}

func TestParseRule_Invalid(t *testing.T) {
	for _, value := range []string{"", "   ", "#12345", "#GGGGGG", "bg:red", "blink", "f92672"} {
		t.Run(value, func(t *testing.T) {
			_, err := ParseRule(value)
			require.Error(t, err)
		})
	}

	_, err := ParseRule("#zzz")
	require.ErrorIs(t, err, ErrInvalidColor)
	_, err = ParseRule("sparkle")
	require.ErrorIs(t, err, ErrInvalidRule)
}

func TestPresets_AllParse(t *testing.T) {
	require.Equal(t, []string{"default", "github-light", "monokai", "solarized-dark"}, PresetNames())

	for _, name := range PresetNames() {
		t.Run(name, func(t *testing.T) {
			rules, err := FromPreset(name)
			require.NoError(t, err)
			require.NotEmpty(t, rules)
			require.Equal(t, name, Presets[name].Name)

			_, ok := rules.ResolveScope("keyword")
			require.True(t, ok, "every preset styles keywords")
		})
	}
}

func TestFromPreset_Unknown(t *testing.T) {
	_, err := FromPreset("nonexistent")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown theme preset")
}

func testSelector(k token.Kind) (string, bool) {
	switch k {
	case token.Keyword:
		return "keyword", true
	case token.Comment:
		return "comment", true
	case token.String:
		return "string", true
	}
	return "", false
}

func TestFromChroma(t *testing.T) {
	rules, err := FromChroma("Monokai", testSelector)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"comment", "keyword", "string"}, rules.Selectors())

	kw, ok := rules.ResolveScope("keyword")
	require.True(t, ok)
	require.Equal(t, Color("#66d9ef"), kw.Foreground)
	require.Empty(t, kw.Background, "background equal to the style's own is dropped")

	_, ok = rules.ResolveScope("entity.name.function")
	require.False(t, ok)
}

func TestFromChroma_Unknown(t *testing.T) {
	_, err := FromChroma("no-such-style", testSelector)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown chroma style")
}

func TestChromaStyles(t *testing.T) {
	require.Contains(t, ChromaStyles(), "monokai")
}
