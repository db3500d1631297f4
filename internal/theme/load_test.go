package theme

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultPreset(t *testing.T) {
	th, err := Load(Config{}, testSelector)
	require.NoError(t, err)
	require.Equal(t, "default", th.Name())

	scope, ok := th.ResolveScope("comment.line.double-slash")
	require.True(t, ok)
	require.Equal(t, Color("#696969"), scope.Foreground)
	require.Equal(t, "italic", scope.FontStyle)
}

func TestLoad_PresetWithOverride(t *testing.T) {
	th, err := Load(Config{
		Preset: "monokai",
		Colors: map[string]string{
			"keyword":              "#00FF00",
			"entity.name.function": "bg:#101010",
		},
	}, testSelector)
	require.NoError(t, err)
	require.Equal(t, "monokai", th.Name())

	scope, ok := th.ResolveScope("keyword.control")
	require.True(t, ok)
	require.Equal(t, Color("#00ff00"), scope.Foreground)

	scope, ok = th.ResolveScope("entity.name.function")
	require.True(t, ok)
	require.Empty(t, scope.Foreground, "override replaces the whole rule")
	require.Equal(t, Color("#101010"), scope.Background)

	scope, ok = th.ResolveScope("string")
	require.True(t, ok)
	require.Equal(t, Color("#e6db74"), scope.Foreground, "untouched preset rule")
}

func TestLoad_OverridesDoNotLeakIntoPresets(t *testing.T) {
	_, err := Load(Config{Preset: "monokai", Colors: map[string]string{"keyword": "#000000"}}, testSelector)
	require.NoError(t, err)

	rules, err := FromPreset("monokai")
	require.NoError(t, err)
	require.Equal(t, Color("#f92672"), rules["keyword"].Foreground)
}

func TestLoad_ChromaStyle(t *testing.T) {
	th, err := Load(Config{Preset: "monokai", ChromaStyle: "github"}, testSelector)
	require.NoError(t, err)
	require.Equal(t, "chroma:github", th.Name())

	_, ok := th.ResolveScope("keyword")
	require.True(t, ok)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"unknown preset", Config{Preset: "nonexistent"}, "unknown theme preset"},
		{"unknown chroma style", Config{ChromaStyle: "nonexistent"}, "unknown chroma style"},
		{"bad color", Config{Colors: map[string]string{"keyword": "#GGGGGG"}}, "invalid hex color"},
		{"empty selector", Config{Colors: map[string]string{" ": "#FFFFFF"}}, "empty selector"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.cfg, testSelector)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}
