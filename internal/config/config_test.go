package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsabanin/pygmentskit/internal/engine"
	"github.com/dsabanin/pygmentskit/internal/ranges"
	"github.com/dsabanin/pygmentskit/internal/theme"
	"github.com/dsabanin/pygmentskit/internal/tracing"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	assert.Equal(t, EngineChroma, cfg.Engine.Kind)
	assert.Equal(t, engine.DefaultCommand, cfg.Engine.Command)
	assert.Equal(t, "default", cfg.Theme.Preset)
	assert.Equal(t, "bytes", cfg.Output.Units)
	assert.Equal(t, "auto", cfg.Output.ColorProfile)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, "file", cfg.Tracing.Exporter)
	assert.Equal(t, "debug", cfg.LogLevel)
	require.NoError(t, Validate(cfg))
}

func TestDefaultTracesFilePath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	assert.Equal(t, "/home/tester/.config/pygmentskit/traces/traces.jsonl", DefaultTracesFilePath())
}

func TestValidateEngine(t *testing.T) {
	tests := []struct {
		name    string
		cfg     EngineConfig
		wantErr string
	}{
		{name: "empty", cfg: EngineConfig{}},
		{name: "chroma", cfg: EngineConfig{Kind: "chroma"}},
		{name: "pygments", cfg: EngineConfig{Kind: "pygments", Command: "pygmentize", Timeout: time.Second}},
		{name: "unknown kind", cfg: EngineConfig{Kind: "tree-sitter"}, wantErr: "engine.kind"},
		{name: "negative timeout", cfg: EngineConfig{Timeout: -time.Second}, wantErr: "engine.timeout"},
		{name: "relative scratch dir", cfg: EngineConfig{ScratchDir: "tmp"}, wantErr: "engine.scratch_dir"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEngine(tt.cfg)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateTheme(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ThemeConfig
		wantErr string
	}{
		{name: "empty", cfg: ThemeConfig{}},
		{name: "known preset", cfg: ThemeConfig{Preset: "monokai"}},
		{name: "unknown preset", cfg: ThemeConfig{Preset: "neon"}, wantErr: "unknown theme preset: neon"},
		{
			name: "valid overrides",
			cfg: ThemeConfig{Colors: map[string]any{
				"keyword": "#ff79c6 bold",
				"entity":  map[string]any{"name": map[string]any{"function": "bg:#000"}},
			}},
		},
		{
			name:    "bad color",
			cfg:     ThemeConfig{Colors: map[string]any{"keyword": "#gggggg"}},
			wantErr: "theme.colors.keyword",
		},
		{
			name:    "unknown field",
			cfg:     ThemeConfig{Colors: map[string]any{"comment": "#888 blink"}},
			wantErr: "unknown field",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTheme(tt.cfg)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateTheme_WrapsRuleError(t *testing.T) {
	err := ValidateTheme(ThemeConfig{Colors: map[string]any{"string": "#12"}})
	require.ErrorIs(t, err, theme.ErrInvalidColor)
}

func TestValidateOutput(t *testing.T) {
	require.NoError(t, ValidateOutput(OutputConfig{}))
	require.NoError(t, ValidateOutput(OutputConfig{Units: "utf16", ColorProfile: "256"}))
	require.NoError(t, ValidateOutput(OutputConfig{Units: "runes", ColorProfile: "none"}))

	err := ValidateOutput(OutputConfig{Units: "graphemes"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output.units")

	err = ValidateOutput(OutputConfig{ColorProfile: "sepia"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output.color_profile")
}

func TestValidateLogLevel(t *testing.T) {
	for _, level := range []string{"", "debug", "INFO", "warning", "error"} {
		require.NoError(t, ValidateLogLevel(level), level)
	}

	err := ValidateLogLevel("verbose")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log_level must be one of")

	cfg := Defaults()
	cfg.LogLevel = "trace"
	require.Error(t, Validate(cfg))
}

func TestOutputConfig_Unit(t *testing.T) {
	u, err := OutputConfig{Units: "utf16"}.Unit()
	require.NoError(t, err)
	assert.Equal(t, ranges.UnitUTF16, u)

	u, err = OutputConfig{}.Unit()
	require.NoError(t, err)
	assert.Equal(t, ranges.UnitBytes, u)
}

func TestValidateTracing(t *testing.T) {
	require.NoError(t, ValidateTracing(tracing.DefaultConfig()))

	err := ValidateTracing(tracing.Config{SampleRate: 1.5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tracing.sample_rate must be between 0.0 and 1.0")

	err = ValidateTracing(tracing.Config{Exporter: "jaeger"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tracing.exporter")

	err = ValidateTracing(tracing.Config{Enabled: true, Exporter: "file"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tracing.file_path")
}

func TestFlattenedColors(t *testing.T) {
	cfg := ThemeConfig{Colors: map[string]any{
		"keyword": "#ff0000",
		"entity": map[string]any{
			"name": map[string]any{
				"function": "#00ff00",
				"class":    "#0000ff",
			},
		},
		"legacy":  map[any]any{"nested": "#111111", 7: "#222222"},
		"ignored": 42,
	}}

	assert.Equal(t, map[string]string{
		"keyword":              "#ff0000",
		"entity.name.function": "#00ff00",
		"entity.name.class":    "#0000ff",
		"legacy.nested":        "#111111",
	}, cfg.FlattenedColors())
}

func TestThemeConfig_Options(t *testing.T) {
	cfg := ThemeConfig{
		Preset:      "monokai",
		ChromaStyle: "dracula",
		Colors:      map[string]any{"comment": "#888"},
	}

	assert.Equal(t, theme.Config{
		Preset:      "monokai",
		ChromaStyle: "dracula",
		Colors:      map[string]string{"comment": "#888"},
	}, cfg.Options())
}

func TestEngineConfig_Subprocess(t *testing.T) {
	cfg := EngineConfig{Command: "/usr/bin/pygmentize", Args: []string{"-O", "stripnl=False"}, ScratchDir: "/var/tmp"}

	sub := cfg.Subprocess()
	assert.Equal(t, "/usr/bin/pygmentize", sub.Command)
	assert.Equal(t, []string{"-O", "stripnl=False"}, sub.Args)
	assert.Equal(t, "/var/tmp", sub.ScratchDir)
}

func TestDefaultConfigTemplate_LoadsWithViper(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(DefaultConfigTemplate())))

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))

	assert.Equal(t, EngineChroma, cfg.Engine.Kind)
	assert.Equal(t, "pygmentize", cfg.Engine.Command)
	assert.Equal(t, time.Duration(0), cfg.Engine.Timeout)
	assert.Equal(t, "default", cfg.Theme.Preset)
	assert.Empty(t, cfg.Theme.Colors)
	assert.Equal(t, "bytes", cfg.Output.Units)
	assert.Equal(t, "auto", cfg.Output.ColorProfile)
	assert.False(t, cfg.Output.LineNumbers)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, "file", cfg.Tracing.Exporter)
	assert.InDelta(t, 1.0, cfg.Tracing.SampleRate, 1e-9)
	assert.Equal(t, "debug", cfg.LogLevel)
	require.NoError(t, Validate(cfg))
}

func TestUnmarshal_DottedSelectors(t *testing.T) {
	yamlContent := `
theme:
  preset: monokai
  colors:
    "entity.name.function": "#a6e22e"
    keyword: "#f92672 bold"
engine:
  kind: pygments
  timeout: 3s
`
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(yamlContent)))

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))

	assert.Equal(t, EnginePygments, cfg.Engine.Kind)
	assert.Equal(t, 3*time.Second, cfg.Engine.Timeout)
	assert.Equal(t, map[string]string{
		"entity.name.function": "#a6e22e",
		"keyword":              "#f92672 bold",
	}, cfg.Theme.FlattenedColors())
	require.NoError(t, Validate(cfg))
}

func TestWriteDefaultConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "pygmentskit", "config.yaml")

	require.NoError(t, WriteDefaultConfig(configPath))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfigTemplate(), string(data))

	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
