// Package config provides configuration types, defaults and validation for
// pygmentskit.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dsabanin/pygmentskit/internal/engine"
	"github.com/dsabanin/pygmentskit/internal/ranges"
	"github.com/dsabanin/pygmentskit/internal/theme"
	"github.com/dsabanin/pygmentskit/internal/tracing"
)

// Engine kinds.
const (
	EngineChroma   = "chroma"
	EnginePygments = "pygments"
)

// Config holds all configuration options for pygmentskit.
type Config struct {
	Engine   EngineConfig   `mapstructure:"engine"`
	Theme    ThemeConfig    `mapstructure:"theme"`
	Output   OutputConfig   `mapstructure:"output"`
	Tracing  tracing.Config `mapstructure:"tracing"`
	DebugLog string         `mapstructure:"debug_log"` // "-" logs to stderr
	LogLevel string         `mapstructure:"log_level"` // debug, info, warn or error
}

// EngineConfig selects and locates the lexing engine.
type EngineConfig struct {
	Kind       string        `mapstructure:"kind"`        // "chroma" (default) or "pygments"
	Command    string        `mapstructure:"command"`     // engine executable, resolved via PATH
	Args       []string      `mapstructure:"args"`        // arguments placed before the protocol flags
	ScratchDir string        `mapstructure:"scratch_dir"` // default os.TempDir()
	Timeout    time.Duration `mapstructure:"timeout"`     // 0 means no deadline
}

// Subprocess returns the engine.Config for an external engine.
func (e EngineConfig) Subprocess() engine.Config {
	return engine.Config{
		Command:    e.Command,
		Args:       e.Args,
		ScratchDir: e.ScratchDir,
	}
}

// ThemeConfig holds all theme customization options.
type ThemeConfig struct {
	// Preset names a built-in theme. Valid values: "default", "monokai",
	// "solarized-dark", "github-light".
	Preset string `mapstructure:"preset"`

	// ChromaStyle, when set, derives the theme from a chroma style instead
	// of a preset.
	ChromaStyle string `mapstructure:"chroma_style"`

	// Colors overrides rules per scope selector. Selectors contain dots, so
	// YAML may nest them:
	//   colors:
	//     entity:
	//       name:
	//         function: "#A6E22E"
	// or quote them:
	//   colors:
	//     "entity.name.function": "#A6E22E"
	Colors map[string]any `mapstructure:"colors"`
}

// FlattenedColors returns the Colors map flattened to dot-notation keys.
func (t ThemeConfig) FlattenedColors() map[string]string {
	result := make(map[string]string)
	flattenColors("", t.Colors, result)
	return result
}

// Options converts t to the form the theme package loads.
func (t ThemeConfig) Options() theme.Config {
	return theme.Config{
		Preset:      t.Preset,
		ChromaStyle: t.ChromaStyle,
		Colors:      t.FlattenedColors(),
	}
}

func flattenColors(prefix string, m map[string]any, result map[string]string) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}

		switch val := v.(type) {
		case string:
			result[key] = val
		case map[string]any:
			flattenColors(key, val, result)
		case map[any]any:
			// yaml.v2-style decoders produce map[any]any.
			converted := make(map[string]any)
			for mk, mv := range val {
				if strKey, ok := mk.(string); ok {
					converted[strKey] = mv
				}
			}
			flattenColors(key, converted, result)
		}
	}
}

// OutputConfig controls what the CLI prints.
type OutputConfig struct {
	Units        string `mapstructure:"units"`         // "bytes" (default), "runes" or "utf16"
	ColorProfile string `mapstructure:"color_profile"` // "auto" (default), "truecolor", "256", "16", "none"
	LineNumbers  bool   `mapstructure:"line_numbers"`
}

// Unit returns the parsed range unit.
func (o OutputConfig) Unit() (ranges.Unit, error) {
	return ranges.ParseUnit(o.Units)
}

// DefaultTracesFilePath returns ~/.config/pygmentskit/traces/traces.jsonl, or
// an empty string if the home directory is unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "pygmentskit", "traces", "traces.jsonl")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	tr := tracing.DefaultConfig()
	tr.FilePath = DefaultTracesFilePath()

	return Config{
		Engine: EngineConfig{
			Kind:    EngineChroma,
			Command: engine.DefaultCommand,
		},
		Theme: ThemeConfig{
			Preset: "default",
		},
		Output: OutputConfig{
			Units:        ranges.UnitBytes.String(),
			ColorProfile: "auto",
		},
		Tracing:  tr,
		LogLevel: "debug",
	}
}

// Validate checks the whole configuration. Empty values are valid and fall
// back to defaults.
func Validate(cfg Config) error {
	if err := ValidateEngine(cfg.Engine); err != nil {
		return err
	}
	if err := ValidateTheme(cfg.Theme); err != nil {
		return err
	}
	if err := ValidateOutput(cfg.Output); err != nil {
		return err
	}
	if err := ValidateLogLevel(cfg.LogLevel); err != nil {
		return err
	}
	return ValidateTracing(cfg.Tracing)
}

// ValidateEngine checks engine configuration for errors.
func ValidateEngine(e EngineConfig) error {
	switch e.Kind {
	case "", EngineChroma, EnginePygments:
	default:
		return fmt.Errorf("engine.kind must be %q or %q, got %q", EngineChroma, EnginePygments, e.Kind)
	}
	if e.Timeout < 0 {
		return fmt.Errorf("engine.timeout must not be negative, got %s", e.Timeout)
	}
	if e.ScratchDir != "" && !filepath.IsAbs(e.ScratchDir) {
		return fmt.Errorf("engine.scratch_dir must be an absolute path, got %q", e.ScratchDir)
	}
	return nil
}

// ValidateTheme checks the preset name and every color override.
func ValidateTheme(t ThemeConfig) error {
	if t.Preset != "" {
		if _, ok := theme.Presets[t.Preset]; !ok {
			return fmt.Errorf("theme.preset: unknown theme preset: %s", t.Preset)
		}
	}
	for selector, value := range t.FlattenedColors() {
		if _, err := theme.ParseRule(value); err != nil {
			return fmt.Errorf("theme.colors.%s: %w", selector, err)
		}
	}
	return nil
}

// ValidateOutput checks output configuration for errors.
func ValidateOutput(o OutputConfig) error {
	if o.Units != "" {
		if _, err := o.Unit(); err != nil {
			return fmt.Errorf("output.units: %w", err)
		}
	}
	switch o.ColorProfile {
	case "", "auto", "truecolor", "24bit", "256", "ansi256", "16", "ansi", "none", "ascii":
	default:
		return fmt.Errorf("output.color_profile must be one of auto, truecolor, 256, 16, none, got %q", o.ColorProfile)
	}
	return nil
}

// ValidateLogLevel checks the minimum debug log level.
func ValidateLogLevel(level string) error {
	switch strings.ToLower(level) {
	case "", "debug", "info", "warn", "warning", "error":
		return nil
	}
	return fmt.Errorf("log_level must be one of debug, info, warn, error, got %q", level)
}

// ValidateTracing checks tracing configuration for errors.
func ValidateTracing(t tracing.Config) error {
	if t.SampleRate < 0.0 || t.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", t.SampleRate)
	}
	switch t.Exporter {
	case "", "none", "file", "stdout", "otlp":
	default:
		return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", t.Exporter)
	}
	if t.Enabled && t.Exporter == "file" && t.FilePath == "" {
		return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
	}
	return nil
}
