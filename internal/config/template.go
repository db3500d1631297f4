package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dsabanin/pygmentskit/internal/log"
)

// DefaultConfigTemplate returns the default configuration as commented YAML.
func DefaultConfigTemplate() string {
	return `# pygmentskit configuration

# Lexing engine
engine:
  # "chroma" tokenizes in-process. "pygments" runs an external engine
  # that speaks the raw token protocol (KIND<TAB>'hex').
  kind: chroma
  # Executable for the pygments engine, resolved via PATH.
  command: pygmentize
  # Extra arguments placed before -f raw -l <lexer> <file>.
  # args: []
  # Directory for the scratch file handed to the engine (default: system temp).
  # scratch_dir: /tmp
  # Deadline for a single engine run. 0 disables it.
  timeout: 0s

# Theme
theme:
  # Built-in presets: default, monokai, solarized-dark, github-light
  preset: default
  # Derive the theme from a chroma style instead (see "pygmentskit themes").
  # chroma_style: dracula
  # Per-selector overrides. A rule is "#rrggbb", or any of
  # "fg:#rrggbb bg:#rrggbb bold italic underline".
  # colors:
  #   keyword: "#ff79c6 bold"
  #   "entity.name.function": "#50fa7b"
  #   comment: "fg:#6272a4 italic"

# Output
output:
  # Unit for token offsets: bytes, runes, or utf16
  units: bytes
  # Color profile: auto, truecolor, 256, 16, none
  color_profile: auto
  # Prefix highlighted lines with a line-number gutter.
  line_numbers: false

# Tracing (OpenTelemetry spans around each pipeline stage)
tracing:
  enabled: false
  # Exporter: none, file, stdout, otlp
  exporter: file
  # file_path: ~/.config/pygmentskit/traces/traces.jsonl
  otlp_endpoint: localhost:4317
  sample_rate: 1.0

# Write debug logs to this file instead of ./debug.log when --debug is set.
# Use "-" to log to stderr.
# debug_log: /tmp/pygmentskit.log

# Minimum debug log level: debug, info, warn, error
log_level: debug
`
}

// WriteDefaultConfig creates a config file at the given path with default settings.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
