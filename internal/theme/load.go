package theme

import (
	"fmt"
	"strings"

	"github.com/dsabanin/pygmentskit/internal/log"
)

// Config selects and customizes a theme. It mirrors config.ThemeConfig.
type Config struct {
	Preset      string
	ChromaStyle string
	// Colors maps selectors to rule values (see ParseRule). They replace the
	// base rule for that exact selector.
	Colors map[string]string
}

// Load builds a cached theme. The base rules come from the chroma style when
// one is named, otherwise from the preset ("default" when empty). Color
// overrides are validated and applied last.
func Load(cfg Config, selector SelectorFunc) (*Cached, error) {
	var (
		rules Rules
		name  string
		err   error
	)

	if cfg.ChromaStyle != "" {
		name = "chroma:" + strings.ToLower(cfg.ChromaStyle)
		rules, err = FromChroma(cfg.ChromaStyle, selector)
	} else {
		name = cfg.Preset
		if name == "" {
			name = DefaultPreset.Name
		}
		rules, err = FromPreset(name)
	}
	if err != nil {
		return nil, err
	}

	for sel, value := range cfg.Colors {
		if strings.TrimSpace(sel) == "" {
			return nil, fmt.Errorf("%w: empty selector", ErrInvalidRule)
		}
		scope, err := ParseRule(value)
		if err != nil {
			return nil, fmt.Errorf("theme color %s: %w", sel, err)
		}
		rules[sel] = scope
	}

	log.Debug(log.CatTheme, "Loaded theme", "name", name, "rules", len(rules), "overrides", len(cfg.Colors))
	return NewCached(name, rules), nil
}
