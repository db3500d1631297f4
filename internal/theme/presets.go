package theme

import (
	"fmt"
	"sort"
)

// Preset is a named, built-in rule set.
type Preset struct {
	Name        string
	Description string
	Rules       map[string]string
}

// Presets contains all built-in theme presets.
var Presets = map[string]Preset{
	"default":        DefaultPreset,
	"monokai":        MonokaiPreset,
	"solarized-dark": SolarizedDarkPreset,
	"github-light":   GitHubLightPreset,
}

// DefaultPreset is a muted dark theme.
var DefaultPreset = Preset{
	Name:        "default",
	Description: "Default pygmentskit theme",
	Rules: map[string]string{
		"comment":                     "#696969 italic",
		"meta.preprocessor":           "#999999",
		"keyword":                     "#cba6f7",
		"keyword.operator":            "#f38ba8",
		"storage.type":                "#cba6f7",
		"support.type":                "#94e2d5",
		"constant":                    "#fab387",
		"constant.language":           "#fab387",
		"constant.numeric":            "#fab387",
		"constant.character":          "#f9e2af",
		"string":                      "#f9e2af",
		"string.regexp":               "#f5c2e7",
		"entity.name.function":        "#89b4fa",
		"entity.name.class":           "#94e2d5 bold",
		"entity.name.tag":             "#89b4fa",
		"entity.other.attribute-name": "#94e2d5",
		"support.function":            "#89b4fa",
		"variable.language":           "#f38ba8",
		"punctuation":                 "#6c7086",
		"invalid":                     "#ff8787 bg:#3b1e1e",
		"markup.deleted":              "#ff8787",
		"markup.inserted":             "#73f59f",
		"markup.heading":              "#54a0ff bold",
		"markup.bold":                 "bold",
		"markup.italic":               "italic",
	},
}

// MonokaiPreset follows the classic Monokai palette.
var MonokaiPreset = Preset{
	Name:        "monokai",
	Description: "Monokai - vivid colors on a dark background",
	Rules: map[string]string{
		"comment":                     "#75715e",
		"meta.preprocessor":           "#75715e",
		"keyword":                     "#f92672",
		"keyword.operator":            "#f92672",
		"storage.type":                "#66d9ef italic",
		"support.type":                "#66d9ef italic",
		"constant":                    "#ae81ff",
		"constant.character.escape":   "#ae81ff",
		"string":                      "#e6db74",
		"entity.name.function":        "#a6e22e",
		"entity.name.class":           "#a6e22e underline",
		"entity.name.tag":             "#f92672",
		"entity.other.attribute-name": "#a6e22e",
		"support.function":            "#66d9ef",
		"variable.language":           "#fd971f italic",
		"invalid":                     "#f8f8f0 bg:#f92672",
		"markup.deleted":              "#f92672",
		"markup.inserted":             "#a6e22e",
		"markup.heading":              "#66d9ef bold",
	},
}

// SolarizedDarkPreset uses Ethan Schoonover's Solarized dark palette.
var SolarizedDarkPreset = Preset{
	Name:        "solarized-dark",
	Description: "Solarized Dark - low contrast dark theme",
	Rules: map[string]string{
		"comment":              "#586e75 italic",
		"meta.preprocessor":    "#cb4b16",
		"keyword":              "#859900",
		"keyword.operator":     "#859900",
		"storage.type":         "#268bd2",
		"support.type":         "#cb4b16",
		"constant":             "#2aa198",
		"constant.language":    "#b58900",
		"constant.numeric":     "#d33682",
		"string":               "#2aa198",
		"string.regexp":        "#dc322f",
		"entity.name.function": "#268bd2",
		"entity.name.class":    "#b58900",
		"entity.name.tag":      "#268bd2",
		"support.function":     "#268bd2",
		"variable":             "#268bd2",
		"invalid":              "#dc322f bg:#073642",
		"markup.deleted":       "#dc322f",
		"markup.inserted":      "#859900",
		"markup.heading":       "#cb4b16 bold",
	},
}

// GitHubLightPreset mirrors GitHub's light code view.
var GitHubLightPreset = Preset{
	Name:        "github-light",
	Description: "GitHub Light - GitHub's light code colors",
	Rules: map[string]string{
		"comment":              "#6a737d",
		"meta.preprocessor":    "#d73a49",
		"keyword":              "#d73a49",
		"keyword.operator":     "#d73a49",
		"storage.type":         "#d73a49",
		"support.type":         "#005cc5",
		"constant":             "#005cc5",
		"string":               "#032f62",
		"string.regexp":        "#22863a",
		"entity.name.function": "#6f42c1",
		"entity.name.class":    "#6f42c1",
		"entity.name.tag":      "#22863a",
		"support.function":     "#005cc5",
		"variable":             "#e36209",
		"invalid":              "#b31d28 bg:#ffeef0 italic",
		"markup.deleted":       "#b31d28 bg:#ffeef0",
		"markup.inserted":      "#22863a bg:#f0fff4",
		"markup.heading":       "#005cc5 bold",
	},
}

// PresetNames returns the preset names, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FromPreset parses the named preset into Rules.
func FromPreset(name string) (Rules, error) {
	preset, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown theme preset: %s", name)
	}
	return preset.Parse()
}

// Parse validates every rule of p.
func (p Preset) Parse() (Rules, error) {
	rules := make(Rules, len(p.Rules))
	for selector, value := range p.Rules {
		scope, err := ParseRule(value)
		if err != nil {
			return nil, fmt.Errorf("preset %s, selector %s: %w", p.Name, selector, err)
		}
		rules[selector] = scope
	}
	return rules, nil
}
