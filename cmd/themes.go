package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/dsabanin/pygmentskit/internal/config"
	"github.com/dsabanin/pygmentskit/internal/style"
	"github.com/dsabanin/pygmentskit/internal/theme"
)

// themeFlags are the theme selection flags shared by several commands.
type themeFlags struct {
	preset      string
	chromaStyle string
}

func (f *themeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.preset, "theme", "t", "", "theme preset (overrides config)")
	cmd.Flags().StringVar(&f.chromaStyle, "chroma-style", "", "derive the theme from a chroma style (overrides config)")
}

// apply returns the configured theme with the flags applied on top.
func (f *themeFlags) apply(base config.ThemeConfig) config.ThemeConfig {
	out := base
	if f.preset != "" {
		out.Preset = f.preset
		out.ChromaStyle = ""
	}
	if f.chromaStyle != "" {
		out.ChromaStyle = f.chromaStyle
	}
	return out
}

func (f *themeFlags) load() (*theme.Cached, error) {
	tc := f.apply(cfg.Theme)
	if err := config.ValidateTheme(tc); err != nil {
		return nil, err
	}
	return theme.Load(tc.Options(), style.Selector)
}

var themesChroma bool

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List built-in theme presets and chroma styles",
	Long: `List the built-in theme presets. With --chroma, also list every chroma
style usable through --chroma-style or theme.chroma_style.

Examples:
  pygmentskit themes
  pygmentskit themes --chroma`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()

		names := theme.PresetNames()
		width := 0
		for _, n := range names {
			width = max(width, runewidth.StringWidth(n))
		}

		current := cfg.Theme.Preset
		if cfg.Theme.ChromaStyle != "" {
			current = ""
		}
		for _, n := range names {
			marker := " "
			if n == current {
				marker = "*"
			}
			fmt.Fprintf(out, "%s %s  %s\n", marker, runewidth.FillRight(n, width), theme.Presets[n].Description)
		}

		if themesChroma {
			chromaNames := theme.ChromaStyles()
			sort.Strings(chromaNames)
			fmt.Fprintf(out, "\nchroma styles:\n")
			for _, n := range chromaNames {
				marker := " "
				if strings.EqualFold(n, cfg.Theme.ChromaStyle) {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %s\n", marker, n)
			}
		}
		return nil
	},
}

func init() {
	themesCmd.Flags().BoolVar(&themesChroma, "chroma", false, "also list chroma styles")
	rootCmd.AddCommand(themesCmd)
}
