package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dsabanin/pygmentskit/internal/engine"
)

var lexersCmd = &cobra.Command{
	Use:   "lexers [filter]",
	Short: "List the lexers of the chroma engine",
	Long: `List the lexers the in-process chroma engine knows about. An optional
filter keeps only names containing it (case-insensitive).

An external pygments engine has its own list: run "pygmentize -L lexers".`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := ""
		if len(args) == 1 {
			filter = strings.ToLower(args[0])
		}
		for _, name := range engine.Lexers() {
			if filter != "" && !strings.Contains(strings.ToLower(name), filter) {
				continue
			}
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lexersCmd)
}
