package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dsabanin/pygmentskit/internal/engine"
)

var (
	engFormat string
	engLexer  string
)

var engineCmd = &cobra.Command{
	Use:   "engine -f raw -l <lexer> <file>",
	Short: "Run the chroma engine behind the pygmentize raw protocol",
	Long: `Tokenize a file with the in-process chroma engine and write the raw token
protocol (one "Token.Kind<TAB>'hex'" line per token) to stdout, the way
"pygmentize -f raw" does. An unknown lexer exits with status 1 and a message
on stderr.

This lets pygmentskit act as its own external engine:

  engine:
    kind: pygments
    command: pygmentskit
    args: [engine]`,
	Args: cobra.ExactArgs(1),
	RunE: runEngine,
}

func init() {
	engineCmd.Flags().StringVarP(&engFormat, "format", "f", "raw", "output format (only raw is supported)")
	engineCmd.Flags().StringVarP(&engLexer, "lexer", "l", "", "lexer name or alias")
	_ = engineCmd.MarkFlagRequired("lexer")
	rootCmd.AddCommand(engineCmd)
}

func runEngine(cmd *cobra.Command, args []string) error {
	if engFormat != "raw" {
		return fmt.Errorf("unsupported format %q: only raw is supported", engFormat)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	out, err := engine.NewChroma().Tokenize(cmd.Context(), string(data), engLexer)
	var ee *engine.EngineError
	if errors.As(err, &ee) {
		_, _ = io.WriteString(cmd.ErrOrStderr(), ee.Stderr)
		return &exitError{code: ee.ExitCode}
	}
	if err != nil {
		return err
	}

	_, err = cmd.OutOrStdout().Write(out.Stdout)
	return err
}
