package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dsabanin/pygmentskit/internal/engine"
)

// source is one input document.
type source struct {
	// Path is empty for standard input.
	Path string
	Text string
}

// readSource reads the file named by args[0], or standard input when there
// is no argument or it is "-".
func readSource(cmd *cobra.Command, args []string) (source, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return source{}, fmt.Errorf("reading stdin: %w", err)
		}
		return source{Text: string(data)}, nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return source{}, fmt.Errorf("reading %s: %w", args[0], err)
	}
	return source{Path: args[0], Text: string(data)}, nil
}

// resolveLexer returns the explicit lexer, or one guessed from the file name.
func resolveLexer(explicit string, src source) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if src.Path != "" {
		if alias, ok := engine.GuessLexer(src.Path); ok {
			return alias, nil
		}
		return "", fmt.Errorf("cannot determine lexer for %s; pass --lexer", src.Path)
	}
	return "", fmt.Errorf("--lexer is required when reading stdin")
}
