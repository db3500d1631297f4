package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/dsabanin/pygmentskit/internal/diag"
	"github.com/dsabanin/pygmentskit/internal/parser"
	"github.com/dsabanin/pygmentskit/internal/ranges"
	"github.com/dsabanin/pygmentskit/internal/style"
	"github.com/dsabanin/pygmentskit/internal/token"
)

// maxTextWidth bounds the TEXT column of the table, in terminal cells.
const maxTextWidth = 48

var (
	tokLexer       string
	tokFormat      string
	tokUnits       string
	tokStyled      bool
	tokDiagnostics bool
	tokTheme       themeFlags
)

var tokensCmd = &cobra.Command{
	Use:   "tokens [file]",
	Short: "Print every matched token with its range",
	Long: `Tokenize a file (or stdin) and print every token that was matched back onto
the input, with its start offset and length.

Tokens the engine emitted but that could not be located in the input are
dropped. Use --diagnostics to see them on stderr.

Examples:
  # Table of tokens, lexer guessed from the extension
  pygmentskit tokens main.go

  # JSON with UTF-16 offsets
  pygmentskit tokens --format json --units utf16 main.go

  # Only tokens the theme colors, with their colors
  pygmentskit tokens --styled --theme monokai -l python < script.py`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTokens,
}

func init() {
	tokensCmd.Flags().StringVarP(&tokLexer, "lexer", "l", "", "lexer name or alias (default: guessed from the file name)")
	tokensCmd.Flags().StringVarP(&tokFormat, "format", "f", "table", "output format: table or json")
	tokensCmd.Flags().StringVarP(&tokUnits, "units", "u", "", "offset unit: bytes, runes or utf16 (overrides config)")
	tokensCmd.Flags().BoolVarP(&tokStyled, "styled", "s", false, "only print styled tokens, with their colors")
	tokensCmd.Flags().BoolVar(&tokDiagnostics, "diagnostics", false, "print dropped lines and tokens to stderr")
	tokTheme.register(tokensCmd)
	rootCmd.AddCommand(tokensCmd)
}

// tokenRow is one printed token.
type tokenRow struct {
	Start      int    `json:"start"`
	Length     int    `json:"length"`
	Kind       string `json:"kind"`
	Text       string `json:"text"`
	Foreground string `json:"fg,omitempty"`
	Background string `json:"bg,omitempty"`
}

func runTokens(cmd *cobra.Command, args []string) error {
	if tokFormat != "table" && tokFormat != "json" {
		return fmt.Errorf("unknown format %q: use table or json", tokFormat)
	}

	src, err := readSource(cmd, args)
	if err != nil {
		return err
	}
	lexer, err := resolveLexer(tokLexer, src)
	if err != nil {
		return err
	}

	var opts []parser.Option
	if tokUnits != "" {
		unit, err := ranges.ParseUnit(tokUnits)
		if err != nil {
			return err
		}
		opts = append(opts, parser.WithUnit(unit))
	}
	var collected diag.Collector
	if tokDiagnostics {
		opts = append(opts, parser.WithDiagnostics(collected.Sink()))
	}
	base, err := rt.Parser()
	if err != nil {
		return err
	}
	p := base.With(opts...)

	ctx, cancel := parseContext(cmd.Context())
	defer cancel()

	var rows []tokenRow
	if tokStyled {
		th, err := tokTheme.load()
		if err != nil {
			return err
		}
		err = p.ParseStyled(ctx, src.Text, lexer, th, func(r ranges.Range, tok token.Token, attrs style.Attributes) {
			row := newTokenRow(r, tok)
			row.Foreground = string(attrs.Foreground)
			row.Background = string(attrs.Background)
			rows = append(rows, row)
		})
		if err != nil {
			return err
		}
	} else {
		err = p.Parse(ctx, src.Text, lexer, func(r ranges.Range, tok token.Token) {
			rows = append(rows, newTokenRow(r, tok))
		})
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if tokFormat == "json" {
		err = writeTokensJSON(out, rows)
	} else {
		err = writeTokensTable(out, rows, tokStyled)
	}
	if err != nil {
		return err
	}

	for _, d := range collected.Items {
		fmt.Fprintln(cmd.ErrOrStderr(), d)
	}
	return nil
}

func newTokenRow(r ranges.Range, tok token.Token) tokenRow {
	return tokenRow{
		Start:  r.Start,
		Length: r.Length,
		Kind:   tok.Kind.String(),
		Text:   tok.Payload,
	}
}

func writeTokensJSON(w io.Writer, rows []tokenRow) error {
	if rows == nil {
		rows = []tokenRow{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

// writeTokensTable prints rows as columns aligned by display width.
func writeTokensTable(w io.Writer, rows []tokenRow, styled bool) error {
	headers := []string{"START", "LEN", "KIND"}
	if styled {
		headers = append(headers, "FG", "BG")
	}
	headers = append(headers, "TEXT")

	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		line := []string{strconv.Itoa(r.Start), strconv.Itoa(r.Length), r.Kind}
		if styled {
			line = append(line, dash(r.Foreground), dash(r.Background))
		}
		line = append(line, runewidth.Truncate(strconv.Quote(r.Text), maxTextWidth, "…"))
		cells = append(cells, line)
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, line := range cells {
		for i, c := range line {
			widths[i] = max(widths[i], runewidth.StringWidth(c))
		}
	}

	var b strings.Builder
	writeRow := func(line []string) {
		for i, c := range line {
			if i == len(line)-1 {
				b.WriteString(c)
				break
			}
			b.WriteString(runewidth.FillRight(c, widths[i]))
			b.WriteString("  ")
		}
		b.WriteByte('\n')
	}
	writeRow(headers)
	for _, line := range cells {
		writeRow(line)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
