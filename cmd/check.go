package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/dsabanin/pygmentskit/internal/diag"
	"github.com/dsabanin/pygmentskit/internal/parser"
	"github.com/dsabanin/pygmentskit/internal/ranges"
	"github.com/dsabanin/pygmentskit/internal/token"
)

var (
	checkLexer string
	checkDiff  bool
)

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Report input the matched tokens do not cover",
	Long: `Tokenize a file (or stdin) and report every run of input that no matched
token covers. Each gap is printed with its byte offset and the command exits
with status 1. With --diff the whole input is printed with the gaps marked.

Examples:
  pygmentskit check main.go
  pygmentskit check --diff --engine pygments -l ruby < script.rb`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVarP(&checkLexer, "lexer", "l", "", "lexer name or alias (default: guessed from the file name)")
	checkCmd.Flags().BoolVar(&checkDiff, "diff", false, "print the input with uncovered text highlighted")
	rootCmd.AddCommand(checkCmd)
}

// coverageGap is a run of input that no matched token covers.
type coverageGap struct {
	Offset int
	Text   string
}

func runCheck(cmd *cobra.Command, args []string) error {
	src, err := readSource(cmd, args)
	if err != nil {
		return err
	}
	lexer, err := resolveLexer(checkLexer, src)
	if err != nil {
		return err
	}
	base, err := rt.Parser()
	if err != nil {
		return err
	}

	var collected diag.Collector
	p := base.With(parser.WithUnit(ranges.UnitBytes), parser.WithDiagnostics(collected.Sink()))

	ctx, cancel := parseContext(cmd.Context())
	defer cancel()

	var matched []ranges.Range
	err = p.Parse(ctx, src.Text, lexer, func(r ranges.Range, _ token.Token) {
		matched = append(matched, r)
	})
	if err != nil {
		return err
	}

	diffs := coverageDiff(src.Text, matched)
	gaps := coverageGaps(diffs)
	out := cmd.OutOrStdout()
	if checkDiff {
		fmt.Fprint(out, diffmatchpatch.New().DiffPrettyText(diffs))
		if !strings.HasSuffix(src.Text, "\n") {
			fmt.Fprintln(out)
		}
	}
	for _, g := range gaps {
		fmt.Fprintf(out, "gap at %d: %s\n", g.Offset, strconv.Quote(g.Text))
	}
	for _, d := range collected.Items {
		fmt.Fprintln(cmd.ErrOrStderr(), d)
	}

	if len(gaps) > 0 {
		fmt.Fprintf(out, "%d tokens matched, %d gaps in %d bytes\n", len(matched), len(gaps), len(src.Text))
		return &exitError{code: 1}
	}
	fmt.Fprintf(out, "ok: %d tokens cover all %d bytes\n", len(matched), len(src.Text))
	return nil
}

// coverageDiff tiles src with the matched byte ranges. Covered text becomes a
// DiffEqual and every uncovered run a DiffDelete, so the diffs concatenate
// back to src. Ranges must be in source order and non-overlapping.
func coverageDiff(src string, matched []ranges.Range) []diffmatchpatch.Diff {
	var diffs []diffmatchpatch.Diff
	add := func(op diffmatchpatch.Operation, text string) {
		if text == "" {
			return
		}
		if n := len(diffs); n > 0 && diffs[n-1].Type == op {
			diffs[n-1].Text += text
			return
		}
		diffs = append(diffs, diffmatchpatch.Diff{Type: op, Text: text})
	}

	cursor := 0
	for _, r := range matched {
		if r.Start < cursor || r.End() > len(src) {
			continue
		}
		add(diffmatchpatch.DiffDelete, src[cursor:r.Start])
		add(diffmatchpatch.DiffEqual, src[r.Start:r.End()])
		cursor = r.End()
	}
	add(diffmatchpatch.DiffDelete, src[cursor:])
	return diffs
}

// coverageGaps returns the uncovered runs of a coverageDiff with their byte
// offsets into the source.
func coverageGaps(diffs []diffmatchpatch.Diff) []coverageGap {
	var gaps []coverageGap
	offset := 0
	for _, d := range diffs {
		if d.Type == diffmatchpatch.DiffDelete {
			gaps = append(gaps, coverageGap{Offset: offset, Text: d.Text})
		}
		offset += len(d.Text)
	}
	return gaps
}
