package cmd

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/stretchr/testify/require"

	"github.com/dsabanin/pygmentskit/internal/decode"
	"github.com/dsabanin/pygmentskit/internal/diag"
	"github.com/dsabanin/pygmentskit/internal/log"
	"github.com/dsabanin/pygmentskit/internal/pubsub"
	"github.com/dsabanin/pygmentskit/internal/ranges"
)

func TestTokens_Table(t *testing.T) {
	src := writeSource(t, "main.go", "package main\n")

	stdout, _, err := execute(t, "", "tokens", src)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(stdout, "\n"), "\n")
	require.True(t, strings.HasPrefix(lines[0], "START"))
	require.Contains(t, lines[0], "TEXT")
	require.Contains(t, lines[1], "Token.Keyword.Namespace")
	require.Contains(t, lines[1], `"package"`)
	require.True(t, strings.HasPrefix(lines[1], "0 "))
}

func TestTokens_JSONRunes(t *testing.T) {
	stdout, _, err := execute(t, "// é\nx", "tokens", "-l", "go", "--format", "json", "--units", "runes")
	require.NoError(t, err)

	var rows []tokenRow
	require.NoError(t, json.Unmarshal([]byte(stdout), &rows))
	require.NotEmpty(t, rows)

	last := rows[len(rows)-1]
	for _, r := range rows {
		if r.Text == "x" {
			last = r
		}
	}
	require.Equal(t, "x", last.Text)
	require.Equal(t, 5, last.Start)
	require.Equal(t, 1, last.Length)
}

func TestTokens_Styled(t *testing.T) {
	stdout, _, err := execute(t, "package main\n", "tokens", "-l", "go", "--styled", "--theme", "monokai", "--format", "json")
	require.NoError(t, err)

	var rows []tokenRow
	require.NoError(t, json.Unmarshal([]byte(stdout), &rows))
	require.NotEmpty(t, rows)
	require.Equal(t, "package", rows[0].Text)
	require.Equal(t, "#f92672", rows[0].Foreground)
	for _, r := range rows {
		require.True(t, r.Foreground != "" || r.Background != "", "unstyled token %q listed", r.Text)
	}
}

func TestTokens_LexerRequiredForStdin(t *testing.T) {
	_, _, err := execute(t, "x", "tokens")
	require.Error(t, err)
	require.Contains(t, err.Error(), "--lexer is required")
}

func TestTokens_UnknownLexer(t *testing.T) {
	_, stderr, err := execute(t, "x", "tokens", "-l", "no-such-lexer")
	require.Error(t, err)
	require.Contains(t, stderr, "no lexer for alias")
}

func TestTokens_UnknownFormat(t *testing.T) {
	_, _, err := execute(t, "x", "tokens", "-l", "go", "--format", "xml")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown format")
}

func TestTokens_SubprocessEngineWithDiagnostics(t *testing.T) {
	engine := fakeEngine(t,
		"Token.Name\t'666f6f'",
		"Token.Bogus\t'20'",
		"Token.Text\t'20'",
		"Token.Name\t'626172'",
	)
	configPath := writeConfig(t, "engine:\n  kind: pygments\n  command: "+engine+"\n")

	stdout, stderr, err := execute(t, "foo bar", "--config", configPath, "tokens", "-l", "text", "--diagnostics")
	require.NoError(t, err)
	require.Contains(t, stdout, `"foo"`)
	require.Contains(t, stdout, `"bar"`)
	require.Contains(t, stderr, "unknown_kind")
}

func TestEngineCommand_WritesProtocol(t *testing.T) {
	src := writeSource(t, "main.go", "package main\n")

	stdout, stderr, err := execute(t, "", "engine", "-f", "raw", "-l", "go", src)
	require.NoError(t, err)
	require.Empty(t, stderr)

	first := strings.SplitN(stdout, "\n", 2)[0] + "\n"
	require.Equal(t, string(decode.Line("Token.Keyword.Namespace", []byte("package"))), first)

	var text strings.Builder
	for _, tok := range decode.Decode([]byte(stdout)) {
		text.WriteString(tok.Payload)
	}
	require.Equal(t, "package main\n", text.String())
}

func TestEngineCommand_UnknownLexer(t *testing.T) {
	src := writeSource(t, "main.go", "package main\n")

	stdout, stderr, err := execute(t, "", "engine", "-f", "raw", "-l", "nope", src)
	require.Error(t, err)
	require.Equal(t, 1, ExitCode(err))
	require.Empty(t, stdout)
	require.Equal(t, "Error: no lexer for alias \"nope\" found\n", stderr)
}

func TestEngineCommand_RejectsOtherFormats(t *testing.T) {
	src := writeSource(t, "main.go", "package main\n")

	_, _, err := execute(t, "", "engine", "-f", "html", "-l", "go", src)
	require.Error(t, err)
	require.Contains(t, err.Error(), "only raw")
}

func TestCheck_FullCoverage(t *testing.T) {
	src := writeSource(t, "main.go", "package main\n\nfunc main() {}\n")

	stdout, _, err := execute(t, "", "check", src)
	require.NoError(t, err)
	require.Contains(t, stdout, "ok:")
	require.Contains(t, stdout, "cover all 29 bytes")
}

func TestCheck_ReportsGaps(t *testing.T) {
	engine := fakeEngine(t,
		"Token.Name\t'666f6f'",
		"Token.Text\t'20'",
		"Token.Name\t'62617a'",
		"Token.Text\t'0a'",
	)
	configPath := writeConfig(t, "engine:\n  kind: pygments\n  command: "+engine+"\n")

	stdout, stderr, err := execute(t, "foo bar\n", "--config", configPath, "check", "-l", "text")
	require.Error(t, err)
	require.Equal(t, 1, ExitCode(err))
	require.Contains(t, stdout, `gap at 4: "bar"`)
	require.Contains(t, stdout, "3 tokens matched, 1 gaps in 8 bytes")
	require.Contains(t, stderr, "unmatched")
}

func TestCheck_GapBeforeFirstToken(t *testing.T) {
	engine := fakeEngine(t,
		"Token.Name\t'6162'",
		"Token.Text\t'0a'",
	)
	configPath := writeConfig(t, "engine:\n  kind: pygments\n  command: "+engine+"\n")

	stdout, _, err := execute(t, "xxab\n", "--config", configPath, "check", "-l", "text", "--diff")
	require.Equal(t, 1, ExitCode(err))
	require.Contains(t, stdout, `gap at 0: "xx"`)
	require.Contains(t, stdout, "\x1b[31mxx\x1b[0m")
	require.Contains(t, stdout, "2 tokens matched, 1 gaps in 5 bytes")
}

func TestCoverageGaps(t *testing.T) {
	require.Empty(t, coverageGaps(coverageDiff("abc", []ranges.Range{{Start: 0, Length: 3}})))

	require.Equal(t, []coverageGap{{Offset: 0, Text: "abx"}},
		coverageGaps(coverageDiff("abxab", []ranges.Range{{Start: 3, Length: 2}})))

	require.Equal(t, []coverageGap{{Offset: 2, Text: "XY"}},
		coverageGaps(coverageDiff("abXYcd", []ranges.Range{{Start: 0, Length: 1}, {Start: 1, Length: 1}, {Start: 4, Length: 2}})))

	require.Equal(t, []coverageGap{{Offset: 0, Text: "#"}, {Offset: 3, Text: "!"}},
		coverageGaps(coverageDiff("#ab!", []ranges.Range{{Start: 1, Length: 2}})))

	require.Equal(t, []coverageGap{{Offset: 0, Text: "none"}}, coverageGaps(coverageDiff("none", nil)))
}

func TestCoverageDiff_TilesSource(t *testing.T) {
	src := "func f() {}\n"
	diffs := coverageDiff(src, []ranges.Range{{Start: 0, Length: 4}, {Start: 5, Length: 1}, {Start: 9, Length: 3}})

	var rebuilt strings.Builder
	for _, d := range diffs {
		rebuilt.WriteString(d.Text)
	}
	require.Equal(t, src, rebuilt.String())
	require.Equal(t, diffmatchpatch.DiffDelete, diffs[1].Type)
	require.Equal(t, " ", diffs[1].Text)
}

func TestHighlight_PlainWithLineNumbers(t *testing.T) {
	src := writeSource(t, "main.go", "package main\n\nfunc main() {}\n")

	stdout, _, err := execute(t, "", "highlight", "--color", "none", "--line-numbers", src)
	require.NoError(t, err)
	require.Equal(t, "1  package main\n2  \n3  func main() {}\n", stdout)
}

func TestHighlight_LogsThemeCacheStats(t *testing.T) {
	configPath := writeConfig(t, "debug_log: \"-\"\n")

	_, stderr, err := execute(t, "package main\n", "--config", configPath, "--debug",
		"highlight", "-l", "go", "--color", "none")
	require.NoError(t, err)
	require.Contains(t, stderr, "[DEBUG] [theme] Theme cache theme=default")
}

func TestHighlight_TrueColor(t *testing.T) {
	stdout, _, err := execute(t, "package main\n", "highlight", "-l", "go", "--color", "truecolor", "--theme", "monokai")
	require.NoError(t, err)
	// #f92672 as a 24-bit foreground.
	require.Contains(t, stdout, "38;2;249;38;114")
	require.Contains(t, stdout, "package")
}

func TestHighlight_SaveTheme(t *testing.T) {
	configPath := writeConfig(t, "# keep me\noutput:\n  units: bytes\ntheme:\n  preset: default\n")

	_, stderr, err := execute(t, "x := 1\n", "--config", configPath,
		"highlight", "-l", "go", "--color", "none", "--theme", "github-light", "--save-theme")
	require.NoError(t, err)
	require.Contains(t, stderr, "saved to "+configPath)

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	require.Contains(t, string(data), "# keep me")
	require.Contains(t, string(data), "preset: github-light")
}

func TestHighlight_WatchNeedsFile(t *testing.T) {
	_, _, err := execute(t, "x", "highlight", "-l", "go", "--watch")
	require.Error(t, err)
	require.Contains(t, err.Error(), "--watch needs a file")
}

func TestHighlight_UnknownTheme(t *testing.T) {
	_, _, err := execute(t, "x", "highlight", "-l", "go", "--theme", "neon")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown theme preset")
}

func TestThemes(t *testing.T) {
	stdout, _, err := execute(t, "", "themes")
	require.NoError(t, err)
	require.Contains(t, stdout, "* default")
	require.Contains(t, stdout, "  monokai")
	require.NotContains(t, stdout, "chroma styles")

	stdout, _, err = execute(t, "", "themes", "--chroma")
	require.NoError(t, err)
	require.Contains(t, stdout, "chroma styles:")
	require.Contains(t, stdout, "dracula")
}

func TestLexers_Filter(t *testing.T) {
	stdout, _, err := execute(t, "", "lexers", "GOLANG")
	require.NoError(t, err)
	require.Empty(t, stdout)

	stdout, _, err = execute(t, "", "lexers", "pyth")
	require.NoError(t, err)
	for _, name := range strings.Split(strings.TrimSpace(stdout), "\n") {
		require.Contains(t, strings.ToLower(name), "pyth")
	}
	require.Contains(t, stdout, "Python\n")
}

// syncBuffer is a bytes.Buffer safe for a writer goroutine and a reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf strings.Builder
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchAndHighlight_RerendersOnChange(t *testing.T) {
	path := writeSource(t, "main.go", "package one\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out syncBuffer
	done := make(chan error, 1)
	go func() {
		done <- watchAndHighlight(ctx, path, &out, func(_ context.Context, text string) error {
			_, err := out.Write([]byte(text))
			return err
		})
	}()

	// Give the watcher time to register before the write.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("package two\n"), 0o600))

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "package two")
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch loop did not stop")
	}
}

func TestStreamWatchEvents(t *testing.T) {
	log.InitWriter(io.Discard)
	t.Cleanup(log.Reset)

	diagnostics := pubsub.NewBroker[diag.Diagnostic]()
	defer diagnostics.Close()

	ctx, cancel := context.WithCancel(context.Background())
	var out syncBuffer
	wait := streamWatchEvents(ctx, &out, diagnostics, true)

	diag.Publish(diagnostics)(diag.Diagnostic{Stage: diag.StageDecode, Reason: diag.ReasonUnknownKind, Line: 3, Text: "Token.Bogus"})
	log.Warn(log.CatWatcher, "Re-read failed", "path", "main.go")

	require.Eventually(t, func() bool {
		got := out.String()
		return strings.Contains(got, `dropped decode: unknown_kind at 3: "Token.Bogus"`) &&
			strings.Contains(got, "[WARN] [watcher] Re-read failed path=main.go")
	}, time.Second, 10*time.Millisecond)

	cancel()
	stopped := make(chan struct{})
	go func() {
		wait()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("listeners did not stop")
	}
}

func TestStreamWatchEvents_WithoutLogMirror(t *testing.T) {
	log.InitWriter(io.Discard)
	t.Cleanup(log.Reset)

	diagnostics := pubsub.NewBroker[diag.Diagnostic]()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out syncBuffer
	wait := streamWatchEvents(ctx, &out, diagnostics, false)

	log.Warn(log.CatWatcher, "not mirrored")
	diag.Publish(diagnostics)(diag.Diagnostic{Stage: diag.StageEngine, Reason: diag.ReasonEngineFailed, Text: "exit status 1"})

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "failed engine: engine_failed")
	}, time.Second, 10*time.Millisecond)
	require.NotContains(t, out.String(), "not mirrored")

	diagnostics.Close()
	wait()
}
