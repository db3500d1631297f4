package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/dsabanin/pygmentskit/internal/config"
	"github.com/dsabanin/pygmentskit/internal/diag"
	"github.com/dsabanin/pygmentskit/internal/log"
	"github.com/dsabanin/pygmentskit/internal/parser"
	"github.com/dsabanin/pygmentskit/internal/pubsub"
	"github.com/dsabanin/pygmentskit/internal/render"
	"github.com/dsabanin/pygmentskit/internal/theme"
	"github.com/dsabanin/pygmentskit/internal/watcher"
)

var (
	hlLexer       string
	hlColor       string
	hlLineNumbers bool
	hlWatch       bool
	hlSaveTheme   bool
	hlTheme       themeFlags
)

var highlightCmd = &cobra.Command{
	Use:   "highlight [file]",
	Short: "Print a file with terminal colors",
	Long: `Tokenize a file (or stdin), map every token to a color through the theme and
print the result with ANSI colors. Text that no token covers, or whose token
has no color in the theme, is printed unstyled.

Examples:
  pygmentskit highlight main.go
  pygmentskit highlight --theme monokai --line-numbers main.go
  pygmentskit highlight --chroma-style dracula --save-theme main.go

  # Re-render whenever the file is saved
  pygmentskit highlight --watch main.go`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHighlight,
}

func init() {
	highlightCmd.Flags().StringVarP(&hlLexer, "lexer", "l", "", "lexer name or alias (default: guessed from the file name)")
	highlightCmd.Flags().StringVar(&hlColor, "color", "", "color profile: auto, truecolor, 256, 16 or none (overrides config)")
	highlightCmd.Flags().BoolVarP(&hlLineNumbers, "line-numbers", "n", false, "prefix lines with line numbers")
	highlightCmd.Flags().BoolVarP(&hlWatch, "watch", "w", false, "re-render when the file changes")
	highlightCmd.Flags().BoolVar(&hlSaveTheme, "save-theme", false, "store the selected theme in the config file")
	hlTheme.register(highlightCmd)
	rootCmd.AddCommand(highlightCmd)
}

func runHighlight(cmd *cobra.Command, args []string) error {
	src, err := readSource(cmd, args)
	if err != nil {
		return err
	}
	if hlWatch && src.Path == "" {
		return fmt.Errorf("--watch needs a file argument")
	}
	lexer, err := resolveLexer(hlLexer, src)
	if err != nil {
		return err
	}

	th, err := hlTheme.load()
	if err != nil {
		return err
	}
	if hlSaveTheme {
		path := configFilePath()
		if err := config.SaveTheme(path, hlTheme.apply(cfg.Theme)); err != nil {
			return fmt.Errorf("saving theme: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "theme %s saved to %s\n", th.Name(), path)
	}

	out := cmd.OutOrStdout()
	renderer, err := newRenderer(out, th)
	if err != nil {
		return err
	}
	p, err := rt.Parser()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if hlWatch {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		diagnostics := pubsub.NewBroker[diag.Diagnostic]()
		p = p.With(parser.WithBroker(diagnostics))
		wait := streamWatchEvents(ctx, cmd.ErrOrStderr(), diagnostics, rt.logFile != "")
		defer func() {
			stop()
			diagnostics.Close()
			wait()
		}()
	}

	highlight := func(ctx context.Context, text string) error {
		ctx, cancel := parseContext(ctx)
		defer cancel()
		rendered, err := renderer.Highlight(ctx, p, text, lexer, th)
		if err != nil {
			return err
		}
		hits, misses := th.Stats()
		log.Debug(log.CatTheme, "Theme cache", "theme", th.Name(), "hits", hits, "misses", misses)
		_, err = io.WriteString(out, rendered)
		return err
	}

	if err := highlight(ctx, src.Text); err != nil {
		return err
	}
	if !hlWatch {
		return nil
	}
	return watchAndHighlight(ctx, src.Path, out, highlight)
}

// newRenderer builds the ANSI renderer for the configured color profile.
// The gutter takes the theme's comment color.
func newRenderer(w io.Writer, th theme.Theme) (*render.ANSI, error) {
	profileName := cfg.Output.ColorProfile
	if hlColor != "" {
		profileName = hlColor
	}
	profile, err := render.ParseProfile(profileName, w)
	if err != nil {
		return nil, err
	}

	var opts []render.Option
	if hlLineNumbers || cfg.Output.LineNumbers {
		gutter, _ := th.ResolveScope("comment")
		opts = append(opts, render.WithLineNumbers(gutter.Foreground))
	}
	return render.New(w, profile, opts...), nil
}

// watchAndHighlight re-renders path after every debounced change until ctx
// ends. A failed re-render is reported and the watch continues.
func watchAndHighlight(ctx context.Context, path string, out io.Writer, highlight func(context.Context, string) error) error {
	w, err := watcher.New(watcher.DefaultConfig(path))
	if err != nil {
		return err
	}
	changes, err := w.Start()
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	term := termenv.NewOutput(out)
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			data, err := os.ReadFile(path)
			if err != nil {
				log.ErrorErr(log.CatWatcher, "Re-read failed", err, "path", path)
				continue
			}
			term.ClearScreen()
			if err := highlight(ctx, string(data)); err != nil {
				log.ErrorErr(log.CatWatcher, "Re-render failed", err, "path", path)
				fmt.Fprintln(out, "error:", err)
			}
		}
	}
}

// lockedWriter serializes writes from several listener goroutines.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// streamWatchEvents writes every diagnostic published on diagnostics to w
// and, with mirrorLog, every debug log line too, so a watch session shows
// what each re-render dropped. Events are dropped if w falls behind. The
// returned func blocks until the listeners have stopped, which happens once
// ctx is cancelled or the sources are closed.
func streamWatchEvents(ctx context.Context, w io.Writer, diagnostics pubsub.Subscriber[diag.Diagnostic], mirrorLog bool) func() {
	lw := &lockedWriter{w: w}
	stopped := []<-chan struct{}{
		pubsub.Listen(ctx, diagnostics, func(ev pubsub.Event[diag.Diagnostic]) {
			fmt.Fprintf(lw, "%s %s\n", ev.Type, ev.Payload)
		}),
	}
	if mirrorLog {
		if done := log.Listen(ctx, func(e log.Entry) { _, _ = io.WriteString(lw, e.Payload) }); done != nil {
			stopped = append(stopped, done)
		}
	}
	return func() {
		for _, done := range stopped {
			<-done
		}
	}
}
