package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"

	"github.com/dsabanin/pygmentskit/internal/log"
)

// CommandFactoryFunc creates an exec.Cmd. Tests use it to observe or replace
// the command without touching PATH.
type CommandFactoryFunc func(ctx context.Context, name string, args ...string) *exec.Cmd

// Config configures a Subprocess engine.
type Config struct {
	// Command is the engine executable, resolved through PATH when it has no
	// path separator. Default: "pygmentize".
	Command string
	// Args are placed before the fixed protocol arguments, e.g.
	// ["/opt/pygments/pygmentize"] when Command is "python3".
	Args []string
	// ScratchDir receives the per-call scratch file. Default: os.TempDir().
	ScratchDir string
	// Env is appended to os.Environ() for the engine process.
	Env []string
	// CommandFactory overrides exec.CommandContext.
	CommandFactory CommandFactoryFunc
}

// scratchPrefix names scratch files: pygktmp.<uuid>.
const scratchPrefix = "pygktmp."

// Subprocess runs an external engine once per Tokenize call.
type Subprocess struct {
	path    string
	args    []string
	dir     string
	env     []string
	factory CommandFactoryFunc
}

// Compile-time check that Subprocess implements Engine.
var _ Engine = (*Subprocess)(nil)

// NewSubprocess resolves the engine command. It returns an error wrapping
// ErrConfiguration when the command cannot be found.
func NewSubprocess(cfg Config) (*Subprocess, error) {
	path, err := findExecutable(cfg.Command)
	if err != nil {
		return nil, err
	}
	dir := cfg.ScratchDir
	if dir == "" {
		dir = os.TempDir()
	}
	factory := cfg.CommandFactory
	if factory == nil {
		factory = exec.CommandContext
	}
	return &Subprocess{
		path:    path,
		args:    append([]string(nil), cfg.Args...),
		dir:     dir,
		env:     cfg.Env,
		factory: factory,
	}, nil
}

// Name returns the resolved executable path.
func (s *Subprocess) Name() string {
	return s.path
}

// Argv returns the full argument vector for one invocation.
func (s *Subprocess) Argv(lexer, scratchPath string) []string {
	argv := make([]string, 0, len(s.args)+5)
	argv = append(argv, s.args...)
	return append(argv, "-f", "raw", "-l", lexer, scratchPath)
}

// Tokenize writes text to a scratch file, runs the engine on it and returns
// both captured streams. The scratch file is removed on every return path.
func (s *Subprocess) Tokenize(ctx context.Context, text, lexer string) (out Output, err error) {
	scratch, err := s.writeScratch(text)
	if err != nil {
		return Output{}, err
	}
	defer func() {
		if rmErr := os.Remove(scratch); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			log.ErrorErr(log.CatEngine, "Failed to remove scratch file", rmErr, "path", scratch)
		}
	}()

	cmd := s.factory(ctx, s.path, s.Argv(lexer, scratch)...)
	if len(s.env) > 0 {
		cmd.Env = append(os.Environ(), s.env...)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Output{}, fmt.Errorf("creating stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return Output{}, fmt.Errorf("creating stderr pipe: %w", err)
	}

	log.Debug(log.CatEngine, "Spawning engine", "path", s.path, "lexer", lexer, "scratch", scratch)

	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return Output{}, fmt.Errorf("%w: starting %s: %w", ErrConfiguration, s.path, err)
		}
		return Output{}, fmt.Errorf("starting %s: %w", s.path, err)
	}

	log.Debug(log.CatEngine, "Engine started", "pid", cmd.Process.Pid)

	// A killed engine may leave children holding the pipes open; closing our
	// read ends unblocks the drain workers.
	stop := context.AfterFunc(ctx, func() {
		_ = stdout.Close()
		_ = stderr.Close()
	})
	defer stop()

	// Both pipes must be drained while the process runs; cmd.Wait closes
	// them, so it may only be called once both readers hit EOF.
	var outBuf, errBuf bytes.Buffer
	var outErr, errErr error
	var wg conc.WaitGroup
	wg.Go(func() { _, outErr = io.Copy(&outBuf, stdout) })
	wg.Go(func() { _, errErr = io.Copy(&errBuf, stderr) })
	wg.Wait()

	waitErr := cmd.Wait()
	out = Output{Stdout: outBuf.Bytes(), Stderr: errBuf.Bytes()}

	if ctxErr := ctx.Err(); ctxErr != nil {
		log.Debug(log.CatEngine, "Engine cancelled", "error", ctxErr)
		return Output{}, fmt.Errorf("engine %s: %w", s.path, ctxErr)
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			engErr := &EngineError{
				Engine:   filepath.Base(s.path),
				ExitCode: exitErr.ExitCode(),
				Stderr:   string(out.Stderr),
			}
			log.ErrorErr(log.CatEngine, "Engine failed", engErr, "lexer", lexer)
			return Output{}, engErr
		}
		return Output{}, fmt.Errorf("waiting for %s: %w", s.path, waitErr)
	}

	if outErr != nil {
		return Output{}, fmt.Errorf("reading engine stdout: %w", outErr)
	}
	if errErr != nil {
		return Output{}, fmt.Errorf("reading engine stderr: %w", errErr)
	}

	log.Debug(log.CatEngine, "Engine finished",
		"stdoutBytes", len(out.Stdout), "stderrBytes", len(out.Stderr))
	return out, nil
}

// writeScratch stores text in a new, uniquely named file under s.dir.
func (s *Subprocess) writeScratch(text string) (string, error) {
	path := filepath.Join(s.dir, scratchPrefix+uuid.NewString())
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600) //nolint:gosec // G304: path is built from a configured dir and a random name
	if err != nil {
		return "", fmt.Errorf("%w: creating scratch file: %w", ErrConfiguration, err)
	}
	if _, err := io.WriteString(f, text); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("writing scratch file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("closing scratch file: %w", err)
	}
	return path, nil
}
