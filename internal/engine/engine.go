package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Engine is the lexing engine capability.
type Engine interface {
	// Name identifies the engine in logs and traces.
	Name() string
	// Tokenize classifies text with the given lexer and returns the captured
	// raw protocol output. A non-nil error is fatal for the parse: either
	// ErrConfiguration (the engine never ran) or an *EngineError.
	Tokenize(ctx context.Context, text, lexer string) (Output, error)
}

// Output is what an engine wrote to its two streams.
type Output struct {
	Stdout []byte
	Stderr []byte
}

// ErrConfiguration is returned when the engine cannot be run at all: the
// command does not resolve, or the scratch file cannot be created.
var ErrConfiguration = errors.New("engine configuration error")

// ErrEngine matches any *EngineError with errors.Is.
var ErrEngine = errors.New("engine failed")

// EngineError reports an engine that ran and exited unsuccessfully.
type EngineError struct {
	Engine   string
	ExitCode int
	// Stderr is the engine's complete standard error output.
	Stderr string
}

func (e *EngineError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		return fmt.Sprintf("%s exited with code %d", e.Engine, e.ExitCode)
	}
	return fmt.Sprintf("%s exited with code %d: %s", e.Engine, e.ExitCode, msg)
}

// Is makes errors.Is(err, ErrEngine) true for every EngineError.
func (e *EngineError) Is(target error) bool {
	return target == ErrEngine
}
