// Package engine provides the lexing engine capability used by the parser.
//
// An Engine turns source text and a lexer identifier into the raw line
// protocol understood by package decode. Two implementations exist:
//
//   - Subprocess runs an external engine (pygmentize or anything speaking the
//     same contract) against a scratch copy of the text:
//     <command> <args...> -f raw -l <lexer> <scratch-file>
//   - Chroma tokenizes in-process with chroma lexers and writes the same
//     protocol, so both flow through the same decoder.
//
// Example usage:
//
//	eng, err := engine.NewSubprocess(engine.Config{Command: "pygmentize"})
//	if err != nil {
//	    return err // wraps ErrConfiguration
//	}
//	out, err := eng.Tokenize(ctx, code, "go")
//	var engErr *engine.EngineError
//	if errors.As(err, &engErr) {
//	    fmt.Println(engErr.Stderr)
//	}
package engine
