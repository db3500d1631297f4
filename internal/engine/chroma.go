package engine

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/dsabanin/pygmentskit/internal/decode"
	"github.com/dsabanin/pygmentskit/internal/log"
	"github.com/dsabanin/pygmentskit/internal/token"
)

// ChromaName is the Name of the in-process engine.
const ChromaName = "chroma"

// Chroma is an in-process engine backed by chroma lexers. It writes the same
// raw protocol as an external engine, so its output takes the same decode
// path.
type Chroma struct{}

// Compile-time check that Chroma implements Engine.
var _ Engine = Chroma{}

// NewChroma returns the in-process engine.
func NewChroma() Chroma {
	return Chroma{}
}

// Name returns "chroma".
func (Chroma) Name() string {
	return ChromaName
}

// Tokenize lexes text with the chroma lexer registered under lexer (name,
// alias or file extension). An unknown lexer fails the way pygmentize does:
// exit code 1 and a message on stderr.
func (c Chroma) Tokenize(ctx context.Context, text, lexer string) (Output, error) {
	if err := ctx.Err(); err != nil {
		return Output{}, err
	}

	l := lexers.Get(lexer)
	if l == nil {
		return Output{}, &EngineError{
			Engine:   ChromaName,
			ExitCode: 1,
			Stderr:   fmt.Sprintf("Error: no lexer for alias %q found\n", lexer),
		}
	}
	l = chroma.Coalesce(l)

	it, err := l.Tokenise(nil, text)
	if err != nil {
		return Output{}, &EngineError{
			Engine:   ChromaName,
			ExitCode: 1,
			Stderr:   err.Error() + "\n",
		}
	}

	var out bytes.Buffer
	count := 0
	for _, t := range it.Tokens() {
		out.Write(decode.Line(KindName(t.Type), []byte(t.Value)))
		count++
	}

	if err := ctx.Err(); err != nil {
		return Output{}, err
	}

	log.Debug(log.CatEngine, "Chroma tokenized",
		"lexer", l.Config().Name, "tokens", count, "bytes", out.Len())
	return Output{Stdout: out.Bytes()}, nil
}

// Lexers returns the names of all registered chroma lexers, sorted.
func Lexers() []string {
	names := lexers.Names(false)
	sort.Strings(names)
	return names
}

// GuessLexer returns the alias of the lexer whose filename patterns match
// filename. The alias is the first one chroma lists, which is also the name
// pygmentize accepts for the same language.
func GuessLexer(filename string) (string, bool) {
	l := lexers.Match(filepath.Base(filename))
	if l == nil {
		return "", false
	}
	cfg := l.Config()
	if len(cfg.Aliases) > 0 {
		return cfg.Aliases[0], true
	}
	return strings.ToLower(cfg.Name), true
}

// KindName returns the protocol class name for a chroma token type. Types
// without an exact counterpart fall back to their sub-category, then their
// category. Anything left is written under chroma's own name, which the
// decoder rejects as an unknown kind.
func KindName(tt chroma.TokenType) string {
	if k, ok := ChromaKind(tt); ok {
		return k.String()
	}
	return "Token." + tt.String()
}

// ChromaKind maps a chroma token type onto the taxonomy.
func ChromaKind(tt chroma.TokenType) (token.Kind, bool) {
	for _, candidate := range []chroma.TokenType{tt, tt.SubCategory(), tt.Category()} {
		if k, ok := chromaKinds[candidate]; ok {
			return k, true
		}
	}
	return token.Invalid, false
}

// ChromaType returns the chroma token type a Kind corresponds to.
func ChromaType(k token.Kind) (chroma.TokenType, bool) {
	tt, ok := chromaTypes[k]
	return tt, ok
}

var chromaKinds = map[chroma.TokenType]token.Kind{
	chroma.Text:            token.Text,
	chroma.TextWhitespace:  token.Whitespace,
	chroma.TextSymbol:      token.Text,
	chroma.TextPunctuation: token.Punctuation,
	chroma.Error:           token.Error,
	chroma.Other:           token.Other,

	chroma.Keyword:            token.Keyword,
	chroma.KeywordConstant:    token.KeywordConstant,
	chroma.KeywordDeclaration: token.KeywordDeclaration,
	chroma.KeywordNamespace:   token.KeywordNamespace,
	chroma.KeywordPseudo:      token.KeywordPseudo,
	chroma.KeywordReserved:    token.KeywordReserved,
	chroma.KeywordType:        token.KeywordType,

	chroma.Name:                 token.Name,
	chroma.NameAttribute:        token.NameAttribute,
	chroma.NameBuiltin:          token.NameBuiltin,
	chroma.NameBuiltinPseudo:    token.NameBuiltinPseudo,
	chroma.NameClass:            token.NameClass,
	chroma.NameConstant:         token.NameConstant,
	chroma.NameDecorator:        token.NameDecorator,
	chroma.NameEntity:           token.NameEntity,
	chroma.NameException:        token.NameException,
	chroma.NameFunction:         token.NameFunction,
	chroma.NameFunctionMagic:    token.NameFunctionMagic,
	chroma.NameLabel:            token.NameLabel,
	chroma.NameNamespace:        token.NameNamespace,
	chroma.NameOther:            token.NameOther,
	chroma.NameProperty:         token.NameProperty,
	chroma.NameTag:              token.NameTag,
	chroma.NameVariable:         token.NameVariable,
	chroma.NameVariableClass:    token.NameVariableClass,
	chroma.NameVariableGlobal:   token.NameVariableGlobal,
	chroma.NameVariableInstance: token.NameVariableInstance,
	chroma.NameVariableMagic:    token.NameVariableMagic,

	chroma.Literal:     token.Literal,
	chroma.LiteralDate: token.LiteralDate,

	chroma.LiteralString:          token.String,
	chroma.LiteralStringAffix:     token.StringAffix,
	chroma.LiteralStringBacktick:  token.StringBacktick,
	chroma.LiteralStringChar:      token.StringChar,
	chroma.LiteralStringDelimiter: token.StringDelimiter,
	chroma.LiteralStringDoc:       token.StringDoc,
	chroma.LiteralStringDouble:    token.StringDouble,
	chroma.LiteralStringEscape:    token.StringEscape,
	chroma.LiteralStringHeredoc:   token.StringHeredoc,
	chroma.LiteralStringInterpol:  token.StringInterpol,
	chroma.LiteralStringOther:     token.StringOther,
	chroma.LiteralStringRegex:     token.StringRegex,
	chroma.LiteralStringSingle:    token.StringSingle,
	chroma.LiteralStringSymbol:    token.StringSymbol,

	chroma.LiteralNumber:            token.Number,
	chroma.LiteralNumberBin:         token.NumberBin,
	chroma.LiteralNumberFloat:       token.NumberFloat,
	chroma.LiteralNumberHex:         token.NumberHex,
	chroma.LiteralNumberInteger:     token.NumberInteger,
	chroma.LiteralNumberIntegerLong: token.NumberIntegerLong,
	chroma.LiteralNumberOct:         token.NumberOct,

	chroma.Operator:     token.Operator,
	chroma.OperatorWord: token.OperatorWord,

	chroma.Punctuation: token.Punctuation,

	chroma.Comment:            token.Comment,
	chroma.CommentHashbang:    token.CommentHashbang,
	chroma.CommentMultiline:   token.CommentMultiline,
	chroma.CommentPreproc:     token.CommentPreproc,
	chroma.CommentPreprocFile: token.CommentPreprocFile,
	chroma.CommentSingle:      token.CommentSingle,
	chroma.CommentSpecial:     token.CommentSpecial,

	chroma.Generic:           token.Generic,
	chroma.GenericDeleted:    token.GenericDeleted,
	chroma.GenericEmph:       token.GenericEmph,
	chroma.GenericError:      token.GenericError,
	chroma.GenericHeading:    token.GenericHeading,
	chroma.GenericInserted:   token.GenericInserted,
	chroma.GenericOutput:     token.GenericOutput,
	chroma.GenericPrompt:     token.GenericPrompt,
	chroma.GenericStrong:     token.GenericStrong,
	chroma.GenericSubheading: token.GenericSubheading,
	chroma.GenericTraceback:  token.GenericTraceback,
	chroma.GenericUnderline:  token.GenericUnderline,
}

// chromaTypes is the inverse of chromaKinds. Where two chroma types share a
// Kind the canonical one (the Kind's own class) wins.
var chromaTypes = func() map[token.Kind]chroma.TokenType {
	m := make(map[token.Kind]chroma.TokenType, len(chromaKinds))
	for tt, k := range chromaKinds {
		if prev, ok := m[k]; ok && prev < tt {
			continue
		}
		m[k] = tt
	}
	m[token.Text] = chroma.Text
	m[token.Punctuation] = chroma.Punctuation
	return m
}()
