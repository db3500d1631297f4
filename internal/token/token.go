// Package token defines the closed taxonomy of lexical classes reported by the
// lexing engine and the Token value carried through the parse pipeline.
package token

import "strings"

// Kind is a lexical class. The set is closed: engine class names outside of it
// have no Kind and are rejected by ParseKind.
type Kind int

const (
	Invalid Kind = iota

	Text
	Whitespace
	Escape
	Error
	Other

	Keyword
	KeywordConstant
	KeywordDeclaration
	KeywordNamespace
	KeywordPseudo
	KeywordReserved
	KeywordType

	Name
	NameAttribute
	NameBuiltin
	NameBuiltinPseudo
	NameClass
	NameConstant
	NameDecorator
	NameEntity
	NameException
	NameFunction
	NameFunctionMagic
	NameLabel
	NameNamespace
	NameOther
	NameProperty
	NameTag
	NameVariable
	NameVariableClass
	NameVariableGlobal
	NameVariableInstance
	NameVariableMagic

	Literal
	LiteralDate

	String
	StringAffix
	StringBacktick
	StringChar
	StringDelimiter
	StringDoc
	StringDouble
	StringEscape
	StringHeredoc
	StringInterpol
	StringOther
	StringRegex
	StringSingle
	StringSymbol

	Number
	NumberBin
	NumberFloat
	NumberHex
	NumberInteger
	NumberIntegerLong
	NumberOct

	Operator
	OperatorWord

	Punctuation
	PunctuationMarker

	Comment
	CommentHashbang
	CommentMultiline
	CommentPreproc
	CommentPreprocFile
	CommentSingle
	CommentSpecial

	Generic
	GenericDeleted
	GenericEmph
	GenericError
	GenericHeading
	GenericInserted
	GenericOutput
	GenericPrompt
	GenericStrong
	GenericSubheading
	GenericTraceback
	GenericUnderline

	kindCount
)

// names holds the engine class name for every Kind, as printed by the raw
// formatter.
var names = [kindCount]string{
	Invalid: "",

	Text:       "Token.Text",
	Whitespace: "Token.Text.Whitespace",
	Escape:     "Token.Escape",
	Error:      "Token.Error",
	Other:      "Token.Other",

	Keyword:            "Token.Keyword",
	KeywordConstant:    "Token.Keyword.Constant",
	KeywordDeclaration: "Token.Keyword.Declaration",
	KeywordNamespace:   "Token.Keyword.Namespace",
	KeywordPseudo:      "Token.Keyword.Pseudo",
	KeywordReserved:    "Token.Keyword.Reserved",
	KeywordType:        "Token.Keyword.Type",

	Name:                 "Token.Name",
	NameAttribute:        "Token.Name.Attribute",
	NameBuiltin:          "Token.Name.Builtin",
	NameBuiltinPseudo:    "Token.Name.Builtin.Pseudo",
	NameClass:            "Token.Name.Class",
	NameConstant:         "Token.Name.Constant",
	NameDecorator:        "Token.Name.Decorator",
	NameEntity:           "Token.Name.Entity",
	NameException:        "Token.Name.Exception",
	NameFunction:         "Token.Name.Function",
	NameFunctionMagic:    "Token.Name.Function.Magic",
	NameLabel:            "Token.Name.Label",
	NameNamespace:        "Token.Name.Namespace",
	NameOther:            "Token.Name.Other",
	NameProperty:         "Token.Name.Property",
	NameTag:              "Token.Name.Tag",
	NameVariable:         "Token.Name.Variable",
	NameVariableClass:    "Token.Name.Variable.Class",
	NameVariableGlobal:   "Token.Name.Variable.Global",
	NameVariableInstance: "Token.Name.Variable.Instance",
	NameVariableMagic:    "Token.Name.Variable.Magic",

	Literal:     "Token.Literal",
	LiteralDate: "Token.Literal.Date",

	String:          "Token.Literal.String",
	StringAffix:     "Token.Literal.String.Affix",
	StringBacktick:  "Token.Literal.String.Backtick",
	StringChar:      "Token.Literal.String.Char",
	StringDelimiter: "Token.Literal.String.Delimiter",
	StringDoc:       "Token.Literal.String.Doc",
	StringDouble:    "Token.Literal.String.Double",
	StringEscape:    "Token.Literal.String.Escape",
	StringHeredoc:   "Token.Literal.String.Heredoc",
	StringInterpol:  "Token.Literal.String.Interpol",
	StringOther:     "Token.Literal.String.Other",
	StringRegex:     "Token.Literal.String.Regex",
	StringSingle:    "Token.Literal.String.Single",
	StringSymbol:    "Token.Literal.String.Symbol",

	Number:            "Token.Literal.Number",
	NumberBin:         "Token.Literal.Number.Bin",
	NumberFloat:       "Token.Literal.Number.Float",
	NumberHex:         "Token.Literal.Number.Hex",
	NumberInteger:     "Token.Literal.Number.Integer",
	NumberIntegerLong: "Token.Literal.Number.Integer.Long",
	NumberOct:         "Token.Literal.Number.Oct",

	Operator:     "Token.Operator",
	OperatorWord: "Token.Operator.Word",

	Punctuation:       "Token.Punctuation",
	PunctuationMarker: "Token.Punctuation.Marker",

	Comment:            "Token.Comment",
	CommentHashbang:    "Token.Comment.Hashbang",
	CommentMultiline:   "Token.Comment.Multiline",
	CommentPreproc:     "Token.Comment.Preproc",
	CommentPreprocFile: "Token.Comment.PreprocFile",
	CommentSingle:      "Token.Comment.Single",
	CommentSpecial:     "Token.Comment.Special",

	Generic:           "Token.Generic",
	GenericDeleted:    "Token.Generic.Deleted",
	GenericEmph:       "Token.Generic.Emph",
	GenericError:      "Token.Generic.Error",
	GenericHeading:    "Token.Generic.Heading",
	GenericInserted:   "Token.Generic.Inserted",
	GenericOutput:     "Token.Generic.Output",
	GenericPrompt:     "Token.Generic.Prompt",
	GenericStrong:     "Token.Generic.Strong",
	GenericSubheading: "Token.Generic.Subheading",
	GenericTraceback:  "Token.Generic.Traceback",
	GenericUnderline:  "Token.Generic.Underline",
}

var byName = func() map[string]Kind {
	m := make(map[string]Kind, kindCount)
	for k := Kind(1); k < kindCount; k++ {
		m[names[k]] = k
	}
	return m
}()

// String returns the engine class name, e.g. "Token.Keyword.Constant".
func (k Kind) String() string {
	if !k.Valid() {
		return "Invalid"
	}
	return names[k]
}

// Valid reports whether k is a member of the taxonomy.
func (k Kind) Valid() bool {
	return k > Invalid && k < kindCount
}

// Short returns the class name without the "Token." root.
func (k Kind) Short() string {
	return strings.TrimPrefix(k.String(), "Token.")
}

// Parent returns the enclosing class (Keyword for KeywordConstant) and false
// for top-level classes.
func (k Kind) Parent() (Kind, bool) {
	name := k.String()
	i := strings.LastIndexByte(name, '.')
	if i <= len("Token") {
		return Invalid, false
	}
	p, ok := byName[name[:i]]
	return p, ok
}

// ParseKind maps an engine class name to its Kind.
func ParseKind(name string) (Kind, bool) {
	k, ok := byName[name]
	return k, ok
}

// Kinds returns every member of the taxonomy in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount-1)
	for k := Kind(1); k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

// Token is one classified occurrence reported by the engine.
type Token struct {
	Kind    Kind
	Payload string
}
