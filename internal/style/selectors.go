package style

import (
	"github.com/dsabanin/pygmentskit/internal/token"
)

// Selector returns the TextMate scope selector a Kind is styled under. Plain
// text, whitespace and the bare Name and Generic classes have none.
func Selector(k token.Kind) (string, bool) {
	s, ok := selectors[k]
	return s, ok
}

// Selectors returns a copy of the Kind to selector table.
func Selectors() map[token.Kind]string {
	out := make(map[token.Kind]string, len(selectors))
	for k, s := range selectors {
		out[k] = s
	}
	return out
}

var selectors = map[token.Kind]string{
	token.Escape: "constant.character.escape",
	token.Error:  "invalid.illegal",

	token.Keyword:            "keyword",
	token.KeywordConstant:    "constant.language",
	token.KeywordDeclaration: "storage.type",
	token.KeywordNamespace:   "keyword.control.import",
	token.KeywordPseudo:      "keyword.other",
	token.KeywordReserved:    "keyword.other.reserved",
	token.KeywordType:        "support.type",

	token.NameAttribute:        "entity.other.attribute-name",
	token.NameBuiltin:          "support.function",
	token.NameBuiltinPseudo:    "variable.language",
	token.NameClass:            "entity.name.class",
	token.NameConstant:         "variable.other.constant",
	token.NameDecorator:        "entity.name.function.decorator",
	token.NameEntity:           "constant.character.entity",
	token.NameException:        "entity.name.exception",
	token.NameFunction:         "entity.name.function",
	token.NameFunctionMagic:    "support.function.magic",
	token.NameLabel:            "entity.name.label",
	token.NameNamespace:        "entity.name.namespace",
	token.NameProperty:         "variable.other.property",
	token.NameTag:              "entity.name.tag",
	token.NameVariable:         "variable.other",
	token.NameVariableClass:    "variable.other.class",
	token.NameVariableGlobal:   "variable.other.global",
	token.NameVariableInstance: "variable.other.instance",
	token.NameVariableMagic:    "variable.language.magic",

	token.Literal:     "constant",
	token.LiteralDate: "constant.other.date",

	token.String:          "string",
	token.StringAffix:     "storage.type.string",
	token.StringBacktick:  "string.interpolated",
	token.StringChar:      "constant.character",
	token.StringDelimiter: "punctuation.definition.string",
	token.StringDoc:       "comment.block.documentation",
	token.StringDouble:    "string.quoted.double",
	token.StringEscape:    "constant.character.escape.string",
	token.StringHeredoc:   "string.unquoted.heredoc",
	token.StringInterpol:  "punctuation.section.embedded",
	token.StringOther:     "string.other",
	token.StringRegex:     "string.regexp",
	token.StringSingle:    "string.quoted.single",
	token.StringSymbol:    "constant.other.symbol",

	token.Number:            "constant.numeric",
	token.NumberBin:         "constant.numeric.binary",
	token.NumberFloat:       "constant.numeric.float",
	token.NumberHex:         "constant.numeric.hex",
	token.NumberInteger:     "constant.numeric.integer",
	token.NumberIntegerLong: "constant.numeric.integer.long",
	token.NumberOct:         "constant.numeric.octal",

	token.Operator:     "keyword.operator",
	token.OperatorWord: "keyword.operator.word",

	token.Punctuation:       "punctuation",
	token.PunctuationMarker: "punctuation.separator",

	token.Comment:            "comment",
	token.CommentHashbang:    "comment.line.shebang",
	token.CommentMultiline:   "comment.block",
	token.CommentPreproc:     "meta.preprocessor",
	token.CommentPreprocFile: "meta.preprocessor.include",
	token.CommentSingle:      "comment.line",
	token.CommentSpecial:     "comment.line.special",

	token.GenericDeleted:    "markup.deleted",
	token.GenericEmph:       "markup.italic",
	token.GenericError:      "markup.error",
	token.GenericHeading:    "markup.heading",
	token.GenericInserted:   "markup.inserted",
	token.GenericOutput:     "markup.output",
	token.GenericPrompt:     "markup.prompt",
	token.GenericStrong:     "markup.bold",
	token.GenericSubheading: "markup.heading.subheading",
	token.GenericTraceback:  "markup.traceback",
	token.GenericUnderline:  "markup.underline",
}
