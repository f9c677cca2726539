package token

import "strconv"

// Kind differentiates the tokens the lexer can emit.
type Kind int

const (
	EOF Kind = iota
	Invalid

	Identifier
	Int
	Float
	String
	// FStringBegin/FStringMid/FStringEnd bracket the literal chunks of a
	// formatted string; the expression between two such tokens is
	// re-entered into the parser's expression grammar.
	FStringBegin
	FStringMid
	FStringEnd

	// Keywords.
	KwFunction
	KwLet
	KwLetMut // suffix '!' on let, lexed as one token.
	KwIf
	KwElse
	KwWhile
	KwFor
	KwIn
	KwMatch
	KwReturn
	KwBreak
	KwContinue
	KwStruct
	KwEnum
	KwTrait
	KwImpl
	KwImport
	KwFrom
	KwExport
	KwExternal
	KwAs
	KwDefer
	KwGo
	KwAwait
	KwTrue
	KwFalse
	KwConst
	KwType

	// Punctuation and operators.
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Comma
	Semicolon
	Colon
	Dot
	DotDot    // range `..`
	DotDotEq  // inclusive range `..=`
	Arrow     // not used for return types (those use ':'), reserved for closure sugar
	Question  // `?` try postfix
	Bang      // `!` — mutability suffix, logical not, or mutable-let suffix depending on context
	Amp       // `&` — reference-of / bitwise and, disambiguated by the parser
	Star      // `*` — raw pointer / multiplication, disambiguated by the parser
	Plus
	Minus
	Slash
	Percent
	PlusPlus
	MinusMinus
	Eq
	EqEq
	NotEq
	Lt
	LtEq
	Gt
	GtEq
	AmpAmp
	PipePipe
	Pipe // bitwise-or / closure-parameter delimiter, disambiguated by the parser
	Caret
	Shl
	Shr
	Assign // `=`
	PlusEq
	MinusEq
	StarEq
	SlashEq
	PercentEq
	Underscore // `_` wildcard type/pattern
)

var names = map[Kind]string{
	EOF: "EOF", Invalid: "INVALID",
	Identifier: "IDENT", Int: "INT", Float: "FLOAT", String: "STRING",
	FStringBegin: "FSTRING_BEGIN", FStringMid: "FSTRING_MID", FStringEnd: "FSTRING_END",
	KwFunction: "fn", KwLet: "let", KwLetMut: "let!", KwIf: "if", KwElse: "else",
	KwWhile: "while", KwFor: "for", KwIn: "in", KwMatch: "match", KwReturn: "return",
	KwBreak: "break", KwContinue: "continue", KwStruct: "struct", KwEnum: "enum",
	KwTrait: "trait", KwImpl: "impl", KwImport: "import", KwFrom: "from",
	KwExport: "export", KwExternal: "external", KwAs: "as", KwDefer: "defer",
	KwGo: "go", KwAwait: "await", KwTrue: "true", KwFalse: "false", KwConst: "const",
	KwType: "type",
	LParen: "(", RParen: ")", LBrace: "{", RBrace: "}", LBracket: "[", RBracket: "]",
	Comma: ",", Semicolon: ";", Colon: ":", Dot: ".", DotDot: "..", DotDotEq: "..=",
	Arrow: "->", Question: "?", Bang: "!", Amp: "&", Star: "*", Plus: "+", Minus: "-",
	Slash: "/", Percent: "%", PlusPlus: "++", MinusMinus: "--", Eq: "==", EqEq: "==",
	NotEq: "!=", Lt: "<", LtEq: "<=", Gt: ">", GtEq: ">=", AmpAmp: "&&", PipePipe: "||",
	Pipe: "|", Caret: "^", Shl: "<<", Shr: ">>", Assign: "=", PlusEq: "+=",
	MinusEq: "-=", StarEq: "*=", SlashEq: "/=", PercentEq: "%=", Underscore: "_",
}

func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// keywords maps reserved words to their token kind. Anything absent is an
// identifier.
var keywords = map[string]Kind{
	"fn": KwFunction, "if": KwIf, "else": KwElse, "while": KwWhile, "for": KwFor,
	"in": KwIn, "match": KwMatch, "return": KwReturn, "break": KwBreak,
	"continue": KwContinue, "struct": KwStruct, "enum": KwEnum, "trait": KwTrait,
	"impl": KwImpl, "import": KwImport, "from": KwFrom, "export": KwExport,
	"external": KwExternal, "as": KwAs, "defer": KwDefer, "go": KwGo,
	"await": KwAwait, "true": KwTrue, "false": KwFalse, "const": KwConst,
	"type": KwType, "let": KwLet,
}

// LookupIdent returns KwXxx for a reserved word, Identifier otherwise. The
// `let!` spelling is handled by the lexer directly since it spans two runes.
func LookupIdent(s string) Kind {
	if k, ok := keywords[s]; ok {
		return k
	}
	return Identifier
}

// Token is a tagged value with a source span. Literal/identifier payloads
// are carried in Value; trivia is never represented.
type Token struct {
	Kind  Kind
	Value string // raw lexeme: identifier name, literal text, suffix, etc.
	Span  Span
}

func (t Token) String() string {
	if t.Value != "" {
		return t.Kind.String() + "(" + t.Value + ")"
	}
	return t.Kind.String()
}
