// Package lexer converts vx source text into a token stream.
//
// The scanning engine uses Rob Pike's "Lexical Scanning in Go" shape: a
// stateFunc walks the rune stream and each state decides the next state.
// The pipeline here is single-threaded and synchronous, so the state
// functions run in a plain loop and tokens are appended to a slice rather
// than sent over a channel to a concurrent parser.
package lexer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"vxc/internal/diag"
	"vxc/internal/token"
)

const eof = -1

// stateFunc defines a lexer state; it scans some input and returns the next
// state, or nil to stop.
type stateFunc func(*Lexer) stateFunc

// Lexer scans one source buffer into a token slice.
type Lexer struct {
	file  string
	input string

	start int // byte offset where the current token began.
	pos   int // current byte offset.
	width int // width in bytes of the last rune returned by next.

	line, col           int // position of pos.
	startLine, startCol int // position of start, snapshotted by beginToken.

	tokens []token.Token
	diags  *diag.Bag

	// fstrStack tracks nested formatted-string literals. See fstring.go.
	fstrStack []fstrFrame
}

// New creates a Lexer over src, attributing positions to file.
func New(src, file string, diags *diag.Bag) *Lexer {
	return &Lexer{
		file:   file,
		input:  normalizeNewlines(src),
		line:   1,
		col:    1,
		diags:  diags,
		tokens: make([]token.Token, 0, len(src)/4+8),
	}
}

// normalizeNewlines folds CRLF into LF; source line endings may be LF or
// CRLF and are normalized internally.
func normalizeNewlines(src string) string {
	if !strings.Contains(src, "\r\n") {
		return src
	}
	return strings.ReplaceAll(src, "\r\n", "\n")
}

// Lex runs the state machine to completion and returns the token slice,
// always terminated by exactly one EOF token.
func Lex(src, file string, diags *diag.Bag) []token.Token {
	l := New(src, file, diags)
	return l.Run()
}

// Run drives the scanner synchronously until it halts.
func (l *Lexer) Run() []token.Token {
	for state := stateFunc(lexAny); state != nil; {
		state = state(l)
	}
	if len(l.tokens) == 0 || l.tokens[len(l.tokens)-1].Kind != token.EOF {
		l.beginToken()
		l.emit(token.EOF)
	}
	return l.tokens
}

// beginToken snapshots the current scan position as the start of the next
// token, the point every lex* function calls before deciding what it sees.
func (l *Lexer) beginToken() {
	l.start = l.pos
	l.startLine = l.line
	l.startCol = l.col
}

func (l *Lexer) startPos() token.Position {
	return token.Position{File: l.file, Line: l.startLine, Column: l.startCol, Offset: l.start}
}

func (l *Lexer) curPos() token.Position {
	return token.Position{File: l.file, Line: l.line, Column: l.col, Offset: l.pos}
}

func (l *Lexer) span() token.Span {
	return token.Span{Start: l.startPos(), End: l.curPos()}
}

// next returns the next rune and advances the scanner, or eof at the end of
// input.
func (l *Lexer) next() rune {
	if l.pos >= len(l.input) {
		l.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.width = w
	l.pos += w
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

// backup steps back one rune. Only valid once per call to next.
func (l *Lexer) backup() {
	if l.width == 0 {
		return
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.pos-l.width : l.pos])
	l.pos -= l.width
	if r == '\n' {
		l.line--
		// Column on backup across a newline is not used by this lexer.
	} else {
		l.col--
	}
	l.width = 0
}

func (l *Lexer) peek() rune {
	r := l.next()
	l.backup()
	return r
}

func (l *Lexer) accept(valid string) bool {
	if strings.ContainsRune(valid, l.next()) {
		return true
	}
	l.backup()
	return false
}

func (l *Lexer) acceptRun(valid string) {
	for strings.ContainsRune(valid, l.next()) {
	}
	l.backup()
}

func (l *Lexer) acceptWhile(pred func(rune) bool) {
	for {
		r := l.next()
		if r == eof || !pred(r) {
			l.backup()
			return
		}
	}
}

// ignore drops the pending lexeme without emitting a token (trivia).
func (l *Lexer) ignore() {
	l.start = l.pos
}

// emit appends a token of kind typ spanning [start,pos) with the current
// lexeme as its value (identifiers, literals) and advances start.
func (l *Lexer) emit(kind token.Kind) {
	l.tokens = append(l.tokens, token.Token{Kind: kind, Value: l.input[l.start:l.pos], Span: l.span()})
	l.start = l.pos
}

// emitValue appends a token with an explicit value instead of the raw
// lexeme — used for formatted-string chunks whose stored value is unescaped.
func (l *Lexer) emitValue(kind token.Kind, val string) {
	l.tokens = append(l.tokens, token.Token{Kind: kind, Value: val, Span: l.span()})
	l.start = l.pos
}

func (l *Lexer) errorf(span token.Span, format string, args ...interface{}) {
	l.diags.Append(diag.Diagnostic{
		Severity: diag.Error,
		Code:     "LEX001",
		Message:  fmt.Sprintf(format, args...),
		Primary:  span,
	})
}

func isLetter(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentRune(r rune) bool {
	return isLetter(r) || isDigit(r)
}

// recover skips to the next whitespace or operator rune.
func (l *Lexer) recover() {
	for {
		r := l.peek()
		if r == eof || unicode.IsSpace(r) || isOperatorRune(r) {
			return
		}
		l.next()
	}
}

func isOperatorRune(r rune) bool {
	return strings.ContainsRune("+-*/%=<>!&|^.,;:()[]{}", r)
}
