// Package parser turns a token stream into a Program AST using recursive
// descent for statements and items, and Pratt (precedence-climbing) parsing
// for expressions, covering vx's richer grammar (generics, traits,
// formatted strings, ownership-flavored reference syntax).
package parser

import (
	"vxc/internal/ast"
	"vxc/internal/diag"
	"vxc/internal/token"
)

// Parser holds the token cursor and diagnostic sink for one parse.
type Parser struct {
	file  string
	toks  []token.Token
	pos   int
	diags *diag.Bag
}

// New returns a parser over toks, which must end with exactly one EOF token
// (as produced by lexer.Run).
func New(file string, toks []token.Token, diags *diag.Bag) *Parser {
	return &Parser{file: file, toks: toks, diags: diags}
}

// Parse lexes nothing itself; it consumes toks and returns the resulting
// Program. Errors are appended to the diagnostic bag passed to New; a
// non-nil Program is always returned, possibly missing the items that
// failed to parse.
func Parse(file string, toks []token.Token, diags *diag.Bag) *ast.Program {
	p := New(file, toks, diags)
	return p.parseProgram()
}

func (p *Parser) cur() token.Token  { return p.toks[p.pos] }
func (p *Parser) curKind() token.Kind { return p.toks[p.pos].Kind }

func (p *Parser) peekAt(n int) token.Token {
	idx := p.pos + n
	if idx >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[idx]
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if t.Kind != token.EOF {
		p.pos++
	}
	return t
}

func (p *Parser) check(k token.Kind) bool {
	return p.curKind() == k
}

func (p *Parser) match(k token.Kind) bool {
	if p.check(k) {
		p.advance()
		return true
	}
	return false
}

// expect consumes a token of kind k or records a parse error and returns an
// Invalid-kind token carrying the current span. It does not panic and does
// not skip any tokens.
func (p *Parser) expect(k token.Kind, what string) token.Token {
	if p.check(k) {
		return p.advance()
	}
	p.errorf(p.cur().Span, "PARSE001", "expected %s, found %s", what, p.curKind())
	return token.Token{Kind: token.Invalid, Span: p.cur().Span}
}

func (p *Parser) errorf(span token.Span, code, format string, args ...interface{}) {
	p.diags.Errorf(span, code, format, args...)
}

// abort panics with a sentinel that recoverItem and recoverStmt recover
// from. No parse function in this package calls it.
type parseAbort struct{}

func (p *Parser) abort() {
	panic(parseAbort{})
}

// recoverItem is deferred at the top of parseItem; on abort it skips tokens
// up to the next token that plausibly starts a new item.
func (p *Parser) recoverItem() {
	if r := recover(); r != nil {
		if _, ok := r.(parseAbort); !ok {
			panic(r)
		}
		p.syncToItemStart()
	}
}

func (p *Parser) syncToItemStart() {
	for !p.check(token.EOF) {
		switch p.curKind() {
		case token.KwFunction, token.KwStruct, token.KwEnum, token.KwTrait,
			token.KwImpl, token.KwImport, token.KwExport, token.KwExternal,
			token.KwConst, token.KwType:
			return
		}
		p.advance()
	}
}

// recoverStmt is deferred inside parseStmt; on abort it skips to the next
// statement terminator or a brace that plausibly resumes block parsing
//.
func (p *Parser) recoverStmt() {
	if r := recover(); r != nil {
		if _, ok := r.(parseAbort); !ok {
			panic(r)
		}
		p.syncToStmtBoundary()
	}
}

func (p *Parser) syncToStmtBoundary() {
	for !p.check(token.EOF) {
		if p.check(token.Semicolon) {
			p.advance()
			return
		}
		if p.check(token.RBrace) {
			return
		}
		p.advance()
	}
}

// syncToExprBoundary skips to the next comma, semicolon, or closing bracket — the
// expression-position recovery policy.
func (p *Parser) syncToExprBoundary() {
	for !p.check(token.EOF) {
		switch p.curKind() {
		case token.Comma, token.Semicolon, token.RParen, token.RBracket, token.RBrace:
			return
		}
		p.advance()
	}
}
