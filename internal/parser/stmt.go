package parser

import (
	"vxc/internal/ast"
	"vxc/internal/token"
)

// parseBlock consumes exactly one opening brace and exits on exactly one
// closing brace; callers that treat a block as a statement must not also
// consume braces themselves.
func (p *Parser) parseBlock() *ast.BlockStmt {
	start := p.expect(token.LBrace, "'{' to start a block").Span
	var stmts []ast.Stmt
	for !p.check(token.RBrace) && !p.check(token.EOF) {
		stmts = append(stmts, p.parseStmt())
	}
	end := p.expect(token.RBrace, "'}' to close the block")
	return &ast.BlockStmt{Stmts: stmts, Span_: token.Join(start, end.Span)}
}

func (p *Parser) parseStmt() (stmt ast.Stmt) {
	defer p.recoverStmt()

	switch p.curKind() {
	case token.LBrace:
		return p.parseBlock()
	case token.KwLet, token.KwLetMut:
		return p.parseLetStmt()
	case token.KwReturn:
		return p.parseReturnStmt()
	case token.KwIf:
		return p.parseIfStmt()
	case token.KwWhile:
		return p.parseWhileStmt()
	case token.KwFor:
		return p.parseForInStmt()
	case token.KwMatch:
		return p.parseMatchStmt()
	case token.KwDefer:
		return p.parseDeferStmt()
	case token.KwBreak:
		start := p.advance().Span
		end := p.expect(token.Semicolon, "';' after 'break'")
		return &ast.BreakStmt{Span_: token.Join(start, end.Span)}
	case token.KwContinue:
		start := p.advance().Span
		end := p.expect(token.Semicolon, "';' after 'continue'")
		return &ast.ContinueStmt{Span_: token.Join(start, end.Span)}
	default:
		return p.parseSimpleStmt()
	}
}

func (p *Parser) parseLetStmt() *ast.LetStmt {
	start := p.cur().Span
	mutable := p.curKind() == token.KwLetMut
	p.advance()
	name := p.expect(token.Identifier, "a binding name")
	var ty ast.Type
	if p.match(token.Colon) {
		ty = p.parseType()
	}
	p.expect(token.Assign, "'=' in a let binding")
	val := p.parseExpr()
	end := p.expect(token.Semicolon, "';' after a let binding")
	return &ast.LetStmt{
		Name: name.Value, Mutable: mutable, Type: ty, Value: val,
		Span_: token.Join(start, end.Span),
	}
}

func (p *Parser) parseReturnStmt() *ast.ReturnStmt {
	start := p.advance().Span // 'return'
	var val ast.Expr
	if !p.check(token.Semicolon) {
		val = p.parseExpr()
	}
	end := p.expect(token.Semicolon, "';' after a return statement")
	return &ast.ReturnStmt{Value: val, Span_: token.Join(start, end.Span)}
}

func (p *Parser) parseIfStmt() *ast.IfStmt {
	start := p.advance().Span // 'if'
	cond := p.parseExpr()
	then := p.parseBlock()
	stmt := &ast.IfStmt{Cond: cond, Then: then, Span_: token.Join(start, then.Span())}
	if p.match(token.KwElse) {
		if p.check(token.KwIf) {
			stmt.Else = p.parseIfStmt()
		} else {
			stmt.Else = p.parseBlock()
		}
		stmt.Span_ = token.Join(stmt.Span_, stmt.Else.Span())
	}
	return stmt
}

func (p *Parser) parseWhileStmt() *ast.WhileStmt {
	start := p.advance().Span // 'while'
	cond := p.parseExpr()
	body := p.parseBlock()
	return &ast.WhileStmt{Cond: cond, Body: body, Span_: token.Join(start, body.Span())}
}

func (p *Parser) parseForInStmt() *ast.ForInStmt {
	start := p.advance().Span // 'for'
	name := p.expect(token.Identifier, "a loop variable name")
	p.expect(token.KwIn, "'in' after the loop variable")
	iter := p.parseExpr()
	body := p.parseBlock()
	return &ast.ForInStmt{Name: name.Value, Iterable: iter, Body: body, Span_: token.Join(start, body.Span())}
}

func (p *Parser) parseMatchStmt() *ast.MatchStmt {
	start := p.advance().Span // 'match'
	scrutinee := p.parseExpr()
	p.expect(token.LBrace, "'{' to start a match body")
	var arms []ast.MatchArm
	for !p.check(token.RBrace) && !p.check(token.EOF) {
		arms = append(arms, p.parseMatchArm())
	}
	end := p.expect(token.RBrace, "'}' to close a match body")
	return &ast.MatchStmt{Scrutinee: scrutinee, Arms: arms, Span_: token.Join(start, end.Span)}
}

func (p *Parser) parseMatchArm() ast.MatchArm {
	pat := p.parsePattern()
	var guard ast.Expr
	if p.match(token.KwIf) {
		guard = p.parseExpr()
	}
	arrowSpan := p.expect(token.Colon, "':' after a match pattern")
	var body ast.Stmt
	if p.check(token.LBrace) {
		body = p.parseBlock()
	} else {
		// A non-block arm body is any single statement (return, break, an
		// expression statement, ...), not just a bare expression.
		body = p.parseStmt()
	}
	return ast.MatchArm{Pattern: pat, Guard: guard, Body: body, Span_: token.Join(pat.Span(), token.Join(arrowSpan.Span, body.Span()))}
}

func (p *Parser) parseDeferStmt() *ast.DeferStmt {
	start := p.advance().Span // 'defer'
	call := p.parseExpr()
	end := p.expect(token.Semicolon, "';' after a defer statement")
	return &ast.DeferStmt{Call: call, Span_: token.Join(start, end.Span)}
}

// parseSimpleStmt parses an expression statement or an assignment (plain or
// compound). Both share a leading expression parse, so they are not split
// into two dispatch branches.
func (p *Parser) parseSimpleStmt() ast.Stmt {
	start := p.cur().Span
	expr := p.parseExpr()
	if op, ok := assignOps[p.curKind()]; ok {
		p.advance()
		val := p.parseExpr()
		end := p.expect(token.Semicolon, "';' after an assignment")
		return &ast.AssignStmt{Target: expr, Op: op, Value: val, Span_: token.Join(start, end.Span)}
	}
	end := p.expect(token.Semicolon, "';' after an expression statement")
	return &ast.ExprStmt{X: expr, Span_: token.Join(start, end.Span)}
}

var assignOps = map[token.Kind]ast.AssignOp{
	token.Assign:    ast.AssignPlain,
	token.PlusEq:    ast.AssignAdd,
	token.MinusEq:   ast.AssignSub,
	token.StarEq:    ast.AssignMul,
	token.SlashEq:   ast.AssignDiv,
	token.PercentEq: ast.AssignMod,
}
