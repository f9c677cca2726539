package parser

import (
	"strconv"

	"vxc/internal/ast"
	"vxc/internal/token"
)

// parseExpr parses a full expression. Range syntax (`lo..hi`, `lo..=hi`)
// sits above the Pratt ladder since it is never itself an operand of a
// binary operator in vx's grammar.
func (p *Parser) parseExpr() ast.Expr {
	lo := p.parsePrecedence(precOr)
	if p.check(token.DotDot) || p.check(token.DotDotEq) {
		inclusive := p.curKind() == token.DotDotEq
		p.advance()
		hi := p.parsePrecedence(precOr)
		return &ast.RangeExpr{Lo: lo, Hi: hi, Inclusive: inclusive, Span_: token.Join(lo.Span(), hi.Span())}
	}
	return lo
}

// parsePrecedence implements the Pratt/precedence-climbing loop: parse one
// prefix expression, then keep absorbing infix operators at least as tight
// as min.
func (p *Parser) parsePrecedence(min precedence) ast.Expr {
	left := p.parsePrefix()
	for {
		pr := precedenceOf(p.curKind())
		if pr < min || pr == precNone {
			break
		}
		left = p.parseInfix(left, pr)
	}
	return left
}

func (p *Parser) parsePrefix() ast.Expr {
	switch p.curKind() {
	case token.Int:
		return p.parseIntLit()
	case token.Float:
		return p.parseFloatLit()
	case token.KwTrue, token.KwFalse:
		t := p.advance()
		return &ast.BoolLit{Value: t.Kind == token.KwTrue, Span_: t.Span}
	case token.String:
		t := p.advance()
		return &ast.StringLit{Value: t.Value, Span_: t.Span}
	case token.FStringBegin:
		return p.parseFormatString()
	case token.Identifier:
		return p.parseIdentOrStructLit()
	case token.LParen:
		return p.parseParenOrTuple()
	case token.LBracket:
		return p.parseArrayLit()
	case token.Minus:
		start := p.advance().Span
		x := p.parsePrecedence(precUnary)
		return &ast.UnaryExpr{Op: ast.UnaryNeg, X: x, Span_: token.Join(start, x.Span())}
	case token.Bang:
		start := p.advance().Span
		x := p.parsePrecedence(precUnary)
		return &ast.UnaryExpr{Op: ast.UnaryNot, X: x, Span_: token.Join(start, x.Span())}
	case token.Caret:
		start := p.advance().Span
		x := p.parsePrecedence(precUnary)
		return &ast.UnaryExpr{Op: ast.UnaryBitNot, X: x, Span_: token.Join(start, x.Span())}
	case token.Amp:
		start := p.advance().Span
		x := p.parsePrecedence(precUnary)
		mut := p.match(token.Bang)
		return &ast.RefExpr{X: x, Mutable: mut, Span_: token.Join(start, x.Span())}
	case token.Star:
		start := p.advance().Span
		x := p.parsePrecedence(precUnary)
		return &ast.DerefExpr{X: x, Span_: token.Join(start, x.Span())}
	case token.PlusPlus, token.MinusMinus:
		// Prefix increment/decrement is not part of the grammar; treat a leading `++`/`--` as two unary `+`/`-`
		// would be meaningless here, so report it plainly.
		p.errorf(p.cur().Span, "PARSE006", "'%s' is only valid as a postfix operator", p.curKind())
		t := p.advance()
		return &ast.IdentExpr{Name: "", Span_: t.Span}
	case token.Pipe:
		return p.parseClosure()
	case token.KwMatch:
		return p.parseMatchExpr()
	case token.KwIf:
		return p.parseIfExpr()
	case token.KwGo:
		start := p.advance().Span
		call := p.parsePrecedence(precPostfix)
		return &ast.GoExpr{Call: call, Span_: token.Join(start, call.Span())}
	default:
		p.errorf(p.cur().Span, "PARSE007", "expected an expression, found %s", p.curKind())
		t := p.advance()
		p.syncToExprBoundary()
		return &ast.IdentExpr{Name: "<error>", Span_: t.Span}
	}
}

func (p *Parser) parseInfix(left ast.Expr, pr precedence) ast.Expr {
	switch p.curKind() {
	case token.LParen:
		return p.parseCall(left)
	case token.LBracket:
		return p.parseIndex(left)
	case token.Dot:
		return p.parseFieldOrMethod(left)
	case token.Question:
		t := p.advance()
		return &ast.TryExpr{X: left, Span_: token.Join(left.Span(), t.Span)}
	case token.PlusPlus:
		t := p.advance()
		return &ast.PostfixExpr{Op: ast.PostfixInc, X: left, Span_: token.Join(left.Span(), t.Span)}
	case token.MinusMinus:
		t := p.advance()
		return &ast.PostfixExpr{Op: ast.PostfixDec, X: left, Span_: token.Join(left.Span(), t.Span)}
	case token.KwAs:
		p.advance()
		ty := p.parseType()
		return &ast.CastExpr{X: left, Type: ty, Span_: token.Join(left.Span(), ty.Span())}
	case token.Lt:
		// Generic call vs. comparison: only a bare identifier
		// callee followed by a bracketed, comma-separated type list
		// immediately closed by '(' counts as instantiation syntax.
		if _, ok := left.(*ast.IdentExpr); ok && p.looksLikeGenericCall() {
			return p.parseGenericCall(left)
		}
		fallthrough
	default:
		op, ok := binOps[p.curKind()]
		if !ok {
			return left
		}
		p.advance()
		right := p.parsePrecedence(pr + 1) // left-associative: next op must bind tighter
		return &ast.BinaryExpr{Op: op, X: left, Y: right, Span_: token.Join(left.Span(), right.Span())}
	}
}

var binOps = map[token.Kind]ast.BinaryOp{
	token.Plus: ast.BinAdd, token.Minus: ast.BinSub, token.Star: ast.BinMul,
	token.Slash: ast.BinDiv, token.Percent: ast.BinMod,
	token.EqEq: ast.BinEq, token.NotEq: ast.BinNotEq,
	token.Lt: ast.BinLt, token.LtEq: ast.BinLtEq, token.Gt: ast.BinGt, token.GtEq: ast.BinGtEq,
	token.AmpAmp: ast.BinAnd, token.PipePipe: ast.BinOr,
	token.Amp: ast.BinBitAnd, token.Pipe: ast.BinBitOr, token.Caret: ast.BinBitXor,
	token.Shl: ast.BinShl, token.Shr: ast.BinShr,
}

func (p *Parser) parseGenericCall(callee ast.Expr) ast.Expr {
	p.advance() // '<'
	var typeArgs []ast.Type
	for !p.check(token.Gt) && !p.check(token.EOF) {
		typeArgs = append(typeArgs, p.parseType())
		if !p.match(token.Comma) {
			break
		}
	}
	p.expect(token.Gt, "'>' to close explicit type arguments")
	p.expect(token.LParen, "'(' to start a call's argument list")
	var args []ast.Expr
	for !p.check(token.RParen) && !p.check(token.EOF) {
		args = append(args, p.parseExpr())
		if !p.match(token.Comma) {
			break
		}
	}
	end := p.expect(token.RParen, "')' to close a call's argument list")
	return &ast.CallExpr{Callee: callee, TypeArgs: typeArgs, Args: args, Span_: token.Join(callee.Span(), end.Span)}
}

func (p *Parser) parseCall(callee ast.Expr) ast.Expr {
	p.advance() // '('
	var args []ast.Expr
	for !p.check(token.RParen) && !p.check(token.EOF) {
		args = append(args, p.parseExpr())
		if !p.match(token.Comma) {
			break
		}
	}
	end := p.expect(token.RParen, "')' to close a call's argument list")
	return &ast.CallExpr{Callee: callee, Args: args, Span_: token.Join(callee.Span(), end.Span)}
}

func (p *Parser) parseIndex(base ast.Expr) ast.Expr {
	p.advance() // '['
	idx := p.parseExpr()
	end := p.expect(token.RBracket, "']' to close an index expression")
	return &ast.IndexExpr{Base: base, Index: idx, Span_: token.Join(base.Span(), end.Span)}
}

func (p *Parser) parseFieldOrMethod(base ast.Expr) ast.Expr {
	p.advance() // '.'
	if p.check(token.KwAwait) {
		t := p.advance()
		return &ast.AwaitExpr{X: base, Span_: token.Join(base.Span(), t.Span)}
	}
	name := p.expect(token.Identifier, "a field or method name")
	if p.check(token.LParen) || (p.check(token.Lt) && p.looksLikeGenericCall()) {
		var typeArgs []ast.Type
		if p.match(token.Lt) {
			for !p.check(token.Gt) && !p.check(token.EOF) {
				typeArgs = append(typeArgs, p.parseType())
				if !p.match(token.Comma) {
					break
				}
			}
			p.expect(token.Gt, "'>' to close explicit method type arguments")
		}
		p.expect(token.LParen, "'(' to start a method call's argument list")
		var args []ast.Expr
		for !p.check(token.RParen) && !p.check(token.EOF) {
			args = append(args, p.parseExpr())
			if !p.match(token.Comma) {
				break
			}
		}
		end := p.expect(token.RParen, "')' to close a method call's argument list")
		return &ast.MethodCallExpr{Recv: base, Method: name.Value, TypeArgs: typeArgs, Args: args, Span_: token.Join(base.Span(), end.Span)}
	}
	return &ast.FieldExpr{Base: base, Name: name.Value, Span_: token.Join(base.Span(), name.Span)}
}

// looksLikeGenericCall performs a bounded lookahead: scan forward from the
// current '<' for a comma-separated type list ending in '>' immediately
// followed by '(' — aborting on a newline-crossing token we can't have
// (spans carry no newline marker here, so length is bounded instead) or an
// unmatched bracket.
func (p *Parser) looksLikeGenericCall() bool {
	depth := 0
	const maxLookahead = 64
	for i := 0; i < maxLookahead; i++ {
		k := p.peekAt(i).Kind
		switch k {
		case token.Lt:
			depth++
		case token.Gt:
			depth--
			if depth == 0 {
				return p.peekAt(i + 1).Kind == token.LParen
			}
		case token.Identifier, token.Comma, token.Amp, token.Bang, token.LBracket, token.RBracket, token.KwFunction, token.Colon:
			// plausible contents of a type argument list; keep scanning
		case token.EOF, token.Semicolon, token.RBrace, token.LBrace:
			return false
		default:
			if depth == 0 {
				return false
			}
		}
	}
	return false
}

func (p *Parser) parseIntLit() *ast.IntLit {
	t := p.advance()
	digits, suffix := splitNumSuffix(t.Value)
	v, _ := strconv.ParseInt(digits, 0, 64)
	return &ast.IntLit{Value: v, Suffix: suffix, Span_: t.Span}
}

func (p *Parser) parseFloatLit() *ast.FloatLit {
	t := p.advance()
	digits, suffix := splitNumSuffix(t.Value)
	v, _ := strconv.ParseFloat(digits, 64)
	return &ast.FloatLit{Value: v, Suffix: suffix, Span_: t.Span}
}

// splitNumSuffix separates a numeric lexeme from its optional trailing type
// suffix (i8..i64, u8..u64, f32, f64), as the lexer leaves them fused in
// Token.Value.
func splitNumSuffix(s string) (digits, suffix string) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == 'i' || c == 'u' || c == 'f' {
			// Exponents ('e'/'E') are consumed by the lexer into the digit
			// run already; a bare trailing letter run here is the suffix.
			if i > 0 && (s[i-1] == 'e' || s[i-1] == 'E') {
				continue
			}
			return s[:i], s[i:]
		}
	}
	return s, ""
}

func (p *Parser) parseFormatString() ast.Expr {
	start := p.advance() // FStringBegin
	fs := &ast.FormatStringExpr{Chunks: []string{start.Value}}
	for {
		if p.check(token.FStringMid) || p.check(token.FStringEnd) {
			break
		}
		fs.Exprs = append(fs.Exprs, p.parseExpr())
		if p.check(token.FStringMid) {
			t := p.advance()
			fs.Chunks = append(fs.Chunks, t.Value)
			continue
		}
		break
	}
	end := p.expect(token.FStringEnd, "the closing chunk of a formatted string")
	fs.Chunks = append(fs.Chunks, end.Value)
	fs.Span_ = token.Join(start.Span, end.Span)
	return fs
}

// parseIdentOrStructLit implements the struct-literal-vs-block lookahead:
// an identifier directly followed by '{' is a struct literal only when the
// brace's first content is `identifier :` or an
// immediate '}'; otherwise the identifier is left as a bare IdentExpr and
// the '{' is not consumed, so a caller parsing `if cond { ... }` sees an
// untouched block-opening brace.
func (p *Parser) parseIdentOrStructLit() ast.Expr {
	name := p.advance()
	if p.identColonLookahead() {
		return p.parseStructLit(name)
	}
	return &ast.IdentExpr{Name: name.Value, Span_: name.Span}
}

func (p *Parser) parseStructLit(name token.Token) ast.Expr {
	start := p.advance().Span // '{'
	lit := &ast.StructLit{TypeName: name.Value}
	for !p.check(token.RBrace) && !p.check(token.EOF) {
		fname := p.expect(token.Identifier, "a field name")
		p.expect(token.Colon, "':' after a field name")
		val := p.parseExpr()
		lit.Fields = append(lit.Fields, ast.FieldInit{Name: fname.Value, Value: val, Span_: token.Join(fname.Span, val.Span())})
		if !p.match(token.Comma) {
			break
		}
	}
	end := p.expect(token.RBrace, "'}' to close a struct literal")
	lit.Span_ = token.Join(name.Span, token.Join(start, end.Span))
	return lit
}

func (p *Parser) parseParenOrTuple() ast.Expr {
	start := p.advance().Span // '('
	if p.match(token.RParen) {
		return &ast.TupleLit{Span_: token.Join(start, p.toks[p.pos-1].Span)}
	}
	first := p.parseExpr()
	if !p.match(token.Comma) {
		p.expect(token.RParen, "')' to close a parenthesized expression")
		return first
	}
	elems := []ast.Expr{first}
	for !p.check(token.RParen) && !p.check(token.EOF) {
		elems = append(elems, p.parseExpr())
		if !p.match(token.Comma) {
			break
		}
	}
	end := p.expect(token.RParen, "')' to close a tuple literal")
	return &ast.TupleLit{Elems: elems, Span_: token.Join(start, end.Span)}
}

func (p *Parser) parseArrayLit() ast.Expr {
	start := p.advance().Span // '['
	lit := &ast.ArrayLit{}
	for !p.check(token.RBracket) && !p.check(token.EOF) {
		lit.Elems = append(lit.Elems, p.parseExpr())
		if !p.match(token.Comma) {
			break
		}
	}
	end := p.expect(token.RBracket, "']' to close an array literal")
	lit.Span_ = token.Join(start, end.Span)
	return lit
}

// parseClosure handles `|params| body` and `|params| { body }`. '|' at the
// start of an expression position always begins a closure; the
// bitwise-or reading only applies in infix position, which parsePrefix
// never reaches for '|'.
func (p *Parser) parseClosure() ast.Expr {
	start := p.advance().Span // '|'
	var params []ast.Param
	for !p.check(token.Pipe) && !p.check(token.EOF) {
		name := p.expect(token.Identifier, "a closure parameter name")
		var ty ast.Type
		pspan := name.Span
		if p.match(token.Colon) {
			ty = p.parseTypeNoUnion()
			pspan = token.Join(name.Span, ty.Span())
		}
		params = append(params, ast.Param{Name: name.Value, Type: ty, Span_: pspan})
		if !p.match(token.Comma) {
			break
		}
	}
	p.expect(token.Pipe, "'|' to close a closure parameter list")
	var ret ast.Type
	if p.match(token.Colon) {
		ret = p.parseType()
	}
	closure := &ast.ClosureExpr{Params: params, Ret: ret}
	if p.check(token.LBrace) {
		closure.Block = p.parseBlock()
		closure.Span_ = token.Join(start, closure.Block.Span())
	} else {
		closure.Body = p.parseExpr()
		closure.Span_ = token.Join(start, closure.Body.Span())
	}
	return closure
}

func (p *Parser) parseMatchExpr() ast.Expr {
	start := p.advance().Span // 'match'
	scrutinee := p.parseExpr()
	p.expect(token.LBrace, "'{' to start a match expression body")
	var arms []ast.MatchExprArm
	for !p.check(token.RBrace) && !p.check(token.EOF) {
		pat := p.parsePattern()
		var guard ast.Expr
		if p.match(token.KwIf) {
			guard = p.parseExpr()
		}
		p.expect(token.Colon, "':' after a match pattern")
		val := p.parseExpr()
		arms = append(arms, ast.MatchExprArm{Pattern: pat, Guard: guard, Value: val, Span_: token.Join(pat.Span(), val.Span())})
		p.match(token.Comma)
	}
	end := p.expect(token.RBrace, "'}' to close a match expression")
	return &ast.MatchExpr{Scrutinee: scrutinee, Arms: arms, Span_: token.Join(start, end.Span)}
}

func (p *Parser) parseIfExpr() ast.Expr {
	start := p.advance().Span // 'if'
	cond := p.parseExpr()
	p.expect(token.LBrace, "'{' to start the if-expression's then-branch")
	then := p.parseExpr()
	p.expect(token.RBrace, "'}' to close the if-expression's then-branch")
	p.expect(token.KwElse, "'else' — if-as-expression requires both branches")
	p.expect(token.LBrace, "'{' to start the if-expression's else-branch")
	els := p.parseExpr()
	end := p.expect(token.RBrace, "'}' to close the if-expression's else-branch")
	return &ast.IfExpr{Cond: cond, Then: then, Else: els, Span_: token.Join(start, end.Span)}
}
