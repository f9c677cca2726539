package parser

import (
	"strconv"

	"vxc/internal/ast"
	"vxc/internal/token"
)

// parsePattern parses a single match/destructuring pattern.
func (p *Parser) parsePattern() ast.Pattern {
	switch p.curKind() {
	case token.Underscore:
		t := p.advance()
		return &ast.WildcardPattern{Span_: t.Span}
	case token.Int:
		return p.parseLiteralPattern()
	case token.Float:
		return p.parseLiteralPattern()
	case token.String:
		return p.parseLiteralPattern()
	case token.KwTrue, token.KwFalse:
		return p.parseLiteralPattern()
	case token.LParen:
		start := p.advance().Span
		var elems []ast.Pattern
		for !p.check(token.RParen) && !p.check(token.EOF) {
			elems = append(elems, p.parsePattern())
			if !p.match(token.Comma) {
				break
			}
		}
		end := p.expect(token.RParen, "')' to close a tuple pattern")
		return &ast.TuplePattern{Elems: elems, Span_: token.Join(start, end.Span)}
	case token.Identifier:
		name := p.advance()
		switch {
		case p.check(token.Dot):
			p.advance()
			variant := p.expect(token.Identifier, "an enum variant name")
			pat := &ast.EnumVariantPattern{EnumName: name.Value, Variant: variant.Value, Span_: token.Join(name.Span, variant.Span)}
			if p.match(token.LParen) {
				for !p.check(token.RParen) && !p.check(token.EOF) {
					pat.Elems = append(pat.Elems, p.parsePattern())
					if !p.match(token.Comma) {
						break
					}
				}
				end := p.expect(token.RParen, "')' to close a variant pattern")
				pat.Span_ = token.Join(pat.Span_, end.Span)
			}
			return pat
		case p.check(token.LBrace) && p.identColonLookahead():
			return p.parseStructPattern(name)
		default:
			return &ast.IdentPattern{Name: name.Value, Span_: name.Span}
		}
	default:
		p.errorf(p.cur().Span, "PARSE005", "expected a pattern, found %s", p.curKind())
		t := p.advance()
		return &ast.WildcardPattern{Span_: t.Span}
	}
}

// identColonLookahead reports whether the current token is '{' followed by
// `identifier :` or an immediate '}' — the lookahead rule used both here and
// in expr.go to tell a struct pattern/literal apart from a block.
func (p *Parser) identColonLookahead() bool {
	if !p.check(token.LBrace) {
		return false
	}
	next := p.peekAt(1)
	if next.Kind == token.RBrace {
		return true
	}
	return next.Kind == token.Identifier && p.peekAt(2).Kind == token.Colon
}

func (p *Parser) parseStructPattern(name token.Token) *ast.StructPattern {
	start := p.advance().Span // '{'
	pat := &ast.StructPattern{TypeName: name.Value}
	for !p.check(token.RBrace) && !p.check(token.EOF) {
		if p.match(token.DotDot) {
			pat.Rest = true
			break
		}
		fname := p.expect(token.Identifier, "a field name")
		p.expect(token.Colon, "':' after a field name")
		fpat := p.parsePattern()
		pat.Fields = append(pat.Fields, ast.FieldPattern{Name: fname.Value, Pattern: fpat, Span_: token.Join(fname.Span, fpat.Span())})
		if !p.match(token.Comma) {
			break
		}
	}
	end := p.expect(token.RBrace, "'}' to close a struct pattern")
	pat.Span_ = token.Join(name.Span, token.Join(start, end.Span))
	return pat
}

func (p *Parser) parseLiteralPattern() *ast.LiteralPattern {
	switch p.curKind() {
	case token.Int:
		t := p.advance()
		digits, suffix := splitNumSuffix(t.Value)
		v, _ := strconv.ParseInt(digits, 0, 64)
		return &ast.LiteralPattern{Value: &ast.IntLit{Value: v, Suffix: suffix, Span_: t.Span}, Span_: t.Span}
	case token.Float:
		t := p.advance()
		digits, suffix := splitNumSuffix(t.Value)
		v, _ := strconv.ParseFloat(digits, 64)
		return &ast.LiteralPattern{Value: &ast.FloatLit{Value: v, Suffix: suffix, Span_: t.Span}, Span_: t.Span}
	case token.String:
		t := p.advance()
		return &ast.LiteralPattern{Value: &ast.StringLit{Value: t.Value, Span_: t.Span}, Span_: t.Span}
	default:
		t := p.advance()
		return &ast.LiteralPattern{Value: &ast.BoolLit{Value: t.Kind == token.KwTrue, Span_: t.Span}, Span_: t.Span}
	}
}
