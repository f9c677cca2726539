package parser

import (
	"vxc/internal/ast"
	"vxc/internal/token"
)

var primitiveNames = map[string]bool{
	"i8": true, "i16": true, "i32": true, "i64": true,
	"u8": true, "u16": true, "u32": true, "u64": true,
	"f32": true, "f64": true, "bool": true, "string": true,
	"byte": true, "void": true,
}

// parseType parses a single type expression. References and pointers are
// read left-to-right for the sigil, but the trailing mutability `!` is only
// known once the element type has been parsed, so RefType/PtrType wrap
// after the fact.
func (p *Parser) parseType() ast.Type {
	start := p.cur().Span

	switch p.curKind() {
	case token.Amp:
		p.advance()
		elem := p.parseType()
		mut := p.match(token.Bang)
		return &ast.RefType{Elem: elem, Mutable: mut, Span_: token.Join(start, elem.Span())}
	case token.Star:
		p.advance()
		elem := p.parseType()
		mut := p.match(token.Bang)
		return &ast.PtrType{Elem: elem, Mutable: mut, Span_: token.Join(start, elem.Span())}
	case token.LBracket:
		p.advance()
		elem := p.parseType()
		if p.match(token.Semicolon) {
			size := p.parseExpr()
			end := p.expect(token.RBracket, "']'")
			return &ast.ArrayType{Elem: elem, Size: size, Span_: token.Join(start, end.Span)}
		}
		end := p.expect(token.RBracket, "']'")
		return &ast.SliceType{Elem: elem, Span_: token.Join(start, end.Span)}
	case token.LParen:
		p.advance()
		var elems []ast.Type
		for !p.check(token.RParen) && !p.check(token.EOF) {
			elems = append(elems, p.parseType())
			if !p.match(token.Comma) {
				break
			}
		}
		end := p.expect(token.RParen, "')'")
		return &ast.TupleType{Elems: elems, Span_: token.Join(start, end.Span)}
	case token.KwFunction:
		p.advance()
		p.expect(token.LParen, "'(' after 'fn'")
		var params []ast.Type
		for !p.check(token.RParen) && !p.check(token.EOF) {
			params = append(params, p.parseType())
			if !p.match(token.Comma) {
				break
			}
		}
		end := p.expect(token.RParen, "')'")
		var ret ast.Type
		retSpan := end.Span
		if p.match(token.Colon) {
			ret = p.parseType()
			retSpan = ret.Span()
		}
		return &ast.FuncType{Params: params, Ret: ret, Span_: token.Join(start, retSpan)}
	case token.Underscore:
		p.advance()
		return p.maybeUnion(&ast.WildcardType{Span_: start})
	case token.Identifier:
		name := p.advance()
		t := &ast.NamedType{Name: name.Value, Span_: name.Span}
		if p.match(token.Lt) {
			for !p.check(token.Gt) && !p.check(token.EOF) {
				t.Args = append(t.Args, p.parseType())
				if !p.match(token.Comma) {
					break
				}
			}
			end := p.expect(token.Gt, "'>' to close generic argument list")
			t.Span_ = token.Join(name.Span, end.Span)
		}
		if primitiveNames[name.Value] && len(t.Args) == 0 {
			return p.maybeUnion(&ast.PrimitiveType{Name: name.Value, Span_: name.Span})
		}
		return p.maybeUnion(t)
	default:
		p.errorf(start, "PARSE002", "expected a type, found %s", p.curKind())
		p.advance()
		return &ast.WildcardType{Span_: start}
	}
}

// maybeUnion extends t into a UnionType when followed by `| Type`, the
// sum-of-types syntax used for the `T | error` convention. This is
// the one place '|' reads as a type-level separator rather than bitwise-or
// or a closure delimiter, since no expression context applies in parseType.
func (p *Parser) maybeUnion(t ast.Type) ast.Type {
	if !p.check(token.Pipe) {
		return t
	}
	members := []ast.Type{t}
	for p.match(token.Pipe) {
		members = append(members, p.parseTypeNoUnion())
	}
	return &ast.UnionType{Members: members, Span_: token.Join(t.Span(), members[len(members)-1].Span())}
}

// parseTypeNoUnion parses one union member without recursing into
// maybeUnion, so a chain `A | B | C` builds one flat UnionType.
func (p *Parser) parseTypeNoUnion() ast.Type {
	switch p.curKind() {
	case token.Identifier:
		name := p.advance()
		t := &ast.NamedType{Name: name.Value, Span_: name.Span}
		if p.match(token.Lt) {
			for !p.check(token.Gt) && !p.check(token.EOF) {
				t.Args = append(t.Args, p.parseType())
				if !p.match(token.Comma) {
					break
				}
			}
			end := p.expect(token.Gt, "'>' to close generic argument list")
			t.Span_ = token.Join(name.Span, end.Span)
		}
		if primitiveNames[name.Value] && len(t.Args) == 0 {
			return &ast.PrimitiveType{Name: name.Value, Span_: name.Span}
		}
		return t
	default:
		return p.parseType()
	}
}
