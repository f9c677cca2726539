package parser

import (
	"vxc/internal/ast"
	"vxc/internal/token"
)

func (p *Parser) parseProgram() *ast.Program {
	prog := &ast.Program{}
	for !p.check(token.EOF) {
		item := p.parseItem()
		if item != nil {
			prog.Items = append(prog.Items, item)
		}
	}
	return prog
}

// parseItem parses one top-level declaration, recovering to the next
// plausible item boundary on an unrecoverable error.
func (p *Parser) parseItem() (item ast.Item) {
	defer p.recoverItem()

	exported := p.match(token.KwExport)

	switch p.curKind() {
	case token.KwImport:
		return p.parseImport(false)
	case token.KwFrom:
		return p.parseFromImport(exported)
	case token.KwFunction:
		return p.parseFuncItem(exported)
	case token.KwStruct:
		return p.parseStructItem(exported)
	case token.KwEnum:
		return p.parseEnumItem(exported)
	case token.KwTrait:
		return p.parseTraitItem(exported)
	case token.KwImpl:
		return p.parseImplItem()
	case token.KwType:
		return p.parseTypeAliasItem(exported)
	case token.KwConst:
		return p.parseConstItem(exported)
	case token.KwExternal:
		return p.parseExternalItem()
	default:
		p.errorf(p.cur().Span, "PARSE003", "expected an item, found %s", p.curKind())
		p.advance()
		return nil
	}
}

// parseImport handles `import path;` and `import path as alias;`.
func (p *Parser) parseImport(_ bool) ast.Item {
	start := p.advance().Span // 'import'
	pathTok := p.expect(token.String, "an import path string")
	item := &ast.ImportItem{Path: pathTok.Value, Kind: ast.ImportWhole}
	if p.match(token.KwAs) {
		alias := p.expect(token.Identifier, "an alias identifier")
		item.Alias = alias.Value
		item.Kind = ast.ImportNamespace
	}
	end := p.expect(token.Semicolon, "';' after import")
	item.Span_ = token.Join(start, end.Span)
	return item
}

// parseFromImport handles `from path import a, b;`, optionally prefixed by
// `export` for the re-export flavor.
func (p *Parser) parseFromImport(reexport bool) ast.Item {
	start := p.cur().Span
	p.advance() // 'from'
	pathTok := p.expect(token.String, "an import path string")
	p.expect(token.KwImport, "'import' after the from-path")
	var names []string
	for {
		n := p.expect(token.Identifier, "an imported name")
		if n.Value != "" {
			names = append(names, n.Value)
		}
		if !p.match(token.Comma) {
			break
		}
	}
	end := p.expect(token.Semicolon, "';' after import list")
	return &ast.ImportItem{
		Path: pathTok.Value, Kind: ast.ImportNamed, Names: names,
		Reexport: reexport, Span_: token.Join(start, end.Span),
	}
}

func (p *Parser) parseGenerics() []ast.GenericParam {
	if !p.match(token.Lt) {
		return nil
	}
	var params []ast.GenericParam
	for !p.check(token.Gt) && !p.check(token.EOF) {
		name := p.expect(token.Identifier, "a generic parameter name")
		gp := ast.GenericParam{Name: name.Value, Span_: name.Span}
		if p.match(token.Colon) {
			gp.Bounds = append(gp.Bounds, p.parseTypeNoUnion())
			for p.match(token.Plus) {
				gp.Bounds = append(gp.Bounds, p.parseTypeNoUnion())
			}
		}
		params = append(params, gp)
		if !p.match(token.Comma) {
			break
		}
	}
	p.expect(token.Gt, "'>' to close the generic parameter list")
	return params
}

func (p *Parser) parseParams() []ast.Param {
	p.expect(token.LParen, "'(' to start a parameter list")
	var params []ast.Param
	for !p.check(token.RParen) && !p.check(token.EOF) {
		name := p.expect(token.Identifier, "a parameter name")
		p.expect(token.Colon, "':' before a parameter type")
		ty := p.parseType()
		params = append(params, ast.Param{Name: name.Value, Type: ty, Span_: token.Join(name.Span, ty.Span())})
		if !p.match(token.Comma) {
			break
		}
	}
	p.expect(token.RParen, "')' to close the parameter list")
	return params
}

func (p *Parser) parseFuncItem(exported bool) *ast.FuncItem {
	start := p.advance().Span // 'fn'
	name := p.expect(token.Identifier, "a function name")
	generics := p.parseGenerics()
	params := p.parseParams()
	var ret ast.Type
	if p.match(token.Colon) {
		ret = p.parseType()
	}
	body := p.parseBlock()
	return &ast.FuncItem{
		Name: name.Value, Exported: exported, Generics: generics, Params: params,
		Ret: ret, Body: body, Span_: token.Join(start, body.Span()),
	}
}

func (p *Parser) parseStructItem(exported bool) *ast.StructItem {
	start := p.advance().Span // 'struct'
	name := p.expect(token.Identifier, "a struct name")
	generics := p.parseGenerics()
	p.expect(token.LBrace, "'{' to start the struct body")
	var fields []ast.Field
	for !p.check(token.RBrace) && !p.check(token.EOF) {
		fname := p.expect(token.Identifier, "a field name")
		p.expect(token.Colon, "':' before a field type")
		ty := p.parseType()
		fields = append(fields, ast.Field{Name: fname.Value, Type: ty, Span_: token.Join(fname.Span, ty.Span())})
		if !p.match(token.Comma) {
			break
		}
	}
	end := p.expect(token.RBrace, "'}' to close the struct body")
	return &ast.StructItem{
		Name: name.Value, Exported: exported, Generics: generics, Fields: fields,
		Span_: token.Join(start, end.Span),
	}
}

func (p *Parser) parseEnumItem(exported bool) *ast.EnumItem {
	start := p.advance().Span // 'enum'
	name := p.expect(token.Identifier, "an enum name")
	generics := p.parseGenerics()
	p.expect(token.LBrace, "'{' to start the enum body")
	var variants []ast.EnumVariant
	for !p.check(token.RBrace) && !p.check(token.EOF) {
		vname := p.expect(token.Identifier, "a variant name")
		v := ast.EnumVariant{Name: vname.Value, Span_: vname.Span}
		if p.match(token.LParen) {
			for !p.check(token.RParen) && !p.check(token.EOF) {
				v.Payload = append(v.Payload, p.parseType())
				if !p.match(token.Comma) {
					break
				}
			}
			end := p.expect(token.RParen, "')' to close the variant payload")
			v.Span_ = token.Join(vname.Span, end.Span)
		}
		variants = append(variants, v)
		if !p.match(token.Comma) {
			break
		}
	}
	end := p.expect(token.RBrace, "'}' to close the enum body")
	return &ast.EnumItem{
		Name: name.Value, Exported: exported, Generics: generics, Variants: variants,
		Span_: token.Join(start, end.Span),
	}
}

func (p *Parser) parseTraitItem(exported bool) *ast.TraitItem {
	start := p.advance().Span // 'trait'
	name := p.expect(token.Identifier, "a trait name")
	generics := p.parseGenerics()
	p.expect(token.LBrace, "'{' to start the trait body")
	var methods []ast.TraitMethod
	for !p.check(token.RBrace) && !p.check(token.EOF) {
		mstart := p.expect(token.KwFunction, "'fn'").Span
		mname := p.expect(token.Identifier, "a method name")
		mgenerics := p.parseGenerics()
		mparams := p.parseParams()
		var mret ast.Type
		if p.match(token.Colon) {
			mret = p.parseType()
		}
		m := ast.TraitMethod{Name: mname.Value, Generics: mgenerics, Params: mparams, Ret: mret}
		if p.check(token.LBrace) {
			m.Default = p.parseBlock()
			m.Span_ = token.Join(mstart, m.Default.Span())
		} else {
			end := p.expect(token.Semicolon, "';' after a trait method signature")
			m.Span_ = token.Join(mstart, end.Span)
		}
		methods = append(methods, m)
	}
	end := p.expect(token.RBrace, "'}' to close the trait body")
	return &ast.TraitItem{
		Name: name.Value, Exported: exported, Generics: generics, Methods: methods,
		Span_: token.Join(start, end.Span),
	}
}

func (p *Parser) parseImplItem() *ast.ImplItem {
	start := p.advance().Span // 'impl'
	generics := p.parseGenerics()
	first := p.parseType()
	impl := &ast.ImplItem{Generics: generics}
	if p.match(token.KwFor) {
		impl.Trait = first
		impl.Target = p.parseType()
	} else {
		impl.Target = first
	}
	p.expect(token.LBrace, "'{' to start the impl body")
	for !p.check(token.RBrace) && !p.check(token.EOF) {
		exported := p.match(token.KwExport)
		if !p.check(token.KwFunction) {
			p.errorf(p.cur().Span, "PARSE004", "expected a method in impl body, found %s", p.curKind())
			p.advance()
			continue
		}
		impl.Methods = append(impl.Methods, p.parseFuncItem(exported))
	}
	end := p.expect(token.RBrace, "'}' to close the impl body")
	impl.Span_ = token.Join(start, end.Span)
	return impl
}

func (p *Parser) parseTypeAliasItem(exported bool) *ast.TypeAliasItem {
	start := p.advance().Span // 'type'
	name := p.expect(token.Identifier, "a type alias name")
	generics := p.parseGenerics()
	p.expect(token.Assign, "'=' in a type alias")
	target := p.parseType()
	end := p.expect(token.Semicolon, "';' after a type alias")
	return &ast.TypeAliasItem{
		Name: name.Value, Exported: exported, Generics: generics, Target: target,
		Span_: token.Join(start, end.Span),
	}
}

func (p *Parser) parseConstItem(exported bool) *ast.ConstItem {
	start := p.advance().Span // 'const'
	name := p.expect(token.Identifier, "a constant name")
	var ty ast.Type
	if p.match(token.Colon) {
		ty = p.parseType()
	}
	p.expect(token.Assign, "'=' in a constant declaration")
	val := p.parseExpr()
	end := p.expect(token.Semicolon, "';' after a constant declaration")
	return &ast.ConstItem{
		Name: name.Value, Exported: exported, Type: ty, Value: val,
		Span_: token.Join(start, end.Span),
	}
}

func (p *Parser) parseExternalItem() *ast.ExternalItem {
	start := p.advance().Span // 'external'
	abi := p.expect(token.String, "a calling-convention string, e.g. \"C\"")
	p.expect(token.LBrace, "'{' to start the external block")
	var funcs []ast.ExternFunc
	for !p.check(token.RBrace) && !p.check(token.EOF) {
		fstart := p.expect(token.KwFunction, "'fn'").Span
		name := p.expect(token.Identifier, "a function name")
		params := p.parseParams()
		var ret ast.Type
		retSpan := name.Span
		if p.match(token.Colon) {
			ret = p.parseType()
			retSpan = ret.Span()
		}
		end := p.expect(token.Semicolon, "';' after an external function signature")
		funcs = append(funcs, ast.ExternFunc{
			Name: name.Value, Params: params, Ret: ret,
			Span_: token.Join(fstart, token.Join(retSpan, end.Span)),
		})
	}
	end := p.expect(token.RBrace, "'}' to close the external block")
	return &ast.ExternalItem{ABI: abi.Value, Funcs: funcs, Span_: token.Join(start, end.Span)}
}
