package codegen

import (
	"tinygo.org/x/go-llvm"

	"vxc/internal/ast"
)

// genIfExpr lowers `if cond { a } else { b }` used as a value, joining both
// arms with a phi.
func (fg *funcGen) genIfExpr(v *ast.IfExpr) llvm.Value {
	cond := fg.genExpr(v.Cond)
	thenBB := fg.c.llctx.AddBasicBlock(fg.fn, "ifexpr.then")
	elseBB := fg.c.llctx.AddBasicBlock(fg.fn, "ifexpr.else")
	mergeBB := fg.c.llctx.AddBasicBlock(fg.fn, "ifexpr.end")
	fg.c.builder.CreateCondBr(cond, thenBB, elseBB)

	fg.c.builder.SetInsertPointAtEnd(thenBB)
	thenVal := fg.genExpr(v.Then)
	thenEndBB := fg.c.builder.GetInsertBlock()
	fg.c.builder.CreateBr(mergeBB)

	fg.c.builder.SetInsertPointAtEnd(elseBB)
	elseVal := fg.genExpr(v.Else)
	elseEndBB := fg.c.builder.GetInsertBlock()
	fg.c.builder.CreateBr(mergeBB)

	fg.c.builder.SetInsertPointAtEnd(mergeBB)
	phi := fg.c.builder.CreatePHI(thenVal.Type(), "ifexpr.result")
	phi.AddIncoming([]llvm.Value{thenVal, elseVal}, []llvm.BasicBlock{thenEndBB, elseEndBB})
	return phi
}

// genMatchExpr lowers a match used as a value: each arm's value feeds a
// phi at the merge block, guarded by a chain of pattern tests identical to
// genMatchStmt's.
func (fg *funcGen) genMatchExpr(v *ast.MatchExpr) llvm.Value {
	scrutPtr, scrutTy := fg.lvalue(v.Scrutinee)
	mergeBB := fg.c.llctx.AddBasicBlock(fg.fn, "matchexpr.end")
	var incoming []llvm.Value
	var incomingBB []llvm.BasicBlock

	for i, arm := range v.Arms {
		nextBB := fg.c.llctx.AddBasicBlock(fg.fn, "matchexpr.next")
		bodyBB := fg.c.llctx.AddBasicBlock(fg.fn, "matchexpr.arm")
		matched := fg.testPattern(arm.Pattern, scrutPtr, scrutTy)
		fg.c.builder.CreateCondBr(matched, bodyBB, nextBB)

		fg.c.builder.SetInsertPointAtEnd(bodyBB)
		fg.pushScope()
		fg.bindPattern(arm.Pattern, scrutPtr, scrutTy)
		val := fg.genExpr(arm.Value)
		fg.popScope()
		incoming = append(incoming, val)
		incomingBB = append(incomingBB, fg.c.builder.GetInsertBlock())
		fg.c.builder.CreateBr(mergeBB)

		fg.c.builder.SetInsertPointAtEnd(nextBB)
		if i == len(v.Arms)-1 {
			fg.c.builder.CreateUnreachable()
		}
	}

	fg.c.builder.SetInsertPointAtEnd(mergeBB)
	if len(incoming) == 0 {
		return llvm.Value{}
	}
	phi := fg.c.builder.CreatePHI(incoming[0].Type(), "matchexpr.result")
	phi.AddIncoming(incoming, incomingBB)
	return phi
}

// testPattern builds the i1 condition for whether scrutinee (addressed by
// ptr, typed typ) matches pat, without binding any names yet.
func (fg *funcGen) testPattern(pat ast.Pattern, ptr llvm.Value, typ ast.Type) llvm.Value {
	trueVal := llvm.ConstInt(fg.c.llctx.Int1Type(), 1, false)
	switch p := pat.(type) {
	case *ast.WildcardPattern, *ast.IdentPattern:
		return trueVal
	case *ast.LiteralPattern:
		val := fg.genExpr(p.Value)
		cur := fg.c.builder.CreateLoad(ptr, "match.val")
		return fg.genCompare(ast.BinEq, cur, val, fg.inferredType(p.Value))
	case *ast.EnumVariantPattern:
		enumName := p.EnumName
		if enumName == "" {
			enumName, _ = unwrapNamed(typ)
		}
		e, ok := fg.c.prog.enums[enumName]
		if !ok {
			return trueVal
		}
		layout := fg.c.enumType(e, namedTypeArgs(typ), fg.subst)
		tagIdx, ok := layout.variantIdx[p.Variant]
		if !ok {
			return trueVal
		}
		i32 := fg.c.llctx.Int32Type()
		tagPtr := fg.c.builder.CreateGEP(ptr, []llvm.Value{
			llvm.ConstInt(i32, 0, false), llvm.ConstInt(i32, 0, false),
		}, "tag.addr")
		tag := fg.c.builder.CreateLoad(tagPtr, "tag")
		want := llvm.ConstInt(tag.Type(), uint64(tagIdx), false)
		return fg.c.builder.CreateICmp(llvm.IntEQ, tag, want, "tag.eq")
	case *ast.StructPattern:
		result := trueVal
		s, ok := fg.c.prog.structs[p.TypeName]
		if !ok {
			return trueVal
		}
		layout := fg.c.structType(s, namedTypeArgs(typ), fg.subst)
		for _, f := range p.Fields {
			idx := indexOf(layout.fields, f.Name)
			if idx < 0 {
				continue
			}
			i32 := fg.c.llctx.Int32Type()
			fp := fg.c.builder.CreateGEP(ptr, []llvm.Value{
				llvm.ConstInt(i32, 0, false), llvm.ConstInt(i32, uint64(idx), false),
			}, f.Name+".addr")
			sub := fg.testPattern(f.Pattern, fp, layout.fieldTy[idx])
			result = fg.c.builder.CreateAnd(result, sub, "pat.and")
		}
		return result
	case *ast.TuplePattern:
		result := trueVal
		tt, ok := typ.(*ast.TupleType)
		if !ok {
			return trueVal
		}
		for i, sub := range p.Elems {
			i32 := fg.c.llctx.Int32Type()
			ep := fg.c.builder.CreateGEP(ptr, []llvm.Value{
				llvm.ConstInt(i32, 0, false), llvm.ConstInt(i32, uint64(i)),
			}, "tuple.elem.addr")
			cond := fg.testPattern(sub, ep, tt.Elems[i])
			result = fg.c.builder.CreateAnd(result, cond, "pat.and")
		}
		return result
	default:
		return trueVal
	}
}

// bindPattern declares the names pat introduces against the matched
// scrutinee's sub-places, for use inside the arm body.
func (fg *funcGen) bindPattern(pat ast.Pattern, ptr llvm.Value, typ ast.Type) {
	switch p := pat.(type) {
	case *ast.IdentPattern:
		fg.declare(p.Name, ptr, typ)
	case *ast.EnumVariantPattern:
		enumName := p.EnumName
		if enumName == "" {
			enumName, _ = unwrapNamed(typ)
		}
		e, ok := fg.c.prog.enums[enumName]
		if !ok {
			return
		}
		layout := fg.c.enumType(e, namedTypeArgs(typ), fg.subst)
		payloadTys := layout.variantTy[p.Variant]
		i32 := fg.c.llctx.Int32Type()
		payloadBase := fg.c.builder.CreateGEP(ptr, []llvm.Value{
			llvm.ConstInt(i32, 0, false), llvm.ConstInt(i32, 1, false),
		}, "payload.addr")
		for i, elemPat := range p.Elems {
			if i >= len(payloadTys) {
				break
			}
			elemLL := fg.c.llvmType(payloadTys[i], fg.subst)
			elemPtr := fg.c.builder.CreateBitCast(payloadBase, llvm.PointerType(elemLL, 0), "payload.elem")
			fg.bindPattern(elemPat, elemPtr, payloadTys[i])
		}
	case *ast.StructPattern:
		s, ok := fg.c.prog.structs[p.TypeName]
		if !ok {
			return
		}
		layout := fg.c.structType(s, namedTypeArgs(typ), fg.subst)
		for _, f := range p.Fields {
			idx := indexOf(layout.fields, f.Name)
			if idx < 0 {
				continue
			}
			i32 := fg.c.llctx.Int32Type()
			fp := fg.c.builder.CreateGEP(ptr, []llvm.Value{
				llvm.ConstInt(i32, 0, false), llvm.ConstInt(i32, uint64(idx)),
			}, f.Name+".addr")
			fg.bindPattern(f.Pattern, fp, layout.fieldTy[idx])
		}
	case *ast.TuplePattern:
		tt, ok := typ.(*ast.TupleType)
		if !ok {
			return
		}
		for i, sub := range p.Elems {
			i32 := fg.c.llctx.Int32Type()
			ep := fg.c.builder.CreateGEP(ptr, []llvm.Value{
				llvm.ConstInt(i32, 0, false), llvm.ConstInt(i32, uint64(i)),
			}, "tuple.elem.addr")
			fg.bindPattern(sub, ep, tt.Elems[i])
		}
	}
}

// genClosure lowers a closure to an anonymous capture struct holding the
// captured bindings, an anonymous function taking that struct as its first
// parameter, and a function value pairing the two together. Capture
// strength (shared ref or unique ref) is resolved by a pre-pass over the
// closure body that classifies each free variable by how it is used; the
// pre-pass never selects by-value capture.
func (fg *funcGen) genClosure(v *ast.ClosureExpr) llvm.Value {
	captures := freeVarsOf(v, paramNames(v.Params))
	capTypes := make([]llvm.Type, 0, len(captures))
	capNames := make([]string, 0, len(captures))
	capVals := make([]llvm.Value, 0, len(captures))
	for name, strength := range captures {
		lv, ok := fg.lookup(name)
		if !ok {
			continue
		}
		var val llvm.Value
		var ty ast.Type
		switch strength {
		case captureByValue:
			val = fg.c.builder.CreateLoad(lv.ptr, name+".cap")
			ty = lv.typ
		default: // captureByRef (shared or unique; IR erases the distinction)
			val = lv.ptr
			ty = &ast.RefType{Elem: lv.typ, Mutable: strength == captureUniqueRef}
		}
		capNames = append(capNames, name)
		capVals = append(capVals, val)
		capTypes = append(capTypes, fg.c.llvmType(ty, fg.subst))
	}
	capStructTy := fg.c.llctx.StructType(capTypes, false)

	fg.c.strLits++ // reuse the counter as a cheap unique-name source
	closureName := fmtClosureName(fg.c.strLits)

	var params []llvm.Type
	params = append(params, llvm.PointerType(capStructTy, 0))
	for _, p := range v.Params {
		params = append(params, fg.c.llvmType(p.Type, fg.subst))
	}
	ret := fg.c.llvmType(v.Ret, fg.subst)
	fnTy := llvm.FunctionType(ret, params, false)
	llfn := llvm.AddFunction(fg.c.module, closureName, fnTy)
	llfn.Param(0).SetName("captures")
	for i, p := range v.Params {
		llfn.Param(i + 1).SetName(p.Name)
	}

	savedBB := fg.c.builder.GetInsertBlock()
	inner := &funcGen{c: fg.c, fn: llfn, ret: v.Ret, subst: fg.subst}
	entry := fg.c.llctx.AddBasicBlock(llfn, "entry")
	fg.c.builder.SetInsertPointAtEnd(entry)
	inner.pushScope()
	capPtr := llfn.Param(0)
	for i, name := range capNames {
		fieldPtr := fg.c.builder.CreateGEP(capPtr, []llvm.Value{
			llvm.ConstInt(fg.c.llctx.Int32Type(), 0, false),
			llvm.ConstInt(fg.c.llctx.Int32Type(), uint64(i), false),
		}, name+".cap.addr")
		capTy := captureFieldType(captures[name], mustLookupType(fg, name))
		inner.declare(name, fieldPtr, capTy)
	}
	for i, p := range v.Params {
		lp := llfn.Param(i + 1)
		alloca := fg.c.builder.CreateAlloca(lp.Type(), p.Name+".addr")
		fg.c.builder.CreateStore(lp, alloca)
		inner.declare(p.Name, alloca, p.Type)
	}
	if v.Block != nil {
		if !inner.genBlock(v.Block) {
			inner.runDefers()
			if v.Ret == nil {
				fg.c.builder.CreateRetVoid()
			} else {
				fg.c.builder.CreateUnreachable()
			}
		}
	} else {
		val := inner.genExpr(v.Body)
		fg.c.builder.CreateRet(val)
	}
	inner.popScope()
	fg.c.builder.SetInsertPointAtEnd(savedBB)

	capStructPtr := fg.c.builder.CreateAlloca(capStructTy, "closure.captures")
	for i, val := range capVals {
		fp := fg.c.builder.CreateGEP(capStructPtr, []llvm.Value{
			llvm.ConstInt(fg.c.llctx.Int32Type(), 0, false),
			llvm.ConstInt(fg.c.llctx.Int32Type(), uint64(i), false),
		}, "cap.store.addr")
		fg.c.builder.CreateStore(val, fp)
	}
	// The closure value itself is the { captures*, fn* } pair; emitCall
	// splits it and passes captures as the implicit first argument.
	pairTy := fg.c.llctx.StructType([]llvm.Type{
		llvm.PointerType(capStructTy, 0),
		llvm.PointerType(fnTy, 0),
	}, false)
	agg := llvm.Undef(pairTy)
	agg = fg.c.builder.CreateInsertValue(agg, capStructPtr, 0, "closure.cap")
	agg = fg.c.builder.CreateInsertValue(agg, llfn, 1, "closure.fn")
	return agg
}

func mustLookupType(fg *funcGen, name string) ast.Type {
	if lv, ok := fg.lookup(name); ok {
		return lv.typ
	}
	return &ast.PrimitiveType{Name: "i32"}
}

func captureFieldType(strength captureStrength, base ast.Type) ast.Type {
	if strength == captureByValue {
		return base
	}
	return &ast.RefType{Elem: base, Mutable: strength == captureUniqueRef}
}

func fmtClosureName(n int) string {
	const digits = "0123456789"
	buf := []byte("closure.")
	if n == 0 {
		return string(buf) + "0"
	}
	var tmp []byte
	for n > 0 {
		tmp = append(tmp, digits[n%10])
		n /= 10
	}
	for i := len(tmp) - 1; i >= 0; i-- {
		buf = append(buf, tmp[i])
	}
	return string(buf)
}

// genAwait lowers `x.await` to a call into the runtime's suspension entry
// point; the compiler's only obligation at an await point is to mark it as
// a resumption boundary for the runtime's state machine, not to schedule
// anything itself.
func (fg *funcGen) genAwait(v *ast.AwaitExpr) llvm.Value {
	task := fg.genExpr(v.X)
	fn := fg.c.runtimeFunc("vx_rt_await", []llvm.Type{task.Type()}, task.Type())
	return fg.c.builder.CreateCall(fn, []llvm.Value{task}, "await.result")
}

// genGo lowers `go f(args)` to a runtime spawn call carrying the call's
// arguments packed the same way a closure's captures are.
func (fg *funcGen) genGo(v *ast.GoExpr) llvm.Value {
	call, ok := v.Call.(*ast.CallExpr)
	if !ok {
		fg.c.errorf(v.Span(), "CODEGEN030", "go requires a call expression")
		return llvm.Value{}
	}
	ident, _ := call.Callee.(*ast.IdentExpr)
	var fnPtr llvm.Value
	if ident != nil {
		if fn, ok := fg.c.prog.funcs[ident.Name]; ok {
			fnPtr = fg.c.declareFunc(fn, ident.Name, nil, nil)
		}
	}
	if fnPtr.IsNil() {
		fnPtr = fg.genExpr(call.Callee)
	}
	opaque := llvm.PointerType(fg.c.llctx.Int8Type(), 0)
	cast := fg.c.builder.CreateBitCast(fnPtr, opaque, "go.fnptr")
	spawn := fg.c.runtimeFunc("vx_rt_spawn", []llvm.Type{opaque}, opaque)
	return fg.c.builder.CreateCall(spawn, []llvm.Value{cast}, "go.task")
}

// genTry lowers `x?` against a union-typed x: inspect the tag, and either
// extract the non-error payload or return the error member immediately
//.
func (fg *funcGen) genTry(v *ast.TryExpr) llvm.Value {
	ptr, typ := fg.lvalue(v.X)
	u, ok := typ.(*ast.UnionType)
	if !ok || len(u.Members) < 2 {
		fg.c.errorf(v.Span(), "CODEGEN031", "`?` requires a union-typed operand")
		return llvm.Value{}
	}
	i32 := fg.c.llctx.Int32Type()
	tagPtr := fg.c.builder.CreateGEP(ptr, []llvm.Value{
		llvm.ConstInt(i32, 0, false), llvm.ConstInt(i32, 0, false),
	}, "try.tag.addr")
	tag := fg.c.builder.CreateLoad(tagPtr, "try.tag")
	isOkBB := fg.c.llctx.AddBasicBlock(fg.fn, "try.ok")
	isErrBB := fg.c.llctx.AddBasicBlock(fg.fn, "try.err")
	cond := fg.c.builder.CreateICmp(llvm.IntEQ, tag, llvm.ConstInt(tag.Type(), 0, false), "try.isok")
	fg.c.builder.CreateCondBr(cond, isOkBB, isErrBB)

	fg.c.builder.SetInsertPointAtEnd(isErrBB)
	fg.runAllDefers()
	fg.c.builder.CreateRet(fg.c.builder.CreateLoad(ptr, "try.propagate"))

	fg.c.builder.SetInsertPointAtEnd(isOkBB)
	payloadBase := fg.c.builder.CreateGEP(ptr, []llvm.Value{
		llvm.ConstInt(i32, 0, false), llvm.ConstInt(i32, 1, false),
	}, "try.payload.addr")
	okLL := fg.c.llvmType(u.Members[0], fg.subst)
	okPtr := fg.c.builder.CreateBitCast(payloadBase, llvm.PointerType(okLL, 0), "try.ok.ptr")
	return fg.c.builder.CreateLoad(okPtr, "try.value")
}
