package codegen

import (
	"tinygo.org/x/go-llvm"

	"vxc/internal/ast"
)

// genExpr is the single dispatch point for every expression kind, split by
// family across expr_literals.go, expr_binops.go, expr_access.go,
// expr_calls.go, and expr_special.go.
func (fg *funcGen) genExpr(e ast.Expr) llvm.Value {
	switch v := e.(type) {
	case *ast.IntLit, *ast.FloatLit, *ast.BoolLit, *ast.StringLit, *ast.ArrayLit, *ast.TupleLit, *ast.StructLit:
		return fg.genLiteral(v)
	case *ast.FormatStringExpr:
		return fg.genFormatString(v)
	case *ast.IdentExpr:
		return fg.genIdent(v)
	case *ast.FieldExpr:
		ptr, typ := fg.lvalue(v)
		return loadTyped(fg, ptr, typ)
	case *ast.IndexExpr:
		ptr, typ := fg.lvalue(v)
		return loadTyped(fg, ptr, typ)
	case *ast.CallExpr:
		return fg.genCall(v)
	case *ast.MethodCallExpr:
		return fg.genMethodCall(v)
	case *ast.UnaryExpr:
		return fg.genUnary(v)
	case *ast.BinaryExpr:
		return fg.genBinary(v)
	case *ast.PostfixExpr:
		return fg.genPostfix(v)
	case *ast.CastExpr:
		return fg.genCast(v)
	case *ast.RefExpr:
		ptr, _ := fg.lvalue(v.X)
		return ptr
	case *ast.DerefExpr:
		inner := fg.genExpr(v.X)
		typ := fg.derefType(fg.inferredType(v.X))
		return loadTyped(fg, inner, typ)
	case *ast.RangeExpr:
		// A bare range value (not consumed directly by a for-in) lowers to
		// a {lo, hi} pair so it can still be passed around as a value.
		lo := fg.genExpr(v.Lo)
		hi := fg.genExpr(v.Hi)
		agg := llvm.Undef(fg.c.llctx.StructType([]llvm.Type{lo.Type(), hi.Type()}, false))
		agg = fg.c.builder.CreateInsertValue(agg, lo, 0, "range.lo")
		agg = fg.c.builder.CreateInsertValue(agg, hi, 1, "range.hi")
		return agg
	case *ast.IfExpr:
		return fg.genIfExpr(v)
	case *ast.MatchExpr:
		return fg.genMatchExpr(v)
	case *ast.ClosureExpr:
		return fg.genClosure(v)
	case *ast.AwaitExpr:
		return fg.genAwait(v)
	case *ast.GoExpr:
		return fg.genGo(v)
	case *ast.TryExpr:
		return fg.genTry(v)
	default:
		fg.c.errorf(e.Span(), "CODEGEN001", "unsupported expression %T", e)
		return llvm.Value{}
	}
}

// loadTyped loads through ptr and records the load's AST type for callers
// that need it (the go-llvm binding used here predates opaque-pointer-only
// CreateLoad2, so every load already carries its own LLVM type implicitly;
// this helper exists purely to keep call sites symmetric with lvalue's
// (ptr, typ) return shape).
func loadTyped(fg *funcGen, ptr llvm.Value, typ ast.Type) llvm.Value {
	return fg.c.builder.CreateLoad(ptr, "load")
}

// lvalue resolves e to its address and static type, the shared machinery
// behind assignment targets, `&e`, field/index access, and for-in sequence
// iteration.
func (fg *funcGen) lvalue(e ast.Expr) (llvm.Value, ast.Type) {
	switch v := e.(type) {
	case *ast.IdentExpr:
		lv, ok := fg.lookup(v.Name)
		if ok {
			return lv.ptr, lv.typ
		}
		if gv, ok := fg.c.globalConsts[v.Name]; ok {
			return gv.ptr, gv.typ
		}
		fg.c.errorf(e.Span(), "CODEGEN002", "unresolved name %q", v.Name)
		return llvm.Value{}, nil
	case *ast.FieldExpr:
		basePtr, baseTy := fg.lvalue(v.Base)
		return fg.fieldGEP(basePtr, baseTy, v.Name, v.Span())
	case *ast.IndexExpr:
		basePtr, baseTy := fg.lvalue(v.Base)
		idx := fg.genExpr(v.Index)
		return fg.indexGEP(basePtr, baseTy, idx)
	case *ast.DerefExpr:
		ptr := fg.genExpr(v.X)
		return ptr, fg.derefType(fg.inferredType(v.X))
	default:
		// An rvalue used where an address is needed (e.g. `&make_vec()`):
		// spill it to a fresh stack slot so the rest of the pipeline can
		// still treat it uniformly as an addressable place.
		val := fg.genExpr(e)
		typ := fg.inferredType(e)
		alloca := fg.c.builder.CreateAlloca(fg.c.llvmType(typ, fg.subst), "spill")
		fg.c.builder.CreateStore(val, alloca)
		return alloca, typ
	}
}

func (fg *funcGen) derefType(t ast.Type) ast.Type {
	switch v := t.(type) {
	case *ast.RefType:
		return v.Elem
	case *ast.PtrType:
		return v.Elem
	default:
		return t
	}
}

// genArith applies op to already-lowered lhs/rhs, selecting the
// signed/unsigned/float instruction variant from typ.
func (fg *funcGen) genArith(op ast.BinaryOp, lhs, rhs llvm.Value, typ ast.Type) llvm.Value {
	if isFloatType(typ) {
		switch op {
		case ast.BinAdd:
			return fg.c.builder.CreateFAdd(lhs, rhs, "fadd")
		case ast.BinSub:
			return fg.c.builder.CreateFSub(lhs, rhs, "fsub")
		case ast.BinMul:
			return fg.c.builder.CreateFMul(lhs, rhs, "fmul")
		case ast.BinDiv:
			return fg.c.builder.CreateFDiv(lhs, rhs, "fdiv")
		case ast.BinMod:
			return fg.c.builder.CreateFRem(lhs, rhs, "frem")
		}
	}
	unsigned := isUnsignedType(typ)
	switch op {
	case ast.BinAdd:
		return fg.c.builder.CreateAdd(lhs, rhs, "add")
	case ast.BinSub:
		return fg.c.builder.CreateSub(lhs, rhs, "sub")
	case ast.BinMul:
		return fg.c.builder.CreateMul(lhs, rhs, "mul")
	case ast.BinDiv:
		if unsigned {
			return fg.c.builder.CreateUDiv(lhs, rhs, "udiv")
		}
		return fg.c.builder.CreateSDiv(lhs, rhs, "sdiv")
	case ast.BinMod:
		if unsigned {
			return fg.c.builder.CreateURem(lhs, rhs, "urem")
		}
		return fg.c.builder.CreateSRem(lhs, rhs, "srem")
	case ast.BinBitAnd:
		return fg.c.builder.CreateAnd(lhs, rhs, "and")
	case ast.BinBitOr:
		return fg.c.builder.CreateOr(lhs, rhs, "or")
	case ast.BinBitXor:
		return fg.c.builder.CreateXor(lhs, rhs, "xor")
	case ast.BinShl:
		return fg.c.builder.CreateShl(lhs, rhs, "shl")
	case ast.BinShr:
		if unsigned {
			return fg.c.builder.CreateLShr(lhs, rhs, "lshr")
		}
		return fg.c.builder.CreateAShr(lhs, rhs, "ashr")
	}
	return lhs
}

func isFloatType(t ast.Type) bool {
	p, ok := t.(*ast.PrimitiveType)
	return ok && (p.Name == "f32" || p.Name == "f64")
}

func isUnsignedType(t ast.Type) bool {
	p, ok := t.(*ast.PrimitiveType)
	return ok && len(p.Name) > 0 && p.Name[0] == 'u'
}

// inferredType recovers e's static type for lowering decisions where the
// analyzer's own type table isn't threaded into codegen.
func (fg *funcGen) inferredType(e ast.Expr) ast.Type {
	switch v := e.(type) {
	case *ast.IntLit:
		if v.Suffix != "" {
			return &ast.PrimitiveType{Name: v.Suffix}
		}
		return &ast.PrimitiveType{Name: "i32"}
	case *ast.FloatLit:
		if v.Suffix != "" {
			return &ast.PrimitiveType{Name: v.Suffix}
		}
		return &ast.PrimitiveType{Name: "f64"}
	case *ast.BoolLit:
		return &ast.PrimitiveType{Name: "bool"}
	case *ast.StringLit, *ast.FormatStringExpr:
		return &ast.PrimitiveType{Name: "string"}
	case *ast.IdentExpr:
		if lv, ok := fg.lookup(v.Name); ok {
			return lv.typ
		}
		if gv, ok := fg.c.globalConsts[v.Name]; ok {
			return gv.typ
		}
		return &ast.PrimitiveType{Name: "i32"}
	case *ast.FieldExpr:
		baseTy := fg.inferredType(v.Base)
		return fg.c.fieldType(baseTy, v.Name)
	case *ast.IndexExpr:
		baseTy := fg.inferredType(v.Base)
		switch t := baseTy.(type) {
		case *ast.ArrayType:
			return t.Elem
		case *ast.SliceType:
			return t.Elem
		}
		return &ast.PrimitiveType{Name: "i32"}
	case *ast.BinaryExpr:
		switch v.Op {
		case ast.BinEq, ast.BinNotEq, ast.BinLt, ast.BinLtEq, ast.BinGt, ast.BinGtEq, ast.BinAnd, ast.BinOr:
			return &ast.PrimitiveType{Name: "bool"}
		}
		return fg.inferredType(v.X)
	case *ast.UnaryExpr:
		if v.Op == ast.UnaryNot {
			return &ast.PrimitiveType{Name: "bool"}
		}
		return fg.inferredType(v.X)
	case *ast.CastExpr:
		return v.Type
	case *ast.RefExpr:
		return &ast.RefType{Elem: fg.inferredType(v.X), Mutable: v.Mutable}
	case *ast.DerefExpr:
		return fg.derefType(fg.inferredType(v.X))
	case *ast.CallExpr:
		if ident, ok := v.Callee.(*ast.IdentExpr); ok {
			if f, ok := fg.c.prog.funcs[ident.Name]; ok {
				return f.Ret
			}
		}
		return nil
	case *ast.MethodCallExpr:
		recvTy := fg.inferredType(v.Recv)
		if n, ok := unwrapNamed(recvTy); ok {
			if m, _ := fg.c.prog.methodOf(n, v.Method); m != nil {
				return m.Ret
			}
		}
		return nil
	case *ast.StructLit:
		return &ast.NamedType{Name: v.TypeName}
	case *ast.IfExpr:
		return fg.inferredType(v.Then)
	case *ast.TryExpr:
		if u, ok := fg.inferredType(v.X).(*ast.UnionType); ok && len(u.Members) > 0 {
			return u.Members[0]
		}
		return nil
	default:
		return nil
	}
}

func unwrapNamed(t ast.Type) (string, bool) {
	switch v := t.(type) {
	case *ast.NamedType:
		return v.Name, true
	case *ast.RefType:
		return unwrapNamed(v.Elem)
	case *ast.PtrType:
		return unwrapNamed(v.Elem)
	default:
		return "", false
	}
}

// fieldType looks up a struct field's declared type by name, used by
// inferredType for FieldExpr.
func (c *Context) fieldType(baseTy ast.Type, name string) ast.Type {
	n, ok := unwrapNamed(baseTy)
	if !ok {
		return nil
	}
	if s, ok := c.prog.structs[n]; ok {
		for _, f := range s.Fields {
			if f.Name == name {
				return f.Type
			}
		}
	}
	return nil
}
