package codegen

import (
	"tinygo.org/x/go-llvm"

	"vxc/internal/ast"
)

// genLiteral lowers every literal-shaped expression: scalars, arrays,
// tuples, and struct literals.
func (fg *funcGen) genLiteral(e ast.Expr) llvm.Value {
	switch v := e.(type) {
	case *ast.IntLit:
		typ := fg.inferredType(v)
		return llvm.ConstInt(fg.c.llvmType(typ, fg.subst), uint64(v.Value), true)
	case *ast.FloatLit:
		typ := fg.inferredType(v)
		return llvm.ConstFloat(fg.c.llvmType(typ, fg.subst), v.Value)
	case *ast.BoolLit:
		val := uint64(0)
		if v.Value {
			val = 1
		}
		return llvm.ConstInt(fg.c.llctx.Int1Type(), val, false)
	case *ast.StringLit:
		return fg.genStringConst(v.Value)
	case *ast.ArrayLit:
		return fg.genArrayLit(v)
	case *ast.TupleLit:
		return fg.genTupleLit(v)
	case *ast.StructLit:
		return fg.genStructLit(v)
	default:
		fg.c.errorf(e.Span(), "CODEGEN004", "unsupported literal %T", e)
		return llvm.Value{}
	}
}

// genStringConst builds a fat-pointer string value { ptr, len } from a
// global constant byte array via CreateGlobalStringPtr, paired with the
// length word vx's fat-pointer string representation requires.
func (fg *funcGen) genStringConst(s string) llvm.Value {
	fg.c.strLits++
	ptr := fg.c.builder.CreateGlobalStringPtr(s, fg.c.stringPrefix)
	strTy := fg.c.lowerPrimitive("string")
	agg := llvm.Undef(strTy)
	agg = fg.c.builder.CreateInsertValue(agg, ptr, 0, "str.ptr")
	n := llvm.ConstInt(fg.c.llctx.Int64Type(), uint64(len(s)), false)
	agg = fg.c.builder.CreateInsertValue(agg, n, 1, "str.len")
	return agg
}

func (fg *funcGen) genArrayLit(v *ast.ArrayLit) llvm.Value {
	if len(v.Elems) == 0 {
		return llvm.Value{}
	}
	elemTy := fg.inferredType(v.Elems[0])
	arrTy := llvm.ArrayType(fg.c.llvmType(elemTy, fg.subst), len(v.Elems))
	agg := llvm.Undef(arrTy)
	for i, el := range v.Elems {
		ev := fg.genExpr(el)
		agg = fg.c.builder.CreateInsertValue(agg, ev, i, "arr.elem")
	}
	return agg
}

func (fg *funcGen) genTupleLit(v *ast.TupleLit) llvm.Value {
	elemTys := make([]llvm.Type, len(v.Elems))
	vals := make([]llvm.Value, len(v.Elems))
	for i, el := range v.Elems {
		vals[i] = fg.genExpr(el)
		elemTys[i] = vals[i].Type()
	}
	agg := llvm.Undef(fg.c.llctx.StructType(elemTys, false))
	for i, val := range vals {
		agg = fg.c.builder.CreateInsertValue(agg, val, i, "tuple.elem")
	}
	return agg
}

func (fg *funcGen) genStructLit(v *ast.StructLit) llvm.Value {
	s, ok := fg.c.prog.structs[v.TypeName]
	if !ok {
		fg.c.errorf(v.Span(), "CODEGEN005", "unknown struct type %q", v.TypeName)
		return llvm.Value{}
	}
	layout := fg.c.structType(s, nil, fg.subst)
	agg := llvm.Undef(layout.llvmType)
	for _, fi := range v.Fields {
		idx := indexOf(layout.fields, fi.Name)
		if idx < 0 {
			continue
		}
		val := fg.genExpr(fi.Value)
		agg = fg.c.builder.CreateInsertValue(agg, val, idx, "struct."+fi.Name)
	}
	return agg
}

func indexOf(fields []string, name string) int {
	for i, f := range fields {
		if f == name {
			return i
		}
	}
	return -1
}

// genIdent loads a bound local, parameter, or global constant by value.
func (fg *funcGen) genIdent(v *ast.IdentExpr) llvm.Value {
	ptr, typ := fg.lvalue(v)
	return loadTyped(fg, ptr, typ)
}
