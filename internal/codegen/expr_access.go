package codegen

import (
	"tinygo.org/x/go-llvm"

	"vxc/internal/ast"
	"vxc/internal/token"
)

// fieldGEP computes the address of a named field of an aggregate at
// basePtr, unwrapping one level of reference/pointer indirection first
// when baseTy is `&T`/`*T` (method-call-style field access through a
// reference, e.g. `self.x` where self : &Point).
func (fg *funcGen) fieldGEP(basePtr llvm.Value, baseTy ast.Type, name string, span token.Span) (llvm.Value, ast.Type) {
	structTy, ptr := fg.resolveIndirection(basePtr, baseTy)
	n, ok := unwrapNamed(structTy)
	if !ok {
		fg.c.errorf(span, "CODEGEN010", "field access on non-struct type")
		return llvm.Value{}, nil
	}
	s, ok := fg.c.prog.structs[n]
	if !ok {
		fg.c.errorf(span, "CODEGEN011", "unknown struct type %q", n)
		return llvm.Value{}, nil
	}
	layout := fg.c.structType(s, namedTypeArgs(structTy), fg.subst)
	idx := indexOf(layout.fields, name)
	if idx < 0 {
		fg.c.errorf(span, "CODEGEN012", "type %q has no field %q", n, name)
		return llvm.Value{}, nil
	}
	i32 := fg.c.llctx.Int32Type()
	gep := fg.c.builder.CreateGEP(ptr, []llvm.Value{
		llvm.ConstInt(i32, 0, false),
		llvm.ConstInt(i32, uint64(idx), false),
	}, name+".addr")
	return gep, layout.fieldTy[idx]
}

// indexGEP computes the address of an array/slice element.
func (fg *funcGen) indexGEP(basePtr llvm.Value, baseTy ast.Type, idx llvm.Value) (llvm.Value, ast.Type) {
	i64 := fg.c.llctx.Int64Type()
	switch t := baseTy.(type) {
	case *ast.ArrayType:
		i32 := fg.c.llctx.Int32Type()
		gep := fg.c.builder.CreateGEP(basePtr, []llvm.Value{
			llvm.ConstInt(i32, 0, false), idx,
		}, "idx.addr")
		return gep, t.Elem
	case *ast.SliceType:
		agg := fg.c.builder.CreateLoad(basePtr, "slice.val")
		dataPtr := fg.c.builder.CreateExtractValue(agg, 0, "slice.ptr")
		gep := fg.c.builder.CreateGEP(dataPtr, []llvm.Value{idx}, "idx.addr")
		return gep, t.Elem
	case *ast.RefType:
		return fg.indexGEP(basePtr, t.Elem, idx)
	default:
		_ = i64
		return basePtr, baseTy
	}
}

// resolveIndirection loads through a reference/pointer so field access on
// `self : &Point` (or a plain `&T` local) reaches the pointee's fields
// directly, rather than the reference's own (nonexistent) fields.
func (fg *funcGen) resolveIndirection(ptr llvm.Value, typ ast.Type) (ast.Type, llvm.Value) {
	switch v := typ.(type) {
	case *ast.RefType:
		inner := fg.c.builder.CreateLoad(ptr, "deref")
		return v.Elem, inner
	case *ast.PtrType:
		inner := fg.c.builder.CreateLoad(ptr, "deref")
		return v.Elem, inner
	default:
		return typ, ptr
	}
}

func namedTypeArgs(t ast.Type) []ast.Type {
	if n, ok := t.(*ast.NamedType); ok {
		return n.Args
	}
	return nil
}
