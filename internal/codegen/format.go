package codegen

import (
	"tinygo.org/x/go-llvm"

	"vxc/internal/ast"
)

// genFormatString lowers a formatted-string literal to a sequence of
// runtime builder calls. The runtime symbol names are fixed per
// SPEC_FULL.md's SUPPLEMENTED FEATURES note, declared on demand through
// runtimeFunc exactly like the go/await scheduler hooks.
func (fg *funcGen) genFormatString(v *ast.FormatStringExpr) llvm.Value {
	c := fg.c
	i8ptr := llvm.PointerType(c.llctx.Int8Type(), 0)
	i64 := c.llctx.Int64Type()
	f64 := c.llctx.DoubleType()
	i1 := c.llctx.Int1Type()
	voidTy := c.llctx.VoidType()
	strTy := c.lowerPrimitive("string")

	newFn := c.runtimeFunc("vx_fmt_builder_new", nil, i8ptr)
	appendStr := c.runtimeFunc("vx_fmt_append_str", []llvm.Type{i8ptr, i8ptr, i64}, voidTy)
	appendI64 := c.runtimeFunc("vx_fmt_append_i64", []llvm.Type{i8ptr, i64}, voidTy)
	appendF64 := c.runtimeFunc("vx_fmt_append_f64", []llvm.Type{i8ptr, f64}, voidTy)
	appendBool := c.runtimeFunc("vx_fmt_append_bool", []llvm.Type{i8ptr, i1}, voidTy)
	finish := c.runtimeFunc("vx_fmt_builder_finish", []llvm.Type{i8ptr}, strTy)

	b := c.builder.CreateCall(newFn, nil, "fmt.builder")

	appendStrVal := func(sv llvm.Value) {
		ptr := c.builder.CreateExtractValue(sv, 0, "fmt.str.ptr")
		n := c.builder.CreateExtractValue(sv, 1, "fmt.str.len")
		c.builder.CreateCall(appendStr, []llvm.Value{b, ptr, n}, "")
	}

	for i, chunk := range v.Chunks {
		if chunk != "" {
			appendStrVal(fg.genStringConst(chunk))
		}
		if i >= len(v.Exprs) {
			continue
		}
		e := v.Exprs[i]
		val := fg.genExpr(e)
		ty := fg.inferredType(e)

		switch {
		case isStringType(ty):
			appendStrVal(val)
		case isFloatType(ty):
			if val.Type().TypeKind() != llvm.DoubleTypeKind {
				val = c.builder.CreateFPExt(val, f64, "fmt.f64")
			}
			c.builder.CreateCall(appendF64, []llvm.Value{b, val}, "")
		case isBoolType(ty):
			c.builder.CreateCall(appendBool, []llvm.Value{b, val}, "")
		default: // every remaining scalar is some integer width
			if val.Type().IntTypeWidth() != 64 {
				if isUnsignedType(ty) {
					val = c.builder.CreateZExt(val, i64, "fmt.i64")
				} else {
					val = c.builder.CreateSExt(val, i64, "fmt.i64")
				}
			}
			c.builder.CreateCall(appendI64, []llvm.Value{b, val}, "")
		}
	}
	return c.builder.CreateCall(finish, []llvm.Value{b}, "fmt.result")
}

func isStringType(t ast.Type) bool {
	p, ok := t.(*ast.PrimitiveType)
	return ok && p.Name == "string"
}

func isBoolType(t ast.Type) bool {
	p, ok := t.(*ast.PrimitiveType)
	return ok && p.Name == "bool"
}
