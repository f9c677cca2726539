package codegen

import (
	"tinygo.org/x/go-llvm"

	"vxc/internal/ast"
)

// genBinary lowers arithmetic, comparison, and logical operators. `&&`/`||`
// get dedicated short-circuit blocks; everything else is a single instruction selected
// by the operand type.
func (fg *funcGen) genBinary(v *ast.BinaryExpr) llvm.Value {
	switch v.Op {
	case ast.BinAnd:
		return fg.genShortCircuit(v, false)
	case ast.BinOr:
		return fg.genShortCircuit(v, true)
	}

	lhs := fg.genExpr(v.X)
	rhs := fg.genExpr(v.Y)
	typ := fg.inferredType(v.X)

	switch v.Op {
	case ast.BinEq, ast.BinNotEq, ast.BinLt, ast.BinLtEq, ast.BinGt, ast.BinGtEq:
		return fg.genCompare(v.Op, lhs, rhs, typ)
	default:
		return fg.genArith(v.Op, lhs, rhs, typ)
	}
}

// genShortCircuit lowers `a || b` (isOr=true) or `a && b` by evaluating a,
// branching on it, and only evaluating b on the side that needs it, then
// joining with a phi.
func (fg *funcGen) genShortCircuit(v *ast.BinaryExpr, isOr bool) llvm.Value {
	lhs := fg.genExpr(v.X)
	startBB := fg.c.builder.GetInsertBlock()
	rhsBB := fg.c.llctx.AddBasicBlock(fg.fn, "sc.rhs")
	mergeBB := fg.c.llctx.AddBasicBlock(fg.fn, "sc.end")

	if isOr {
		fg.c.builder.CreateCondBr(lhs, mergeBB, rhsBB)
	} else {
		fg.c.builder.CreateCondBr(lhs, rhsBB, mergeBB)
	}

	fg.c.builder.SetInsertPointAtEnd(rhsBB)
	rhs := fg.genExpr(v.Y)
	rhsEndBB := fg.c.builder.GetInsertBlock()
	fg.c.builder.CreateBr(mergeBB)

	fg.c.builder.SetInsertPointAtEnd(mergeBB)
	phi := fg.c.builder.CreatePHI(fg.c.llctx.Int1Type(), "sc.result")
	phi.AddIncoming([]llvm.Value{lhs, rhs}, []llvm.BasicBlock{startBB, rhsEndBB})
	return phi
}

func (fg *funcGen) genCompare(op ast.BinaryOp, lhs, rhs llvm.Value, typ ast.Type) llvm.Value {
	if isFloatType(typ) {
		pred := map[ast.BinaryOp]llvm.FloatPredicate{
			ast.BinEq: llvm.FloatOEQ, ast.BinNotEq: llvm.FloatONE,
			ast.BinLt: llvm.FloatOLT, ast.BinLtEq: llvm.FloatOLE,
			ast.BinGt: llvm.FloatOGT, ast.BinGtEq: llvm.FloatOGE,
		}[op]
		return fg.c.builder.CreateFCmp(pred, lhs, rhs, "fcmp")
	}
	unsigned := isUnsignedType(typ)
	var pred llvm.IntPredicate
	switch op {
	case ast.BinEq:
		pred = llvm.IntEQ
	case ast.BinNotEq:
		pred = llvm.IntNE
	case ast.BinLt:
		pred = pickPred(unsigned, llvm.IntULT, llvm.IntSLT)
	case ast.BinLtEq:
		pred = pickPred(unsigned, llvm.IntULE, llvm.IntSLE)
	case ast.BinGt:
		pred = pickPred(unsigned, llvm.IntUGT, llvm.IntSGT)
	case ast.BinGtEq:
		pred = pickPred(unsigned, llvm.IntUGE, llvm.IntSGE)
	}
	return fg.c.builder.CreateICmp(pred, lhs, rhs, "icmp")
}

func pickPred(unsigned bool, u, s llvm.IntPredicate) llvm.IntPredicate {
	if unsigned {
		return u
	}
	return s
}

func (fg *funcGen) genUnary(v *ast.UnaryExpr) llvm.Value {
	x := fg.genExpr(v.X)
	typ := fg.inferredType(v.X)
	switch v.Op {
	case ast.UnaryNeg:
		if isFloatType(typ) {
			return fg.c.builder.CreateFNeg(x, "fneg")
		}
		return fg.c.builder.CreateNeg(x, "neg")
	case ast.UnaryNot:
		return fg.c.builder.CreateNot(x, "not")
	case ast.UnaryBitNot:
		return fg.c.builder.CreateNot(x, "bitnot")
	default:
		return x
	}
}

// genPostfix lowers `x++`/`x--`: load, compute, store back, and yield the
// pre-increment value (the common C-family postfix convention).
func (fg *funcGen) genPostfix(v *ast.PostfixExpr) llvm.Value {
	ptr, typ := fg.lvalue(v.X)
	cur := fg.c.builder.CreateLoad(ptr, "postfix.cur")
	one := llvm.ConstInt(cur.Type(), 1, false)
	if isFloatType(typ) {
		one = llvm.ConstFloat(cur.Type(), 1)
	}
	op := ast.BinAdd
	if v.Op == ast.PostfixDec {
		op = ast.BinSub
	}
	next := fg.genArith(op, cur, one, typ)
	fg.c.builder.CreateStore(next, ptr)
	return cur
}

// genCast lowers `X as Type`: integer widen/narrow, int<->float, and
// pointer bitcasts, selecting the instruction from the source/destination
// type pair.
func (fg *funcGen) genCast(v *ast.CastExpr) llvm.Value {
	x := fg.genExpr(v.X)
	srcTy := fg.inferredType(v.X)
	dstLL := fg.c.llvmType(v.Type, fg.subst)

	srcFloat := isFloatType(srcTy)
	dstFloat := isFloatType(v.Type)
	srcUnsigned := isUnsignedType(srcTy)

	switch {
	case srcFloat && dstFloat:
		if dstLL.TypeKind() == llvm.DoubleTypeKind {
			return fg.c.builder.CreateFPExt(x, dstLL, "fpext")
		}
		return fg.c.builder.CreateFPTrunc(x, dstLL, "fptrunc")
	case srcFloat && !dstFloat:
		if isUnsignedType(v.Type) {
			return fg.c.builder.CreateFPToUI(x, dstLL, "fptoui")
		}
		return fg.c.builder.CreateFPToSI(x, dstLL, "fptosi")
	case !srcFloat && dstFloat:
		if srcUnsigned {
			return fg.c.builder.CreateUIToFP(x, dstLL, "uitofp")
		}
		return fg.c.builder.CreateSIToFP(x, dstLL, "sitofp")
	default:
		srcWidth := x.Type().IntTypeWidth()
		dstWidth := dstLL.IntTypeWidth()
		switch {
		case dstWidth == srcWidth:
			return fg.c.builder.CreateBitCast(x, dstLL, "bitcast")
		case dstWidth < srcWidth:
			return fg.c.builder.CreateTrunc(x, dstLL, "trunc")
		case srcUnsigned:
			return fg.c.builder.CreateZExt(x, dstLL, "zext")
		default:
			return fg.c.builder.CreateSExt(x, dstLL, "sext")
		}
	}
}
