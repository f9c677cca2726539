package codegen

import (
	"tinygo.org/x/go-llvm"

	"vxc/internal/ast"
)

// genBlock lowers every statement of b in order and reports whether the
// block's last-emitted instruction already terminates its basic block
// (a return, break, continue, or a guaranteed-unreachable point), so the
// caller knows whether a fall-through branch still needs to be emitted.
// On fall-through it first emits the block's own defers in reverse order.
func (fg *funcGen) genBlock(b *ast.BlockStmt) bool {
	fg.pushScope()
	defer fg.popScope()
	for _, s := range b.Stmts {
		if fg.genStmt(s) {
			return true
		}
	}
	fg.runDefers()
	return false
}

func (fg *funcGen) genStmt(s ast.Stmt) bool {
	switch v := s.(type) {
	case *ast.LetStmt:
		fg.genLet(v)
		return false
	case *ast.AssignStmt:
		fg.genAssign(v)
		return false
	case *ast.ExprStmt:
		fg.genExpr(v.X)
		return false
	case *ast.ReturnStmt:
		fg.genReturn(v)
		return true
	case *ast.IfStmt:
		return fg.genIf(v)
	case *ast.WhileStmt:
		fg.genWhile(v)
		return false
	case *ast.ForInStmt:
		fg.genForIn(v)
		return false
	case *ast.MatchStmt:
		return fg.genMatchStmt(v)
	case *ast.DeferStmt:
		fg.addDefer(v.Call)
		return false
	case *ast.BreakStmt:
		fg.c.builder.CreateBr(fg.loopExit[len(fg.loopExit)-1])
		return true
	case *ast.ContinueStmt:
		fg.c.builder.CreateBr(fg.loopCont[len(fg.loopCont)-1])
		return true
	case *ast.BlockStmt:
		return fg.genBlock(v)
	default:
		return false
	}
}

// genLet allocates a stack slot, stores the initializer, and records the
// binding's AST type in the scope map.
func (fg *funcGen) genLet(s *ast.LetStmt) {
	var val llvm.Value
	var typ ast.Type = s.Type
	if s.Value != nil {
		val = fg.genExpr(s.Value)
		if typ == nil {
			typ = fg.inferredType(s.Value)
		}
	}
	lt := fg.c.llvmType(typ, fg.subst)
	alloca := fg.c.builder.CreateAlloca(lt, s.Name+".addr")
	if s.Value != nil {
		fg.c.builder.CreateStore(val, alloca)
	}
	fg.declare(s.Name, alloca, typ)
}

// genAssign lowers `target op= value`, expanding a compound operator to a
// load-compute-store sequence.
func (fg *funcGen) genAssign(s *ast.AssignStmt) {
	ptr, typ := fg.lvalue(s.Target)
	rhs := fg.genExpr(s.Value)
	if s.Op == ast.AssignPlain {
		fg.c.builder.CreateStore(rhs, ptr)
		return
	}
	cur := fg.c.builder.CreateLoad(ptr, "compound.cur")
	op := compoundToBinary(s.Op)
	result := fg.genArith(op, cur, rhs, typ)
	fg.c.builder.CreateStore(result, ptr)
}

func compoundToBinary(op ast.AssignOp) ast.BinaryOp {
	switch op {
	case ast.AssignAdd:
		return ast.BinAdd
	case ast.AssignSub:
		return ast.BinSub
	case ast.AssignMul:
		return ast.BinMul
	case ast.AssignDiv:
		return ast.BinDiv
	case ast.AssignMod:
		return ast.BinMod
	default:
		return ast.BinAdd
	}
}

// genReturn emits every pending defer (across every open scope, since a
// return can exit more than one nested block) before the terminator
// itself, so every exit path runs the deferred statements in order.
func (fg *funcGen) genReturn(s *ast.ReturnStmt) {
	if s.Value == nil {
		fg.runAllDefers()
		fg.c.builder.CreateRetVoid()
		return
	}
	v := fg.genExpr(s.Value)
	fg.runAllDefers()
	fg.c.builder.CreateRet(v)
}

// genIf lowers an if/else chain to the standard cond/then/else/merge
// basic-block shape, returning whether both arms terminate (in which case
// the merge block is never reached and is left unused rather than wired
// with a fall-through branch).
func (fg *funcGen) genIf(s *ast.IfStmt) bool {
	cond := fg.genExpr(s.Cond)
	thenBB := fg.c.llctx.AddBasicBlock(fg.fn, "if.then")
	var elseBB, mergeBB llvm.BasicBlock
	hasElse := s.Else != nil
	if hasElse {
		elseBB = fg.c.llctx.AddBasicBlock(fg.fn, "if.else")
	}
	mergeBB = fg.c.llctx.AddBasicBlock(fg.fn, "if.end")

	if hasElse {
		fg.c.builder.CreateCondBr(cond, thenBB, elseBB)
	} else {
		fg.c.builder.CreateCondBr(cond, thenBB, mergeBB)
	}

	fg.c.builder.SetInsertPointAtEnd(thenBB)
	thenTerm := fg.genBlock(s.Then)
	if !thenTerm {
		fg.c.builder.CreateBr(mergeBB)
	}

	elseTerm := false
	if hasElse {
		fg.c.builder.SetInsertPointAtEnd(elseBB)
		elseTerm = fg.genStmt(s.Else)
		if !elseTerm {
			fg.c.builder.CreateBr(mergeBB)
		}
	}

	bothTerm := thenTerm && (hasElse && elseTerm)
	if bothTerm {
		mergeBB.EraseFromParent()
		return true
	}
	fg.c.builder.SetInsertPointAtEnd(mergeBB)
	return false
}

// genWhile lowers the standard cond/body/after loop shape; `break` targets
// after, `continue` targets cond (defer statements run on every
// exit path (normal, return, break, continue)").
func (fg *funcGen) genWhile(s *ast.WhileStmt) {
	condBB := fg.c.llctx.AddBasicBlock(fg.fn, "while.cond")
	bodyBB := fg.c.llctx.AddBasicBlock(fg.fn, "while.body")
	afterBB := fg.c.llctx.AddBasicBlock(fg.fn, "while.end")

	fg.c.builder.CreateBr(condBB)
	fg.c.builder.SetInsertPointAtEnd(condBB)
	cond := fg.genExpr(s.Cond)
	fg.c.builder.CreateCondBr(cond, bodyBB, afterBB)

	fg.loopExit = append(fg.loopExit, afterBB)
	fg.loopCont = append(fg.loopCont, condBB)
	fg.c.builder.SetInsertPointAtEnd(bodyBB)
	if !fg.genBlock(s.Body) {
		fg.c.builder.CreateBr(condBB)
	}
	fg.loopExit = fg.loopExit[:len(fg.loopExit)-1]
	fg.loopCont = fg.loopCont[:len(fg.loopCont)-1]

	fg.c.builder.SetInsertPointAtEnd(afterBB)
}

// genForIn lowers `for i in lo..hi` to an induction-variable loop (spec
// §4.5 "`for i in range` lowers to an induction-variable loop"). Iterating
// a slice/array value walks it by index over its length instead; both
// shapes share the same cond/body/step/after block structure as genWhile.
func (fg *funcGen) genForIn(s *ast.ForInStmt) {
	if rng, ok := s.Iterable.(*ast.RangeExpr); ok {
		fg.genForInRange(s, rng)
		return
	}
	fg.genForInSequence(s)
}

func (fg *funcGen) genForInRange(s *ast.ForInStmt, rng *ast.RangeExpr) {
	i32 := fg.c.llctx.Int32Type()
	lo := fg.genExpr(rng.Lo)
	hi := fg.genExpr(rng.Hi)
	ivar := fg.c.builder.CreateAlloca(i32, s.Name+".addr")
	fg.c.builder.CreateStore(lo, ivar)

	condBB := fg.c.llctx.AddBasicBlock(fg.fn, "for.cond")
	bodyBB := fg.c.llctx.AddBasicBlock(fg.fn, "for.body")
	stepBB := fg.c.llctx.AddBasicBlock(fg.fn, "for.step")
	afterBB := fg.c.llctx.AddBasicBlock(fg.fn, "for.end")

	fg.c.builder.CreateBr(condBB)
	fg.c.builder.SetInsertPointAtEnd(condBB)
	cur := fg.c.builder.CreateLoad(ivar, "for.iv")
	pred := llvm.IntSLT
	if rng.Inclusive {
		pred = llvm.IntSLE
	}
	cond := fg.c.builder.CreateICmp(pred, cur, hi, "for.cmp")
	fg.c.builder.CreateCondBr(cond, bodyBB, afterBB)

	fg.loopExit = append(fg.loopExit, afterBB)
	fg.loopCont = append(fg.loopCont, stepBB)
	fg.c.builder.SetInsertPointAtEnd(bodyBB)
	fg.pushScope()
	fg.declare(s.Name, ivar, &ast.PrimitiveType{Name: "i32"})
	terminated := false
	for _, st := range s.Body.Stmts {
		if fg.genStmt(st) {
			terminated = true
			break
		}
	}
	fg.popScope()
	if !terminated {
		fg.c.builder.CreateBr(stepBB)
	}
	fg.loopExit = fg.loopExit[:len(fg.loopExit)-1]
	fg.loopCont = fg.loopCont[:len(fg.loopCont)-1]

	fg.c.builder.SetInsertPointAtEnd(stepBB)
	cur2 := fg.c.builder.CreateLoad(ivar, "for.iv2")
	next := fg.c.builder.CreateAdd(cur2, llvm.ConstInt(i32, 1, false), "for.next")
	fg.c.builder.CreateStore(next, ivar)
	fg.c.builder.CreateBr(condBB)

	fg.c.builder.SetInsertPointAtEnd(afterBB)
}

// genForInSequence walks an array/slice value by index, used for `for x in
// arr` shapes over a fixed-size array or slice operand.
func (fg *funcGen) genForInSequence(s *ast.ForInStmt) {
	seqPtr, seqTy := fg.lvalue(s.Iterable)
	i64 := fg.c.llctx.Int64Type()

	var elemTy ast.Type
	var length llvm.Value
	var dataPtr llvm.Value
	switch t := seqTy.(type) {
	case *ast.ArrayType:
		elemTy = t.Elem
		length = llvm.ConstInt(i64, uint64(fg.c.constArrayLen(t.Size)), false)
		dataPtr = fg.c.builder.CreateGEP(seqPtr, []llvm.Value{llvm.ConstInt(i64, 0, false), llvm.ConstInt(i64, 0, false)}, "arr.data")
	case *ast.SliceType:
		elemTy = t.Elem
		agg := fg.c.builder.CreateLoad(seqPtr, "slice.val")
		dataPtr = fg.c.builder.CreateExtractValue(agg, 0, "slice.ptr")
		length = fg.c.builder.CreateExtractValue(agg, 1, "slice.len")
	default:
		return
	}

	idx := fg.c.builder.CreateAlloca(i64, "idx.addr")
	fg.c.builder.CreateStore(llvm.ConstInt(i64, 0, false), idx)

	condBB := fg.c.llctx.AddBasicBlock(fg.fn, "foreach.cond")
	bodyBB := fg.c.llctx.AddBasicBlock(fg.fn, "foreach.body")
	stepBB := fg.c.llctx.AddBasicBlock(fg.fn, "foreach.step")
	afterBB := fg.c.llctx.AddBasicBlock(fg.fn, "foreach.end")

	fg.c.builder.CreateBr(condBB)
	fg.c.builder.SetInsertPointAtEnd(condBB)
	cur := fg.c.builder.CreateLoad(idx, "foreach.idx")
	cond := fg.c.builder.CreateICmp(llvm.IntULT, cur, length, "foreach.cmp")
	fg.c.builder.CreateCondBr(cond, bodyBB, afterBB)

	fg.loopExit = append(fg.loopExit, afterBB)
	fg.loopCont = append(fg.loopCont, stepBB)
	fg.c.builder.SetInsertPointAtEnd(bodyBB)
	elemPtr := fg.c.builder.CreateGEP(dataPtr, []llvm.Value{cur}, "foreach.elem")
	fg.pushScope()
	fg.declare(s.Name, elemPtr, elemTy)
	terminated := false
	for _, st := range s.Body.Stmts {
		if fg.genStmt(st) {
			terminated = true
			break
		}
	}
	fg.popScope()
	if !terminated {
		fg.c.builder.CreateBr(stepBB)
	}
	fg.loopExit = fg.loopExit[:len(fg.loopExit)-1]
	fg.loopCont = fg.loopCont[:len(fg.loopCont)-1]

	fg.c.builder.SetInsertPointAtEnd(stepBB)
	cur2 := fg.c.builder.CreateLoad(idx, "foreach.idx2")
	next := fg.c.builder.CreateAdd(cur2, llvm.ConstInt(i64, 1, false), "foreach.next")
	fg.c.builder.CreateStore(next, idx)
	fg.c.builder.CreateBr(condBB)

	fg.c.builder.SetInsertPointAtEnd(afterBB)
}

// genMatchStmt lowers a statement-position match to a chain of pattern
// tests, reusing the pattern-test machinery shared with match expressions
// (expr_special.go).
func (fg *funcGen) genMatchStmt(s *ast.MatchStmt) bool {
	scrutPtr, scrutTy := fg.lvalue(s.Scrutinee)
	afterBB := fg.c.llctx.AddBasicBlock(fg.fn, "match.end")
	allTerminate := true
	for i, arm := range s.Arms {
		nextBB := fg.c.llctx.AddBasicBlock(fg.fn, "match.next")
		bodyBB := fg.c.llctx.AddBasicBlock(fg.fn, "match.arm")
		matched := fg.testPattern(arm.Pattern, scrutPtr, scrutTy)
		if arm.Guard != nil {
			fg.c.builder.SetInsertPointAtEnd(bodyBB)
		}
		fg.c.builder.CreateCondBr(matched, bodyBB, nextBB)

		fg.c.builder.SetInsertPointAtEnd(bodyBB)
		fg.pushScope()
		fg.bindPattern(arm.Pattern, scrutPtr, scrutTy)
		term := fg.genStmt(arm.Body)
		fg.popScope()
		if !term {
			fg.c.builder.CreateBr(afterBB)
			allTerminate = false
		}

		fg.c.builder.SetInsertPointAtEnd(nextBB)
		if i == len(s.Arms)-1 {
			// No matching arm. The analyzer does not check exhaustiveness,
			// so a value that no arm covers reaches this unreachable
			// terminator.
			fg.c.builder.CreateUnreachable()
		}
	}
	if allTerminate {
		afterBB.EraseFromParent()
		return true
	}
	fg.c.builder.SetInsertPointAtEnd(afterBB)
	return false
}
