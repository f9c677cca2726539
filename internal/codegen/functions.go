package codegen

import (
	"tinygo.org/x/go-llvm"

	"vxc/internal/ast"
)

// funcGen holds the mutable state threaded through one function body's
// lowering: the active scope chain, the defer stack, and the loop-exit
// block stack for break/continue.
type funcGen struct {
	c        *Context
	fn       llvm.Value
	ret      ast.Type
	subst    map[string]ast.Type
	scopes   []map[string]localVar
	defers   [][]ast.Expr // one slice per enclosing block, emitted in reverse on every exit
	loopExit []llvm.BasicBlock
	loopCont []llvm.BasicBlock
}

type localVar struct {
	ptr llvm.Value // alloca
	typ ast.Type
}

func (fg *funcGen) pushScope()          { fg.scopes = append(fg.scopes, map[string]localVar{}); fg.defers = append(fg.defers, nil) }
func (fg *funcGen) popScope()           { fg.scopes = fg.scopes[:len(fg.scopes)-1]; fg.defers = fg.defers[:len(fg.defers)-1] }

func (fg *funcGen) declare(name string, ptr llvm.Value, typ ast.Type) {
	fg.scopes[len(fg.scopes)-1][name] = localVar{ptr: ptr, typ: typ}
}

func (fg *funcGen) lookup(name string) (localVar, bool) {
	for i := len(fg.scopes) - 1; i >= 0; i-- {
		if v, ok := fg.scopes[i][name]; ok {
			return v, true
		}
	}
	return localVar{}, false
}

func (fg *funcGen) addDefer(call ast.Expr) {
	top := len(fg.defers) - 1
	fg.defers[top] = append(fg.defers[top], call)
}

// runDefers emits every defer registered in the current (innermost) scope,
// most-recently-registered first.
func (fg *funcGen) runDefers() {
	top := fg.defers[len(fg.defers)-1]
	for i := len(top) - 1; i >= 0; i-- {
		fg.genCallForEffect(top[i])
	}
}

// runAllDefers emits every still-pending defer across every open scope,
// innermost first, used at a `return` that exits more than one block.
func (fg *funcGen) runAllDefers() {
	for i := len(fg.defers) - 1; i >= 0; i-- {
		d := fg.defers[i]
		for j := len(d) - 1; j >= 0; j-- {
			fg.genCallForEffect(d[j])
		}
	}
}

// declareFunc emits (or returns the already-declared) LLVM function header
// for fn: build the parameter/return types, AddFunction, and name each
// parameter. implSelf is non-nil for an inherent/trait method, in which
// case an implicit leading `self` parameter
// of type &implSelf (or *implSelf for a mutating receiver — the analyzer
// already checked receiver mutability, so codegen always takes self by
// reference) is inserted.
func (c *Context) declareFunc(fn *ast.FuncItem, linkName string, typeArgs []ast.Type, implSelf ast.Type) llvm.Value {
	mangled := linkName + mangledTypeArgs(typeArgs)
	if v, ok := c.funcTable[mangled]; ok {
		return v
	}
	subst := bindGenerics(fn.Generics, typeArgs, nil)
	explicit := explicitParams(fn, implSelf)

	var params []llvm.Type
	if implSelf != nil {
		params = append(params, llvm.PointerType(c.llvmType(implSelf, subst), 0))
	}
	for _, p := range explicit {
		params = append(params, c.llvmType(p.Type, subst))
	}
	ret := c.llvmType(fn.Ret, subst)
	fnTy := llvm.FunctionType(ret, params, false)
	v := llvm.AddFunction(c.module, mangled, fnTy)

	idx := 0
	if implSelf != nil {
		v.Param(0).SetName("self")
		idx = 1
	}
	for i, p := range explicit {
		v.Param(idx + i).SetName(p.Name)
	}
	c.funcTable[mangled] = v
	c.started[mangled] = true
	return v
}

// explicitParams returns fn's declared parameters, dropping a leading
// `self` entry when implSelf is set: a method's receiver is already
// represented by the implicit pointer declareFunc/genFuncBody prepend, so
// the source's own `self: &Type` parameter describes that same receiver's
// type rather than a second, distinct argument.
func explicitParams(fn *ast.FuncItem, implSelf ast.Type) []ast.Param {
	if implSelf == nil || len(fn.Params) == 0 || fn.Params[0].Name != "self" {
		return fn.Params
	}
	return fn.Params[1:]
}

// requestMono enqueues (if not already enqueued or emitted) the
// monomorphized instance of fn at typeArgs and returns its declared LLVM
// function, so the call site can build the CreateCall immediately. Exactly
// one IR function is emitted per distinct (name, type-argument tuple)
// regardless of how many call sites request it.
func (c *Context) requestMono(fn *ast.FuncItem, linkName string, typeArgs []ast.Type, implSelf ast.Type) llvm.Value {
	mangled := linkName + mangledTypeArgs(typeArgs)
	if v, ok := c.funcTable[mangled]; ok {
		return v
	}
	v := c.declareFunc(fn, linkName, typeArgs, implSelf)
	if !c.started[mangled+"#body"] {
		c.started[mangled+"#body"] = true
		c.pending = append(c.pending, monoRequest{fn: fn, typeArgs: typeArgs, mangled: mangled, implSelf: implSelf})
	}
	return v
}

// genFuncBody lowers fn's statement body into the already-declared LLVM
// function named mangled: open an entry block, materialize parameters into
// allocas so later loads/stores are uniform, walk the block, and backfill
// an implicit `ret void` (void functions) or an unreachable terminator
// (non-void functions) only when the block-termination tracker reports the
// function can fall off the end. The analyzer does not check that every
// path of a non-void function returns.
func (c *Context) genFuncBody(fn *ast.FuncItem, mangled string, typeArgs []ast.Type, implSelf ast.Type) {
	if fn.Body == nil {
		return // external/trait default-less signature; nothing to lower
	}
	llfn, ok := c.funcTable[mangled]
	if !ok {
		llfn = c.declareFunc(fn, mangled, typeArgs, implSelf)
	}
	subst := bindGenerics(fn.Generics, typeArgs, nil)
	fg := &funcGen{c: c, fn: llfn, ret: fn.Ret, subst: subst}

	entry := c.llctx.AddBasicBlock(llfn, "entry")
	c.builder.SetInsertPointAtEnd(entry)
	fg.pushScope()

	idx := 0
	if implSelf != nil {
		p := llfn.Param(0)
		alloca := c.builder.CreateAlloca(p.Type(), "self.addr")
		c.builder.CreateStore(p, alloca)
		fg.declare("self", alloca, &ast.RefType{Elem: implSelf})
		idx = 1
	}
	for i, p := range explicitParams(fn, implSelf) {
		lp := llfn.Param(idx + i)
		alloca := c.builder.CreateAlloca(lp.Type(), p.Name+".addr")
		c.builder.CreateStore(lp, alloca)
		fg.declare(p.Name, alloca, p.Type)
	}

	terminated := fg.genBlock(fn.Body)
	if !terminated {
		fg.runDefers()
		if fn.Ret == nil {
			c.builder.CreateRetVoid()
		} else {
			// A non-void function that falls off its end gets an
			// unreachable terminator rather than a fabricated return value.
			c.builder.CreateUnreachable()
		}
	}
	fg.popScope()
}

// genCallForEffect lowers a defer'd call purely for its side effect,
// discarding any result.
func (fg *funcGen) genCallForEffect(call ast.Expr) {
	fg.genExpr(call)
}

// declareConsts lowers every top-level `const` to an internal global with
// an initializer, addressable through globalConsts exactly like a local
// variable.
func (c *Context) declareConsts() {
	for _, it := range c.prog.ast.Items {
		k, ok := it.(*ast.ConstItem)
		if !ok {
			continue
		}
		typ := k.Type
		if typ == nil {
			typ = &ast.PrimitiveType{Name: "i32"}
		}
		lt := c.llvmType(typ, nil)
		g := llvm.AddGlobal(c.module, lt, "const."+k.Name)
		g.SetGlobalConstant(true)
		g.SetLinkage(llvm.InternalLinkage)
		if cv, ok := c.constValue(k.Value, lt); ok {
			g.SetInitializer(cv)
		} else {
			g.SetInitializer(llvm.ConstNull(lt))
			c.errorf(k.Span(), "CODEGEN003", "const %q initializer is not a compile-time constant", k.Name)
		}
		c.globalConsts[k.Name] = globalVar{ptr: g, typ: typ}
	}
}

// constValue lowers the small set of expression shapes the analyzer allows
// in a const initializer.
func (c *Context) constValue(e ast.Expr, lt llvm.Type) (llvm.Value, bool) {
	switch v := e.(type) {
	case *ast.IntLit:
		return llvm.ConstInt(lt, uint64(v.Value), true), true
	case *ast.FloatLit:
		return llvm.ConstFloat(lt, v.Value), true
	case *ast.BoolLit:
		val := uint64(0)
		if v.Value {
			val = 1
		}
		return llvm.ConstInt(lt, val, false), true
	default:
		return llvm.Value{}, false
	}
}
