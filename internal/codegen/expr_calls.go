package codegen

import (
	"tinygo.org/x/go-llvm"

	"vxc/internal/ast"
)

// genCall lowers a free-function call, resolving the callee by name and
// triggering monomorphization when the callee is generic.
// A callee that isn't a plain identifier is a function-value expression
// (a closure or a stored function pointer) and is called indirectly.
func (fg *funcGen) genCall(v *ast.CallExpr) llvm.Value {
	ident, ok := v.Callee.(*ast.IdentExpr)
	if !ok {
		callee := fg.genExpr(v.Callee)
		return fg.emitCall(callee, v.Args, v.Span().String())
	}
	if fn, ok := fg.c.prog.funcs[ident.Name]; ok {
		var target llvm.Value
		if len(fn.Generics) == 0 {
			target = fg.c.declareFunc(fn, ident.Name, nil, nil)
		} else {
			typeArgs := v.TypeArgs
			if len(typeArgs) == 0 {
				typeArgs = fg.inferTypeArgs(fn, v.Args)
			}
			target = fg.c.requestMono(fn, ident.Name, resolveSubst(typeArgs, fg.subst), nil)
		}
		return fg.emitCall(target, v.Args, ident.Name)
	}
	// A name the function table already knows but that isn't a vx
	// FuncItem: a spliced extern declaration.
	if target, ok := fg.c.funcTable[ident.Name]; ok {
		return fg.emitCall(target, v.Args, ident.Name)
	}
	// A bound local/parameter of function-pointer type, called indirectly.
	ptr, _ := fg.lvalue(ident)
	callee := fg.c.builder.CreateLoad(ptr, "fnptr")
	return fg.emitCall(callee, v.Args, ident.Name)
}

// genMethodCall resolves recv.Method(args) against the receiver's static
// type, dispatching statically for an inherent/trait impl or dynamically
// through a vtable for a trait-object receiver.
func (fg *funcGen) genMethodCall(v *ast.MethodCallExpr) llvm.Value {
	recvTy := fg.inferredType(v.Recv)
	typeName, ok := unwrapNamed(recvTy)
	if !ok {
		fg.c.errorf(v.Span(), "CODEGEN020", "method call on unresolved receiver type")
		return llvm.Value{}
	}
	if _, isTrait := fg.c.traitOf(typeName); isTrait {
		return fg.genVirtualCall(v, typeName)
	}

	m, impl := fg.c.prog.methodOf(typeName, v.Method)
	if m == nil {
		fg.c.errorf(v.Span(), "CODEGEN021", "type %q has no method %q", typeName, v.Method)
		return llvm.Value{}
	}
	recvPtr, _ := fg.lvalue(v.Recv)
	link := methodLinkName(impl, m)

	var target llvm.Value
	if len(m.Generics) == 0 {
		target = fg.c.declareFunc(m, link, nil, impl.Target)
	} else {
		typeArgs := v.TypeArgs
		if len(typeArgs) == 0 {
			typeArgs = fg.inferTypeArgs(m, v.Args)
		}
		target = fg.c.requestMono(m, link, resolveSubst(typeArgs, fg.subst), impl.Target)
	}

	args := make([]llvm.Value, 0, len(v.Args)+1)
	args = append(args, recvPtr)
	for _, a := range v.Args {
		args = append(args, fg.genExpr(a))
	}
	if target.Type().ElementType().ReturnType().TypeKind() == llvm.VoidTypeKind {
		fg.c.builder.CreateCall(target, args, "")
		return llvm.Value{}
	}
	return fg.c.builder.CreateCall(target, args, link+".call")
}

// emitCall lowers argument expressions and issues the call, suppressing
// the instruction name for void calls (CreateCall rejects a name on a
// void-typed result in LLVM's C API). A closure value, a { captures*, fn* }
// pair, is split so its captures pointer is passed as the first argument.
func (fg *funcGen) emitCall(target llvm.Value, argExprs []ast.Expr, label string) llvm.Value {
	args := make([]llvm.Value, 0, len(argExprs)+1)
	if target.Type().TypeKind() == llvm.StructTypeKind {
		args = append(args, fg.c.builder.CreateExtractValue(target, 0, "closure.cap"))
		target = fg.c.builder.CreateExtractValue(target, 1, "closure.fn")
	}
	for _, a := range argExprs {
		args = append(args, fg.genExpr(a))
	}
	retVoid := target.Type().ElementType().ReturnType().TypeKind() == llvm.VoidTypeKind
	if retVoid {
		fg.c.builder.CreateCall(target, args, "")
		return llvm.Value{}
	}
	return fg.c.builder.CreateCall(target, args, "call")
}

// genVirtualCall loads a trait-object receiver's vtable pointer and
// indirects through the slot for Method, passing the object's data pointer
// as the implicit receiver.
func (fg *funcGen) genVirtualCall(v *ast.MethodCallExpr, traitName string) llvm.Value {
	vt := fg.c.vtableFor(traitName)
	objPtr, _ := fg.lvalue(v.Recv)
	obj := fg.c.builder.CreateLoad(objPtr, "trait.obj")
	dataPtr := fg.c.builder.CreateExtractValue(obj, 0, "trait.data")
	vtablePtr := fg.c.builder.CreateExtractValue(obj, 1, "trait.vtable")

	slot := indexOf(vt.methods, v.Method)
	if slot < 0 {
		fg.c.errorf(v.Span(), "CODEGEN022", "trait %q has no method %q", traitName, v.Method)
		return llvm.Value{}
	}
	i32 := fg.c.llctx.Int32Type()
	slotPtr := fg.c.builder.CreateGEP(vtablePtr, []llvm.Value{
		llvm.ConstInt(i32, 0, false), llvm.ConstInt(i32, uint64(slot), false),
	}, "vslot")
	fnPtr := fg.c.builder.CreateLoad(slotPtr, "vfn")

	args := make([]llvm.Value, 0, len(v.Args)+1)
	args = append(args, dataPtr)
	for _, a := range v.Args {
		args = append(args, fg.genExpr(a))
	}
	if fnPtr.Type().ElementType().ReturnType().TypeKind() == llvm.VoidTypeKind {
		fg.c.builder.CreateCall(fnPtr, args, "")
		return llvm.Value{}
	}
	return fg.c.builder.CreateCall(fnPtr, args, "vcall")
}

// inferTypeArgs performs the minimal inference the analyzer already
// validated is sound: match each generic parameter against the
// corresponding argument's static type at its first occurrence in the
// parameter list.
func (fg *funcGen) inferTypeArgs(fn *ast.FuncItem, args []ast.Expr) []ast.Type {
	params := fn.Params
	if len(params) > 0 && params[0].Name == "self" {
		params = params[1:] // the receiver isn't part of the call's argument list
	}
	out := make([]ast.Type, len(fn.Generics))
	for i, g := range fn.Generics {
		for pi, p := range params {
			if pi >= len(args) {
				break
			}
			if n, ok := p.Type.(*ast.NamedType); ok && n.Name == g.Name {
				out[i] = fg.inferredType(args[pi])
				break
			}
		}
		if out[i] == nil {
			out[i] = &ast.PrimitiveType{Name: "i32"}
		}
	}
	return out
}

// resolveSubst rewrites a type-argument list through the caller's own
// substitution (needed when a generic function calls another generic
// function using its own type parameters as the argument, e.g. `f<T>`
// calling `g<T>`).
func resolveSubst(args []ast.Type, subst map[string]ast.Type) []ast.Type {
	if subst == nil {
		return args
	}
	out := make([]ast.Type, len(args))
	for i, a := range args {
		out[i] = applySubst(a, subst)
	}
	return out
}
