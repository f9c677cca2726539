package codegen

import (
	"tinygo.org/x/go-llvm"

	"vxc/internal/ast"
)

// traitOf reports whether name is a trait declared in the merged program,
// returning its declaration for vtableFor to read method signatures from.
func (c *Context) traitOf(name string) (*ast.TraitItem, bool) {
	t, ok := c.prog.traits[name]
	return t, ok
}

// declareVtables materializes every trait's vtable layout and every impl's
// constant vtable instance up front, before any function body is lowered,
// so a trait-object method call or a struct-to-trait-object coercion
// always finds its vtable already built.
func (c *Context) declareVtables() {
	for name := range c.prog.traits {
		c.vtableFor(name)
	}
}

// vtableFor builds (or returns the cached) vtableLayout for traitName: an
// LLVM struct type with one function-pointer slot per trait method, in
// declaration order, plus one constant global instance per impl of that
// trait.
func (c *Context) vtableFor(traitName string) *vtableLayout {
	if vt, ok := c.vtables[traitName]; ok {
		return vt
	}
	trait, ok := c.prog.traits[traitName]
	if !ok {
		// Referenced before the analyzer could reject it; build an empty,
		// inert layout rather than letting codegen crash on a nil map.
		vt := &vtableLayout{trait: traitName, llvmType: c.llctx.StructType(nil, false), perImpl: map[string]llvm.Value{}}
		c.vtables[traitName] = vt
		return vt
	}

	methods := make([]string, len(trait.Methods))
	slotTypes := make([]llvm.Type, len(trait.Methods))
	i8ptr := llvm.PointerType(c.llctx.Int8Type(), 0)
	for i, tm := range trait.Methods {
		methods[i] = tm.Name
		tmParams := tm.Params
		if len(tmParams) > 0 && tmParams[0].Name == "self" {
			tmParams = tmParams[1:] // the receiver is the opaque slot below, not a declared param
		}
		params := make([]llvm.Type, 0, len(tmParams)+1)
		params = append(params, i8ptr) // opaque receiver, common across every implementor
		for _, p := range tmParams {
			params = append(params, c.llvmType(p.Type, nil))
		}
		ret := c.llvmType(tm.Ret, nil)
		slotTypes[i] = llvm.PointerType(llvm.FunctionType(ret, params, false), 0)
	}
	vtTy := c.llctx.StructType(slotTypes, false)

	vt := &vtableLayout{trait: traitName, methods: methods, llvmType: vtTy, perImpl: map[string]llvm.Value{}}
	c.vtables[traitName] = vt // cache before building constants: method bodies may reference this trait recursively

	for implTargetName, impls := range c.prog.impls {
		for _, impl := range impls {
			tn, ok := impl.Trait.(*ast.NamedType)
			if !ok || tn.Name != traitName {
				continue
			}
			slots := make([]llvm.Value, len(methods))
			for i, name := range methods {
				m, foundImpl := c.prog.methodOf(implTargetName, name)
				if m == nil {
					slots[i] = llvm.ConstNull(slotTypes[i])
					continue
				}
				link := methodLinkName(foundImpl, m)
				declared := c.declareFunc(m, link, nil, foundImpl.Target)
				slots[i] = llvm.ConstBitCast(declared, slotTypes[i])
			}
			vtConst := llvm.ConstNamedStruct(vtTy, slots)
			g := llvm.AddGlobal(c.module, vtTy, "vtable."+traitName+"."+implTargetName)
			g.SetInitializer(vtConst)
			g.SetGlobalConstant(true)
			g.SetLinkage(llvm.InternalLinkage)
			vt.perImpl[implTargetName] = g
		}
	}
	return vt
}
