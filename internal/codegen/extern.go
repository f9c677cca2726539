package codegen

import (
	"tinygo.org/x/go-llvm"

	"vxc/internal/ast"
)

// declareExterns lowers every spliced `external "C" { ... }` block into
// link-level declarations, no bodies. Run before any function body is
// lowered, so a stdlib wrapper's call to an extern symbol always resolves.
func (c *Context) declareExterns() {
	for _, ext := range c.prog.externs {
		for _, f := range ext.Funcs {
			c.declareExternFunc(f)
		}
	}
}

// declareExternFunc maps the Language's types to C ABI types per spec
// §4.5: integers and floats pass directly, bool -> i1, strings lower to
// the same fat pointer as everywhere else, *T -> T*, void return -> void.
// c.llvmType already encodes that mapping, so the bridge only needs to
// assemble a declaration-only llvm.Function from it.
func (c *Context) declareExternFunc(f ast.ExternFunc) llvm.Value {
	if v, ok := c.funcTable[f.Name]; ok {
		return v
	}
	params := make([]llvm.Type, len(f.Params))
	for i, p := range f.Params {
		params[i] = c.llvmType(p.Type, nil)
	}
	ret := c.llvmType(f.Ret, nil)
	fnTy := llvm.FunctionType(ret, params, false)
	v := llvm.AddFunction(c.module, f.Name, fnTy)
	v.SetLinkage(llvm.ExternalLinkage)
	for i, p := range f.Params {
		v.Param(i).SetName(p.Name)
	}
	c.funcTable[f.Name] = v
	c.started[f.Name] = true
	return v
}

// runtimeFunc declares (or returns the already-declared) header for one of
// the C runtime's fixed-name helpers — the `go`/`await` scheduler entry
// points and the formatted-string builder calls. These are declarations only, exactly like an
// extern block's functions; the C runtime (an external dependency) supplies
// the bodies at link time.
func (c *Context) runtimeFunc(name string, params []llvm.Type, ret llvm.Type) llvm.Value {
	if v, ok := c.funcTable[name]; ok {
		return v
	}
	fnTy := llvm.FunctionType(ret, params, false)
	v := llvm.AddFunction(c.module, name, fnTy)
	v.SetLinkage(llvm.ExternalLinkage)
	c.funcTable[name] = v
	c.started[name] = true
	return v
}
