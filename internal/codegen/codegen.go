// Package codegen lowers an analyzed Program to an LLVM IR module, using
// tinygo.org/x/go-llvm via one llvm.Context and llvm.Module per
// compilation, a builder driving basic-block insertion, and a global table
// of already-declared functions keyed by name. The generator is split by
// expression family across several files to keep each one within cognitive
// reach, and runs single-threaded and synchronously end to end.
package codegen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tinygo.org/x/go-llvm"

	"vxc/internal/ast"
	"vxc/internal/diag"
	"vxc/internal/token"
)

// Options configures one codegen run: output module name, optimization
// level, and target-selection fields.
type Options struct {
	ModuleName string
	OptLevel   int
	Verbose    bool
}

// Context owns every lowering artifact for one compilation: the type
// cache, the monomorphized function table, the per-scope variable-type
// map, and the trait vtable layout table. It is created fresh per
// compilation and dropped at the end of Generate; the compiler itself
// holds no global mutable state.
type Context struct {
	llctx   llvm.Context
	builder llvm.Builder
	module  llvm.Module
	diags   *diag.Bag
	opt     Options

	prog *program

	// typeCache maps a stable type key (typeKey) to its lowered LLVM type,
	// so structurally identical vx types are never lowered twice.
	typeCache map[string]llvm.Type

	// funcTable is keyed by mangled name (plain name for non-generics,
	// name+type-argument encoding for monomorphized instances) to the
	// declared/defined llvm.Value.
	funcTable map[string]llvm.Value

	// pending holds monomorphization requests discovered while lowering
	// call sites; Generate drains it until empty so that exactly one IR
	// function is emitted per distinct (name, type-argument tuple) no
	// matter how many call sites request it (spec testable property 4).
	pending []monoRequest
	started map[string]bool // mangled names already enqueued or emitted

	structLayouts map[string]*structLayout
	enumLayouts   map[string]*enumLayout
	vtables       map[string]*vtableLayout

	// globalConsts holds top-level `const` bindings, addressable the same
	// way a local is.
	globalConsts map[string]globalVar

	stringPrefix string
	strLits      int
}

type globalVar struct {
	ptr llvm.Value
	typ ast.Type
}

// monoRequest is one outstanding "emit this generic function instantiated
// at these type arguments" job.
type monoRequest struct {
	fn       *ast.FuncItem
	typeArgs []ast.Type
	mangled  string
	implSelf ast.Type // non-nil when fn is an impl method
}

// program indexes the merged AST once so lowering doesn't re-scan
// prog.Items for every lookup (functions by name, structs/enums by name,
// impls by target type name, externs flattened).
type program struct {
	ast     *ast.Program
	funcs   map[string]*ast.FuncItem
	structs map[string]*ast.StructItem
	enums   map[string]*ast.EnumItem
	traits  map[string]*ast.TraitItem
	impls   map[string][]*ast.ImplItem
	externs []*ast.ExternalItem
	consts  map[string]*ast.ConstItem
}

func indexProgram(p *ast.Program) *program {
	ip := &program{
		ast:     p,
		funcs:   make(map[string]*ast.FuncItem),
		structs: make(map[string]*ast.StructItem),
		enums:   make(map[string]*ast.EnumItem),
		traits:  make(map[string]*ast.TraitItem),
		impls:   make(map[string][]*ast.ImplItem),
		consts:  make(map[string]*ast.ConstItem),
	}
	for _, it := range p.Items {
		switch v := it.(type) {
		case *ast.FuncItem:
			ip.funcs[v.Name] = v
		case *ast.StructItem:
			ip.structs[v.Name] = v
		case *ast.EnumItem:
			ip.enums[v.Name] = v
		case *ast.TraitItem:
			ip.traits[v.Name] = v
		case *ast.ConstItem:
			ip.consts[v.Name] = v
		case *ast.ImplItem:
			if n, ok := v.Target.(*ast.NamedType); ok {
				ip.impls[n.Name] = append(ip.impls[n.Name], v)
			}
		case *ast.ExternalItem:
			ip.externs = append(ip.externs, v)
		}
	}
	return ip
}

// methodOf looks up an inherent or trait method named method on the struct
// or enum named typeName, searching its impls (inherent and trait alike) in
// declaration order — vx has no overload resolution, so the first declared
// impl with that method name wins via a simple linear lookup.
func (p *program) methodOf(typeName, method string) (*ast.FuncItem, *ast.ImplItem) {
	for _, impl := range p.impls[typeName] {
		for _, m := range impl.Methods {
			if m.Name == method {
				return m, impl
			}
		}
	}
	return nil, nil
}

// Generate lowers prog (already accepted by the ownership analyzer) to an
// LLVM module and returns the owning Context so callers can dump IR or
// hand the module to EmitObject/WriteObject. Generation errors are appended to diags; Generate always returns
// a non-nil Context even when diags.HasErrors() afterward.
func Generate(prog *ast.Program, diags *diag.Bag, opt Options) *Context {
	name := opt.ModuleName
	if name == "" {
		name = "vx_module"
	}
	llctx := llvm.NewContext()
	c := &Context{
		llctx:         llctx,
		builder:       llctx.NewBuilder(),
		module:        llctx.NewModule(name),
		diags:         diags,
		opt:           opt,
		prog:          indexProgram(prog),
		typeCache:     make(map[string]llvm.Type),
		funcTable:     make(map[string]llvm.Value),
		started:       make(map[string]bool),
		structLayouts: make(map[string]*structLayout),
		enumLayouts:   make(map[string]*enumLayout),
		vtables:       make(map[string]*vtableLayout),
		globalConsts:  make(map[string]globalVar),
		stringPrefix:  "L_STR",
	}

	c.declareExterns()
	c.declareVtables()
	c.declareConsts()

	// Declare every non-generic top-level function and inherent/trait
	// method header before lowering any body, so forward calls resolve
	//.
	for _, it := range prog.Items {
		switch v := it.(type) {
		case *ast.FuncItem:
			if len(v.Generics) == 0 {
				c.declareFunc(v, v.Name, nil, nil)
			}
		case *ast.ImplItem:
			for _, m := range v.Methods {
				if len(m.Generics) == 0 && len(v.Generics) == 0 {
					c.declareFunc(m, methodLinkName(v, m), nil, v.Target)
				}
			}
		}
	}

	for _, it := range prog.Items {
		switch v := it.(type) {
		case *ast.FuncItem:
			if len(v.Generics) == 0 {
				c.genFuncBody(v, v.Name, nil, nil)
			}
		case *ast.ImplItem:
			for _, m := range v.Methods {
				if len(m.Generics) == 0 && len(v.Generics) == 0 {
					c.genFuncBody(m, methodLinkName(v, m), nil, v.Target)
				}
			}
		}
	}

	// Drain the monomorphization worklist; lowering an instance's body may itself
	// discover further instantiations, so this loops until fixpoint.
	for len(c.pending) > 0 {
		req := c.pending[0]
		c.pending = c.pending[1:]
		c.genFuncBody(req.fn, req.mangled, req.typeArgs, req.implSelf)
	}

	if opt.Verbose {
		fmt.Fprintln(os.Stderr, "LLVM IR:")
		c.module.Dump()
	}
	return c
}

// methodLinkName mangles an inherent/trait method to Type__method, the
// convention genCallExpr and the vtable builder both rely on to find the
// concrete function for a receiver's static type.
func methodLinkName(impl *ast.ImplItem, m *ast.FuncItem) string {
	target := ""
	if n, ok := impl.Target.(*ast.NamedType); ok {
		target = n.Name
	}
	return target + "__" + m.Name
}

// Dispose releases the LLVM context, builder, and module. Call once IR/
// object emission has completed.
func (c *Context) Dispose() {
	c.module.Dispose()
	c.builder.Dispose()
	c.llctx.Dispose()
}

// Module exposes the generated module for textual dumping or emission.
func (c *Context) Module() llvm.Module { return c.module }

// EmitLLVMIR returns the generated module's textual IR (`--emit-llvm`).
func (c *Context) EmitLLVMIR() string {
	return c.module.String()
}

// EmitObject runs the target machine over the module and returns an object
// file buffer, the non---emit-llvm default output: initialize all targets,
// build a target machine for the host triple, and EmitToMemoryBuffer as an
// object file.
func (c *Context) EmitObject() ([]byte, error) {
	llvm.InitializeAllTargetInfos()
	llvm.InitializeAllTargetMCs()
	llvm.InitializeAllAsmParsers()
	llvm.InitializeAllAsmPrinters()
	llvm.InitializeAllTargets()

	triple := llvm.DefaultTargetTriple()
	target, err := llvm.GetTargetFromTriple(triple)
	if err != nil {
		return nil, fmt.Errorf("codegen: resolve target triple %q: %w", triple, err)
	}

	tm := target.CreateTargetMachine(triple, "generic", "",
		llvm.CodeGenLevelDefault, llvm.RelocDefault, llvm.CodeModelDefault)
	defer tm.Dispose()

	td := tm.CreateTargetData()
	defer td.Dispose()
	c.module.SetDataLayout(td.String())
	c.module.SetTarget(tm.Triple())

	buf, err := tm.EmitToMemoryBuffer(c.module, llvm.ObjectFile)
	if err != nil {
		return nil, fmt.Errorf("codegen: emit object: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteObject emits an object file to path.
func (c *Context) WriteObject(path string) error {
	buf, err := c.EmitObject()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, buf, 0o644)
}

func (c *Context) errorf(span token.Span, code, format string, args ...interface{}) {
	c.diags.Errorf(span, code, format, args...)
}

func mangledTypeArgs(args []ast.Type) string {
	if len(args) == 0 {
		return ""
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = typeKey(a)
	}
	return "_" + strings.Join(parts, "_")
}
