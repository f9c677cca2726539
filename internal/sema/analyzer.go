package sema

import (
	"vxc/internal/ast"
	"vxc/internal/diag"
)

// Analyzer runs the four ownership passes over one merged Program. It never
// mutates program semantics: each pass only accepts or rejects,
// recording diagnostics into the shared bag.
type Analyzer struct {
	prog  *ast.Program
	diags *diag.Bag

	global *Scope
	structs map[string]*ast.StructItem
	impls   map[string][]*ast.ImplItem // keyed by target type name
}

// New builds an Analyzer over prog, indexing top-level items into a module
// scope so later passes can resolve names without re-walking the item list.
func New(prog *ast.Program, diags *diag.Bag) *Analyzer {
	a := &Analyzer{
		prog:    prog,
		diags:   diags,
		global:  newScope(nil),
		structs: make(map[string]*ast.StructItem),
		impls:   make(map[string][]*ast.ImplItem),
	}
	a.indexItems()
	return a
}

func (a *Analyzer) indexItems() {
	for _, it := range a.prog.Items {
		switch v := it.(type) {
		case *ast.FuncItem:
			a.global.Declare(&Entity{Name: v.Name, Kind: EntValue, Decl: v})
		case *ast.StructItem:
			a.global.Declare(&Entity{Name: v.Name, Kind: EntType, Decl: v})
			a.structs[v.Name] = v
		case *ast.EnumItem:
			a.global.Declare(&Entity{Name: v.Name, Kind: EntType, Decl: v})
		case *ast.TraitItem:
			a.global.Declare(&Entity{Name: v.Name, Kind: EntTrait, Decl: v})
		case *ast.TypeAliasItem:
			a.global.Declare(&Entity{Name: v.Name, Kind: EntType, Decl: v})
		case *ast.ConstItem:
			a.global.Declare(&Entity{Name: v.Name, Kind: EntValue, Decl: v})
		case *ast.ImplItem:
			if n, ok := v.Target.(*ast.NamedType); ok {
				a.impls[n.Name] = append(a.impls[n.Name], v)
			}
		}
	}
}

// Analyze runs the four passes in order. A pass that leaves an
// Error-severity diagnostic in the bag stops the remaining passes from
// running; warnings never block.
func (a *Analyzer) Analyze() {
	passes := []func(*Analyzer){
		runMutability,
		runMoves,
		runBorrows,
		runLifetimes,
	}
	for _, pass := range passes {
		pass(a)
		if a.diags.HasErrors() {
			return
		}
	}
}

// funcScope builds the function-level scope for fn: a module-child scope
// holding its parameters, generic parameters as type entities, and (for
// impl methods) an implicit `self` value bound with the impl's receiver
// mutability.
func (a *Analyzer) funcScope(fn *ast.FuncItem, selfMutable bool, hasSelf bool, selfType ast.Type) *Scope {
	sc := a.global.push()
	if hasSelf {
		sc.Declare(&Entity{Name: "self", Kind: EntValue, Decl: fn, Mutable: selfMutable})
	}
	for _, g := range fn.Generics {
		sc.Declare(&Entity{Name: g.Name, Kind: EntType, Decl: g})
	}
	for _, p := range fn.Params {
		if hasSelf && p.Name == "self" {
			continue // already declared above with the receiver's own mutability
		}
		sc.Declare(&Entity{Name: p.Name, Kind: EntValue, Decl: p, Mutable: false})
	}
	return sc
}

// eachFunction invokes visit once per function body in the program: every
// top-level FuncItem and every method of every ImplItem. Each unit of work
// is independent, so visit is expected to recover from its own
// panics if it uses them for internal control flow — the passes below do
// not, they simply append diagnostics and continue.
func (a *Analyzer) eachFunction(visit func(fn *ast.FuncItem, scope *Scope)) {
	for _, it := range a.prog.Items {
		switch v := it.(type) {
		case *ast.FuncItem:
			if v.Body == nil {
				continue
			}
			visit(v, a.funcScope(v, false, false, nil))
		case *ast.ImplItem:
			for _, m := range v.Methods {
				if m.Body == nil {
					continue
				}
				selfMut := methodTakesMutSelf(m)
				visit(m, a.funcScope(m, selfMut, methodHasSelf(m), v.Target))
			}
		}
	}
}

func methodHasSelf(m *ast.FuncItem) bool {
	for _, p := range m.Params {
		if p.Name == "self" {
			return true
		}
	}
	return false
}

func methodTakesMutSelf(m *ast.FuncItem) bool {
	for _, p := range m.Params {
		if p.Name != "self" {
			continue
		}
		if r, ok := p.Type.(*ast.RefType); ok {
			return r.Mutable
		}
	}
	return false
}
