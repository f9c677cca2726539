package sema

import (
	"vxc/internal/ast"
)

// lifetimesPass is pass 4: references may not outlive their
// referents. vx has no surface syntax for explicit region parameters (spec
// §9 Open Questions notes the elision rule is the only one specified), so
// this pass checks the one statically-decidable shape that rule covers:
// returning a reference whose referent is a local binding of the function
// being analyzed, which necessarily dies when the function returns while
// the reference would escape it.
func runLifetimes(a *Analyzer) {
	a.eachFunction(func(fn *ast.FuncItem, scope *Scope) {
		lp := &lifetimesPass{a: a, locals: make(map[string]bool)}
		for _, p := range fn.Params {
			lp.locals[p.Name] = false // params outlive the call, not locals
		}
		lp.walkBlock(fn.Body)
	})
}

type lifetimesPass struct {
	a      *Analyzer
	locals map[string]bool // name -> true if declared by a `let` inside this function body
}

func (lp *lifetimesPass) walkBlock(b *ast.BlockStmt) {
	for _, s := range b.Stmts {
		lp.walkStmt(s)
	}
}

func (lp *lifetimesPass) walkStmt(s ast.Stmt) {
	switch v := s.(type) {
	case *ast.LetStmt:
		lp.locals[v.Name] = true
	case *ast.ReturnStmt:
		if v.Value != nil {
			lp.checkEscapes(v.Value)
		}
	case *ast.IfStmt:
		lp.walkBlock(v.Then)
		if v.Else != nil {
			lp.walkStmt(v.Else)
		}
	case *ast.WhileStmt:
		lp.walkBlock(v.Body)
	case *ast.ForInStmt:
		lp.walkBlock(v.Body)
	case *ast.MatchStmt:
		for _, arm := range v.Arms {
			lp.walkStmt(arm.Body)
		}
	case *ast.BlockStmt:
		lp.walkBlock(v)
	}
}

// checkEscapes rejects `return &local;` and `return &local.field;` shapes
//.
// A reference built from a parameter is fine — it is tied to the caller's
// own region under the elision rule.
func (lp *lifetimesPass) checkEscapes(e ast.Expr) {
	ref, ok := e.(*ast.RefExpr)
	if !ok {
		return
	}
	p, ok := toPlace(ref.X)
	if !ok {
		return
	}
	if isLocal, declared := lp.locals[p.Root]; declared && isLocal {
		lp.a.diags.Errorf(ref.Span(), "SEMA030",
			"reference to local binding %q cannot outlive the function it was created in", p.Root)
	}
}
