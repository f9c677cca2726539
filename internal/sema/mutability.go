package sema

import "vxc/internal/ast"

// runMutability is pass 1: every binding is immutable (`let`)
// or mutable (`let!`). Assignment to an immutable binding, taking a unique
// reference to an immutable place, mutating through a field of an
// immutable binding, and calling a mutable-receiver method on an immutable
// value are all rejected here, before moves/borrows/lifetimes ever run.
func runMutability(a *Analyzer) {
	m := &mutabilityPass{a: a}
	a.eachFunction(func(fn *ast.FuncItem, scope *Scope) {
		m.walkBlock(fn.Body, scope)
	})
}

type mutabilityPass struct{ a *Analyzer }

func (m *mutabilityPass) walkBlock(b *ast.BlockStmt, scope *Scope) {
	inner := scope.push()
	for _, s := range b.Stmts {
		m.walkStmt(s, inner)
	}
}

func (m *mutabilityPass) walkStmt(s ast.Stmt, scope *Scope) {
	switch v := s.(type) {
	case *ast.LetStmt:
		if v.Value != nil {
			m.walkExpr(v.Value, scope)
		}
		scope.Declare(&Entity{Name: v.Name, Kind: EntValue, Decl: v, Mutable: v.Mutable})
	case *ast.AssignStmt:
		m.checkAssignTarget(v.Target, scope)
		m.walkExpr(v.Value, scope)
	case *ast.ExprStmt:
		m.walkExpr(v.X, scope)
	case *ast.ReturnStmt:
		if v.Value != nil {
			m.walkExpr(v.Value, scope)
		}
	case *ast.IfStmt:
		m.walkExpr(v.Cond, scope)
		m.walkBlock(v.Then, scope)
		if v.Else != nil {
			m.walkStmt(v.Else, scope)
		}
	case *ast.WhileStmt:
		m.walkExpr(v.Cond, scope)
		m.walkBlock(v.Body, scope)
	case *ast.ForInStmt:
		m.walkExpr(v.Iterable, scope)
		inner := scope.push()
		inner.Declare(&Entity{Name: v.Name, Kind: EntValue, Mutable: true})
		m.walkBlock(v.Body, inner)
	case *ast.MatchStmt:
		m.walkExpr(v.Scrutinee, scope)
		for _, arm := range v.Arms {
			if arm.Guard != nil {
				m.walkExpr(arm.Guard, scope)
			}
			m.walkStmt(arm.Body, scope)
		}
	case *ast.DeferStmt:
		m.walkExpr(v.Call, scope)
	case *ast.BlockStmt:
		m.walkBlock(v, scope)
	}
}

// checkAssignTarget implements the "assignment to an immutable binding" and
// "mutating through a field of an immutable binding" rejections.
func (m *mutabilityPass) checkAssignTarget(target ast.Expr, scope *Scope) {
	root, mutable, ok := m.rootMutability(target, scope)
	if !ok || mutable {
		return
	}
	m.a.diags.Errorf(target.Span(), "SEMA001",
		"cannot assign to %q: binding is immutable (declared with `let`, not `let!`)", root)
}

// rootMutability finds the root local of an lvalue expression and reports
// whether it is mutable. ok is false when the root cannot be resolved
// (e.g. it is itself a call result), in which case the caller has nothing
// to check.
func (m *mutabilityPass) rootMutability(e ast.Expr, scope *Scope) (name string, mutable bool, ok bool) {
	switch v := e.(type) {
	case *ast.IdentExpr:
		ent := scope.Lookup(v.Name)
		if ent == nil {
			return v.Name, false, false
		}
		return v.Name, ent.Mutable, true
	case *ast.FieldExpr:
		return m.rootMutability(v.Base, scope)
	case *ast.IndexExpr:
		return m.rootMutability(v.Base, scope)
	case *ast.DerefExpr:
		// Mutating through `*p` is governed by p's reference type, not by
		// p's own binding mutability; that is a type-level property the
		// parser/type layer enforces. Nothing to check here.
		return "", true, false
	default:
		return "", false, false
	}
}

func (m *mutabilityPass) walkExpr(e ast.Expr, scope *Scope) {
	if e == nil {
		return
	}
	switch v := e.(type) {
	case *ast.RefExpr:
		if v.Mutable {
			if root, mutable, ok := m.rootMutability(v.X, scope); ok && !mutable {
				m.a.diags.Errorf(v.Span(), "SEMA002",
					"cannot take a unique reference to %q: binding is immutable", root)
			}
		}
		m.walkExpr(v.X, scope)
	case *ast.MethodCallExpr:
		m.walkExpr(v.Recv, scope)
		if methodWantsMutSelf(m.a, v.Method) {
			if root, mutable, ok := m.rootMutability(v.Recv, scope); ok && !mutable {
				m.a.diags.Errorf(v.Span(), "SEMA003",
					"cannot call mutable-receiver method %q on immutable value %q", v.Method, root)
			}
		}
		for _, arg := range v.Args {
			m.walkExpr(arg, scope)
		}
	case *ast.FieldExpr:
		m.walkExpr(v.Base, scope)
	case *ast.IndexExpr:
		m.walkExpr(v.Base, scope)
		m.walkExpr(v.Index, scope)
	case *ast.CallExpr:
		m.walkExpr(v.Callee, scope)
		for _, arg := range v.Args {
			m.walkExpr(arg, scope)
		}
	case *ast.UnaryExpr:
		m.walkExpr(v.X, scope)
	case *ast.BinaryExpr:
		m.walkExpr(v.X, scope)
		m.walkExpr(v.Y, scope)
	case *ast.PostfixExpr:
		m.walkExpr(v.X, scope)
	case *ast.CastExpr:
		m.walkExpr(v.X, scope)
	case *ast.DerefExpr:
		m.walkExpr(v.X, scope)
	case *ast.RangeExpr:
		m.walkExpr(v.Lo, scope)
		m.walkExpr(v.Hi, scope)
	case *ast.ArrayLit:
		for _, el := range v.Elems {
			m.walkExpr(el, scope)
		}
	case *ast.TupleLit:
		for _, el := range v.Elems {
			m.walkExpr(el, scope)
		}
	case *ast.StructLit:
		for _, f := range v.Fields {
			m.walkExpr(f.Value, scope)
		}
	case *ast.FormatStringExpr:
		for _, sub := range v.Exprs {
			m.walkExpr(sub, scope)
		}
	case *ast.IfExpr:
		m.walkExpr(v.Cond, scope)
		m.walkExpr(v.Then, scope)
		m.walkExpr(v.Else, scope)
	case *ast.MatchExpr:
		m.walkExpr(v.Scrutinee, scope)
		for _, arm := range v.Arms {
			if arm.Guard != nil {
				m.walkExpr(arm.Guard, scope)
			}
			m.walkExpr(arm.Value, scope)
		}
	case *ast.ClosureExpr:
		inner := scope.push()
		for _, p := range v.Params {
			inner.Declare(&Entity{Name: p.Name, Kind: EntValue})
		}
		if v.Block != nil {
			m.walkBlock(v.Block, inner)
		} else {
			m.walkExpr(v.Body, inner)
		}
	case *ast.AwaitExpr:
		m.walkExpr(v.X, scope)
	case *ast.GoExpr:
		m.walkExpr(v.Call, scope)
	case *ast.TryExpr:
		m.walkExpr(v.X, scope)
	}
}

// methodWantsMutSelf reports whether any impl method named name declares a
// `self: &T!` receiver. Overload-free by method name: inherent/trait methods
// dispatch on name alone, with no overload resolution.
func methodWantsMutSelf(a *Analyzer, name string) bool {
	for _, impls := range a.impls {
		for _, impl := range impls {
			for _, meth := range impl.Methods {
				if meth.Name == name && methodTakesMutSelf(meth) {
					return true
				}
			}
		}
	}
	return false
}
