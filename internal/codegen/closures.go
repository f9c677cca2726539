package codegen

import "vxc/internal/ast"

// captureStrength is the minimum access a closure body makes to a free
// variable, used to decide how it is captured. The pre-pass only records
// captureSharedRef or captureUniqueRef; it never selects captureByValue,
// so every capture is by reference.
type captureStrength int

const (
	captureSharedRef captureStrength = iota
	captureUniqueRef
	captureByValue
)

// freeVarsOf runs the pre-pass over a closure's body and
// classifies every name referenced but not bound by the closure's own
// parameters or its own nested lets.
func freeVarsOf(cl *ast.ClosureExpr, params map[string]bool) map[string]captureStrength {
	w := &captureWalk{bound: cloneSet(params), found: make(map[string]captureStrength)}
	if cl.Block != nil {
		w.walkBlock(cl.Block)
	} else {
		w.walkExpr(cl.Body)
	}
	return w.found
}

func paramNames(params []ast.Param) map[string]bool {
	out := make(map[string]bool, len(params))
	for _, p := range params {
		out[p.Name] = true
	}
	return out
}

func cloneSet(s map[string]bool) map[string]bool {
	out := make(map[string]bool, len(s))
	for k := range s {
		out[k] = true
	}
	return out
}

type captureWalk struct {
	bound map[string]bool
	found map[string]captureStrength
}

func (w *captureWalk) note(name string, strength captureStrength) {
	if w.bound[name] {
		return
	}
	if cur, ok := w.found[name]; !ok || strength > cur {
		w.found[name] = strength
	}
}

func (w *captureWalk) walkBlock(b *ast.BlockStmt) {
	saved := w.bound
	w.bound = cloneSet(saved)
	for _, s := range b.Stmts {
		w.walkStmt(s)
	}
	w.bound = saved
}

func (w *captureWalk) walkStmt(s ast.Stmt) {
	switch v := s.(type) {
	case *ast.LetStmt:
		if v.Value != nil {
			w.walkExpr(v.Value)
		}
		w.bound[v.Name] = true
	case *ast.AssignStmt:
		w.walkAssignTarget(v.Target)
		w.walkExpr(v.Value)
	case *ast.ExprStmt:
		w.walkExpr(v.X)
	case *ast.ReturnStmt:
		if v.Value != nil {
			w.walkExpr(v.Value)
		}
	case *ast.IfStmt:
		w.walkExpr(v.Cond)
		w.walkBlock(v.Then)
		if v.Else != nil {
			w.walkStmt(v.Else)
		}
	case *ast.WhileStmt:
		w.walkExpr(v.Cond)
		w.walkBlock(v.Body)
	case *ast.ForInStmt:
		w.walkExpr(v.Iterable)
		saved := w.bound
		w.bound = cloneSet(saved)
		w.bound[v.Name] = true
		w.walkBlock(v.Body)
		w.bound = saved
	case *ast.MatchStmt:
		w.walkExpr(v.Scrutinee)
		for _, arm := range v.Arms {
			if arm.Guard != nil {
				w.walkExpr(arm.Guard)
			}
			w.walkStmt(arm.Body)
		}
	case *ast.DeferStmt:
		w.walkExpr(v.Call)
	case *ast.BlockStmt:
		w.walkBlock(v)
	}
}

// walkAssignTarget treats the root of an assignment target as a mutating
// use, which is what promotes a capture from shared to unique reference.
func (w *captureWalk) walkAssignTarget(e ast.Expr) {
	switch v := e.(type) {
	case *ast.IdentExpr:
		w.note(v.Name, captureUniqueRef)
	case *ast.FieldExpr:
		w.walkAssignTarget(v.Base)
	case *ast.IndexExpr:
		w.walkAssignTarget(v.Base)
		w.walkExpr(v.Index)
	default:
		w.walkExpr(e)
	}
}

func (w *captureWalk) walkExpr(e ast.Expr) {
	if e == nil {
		return
	}
	switch v := e.(type) {
	case *ast.IdentExpr:
		w.note(v.Name, captureSharedRef)
	case *ast.FieldExpr:
		w.walkExpr(v.Base)
	case *ast.IndexExpr:
		w.walkExpr(v.Base)
		w.walkExpr(v.Index)
	case *ast.CallExpr:
		w.walkExpr(v.Callee)
		for _, a := range v.Args {
			w.walkExpr(a)
		}
	case *ast.MethodCallExpr:
		w.walkExpr(v.Recv)
		for _, a := range v.Args {
			w.walkExpr(a)
		}
	case *ast.UnaryExpr:
		w.walkExpr(v.X)
	case *ast.BinaryExpr:
		w.walkExpr(v.X)
		w.walkExpr(v.Y)
	case *ast.PostfixExpr:
		w.walkAssignTarget(v.X)
	case *ast.CastExpr:
		w.walkExpr(v.X)
	case *ast.RefExpr:
		if v.Mutable {
			w.walkAssignTarget(v.X)
		} else {
			w.walkExpr(v.X)
		}
	case *ast.DerefExpr:
		w.walkExpr(v.X)
	case *ast.RangeExpr:
		w.walkExpr(v.Lo)
		w.walkExpr(v.Hi)
	case *ast.ArrayLit:
		for _, el := range v.Elems {
			w.walkExpr(el)
		}
	case *ast.TupleLit:
		for _, el := range v.Elems {
			w.walkExpr(el)
		}
	case *ast.StructLit:
		for _, f := range v.Fields {
			w.walkExpr(f.Value)
		}
	case *ast.FormatStringExpr:
		for _, sub := range v.Exprs {
			w.walkExpr(sub)
		}
	case *ast.IfExpr:
		w.walkExpr(v.Cond)
		w.walkExpr(v.Then)
		w.walkExpr(v.Else)
	case *ast.MatchExpr:
		w.walkExpr(v.Scrutinee)
		for _, arm := range v.Arms {
			w.walkExpr(arm.Value)
		}
	case *ast.ClosureExpr:
		saved := w.bound
		w.bound = cloneSet(saved)
		for _, p := range v.Params {
			w.bound[p.Name] = true
		}
		if v.Block != nil {
			w.walkBlock(v.Block)
		} else {
			w.walkExpr(v.Body)
		}
		w.bound = saved
	case *ast.AwaitExpr:
		w.walkExpr(v.X)
	case *ast.GoExpr:
		w.walkExpr(v.Call)
	case *ast.TryExpr:
		w.walkExpr(v.X)
	}
}
