package sema

import (
	"vxc/internal/ast"
	"vxc/internal/diag"
	"vxc/internal/token"
)

// movesPass tracks one function body's flat place -> state map. Moves are
// not lexically scoped the way names are: a local's ownership
// state persists across nested blocks within the same function, so state
// lives in a single map per function rather than per-Scope.
type movesPass struct {
	a     *Analyzer
	state map[string]*moveState
}

type moveState struct {
	copyType   bool
	moved      bool
	movedAt    token.Span
	movedPaths map[string]token.Span // set only when partially moved
}

// runMoves is pass 2: a value of a non-copy type is moved on
// pass-by-value, assignment, and return. Using a moved place afterward is
// rejected; copy types are exempt; partial struct-field moves are tracked
// per field.
func runMoves(a *Analyzer) {
	a.eachFunction(func(fn *ast.FuncItem, scope *Scope) {
		mp := &movesPass{a: a, state: make(map[string]*moveState)}
		for _, p := range fn.Params {
			mp.state[p.Name] = &moveState{copyType: isCopyType(p.Type)}
		}
		mp.walkBlock(fn.Body)
	})
}

func (mp *movesPass) walkBlock(b *ast.BlockStmt) {
	for _, s := range b.Stmts {
		mp.walkStmt(s)
	}
}

func (mp *movesPass) walkStmt(s ast.Stmt) {
	switch v := s.(type) {
	case *ast.LetStmt:
		if v.Value != nil {
			mp.useAsValue(v.Value)
		}
		copyType := v.Type != nil && isCopyType(v.Type)
		if v.Type == nil {
			// An unannotated binding is a copy type when initialized from a
			// numeric or bool literal, a reference, or another copy binding.
			switch init := v.Value.(type) {
			case *ast.IntLit, *ast.FloatLit, *ast.BoolLit, *ast.RefExpr:
				copyType = true
			case *ast.IdentExpr:
				if st := mp.state[init.Name]; st != nil {
					copyType = st.copyType
				}
			}
		}
		mp.state[v.Name] = &moveState{copyType: copyType}
	case *ast.AssignStmt:
		// The assignment target is reinitialized by this statement
		//, so clear any
		// prior moved-state on it before evaluating the RHS.
		mp.reinit(v.Target)
		mp.useAsValue(v.Value)
	case *ast.ExprStmt:
		mp.useAsValue(v.X)
	case *ast.ReturnStmt:
		if v.Value != nil {
			mp.useAsValue(v.Value)
		}
	case *ast.IfStmt:
		mp.useAsValue(v.Cond)
		before := mp.snapshot()
		mp.walkBlock(v.Then)
		afterThen := mp.state
		mp.state = before
		if v.Else != nil {
			mp.walkStmt(v.Else)
		}
		mp.merge(afterThen)
	case *ast.WhileStmt:
		mp.useAsValue(v.Cond)
		mp.walkBlock(v.Body)
	case *ast.ForInStmt:
		mp.useAsValue(v.Iterable)
		mp.state[v.Name] = &moveState{copyType: true}
		mp.walkBlock(v.Body)
	case *ast.MatchStmt:
		mp.useAsValue(v.Scrutinee)
		base := mp.snapshot()
		merged := base
		for _, arm := range v.Arms {
			mp.state = mp.cloneOf(base)
			if arm.Guard != nil {
				mp.useAsValue(arm.Guard)
			}
			mp.walkStmt(arm.Body)
			merged = mp.mergeInto(merged, mp.state)
		}
		mp.state = merged
	case *ast.DeferStmt:
		mp.useAsValue(v.Call)
	case *ast.BlockStmt:
		mp.walkBlock(v)
	}
}

// snapshot returns the live state map and installs a fresh clone as the
// pass's working copy, used before exploring a branch that must not leak
// its moves into the sibling branch.
func (mp *movesPass) snapshot() map[string]*moveState {
	base := mp.state
	mp.state = mp.cloneOf(base)
	return base
}

func (mp *movesPass) cloneOf(src map[string]*moveState) map[string]*moveState {
	out := make(map[string]*moveState, len(src))
	for k, v := range src {
		cp := *v
		if v.movedPaths != nil {
			cp.movedPaths = make(map[string]token.Span, len(v.movedPaths))
			for p, sp := range v.movedPaths {
				cp.movedPaths[p] = sp
			}
		}
		out[k] = &cp
	}
	return out
}

// merge combines mp.state (the branch just walked, "else") with other (the
// "then" branch already walked): conservatively, a place is moved after the
// if/else if it was moved on either arm.
func (mp *movesPass) merge(other map[string]*moveState) {
	mp.state = mp.mergeInto(mp.state, other)
}

func (mp *movesPass) mergeInto(a, b map[string]*moveState) map[string]*moveState {
	out := make(map[string]*moveState, len(a))
	for k, va := range a {
		out[k] = va
		if vb, ok := b[k]; ok && (vb.moved || len(vb.movedPaths) > 0) {
			merged := *va
			if vb.moved {
				merged.moved = true
				merged.movedAt = vb.movedAt
			}
			if len(vb.movedPaths) > 0 {
				if merged.movedPaths == nil {
					merged.movedPaths = make(map[string]token.Span)
				}
				for p, sp := range vb.movedPaths {
					merged.movedPaths[p] = sp
				}
			}
			out[k] = &merged
		}
	}
	for k, vb := range b {
		if _, ok := out[k]; !ok {
			out[k] = vb
		}
	}
	return out
}

// reinit clears moved-state on an assignment target's root place.
func (mp *movesPass) reinit(target ast.Expr) {
	p, ok := toPlace(target)
	if !ok {
		return
	}
	st := mp.state[p.Root]
	if st == nil {
		return
	}
	if len(p.Path) == 0 {
		st.moved = false
		st.movedPaths = nil
		return
	}
	delete(st.movedPaths, place{Path: p.Path}.String()[1:])
}

// useAsValue walks e for move-by-value sites: a bare identifier (or field
// path) used in a value position moves it (unless it is a copy type);
// everything else recurses into sub-expressions without itself being a
// move (operators, calls, literals, and reference/field-access positions
// don't move their operand — only a bare identifier expression used where
// a value is required does).
func (mp *movesPass) useAsValue(e ast.Expr) {
	if e == nil {
		return
	}
	if p, ok := toPlace(e); ok {
		mp.checkAndMove(p, e.Span())
		return
	}
	mp.recurse(e)
}

func (mp *movesPass) recurse(e ast.Expr) {
	switch v := e.(type) {
	case *ast.RefExpr:
		// Borrowing never moves; pass 3 owns borrow legality.
		mp.touchNoMove(v.X)
	case *ast.CallExpr:
		mp.useAsValue(v.Callee)
		for _, arg := range v.Args {
			mp.useAsValue(arg)
		}
	case *ast.MethodCallExpr:
		mp.touchNoMove(v.Recv)
		for _, arg := range v.Args {
			mp.useAsValue(arg)
		}
	case *ast.UnaryExpr:
		mp.useAsValue(v.X)
	case *ast.BinaryExpr:
		mp.useAsValue(v.X)
		mp.useAsValue(v.Y)
	case *ast.PostfixExpr:
		mp.touchNoMove(v.X)
	case *ast.CastExpr:
		mp.useAsValue(v.X)
	case *ast.DerefExpr:
		mp.touchNoMove(v.X)
	case *ast.RangeExpr:
		mp.useAsValue(v.Lo)
		mp.useAsValue(v.Hi)
	case *ast.ArrayLit:
		for _, el := range v.Elems {
			mp.useAsValue(el)
		}
	case *ast.TupleLit:
		for _, el := range v.Elems {
			mp.useAsValue(el)
		}
	case *ast.StructLit:
		for _, f := range v.Fields {
			mp.useAsValue(f.Value)
		}
	case *ast.FormatStringExpr:
		for _, sub := range v.Exprs {
			mp.touchNoMove(sub)
		}
	case *ast.IndexExpr:
		mp.touchNoMove(v.Base)
		mp.useAsValue(v.Index)
	case *ast.FieldExpr:
		// A field access that isn't itself the whole value-position
		// expression (e.g. it's the receiver of `.len()`) only reads.
		mp.touchNoMove(v.Base)
	case *ast.IfExpr:
		mp.useAsValue(v.Cond)
		mp.useAsValue(v.Then)
		mp.useAsValue(v.Else)
	case *ast.MatchExpr:
		mp.useAsValue(v.Scrutinee)
		for _, arm := range v.Arms {
			mp.useAsValue(arm.Value)
		}
	case *ast.ClosureExpr:
		if v.Block != nil {
			mp.walkBlock(v.Block)
		} else {
			mp.useAsValue(v.Body)
		}
	case *ast.AwaitExpr:
		mp.useAsValue(v.X)
	case *ast.GoExpr:
		mp.useAsValue(v.Call)
	case *ast.TryExpr:
		mp.useAsValue(v.X)
	}
}

// touchNoMove checks a place for a prior move without itself moving it —
// the read/borrow path (field access base, method receiver, deref target).
func (mp *movesPass) touchNoMove(e ast.Expr) {
	if p, ok := toPlace(e); ok {
		mp.checkMoved(p, e.Span())
		return
	}
	mp.recurse(e)
}

func (mp *movesPass) checkAndMove(p place, span token.Span) {
	mp.checkMoved(p, span)
	st := mp.state[p.Root]
	if st == nil || st.copyType {
		return
	}
	if len(p.Path) == 0 {
		st.moved = true
		st.movedAt = span
		return
	}
	if st.movedPaths == nil {
		st.movedPaths = make(map[string]token.Span)
	}
	st.movedPaths[place{Path: p.Path}.String()[1:]] = span
}

func (mp *movesPass) checkMoved(p place, span token.Span) {
	st := mp.state[p.Root]
	if st == nil {
		return
	}
	if st.moved {
		mp.a.diags.Append(diag.Diagnostic{
			Severity:  diag.Error,
			Code:      "SEMA010",
			Message:   "use of moved value " + p.Root,
			Primary:   span,
			Secondary: []token.Span{st.movedAt},
		})
		return
	}
	if len(p.Path) == 0 && len(st.movedPaths) > 0 {
		// Using the whole struct by value while any field is moved out is
		// rejected.
		for _, at := range st.movedPaths {
			mp.a.diags.Append(diag.Diagnostic{
				Severity:  diag.Error,
				Code:      "SEMA011",
				Message:   "use of partially-moved value " + p.Root,
				Primary:   span,
				Secondary: []token.Span{at},
			})
			return
		}
	}
}

// toPlace converts an expression to a statically-known place when it is a
// chain of identifier/field accesses, the only shape moves.go tracks
// per-field.
func toPlace(e ast.Expr) (place, bool) {
	switch v := e.(type) {
	case *ast.IdentExpr:
		return place{Root: v.Name}, true
	case *ast.FieldExpr:
		base, ok := toPlace(v.Base)
		if !ok {
			return place{}, false
		}
		base.Path = append(append([]string{}, base.Path...), v.Name)
		return base, true
	default:
		return place{}, false
	}
}
