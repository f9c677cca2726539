package sema

import (
	"vxc/internal/ast"
	"vxc/internal/diag"
	"vxc/internal/token"
)

// liveBorrow is one reference value currently in scope, as tracked by the
// borrows pass.
type liveBorrow struct {
	of      place
	kind    BorrowKind
	created token.Span
}

// borrowsPass tracks active borrows per lexical block. A borrow's region is
// approximated as lasting to the end of its creating block rather than
// computing true non-lexical last-use — conservative
// in the sense that it may reject some programs a full NLL borrow checker
// would accept, never the reverse.
type borrowsPass struct {
	a      *Analyzer
	active []liveBorrow // one flat list, truncated back to a block's entry length when the block exits
	marks  []int        // stack of active[] lengths at each block's entry, for truncation on exit
}

// runBorrows is pass 3: at any point, a place has either any
// number of shared references or exactly one unique reference, never both.
func runBorrows(a *Analyzer) {
	a.eachFunction(func(fn *ast.FuncItem, scope *Scope) {
		bp := &borrowsPass{a: a}
		bp.walkBlock(fn.Body)
	})
}

func (bp *borrowsPass) enterBlock() { bp.marks = append(bp.marks, len(bp.active)) }
func (bp *borrowsPass) exitBlock() {
	n := bp.marks[len(bp.marks)-1]
	bp.marks = bp.marks[:len(bp.marks)-1]
	bp.active = bp.active[:n]
}

func (bp *borrowsPass) walkBlock(b *ast.BlockStmt) {
	bp.enterBlock()
	for _, s := range b.Stmts {
		bp.walkStmt(s)
	}
	bp.exitBlock()
}

func (bp *borrowsPass) walkStmt(s ast.Stmt) {
	switch v := s.(type) {
	case *ast.LetStmt:
		if v.Value != nil {
			bp.walkExpr(v.Value)
		}
	case *ast.AssignStmt:
		bp.walkExpr(v.Target)
		bp.walkExpr(v.Value)
	case *ast.ExprStmt:
		bp.walkExpr(v.X)
	case *ast.ReturnStmt:
		if v.Value != nil {
			bp.walkExpr(v.Value)
		}
	case *ast.IfStmt:
		bp.walkExpr(v.Cond)
		bp.walkBlock(v.Then)
		if v.Else != nil {
			bp.walkStmt(v.Else)
		}
	case *ast.WhileStmt:
		bp.walkExpr(v.Cond)
		bp.walkBlock(v.Body)
	case *ast.ForInStmt:
		bp.walkExpr(v.Iterable)
		bp.walkBlock(v.Body)
	case *ast.MatchStmt:
		bp.walkExpr(v.Scrutinee)
		for _, arm := range v.Arms {
			if arm.Guard != nil {
				bp.walkExpr(arm.Guard)
			}
			bp.enterBlock()
			bp.walkStmt(arm.Body)
			bp.exitBlock()
		}
	case *ast.DeferStmt:
		bp.walkExpr(v.Call)
	case *ast.BlockStmt:
		bp.walkBlock(v)
	}
}

func (bp *borrowsPass) walkExpr(e ast.Expr) {
	if e == nil {
		return
	}
	switch v := e.(type) {
	case *ast.RefExpr:
		bp.walkExpr(v.X)
		if p, ok := toPlace(v.X); ok {
			kind := Shared
			if v.Mutable {
				kind = Unique
			}
			bp.check(p, kind, v.Span())
			bp.active = append(bp.active, liveBorrow{of: p, kind: kind, created: v.Span()})
		}
	case *ast.CallExpr:
		bp.walkExpr(v.Callee)
		for _, a := range v.Args {
			bp.walkExpr(a)
		}
	case *ast.MethodCallExpr:
		bp.walkExpr(v.Recv)
		for _, a := range v.Args {
			bp.walkExpr(a)
		}
	case *ast.FieldExpr:
		bp.walkExpr(v.Base)
	case *ast.IndexExpr:
		bp.walkExpr(v.Base)
		bp.walkExpr(v.Index)
	case *ast.UnaryExpr:
		bp.walkExpr(v.X)
	case *ast.BinaryExpr:
		bp.walkExpr(v.X)
		bp.walkExpr(v.Y)
	case *ast.PostfixExpr:
		bp.walkExpr(v.X)
	case *ast.CastExpr:
		bp.walkExpr(v.X)
	case *ast.DerefExpr:
		bp.walkExpr(v.X)
	case *ast.RangeExpr:
		bp.walkExpr(v.Lo)
		bp.walkExpr(v.Hi)
	case *ast.ArrayLit:
		for _, el := range v.Elems {
			bp.walkExpr(el)
		}
	case *ast.TupleLit:
		for _, el := range v.Elems {
			bp.walkExpr(el)
		}
	case *ast.StructLit:
		for _, f := range v.Fields {
			bp.walkExpr(f.Value)
		}
	case *ast.FormatStringExpr:
		for _, sub := range v.Exprs {
			bp.walkExpr(sub)
		}
	case *ast.IfExpr:
		bp.walkExpr(v.Cond)
		bp.walkExpr(v.Then)
		bp.walkExpr(v.Else)
	case *ast.MatchExpr:
		bp.walkExpr(v.Scrutinee)
		for _, arm := range v.Arms {
			bp.walkExpr(arm.Value)
		}
	case *ast.ClosureExpr:
		bp.enterBlock()
		if v.Block != nil {
			bp.walkBlock(v.Block)
		} else {
			bp.walkExpr(v.Body)
		}
		bp.exitBlock()
	case *ast.AwaitExpr:
		bp.walkExpr(v.X)
	case *ast.GoExpr:
		bp.walkExpr(v.Call)
	case *ast.TryExpr:
		bp.walkExpr(v.X)
	}
}

// check rejects a new borrow of kind on p if it would violate the
// shared-xor-unique invariant against any currently active borrow of p or
// an overlapping place.
func (bp *borrowsPass) check(p place, kind BorrowKind, at token.Span) {
	for _, lb := range bp.active {
		if !overlaps(lb.of, p) {
			continue
		}
		if lb.kind == Unique || kind == Unique {
			bp.a.diags.Append(diag.Diagnostic{
				Severity:  diag.Error,
				Code:      "SEMA020",
				Message:   "overlapping borrows of " + p.String(),
				Primary:   at,
				Secondary: []token.Span{lb.created},
			})
			return
		}
	}
}

func overlaps(a, b place) bool {
	return a.isPrefixOf(b) || b.isPrefixOf(a)
}
