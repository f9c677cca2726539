package sema

import (
	"vxc/internal/ast"
	"vxc/internal/token"
)

// OwnershipState names the ownership states a binding can be in. Pass 2
// (moves) and pass 3 (borrows) keep their own moveState and liveBorrow
// records and do not use it.
type OwnershipState int

const (
	Owned OwnershipState = iota
	Moved
	PartiallyMoved
	BorrowedShared
	BorrowedUnique
)

// BorrowKind distinguishes the two reference flavors pass 3 tracks.
type BorrowKind int

const (
	Shared BorrowKind = iota
	Unique
)

// place is a statically-known lvalue path: a local name plus zero or more
// field projections (spec glossary "Place"). "v.x.y" is represented as
// Root: "v", Path: []string{"x", "y"}.
type place struct {
	Root string
	Path []string
}

func (p place) String() string {
	s := p.Root
	for _, f := range p.Path {
		s += "." + f
	}
	return s
}

// isPrefixOf reports whether p is p2 itself or an ancestor place of p2 (e.g.
// "v" is a prefix of "v.x"), the relation partial-move tracking needs: moving
// "v.x" leaves "v" partially moved, and using "v" after that must fail.
func (p place) isPrefixOf(p2 place) bool {
	if p.Root != p2.Root || len(p.Path) > len(p2.Path) {
		return false
	}
	for i, f := range p.Path {
		if p2.Path[i] != f {
			return false
		}
	}
	return true
}

// binding is one local's tracked ownership/borrow state through a function
// body.
type binding struct {
	Name       string
	Mutable    bool
	CopyType   bool // primitive ints/floats/bool/raw ptr/reference: exempt from moves
	DeclSpan   token.Span
	State      OwnershipState
	MovedAt    token.Span // set when State is Moved or PartiallyMoved
	MovedPaths map[string]token.Span // field-path strings moved out of this binding

	// activeBorrows lists live borrows taken from this binding or one of its
	// fields. Pass 3 (borrows) and pass 4 (lifetimes) do not read it; they
	// keep their own borrow and local records.
	activeBorrows []*borrowFact
}

// borrowFact records one live reference value created by a RefExpr.
type borrowFact struct {
	Of        place
	Kind      BorrowKind
	CreatedAt token.Span
	LastUse   token.Span
	ScopeDies token.Span // end of the lexical scope the borrow cannot outlive
}

// isCopyType reports whether t is exempt from move semantics.
func isCopyType(t ast.Type) bool {
	switch tt := t.(type) {
	case *ast.PrimitiveType:
		switch tt.Name {
		case "string":
			return false
		default:
			return true // integer widths, floats, bool, byte, void
		}
	case *ast.PtrType, *ast.RefType:
		return true
	default:
		return false
	}
}
