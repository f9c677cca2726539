package ast

import "vxc/internal/token"

// Expr is satisfied by every expression node.
type Expr interface {
	Node
	exprNode()
}

// IntLit is an integer literal, with an optional type suffix (i32, u64, ...).
type IntLit struct {
	Value  int64
	Suffix string // "" when unsuffixed
	Span_  token.Span
}

func (e *IntLit) Span() token.Span { return e.Span_ }
func (*IntLit) exprNode()          {}

// FloatLit is a floating-point literal, with an optional type suffix.
type FloatLit struct {
	Value  float64
	Suffix string
	Span_  token.Span
}

func (e *FloatLit) Span() token.Span { return e.Span_ }
func (*FloatLit) exprNode()          {}

// BoolLit is `true` or `false`.
type BoolLit struct {
	Value bool
	Span_ token.Span
}

func (e *BoolLit) Span() token.Span { return e.Span_ }
func (*BoolLit) exprNode()          {}

// StringLit is a plain (non-formatted) string literal, already unescaped.
type StringLit struct {
	Value string
	Span_ token.Span
}

func (e *StringLit) Span() token.Span { return e.Span_ }
func (*StringLit) exprNode()          {}

// FormatStringExpr is a formatted string `f"..."`, alternating literal
// chunks with embedded expressions: Chunks has one more element than Exprs.
// Codegen lowers this to a sequence of calls against the runtime's string
// builder.
type FormatStringExpr struct {
	Chunks []string
	Exprs  []Expr
	Span_  token.Span
}

func (e *FormatStringExpr) Span() token.Span { return e.Span_ }
func (*FormatStringExpr) exprNode()          {}

// ArrayLit is `[e1, e2, ...]`.
type ArrayLit struct {
	Elems []Expr
	Span_ token.Span
}

func (e *ArrayLit) Span() token.Span { return e.Span_ }
func (*ArrayLit) exprNode()          {}

// TupleLit is `(e1, e2, ...)` with at least two elements (a single
// parenthesized expression is not a tuple).
type TupleLit struct {
	Elems []Expr
	Span_ token.Span
}

func (e *TupleLit) Span() token.Span { return e.Span_ }
func (*TupleLit) exprNode()          {}

// FieldInit is one `name: value` entry of a StructLit.
type FieldInit struct {
	Name  string
	Value Expr
	Span_ token.Span
}

func (f FieldInit) Span() token.Span { return f.Span_ }

// StructLit is `TypeName { field: value, ... }`.
type StructLit struct {
	TypeName string
	Fields   []FieldInit
	Span_    token.Span
}

func (e *StructLit) Span() token.Span { return e.Span_ }
func (*StructLit) exprNode()          {}

// IdentExpr references a local, parameter, constant, or item by name.
type IdentExpr struct {
	Name  string
	Span_ token.Span
}

func (e *IdentExpr) Span() token.Span { return e.Span_ }
func (*IdentExpr) exprNode()          {}

// FieldExpr is `base.Name`.
type FieldExpr struct {
	Base  Expr
	Name  string
	Span_ token.Span
}

func (e *FieldExpr) Span() token.Span { return e.Span_ }
func (*FieldExpr) exprNode()          {}

// IndexExpr is `base[index]`.
type IndexExpr struct {
	Base  Expr
	Index Expr
	Span_ token.Span
}

func (e *IndexExpr) Span() token.Span { return e.Span_ }
func (*IndexExpr) exprNode()          {}

// CallExpr is `callee(args...)`, with explicit generic type arguments when
// the callee is instantiated directly (`identity<i32>(x)`).
type CallExpr struct {
	Callee    Expr
	TypeArgs  []Type
	Args      []Expr
	Span_     token.Span
}

func (e *CallExpr) Span() token.Span { return e.Span_ }
func (*CallExpr) exprNode()          {}

// MethodCallExpr is `recv.Method(args...)`, resolved against either an
// inherent impl or a trait impl during analysis.
type MethodCallExpr struct {
	Recv     Expr
	Method   string
	TypeArgs []Type
	Args     []Expr
	Span_    token.Span
}

func (e *MethodCallExpr) Span() token.Span { return e.Span_ }
func (*MethodCallExpr) exprNode()          {}

// UnaryOp enumerates prefix operators.
type UnaryOp int

const (
	UnaryNeg UnaryOp = iota
	UnaryNot
	UnaryBitNot
)

// UnaryExpr is a prefix operator applied to X.
type UnaryExpr struct {
	Op    UnaryOp
	X     Expr
	Span_ token.Span
}

func (e *UnaryExpr) Span() token.Span { return e.Span_ }
func (*UnaryExpr) exprNode()          {}

// BinaryOp enumerates infix operators.
type BinaryOp int

const (
	BinAdd BinaryOp = iota
	BinSub
	BinMul
	BinDiv
	BinMod
	BinEq
	BinNotEq
	BinLt
	BinLtEq
	BinGt
	BinGtEq
	BinAnd
	BinOr
	BinBitAnd
	BinBitOr
	BinBitXor
	BinShl
	BinShr
)

// BinaryExpr is `X op Y`.
type BinaryExpr struct {
	Op    BinaryOp
	X, Y  Expr
	Span_ token.Span
}

func (e *BinaryExpr) Span() token.Span { return e.Span_ }
func (*BinaryExpr) exprNode()          {}

// PostfixOp enumerates postfix operators (`x++`, `x--`).
type PostfixOp int

const (
	PostfixInc PostfixOp = iota
	PostfixDec
)

// PostfixExpr is `X op`.
type PostfixExpr struct {
	Op    PostfixOp
	X     Expr
	Span_ token.Span
}

func (e *PostfixExpr) Span() token.Span { return e.Span_ }
func (*PostfixExpr) exprNode()          {}

// CastExpr is `X as Type`.
type CastExpr struct {
	X     Expr
	Type  Type
	Span_ token.Span
}

func (e *CastExpr) Span() token.Span { return e.Span_ }
func (*CastExpr) exprNode()          {}

// RefExpr is `&X` (shared borrow) or `&X!` (unique/mutable borrow).
type RefExpr struct {
	X       Expr
	Mutable bool
	Span_   token.Span
}

func (e *RefExpr) Span() token.Span { return e.Span_ }
func (*RefExpr) exprNode()          {}

// DerefExpr is `*X`.
type DerefExpr struct {
	X     Expr
	Span_ token.Span
}

func (e *DerefExpr) Span() token.Span { return e.Span_ }
func (*DerefExpr) exprNode()          {}

// RangeExpr is `lo..hi` or `lo..=hi`.
type RangeExpr struct {
	Lo, Hi    Expr
	Inclusive bool
	Span_     token.Span
}

func (e *RangeExpr) Span() token.Span { return e.Span_ }
func (*RangeExpr) exprNode()          {}

// MatchExpr is match used in expression position: every arm's body must be
// an expression. The analyzer does not check that the arms are exhaustive.
type MatchExpr struct {
	Scrutinee Expr
	Arms      []MatchExprArm
	Span_     token.Span
}

func (e *MatchExpr) Span() token.Span { return e.Span_ }
func (*MatchExpr) exprNode()          {}

// MatchExprArm is one arm of a MatchExpr.
type MatchExprArm struct {
	Pattern Pattern
	Guard   Expr
	Value   Expr
	Span_   token.Span
}

func (a MatchExprArm) Span() token.Span { return a.Span_ }

// IfExpr is `if cond { e1 } else { e2 }` used in expression position; both
// branches are required and must unify to the same type.
type IfExpr struct {
	Cond  Expr
	Then  Expr
	Else  Expr
	Span_ token.Span
}

func (e *IfExpr) Span() token.Span { return e.Span_ }
func (*IfExpr) exprNode()          {}

// ClosureExpr is `|params| body` or `|params| { body }`. Code generation
// captures every enclosing binding it uses by shared or unique reference;
// no binding is captured by value.
type ClosureExpr struct {
	Params []Param
	Ret    Type // nil when inferred
	Body   Expr // BlockExpr-shaped via an implicit IfExpr/BlockStmt wrapper
	Block  *BlockStmt // non-nil when the closure body is a block, not a bare expr
	Span_  token.Span
}

func (e *ClosureExpr) Span() token.Span { return e.Span_ }
func (*ClosureExpr) exprNode()          {}

// AwaitExpr is `X.await`.
type AwaitExpr struct {
	X     Expr
	Span_ token.Span
}

func (e *AwaitExpr) Span() token.Span { return e.Span_ }
func (*AwaitExpr) exprNode()          {}

// GoExpr is `go X`, spawning X (a call expression) as a concurrent task.
type GoExpr struct {
	Call  Expr
	Span_ token.Span
}

func (e *GoExpr) Span() token.Span { return e.Span_ }
func (*GoExpr) exprNode()          {}

// TryExpr is `X?`: propagates X's error member out of the enclosing
// function when X evaluates to one, otherwise unwraps to X's non-error
// member.
type TryExpr struct {
	X     Expr
	Span_ token.Span
}

func (e *TryExpr) Span() token.Span { return e.Span_ }
func (*TryExpr) exprNode()          {}
