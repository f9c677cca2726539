package ast

import "vxc/internal/token"

// Type is the interface every type-expression node implements. There is no
// implicit mutable-to-immutable conversion at this level —
// mutability is carried on RefType/PtrType themselves.
type Type interface {
	Node
	typeNode()
}

// PrimitiveType covers i8..i64, u8..u64, f32, f64, bool, string, byte, void.
type PrimitiveType struct {
	Name  string
	Span_ token.Span
}

func (t *PrimitiveType) Span() token.Span { return t.Span_ }
func (*PrimitiveType) typeNode()          {}

// NamedType is a user-defined type, optionally instantiated with type
// arguments: Vec<i32>, Option<T>, Point.
type NamedType struct {
	Name  string
	Args  []Type // nil when not generic or left for inference
	Span_ token.Span
}

func (t *NamedType) Span() token.Span { return t.Span_ }
func (*NamedType) typeNode()          {}

// ArrayType is a fixed-size array `[T; N]`.
type ArrayType struct {
	Elem  Type
	Size  Expr
	Span_ token.Span
}

func (t *ArrayType) Span() token.Span { return t.Span_ }
func (*ArrayType) typeNode()          {}

// SliceType is a dynamically-sized slice `[T]`, lowered to a fat pointer.
type SliceType struct {
	Elem  Type
	Span_ token.Span
}

func (t *SliceType) Span() token.Span { return t.Span_ }
func (*SliceType) typeNode()          {}

// RefType is a reference `&T` (Mutable=false) or `&T!` (Mutable=true).
type RefType struct {
	Elem    Type
	Mutable bool
	Span_   token.Span
}

func (t *RefType) Span() token.Span { return t.Span_ }
func (*RefType) typeNode()          {}

// PtrType is a raw pointer `*T` or `*T!`.
type PtrType struct {
	Elem    Type
	Mutable bool
	Span_   token.Span
}

func (t *PtrType) Span() token.Span { return t.Span_ }
func (*PtrType) typeNode()          {}

// TupleType is `(T1, T2, ...)`.
type TupleType struct {
	Elems []Type
	Span_ token.Span
}

func (t *TupleType) Span() token.Span { return t.Span_ }
func (*TupleType) typeNode()          {}

// FuncType is a function-pointer type `fn(T1, T2): R`.
type FuncType struct {
	Params []Type
	Ret    Type
	Span_  token.Span
}

func (t *FuncType) Span() token.Span { return t.Span_ }
func (*FuncType) typeNode()          {}

// UnionType is a sum-of-types `T | E`, the vx error type when one member is
// an error-shaped type. Lowered exactly like an enum.
type UnionType struct {
	Members []Type
	Span_   token.Span
}

func (t *UnionType) Span() token.Span { return t.Span_ }
func (*UnionType) typeNode()          {}

// WildcardType is `_` — left for inference.
type WildcardType struct {
	Span_ token.Span
}

func (t *WildcardType) Span() token.Span { return t.Span_ }
func (*WildcardType) typeNode()          {}
