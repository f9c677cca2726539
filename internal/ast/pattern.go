package ast

import "vxc/internal/token"

// Pattern is satisfied by every match-arm / destructuring pattern node.
type Pattern interface {
	Node
	patternNode()
}

// WildcardPattern is `_`, matching anything and binding nothing.
type WildcardPattern struct {
	Span_ token.Span
}

func (p *WildcardPattern) Span() token.Span { return p.Span_ }
func (*WildcardPattern) patternNode()        {}

// IdentPattern binds the scrutinee (or a sub-part of it) to Name.
type IdentPattern struct {
	Name  string
	Span_ token.Span
}

func (p *IdentPattern) Span() token.Span { return p.Span_ }
func (*IdentPattern) patternNode()        {}

// LiteralPattern matches an exact literal value.
type LiteralPattern struct {
	Value Expr // IntLit, FloatLit, BoolLit, or StringLit
	Span_ token.Span
}

func (p *LiteralPattern) Span() token.Span { return p.Span_ }
func (*LiteralPattern) patternNode()        {}

// FieldPattern is one `name: pattern` entry of a StructPattern.
type FieldPattern struct {
	Name    string
	Pattern Pattern
	Span_   token.Span
}

func (p FieldPattern) Span() token.Span { return p.Span_ }

// StructPattern destructures a struct value by field.
type StructPattern struct {
	TypeName string
	Fields   []FieldPattern
	Rest     bool // trailing `..` ignores remaining fields
	Span_    token.Span
}

func (p *StructPattern) Span() token.Span { return p.Span_ }
func (*StructPattern) patternNode()        {}

// EnumVariantPattern destructures an enum case, binding its tuple payload.
type EnumVariantPattern struct {
	EnumName string // empty when inferred from match scrutinee's type
	Variant  string
	Elems    []Pattern
	Span_    token.Span
}

func (p *EnumVariantPattern) Span() token.Span { return p.Span_ }
func (*EnumVariantPattern) patternNode()        {}

// TuplePattern destructures a tuple value element-wise.
type TuplePattern struct {
	Elems []Pattern
	Span_ token.Span
}

func (p *TuplePattern) Span() token.Span { return p.Span_ }
func (*TuplePattern) patternNode()        {}
