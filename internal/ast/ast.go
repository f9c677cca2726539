// Package ast defines the typed tree the parser produces: Program, the four
// node families (items, types, statements, expressions) and patterns.
//
// The split into dedicated files per family (items.go, types.go, stmt.go,
// expr.go, pattern.go) keeps vx's richer grammar (generics, traits,
// ownership-flavored reference types, formatted strings) within cognitive
// reach per file. Nodes are walked with plain Go type switches rather than
// a Visitor interface — codegen and the analyzer are both already one
// switch per node kind, and a second dispatch layer would just duplicate
// the switch.
package ast

import "vxc/internal/token"

// Node is satisfied by every AST node.
type Node interface {
	Span() token.Span
}

// Program is the root of one compilation unit's merged AST: its own items
// plus every item spliced in by the module resolver.
type Program struct {
	Items []Item
}

// GenericParam is one entry of an ordered generic parameter list.
type GenericParam struct {
	Name   string
	Bounds []Type // trait bounds, if any
	Span_  token.Span
}

func (g GenericParam) Span() token.Span { return g.Span_ }

// Param is a function or closure parameter.
type Param struct {
	Name  string
	Type  Type
	Span_ token.Span
}

func (p Param) Span() token.Span { return p.Span_ }
