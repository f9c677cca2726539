// Package sema runs the four-pass ownership analyzer over a merged Program:
// mutability, moves, borrows, lifetimes. Each pass is its own file to keep
// each one within cognitive reach. The scope-stack shape (module ->
// function -> block -> inner block) carries ownership facts alongside
// plain name resolution, since vx's analyzer needs both in the same walk.
package sema

import "vxc/internal/ast"

// EntityKind classifies what a symbol table entry names.
type EntityKind int

const (
	EntValue EntityKind = iota
	EntType
	EntTrait
	EntModule
)

// Entity is one named thing visible in a scope: a local/parameter/constant,
// a struct/enum/type-alias, a trait, or (reserved for future use) a module
// alias.
type Entity struct {
	Name string
	Kind EntityKind
	Decl ast.Node

	Mutable bool // meaningful only for EntValue
}

// Scope is one lexical level of the module -> function -> block -> inner
// block stack.
type Scope struct {
	Parent *Scope
	Names  map[string]*Entity
}

func newScope(parent *Scope) *Scope {
	return &Scope{Parent: parent, Names: make(map[string]*Entity, 8)}
}

// Declare binds name in this scope only. It does not check for shadowing
// against parent scopes, which is allowed everywhere except for items
//: the caller is responsible for rejecting duplicate items before
// calling Declare for item-level names.
func (s *Scope) Declare(e *Entity) {
	s.Names[e.Name] = e
}

// Lookup walks outward from s, returning the first entity bound to name.
func (s *Scope) Lookup(name string) *Entity {
	for sc := s; sc != nil; sc = sc.Parent {
		if e, ok := sc.Names[name]; ok {
			return e
		}
	}
	return nil
}

// LookupLocal finds name only in s, not its parents.
func (s *Scope) LookupLocal(name string) *Entity {
	return s.Names[name]
}

// push opens a new nested scope under s.
func (s *Scope) push() *Scope {
	return newScope(s)
}
