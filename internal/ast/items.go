package ast

import "vxc/internal/token"

// Item is a top-level declaration: function, struct, enum, trait, impl
// block, type alias, constant, or external block (spec glossary).
type Item interface {
	Node
	ItemName() string
	IsExported() bool
	itemNode()
}

// Field is one struct field or enum-variant payload slot.
type Field struct {
	Name  string
	Type  Type
	Span_ token.Span
}

func (f Field) Span() token.Span { return f.Span_ }

// FuncItem is a top-level or impl-block function.
type FuncItem struct {
	Name     string
	Exported bool
	Generics []GenericParam
	Params   []Param
	Ret      Type // nil means void
	Body     *BlockStmt
	Span_    token.Span
}

func (f *FuncItem) Span() token.Span  { return f.Span_ }
func (f *FuncItem) ItemName() string  { return f.Name }
func (f *FuncItem) IsExported() bool  { return f.Exported }
func (*FuncItem) itemNode()           {}

// StructItem declares a struct type; Fields are in declaration order, which
// is also the LLVM literal-struct field order.
type StructItem struct {
	Name     string
	Exported bool
	Generics []GenericParam
	Fields   []Field
	Span_    token.Span
}

func (s *StructItem) Span() token.Span { return s.Span_ }
func (s *StructItem) ItemName() string { return s.Name }
func (s *StructItem) IsExported() bool { return s.Exported }
func (*StructItem) itemNode()          {}

// EnumVariant is one case of an enum, with an optional tuple-style payload.
type EnumVariant struct {
	Name    string
	Payload []Type
	Span_   token.Span
}

func (v EnumVariant) Span() token.Span { return v.Span_ }

// EnumItem declares a tagged-union type, lowered to
// `{ i<tag_width>, [N x i8] }`.
type EnumItem struct {
	Name     string
	Exported bool
	Generics []GenericParam
	Variants []EnumVariant
	Span_    token.Span
}

func (e *EnumItem) Span() token.Span { return e.Span_ }
func (e *EnumItem) ItemName() string { return e.Name }
func (e *EnumItem) IsExported() bool { return e.Exported }
func (*EnumItem) itemNode()          {}

// TraitMethod is one method signature declared by a trait.
type TraitMethod struct {
	Name    string
	Generics []GenericParam
	Params  []Param
	Ret     Type
	Default *BlockStmt // non-nil for a default implementation
	Span_   token.Span
}

func (m TraitMethod) Span() token.Span { return m.Span_ }

// TraitItem declares a trait (method-signature contract).
type TraitItem struct {
	Name     string
	Exported bool
	Generics []GenericParam
	Methods  []TraitMethod
	Span_    token.Span
}

func (t *TraitItem) Span() token.Span { return t.Span_ }
func (t *TraitItem) ItemName() string { return t.Name }
func (t *TraitItem) IsExported() bool { return t.Exported }
func (*TraitItem) itemNode()          {}

// ImplItem implements either a bare inherent method set (Trait == nil) or a
// trait for a target type.
type ImplItem struct {
	Generics []GenericParam
	Trait    Type // nil for an inherent impl
	Target   Type
	Methods  []*FuncItem
	Span_    token.Span
}

func (i *ImplItem) Span() token.Span { return i.Span_ }
func (i *ImplItem) ItemName() string {
	if n, ok := i.Target.(*NamedType); ok {
		return n.Name
	}
	return ""
}
func (i *ImplItem) IsExported() bool { return false }
func (*ImplItem) itemNode()          {}

// TypeAliasItem is `type Name<Generics> = Type`.
type TypeAliasItem struct {
	Name     string
	Exported bool
	Generics []GenericParam
	Target   Type
	Span_    token.Span
}

func (t *TypeAliasItem) Span() token.Span { return t.Span_ }
func (t *TypeAliasItem) ItemName() string { return t.Name }
func (t *TypeAliasItem) IsExported() bool { return t.Exported }
func (*TypeAliasItem) itemNode()          {}

// ConstItem is a top-level constant.
type ConstItem struct {
	Name     string
	Exported bool
	Type     Type
	Value    Expr
	Span_    token.Span
}

func (c *ConstItem) Span() token.Span { return c.Span_ }
func (c *ConstItem) ItemName() string { return c.Name }
func (c *ConstItem) IsExported() bool { return c.Exported }
func (*ConstItem) itemNode()          {}

// ImportKind distinguishes the import flavors the resolver must honor
// identically with respect to external-block splicing. The re-export
// flavor is not a kind of its own: it is an ImportItem with Reexport set.
type ImportKind int

const (
	// ImportWhole is `import path;` — every exported item is spliced in
	// unqualified.
	ImportWhole ImportKind = iota
	// ImportNamespace is `import path as alias;` — exported items are
	// spliced in but addressed through the alias by the resolver's own
	// bookkeeping (the AST splice itself is unqualified, matching
	// ImportWhole; the alias only affects diagnostic messages).
	ImportNamespace
	// ImportNamed is `from path import a, b;` — only the named items are
	// bound in the importer, but every external block is still spliced.
	ImportNamed
)

// ImportItem is an import declaration. It never itself holds code; the
// resolver replaces it with the spliced items it names (plus, per the
// critical splicing rule, every ExternalItem from the resolved module).
type ImportItem struct {
	Path     string
	Alias    string // set only for ImportNamespace
	Kind     ImportKind
	Names    []string // set only for ImportNamed
	Reexport bool     // true for `export from path import ...`
	Span_    token.Span
}

func (i *ImportItem) Span() token.Span { return i.Span_ }
func (i *ImportItem) ItemName() string { return i.Path }
func (i *ImportItem) IsExported() bool { return i.Reexport }
func (*ImportItem) itemNode()          {}

// ExternFunc is one function signature declared inside an external block.
type ExternFunc struct {
	Name   string
	Params []Param
	Ret    Type
	Span_  token.Span
}

func (e ExternFunc) Span() token.Span { return e.Span_ }

// ExternalItem is `external "C" { ... }`: a group of C-ABI declarations that
// produce only link-level declarations, never code (spec glossary). The
// module resolver splices every ExternalItem from an imported module
// unconditionally, regardless of which names were actually requested by the
// import.
type ExternalItem struct {
	ABI     string // e.g. "C"
	Funcs   []ExternFunc
	Span_   token.Span
}

func (e *ExternalItem) Span() token.Span { return e.Span_ }
func (e *ExternalItem) ItemName() string { return "" }
func (e *ExternalItem) IsExported() bool { return true }
func (*ExternalItem) itemNode()          {}
