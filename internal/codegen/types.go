package codegen

import (
	"fmt"
	"strings"

	"tinygo.org/x/go-llvm"

	"vxc/internal/ast"
)

// structLayout remembers a struct type's field order and its lowered LLVM
// type, built once per distinct (name, type-argument tuple) instantiation
//.
type structLayout struct {
	name     string
	llvmType llvm.Type
	fields   []string
	fieldTy  []ast.Type
}

// enumLayout remembers an enum's tag width and its tagged-union LLVM
// representation `{ i<tag_width>, [N x i8] }`.
type enumLayout struct {
	name       string
	llvmType   llvm.Type
	tagWidth   int
	payload    int // bytes
	variantIdx map[string]int
	variantTy  map[string][]ast.Type
}

// vtableLayout is a trait's method table shape, shared by every
// implementation of that trait.
type vtableLayout struct {
	trait      string
	methods    []string
	llvmType   llvm.Type // the vtable struct type: one function-pointer slot per method
	perImpl    map[string]llvm.Value // struct type name -> global vtable constant
}

// typeKey builds a stable string key for t, used both as the type cache key
// and as the per-instantiation suffix of mangled generic names.
func typeKey(t ast.Type) string {
	switch v := t.(type) {
	case nil:
		return "void"
	case *ast.PrimitiveType:
		return v.Name
	case *ast.NamedType:
		if len(v.Args) == 0 {
			return v.Name
		}
		parts := make([]string, len(v.Args))
		for i, a := range v.Args {
			parts[i] = typeKey(a)
		}
		return v.Name + "<" + strings.Join(parts, ",") + ">"
	case *ast.ArrayType:
		return "[" + typeKey(v.Elem) + ";N]"
	case *ast.SliceType:
		return "[" + typeKey(v.Elem) + "]"
	case *ast.RefType:
		if v.Mutable {
			return "&" + typeKey(v.Elem) + "!"
		}
		return "&" + typeKey(v.Elem)
	case *ast.PtrType:
		if v.Mutable {
			return "*" + typeKey(v.Elem) + "!"
		}
		return "*" + typeKey(v.Elem)
	case *ast.TupleType:
		parts := make([]string, len(v.Elems))
		for i, e := range v.Elems {
			parts[i] = typeKey(e)
		}
		return "(" + strings.Join(parts, ",") + ")"
	case *ast.FuncType:
		parts := make([]string, len(v.Params))
		for i, p := range v.Params {
			parts[i] = typeKey(p)
		}
		return "fn(" + strings.Join(parts, ",") + "):" + typeKey(v.Ret)
	case *ast.UnionType:
		parts := make([]string, len(v.Members))
		for i, m := range v.Members {
			parts[i] = typeKey(m)
		}
		return strings.Join(parts, "|")
	case *ast.WildcardType:
		return "_"
	default:
		return fmt.Sprintf("?%T", v)
	}
}

// llvmType lowers a surface vx type to an LLVM type, caching by typeKey
//. subst substitutes generic parameter names
// for concrete types when lowering inside a monomorphized function body;
// it is nil outside such a context.
func (c *Context) llvmType(t ast.Type, subst map[string]ast.Type) llvm.Type {
	t = applySubst(t, subst)
	key := typeKey(t)
	if lt, ok := c.typeCache[key]; ok {
		return lt
	}
	lt := c.lowerType(t, subst)
	c.typeCache[key] = lt
	return lt
}

// applySubst replaces a bare generic-parameter reference (a NamedType with
// no args whose name is a key of subst) with its concrete binding.
func applySubst(t ast.Type, subst map[string]ast.Type) ast.Type {
	if subst == nil {
		return t
	}
	if n, ok := t.(*ast.NamedType); ok && len(n.Args) == 0 {
		if bound, ok := subst[n.Name]; ok {
			return bound
		}
	}
	return t
}

func (c *Context) lowerType(t ast.Type, subst map[string]ast.Type) llvm.Type {
	switch v := t.(type) {
	case nil:
		return c.llctx.VoidType()
	case *ast.PrimitiveType:
		return c.lowerPrimitive(v.Name)
	case *ast.NamedType:
		return c.lowerNamed(v, subst)
	case *ast.ArrayType:
		n := c.constArrayLen(v.Size)
		return llvm.ArrayType(c.llvmType(v.Elem, subst), n)
	case *ast.SliceType:
		// Fat pointer: { ptr, i64 }.
		return c.llctx.StructType([]llvm.Type{
			llvm.PointerType(c.llvmType(v.Elem, subst), 0),
			c.llctx.Int64Type(),
		}, false)
	case *ast.RefType:
		return llvm.PointerType(c.llvmType(v.Elem, subst), 0)
	case *ast.PtrType:
		return llvm.PointerType(c.llvmType(v.Elem, subst), 0)
	case *ast.TupleType:
		elems := make([]llvm.Type, len(v.Elems))
		for i, e := range v.Elems {
			elems[i] = c.llvmType(e, subst)
		}
		return c.llctx.StructType(elems, false)
	case *ast.FuncType:
		params := make([]llvm.Type, len(v.Params))
		for i, p := range v.Params {
			params[i] = c.llvmType(p, subst)
		}
		ret := c.llvmType(v.Ret, subst)
		return llvm.PointerType(llvm.FunctionType(ret, params, false), 0)
	case *ast.UnionType:
		return c.lowerUnion(v, subst)
	case *ast.WildcardType:
		// Only reachable through an unresolved inference hole; treat as an
		// opaque pointer so generation doesn't crash on a malformed tree
		// that should have been caught earlier in the pipeline.
		return llvm.PointerType(c.llctx.Int8Type(), 0)
	default:
		return c.llctx.Int8Type()
	}
}

func (c *Context) lowerPrimitive(name string) llvm.Type {
	switch name {
	case "i8", "u8", "byte":
		return c.llctx.Int8Type()
	case "i16", "u16":
		return c.llctx.Int16Type()
	case "i32", "u32":
		return c.llctx.Int32Type()
	case "i64", "u64":
		return c.llctx.Int64Type()
	case "f32":
		return c.llctx.FloatType()
	case "f64":
		return c.llctx.DoubleType()
	case "bool":
		return c.llctx.Int1Type()
	case "string":
		// Fat pointer { ptr, i64 }, same shape as [u8].
		return c.llctx.StructType([]llvm.Type{
			llvm.PointerType(c.llctx.Int8Type(), 0),
			c.llctx.Int64Type(),
		}, false)
	case "void":
		return c.llctx.VoidType()
	default:
		return c.llctx.Int32Type()
	}
}

func (c *Context) lowerNamed(n *ast.NamedType, subst map[string]ast.Type) llvm.Type {
	if bound := applySubst(n, subst); bound != n {
		return c.llvmType(bound, subst)
	}
	if s, ok := c.prog.structs[n.Name]; ok {
		return c.structType(s, n.Args, subst).llvmType
	}
	if e, ok := c.prog.enums[n.Name]; ok {
		return c.enumType(e, n.Args, subst).llvmType
	}
	if _, ok := c.traitOf(n.Name); ok {
		// Trait object: fat pointer { data*, vtable* }.
		vt := c.vtableFor(n.Name)
		return c.llctx.StructType([]llvm.Type{
			llvm.PointerType(c.llctx.Int8Type(), 0),
			llvm.PointerType(vt.llvmType, 0),
		}, false)
	}
	// Unknown named type (generic parameter never substituted, or a type
	// alias the resolver already inlined away): fall back to an opaque
	// pointer rather than aborting generation wholesale.
	return llvm.PointerType(c.llctx.Int8Type(), 0)
}

// structType builds (or returns the cached) layout for a struct
// instantiated with typeArgs bound to its generic parameters.
func (c *Context) structType(s *ast.StructItem, typeArgs []ast.Type, outerSubst map[string]ast.Type) *structLayout {
	local := bindGenerics(s.Generics, typeArgs, outerSubst)
	key := s.Name + mangledTypeArgsFromMap(s.Generics, local)
	if l, ok := c.structLayouts[key]; ok {
		return l
	}
	named := c.llctx.StructCreateNamed("struct." + key)
	l := &structLayout{name: key, llvmType: named}
	c.structLayouts[key] = l // placeholder before recursing, breaks self-reference cycles
	fieldTys := make([]llvm.Type, len(s.Fields))
	for i, f := range s.Fields {
		l.fields = append(l.fields, f.Name)
		l.fieldTy = append(l.fieldTy, f.Type)
		fieldTys[i] = c.llvmType(f.Type, local)
	}
	named.StructSetBody(fieldTys, false)
	return l
}

// enumType builds (or returns the cached) tagged-union layout for an enum.
// The payload is sized to the widest variant's flattened field list; tag
// width is the smallest power-of-two-aligned integer that can hold every
// variant index.
func (c *Context) enumType(e *ast.EnumItem, typeArgs []ast.Type, outerSubst map[string]ast.Type) *enumLayout {
	local := bindGenerics(e.Generics, typeArgs, outerSubst)
	key := e.Name + mangledTypeArgsFromMap(e.Generics, local)
	if l, ok := c.enumLayouts[key]; ok {
		return l
	}
	l := &enumLayout{
		name:       key,
		variantIdx: make(map[string]int),
		variantTy:  make(map[string][]ast.Type),
	}
	tagWidth := 32
	switch {
	case len(e.Variants) <= 1<<8:
		tagWidth = 8
	case len(e.Variants) <= 1<<16:
		tagWidth = 16
	}
	l.tagWidth = tagWidth

	maxPayload := 0
	for i, v := range e.Variants {
		l.variantIdx[v.Name] = i
		l.variantTy[v.Name] = v.Payload
		size := 0
		for _, pt := range v.Payload {
			size += c.sizeOf(c.llvmType(pt, local))
		}
		if size > maxPayload {
			maxPayload = size
		}
	}
	l.payload = maxPayload
	named := c.llctx.StructCreateNamed("enum." + key)
	body := []llvm.Type{c.tagType(tagWidth)}
	if maxPayload > 0 {
		body = append(body, llvm.ArrayType(c.llctx.Int8Type(), maxPayload))
	}
	named.StructSetBody(body, false)
	l.llvmType = named
	c.enumLayouts[key] = l
	return l
}

func (c *Context) tagType(width int) llvm.Type {
	switch width {
	case 8:
		return c.llctx.Int8Type()
	case 16:
		return c.llctx.Int16Type()
	default:
		return c.llctx.Int32Type()
	}
}

// sizeOf returns a conservative byte size for t used only to compare
// variant payload sizes against each other, not for ABI-accurate layout
// (the target data layout, not this heuristic, governs real struct
// packing once the module reaches EmitObject).
func (c *Context) sizeOf(t llvm.Type) int {
	switch t.TypeKind() {
	case llvm.IntegerTypeKind:
		return (t.IntTypeWidth() + 7) / 8
	case llvm.FloatTypeKind:
		return 4
	case llvm.DoubleTypeKind:
		return 8
	case llvm.PointerTypeKind:
		return 8
	case llvm.StructTypeKind:
		total := 0
		for _, f := range t.StructElementTypes() {
			total += c.sizeOf(f)
		}
		return total
	case llvm.ArrayTypeKind:
		return t.ArrayLength() * c.sizeOf(t.ElementType())
	default:
		return 8
	}
}

// lowerUnion lowers a union type `A | B` to the same tagged-union shape as
// an anonymous enum whose variants are the union's members in declared
// order.
func (c *Context) lowerUnion(u *ast.UnionType, subst map[string]ast.Type) llvm.Type {
	key := "union:" + typeKey(u)
	if l, ok := c.enumLayouts[key]; ok {
		return l.llvmType
	}
	tagWidth := 8
	l := &enumLayout{name: key, tagWidth: tagWidth, variantIdx: map[string]int{}, variantTy: map[string][]ast.Type{}}
	maxPayload := 0
	for i, m := range u.Members {
		tag := fmt.Sprintf("member%d", i)
		l.variantIdx[tag] = i
		l.variantTy[tag] = []ast.Type{m}
		size := c.sizeOf(c.llvmType(m, subst))
		if size > maxPayload {
			maxPayload = size
		}
	}
	l.payload = maxPayload
	named := c.llctx.StructCreateNamed("union." + key)
	body := []llvm.Type{c.tagType(tagWidth)}
	if maxPayload > 0 {
		body = append(body, llvm.ArrayType(c.llctx.Int8Type(), maxPayload))
	}
	named.StructSetBody(body, false)
	l.llvmType = named
	c.enumLayouts[key] = l
	return named
}

// constArrayLen evaluates an array-size expression, which the analyzer
// already required to be a constant integer expression.
func (c *Context) constArrayLen(e ast.Expr) int {
	switch v := e.(type) {
	case *ast.IntLit:
		return int(v.Value)
	default:
		return 0
	}
}

// bindGenerics produces the substitution map active while lowering a
// generic item's members, merging outerSubst (bindings already in force
// from an enclosing generic context) with this item's own parameters bound
// to typeArgs positionally.
func bindGenerics(params []ast.GenericParam, typeArgs []ast.Type, outerSubst map[string]ast.Type) map[string]ast.Type {
	if len(params) == 0 && len(outerSubst) == 0 {
		return nil
	}
	out := make(map[string]ast.Type, len(params)+len(outerSubst))
	for k, v := range outerSubst {
		out[k] = v
	}
	for i, p := range params {
		if i < len(typeArgs) {
			out[p.Name] = typeArgs[i]
		}
	}
	return out
}

func mangledTypeArgsFromMap(params []ast.GenericParam, subst map[string]ast.Type) string {
	if len(params) == 0 {
		return ""
	}
	parts := make([]string, len(params))
	for i, p := range params {
		if t, ok := subst[p.Name]; ok {
			parts[i] = typeKey(t)
		} else {
			parts[i] = p.Name
		}
	}
	return "<" + strings.Join(parts, ",") + ">"
}
