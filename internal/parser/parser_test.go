package parser

import (
	"testing"

	"vxc/internal/ast"
	"vxc/internal/diag"
	"vxc/internal/lexer"
)

func parseSrc(t *testing.T, src string) (*ast.Program, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag(0)
	toks := lexer.Lex(src, "t.vx", bag)
	prog := Parse("t.vx", toks, bag)
	return prog, bag
}

func TestParseFunctionWithGenericsAndBody(t *testing.T) {
	prog, bag := parseSrc(t, `fn id<T>(x: T): T { return x; }`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.All())
	}
	if len(prog.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(prog.Items))
	}
	fn, ok := prog.Items[0].(*ast.FuncItem)
	if !ok {
		t.Fatalf("expected *ast.FuncItem, got %T", prog.Items[0])
	}
	if fn.Name != "id" || len(fn.Generics) != 1 || fn.Generics[0].Name != "T" {
		t.Errorf("unexpected func shape: %+v", fn)
	}
	if len(fn.Body.Stmts) != 1 {
		t.Fatalf("expected 1 statement in body, got %d", len(fn.Body.Stmts))
	}
	if _, ok := fn.Body.Stmts[0].(*ast.ReturnStmt); !ok {
		t.Errorf("expected a return statement, got %T", fn.Body.Stmts[0])
	}
}

func TestParseStructLiteralVsBlockDisambiguation(t *testing.T) {
	prog, bag := parseSrc(t, `
fn f(): bool {
	if cond {
		return true;
	}
	return false;
}`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.All())
	}
	fn := prog.Items[0].(*ast.FuncItem)
	ifStmt, ok := fn.Body.Stmts[0].(*ast.IfStmt)
	if !ok {
		t.Fatalf("expected an if statement, got %T", fn.Body.Stmts[0])
	}
	if _, ok := ifStmt.Cond.(*ast.IdentExpr); !ok {
		t.Errorf("expected the condition to be a bare identifier, got %T", ifStmt.Cond)
	}
	if len(ifStmt.Then.Stmts) != 1 {
		t.Errorf("then-branch should have exactly one statement, got %d", len(ifStmt.Then.Stmts))
	}
}

func TestParseStructLiteralInExpressionPosition(t *testing.T) {
	prog, bag := parseSrc(t, `const p: Point = Point { x: 1, y: 2 };`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.All())
	}
	c := prog.Items[0].(*ast.ConstItem)
	lit, ok := c.Value.(*ast.StructLit)
	if !ok {
		t.Fatalf("expected *ast.StructLit, got %T", c.Value)
	}
	if lit.TypeName != "Point" || len(lit.Fields) != 2 {
		t.Errorf("unexpected struct literal: %+v", lit)
	}
}

func TestParseGenericCallVsComparison(t *testing.T) {
	prog, bag := parseSrc(t, `fn f(): i32 { return id<i32>(1); }`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.All())
	}
	fn := prog.Items[0].(*ast.FuncItem)
	ret := fn.Body.Stmts[0].(*ast.ReturnStmt)
	call, ok := ret.Value.(*ast.CallExpr)
	if !ok {
		t.Fatalf("expected a call expression, got %T", ret.Value)
	}
	if len(call.TypeArgs) != 1 {
		t.Fatalf("expected 1 explicit type argument, got %d", len(call.TypeArgs))
	}
	if len(call.Args) != 1 {
		t.Fatalf("expected 1 call argument, got %d", len(call.Args))
	}
}

func TestParseComparisonNotMistakenForGeneric(t *testing.T) {
	prog, bag := parseSrc(t, `fn f(): bool { return a < b; }`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.All())
	}
	fn := prog.Items[0].(*ast.FuncItem)
	ret := fn.Body.Stmts[0].(*ast.ReturnStmt)
	bin, ok := ret.Value.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("expected a binary expression, got %T", ret.Value)
	}
	if bin.Op != ast.BinLt {
		t.Errorf("expected '<' comparison, got op %v", bin.Op)
	}
}

func TestParseClosureVsBitwiseOr(t *testing.T) {
	prog, bag := parseSrc(t, `const f: fn(i32): i32 = |x: i32| x + 1;`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.All())
	}
	c := prog.Items[0].(*ast.ConstItem)
	closure, ok := c.Value.(*ast.ClosureExpr)
	if !ok {
		t.Fatalf("expected a closure expression, got %T", c.Value)
	}
	if len(closure.Params) != 1 || closure.Params[0].Name != "x" {
		t.Errorf("unexpected closure params: %+v", closure.Params)
	}
}

func TestParseBitwiseOrInInfixPosition(t *testing.T) {
	prog, bag := parseSrc(t, `const f: i32 = a | b;`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.All())
	}
	c := prog.Items[0].(*ast.ConstItem)
	bin, ok := c.Value.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("expected a binary expression, got %T", c.Value)
	}
	if bin.Op != ast.BinBitOr {
		t.Errorf("expected bitwise or, got op %v", bin.Op)
	}
}

func TestParseMutableReferenceType(t *testing.T) {
	prog, bag := parseSrc(t, `fn f(v: &Vec!): i32 { return 0; }`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.All())
	}
	fn := prog.Items[0].(*ast.FuncItem)
	ref, ok := fn.Params[0].Type.(*ast.RefType)
	if !ok {
		t.Fatalf("expected *ast.RefType, got %T", fn.Params[0].Type)
	}
	if !ref.Mutable {
		t.Errorf("expected the reference to be mutable")
	}
}

func TestParseUnionErrorType(t *testing.T) {
	prog, bag := parseSrc(t, `fn f(): i32 | error { return 0; }`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.All())
	}
	fn := prog.Items[0].(*ast.FuncItem)
	u, ok := fn.Ret.(*ast.UnionType)
	if !ok {
		t.Fatalf("expected *ast.UnionType, got %T", fn.Ret)
	}
	if len(u.Members) != 2 {
		t.Errorf("expected 2 union members, got %d", len(u.Members))
	}
}

func TestParseDeferAndMatchStatements(t *testing.T) {
	prog, bag := parseSrc(t, `
fn f(x: Option<i32>): i32 {
	defer cleanup();
	match x {
		Option.Some(v): return v;
		Option.None: return 0;
	}
}`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.All())
	}
	fn := prog.Items[0].(*ast.FuncItem)
	if _, ok := fn.Body.Stmts[0].(*ast.DeferStmt); !ok {
		t.Fatalf("expected a defer statement, got %T", fn.Body.Stmts[0])
	}
	m, ok := fn.Body.Stmts[1].(*ast.MatchStmt)
	if !ok {
		t.Fatalf("expected a match statement, got %T", fn.Body.Stmts[1])
	}
	if len(m.Arms) != 2 {
		t.Fatalf("expected 2 match arms, got %d", len(m.Arms))
	}
}

func TestParseImportFlavors(t *testing.T) {
	prog, bag := parseSrc(t, `
import "std.io";
from "std.io" import println;
export from "std.io" import println;
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.All())
	}
	if len(prog.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(prog.Items))
	}
	whole := prog.Items[0].(*ast.ImportItem)
	if whole.Kind != ast.ImportWhole {
		t.Errorf("expected ImportWhole, got %v", whole.Kind)
	}
	named := prog.Items[1].(*ast.ImportItem)
	if named.Kind != ast.ImportNamed || len(named.Names) != 1 || named.Reexport {
		t.Errorf("unexpected named import: %+v", named)
	}
	reexport := prog.Items[2].(*ast.ImportItem)
	if !reexport.Reexport {
		t.Errorf("expected the third import to be a re-export")
	}
}

func TestParseExternalBlock(t *testing.T) {
	prog, bag := parseSrc(t, `
external "C" {
	fn write(fd: i32, buf: *u8, len: u64): i64;
}`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.All())
	}
	ext := prog.Items[0].(*ast.ExternalItem)
	if ext.ABI != "C" || len(ext.Funcs) != 1 || ext.Funcs[0].Name != "write" {
		t.Errorf("unexpected external block: %+v", ext)
	}
}
