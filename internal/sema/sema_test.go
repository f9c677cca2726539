package sema

import (
	"testing"

	"vxc/internal/diag"
	"vxc/internal/lexer"
	"vxc/internal/parser"
)

func analyzeSrc(t *testing.T, src string) *diag.Bag {
	t.Helper()
	bag := diag.NewBag(0)
	toks := lexer.Lex(src, "t.vx", bag)
	prog := parser.Parse("t.vx", toks, bag)
	if bag.HasErrors() {
		t.Fatalf("unexpected lex/parse errors: %v", bag.All())
	}
	New(prog, bag).Analyze()
	return bag
}

func TestMutabilityRejectsAssignToImmutable(t *testing.T) {
	bag := analyzeSrc(t, `
fn f(): i32 {
	let x = 1;
	x = 2;
	return x;
}`)
	if !bag.HasErrors() {
		t.Fatal("expected an immutability violation")
	}
}

func TestMutabilityAllowsAssignToMutable(t *testing.T) {
	bag := analyzeSrc(t, `
fn f(): i32 {
	let! x = 1;
	x = 2;
	return x;
}`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.All())
	}
}

func TestMovesRejectsUseAfterMove(t *testing.T) {
	bag := analyzeSrc(t, `
fn use_(s: string): i32 { return 0; }
fn f(): i32 {
	let s = "hi";
	let t = s;
	return use_(s);
}`)
	if !bag.HasErrors() {
		t.Fatal("expected a use-after-move diagnostic")
	}
	found := false
	for _, d := range bag.All() {
		if d.Code == "SEMA010" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected SEMA010, got %v", bag.All())
	}
}

func TestMovesAllowsCopyTypeReuse(t *testing.T) {
	bag := analyzeSrc(t, `
fn f(): i32 {
	let x = 1;
	let y = x;
	return x + y;
}`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.All())
	}
}

func TestBorrowsRejectsOverlappingMutableAndShared(t *testing.T) {
	bag := analyzeSrc(t, `
fn make_vec(): Vec { return Vec {}; }
fn use_(v: &Vec): i32 { return 0; }
fn f(): i32 {
	let! v = make_vec();
	let a = &v;
	let b = &v!;
	use_(a);
	return use_(b);
}`)
	if !bag.HasErrors() {
		t.Fatal("expected an overlapping-borrows diagnostic")
	}
	found := false
	for _, d := range bag.All() {
		if d.Code == "SEMA020" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected SEMA020, got %v", bag.All())
	}
}

func TestBorrowsAllowsMultipleSharedBorrows(t *testing.T) {
	bag := analyzeSrc(t, `
fn make_vec(): Vec { return Vec {}; }
fn use_(v: &Vec): i32 { return 0; }
fn f(): i32 {
	let v = make_vec();
	let a = &v;
	let b = &v;
	use_(a);
	return use_(b);
}`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.All())
	}
}

func TestLifetimesRejectsReturningReferenceToLocal(t *testing.T) {
	bag := analyzeSrc(t, `
fn f(): &i32 {
	let x = 1;
	return &x;
}`)
	if !bag.HasErrors() {
		t.Fatal("expected a lifetime violation")
	}
}

func TestLifetimesAllowsReturningReferenceToParam(t *testing.T) {
	bag := analyzeSrc(t, `
fn f(x: &i32): &i32 {
	return x;
}`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.All())
	}
}

func TestAnalyzeIndexesStructsAndImpls(t *testing.T) {
	bag := diag.NewBag(0)
	toks := lexer.Lex(`
struct Point { x: i32, y: i32 }
impl Point {
	fn sum(self: &Point): i32 { return 0; }
}`, "t.vx", bag)
	prog := parser.Parse("t.vx", toks, bag)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.All())
	}
	a := New(prog, bag)
	if _, ok := a.structs["Point"]; !ok {
		t.Fatal("expected Point to be indexed as a struct")
	}
	if _, ok := a.impls["Point"]; !ok {
		t.Fatal("expected Point to have an indexed impl")
	}
	a.Analyze()
	if bag.HasErrors() {
		t.Fatalf("unexpected analysis errors: %v", bag.All())
	}
}
