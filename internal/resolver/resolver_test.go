package resolver

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"vxc/internal/ast"
	"vxc/internal/diag"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestResolveWorkspaceImportSplicesExports(t *testing.T) {
	ws := t.TempDir()
	writeFile(t, filepath.Join(ws, "mathx.vx"), `
export fn square(x: i32): i32 { return x * x; }
fn helper(x: i32): i32 { return x; }
`)
	mainFile := filepath.Join(ws, "main.vx")
	writeFile(t, mainFile, `import "mathx";`)

	bag := diag.NewBag(0)
	r := New(Roots{Workspace: ws}, bag)
	prog := &ast.Program{Items: []ast.Item{&ast.ImportItem{Path: "mathx", Kind: ast.ImportWhole}}}
	r.Resolve(prog, mainFile)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.All())
	}
	if len(prog.Items) != 1 {
		t.Fatalf("expected 1 spliced item (only the exported fn), got %d", len(prog.Items))
	}
	fn, ok := prog.Items[0].(*ast.FuncItem)
	if !ok || fn.Name != "square" {
		t.Fatalf("expected spliced func 'square', got %+v", prog.Items[0])
	}
}

func TestResolveNamedImportStillSplicesExternals(t *testing.T) {
	ws := t.TempDir()
	writeFile(t, filepath.Join(ws, "io.vx"), `
external "C" {
	fn write(fd: i32, buf: *u8, len: u64): i64;
}
export fn println(s: string): void { return; }
`)
	mainFile := filepath.Join(ws, "main.vx")
	writeFile(t, mainFile, `from "io" import println;`)

	bag := diag.NewBag(0)
	r := New(Roots{Workspace: ws}, bag)
	prog := &ast.Program{Items: []ast.Item{&ast.ImportItem{Path: "io", Kind: ast.ImportNamed, Names: []string{"println"}}}}
	r.Resolve(prog, mainFile)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.All())
	}
	var sawExternal, sawFunc bool
	for _, it := range prog.Items {
		switch it.(type) {
		case *ast.ExternalItem:
			sawExternal = true
		case *ast.FuncItem:
			sawFunc = true
		}
	}
	if !sawExternal {
		t.Error("expected the external block to be spliced even though only println was named")
	}
	if !sawFunc {
		t.Error("expected println itself to be spliced")
	}
}

func TestResolveStdlibPlatformPriority(t *testing.T) {
	stdlib := t.TempDir()
	dir := filepath.Join(stdlib, "io", "src")
	writeFile(t, filepath.Join(dir, "lib.vx"), `export fn generic(): void { return; }`)
	writeFile(t, filepath.Join(dir, "lib."+runtime.GOOS+".vx"), `export fn specific(): void { return; }`)

	bag := diag.NewBag(0)
	r := New(Roots{Stdlib: stdlib}, bag)
	path, err := r.resolveStdlib("io")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(path) != "lib."+runtime.GOOS+".vx" {
		t.Errorf("expected the os-specific file to shadow lib.vx, got %s", path)
	}
}

func TestResolveCyclicImportIsFatal(t *testing.T) {
	ws := t.TempDir()
	writeFile(t, filepath.Join(ws, "a.vx"), `import "b";`)
	writeFile(t, filepath.Join(ws, "b.vx"), `import "a";`)

	bag := diag.NewBag(0)
	r := New(Roots{Workspace: ws}, bag)
	aFile := filepath.Join(ws, "a.vx")
	prog := &ast.Program{Items: []ast.Item{&ast.ImportItem{Path: "b", Kind: ast.ImportWhole}}}
	r.loading[aFile] = true
	r.order = append(r.order, aFile)
	r.Resolve(prog, aFile)
	if !bag.HasErrors() {
		t.Fatal("expected a cyclic import diagnostic")
	}
}
