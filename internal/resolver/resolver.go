// Package resolver maps import paths to source files, parses them, and
// splices their exported items into the importing module's AST. File
// reading is a plain os.ReadFile from a resolved path, since the resolver
// always has a concrete path by the time it reads.
package resolver

import (
	"os"
	"path/filepath"
	"runtime"

	"vxc/internal/ast"
	"vxc/internal/diag"
	"vxc/internal/lexer"
	"vxc/internal/parser"
)

// Roots are the two filesystem anchors the compiler consumes.
type Roots struct {
	Workspace string
	Stdlib    string
}

// entry is one memoized (path -> parsed module) slot.
type entry struct {
	path string
	prog *ast.Program
}

// Resolver resolves import paths, parses the referenced file at most once
// per compilation, and detects import cycles. It holds no state beyond one
// compilation's cache.
type Resolver struct {
	roots   Roots
	diags   *diag.Bag
	cache   map[string]*entry
	loading map[string]bool // stack of currently-loading paths, for cycle detection
	order   []string
}

// New returns a Resolver rooted at roots, reporting into diags.
func New(roots Roots, diags *diag.Bag) *Resolver {
	return &Resolver{
		roots:   roots,
		diags:   diags,
		cache:   make(map[string]*entry),
		loading: make(map[string]bool),
	}
}

const stdlibSigil = "std."

// Resolve splices every import in prog, recursively, into prog.Items in
// place. importerFile is the absolute path of the file prog was parsed
// from, used to resolve relative imports.
func (r *Resolver) Resolve(prog *ast.Program, importerFile string) {
	var spliced []ast.Item
	for _, it := range prog.Items {
		imp, ok := it.(*ast.ImportItem)
		if !ok {
			spliced = append(spliced, it)
			continue
		}
		resolvedPath, err := r.resolvePath(imp.Path, importerFile)
		if err != nil {
			r.diags.Errorf(imp.Span(), "RESOLVE001", "cannot resolve import %q: %v", imp.Path, err)
			continue
		}
		mod, err := r.load(resolvedPath)
		if err != nil {
			r.diags.Errorf(imp.Span(), "RESOLVE002", "%v", err)
			continue
		}
		spliced = append(spliced, r.splice(imp, mod)...)
	}
	prog.Items = spliced
}

// splice implements the critical splicing rule: regardless of import
// flavor, every external block in the resolved module is spliced in
// unconditionally, because a named stdlib wrapper typically depends on
// foreign declarations colocated in the same file.
func (r *Resolver) splice(imp *ast.ImportItem, mod *ast.Program) []ast.Item {
	wantNamed := make(map[string]bool, len(imp.Names))
	for _, n := range imp.Names {
		wantNamed[n] = true
	}

	var out []ast.Item
	for _, it := range mod.Items {
		if ext, ok := it.(*ast.ExternalItem); ok {
			out = append(out, ext)
			continue
		}
		if !it.IsExported() {
			continue
		}
		switch imp.Kind {
		case ast.ImportNamed:
			if wantNamed[it.ItemName()] {
				out = append(out, it)
			}
		default: // ImportWhole, ImportNamespace
			out = append(out, it)
		}
	}
	return out
}

// load parses and caches the module at resolvedPath, recursively resolving
// its own imports first. A path re-entered while still on the loading stack
// is a cyclic-import diagnostic, reported once at the point of re-entry.
func (r *Resolver) load(resolvedPath string) (*ast.Program, error) {
	if e, ok := r.cache[resolvedPath]; ok {
		return e.prog, nil
	}
	if r.loading[resolvedPath] {
		return nil, cycleError(append(append([]string{}, r.order...), resolvedPath))
	}

	src, err := os.ReadFile(resolvedPath)
	if err != nil {
		return nil, err
	}

	r.loading[resolvedPath] = true
	r.order = append(r.order, resolvedPath)
	defer func() {
		delete(r.loading, resolvedPath)
		r.order = r.order[:len(r.order)-1]
	}()

	bag := diag.NewBag(0)
	toks := lexer.Lex(string(src), resolvedPath, bag)
	prog := parser.Parse(resolvedPath, toks, bag)
	for _, d := range bag.All() {
		r.diags.Append(d)
	}
	if bag.HasErrors() {
		return nil, nil
	}
	r.Resolve(prog, resolvedPath)

	r.cache[resolvedPath] = &entry{path: resolvedPath, prog: prog}
	return prog, nil
}

// resolvePath applies the three-rule priority chain: stdlib sigil, relative
// path, then workspace-relative fallback.
func (r *Resolver) resolvePath(path, importerFile string) (string, error) {
	switch {
	case len(path) >= len(stdlibSigil) && path[:len(stdlibSigil)] == stdlibSigil:
		return r.resolveStdlib(path[len(stdlibSigil):])
	case isRelative(path):
		return r.resolveRelative(path, importerFile)
	default:
		return r.resolveWorkspace(path)
	}
}

func isRelative(path string) bool {
	return len(path) >= 2 && path[0] == '.' && (path[1] == '/' || (len(path) >= 3 && path[1] == '.' && path[2] == '/'))
}

// resolveStdlib applies the platform/arch priority chain:
// lib.<os>.<arch>.vx → lib.<arch>.vx → lib.<os>.vx → lib.vx. The first
// existing file wins.
func (r *Resolver) resolveStdlib(module string) (string, error) {
	dir := filepath.Join(r.roots.Stdlib, module, "src")
	goos, goarch := runtime.GOOS, runtime.GOARCH
	candidates := []string{
		"lib." + goos + "." + goarch + ".vx",
		"lib." + goarch + ".vx",
		"lib." + goos + ".vx",
		"lib.vx",
	}
	for _, c := range candidates {
		p := filepath.Join(dir, c)
		if fileExists(p) {
			return p, nil
		}
	}
	return "", &notFoundError{module: module, tried: candidates}
}

func (r *Resolver) resolveRelative(path, importerFile string) (string, error) {
	base := filepath.Dir(importerFile)
	name := filepath.Join(base, path+".vx")
	if fileExists(name) {
		return name, nil
	}
	libName := filepath.Join(base, path, "lib.vx")
	if fileExists(libName) {
		return libName, nil
	}
	return "", &notFoundError{module: path, tried: []string{name, libName}}
}

func (r *Resolver) resolveWorkspace(path string) (string, error) {
	name := filepath.Join(r.roots.Workspace, path+".vx")
	if fileExists(name) {
		return name, nil
	}
	libName := filepath.Join(r.roots.Workspace, path, "lib.vx")
	if fileExists(libName) {
		return libName, nil
	}
	return "", &notFoundError{module: path, tried: []string{name, libName}}
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
