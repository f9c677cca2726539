// Package compiler wires the lexer, parser, module resolver, ownership
// analyzer, and code generator into a single forward dataflow: lex the
// entry source; parse tokens into an AST; for each import, recursively
// resolve and lex+parse the imported file, splicing its exported items in;
// run the four analysis passes; lower the AST to LLVM IR. It is the core
// pipeline's single entry point — an external driver is expected to call
// Compile and map the returned diagnostics to an exit code.
//
// Each stage is attempted in order and a failing stage short-circuits the
// rest: a stage that leaves an Error-severity diagnostic in the bag stops
// the pipeline before the next stage runs, but within a stage every
// independent unit of work still runs to completion and reports its own
// diagnostics.
package compiler

import (
	"fmt"
	"os"

	"vxc/internal/ast"
	"vxc/internal/codegen"
	"vxc/internal/diag"
	"vxc/internal/lexer"
	"vxc/internal/parser"
	"vxc/internal/resolver"
	"vxc/internal/sema"
)

// Result is everything one compilation produced. CG is nil whenever the
// pipeline stopped before code generation (lex/parse/resolve/analysis
// errors); callers must check Diags.HasErrors() before using CG.
type Result struct {
	Diags *diag.Bag
	Prog  *ast.Program
	CG    *codegen.Context
}

// Dispose releases the LLVM context/module/builder owned by a successful
// Result's Context, if any. Safe to call on a Result with a nil CG.
func (r *Result) Dispose() {
	if r.CG != nil {
		r.CG.Dispose()
	}
}

// CompileFile reads path, runs it through the full pipeline, and returns
// the accumulated diagnostics alongside the generated IR context.
func CompileFile(path string, roots resolver.Roots, opt codegen.Options) *Result {
	src, err := os.ReadFile(path)
	if err != nil {
		bag := diag.NewBag(1)
		bag.Append(diag.Diagnostic{Severity: diag.Internal, Code: "IO001", Message: fmt.Sprintf("cannot read %q: %v", path, err)})
		return &Result{Diags: bag}
	}
	return Compile(string(src), path, roots, opt)
}

// Compile runs src (already read, attributed to file for spans) through
// the pipeline.
func Compile(src, file string, roots resolver.Roots, opt codegen.Options) *Result {
	bag := diag.NewBag(0)

	toks := lexer.Lex(src, file, bag)
	prog := parser.Parse(file, toks, bag)
	if bag.HasErrors() {
		return &Result{Diags: bag, Prog: prog}
	}

	resolver.New(roots, bag).Resolve(prog, file)
	if bag.HasErrors() {
		return &Result{Diags: bag, Prog: prog}
	}

	sema.New(prog, bag).Analyze()
	if bag.HasErrors() {
		return &Result{Diags: bag, Prog: prog}
	}

	cg := codegen.Generate(prog, bag, opt)
	return &Result{Diags: bag, Prog: prog, CG: cg}
}

// Exit codes: 0 success, 1 user source errors (lex, parse, analyze — i.e.
// any error-severity diagnostic that isn't Internal), 2 internal errors
// (codegen failure, I/O, or a genuine ICE). Invalid usage (exit 3) is the
// driver's concern since it is raised before Compile ever runs.
const (
	ExitOK       = 0
	ExitSourceErr = 1
	ExitInternal  = 2
)

// ExitCode maps a Result to the driver's exit status.
func ExitCode(r *Result) int {
	sawInternal := false
	sawError := false
	for _, d := range r.Diags.All() {
		switch d.Severity {
		case diag.Internal:
			sawInternal = true
		case diag.Error:
			// Code generation failures are internal errors, not source errors.
			if len(d.Code) >= 7 && d.Code[:7] == "CODEGEN" {
				sawInternal = true
			} else {
				sawError = true
			}
		}
	}
	switch {
	case sawInternal:
		return ExitInternal
	case sawError:
		return ExitSourceErr
	default:
		return ExitOK
	}
}
