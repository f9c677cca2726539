// Command vxc is the external driver: parse arguments, run the pipeline,
// print diagnostics, and map the result to an exit code. Compile returns a
// finished in-memory module, so there is no output-writer goroutine to
// wait on.
package main

import (
	"fmt"
	"os"
	"strings"

	"vxc/internal/codegen"
	"vxc/internal/compiler"
	"vxc/internal/config"
	"vxc/internal/resolver"
)

const exitUsage = 3

func run(opt config.Options) int {
	roots := resolver.Roots{Workspace: opt.WorkspaceRoot, Stdlib: opt.StdlibRoot}
	cgOpt := codegen.Options{
		ModuleName: moduleNameFor(opt.Src),
		OptLevel:   opt.OptLevel,
	}

	res := compiler.CompileFile(opt.Src, roots, cgOpt)
	defer res.Dispose()

	for _, d := range res.Diags.All() {
		fmt.Fprintln(os.Stderr, d)
	}

	code := compiler.ExitCode(res)
	if code != compiler.ExitOK || opt.Command == config.CmdCheck {
		return code
	}

	if opt.EmitLLVM {
		ir := res.CG.EmitLLVMIR()
		if opt.Out == "" {
			fmt.Println(ir)
		} else if err := os.WriteFile(opt.Out, []byte(ir), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "vxc: write %q: %s\n", opt.Out, err)
			return compiler.ExitInternal
		}
		return compiler.ExitOK
	}

	out := opt.Out
	if out == "" {
		out = defaultObjectPath(opt.Src)
	}
	if err := res.CG.WriteObject(out); err != nil {
		fmt.Fprintf(os.Stderr, "vxc: %s\n", err)
		return compiler.ExitInternal
	}
	return compiler.ExitOK
}

func moduleNameFor(src string) string {
	base := src
	if i := strings.LastIndexAny(base, "/\\"); i >= 0 {
		base = base[i+1:]
	}
	return strings.TrimSuffix(base, ".vx")
}

func defaultObjectPath(src string) string {
	return moduleNameFor(src) + ".o"
}

func main() {
	opt, err := config.ParseArgs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "vxc: %s\n", err)
		os.Exit(exitUsage)
	}
	os.Exit(run(opt))
}
