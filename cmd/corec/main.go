// corec is a minimal demo entrypoint for the compiler core: it takes a
// single already-parsed module (no lexer/parser here -- front-door
// parsing and a driver CLI's flag surface are out of scope) and runs
// it through the standard pipeline, printing any diagnostics it
// collects.
package main

import (
	"fmt"
	"os"

	"github.com/sourcelang/corec/internal/ast"
	"github.com/sourcelang/corec/internal/config"
	"github.com/sourcelang/corec/internal/pipeline"
	"github.com/sourcelang/corec/internal/program"
)

// emptyModuleSource never resolves an import; a real embedder supplies
// its own program.ModuleSource backed by its own file/package loader.
type emptyModuleSource struct{}

func (emptyModuleSource) Load(importPath, fromModulePath string) (*ast.Module, error) {
	return nil, fmt.Errorf("no module source configured: cannot load %q", importPath)
}

func runDemo(mod *ast.Module) *pipeline.PipelineContext {
	prog := program.New(emptyModuleSource{})
	bindings := program.NewBindings()

	info := prog.AddModule(mod.Path, mod)
	inst := prog.NewInstance(info.ID, -1)

	ctx := pipeline.NewPipelineContext(prog, bindings, mod.Path, config.Default())
	ctx.Module = mod
	ctx.Instance = inst

	return pipeline.NewStandardPipeline().Run(ctx)
}

func main() {
	mod := &ast.Module{Path: "main"}
	final := runDemo(mod)

	if len(final.Errors) > 0 {
		for _, e := range final.Errors {
			fmt.Fprintln(os.Stderr, e.Error())
		}
		os.Exit(1)
	}

	fmt.Printf("compiled %s: %d reachable functions, %d used globals\n",
		mod.Path, len(final.AnalyzeFacts.Reachable), len(final.AnalyzeFacts.UsedGlobals))
}
