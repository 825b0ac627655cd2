package pipeline

import (
	"github.com/sourcelang/corec/internal/analyze"
	"github.com/sourcelang/corec/internal/ast"
	"github.com/sourcelang/corec/internal/config"
	"github.com/sourcelang/corec/internal/diagnostics"
	"github.com/sourcelang/corec/internal/optimize"
	"github.com/sourcelang/corec/internal/program"
	"github.com/sourcelang/corec/internal/typecheck"
)

// Processor is one stage of the pipeline. A Processor reads and writes
// PipelineContext in place and returns it, so Pipeline.Run's
// continue-on-error loop can accumulate every stage's diagnostics
// instead of stopping at the first failure.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// PipelineContext carries everything one compilation threads through
// the pipeline's stages: the entry module under
// construction, the shared Program/Bindings, accumulated diagnostics,
// and the facts each stage hands to the next.
type PipelineContext struct {
	Config config.PipelineConfig

	Program *program.Program
	Bindings *program.Bindings

	EntryPath string
	Module *ast.Module
	Instance *program.ModuleInstance

	Checker *typecheck.Checker
	Monomorphizer *typecheck.Monomorphizer

	OptimizeFacts *optimize.Facts
	AnalyzeFacts *analyze.Facts

	Analyzed *program.AnalyzedProgram

	Errors []*diagnostics.CompileError

	// Stopped is set by a Processor that hit an error severe enough
	// that later stages cannot run meaningfully (e.g. the module failed
	// to load at all); Pipeline.Run still calls every Processor so
	// every stage's diagnostics get collected, but a later stage should
	// check Stopped and no-op rather than operate on a nil Module.
	Stopped bool
}

// NewPipelineContext seeds a context for compiling the module at
// entryPath with the given Program/Bindings (already populated by the
// out-of-scope module loader) and config.
func NewPipelineContext(prog *program.Program, bindings *program.Bindings, entryPath string, cfg config.PipelineConfig) *PipelineContext {
	return &PipelineContext{
		Config: cfg,
		Program: prog,
		Bindings: bindings,
		EntryPath: entryPath,
	}
}

func (ctx *PipelineContext) fail(errs []*diagnostics.CompileError) {
	if len(errs) == 0 {
		return
	}
	ctx.Errors = append(ctx.Errors, errs...)
}
