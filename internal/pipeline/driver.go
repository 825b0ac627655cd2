package pipeline

import (
	"github.com/sourcelang/corec/internal/analyze"
	"github.com/sourcelang/corec/internal/ast"
	"github.com/sourcelang/corec/internal/cte"
	"github.com/sourcelang/corec/internal/diagnostics"
	"github.com/sourcelang/corec/internal/lower"
	"github.com/sourcelang/corec/internal/optimize"
	"github.com/sourcelang/corec/internal/program"
	"github.com/sourcelang/corec/internal/resolver"
	"github.com/sourcelang/corec/internal/symbol"
	"github.com/sourcelang/corec/internal/typecheck"
)

// NewStandardPipeline wires the stages, in order, into one Pipeline:
// load (supplied externally, not a Processor here since it's out of
// scope) -> resolve -> typecheck -> monomorphize -> lower ->
// optimize/residualize -> analyze -> freeze into an AnalyzedProgram.
// One small struct per stage, composed by the caller rather than
// hardcoded into one monolithic function.
func NewStandardPipeline() *Pipeline {
	return New(&ResolveProcessor{},
		&TypeCheckProcessor{},
		&MonomorphizeProcessor{},
		&LowerProcessor{},
		&OptimizeProcessor{},
		&AnalyzeProcessor{},
		&FreezeProcessor{})
}

// ResolveProcessor runs the Resolver stage.
type ResolveProcessor struct{}

func (p *ResolveProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Stopped || ctx.Module == nil {
		return ctx
	}
	r := resolver.New(ctx.Program, ctx.Bindings)
	ctx.fail(r.Resolve(ctx.Instance, ctx.Module))
	return ctx
}

// TypeCheckProcessor runs the Checker stage, leaving the
// checker itself on ctx so MonomorphizeProcessor can drain its
// instantiation worklist.
type TypeCheckProcessor struct{}

func (p *TypeCheckProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Stopped || ctx.Module == nil {
		return ctx
	}
	c := typecheck.New(ctx.Program, ctx.Bindings, ctx.Config)
	ctx.fail(c.Check(ctx.Instance, ctx.Module))
	ctx.Checker = c
	return ctx
}

// MonomorphizeProcessor drains the checker's instantiation worklist
// into independent concrete FuncDecls, resolving and
// type-checking each clone in isolation so its AST nodes never alias
// a sibling instantiation's or the generic original's.
type MonomorphizeProcessor struct{}

func (p *MonomorphizeProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Stopped || ctx.Module == nil || ctx.Checker == nil {
		return ctx
	}
	mm := typecheck.NewMonomorphizer()
	clones := mm.Drain(ctx.Module, ctx.Checker.Instantiations())
	ctx.Monomorphizer = mm

	r := resolver.New(ctx.Program, ctx.Bindings)
	for _, clone := range clones {
		ctx.fail(r.ResolveInstantiation(ctx.Instance, clone))
		ctx.fail(ctx.Checker.CheckInstantiation(ctx.Instance, clone))
	}
	return ctx
}

// LowerProcessor runs the Lowerer stage.
type LowerProcessor struct{}

func (p *LowerProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Stopped || ctx.Module == nil {
		return ctx
	}
	lower.New().LowerModule(ctx.Module)
	return ctx
}

// OptimizeProcessor runs the Optimizer/Residualizer fixpoint.
type OptimizeProcessor struct{}

func (p *OptimizeProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Stopped || ctx.Module == nil {
		return ctx
	}
	constants := map[*symbol.Symbol]cte.Value{}
	facts, err := optimize.Run(ctx.Program, ctx.Bindings, ctx.Config.Bounds, ctx.Instance.ID, ctx.Module, constants)
	ctx.OptimizeFacts = facts
	if err != nil {
		if ce, ok := err.(*diagnostics.CompileError); ok {
			ctx.fail([]*diagnostics.CompileError{ce})
		}
	}
	return ctx
}

// AnalyzeProcessor runs the six whole-program analysis passes.
type AnalyzeProcessor struct{}

func (p *AnalyzeProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Stopped || ctx.Module == nil {
		return ctx
	}
	var condValues map[ast.Expr]bool
	if ctx.OptimizeFacts != nil {
		condValues = ctx.OptimizeFacts.ConstexprConditions
	}
	facts, errs := analyze.Run(ctx.Module, ctx.Bindings, ctx.Instance.ID, condValues, analyze.PassAll)
	ctx.AnalyzeFacts = facts
	ctx.fail(errs)
	return ctx
}

// FreezeProcessor assembles the read-only AnalyzedProgram handoff view
// once every earlier stage has run.
type FreezeProcessor struct{}

func (p *FreezeProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Stopped || ctx.Module == nil {
		return ctx
	}
	ev := cte.New(ctx.Program, ctx.Bindings, ctx.Config.Bounds, nil)
	ctx.Analyzed = program.NewAnalyzedProgram(ctx.Program, ctx.Bindings, ctx.Module,
		ctx.AnalyzeFacts, ctx.OptimizeFacts,
		ctx.Instance.ID, nil, ev)
	return ctx
}
