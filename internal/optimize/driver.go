package optimize

import (
	"github.com/sourcelang/corec/internal/ast"
	"github.com/sourcelang/corec/internal/config"
	"github.com/sourcelang/corec/internal/cte"
	"github.com/sourcelang/corec/internal/diagnostics"
	"github.com/sourcelang/corec/internal/program"
	"github.com/sourcelang/corec/internal/symbol"
)

// Run alternates the Optimizer and Residualizer over mod until a
// round produces no change, or config.Bounds.ResidualizerCeiling
// rounds have run without reaching one. Exceeding the ceiling is the
// one way this stage itself reports an internal error, since it
// signals the two passes are oscillating rather than converging.
func Run(prog *program.Program, bindings *program.Bindings, bounds config.Bounds, instanceID int, mod *ast.Module, constants map[*symbol.Symbol]cte.Value) (*Facts, error) {
	var facts *Facts
	for round := 0; round < bounds.ResidualizerCeiling; round++ {
		opt := New(prog, bindings, bounds)
		facts = opt.Analyze(instanceID, mod, constants)
		if !NewResidualizer(facts).Apply(mod) {
			return facts, nil
		}
	}
	return facts, diagnostics.Internal(diagnostics.StageOptimize, "optimizer/residualizer loop did not converge within the configured ceiling")
}
