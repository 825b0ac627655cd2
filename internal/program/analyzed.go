package program

import (
	"github.com/sourcelang/corec/internal/analyze"
	"github.com/sourcelang/corec/internal/ast"
	"github.com/sourcelang/corec/internal/cte"
	"github.com/sourcelang/corec/internal/optimize"
	"github.com/sourcelang/corec/internal/symbol"
	"github.com/sourcelang/corec/internal/types"
)

// AnalyzedProgram is the frozen handoff bundle given to backends: the
// merged module, the program, the final AnalysisFacts and
// OptimizationFacts, the entry instance id, the forced-tuple-types
// table, and five read-only query hooks. Nothing here is mutable by a
// backend -- every field is a value or a pointer to data the pipeline
// no longer writes to once this view is constructed.
type AnalyzedProgram struct {
	Program *Program
	Module *ast.Module
	AnalysisFacts *analyze.Facts
	OptimizeFacts *optimize.Facts
	EntryInstanceID int
	// ForcedTupleTypes maps a synthetic tuple type name (see
	// types.TupleTypeName) to the element types it was forced from, for
	// a backend that needs to materialize a concrete tuple record.
	ForcedTupleTypes map[string][]types.Type

	bindings *Bindings
	cte *cte.Evaluator
	entry *ModuleInstance
}

// NewAnalyzedProgram builds the frozen view. cteEval is a CTE
// evaluator seeded with whatever constants the pipeline resolved,
// reused (not reconstructed) by TryEvaluate so backend queries see the
// exact same bounds/constants the pipeline itself used.
func NewAnalyzedProgram(prog *Program,
	bindings *Bindings,
	mod *ast.Module,
	analysisFacts *analyze.Facts,
	optimizeFacts *optimize.Facts,
	entryInstanceID int,
	forcedTupleTypes map[string][]types.Type,
	cteEval *cte.Evaluator) *AnalyzedProgram {
	ap := &AnalyzedProgram{
		Program: prog,
		Module: mod,
		AnalysisFacts: analysisFacts,
		OptimizeFacts: optimizeFacts,
		EntryInstanceID: entryInstanceID,
		ForcedTupleTypes: forcedTupleTypes,
		bindings: bindings,
		cte: cteEval,
		entry: prog.Instance(entryInstanceID),
	}
	return ap
}

// BindingFor implements the `binding_for(instance, node) -> Symbol?`
// query hook.
func (ap *AnalyzedProgram) BindingFor(instanceID int, node ast.Node) (*symbol.Symbol, bool) {
	return ap.bindings.Lookup(instanceID, node)
}

// ResolveType implements `resolve_type(Type) -> Type`: named types
// resolve to themselves, since the type model has no aliasing layer
// left to collapse once monomorphization has run; this hook exists
// for a backend that wants a single normalization entry point rather
// than branching on whether a type is already concrete.
func (ap *AnalyzedProgram) ResolveType(t types.Type) types.Type {
	if t == nil {
		return nil
	}
	return t.Apply(nil)
}

// ConstexprCondition implements `constexpr_condition(instance, expr) ->
// bool?`.
func (ap *AnalyzedProgram) ConstexprCondition(expr ast.Expr) (bool, bool) {
	v, ok := ap.OptimizeFacts.ConstexprConditions[expr]
	return v, ok
}

// TryEvaluate implements `try_evaluate(instance, expr) -> CTValue?`.
func (ap *AnalyzedProgram) TryEvaluate(instanceID int, expr ast.Expr) (cte.Value, bool) {
	if ap.cte == nil {
		return cte.Value{}, false
	}
	return ap.cte.TryEvaluate(instanceID, expr)
}

// LookupTypeSymbol implements `lookup_type_symbol(instance, name) ->
// Symbol?` for the entry instance's own type namespace.
func (ap *AnalyzedProgram) LookupTypeSymbol(name string) (*symbol.Symbol, bool) {
	if ap.entry == nil {
		return nil, false
	}
	s, ok := ap.entry.Lookup(name)
	if !ok || s.Kind != symbol.Type {
		return nil, false
	}
	return s, true
}
