package pipeline

import (
	"testing"

	"github.com/sourcelang/corec/internal/analyze"
	"github.com/sourcelang/corec/internal/ast"
	"github.com/sourcelang/corec/internal/config"
	"github.com/sourcelang/corec/internal/program"
	"github.com/sourcelang/corec/internal/types"
)

func newContext(mod *ast.Module) (*PipelineContext, *program.ModuleInstance) {
	prog := program.New(nil)
	bindings := program.NewBindings()
	info := prog.AddModule(mod.Path, mod)
	inst := prog.NewInstance(info.ID, -1)
	ctx := NewPipelineContext(prog, bindings, mod.Path, config.Default())
	ctx.Module = mod
	ctx.Instance = inst
	return ctx, inst
}

// var x: i8 = 2*3+4 folds to a literal 10, and the Analyzer
// records it as a reachable-by-initializer constant global.
func TestEndToEndConstFoldingGlobal(t *testing.T) {
	init := &ast.Binary{
		Op: ast.OpAdd,
		Left: &ast.Binary{Op: ast.OpMul, Left: &ast.Literal{Kind: ast.LitInt, Int: 2}, Right: &ast.Literal{Kind: ast.LitInt, Int: 3}},
		Right: &ast.Literal{Kind: ast.LitInt, Int: 4},
	}
	decl := types.I(8)
	v := &ast.VarDecl{
		Name: "x", IsExported: true,
		Declared: &ast.TypeAnnotation{Elem: decl},
		Init: init,
	}
	mod := &ast.Module{Path: "main", Decls: []ast.Stmt{v}}

	ctx, _ := newContext(mod)
	final := NewStandardPipeline().Run(ctx)

	if len(final.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", final.Errors)
	}
	lit, ok := v.Init.(*ast.Literal)
	if !ok {
		t.Fatalf("expected global initializer to residualize to a literal, got %T", v.Init)
	}
	if lit.Kind != ast.LitInt || lit.Int != 10 {
		t.Fatalf("expected folded value 10, got %+v", lit)
	}
	if final.AnalyzeFacts == nil || !final.AnalyzeFacts.UsedGlobals["x"] {
		t.Fatalf("expected exported global x to be marked used")
	}
}

// `if true { 1 } else { 2 }` residualizes to the then-branch, and a
// second optimize pass over the already-residualized function leaves
// the folded result as it is (round-trip property).
func TestEndToEndDeadBranchElimination(t *testing.T) {
	fn := &ast.FuncDecl{
		Name: "pick", IsExported: true,
		ReturnType: ast.TypeAnnotation{Elem: types.I(8)},
		Body: &ast.Block{
			Result: &ast.Conditional{
				Cond: &ast.Literal{Kind: ast.LitBool, Bool: true},
				Then: &ast.Literal{Kind: ast.LitInt, Int: 1},
				Else: &ast.Literal{Kind: ast.LitInt, Int: 2},
			},
		},
	}
	mod := &ast.Module{Path: "main", Decls: []ast.Stmt{fn}}

	ctx, _ := newContext(mod)
	final := NewStandardPipeline().Run(ctx)
	if len(final.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", final.Errors)
	}

	lit, ok := fn.Body.Result.(*ast.Literal)
	if !ok {
		t.Fatalf("expected residualized result to be a literal, got %T", fn.Body.Result)
	}
	if lit.Kind != ast.LitInt || lit.Int != 1 {
		t.Fatalf("expected the true-branch value 1, got %+v", lit)
	}

	// Re-running optimize+residualize over the now-folded function must
	// produce facts and leave the folded result unchanged.
	mod2 := &ast.Module{Path: "main2", Decls: []ast.Stmt{fn}}
	ctx2, _ := newContext(mod2)
	ctx2.Module = mod2
	final2 := (&OptimizeProcessor{}).Process(ctx2)
	if final2.OptimizeFacts == nil {
		t.Fatalf("expected optimize facts on second pass")
	}
	if again, ok := fn.Body.Result.(*ast.Literal); !ok || again.Kind != ast.LitInt || again.Int != 1 {
		t.Fatalf("expected the second pass to leave the folded literal 1 in place, got %T", fn.Body.Result)
	}
}

// An exported function's Reentrant context and reachability both
// propagate to a helper it calls, and the final stage assembles a
// usable AnalyzedProgram handoff. The call passes the caller's own
// parameter, so the optimizer cannot fold it away before analysis.
func TestEndToEndReachabilityAndReentrancy(t *testing.T) {
	helper := &ast.FuncDecl{
		Name: "helper",
		Params: []ast.Param{{Name: "v", Type: ast.TypeAnnotation{Elem: types.I(8)}}},
		ReturnType: ast.TypeAnnotation{Elem: types.I(8)},
		Body: &ast.Block{Result: &ast.Identifier{Name: "v"}},
	}
	caller := &ast.FuncDecl{
		Name: "entry", IsExported: true,
		Params: []ast.Param{{Name: "n", Type: ast.TypeAnnotation{Elem: types.I(8)}}},
		ReturnType: ast.TypeAnnotation{Elem: types.I(8)},
		Body: &ast.Block{
			Result: &ast.Call{Callee: "helper", Args: []ast.Expr{&ast.Identifier{Name: "n"}}},
		},
	}
	mod := &ast.Module{Path: "main", Decls: []ast.Stmt{caller, helper}}

	ctx, _ := newContext(mod)
	final := NewStandardPipeline().Run(ctx)
	if len(final.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", final.Errors)
	}
	helperSym, ok := final.Bindings.Lookup(final.Instance.ID, helper)
	if !ok {
		t.Fatalf("expected a binding recorded for helper's own declaration")
	}
	if !final.AnalyzeFacts.Reachable[helperSym] {
		t.Fatalf("expected helper to be reachable from exported entry")
	}
	if final.AnalyzeFacts.ReentrancyContext[helperSym] != analyze.Reentrant {
		t.Fatalf("expected helper to inherit Reentrant from exported entry, got %v", final.AnalyzeFacts.ReentrancyContext[helperSym])
	}
	if final.Analyzed == nil {
		t.Fatalf("expected a frozen AnalyzedProgram to be assembled")
	}
	if final.Analyzed.EntryInstanceID != ctx.Instance.ID {
		t.Fatalf("expected AnalyzedProgram to carry the entry instance id")
	}
}
