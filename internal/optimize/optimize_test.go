package optimize

import (
	"testing"

	"github.com/sourcelang/corec/internal/ast"
	"github.com/sourcelang/corec/internal/config"
	"github.com/sourcelang/corec/internal/program"
	"github.com/sourcelang/corec/internal/resolver"
)

func setup(t *testing.T, mod *ast.Module) (*program.Program, *program.Bindings, int) {
	t.Helper()
	prog := program.New(nil)
	bindings := program.NewBindings()
	info := prog.AddModule(mod.Path, mod)
	inst := prog.NewInstance(info.ID, -1)
	if errs := resolver.New(prog, bindings).Resolve(inst, mod); len(errs) != 0 {
		t.Fatalf("resolve failed: %v", errs)
	}
	return prog, bindings, inst.ID
}

func TestResidualizeFoldsConstantArithmetic(t *testing.T) {
	sum := &ast.Binary{Op: ast.OpAdd, Left: &ast.Literal{Kind: ast.LitInt, Int: 2}, Right: &ast.Literal{Kind: ast.LitInt, Int: 3}}
	fn := &ast.FuncDecl{Name: "five", Body: &ast.Block{Result: sum}}
	mod := &ast.Module{Path: "main", Decls: []ast.Stmt{fn}}
	prog, bindings, instanceID := setup(t, mod)

	facts, err := Run(prog, bindings, config.DefaultBounds(), instanceID, mod, nil)
	if err != nil {
		t.Fatalf("optimizer did not converge: %v", err)
	}
	if facts == nil {
		t.Fatalf("expected non-nil facts")
	}

	lit, ok := fn.Body.Result.(*ast.Literal)
	if !ok {
		t.Fatalf("expected the sum to residualize to a literal, got %T", fn.Body.Result)
	}
	if lit.Int != 5 {
		t.Fatalf("expected folded value 5, got %d", lit.Int)
	}
}

func TestResidualizeTakesConstantConditionalBranch(t *testing.T) {
	cond := &ast.Conditional{
		Cond: &ast.Literal{Kind: ast.LitBool, Bool: true},
		Then: &ast.Literal{Kind: ast.LitInt, Int: 1},
		Else: &ast.Literal{Kind: ast.LitInt, Int: 2},
	}
	fn := &ast.FuncDecl{Name: "pick", Body: &ast.Block{Result: cond}}
	mod := &ast.Module{Path: "main", Decls: []ast.Stmt{fn}}
	prog, bindings, instanceID := setup(t, mod)

	_, err := Run(prog, bindings, config.DefaultBounds(), instanceID, mod, nil)
	if err != nil {
		t.Fatalf("optimizer did not converge: %v", err)
	}

	lit, ok := fn.Body.Result.(*ast.Literal)
	if !ok || lit.Int != 1 {
		t.Fatalf("expected the conditional to residualize to literal 1, got %#v", fn.Body.Result)
	}
}

func TestNonConstantExpressionIsLeftAlone(t *testing.T) {
	param := &ast.Identifier{Name: "n"}
	fn := &ast.FuncDecl{
		Name: "identity",
		Params: []ast.Param{{Name: "n"}},
		Body: &ast.Block{Result: param},
	}
	mod := &ast.Module{Path: "main", Decls: []ast.Stmt{fn}}
	prog, bindings, instanceID := setup(t, mod)

	_, err := Run(prog, bindings, config.DefaultBounds(), instanceID, mod, nil)
	if err != nil {
		t.Fatalf("optimizer did not converge: %v", err)
	}
	if fn.Body.Result != param {
		t.Fatalf("expected a parameter reference to be left untouched")
	}
}
