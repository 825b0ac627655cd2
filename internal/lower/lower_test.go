package lower

import (
	"testing"

	"github.com/sourcelang/corec/internal/ast"
)

func TestLowerWrapsBareIterationBodyInBlock(t *testing.T) {
	bare := &ast.Identifier{Name: "x"}
	it := &ast.Iteration{Subject: &ast.ArrayLiteral{}, Body: bare, Binder: "x"}
	fn := &ast.FuncDecl{Name: "f", Body: &ast.Block{Result: it}}
	mod := &ast.Module{Path: "main", Decls: []ast.Stmt{fn}}

	New().LowerModule(mod)

	b, ok := it.Body.(*ast.Block)
	if !ok {
		t.Fatalf("expected iteration body to be wrapped in a block, got %T", it.Body)
	}
	if b.Result != bare {
		t.Fatalf("expected wrapped block's result to be the original bare expression")
	}
}

func TestLowerLeavesBlockBodyUntouched(t *testing.T) {
	block := &ast.Block{Result: &ast.Identifier{Name: "x"}}
	r := &ast.Repeat{Cond: &ast.Literal{Kind: ast.LitBool, Bool: true}, Body: block}
	fn := &ast.FuncDecl{Name: "f", Body: &ast.Block{Result: r}}
	mod := &ast.Module{Path: "main", Decls: []ast.Stmt{fn}}

	New().LowerModule(mod)

	if r.Body.(*ast.Block) != block {
		t.Fatalf("expected an already-block body to be reused, not rewrapped")
	}
}
