package typecheck

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sourcelang/corec/internal/ast"
	"github.com/sourcelang/corec/internal/config"
	"github.com/sourcelang/corec/internal/program"
	"github.com/sourcelang/corec/internal/resolver"
	"github.com/sourcelang/corec/internal/types"
)

func setup(t *testing.T, mod *ast.Module) (*program.Program, *program.Bindings, *program.ModuleInstance) {
	t.Helper()
	prog := program.New(nil)
	bindings := program.NewBindings()
	info := prog.AddModule(mod.Path, mod)
	inst := prog.NewInstance(info.ID, -1)
	if errs := resolver.New(prog, bindings).Resolve(inst, mod); len(errs) != 0 {
		t.Fatalf("resolve failed: %v", errs)
	}
	return prog, bindings, inst
}

func TestInferArithmeticMatchesWidth(t *testing.T) {
	a := &ast.Identifier{Name: "a"}
	b := &ast.Identifier{Name: "b"}
	fn := &ast.FuncDecl{
		Name: "add",
		Params: []ast.Param{{Name: "a", Type: ast.TypeAnnotation{Elem: types.I(32)}}, {Name: "b", Type: ast.TypeAnnotation{Elem: types.I(32)}}},
		ReturnType: ast.TypeAnnotation{Elem: types.I(32)},
		Body: &ast.Block{Result: &ast.Binary{Op: ast.OpAdd, Left: a, Right: b}},
	}
	mod := &ast.Module{Path: "main", Decls: []ast.Stmt{fn}}
	prog, bindings, inst := setup(t, mod)

	c := New(prog, bindings, config.Default())
	errs := c.Check(inst, mod)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	got, ok := c.TypeOf(inst.ID, fn.Body.Result)
	if !ok || !got.Equal(types.I(32)) {
		t.Fatalf("expected i32, got %v (ok=%v)", got, ok)
	}
}

func TestMismatchedReturnTypeIsRejected(t *testing.T) {
	fn := &ast.FuncDecl{
		Name: "bad",
		ReturnType: ast.TypeAnnotation{Elem: types.Bool()},
		Body: &ast.Block{Result: &ast.Literal{Kind: ast.LitInt, Int: 1}},
	}
	mod := &ast.Module{Path: "main", Decls: []ast.Stmt{fn}}
	prog, bindings, inst := setup(t, mod)

	c := New(prog, bindings, config.Default())
	errs := c.Check(inst, mod)
	if len(errs) == 0 {
		t.Fatalf("expected a return-type mismatch error")
	}
}

func TestGenericCallSiteProducesOneInstantiationPerSignature(t *testing.T) {
	// fn identity<T>(x: T) -> T { x }
	idFn := &ast.FuncDecl{
		Name: "identity",
		TypeParams: []string{"T"},
		Params: []ast.Param{{Name: "x", Type: ast.TypeAnnotation{Elem: types.Var{Name: "T"}}}},
		ReturnType: ast.TypeAnnotation{Elem: types.Var{Name: "T"}},
		Body: &ast.Block{Result: &ast.Identifier{Name: "x"}},
	}
	callI32 := &ast.Call{Callee: "identity", Args: []ast.Expr{&ast.Literal{Kind: ast.LitInt, Int: 1}}}
	callI32Again := &ast.Call{Callee: "identity", Args: []ast.Expr{&ast.Literal{Kind: ast.LitInt, Int: 2}}}
	caller := &ast.FuncDecl{
		Name: "use_identity",
		ReturnType: ast.TypeAnnotation{Elem: types.I(64)},
		Body: &ast.Block{
			Stmts: []ast.Stmt{&ast.ExprStmt{X: callI32}},
			Result: callI32Again,
		},
	}
	mod := &ast.Module{Path: "main", Decls: []ast.Stmt{idFn, caller}}
	prog, bindings, inst := setup(t, mod)

	c := New(prog, bindings, config.Default())
	errs := c.Check(inst, mod)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	insts := c.Instantiations()
	if len(insts) != 1 {
		t.Fatalf("expected exactly one instantiation (same signature reused), got %d", len(insts))
	}
}

func TestUnknownAnnotationWarnsNotErrors(t *testing.T) {
	fn := &ast.FuncDecl{
		Name: "tagged",
		ReturnType: ast.TypeAnnotation{Elem: types.Bool()},
		Body: &ast.Block{Result: &ast.Literal{Kind: ast.LitBool, Bool: true}},
	}
	fn.Annotations = []ast.Annotation{{Name: "not_a_real_annotation"}}
	mod := &ast.Module{Path: "main", Decls: []ast.Stmt{fn}}
	prog, bindings, inst := setup(t, mod)

	var warnings bytes.Buffer
	c := New(prog, bindings, config.Default())
	c.Warn = &warnings
	errs := c.Check(inst, mod)
	if len(errs) != 0 {
		t.Fatalf("unknown annotations must not fail the pipeline, got: %v", errs)
	}
	if !strings.Contains(warnings.String(), "not_a_real_annotation") {
		t.Fatalf("expected a warning naming the unknown annotation, got %q", warnings.String())
	}
}

func TestConflictingReentrancyAnnotationsAreRejected(t *testing.T) {
	fn := &ast.FuncDecl{
		Name: "tagged",
		ReturnType: ast.TypeAnnotation{Elem: types.Bool()},
		Body: &ast.Block{Result: &ast.Literal{Kind: ast.LitBool, Bool: true}},
	}
	fn.Annotations = []ast.Annotation{{Name: "reentrant"}, {Name: "nonreentrant"}}
	mod := &ast.Module{Path: "main", Decls: []ast.Stmt{fn}}
	prog, bindings, inst := setup(t, mod)

	c := New(prog, bindings, config.Default())
	errs := c.Check(inst, mod)
	if len(errs) == 0 {
		t.Fatalf("expected a reentrant/nonreentrant conflict error")
	}
}
