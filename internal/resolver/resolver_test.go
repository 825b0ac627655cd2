package resolver

import (
	"testing"

	"github.com/sourcelang/corec/internal/ast"
	"github.com/sourcelang/corec/internal/program"
	"github.com/sourcelang/corec/internal/types"
)

func buildProgram() (*program.Program, *program.Bindings, *program.ModuleInstance) {
	prog := program.New(nil)
	bindings := program.NewBindings()
	info := prog.AddModule("main", &ast.Module{Path: "main"})
	inst := prog.NewInstance(info.ID, -1)
	return prog, bindings, inst
}

// fn add(a: i32, b: i32) -> i32 { a + b }
func addFunc() *ast.FuncDecl {
	a := &ast.Identifier{Name: "a"}
	b := &ast.Identifier{Name: "b"}
	return &ast.FuncDecl{
		Name: "add",
		Params: []ast.Param{{Name: "a", Type: ast.TypeAnnotation{Elem: types.I(32)}}, {Name: "b", Type: ast.TypeAnnotation{Elem: types.I(32)}}},
		ReturnType: ast.TypeAnnotation{Elem: types.I(32)},
		Body: &ast.Block{
			Result: &ast.Binary{Op: ast.OpAdd, Left: a, Right: b},
		},
	}
}

func TestResolveBindsParamsAndBody(t *testing.T) {
	fn := addFunc()
	mod := &ast.Module{Path: "main", Decls: []ast.Stmt{fn}}
	prog, bindings, inst := buildProgram()
	r := New(prog, bindings)

	errs := r.Resolve(inst, mod)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	bin := fn.Body.Result.(*ast.Binary)
	left := bin.Left.(*ast.Identifier)
	right := bin.Right.(*ast.Identifier)

	leftSym, ok := bindings.Lookup(inst.ID, left)
	if !ok {
		t.Fatalf("left operand %q not bound", left.Name)
	}
	rightSym, ok := bindings.Lookup(inst.ID, right)
	if !ok {
		t.Fatalf("right operand %q not bound", right.Name)
	}
	if leftSym == rightSym {
		t.Fatalf("distinct parameters resolved to the same symbol")
	}

	fnSym, ok := bindings.Lookup(inst.ID, fn)
	if !ok || fnSym.Name != "add" {
		t.Fatalf("function declaration itself was not bound")
	}
}

func TestResolveRejectsUndefinedIdentifier(t *testing.T) {
	fn := &ast.FuncDecl{
		Name: "bad",
		ReturnType: ast.TypeAnnotation{Elem: types.I(32)},
		Body: &ast.Block{Result: &ast.Identifier{Name: "nope"}},
	}
	mod := &ast.Module{Path: "main", Decls: []ast.Stmt{fn}}
	prog, bindings, inst := buildProgram()
	r := New(prog, bindings)

	errs := r.Resolve(inst, mod)
	if len(errs) == 0 {
		t.Fatalf("expected an undefined-name error")
	}
}

func TestAssignmentToUndeclaredNameCreatesVariable(t *testing.T) {
	assign := &ast.Assignment{LHS: &ast.Identifier{Name: "x"}, RHS: &ast.Literal{Kind: ast.LitInt, Int: 1}}
	fn := &ast.FuncDecl{
		Name: "make_x",
		Body: &ast.Block{
			Stmts: []ast.Stmt{&ast.ExprStmt{X: assign}},
			Result: &ast.Identifier{Name: "x"},
		},
	}
	mod := &ast.Module{Path: "main", Decls: []ast.Stmt{fn}}
	prog, bindings, inst := buildProgram()
	r := New(prog, bindings)

	errs := r.Resolve(inst, mod)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if !bindings.CreatesNewVariable(inst.ID, assign) {
		t.Fatalf("expected assignment to an undeclared name to create a new variable")
	}
}

func TestDuplicateParamNameRejected(t *testing.T) {
	fn := &ast.FuncDecl{
		Name: "dup",
		Params: []ast.Param{{Name: "a", Type: ast.TypeAnnotation{Elem: types.I(32)}}, {Name: "a", Type: ast.TypeAnnotation{Elem: types.I(32)}}},
		Body: &ast.Block{Result: &ast.Identifier{Name: "a"}},
	}
	mod := &ast.Module{Path: "main", Decls: []ast.Stmt{fn}}
	prog, bindings, inst := buildProgram()
	r := New(prog, bindings)

	errs := r.Resolve(inst, mod)
	if len(errs) == 0 {
		t.Fatalf("expected a duplicate-parameter-name error")
	}
}
