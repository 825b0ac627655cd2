// Package optimize implements the Optimizer and Residualizer: the
// Optimizer computes which expressions, conditions, and variable
// initializers fold to a compile-time constant and which functions are
// foldable in their entirety; the Residualizer rewrites the AST to
// replace those expressions with literals, and the two alternate to a
// fixpoint bounded by config.Bounds.ResidualizerCeiling.
//
// This package is a consumer of cte.Evaluator, not a reimplementation
// of it: every fold attempt goes through TryEvaluate.
package optimize

import (
	"github.com/sourcelang/corec/internal/ast"
	"github.com/sourcelang/corec/internal/config"
	"github.com/sourcelang/corec/internal/cte"
	"github.com/sourcelang/corec/internal/program"
	"github.com/sourcelang/corec/internal/symbol"
)

// Facts is the Optimizer's output: the sets of nodes proven to fold to
// a constant, keyed by node identity within one ModuleInstance.
type Facts struct {
	ConstexprValues map[ast.Expr]cte.Value
	ConstexprConditions map[ast.Expr]bool
	ConstexprInits map[*ast.VarDecl]cte.Value
	FoldableFunctions map[string]bool
}

func newFacts() *Facts {
	return &Facts{
		ConstexprValues: make(map[ast.Expr]cte.Value),
		ConstexprConditions: make(map[ast.Expr]bool),
		ConstexprInits: make(map[*ast.VarDecl]cte.Value),
		FoldableFunctions: make(map[string]bool),
	}
}

// Optimizer drives the CTE over every expression in a module instance,
// recording what folds.
type Optimizer struct {
	Program *program.Program
	Bindings *program.Bindings
	Bounds config.Bounds
}

func New(prog *program.Program, bindings *program.Bindings, bounds config.Bounds) *Optimizer {
	return &Optimizer{Program: prog, Bindings: bindings, Bounds: bounds}
}

// Analyze walks every function in mod within instanceID and records
// every expression the CTE can fold.
func (o *Optimizer) Analyze(instanceID int, mod *ast.Module, constants map[*symbol.Symbol]cte.Value) *Facts {
	facts := newFacts()
	for _, fn := range mod.Funcs() {
		if fn.IsExternal || fn.Body == nil {
			continue
		}
		o.walkBlock(instanceID, fn.Body, facts, constants)
		facts.FoldableFunctions[fn.Name] = o.isFoldable(instanceID, fn)
	}
	for _, v := range mod.Vars() {
		if v.Init == nil {
			continue
		}
		o.walkExpr(instanceID, v.Init, facts, constants)
		ev := cte.New(o.Program, o.Bindings, o.Bounds, constants)
		if val, ok := ev.TryEvaluate(instanceID, v.Init); ok {
			facts.ConstexprInits[v] = val
		}
	}
	return facts
}

// isFoldable reports whether fn takes no arguments and its entire body
// evaluates with no seeded constants -- i.e. it is callable at compile
// time regardless of call site.
func (o *Optimizer) isFoldable(instanceID int, fn *ast.FuncDecl) bool {
	if fn.IsExternal || fn.Body == nil || len(fn.Params) != 0 {
		return false
	}
	ev := cte.New(o.Program, o.Bindings, o.Bounds, nil)
	_, ok := ev.TryEvaluate(instanceID, fn.Body)
	return ok
}

func (o *Optimizer) walkBlock(instanceID int, b *ast.Block, facts *Facts, constants map[*symbol.Symbol]cte.Value) {
	for _, stmt := range b.Stmts {
		o.walkStmt(instanceID, stmt, facts, constants)
	}
	if b.Result != nil {
		o.tryFold(instanceID, b.Result, facts, constants)
		o.walkExpr(instanceID, b.Result, facts, constants)
	}
}

func (o *Optimizer) walkStmt(instanceID int, stmt ast.Stmt, facts *Facts, constants map[*symbol.Symbol]cte.Value) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		o.tryFold(instanceID, s.X, facts, constants)
		o.walkExpr(instanceID, s.X, facts, constants)
	case *ast.ReturnStmt:
		if s.Value != nil {
			o.tryFold(instanceID, s.Value, facts, constants)
			o.walkExpr(instanceID, s.Value, facts, constants)
		}
	case *ast.VarDecl:
		if s.Init != nil {
			o.walkExpr(instanceID, s.Init, facts, constants)
			ev := cte.New(o.Program, o.Bindings, o.Bounds, constants)
			if v, ok := ev.TryEvaluate(instanceID, s.Init); ok {
				facts.ConstexprInits[s] = v
			}
		}
	case *ast.ConditionalStmt:
		o.tryFold(instanceID, s.Cond, facts, constants)
		o.walkExpr(instanceID, s.Cond, facts, constants)
		o.walkBlock(instanceID, s.Then, facts, constants)
		if s.Else != nil {
			o.walkBlock(instanceID, s.Else, facts, constants)
		}
	}
}

func (o *Optimizer) tryFold(instanceID int, e ast.Expr, facts *Facts, constants map[*symbol.Symbol]cte.Value) {
	ev := cte.New(o.Program, o.Bindings, o.Bounds, constants)
	v, ok := ev.TryEvaluate(instanceID, e)
	if !ok {
		return
	}
	facts.ConstexprValues[e] = v
	if v.Kind == cte.KBool {
		facts.ConstexprConditions[e] = v.B
	}
}

func (o *Optimizer) walkExpr(instanceID int, expr ast.Expr, facts *Facts, constants map[*symbol.Symbol]cte.Value) {
	switch e := expr.(type) {
	case *ast.Binary:
		o.walkExpr(instanceID, e.Left, facts, constants)
		o.walkExpr(instanceID, e.Right, facts, constants)
	case *ast.Unary:
		o.walkExpr(instanceID, e.Operand, facts, constants)
	case *ast.Call:
		if e.Receiver != nil {
			o.walkExpr(instanceID, e.Receiver, facts, constants)
		}
		for _, a := range e.Args {
			o.walkExpr(instanceID, a, facts, constants)
		}
	case *ast.Index:
		o.walkExpr(instanceID, e.Collection, facts, constants)
		o.walkExpr(instanceID, e.IndexExpr, facts, constants)
	case *ast.Member:
		o.walkExpr(instanceID, e.Target, facts, constants)
	case *ast.ArrayLiteral:
		for _, el := range e.Elements {
			o.walkExpr(instanceID, el, facts, constants)
		}
	case *ast.TupleLiteral:
		for _, el := range e.Elements {
			o.walkExpr(instanceID, el, facts, constants)
		}
	case *ast.Block:
		o.walkBlock(instanceID, e, facts, constants)
	case *ast.Conditional:
		o.tryFold(instanceID, e.Cond, facts, constants)
		o.walkExpr(instanceID, e.Cond, facts, constants)
		o.walkExpr(instanceID, e.Then, facts, constants)
		o.walkExpr(instanceID, e.Else, facts, constants)
	case *ast.Cast:
		o.walkExpr(instanceID, e.Value, facts, constants)
	case *ast.Assignment:
		o.walkExpr(instanceID, e.RHS, facts, constants)
	case *ast.Range:
		o.walkExpr(instanceID, e.From, facts, constants)
		o.walkExpr(instanceID, e.To, facts, constants)
	case *ast.Length:
		o.walkExpr(instanceID, e.Value, facts, constants)
	case *ast.Iteration:
		o.walkExpr(instanceID, e.Subject, facts, constants)
	case *ast.Repeat:
		o.tryFold(instanceID, e.Cond, facts, constants)
		o.walkExpr(instanceID, e.Cond, facts, constants)
	}
}
