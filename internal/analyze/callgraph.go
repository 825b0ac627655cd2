package analyze

import (
	"github.com/sourcelang/corec/internal/ast"
	"github.com/sourcelang/corec/internal/symbol"
)

// buildCallGraph walks every function body and every runtime-
// initialized global's initializer once, recording every call site:
// its caller and callee by Symbol identity, and which argument
// positions are mutable lvalues. The reference-variant pass needs
// this per call site; other passes reuse the plain caller->callee
// edges. A global's own Symbol stands in as the caller for its
// initializer expression, so it can seed reachability the same way an
// exported function does.
func (a *analysis) buildCallGraph() {
	for _, fn := range a.mod.Funcs() {
		if fn.Body == nil {
			continue
		}
		sym := a.symOf(fn)
		if sym == nil {
			continue
		}
		a.walkBlockForCalls(sym, fn.Body, true)
	}
	for _, v := range a.mod.Vars() {
		if v.Init == nil {
			continue
		}
		sym := a.symOf(v)
		if sym == nil {
			continue
		}
		a.walkExprForCalls(sym, v.Init, true)
	}
}

func (a *analysis) walkBlockForCalls(caller *symbol.Symbol, b *ast.Block, live bool) {
	for _, stmt := range b.Stmts {
		a.walkStmtForCalls(caller, stmt, live)
	}
	if b.Result != nil {
		a.walkExprForCalls(caller, b.Result, live)
	}
}

func (a *analysis) walkStmtForCalls(caller *symbol.Symbol, stmt ast.Stmt, live bool) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		a.walkExprForCalls(caller, s.X, live)
	case *ast.ReturnStmt:
		if s.Value != nil {
			a.walkExprForCalls(caller, s.Value, live)
		}
	case *ast.VarDecl:
		if s.Init != nil {
			a.walkExprForCalls(caller, s.Init, live)
		}
	case *ast.ConditionalStmt:
		a.walkExprForCalls(caller, s.Cond, live)
		a.walkBlockForCalls(caller, s.Then, live && a.branchLive(s.Cond, true))
		if s.Else != nil {
			a.walkBlockForCalls(caller, s.Else, live && a.branchLive(s.Cond, false))
		}
	}
}

func (a *analysis) walkExprForCalls(caller *symbol.Symbol, expr ast.Expr, live bool) {
	switch e := expr.(type) {
	case *ast.Binary:
		a.walkExprForCalls(caller, e.Left, live)
		a.walkExprForCalls(caller, e.Right, live)
	case *ast.Unary:
		a.walkExprForCalls(caller, e.Operand, live)
	case *ast.Call:
		var lvals []bool
		if e.Receiver != nil {
			lvals = append(lvals, a.isMutableLValue(e.Receiver))
			a.walkExprForCalls(caller, e.Receiver, live)
		}
		for _, arg := range e.Args {
			lvals = append(lvals, a.isMutableLValue(arg))
			a.walkExprForCalls(caller, arg, live)
		}
		callee := a.symOf(e)
		if callee == nil {
			break
		}
		cs := callSite{caller: caller, callee: callee, call: e, isLValue: lvals}
		if live {
			a.calls = append(a.calls, cs)
			a.callsFrom[caller] = append(a.callsFrom[caller], cs)
		}
	case *ast.Index:
		a.walkExprForCalls(caller, e.Collection, live)
		a.walkExprForCalls(caller, e.IndexExpr, live)
	case *ast.Member:
		a.walkExprForCalls(caller, e.Target, live)
	case *ast.ArrayLiteral:
		for _, el := range e.Elements {
			a.walkExprForCalls(caller, el, live)
		}
	case *ast.TupleLiteral:
		for _, el := range e.Elements {
			a.walkExprForCalls(caller, el, live)
		}
	case *ast.Block:
		a.walkBlockForCalls(caller, e, live)
	case *ast.Conditional:
		a.walkExprForCalls(caller, e.Cond, live)
		a.walkExprForCalls(caller, e.Then, live && a.branchLive(e.Cond, true))
		a.walkExprForCalls(caller, e.Else, live && a.branchLive(e.Cond, false))
	case *ast.Cast:
		a.walkExprForCalls(caller, e.Value, live)
	case *ast.Assignment:
		a.walkExprForCalls(caller, e.RHS, live)
	case *ast.Range:
		a.walkExprForCalls(caller, e.From, live)
		a.walkExprForCalls(caller, e.To, live)
	case *ast.Length:
		a.walkExprForCalls(caller, e.Value, live)
	case *ast.Iteration:
		a.walkExprForCalls(caller, e.Subject, live)
		a.walkExprForCalls(caller, e.Body, live)
	case *ast.Repeat:
		a.walkExprForCalls(caller, e.Cond, live)
		a.walkExprForCalls(caller, e.Body, live)
	case *ast.Process:
		a.walkExprForCalls(caller, e.Command, live)
	}
}

// isMutableLValue reports whether expr is an identifier or
// member/index path whose root identifier is bound to a mutable
// Symbol (a `mut` variable or a ref-parameter).
func (a *analysis) isMutableLValue(e ast.Expr) bool {
	switch e.(type) {
	case *ast.Identifier, *ast.Member, *ast.Index:
		root := a.rootIdentifierSymbol(e)
		return root != nil && root.IsMutable
	default:
		return false
	}
}
