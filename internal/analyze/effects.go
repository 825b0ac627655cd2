package analyze

import (
	"github.com/sourcelang/corec/internal/ast"
	"github.com/sourcelang/corec/internal/symbol"
)

// effects computes writes_global and is_pure as two monotone fixpoints
// over the call graph. writes_global(f) holds iff f directly assigns a
// global, calls an external/unknown function, or calls some g with
// writes_global(g). is_pure(f) holds iff f writes no global, contains
// no Process expression, mutates no ref-parameter of its own, and
// every reachable callee is itself pure.
func (a *analysis) effects(facts *Facts) {
	globalSyms := make(map[*symbol.Symbol]bool)
	for _, v := range a.mod.Vars() {
		if sym := a.symOf(v); sym != nil {
			globalSyms[sym] = true
		}
	}

	directWrite := make(map[*symbol.Symbol]bool)
	hasProcess := make(map[*symbol.Symbol]bool)
	mutatesOwnRef := make(map[*symbol.Symbol]bool)
	for _, fn := range a.mod.Funcs() {
		sym := a.symOf(fn)
		if sym == nil || fn.Body == nil {
			continue
		}
		for argSym := range a.directlyAssignedSymbols(fn) {
			if globalSyms[argSym] {
				directWrite[sym] = true
			}
		}
		hasProcess[sym] = containsProcess(fn.Body)
		for _, mutated := range facts.ParamMutated[sym] {
			if mutated {
				mutatesOwnRef[sym] = true
				break
			}
		}
	}

	for _, fn := range a.mod.Funcs() {
		sym := a.symOf(fn)
		if sym == nil {
			continue
		}
		if fn.IsExternal || directWrite[sym] {
			facts.WritesGlobal[sym] = true
		}
	}
	changed := true
	for changed {
		changed = false
		for _, cs := range a.calls {
			if facts.WritesGlobal[cs.caller] {
				continue
			}
			calleeWrites := cs.callee.IsExternal || facts.WritesGlobal[cs.callee]
			if calleeWrites {
				facts.WritesGlobal[cs.caller] = true
				changed = true
			}
		}
	}

	for _, fn := range a.mod.Funcs() {
		sym := a.symOf(fn)
		if sym == nil {
			continue
		}
		if facts.WritesGlobal[sym] || hasProcess[sym] || mutatesOwnRef[sym] || fn.IsExternal {
			facts.IsPure[sym] = false
		} else {
			facts.IsPure[sym] = true
		}
	}
	changed = true
	for changed {
		changed = false
		for _, cs := range a.calls {
			if !facts.IsPure[cs.caller] {
				continue
			}
			if !facts.IsPure[cs.callee] {
				facts.IsPure[cs.caller] = false
				changed = true
			}
		}
	}
}

func containsProcess(b *ast.Block) bool {
	found := false
	var walkExpr func(ast.Expr)
	var walkStmt func(ast.Stmt)
	var walkBlock func(*ast.Block)

	walkBlock = func(blk *ast.Block) {
		if found || blk == nil {
			return
		}
		for _, s := range blk.Stmts {
			walkStmt(s)
		}
		if blk.Result != nil {
			walkExpr(blk.Result)
		}
	}
	walkStmt = func(s ast.Stmt) {
		if found {
			return
		}
		switch st := s.(type) {
		case *ast.ExprStmt:
			walkExpr(st.X)
		case *ast.ReturnStmt:
			if st.Value != nil {
				walkExpr(st.Value)
			}
		case *ast.VarDecl:
			if st.Init != nil {
				walkExpr(st.Init)
			}
		case *ast.ConditionalStmt:
			walkExpr(st.Cond)
			walkBlock(st.Then)
			walkBlock(st.Else)
		}
	}
	walkExpr = func(e ast.Expr) {
		if found || e == nil {
			return
		}
		switch ex := e.(type) {
		case *ast.Process:
			found = true
		case *ast.Binary:
			walkExpr(ex.Left)
			walkExpr(ex.Right)
		case *ast.Unary:
			walkExpr(ex.Operand)
		case *ast.Call:
			if ex.Receiver != nil {
				walkExpr(ex.Receiver)
			}
			for _, arg := range ex.Args {
				walkExpr(arg)
			}
		case *ast.Index:
			walkExpr(ex.Collection)
			walkExpr(ex.IndexExpr)
		case *ast.Member:
			walkExpr(ex.Target)
		case *ast.ArrayLiteral:
			for _, el := range ex.Elements {
				walkExpr(el)
			}
		case *ast.TupleLiteral:
			for _, el := range ex.Elements {
				walkExpr(el)
			}
		case *ast.Block:
			walkBlock(ex)
		case *ast.Conditional:
			walkExpr(ex.Cond)
			walkExpr(ex.Then)
			walkExpr(ex.Else)
		case *ast.Cast:
			walkExpr(ex.Value)
		case *ast.Assignment:
			walkExpr(ex.RHS)
		case *ast.Range:
			walkExpr(ex.From)
			walkExpr(ex.To)
		case *ast.Length:
			walkExpr(ex.Value)
		case *ast.Iteration:
			walkExpr(ex.Subject)
			walkExpr(ex.Body)
		case *ast.Repeat:
			walkExpr(ex.Cond)
			walkExpr(ex.Body)
		}
	}
	walkBlock(b)
	return found
}
