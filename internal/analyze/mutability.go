package analyze

import (
	"github.com/sourcelang/corec/internal/ast"
	"github.com/sourcelang/corec/internal/symbol"
)

// mutability runs two sub-computations: per-ref-parameter mutation
// (fixpoint over the call graph) and global mutability classification.
func (a *analysis) mutability(facts *Facts) {
	for _, fn := range a.mod.Funcs() {
		sym := a.symOf(fn)
		if sym == nil {
			continue
		}
		facts.ParamMutated[sym] = make([]bool, len(fn.Params))
	}

	changed := true
	for changed {
		changed = false
		for _, fn := range a.mod.Funcs() {
			if fn.Body == nil {
				continue
			}
			sym := a.symOf(fn)
			if sym == nil {
				continue
			}
			directlyAssigned := a.directlyAssignedSymbols(fn)
			for i := range fn.Params {
				if !fn.Params[i].IsRef || facts.ParamMutated[sym][i] {
					continue
				}
				paramSym := a.paramSymbol(fn, i)
				if paramSym != nil && directlyAssigned[paramSym] {
					facts.ParamMutated[sym][i] = true
					changed = true
				}
			}
		}
		// Propagate "passed into a mutated callee slot" and "callee is
		// external" across call sites.
		for _, cs := range a.calls {
			calleeExternal := cs.callee.IsExternal
			for slot, isLV := range cs.isLValue {
				if !isLV {
					continue
				}
				mutatedBySlot := calleeExternal
				if slot < len(facts.ParamMutated[cs.callee]) && facts.ParamMutated[cs.callee][slot] {
					mutatedBySlot = true
				}
				if !mutatedBySlot {
					continue
				}
				callerFn, ok := cs.caller.Declaration.(*ast.FuncDecl)
				if !ok {
					continue
				}
				argSym := a.callArgSymbol(cs, slot)
				if argSym == nil {
					continue
				}
				for i, p := range callerFn.Params {
					if !p.IsRef || facts.ParamMutated[cs.caller][i] {
						continue
					}
					if a.paramSymbol(callerFn, i) == argSym {
						facts.ParamMutated[cs.caller][i] = true
						changed = true
					}
				}
			}
		}
	}

	a.classifyGlobals(facts)
}

// paramSymbol returns fn's i'th parameter's own Symbol, the same
// pointer every reference to that parameter within fn's body resolves
// to.
func (a *analysis) paramSymbol(fn *ast.FuncDecl, i int) *symbol.Symbol {
	return a.symOf(ast.ParamRef{Fn: fn, Index: i})
}

// directlyAssignedSymbols returns the set of Symbols that are the root
// identifier of some Assignment LHS in fn's body.
func (a *analysis) directlyAssignedSymbols(fn *ast.FuncDecl) map[*symbol.Symbol]bool {
	out := make(map[*symbol.Symbol]bool)
	var walkExpr func(ast.Expr)
	var walkStmt func(ast.Stmt)
	var walkBlock func(*ast.Block)

	walkBlock = func(b *ast.Block) {
		for _, s := range b.Stmts {
			walkStmt(s)
		}
		if b.Result != nil {
			walkExpr(b.Result)
		}
	}
	walkStmt = func(s ast.Stmt) {
		switch st := s.(type) {
		case *ast.ExprStmt:
			walkExpr(st.X)
		case *ast.ConditionalStmt:
			walkBlock(st.Then)
			if st.Else != nil {
				walkBlock(st.Else)
			}
		}
	}
	walkExpr = func(e ast.Expr) {
		switch ex := e.(type) {
		case *ast.Assignment:
			if root := a.rootIdentifierSymbol(ex.LHS); root != nil {
				out[root] = true
			}
		case *ast.Block:
			walkBlock(ex)
		case *ast.Conditional:
			walkExpr(ex.Then)
			walkExpr(ex.Else)
		case *ast.Iteration:
			walkExpr(ex.Body)
		case *ast.Repeat:
			walkExpr(ex.Body)
		}
	}
	if fn.Body != nil {
		walkBlock(fn.Body)
	}
	return out
}

func (a *analysis) rootIdentifierSymbol(e ast.Expr) *symbol.Symbol {
	for {
		switch n := e.(type) {
		case *ast.Identifier:
			return a.symOf(n)
		case *ast.Member:
			e = n.Target
		case *ast.Index:
			e = n.Collection
		default:
			return nil
		}
	}
}

func (a *analysis) callArgSymbol(cs callSite, slot int) *symbol.Symbol {
	if cs.call.Receiver != nil {
		if slot == 0 {
			return a.rootIdentifierSymbol(cs.call.Receiver)
		}
		slot--
	}
	if slot < 0 || slot >= len(cs.call.Args) {
		return nil
	}
	return a.rootIdentifierSymbol(cs.call.Args[slot])
}

// classifyGlobals classifies each global: Mutable iff declared mutable
// and written somewhere; an immutable-but-not-foldable global is
// NonMutableRuntime; an immutable foldable global (scalar constexpr,
// or array-literal/range initializer) is Constexpr.
func (a *analysis) classifyGlobals(facts *Facts) {
	written := a.globalsWritten(facts)
	for _, v := range a.mod.Vars() {
		sym := a.symOf(v)
		if sym == nil {
			continue
		}
		switch {
		case v.IsMutable && written[sym]:
			facts.GlobalKind[sym] = Mutable
		case isFoldableInitializer(v.Init):
			facts.GlobalKind[sym] = Constexpr
		default:
			facts.GlobalKind[sym] = NonMutableRuntime
		}
	}
}

func isFoldableInitializer(init ast.Expr) bool {
	switch init.(type) {
	case *ast.Literal, *ast.ArrayLiteral, *ast.Range:
		return true
	default:
		return false
	}
}

// globalsWritten finds every global Symbol directly assigned in any
// function body (reachable or not), or assigned through a mutated
// ref-parameter slot bound to that global at some call site.
func (a *analysis) globalsWritten(facts *Facts) map[*symbol.Symbol]bool {
	globalSyms := make(map[*symbol.Symbol]bool)
	for _, v := range a.mod.Vars() {
		if sym := a.symOf(v); sym != nil {
			globalSyms[sym] = true
		}
	}
	out := make(map[*symbol.Symbol]bool)
	for _, fn := range a.mod.Funcs() {
		for sym := range a.directlyAssignedSymbols(fn) {
			if globalSyms[sym] {
				out[sym] = true
			}
		}
	}
	for _, cs := range a.calls {
		for slot, isLV := range cs.isLValue {
			if !isLV {
				continue
			}
			mutated := cs.callee.IsExternal
			if slot < len(facts.ParamMutated[cs.callee]) && facts.ParamMutated[cs.callee][slot] {
				mutated = true
			}
			if !mutated {
				continue
			}
			if sym := a.callArgSymbol(cs, slot); globalSyms[sym] {
				out[sym] = true
			}
		}
	}
	return out
}
