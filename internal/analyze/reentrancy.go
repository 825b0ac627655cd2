package analyze

import (
	"github.com/sourcelang/corec/internal/ast"
	"github.com/sourcelang/corec/internal/diagnostics"
)

// reentrancy seeds each reachable function's initial context from its
// own [[reentrant]]/[[nonreentrant]] annotation, falling back to
// exported-implies-reentrant and external-implies-nonreentrant when
// unannotated, then propagates the context forward along call edges
// to a fixpoint. A reentrant path that reaches an external function
// explicitly annotated [[nonreentrant]] is a real conflict: it raises
// a CompileError naming the external rather than just leaving a fact
// for a caller to notice later.
func (a *analysis) reentrancy(facts *Facts) []*diagnostics.CompileError {
	for _, fn := range a.mod.Funcs() {
		sym := a.symOf(fn)
		if sym == nil || !facts.Reachable[sym] {
			continue
		}
		ctx := Unknown
		if fn.IsExported {
			ctx = Reentrant
		}
		if fn.IsExternal {
			ctx = NonReentrant
		}
		if fn.HasAnnotation("reentrant") {
			ctx = Reentrant
		}
		if fn.HasAnnotation("nonreentrant") {
			ctx = NonReentrant
		}
		if ctx != Unknown {
			facts.ReentrancyContext[sym] = ctx
		}
	}

	var errs []*diagnostics.CompileError
	reported := make(map[*ast.Call]bool)

	changed := true
	for changed {
		changed = false
		for _, fn := range a.mod.Funcs() {
			sym := a.symOf(fn)
			if sym == nil {
				continue
			}
			ctx, ok := facts.ReentrancyContext[sym]
			if !ok {
				continue
			}
			for _, cs := range a.callsFrom[sym] {
				if ctx == Reentrant && !reported[cs.call] {
					if calleeDecl, ok := cs.callee.Declaration.(*ast.FuncDecl); ok && calleeDecl.IsExternal && calleeDecl.HasAnnotation("nonreentrant") {
						errs = append(errs, diagnostics.New(diagnostics.StageAnalyze, cs.call.Loc(),
							"reentrant call reaches nonreentrant external %q", cs.callee.Name))
						reported[cs.call] = true
					}
				}
				cur, has := facts.ReentrancyContext[cs.callee]
				if !has {
					facts.ReentrancyContext[cs.callee] = ctx
					changed = true
					continue
				}
				// Reentrant dominates: once any caller propagates a
				// Reentrant context into a callee, that callee's
				// context is Reentrant even if another caller is not
				// (monotone: Unknown < NonReentrant < Reentrant).
				if ctx == Reentrant && cur != Reentrant {
					facts.ReentrancyContext[cs.callee] = Reentrant
					changed = true
				}
			}
		}
	}
	return errs
}
