package analyze

import "github.com/sourcelang/corec/internal/symbol"

// reachability walks the call graph from every exported function and
// every runtime-initialized global's initializer to a fixpoint. The
// graph is already pruned of dead branches by buildCallGraph's live
// tracking.
func (a *analysis) reachability(facts *Facts) {
	var worklist []*symbol.Symbol
	for _, fn := range a.mod.Funcs() {
		if !fn.IsExported {
			continue
		}
		if sym := a.symOf(fn); sym != nil {
			worklist = append(worklist, sym)
		}
	}
	for _, v := range a.mod.Vars() {
		if v.Init == nil {
			continue
		}
		sym := a.symOf(v)
		if sym == nil {
			continue
		}
		for _, cs := range a.callsFrom[sym] {
			worklist = append(worklist, cs.callee)
		}
	}
	for len(worklist) > 0 {
		sym := worklist[0]
		worklist = worklist[1:]
		if facts.Reachable[sym] {
			continue
		}
		facts.Reachable[sym] = true
		for _, cs := range a.callsFrom[sym] {
			if !facts.Reachable[cs.callee] {
				worklist = append(worklist, cs.callee)
			}
		}
	}
}
