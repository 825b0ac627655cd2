package analyze

import "github.com/sourcelang/corec/internal/ast"

// refVariants collects, for every function with at least one
// ref-parameter, the distinct masks observed across its call sites:
// one character per parameter position, 'M' for a call site whose
// corresponding argument is a mutable lvalue, 'N' otherwise. Non-ref
// positions are always 'N' since they cannot affect which
// monomorphized variant a backend must emit.
func (a *analysis) refVariants(facts *Facts) {
	for _, fn := range a.mod.Funcs() {
		hasRef := false
		for _, p := range fn.Params {
			if p.IsRef {
				hasRef = true
				break
			}
		}
		if !hasRef {
			continue
		}
		sym := a.symOf(fn)
		if sym == nil {
			continue
		}
		masks := make(map[string]bool)
		for _, cs := range a.calls {
			if cs.callee != sym {
				continue
			}
			masks[maskFor(fn, cs)] = true
		}
		if len(masks) > 0 {
			facts.RefVariantMasks[sym] = masks
		}
	}
}

// maskFor builds fn's ref-variant mask for one call site, ignoring the
// Receiver slot's position offset: cs.isLValue is indexed Receiver-
// first (when present) then Args, which lines up with fn.Params only
// when Receiver desugars to Params[0] -- the resolver/checker enforce
// that receiver-syntax calls are to a function whose first parameter
// is the receiver, so the indices correspond directly.
func maskFor(fn *ast.FuncDecl, cs callSite) string {
	mask := make([]byte, len(fn.Params))
	for i, p := range fn.Params {
		mask[i] = 'N'
		if !p.IsRef {
			continue
		}
		if i < len(cs.isLValue) && cs.isLValue[i] {
			mask[i] = 'M'
		}
	}
	return string(mask)
}
