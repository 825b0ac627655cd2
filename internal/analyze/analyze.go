// Package analyze implements the Analyzer's six whole-program passes:
// Reachability, Reentrancy variants, Mutability, Reference variants,
// Effects/purity, and Usage/DCE. Each pass is gated by a bit in Passes
// so a backend can request only what it needs; later passes may read
// facts an earlier pass produced.
//
// Each pass lives in its own file and shares one walk-the-merged-module
// driver rather than re-walking the AST from scratch per pass.
package analyze

import (
	"github.com/sourcelang/corec/internal/ast"
	"github.com/sourcelang/corec/internal/diagnostics"
	"github.com/sourcelang/corec/internal/program"
	"github.com/sourcelang/corec/internal/symbol"
)

// Passes is a bitmask selecting which of the six passes to run, so a
// backend may request only what it needs.
type Passes uint8

const (
	PassReachability Passes = 1 << iota
	PassReentrancy
	PassMutability
	PassRefVariants
	PassEffects
	PassUsage

	PassAll = PassReachability | PassReentrancy | PassMutability | PassRefVariants | PassEffects | PassUsage
)

// Reentrancy tags a function's invocation context.
type Reentrancy int

const (
	Unknown Reentrancy = iota
	Reentrant
	NonReentrant
)

// GlobalMutability classifies one global variable.
type GlobalMutability int

const (
	Constexpr GlobalMutability = iota
	NonMutableRuntime
	Mutable
)

// Facts is the Analyzer's combined output across every pass that ran.
// Every per-declaration table is keyed by the declaration's own
// *symbol.Symbol rather than its source name: two distinct,
// non-generic functions or globals can share a name across merged
// modules, and a name-keyed table would silently let one clobber the
// other's facts.
type Facts struct {
	Reachable map[*symbol.Symbol]bool

	ReentrancyContext map[*symbol.Symbol]Reentrancy

	ParamMutated map[*symbol.Symbol][]bool // per-ref-param mutated
	GlobalKind map[*symbol.Symbol]GlobalMutability

	// RefVariantMasks[callee] is the set of distinct length-N masks
	// observed across call sites, each character 'M' (mutable lvalue
	// receiver) or 'N' (not).
	RefVariantMasks map[*symbol.Symbol]map[string]bool

	WritesGlobal map[*symbol.Symbol]bool
	IsPure map[*symbol.Symbol]bool

	// UsedGlobals/UsedTypes feed the merge-time DCE prune, which
	// operates over the merged module's flat declaration namespace --
	// these stay name-keyed since that pruning step has no narrower
	// notion of identity to key by.
	UsedGlobals map[string]bool
	UsedTypes map[string]bool
}

func newFacts() *Facts {
	return &Facts{
		Reachable: make(map[*symbol.Symbol]bool),
		ReentrancyContext: make(map[*symbol.Symbol]Reentrancy),
		ParamMutated: make(map[*symbol.Symbol][]bool),
		GlobalKind: make(map[*symbol.Symbol]GlobalMutability),
		RefVariantMasks: make(map[*symbol.Symbol]map[string]bool),
		WritesGlobal: make(map[*symbol.Symbol]bool),
		IsPure: make(map[*symbol.Symbol]bool),
		UsedGlobals: make(map[string]bool),
		UsedTypes: make(map[string]bool),
	}
}

// callSite records one call expression's caller and callee by their
// own Symbol identity, plus, for each argument position, whether that
// argument is a mutable-lvalue receiver (an identifier or lvalue path
// bound to a mutable variable).
type callSite struct {
	caller *symbol.Symbol
	callee *symbol.Symbol
	call *ast.Call
	isLValue []bool // per positional argument (Receiver counts as position 0 when present)
}

// analysis carries the shared call-graph/constexpr-condition context
// every pass reads; built once per Run so passes never re-walk the AST
// from scratch for graph-shaped facts.
type analysis struct {
	mod *ast.Module
	bindings *program.Bindings
	instanceID int
	calls []callSite
	callsFrom map[*symbol.Symbol][]callSite
	condValues map[ast.Expr]bool // folded truth value of each constexpr condition
}

// symOf resolves n's own Symbol within the instance being analyzed --
// for a FuncDecl/VarDecl this is the declaration's own binding,
// recorded by the resolver at predeclare time.
func (a *analysis) symOf(n ast.Node) *symbol.Symbol {
	sym, _ := a.bindings.Lookup(a.instanceID, n)
	return sym
}

// Run executes every pass selected by passes, in a fixed order (later
// passes may depend on facts earlier ones produced). Reentrancy is the
// only pass that can itself raise a CompileError -- a reentrant path
// reaching a nonreentrant external function is a real diagnostic, not
// just a fact.
func Run(mod *ast.Module, bindings *program.Bindings, instanceID int, condValues map[ast.Expr]bool, passes Passes) (*Facts, []*diagnostics.CompileError) {
	a := &analysis{mod: mod, bindings: bindings, instanceID: instanceID, callsFrom: make(map[*symbol.Symbol][]callSite), condValues: condValues}
	a.buildCallGraph()

	facts := newFacts()
	var errs []*diagnostics.CompileError
	if passes&PassReachability != 0 {
		a.reachability(facts)
	}
	if passes&PassReentrancy != 0 {
		errs = append(errs, a.reentrancy(facts)...)
	}
	if passes&PassMutability != 0 {
		a.mutability(facts)
	}
	if passes&PassRefVariants != 0 {
		a.refVariants(facts)
	}
	if passes&PassEffects != 0 {
		a.effects(facts)
	}
	if passes&PassUsage != 0 {
		a.usage(facts)
	}
	return facts, errs
}

// branchLive reports whether stmt/expr under a conditional whose test
// is in condValues should be visited: dead branches are never visited.
func (a *analysis) branchLive(cond ast.Expr, wantTrue bool) bool {
	v, ok := a.condValues[cond]
	if !ok {
		return true // condition not foldable: both branches are potentially live
	}
	return v == wantTrue
}
