// Package typecheck implements the Type Checker and Monomorphizer:
// bottom-up type inference over each resolved function body,
// annotation validation, and a call-site-driven instantiation queue
// that produces one concrete body per distinct TypeSignature observed
// for a generic function.
//
// Two types "unify" here iff they are Equal after substitution --
// there is no constraint solver, since generic functions are
// monomorphized by concrete call-site argument types instead of being
// inferred through one.
package typecheck

import (
	"io"
	"os"
	"strconv"

	"github.com/sourcelang/corec/internal/ast"
	"github.com/sourcelang/corec/internal/config"
	"github.com/sourcelang/corec/internal/diagnostics"
	"github.com/sourcelang/corec/internal/program"
	"github.com/sourcelang/corec/internal/types"
)

// Instantiation is one monomorphized copy of a generic function: a
// distinct TypeSignature gets a distinct mangled name and its own
// substitution, to be applied by the Monomorphizer stage that
// follows.
type Instantiation struct {
	Generic *ast.FuncDecl
	Sig types.TypeSignature
	Mangled string
	Subst types.Subst
	RetType types.Type
}

type exprKey struct {
	instanceID int
	node ast.Expr
}

// Checker walks one ModuleInstance's functions, inferring and
// recording a Type for every expression node, and drives the
// monomorphization worklist for generic call sites.
type Checker struct {
	Program *program.Program
	Bindings *program.Bindings
	Config config.PipelineConfig
	Warn io.Writer // unknown-annotation warnings; defaults to os.Stderr

	exprTypes map[exprKey]types.Type
	instantiations map[string]*Instantiation // keyed by TypeSignature.Key, dedupes the worklist
	instantiationOrder []*Instantiation // first-observed order, for deterministic output
	pending []*Instantiation
	errs []*diagnostics.CompileError

	instanceID int
	activeSubst types.Subst // non-nil while checking inside a generic instantiation
}

func New(prog *program.Program, bindings *program.Bindings, cfg config.PipelineConfig) *Checker {
	return &Checker{
		Program: prog, Bindings: bindings, Config: cfg,
		Warn: os.Stderr,
		exprTypes: make(map[exprKey]types.Type),
		instantiations: make(map[string]*Instantiation),
	}
}

func (c *Checker) fail(e ast.Node, format string, args ...interface{}) {
	c.errs = append(c.errs, diagnostics.New(diagnostics.StageTypeCheck, e.Loc(), format, args...))
}

// TypeOf returns the inferred type of expr within instanceID, if the
// checker has processed it.
func (c *Checker) TypeOf(instanceID int, expr ast.Expr) (types.Type, bool) {
	t, ok := c.exprTypes[exprKey{instanceID, expr}]
	return t, ok
}

func (c *Checker) setType(expr ast.Expr, t types.Type) types.Type {
	c.exprTypes[exprKey{c.instanceID, expr}] = t
	return t
}

// Instantiations returns every distinct monomorphized instantiation
// produced so far, in first-observed order -- the round-trip
// invariant requires stable ordering across identical runs.
func (c *Checker) Instantiations() []*Instantiation {
	return c.instantiationOrder
}

// Check runs the checker over every function in mod within inst,
// annotation-validating declarations and type-inferring bodies, and
// drains the monomorphization worklist to a fixpoint, since an
// instantiation may itself reference other generic functions.
func (c *Checker) Check(inst *program.ModuleInstance, mod *ast.Module) []*diagnostics.CompileError {
	c.instanceID = inst.ID
	c.errs = nil

	c.validateAnnotations(mod)

	for _, fn := range mod.Funcs() {
		if fn.IsExternal || fn.IsGeneric() {
			continue
		}
		c.checkFuncBody(fn, nil)
	}

	for len(c.pending) > 0 {
		next := c.pending[0]
		c.pending = c.pending[1:]
		c.checkFuncBody(next.Generic, next.Subst)
	}

	for _, v := range mod.Vars() {
		if v.Init != nil {
			t := c.inferExpr(v.Init)
			if v.Declared != nil && t != nil && !t.Equal(v.Declared.Elem) {
				c.fail(v, "variable %q declared as %s but initialized with %s", v.Name, v.Declared.Elem, t)
			}
		}
	}

	return c.errs
}

// validateAnnotations warns on any [[name(...)]] tag not in
// Config.KnownAnnotations -- unrecognized annotations do not fail the
// pipeline, since a later compiler version may simply know more tags
// than this one does -- and rejects [[reentrant]]/[[nonreentrant]]
// appearing together on the same declaration, which is a genuine
// contradiction rather than an unknown name.
func (c *Checker) validateAnnotations(mod *ast.Module) {
	check := func(subject string, anns []ast.Annotation) {
		var reentrant, nonreentrant *ast.Annotation
		for i := range anns {
			a := &anns[i]
			if !c.Config.IsKnownAnnotation(a.Name) {
				if c.Warn != nil {
					diagnostics.Warnf(c.Warn, a.Loc, "unknown annotation %q", a.Name)
				}
				continue
			}
			switch a.Name {
			case "reentrant":
				reentrant = a
			case "nonreentrant":
				nonreentrant = a
			}
		}
		if reentrant != nil && nonreentrant != nil {
			c.errs = append(c.errs, diagnostics.New(diagnostics.StageTypeCheck, nonreentrant.Loc,
				"%s cannot be both [[reentrant]] and [[nonreentrant]]", subject))
		}
	}
	for _, fn := range mod.Funcs() {
		check("function "+strconv.Quote(fn.Name), fn.Annotations)
	}
	for _, t := range mod.Types() {
		check("type "+strconv.Quote(t.Name), t.Annotations)
	}
	for _, v := range mod.Vars() {
		check("variable "+strconv.Quote(v.Name), v.Annotations)
	}
}

// CheckInstantiation type-checks a single monomorphized clone within
// inst, recording its own exprTypes entries keyed by the clone's
// (distinct) AST nodes.
func (c *Checker) CheckInstantiation(inst *program.ModuleInstance, fn *ast.FuncDecl) []*diagnostics.CompileError {
	c.instanceID = inst.ID
	c.errs = nil
	c.checkFuncBody(fn, nil)
	return c.errs
}

func applySubst(t types.Type, subst types.Subst) types.Type {
	if t == nil || subst == nil {
		return t
	}
	return t.Apply(subst)
}

func (c *Checker) checkFuncBody(fn *ast.FuncDecl, subst types.Subst) {
	if fn.Body == nil {
		return
	}
	prevSubst := c.activeSubst
	c.activeSubst = subst
	defer func() { c.activeSubst = prevSubst }()

	bodyType := c.inferBlock(fn.Body)
	want := applySubst(fn.ReturnType.Elem, subst)
	if want != nil && fn.Body.Result != nil && bodyType != nil && !bodyType.Equal(want) {
		c.fail(fn, "function %q returns %s but is declared to return %s", fn.Name, bodyType, want)
	}
}
