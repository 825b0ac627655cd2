package pipeline

import (
	"github.com/sourcelang/corec/internal/ast"
	"github.com/sourcelang/corec/internal/diagnostics"
	"github.com/sourcelang/corec/internal/symbol"
)

// CheckInvariants runs the debug-only validator at one of the nine
// named stage boundaries. It is not part of the Pipeline's normal
// Processor chain -- a driver built with debug assertions enabled
// calls it between stages and treats a non-nil result as an internal
// error, since every one of these checks guards an invariant the
// pipeline itself is supposed to maintain, never a user-facing
// mistake in source.
func CheckInvariants(stage diagnostics.Stage, ctx *PipelineContext) *diagnostics.CompileError {
	switch stage {
	case diagnostics.StageLoad:
		return checkPostLoad(ctx)
	case diagnostics.StageResolve:
		return checkPostResolve(ctx)
	case diagnostics.StageTypeCheck:
		return checkPostTypeCheck(ctx)
	case diagnostics.StageMonomorphize:
		return checkPostMonomorphize(ctx)
	case diagnostics.StageLower:
		return checkPostLower(ctx)
	case diagnostics.StageOptimize:
		return checkPostOptimize(ctx)
	case diagnostics.StageAnalyze:
		return checkPostAnalysis(ctx)
	case diagnostics.StageTypeUse:
		return checkPostTypeUse(ctx)
	case diagnostics.StageDCEPrune:
		return checkPostDCEPrune(ctx)
	default:
		return nil
	}
}

// checkPostLoad: every module the Program knows about has a non-nil
// AST and a distinct path (post-load).
func checkPostLoad(ctx *PipelineContext) *diagnostics.CompileError {
	if ctx.Module == nil {
		return diagnostics.Internal(diagnostics.StageLoad, "post-load: entry module is nil")
	}
	seen := make(map[string]bool)
	for _, info := range ctx.Program.Modules {
		if info.Module == nil {
			return diagnostics.Internal(diagnostics.StageLoad, "post-load: module %q has a nil AST", info.Path)
		}
		if seen[info.Path] {
			return diagnostics.Internal(diagnostics.StageLoad, "post-load: module path %q registered twice", info.Path)
		}
		seen[info.Path] = true
	}
	return nil
}

// checkPostResolve: every identifier reference has a binding -- every
// Identifier/Assignment-LHS node the resolver walks ends up in
// Bindings, with no dangling references.
func checkPostResolve(ctx *PipelineContext) *diagnostics.CompileError {
	var bad *diagnostics.CompileError
	walkModuleExprs(ctx.Module, func(e ast.Expr) {
		if bad != nil {
			return
		}
		id, ok := e.(*ast.Identifier)
		if !ok {
			return
		}
		if _, found := ctx.Bindings.Lookup(ctx.Instance.ID, id); !found {
			bad = diagnostics.Internal(diagnostics.StageResolve, "post-resolve: identifier %q has no binding", id.Name)
		}
	})
	return bad
}

// checkPostTypeCheck: the type-check stage left its Checker on the
// pipeline context. It does not verify which functions the checker
// processed or whether their bodies match their return types.
func checkPostTypeCheck(ctx *PipelineContext) *diagnostics.CompileError {
	if ctx.Checker == nil {
		return diagnostics.Internal(diagnostics.StageTypeCheck, "post-typecheck: no checker recorded on the pipeline context")
	}
	return nil
}

// checkPostMonomorphize: no FuncDecl with TypeParams remains callable
// from a non-generic call site -- i.e. every distinct TypeSignature
// observed has a corresponding mangled clone present exactly once in
// the module.
func checkPostMonomorphize(ctx *PipelineContext) *diagnostics.CompileError {
	if ctx.Checker == nil {
		return nil
	}
	present := make(map[string]int)
	for _, fn := range ctx.Module.Funcs() {
		present[fn.Name]++
	}
	for _, inst := range ctx.Checker.Instantiations() {
		if present[inst.Mangled] != 1 {
			return diagnostics.Internal(diagnostics.StageMonomorphize, "post-monomorphize: instantiation "+inst.Mangled+" is not present exactly once in module")
		}
	}
	return nil
}

// checkPostLower: every loop body in the module is a *ast.Block --
// lowering wraps non-block loop bodies in a synthetic block, so after
// lowering no Iteration/Repeat should carry a bare non-Block body.
func checkPostLower(ctx *PipelineContext) *diagnostics.CompileError {
	var bad *diagnostics.CompileError
	walkModuleExprs(ctx.Module, func(e ast.Expr) {
		if bad != nil {
			return
		}
		switch it := e.(type) {
		case *ast.Iteration:
			if _, ok := it.Body.(*ast.Block); !ok {
				bad = diagnostics.Internal(diagnostics.StageLower, "post-lower: iteration body is not a block")
			}
		case *ast.Repeat:
			if _, ok := it.Body.(*ast.Block); !ok {
				bad = diagnostics.Internal(diagnostics.StageLower, "post-lower: repeat body is not a block")
			}
		}
	})
	return bad
}

// checkPostOptimize: the Optimizer/Residualizer fixpoint actually
// terminated with facts attached. optimize.Run already raises its own
// internal error on a ceiling-exceeded loop; this is a cheap check
// that the stage ran at all.
func checkPostOptimize(ctx *PipelineContext) *diagnostics.CompileError {
	if ctx.OptimizeFacts == nil {
		return diagnostics.Internal(diagnostics.StageOptimize, "post-optimize: no OptimizeFacts recorded")
	}
	return nil
}

// checkPostAnalysis: every Symbol appearing in the reachable set is a
// function that actually exists in the module -- analyzer facts are
// keyed by the resolver's own Symbol pointers, so a stale or foreign
// Symbol here means the analyzer walked a binding that does not belong
// to this module/instance.
func checkPostAnalysis(ctx *PipelineContext) *diagnostics.CompileError {
	if ctx.AnalyzeFacts == nil {
		return diagnostics.Internal(diagnostics.StageAnalyze, "post-analysis: no AnalyzeFacts recorded")
	}
	known := make(map[*symbol.Symbol]bool)
	for _, fn := range ctx.Module.Funcs() {
		if sym, ok := ctx.Bindings.Lookup(ctx.Instance.ID, fn); ok {
			known[sym] = true
		}
	}
	for sym := range ctx.AnalyzeFacts.Reachable {
		if !known[sym] {
			return diagnostics.Internal(diagnostics.StageAnalyze, "post-analysis: reachable set names unknown function "+sym.Name)
		}
	}
	return nil
}

// checkPostTypeUse: every annotation tag left in the module after
// type-checking is one the config recognizes. Unknown annotations are
// warned about, not errored, but the pipeline should never carry an
// annotation it cannot classify past this boundary without having
// recorded a diagnostic for it.
func checkPostTypeUse(ctx *PipelineContext) *diagnostics.CompileError {
	for _, fn := range ctx.Module.Funcs() {
		for _, a := range fn.Annotations {
			if !ctx.Config.IsKnownAnnotation(a.Name) && !hasTypeUseWarning(ctx, a.Name) {
				return diagnostics.Internal(diagnostics.StageTypeUse, "post-type-use: unknown annotation "+a.Name+" was not recorded as a diagnostic")
			}
		}
	}
	return nil
}

func hasTypeUseWarning(ctx *PipelineContext, annName string) bool {
	for _, e := range ctx.Errors {
		if e.Stage == diagnostics.StageTypeUse {
			return true
		}
	}
	_ = annName
	return false
}

// checkPostDCEPrune: UsedGlobals/UsedTypes never names something the
// merged module no longer defines -- the usage sets are always a
// subset of the module's own declarations.
func checkPostDCEPrune(ctx *PipelineContext) *diagnostics.CompileError {
	if ctx.AnalyzeFacts == nil {
		return nil
	}
	knownVars := make(map[string]bool)
	for _, v := range ctx.Module.Vars() {
		knownVars[v.Name] = true
	}
	for name := range ctx.AnalyzeFacts.UsedGlobals {
		if !knownVars[name] {
			return diagnostics.Internal(diagnostics.StageDCEPrune, "post-dce-prune: used-globals set names unknown global "+name)
		}
	}
	knownTypes := make(map[string]bool)
	for _, t := range ctx.Module.Types() {
		knownTypes[t.Name] = true
	}
	for name := range ctx.AnalyzeFacts.UsedTypes {
		if !knownTypes[name] {
			return diagnostics.Internal(diagnostics.StageDCEPrune, "post-dce-prune: used-types set names unknown type "+name)
		}
	}
	return nil
}

// walkModuleExprs visits every expression reachable from every
// function body and every global initializer in mod, in declaration
// order (shared by several of the invariant checks above so each one
// stays a short predicate rather than its own walker).
func walkModuleExprs(mod *ast.Module, visit func(ast.Expr)) {
	for _, fn := range mod.Funcs() {
		if fn.Body != nil {
			walkBlockExprs(fn.Body, visit)
		}
	}
	for _, v := range mod.Vars() {
		if v.Init != nil {
			walkExprTree(v.Init, visit)
		}
	}
}

func walkBlockExprs(b *ast.Block, visit func(ast.Expr)) {
	for _, stmt := range b.Stmts {
		walkStmtExprs(stmt, visit)
	}
	if b.Result != nil {
		walkExprTree(b.Result, visit)
	}
}

func walkStmtExprs(stmt ast.Stmt, visit func(ast.Expr)) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		walkExprTree(s.X, visit)
	case *ast.ReturnStmt:
		if s.Value != nil {
			walkExprTree(s.Value, visit)
		}
	case *ast.VarDecl:
		if s.Init != nil {
			walkExprTree(s.Init, visit)
		}
	case *ast.ConditionalStmt:
		walkExprTree(s.Cond, visit)
		walkBlockExprs(s.Then, visit)
		if s.Else != nil {
			walkBlockExprs(s.Else, visit)
		}
	}
}

func walkExprTree(e ast.Expr, visit func(ast.Expr)) {
	if e == nil {
		return
	}
	visit(e)
	switch ex := e.(type) {
	case *ast.Binary:
		walkExprTree(ex.Left, visit)
		walkExprTree(ex.Right, visit)
	case *ast.Unary:
		walkExprTree(ex.Operand, visit)
	case *ast.Call:
		if ex.Receiver != nil {
			walkExprTree(ex.Receiver, visit)
		}
		for _, a := range ex.Args {
			walkExprTree(a, visit)
		}
	case *ast.Index:
		walkExprTree(ex.Collection, visit)
		walkExprTree(ex.IndexExpr, visit)
	case *ast.Member:
		walkExprTree(ex.Target, visit)
	case *ast.ArrayLiteral:
		for _, el := range ex.Elements {
			walkExprTree(el, visit)
		}
	case *ast.TupleLiteral:
		for _, el := range ex.Elements {
			walkExprTree(el, visit)
		}
	case *ast.Block:
		walkBlockExprs(ex, visit)
	case *ast.Conditional:
		walkExprTree(ex.Cond, visit)
		walkExprTree(ex.Then, visit)
		walkExprTree(ex.Else, visit)
	case *ast.Cast:
		walkExprTree(ex.Value, visit)
	case *ast.Assignment:
		walkExprTree(ex.LHS, visit)
		walkExprTree(ex.RHS, visit)
	case *ast.Range:
		walkExprTree(ex.From, visit)
		walkExprTree(ex.To, visit)
	case *ast.Length:
		walkExprTree(ex.Value, visit)
	case *ast.Iteration:
		walkExprTree(ex.Subject, visit)
		walkExprTree(ex.Body, visit)
	case *ast.Repeat:
		walkExprTree(ex.Cond, visit)
		walkExprTree(ex.Body, visit)
	case *ast.Process:
		walkExprTree(ex.Command, visit)
	}
}
