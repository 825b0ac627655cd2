package analyze

import (
	"github.com/sourcelang/corec/internal/ast"
	"github.com/sourcelang/corec/internal/types"
)

// usage is a transitive mark-and-sweep of globals and types reached
// from every reachable function's body, plus every exported global
// itself -- an exported global is used by definition, regardless of
// whether any reachable function body mentions it. The result feeds
// dead-code elimination at merge time.
func (a *analysis) usage(facts *Facts) {
	for _, v := range a.mod.Vars() {
		if v.IsExported {
			facts.UsedGlobals[v.Name] = true
			markType(facts, v.Declared)
		}
	}
	for _, t := range a.mod.Types() {
		if t.IsExported {
			facts.UsedTypes[t.Name] = true
		}
	}

	globalNames := make(map[string]bool)
	for _, v := range a.mod.Vars() {
		globalNames[v.Name] = true
	}

	for _, fn := range a.mod.Funcs() {
		sym := a.symOf(fn)
		if sym == nil || !facts.Reachable[sym] {
			continue
		}
		markType(facts, &fn.ReturnType)
		for _, p := range fn.Params {
			markType(facts, &p.Type)
		}
		if fn.Body != nil {
			markBlockUsage(facts, fn.Body, globalNames)
		}
	}
	vars := namedVars(a.mod)
	for before := -1; before != len(facts.UsedGlobals); {
		before = len(facts.UsedGlobals)
		for name, v := range vars {
			if facts.UsedGlobals[name] && v.Init != nil {
				markExprUsage(facts, v.Init, globalNames)
			}
		}
	}
}

func namedVars(mod *ast.Module) map[string]*ast.VarDecl {
	out := make(map[string]*ast.VarDecl)
	for _, v := range mod.Vars() {
		out[v.Name] = v
	}
	return out
}

func markType(facts *Facts, t *ast.TypeAnnotation) {
	if t == nil || t.Elem == nil {
		return
	}
	markTypeValue(facts, t.Elem)
}

func markTypeValue(facts *Facts, t types.Type) {
	switch tt := t.(type) {
	case types.Named:
		facts.UsedTypes[tt.Name] = true
		for _, arg := range tt.Args {
			markTypeValue(facts, arg)
		}
	case types.Array:
		markTypeValue(facts, tt.Elem)
	}
}

func markBlockUsage(facts *Facts, b *ast.Block, globalNames map[string]bool) {
	for _, s := range b.Stmts {
		markStmtUsage(facts, s, globalNames)
	}
	if b.Result != nil {
		markExprUsage(facts, b.Result, globalNames)
	}
}

func markStmtUsage(facts *Facts, s ast.Stmt, globalNames map[string]bool) {
	switch st := s.(type) {
	case *ast.ExprStmt:
		markExprUsage(facts, st.X, globalNames)
	case *ast.ReturnStmt:
		if st.Value != nil {
			markExprUsage(facts, st.Value, globalNames)
		}
	case *ast.VarDecl:
		markType(facts, st.Declared)
		if st.Init != nil {
			markExprUsage(facts, st.Init, globalNames)
		}
	case *ast.ConditionalStmt:
		markExprUsage(facts, st.Cond, globalNames)
		markBlockUsage(facts, st.Then, globalNames)
		if st.Else != nil {
			markBlockUsage(facts, st.Else, globalNames)
		}
	}
}

func markExprUsage(facts *Facts, e ast.Expr, globalNames map[string]bool) {
	switch ex := e.(type) {
	case *ast.Identifier:
		if globalNames[ex.Name] {
			facts.UsedGlobals[ex.Name] = true
		}
	case *ast.Binary:
		markExprUsage(facts, ex.Left, globalNames)
		markExprUsage(facts, ex.Right, globalNames)
	case *ast.Unary:
		markExprUsage(facts, ex.Operand, globalNames)
	case *ast.Call:
		if ex.Receiver != nil {
			markExprUsage(facts, ex.Receiver, globalNames)
		}
		for _, arg := range ex.Args {
			markExprUsage(facts, arg, globalNames)
		}
	case *ast.Index:
		markExprUsage(facts, ex.Collection, globalNames)
		markExprUsage(facts, ex.IndexExpr, globalNames)
	case *ast.Member:
		markExprUsage(facts, ex.Target, globalNames)
	case *ast.ArrayLiteral:
		for _, el := range ex.Elements {
			markExprUsage(facts, el, globalNames)
		}
	case *ast.TupleLiteral:
		for _, el := range ex.Elements {
			markExprUsage(facts, el, globalNames)
		}
	case *ast.Block:
		markBlockUsage(facts, ex, globalNames)
	case *ast.Conditional:
		markExprUsage(facts, ex.Cond, globalNames)
		markExprUsage(facts, ex.Then, globalNames)
		markExprUsage(facts, ex.Else, globalNames)
	case *ast.Cast:
		markType(facts, &ex.Target)
		markExprUsage(facts, ex.Value, globalNames)
	case *ast.Assignment:
		markExprUsage(facts, ex.LHS, globalNames)
		markExprUsage(facts, ex.RHS, globalNames)
	case *ast.Range:
		markExprUsage(facts, ex.From, globalNames)
		markExprUsage(facts, ex.To, globalNames)
	case *ast.Length:
		markExprUsage(facts, ex.Value, globalNames)
	case *ast.Iteration:
		markExprUsage(facts, ex.Subject, globalNames)
		markExprUsage(facts, ex.Body, globalNames)
	case *ast.Repeat:
		markExprUsage(facts, ex.Cond, globalNames)
		markExprUsage(facts, ex.Body, globalNames)
	case *ast.Process:
		markExprUsage(facts, ex.Command, globalNames)
	}
}
