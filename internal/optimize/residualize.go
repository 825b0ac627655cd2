package optimize

import "github.com/sourcelang/corec/internal/ast"

// Residualizer rewrites an AST in place using a prior Optimizer pass's
// Facts, replacing every proven-constant expression with a Literal and
// every proven-constant conditional with whichever branch Facts says
// it always takes. It reports whether it changed anything,
// which is what lets Run (driver.go) detect the fixpoint.
type Residualizer struct {
	Facts *Facts
}

func NewResidualizer(facts *Facts) *Residualizer {
	return &Residualizer{Facts: facts}
}

// Apply rewrites every function body in mod, returning true iff any
// node was residualized.
func (r *Residualizer) Apply(mod *ast.Module) bool {
	changed := false
	for _, fn := range mod.Funcs() {
		if fn.Body != nil {
			changed = r.residualizeBlock(fn.Body) || changed
		}
	}
	for _, v := range mod.Vars() {
		if v.Init == nil {
			continue
		}
		if val, ok := r.Facts.ConstexprInits[v]; ok {
			if lit, ok2 := valueToLiteral(val, v.Init.Loc()); ok2 && !literalEqual(v.Init, lit) {
				v.Init = lit
				changed = true
			}
			continue
		}
		var c bool
		v.Init, c = r.residualizeExpr(v.Init)
		changed = changed || c
	}
	return changed
}

// literalEqual reports whether e is already the literal lit would
// produce, so a second Residualizer pass over an already-folded global
// reports changed == false.
func literalEqual(e ast.Expr, lit *ast.Literal) bool {
	existing, ok := e.(*ast.Literal)
	if !ok {
		return false
	}
	return *existing == *lit
}

func (r *Residualizer) residualizeBlock(b *ast.Block) bool {
	changed := false
	for i, stmt := range b.Stmts {
		var c bool
		b.Stmts[i], c = r.residualizeStmt(stmt)
		changed = changed || c
	}
	if b.Result != nil {
		b.Result, changed = r.residualizeExprReport(b.Result, changed)
	}
	return changed
}

func (r *Residualizer) residualizeExprReport(e ast.Expr, changed bool) (ast.Expr, bool) {
	ne, c := r.residualizeExpr(e)
	return ne, changed || c
}

func (r *Residualizer) residualizeStmt(stmt ast.Stmt) (ast.Stmt, bool) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		var c bool
		s.X, c = r.residualizeExpr(s.X)
		return s, c
	case *ast.ReturnStmt:
		if s.Value == nil {
			return s, false
		}
		var c bool
		s.Value, c = r.residualizeExpr(s.Value)
		return s, c
	case *ast.VarDecl:
		changed := false
		if v, ok := r.Facts.ConstexprInits[s]; ok {
			if s.Init != nil {
				if lit, ok2 := valueToLiteral(v, s.Init.Loc()); ok2 && !literalEqual(s.Init, lit) {
					s.Init = lit
					changed = true
				}
			}
		} else if s.Init != nil {
			var c bool
			s.Init, c = r.residualizeExpr(s.Init)
			changed = c
		}
		return s, changed
	case *ast.ConditionalStmt:
		changed := false
		s.Cond, changed = r.residualizeExpr(s.Cond)
		changed = r.residualizeBlock(s.Then) || changed
		if s.Else != nil {
			changed = r.residualizeBlock(s.Else) || changed
		}
		return s, changed
	default:
		return stmt, false
	}
}

// residualizeExpr rewrites expr and everything beneath it, replacing
// the node itself with a Literal first if Facts proves it constant.
// Residualization happens outside-in so a folded sub-expression's own
// children need not be walked once replaced.
func (r *Residualizer) residualizeExpr(expr ast.Expr) (ast.Expr, bool) {
	if _, isLit := expr.(*ast.Literal); isLit {
		return expr, false
	}
	if v, ok := r.Facts.ConstexprValues[expr]; ok {
		if lit, ok2 := valueToLiteral(v, expr.Loc()); ok2 {
			return lit, true
		}
	}

	changed := false
	switch e := expr.(type) {
	case *ast.Binary:
		e.Left, changed = r.residualizeExprReport(e.Left, changed)
		e.Right, changed = r.residualizeExprReport(e.Right, changed)
		return e, changed
	case *ast.Unary:
		e.Operand, changed = r.residualizeExprReport(e.Operand, changed)
		return e, changed
	case *ast.Call:
		if e.Receiver != nil {
			e.Receiver, changed = r.residualizeExprReport(e.Receiver, changed)
		}
		for i, a := range e.Args {
			e.Args[i], changed = r.residualizeExprReport(a, changed)
		}
		return e, changed
	case *ast.Index:
		e.Collection, changed = r.residualizeExprReport(e.Collection, changed)
		e.IndexExpr, changed = r.residualizeExprReport(e.IndexExpr, changed)
		return e, changed
	case *ast.Member:
		e.Target, changed = r.residualizeExprReport(e.Target, changed)
		return e, changed
	case *ast.ArrayLiteral:
		for i, el := range e.Elements {
			e.Elements[i], changed = r.residualizeExprReport(el, changed)
		}
		return e, changed
	case *ast.TupleLiteral:
		for i, el := range e.Elements {
			e.Elements[i], changed = r.residualizeExprReport(el, changed)
		}
		return e, changed
	case *ast.Block:
		changed = r.residualizeBlock(e)
		return e, changed
	case *ast.Conditional:
		if taken, ok := r.Facts.ConstexprConditions[e.Cond]; ok {
			branch := e.Else
			if taken {
				branch = e.Then
			}
			ne, _ := r.residualizeExpr(branch)
			return ne, true
		}
		e.Cond, changed = r.residualizeExprReport(e.Cond, changed)
		e.Then, changed = r.residualizeExprReport(e.Then, changed)
		e.Else, changed = r.residualizeExprReport(e.Else, changed)
		return e, changed
	case *ast.Cast:
		e.Value, changed = r.residualizeExprReport(e.Value, changed)
		return e, changed
	case *ast.Assignment:
		e.RHS, changed = r.residualizeExprReport(e.RHS, changed)
		return e, changed
	case *ast.Range:
		e.From, changed = r.residualizeExprReport(e.From, changed)
		e.To, changed = r.residualizeExprReport(e.To, changed)
		return e, changed
	case *ast.Length:
		e.Value, changed = r.residualizeExprReport(e.Value, changed)
		return e, changed
	default:
		return expr, false
	}
}
