package cte

import "github.com/sourcelang/corec/internal/ast"

// evalBlock evaluates a block's statements then its result expression.
// Since variables are keyed by symbol identity rather than name, a
// fresh scope needs no separate table -- shadowing is already
// disambiguated -- but evaluation still snapshots/restores on failure
// for transactional semantics.
func (e *Evaluator) evalBlock(b *ast.Block) (Value, ctrl, error) {
	snap := e.top().snapshot()
	v, c, err := e.evalBlockBody(b)
	if err != nil {
		e.top().restore(snap)
		return Value{}, noCtrl, err
	}
	return v, c, nil
}

func (e *Evaluator) evalBlockBody(b *ast.Block) (Value, ctrl, error) {
	for _, stmt := range b.Stmts {
		c, err := e.evalStmt(stmt)
		if err != nil {
			return Value{}, noCtrl, err
		}
		if c.kind != ctrlNone {
			return Value{}, c, nil
		}
	}
	if b.Result == nil {
		return Value{}, noCtrl, nil
	}
	v, err := e.evalExpr(b.Result)
	if err != nil {
		return Value{}, noCtrl, err
	}
	return v, noCtrl, nil
}

func (e *Evaluator) evalStmt(stmt ast.Stmt) (ctrl, error) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		if _, err := e.evalExpr(s.X); err != nil {
			return noCtrl, err
		}
		return noCtrl, nil
	case *ast.ReturnStmt:
		if s.Value == nil {
			return ctrl{kind: ctrlReturn, value: Uninitialized()}, nil
		}
		v, err := e.evalExpr(s.Value)
		if err != nil {
			return noCtrl, err
		}
		return ctrl{kind: ctrlReturn, value: v}, nil
	case *ast.BreakStmt:
		return ctrl{kind: ctrlBreak}, nil
	case *ast.ContinueStmt:
		return ctrl{kind: ctrlContinue}, nil
	case *ast.VarDecl:
		if s.IsExternal {
			return noCtrl, fail("external declaration has no compile-time value")
		}
		var v Value
		if s.Init != nil {
			var err error
			v, err = e.evalExpr(s.Init)
			if err != nil {
				return noCtrl, err
			}
		} else {
			v = Uninitialized()
		}
		sym, ok := e.symbolOf(s)
		if !ok {
			return noCtrl, fail("var declaration %q has no binding", s.Name)
		}
		e.top().vars[sym] = v
		return noCtrl, nil
	case *ast.ConditionalStmt:
		cond, err := e.evalExpr(s.Cond)
		if err != nil {
			return noCtrl, err
		}
		if cond.Kind != KBool {
			return noCtrl, fail("if condition must be bool")
		}
		if cond.B {
			_, c, err := e.evalBlock(s.Then)
			return c, err
		}
		if s.Else != nil {
			_, c, err := e.evalBlock(s.Else)
			return c, err
		}
		return noCtrl, nil
	case *ast.FuncDecl, *ast.TypeDecl, *ast.ImportStmt:
		return noCtrl, fail("declarations of kind %T cannot appear in a compile-time-evaluated statement position", stmt)
	default:
		return noCtrl, fail("unsupported statement kind %T", stmt)
	}
}
