// Package lower implements the Lowerer: a structure-preserving
// AST-to-AST rewrite whose one canonicalization is wrapping bare loop
// bodies in blocks, so every later pass (Optimizer, Residualizer,
// Analyzer) can assume a uniform shape.
package lower

import "github.com/sourcelang/corec/internal/ast"

// Lowerer rewrites function bodies in place; the pipeline is the
// tree's sole owner by this stage.
type Lowerer struct{}

func New() *Lowerer { return &Lowerer{} }

// LowerModule rewrites every function body in mod.
func (lw *Lowerer) LowerModule(mod *ast.Module) {
	for _, fn := range mod.Funcs() {
		if fn.Body != nil {
			lw.lowerBlock(fn.Body)
		}
	}
}

func (lw *Lowerer) lowerBlock(b *ast.Block) {
	for i, stmt := range b.Stmts {
		b.Stmts[i] = lw.lowerStmt(stmt)
	}
	if b.Result != nil {
		b.Result = lw.lowerExpr(b.Result)
	}
}

func (lw *Lowerer) lowerStmt(stmt ast.Stmt) ast.Stmt {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		s.X = lw.lowerExpr(s.X)
		return s
	case *ast.ReturnStmt:
		if s.Value != nil {
			s.Value = lw.lowerExpr(s.Value)
		}
		return s
	case *ast.VarDecl:
		if s.Init != nil {
			s.Init = lw.lowerExpr(s.Init)
		}
		return s
	case *ast.ConditionalStmt:
		s.Cond = lw.lowerExpr(s.Cond)
		lw.lowerBlock(s.Then)
		if s.Else != nil {
			lw.lowerBlock(s.Else)
		}
		return s
	default:
		return stmt
	}
}

// asBlock wraps a bare (non-block) loop body in a one-statement-free
// Block so the Iteration/Repeat evaluator and later passes can always
// assume a block shape for loop bodies.
func asBlock(e ast.Expr) *ast.Block {
	if b, ok := e.(*ast.Block); ok {
		return b
	}
	return &ast.Block{Loc0: e.Loc(), Result: e}
}

func (lw *Lowerer) lowerExpr(expr ast.Expr) ast.Expr {
	switch e := expr.(type) {
	case *ast.Binary:
		e.Left = lw.lowerExpr(e.Left)
		e.Right = lw.lowerExpr(e.Right)
		return e
	case *ast.Unary:
		e.Operand = lw.lowerExpr(e.Operand)
		return e
	case *ast.Call:
		if e.Receiver != nil {
			e.Receiver = lw.lowerExpr(e.Receiver)
		}
		for i, a := range e.Args {
			e.Args[i] = lw.lowerExpr(a)
		}
		return e
	case *ast.Index:
		e.Collection = lw.lowerExpr(e.Collection)
		e.IndexExpr = lw.lowerExpr(e.IndexExpr)
		return e
	case *ast.Member:
		e.Target = lw.lowerExpr(e.Target)
		return e
	case *ast.ArrayLiteral:
		for i, el := range e.Elements {
			e.Elements[i] = lw.lowerExpr(el)
		}
		return e
	case *ast.TupleLiteral:
		for i, el := range e.Elements {
			e.Elements[i] = lw.lowerExpr(el)
		}
		return e
	case *ast.Block:
		lw.lowerBlock(e)
		return e
	case *ast.Conditional:
		e.Cond = lw.lowerExpr(e.Cond)
		e.Then = lw.lowerExpr(e.Then)
		e.Else = lw.lowerExpr(e.Else)
		return e
	case *ast.Cast:
		e.Value = lw.lowerExpr(e.Value)
		return e
	case *ast.Assignment:
		e.LHS = lw.lowerExpr(e.LHS)
		e.RHS = lw.lowerExpr(e.RHS)
		return e
	case *ast.Range:
		e.From = lw.lowerExpr(e.From)
		e.To = lw.lowerExpr(e.To)
		return e
	case *ast.Length:
		e.Value = lw.lowerExpr(e.Value)
		return e
	case *ast.Iteration:
		e.Subject = lw.lowerExpr(e.Subject)
		e.Body = asBlock(lw.lowerExpr(e.Body))
		return e
	case *ast.Repeat:
		e.Cond = lw.lowerExpr(e.Cond)
		e.Body = asBlock(lw.lowerExpr(e.Body))
		return e
	case *ast.Process:
		e.Command = lw.lowerExpr(e.Command)
		return e
	default:
		return expr
	}
}
