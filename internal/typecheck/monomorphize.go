package typecheck

import (
	"github.com/sourcelang/corec/internal/ast"
	"github.com/sourcelang/corec/internal/types"
)

// Monomorphizer drains the checker's pending-instantiation queue into
// the merged module: each distinct TypeSignature observed at a call
// site gets its own concrete FuncDecl, cloned from the generic
// original with its Subst applied to every type annotation in scope,
// so the instantiation's AST nodes are independent of the generic
// body's and of every sibling instantiation's. The generic body
// itself stays shared and unmodified.
type Monomorphizer struct{}

func NewMonomorphizer() *Monomorphizer { return &Monomorphizer{} }

// Drain clones every instantiation's generic body with its Subst
// applied and appends the clone to mod under its mangled name.
func (m *Monomorphizer) Drain(mod *ast.Module, insts []*Instantiation) []*ast.FuncDecl {
	clones := make([]*ast.FuncDecl, 0, len(insts))
	for _, inst := range insts {
		clone := cloneFuncDecl(inst.Generic, inst.Subst)
		clone.Name = inst.Mangled
		clone.TypeParams = nil
		mod.Decls = append(mod.Decls, clone)
		clones = append(clones, clone)
	}
	return clones
}

func cloneTypeAnnotation(t ast.TypeAnnotation, subst types.Subst) ast.TypeAnnotation {
	out := t
	if t.Elem != nil {
		out.Elem = t.Elem.Apply(subst)
	}
	if t.SizeExpr != nil {
		out.SizeExpr = cloneExpr(t.SizeExpr, subst)
	}
	return out
}

func cloneFuncDecl(fn *ast.FuncDecl, subst types.Subst) *ast.FuncDecl {
	clone := &ast.FuncDecl{
		Loc0: fn.Loc0,
		Name: fn.Name,
		TypeParams: fn.TypeParams,
		ReturnType: cloneTypeAnnotation(fn.ReturnType, subst),
		IsExternal: fn.IsExternal,
		IsExported: fn.IsExported,
	}
	clone.Annotations = fn.Annotations
	clone.Params = make([]ast.Param, len(fn.Params))
	for i, p := range fn.Params {
		clone.Params[i] = ast.Param{Name: p.Name, IsRef: p.IsRef, Type: cloneTypeAnnotation(p.Type, subst)}
	}
	if fn.Body != nil {
		clone.Body = cloneBlock(fn.Body, subst)
	}
	return clone
}

func cloneBlock(b *ast.Block, subst types.Subst) *ast.Block {
	if b == nil {
		return nil
	}
	clone := &ast.Block{Loc0: b.Loc0}
	clone.Stmts = make([]ast.Stmt, len(b.Stmts))
	for i, s := range b.Stmts {
		clone.Stmts[i] = cloneStmt(s, subst)
	}
	if b.Result != nil {
		clone.Result = cloneExpr(b.Result, subst)
	}
	return clone
}

func cloneStmt(s ast.Stmt, subst types.Subst) ast.Stmt {
	switch st := s.(type) {
	case *ast.ExprStmt:
		return &ast.ExprStmt{Loc0: st.Loc0, X: cloneExpr(st.X, subst)}
	case *ast.ReturnStmt:
		var v ast.Expr
		if st.Value != nil {
			v = cloneExpr(st.Value, subst)
		}
		return &ast.ReturnStmt{Loc0: st.Loc0, Value: v}
	case *ast.BreakStmt:
		return &ast.BreakStmt{Loc0: st.Loc0}
	case *ast.ContinueStmt:
		return &ast.ContinueStmt{Loc0: st.Loc0}
	case *ast.VarDecl:
		clone := &ast.VarDecl{
			Loc0: st.Loc0, Name: st.Name,
			IsMutable: st.IsMutable, IsExported: st.IsExported, IsExternal: st.IsExternal,
		}
		if st.Declared != nil {
			d := cloneTypeAnnotation(*st.Declared, subst)
			clone.Declared = &d
		}
		if st.Init != nil {
			clone.Init = cloneExpr(st.Init, subst)
		}
		return clone
	case *ast.ConditionalStmt:
		return &ast.ConditionalStmt{
			Loc0: st.Loc0, Cond: cloneExpr(st.Cond, subst),
			Then: cloneBlock(st.Then, subst), Else: cloneBlock(st.Else, subst),
		}
	default:
		return s
	}
}

func cloneExpr(e ast.Expr, subst types.Subst) ast.Expr {
	switch ex := e.(type) {
	case nil:
		return nil
	case *ast.Literal:
		clone := *ex
		return &clone
	case *ast.Identifier:
		clone := *ex
		return &clone
	case *ast.Binary:
		return &ast.Binary{Loc0: ex.Loc0, Op: ex.Op, Left: cloneExpr(ex.Left, subst), Right: cloneExpr(ex.Right, subst)}
	case *ast.Unary:
		return &ast.Unary{Loc0: ex.Loc0, Op: ex.Op, Operand: cloneExpr(ex.Operand, subst)}
	case *ast.Call:
		clone := &ast.Call{Loc0: ex.Loc0, Callee: ex.Callee, TypeArgs: ex.TypeArgs}
		if ex.Receiver != nil {
			clone.Receiver = cloneExpr(ex.Receiver, subst)
		}
		clone.Args = make([]ast.Expr, len(ex.Args))
		for i, a := range ex.Args {
			clone.Args[i] = cloneExpr(a, subst)
		}
		return clone
	case *ast.Index:
		return &ast.Index{Loc0: ex.Loc0, Collection: cloneExpr(ex.Collection, subst), IndexExpr: cloneExpr(ex.IndexExpr, subst)}
	case *ast.Member:
		return &ast.Member{Loc0: ex.Loc0, Target: cloneExpr(ex.Target, subst), Field: ex.Field}
	case *ast.ArrayLiteral:
		clone := &ast.ArrayLiteral{Loc0: ex.Loc0}
		clone.Elements = make([]ast.Expr, len(ex.Elements))
		for i, el := range ex.Elements {
			clone.Elements[i] = cloneExpr(el, subst)
		}
		return clone
	case *ast.TupleLiteral:
		clone := &ast.TupleLiteral{Loc0: ex.Loc0}
		clone.Elements = make([]ast.Expr, len(ex.Elements))
		for i, el := range ex.Elements {
			clone.Elements[i] = cloneExpr(el, subst)
		}
		return clone
	case *ast.Block:
		return cloneBlock(ex, subst)
	case *ast.Conditional:
		return &ast.Conditional{Loc0: ex.Loc0, Cond: cloneExpr(ex.Cond, subst), Then: cloneExpr(ex.Then, subst), Else: cloneExpr(ex.Else, subst)}
	case *ast.Cast:
		return &ast.Cast{Loc0: ex.Loc0, Target: cloneTypeAnnotation(ex.Target, subst), Value: cloneExpr(ex.Value, subst)}
	case *ast.Assignment:
		return &ast.Assignment{Loc0: ex.Loc0, LHS: cloneExpr(ex.LHS, subst), RHS: cloneExpr(ex.RHS, subst), CreatesNewVariable: ex.CreatesNewVariable}
	case *ast.Range:
		return &ast.Range{Loc0: ex.Loc0, From: cloneExpr(ex.From, subst), To: cloneExpr(ex.To, subst)}
	case *ast.Length:
		return &ast.Length{Loc0: ex.Loc0, Value: cloneExpr(ex.Value, subst)}
	case *ast.Iteration:
		return &ast.Iteration{Loc0: ex.Loc0, Subject: cloneExpr(ex.Subject, subst), Body: cloneExpr(ex.Body, subst), Sorted: ex.Sorted, Binder: ex.Binder}
	case *ast.Repeat:
		return &ast.Repeat{Loc0: ex.Loc0, Cond: cloneExpr(ex.Cond, subst), Body: cloneExpr(ex.Body, subst)}
	case *ast.ResourcePath:
		clone := *ex
		return &clone
	case *ast.Process:
		return &ast.Process{Loc0: ex.Loc0, Command: cloneExpr(ex.Command, subst)}
	default:
		return e
	}
}
