package resolver

import (
	"github.com/sourcelang/corec/internal/ast"
	"github.com/sourcelang/corec/internal/symbol"
)

func (r *Resolver) resolveExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.Literal:
		// no identifiers to bind
	case *ast.Identifier:
		sym, ok := r.scope.Lookup(e.Name)
		if !ok {
			sym, ok = r.instance.Lookup(e.Name)
		}
		if !ok {
			r.errorf(e.Loc0, "undefined name %q", e.Name)
			return
		}
		r.Bindings.Bind(r.instance.ID, e, sym)
	case *ast.Binary:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)
	case *ast.Unary:
		r.resolveExpr(e.Operand)
	case *ast.Call:
		if e.Receiver != nil {
			r.resolveExpr(e.Receiver)
		}
		for _, a := range e.Args {
			r.resolveExpr(a)
		}
		sym, ok := r.scope.Lookup(e.Callee)
		if !ok {
			sym, ok = r.instance.Lookup(e.Callee)
		}
		if !ok {
			r.errorf(e.Loc0, "call to undefined function %q", e.Callee)
			return
		}
		if sym.Kind != symbol.Function {
			r.errorf(e.Loc0, "%q is not callable", e.Callee)
			return
		}
		r.Bindings.Bind(r.instance.ID, e, sym)
	case *ast.Index:
		r.resolveExpr(e.Collection)
		r.resolveExpr(e.IndexExpr)
	case *ast.Member:
		r.resolveExpr(e.Target)
	case *ast.ArrayLiteral:
		for _, el := range e.Elements {
			r.resolveExpr(el)
		}
	case *ast.TupleLiteral:
		for _, el := range e.Elements {
			r.resolveExpr(el)
		}
	case *ast.Block:
		r.resolveBlock(e)
	case *ast.Conditional:
		r.resolveExpr(e.Cond)
		r.resolveExpr(e.Then)
		r.resolveExpr(e.Else)
	case *ast.Cast:
		r.resolveExpr(e.Value)
		if e.Target.IsArray && e.Target.SizeExpr != nil {
			r.resolveExpr(e.Target.SizeExpr)
		}
	case *ast.Assignment:
		r.resolveExpr(e.RHS)
		r.resolveAssignLHS(e)
	case *ast.Range:
		r.resolveExpr(e.From)
		r.resolveExpr(e.To)
	case *ast.Length:
		r.resolveExpr(e.Value)
	case *ast.Iteration:
		r.resolveExpr(e.Subject)
		r.withScope(func() {
			binder := r.Program.Arena.New(symbol.Symbol{
				Name: e.Binder, Kind: symbol.Variable, IsLocal: true,
				ModuleID: r.instance.ModuleID, InstanceID: r.instance.ID,
				Declaration: e,
			})
			if e.Binder != "" {
				if err := r.scope.Define(e.Binder, binder); err != nil {
					r.errorf(e.Loc0, "%v", err)
				} else {
					r.Bindings.Bind(r.instance.ID, e, binder)
				}
			}
			r.resolveExpr(e.Body)
		})
	case *ast.Repeat:
		r.resolveExpr(e.Cond)
		r.resolveExpr(e.Body)
	case *ast.ResourcePath:
		// resource components are not identifiers in this scope model
	case *ast.Process:
		r.resolveExpr(e.Command)
	default:
		r.errorf(expr.Loc(), "unsupported expression kind %T", expr)
	}
}

// resolveAssignLHS: an identifier LHS not already bound in an
// enclosing scope creates a new local variable
// (Assignment.CreatesNewVariable); any other LHS shape (index/member
// path) is always a mutation of an existing binding.
func (r *Resolver) resolveAssignLHS(a *ast.Assignment) {
	id, ok := a.LHS.(*ast.Identifier)
	if !ok {
		r.resolveExpr(a.LHS)
		r.Bindings.SetCreatesNewVariable(r.instance.ID, a, false)
		return
	}
	if sym, ok := r.scope.Lookup(id.Name); ok {
		r.Bindings.Bind(r.instance.ID, id, sym)
		r.Bindings.SetCreatesNewVariable(r.instance.ID, a, false)
		return
	}
	sym := r.Program.Arena.New(symbol.Symbol{
		Name: id.Name, Kind: symbol.Variable, IsMutable: true, IsLocal: true,
		ModuleID: r.instance.ModuleID, InstanceID: r.instance.ID, Declaration: a,
	})
	if err := r.scope.Define(id.Name, sym); err != nil {
		r.errorf(a.Loc0, "%v", err)
		return
	}
	r.Bindings.Bind(r.instance.ID, id, sym)
	r.Bindings.SetCreatesNewVariable(r.instance.ID, a, true)
}
