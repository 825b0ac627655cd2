package typecheck

import (
	"github.com/sourcelang/corec/internal/ast"
	"github.com/sourcelang/corec/internal/ids"
	"github.com/sourcelang/corec/internal/symbol"
	"github.com/sourcelang/corec/internal/types"
)

func (c *Checker) symbolType(sym *symbol.Symbol) types.Type {
	return applySubst(sym.Type, c.activeSubst)
}

func (c *Checker) inferBlock(b *ast.Block) types.Type {
	for _, stmt := range b.Stmts {
		c.inferStmt(stmt)
	}
	if b.Result == nil {
		return nil
	}
	return c.inferExpr(b.Result)
}

func (c *Checker) inferStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		c.inferExpr(s.X)
	case *ast.ReturnStmt:
		if s.Value != nil {
			c.inferExpr(s.Value)
		}
	case *ast.BreakStmt, *ast.ContinueStmt:
	case *ast.VarDecl:
		var declared types.Type
		if s.Declared != nil {
			declared = applySubst(s.Declared.Elem, c.activeSubst)
		}
		var init types.Type
		if s.Init != nil {
			init = c.inferExpr(s.Init)
		}
		sym, ok := c.Bindings.Lookup(c.instanceID, s)
		if ok {
			if declared != nil {
				sym.Type = declared
			} else if init != nil {
				sym.Type = init
			}
		}
		if declared != nil && init != nil && !declared.Equal(init) {
			c.fail(s, "variable %q declared as %s but initialized with %s", s.Name, declared, init)
		}
	case *ast.ConditionalStmt:
		condT := c.inferExpr(s.Cond)
		if condT != nil && !condT.Equal(types.Bool()) {
			c.fail(s, "if condition must be bool, got %s", condT)
		}
		c.inferBlock(s.Then)
		if s.Else != nil {
			c.inferBlock(s.Else)
		}
	}
}

func (c *Checker) inferExpr(expr ast.Expr) types.Type {
	switch e := expr.(type) {
	case *ast.Literal:
		return c.setType(e, literalType(e))
	case *ast.Identifier:
		sym, ok := c.Bindings.Lookup(c.instanceID, e)
		if !ok {
			c.fail(e, "identifier %q has no resolved binding", e.Name)
			return nil
		}
		return c.setType(e, c.symbolType(sym))
	case *ast.Binary:
		return c.setType(e, c.inferBinary(e))
	case *ast.Unary:
		t := c.inferExpr(e.Operand)
		return c.setType(e, t)
	case *ast.Call:
		return c.setType(e, c.inferCall(e))
	case *ast.Index:
		collT := c.inferExpr(e.Collection)
		c.inferExpr(e.IndexExpr)
		arr, ok := collT.(types.Array)
		if !ok {
			c.fail(e, "cannot index a non-array value of type %v", collT)
			return nil
		}
		return c.setType(e, arr.Elem)
	case *ast.Member:
		c.inferExpr(e.Target)
		// Field types are resolved structurally against the target's
		// named-type declaration; without a type-declaration table
		// wired in here yet, member access is left untyped and is
		// re-validated by the CTE/Analyzer at the value level.
		return nil
	case *ast.ArrayLiteral:
		var elemT types.Type
		for _, el := range e.Elements {
			t := c.inferExpr(el)
			if elemT == nil {
				elemT = t
			} else if t != nil && !t.Equal(elemT) {
				c.fail(e, "array elements have mismatched types: %s vs %s", elemT, t)
			}
		}
		if elemT == nil {
			return nil
		}
		return c.setType(e, types.Array{Elem: elemT, SizeKey: itoa(len(e.Elements))})
	case *ast.TupleLiteral:
		elemTs := make([]types.Type, len(e.Elements))
		for i, el := range e.Elements {
			elemTs[i] = c.inferExpr(el)
		}
		return c.setType(e, types.Named{Name: types.TupleTypeName(elemTs)})
	case *ast.Block:
		return c.setType(e, c.inferBlock(e))
	case *ast.Conditional:
		condT := c.inferExpr(e.Cond)
		if condT != nil && !condT.Equal(types.Bool()) {
			c.fail(e, "conditional expression's condition must be bool, got %s", condT)
		}
		thenT := c.inferExpr(e.Then)
		elseT := c.inferExpr(e.Else)
		if thenT != nil && elseT != nil && !thenT.Equal(elseT) {
			c.fail(e, "conditional branches have mismatched types: %s vs %s", thenT, elseT)
		}
		return c.setType(e, thenT)
	case *ast.Cast:
		c.inferExpr(e.Value)
		return c.setType(e, applySubst(e.Target.Elem, c.activeSubst))
	case *ast.Assignment:
		rhsT := c.inferExpr(e.RHS)
		c.inferExpr(e.LHS)
		return c.setType(e, rhsT)
	case *ast.Range:
		c.inferExpr(e.From)
		c.inferExpr(e.To)
		return nil // ranges only appear as an Iteration subject
	case *ast.Length:
		c.inferExpr(e.Value)
		return c.setType(e, types.U(64))
	case *ast.Iteration:
		c.inferExpr(e.Subject)
		c.inferExpr(e.Body)
		return nil
	case *ast.Repeat:
		condT := c.inferExpr(e.Cond)
		if condT != nil && !condT.Equal(types.Bool()) {
			c.fail(e, "while condition must be bool, got %s", condT)
		}
		c.inferExpr(e.Body)
		return nil
	case *ast.ResourcePath:
		return nil
	case *ast.Process:
		c.inferExpr(e.Command)
		return nil
	default:
		c.fail(expr, "unsupported expression kind %T", expr)
		return nil
	}
}

// literalType picks the default concrete type for an untyped literal:
// the narrowest signed width that represents an int literal, and one
// natural type for every other literal kind.
func literalType(l *ast.Literal) types.Type {
	switch l.Kind {
	case ast.LitInt:
		for _, w := range []int{8, 16, 32, 64} {
			if types.FitsSigned(l.Int, w) {
				return types.I(w)
			}
		}
		return types.I(64)
	case ast.LitUint:
		for _, w := range []int{8, 16, 32, 64} {
			if types.FitsUnsigned(l.Uint, w) {
				return types.U(w)
			}
		}
		return types.U(64)
	case ast.LitFloat:
		return types.F(64)
	case ast.LitChar:
		return types.U(32)
	case ast.LitString:
		return types.String()
	case ast.LitBool:
		return types.Bool()
	default:
		return nil
	}
}

func (c *Checker) inferBinary(b *ast.Binary) types.Type {
	lt := c.inferExpr(b.Left)
	rt := c.inferExpr(b.Right)
	switch b.Op {
	case ast.OpEq, ast.OpNeq, ast.OpLt, ast.OpLte, ast.OpGt, ast.OpGte:
		if lt != nil && rt != nil && !lt.Equal(rt) {
			c.fail(b, "comparison operands have mismatched types: %s vs %s", lt, rt)
		}
		return types.Bool()
	case ast.OpAnd, ast.OpOr:
		if lt != nil && !lt.Equal(types.Bool()) {
			c.fail(b, "logical operand must be bool, got %s", lt)
		}
		if rt != nil && !rt.Equal(types.Bool()) {
			c.fail(b, "logical operand must be bool, got %s", rt)
		}
		return types.Bool()
	case ast.OpShl, ast.OpShr:
		// shift amount (right) need not match the left operand's width
		return lt
	default:
		if lt != nil && rt != nil && !lt.Equal(rt) {
			c.fail(b, "arithmetic operands have mismatched types: %s vs %s (implicit widening is not performed)", lt, rt)
		}
		return lt
	}
}

// inferCall resolves the callee's concrete return type. For a generic
// function, the call site's argument types form a TypeSignature; a
// distinct signature enqueues one Instantiation, deduplicated by
// Sig.Key so repeat call sites with the same concrete arguments share
// one instantiation.
func (c *Checker) inferCall(call *ast.Call) types.Type {
	argTypes := make([]types.Type, 0, len(call.Args)+1)
	if call.Receiver != nil {
		argTypes = append(argTypes, c.inferExpr(call.Receiver))
	}
	for _, a := range call.Args {
		argTypes = append(argTypes, c.inferExpr(a))
	}

	sym, ok := c.Bindings.Lookup(c.instanceID, call)
	if !ok || sym.Kind != symbol.Function {
		c.fail(call, "call to %q has no resolved function binding", call.Callee)
		return nil
	}
	fn, ok := sym.Declaration.(*ast.FuncDecl)
	if !ok {
		return sym.Type
	}
	if !fn.IsGeneric() {
		return applySubst(fn.ReturnType.Elem, c.activeSubst)
	}

	sig := types.TypeSignature{FuncName: fn.Name, ArgTypes: argTypes}
	inst, ok := c.instantiations[sig.Key()]
	if !ok {
		subst := make(types.Subst, len(fn.TypeParams))
		for i, tp := range fn.TypeParams {
			if i < len(argTypes) && argTypes[i] != nil {
				subst[tp] = argTypes[i]
			}
		}
		// best-effort: also bind by position against declared param
		// type variables rather than assuming TypeParams/args align 1:1
		for i, p := range fn.Params {
			if i >= len(argTypes) || argTypes[i] == nil {
				continue
			}
			for _, tv := range p.Type.Elem.FreeTypeVariables() {
				if _, bound := subst[tv]; !bound {
					subst[tv] = argTypes[i]
				}
			}
		}
		inst = &Instantiation{
			Generic: fn, Sig: sig,
			Mangled: ids.Mangle(fn.Name, sig.Key()),
			Subst: subst,
			RetType: applySubst(fn.ReturnType.Elem, subst),
		}
		c.instantiations[sig.Key()] = inst
		c.instantiationOrder = append(c.instantiationOrder, inst)
		c.pending = append(c.pending, inst)
	}
	return inst.RetType
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
