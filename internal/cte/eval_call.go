package cte

import (
	"github.com/sourcelang/corec/internal/ast"
	"github.com/sourcelang/corec/internal/symbol"
)

// evalCall evaluates a call expression. The callee's resolved Symbol
// is read from Bindings keyed on the Call node itself (the resolver
// binds every call site to its target function symbol).
func (e *Evaluator) evalCall(call *ast.Call) (Value, error) {
	calleeSym, ok := e.symbolOf(call)
	if !ok {
		return Value{}, fail("call to %q has no resolved binding", call.Callee)
	}
	if calleeSym.Kind != symbol.Function {
		return Value{}, fail("%q does not resolve to a function", call.Callee)
	}
	if calleeSym.IsExternal {
		return Value{}, fail("external function %q is not compile-time evaluable", call.Callee)
	}
	fn, ok := calleeSym.Declaration.(*ast.FuncDecl)
	if !ok || fn.Body == nil {
		return Value{}, fail("function %q has no evaluable body", call.Callee)
	}

	args := make([]Value, 0, len(call.Args)+1)
	if call.Receiver != nil {
		v, err := e.evalExpr(call.Receiver)
		if err != nil {
			return Value{}, err
		}
		args = append(args, v)
	}
	for _, a := range call.Args {
		v, err := e.evalExpr(a)
		if err != nil {
			return Value{}, err
		}
		args = append(args, v)
	}
	if len(args) != len(fn.Params) {
		return Value{}, fail("arity mismatch calling %q: want %d, got %d", call.Callee, len(fn.Params), len(args))
	}

	if len(e.frames) >= e.Bounds.RecursionLimit {
		return Value{}, fail("recursion limit exceeded calling %q", call.Callee)
	}

	callFrame := newFrame()
	for i, p := range fn.Params {
		paramSym, ok := e.paramSymbol(fn, i)
		if !ok {
			return Value{}, fail("parameter %q of %q has no resolved symbol", p.Name, call.Callee)
		}
		callFrame.vars[paramSym] = args[i]
	}
	e.frames = append(e.frames, callFrame)
	defer func() { e.frames = e.frames[:len(e.frames)-1] }()

	v, c, err := e.evalBlockBody(fn.Body)
	if err != nil {
		return Value{}, err
	}
	if c.kind == ctrlReturn {
		return c.value, nil
	}
	if c.kind != ctrlNone {
		return Value{}, fail("%s escaped the body of %q", ctrlName(c.kind), call.Callee)
	}
	return v, nil
}

func ctrlName(k ctrlKind) string {
	switch k {
	case ctrlBreak:
		return "break"
	case ctrlContinue:
		return "continue"
	default:
		return "control flow"
	}
}

// paramSymbol resolves the Symbol the resolver created for fn's i-th
// parameter, bound under a synthetic per-index key (its Bindings are
// (instance, node) -> Symbol; parameters are identifier-like
// declarations without their own AST node here, so the resolver binds
// them under ast.ParamRef{Fn: fn, Index: i}).
func (e *Evaluator) paramSymbol(fn *ast.FuncDecl, index int) (*symbol.Symbol, bool) {
	return e.symbolOf(ast.ParamRef{Fn: fn, Index: index})
}
