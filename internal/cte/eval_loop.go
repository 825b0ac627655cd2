package cte

import (
	"sort"

	"github.com/sourcelang/corec/internal/ast"
)

// evalIteration evaluates `subject @ body` (optionally sorted `@@`),
// enforcing the hard iteration cap (10^6) per loop.
func (e *Evaluator) evalIteration(it *ast.Iteration) (Value, error) {
	subject, err := e.evalExpr(it.Subject)
	if err != nil {
		return Value{}, err
	}
	if subject.Kind != KArray {
		return Value{}, fail("iteration subject must be an array")
	}
	elems := subject.Elems
	if it.Sorted {
		elems = append([]Value(nil), elems...)
		sort.Slice(elems, func(i, j int) bool { return lessValue(elems[i], elems[j]) })
	}
	if len(elems) > e.Bounds.LoopIterationCap {
		return Value{}, fail("iteration exceeds loop iteration cap")
	}

	bodyBlock, isBlock := it.Body.(*ast.Block)
	binderSym, _ := e.symbolOf(it)

	var last Value
	for i, el := range elems {
		if i >= e.Bounds.LoopIterationCap {
			return Value{}, fail("iteration exceeded loop iteration cap")
		}
		if binderSym != nil {
			e.top().vars[binderSym] = el
		}
		var (
			v   Value
			c   ctrl
			err error
		)
		if isBlock {
			v, c, err = e.evalBlock(bodyBlock)
		} else {
			v, err = e.evalExpr(it.Body)
		}
		if err != nil {
			return Value{}, err
		}
		if c.kind == ctrlBreak {
			break
		}
		if c.kind == ctrlContinue {
			continue
		}
		if c.kind == ctrlReturn {
			return Value{}, fail("return inside an iteration body escapes compile-time evaluation")
		}
		last = v
	}
	return last, nil
}

func lessValue(a, b Value) bool {
	switch a.Kind {
	case KInt:
		return a.I < b.I
	case KUint:
		return a.U < b.U
	case KFloat:
		return a.F < b.F
	case KString:
		return a.S < b.S
	default:
		return false
	}
}

// evalRepeat evaluates `while cond { body }`, enforcing the same
// iteration cap.
func (e *Evaluator) evalRepeat(r *ast.Repeat) (Value, error) {
	bodyBlock, isBlock := r.Body.(*ast.Block)
	var last Value
	for i := 0; ; i++ {
		if i >= e.Bounds.LoopIterationCap {
			return Value{}, fail("repeat exceeded loop iteration cap")
		}
		cond, err := e.evalExpr(r.Cond)
		if err != nil {
			return Value{}, err
		}
		if cond.Kind != KBool {
			return Value{}, fail("repeat condition must be bool")
		}
		if !cond.B {
			break
		}
		var (
			v    Value
			c    ctrl
			err2 error
		)
		if isBlock {
			v, c, err2 = e.evalBlock(bodyBlock)
		} else {
			v, err2 = e.evalExpr(r.Body)
		}
		if err2 != nil {
			return Value{}, err2
		}
		if c.kind == ctrlBreak {
			break
		}
		if c.kind == ctrlContinue {
			continue
		}
		if c.kind == ctrlReturn {
			return Value{}, fail("return inside a repeat body escapes compile-time evaluation")
		}
		last = v
	}
	return last, nil
}
