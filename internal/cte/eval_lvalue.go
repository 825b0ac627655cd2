package cte

import "github.com/sourcelang/corec/internal/ast"

// pathStep is one link in an lvalue chain rooted at an identifier,
// supporting nested assignment targets like a.b[i].c = v.
type pathStep struct {
	field string // set for a Member step
	index int64 // set for an Index step
	isIdx bool
}

// resolveLValue walks expr down to its root identifier, recording the
// field/index steps along the way (innermost last).
func (e *Evaluator) resolveLValue(expr ast.Expr) (*ast.Identifier, []pathStep, error) {
	var steps []pathStep
	cur := expr
	for {
		switch n := cur.(type) {
		case *ast.Identifier:
			// reverse steps (we built it innermost-first by walking outside-in)
			for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
				steps[i], steps[j] = steps[j], steps[i]
			}
			return n, steps, nil
		case *ast.Member:
			steps = append(steps, pathStep{field: n.Field})
			cur = n.Target
		case *ast.Index:
			idx, err := e.evalExpr(n.IndexExpr)
			if err != nil {
				return nil, nil, err
			}
			i, err := asInt(idx)
			if err != nil {
				return nil, nil, err
			}
			steps = append(steps, pathStep{index: i, isIdx: true})
			cur = n.Collection
		default:
			return nil, nil, fail("unsupported lvalue expression %T", expr)
		}
	}
}

// applyPath recursively rewrites base along path with newVal at the
// end, applying copy-on-write at each level.
func applyPath(base Value, path []pathStep, newVal Value) (Value, error) {
	if len(path) == 0 {
		return newVal, nil
	}
	step := path[0]
	if step.isIdx {
		if base.Kind != KArray {
			return Value{}, fail("index-assignment target is not an array")
		}
		if step.index < 0 || int(step.index) >= len(base.Elems) {
			return Value{}, fail("index %d out of range", step.index)
		}
		child, err := applyPath(base.Elems[step.index], path[1:], newVal)
		if err != nil {
			return Value{}, err
		}
		return base.WithElem(int(step.index), child)
	}
	if base.Kind != KComposite {
		return Value{}, fail("field-assignment target is not a composite")
	}
	cur, ok := base.Fields[step.field]
	if !ok {
		return Value{}, fail("composite %s has no field %q", base.TypeName, step.field)
	}
	child, err := applyPath(cur, path[1:], newVal)
	if err != nil {
		return Value{}, err
	}
	return base.WithField(step.field, child)
}

func (e *Evaluator) evalAssignment(a *ast.Assignment) (Value, error) {
	rhs, err := e.evalExpr(a.RHS)
	if err != nil {
		return Value{}, err
	}
	ident, path, err := e.resolveLValue(a.LHS)
	if err != nil {
		return Value{}, err
	}
	sym, ok := e.symbolOf(ident)
	if !ok {
		return Value{}, fail("unbound assignment target %q", ident.Name)
	}
	if len(path) == 0 {
		e.top().vars[sym] = rhs
		return rhs, nil
	}
	base, ok := e.lookupVar(sym)
	if !ok {
		return Value{}, fail("no compile-time value for %q", ident.Name)
	}
	updated, err := applyPath(base, path, rhs)
	if err != nil {
		return Value{}, err
	}
	e.top().vars[sym] = updated
	return rhs, nil
}
