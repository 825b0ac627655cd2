package cte

import (
	"github.com/sourcelang/corec/internal/ast"
)

func (e *Evaluator) evalBinary(b *ast.Binary) (Value, error) {
	// Short-circuit logical operators.
	if b.Op == ast.OpAnd || b.Op == ast.OpOr {
		left, err := e.evalExpr(b.Left)
		if err != nil {
			return Value{}, err
		}
		if left.Kind != KBool {
			return Value{}, fail("logical operator requires bool operands")
		}
		if b.Op == ast.OpAnd && !left.B {
			return Bool(false), nil
		}
		if b.Op == ast.OpOr && left.B {
			return Bool(true), nil
		}
		right, err := e.evalExpr(b.Right)
		if err != nil {
			return Value{}, err
		}
		if right.Kind != KBool {
			return Value{}, fail("logical operator requires bool operands")
		}
		return right, nil
	}

	left, err := e.evalExpr(b.Left)
	if err != nil {
		return Value{}, err
	}
	right, err := e.evalExpr(b.Right)
	if err != nil {
		return Value{}, err
	}
	return evalBinaryValues(b.Op, left, right)
}

func evalBinaryValues(op ast.BinaryOp, l, r Value) (Value, error) {
	switch {
	case l.Kind == KInt && r.Kind == KInt:
		return intBinary(op, l.I, r.I)
	case l.Kind == KUint && r.Kind == KUint:
		return uintBinary(op, l.U, r.U)
	case l.Kind == KFloat && r.Kind == KFloat:
		return floatBinary(op, l.F, r.F)
	case l.Kind == KString && r.Kind == KString && (op == ast.OpEq || op == ast.OpNeq):
		eq := l.S == r.S
		if op == ast.OpNeq {
			eq = !eq
		}
		return Bool(eq), nil
	case l.Kind == KBool && r.Kind == KBool && (op == ast.OpEq || op == ast.OpNeq || op == ast.OpBitAnd || op == ast.OpBitOr || op == ast.OpBitXor):
		return boolBinary(op, l.B, r.B)
	default:
		return Value{}, fail("operand type mismatch for binary operator (%v, %v)", l.Kind, r.Kind)
	}
}

func intBinary(op ast.BinaryOp, l, r int64) (Value, error) {
	switch op {
	case ast.OpAdd:
		return Int(l + r), nil
	case ast.OpSub:
		return Int(l - r), nil
	case ast.OpMul:
		return Int(l * r), nil
	case ast.OpDiv:
		if r == 0 {
			return Value{}, fail("division by zero")
		}
		return Int(l / r), nil
	case ast.OpMod:
		if r == 0 {
			return Value{}, fail("modulo by zero")
		}
		return Int(l % r), nil
	case ast.OpEq:
		return Bool(l == r), nil
	case ast.OpNeq:
		return Bool(l != r), nil
	case ast.OpLt:
		return Bool(l < r), nil
	case ast.OpLte:
		return Bool(l <= r), nil
	case ast.OpGt:
		return Bool(l > r), nil
	case ast.OpGte:
		return Bool(l >= r), nil
	case ast.OpBitAnd:
		return Int(l & r), nil
	case ast.OpBitOr:
		return Int(l | r), nil
	case ast.OpBitXor:
		return Int(l ^ r), nil
	case ast.OpShl:
		return Int(l << uint(r)), nil
	case ast.OpShr:
		return Int(l >> uint(r)), nil
	default:
		return Value{}, fail("unsupported integer operator")
	}
}

func uintBinary(op ast.BinaryOp, l, r uint64) (Value, error) {
	switch op {
	case ast.OpAdd:
		return Uint(l + r), nil
	case ast.OpSub:
		return Uint(l - r), nil
	case ast.OpMul:
		return Uint(l * r), nil
	case ast.OpDiv:
		if r == 0 {
			return Value{}, fail("division by zero")
		}
		return Uint(l / r), nil
	case ast.OpMod:
		if r == 0 {
			return Value{}, fail("modulo by zero")
		}
		return Uint(l % r), nil
	case ast.OpEq:
		return Bool(l == r), nil
	case ast.OpNeq:
		return Bool(l != r), nil
	case ast.OpLt:
		return Bool(l < r), nil
	case ast.OpLte:
		return Bool(l <= r), nil
	case ast.OpGt:
		return Bool(l > r), nil
	case ast.OpGte:
		return Bool(l >= r), nil
	case ast.OpBitAnd:
		return Uint(l & r), nil
	case ast.OpBitOr:
		return Uint(l | r), nil
	case ast.OpBitXor:
		return Uint(l ^ r), nil
	case ast.OpShl:
		return Uint(l << r), nil
	case ast.OpShr:
		return Uint(l >> r), nil
	default:
		return Value{}, fail("unsupported unsigned operator")
	}
}

func floatBinary(op ast.BinaryOp, l, r float64) (Value, error) {
	switch op {
	case ast.OpAdd:
		return Float(l + r), nil
	case ast.OpSub:
		return Float(l - r), nil
	case ast.OpMul:
		return Float(l * r), nil
	case ast.OpDiv:
		if r == 0 {
			return Value{}, fail("division by zero")
		}
		return Float(l / r), nil
	case ast.OpEq:
		return Bool(l == r), nil
	case ast.OpNeq:
		return Bool(l != r), nil
	case ast.OpLt:
		return Bool(l < r), nil
	case ast.OpLte:
		return Bool(l <= r), nil
	case ast.OpGt:
		return Bool(l > r), nil
	case ast.OpGte:
		return Bool(l >= r), nil
	default:
		return Value{}, fail("unsupported float operator (mixed-width arithmetic is forbidden)")
	}
}

func boolBinary(op ast.BinaryOp, l, r bool) (Value, error) {
	switch op {
	case ast.OpEq:
		return Bool(l == r), nil
	case ast.OpNeq:
		return Bool(l != r), nil
	case ast.OpBitAnd:
		return Bool(l && r), nil
	case ast.OpBitOr:
		return Bool(l || r), nil
	case ast.OpBitXor:
		return Bool(l != r), nil
	default:
		return Value{}, fail("unsupported bool operator")
	}
}

func (e *Evaluator) evalUnary(u *ast.Unary) (Value, error) {
	v, err := e.evalExpr(u.Operand)
	if err != nil {
		return Value{}, err
	}
	switch u.Op {
	case ast.OpNeg:
		switch v.Kind {
		case KInt:
			return Int(-v.I), nil
		case KFloat:
			return Float(-v.F), nil
		default:
			return Value{}, fail("unary - requires a signed integer or float operand")
		}
	case ast.OpNot:
		if v.Kind != KBool {
			return Value{}, fail("unary ! requires a bool operand")
		}
		return Bool(!v.B), nil
	case ast.OpBitNot:
		switch v.Kind {
		case KInt:
			return Int(^v.I), nil
		case KUint:
			return Uint(^v.U), nil
		default:
			return Value{}, fail("unary ~ requires an integer operand")
		}
	default:
		return Value{}, fail("unsupported unary operator")
	}
}

func (e *Evaluator) evalArrayLiteral(a *ast.ArrayLiteral) (Value, error) {
	elems := make([]Value, len(a.Elements))
	for i, el := range a.Elements {
		v, err := e.evalExpr(el)
		if err != nil {
			return Value{}, err
		}
		elems[i] = v
	}
	return Array(elems), nil
}

// tupleFieldName is the field-naming convention shared with the type
// checker's forced-tuple-type records (internal/types.TupleTypeName
// for the type name; fields are positional, _0.._n-1).
func tupleFieldName(i int) string {
	return "_" + itoa(i)
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	digits := []byte{}
	neg := i < 0
	if neg {
		i = -i
	}
	for i > 0 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
		i /= 10
	}
	if neg {
		return "-" + string(digits)
	}
	return string(digits)
}

func (e *Evaluator) evalTupleLiteral(t *ast.TupleLiteral) (Value, error) {
	fields := make(map[string]Value, len(t.Elements))
	for i, el := range t.Elements {
		v, err := e.evalExpr(el)
		if err != nil {
			return Value{}, err
		}
		fields[tupleFieldName(i)] = v
	}
	return Composite("__tup", fields), nil
}

func (e *Evaluator) evalIndex(ix *ast.Index) (Value, error) {
	coll, err := e.evalExpr(ix.Collection)
	if err != nil {
		return Value{}, err
	}
	idx, err := e.evalExpr(ix.IndexExpr)
	if err != nil {
		return Value{}, err
	}
	i, err := asInt(idx)
	if err != nil {
		return Value{}, err
	}
	if coll.Kind != KArray {
		return Value{}, fail("cannot index a non-array value")
	}
	if i < 0 || int(i) >= len(coll.Elems) {
		return Value{}, fail("index %d out of range", i)
	}
	return coll.Elems[i], nil
}

func (e *Evaluator) evalMember(m *ast.Member) (Value, error) {
	target, err := e.evalExpr(m.Target)
	if err != nil {
		return Value{}, err
	}
	if target.Kind != KComposite {
		return Value{}, fail("cannot access field %q on a non-composite value", m.Field)
	}
	v, ok := target.Fields[m.Field]
	if !ok {
		return Value{}, fail("composite %s has no field %q", target.TypeName, m.Field)
	}
	return v, nil
}

func (e *Evaluator) evalConditional(c *ast.Conditional) (Value, error) {
	cond, err := e.evalExpr(c.Cond)
	if err != nil {
		return Value{}, err
	}
	if cond.Kind != KBool {
		return Value{}, fail("conditional test must be bool")
	}
	if cond.B {
		return e.evalExpr(c.Then)
	}
	return e.evalExpr(c.Else)
}

func (e *Evaluator) evalRange(r *ast.Range) (Value, error) {
	from, err := e.evalExpr(r.From)
	if err != nil {
		return Value{}, err
	}
	to, err := e.evalExpr(r.To)
	if err != nil {
		return Value{}, err
	}
	lo, err := asInt(from)
	if err != nil {
		return Value{}, err
	}
	hi, err := asInt(to)
	if err != nil {
		return Value{}, err
	}
	if hi-lo > int64(e.Bounds.LoopIterationCap) {
		return Value{}, fail("range exceeds loop iteration cap")
	}
	if hi < lo {
		hi = lo
	}
	elems := make([]Value, 0, hi-lo)
	for i := lo; i < hi; i++ {
		elems = append(elems, Int(i))
	}
	return Array(elems), nil
}

func (e *Evaluator) evalLength(l *ast.Length) (Value, error) {
	v, err := e.evalExpr(l.Value)
	if err != nil {
		return Value{}, err
	}
	switch v.Kind {
	case KArray:
		return Int(int64(len(v.Elems))), nil
	case KString:
		return Int(int64(len(v.S))), nil
	default:
		return Value{}, fail("length operator requires an array or string operand")
	}
}

func asInt(v Value) (int64, error) {
	switch v.Kind {
	case KInt:
		return v.I, nil
	case KUint:
		return int64(v.U), nil
	default:
		return 0, fail("expected an integer value")
	}
}
