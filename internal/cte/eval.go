package cte

import (
	"fmt"

	"github.com/sourcelang/corec/internal/ast"
	"github.com/sourcelang/corec/internal/config"
	"github.com/sourcelang/corec/internal/program"
	"github.com/sourcelang/corec/internal/symbol"
	"github.com/sourcelang/corec/internal/types"
)

// failure carries the reason a compile-time evaluation could not
// proceed; it is never exposed to callers of TryEvaluate, which only
// reports ok/not-ok, but is used internally to short-circuit
// recursive evaluation.
type failure struct {
	reason string
}

func (f *failure) Error() string { return f.reason }
func fail(format string, args ...interface{}) error {
	return &failure{reason: fmt.Sprintf(format, args...)}
}

// frame is one function-call activation's local variable table, keyed
// by resolved symbol identity (distinct declarations always produce
// distinct *symbol.Symbol, so a flat map never collides across
// shadowed names).
type frame struct {
	vars map[*symbol.Symbol]Value
}

func newFrame() *frame {
	return &frame{vars: make(map[*symbol.Symbol]Value)}
}

// snapshot clones the frame's variable table for transactional
// rollback: a failed evaluation restores all pre-call state. Values
// are immutable once constructed (see value.go), so a shallow map
// copy is a correct deep snapshot.
func (f *frame) snapshot() map[*symbol.Symbol]Value {
	snap := make(map[*symbol.Symbol]Value, len(f.vars))
	for k, v := range f.vars {
		snap[k] = v
	}
	return snap
}

func (f *frame) restore(snap map[*symbol.Symbol]Value) {
	f.vars = snap
}

// Evaluator is the bounded tree-walking interpreter.
type Evaluator struct {
	Program *program.Program
	Bindings *program.Bindings
	Bounds config.Bounds
	Constants map[*symbol.Symbol]Value // seeded constexpr globals

	instanceID int
	frames []*frame
}

func New(prog *program.Program, bindings *program.Bindings, bounds config.Bounds, constants map[*symbol.Symbol]Value) *Evaluator {
	if constants == nil {
		constants = make(map[*symbol.Symbol]Value)
	}
	return &Evaluator{Program: prog, Bindings: bindings, Bounds: bounds, Constants: constants}
}

// TryEvaluate attempts to fold expr, evaluated in the given instance's
// binding context, to a Value.
func (e *Evaluator) TryEvaluate(instanceID int, expr ast.Expr) (Value, bool) {
	e.instanceID = instanceID
	e.frames = []*frame{newFrame()}
	v, err := e.evalExpr(expr)
	if err != nil {
		return Value{}, false
	}
	return v, true
}

func (e *Evaluator) top() *frame { return e.frames[len(e.frames)-1] }
func (e *Evaluator) symbolOf(node ast.Node) (*symbol.Symbol, bool) {
	return e.Bindings.Lookup(e.instanceID, node)
}

// lookupVar resolves sym's current value: local frame first, then
// seeded constants.
func (e *Evaluator) lookupVar(sym *symbol.Symbol) (Value, bool) {
	if v, ok := e.top().vars[sym]; ok {
		return v, true
	}
	if v, ok := e.Constants[sym]; ok {
		return v, true
	}
	return Value{}, false
}

func (e *Evaluator) evalExpr(expr ast.Expr) (Value, error) {
	switch n := expr.(type) {
	case *ast.Literal:
		return e.evalLiteral(n)
	case *ast.Identifier:
		return e.evalIdentifier(n)
	case *ast.Binary:
		return e.evalBinary(n)
	case *ast.Unary:
		return e.evalUnary(n)
	case *ast.Call:
		return e.evalCall(n)
	case *ast.Index:
		return e.evalIndex(n)
	case *ast.Member:
		return e.evalMember(n)
	case *ast.ArrayLiteral:
		return e.evalArrayLiteral(n)
	case *ast.TupleLiteral:
		return e.evalTupleLiteral(n)
	case *ast.Block:
		v, c, err := e.evalBlock(n)
		if err != nil {
			return Value{}, err
		}
		if c.kind != ctrlNone {
			return Value{}, fail("control flow escaped a value-position block")
		}
		return v, nil
	case *ast.Conditional:
		return e.evalConditional(n)
	case *ast.Cast:
		return e.evalCast(n)
	case *ast.Assignment:
		return e.evalAssignment(n)
	case *ast.Range:
		return e.evalRange(n)
	case *ast.Length:
		return e.evalLength(n)
	case *ast.Iteration:
		return e.evalIteration(n)
	case *ast.Repeat:
		return e.evalRepeat(n)
	case *ast.ResourcePath:
		return Value{}, fail("resource paths are not compile-time evaluable")
	case *ast.Process:
		return Value{}, fail("process invocation is impure")
	default:
		return Value{}, fail("unsupported expression kind %T", expr)
	}
}

func (e *Evaluator) evalLiteral(l *ast.Literal) (Value, error) {
	switch l.Kind {
	case ast.LitInt:
		return Int(l.Int), nil
	case ast.LitUint:
		return Uint(l.Uint), nil
	case ast.LitFloat:
		return Float(l.Float), nil
	case ast.LitChar:
		return Int(l.Int), nil
	case ast.LitString:
		return Str(l.Str), nil
	case ast.LitBool:
		return Bool(l.Bool), nil
	default:
		return Value{}, fail("unknown literal kind")
	}
}

func (e *Evaluator) evalIdentifier(id *ast.Identifier) (Value, error) {
	sym, ok := e.symbolOf(id)
	if !ok {
		return Value{}, fail("unbound identifier %q", id.Name)
	}
	if v, ok := e.lookupVar(sym); ok {
		return v, nil
	}
	return Value{}, fail("no compile-time value for %q", id.Name)
}
