package cte

import (
	"github.com/funvibe/funbit/pkg/funbit"

	"github.com/sourcelang/corec/internal/ast"
	"github.com/sourcelang/corec/internal/types"
)

// evalCast implements the width rules: narrowing masks,
// signed casts sign-extend, bool-array<->integer bit packing, and
// integer<->fixed-size-byte-array big-endian conversion. The bit-level
// mechanics are delegated to github.com/funvibe/funbit rather than
// hand-rolled.
func (e *Evaluator) evalCast(c *ast.Cast) (Value, error) {
	v, err := e.evalExpr(c.Value)
	if err != nil {
		return Value{}, err
	}
	target := c.Target

	if target.IsArray {
		return e.castToArray(v, target)
	}

	prim, ok := target.Elem.(types.Primitive)
	if !ok {
		return Value{}, fail("cast target is not a primitive or array type")
	}

	switch prim.Family {
	case types.FamilySigned:
		return castToSigned(v, prim.BitWidth)
	case types.FamilyUnsigned:
		return castToUnsigned(v, prim.BitWidth)
	case types.FamilyFloat:
		return castToFloat(v, prim.BitWidth)
	case types.FamilyBool:
		return castToBool(v)
	case types.FamilyString:
		return castToString(v)
	default:
		return Value{}, fail("unsupported cast target")
	}
}

func rawBitsOf(v Value) (uint64, bool) {
	switch v.Kind {
	case KInt:
		return uint64(v.I), true
	case KUint:
		return v.U, true
	default:
		return 0, false
	}
}

func castToSigned(v Value, width int) (Value, error) {
	raw, ok := rawBitsOf(v)
	if !ok {
		if v.Kind == KFloat {
			return Int(int64(v.F)), nil
		}
		return Value{}, fail("cannot cast this value to a signed integer")
	}
	return Int(types.SignExtend(raw, width)), nil
}

func castToUnsigned(v Value, width int) (Value, error) {
	raw, ok := rawBitsOf(v)
	if !ok {
		if v.Kind == KArray {
			return boolArrayToUint(v, width)
		}
		if v.Kind == KFloat {
			return Uint(uint64(v.F)), nil
		}
		return Value{}, fail("cannot cast this value to an unsigned integer")
	}
	return Uint(types.MaskToWidth(raw, width)), nil
}

func castToFloat(v Value, width int) (Value, error) {
	switch v.Kind {
	case KInt:
		return Float(float64(v.I)), nil
	case KUint:
		return Float(float64(v.U)), nil
	case KFloat:
		return Float(v.F), nil
	default:
		return Value{}, fail("cannot cast this value to a float%d", width)
	}
}

func castToBool(v Value) (Value, error) {
	switch v.Kind {
	case KBool:
		return v, nil
	case KInt:
		return Bool(v.I != 0), nil
	case KUint:
		return Bool(v.U != 0), nil
	default:
		return Value{}, fail("cannot cast this value to bool")
	}
}

func castToString(v Value) (Value, error) {
	if v.Kind != KString {
		return Value{}, fail("cannot cast this value to string")
	}
	return v, nil
}

// boolArrayToUint packs a []bool CTValue array into an unsigned
// integer: bit 0 of the array is the MSB of the result.
func boolArrayToUint(v Value, width int) (Value, error) {
	if len(v.Elems) != width {
		return Value{}, fail("bool-array cast requires array length %d, got %d", width, len(v.Elems))
	}
	bits := make([]byte, len(v.Elems))
	for i, el := range v.Elems {
		if el.Kind != KBool {
			return Value{}, fail("bool-array cast requires every element to be bool")
		}
		if el.B {
			bits[i] = 1
		}
	}
	packed, err := packMSBFirst(bits)
	if err != nil {
		return Value{}, fail("bit packing failed: %v", err)
	}
	n, err := funbit.BitsToInt(packed, false)
	if err != nil {
		return Value{}, fail("bit unpacking failed: %v", err)
	}
	return Uint(uint64(n)), nil
}

// packMSBFirst reorders a slice of single bits (index 0 = MSB) into
// the little-endian byte layout funbit.BitsToInt expects (byte 0 =
// least-significant byte).
func packMSBFirst(bits []byte) ([]byte, error) {
	n := len(bits)
	out := make([]byte, (n+7)/8)
	for i, bit := range bits {
		if bit == 0 {
			continue
		}
		// bit i (MSB-first) has weight 2^(n-1-i); place it in the
		// little-endian byte/position funbit.BitsToInt will read.
		weight := n - 1 - i
		byteIdx := weight / 8
		bitInByte := weight % 8
		out[byteIdx] |= 1 << uint(bitInByte)
	}
	return out, nil
}

// castToArray handles integer->fixed-size byte array (big-endian),
// the only array-producing cast supported. The byte count comes from
// the cast target's own declared size, not from any width carried by
// v. Neither this function nor the checker compares that size with
// the source integer's bit width.
func (e *Evaluator) castToArray(v Value, target ast.TypeAnnotation) (Value, error) {
	elemPrim, ok := target.Elem.(types.Primitive)
	if !ok || !(elemPrim.Family == types.FamilyUnsigned && elemPrim.BitWidth == 8) {
		return Value{}, fail("only casts to fixed-size byte arrays are supported")
	}
	raw, ok := rawBitsOf(v)
	if !ok {
		return Value{}, fail("cannot cast this value to a byte array")
	}
	n, err := e.arrayTargetLen(target)
	if err != nil {
		return Value{}, err
	}
	bytes, err := funbit.IntToBits(int64(raw), uint(n*8), false)
	if err != nil {
		return Value{}, fail("byte conversion failed: %v", err)
	}
	beBytes, err := funbit.ConvertEndianness(bytes, funbit.GetNativeEndianness(), funbit.EndiannessBig, uint(n*8))
	if err != nil {
		return Value{}, fail("endianness conversion failed: %v", err)
	}
	elems := make([]Value, len(beBytes))
	for i, b := range beBytes {
		elems[i] = Uint(uint64(b))
	}
	return Array(elems), nil
}

// arrayTargetLen evaluates an array type annotation's size expression
// to a concrete element count.
func (e *Evaluator) arrayTargetLen(target ast.TypeAnnotation) (int, error) {
	if !target.IsArray || target.SizeExpr == nil {
		return 0, fail("array type has no size expression")
	}
	sz, err := e.evalExpr(target.SizeExpr)
	if err != nil {
		return 0, err
	}
	raw, ok := rawBitsOf(sz)
	if !ok {
		return 0, fail("array size must be an integer")
	}
	n := int(raw)
	if n <= 0 {
		return 0, fail("array size must be positive, got %d", n)
	}
	return n, nil
}
