// Package types implements the Source language's Type family: tagged
// variants (primitive, array, named, type-variable, type-of),
// substitution, and the width rules that drive casts.
//
// Type here is a concrete description of a value's shape, not an
// inference variable with a kind lattice: there is no unifier, only
// substitution of already-resolved type variables.
package types

import (
	"fmt"
	"sort"
	"strings"
)

// Family groups primitives for arithmetic-operator checks.
type Family int

const (
	FamilyNone Family = iota
	FamilySigned
	FamilyUnsigned
	FamilyFloat
	FamilyBool
	FamilyString
)

// Type is the interface every type variant implements.
type Type interface {
	String() string
	Apply(Subst) Type
	FreeTypeVariables() []string
	// Equal performs structural equality after substitution; used by
	// the checker for subtype/unify-style checks (design is monomorphic,
	// so "unify" here means "identical after substitution").
	Equal(Type) bool
}

// Subst maps type-variable names to concrete types.
type Subst map[string]Type

// Primitive covers signed/unsigned integers with explicit bit width,
// the three float widths, bool and string.
type Primitive struct {
	Family Family
	// BitWidth is meaningful only for FamilySigned/FamilyUnsigned
	// (1..64) and FamilyFloat (16/32/64).
	BitWidth int
}

func Bool() Primitive { return Primitive{Family: FamilyBool} }
func String() Primitive { return Primitive{Family: FamilyString} }
func I(bits int) Primitive { return Primitive{Family: FamilySigned, BitWidth: bits} }
func U(bits int) Primitive { return Primitive{Family: FamilyUnsigned, BitWidth: bits} }
func F(bits int) Primitive { return Primitive{Family: FamilyFloat, BitWidth: bits} }

func (p Primitive) String() string {
	switch p.Family {
	case FamilySigned:
		return fmt.Sprintf("i%d", p.BitWidth)
	case FamilyUnsigned:
		return fmt.Sprintf("u%d", p.BitWidth)
	case FamilyFloat:
		return fmt.Sprintf("f%d", p.BitWidth)
	case FamilyBool:
		return "bool"
	case FamilyString:
		return "string"
	default:
		return "<invalid-primitive>"
	}
}

func (p Primitive) Apply(Subst) Type { return p }
func (p Primitive) FreeTypeVariables() []string { return nil }
func (p Primitive) Equal(other Type) bool {
	o, ok := other.(Primitive)
	return ok && o.Family == p.Family && o.BitWidth == p.BitWidth
}

func (p Primitive) IsInteger() bool {
	return p.Family == FamilySigned || p.Family == FamilyUnsigned
}

// Array is a fixed-shape sequence type; Size is an expression in the
// source AST (its constant value is resolved by the checker/CTE), so
// Array only stores the element type plus an opaque size key used for
// equality (two arrays are the same type iff same element type and
// same size-key).
type Array struct {
	Elem Type
	SizeKey string
}

func (a Array) String() string { return fmt.Sprintf("[%s;%s]", a.Elem.String(), a.SizeKey) }
func (a Array) Apply(s Subst) Type {
	return Array{Elem: a.Elem.Apply(s), SizeKey: a.SizeKey}
}
func (a Array) FreeTypeVariables() []string { return a.Elem.FreeTypeVariables() }
func (a Array) Equal(other Type) bool {
	o, ok := other.(Array)
	return ok && a.SizeKey == o.SizeKey && a.Elem.Equal(o.Elem)
}

// Named refers to a user-declared record type by name.
type Named struct {
	Name string
	// Args instantiates a generic named type (monomorphization target).
	Args []Type
}

func (n Named) String() string {
	if len(n.Args) == 0 {
		return n.Name
	}
	parts := make([]string, len(n.Args))
	for i, a := range n.Args {
		parts[i] = a.String()
	}
	return n.Name + "<" + strings.Join(parts, ",") + ">"
}
func (n Named) Apply(s Subst) Type {
	newArgs := make([]Type, len(n.Args))
	for i, a := range n.Args {
		newArgs[i] = a.Apply(s)
	}
	return Named{Name: n.Name, Args: newArgs}
}
func (n Named) FreeTypeVariables() []string {
	var out []string
	for _, a := range n.Args {
		out = append(out, a.FreeTypeVariables()...)
	}
	return out
}
func (n Named) Equal(other Type) bool {
	o, ok := other.(Named)
	if !ok || o.Name != n.Name || len(o.Args) != len(n.Args) {
		return false
	}
	for i := range n.Args {
		if !n.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	return true
}

// Var is an unresolved type variable (generic parameter, or an
// inference placeholder pending a concrete argument type).
type Var struct {
	Name string
}

func (v Var) String() string { return v.Name }
func (v Var) FreeTypeVariables() []string { return []string{v.Name} }
func (v Var) Equal(other Type) bool {
	o, ok := other.(Var)
	return ok && o.Name == v.Name
}
func (v Var) Apply(s Subst) Type {
	if repl, ok := s[v.Name]; ok {
		if rv, ok := repl.(Var); ok && rv.Name == v.Name {
			return v
		}
		return repl
	}
	return v
}

// TypeOf wraps an expression whose type is resolved after inference
// (e.g. `typeof(e)` annotations); ExprKey is an opaque key supplied by
// the caller (the checker substitutes in the expression's inferred
// type once known).
type TypeOf struct {
	ExprKey string
	Resolved Type // nil until the checker fills it in
}

func (t TypeOf) String() string {
	if t.Resolved != nil {
		return t.Resolved.String()
	}
	return "typeof(" + t.ExprKey + ")"
}
func (t TypeOf) Apply(s Subst) Type {
	if t.Resolved != nil {
		return TypeOf{ExprKey: t.ExprKey, Resolved: t.Resolved.Apply(s)}
	}
	return t
}
func (t TypeOf) FreeTypeVariables() []string {
	if t.Resolved != nil {
		return t.Resolved.FreeTypeVariables()
	}
	return nil
}
func (t TypeOf) Equal(other Type) bool {
	o, ok := other.(TypeOf)
	if !ok {
		return false
	}
	if t.Resolved != nil && o.Resolved != nil {
		return t.Resolved.Equal(o.Resolved)
	}
	return t.ExprKey == o.ExprKey
}

// IsConcrete reports whether t mentions no type variable anywhere in
// its structure.
func IsConcrete(t Type) bool {
	return len(t.FreeTypeVariables()) == 0
}

// TypeSignature is the monomorphization key: the function name plus
// the concrete argument types observed at a call site. Two call sites
// with structurally equal signatures share one instantiation.
type TypeSignature struct {
	FuncName string
	ArgTypes []Type
}

// Key renders a deterministic, comparable string for map lookups and
// for mangled-name generation (internal/ids derives the mangle from
// this string, never from a random id, so the same program always
// mangles the same way).
func (ts TypeSignature) Key() string {
	parts := make([]string, len(ts.ArgTypes))
	for i, a := range ts.ArgTypes {
		parts[i] = a.String()
	}
	return ts.FuncName + "(" + strings.Join(parts, ",") + ")"
}

// TupleTypeName builds the synthetic composite name for a tuple
// return type, e.g. __tup2_i32_bool.
func TupleTypeName(elems []Type) string {
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = sanitizeForName(e.String())
	}
	return fmt.Sprintf("__tup%d_%s", len(elems), strings.Join(parts, "_"))
}

func sanitizeForName(s string) string {
	r := strings.NewReplacer("<", "_", ">", "_", ",", "_", ";", "_", "[", "_", "]", "_", " ", "")
	return r.Replace(s)
}

// SortedKeys returns m's keys in ascending order, for deterministic
// set-to-slice conversions (facts tables must iterate in stable order
// for the round-trip invariant).
func SortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
