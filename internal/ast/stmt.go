package ast

import (
	"github.com/sourcelang/corec/internal/token"
	"github.com/sourcelang/corec/internal/types"
)

// ExprStmt is an expression evaluated for effect.
type ExprStmt struct {
	Loc0 token.SourceLocation
	X Expr
}

func (s *ExprStmt) Loc() token.SourceLocation { return s.Loc0 }
func (s *ExprStmt) stmtNode() {}

type ReturnStmt struct {
	Loc0 token.SourceLocation
	Value Expr // nil for a bare `return`
}

func (s *ReturnStmt) Loc() token.SourceLocation { return s.Loc0 }
func (s *ReturnStmt) stmtNode() {}

type BreakStmt struct {
	Loc0 token.SourceLocation
}

func (s *BreakStmt) Loc() token.SourceLocation { return s.Loc0 }
func (s *BreakStmt) stmtNode() {}

type ContinueStmt struct {
	Loc0 token.SourceLocation
}

func (s *ContinueStmt) Loc() token.SourceLocation { return s.Loc0 }
func (s *ContinueStmt) stmtNode() {}

// VarDecl declares a variable, optionally `mut` and/or `exported`.
// Annotated carries [[...]] annotations; constexpr-ness is inferred
// rather than annotated, but other tags can still appear on globals.
type VarDecl struct {
	Loc0 token.SourceLocation
	annotatable
	Name string
	Declared *TypeAnnotation // nil if the type is to be inferred from Init
	Init Expr // nil for externs
	IsMutable bool
	IsExported bool
	IsExternal bool
}

func (v *VarDecl) Loc() token.SourceLocation { return v.Loc0 }
func (v *VarDecl) stmtNode() {}

// Param is a function parameter; IsRef marks it a by-reference slot.
type Param struct {
	Name string
	Type TypeAnnotation
	IsRef bool
}

// FuncDecl declares a function, optionally external/exported, generic
// iff any parameter or return type mentions a type variable.
type FuncDecl struct {
	Loc0 token.SourceLocation
	annotatable
	Name string
	TypeParams []string // type-variable names introduced by this decl
	Params []Param
	ReturnType TypeAnnotation
	Body *Block // nil iff IsExternal
	IsExternal bool
	IsExported bool
}

func (f *FuncDecl) Loc() token.SourceLocation { return f.Loc0 }
func (f *FuncDecl) stmtNode() {}

// IsGeneric reports whether any parameter or the return type mentions
// one of TypeParams.
func (f *FuncDecl) IsGeneric() bool {
	if len(f.TypeParams) == 0 {
		return false
	}
	check := func(t types.Type) bool { return len(t.FreeTypeVariables()) > 0 }
	if check(f.ReturnType.Elem) {
		return true
	}
	for _, p := range f.Params {
		if check(p.Type.Elem) {
			return true
		}
	}
	return false
}

// FieldDecl is a named field of a record type declaration.
type FieldDecl struct {
	Name string
	Type TypeAnnotation
}

type TypeDecl struct {
	Loc0 token.SourceLocation
	annotatable
	Name string
	TypeParams []string
	Fields []FieldDecl
	IsExported bool
}

func (t *TypeDecl) Loc() token.SourceLocation { return t.Loc0 }
func (t *TypeDecl) stmtNode() {}

// ImportStmt resolves Path to a module; the path resolution itself
// (reading from disk) is the out-of-scope module loader's job, reached
// through program.ModuleSource.
type ImportStmt struct {
	Loc0 token.SourceLocation
	Path string
	Alias string // "" if unaliased
}

func (i *ImportStmt) Loc() token.SourceLocation { return i.Loc0 }
func (i *ImportStmt) stmtNode() {}

// ConditionalStmt is an `if` statement (distinct from the ternary
// Conditional expression); Else may be nil.
type ConditionalStmt struct {
	Loc0 token.SourceLocation
	Cond Expr
	Then *Block
	Else *Block
}

func (c *ConditionalStmt) Loc() token.SourceLocation { return c.Loc0 }
func (c *ConditionalStmt) stmtNode() {}
