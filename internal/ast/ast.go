// Package ast defines the Source language's syntax tree: the three
// tagged families (Type, Expr, Stmt), annotations, and the node
// interfaces every pass walks.
//
// The lexer and parser that build these trees are out of scope for
// this module; this package only defines the shape an external front
// end constructs and every downstream pass consumes. Nodes are
// immutable after construction except where the Lowerer and
// Residualizer mutate them in place: the pipeline is the sole owner of
// the tree, so in-place rewrites are safe.
package ast

import (
	"github.com/sourcelang/corec/internal/token"
	"github.com/sourcelang/corec/internal/types"
)

// Node is the base interface every AST node implements.
type Node interface {
	Loc() token.SourceLocation
}

// Expr is any expression node (lists the full kind set).
type Expr interface {
	Node
	exprNode
}

// exprNode is an unexported marker method that seals Expr to the
// kinds declared in this package.
type exprNode interface {
	exprNode()
}

// Stmt is any statement node.
type Stmt interface {
	Node
	stmtNode
}

// stmtNode is an unexported marker method that seals Stmt to the
// kinds declared in this package.
type stmtNode interface {
	stmtNode()
}

// Annotation is a recognized or unrecognized `[[name(args...)]]` tag
// attached to a declaration.
type Annotation struct {
	Name string
	Args []string
	Loc token.SourceLocation
}

// TypeAnnotation is a syntactic type reference as written by the
// programmer: a semantic types.Type for everything except arrays,
// whose size is an expression resolved later by the checker/CTE
// ("array(elem, size-expr)").
type TypeAnnotation struct {
	Elem types.Type // set directly for non-array annotations
	IsArray bool
	SizeExpr Expr // only when IsArray
	Loc token.SourceLocation
}

// Resolved returns the semantic type once SizeExpr (if any) has been
// folded to a concrete size by the checker; callers must not call
// this before that has happened for array annotations.
func (ta TypeAnnotation) Resolved(sizeKey string) types.Type {
	if !ta.IsArray {
		return ta.Elem
	}
	return types.Array{Elem: ta.Elem, SizeKey: sizeKey}
}

// annotatable is embedded by every declaration-bearing node so
// annotations can be queried uniformly.
type annotatable struct {
	Annotations []Annotation
}

func (a annotatable) HasAnnotation(name string) bool {
	for _, ann := range a.Annotations {
		if ann.Name == name {
			return true
		}
	}
	return false
}

func (a annotatable) Annotation(name string) (Annotation, bool) {
	for _, ann := range a.Annotations {
		if ann.Name == name {
			return ann, true
		}
	}
	return Annotation{}, false
}
