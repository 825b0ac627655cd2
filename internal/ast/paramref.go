package ast

import "github.com/sourcelang/corec/internal/token"

// ParamRef is a synthetic Node used as a Bindings key for function
// parameters, which (unlike identifiers) don't get their own AST node
// at the declaration site. The resolver binds each parameter's Symbol
// here; the type checker and CTE look it up the same way.
type ParamRef struct {
	Fn *FuncDecl
	Index int
}

func (p ParamRef) Loc() token.SourceLocation {
	if p.Fn == nil {
		return token.SourceLocation{}
	}
	return p.Fn.Loc0
}
