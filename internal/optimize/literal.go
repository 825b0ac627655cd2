package optimize

import (
	"github.com/sourcelang/corec/internal/ast"
	"github.com/sourcelang/corec/internal/cte"
	"github.com/sourcelang/corec/internal/token"
)

// valueToLiteral converts a folded CTValue back into the single AST
// shape the Residualizer ever introduces; composite and
// array values have no literal syntax in this AST family, so folding
// stops at the scalar boundary and those values remain facts only
// (still usable by the Analyzer) rather than residualized nodes.
func valueToLiteral(v cte.Value, loc token.SourceLocation) (*ast.Literal, bool) {
	switch v.Kind {
	case cte.KInt:
		return &ast.Literal{Loc0: loc, Kind: ast.LitInt, Int: v.I}, true
	case cte.KUint:
		return &ast.Literal{Loc0: loc, Kind: ast.LitUint, Uint: v.U}, true
	case cte.KFloat:
		return &ast.Literal{Loc0: loc, Kind: ast.LitFloat, Float: v.F}, true
	case cte.KBool:
		return &ast.Literal{Loc0: loc, Kind: ast.LitBool, Bool: v.B}, true
	case cte.KString:
		return &ast.Literal{Loc0: loc, Kind: ast.LitString, Str: v.S}, true
	default:
		return nil, false
	}
}
