// Package symbol implements the Symbol model and lexical Scope tree.
//
// Symbols live in one arena and are referenced elsewhere by stable
// pointer; scopes form a parent-linked tree with duplicate-name
// rejection.
package symbol

import (
	"fmt"

	"github.com/sourcelang/corec/internal/ast"
	"github.com/sourcelang/corec/internal/types"
)

// Kind tags what a Symbol names.
type Kind int

const (
	Variable Kind = iota
	Function
	Type
	Constant
)

func (k Kind) String() string {
	switch k {
	case Variable:
		return "variable"
	case Function:
		return "function"
	case Type:
		return "type"
	case Constant:
		return "constant"
	default:
		return "unknown"
	}
}

// Symbol is an entry in the program's symbol arena. Symbols
// never migrate between instances once created.
type Symbol struct {
	Name string
	Kind Kind
	Type types.Type
	IsMutable bool
	IsExternal bool
	IsExported bool
	IsLocal bool
	Declaration ast.Node
	ModuleID int
	InstanceID int
}

func (s *Symbol) String() string {
	return fmt.Sprintf("%s %s: %s", s.Kind, s.Name, s.Type)
}

// Arena owns every Symbol ever created; callers hold *Symbol and
// never copy through value semantics, since pointer identity is the
// program-wide symbol identity.
type Arena struct {
	symbols []*Symbol
}

func NewArena() *Arena {
	return &Arena{}
}

// New allocates and registers a fresh Symbol.
func (a *Arena) New(sym Symbol) *Symbol {
	s := sym
	a.symbols = append(a.symbols, &s)
	return &s
}

// All returns every symbol the arena has ever allocated, in creation
// order (used by debug invariant checks).
func (a *Arena) All() []*Symbol {
	return a.symbols
}
