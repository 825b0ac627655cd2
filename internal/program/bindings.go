package program

import (
	"github.com/sourcelang/corec/internal/ast"
	"github.com/sourcelang/corec/internal/symbol"
)

// bindingKey pairs an instance with an AST node; ast.Node values here
// are always pointers to concrete node structs, so interface equality
// is pointer equality. Modeling this as (instance_id, node) -> Symbol
// in a hash map rather than storing symbol pointers inside AST nodes
// keeps the AST reusable across instances.
type bindingKey struct {
	instanceID int
	node ast.Node
}

// Bindings is the side table mapping (instance, AST node) to the
// resolved Symbol.
type Bindings struct {
	byNode map[bindingKey]*symbol.Symbol
	createsNewVar map[bindingKey]bool
}

func NewBindings() *Bindings {
	return &Bindings{
		byNode: make(map[bindingKey]*symbol.Symbol),
		createsNewVar: make(map[bindingKey]bool),
	}
}

// Bind records that node resolves to sym within instanceID.
func (b *Bindings) Bind(instanceID int, node ast.Node, sym *symbol.Symbol) {
	b.byNode[bindingKey{instanceID, node}] = sym
}

// Lookup returns the symbol bound to node within instanceID, if any.
func (b *Bindings) Lookup(instanceID int, node ast.Node) (*symbol.Symbol, bool) {
	sym, ok := b.byNode[bindingKey{instanceID, node}]
	return sym, ok
}

// SetCreatesNewVariable records the resolver's "creates new variable"
// flag for an assignment expression.
func (b *Bindings) SetCreatesNewVariable(instanceID int, node ast.Node, creates bool) {
	b.createsNewVar[bindingKey{instanceID, node}] = creates
}

func (b *Bindings) CreatesNewVariable(instanceID int, node ast.Node) bool {
	return b.createsNewVar[bindingKey{instanceID, node}]
}

// Count returns the number of distinct node bindings recorded, used
// by debug invariant checks.
func (b *Bindings) Count() int {
	return len(b.byNode)
}
