// Package program implements the Program/ModuleInfo/ModuleInstance
// model -- the set of loaded modules, each instantiable multiple
// times with distinct symbol tables so per-import scoping works.
// Reading source from disk is a loader's job, reached here only
// through the ModuleSource seam.
package program

import (
	"fmt"

	"github.com/sourcelang/corec/internal/ast"
	"github.com/sourcelang/corec/internal/symbol"
)

// ModuleInfo is one loaded module.
type ModuleInfo struct {
	ID int
	Path string
	Module *ast.Module
}

// ModuleInstance is a distinct per-importer materialization of a
// module.
type ModuleInstance struct {
	ID int
	ModuleID int
	Scope *symbol.Scope
	// Symbols is the instance-local `name -> Symbol` view used for
	// imports: names copied in from an exporter are visible here even
	// though they were never Define'd in Scope directly.
	Symbols map[string]*symbol.Symbol
}

func (mi *ModuleInstance) Define(name string, sym *symbol.Symbol) {
	if mi.Symbols == nil {
		mi.Symbols = make(map[string]*symbol.Symbol)
	}
	mi.Symbols[name] = sym
}

func (mi *ModuleInstance) Lookup(name string) (*symbol.Symbol, bool) {
	if sym, ok := mi.Symbols[name]; ok {
		return sym, true
	}
	return mi.Scope.Lookup(name)
}

// ModuleSource is the seam to an out-of-scope module loader: given an
// import path relative to an importing module, it returns the parsed
// module. The core never reads a filesystem itself.
type ModuleSource interface {
	Load(importPath string, fromModulePath string) (*ast.Module, error)
}

// Program owns every module and instance for one compilation.
type Program struct {
	Arena *symbol.Arena
	Modules []*ModuleInfo
	Instances []*ModuleInstance
	Source ModuleSource

	modulesByPath map[string]*ModuleInfo
	// instanceByModuleAndImporter memoizes a distinct ModuleInstance per
	// (module, importer-instance) pair, so re-importing the same module
	// from the same importer reuses one instance rather than creating
	// a new one.
	instanceByModuleAndImporter map[instanceKey]*ModuleInstance
}

type instanceKey struct {
	moduleID int
	importerID int // -1 for the entry/root instance
}

func New(source ModuleSource) *Program {
	return &Program{
		Arena: symbol.NewArena(),
		Source: source,
		modulesByPath: make(map[string]*ModuleInfo),
		instanceByModuleAndImporter: make(map[instanceKey]*ModuleInstance),
	}
}

// AddModule registers a parsed module, or returns the already
// registered ModuleInfo for that path.
func (p *Program) AddModule(path string, m *ast.Module) *ModuleInfo {
	if existing, ok := p.modulesByPath[path]; ok {
		return existing
	}
	info := &ModuleInfo{ID: len(p.Modules), Path: path, Module: m}
	p.Modules = append(p.Modules, info)
	p.modulesByPath[path] = info
	return info
}

func (p *Program) ModuleByPath(path string) (*ModuleInfo, bool) {
	m, ok := p.modulesByPath[path]
	return m, ok
}

// NewInstance returns the ModuleInstance for (moduleID, importerID),
// allocating a fresh one the first time that pair is requested.
// importerID is -1 for the program's entry instance.
func (p *Program) NewInstance(moduleID int, importerID int) *ModuleInstance {
	key := instanceKey{moduleID: moduleID, importerID: importerID}
	if existing, ok := p.instanceByModuleAndImporter[key]; ok {
		return existing
	}
	inst := &ModuleInstance{
		ID: len(p.Instances),
		ModuleID: moduleID,
		Scope: symbol.NewRoot(),
		Symbols: make(map[string]*symbol.Symbol),
	}
	p.Instances = append(p.Instances, inst)
	p.instanceByModuleAndImporter[key] = inst
	return inst
}

func (p *Program) Instance(id int) *ModuleInstance {
	if id < 0 || id >= len(p.Instances) {
		return nil
	}
	return p.Instances[id]
}

func (p *Program) Module(id int) *ModuleInfo {
	if id < 0 || id >= len(p.Modules) {
		return nil
	}
	return p.Modules[id]
}

func (p *Program) String() string {
	return fmt.Sprintf("Program{modules=%d, instances=%d}", len(p.Modules), len(p.Instances))
}
