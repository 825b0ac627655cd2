// Package resolver implements the Resolver stage: predeclare every
// module-level name, then walk each function body binding every
// identifier reference, assignment, and declaration to a Symbol in
// the program's Bindings side table.
package resolver

import (
	"github.com/sourcelang/corec/internal/ast"
	"github.com/sourcelang/corec/internal/diagnostics"
	"github.com/sourcelang/corec/internal/program"
	"github.com/sourcelang/corec/internal/symbol"
	"github.com/sourcelang/corec/internal/token"
	"github.com/sourcelang/corec/internal/types"
)

// Resolver walks one ModuleInstance's AST, defining and binding
// symbols.
type Resolver struct {
	Program *program.Program
	Bindings *program.Bindings

	instance *program.ModuleInstance
	scope *symbol.Scope
	errs []*diagnostics.CompileError
}

func New(prog *program.Program, bindings *program.Bindings) *Resolver {
	return &Resolver{Program: prog, Bindings: bindings}
}

// Resolve runs the full predeclare-then-walk pass over inst's module.
// Errors are accumulated and all returned together so one run
// surfaces every undefined-name/duplicate-name problem rather than
// stopping at the first.
func (r *Resolver) Resolve(inst *program.ModuleInstance, mod *ast.Module) []*diagnostics.CompileError {
	r.instance = inst
	r.scope = inst.Scope
	r.errs = nil

	r.resolveImports(mod)
	r.predeclare(mod)
	for _, fn := range mod.Funcs() {
		if !fn.IsExternal {
			r.resolveFuncBody(fn)
		}
	}
	for _, v := range mod.Vars() {
		if v.Init != nil {
			r.resolveExpr(v.Init)
		}
	}
	return r.errs
}

func (r *Resolver) errorf(loc token.SourceLocation, format string, args ...interface{}) {
	r.errs = append(r.errs, diagnostics.New(diagnostics.StageResolve, loc, format, args...))
}

// resolveImports materializes an instance for each imported module
// through program.ModuleSource and copies its exported symbols into
// this instance's symbol table. Reading the imported module's source
// is the out-of-scope loader's job; this only drives the seam.
func (r *Resolver) resolveImports(mod *ast.Module) {
	if r.Program.Source == nil {
		return
	}
	for _, imp := range mod.Imports() {
		parsed, err := r.Program.Source.Load(imp.Path, mod.Path)
		if err != nil {
			r.errorf(imp.Loc0, "cannot load import %q: %v", imp.Path, err)
			continue
		}
		info := r.Program.AddModule(imp.Path, parsed)
		importedInst := r.Program.NewInstance(info.ID, r.instance.ID)

		sub := New(r.Program, r.Bindings)
		subErrs := sub.Resolve(importedInst, parsed)
		r.errs = append(r.errs, subErrs...)

		alias := imp.Alias
		if alias == "" {
			alias = imp.Path
		}
		for name, sym := range importedInst.Symbols {
			if !sym.IsExported {
				continue
			}
			r.instance.Define(alias+"."+name, sym)
		}
	}
}

// predeclare registers every top-level func/type/var name before any
// body is walked, so forward references and mutual recursion resolve.
func (r *Resolver) predeclare(mod *ast.Module) {
	for _, d := range mod.Decls {
		switch decl := d.(type) {
		case *ast.FuncDecl:
			r.defineTop(decl.Name, symbol.Symbol{
				Name: decl.Name, Kind: symbol.Function,
				Type: funcSignatureType(decl), IsExternal: decl.IsExternal,
				IsExported: decl.IsExported, Declaration: decl,
			}, decl.Loc0)
		case *ast.TypeDecl:
			r.defineTop(decl.Name, symbol.Symbol{
				Name: decl.Name, Kind: symbol.Type,
				Type: types.Named{Name: decl.Name}, IsExported: decl.IsExported,
				Declaration: decl,
			}, decl.Loc0)
		case *ast.VarDecl:
			var t types.Type
			if decl.Declared != nil {
				t = decl.Declared.Elem
			}
			r.defineTop(decl.Name, symbol.Symbol{
				Name: decl.Name, Kind: symbol.Variable, Type: t,
				IsMutable: decl.IsMutable, IsExternal: decl.IsExternal,
				IsExported: decl.IsExported, Declaration: decl,
			}, decl.Loc0)
		}
	}
}

func (r *Resolver) defineTop(name string, sym symbol.Symbol, loc token.SourceLocation) {
	sym.ModuleID = r.instance.ModuleID
	sym.InstanceID = r.instance.ID
	s := r.Program.Arena.New(sym)
	if err := r.scope.Define(name, s); err != nil {
		r.errorf(loc, "%v", err)
		return
	}
	r.instance.Define(name, s)
	r.Bindings.Bind(r.instance.ID, s.Declaration, s)
}

// funcSignatureType is a placeholder Type recorded on a function's own
// Symbol; the checker computes real call-site signatures independently
// via types.TypeSignature, so this is only used for error
// messages and is never itself unified against.
func funcSignatureType(fn *ast.FuncDecl) types.Type {
	if fn.ReturnType.Elem != nil {
		return fn.ReturnType.Elem
	}
	return types.Named{Name: "func:" + fn.Name}
}

func (r *Resolver) resolveFuncBody(fn *ast.FuncDecl) {
	child, exit := r.scope.Enter()
	defer exit()
	prevScope := r.scope
	r.scope = child
	defer func() { r.scope = prevScope }()

	for i, p := range fn.Params {
		sym := r.Program.Arena.New(symbol.Symbol{
			Name: p.Name, Kind: symbol.Variable, Type: p.Type.Elem,
			IsMutable: p.IsRef, IsLocal: true,
			ModuleID: r.instance.ModuleID, InstanceID: r.instance.ID,
			Declaration: ast.ParamRef{Fn: fn, Index: i},
		})
		if err := r.scope.Define(p.Name, sym); err != nil {
			r.errorf(fn.Loc0, "parameter %q: %v", p.Name, err)
			continue
		}
		r.Bindings.Bind(r.instance.ID, ast.ParamRef{Fn: fn, Index: i}, sym)
	}

	if fn.Body != nil {
		r.resolveBlock(fn.Body)
	}
}

// ResolveInstantiation predeclares and binds a single monomorphized
// function clone produced by the Monomorphizer: the clone
// carries a fresh mangled name so it needs its own top-level Symbol,
// but it is not re-walked for imports/predeclare of the rest of the
// module since those names are already bound in inst.
func (r *Resolver) ResolveInstantiation(inst *program.ModuleInstance, fn *ast.FuncDecl) []*diagnostics.CompileError {
	r.instance = inst
	r.scope = inst.Scope
	r.errs = nil

	r.defineTop(fn.Name, symbol.Symbol{
		Name: fn.Name, Kind: symbol.Function,
		Type: funcSignatureType(fn), IsExternal: fn.IsExternal,
		IsExported: fn.IsExported, Declaration: fn,
	}, fn.Loc0)
	if !fn.IsExternal {
		r.resolveFuncBody(fn)
	}
	return r.errs
}

func (r *Resolver) withScope(f func()) {
	child, exit := r.scope.Enter()
	defer exit()
	prev := r.scope
	r.scope = child
	defer func() { r.scope = prev }()
	f()
}

func (r *Resolver) resolveBlock(b *ast.Block) {
	r.withScope(func() {
		for _, stmt := range b.Stmts {
			r.resolveStmt(stmt)
		}
		if b.Result != nil {
			r.resolveExpr(b.Result)
		}
	})
}

func (r *Resolver) resolveStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		r.resolveExpr(s.X)
	case *ast.ReturnStmt:
		if s.Value != nil {
			r.resolveExpr(s.Value)
		}
	case *ast.BreakStmt, *ast.ContinueStmt:
	case *ast.VarDecl:
		if s.Init != nil {
			r.resolveExpr(s.Init)
		}
		var t types.Type
		if s.Declared != nil {
			t = s.Declared.Elem
		}
		sym := r.Program.Arena.New(symbol.Symbol{
			Name: s.Name, Kind: symbol.Variable, Type: t,
			IsMutable: s.IsMutable, IsExternal: s.IsExternal,
			IsLocal: true, ModuleID: r.instance.ModuleID,
			InstanceID: r.instance.ID, Declaration: s,
		})
		if err := r.scope.Define(s.Name, sym); err != nil {
			r.errorf(s.Loc0, "%v", err)
			return
		}
		r.Bindings.Bind(r.instance.ID, s, sym)
	case *ast.ConditionalStmt:
		r.resolveExpr(s.Cond)
		r.resolveBlock(s.Then)
		if s.Else != nil {
			r.resolveBlock(s.Else)
		}
	case *ast.FuncDecl, *ast.TypeDecl, *ast.ImportStmt:
		r.errorf(stmt.Loc(), "declarations of kind %T cannot appear inside a function body", stmt)
	default:
		r.errorf(stmt.Loc(), "unsupported statement kind %T", stmt)
	}
}
