package resolver

import (
	"github.com/vexel-lang/vexel/internal/ast"
	"github.com/vexel-lang/vexel/internal/diagnostics"
	"github.com/vexel-lang/vexel/internal/modules"
	"github.com/vexel-lang/vexel/internal/symbols"
)

// predeclare registers every top-level function, global variable, and
// type declaration into inst.Scope before any body is walked, so that
// forward references (including recursion and mutual recursion) bind
// correctly (spec §4.2 step 1).
func (r *Resolver) predeclare(inst *modules.ModuleInstance, mod *ast.Program) {
	for _, stmt := range mod.Statements {
		r.predeclareStatement(inst, stmt)
	}
}

func (r *Resolver) predeclareStatement(inst *modules.ModuleInstance, stmt ast.Statement) {
	switch n := stmt.(type) {
	case *ast.FuncDeclStatement:
		r.PredeclareFunc(inst, n)

	case *ast.VarDeclStatement:
		sym := &symbols.Symbol{
			Name:       n.Name.Name,
			Kind:       symbols.KindVariable,
			Type:       r.freshTVar(),
			Mutable:    n.Mutable,
			Exported:   n.Exported,
			External:   n.Linkage == ast.LinkageExternalSymbol,
			Decl:       n,
			ModuleID:   int(inst.ModuleID),
			InstanceID: inst.ID,
		}
		if !n.Mutable {
			sym.Kind = symbols.KindConstant
		}
		if !inst.Scope.Define(n.Name.Name, sym) {
			r.report(diagnostics.New(diagnostics.PhaseResolve, diagnostics.ErrResolveDupSymbol, n.Pos(), n.Name.Name))
			return
		}
		r.Bindings.Bind(inst.ID, n.Name, sym)

	case *ast.TypeDeclStatement:
		sym := &symbols.Symbol{
			Name:       n.Name.Name,
			Kind:       symbols.KindType,
			Decl:       n,
			ModuleID:   int(inst.ModuleID),
			InstanceID: inst.ID,
		}
		if !inst.Scope.Define(n.Name.Name, sym) {
			r.report(diagnostics.New(diagnostics.PhaseResolve, diagnostics.ErrResolveDupSymbol, n.Pos(), n.Name.Name))
			return
		}
		r.Bindings.Bind(inst.ID, n.Name, sym)
	}
}

// PredeclareFunc registers one function/method declaration's qualified
// name into inst.Scope. Exported so internal/mono can predeclare a
// monomorphizer-produced clone under its mangled name the same way an
// ordinary top-level function is predeclared (spec §4.4).
func (r *Resolver) PredeclareFunc(inst *modules.ModuleInstance, n *ast.FuncDeclStatement) {
	name := n.QualifiedName()
	sym := &symbols.Symbol{
		Name:       name,
		Kind:       symbols.KindFunction,
		Type:       r.freshTVar(),
		Exported:   n.Exported,
		External:   n.External,
		Decl:       n,
		ModuleID:   int(inst.ModuleID),
		InstanceID: inst.ID,
	}
	if !inst.Scope.Define(name, sym) {
		r.report(diagnostics.New(diagnostics.PhaseResolve, diagnostics.ErrResolveDupSymbol, n.Pos(), name))
		return
	}
	r.Bindings.Bind(inst.ID, n.Name, sym)
}
