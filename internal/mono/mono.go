// Package mono implements the monomorphizer from spec §4.4: it drains
// the type checker's pending-instantiation queue, materializing one
// concrete, uniquely-mangled clone per full argument-type signature,
// feeding each clone back through the resolver and checker, looping
// until no new work is discovered.
//
// Grounded on the teacher's internal/analyzer declarations_instances*.go
// family (enqueue, dedupe by mangled key, clone AST, re-run
// resolver+checker on the clone) adapted from funxy's trait-instance
// specialization to Vexel's generic-function specialization.
package mono

import (
	"github.com/vexel-lang/vexel/internal/ast"
	"github.com/vexel-lang/vexel/internal/modules"
	"github.com/vexel-lang/vexel/internal/resolver"
	"github.com/vexel-lang/vexel/internal/symbols"
	"github.com/vexel-lang/vexel/internal/typecheck"
)

// Monomorphizer owns the clone/substitute/rebind/recheck loop.
type Monomorphizer struct {
	Prog     *modules.Program
	Bindings *symbols.Bindings
	Resolver *resolver.Resolver
	Checker  *typecheck.Checker
}

func New(prog *modules.Program, bindings *symbols.Bindings, r *resolver.Resolver, c *typecheck.Checker) *Monomorphizer {
	return &Monomorphizer{Prog: prog, Bindings: bindings, Resolver: r, Checker: c}
}

// Run drains Checker.Pending to a fixpoint: materializing a clone may
// discover further generic call sites inside its own body, which
// enqueue more pending work (spec §4.4 "loops until empty").
func (m *Monomorphizer) Run() {
	for len(m.Checker.Pending) > 0 {
		work := m.Checker.Pending
		m.Checker.Pending = nil
		for _, p := range work {
			m.materialize(p)
		}
	}
}

func (m *Monomorphizer) materialize(p *typecheck.PendingInstantiation) {
	clone := cloneFuncDecl(p.Generic)
	clone.Generic = false
	clone.Instantiation = true
	clone.MangledKey = p.MangledName
	clone.TypeNamespace = ""
	clone.Name = &ast.Identifier{Position: p.Generic.Name.Position, Name: p.MangledName}

	substituteSignature(clone, p.ArgTypes)

	inst := m.Prog.Instance(p.InstanceID)
	info := m.Prog.ModuleByID(inst.ModuleID)
	info.Module.Statements = append(info.Module.Statements, clone)

	m.Resolver.PredeclareFunc(inst, clone)
	m.Resolver.BindFuncDecl(inst, clone, inst.Scope)
	m.Checker.CheckClone(p.InstanceID, clone)

	sym, ok := m.Bindings.SymbolFor(p.InstanceID, clone.Name)
	if !ok {
		return
	}
	if ident, ok := p.CallSite.Callee.(*ast.Identifier); ok {
		ident.Name = clone.Name.Name
		m.Bindings.Bind(p.InstanceID, ident, sym)
	} else {
		p.CallSite.Callee = clone.Name
		m.Bindings.Bind(p.InstanceID, clone.Name, sym)
	}
	p.CallSite.SetExprType(m.Checker.ResultType(clone))
}
