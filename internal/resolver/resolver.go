// Package resolver implements the predeclare/bind pass from spec §4.2:
// one scope per module instance, shadow-free binding of every
// identifier and type reference to a Symbol, detection of
// assignment-introduces-new-variable, recursive resolution of imported
// module instances, re-import equivalence checking, and inline
// annotation validation.
//
// Grounded on the teacher's internal/analyzer package: the two-phase
// ModeNaming/ModeHeaders split (funvibe-funxy/internal/analyzer/analyzer.go)
// becomes the predeclare/bind split here. Monomorphization is driven
// later by internal/typecheck rather than by a dedicated instances
// pass, since Vexel's generics are resolved from call-site type
// arguments rather than declared ahead of time.
package resolver

import (
	"fmt"

	"github.com/vexel-lang/vexel/internal/ast"
	"github.com/vexel-lang/vexel/internal/diagnostics"
	"github.com/vexel-lang/vexel/internal/modules"
	"github.com/vexel-lang/vexel/internal/symbols"
	"github.com/vexel-lang/vexel/internal/typesystem"
)

// Resolver walks every module instance reachable from the entry file.
type Resolver struct {
	Prog        *modules.Program
	Bindings    *symbols.Bindings
	ProjectRoot string
	Sink        diagnostics.Sink

	tvarCounter int
	reimports   map[reimportKey]*reimportRecord

	// onStack is the set of module paths currently being resolved on
	// the active import chain (pushed in resolveInstance, popped on
	// return). Distinct from internal/modules.Loader's own onStack:
	// that one guards the load pass's path graph, this one guards the
	// resolver's own recursion through bindImport, which mints a fresh
	// instance per import and would otherwise recurse forever around a
	// genuine cycle (spec §4.2 step 4, spec §5 "cycles = error").
	onStack map[string]bool
}

type reimportKey struct {
	instanceID int
	alias      string
}

type reimportRecord struct {
	segments []string
	stmt     *ast.ImportStatement
}

func NewResolver(prog *modules.Program, sink diagnostics.Sink) *Resolver {
	return &Resolver{
		Prog:      prog,
		Bindings:  symbols.NewBindings(),
		Sink:      sink,
		reimports: map[reimportKey]*reimportRecord{},
		onStack:   map[string]bool{},
	}
}

// Resolve predeclares and binds the entry instance (instance 0) and,
// transitively, every instance created by an import statement it
// contains, per spec §4.2.
func (r *Resolver) Resolve(projectRoot string) {
	r.ProjectRoot = projectRoot
	if len(r.Prog.Instances) == 0 {
		entry := r.Prog.ModuleByID(0)
		scope := symbols.NewScope(symbols.ScopeModule, nil)
		r.Prog.NewInstance(entry.ID, -1, nil, scope)
	}
	r.resolveInstance(0)
}

func (r *Resolver) freshTVar() typesystem.Type {
	r.tvarCounter++
	return typesystem.TVar{Name: fmt.Sprintf("t%d", r.tvarCounter)}
}

func (r *Resolver) resolveInstance(instanceID int) {
	inst := r.Prog.Instance(instanceID)
	if inst.HeadersResolved && inst.BodiesResolved {
		return
	}
	info := r.Prog.ModuleByID(inst.ModuleID)
	mod := info.Module

	r.onStack[info.Path] = true
	defer delete(r.onStack, info.Path)

	r.predeclare(inst, mod)
	inst.HeadersResolved = true

	for _, stmt := range mod.Statements {
		r.bindStatement(inst, stmt, inst.Scope)
	}
	inst.BodiesResolved = true
}

// report is a nil-safe convenience wrapping Sink.Report.
func (r *Resolver) report(d *diagnostics.DiagnosticError) {
	if r.Sink != nil {
		r.Sink.Report(d)
	}
}
