// Package typeuse implements spec §4.10: the final gate of the
// pipeline. For every reachable function body and every used global's
// initializer, it walks the expression tree and requires that every
// value-used expression carry a concrete type — no TypeVar, no
// unresolved integer width — except inside a branch the optimizer
// proved dead, inside an expression-parameter argument (opaque by
// construction), or in a statement-position void call/assignment.
//
// Grounded on the teacher's internal/analyzer expressions.go
// post-inference type assertions, adapted from funxy's single-pass
// "every expression has a type by the time analysis runs" assumption
// to Vexel's narrower, exception-aware value-use predicate.
package typeuse

import (
	"github.com/vexel-lang/vexel/internal/analyze"
	"github.com/vexel-lang/vexel/internal/ast"
	"github.com/vexel-lang/vexel/internal/diagnostics"
	"github.com/vexel-lang/vexel/internal/modules"
	"github.com/vexel-lang/vexel/internal/optimize"
	"github.com/vexel-lang/vexel/internal/symbols"
	"github.com/vexel-lang/vexel/internal/typesystem"
)

// Validator runs the spec §4.10 final check.
type Validator struct {
	Prog     *modules.Program
	Bindings *symbols.Bindings
	Analysis *analyze.Facts
	Opt      *optimize.Facts
	Sink     diagnostics.Sink

	instanceID int
}

func New(prog *modules.Program, bindings *symbols.Bindings, analysis *analyze.Facts, opt *optimize.Facts, sink diagnostics.Sink) *Validator {
	return &Validator{Prog: prog, Bindings: bindings, Analysis: analysis, Opt: opt, Sink: sink}
}

// Run walks every reachable function body and every used global's
// initializer. It does not stop at the first violation: every offending
// expression is reported, matching the one-sink-accumulates convention
// the rest of this module's passes use (the frontend pipeline still
// aborts overall at the first error-severity diagnostic, spec §7).
func (v *Validator) Run() {
	for key := range v.Analysis.ReachableFunctions {
		if key.Decl.Body == nil {
			continue
		}
		v.instanceID = key.InstanceID
		v.walkValueExpr(key.Decl.Body, paramExprSetOf(key.Decl))
	}

	for _, inst := range v.Prog.Instances {
		info := v.Prog.ModuleByID(inst.ModuleID)
		for _, stmt := range info.Module.Statements {
			vd, ok := stmt.(*ast.VarDeclStatement)
			if !ok || vd.Init == nil {
				continue
			}
			sym, ok := v.Bindings.SymbolFor(inst.ID, vd.Name)
			if !ok || !v.Analysis.UsedGlobalVars[sym] {
				continue
			}
			v.instanceID = inst.ID
			v.walkValueExpr(vd.Init, nil)
		}
	}
}

// paramExprSetOf returns one flag per parameter of fn, true where the
// parameter is an expression parameter, so call sites passing an argument to
// one of those slots can be skipped as opaque (spec §4.10 exception 2).
// Matching is positional at each call site, not by identity, since the
// caller's own argument expressions are distinct AST nodes from the
// callee's Param declarations; see isExpressionParamArg.
func paramExprSetOf(fn *ast.FuncDeclStatement) []bool {
	flags := make([]bool, len(fn.Params))
	for i, p := range fn.Params {
		flags[i] = p.Expression
	}
	return flags
}

// requireConcrete is the core predicate (spec §4.10 / §8 property 5):
// a value-used expression must carry a non-nil, concrete type.
func (v *Validator) requireConcrete(e ast.Expression) {
	t := e.ExprType()
	if t == nil {
		v.report(e, "value has no type")
		return
	}
	if !typesystem.IsConcrete(t) {
		v.report(e, t.String())
	}
}

func (v *Validator) report(e ast.Expression, detail string) {
	v.Sink.Report(diagnostics.New(diagnostics.PhaseTypeUse, diagnostics.ErrTypeUnresolved, e.Pos(), detail))
}
