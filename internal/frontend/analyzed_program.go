package frontend

import (
	"github.com/vexel-lang/vexel/internal/analyze"
	"github.com/vexel-lang/vexel/internal/ast"
	"github.com/vexel-lang/vexel/internal/cte"
	"github.com/vexel-lang/vexel/internal/modules"
	"github.com/vexel-lang/vexel/internal/optimize"
	"github.com/vexel-lang/vexel/internal/symbols"
	"github.com/vexel-lang/vexel/internal/typesystem"
)

// AnalyzedProgram is the read-only handoff to a backend (spec §6
// "Output handoff"): the merged entry module, the full Program, both
// fact sets, the entry instance id, the forced-tuple-type map, and the
// five query methods a backend drives code generation from.
type AnalyzedProgram struct {
	Module          *ast.Program
	Prog            *modules.Program
	Analysis        *analyze.Facts
	Optimization    *optimize.Facts
	EntryInstanceID int
	ForcedTuples    map[string][]typesystem.Type
	BuildID         string

	bindings *symbols.Bindings
}

// BindingFor is the `binding_for(instance_id, node) -> Symbol?` query.
func (ap *AnalyzedProgram) BindingFor(instanceID int, node ast.Node) (*symbols.Symbol, bool) {
	return ap.bindings.SymbolFor(instanceID, node)
}

// ResolveType is the `resolve_type(Type) -> Type` query: materializes
// a TypeOf into the concrete type it stood for. Vexel's checker stamps
// every checked expression's type directly (spec §4.3), so there is no
// separate global substitution to replay here — a TVar that survives
// to this point is, by construction, inside a generic template that
// was never instantiated and therefore unreachable; resolve_type
// returns it unchanged rather than failing, leaving the reachability
// guarantee (spec §8 property 5) to the type-use validator.
func (ap *AnalyzedProgram) ResolveType(t typesystem.Type) typesystem.Type {
	return resolveTypeOf(t, 0)
}

func resolveTypeOf(t typesystem.Type, depth int) typesystem.Type {
	if depth > 32 {
		return t
	}
	to, ok := t.(typesystem.TypeOf)
	if !ok {
		return t
	}
	expr, ok := to.Expr.(ast.Expression)
	if !ok {
		return t
	}
	inner := expr.ExprType()
	if inner == nil {
		return t
	}
	return resolveTypeOf(inner, depth+1)
}

// ConstexprCondition is the `constexpr_condition(Expr) -> bool?` query.
// The instance id is threaded explicitly (spec §6's signature elides
// it, but every fact in this module is keyed per-instance, spec §3).
func (ap *AnalyzedProgram) ConstexprCondition(instanceID int, expr ast.Expression) (bool, bool) {
	b, ok := ap.Optimization.ConstexprConditions[optimize.Key{InstanceID: instanceID, Expr: expr}]
	return b, ok
}

// TryEvaluate is the `try_evaluate(instance_id, Expr, out CTValue) ->
// bool` query. It first checks the optimizer's already-converged
// facts; failing that, it runs a fresh, independently-seeded
// evaluation (spec §4.6) rather than reporting unknown, since a
// backend may ask about expressions the optimizer's root set never
// covered (e.g. inside dead code kept for diagnostics).
func (ap *AnalyzedProgram) TryEvaluate(instanceID int, expr ast.Expression, allowProcess bool, resourceRoot string) (cte.Value, bool) {
	if v, ok := ap.Optimization.Stable(optimize.Key{InstanceID: instanceID, Expr: expr}); ok {
		return v, true
	}
	ev := cte.NewEvaluator(ap.bindings, instanceID)
	ev.AllowProcess = allowProcess
	ev.ResourceRoot = resourceRoot
	for sym, v := range ap.Optimization.KnownSymbolValues {
		ev.SeedGlobal(sym, v)
	}
	return ev.TryEvaluate(expr)
}

// LookupTypeSymbol is the `lookup_type_symbol(instance_id, name) ->
// Symbol?` query.
func (ap *AnalyzedProgram) LookupTypeSymbol(instanceID int, name string) (*symbols.Symbol, bool) {
	inst := ap.Prog.Instance(instanceID)
	sym, ok := inst.Scope.Lookup(name)
	if !ok || sym.Kind != symbols.KindType {
		return nil, false
	}
	return sym, true
}
