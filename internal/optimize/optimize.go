package optimize

import (
	"fmt"

	"github.com/vexel-lang/vexel/internal/ast"
	"github.com/vexel-lang/vexel/internal/cte"
	"github.com/vexel-lang/vexel/internal/modules"
	"github.com/vexel-lang/vexel/internal/symbols"
)

// maxRounds bounds the fixpoint loop (spec §4.7 "bounded, e.g. 64
// rounds; non-convergence is an internal error").
const maxRounds = 64

// Scheduler runs the fixpoint loop described in spec §4.7: collect
// context roots, evaluate every root and every sub-expression in
// isolation, promote any global whose initializer stabilized to a
// known constant, and repeat until a round makes no further progress.
type Scheduler struct {
	Prog     *modules.Program
	Bindings *symbols.Bindings
}

func New(prog *modules.Program, bindings *symbols.Bindings) *Scheduler {
	return &Scheduler{Prog: prog, Bindings: bindings}
}

// Run drives the scheduler to a fixpoint and returns the accumulated
// facts, or an error if convergence didn't happen within maxRounds.
func (s *Scheduler) Run() (*Facts, error) {
	facts := newFacts()

	var allRoots, allSubs []root
	for _, inst := range s.Prog.Instances {
		info := s.Prog.ModuleByID(inst.ModuleID)
		r, sub := collectRoots(inst.ID, info.Module.Statements)
		allRoots = append(allRoots, r...)
		allSubs = append(allSubs, sub...)
	}

	for round := 0; round < maxRounds; round++ {
		progress := false

		for _, rt := range allRoots {
			if s.evaluate(facts, rt.instanceID, rt.expr) {
				progress = true
			}
		}
		for _, sb := range allSubs {
			if s.evaluate(facts, sb.instanceID, sb.expr) {
				progress = true
			}
		}

		promoted, err := s.promoteGlobals(facts)
		if err != nil {
			return nil, err
		}
		if promoted {
			progress = true
		}

		if !progress {
			s.derivePostPass(facts, allRoots)
			return facts, nil
		}
	}

	return nil, fmt.Errorf("optimize: fixpoint did not converge within %d rounds", maxRounds)
}

// evaluate queries one expression with an Evaluator seeded with the
// current known_symbol_values and records its value into facts. The
// OnExprValue observer installed below is never called by
// cte.Evaluator, so only expr's own value is recorded. Returns whether
// it changed anything this round.
func (s *Scheduler) evaluate(facts *Facts, instanceID int, expr ast.Expression) bool {
	changed := false
	ev := cte.NewEvaluator(s.Bindings, instanceID)
	ev.OnExprValue = func(id int, e ast.Expression, v cte.Value) {
		key := Key{InstanceID: id, Expr: e}
		before, hadStable := facts.Stable(key)
		facts.record(key, v)
		after, stillStable := facts.Stable(key)
		if !hadStable && stillStable {
			changed = true
		} else if hadStable && (!stillStable || before.String() != after.String()) {
			changed = true
		}
	}
	ev.OnSymbolRead = func(sym *symbols.Symbol) {
		// The dependency edge itself (symbol -> this root) is implicit in
		// re-running every root every round; promoteGlobals below is what
		// actually turns a read into a seeded constant for the next round.
		_ = sym
	}
	for sym, v := range facts.KnownSymbolValues {
		ev.SeedGlobal(sym, v)
	}

	r := ev.Query(expr)
	key := Key{InstanceID: instanceID, Expr: expr}
	before, hadStable := facts.Stable(key)
	if r.Kind == cte.ResultKnown {
		facts.record(key, r.Value)
	} else if r.Kind == cte.ResultError {
		facts.UnstableKeys[key] = true
		delete(facts.StableValues, key)
	}
	after, stillStable := facts.Stable(key)
	if !hadStable && stillStable {
		changed = true
	} else if hadStable && (!stillStable || before.String() != after.String()) {
		changed = true
	}
	return changed
}

// promoteGlobals lifts every module-level, non-mutable VarDeclStatement
// whose initializer has a stable value into known_symbol_values, so the
// next round's Evaluators see it as a compile-time constant (spec §4.7
// "promote global constants"). Once a global is promoted, every later
// round must recompute the same value (spec §4.7, spec §8 property 2
// "monotonic"); a different value for an already-promoted global is an
// internal error, not a silent update.
func (s *Scheduler) promoteGlobals(facts *Facts) (bool, error) {
	changed := false
	for _, inst := range s.Prog.Instances {
		info := s.Prog.ModuleByID(inst.ModuleID)
		for _, stmt := range info.Module.Statements {
			vd, ok := stmt.(*ast.VarDeclStatement)
			if !ok || vd.Init == nil || vd.Mutable {
				continue
			}
			v, ok := facts.Stable(Key{InstanceID: inst.ID, Expr: vd.Init})
			if !ok {
				continue
			}
			sym, ok := s.Bindings.SymbolFor(inst.ID, vd.Name)
			if !ok {
				continue
			}
			if existing, already := facts.KnownSymbolValues[sym]; already {
				if existing.String() != v.String() {
					return false, fmt.Errorf("optimize: non-monotonic stable value for global %q: %s then %s", sym.Name, existing.String(), v.String())
				}
				continue
			}
			facts.KnownSymbolValues[sym] = v
			changed = true
		}
	}
	return changed, nil
}

// derivePostPass fills ConstexprConditions, ConstexprInits, and
// FoldableFunctions/FoldSkipReasons from the now-stable Facts (spec
// §4.7's post-pass, run once after the main loop converges).
func (s *Scheduler) derivePostPass(facts *Facts, allRoots []root) {
	for key, v := range facts.StableValues {
		if b, ok := v.AsBool(); ok {
			facts.ConstexprConditions[key] = b
		}
	}

	for _, inst := range s.Prog.Instances {
		info := s.Prog.ModuleByID(inst.ModuleID)
		for _, stmt := range info.Module.Statements {
			vd, ok := stmt.(*ast.VarDeclStatement)
			if !ok || vd.Init == nil {
				continue
			}
			if _, ok := facts.Stable(Key{InstanceID: inst.ID, Expr: vd.Init}); ok {
				facts.ConstexprInits[Key{InstanceID: inst.ID, Expr: vd.Init}] = true
			}
		}
	}

	for _, inst := range s.Prog.Instances {
		info := s.Prog.ModuleByID(inst.ModuleID)
		for _, stmt := range info.Module.Statements {
			fn, ok := stmt.(*ast.FuncDeclStatement)
			if !ok || fn.Generic {
				continue
			}
			name := fn.QualifiedName()
			s.classifyFoldable(facts, inst.ID, fn, name)
		}
	}
}

func (s *Scheduler) classifyFoldable(facts *Facts, instanceID int, fn *ast.FuncDeclStatement, name string) {
	if fn.External {
		facts.FoldSkipReasons[name] = SkipExternal
		return
	}
	if len(fn.Receivers) > 0 {
		facts.FoldSkipReasons[name] = SkipHasReceivers
		return
	}
	if len(fn.Params) > 0 {
		facts.FoldSkipReasons[name] = SkipHasParams
		return
	}
	if fn.Body == nil {
		facts.FoldSkipReasons[name] = SkipNotStable
		return
	}
	v, ok := facts.Stable(Key{InstanceID: instanceID, Expr: fn.Body})
	if !ok {
		facts.FoldSkipReasons[name] = SkipNotStable
		return
	}
	if !isScalar(v.Kind) {
		facts.FoldSkipReasons[name] = SkipNonScalar
		return
	}
	facts.FoldableFunctions[name] = true
}
