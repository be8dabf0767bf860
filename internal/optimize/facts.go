// Package optimize implements spec §4.7: the fixpoint scheduler that
// discovers every stably-foldable sub-expression and promotable global
// constant in a checked, monomorphized, lowered program, producing the
// OptimizationFacts internal/residual and internal/frontend consume.
//
// Grounded on spec §9's "generic worklist (queue + enqueued-bitmap)"
// design note, implemented the way the teacher's
// internal/symbols/symbol_table_resolution.go dependency-propagation
// loops are structured: repeated drain-until-no-progress rounds over a
// map, rather than a textbook worklist struct.
package optimize

import (
	"github.com/vexel-lang/vexel/internal/ast"
	"github.com/vexel-lang/vexel/internal/cte"
	"github.com/vexel-lang/vexel/internal/symbols"
)

// Key identifies one expression's evaluation within one module
// instance — the same (instance_id, node pointer) shape
// internal/symbols.Bindings uses.
type Key struct {
	InstanceID int
	Expr       ast.Expression
}

// SkipReason tags why a zero-arity function didn't make it into
// FoldableFunctions (spec §9 Open Question: fold-skip-reason taxonomy).
type SkipReason string

const (
	SkipHasParams    SkipReason = "has_params"
	SkipHasReceivers SkipReason = "has_receivers"
	SkipNotStable    SkipReason = "not_stable"
	SkipNonScalar    SkipReason = "non_scalar"
	SkipExternal     SkipReason = "external"
)

// Facts is spec §3's OptimizationFacts.
type Facts struct {
	StableValues   map[Key]cte.Value
	UnstableKeys   map[Key]bool
	KnownSymbolValues map[*symbols.Symbol]cte.Value

	ConstexprConditions map[Key]bool
	ConstexprInits      map[Key]bool
	FoldableFunctions   map[string]bool
	FoldSkipReasons     map[string]SkipReason
}

func newFacts() *Facts {
	return &Facts{
		StableValues:        map[Key]cte.Value{},
		UnstableKeys:        map[Key]bool{},
		KnownSymbolValues:   map[*symbols.Symbol]cte.Value{},
		ConstexprConditions: map[Key]bool{},
		ConstexprInits:      map[Key]bool{},
		FoldableFunctions:   map[string]bool{},
		FoldSkipReasons:     map[string]SkipReason{},
	}
}

// Stable reports fact's recorded stable value for key, if any.
func (f *Facts) Stable(key Key) (cte.Value, bool) {
	if f.UnstableKeys[key] {
		return cte.Value{}, false
	}
	v, ok := f.StableValues[key]
	return v, ok
}

// record merges one observed (key, value) pair: a first observation is
// stable; a conflicting second observation moves the key to unstable
// and removes it from StableValues (spec §4.7 "unstable_values — set of
// keys that produced conflicting values on different evaluations").
func (f *Facts) record(key Key, v cte.Value) {
	if f.UnstableKeys[key] {
		return
	}
	existing, ok := f.StableValues[key]
	if !ok {
		f.StableValues[key] = v
		return
	}
	if existing.String() != v.String() || existing.Kind != v.Kind {
		delete(f.StableValues, key)
		f.UnstableKeys[key] = true
	}
}
