package cte

import (
	"github.com/vexel-lang/vexel/internal/ast"
	"github.com/vexel-lang/vexel/internal/diagnostics"
	"github.com/vexel-lang/vexel/internal/symbols"
)

// ctrl tags why eval stopped producing an ordinary value: a plain
// expression result, a return/break/continue signal bubbling out of a
// block, or an error short-circuiting everything above it.
type ctrl int

const (
	ctrlNone ctrl = iota
	ctrlReturn
	ctrlBreak
	ctrlContinue
	ctrlError
)

// signal is what every internal eval/exec step produces; Query unwraps
// it into the public three-valued Result.
type signal struct {
	kind   ctrl
	result Result
}

// exprBinding is an expression-parameter substitution: the caller-side
// expression plus the frame it should be evaluated in (its own
// call site's environment, not the callee's), per spec §4.6 "expression
// params substitute their caller-side expression at each use site."
type exprBinding struct {
	expr  ast.Expression
	frame *frame
}

const (
	defaultMaxRecursion = 1000
	defaultMaxLoopSteps = 1_000_000
)

// Evaluator is the three-valued compile-time interpreter described in
// spec §4.6. One Evaluator is reused across many Query calls within a
// single module instance; Globals holds the shadow map of promoted
// constants seeded by the caller (the checker or the optimizer).
type Evaluator struct {
	Bindings     *symbols.Bindings
	InstanceID   int
	Globals      map[*symbols.Symbol]Value
	MutableGlobals map[*symbols.Symbol]bool // symbols CTE must refuse to write
	AllowProcess bool
	ResourceRoot string

	MaxRecursion int
	MaxLoopSteps int

	// OnSymbolRead/OnExprValue are optional observers. The evaluator
	// calls OnSymbolRead each time it reads a seeded global from
	// Globals; it never calls OnExprValue itself.
	OnSymbolRead func(*symbols.Symbol)
	OnExprValue  func(instanceID int, expr ast.Expression, v Value)

	recursion       int
	loopSteps       int
	receiverStack   []map[string]bool
	exprParamStack  []map[string]exprBinding
}

func NewEvaluator(bindings *symbols.Bindings, instanceID int) *Evaluator {
	return &Evaluator{
		Bindings:       bindings,
		InstanceID:     instanceID,
		Globals:        map[*symbols.Symbol]Value{},
		MutableGlobals: map[*symbols.Symbol]bool{},
		MaxRecursion:   defaultMaxRecursion,
		MaxLoopSteps:   defaultMaxLoopSteps,
	}
}

// SeedGlobal registers a promoted global constant's value so
// identifiers referring to sym resolve to v during evaluation.
func (e *Evaluator) SeedGlobal(sym *symbols.Symbol, v Value) {
	e.Globals[sym] = v
}

// Query evaluates expr to a three-valued Result, per spec §4.6.
func (e *Evaluator) Query(expr ast.Expression) Result {
	e.loopSteps = 0
	sig := e.eval(expr, newFrame(nil))
	return sig.result
}

// TryEvaluate collapses Unknown and Error into false, per spec §4.6.
func (e *Evaluator) TryEvaluate(expr ast.Expression) (Value, bool) {
	r := e.Query(expr)
	if r.Kind == ResultKnown {
		return r.Value, true
	}
	return Value{}, false
}

func errSignal(d *diagnostics.DiagnosticError) signal {
	return signal{kind: ctrlError, result: Result{Kind: ResultError, Err: d}}
}

func unknownSignal() signal      { return signal{kind: ctrlNone, result: Unknown()} }
func knownSignal(v Value) signal { return signal{kind: ctrlNone, result: Known(v)} }
