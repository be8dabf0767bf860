// Package typecheck implements spec §4.3: Hindley-Milner-style
// inference, literal width rules, numeric widening, tuple synthesis,
// operator/iteration/method overload dispatch, and the constexpr-aware
// conditional typing that needs internal/cte to decide dead branches.
//
// Grounded on the teacher's internal/analyzer inference*.go family
// (inference.go, inference_calls.go, inference_literals.go,
// inference_control.go) for the walker-plus-constraint-solver shape,
// and internal/typesystem/unify.go for unification itself.
package typecheck

import (
	"fmt"

	"github.com/vexel-lang/vexel/internal/ast"
	"github.com/vexel-lang/vexel/internal/cte"
	"github.com/vexel-lang/vexel/internal/diagnostics"
	"github.com/vexel-lang/vexel/internal/modules"
	"github.com/vexel-lang/vexel/internal/symbols"
	"github.com/vexel-lang/vexel/internal/typesystem"
)

// PendingInstantiation is one generic call site the monomorphizer must
// materialize into a concrete cloned function (spec §4.3 "Generics").
type PendingInstantiation struct {
	Generic     *ast.FuncDeclStatement
	InstanceID  int
	ArgTypes    []typesystem.Type
	MangledName string
	CallSite    *ast.CallExpression
}

// Strictness is the spec §9 Open-Question resolution: level 0 is the
// canonical relaxed inference semantics; levels 1/2 only add
// declaration-site annotation requirements.
type Strictness int

const (
	StrictnessRelaxed Strictness = iota
	StrictnessRequireLocalAnnotations
	StrictnessFull
)

// Checker walks every reachable module instance, inferring and
// recording a semantic Type for every expression per spec §4.3.
type Checker struct {
	Prog       *modules.Program
	Bindings   *symbols.Bindings
	Sink       diagnostics.Sink
	Strictness Strictness

	AllowProcess bool
	ResourceRoot string

	// Pending is the FIFO of generic instantiations discovered during
	// checking; internal/mono drains it (spec §4.4).
	Pending []*PendingInstantiation

	// TupleTypes maps a synthesized tuple name to its element types,
	// registered globally the first time a given shape is seen (spec
	// §4.3 "Tuples").
	TupleTypes map[string][]typesystem.Type

	instantiatedKeys map[string]bool
	tvarCounter      int

	curInstance int
	curReturn   []typesystem.Type // current function's declared return slots, for `return` checking

	// checked guards checkFuncDecl against running twice for the same
	// declaration: ensureChecked may force a method's body to be
	// checked out of its textual order (see control.go's named-iterable
	// dispatch), and CheckInstance's own top-to-bottom walk must then
	// skip it rather than re-run it.
	checked map[*ast.FuncDeclStatement]bool

	// curExprParamName/curExprParamElemT track the enclosing function's
	// sole expression parameter (if any) while its body is being
	// checked, so a nested iteration whose body is exactly that
	// parameter can report back the per-element type it bound `_` to
	// (spec §4.3 "named iterables" — the only place that type is ever
	// actually known, since expression parameters otherwise carry no
	// type of their own). See checkIteration in control.go.
	curExprParamName  string
	curExprParamElemT typesystem.Type
}

func NewChecker(prog *modules.Program, bindings *symbols.Bindings, sink diagnostics.Sink) *Checker {
	return &Checker{
		Prog:             prog,
		Bindings:         bindings,
		Sink:             sink,
		TupleTypes:       map[string][]typesystem.Type{},
		instantiatedKeys: map[string]bool{},
		checked:          map[*ast.FuncDeclStatement]bool{},
	}
}

func (c *Checker) report(d *diagnostics.DiagnosticError) {
	if c.Sink != nil {
		c.Sink.Report(d)
	}
}

func (c *Checker) freshTVar() typesystem.Type {
	c.tvarCounter++
	return typesystem.TVar{Name: fmt.Sprintf("k%d", c.tvarCounter)}
}

// newEvaluator builds a CTE evaluator scoped to the current instance,
// used for dead-branch typing and exported-global ABI constants (spec
// §4.3 "Compile-time evaluator integration").
func (c *Checker) newEvaluator() *cte.Evaluator {
	ev := cte.NewEvaluator(c.Bindings, c.curInstance)
	ev.AllowProcess = c.AllowProcess
	ev.ResourceRoot = c.ResourceRoot
	return ev
}

// CheckProgram type-checks every instance reachable from the entry
// instance (instance 0), the order the resolver already established.
func (c *Checker) CheckProgram() {
	for i := range c.Prog.Instances {
		c.CheckInstance(i)
	}
}

// CheckInstance type-checks the top-level declarations of one module
// instance: non-generic functions, global var declarations, and type
// declarations (field types only; no body to check). Generic function
// templates are never checked directly — only their monomorphized
// clones are, once internal/mono produces them (spec §4.3 "Generics").
func (c *Checker) CheckInstance(instanceID int) {
	inst := c.Prog.Instance(instanceID)
	info := c.Prog.ModuleByID(inst.ModuleID)
	c.curInstance = instanceID
	for _, stmt := range info.Module.Statements {
		c.checkTopLevel(stmt)
	}
}

func (c *Checker) checkTopLevel(stmt ast.Statement) {
	switch n := stmt.(type) {
	case *ast.FuncDeclStatement:
		if n.Generic {
			return
		}
		c.checkFuncDecl(n)
	case *ast.VarDeclStatement:
		c.checkGlobalVarDecl(n)
	case *ast.TypeDeclStatement:
		// Field type annotations are resolved but carry no expression to
		// check; ABI-safety of a type is only enforced at a use boundary
		// (exported global / exported function signature), per spec §4.3.
	case *ast.ImportStatement:
		// Imported instance bodies are checked via their own CheckInstance
		// call from CheckProgram; nothing to do here.
	case *ast.ConditionalStatement:
		c.checkConditionalStatement(n)
	case *ast.ExpressionStatement:
		c.checkExpr(n.Expression, nil)
	}
}

// symType returns sym's current inferred type, resolving a
// TVar through unification results is not needed here since Symbol.Type
// is mutated in place as soon as it's known; callers get whatever is
// currently recorded (a TVar only if the symbol is still unresolved).
func symType(sym *symbols.Symbol) typesystem.Type {
	if sym == nil {
		return nil
	}
	return sym.Type
}
