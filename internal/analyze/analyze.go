// Package analyze implements spec §4.9: whole-program analysis that
// runs after residualization over the merged, monomorphized module —
// reachability from exported entries and non-constexpr globals,
// reentrancy-variant propagation, receiver/variable mutability,
// per-call-site ref variants, effect (purity/global-write) closure,
// and transitive used-globals/used-types collection.
//
// Grounded on the teacher's internal/analyzer declarations_instances_
// methods.go and inference_calls.go call-graph walking patterns;
// reentrancy/ref-variant bookkeeping has no teacher analogue (it is
// Vexel-specific vocabulary) and is built in the same fixpoint-worklist
// idiom internal/optimize already established for this module.
package analyze

import (
	"github.com/vexel-lang/vexel/internal/ast"
	"github.com/vexel-lang/vexel/internal/diagnostics"
	"github.com/vexel-lang/vexel/internal/modules"
	"github.com/vexel-lang/vexel/internal/optimize"
	"github.com/vexel-lang/vexel/internal/symbols"
)

// globalVar pairs a module-level VarDeclStatement with the instance it
// was declared in, the unit used by reachability/usage when treating a
// non-constexpr global's initializer as an implicit root.
type globalVar struct {
	instanceID int
	decl       *ast.VarDeclStatement
}

// FuncKey identifies one function declaration within one module
// instance — the unit reachability/reentrancy/mutability facts are
// keyed on, since a monomorphized clone and its generic template are
// distinct declarations and a method called through two instances of
// the same module has independent analysis facts per instance.
type FuncKey struct {
	InstanceID int
	Decl       *ast.FuncDeclStatement
}

// Reentrancy tags a calling context, per spec GLOSSARY.
type Reentrancy string

const (
	R Reentrancy = "R"
	N Reentrancy = "N"
)

// VarMutability classifies a declared variable, spec §3 "Analysis facts".
type VarMutability int

const (
	Constexpr VarMutability = iota
	NonMutableRuntime
	Mutable
)

// BackendDefaults carries the two cross-boundary reentrancy defaults
// the backend contract supplies (spec §6 "analysis_requirements"),
// used to seed exported entry points that carry no explicit
// reentrant/nonreentrant annotation.
type BackendDefaults struct {
	DefaultEntryReentrancy Reentrancy
	DefaultExitReentrancy  Reentrancy
}

// Facts is spec §3's AnalysisFacts.
type Facts struct {
	ReachableFunctions map[FuncKey]bool
	ReentrancyVariants map[FuncKey]map[Reentrancy]bool
	RefVariants        map[FuncKey]map[string]bool
	ReceiverMutates    map[FuncKey][]bool

	VarMutability map[*ast.VarDeclStatement]VarMutability

	FunctionWritesGlobal map[FuncKey]bool
	FunctionIsPure       map[FuncKey]bool

	UsedGlobalVars map[*symbols.Symbol]bool
	UsedTypeNames  map[string]bool
}

func newFacts() *Facts {
	return &Facts{
		ReachableFunctions:   map[FuncKey]bool{},
		ReentrancyVariants:   map[FuncKey]map[Reentrancy]bool{},
		RefVariants:          map[FuncKey]map[string]bool{},
		ReceiverMutates:      map[FuncKey][]bool{},
		VarMutability:        map[*ast.VarDeclStatement]VarMutability{},
		FunctionWritesGlobal: map[FuncKey]bool{},
		FunctionIsPure:       map[FuncKey]bool{},
		UsedGlobalVars:       map[*symbols.Symbol]bool{},
		UsedTypeNames:        map[string]bool{},
	}
}

// callSite is one observed call, with the receiver ref-variant pattern
// already classified (spec §4.9 "Ref variants").
type callSite struct {
	caller   FuncKey
	callee   FuncKey
	pattern  string // "M"/"N" per receiver, "" for a zero-receiver call
	external bool
	extName  string
}

// Analyzer runs the spec §4.9 passes over a checked, monomorphized,
// residualized Program.
type Analyzer struct {
	Prog     *modules.Program
	Bindings *symbols.Bindings
	Sink     diagnostics.Sink
	Opt      *optimize.Facts
	Defaults BackendDefaults

	funcDecls  map[FuncKey]bool
	calls      map[FuncKey][]callSite
	globals    []globalVar
	globalCalls map[globalVar][]callSite
}

func New(prog *modules.Program, bindings *symbols.Bindings, sink diagnostics.Sink, opt *optimize.Facts, defaults BackendDefaults) *Analyzer {
	return &Analyzer{Prog: prog, Bindings: bindings, Sink: sink, Opt: opt, Defaults: defaults}
}

// globalIsRuntime reports whether g's initializer was not folded to a
// compile-time constant by internal/optimize — such a global still
// needs runtime initialization code and is therefore itself a
// reachability root (spec §4.9).
func (a *Analyzer) globalIsRuntime(g globalVar) bool {
	if g.decl.Init == nil {
		return true
	}
	_, ok := a.Opt.Stable(optimize.Key{InstanceID: g.instanceID, Expr: g.decl.Init})
	return !ok
}

// Run executes every sub-pass in the order spec §4.9 describes:
// reachability first (everything else only examines reachable
// functions), then reentrancy, mutability, effects, and usage.
func (a *Analyzer) Run() *Facts {
	facts := newFacts()
	a.collectDeclsAndCalls()
	a.reachability(facts)
	a.reentrancy(facts)
	a.refVariants(facts)
	a.mutability(facts)
	a.effects(facts)
	a.usage(facts)
	return facts
}

// collectDeclsAndCalls walks every instance's top-level declarations
// once, recording every FuncDeclStatement and every call site's callee
// + ref-variant pattern, the single structural pass every sub-pass
// below replays as a fixpoint over.
func (a *Analyzer) collectDeclsAndCalls() {
	a.funcDecls = map[FuncKey]bool{}
	a.calls = map[FuncKey][]callSite{}
	a.globalCalls = map[globalVar][]callSite{}

	for _, inst := range a.Prog.Instances {
		info := a.Prog.ModuleByID(inst.ModuleID)
		for _, stmt := range info.Module.Statements {
			switch decl := stmt.(type) {
			case *ast.FuncDeclStatement:
				key := FuncKey{InstanceID: inst.ID, Decl: decl}
				a.funcDecls[key] = true
				if decl.Body == nil {
					continue
				}
				var sites []callSite
				collectCallsInExpr(decl.Body, func(call *ast.CallExpression) {
					sites = append(sites, a.classifyCall(inst.ID, key, call))
				})
				a.calls[key] = sites
			case *ast.VarDeclStatement:
				g := globalVar{instanceID: inst.ID, decl: decl}
				a.globals = append(a.globals, g)
				if decl.Init == nil {
					continue
				}
				var sites []callSite
				collectCallsInExpr(decl.Init, func(call *ast.CallExpression) {
					sites = append(sites, a.classifyCall(inst.ID, FuncKey{}, call))
				})
				a.globalCalls[g] = sites
			}
		}
	}
}

// classifyCall resolves a call's callee symbol (bound by the checker
// to the exact FuncDeclStatement it targets, spec §4.3) and records
// the per-receiver M/N ref-variant pattern (spec §4.9 "Ref variants":
// M iff the receiver is an addressable, mutable lvalue at this site).
func (a *Analyzer) classifyCall(instanceID int, caller FuncKey, call *ast.CallExpression) callSite {
	ident, ok := call.Callee.(*ast.Identifier)
	if !ok {
		return callSite{caller: caller, external: true}
	}
	sym, ok := a.Bindings.SymbolFor(instanceID, ident)
	if !ok {
		return callSite{caller: caller, external: true, extName: ident.Name}
	}
	if sym.External {
		return callSite{caller: caller, external: true, extName: sym.Name}
	}
	decl, ok := sym.Decl.(*ast.FuncDeclStatement)
	if !ok {
		return callSite{caller: caller, external: true, extName: sym.Name}
	}

	pattern := make([]byte, 0, len(call.Receivers))
	for _, r := range call.Receivers {
		if isMutableLvalue(r) {
			pattern = append(pattern, 'M')
		} else {
			pattern = append(pattern, 'N')
		}
	}
	return callSite{
		caller:  caller,
		callee:  FuncKey{InstanceID: sym.InstanceID, Decl: decl},
		pattern: string(pattern),
	}
}

// isMutableLvalue reports whether e is an addressable expression that
// could be written through — a bare identifier or an index/member
// chain rooted at one. A literal or computed value is never addressable.
func isMutableLvalue(e ast.Expression) bool {
	switch n := e.(type) {
	case *ast.Identifier:
		return true
	case *ast.IndexExpression:
		return isMutableLvalue(n.Left)
	case *ast.MemberExpression:
		return isMutableLvalue(n.Left)
	default:
		return false
	}
}

// collectCallsInExpr walks e and every nested statement/expression,
// invoking visit for each CallExpression found — the spec §4.9
// "collect_calls" helper.
func collectCallsInExpr(e ast.Expression, visit func(*ast.CallExpression)) {
	if e == nil {
		return
	}
	if call, ok := e.(*ast.CallExpression); ok {
		visit(call)
		for _, r := range call.Receivers {
			collectCallsInExpr(r, visit)
		}
		for _, arg := range call.Arguments {
			collectCallsInExpr(arg, visit)
		}
		return
	}
	switch n := e.(type) {
	case *ast.BinaryExpression:
		collectCallsInExpr(n.Left, visit)
		collectCallsInExpr(n.Right, visit)
	case *ast.UnaryExpression:
		collectCallsInExpr(n.Operand, visit)
	case *ast.IndexExpression:
		collectCallsInExpr(n.Left, visit)
		collectCallsInExpr(n.Index, visit)
	case *ast.MemberExpression:
		collectCallsInExpr(n.Left, visit)
	case *ast.ArrayLiteral:
		for _, el := range n.Elements {
			collectCallsInExpr(el, visit)
		}
	case *ast.TupleLiteral:
		for _, el := range n.Elements {
			collectCallsInExpr(el, visit)
		}
	case *ast.BlockExpression:
		for _, s := range n.Statements {
			collectCallsInStmt(s, visit)
		}
		collectCallsInExpr(n.Trailing, visit)
	case *ast.ConditionalExpression:
		collectCallsInExpr(n.Condition, visit)
		collectCallsInExpr(n.Then, visit)
		collectCallsInExpr(n.Else, visit)
	case *ast.CastExpression:
		collectCallsInExpr(n.Operand, visit)
	case *ast.AssignmentExpression:
		collectCallsInExpr(n.Target, visit)
		collectCallsInExpr(n.Value, visit)
	case *ast.RangeExpression:
		collectCallsInExpr(n.Low, visit)
		collectCallsInExpr(n.High, visit)
	case *ast.LengthExpression:
		collectCallsInExpr(n.Operand, visit)
	case *ast.IterationExpression:
		collectCallsInExpr(n.Iterable, visit)
		collectCallsInExpr(n.Body, visit)
	case *ast.RepeatExpression:
		collectCallsInExpr(n.Condition, visit)
		collectCallsInExpr(n.Body, visit)
	case *ast.ProcessExpression:
		collectCallsInExpr(n.Command, visit)
	}
}

func collectCallsInStmt(s ast.Statement, visit func(*ast.CallExpression)) {
	switch n := s.(type) {
	case *ast.ExpressionStatement:
		collectCallsInExpr(n.Expression, visit)
	case *ast.ReturnStatement:
		collectCallsInExpr(n.Value, visit)
	case *ast.VarDeclStatement:
		collectCallsInExpr(n.Init, visit)
	case *ast.ConditionalStatement:
		collectCallsInExpr(n.Condition, visit)
		collectCallsInStmt(n.Then, visit)
	}
}

// hasAnnotation reports whether name is present on fn's annotation list.
func hasAnnotation(fn *ast.FuncDeclStatement, name string) bool {
	for _, a := range fn.Annotations {
		if a.Name == name {
			return true
		}
	}
	return false
}
