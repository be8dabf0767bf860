package analyze

import (
	"testing"

	"github.com/vexel-lang/vexel/internal/ast"
	"github.com/vexel-lang/vexel/internal/cte"
	"github.com/vexel-lang/vexel/internal/diagnostics"
	"github.com/vexel-lang/vexel/internal/modules"
	"github.com/vexel-lang/vexel/internal/optimize"
	"github.com/vexel-lang/vexel/internal/symbols"
)

// fixture builds: an exported `run(w #Widget)` that reads the global
// `counter` and forwards its receiver into `helper(w #Widget) { w = 1 }`
// — giving every sub-pass (reachability, reentrancy, mutability,
// effects, usage) a non-trivial call graph to close over.
type fixture struct {
	prog       *modules.Program
	inst       *modules.ModuleInstance
	bindings   *symbols.Bindings
	runDecl    *ast.FuncDeclStatement
	helperDecl *ast.FuncDeclStatement
	counterSym *symbols.Symbol
}

func newFixture() *fixture {
	prog := modules.NewProgram()
	bindings := symbols.NewBindings()

	counterName := &ast.Identifier{Name: "counter"}
	globalDecl := &ast.VarDeclStatement{Name: counterName, Init: &ast.IntLiteral{Value: 0}, Mutable: true}
	counterSym := &symbols.Symbol{Name: "counter", Kind: symbols.KindVariable}

	helperRecv := &ast.Identifier{Name: "w"}
	helperDecl := &ast.FuncDeclStatement{
		Name:      &ast.Identifier{Name: "helper"},
		Receivers: []*ast.Receiver{{Name: helperRecv, TypeAnn: &ast.NamedTypeAnn{Name: "Widget"}}},
		Body: &ast.BlockExpression{Statements: []ast.Statement{
			&ast.ExpressionStatement{Expression: &ast.AssignmentExpression{
				Target: &ast.Identifier{Name: "w"},
				Value:  &ast.IntLiteral{Value: 1},
			}},
		}},
	}

	runRecv := &ast.Identifier{Name: "w"}
	helperCallee := &ast.Identifier{Name: "helper"}
	counterRef := &ast.Identifier{Name: "counter"}
	runDecl := &ast.FuncDeclStatement{
		Name:      &ast.Identifier{Name: "run"},
		Exported:  true,
		Receivers: []*ast.Receiver{{Name: runRecv, TypeAnn: &ast.NamedTypeAnn{Name: "Widget"}}},
		Body: &ast.BlockExpression{Statements: []ast.Statement{
			&ast.ExpressionStatement{Expression: &ast.CallExpression{
				Callee:    helperCallee,
				Receivers: []ast.Expression{&ast.Identifier{Name: "w"}},
			}},
			&ast.ExpressionStatement{Expression: counterRef},
		}},
	}

	info := prog.AddModule("entry.vx", &ast.Program{File: "entry.vx", Statements: []ast.Statement{
		globalDecl, helperDecl, runDecl,
	}})
	scope := symbols.NewScope(symbols.ScopeModule, nil)
	inst := prog.NewInstance(info.ID, -1, nil, scope)

	counterSym.InstanceID = inst.ID
	bindings.Bind(inst.ID, counterName, counterSym)
	bindings.Bind(inst.ID, counterRef, counterSym)

	helperSym := &symbols.Symbol{Name: "helper", Kind: symbols.KindFunction, Decl: helperDecl, InstanceID: inst.ID}
	bindings.Bind(inst.ID, helperCallee, helperSym)

	return &fixture{
		prog: prog, inst: inst, bindings: bindings,
		runDecl: runDecl, helperDecl: helperDecl, counterSym: counterSym,
	}
}

func (f *fixture) run(defaults BackendDefaults) *Facts {
	a := New(f.prog, f.bindings, diagnostics.NewCollectingSink(), &optimize.Facts{}, defaults)
	return a.Run()
}

func (f *fixture) runKey() FuncKey    { return FuncKey{InstanceID: f.inst.ID, Decl: f.runDecl} }
func (f *fixture) helperKey() FuncKey { return FuncKey{InstanceID: f.inst.ID, Decl: f.helperDecl} }

func TestReachabilityIncludesExportedAndTransitiveCallee(t *testing.T) {
	f := newFixture()
	facts := f.run(BackendDefaults{DefaultEntryReentrancy: N, DefaultExitReentrancy: N})

	if !facts.ReachableFunctions[f.runKey()] {
		t.Fatalf("expected the exported entry function to be reachable")
	}
	if !facts.ReachableFunctions[f.helperKey()] {
		t.Fatalf("expected helper, called transitively from run, to be reachable")
	}
}

func TestMutabilityForwardsThroughCall(t *testing.T) {
	f := newFixture()
	facts := f.run(BackendDefaults{DefaultEntryReentrancy: N, DefaultExitReentrancy: N})

	if !facts.ReceiverMutates[f.helperKey()][0] {
		t.Fatalf("expected helper's receiver to be classified mutable (direct write)")
	}
	if !facts.ReceiverMutates[f.runKey()][0] {
		t.Fatalf("expected run's receiver to be classified mutable (forwarded into helper's mutable receiver)")
	}
}

func TestEffectsMarksBothFunctionsImpure(t *testing.T) {
	f := newFixture()
	facts := f.run(BackendDefaults{DefaultEntryReentrancy: N, DefaultExitReentrancy: N})

	if facts.FunctionIsPure[f.helperKey()] {
		t.Fatalf("expected helper, which writes through its receiver, to be impure")
	}
	if facts.FunctionIsPure[f.runKey()] {
		t.Fatalf("expected run, which mutates its receiver via forwarding, to be impure")
	}
}

func TestUsageMarksReferencedGlobalAndReceiverType(t *testing.T) {
	f := newFixture()
	facts := f.run(BackendDefaults{DefaultEntryReentrancy: N, DefaultExitReentrancy: N})

	if !facts.UsedGlobalVars[f.counterSym] {
		t.Fatalf("expected the global `counter`, referenced in run's body, to be marked used")
	}
	if !facts.UsedTypeNames["Widget"] {
		t.Fatalf("expected the receiver type Widget to be marked used")
	}
}

func TestReentrancyPropagatesDefaultFromExportedEntry(t *testing.T) {
	f := newFixture()
	facts := f.run(BackendDefaults{DefaultEntryReentrancy: R, DefaultExitReentrancy: N})

	if !facts.ReentrancyVariants[f.runKey()][R] {
		t.Fatalf("expected run to be seeded with the backend's default entry reentrancy R")
	}
	if !facts.ReentrancyVariants[f.helperKey()][R] {
		t.Fatalf("expected helper to inherit R transitively from its only caller run")
	}
}

func TestGlobalIsRuntimeWhenNotFolded(t *testing.T) {
	f := newFixture()
	a := New(f.prog, f.bindings, diagnostics.NewCollectingSink(), &optimize.Facts{}, BackendDefaults{})
	g := globalVar{instanceID: f.inst.ID, decl: &ast.VarDeclStatement{Init: &ast.IntLiteral{Value: 1}}}
	if !a.globalIsRuntime(g) {
		t.Fatalf("expected a global with no recorded stable value to be treated as runtime-initialized")
	}
}

func TestGlobalIsRuntimeFalseWhenFolded(t *testing.T) {
	f := newFixture()
	init := &ast.IntLiteral{Value: 1}
	g := globalVar{instanceID: f.inst.ID, decl: &ast.VarDeclStatement{Init: init}}

	opt := &optimize.Facts{StableValues: map[optimize.Key]cte.Value{
		{InstanceID: f.inst.ID, Expr: init}: cte.Uint(1),
	}}
	a := New(f.prog, f.bindings, diagnostics.NewCollectingSink(), opt, BackendDefaults{})
	if a.globalIsRuntime(g) {
		t.Fatalf("expected a global with a recorded stable value to not be runtime-initialized")
	}
}
