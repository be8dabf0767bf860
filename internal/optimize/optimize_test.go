package optimize

import (
	"strings"
	"testing"

	"github.com/vexel-lang/vexel/internal/ast"
	"github.com/vexel-lang/vexel/internal/cte"
	"github.com/vexel-lang/vexel/internal/modules"
	"github.com/vexel-lang/vexel/internal/symbols"
)

func newFixtureProgram(stmts []ast.Statement) (*modules.Program, *modules.ModuleInstance) {
	prog := modules.NewProgram()
	info := prog.AddModule("entry.vx", &ast.Program{File: "entry.vx", Statements: stmts})
	scope := symbols.NewScope(symbols.ScopeModule, nil)
	inst := prog.NewInstance(info.ID, -1, nil, scope)
	return prog, inst
}

func TestSchedulerPromotesStableGlobalConstant(t *testing.T) {
	name := &ast.Identifier{Name: "limit"}
	init := &ast.BinaryExpression{Operator: "+", Left: &ast.IntLiteral{Value: 2}, Right: &ast.IntLiteral{Value: 3}}
	decl := &ast.VarDeclStatement{Name: name, Init: init}

	prog, inst := newFixtureProgram([]ast.Statement{decl})
	bindings := symbols.NewBindings()
	sym := &symbols.Symbol{Name: "limit", Kind: symbols.KindConstant, Decl: decl, InstanceID: inst.ID}
	bindings.Bind(inst.ID, name, sym)

	facts, err := New(prog, bindings).Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, ok := facts.KnownSymbolValues[sym]
	if !ok {
		t.Fatalf("expected limit to be promoted to a known constant")
	}
	if v.Kind != cte.KindUint || v.Uint != 5 {
		t.Fatalf("expected limit's promoted value to be 5, got %+v", v)
	}
}

func TestSchedulerConvergesOnEmptyProgram(t *testing.T) {
	prog, _ := newFixtureProgram(nil)
	facts, err := New(prog, symbols.NewBindings()).Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if facts == nil {
		t.Fatalf("expected non-nil facts from an empty program")
	}
}

// TestPromoteGlobalsRejectsNonMonotonicValue is a regression test: once
// a global's stable value is recorded in KnownSymbolValues, a later
// round computing a *different* value for the same symbol must be
// reported as an internal error rather than silently overwritten.
func TestPromoteGlobalsRejectsNonMonotonicValue(t *testing.T) {
	name := &ast.Identifier{Name: "x"}
	init := &ast.IntLiteral{Value: 1}
	decl := &ast.VarDeclStatement{Name: name, Init: init}

	prog, inst := newFixtureProgram([]ast.Statement{decl})
	bindings := symbols.NewBindings()
	sym := &symbols.Symbol{Name: "x", Kind: symbols.KindConstant, Decl: decl, InstanceID: inst.ID}
	bindings.Bind(inst.ID, name, sym)

	s := New(prog, bindings)
	facts := newFacts()
	facts.StableValues[Key{InstanceID: inst.ID, Expr: init}] = cte.Uint(1)

	promoted, err := s.promoteGlobals(facts)
	if err != nil {
		t.Fatalf("unexpected error on first promotion: %v", err)
	}
	if !promoted {
		t.Fatalf("expected the first promotion to report progress")
	}

	// A later round recomputed a different stable value for the exact
	// same initializer expression — this must never happen for a pure
	// evaluator, but promoteGlobals must still guard against it rather
	// than trust the new value.
	facts.StableValues[Key{InstanceID: inst.ID, Expr: init}] = cte.Uint(2)

	_, err = s.promoteGlobals(facts)
	if err == nil {
		t.Fatalf("expected a non-monotonic promotion to be reported as an error")
	}
	if !strings.Contains(err.Error(), "non-monotonic") {
		t.Fatalf("expected the error to mention non-monotonic, got %q", err.Error())
	}
	if facts.KnownSymbolValues[sym].Uint != 1 {
		t.Fatalf("expected the original promoted value to be left untouched, got %+v", facts.KnownSymbolValues[sym])
	}
}

func TestFactsRecordMarksConflictingValuesUnstable(t *testing.T) {
	f := newFacts()
	key := Key{InstanceID: 0, Expr: &ast.IntLiteral{Value: 1}}

	f.record(key, cte.Uint(1))
	if _, ok := f.Stable(key); !ok {
		t.Fatalf("expected a single observation to be stable")
	}

	f.record(key, cte.Uint(2))
	if _, ok := f.Stable(key); ok {
		t.Fatalf("expected a conflicting second observation to make the key unstable")
	}
	if !f.UnstableKeys[key] {
		t.Fatalf("expected the key to be flagged in UnstableKeys")
	}
}

func TestClassifyFoldableMarksZeroArityScalarFunction(t *testing.T) {
	body := &ast.BlockExpression{Trailing: &ast.BinaryExpression{
		Operator: "+", Left: &ast.IntLiteral{Value: 1}, Right: &ast.IntLiteral{Value: 1},
	}}
	fn := &ast.FuncDeclStatement{Name: &ast.Identifier{Name: "two"}, Body: body}

	prog, inst := newFixtureProgram([]ast.Statement{fn})
	s := New(prog, symbols.NewBindings())

	facts, err := s.Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !facts.FoldableFunctions["two"] {
		t.Fatalf("expected a zero-arity scalar-returning function to be classified foldable, skip reasons: %+v", facts.FoldSkipReasons)
	}
	_ = inst
}

func TestClassifyFoldableSkipsFunctionWithParams(t *testing.T) {
	body := &ast.BlockExpression{Trailing: &ast.Identifier{Name: "n"}}
	fn := &ast.FuncDeclStatement{
		Name:   &ast.Identifier{Name: "echo"},
		Params: []*ast.Param{{Name: &ast.Identifier{Name: "n"}}},
		Body:   body,
	}

	prog, _ := newFixtureProgram([]ast.Statement{fn})
	facts, err := New(prog, symbols.NewBindings()).Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if facts.FoldableFunctions["echo"] {
		t.Fatalf("a function with params must never be classified foldable")
	}
	if facts.FoldSkipReasons["echo"] != SkipHasParams {
		t.Fatalf("expected SkipHasParams, got %v", facts.FoldSkipReasons["echo"])
	}
}
