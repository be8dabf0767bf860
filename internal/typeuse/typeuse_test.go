package typeuse

import (
	"testing"

	"github.com/vexel-lang/vexel/internal/analyze"
	"github.com/vexel-lang/vexel/internal/ast"
	"github.com/vexel-lang/vexel/internal/diagnostics"
	"github.com/vexel-lang/vexel/internal/modules"
	"github.com/vexel-lang/vexel/internal/optimize"
	"github.com/vexel-lang/vexel/internal/symbols"
	"github.com/vexel-lang/vexel/internal/typesystem"
)

func concreteInt(e ast.Expression, width int) {
	e.SetExprType(typesystem.I(width))
}

func newFixture() (*modules.Program, *symbols.Bindings, *analyze.Facts, *optimize.Facts) {
	prog := modules.NewProgram()
	prog.AddModule("entry.vx", &ast.Program{File: "entry.vx"})
	facts := &analyze.Facts{
		ReachableFunctions: map[analyze.FuncKey]bool{},
		UsedGlobalVars:     map[*symbols.Symbol]bool{},
	}
	opt := &optimize.Facts{
		ConstexprConditions: map[optimize.Key]bool{},
	}
	return prog, symbols.NewBindings(), facts, opt
}

func TestConcreteExpressionPasses(t *testing.T) {
	prog, bindings, facts, opt := newFixture()
	lit := &ast.IntLiteral{Value: 5}
	concreteInt(lit, 32)
	fn := &ast.FuncDeclStatement{Name: &ast.Identifier{Name: "f"}, Body: &ast.BlockExpression{Trailing: lit}}
	facts.ReachableFunctions[analyze.FuncKey{InstanceID: 0, Decl: fn}] = true

	sink := diagnostics.NewCollectingSink()
	v := New(prog, bindings, facts, opt, sink)
	v.Run()

	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Errors())
	}
}

func TestUnresolvedWidthIsError(t *testing.T) {
	prog, bindings, facts, opt := newFixture()
	lit := &ast.IntLiteral{Value: 5}
	lit.SetExprType(typesystem.I(0)) // unresolved width
	fn := &ast.FuncDeclStatement{Name: &ast.Identifier{Name: "f"}, Body: &ast.BlockExpression{Trailing: lit}}
	facts.ReachableFunctions[analyze.FuncKey{InstanceID: 0, Decl: fn}] = true

	sink := diagnostics.NewCollectingSink()
	v := New(prog, bindings, facts, opt, sink)
	v.Run()

	if !sink.HasErrors() {
		t.Fatal("expected an error for an unresolved integer width")
	}
}

func TestMissingTypeIsError(t *testing.T) {
	prog, bindings, facts, opt := newFixture()
	lit := &ast.IntLiteral{Value: 5} // SetExprType never called
	fn := &ast.FuncDeclStatement{Name: &ast.Identifier{Name: "f"}, Body: &ast.BlockExpression{Trailing: lit}}
	facts.ReachableFunctions[analyze.FuncKey{InstanceID: 0, Decl: fn}] = true

	sink := diagnostics.NewCollectingSink()
	v := New(prog, bindings, facts, opt, sink)
	v.Run()

	if !sink.HasErrors() {
		t.Fatal("expected an error for a typeless expression")
	}
}

func TestDeadBranchIsSkipped(t *testing.T) {
	prog, bindings, facts, opt := newFixture()

	cond := &ast.IntLiteral{Value: 1}
	concreteInt(cond, 1)
	dead := &ast.IntLiteral{Value: 2} // deliberately left typeless
	live := &ast.IntLiteral{Value: 3}
	concreteInt(live, 32)
	conditional := &ast.ConditionalExpression{Condition: cond, Then: live, Else: dead}

	fn := &ast.FuncDeclStatement{Name: &ast.Identifier{Name: "f"}, Body: &ast.BlockExpression{Trailing: conditional}}
	facts.ReachableFunctions[analyze.FuncKey{InstanceID: 0, Decl: fn}] = true
	opt.ConstexprConditions[optimize.Key{InstanceID: 0, Expr: cond}] = true // condition proved true

	sink := diagnostics.NewCollectingSink()
	v := New(prog, bindings, facts, opt, sink)
	v.Run()

	if sink.HasErrors() {
		t.Fatalf("dead branch should not be walked, got: %v", sink.Errors())
	}
}

func TestExpressionParamArgumentIsOpaque(t *testing.T) {
	prog, bindings, facts, opt := newFixture()

	calleeName := &ast.Identifier{Name: "g"}
	callee := &ast.FuncDeclStatement{
		Name:   calleeName,
		Params: []*ast.Param{{Name: &ast.Identifier{Name: "body"}, Expression: true}},
		Body:   &ast.BlockExpression{Trailing: &ast.IntLiteral{Value: 0}},
	}
	bindings.Bind(0, calleeName, &symbols.Symbol{Name: "g", Kind: symbols.KindFunction, Decl: callee})

	calleeRef := &ast.Identifier{Name: "g"}
	bindings.Bind(0, calleeRef, &symbols.Symbol{Name: "g", Kind: symbols.KindFunction, Decl: callee})

	opaqueArg := &ast.IntLiteral{Value: 9} // never given a type
	call := &ast.CallExpression{Callee: calleeRef, Arguments: []ast.Expression{opaqueArg}}
	concreteInt(call, 32)

	fn := &ast.FuncDeclStatement{Name: &ast.Identifier{Name: "f"}, Body: &ast.BlockExpression{Trailing: call}}
	facts.ReachableFunctions[analyze.FuncKey{InstanceID: 0, Decl: fn}] = true

	sink := diagnostics.NewCollectingSink()
	v := New(prog, bindings, facts, opt, sink)
	v.Run()

	if sink.HasErrors() {
		t.Fatalf("expression-parameter argument should be opaque, got: %v", sink.Errors())
	}
}

func TestVoidCallStatementCarriesNoType(t *testing.T) {
	prog, bindings, facts, opt := newFixture()

	call := &ast.CallExpression{Callee: &ast.Identifier{Name: "sideEffect"}} // never given a type
	stmt := &ast.ExpressionStatement{Expression: call}
	fn := &ast.FuncDeclStatement{
		Name: &ast.Identifier{Name: "f"},
		Body: &ast.BlockExpression{Statements: []ast.Statement{stmt}},
	}
	facts.ReachableFunctions[analyze.FuncKey{InstanceID: 0, Decl: fn}] = true

	sink := diagnostics.NewCollectingSink()
	v := New(prog, bindings, facts, opt, sink)
	v.Run()

	if sink.HasErrors() {
		t.Fatalf("a void call statement should not require its own type, got: %v", sink.Errors())
	}
}
