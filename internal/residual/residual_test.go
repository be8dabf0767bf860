package residual

import (
	"testing"

	"github.com/vexel-lang/vexel/internal/ast"
	"github.com/vexel-lang/vexel/internal/cte"
	"github.com/vexel-lang/vexel/internal/modules"
	"github.com/vexel-lang/vexel/internal/optimize"
	"github.com/vexel-lang/vexel/internal/symbols"
)

func newFixture(stmts []ast.Statement) (*modules.Program, *modules.ModuleInstance) {
	prog := modules.NewProgram()
	info := prog.AddModule("entry.vx", &ast.Program{File: "entry.vx", Statements: stmts})
	scope := symbols.NewScope(symbols.ScopeModule, nil)
	inst := prog.NewInstance(info.ID, -1, nil, scope)
	return prog, inst
}

// TestRunFoldsStableExpressionIntoLiteral exercises the literal
// reconstruction path directly: a binary expression the optimizer
// proved stable is rewritten to the literal it evaluates to.
func TestRunFoldsStableExpressionIntoLiteral(t *testing.T) {
	sum := &ast.BinaryExpression{Operator: "+", Left: &ast.IntLiteral{Value: 2}, Right: &ast.IntLiteral{Value: 3}}
	retStmt := &ast.ReturnStatement{Value: sum}
	fn := &ast.FuncDeclStatement{Name: &ast.Identifier{Name: "five"}, Body: &ast.BlockExpression{Statements: []ast.Statement{retStmt}}}

	prog, inst := newFixture([]ast.Statement{fn})
	facts := &optimize.Facts{
		StableValues:        map[optimize.Key]cte.Value{{InstanceID: inst.ID, Expr: sum}: cte.Uint(5)},
		UnstableKeys:        map[optimize.Key]bool{},
		KnownSymbolValues:   map[*symbols.Symbol]cte.Value{},
		ConstexprConditions: map[optimize.Key]bool{},
		ConstexprInits:      map[optimize.Key]bool{},
		FoldableFunctions:   map[string]bool{},
		FoldSkipReasons:     map[string]optimize.SkipReason{},
	}

	r := New(prog, facts)
	changed := r.Run()
	if !changed {
		t.Fatalf("expected folding a stable expression to report a change")
	}
	lit, ok := retStmt.Value.(*ast.IntLiteral)
	if !ok || lit.Value != 5 {
		t.Fatalf("expected the return value to be folded to the literal 5, got %#v", retStmt.Value)
	}
}

// TestRunEliminatesDeadConditionalBranch: a conditional whose condition
// is known false at compile time must disappear from the statement
// list entirely.
func TestRunEliminatesDeadConditionalBranch(t *testing.T) {
	cond := &ast.Identifier{Name: "flag"}
	dead := &ast.ConditionalStatement{
		Condition: cond,
		Then:      &ast.ExpressionStatement{Expression: &ast.CallExpression{Callee: &ast.Identifier{Name: "sideEffect"}}},
	}
	after := &ast.ReturnStatement{Value: &ast.IntLiteral{Value: 1}}
	fn := &ast.FuncDeclStatement{
		Name: &ast.Identifier{Name: "f"},
		Body: &ast.BlockExpression{Statements: []ast.Statement{dead, after}},
	}

	prog, inst := newFixture([]ast.Statement{fn})
	facts := &optimize.Facts{
		StableValues:        map[optimize.Key]cte.Value{},
		UnstableKeys:        map[optimize.Key]bool{},
		KnownSymbolValues:   map[*symbols.Symbol]cte.Value{},
		ConstexprConditions: map[optimize.Key]bool{{InstanceID: inst.ID, Expr: cond}: false},
		ConstexprInits:      map[optimize.Key]bool{},
		FoldableFunctions:   map[string]bool{},
		FoldSkipReasons:     map[string]optimize.SkipReason{},
	}

	r := New(prog, facts)
	if !r.Run() {
		t.Fatalf("expected dead-branch elimination to report a change")
	}
	blk := fn.Body.(*ast.BlockExpression)
	if len(blk.Statements) != 1 {
		t.Fatalf("expected the dead conditional to be dropped, left with %d statements", len(blk.Statements))
	}
	if blk.Statements[0] != ast.Statement(after) {
		t.Fatalf("expected the surviving statement to be the one after the dead conditional")
	}
}

// TestRunIsIdempotent: running the residualizer a second time over its
// own output must report no further change.
func TestRunIsIdempotent(t *testing.T) {
	sum := &ast.BinaryExpression{Operator: "+", Left: &ast.IntLiteral{Value: 1}, Right: &ast.IntLiteral{Value: 1}}
	retStmt := &ast.ReturnStatement{Value: sum}
	fn := &ast.FuncDeclStatement{Name: &ast.Identifier{Name: "two"}, Body: &ast.BlockExpression{Statements: []ast.Statement{retStmt}}}

	prog, inst := newFixture([]ast.Statement{fn})
	facts := &optimize.Facts{
		StableValues:        map[optimize.Key]cte.Value{{InstanceID: inst.ID, Expr: sum}: cte.Uint(2)},
		UnstableKeys:        map[optimize.Key]bool{},
		KnownSymbolValues:   map[*symbols.Symbol]cte.Value{},
		ConstexprConditions: map[optimize.Key]bool{},
		ConstexprInits:      map[optimize.Key]bool{},
		FoldableFunctions:   map[string]bool{},
		FoldSkipReasons:     map[string]optimize.SkipReason{},
	}

	first := New(prog, facts)
	if !first.Run() {
		t.Fatalf("expected the first pass to report a change")
	}

	second := New(prog, facts)
	if second.Run() {
		t.Fatalf("expected a second pass over already-folded output to report no further change")
	}
}

func TestIsPureExprRejectsCallsAndAssignments(t *testing.T) {
	if !isPureExpr(&ast.BinaryExpression{Left: &ast.IntLiteral{Value: 1}, Right: &ast.Identifier{Name: "x"}}) {
		t.Fatalf("expected a binary expression of pure operands to be pure")
	}
	if isPureExpr(&ast.CallExpression{Callee: &ast.Identifier{Name: "f"}}) {
		t.Fatalf("expected a call expression to never be pure")
	}
	if isPureExpr(&ast.AssignmentExpression{Target: &ast.Identifier{Name: "x"}, Value: &ast.IntLiteral{Value: 1}}) {
		t.Fatalf("expected an assignment expression to never be pure")
	}
}
