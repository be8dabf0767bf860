package lower

import (
	"testing"

	"github.com/vexel-lang/vexel/internal/ast"
)

func TestIterationBodyWrappedInBlock(t *testing.T) {
	bare := &ast.CallExpression{Callee: &ast.Identifier{Name: "use"}}
	iter := &ast.IterationExpression{
		Iterable: &ast.ArrayLiteral{},
		Body:     bare,
	}
	New().LowerProgram(&ast.Program{Statements: []ast.Statement{
		&ast.ExpressionStatement{Expression: iter},
	}})

	blk, ok := iter.Body.(*ast.BlockExpression)
	if !ok {
		t.Fatalf("expected the bare loop body to be wrapped in a block, got %T", iter.Body)
	}
	if len(blk.Statements) != 1 {
		t.Fatalf("expected exactly one wrapped statement, got %d", len(blk.Statements))
	}
	stmt, ok := blk.Statements[0].(*ast.ExpressionStatement)
	if !ok || stmt.Expression != bare {
		t.Fatalf("expected the wrapped statement to hold the original bare expression unchanged")
	}
}

func TestIterationBodyAlreadyBlockIsLeftAlone(t *testing.T) {
	blk := &ast.BlockExpression{Statements: []ast.Statement{
		&ast.ExpressionStatement{Expression: &ast.CallExpression{Callee: &ast.Identifier{Name: "use"}}},
	}}
	iter := &ast.IterationExpression{Iterable: &ast.ArrayLiteral{}, Body: blk}

	New().LowerProgram(&ast.Program{Statements: []ast.Statement{
		&ast.ExpressionStatement{Expression: iter},
	}})

	if iter.Body != ast.Expression(blk) {
		t.Fatalf("expected an already-block body to be left exactly as is")
	}
}

func TestRepeatBodyWrappedInBlock(t *testing.T) {
	bare := &ast.CallExpression{Callee: &ast.Identifier{Name: "tick"}}
	rep := &ast.RepeatExpression{
		Condition: &ast.Identifier{Name: "running"},
		Body:      bare,
	}
	New().LowerProgram(&ast.Program{Statements: []ast.Statement{
		&ast.ExpressionStatement{Expression: rep},
	}})

	if _, ok := rep.Body.(*ast.BlockExpression); !ok {
		t.Fatalf("expected the bare repeat body to be wrapped in a block, got %T", rep.Body)
	}
}

// TestNestedLoopBodiesAreBothWrapped checks that wrapping a loop body
// still recurses into it: an inner loop one level down must also come
// out of LowerProgram with its own bare body wrapped.
func TestNestedLoopBodiesAreBothWrapped(t *testing.T) {
	innerBare := &ast.CallExpression{Callee: &ast.Identifier{Name: "inner"}}
	inner := &ast.IterationExpression{Iterable: &ast.ArrayLiteral{}, Body: innerBare}
	outer := &ast.IterationExpression{Iterable: &ast.ArrayLiteral{}, Body: inner}

	New().LowerProgram(&ast.Program{Statements: []ast.Statement{
		&ast.ExpressionStatement{Expression: outer},
	}})

	outerBlk, ok := outer.Body.(*ast.BlockExpression)
	if !ok {
		t.Fatalf("expected the outer loop's body to be wrapped, got %T", outer.Body)
	}
	stmt, ok := outerBlk.Statements[0].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("expected the outer block's sole statement to be an expression statement, got %T", outerBlk.Statements[0])
	}
	nestedIter, ok := stmt.Expression.(*ast.IterationExpression)
	if !ok || nestedIter != inner {
		t.Fatalf("expected the wrapped statement to hold the original inner iteration")
	}
	if _, ok := inner.Body.(*ast.BlockExpression); !ok {
		t.Fatalf("expected the inner loop's bare body to also be wrapped, got %T", inner.Body)
	}
}

func TestLowerProgramVisitsFuncDeclBody(t *testing.T) {
	bare := &ast.CallExpression{Callee: &ast.Identifier{Name: "use"}}
	iter := &ast.IterationExpression{Iterable: &ast.ArrayLiteral{}, Body: bare}
	fn := &ast.FuncDeclStatement{
		Name: &ast.Identifier{Name: "run"},
		Body: &ast.BlockExpression{Statements: []ast.Statement{
			&ast.ExpressionStatement{Expression: iter},
		}},
	}
	New().LowerProgram(&ast.Program{Statements: []ast.Statement{fn}})

	if _, ok := iter.Body.(*ast.BlockExpression); !ok {
		t.Fatalf("expected a loop body nested inside a function decl to be wrapped, got %T", iter.Body)
	}
}
