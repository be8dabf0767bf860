package cte

import (
	"testing"

	"github.com/vexel-lang/vexel/internal/ast"
	"github.com/vexel-lang/vexel/internal/symbols"
)

func TestQueryArithmetic(t *testing.T) {
	e := NewEvaluator(symbols.NewBindings(), 0)
	expr := &ast.BinaryExpression{
		Operator: "+",
		Left:     &ast.IntLiteral{Value: 2},
		Right:    &ast.IntLiteral{Value: 3},
	}
	r := e.Query(expr)
	if r.Kind != ResultKnown || r.Value.Uint != 5 {
		t.Fatalf("expected Known(5), got %+v", r)
	}
}

func TestQueryDivByZeroIsError(t *testing.T) {
	e := NewEvaluator(symbols.NewBindings(), 0)
	expr := &ast.BinaryExpression{
		Operator: "/",
		Left:     &ast.IntLiteral{Value: 1},
		Right:    &ast.IntLiteral{Value: 0},
	}
	r := e.Query(expr)
	if r.Kind != ResultError {
		t.Fatalf("expected division by zero to be an Error, got %+v", r)
	}
}

func TestAssignmentThenReadBack(t *testing.T) {
	e := NewEvaluator(symbols.NewBindings(), 0)
	assign := &ast.AssignmentExpression{Target: &ast.Identifier{Name: "x"}, Value: &ast.IntLiteral{Value: 7}}
	block := &ast.BlockExpression{
		Statements: []ast.Statement{&ast.ExpressionStatement{Expression: assign}},
		Trailing:   &ast.Identifier{Name: "x"},
	}
	r := e.Query(block)
	if r.Kind != ResultKnown || r.Value.Uint != 7 {
		t.Fatalf("expected Known(7), got %+v", r)
	}
}

func TestIterationSumsArray(t *testing.T) {
	e := NewEvaluator(symbols.NewBindings(), 0)
	// total = 0; [1,2,3] @ { total = total + _ }; total
	initTotal := &ast.AssignmentExpression{Target: &ast.Identifier{Name: "total"}, Value: &ast.IntLiteral{Value: 0}}
	addToTotal := &ast.AssignmentExpression{
		Target: &ast.Identifier{Name: "total"},
		Value: &ast.BinaryExpression{
			Operator: "+",
			Left:     &ast.Identifier{Name: "total"},
			Right:    &ast.Identifier{Name: "_"},
		},
	}
	iter := &ast.IterationExpression{
		Iterable: &ast.ArrayLiteral{Elements: []ast.Expression{
			&ast.IntLiteral{Value: 1}, &ast.IntLiteral{Value: 2}, &ast.IntLiteral{Value: 3},
		}},
		Binding: &ast.Identifier{Name: "_"},
		Body:    &ast.BlockExpression{Statements: []ast.Statement{&ast.ExpressionStatement{Expression: addToTotal}}},
	}
	block := &ast.BlockExpression{
		Statements: []ast.Statement{
			&ast.ExpressionStatement{Expression: initTotal},
			&ast.ExpressionStatement{Expression: iter},
		},
		Trailing: &ast.Identifier{Name: "total"},
	}
	r := e.Query(block)
	if r.Kind != ResultKnown || r.Value.Uint != 6 {
		t.Fatalf("expected Known(6), got %+v", r)
	}
}

func TestReceiverMutationIsRejected(t *testing.T) {
	bindings := symbols.NewBindings()
	e := NewEvaluator(bindings, 0)

	recvName := &ast.Identifier{Name: "self"}
	mutate := &ast.AssignmentExpression{Target: &ast.Identifier{Name: "self"}, Value: &ast.IntLiteral{Value: 1}}
	decl := &ast.FuncDeclStatement{
		Name:      &ast.Identifier{Name: "mutate"},
		Receivers: []*ast.Receiver{{Name: recvName}},
		Body:      &ast.BlockExpression{Statements: []ast.Statement{&ast.ExpressionStatement{Expression: mutate}}},
	}
	fnSym := &symbols.Symbol{Name: "mutate", Kind: symbols.KindFunction, Decl: decl}
	calleeIdent := &ast.Identifier{Name: "mutate"}
	bindings.Bind(0, calleeIdent, fnSym)

	call := &ast.CallExpression{
		Callee:    calleeIdent,
		Receivers: []ast.Expression{&ast.IntLiteral{Value: 0}},
	}
	r := e.Query(call)
	if r.Kind != ResultError {
		t.Fatalf("expected receiver mutation to be an Error, got %+v", r)
	}
}

func TestRecursionBoundIsEnforced(t *testing.T) {
	bindings := symbols.NewBindings()
	e := NewEvaluator(bindings, 0)
	e.MaxRecursion = 3

	calleeIdent := &ast.Identifier{Name: "loop"}
	var decl *ast.FuncDeclStatement
	recurse := &ast.CallExpression{Callee: calleeIdent}
	decl = &ast.FuncDeclStatement{
		Name: &ast.Identifier{Name: "loop"},
		Body: &ast.BlockExpression{Trailing: recurse},
	}
	fnSym := &symbols.Symbol{Name: "loop", Kind: symbols.KindFunction, Decl: decl}
	bindings.Bind(0, calleeIdent, fnSym)

	r := e.Query(recurse)
	if r.Kind != ResultError {
		t.Fatalf("expected recursion bound to produce an Error, got %+v", r)
	}
}
