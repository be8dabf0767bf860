package optimize

import (
	"github.com/vexel-lang/vexel/internal/ast"
	"github.com/vexel-lang/vexel/internal/cte"
)

// root is one spec §4.7 "context root": a function body, a var
// initializer, a top-level expression statement, or a conditional
// statement's condition.
type root struct {
	instanceID int
	expr       ast.Expression
}

// collectRoots walks every top-level statement of every instance's
// module (which, after internal/mono, also carries the monomorphized
// clones appended to its Statements) and gathers context roots plus
// every sub-expression nested under them.
func collectRoots(instanceID int, stmts []ast.Statement) (roots []root, subs []root) {
	var walkStmt func(s ast.Statement)
	var walkExpr func(e ast.Expression)

	addRoot := func(e ast.Expression) {
		if e == nil {
			return
		}
		roots = append(roots, root{instanceID: instanceID, expr: e})
		walkExpr(e)
	}

	walkExpr = func(e ast.Expression) {
		if e == nil {
			return
		}
		subs = append(subs, root{instanceID: instanceID, expr: e})
		for _, child := range childExprs(e) {
			walkExpr(child)
		}
		for _, s := range childStmts(e) {
			walkStmt(s)
		}
		if t := trailingExprOf(e); t != nil {
			walkExpr(t)
		}
	}

	walkStmt = func(s ast.Statement) {
		switch n := s.(type) {
		case *ast.FuncDeclStatement:
			if n.Body != nil && !n.Generic {
				addRoot(n.Body)
			}
		case *ast.VarDeclStatement:
			if n.Init != nil {
				addRoot(n.Init)
			}
		case *ast.ExpressionStatement:
			if n.Expression != nil {
				addRoot(n.Expression)
			}
		case *ast.ConditionalStatement:
			if n.Condition != nil {
				addRoot(n.Condition)
			}
			walkStmt(n.Then)
		case *ast.ReturnStatement:
			if n.Value != nil {
				walkExpr(n.Value)
			}
		}
	}

	for _, s := range stmts {
		walkStmt(s)
	}
	return roots, subs
}

// childExprs returns e's direct expression children, for the purpose
// of locating every sub-expression reachable from a context root — not
// a general-purpose traversal (it has no business logic, just shape).
func childExprs(e ast.Expression) []ast.Expression {
	switch n := e.(type) {
	case *ast.BinaryExpression:
		return []ast.Expression{n.Left, n.Right}
	case *ast.UnaryExpression:
		return []ast.Expression{n.Operand}
	case *ast.CallExpression:
		out := append([]ast.Expression{}, n.Receivers...)
		out = append(out, n.Arguments...)
		return out
	case *ast.IndexExpression:
		return []ast.Expression{n.Left, n.Index}
	case *ast.MemberExpression:
		return []ast.Expression{n.Left}
	case *ast.ArrayLiteral:
		return n.Elements
	case *ast.TupleLiteral:
		return n.Elements
	case *ast.ConditionalExpression:
		out := []ast.Expression{n.Condition, n.Then}
		if n.Else != nil {
			out = append(out, n.Else)
		}
		return out
	case *ast.CastExpression:
		return []ast.Expression{n.Operand}
	case *ast.AssignmentExpression:
		return []ast.Expression{n.Target, n.Value}
	case *ast.RangeExpression:
		return []ast.Expression{n.Low, n.High}
	case *ast.LengthExpression:
		return []ast.Expression{n.Operand}
	case *ast.IterationExpression:
		return []ast.Expression{n.Iterable}
	case *ast.RepeatExpression:
		return []ast.Expression{n.Condition}
	case *ast.ProcessExpression:
		return []ast.Expression{n.Command}
	default:
		return nil
	}
}

// childStmts returns the statements nested directly under e, when e is
// a block-shaped expression. A block's trailing expression is not a
// statement, so it is returned separately via trailingExprOf.
func childStmts(e ast.Expression) []ast.Statement {
	switch n := e.(type) {
	case *ast.BlockExpression:
		return n.Statements
	case *ast.IterationExpression:
		if n.Body != nil {
			if b, ok := n.Body.(*ast.BlockExpression); ok {
				return b.Statements
			}
		}
	case *ast.RepeatExpression:
		if n.Body != nil {
			if b, ok := n.Body.(*ast.BlockExpression); ok {
				return b.Statements
			}
		}
	}
	return nil
}

// trailingExprOf returns a block-shaped expression's trailing value
// expression, if any, so walkExpr can descend into it directly instead
// of through a synthetic statement.
func trailingExprOf(e ast.Expression) ast.Expression {
	switch n := e.(type) {
	case *ast.BlockExpression:
		return n.Trailing
	case *ast.IterationExpression:
		if b, ok := n.Body.(*ast.BlockExpression); ok {
			return b.Trailing
		}
	case *ast.RepeatExpression:
		if b, ok := n.Body.(*ast.BlockExpression); ok {
			return b.Trailing
		}
	}
	return nil
}

func isScalar(k cte.Kind) bool {
	switch k {
	case cte.KindInt, cte.KindUint, cte.KindFloat, cte.KindBool, cte.KindString:
		return true
	default:
		return false
	}
}
