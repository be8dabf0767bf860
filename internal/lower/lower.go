// Package lower implements spec §4.5: syntactic-only normalization of
// the typed AST that never changes a type. Its only job today is to
// wrap a bare (non-block) loop body in a block, so every downstream
// pass (CTE, optimizer, residualizer) can assume iteration/repeat
// bodies are always internal/ast.BlockExpression values.
//
// Grounded on the teacher's internal/ast Visitor double-dispatch
// pattern: a pass implements Visitor (embedding BaseVisitor for the
// leaves it doesn't care about) and drives its own recursion by
// calling child.Accept(l) instead of a type switch.
package lower

import "github.com/vexel-lang/vexel/internal/ast"

// Lowerer walks a module's statements, normalizing in place.
type Lowerer struct {
	ast.BaseVisitor
}

func New() *Lowerer { return &Lowerer{} }

// LowerProgram normalizes every top-level statement of mod.
func (l *Lowerer) LowerProgram(mod *ast.Program) {
	for _, stmt := range mod.Statements {
		stmt.Accept(l)
	}
}

func (l *Lowerer) VisitFuncDeclStatement(n *ast.FuncDeclStatement) {
	if n.Body != nil {
		n.Body.Accept(l)
	}
}

func (l *Lowerer) VisitVarDeclStatement(n *ast.VarDeclStatement) {
	if n.Init != nil {
		n.Init.Accept(l)
	}
}

func (l *Lowerer) VisitExpressionStatement(n *ast.ExpressionStatement) {
	if n.Expression != nil {
		n.Expression.Accept(l)
	}
}

func (l *Lowerer) VisitReturnStatement(n *ast.ReturnStatement) {
	if n.Value != nil {
		n.Value.Accept(l)
	}
}

func (l *Lowerer) VisitConditionalStatement(n *ast.ConditionalStatement) {
	n.Condition.Accept(l)
	n.Then.Accept(l)
}

func (l *Lowerer) VisitBinaryExpression(n *ast.BinaryExpression) {
	n.Left.Accept(l)
	n.Right.Accept(l)
}

func (l *Lowerer) VisitUnaryExpression(n *ast.UnaryExpression) { n.Operand.Accept(l) }

func (l *Lowerer) VisitCallExpression(n *ast.CallExpression) {
	n.Callee.Accept(l)
	for _, r := range n.Receivers {
		r.Accept(l)
	}
	for _, a := range n.Arguments {
		a.Accept(l)
	}
}

func (l *Lowerer) VisitIndexExpression(n *ast.IndexExpression) {
	n.Left.Accept(l)
	n.Index.Accept(l)
}

func (l *Lowerer) VisitMemberExpression(n *ast.MemberExpression) { n.Left.Accept(l) }

func (l *Lowerer) VisitArrayLiteral(n *ast.ArrayLiteral) {
	for _, e := range n.Elements {
		e.Accept(l)
	}
}

func (l *Lowerer) VisitTupleLiteral(n *ast.TupleLiteral) {
	for _, e := range n.Elements {
		e.Accept(l)
	}
}

func (l *Lowerer) VisitBlockExpression(n *ast.BlockExpression) {
	for _, s := range n.Statements {
		s.Accept(l)
	}
	if n.Trailing != nil {
		n.Trailing.Accept(l)
	}
}

func (l *Lowerer) VisitConditionalExpression(n *ast.ConditionalExpression) {
	n.Condition.Accept(l)
	n.Then.Accept(l)
	if n.Else != nil {
		n.Else.Accept(l)
	}
}

func (l *Lowerer) VisitCastExpression(n *ast.CastExpression) { n.Operand.Accept(l) }

func (l *Lowerer) VisitAssignmentExpression(n *ast.AssignmentExpression) {
	n.Target.Accept(l)
	n.Value.Accept(l)
}

func (l *Lowerer) VisitRangeExpression(n *ast.RangeExpression) {
	n.Low.Accept(l)
	n.High.Accept(l)
}

func (l *Lowerer) VisitLengthExpression(n *ast.LengthExpression) { n.Operand.Accept(l) }

// VisitIterationExpression wraps a bare loop body in a block (spec
// §4.5 "Loop bodies are wrapped in a block if not already").
func (l *Lowerer) VisitIterationExpression(n *ast.IterationExpression) {
	n.Iterable.Accept(l)
	n.Body = wrapBlock(n.Body)
	n.Body.Accept(l)
}

func (l *Lowerer) VisitRepeatExpression(n *ast.RepeatExpression) {
	n.Condition.Accept(l)
	n.Body = wrapBlock(n.Body)
	n.Body.Accept(l)
}

func (l *Lowerer) VisitProcessExpression(n *ast.ProcessExpression) { n.Command.Accept(l) }

// wrapBlock wraps body in a single-statement block unless it already
// is one. Iteration/repeat bodies are always statement-only (spec §3
// "null for statement-only forms"), so the wrapped form never needs a
// trailing expression.
func wrapBlock(body ast.Expression) ast.Expression {
	if body == nil {
		return body
	}
	if _, ok := body.(*ast.BlockExpression); ok {
		return body
	}
	return &ast.BlockExpression{
		Position:   body.Pos(),
		Statements: []ast.Statement{&ast.ExpressionStatement{Position: body.Pos(), Expression: body}},
	}
}
