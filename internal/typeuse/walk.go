package typeuse

import (
	"github.com/vexel-lang/vexel/internal/ast"
	"github.com/vexel-lang/vexel/internal/optimize"
)

// walkValueExpr enforces spec §4.10 on e, an expression whose value is
// required by its surrounding context, then recurses into every child
// that is itself value-used. exprParamFlags, when non-nil, marks which
// positional slot of the *enclosing call's* callee is an expression
// parameter — threaded down only as far as checkCall arguments need it;
// every other recursive call passes it through unchanged since it is a
// property of the function currently being walked, not of e.
func (v *Validator) walkValueExpr(e ast.Expression, exprParamFlags []bool) {
	if e == nil {
		return
	}
	switch n := e.(type) {
	case *ast.IntLiteral, *ast.FloatLiteral, *ast.StringLiteral, *ast.CharLiteral, *ast.Identifier:
		v.requireConcrete(e)

	case *ast.BinaryExpression:
		v.requireConcrete(e)
		v.walkValueExpr(n.Left, exprParamFlags)
		v.walkValueExpr(n.Right, exprParamFlags)

	case *ast.UnaryExpression:
		v.requireConcrete(e)
		v.walkValueExpr(n.Operand, exprParamFlags)

	case *ast.CallExpression:
		v.requireConcrete(e)
		v.walkCallArgs(n, exprParamFlags)

	case *ast.IndexExpression:
		v.requireConcrete(e)
		v.walkValueExpr(n.Left, exprParamFlags)
		v.walkValueExpr(n.Index, exprParamFlags)

	case *ast.MemberExpression:
		v.requireConcrete(e)
		v.walkValueExpr(n.Left, exprParamFlags)

	case *ast.ArrayLiteral:
		v.requireConcrete(e)
		for _, el := range n.Elements {
			v.walkValueExpr(el, exprParamFlags)
		}

	case *ast.TupleLiteral:
		v.requireConcrete(e)
		for _, el := range n.Elements {
			v.walkValueExpr(el, exprParamFlags)
		}

	case *ast.BlockExpression:
		for _, s := range n.Statements {
			v.walkStmt(s, exprParamFlags)
		}
		if n.Trailing != nil {
			v.walkValueExpr(n.Trailing, exprParamFlags)
		}

	case *ast.ConditionalExpression:
		v.walkConditionalExpr(n, exprParamFlags)

	case *ast.CastExpression:
		v.requireConcrete(e)
		v.walkValueExpr(n.Operand, exprParamFlags)

	case *ast.AssignmentExpression:
		v.requireConcrete(e)
		v.walkValueExpr(n.Target, exprParamFlags)
		v.walkValueExpr(n.Value, exprParamFlags)

	case *ast.RangeExpression:
		v.requireConcrete(e)
		v.walkValueExpr(n.Low, exprParamFlags)
		v.walkValueExpr(n.High, exprParamFlags)

	case *ast.LengthExpression:
		v.requireConcrete(e)
		v.walkValueExpr(n.Operand, exprParamFlags)

	case *ast.ResourceExpression:
		v.requireConcrete(e)

	case *ast.ProcessExpression:
		v.requireConcrete(e)
		v.walkValueExpr(n.Command, exprParamFlags)

	case *ast.IterationExpression, *ast.RepeatExpression:
		// Statement-only forms (spec §3): null type even in an
		// unexpected value position. Still walk their insides for
		// nested value uses.
		v.walkStatementOnlyExpr(e, exprParamFlags)
	}
}

// walkConditionalExpr implements the spec §4.10 dead-branch exception:
// when the optimizer proved the condition's value, only the live
// branch is required to be concrete; the other is skipped outright,
// whether or not residualization already physically removed it.
func (v *Validator) walkConditionalExpr(n *ast.ConditionalExpression, exprParamFlags []bool) {
	v.walkValueExpr(n.Condition, exprParamFlags)

	key := optimize.Key{InstanceID: v.instanceID, Expr: n.Condition}
	if b, ok := v.Opt.ConstexprConditions[key]; ok {
		if b {
			v.walkValueExpr(n.Then, exprParamFlags)
		} else if n.Else != nil {
			v.walkValueExpr(n.Else, exprParamFlags)
		}
		return
	}

	v.walkValueExpr(n.Then, exprParamFlags)
	if n.Else != nil {
		v.walkValueExpr(n.Else, exprParamFlags)
		v.requireConcrete(n)
	}
	// Else == nil here is the statement form `cond ? then` with no
	// value (spec §4.3); its own type is never required.
}

// walkCallArgs requires a concrete type on every receiver and every
// non-expression-parameter argument; an argument bound to an
// expression parameter is opaque by construction (spec §4.10
// exception 2) and is never walked at all.
func (v *Validator) walkCallArgs(call *ast.CallExpression, exprParamFlags []bool) {
	for _, r := range call.Receivers {
		v.walkValueExpr(r, nil)
	}
	flags := v.calleeExprParamFlags(call)
	for i, arg := range call.Arguments {
		if i < len(flags) && flags[i] {
			continue
		}
		v.walkValueExpr(arg, nil)
	}
}

// calleeExprParamFlags resolves call's callee to its declaration (the
// checker always rewrites/binds a call's callee to the exact
// FuncDeclStatement it targets, spec §4.3) and reports which argument
// positions are expression parameters.
func (v *Validator) calleeExprParamFlags(call *ast.CallExpression) []bool {
	ident, ok := call.Callee.(*ast.Identifier)
	if !ok {
		return nil
	}
	sym, ok := v.Bindings.SymbolFor(v.instanceID, ident)
	if !ok {
		return nil
	}
	decl, ok := sym.Decl.(*ast.FuncDeclStatement)
	if !ok {
		return nil
	}
	return paramExprSetOf(decl)
}

// walkStmt implements the statement-position exceptions (spec §4.10
// exception 3): an expression statement whose expression is a call,
// assignment, iteration, or repeat is allowed to carry no type itself,
// though its sub-expressions (call arguments, assignment RHS, loop
// bodies) are still walked for their own value-used requirements.
func (v *Validator) walkStmt(s ast.Statement, exprParamFlags []bool) {
	switch n := s.(type) {
	case *ast.ExpressionStatement:
		v.walkStatementOnlyExpr(n.Expression, exprParamFlags)
	case *ast.ReturnStatement:
		if n.Value != nil {
			v.walkValueExpr(n.Value, exprParamFlags)
		}
	case *ast.VarDeclStatement:
		if n.Init != nil {
			v.walkValueExpr(n.Init, exprParamFlags)
		}
	case *ast.ConditionalStatement:
		v.walkValueExpr(n.Condition, exprParamFlags)
		v.walkStmt(n.Then, exprParamFlags)
	}
}

// walkStatementOnlyExpr walks an expression known to sit in statement
// (void) position: a bare call or assignment is permitted to carry no
// type of its own, but its children are still value-used contexts
// except where the callee marks an argument opaque. Any other
// expression kind reaching here (the grammar mostly prevents it, but a
// lowered/residualized tree could still produce one) falls back to the
// ordinary value-used rule.
func (v *Validator) walkStatementOnlyExpr(e ast.Expression, exprParamFlags []bool) {
	switch n := e.(type) {
	case *ast.CallExpression:
		v.walkCallArgs(n, exprParamFlags)
	case *ast.AssignmentExpression:
		v.walkValueExpr(n.Target, exprParamFlags)
		v.walkValueExpr(n.Value, exprParamFlags)
	case *ast.IterationExpression:
		v.walkValueExpr(n.Iterable, exprParamFlags)
		if n.Body != nil {
			v.walkStatementOnlyExpr(n.Body, exprParamFlags)
		}
	case *ast.RepeatExpression:
		v.walkValueExpr(n.Condition, exprParamFlags)
		if n.Body != nil {
			v.walkStatementOnlyExpr(n.Body, exprParamFlags)
		}
	case *ast.BlockExpression:
		for _, s := range n.Statements {
			v.walkStmt(s, exprParamFlags)
		}
		if n.Trailing != nil {
			v.walkStatementOnlyExpr(n.Trailing, exprParamFlags)
		}
	default:
		v.walkValueExpr(e, exprParamFlags)
	}
}
