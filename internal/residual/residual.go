// Package residual implements spec §4.8: a single rewrite pass over
// the typed, optimized AST that folds every stably-known expression
// into a literal, collapses statically-determined conditionals, and
// prunes dead code the optimizer's facts proved can't run.
//
// Grounded on the teacher's internal/ast Visitor-driven rewrite shape
// (internal/lower) and internal/evaluator/object_primitives.go's
// value-to-literal reconstruction, adapted to rebuild internal/ast
// literal nodes instead of the teacher's runtime objects.
package residual

import (
	"github.com/vexel-lang/vexel/internal/ast"
	"github.com/vexel-lang/vexel/internal/cte"
	"github.com/vexel-lang/vexel/internal/modules"
	"github.com/vexel-lang/vexel/internal/optimize"
	"github.com/vexel-lang/vexel/internal/symbols"
)

// Residualizer rewrites one instance's reachable statements in place
// using a Facts snapshot from internal/optimize.
type Residualizer struct {
	Prog    *modules.Program
	Facts   *optimize.Facts
	Changed bool
}

func New(prog *modules.Program, facts *optimize.Facts) *Residualizer {
	return &Residualizer{Prog: prog, Facts: facts}
}

// Run rewrites every instance's top-level statements. Safe to call
// repeatedly to a fixpoint; a single pass is correct per spec §4.8 but
// callers may loop with internal/optimize for a smaller residual tree.
func (r *Residualizer) Run() bool {
	r.Changed = false
	for _, inst := range r.Prog.Instances {
		info := r.Prog.ModuleByID(inst.ModuleID)
		info.Module.Statements = r.rewriteStmts(inst.ID, info.Module.Statements)
	}
	return r.Changed
}

func (r *Residualizer) rewriteStmts(instanceID int, stmts []ast.Statement) []ast.Statement {
	out := make([]ast.Statement, 0, len(stmts))
	terminated := false
	for _, s := range stmts {
		if terminated {
			r.Changed = true
			continue
		}
		s = r.rewriteStmt(instanceID, s)
		if s == nil {
			r.Changed = true
			continue
		}
		out = append(out, s)
		switch s.(type) {
		case *ast.ReturnStatement, *ast.BreakStatement, *ast.ContinueStatement:
			terminated = true
		}
	}
	return out
}

// rewriteStmt rewrites one statement, returning nil when the statement
// should be dropped entirely (a pure expression statement, or a
// conditional whose branch was eliminated).
func (r *Residualizer) rewriteStmt(instanceID int, s ast.Statement) ast.Statement {
	switch n := s.(type) {
	case *ast.FuncDeclStatement:
		if n.Body != nil {
			n.Body = r.rewriteExpr(instanceID, n.Body)
		}
		return n
	case *ast.VarDeclStatement:
		if n.Init != nil {
			n.Init = r.rewriteExpr(instanceID, n.Init)
		}
		return n
	case *ast.ExpressionStatement:
		n.Expression = r.rewriteExpr(instanceID, n.Expression)
		if isPureExpr(n.Expression) {
			return nil
		}
		return n
	case *ast.ReturnStatement:
		if n.Value != nil {
			n.Value = r.rewriteExpr(instanceID, n.Value)
		}
		return n
	case *ast.ConditionalStatement:
		cond := n.Condition
		n.Condition = r.rewriteExpr(instanceID, n.Condition)
		if b, ok := r.Facts.ConstexprConditions[optimize.Key{InstanceID: instanceID, Expr: cond}]; ok {
			r.Changed = true
			if !b {
				return nil
			}
			return r.rewriteStmt(instanceID, n.Then)
		}
		n.Then = r.rewriteStmt(instanceID, n.Then)
		if n.Then == nil {
			return nil
		}
		return n
	default:
		return s
	}
}

func (r *Residualizer) rewriteExpr(instanceID int, e ast.Expression) ast.Expression {
	if e == nil {
		return nil
	}
	key := optimize.Key{InstanceID: instanceID, Expr: e}
	if v, ok := r.Facts.Stable(key); ok {
		if lit := r.literalFor(instanceID, v); lit != nil {
			if !sameLiteral(e, lit) {
				r.Changed = true
			}
			return lit
		}
	}

	switch n := e.(type) {
	case *ast.BinaryExpression:
		n.Left = r.rewriteExpr(instanceID, n.Left)
		n.Right = r.rewriteExpr(instanceID, n.Right)
	case *ast.UnaryExpression:
		n.Operand = r.rewriteExpr(instanceID, n.Operand)
	case *ast.CallExpression:
		n.Callee = r.rewriteExpr(instanceID, n.Callee)
		for i, rec := range n.Receivers {
			n.Receivers[i] = r.rewriteExpr(instanceID, rec)
		}
		for i, a := range n.Arguments {
			n.Arguments[i] = r.rewriteExpr(instanceID, a)
		}
	case *ast.IndexExpression:
		n.Left = r.rewriteExpr(instanceID, n.Left)
		n.Index = r.rewriteExpr(instanceID, n.Index)
	case *ast.MemberExpression:
		n.Left = r.rewriteExpr(instanceID, n.Left)
	case *ast.ArrayLiteral:
		for i, el := range n.Elements {
			n.Elements[i] = r.rewriteExpr(instanceID, el)
		}
	case *ast.TupleLiteral:
		for i, el := range n.Elements {
			n.Elements[i] = r.rewriteExpr(instanceID, el)
		}
	case *ast.BlockExpression:
		n.Statements = r.rewriteStmts(instanceID, n.Statements)
		if n.Trailing != nil {
			n.Trailing = r.rewriteExpr(instanceID, n.Trailing)
		}
	case *ast.ConditionalExpression:
		cond := n.Condition
		n.Condition = r.rewriteExpr(instanceID, n.Condition)
		if b, ok := r.Facts.ConstexprConditions[optimize.Key{InstanceID: instanceID, Expr: cond}]; ok {
			r.Changed = true
			if b {
				return r.rewriteExpr(instanceID, n.Then)
			}
			if n.Else != nil {
				return r.rewriteExpr(instanceID, n.Else)
			}
		}
		n.Then = r.rewriteExpr(instanceID, n.Then)
		if n.Else != nil {
			n.Else = r.rewriteExpr(instanceID, n.Else)
		}
	case *ast.CastExpression:
		n.Operand = r.rewriteExpr(instanceID, n.Operand)
	case *ast.AssignmentExpression:
		n.Target = r.rewriteExpr(instanceID, n.Target)
		n.Value = r.rewriteExpr(instanceID, n.Value)
	case *ast.RangeExpression:
		n.Low = r.rewriteExpr(instanceID, n.Low)
		n.High = r.rewriteExpr(instanceID, n.High)
	case *ast.LengthExpression:
		n.Operand = r.rewriteExpr(instanceID, n.Operand)
	case *ast.IterationExpression:
		n.Iterable = r.rewriteExpr(instanceID, n.Iterable)
		if n.Body != nil {
			n.Body = r.rewriteExpr(instanceID, n.Body)
		}
	case *ast.RepeatExpression:
		n.Condition = r.rewriteExpr(instanceID, n.Condition)
		if n.Body != nil {
			n.Body = r.rewriteExpr(instanceID, n.Body)
		}
	case *ast.ProcessExpression:
		n.Command = r.rewriteExpr(instanceID, n.Command)
	}
	return e
}

// literalFor reconstructs a literal AST node for a stable CTE value,
// or nil when v's shape has no literal form (spec §4.8 lists
// int/uint/float/string/array/tuple/struct-call reconstruction).
func (r *Residualizer) literalFor(instanceID int, v cte.Value) ast.Expression {
	switch v.Kind {
	case cte.KindInt:
		neg := v.Int < 0
		u := uint64(v.Int)
		if neg {
			u = uint64(-v.Int)
		}
		return &ast.IntLiteral{Value: u, Negative: neg}
	case cte.KindUint:
		return &ast.IntLiteral{Value: v.Uint}
	case cte.KindFloat:
		return &ast.FloatLiteral{Value: v.Float}
	case cte.KindBool:
		b := uint64(0)
		if v.Bool {
			b = 1
		}
		return &ast.IntLiteral{Value: b}
	case cte.KindString:
		return &ast.StringLiteral{Value: v.Str}
	case cte.KindArray:
		elems := make([]ast.Expression, 0, len(v.Elems))
		for _, el := range v.Elems {
			lit := r.literalFor(instanceID, el)
			if lit == nil {
				return nil
			}
			elems = append(elems, lit)
		}
		return &ast.ArrayLiteral{Elements: elems}
	case cte.KindStruct:
		decl := r.lookupTypeDecl(instanceID, v.Struct)
		if decl == nil {
			return nil
		}
		args := make([]ast.Expression, 0, len(decl.Fields))
		for _, f := range decl.Fields {
			fv, ok := v.Fields[f.Name.Name]
			if !ok {
				return nil
			}
			lit := r.literalFor(instanceID, fv)
			if lit == nil {
				return nil
			}
			args = append(args, lit)
		}
		return &ast.CallExpression{Callee: &ast.Identifier{Name: v.Struct}, Arguments: args}
	default:
		return nil
	}
}

func (r *Residualizer) lookupTypeDecl(instanceID int, name string) *ast.TypeDeclStatement {
	inst := r.Prog.Instance(instanceID)
	sym, ok := inst.Scope.Lookup(name)
	if !ok || sym.Kind != symbols.KindType {
		return nil
	}
	decl, _ := sym.Decl.(*ast.TypeDeclStatement)
	return decl
}

// isPureExpr implements spec §4.8's recursive purity predicate:
// literals and identifiers are pure; calls, assignments, loops, and
// process/block expressions are not (a block might contain any of
// those, so it is conservatively treated as impure).
func isPureExpr(e ast.Expression) bool {
	switch n := e.(type) {
	case nil:
		return true
	case *ast.IntLiteral, *ast.FloatLiteral, *ast.StringLiteral, *ast.CharLiteral, *ast.Identifier:
		return true
	case *ast.BinaryExpression:
		return isPureExpr(n.Left) && isPureExpr(n.Right)
	case *ast.UnaryExpression:
		return isPureExpr(n.Operand)
	case *ast.IndexExpression:
		return isPureExpr(n.Left) && isPureExpr(n.Index)
	case *ast.MemberExpression:
		return isPureExpr(n.Left)
	case *ast.ArrayLiteral:
		return allPure(n.Elements)
	case *ast.TupleLiteral:
		return allPure(n.Elements)
	case *ast.CastExpression:
		return isPureExpr(n.Operand)
	case *ast.LengthExpression:
		return isPureExpr(n.Operand)
	case *ast.RangeExpression:
		return isPureExpr(n.Low) && isPureExpr(n.High)
	case *ast.ConditionalExpression:
		if !isPureExpr(n.Condition) || !isPureExpr(n.Then) {
			return false
		}
		return n.Else == nil || isPureExpr(n.Else)
	default:
		return false
	}
}

func allPure(exprs []ast.Expression) bool {
	for _, e := range exprs {
		if !isPureExpr(e) {
			return false
		}
	}
	return true
}

// sameLiteral reports whether e is already exactly the literal we'd
// replace it with, so re-running the pass to a fixpoint doesn't keep
// reporting a no-op rewrite as a change.
func sameLiteral(e ast.Expression, lit ast.Expression) bool {
	switch a := e.(type) {
	case *ast.IntLiteral:
		b, ok := lit.(*ast.IntLiteral)
		return ok && a.Value == b.Value && a.Negative == b.Negative
	case *ast.FloatLiteral:
		b, ok := lit.(*ast.FloatLiteral)
		return ok && a.Value == b.Value
	case *ast.StringLiteral:
		b, ok := lit.(*ast.StringLiteral)
		return ok && a.Value == b.Value
	default:
		return false
	}
}
