package cte

import (
	"github.com/vexel-lang/vexel/internal/ast"
	"github.com/vexel-lang/vexel/internal/diagnostics"
	"github.com/vexel-lang/vexel/internal/typesystem"
)

func isSignedExpr(e ast.Expression) bool {
	p, ok := e.ExprType().(typesystem.Primitive)
	return ok && p.Kind == typesystem.KindSignedInt
}

// eval dispatches on the dynamic expression type, implementing every
// form spec §4.6 lists as supported.
func (e *Evaluator) eval(expr ast.Expression, f *frame) signal {
	switch n := expr.(type) {
	case *ast.IntLiteral:
		if n.Negative {
			return knownSignal(Int(-int64(n.Value)))
		}
		if isSignedExpr(n) {
			return knownSignal(Int(int64(n.Value)))
		}
		return knownSignal(Uint(n.Value))

	case *ast.FloatLiteral:
		return knownSignal(Float(n.Value))

	case *ast.StringLiteral:
		return knownSignal(Str(n.Value))

	case *ast.CharLiteral:
		return knownSignal(Uint(uint64(n.Value)))

	case *ast.Identifier:
		return e.evalIdentifier(n, f)

	case *ast.BinaryExpression:
		return e.evalBinary(n, f)

	case *ast.UnaryExpression:
		return e.evalUnary(n, f)

	case *ast.CastExpression:
		return e.evalCast(n, f)

	case *ast.CallExpression:
		return e.evalCall(n, f)

	case *ast.IndexExpression:
		return e.evalIndex(n, f)

	case *ast.MemberExpression:
		return e.evalMember(n, f)

	case *ast.ArrayLiteral:
		elems := make([]Value, 0, len(n.Elements))
		for _, el := range n.Elements {
			sig := e.eval(el, f)
			if sig.kind != ctrlNone {
				return sig
			}
			if sig.result.Kind != ResultKnown {
				return unknownSignal()
			}
			elems = append(elems, sig.result.Value)
		}
		return knownSignal(Array(elems))

	case *ast.TupleLiteral:
		elems := make([]Value, 0, len(n.Elements))
		for _, el := range n.Elements {
			sig := e.eval(el, f)
			if sig.kind != ctrlNone {
				return sig
			}
			if sig.result.Kind != ResultKnown {
				return unknownSignal()
			}
			elems = append(elems, sig.result.Value)
		}
		return knownSignal(Array(elems))

	case *ast.BlockExpression:
		return e.execBlock(n, f)

	case *ast.ConditionalExpression:
		return e.evalConditionalExpr(n, f)

	case *ast.AssignmentExpression:
		return e.evalAssignment(n, f)

	case *ast.RangeExpression:
		return e.evalRange(n, f)

	case *ast.LengthExpression:
		return e.evalLength(n, f)

	case *ast.IterationExpression:
		return e.evalIteration(n, f)

	case *ast.RepeatExpression:
		return e.evalRepeat(n, f)

	case *ast.ResourceExpression:
		return e.evalResource(n, f)

	case *ast.ProcessExpression:
		return e.evalProcess(n, f)

	default:
		return unknownSignal()
	}
}

func (e *Evaluator) evalIdentifier(n *ast.Identifier, f *frame) signal {
	if len(e.exprParamStack) > 0 {
		if eb, ok := e.exprParamStack[len(e.exprParamStack)-1][n.Name]; ok {
			return e.eval(eb.expr, eb.frame)
		}
	}
	if cell, ok := f.lookup(n.Name); ok {
		return knownSignal(*cell)
	}
	if e.Bindings != nil {
		if sym, ok := e.Bindings.SymbolFor(e.InstanceID, n); ok {
			if v, ok := e.Globals[sym]; ok {
				if e.OnSymbolRead != nil {
					e.OnSymbolRead(sym)
				}
				return knownSignal(v)
			}
		}
	}
	return unknownSignal()
}

// execBlock runs a block's statements in a fresh child frame and
// produces the block's trailing-expression value, or propagates
// whatever return/break/continue/error signal a statement raised.
func (e *Evaluator) execBlock(n *ast.BlockExpression, f *frame) signal {
	blockFrame := newFrame(f)
	for _, s := range n.Statements {
		sig := e.execStmt(s, blockFrame)
		if sig.kind != ctrlNone {
			return sig
		}
	}
	if n.Trailing != nil {
		return e.eval(n.Trailing, blockFrame)
	}
	return signal{kind: ctrlNone, result: Result{}}
}

func (e *Evaluator) execStmt(stmt ast.Statement, f *frame) signal {
	switch n := stmt.(type) {
	case *ast.ExpressionStatement:
		sig := e.eval(n.Expression, f)
		if sig.kind == ctrlError {
			return sig
		}
		return signal{kind: ctrlNone, result: Result{}}

	case *ast.ReturnStatement:
		if n.Value == nil {
			return signal{kind: ctrlReturn, result: Known(Value{})}
		}
		sig := e.eval(n.Value, f)
		if sig.kind == ctrlError {
			return sig
		}
		return signal{kind: ctrlReturn, result: sig.result}

	case *ast.BreakStatement:
		return signal{kind: ctrlBreak}

	case *ast.ContinueStatement:
		return signal{kind: ctrlContinue}

	case *ast.VarDeclStatement:
		var val Value
		if n.Init != nil {
			sig := e.eval(n.Init, f)
			if sig.kind == ctrlError {
				return sig
			}
			if sig.result.Kind == ResultKnown {
				val = deepCopy(sig.result.Value)
			}
		}
		f.define(n.Name.Name, val)
		return signal{kind: ctrlNone, result: Result{}}

	case *ast.ConditionalStatement:
		sig := e.eval(n.Condition, f)
		if sig.kind == ctrlError {
			return sig
		}
		if sig.result.Kind != ResultKnown {
			return signal{kind: ctrlNone, result: Result{}}
		}
		b, ok := sig.result.Value.AsBool()
		if !ok || !b {
			return signal{kind: ctrlNone, result: Result{}}
		}
		return e.execStmt(n.Then, f)

	default:
		return signal{kind: ctrlNone, result: Result{}}
	}
}

func (e *Evaluator) evalConditionalExpr(n *ast.ConditionalExpression, f *frame) signal {
	cond := e.eval(n.Condition, f)
	if cond.kind != ctrlNone {
		return cond
	}
	if cond.result.Kind == ResultError {
		return signal{kind: ctrlError, result: cond.result}
	}
	if cond.result.Kind != ResultKnown {
		return unknownSignal()
	}
	b, ok := cond.result.Value.AsBool()
	if !ok {
		return errSignal(diagnostics.Internal(diagnostics.PhaseCTE, n.Pos(), "conditional value is not bool-coercible"))
	}
	if b {
		return e.eval(n.Then, f)
	}
	if n.Else == nil {
		return signal{kind: ctrlNone, result: Result{}}
	}
	return e.eval(n.Else, f)
}
