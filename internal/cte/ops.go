package cte

import (
	"github.com/vexel-lang/vexel/internal/ast"
	"github.com/vexel-lang/vexel/internal/diagnostics"
)

func (e *Evaluator) evalBinary(n *ast.BinaryExpression, f *frame) signal {
	// && and || short-circuit (spec §4.3): the right operand is only
	// evaluated when its value could change the result.
	if n.Operator == "&&" || n.Operator == "||" {
		lsig := e.eval(n.Left, f)
		if lsig.kind != ctrlNone {
			return lsig
		}
		if lsig.result.Kind == ResultError {
			return signal{kind: ctrlError, result: lsig.result}
		}
		if lsig.result.Kind != ResultKnown {
			return unknownSignal()
		}
		lb, ok := lsig.result.Value.AsBool()
		if !ok {
			return errSignal(diagnostics.Internal(diagnostics.PhaseCTE, n.Pos(), "non-bool operand to && / ||"))
		}
		if n.Operator == "&&" && !lb {
			return knownSignal(Bool(false))
		}
		if n.Operator == "||" && lb {
			return knownSignal(Bool(true))
		}
		rsig := e.eval(n.Right, f)
		if rsig.kind != ctrlNone {
			return rsig
		}
		if rsig.result.Kind != ResultKnown {
			return signal{kind: ctrlNone, result: rsig.result}
		}
		rb, ok := rsig.result.Value.AsBool()
		if !ok {
			return errSignal(diagnostics.Internal(diagnostics.PhaseCTE, n.Pos(), "non-bool operand to && / ||"))
		}
		return knownSignal(Bool(rb))
	}

	lsig := e.eval(n.Left, f)
	if lsig.kind != ctrlNone {
		return lsig
	}
	rsig := e.eval(n.Right, f)
	if rsig.kind != ctrlNone {
		return rsig
	}
	if lsig.result.Kind != ResultKnown || rsig.result.Kind != ResultKnown {
		return unknownSignal()
	}
	return e.applyBinary(n, lsig.result.Value, rsig.result.Value)
}

func (e *Evaluator) applyBinary(n *ast.BinaryExpression, l, r Value) signal {
	op := n.Operator
	switch {
	case l.Kind == KindFloat || r.Kind == KindFloat:
		lf, rf := asFloat(l), asFloat(r)
		switch op {
		case "+":
			return knownSignal(Float(lf + rf))
		case "-":
			return knownSignal(Float(lf - rf))
		case "*":
			return knownSignal(Float(lf * rf))
		case "/":
			if rf == 0 {
				return errSignal(diagnostics.New(diagnostics.PhaseCTE, diagnostics.ErrCTEDivByZero, n.Pos()))
			}
			return knownSignal(Float(lf / rf))
		case "==":
			return knownSignal(Bool(lf == rf))
		case "!=":
			return knownSignal(Bool(lf != rf))
		case "<":
			return knownSignal(Bool(lf < rf))
		case "<=":
			return knownSignal(Bool(lf <= rf))
		case ">":
			return knownSignal(Bool(lf > rf))
		case ">=":
			return knownSignal(Bool(lf >= rf))
		}

	case l.Kind == KindString:
		switch op {
		case "==":
			return knownSignal(Bool(l.Str == r.Str))
		case "!=":
			return knownSignal(Bool(l.Str != r.Str))
		case "+":
			return knownSignal(Str(l.Str + r.Str))
		}

	case l.Kind == KindBool:
		switch op {
		case "==":
			return knownSignal(Bool(l.Bool == r.Bool))
		case "!=":
			return knownSignal(Bool(l.Bool != r.Bool))
		}

	case l.Kind == KindInt:
		li, ri := l.Int, r.Int
		switch op {
		case "+":
			return knownSignal(Int(li + ri))
		case "-":
			return knownSignal(Int(li - ri))
		case "*":
			return knownSignal(Int(li * ri))
		case "/":
			if ri == 0 {
				return errSignal(diagnostics.New(diagnostics.PhaseCTE, diagnostics.ErrCTEDivByZero, n.Pos()))
			}
			return knownSignal(Int(li / ri))
		case "%":
			if ri == 0 {
				return errSignal(diagnostics.New(diagnostics.PhaseCTE, diagnostics.ErrCTEDivByZero, n.Pos()))
			}
			return knownSignal(Int(li % ri))
		case "==":
			return knownSignal(Bool(li == ri))
		case "!=":
			return knownSignal(Bool(li != ri))
		case "<":
			return knownSignal(Bool(li < ri))
		case "<=":
			return knownSignal(Bool(li <= ri))
		case ">":
			return knownSignal(Bool(li > ri))
		case ">=":
			return knownSignal(Bool(li >= ri))
		}

	case l.Kind == KindUint:
		lu, ru := l.Uint, r.Uint
		switch op {
		case "+":
			return knownSignal(Uint(lu + ru))
		case "-":
			return knownSignal(Uint(lu - ru))
		case "*":
			return knownSignal(Uint(lu * ru))
		case "/":
			if ru == 0 {
				return errSignal(diagnostics.New(diagnostics.PhaseCTE, diagnostics.ErrCTEDivByZero, n.Pos()))
			}
			return knownSignal(Uint(lu / ru))
		case "%":
			if ru == 0 {
				return errSignal(diagnostics.New(diagnostics.PhaseCTE, diagnostics.ErrCTEDivByZero, n.Pos()))
			}
			return knownSignal(Uint(lu % ru))
		case "&":
			return knownSignal(Uint(lu & ru))
		case "|":
			return knownSignal(Uint(lu | ru))
		case "^":
			return knownSignal(Uint(lu ^ ru))
		case "<<":
			return knownSignal(Uint(lu << ru))
		case ">>":
			return knownSignal(Uint(lu >> ru))
		case "==":
			return knownSignal(Bool(lu == ru))
		case "!=":
			return knownSignal(Bool(lu != ru))
		case "<":
			return knownSignal(Bool(lu < ru))
		case "<=":
			return knownSignal(Bool(lu <= ru))
		case ">":
			return knownSignal(Bool(lu > ru))
		case ">=":
			return knownSignal(Bool(lu >= ru))
		}
	}
	return errSignal(diagnostics.Internal(diagnostics.PhaseCTE, n.Pos(), "unsupported compile-time operator "+op))
}

func asFloat(v Value) float64 {
	switch v.Kind {
	case KindFloat:
		return v.Float
	case KindInt:
		return float64(v.Int)
	case KindUint:
		return float64(v.Uint)
	default:
		return 0
	}
}

func (e *Evaluator) evalUnary(n *ast.UnaryExpression, f *frame) signal {
	sig := e.eval(n.Operand, f)
	if sig.kind != ctrlNone {
		return sig
	}
	if sig.result.Kind != ResultKnown {
		return unknownSignal()
	}
	v := sig.result.Value
	switch n.Operator {
	case "-":
		switch v.Kind {
		case KindInt:
			return knownSignal(Int(-v.Int))
		case KindFloat:
			return knownSignal(Float(-v.Float))
		case KindUint:
			return knownSignal(Int(-int64(v.Uint)))
		}
	case "!":
		b, ok := v.AsBool()
		if !ok {
			return errSignal(diagnostics.Internal(diagnostics.PhaseCTE, n.Pos(), "non-bool operand to !"))
		}
		return knownSignal(Bool(!b))
	case "~":
		if v.Kind == KindUint {
			return knownSignal(Uint(^v.Uint))
		}
	}
	return errSignal(diagnostics.Internal(diagnostics.PhaseCTE, n.Pos(), "unsupported compile-time unary operator "+n.Operator))
}

func (e *Evaluator) evalCast(n *ast.CastExpression, f *frame) signal {
	sig := e.eval(n.Operand, f)
	if sig.kind != ctrlNone {
		return sig
	}
	if sig.result.Kind != ResultKnown {
		return unknownSignal()
	}
	v := sig.result.Value
	if n.ExprType() == nil {
		return unknownSignal()
	}
	// Cast target width/signedness has already been validated by the
	// checker (spec §4.3); at CTE time this only needs to reinterpret
	// the scalar, not re-check the target is legal.
	switch n.ExprType().String()[0] {
	case 'i':
		switch v.Kind {
		case KindUint:
			return knownSignal(Int(int64(v.Uint)))
		case KindFloat:
			return knownSignal(Int(int64(v.Float)))
		default:
			return knownSignal(v)
		}
	case 'u':
		switch v.Kind {
		case KindInt:
			return knownSignal(Uint(uint64(v.Int)))
		case KindFloat:
			return knownSignal(Uint(uint64(v.Float)))
		default:
			return knownSignal(v)
		}
	case 'f':
		switch v.Kind {
		case KindInt:
			return knownSignal(Float(float64(v.Int)))
		case KindUint:
			return knownSignal(Float(float64(v.Uint)))
		default:
			return knownSignal(v)
		}
	default:
		return knownSignal(v)
	}
}
