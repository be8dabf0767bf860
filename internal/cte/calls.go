package cte

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	"github.com/vexel-lang/vexel/internal/ast"
	"github.com/vexel-lang/vexel/internal/diagnostics"
	"github.com/vexel-lang/vexel/internal/symbols"
)

func (e *Evaluator) evalCall(n *ast.CallExpression, f *frame) signal {
	ident, ok := n.Callee.(*ast.Identifier)
	if !ok {
		return unknownSignal()
	}
	sym, ok := e.Bindings.SymbolFor(e.InstanceID, ident)
	if !ok || sym.Kind != symbols.KindFunction {
		return unknownSignal()
	}
	decl, ok := sym.Decl.(*ast.FuncDeclStatement)
	if !ok {
		return unknownSignal()
	}
	if decl.External {
		return errSignal(diagnostics.New(diagnostics.PhaseCTE, diagnostics.ErrCTEExternal, n.Pos(), decl.QualifiedName()))
	}
	if decl.Body == nil {
		return unknownSignal()
	}
	if e.recursion >= e.MaxRecursion {
		return errSignal(diagnostics.New(diagnostics.PhaseCTE, diagnostics.ErrCTEBound, n.Pos(), "recursion"))
	}

	callFrame := newFrame(nil)
	receiverSet := map[string]bool{}
	for i, recvExpr := range n.Receivers {
		if i >= len(decl.Receivers) {
			break
		}
		sig := e.eval(recvExpr, f)
		if sig.kind != ctrlNone {
			return sig
		}
		if sig.result.Kind != ResultKnown {
			return unknownSignal()
		}
		name := decl.Receivers[i].Name.Name
		callFrame.define(name, deepCopy(sig.result.Value))
		receiverSet[name] = true
	}

	exprBindings := map[string]exprBinding{}
	for i, argExpr := range n.Arguments {
		if i >= len(decl.Params) {
			break
		}
		p := decl.Params[i]
		if p.Expression {
			exprBindings[p.Name.Name] = exprBinding{expr: argExpr, frame: f}
			continue
		}
		sig := e.eval(argExpr, f)
		if sig.kind != ctrlNone {
			return sig
		}
		if sig.result.Kind != ResultKnown {
			return unknownSignal()
		}
		callFrame.define(p.Name.Name, deepCopy(sig.result.Value))
	}

	e.recursion++
	e.receiverStack = append(e.receiverStack, receiverSet)
	e.exprParamStack = append(e.exprParamStack, exprBindings)
	bodySig := e.eval(decl.Body, callFrame)
	e.recursion--
	e.receiverStack = e.receiverStack[:len(e.receiverStack)-1]
	e.exprParamStack = e.exprParamStack[:len(e.exprParamStack)-1]

	if bodySig.kind == ctrlError {
		return bodySig
	}
	return signal{kind: ctrlNone, result: bodySig.result}
}

func (e *Evaluator) evalIndex(n *ast.IndexExpression, f *frame) signal {
	baseSig := e.eval(n.Left, f)
	if baseSig.kind != ctrlNone {
		return baseSig
	}
	idxSig := e.eval(n.Index, f)
	if idxSig.kind != ctrlNone {
		return idxSig
	}
	if baseSig.result.Kind != ResultKnown || idxSig.result.Kind != ResultKnown {
		return unknownSignal()
	}
	base := baseSig.result.Value
	idx := asIndex(idxSig.result.Value)
	if base.Kind != KindArray || idx < 0 || idx >= len(base.Elems) {
		return errSignal(diagnostics.New(diagnostics.PhaseCTE, diagnostics.ErrCTEOutOfRange, n.Pos(), idx, len(base.Elems)))
	}
	return knownSignal(base.Elems[idx])
}

func (e *Evaluator) evalMember(n *ast.MemberExpression, f *frame) signal {
	baseSig := e.eval(n.Left, f)
	if baseSig.kind != ctrlNone {
		return baseSig
	}
	if baseSig.result.Kind != ResultKnown {
		return unknownSignal()
	}
	base := baseSig.result.Value
	if base.Kind != KindStruct && base.Kind != KindArray {
		return errSignal(diagnostics.Internal(diagnostics.PhaseCTE, n.Pos(), "member access on a non-composite value"))
	}
	if base.Kind == KindArray {
		// Synthetic tuple access: .__0, .__1, ...
		idx := 0
		if _, err := fmt.Sscanf(n.Member.Name, "__%d", &idx); err == nil && idx >= 0 && idx < len(base.Elems) {
			return knownSignal(base.Elems[idx])
		}
		return errSignal(diagnostics.Internal(diagnostics.PhaseCTE, n.Pos(), "invalid tuple member "+n.Member.Name))
	}
	v, ok := base.Fields[n.Member.Name]
	if !ok {
		return errSignal(diagnostics.Internal(diagnostics.PhaseCTE, n.Pos(), "unknown field "+n.Member.Name))
	}
	return knownSignal(v)
}

func asIndex(v Value) int {
	switch v.Kind {
	case KindInt:
		return int(v.Int)
	case KindUint:
		return int(v.Uint)
	default:
		return -1
	}
}

// evalAssignment resolves the LHS to an addressable slot and writes
// the RHS's value into it. Writing a receiver alias or a mutable
// global is rejected (spec §4.6 failure modes).
func (e *Evaluator) evalAssignment(n *ast.AssignmentExpression, f *frame) signal {
	valSig := e.eval(n.Value, f)
	if valSig.kind != ctrlNone {
		return valSig
	}
	if valSig.result.Kind != ResultKnown {
		return unknownSignal()
	}
	newVal := deepCopy(valSig.result.Value)

	switch target := n.Target.(type) {
	case *ast.Identifier:
		if len(e.receiverStack) > 0 && e.receiverStack[len(e.receiverStack)-1][target.Name] {
			return errSignal(diagnostics.New(diagnostics.PhaseCTE, diagnostics.ErrCTEReceiverMut, n.Pos(), target.Name))
		}
		if e.Bindings != nil {
			if sym, ok := e.Bindings.SymbolFor(e.InstanceID, target); ok {
				if _, isGlobal := e.Globals[sym]; isGlobal || e.MutableGlobals[sym] {
					return errSignal(diagnostics.New(diagnostics.PhaseCTE, diagnostics.ErrCTEMutGlobal, n.Pos(), target.Name))
				}
			}
		}
		if cell, ok := f.lookup(target.Name); ok {
			*cell = newVal
		} else {
			f.define(target.Name, newVal)
		}
		return knownSignal(newVal)

	case *ast.IndexExpression:
		cell, sig := e.addrOf(target.Left, f)
		if sig.kind != ctrlNone {
			return sig
		}
		idxSig := e.eval(target.Index, f)
		if idxSig.kind != ctrlNone {
			return idxSig
		}
		if idxSig.result.Kind != ResultKnown {
			return unknownSignal()
		}
		idx := asIndex(idxSig.result.Value)
		if cell == nil || cell.Kind != KindArray {
			return errSignal(diagnostics.Internal(diagnostics.PhaseCTE, n.Pos(), "index assignment on a non-array value"))
		}
		if idx < 0 || idx >= len(cell.Elems) {
			return errSignal(diagnostics.New(diagnostics.PhaseCTE, diagnostics.ErrCTEOutOfRange, n.Pos(), idx, len(cell.Elems)))
		}
		cell.Elems[idx] = newVal
		return knownSignal(newVal)

	case *ast.MemberExpression:
		cell, sig := e.addrOf(target.Left, f)
		if sig.kind != ctrlNone {
			return sig
		}
		if cell == nil || cell.Kind != KindStruct {
			return errSignal(diagnostics.Internal(diagnostics.PhaseCTE, n.Pos(), "member assignment on a non-struct value"))
		}
		cell.Fields[target.Member.Name] = newVal
		return knownSignal(newVal)

	default:
		return errSignal(diagnostics.Internal(diagnostics.PhaseCTE, n.Pos(), "unsupported assignment target"))
	}
}

// addrOf resolves an identifier/index/member chain to the live *Value
// cell it names, so nested index/member assignment mutates the owning
// composite in place rather than a transient copy.
func (e *Evaluator) addrOf(expr ast.Expression, f *frame) (*Value, signal) {
	switch n := expr.(type) {
	case *ast.Identifier:
		cell, ok := f.lookup(n.Name)
		if !ok {
			return nil, errSignal(diagnostics.New(diagnostics.PhaseResolve, diagnostics.ErrResolveUndefined, n.Pos(), n.Name))
		}
		return cell, signal{kind: ctrlNone}
	case *ast.IndexExpression:
		base, sig := e.addrOf(n.Left, f)
		if sig.kind != ctrlNone {
			return nil, sig
		}
		idxSig := e.eval(n.Index, f)
		if idxSig.kind != ctrlNone {
			return nil, idxSig
		}
		if idxSig.result.Kind != ResultKnown || base == nil || base.Kind != KindArray {
			return nil, signal{kind: ctrlNone, result: Unknown()}
		}
		idx := asIndex(idxSig.result.Value)
		if idx < 0 || idx >= len(base.Elems) {
			return nil, errSignal(diagnostics.New(diagnostics.PhaseCTE, diagnostics.ErrCTEOutOfRange, n.Pos(), idx, len(base.Elems)))
		}
		return &base.Elems[idx], signal{kind: ctrlNone}
	case *ast.MemberExpression:
		base, sig := e.addrOf(n.Left, f)
		if sig.kind != ctrlNone {
			return nil, sig
		}
		if base == nil || base.Kind != KindStruct {
			return nil, signal{kind: ctrlNone, result: Unknown()}
		}
		// v is a copy of the field value, but an array or struct field's
		// copy shares its Elems slice or Fields map with the stored
		// field, so an index or member write through the returned cell
		// (a.b[i] = x, a.b.c = x) updates the owning composite.
		// evalAssignment only writes into a cell's Elems or Fields and
		// never replaces the cell itself, so a scalar field is never
		// written through this copy.
		v, ok := base.Fields[n.Member.Name]
		if !ok {
			return nil, signal{kind: ctrlNone, result: Unknown()}
		}
		return &v, signal{kind: ctrlNone}
	default:
		return nil, signal{kind: ctrlNone, result: Unknown()}
	}
}

func (e *Evaluator) evalRange(n *ast.RangeExpression, f *frame) signal {
	loSig := e.eval(n.Low, f)
	if loSig.kind != ctrlNone {
		return loSig
	}
	hiSig := e.eval(n.High, f)
	if hiSig.kind != ctrlNone {
		return hiSig
	}
	if loSig.result.Kind != ResultKnown || hiSig.result.Kind != ResultKnown {
		return unknownSignal()
	}
	lo, hi := asIndex(loSig.result.Value), asIndex(hiSig.result.Value)
	elems := make([]Value, 0, hi-lo)
	for i := lo; i < hi; i++ {
		if len(elems) > e.MaxLoopSteps {
			return errSignal(diagnostics.New(diagnostics.PhaseCTE, diagnostics.ErrCTEBound, n.Pos(), "range expansion"))
		}
		elems = append(elems, Int(int64(i)))
	}
	return knownSignal(Array(elems))
}

func (e *Evaluator) evalLength(n *ast.LengthExpression, f *frame) signal {
	sig := e.eval(n.Operand, f)
	if sig.kind != ctrlNone {
		return sig
	}
	if sig.result.Kind != ResultKnown {
		return unknownSignal()
	}
	v := sig.result.Value
	switch v.Kind {
	case KindArray:
		return knownSignal(Uint(uint64(len(v.Elems))))
	case KindString:
		return knownSignal(Uint(uint64(len(v.Str))))
	default:
		return errSignal(diagnostics.Internal(diagnostics.PhaseCTE, n.Pos(), "length of a non-array, non-string value"))
	}
}

func (e *Evaluator) evalIteration(n *ast.IterationExpression, f *frame) signal {
	iterSig := e.eval(n.Iterable, f)
	if iterSig.kind != ctrlNone {
		return iterSig
	}
	if iterSig.result.Kind != ResultKnown {
		return signal{kind: ctrlNone, result: Result{}}
	}
	arr := iterSig.result.Value
	if arr.Kind != KindArray {
		return errSignal(diagnostics.Internal(diagnostics.PhaseCTE, n.Pos(), "iteration over a non-array value"))
	}
	elems := arr.Elems
	if n.Sorted {
		elems = append([]Value(nil), elems...)
		sort.SliceStable(elems, func(i, j int) bool { return lessValue(elems[i], elems[j]) })
	}
	for _, elem := range elems {
		e.loopSteps++
		if e.loopSteps > e.MaxLoopSteps {
			return errSignal(diagnostics.New(diagnostics.PhaseCTE, diagnostics.ErrCTEBound, n.Pos(), "loop iteration"))
		}
		loopFrame := newFrame(f)
		if n.Binding != nil {
			loopFrame.define(n.Binding.Name, elem)
		}
		sig := e.eval(n.Body, loopFrame)
		switch sig.kind {
		case ctrlBreak:
			return signal{kind: ctrlNone, result: Result{}}
		case ctrlContinue:
			continue
		case ctrlError, ctrlReturn:
			return sig
		}
	}
	return signal{kind: ctrlNone, result: Result{}}
}

func lessValue(a, b Value) bool {
	switch a.Kind {
	case KindInt:
		return a.Int < b.Int
	case KindUint:
		return a.Uint < b.Uint
	case KindFloat:
		return a.Float < b.Float
	case KindString:
		return a.Str < b.Str
	default:
		return false
	}
}

func (e *Evaluator) evalRepeat(n *ast.RepeatExpression, f *frame) signal {
	for {
		e.loopSteps++
		if e.loopSteps > e.MaxLoopSteps {
			return errSignal(diagnostics.New(diagnostics.PhaseCTE, diagnostics.ErrCTEBound, n.Pos(), "loop iteration"))
		}
		condSig := e.eval(n.Condition, f)
		if condSig.kind != ctrlNone {
			return condSig
		}
		if condSig.result.Kind != ResultKnown {
			return signal{kind: ctrlNone, result: Result{}}
		}
		b, ok := condSig.result.Value.AsBool()
		if !ok || !b {
			return signal{kind: ctrlNone, result: Result{}}
		}
		sig := e.eval(n.Body, f)
		switch sig.kind {
		case ctrlBreak:
			return signal{kind: ctrlNone, result: Result{}}
		case ctrlContinue:
			continue
		case ctrlError, ctrlReturn:
			return sig
		}
	}
}

func (e *Evaluator) evalResource(n *ast.ResourceExpression, f *frame) signal {
	full := n.Path
	if !filepath.IsAbs(full) {
		full = filepath.Join(e.ResourceRoot, n.Path)
	}
	if n.Directory {
		entries, err := os.ReadDir(full)
		if err != nil {
			return errSignal(diagnostics.Internal(diagnostics.PhaseCTE, n.Pos(), err.Error()))
		}
		names := make([]Value, 0, len(entries))
		for _, ent := range entries {
			names = append(names, Str(ent.Name()))
		}
		return knownSignal(Array(names))
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return errSignal(diagnostics.Internal(diagnostics.PhaseCTE, n.Pos(), err.Error()))
	}
	return knownSignal(Str(string(data)))
}

func (e *Evaluator) evalProcess(n *ast.ProcessExpression, f *frame) signal {
	if !e.AllowProcess {
		return errSignal(diagnostics.New(diagnostics.PhaseCTE, diagnostics.ErrCTEProcess, n.Pos(), "process execution is not enabled (allow_process)"))
	}
	cmdSig := e.eval(n.Command, f)
	if cmdSig.kind != ctrlNone {
		return cmdSig
	}
	if cmdSig.result.Kind != ResultKnown || cmdSig.result.Value.Kind != KindString {
		return unknownSignal()
	}
	out, err := exec.Command("sh", "-c", cmdSig.result.Value.Str).CombinedOutput()
	if err != nil {
		return errSignal(diagnostics.New(diagnostics.PhaseCTE, diagnostics.ErrCTEProcess, n.Pos(), err.Error()))
	}
	return knownSignal(Str(string(out)))
}
