// Package cte implements the three-valued compile-time evaluator from
// spec §4.6: a bounded tree interpreter over typed AST producing
// Known(value) | Unknown | Error(msg) for any expression, used by the
// type checker (dead-branch typing, exported-global ABI constants) and
// by the optimizer's fixpoint scheduler (internal/optimize).
//
// Grounded on the teacher's internal/evaluator tree-walking interpreter
// shape (environment chaining, object Value kinds), narrowed to a pure,
// side-effect-scoped subset suitable for compile time: no I/O beyond
// resource embedding and opt-in process execution, no goroutines, and
// hard bounds on recursion and loop iteration to guarantee termination.
package cte

import "fmt"

// Kind tags which case a Value holds.
type Kind int

const (
	KindInt Kind = iota
	KindUint
	KindFloat
	KindBool
	KindString
	KindArray
	KindStruct
)

// Value is a compile-time value. Only one of the scalar fields is
// meaningful for a given Kind; Elems holds array/tuple elements in
// order, Fields holds named-struct members.
type Value struct {
	Kind    Kind
	Int     int64
	Uint    uint64
	Float   float64
	Bool    bool
	Str     string
	Elems   []Value
	Fields  map[string]Value
	Struct  string // the named type, when Kind == KindStruct
}

func Int(v int64) Value    { return Value{Kind: KindInt, Int: v} }
func Uint(v uint64) Value  { return Value{Kind: KindUint, Uint: v} }
func Float(v float64) Value { return Value{Kind: KindFloat, Float: v} }
func Bool(v bool) Value    { return Value{Kind: KindBool, Bool: v} }
func Str(v string) Value   { return Value{Kind: KindString, Str: v} }

func Array(elems []Value) Value {
	// Copy-on-unique-write (spec §4.6): a fresh Value always owns a
	// fresh backing slice, so aliasing two Values never lets a write to
	// one be observed through the other.
	cp := make([]Value, len(elems))
	copy(cp, elems)
	return Value{Kind: KindArray, Elems: cp}
}

func Struct(name string, fields map[string]Value) Value {
	cp := make(map[string]Value, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	return Value{Kind: KindStruct, Struct: name, Fields: cp}
}

func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindUint:
		return fmt.Sprintf("%d", v.Uint)
	case KindFloat:
		return fmt.Sprintf("%g", v.Float)
	case KindBool:
		return fmt.Sprintf("%t", v.Bool)
	case KindString:
		return v.Str
	case KindArray:
		return fmt.Sprintf("array[%d]", len(v.Elems))
	case KindStruct:
		return v.Struct
	default:
		return "?"
	}
}

// AsBool reports v's truthiness for conditions: a bool value directly,
// or an integer 0/1 per spec §4.3's bool-coercion rule.
func (v Value) AsBool() (bool, bool) {
	switch v.Kind {
	case KindBool:
		return v.Bool, true
	case KindInt:
		if v.Int == 0 || v.Int == 1 {
			return v.Int == 1, true
		}
	case KindUint:
		if v.Uint == 0 || v.Uint == 1 {
			return v.Uint == 1, true
		}
	}
	return false, false
}

// ResultKind classifies what a Query call produced.
type ResultKind int

const (
	ResultKnown ResultKind = iota
	ResultUnknown
	ResultError
)

// Result is the three-valued outcome of evaluating one expression.
type Result struct {
	Kind  ResultKind
	Value Value
	Err   error
}

func Known(v Value) Result  { return Result{Kind: ResultKnown, Value: v} }
func Unknown() Result       { return Result{Kind: ResultUnknown} }
func Errorf(format string, args ...interface{}) Result {
	return Result{Kind: ResultError, Err: fmt.Errorf(format, args...)}
}

// deepCopy returns a value with independent backing storage, used
// whenever a composite Value crosses an ownership boundary (assigned
// into a slot, passed as a call argument) so later in-place writes via
// CTE's addressable-slot model never alias a caller's copy (spec §4.6
// "copy-on-unique-write").
func deepCopy(v Value) Value {
	switch v.Kind {
	case KindArray:
		elems := make([]Value, len(v.Elems))
		for i, el := range v.Elems {
			elems[i] = deepCopy(el)
		}
		return Value{Kind: KindArray, Elems: elems}
	case KindStruct:
		fields := make(map[string]Value, len(v.Fields))
		for k, fv := range v.Fields {
			fields[k] = deepCopy(fv)
		}
		return Value{Kind: KindStruct, Struct: v.Struct, Fields: fields}
	default:
		return v
	}
}
