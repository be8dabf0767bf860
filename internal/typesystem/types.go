// Package typesystem implements the five-case semantic Type model from
// spec §3 (Primitive, Array, Named, TypeVar, TypeOf), substitution, and
// Hindley-Milner-style unification. It is deliberately separate from
// the AST's syntactic type annotations (see internal/ast), mirroring
// the teacher's split between internal/typesystem (semantic Type) and
// internal/ast's own Type interface (syntactic annotation) — the same
// decoupling that lets the checker rewrite `TypeOf(expr)` into a
// concrete case without mutating the syntax tree that produced it.
package typesystem

import (
	"fmt"
	"sort"
	"strings"
)

// Type is the common interface for every semantic type case.
type Type interface {
	String() string
	Apply(Subst) Type
	FreeTypeVars() []string
}

// PrimKind enumerates the primitive families from spec §3.
type PrimKind int

const (
	KindSignedInt PrimKind = iota
	KindUnsignedInt
	KindF16
	KindF32
	KindF64
	KindBool
	KindString
)

func (k PrimKind) String() string {
	switch k {
	case KindSignedInt:
		return "i"
	case KindUnsignedInt:
		return "u"
	case KindF16:
		return "f16"
	case KindF32:
		return "f32"
	case KindF64:
		return "f64"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	default:
		return "?"
	}
}

// Primitive is one of {signed int, unsigned int, f16, f32, f64, bool,
// string}. Width is only meaningful for the two integer kinds; 0 means
// "unresolved width literal" per spec §3.
type Primitive struct {
	Kind  PrimKind
	Width int // bit width for integers; 0 = unresolved
}

func Bool() Primitive   { return Primitive{Kind: KindBool} }
func Str() Primitive    { return Primitive{Kind: KindString} }
func F16() Primitive    { return Primitive{Kind: KindF16} }
func F32() Primitive    { return Primitive{Kind: KindF32} }
func F64() Primitive    { return Primitive{Kind: KindF64} }
func U(width int) Primitive { return Primitive{Kind: KindUnsignedInt, Width: width} }
func I(width int) Primitive { return Primitive{Kind: KindSignedInt, Width: width} }

func (p Primitive) String() string {
	switch p.Kind {
	case KindSignedInt, KindUnsignedInt:
		if p.Width == 0 {
			return p.Kind.String() + "?"
		}
		return fmt.Sprintf("%s%d", p.Kind, p.Width)
	default:
		return p.Kind.String()
	}
}

func (p Primitive) Apply(Subst) Type         { return p }
func (p Primitive) FreeTypeVars() []string   { return nil }

// IsInteger reports whether p is a signed or unsigned integer family.
func (p Primitive) IsInteger() bool {
	return p.Kind == KindSignedInt || p.Kind == KindUnsignedInt
}

// IsFloat reports whether p is one of the float families.
func (p Primitive) IsFloat() bool {
	return p.Kind == KindF16 || p.Kind == KindF32 || p.Kind == KindF64
}

// IsResolved reports whether an integer primitive has a concrete width;
// always true for non-integer primitives.
func (p Primitive) IsResolved() bool {
	if p.IsInteger() {
		return p.Width != 0
	}
	return true
}

// SameFamily reports whether p and o are both signed, both unsigned, or
// both float (spec §4.3 numeric widening: "within the same family").
func (p Primitive) SameFamily(o Primitive) bool {
	if p.IsFloat() && o.IsFloat() {
		return true
	}
	return p.Kind == o.Kind && p.IsInteger()
}

// Array is an element type plus a size. SizeExpr holds the opaque
// syntactic size expression (an ast.Expression, kept as interface{} to
// avoid an import cycle between typesystem and ast); once the size is
// known it is stored in Size and Resolved is true. SizeExpr is kept
// alongside the resolved size.
type Array struct {
	Elem     Type
	Size     int64
	Resolved bool
	SizeExpr interface{}
}

func (a Array) String() string {
	if a.Resolved {
		return fmt.Sprintf("%s[%d]", a.Elem, a.Size)
	}
	return fmt.Sprintf("%s[?]", a.Elem)
}

func (a Array) Apply(s Subst) Type {
	return Array{Elem: a.Elem.Apply(s), Size: a.Size, Resolved: a.Resolved, SizeExpr: a.SizeExpr}
}

func (a Array) FreeTypeVars() []string { return a.Elem.FreeTypeVars() }

// Named refers to a declared record type, or a synthetic tuple type
// with the naming convention tuple<N>_T1_T2_....
type Named struct {
	Name string
	Args []Type // type arguments, printed as Name<A,B>; substituted by Apply
}

func (n Named) String() string {
	if len(n.Args) == 0 {
		return n.Name
	}
	parts := make([]string, len(n.Args))
	for i, a := range n.Args {
		parts[i] = a.String()
	}
	return n.Name + "<" + strings.Join(parts, ",") + ">"
}

func (n Named) Apply(s Subst) Type {
	if len(n.Args) == 0 {
		return n
	}
	newArgs := make([]Type, len(n.Args))
	for i, a := range n.Args {
		newArgs[i] = a.Apply(s)
	}
	return Named{Name: n.Name, Args: newArgs}
}

func (n Named) FreeTypeVars() []string {
	var out []string
	for _, a := range n.Args {
		out = append(out, a.FreeTypeVars()...)
	}
	return out
}

// TupleName builds the synthetic tuple-type name for N elements of the
// given element types, per spec §4.3: tuple<N>_T1_T2_....
func TupleName(elems []Type) string {
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = sanitizeForName(e.String())
	}
	return fmt.Sprintf("tuple<%d>_%s", len(elems), strings.Join(parts, "_"))
}

func sanitizeForName(s string) string {
	r := strings.NewReplacer("[", "_", "]", "", "<", "_", ">", "", ",", "_", " ", "")
	return r.Replace(s)
}

// TVar is an inference variable: a name plus an optional binding.
// The binding itself is carried by a Subst, not by the TVar value, so
// that TVar remains a small, comparable, substitutable value like the
// teacher's own typesystem.TVar.
type TVar struct {
	Name string
}

func (t TVar) String() string                { return "'" + t.Name }
func (t TVar) FreeTypeVars() []string        { return []string{t.Name} }

func (t TVar) Apply(s Subst) Type {
	return applyCycleSafe(t, s, map[string]bool{})
}

func applyCycleSafe(t Type, s Subst, visited map[string]bool) Type {
	tv, ok := t.(TVar)
	if !ok {
		return t.Apply(s)
	}
	if visited[tv.Name] {
		return tv
	}
	repl, ok := s[tv.Name]
	if !ok {
		return tv
	}
	if rtv, ok := repl.(TVar); ok && rtv.Name == tv.Name {
		return tv
	}
	next := map[string]bool{}
	for k, v := range visited {
		next[k] = v
	}
	next[tv.Name] = true
	if rtv, ok := repl.(TVar); ok {
		return applyCycleSafe(rtv, s, next)
	}
	return repl.Apply(s)
}

// TypeOf represents "the inferred type of expr" — expr is kept as an
// opaque ast.Expression reference (interface{}, see Array.SizeExpr)
// until type validation resolves it to a concrete case.
type TypeOf struct {
	Expr interface{}
}

func (t TypeOf) String() string              { return "typeof(...)" }
func (t TypeOf) Apply(Subst) Type            { return t }
func (t TypeOf) FreeTypeVars() []string      { return nil }

// Subst maps type variable names to replacement types.
type Subst map[string]Type

// Compose returns a substitution equivalent to applying s2 then s1.
func Compose(s1, s2 Subst) Subst {
	out := Subst{}
	for k, v := range s2 {
		out[k] = v.Apply(s1)
	}
	for k, v := range s1 {
		if _, exists := out[k]; !exists {
			out[k] = v
		}
	}
	return out
}

// IsConcrete reports whether t contains no TypeVar/TypeOf and, if it is
// an integer primitive, has a resolved width — the predicate the
// type-use validator applies to every value-used expression (spec §4.10).
func IsConcrete(t Type) bool {
	switch tt := t.(type) {
	case TVar, TypeOf:
		return false
	case Primitive:
		return tt.IsResolved()
	case Array:
		return tt.Resolved && IsConcrete(tt.Elem)
	case Named:
		for _, a := range tt.Args {
			if !IsConcrete(a) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// SortedKeys returns the keys of a Subst in deterministic order, used
// by diagnostics and tests that print substitutions.
func (s Subst) SortedKeys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s Subst) String() string {
	var b strings.Builder
	keys := s.SortedKeys()
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s -> %s", k, s[k])
	}
	return b.String()
}
