package ast

import "github.com/vexel-lang/vexel/internal/token"

// Type is the syntactic type-annotation interface, distinct from
// typesystem.Type (the semantic type computed by the checker) — the
// same split the teacher draws between its own ast.Type (parsed
// annotations like `List a`) and internal/typesystem.Type (inferred
// types). Keeping them separate avoids an import cycle (typesystem
// cannot depend on ast) and mirrors how `#i32`/`#u8[3]` in source is
// just syntax until the checker resolves it.
type Type interface {
	Node
	typeNode()
}

// PrimitiveTypeAnn is `#i32`, `#u8`, `#bool`, `#string`, etc. Width 0
// means the annotation did not specify a width (rare; usually only
// valid on sigil-free contexts the parser permits).
type PrimitiveTypeAnn struct {
	Position token.Position
	Kind     string // "i", "u", "f16", "f32", "f64", "bool", "string"
	Width    int
}

func (n *PrimitiveTypeAnn) Pos() token.Position { return n.Position }
func (n *PrimitiveTypeAnn) Accept(v Visitor)    { v.VisitPrimitiveTypeAnn(n) }
func (n *PrimitiveTypeAnn) typeNode()           {}

// ArrayTypeAnn is `#T[size]`; Size is the syntactic size expression,
// evaluated at compile time and canonicalized during resolution.
type ArrayTypeAnn struct {
	Position token.Position
	Elem     Type
	Size     Expression
}

func (n *ArrayTypeAnn) Pos() token.Position { return n.Position }
func (n *ArrayTypeAnn) Accept(v Visitor)    { v.VisitArrayTypeAnn(n) }
func (n *ArrayTypeAnn) typeNode()           {}

// NamedTypeAnn refers to a declared record type by name.
type NamedTypeAnn struct {
	Position token.Position
	Name     string
}

func (n *NamedTypeAnn) Pos() token.Position { return n.Position }
func (n *NamedTypeAnn) Accept(v Visitor)    { v.VisitNamedTypeAnn(n) }
func (n *NamedTypeAnn) typeNode()           {}
