// Package ast defines the tagged-variant tree for Vexel programs:
// expressions, statements, syntactic type annotations, and
// annotations, per spec §3. Lexing and parsing are out of scope for
// this module (spec §1) — the frontend consumes an already-parsed
// tree; these types describe the shape that tree has.
//
// The pattern (a closed Node interface, one struct per variant, double
// dispatch through Visitor) is adapted line-by-line from the teacher's
// internal/ast package.
package ast

import (
	"github.com/vexel-lang/vexel/internal/token"
	"github.com/vexel-lang/vexel/internal/typesystem"
)

// Node is the base interface for every AST node.
type Node interface {
	Pos() token.Position
	Accept(Visitor)
}

// Statement is a Node that appears in statement position.
type Statement interface {
	Node
	statementNode()
}

// Expression is a Node that appears in expression position. Type is
// the semantic type computed by internal/typecheck; it is nil until
// checked, and remains nil forever for statement-only expression forms
// (iteration, repeat, void calls, assignments used as statements) per
// spec §3.
type Expression interface {
	Node
	expressionNode()
	ExprType() typesystem.Type
	SetExprType(typesystem.Type)
}

// exprBase factors the Type slot shared by every Expression.
type exprBase struct {
	Type typesystem.Type
}

func (e *exprBase) ExprType() typesystem.Type        { return e.Type }
func (e *exprBase) SetExprType(t typesystem.Type)    { e.Type = t }

// Annotation is an opaque `name[(args...)]` prefix attached to a
// declaration or statement. Recognized names are validated by
// internal/resolver; unrecognized ones pass through verbatim per spec §3.
type Annotation struct {
	Position token.Position
	Name     string
	Args     []Expression
}

// Program is the root of a single parsed file.
type Program struct {
	Position   token.Position
	File       string
	Statements []Statement
}

func (p *Program) Pos() token.Position { return p.Position }
func (p *Program) Accept(v Visitor)    { v.VisitProgram(p) }

// Identifier names a variable, function, type, or field.
type Identifier struct {
	exprBase
	Position token.Position
	Name     string
}

func (i *Identifier) Pos() token.Position { return i.Position }
func (i *Identifier) Accept(v Visitor)    { v.VisitIdentifier(i) }
func (i *Identifier) expressionNode()     {}
