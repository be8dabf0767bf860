package ast

import (
	"github.com/vexel-lang/vexel/internal/token"
)

// ExpressionStatement wraps an expression used for effect only.
type ExpressionStatement struct {
	Position   token.Position
	Expression Expression
}

func (n *ExpressionStatement) Pos() token.Position { return n.Position }
func (n *ExpressionStatement) Accept(v Visitor)    { v.VisitExpressionStatement(n) }
func (n *ExpressionStatement) statementNode()      {}

type ReturnStatement struct {
	Position token.Position
	Value    Expression // nil for a bare return
}

func (n *ReturnStatement) Pos() token.Position { return n.Position }
func (n *ReturnStatement) Accept(v Visitor)    { v.VisitReturnStatement(n) }
func (n *ReturnStatement) statementNode()      {}

type BreakStatement struct {
	Position token.Position
}

func (n *BreakStatement) Pos() token.Position { return n.Position }
func (n *BreakStatement) Accept(v Visitor)    { v.VisitBreakStatement(n) }
func (n *BreakStatement) statementNode()      {}

type ContinueStatement struct {
	Position token.Position
}

func (n *ContinueStatement) Pos() token.Position { return n.Position }
func (n *ContinueStatement) Accept(v Visitor)    { v.VisitContinueStatement(n) }
func (n *ContinueStatement) statementNode()      {}

// Linkage distinguishes an ordinary local/global variable from one
// bound to an external symbol or pinned to a backend-specific location.
type Linkage int

const (
	LinkageNormal Linkage = iota
	LinkageExternalSymbol
	LinkageBackendBound
)

// VarDeclStatement is the only declaration form for a named variable
// (block-local variables are instead introduced by assignment, spec
// §4.2 step 3).
type VarDeclStatement struct {
	Position    token.Position
	Annotations []*Annotation
	Name        *Identifier
	TypeAnn     Type // optional syntactic annotation
	Init        Expression
	Mutable     bool
	Exported    bool
	Linkage     Linkage
}

func (n *VarDeclStatement) Pos() token.Position { return n.Position }
func (n *VarDeclStatement) Accept(v Visitor)    { v.VisitVarDeclStatement(n) }
func (n *VarDeclStatement) statementNode()      {}

// Param is a value parameter. An Expression-kind parameter (prefixed
// `$` in source) captures an unevaluated expression and is substituted
// at each use site inside the body (spec GLOSSARY "Expression parameter").
type Param struct {
	Position   token.Position
	Name       *Identifier
	TypeAnn    Type // nil => parameter is untyped, making the function generic
	Expression bool
}

// Receiver is a reference-bound parameter in a method declaration.
type Receiver struct {
	Position token.Position
	Name     *Identifier
	TypeAnn  Type
}

// FuncDeclStatement covers both free functions and methods (when
// TypeNamespace is non-empty, e.g. `TypeName::method`), generic
// templates, and monomorphized instantiations.
type FuncDeclStatement struct {
	Position      token.Position
	Annotations   []*Annotation
	Name          *Identifier
	TypeNamespace string // non-empty for `&(recv)#TypeNamespace::method(...)`-style methods
	Receivers     []*Receiver
	Params        []*Param
	ReturnTypes   []Type // len 0 = void, len 1 = single return, len > 1 = tuple of returns
	Body          Expression
	Exported      bool
	External      bool
	Generic       bool // true if any Param has a nil TypeAnn or a return slot is a type variable
	Instantiation bool // true for monomorphizer-produced clones
	MangledKey    string // full-signature mangled name, set on instantiations
}

func (n *FuncDeclStatement) Pos() token.Position { return n.Position }
func (n *FuncDeclStatement) Accept(v Visitor)    { v.VisitFuncDeclStatement(n) }
func (n *FuncDeclStatement) statementNode()      {}

// QualifiedName returns "TypeNamespace::Name" for a method, or just
// "Name" for a free function.
func (n *FuncDeclStatement) QualifiedName() string {
	if n.TypeNamespace == "" {
		return n.Name.Name
	}
	return n.TypeNamespace + "::" + n.Name.Name
}

// Field is a named, typed member of a record type.
type Field struct {
	Position token.Position
	Name     *Identifier
	TypeAnn  Type
}

type TypeDeclStatement struct {
	Position token.Position
	Name     *Identifier
	Fields   []*Field
}

func (n *TypeDeclStatement) Pos() token.Position { return n.Position }
func (n *TypeDeclStatement) Accept(v Visitor)    { v.VisitTypeDeclStatement(n) }
func (n *TypeDeclStatement) statementNode()      {}

// ImportStatement is `::a::b;` — the path is the sequence of dotted
// segments; resolution happens in internal/modules per spec §4.1.
type ImportStatement struct {
	Position token.Position
	Segments []string
}

func (n *ImportStatement) Pos() token.Position { return n.Position }
func (n *ImportStatement) Accept(v Visitor)    { v.VisitImportStatement(n) }
func (n *ImportStatement) statementNode()      {}

// ConditionalStatement is `cond ? true-stmt;` with no else branch.
type ConditionalStatement struct {
	Position  token.Position
	Condition Expression
	Then      Statement
}

func (n *ConditionalStatement) Pos() token.Position { return n.Position }
func (n *ConditionalStatement) Accept(v Visitor)    { v.VisitConditionalStatement(n) }
func (n *ConditionalStatement) statementNode()      {}
