package ast

import (
	"github.com/vexel-lang/vexel/internal/token"
)

// --- Literals ---

type IntLiteral struct {
	exprBase
	Position token.Position
	Value    uint64
	Negative bool
}

func (n *IntLiteral) Pos() token.Position { return n.Position }
func (n *IntLiteral) Accept(v Visitor)    { v.VisitIntLiteral(n) }
func (n *IntLiteral) expressionNode()     {}

type FloatLiteral struct {
	exprBase
	Position token.Position
	Value    float64
}

func (n *FloatLiteral) Pos() token.Position { return n.Position }
func (n *FloatLiteral) Accept(v Visitor)    { v.VisitFloatLiteral(n) }
func (n *FloatLiteral) expressionNode()     {}

type StringLiteral struct {
	exprBase
	Position token.Position
	Value    string
}

func (n *StringLiteral) Pos() token.Position { return n.Position }
func (n *StringLiteral) Accept(v Visitor)    { v.VisitStringLiteral(n) }
func (n *StringLiteral) expressionNode()     {}

type CharLiteral struct {
	exprBase
	Position token.Position
	Value    byte
}

func (n *CharLiteral) Pos() token.Position { return n.Position }
func (n *CharLiteral) Accept(v Visitor)    { v.VisitCharLiteral(n) }
func (n *CharLiteral) expressionNode()     {}

// --- Operators ---

type BinaryExpression struct {
	exprBase
	Position token.Position
	Operator string
	Left     Expression
	Right    Expression
}

func (n *BinaryExpression) Pos() token.Position { return n.Position }
func (n *BinaryExpression) Accept(v Visitor)    { v.VisitBinaryExpression(n) }
func (n *BinaryExpression) expressionNode()     {}

type UnaryExpression struct {
	exprBase
	Position token.Position
	Operator string
	Operand  Expression
}

func (n *UnaryExpression) Pos() token.Position { return n.Position }
func (n *UnaryExpression) Accept(v Visitor)    { v.VisitUnaryExpression(n) }
func (n *UnaryExpression) expressionNode()     {}

// --- Calls ---

// CallExpression models `(recv1, recv2).callee(args...)`. Receivers
// evaluate left-to-right then arguments left-to-right, per spec §4.3.
// Callee starts as an Identifier and may be rewritten to a qualified
// `TypeName::method` reference by the type checker when the receiver
// is a named type with a matching method.
type CallExpression struct {
	exprBase
	Position  token.Position
	Callee    Expression
	Receivers []Expression
	Arguments []Expression
}

func (n *CallExpression) Pos() token.Position { return n.Position }
func (n *CallExpression) Accept(v Visitor)    { v.VisitCallExpression(n) }
func (n *CallExpression) expressionNode()     {}

// --- Access ---

type IndexExpression struct {
	exprBase
	Position token.Position
	Left     Expression
	Index    Expression
}

func (n *IndexExpression) Pos() token.Position { return n.Position }
func (n *IndexExpression) Accept(v Visitor)    { v.VisitIndexExpression(n) }
func (n *IndexExpression) expressionNode()     {}

type MemberExpression struct {
	exprBase
	Position token.Position
	Left     Expression
	Member   *Identifier
}

func (n *MemberExpression) Pos() token.Position { return n.Position }
func (n *MemberExpression) Accept(v Visitor)    { v.VisitMemberExpression(n) }
func (n *MemberExpression) expressionNode()     {}

// --- Aggregates ---

type ArrayLiteral struct {
	exprBase
	Position token.Position
	Elements []Expression
}

func (n *ArrayLiteral) Pos() token.Position { return n.Position }
func (n *ArrayLiteral) Accept(v Visitor)    { v.VisitArrayLiteral(n) }
func (n *ArrayLiteral) expressionNode()     {}

// TupleLiteral is `(e1, e2, ...)` with size >= 2; synthesizes the
// globally registered tuple<N>_T1_T2_... type per spec §4.3.
type TupleLiteral struct {
	exprBase
	Position token.Position
	Elements []Expression
}

func (n *TupleLiteral) Pos() token.Position { return n.Position }
func (n *TupleLiteral) Accept(v Visitor)    { v.VisitTupleLiteral(n) }
func (n *TupleLiteral) expressionNode()     {}

// --- Control-flow expressions ---

// BlockExpression is a sequence of statements with an optional
// trailing expression giving the block a value.
type BlockExpression struct {
	exprBase
	Position   token.Position
	Statements []Statement
	Trailing   Expression // nil if the block has no value
}

func (n *BlockExpression) Pos() token.Position { return n.Position }
func (n *BlockExpression) Accept(v Visitor)    { v.VisitBlockExpression(n) }
func (n *BlockExpression) expressionNode()     {}

// ConditionalExpression is `cond ? t : f`. If Else is nil this is the
// statement form `cond ? stmt` and carries no value (spec §4.3).
type ConditionalExpression struct {
	exprBase
	Position  token.Position
	Condition Expression
	Then      Expression
	Else      Expression // nil for the statement form
}

func (n *ConditionalExpression) Pos() token.Position { return n.Position }
func (n *ConditionalExpression) Accept(v Visitor)    { v.VisitConditionalExpression(n) }
func (n *ConditionalExpression) expressionNode()     {}

type CastExpression struct {
	exprBase
	Position token.Position
	Target   Type
	Operand  Expression
}

func (n *CastExpression) Pos() token.Position { return n.Position }
func (n *CastExpression) Accept(v Visitor)    { v.VisitCastExpression(n) }
func (n *CastExpression) expressionNode()     {}

// AssignmentExpression is `lhs = rhs`; right-associative chains are
// represented with Value itself being another AssignmentExpression.
// When Introduces is true, the resolver has determined the LHS
// identifier is not resolvable in any ancestor scope and this
// assignment is the declaration of a new local (spec §4.2 step 3).
type AssignmentExpression struct {
	exprBase
	Position   token.Position
	Target     Expression // Identifier, IndexExpression, or MemberExpression
	Value      Expression
	Introduces bool
}

func (n *AssignmentExpression) Pos() token.Position { return n.Position }
func (n *AssignmentExpression) Accept(v Visitor)    { v.VisitAssignmentExpression(n) }
func (n *AssignmentExpression) expressionNode()     {}

// RangeExpression is `lo..hi` (inclusive-low, exclusive-high), used as
// an iterable in iteration expressions or directly as an array-like value.
type RangeExpression struct {
	exprBase
	Position token.Position
	Low      Expression
	High     Expression
}

func (n *RangeExpression) Pos() token.Position { return n.Position }
func (n *RangeExpression) Accept(v Visitor)    { v.VisitRangeExpression(n) }
func (n *RangeExpression) expressionNode()     {}

// LengthExpression is `|x|`.
type LengthExpression struct {
	exprBase
	Position token.Position
	Operand  Expression
}

func (n *LengthExpression) Pos() token.Position { return n.Position }
func (n *LengthExpression) Accept(v Visitor)    { v.VisitLengthExpression(n) }
func (n *LengthExpression) expressionNode()     {}

// IterationExpression is `iterable @ body` or, when Sorted is true,
// `iterable @@ body` (stable-sort copy before iterating). Statement
// position only: ExprType is always nil (spec §3).
type IterationExpression struct {
	exprBase
	Position token.Position
	Iterable Expression
	Binding  *Identifier // the per-element binding, conventionally `_`
	Body     Expression
	Sorted   bool
}

func (n *IterationExpression) Pos() token.Position { return n.Position }
func (n *IterationExpression) Accept(v Visitor)    { v.VisitIterationExpression(n) }
func (n *IterationExpression) expressionNode()     {}

// RepeatExpression is `(cond) @ body`: evaluate body while cond holds.
// Statement position only.
type RepeatExpression struct {
	exprBase
	Position  token.Position
	Condition Expression
	Body      Expression
}

func (n *RepeatExpression) Pos() token.Position { return n.Position }
func (n *RepeatExpression) Accept(v Visitor)    { v.VisitRepeatExpression(n) }
func (n *RepeatExpression) expressionNode()     {}

// ResourceExpression compile-time embeds a file or directory's
// contents (read during CTE evaluation, spec §4.6).
type ResourceExpression struct {
	exprBase
	Position  token.Position
	Path      string
	Directory bool
}

func (n *ResourceExpression) Pos() token.Position { return n.Position }
func (n *ResourceExpression) Accept(v Visitor)    { v.VisitResourceExpression(n) }
func (n *ResourceExpression) expressionNode()     {}

// ProcessExpression runs a host shell command and captures its output
// at compile time; opt-in via the frontend's allow_process config
// (spec §5, §6).
type ProcessExpression struct {
	exprBase
	Position token.Position
	Command  Expression
}

func (n *ProcessExpression) Pos() token.Position { return n.Position }
func (n *ProcessExpression) Accept(v Visitor)    { v.VisitProcessExpression(n) }
func (n *ProcessExpression) expressionNode()     {}
