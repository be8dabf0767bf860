package ast

// Visitor is the double-dispatch interface every AST-walking pass
// implements, in the teacher's own internal/ast.Visitor style —
// pattern-matching over a closed set of node types instead of type
// switches scattered through every pass (spec §9 "Sum types vs.
// inheritance").
type Visitor interface {
	VisitProgram(*Program)
	VisitIdentifier(*Identifier)

	VisitIntLiteral(*IntLiteral)
	VisitFloatLiteral(*FloatLiteral)
	VisitStringLiteral(*StringLiteral)
	VisitCharLiteral(*CharLiteral)

	VisitBinaryExpression(*BinaryExpression)
	VisitUnaryExpression(*UnaryExpression)
	VisitCallExpression(*CallExpression)
	VisitIndexExpression(*IndexExpression)
	VisitMemberExpression(*MemberExpression)
	VisitArrayLiteral(*ArrayLiteral)
	VisitTupleLiteral(*TupleLiteral)
	VisitBlockExpression(*BlockExpression)
	VisitConditionalExpression(*ConditionalExpression)
	VisitCastExpression(*CastExpression)
	VisitAssignmentExpression(*AssignmentExpression)
	VisitRangeExpression(*RangeExpression)
	VisitLengthExpression(*LengthExpression)
	VisitIterationExpression(*IterationExpression)
	VisitRepeatExpression(*RepeatExpression)
	VisitResourceExpression(*ResourceExpression)
	VisitProcessExpression(*ProcessExpression)

	VisitExpressionStatement(*ExpressionStatement)
	VisitReturnStatement(*ReturnStatement)
	VisitBreakStatement(*BreakStatement)
	VisitContinueStatement(*ContinueStatement)
	VisitVarDeclStatement(*VarDeclStatement)
	VisitFuncDeclStatement(*FuncDeclStatement)
	VisitTypeDeclStatement(*TypeDeclStatement)
	VisitImportStatement(*ImportStatement)
	VisitConditionalStatement(*ConditionalStatement)

	VisitPrimitiveTypeAnn(*PrimitiveTypeAnn)
	VisitArrayTypeAnn(*ArrayTypeAnn)
	VisitNamedTypeAnn(*NamedTypeAnn)
}

// BaseVisitor is embeddable by passes that only care about a handful
// of node kinds; it no-ops every method so a pass only overrides what
// it needs, the same convenience the teacher's walker gets for free
// from always constructing a fresh struct literal per pass.
type BaseVisitor struct{}

func (BaseVisitor) VisitProgram(*Program)         {}
func (BaseVisitor) VisitIdentifier(*Identifier)   {}
func (BaseVisitor) VisitIntLiteral(*IntLiteral)   {}
func (BaseVisitor) VisitFloatLiteral(*FloatLiteral) {}
func (BaseVisitor) VisitStringLiteral(*StringLiteral) {}
func (BaseVisitor) VisitCharLiteral(*CharLiteral) {}
func (BaseVisitor) VisitBinaryExpression(*BinaryExpression) {}
func (BaseVisitor) VisitUnaryExpression(*UnaryExpression)   {}
func (BaseVisitor) VisitCallExpression(*CallExpression)     {}
func (BaseVisitor) VisitIndexExpression(*IndexExpression)   {}
func (BaseVisitor) VisitMemberExpression(*MemberExpression) {}
func (BaseVisitor) VisitArrayLiteral(*ArrayLiteral)         {}
func (BaseVisitor) VisitTupleLiteral(*TupleLiteral)         {}
func (BaseVisitor) VisitBlockExpression(*BlockExpression)   {}
func (BaseVisitor) VisitConditionalExpression(*ConditionalExpression) {}
func (BaseVisitor) VisitCastExpression(*CastExpression)           {}
func (BaseVisitor) VisitAssignmentExpression(*AssignmentExpression) {}
func (BaseVisitor) VisitRangeExpression(*RangeExpression)     {}
func (BaseVisitor) VisitLengthExpression(*LengthExpression)   {}
func (BaseVisitor) VisitIterationExpression(*IterationExpression) {}
func (BaseVisitor) VisitRepeatExpression(*RepeatExpression)       {}
func (BaseVisitor) VisitResourceExpression(*ResourceExpression)   {}
func (BaseVisitor) VisitProcessExpression(*ProcessExpression)     {}
func (BaseVisitor) VisitExpressionStatement(*ExpressionStatement) {}
func (BaseVisitor) VisitReturnStatement(*ReturnStatement)         {}
func (BaseVisitor) VisitBreakStatement(*BreakStatement)           {}
func (BaseVisitor) VisitContinueStatement(*ContinueStatement)     {}
func (BaseVisitor) VisitVarDeclStatement(*VarDeclStatement)       {}
func (BaseVisitor) VisitFuncDeclStatement(*FuncDeclStatement)     {}
func (BaseVisitor) VisitTypeDeclStatement(*TypeDeclStatement)     {}
func (BaseVisitor) VisitImportStatement(*ImportStatement)         {}
func (BaseVisitor) VisitConditionalStatement(*ConditionalStatement) {}
func (BaseVisitor) VisitPrimitiveTypeAnn(*PrimitiveTypeAnn)       {}
func (BaseVisitor) VisitArrayTypeAnn(*ArrayTypeAnn)               {}
func (BaseVisitor) VisitNamedTypeAnn(*NamedTypeAnn)               {}
