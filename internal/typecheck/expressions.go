package typecheck

import (
	"github.com/vexel-lang/vexel/internal/ast"
	"github.com/vexel-lang/vexel/internal/diagnostics"
	"github.com/vexel-lang/vexel/internal/symbols"
	"github.com/vexel-lang/vexel/internal/typesystem"
)

// checkExpr infers expr's type, stamps it via SetExprType, and returns
// it. expected carries a contextual type hint (e.g. the array element
// type an empty array literal needs); it may be nil.
func (c *Checker) checkExpr(expr ast.Expression, expected typesystem.Type) typesystem.Type {
	if expr == nil {
		return nil
	}
	switch n := expr.(type) {
	case *ast.IntLiteral:
		t := typesystem.LiteralType(n.Value, n.Negative)
		n.SetExprType(t)
		return t

	case *ast.FloatLiteral:
		n.SetExprType(typesystem.F64())
		return n.ExprType()

	case *ast.StringLiteral:
		n.SetExprType(typesystem.Str())
		return n.ExprType()

	case *ast.CharLiteral:
		n.SetExprType(typesystem.U(8))
		return n.ExprType()

	case *ast.Identifier:
		return c.checkIdentifier(n)

	case *ast.BinaryExpression:
		return c.checkBinary(n)

	case *ast.UnaryExpression:
		return c.checkUnary(n)

	case *ast.CallExpression:
		return c.checkCall(n)

	case *ast.IndexExpression:
		return c.checkIndex(n)

	case *ast.MemberExpression:
		return c.checkMember(n)

	case *ast.ArrayLiteral:
		return c.checkArrayLiteral(n, expected)

	case *ast.TupleLiteral:
		return c.checkTupleLiteral(n)

	case *ast.BlockExpression:
		return c.checkBlock(n, expected)

	case *ast.ConditionalExpression:
		return c.checkConditionalExpr(n, expected)

	case *ast.CastExpression:
		return c.checkCast(n)

	case *ast.AssignmentExpression:
		return c.checkAssignment(n)

	case *ast.RangeExpression:
		return c.checkRange(n)

	case *ast.LengthExpression:
		return c.checkLength(n)

	case *ast.IterationExpression:
		c.checkIteration(n)
		return nil

	case *ast.RepeatExpression:
		c.checkRepeat(n)
		return nil

	case *ast.ResourceExpression:
		n.SetExprType(typesystem.Str())
		return n.ExprType()

	case *ast.ProcessExpression:
		c.checkExpr(n.Command, typesystem.Str())
		n.SetExprType(typesystem.Str())
		return n.ExprType()
	}
	return nil
}

func (c *Checker) checkIdentifier(n *ast.Identifier) typesystem.Type {
	sym, ok := c.Bindings.SymbolFor(c.curInstance, n)
	if !ok {
		c.report(diagnostics.New(diagnostics.PhaseTypeCheck, diagnostics.ErrTypeUnresolved, n.Pos(), n.Name))
		n.SetExprType(c.freshTVar())
		return n.ExprType()
	}
	if sym.Type == nil {
		sym.Type = c.freshTVar()
	}
	n.SetExprType(sym.Type)
	return sym.Type
}

func (c *Checker) checkUnary(n *ast.UnaryExpression) typesystem.Type {
	ot := c.checkExpr(n.Operand, nil)
	var result typesystem.Type
	switch n.Operator {
	case "!":
		result = typesystem.Bool()
	case "~":
		if p, ok := ot.(typesystem.Primitive); !ok || p.Kind != typesystem.KindUnsignedInt {
			c.report(diagnostics.New(diagnostics.PhaseTypeCheck, diagnostics.ErrTypeOperator, n.Pos(), "~", typeName(ot)))
		}
		result = ot
	case "-":
		if p, ok := ot.(typesystem.Primitive); ok && p.Kind == typesystem.KindUnsignedInt {
			result = typesystem.Primitive{Kind: typesystem.KindSignedInt, Width: p.Width}
		} else {
			result = ot
		}
	default:
		result = ot
	}
	n.SetExprType(result)
	return result
}

func typeName(t typesystem.Type) string {
	if t == nil {
		return "<unknown>"
	}
	return t.String()
}

func (c *Checker) checkIndex(n *ast.IndexExpression) typesystem.Type {
	baseT := c.checkExpr(n.Left, nil)
	c.checkExpr(n.Index, nil)
	var elemT typesystem.Type = c.freshTVar()
	if arr, ok := baseT.(typesystem.Array); ok {
		elemT = arr.Elem
	} else {
		c.report(diagnostics.New(diagnostics.PhaseTypeCheck, diagnostics.ErrTypeMismatch, n.Pos(), "array", typeName(baseT)))
	}
	n.SetExprType(elemT)
	return elemT
}

func (c *Checker) checkMember(n *ast.MemberExpression) typesystem.Type {
	baseT := c.checkExpr(n.Left, nil)
	named, ok := baseT.(typesystem.Named)
	if !ok {
		t := c.freshTVar()
		n.SetExprType(t)
		return t
	}
	fieldT := c.fieldType(named.Name, n.Member.Name)
	if fieldT == nil {
		fieldT = c.freshTVar()
	}
	n.SetExprType(fieldT)
	return fieldT
}

// fieldType looks up typeName's declared field (or synthetic tuple
// element) by name, resolving the field's syntactic type annotation to
// a semantic Type.
func (c *Checker) fieldType(typeName, fieldName string) typesystem.Type {
	if elems, ok := c.TupleTypes[typeName]; ok {
		idx := tupleFieldIndex(fieldName)
		if idx >= 0 && idx < len(elems) {
			return elems[idx]
		}
		return nil
	}
	decl := c.lookupTypeDecl(typeName)
	if decl == nil {
		return nil
	}
	for _, f := range decl.Fields {
		if f.Name.Name == fieldName {
			return c.resolveTypeAnn(f.TypeAnn)
		}
	}
	return nil
}

func tupleFieldIndex(name string) int {
	idx := -1
	if len(name) > 2 && name[0] == '_' && name[1] == '_' {
		n := 0
		for _, r := range name[2:] {
			if r < '0' || r > '9' {
				return -1
			}
			n = n*10 + int(r-'0')
		}
		idx = n
	}
	return idx
}

// lookupTypeDecl resolves a named type to its declaration by looking
// the name up in the current instance's scope chain (we only have the
// name, not a node, so Bindings cannot be used). Types are unique per
// instance scope and the resolver already rejected duplicate top-level
// names within a scope.
func (c *Checker) lookupTypeDecl(name string) *ast.TypeDeclStatement {
	inst := c.Prog.Instance(c.curInstance)
	if sym, ok := inst.Scope.Lookup(name); ok && sym.Kind == symbols.KindType {
		if decl, ok := sym.Decl.(*ast.TypeDeclStatement); ok {
			return decl
		}
	}
	return nil
}

func (c *Checker) checkArrayLiteral(n *ast.ArrayLiteral, expected typesystem.Type) typesystem.Type {
	if len(n.Elements) == 0 {
		elemT := typesystem.Type(c.freshTVar())
		if arr, ok := expected.(typesystem.Array); ok {
			elemT = arr.Elem
		}
		t := typesystem.Array{Elem: elemT, Size: 0, Resolved: true}
		n.SetExprType(t)
		return t
	}
	elemTypes := make([]typesystem.Primitive, 0, len(n.Elements))
	allPrim := true
	var first typesystem.Type
	for _, el := range n.Elements {
		et := c.checkExpr(el, nil)
		if first == nil {
			first = et
		}
		if p, ok := et.(typesystem.Primitive); ok {
			elemTypes = append(elemTypes, p)
		} else {
			allPrim = false
		}
	}
	var elem typesystem.Type
	if allPrim {
		joined, ok := typesystem.JoinArrayElem(elemTypes)
		if !ok {
			c.report(diagnostics.New(diagnostics.PhaseTypeCheck, diagnostics.ErrTypeMismatch, n.Pos(), "a common numeric family", "mixed families"))
			joined = elemTypes[0]
		}
		elem = joined
	} else {
		elem = first
	}
	t := typesystem.Array{Elem: elem, Size: int64(len(n.Elements)), Resolved: true}
	n.SetExprType(t)
	return t
}
