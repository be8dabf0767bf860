package mono

import "github.com/vexel-lang/vexel/internal/ast"

// cloneFuncDecl deep-copies a generic function/method declaration so
// that each monomorphized instantiation gets its own, independently
// bindable AST nodes (spec §4.3 "The checker clones the generic body").
// Reusing the template's nodes across instantiations would collide in
// internal/symbols.Bindings, whose key is (instance, node) — the same
// instance ID is reused for every clone of a generic declared in that
// instance, so the nodes themselves must differ.
func cloneFuncDecl(n *ast.FuncDeclStatement) *ast.FuncDeclStatement {
	clone := &ast.FuncDeclStatement{
		Position:      n.Position,
		Annotations:   n.Annotations,
		Name:          cloneIdent(n.Name),
		TypeNamespace: n.TypeNamespace,
		Exported:      n.Exported,
		External:      n.External,
		Generic:       n.Generic,
		Instantiation: n.Instantiation,
		MangledKey:    n.MangledKey,
	}
	for _, r := range n.Receivers {
		clone.Receivers = append(clone.Receivers, &ast.Receiver{
			Position: r.Position,
			Name:     cloneIdent(r.Name),
			TypeAnn:  cloneType(r.TypeAnn),
		})
	}
	for _, p := range n.Params {
		clone.Params = append(clone.Params, &ast.Param{
			Position:   p.Position,
			Name:       cloneIdent(p.Name),
			TypeAnn:    cloneType(p.TypeAnn),
			Expression: p.Expression,
		})
	}
	for _, rt := range n.ReturnTypes {
		clone.ReturnTypes = append(clone.ReturnTypes, cloneType(rt))
	}
	clone.Body = cloneExpr(n.Body)
	return clone
}

func cloneIdent(n *ast.Identifier) *ast.Identifier {
	if n == nil {
		return nil
	}
	return &ast.Identifier{Position: n.Position, Name: n.Name}
}

func cloneType(t ast.Type) ast.Type {
	switch n := t.(type) {
	case nil:
		return nil
	case *ast.PrimitiveTypeAnn:
		c := *n
		return &c
	case *ast.ArrayTypeAnn:
		return &ast.ArrayTypeAnn{Position: n.Position, Elem: cloneType(n.Elem), Size: cloneExpr(n.Size)}
	case *ast.NamedTypeAnn:
		c := *n
		return &c
	default:
		return t
	}
}

func cloneExpr(e ast.Expression) ast.Expression {
	switch n := e.(type) {
	case nil:
		return nil
	case *ast.IntLiteral:
		c := *n
		return &c
	case *ast.FloatLiteral:
		c := *n
		return &c
	case *ast.StringLiteral:
		c := *n
		return &c
	case *ast.CharLiteral:
		c := *n
		return &c
	case *ast.Identifier:
		return cloneIdent(n)
	case *ast.BinaryExpression:
		return &ast.BinaryExpression{Position: n.Position, Operator: n.Operator, Left: cloneExpr(n.Left), Right: cloneExpr(n.Right)}
	case *ast.UnaryExpression:
		return &ast.UnaryExpression{Position: n.Position, Operator: n.Operator, Operand: cloneExpr(n.Operand)}
	case *ast.CallExpression:
		call := &ast.CallExpression{Position: n.Position, Callee: cloneExpr(n.Callee)}
		for _, r := range n.Receivers {
			call.Receivers = append(call.Receivers, cloneExpr(r))
		}
		for _, a := range n.Arguments {
			call.Arguments = append(call.Arguments, cloneExpr(a))
		}
		return call
	case *ast.IndexExpression:
		return &ast.IndexExpression{Position: n.Position, Left: cloneExpr(n.Left), Index: cloneExpr(n.Index)}
	case *ast.MemberExpression:
		return &ast.MemberExpression{Position: n.Position, Left: cloneExpr(n.Left), Member: cloneIdent(n.Member)}
	case *ast.ArrayLiteral:
		lit := &ast.ArrayLiteral{Position: n.Position}
		for _, el := range n.Elements {
			lit.Elements = append(lit.Elements, cloneExpr(el))
		}
		return lit
	case *ast.TupleLiteral:
		lit := &ast.TupleLiteral{Position: n.Position}
		for _, el := range n.Elements {
			lit.Elements = append(lit.Elements, cloneExpr(el))
		}
		return lit
	case *ast.BlockExpression:
		blk := &ast.BlockExpression{Position: n.Position, Trailing: cloneExpr(n.Trailing)}
		for _, s := range n.Statements {
			blk.Statements = append(blk.Statements, cloneStatement(s))
		}
		return blk
	case *ast.ConditionalExpression:
		return &ast.ConditionalExpression{Position: n.Position, Condition: cloneExpr(n.Condition), Then: cloneExpr(n.Then), Else: cloneExpr(n.Else)}
	case *ast.CastExpression:
		return &ast.CastExpression{Position: n.Position, Target: cloneType(n.Target), Operand: cloneExpr(n.Operand)}
	case *ast.AssignmentExpression:
		return &ast.AssignmentExpression{Position: n.Position, Target: cloneExpr(n.Target), Value: cloneExpr(n.Value), Introduces: n.Introduces}
	case *ast.RangeExpression:
		return &ast.RangeExpression{Position: n.Position, Low: cloneExpr(n.Low), High: cloneExpr(n.High)}
	case *ast.LengthExpression:
		return &ast.LengthExpression{Position: n.Position, Operand: cloneExpr(n.Operand)}
	case *ast.IterationExpression:
		return &ast.IterationExpression{Position: n.Position, Iterable: cloneExpr(n.Iterable), Binding: cloneIdent(n.Binding), Body: cloneExpr(n.Body), Sorted: n.Sorted}
	case *ast.RepeatExpression:
		return &ast.RepeatExpression{Position: n.Position, Condition: cloneExpr(n.Condition), Body: cloneExpr(n.Body)}
	case *ast.ResourceExpression:
		c := *n
		return &c
	case *ast.ProcessExpression:
		return &ast.ProcessExpression{Position: n.Position, Command: cloneExpr(n.Command)}
	default:
		return e
	}
}

func cloneStatement(s ast.Statement) ast.Statement {
	switch n := s.(type) {
	case nil:
		return nil
	case *ast.ExpressionStatement:
		return &ast.ExpressionStatement{Position: n.Position, Expression: cloneExpr(n.Expression)}
	case *ast.ReturnStatement:
		return &ast.ReturnStatement{Position: n.Position, Value: cloneExpr(n.Value)}
	case *ast.BreakStatement:
		c := *n
		return &c
	case *ast.ContinueStatement:
		c := *n
		return &c
	case *ast.VarDeclStatement:
		return &ast.VarDeclStatement{
			Position:    n.Position,
			Annotations: n.Annotations,
			Name:        cloneIdent(n.Name),
			TypeAnn:     cloneType(n.TypeAnn),
			Init:        cloneExpr(n.Init),
			Mutable:     n.Mutable,
			Exported:    n.Exported,
			Linkage:     n.Linkage,
		}
	case *ast.FuncDeclStatement:
		// A nested function/method declaration inside a generic body is
		// cloned like any other statement; it is never itself generic
		// (spec §4.3 "Generic functions may not be exported or external"
		// implies no nested generic declarations in this language).
		return cloneFuncDecl(n)
	case *ast.TypeDeclStatement:
		return n
	case *ast.ImportStatement:
		return n
	case *ast.ConditionalStatement:
		return &ast.ConditionalStatement{Position: n.Position, Condition: cloneExpr(n.Condition), Then: cloneStatement(n.Then)}
	default:
		return s
	}
}
