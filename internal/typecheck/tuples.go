package typecheck

import (
	"github.com/vexel-lang/vexel/internal/ast"
	"github.com/vexel-lang/vexel/internal/typesystem"
)

// checkTupleLiteral synthesizes a globally registered tuple<N>_T1_T2_...
// type for a parenthesized multi-element expression (spec §4.3
// "Tuples"); members are selected by synthetic field name .__i.
func (c *Checker) checkTupleLiteral(n *ast.TupleLiteral) typesystem.Type {
	elemTypes := make([]typesystem.Type, 0, len(n.Elements))
	for _, el := range n.Elements {
		elemTypes = append(elemTypes, c.checkExpr(el, nil))
	}
	t := c.registerTuple(elemTypes)
	n.SetExprType(t)
	return t
}

// registerTuple records elemTypes under the canonical tuple<N>_... name
// the first time this exact shape is seen, and returns the Named type
// referencing it. Also used to desugar multi-return functions (spec
// §4.3 "Multi-return functions similarly use synthetic tuple types").
func (c *Checker) registerTuple(elemTypes []typesystem.Type) typesystem.Type {
	name := typesystem.TupleName(elemTypes)
	if _, ok := c.TupleTypes[name]; !ok {
		c.TupleTypes[name] = elemTypes
	}
	return typesystem.Named{Name: name}
}
