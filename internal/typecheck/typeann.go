package typecheck

import (
	"github.com/vexel-lang/vexel/internal/ast"
	"github.com/vexel-lang/vexel/internal/cte"
	"github.com/vexel-lang/vexel/internal/typesystem"
)

// resolveTypeAnn converts a syntactic internal/ast.Type annotation into
// a semantic internal/typesystem.Type, evaluating array-size expressions
// at compile time and canonicalizing them to an integer literal (spec
// §3 "Array ... canonicalized to an integer literal after validation").
func (c *Checker) resolveTypeAnn(t ast.Type) typesystem.Type {
	switch n := t.(type) {
	case nil:
		return c.freshTVar()
	case *ast.PrimitiveTypeAnn:
		return resolvePrimitiveAnn(n)
	case *ast.ArrayTypeAnn:
		elem := c.resolveTypeAnn(n.Elem)
		size, resolved := c.resolveArraySize(n.Size)
		return typesystem.Array{Elem: elem, Size: size, Resolved: resolved, SizeExpr: n.Size}
	case *ast.NamedTypeAnn:
		return typesystem.Named{Name: n.Name}
	default:
		return c.freshTVar()
	}
}

func resolvePrimitiveAnn(n *ast.PrimitiveTypeAnn) typesystem.Type {
	switch n.Kind {
	case "i":
		return typesystem.I(n.Width)
	case "u":
		return typesystem.U(n.Width)
	case "f16":
		return typesystem.F16()
	case "f32":
		return typesystem.F32()
	case "f64":
		return typesystem.F64()
	case "bool":
		return typesystem.Bool()
	case "string":
		return typesystem.Str()
	default:
		return typesystem.U(n.Width)
	}
}

// resolveArraySize evaluates a syntactic array-size expression at
// compile time; an unevaluable size (e.g. depends on a not-yet-known
// generic parameter) leaves the array unresolved for now — the checker
// revisits it once the surrounding context (e.g. a monomorphized clone)
// supplies a concrete value.
func (c *Checker) resolveArraySize(expr ast.Expression) (int64, bool) {
	if expr == nil {
		return 0, false
	}
	c.checkExpr(expr, nil)
	ev := c.newEvaluator()
	v, ok := ev.TryEvaluate(expr)
	if !ok {
		return 0, false
	}
	switch v.Kind {
	case cte.KindInt:
		return v.Int, true
	case cte.KindUint:
		return int64(v.Uint), true
	default:
		return 0, false
	}
}
