package mono

import (
	"github.com/vexel-lang/vexel/internal/ast"
	"github.com/vexel-lang/vexel/internal/typesystem"
)

// typeToAnn converts a concrete semantic Type discovered at a generic
// call site back into a syntactic annotation, so a cloned receiver or
// parameter that started out untyped (spec §4.3 "a function is
// generic if any value parameter lacks an explicit type") can be given
// one before the clone is fed back to the resolver and checker.
func typeToAnn(t typesystem.Type) ast.Type {
	switch tt := t.(type) {
	case typesystem.Primitive:
		return &ast.PrimitiveTypeAnn{Kind: tt.Kind.String(), Width: tt.Width}
	case typesystem.Array:
		return &ast.ArrayTypeAnn{
			Elem: typeToAnn(tt.Elem),
			Size: &ast.IntLiteral{Value: uint64(tt.Size)},
		}
	case typesystem.Named:
		return &ast.NamedTypeAnn{Name: tt.Name}
	default:
		return nil
	}
}

// substituteSignature fills every untyped receiver and every untyped
// non-expression parameter on clone with the concrete type discovered
// at the originating call site, in receiver-then-parameter order
// (matching how PendingInstantiation.ArgTypes was built in
// internal/typecheck.checkGenericCall). Return slots are not touched;
// the checker infers them from the body once the clone is type-checked.
func substituteSignature(clone *ast.FuncDeclStatement, argTypes []typesystem.Type) {
	i := 0
	for _, r := range clone.Receivers {
		if i >= len(argTypes) {
			break
		}
		if r.TypeAnn == nil {
			r.TypeAnn = typeToAnn(argTypes[i])
		}
		i++
	}
	for _, p := range clone.Params {
		if i >= len(argTypes) {
			break
		}
		if p.TypeAnn == nil && !p.Expression {
			p.TypeAnn = typeToAnn(argTypes[i])
		}
		i++
	}
}
