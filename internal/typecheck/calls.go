package typecheck

import (
	"strings"

	"github.com/vexel-lang/vexel/internal/ast"
	"github.com/vexel-lang/vexel/internal/diagnostics"
	"github.com/vexel-lang/vexel/internal/symbols"
	"github.com/vexel-lang/vexel/internal/typesystem"
)

// checkCall implements spec §4.3 "Calls": receivers evaluate
// left-to-right, then arguments left-to-right; a method-style call on a
// named-type receiver is rewritten to `TypeName::f`; multi-receiver
// calls require every receiver to be a bare identifier; a generic
// target is queued for monomorphization rather than checked in place.
func (c *Checker) checkCall(n *ast.CallExpression) typesystem.Type {
	recvTypes := make([]typesystem.Type, len(n.Receivers))
	for i, r := range n.Receivers {
		recvTypes[i] = c.checkExpr(r, nil)
	}
	if len(n.Receivers) > 1 {
		for _, r := range n.Receivers {
			if _, ok := r.(*ast.Identifier); !ok {
				c.report(diagnostics.New(diagnostics.PhaseTypeCheck, diagnostics.ErrTypeGeneric, n.Pos(), "multi-receiver calls require every receiver to be a bare identifier"))
				break
			}
		}
	}

	sym, decl := c.resolveCallTarget(n, recvTypes)
	if sym == nil || decl == nil {
		argTypes := make([]typesystem.Type, len(n.Arguments))
		for i, a := range n.Arguments {
			argTypes[i] = c.checkExpr(a, nil)
		}
		t := c.freshTVar()
		n.SetExprType(t)
		return t
	}

	if len(n.Receivers) != len(decl.Receivers) {
		c.report(diagnostics.New(diagnostics.PhaseTypeCheck, diagnostics.ErrTypeArity, n.Pos(), len(decl.Receivers), len(n.Receivers)))
	}
	if len(n.Arguments) != len(decl.Params) {
		c.report(diagnostics.New(diagnostics.PhaseTypeCheck, diagnostics.ErrTypeArity, n.Pos(), len(decl.Params), len(n.Arguments)))
	}

	argTypes := make([]typesystem.Type, len(n.Arguments))
	for i, a := range n.Arguments {
		var expected typesystem.Type
		if i < len(decl.Params) && !decl.Params[i].Expression && decl.Params[i].TypeAnn != nil {
			expected = c.resolveTypeAnn(decl.Params[i].TypeAnn)
		}
		argTypes[i] = c.checkExpr(a, expected)
	}

	if decl.Generic {
		return c.checkGenericCall(n, decl, recvTypes, argTypes)
	}

	for i, rt := range recvTypes {
		if i >= len(decl.Receivers) {
			break
		}
		want := c.resolveTypeAnn(decl.Receivers[i].TypeAnn)
		if _, err := typesystem.Unify(want, rt); err != nil {
			c.report(diagnostics.New(diagnostics.PhaseTypeCheck, diagnostics.ErrTypeUnify, n.Pos(), typeName(want), typeName(rt)))
		}
	}
	for i, at := range argTypes {
		if i >= len(decl.Params) || decl.Params[i].Expression {
			continue
		}
		want := c.resolveTypeAnn(decl.Params[i].TypeAnn)
		if _, err := typesystem.Unify(want, at); err != nil {
			c.report(diagnostics.New(diagnostics.PhaseTypeCheck, diagnostics.ErrTypeUnify, n.Pos(), typeName(want), typeName(at)))
		}
	}

	result := c.callResultType(decl)
	n.SetExprType(result)
	return result
}

func (c *Checker) callResultType(decl *ast.FuncDeclStatement) typesystem.Type {
	switch len(decl.ReturnTypes) {
	case 0:
		return nil
	case 1:
		return c.resolveTypeAnn(decl.ReturnTypes[0])
	default:
		rts := make([]typesystem.Type, 0, len(decl.ReturnTypes))
		for _, rt := range decl.ReturnTypes {
			rts = append(rts, c.resolveTypeAnn(rt))
		}
		return c.registerTuple(rts)
	}
}

// resolveCallTarget finds the declaration a call targets. A call whose
// Callee the resolver already bound (a bare free-function reference, an
// explicit `#TypeName::method` reference, or an operator-method
// rewrite's synthesized Callee) uses that binding directly. Otherwise
// the call is dot-call method sugar `(recv...).f(args)`: the checker
// looks up `TypeName::f` against the first receiver's named type, the
// resolution spec §4.3 describes as "the checker rewrites the callee to
// TypeName::f".
func (c *Checker) resolveCallTarget(n *ast.CallExpression, recvTypes []typesystem.Type) (*symbols.Symbol, *ast.FuncDeclStatement) {
	ident, isIdent := n.Callee.(*ast.Identifier)
	if !isIdent {
		return nil, nil
	}

	if sym, ok := c.Bindings.SymbolFor(c.curInstance, ident); ok {
		decl, _ := sym.Decl.(*ast.FuncDeclStatement)
		return sym, decl
	}

	if len(recvTypes) == 0 {
		c.report(diagnostics.New(diagnostics.PhaseTypeCheck, diagnostics.ErrResolveUndefined, n.Pos(), ident.Name))
		return nil, nil
	}
	named, ok := recvTypes[0].(typesystem.Named)
	if !ok {
		c.report(diagnostics.New(diagnostics.PhaseTypeCheck, diagnostics.ErrTypeMismatch, n.Pos(), "named-type receiver", typeName(recvTypes[0])))
		return nil, nil
	}
	qualified := named.Name + "::" + ident.Name
	inst := c.Prog.Instance(c.curInstance)
	sym, ok := inst.Scope.Lookup(qualified)
	if !ok {
		c.report(diagnostics.New(diagnostics.PhaseTypeCheck, diagnostics.ErrResolveUndefined, n.Pos(), qualified))
		return nil, nil
	}
	c.Bindings.Bind(c.curInstance, ident, sym)
	decl, _ := sym.Decl.(*ast.FuncDeclStatement)
	return sym, decl
}

// checkGenericCall implements spec §4.3/§4.4's generic call-site
// protocol: build a full-signature mangled name from the receiver and
// argument types, dedupe against previously queued instantiations, and
// queue a PendingInstantiation for internal/mono to materialize. The
// call expression's own type is a placeholder type variable until mono
// clones, resolves, and type-checks the concrete body and fixes up the
// call site's recorded type (mono.go).
func (c *Checker) checkGenericCall(n *ast.CallExpression, decl *ast.FuncDeclStatement, recvTypes, argTypes []typesystem.Type) typesystem.Type {
	allArgs := make([]typesystem.Type, 0, len(recvTypes)+len(argTypes))
	allArgs = append(allArgs, recvTypes...)
	allArgs = append(allArgs, argTypes...)
	mangled := mangleInstantiation(decl.QualifiedName(), allArgs)

	placeholder := c.freshTVar()
	n.SetExprType(placeholder)

	if !c.instantiatedKeys[mangled] {
		c.instantiatedKeys[mangled] = true
		c.Pending = append(c.Pending, &PendingInstantiation{
			Generic:     decl,
			InstanceID:  c.curInstance,
			ArgTypes:    allArgs,
			MangledName: mangled,
			CallSite:    n,
		})
	}
	return placeholder
}

// mangleInstantiation builds the unique instantiation name (for
// example "add_i32_i32"): the qualified generic name followed by one
// sanitized type-name segment per receiver/argument, in order.
// Distinct array shapes (length included) therefore mangle distinctly.
func mangleInstantiation(qualifiedName string, argTypes []typesystem.Type) string {
	parts := make([]string, 0, len(argTypes)+1)
	parts = append(parts, sanitizeMangle(qualifiedName))
	for _, t := range argTypes {
		parts = append(parts, sanitizeMangle(typeName(t)))
	}
	return strings.Join(parts, "_")
}

func sanitizeMangle(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
