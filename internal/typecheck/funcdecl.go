package typecheck

import (
	"github.com/vexel-lang/vexel/internal/ast"
	"github.com/vexel-lang/vexel/internal/diagnostics"
	"github.com/vexel-lang/vexel/internal/token"
	"github.com/vexel-lang/vexel/internal/typesystem"
)

// checkFuncDecl type-checks one non-generic function or method
// declaration: resolves receiver/parameter/return annotations, binds
// them onto the already-predeclared Symbols, checks the body against
// the declared return type(s), and, for an exported or external
// declaration, enforces ABI-safety on every receiver/parameter/return
// slot (spec §4.3 "exported declarations must be ABI-safe at their
// boundary").
func (c *Checker) checkFuncDecl(n *ast.FuncDeclStatement) {
	if c.checked[n] {
		return
	}
	c.checked[n] = true

	savedReturn := c.curReturn
	defer func() { c.curReturn = savedReturn }()

	savedExprParamName, savedExprParamElemT := c.curExprParamName, c.curExprParamElemT
	c.curExprParamName, c.curExprParamElemT = "", nil
	var exprParam *ast.Param
	for _, p := range n.Params {
		if p.Expression {
			exprParam = p
			c.curExprParamName = p.Name.Name
			break
		}
	}
	defer func() { c.curExprParamName, c.curExprParamElemT = savedExprParamName, savedExprParamElemT }()

	recvTypes := make([]typesystem.Type, 0, len(n.Receivers))
	for _, recv := range n.Receivers {
		t := c.resolveTypeAnn(recv.TypeAnn)
		recvTypes = append(recvTypes, t)
		if sym, ok := c.Bindings.SymbolFor(c.curInstance, recv.Name); ok {
			sym.Type = t
			sym.Mutable = true
		}
	}

	paramTypes := make([]typesystem.Type, 0, len(n.Params))
	for _, p := range n.Params {
		var t typesystem.Type
		if p.Expression {
			// An expression parameter carries no runtime type of its own;
			// it substitutes the caller-side expression at each use site
			// during compile-time evaluation (spec §4.6).
			t = c.freshTVar()
		} else {
			t = c.resolveTypeAnn(p.TypeAnn)
		}
		paramTypes = append(paramTypes, t)
		if sym, ok := c.Bindings.SymbolFor(c.curInstance, p.Name); ok {
			sym.Type = t
		}
	}

	returnTypes := make([]typesystem.Type, 0, len(n.ReturnTypes))
	for _, rt := range n.ReturnTypes {
		returnTypes = append(returnTypes, c.resolveTypeAnn(rt))
	}
	c.curReturn = returnTypes

	if fnSym, ok := c.Bindings.SymbolFor(c.curInstance, n.Name); ok {
		fnSym.Type = c.funcType(recvTypes, paramTypes, returnTypes)
	}

	if n.Body != nil {
		var expected typesystem.Type
		if len(returnTypes) == 1 {
			expected = returnTypes[0]
		} else if len(returnTypes) > 1 {
			expected = c.registerTuple(returnTypes)
		}
		bodyT := c.checkExpr(n.Body, expected)
		if expected != nil && bodyT != nil {
			if _, err := typesystem.Unify(expected, bodyT); err != nil {
				c.report(diagnostics.New(diagnostics.PhaseTypeCheck, diagnostics.ErrTypeUnify, n.Pos(), typeName(expected), typeName(bodyT)))
			}
		}
	}

	// If a nested iteration inside this body evaluated its expression
	// parameter as the loop body, checkIteration recorded the
	// per-element type it bound `_` to; that is the real type of the
	// parameter (spec §4.3 "named iterables"), refining it past the
	// placeholder TVar assigned above.
	if exprParam != nil && c.curExprParamElemT != nil {
		if sym, ok := c.Bindings.SymbolFor(c.curInstance, exprParam.Name); ok {
			sym.Type = c.curExprParamElemT
		}
	}

	if n.Exported || n.External {
		for _, t := range recvTypes {
			c.requireABI(n.Pos(), t)
		}
		for i, p := range n.Params {
			if p.Expression {
				continue
			}
			c.requireABI(n.Pos(), paramTypes[i])
		}
		for _, t := range returnTypes {
			c.requireABI(n.Pos(), t)
		}
	}
}

// ensureChecked forces decl to be checked in instanceID's context if it
// hasn't run yet, so a caller that needs something only known after
// checking its body (checkIteration's named-iterable elemT lookup) can
// rely on it regardless of where decl sits in its module's declaration
// order.
func (c *Checker) ensureChecked(instanceID int, decl *ast.FuncDeclStatement) {
	if c.checked[decl] {
		return
	}
	saved := c.curInstance
	c.curInstance = instanceID
	defer func() { c.curInstance = saved }()
	c.checkFuncDecl(decl)
}

// CheckClone type-checks a monomorphizer-produced clone in the context
// of instanceID, the same way an ordinary non-generic declaration is
// checked. Exported so internal/mono can feed a cloned, substituted,
// re-bound generic body back into the checker (spec §4.3/§4.4).
func (c *Checker) CheckClone(instanceID int, clone *ast.FuncDeclStatement) {
	saved := c.curInstance
	c.curInstance = instanceID
	defer func() { c.curInstance = saved }()
	c.checkFuncDecl(clone)
}

// ResultType exposes callResultType so internal/mono can fix up a
// generic call site's placeholder type once the concrete clone's return
// types are known.
func (c *Checker) ResultType(decl *ast.FuncDeclStatement) typesystem.Type {
	return c.callResultType(decl)
}

func (c *Checker) requireABI(pos token.Position, t typesystem.Type) {
	if !typesystem.IsConcrete(t) {
		c.report(diagnostics.New(diagnostics.PhaseTypeCheck, diagnostics.ErrTypeUnresolved, pos, typeName(t)))
		return
	}
	if !c.isABISafe(t) {
		c.report(diagnostics.New(diagnostics.PhaseTypeCheck, diagnostics.ErrTypeABI, pos, typeName(t)))
	}
}

// funcType synthesizes a Named "func" type encoding a declaration's
// full signature, used only as the Symbol.Type recorded for a function
// name; call sites never unify against it directly (checkCall inspects
// the FuncDeclStatement itself), but other passes (e.g. the analyzer)
// can use it to describe a function value's shape.
func (c *Checker) funcType(recvs, params, rets []typesystem.Type) typesystem.Type {
	args := make([]typesystem.Type, 0, len(recvs)+len(params)+len(rets))
	args = append(args, recvs...)
	args = append(args, params...)
	args = append(args, rets...)
	return typesystem.Named{Name: "func", Args: args}
}
