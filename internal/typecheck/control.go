package typecheck

import (
	"github.com/vexel-lang/vexel/internal/ast"
	"github.com/vexel-lang/vexel/internal/diagnostics"
	"github.com/vexel-lang/vexel/internal/symbols"
	"github.com/vexel-lang/vexel/internal/typesystem"
)

func (c *Checker) checkBlock(n *ast.BlockExpression, expected typesystem.Type) typesystem.Type {
	for _, s := range n.Statements {
		c.checkStmt(s)
	}
	if n.Trailing == nil {
		return nil
	}
	t := c.checkExpr(n.Trailing, expected)
	n.SetExprType(t)
	return t
}

func (c *Checker) checkStmt(stmt ast.Statement) {
	switch n := stmt.(type) {
	case *ast.ExpressionStatement:
		c.checkExpr(n.Expression, nil)
	case *ast.ReturnStatement:
		c.checkReturn(n)
	case *ast.BreakStatement, *ast.ContinueStatement:
	case *ast.VarDeclStatement:
		c.checkLocalVarDecl(n)
	case *ast.FuncDeclStatement:
		if !n.Generic {
			c.checkFuncDecl(n)
		}
	case *ast.TypeDeclStatement:
	case *ast.ImportStatement:
	case *ast.ConditionalStatement:
		c.checkConditionalStatement(n)
	}
}

func (c *Checker) checkReturn(n *ast.ReturnStatement) {
	if n.Value == nil {
		return
	}
	var expected typesystem.Type
	if len(c.curReturn) == 1 {
		expected = c.curReturn[0]
	}
	c.checkExpr(n.Value, expected)
}

// checkLocalVarDecl type-checks a block-local `var` declaration (spec
// §4.2 "the only declaration form for a named variable" at the
// statement level — block-locals may also arise from a bare
// assignment, handled in checkAssignment). Strictness level 1/2
// requires an explicit annotation here (spec §9 Open Question).
func (c *Checker) checkLocalVarDecl(n *ast.VarDeclStatement) {
	var declared typesystem.Type
	if n.TypeAnn != nil {
		declared = c.resolveTypeAnn(n.TypeAnn)
	} else if c.Strictness >= StrictnessRequireLocalAnnotations {
		c.report(diagnostics.New(diagnostics.PhaseTypeCheck, diagnostics.ErrTypeGeneric, n.Pos(), "local declaration requires an explicit type annotation at strictness level >= 1"))
	}
	initT := c.checkExpr(n.Init, declared)
	finalT := declared
	if finalT == nil {
		finalT = initT
	}
	if sym, ok := c.Bindings.SymbolFor(c.curInstance, n.Name); ok {
		sym.Type = finalT
		sym.Mutable = n.Mutable
	}
}

// checkGlobalVarDecl type-checks a top-level var declaration; exported
// or external globals must have a compile-time-constant, ABI-safe
// initializer (spec §4.3 "exported globals must be compile-time
// constant and ABI-safe").
func (c *Checker) checkGlobalVarDecl(n *ast.VarDeclStatement) {
	var declared typesystem.Type
	if n.TypeAnn != nil {
		declared = c.resolveTypeAnn(n.TypeAnn)
	}
	initT := c.checkExpr(n.Init, declared)
	finalT := declared
	if finalT == nil {
		finalT = initT
	}
	sym, ok := c.Bindings.SymbolFor(c.curInstance, n.Name)
	if ok {
		sym.Type = finalT
	}

	if n.Exported || n.Linkage == ast.LinkageExternalSymbol {
		if !typesystem.IsConcrete(finalT) {
			c.report(diagnostics.New(diagnostics.PhaseTypeCheck, diagnostics.ErrTypeUnresolved, n.Pos(), n.Name.Name))
		}
		if !c.isABISafe(finalT) {
			c.report(diagnostics.New(diagnostics.PhaseTypeCheck, diagnostics.ErrTypeABI, n.Pos(), typeName(finalT)))
		}
		if n.Init != nil {
			ev := c.newEvaluator()
			if _, ok := ev.TryEvaluate(n.Init); !ok {
				c.report(diagnostics.New(diagnostics.PhaseTypeCheck, diagnostics.ErrTypeGeneric, n.Pos(), "exported/external global initializer must be compile-time constant"))
			}
		}
	}
}

// isABISafe implements spec §3/§4.3's ABI-safe predicate: primitive, a
// fixed-size array of ABI-safe elements, or a named record recursively
// composed of ABI-safe fields. Tuple types and type variables are
// rejected (spec §4.3 "Tuple types and type variables are rejected at
// the ABI boundary").
func (c *Checker) isABISafe(t typesystem.Type) bool {
	switch tt := t.(type) {
	case typesystem.Primitive:
		return tt.IsResolved()
	case typesystem.Array:
		return tt.Resolved && c.isABISafe(tt.Elem)
	case typesystem.Named:
		if _, isTuple := c.TupleTypes[tt.Name]; isTuple {
			return false
		}
		decl := c.lookupTypeDecl(tt.Name)
		if decl == nil {
			return false
		}
		for _, f := range decl.Fields {
			if !c.isABISafe(c.resolveTypeAnn(f.TypeAnn)) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func (c *Checker) checkConditionalStatement(n *ast.ConditionalStatement) {
	c.checkExpr(n.Condition, nil)
	c.checkStmt(n.Then)
}

// checkConditionalExpr implements spec §4.3's dead-branch rule: if the
// condition is compile-time determinable, the dead branch is accepted
// with any type; otherwise both branches must share a common type.
func (c *Checker) checkConditionalExpr(n *ast.ConditionalExpression, expected typesystem.Type) typesystem.Type {
	c.checkExpr(n.Condition, nil)
	if n.Else == nil {
		// statement-position `cond ? stmt` form: no value.
		c.checkExpr(n.Then, nil)
		return nil
	}

	ev := c.newEvaluator()
	cond, isConst := ev.TryEvaluate(n.Condition)
	if isConst {
		b, ok := cond.AsBool()
		if ok {
			if b {
				tt := c.checkExpr(n.Then, expected)
				c.checkExpr(n.Else, nil) // dead branch: any type accepted
				n.SetExprType(tt)
				return tt
			}
			c.checkExpr(n.Then, nil) // dead branch
			ft := c.checkExpr(n.Else, expected)
			n.SetExprType(ft)
			return ft
		}
	}

	tt := c.checkExpr(n.Then, expected)
	ft := c.checkExpr(n.Else, expected)
	if _, err := typesystem.Unify(tt, ft); err != nil {
		c.report(diagnostics.New(diagnostics.PhaseTypeCheck, diagnostics.ErrTypeUnify, n.Pos(), typeName(tt), typeName(ft)))
	}
	n.SetExprType(tt)
	return tt
}

// checkAssignment implements spec §4.2 step 3 at the expression level:
// an unresolved plain-identifier target declares a new local (the
// resolver already marked assign.Introduces); any other target is
// type-checked against the existing symbol/slot type.
func (c *Checker) checkAssignment(n *ast.AssignmentExpression) typesystem.Type {
	valT := c.checkExpr(n.Value, nil)

	switch target := n.Target.(type) {
	case *ast.Identifier:
		sym, ok := c.Bindings.SymbolFor(c.curInstance, target)
		if ok {
			if sym.Type == nil || n.Introduces {
				sym.Type = valT
			}
			sym.Mutable = true
			target.SetExprType(sym.Type)
		}
	case *ast.IndexExpression, *ast.MemberExpression:
		c.checkExpr(target, nil)
	}
	n.SetExprType(nil)
	return nil
}

func (c *Checker) checkRepeat(n *ast.RepeatExpression) {
	c.checkExpr(n.Condition, typesystem.Bool())
	c.checkExpr(n.Body, nil)
}

// checkIteration implements spec §4.3's two iteration forms: a direct
// array/range iterable binds a read-only per-element local; a named
// iterable dispatches to T::@ / T::@@, which must take exactly one
// receiver and one expression parameter.
func (c *Checker) checkIteration(n *ast.IterationExpression) {
	iterT := c.checkExpr(n.Iterable, nil)

	var elemT typesystem.Type
	switch it := iterT.(type) {
	case typesystem.Array:
		elemT = it.Elem
	case typesystem.Named:
		methodName := "@"
		if n.Sorted {
			methodName = "@@"
		}
		qualified := it.Name + "::" + methodName
		inst := c.Prog.Instance(c.curInstance)
		sym, ok := inst.Scope.Lookup(qualified)
		if !ok {
			c.report(diagnostics.New(diagnostics.PhaseTypeCheck, diagnostics.ErrTypeIteration, n.Pos(), it.Name, methodName))
			elemT = c.freshTVar()
			break
		}
		decl, ok := sym.Decl.(*ast.FuncDeclStatement)
		if !ok || len(decl.Receivers) != 1 || len(decl.Params) != 1 {
			c.report(diagnostics.New(diagnostics.PhaseTypeCheck, diagnostics.ErrTypeIteration, n.Pos(), it.Name, methodName))
			elemT = c.freshTVar()
			break
		}
		// The receiver's own type annotation names the container (T),
		// not the per-element type T::@ binds its expression parameter
		// to internally. Force-check the method's body so its nested
		// iteration reports back the real element type onto the
		// expression parameter's symbol (see funcdecl.go), then read
		// that back instead of guessing from the receiver.
		c.ensureChecked(sym.InstanceID, decl)
		elemT = c.freshTVar()
		if paramSym, ok := c.Bindings.SymbolFor(sym.InstanceID, decl.Params[0].Name); ok && paramSym.Type != nil {
			elemT = paramSym.Type
		}
	default:
		c.report(diagnostics.New(diagnostics.PhaseTypeCheck, diagnostics.ErrTypeMismatch, n.Pos(), "array or iterable named type", typeName(iterT)))
		elemT = c.freshTVar()
	}

	if c.curExprParamName != "" {
		if id, ok := n.Body.(*ast.Identifier); ok && id.Name == c.curExprParamName {
			c.curExprParamElemT = elemT
		}
	}

	if n.Binding != nil {
		if sym, ok := c.Bindings.SymbolFor(c.curInstance, n.Binding); ok {
			sym.Type = elemT
		} else {
			c.Bindings.Bind(c.curInstance, n.Binding, &symbols.Symbol{Name: n.Binding.Name, Kind: symbols.KindVariable, Type: elemT})
		}
	}
	c.checkExpr(n.Body, nil)
}
