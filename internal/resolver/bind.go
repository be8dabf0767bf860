package resolver

import (
	"github.com/vexel-lang/vexel/internal/ast"
	"github.com/vexel-lang/vexel/internal/diagnostics"
	"github.com/vexel-lang/vexel/internal/modules"
	"github.com/vexel-lang/vexel/internal/symbols"
)

// bindStatement walks one statement, binding every identifier and type
// reference it contains to a Symbol, opening child scopes for function
// bodies and blocks, and recursively resolving import statements.
func (r *Resolver) bindStatement(inst *modules.ModuleInstance, stmt ast.Statement, scope *symbols.Scope) {
	switch n := stmt.(type) {
	case *ast.VarDeclStatement:
		r.validateAnnotations(n.Annotations, false, true)
		if n.TypeAnn != nil {
			r.bindTypeAnn(inst, n.TypeAnn, scope)
		}
		if n.Init != nil {
			r.bindExpr(inst, n.Init, scope)
		}

	case *ast.FuncDeclStatement:
		r.BindFuncDecl(inst, n, inst.Scope)

	case *ast.TypeDeclStatement:
		for _, f := range n.Fields {
			if f.TypeAnn != nil {
				r.bindTypeAnn(inst, f.TypeAnn, scope)
			}
		}

	case *ast.ImportStatement:
		r.bindImport(inst, n, scope)

	case *ast.ExpressionStatement:
		r.bindExpr(inst, n.Expression, scope)

	case *ast.ReturnStatement:
		if n.Value != nil {
			r.bindExpr(inst, n.Value, scope)
		}

	case *ast.ConditionalStatement:
		r.bindExpr(inst, n.Condition, scope)
		r.bindStatement(inst, n.Then, scope)

	case *ast.BreakStatement, *ast.ContinueStatement:
		// no identifiers to bind

	}
}

// BindFuncDecl binds one function/method declaration's receivers,
// parameters, return-type annotations, and body into a fresh child
// scope of parentScope. Exported so internal/mono can re-run the same
// binding logic on a monomorphizer-cloned generic body (spec §4.4
// "feeds the clone back to the resolver for local binding").
func (r *Resolver) BindFuncDecl(inst *modules.ModuleInstance, n *ast.FuncDeclStatement, parentScope *symbols.Scope) {
	r.validateAnnotations(n.Annotations, true, false)
	fnScope := symbols.NewScope(symbols.ScopeFunction, parentScope)
	for _, recv := range n.Receivers {
		sym := &symbols.Symbol{Name: recv.Name.Name, Kind: symbols.KindVariable, Decl: n, ModuleID: int(inst.ModuleID), InstanceID: inst.ID, Local: true, Mutable: true}
		if recv.TypeAnn != nil {
			r.bindTypeAnn(inst, recv.TypeAnn, fnScope)
		}
		if !fnScope.Define(recv.Name.Name, sym) {
			r.report(diagnostics.New(diagnostics.PhaseResolve, diagnostics.ErrResolveShadow, recv.Pos(), recv.Name.Name))
			continue
		}
		r.Bindings.Bind(inst.ID, recv.Name, sym)
	}
	for _, p := range n.Params {
		sym := &symbols.Symbol{Name: p.Name.Name, Kind: symbols.KindVariable, Decl: n, ModuleID: int(inst.ModuleID), InstanceID: inst.ID, Local: true}
		if p.TypeAnn != nil {
			r.bindTypeAnn(inst, p.TypeAnn, fnScope)
		}
		if !fnScope.Define(p.Name.Name, sym) {
			r.report(diagnostics.New(diagnostics.PhaseResolve, diagnostics.ErrResolveShadow, p.Pos(), p.Name.Name))
			continue
		}
		r.Bindings.Bind(inst.ID, p.Name, sym)
	}
	for _, rt := range n.ReturnTypes {
		r.bindTypeAnn(inst, rt, fnScope)
	}
	if n.Body != nil {
		r.bindExpr(inst, n.Body, fnScope)
	}
}

func (r *Resolver) bindExpr(inst *modules.ModuleInstance, expr ast.Expression, scope *symbols.Scope) {
	if expr == nil {
		return
	}
	switch n := expr.(type) {
	case *ast.Identifier:
		sym, ok := scope.Lookup(n.Name)
		if !ok {
			r.report(diagnostics.New(diagnostics.PhaseResolve, diagnostics.ErrResolveUndefined, n.Pos(), n.Name))
			return
		}
		r.Bindings.Bind(inst.ID, n, sym)

	case *ast.IntLiteral, *ast.FloatLiteral, *ast.StringLiteral, *ast.CharLiteral:
		// no identifiers

	case *ast.BinaryExpression:
		r.bindExpr(inst, n.Left, scope)
		r.bindExpr(inst, n.Right, scope)

	case *ast.UnaryExpression:
		r.bindExpr(inst, n.Operand, scope)

	case *ast.CallExpression:
		// A bare free-function call (no receivers) binds Callee like any
		// other identifier reference. A method call `(recv...).f(args)`
		// leaves Callee as an unbound bare name: the receiver's type
		// isn't known until the type checker runs, so only the checker
		// can resolve "f" against "TypeName::f" (spec §4.3 "the checker
		// rewrites the callee to TypeName::f").
		if len(n.Receivers) == 0 {
			r.bindExpr(inst, n.Callee, scope)
		}
		for _, recv := range n.Receivers {
			r.bindExpr(inst, recv, scope)
		}
		for _, a := range n.Arguments {
			r.bindExpr(inst, a, scope)
		}

	case *ast.IndexExpression:
		r.bindExpr(inst, n.Left, scope)
		r.bindExpr(inst, n.Index, scope)

	case *ast.MemberExpression:
		r.bindExpr(inst, n.Left, scope)
		// Member is resolved against Left's record type by the checker,
		// not against the lexical scope.

	case *ast.ArrayLiteral:
		for _, el := range n.Elements {
			r.bindExpr(inst, el, scope)
		}

	case *ast.TupleLiteral:
		for _, el := range n.Elements {
			r.bindExpr(inst, el, scope)
		}

	case *ast.BlockExpression:
		blockScope := symbols.NewScope(symbols.ScopeBlock, scope)
		for _, s := range n.Statements {
			r.bindStatement(inst, s, blockScope)
		}
		if n.Trailing != nil {
			r.bindExpr(inst, n.Trailing, blockScope)
		}

	case *ast.ConditionalExpression:
		r.bindExpr(inst, n.Condition, scope)
		r.bindExpr(inst, n.Then, scope)
		if n.Else != nil {
			r.bindExpr(inst, n.Else, scope)
		}

	case *ast.CastExpression:
		r.bindTypeAnn(inst, n.Target, scope)
		r.bindExpr(inst, n.Operand, scope)

	case *ast.AssignmentExpression:
		r.bindExpr(inst, n.Value, scope)
		r.bindAssignTarget(inst, n, scope)

	case *ast.RangeExpression:
		r.bindExpr(inst, n.Low, scope)
		r.bindExpr(inst, n.High, scope)

	case *ast.LengthExpression:
		r.bindExpr(inst, n.Operand, scope)

	case *ast.IterationExpression:
		r.bindExpr(inst, n.Iterable, scope)
		loopScope := symbols.NewScope(symbols.ScopeLoop, scope)
		if n.Binding != nil {
			sym := &symbols.Symbol{Name: n.Binding.Name, Kind: symbols.KindVariable, Decl: nil, ModuleID: int(inst.ModuleID), InstanceID: inst.ID, Local: true}
			if loopScope.Define(n.Binding.Name, sym) {
				r.Bindings.Bind(inst.ID, n.Binding, sym)
			}
		}
		r.bindExpr(inst, n.Body, loopScope)

	case *ast.RepeatExpression:
		r.bindExpr(inst, n.Condition, scope)
		r.bindExpr(inst, n.Body, scope)

	case *ast.ResourceExpression:
		// Path is a literal string, nothing to bind.

	case *ast.ProcessExpression:
		r.bindExpr(inst, n.Command, scope)
	}
}

// bindAssignTarget resolves the left-hand side of an assignment. A
// plain identifier that isn't already bound anywhere in the scope
// chain declares a new local variable in scope, per spec §4.2 step 3;
// any other target form (index, member) is bound normally, since only
// a bare identifier target can introduce a new binding.
func (r *Resolver) bindAssignTarget(inst *modules.ModuleInstance, assign *ast.AssignmentExpression, scope *symbols.Scope) {
	ident, ok := assign.Target.(*ast.Identifier)
	if !ok {
		r.bindExpr(inst, assign.Target, scope)
		return
	}
	if sym, found := scope.Lookup(ident.Name); found {
		r.Bindings.Bind(inst.ID, ident, sym)
		return
	}
	sym := &symbols.Symbol{
		Name:       ident.Name,
		Kind:       symbols.KindVariable,
		Mutable:    true,
		Decl:       assign,
		ModuleID:   int(inst.ModuleID),
		InstanceID: inst.ID,
		Local:      true,
	}
	scope.Define(ident.Name, sym)
	r.Bindings.Bind(inst.ID, ident, sym)
	assign.Introduces = true
	r.Bindings.MarkIntroducesVariable(inst.ID, assign)
}

// bindTypeAnn resolves a NamedTypeAnn to its declared type Symbol;
// PrimitiveTypeAnn and the element/size of ArrayTypeAnn recurse but
// never themselves reference the symbol table.
func (r *Resolver) bindTypeAnn(inst *modules.ModuleInstance, t ast.Type, scope *symbols.Scope) {
	switch n := t.(type) {
	case *ast.NamedTypeAnn:
		sym, ok := scope.Lookup(n.Name)
		if !ok {
			r.report(diagnostics.New(diagnostics.PhaseResolve, diagnostics.ErrResolveUndefined, n.Pos(), n.Name))
			return
		}
		r.Bindings.Bind(inst.ID, n, sym)
	case *ast.ArrayTypeAnn:
		r.bindTypeAnn(inst, n.Elem, scope)
		if n.Size != nil {
			r.bindExpr(inst, n.Size, scope)
		}
	case *ast.PrimitiveTypeAnn:
		// nothing to resolve
	}
}

// bindImport recursively resolves the module an import statement
// refers to into its own instance, then re-exports that instance's
// exported top-level symbols into scope under "alias::name" qualified
// names, since Vexel's four-kind Symbol model has no dedicated
// "module" kind to hang a namespace off of. Re-importing the same
// alias a second time in the same instance requires the same resolved
// path; a conflicting re-import is reported as ErrResolveReimport
// (spec §4.2 step 5).
func (r *Resolver) bindImport(inst *modules.ModuleInstance, imp *ast.ImportStatement, scope *symbols.Scope) {
	alias := modules.ImportAlias(imp.Segments)
	key := reimportKey{instanceID: inst.ID, alias: alias}

	info := r.Prog.ModuleByID(inst.ModuleID)
	path, ok := modules.ResolveImportPath(r.ProjectRoot, info.Path, imp.Segments)
	if !ok {
		r.report(diagnostics.New(diagnostics.PhaseResolve, diagnostics.ErrResolveUndefined, imp.Pos(), modules.JoinSegments(imp.Segments)))
		return
	}

	if existing, seen := r.reimports[key]; seen {
		if existingPath, _ := modules.ResolveImportPath(r.ProjectRoot, info.Path, existing.segments); existingPath != path {
			r.report(diagnostics.New(diagnostics.PhaseResolve, diagnostics.ErrResolveReimport, imp.Pos(), modules.JoinSegments(imp.Segments)))
		}
		return
	}
	r.reimports[key] = &reimportRecord{segments: imp.Segments, stmt: imp}

	if r.onStack[path] {
		r.report(diagnostics.New(diagnostics.PhaseResolve, diagnostics.ErrResolveCycle, imp.Pos(), path))
		return
	}

	targetInfo, ok := r.Prog.ModuleByPath(path)
	if !ok {
		r.report(diagnostics.New(diagnostics.PhaseResolve, diagnostics.ErrResolveUndefined, imp.Pos(), path))
		return
	}

	childScope := symbols.NewScope(symbols.ScopeModule, nil)
	child := r.Prog.NewInstance(targetInfo.ID, inst.ID, imp.Segments, childScope)
	r.resolveInstance(child.ID)

	for name, sym := range childScope.All() {
		if !sym.Exported {
			continue
		}
		qualified := alias + "::" + name
		scope.Define(qualified, sym)
	}
}
