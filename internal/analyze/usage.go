package analyze

import (
	"github.com/vexel-lang/vexel/internal/ast"
	"github.com/vexel-lang/vexel/internal/symbols"
)

// usage implements spec §4.9 "Usage": starting from every reachable
// function's signature, mark transitively referenced type names and
// global variables; a type-decl's field types continue the walk, and a
// used global's own initializer re-enters the usage walk (so a global
// that references another global, or a type, pulls that in too).
func (a *Analyzer) usage(facts *Facts) {
	for key := range facts.ReachableFunctions {
		for _, recv := range key.Decl.Receivers {
			a.markTypeAnn(facts, recv.TypeAnn)
		}
		for _, p := range key.Decl.Params {
			if !p.Expression {
				a.markTypeAnn(facts, p.TypeAnn)
			}
		}
		for _, rt := range key.Decl.ReturnTypes {
			a.markTypeAnn(facts, rt)
		}
		if key.Decl.Body != nil {
			a.walkUsageExpr(facts, key.InstanceID, key.Decl.Body)
		}
	}
}

func (a *Analyzer) markTypeAnn(facts *Facts, t ast.Type) {
	switch n := t.(type) {
	case nil:
		return
	case *ast.NamedTypeAnn:
		if facts.UsedTypeNames[n.Name] {
			return
		}
		facts.UsedTypeNames[n.Name] = true
		a.markTypeFields(facts, n.Name)
	case *ast.ArrayTypeAnn:
		a.markTypeAnn(facts, n.Elem)
	}
}

// markTypeFields continues the usage walk through a named type's own
// field declarations, per spec §4.9 "Typedecl field types continue the
// walk".
func (a *Analyzer) markTypeFields(facts *Facts, name string) {
	for _, inst := range a.Prog.Instances {
		info := a.Prog.ModuleByID(inst.ModuleID)
		for _, stmt := range info.Module.Statements {
			td, ok := stmt.(*ast.TypeDeclStatement)
			if !ok || td.Name.Name != name {
				continue
			}
			for _, f := range td.Fields {
				a.markTypeAnn(facts, f.TypeAnn)
			}
		}
	}
}

// walkUsageExpr descends fn's body looking for identifier references
// to module-level globals; each first-seen used global re-enters the
// walk through its own initializer (spec §4.9 "Used globals'
// initializers re-enter the usage walk").
func (a *Analyzer) walkUsageExpr(facts *Facts, instanceID int, e ast.Expression) {
	if e == nil {
		return
	}
	if ident, ok := e.(*ast.Identifier); ok {
		a.markIfGlobal(facts, instanceID, ident)
	}
	for _, child := range childExprsOf(e) {
		a.walkUsageExpr(facts, instanceID, child)
	}
	for _, s := range childStmtsOf(e) {
		a.walkUsageStmt(facts, instanceID, s)
	}
	a.walkUsageExpr(facts, instanceID, trailingOf(e))
}

func (a *Analyzer) walkUsageStmt(facts *Facts, instanceID int, s ast.Statement) {
	switch n := s.(type) {
	case *ast.ExpressionStatement:
		a.walkUsageExpr(facts, instanceID, n.Expression)
	case *ast.ReturnStatement:
		a.walkUsageExpr(facts, instanceID, n.Value)
	case *ast.VarDeclStatement:
		a.walkUsageExpr(facts, instanceID, n.Init)
	case *ast.ConditionalStatement:
		a.walkUsageExpr(facts, instanceID, n.Condition)
		a.walkUsageStmt(facts, instanceID, n.Then)
	}
}

func (a *Analyzer) markIfGlobal(facts *Facts, instanceID int, ident *ast.Identifier) {
	sym, ok := a.Bindings.SymbolFor(instanceID, ident)
	if !ok || sym.Local {
		return
	}
	if sym.Kind != symbols.KindVariable && sym.Kind != symbols.KindConstant {
		return
	}
	if facts.UsedGlobalVars[sym] {
		return
	}
	facts.UsedGlobalVars[sym] = true
	for _, g := range a.globals {
		if g.decl.Name.Name == sym.Name && g.instanceID == sym.InstanceID && g.decl.Init != nil {
			a.walkUsageExpr(facts, g.instanceID, g.decl.Init)
		}
	}
}
