package analyze

import (
	"github.com/vexel-lang/vexel/internal/ast"
	"github.com/vexel-lang/vexel/internal/optimize"
	"github.com/vexel-lang/vexel/internal/symbols"
)

// mutability implements spec §4.9 "Mutability": a fixpoint over
// receiver_mutates (a receiver is mutable if the body ever writes
// through it directly, or forwards it as the i-th receiver to a callee
// whose position i is already known mutable), plus a direct,
// non-fixpoint classification of every var-decl into
// Constexpr/NonMutableRuntime/Mutable.
func (a *Analyzer) mutability(facts *Facts) {
	for key := range facts.ReachableFunctions {
		facts.ReceiverMutates[key] = make([]bool, len(key.Decl.Receivers))
		if key.Decl.External {
			// Externals without bodies conservatively assume all
			// receivers mutate (spec §4.9).
			for i := range facts.ReceiverMutates[key] {
				facts.ReceiverMutates[key][i] = true
			}
		}
	}

	for {
		progress := false
		for key := range facts.ReachableFunctions {
			if key.Decl.Body == nil || key.Decl.External {
				continue
			}
			mutates := facts.ReceiverMutates[key]
			for i, recv := range key.Decl.Receivers {
				if mutates[i] {
					continue
				}
				if bodyWritesThrough(key.Decl.Body, recv.Name.Name) || a.forwardsMutableReceiver(facts, key, i, recv.Name.Name) {
					mutates[i] = true
					progress = true
				}
			}
		}
		if !progress {
			break
		}
	}

	a.classifyVarMutability(facts)
}

// forwardsMutableReceiver reports whether fn's body ever passes its
// i-th receiver (by name) as the j-th receiver of a call whose callee
// position j is already known mutable.
func (a *Analyzer) forwardsMutableReceiver(facts *Facts, fn FuncKey, i int, name string) bool {
	found := false
	collectCallsInExpr(fn.Decl.Body, func(call *ast.CallExpression) {
		if found {
			return
		}
		site := a.classifyCall(fn.InstanceID, fn, call)
		if site.external {
			return
		}
		calleeMutates, ok := facts.ReceiverMutates[site.callee]
		if !ok {
			return
		}
		for j, r := range call.Receivers {
			ident, ok := r.(*ast.Identifier)
			if !ok || ident.Name != name {
				continue
			}
			if j < len(calleeMutates) && calleeMutates[j] {
				found = true
			}
		}
	})
	return found
}

// bodyWritesThrough reports whether body contains an assignment, index
// write, or member write whose target chain is rooted at the named
// identifier.
func bodyWritesThrough(body ast.Expression, name string) bool {
	found := false
	var walkExpr func(e ast.Expression)
	var walkStmt func(s ast.Statement)

	rootedAt := func(target ast.Expression) bool {
		for {
			switch n := target.(type) {
			case *ast.Identifier:
				return n.Name == name
			case *ast.IndexExpression:
				target = n.Left
			case *ast.MemberExpression:
				target = n.Left
			default:
				return false
			}
		}
	}

	walkExpr = func(e ast.Expression) {
		if e == nil || found {
			return
		}
		if asn, ok := e.(*ast.AssignmentExpression); ok {
			if rootedAt(asn.Target) {
				found = true
				return
			}
		}
		switch n := e.(type) {
		case *ast.BinaryExpression:
			walkExpr(n.Left)
			walkExpr(n.Right)
		case *ast.UnaryExpression:
			walkExpr(n.Operand)
		case *ast.CallExpression:
			for _, r := range n.Receivers {
				walkExpr(r)
			}
			for _, arg := range n.Arguments {
				walkExpr(arg)
			}
		case *ast.IndexExpression:
			walkExpr(n.Left)
			walkExpr(n.Index)
		case *ast.MemberExpression:
			walkExpr(n.Left)
		case *ast.ArrayLiteral:
			for _, el := range n.Elements {
				walkExpr(el)
			}
		case *ast.TupleLiteral:
			for _, el := range n.Elements {
				walkExpr(el)
			}
		case *ast.BlockExpression:
			for _, s := range n.Statements {
				walkStmt(s)
			}
			walkExpr(n.Trailing)
		case *ast.ConditionalExpression:
			walkExpr(n.Condition)
			walkExpr(n.Then)
			walkExpr(n.Else)
		case *ast.CastExpression:
			walkExpr(n.Operand)
		case *ast.AssignmentExpression:
			walkExpr(n.Target)
			walkExpr(n.Value)
		case *ast.RangeExpression:
			walkExpr(n.Low)
			walkExpr(n.High)
		case *ast.LengthExpression:
			walkExpr(n.Operand)
		case *ast.IterationExpression:
			walkExpr(n.Iterable)
			walkExpr(n.Body)
		case *ast.RepeatExpression:
			walkExpr(n.Condition)
			walkExpr(n.Body)
		case *ast.ProcessExpression:
			walkExpr(n.Command)
		}
	}

	walkStmt = func(s ast.Statement) {
		if found {
			return
		}
		switch n := s.(type) {
		case *ast.ExpressionStatement:
			walkExpr(n.Expression)
		case *ast.ReturnStatement:
			walkExpr(n.Value)
		case *ast.VarDeclStatement:
			walkExpr(n.Init)
		case *ast.ConditionalStatement:
			walkExpr(n.Condition)
			walkStmt(n.Then)
		}
	}

	walkExpr(body)
	return found
}

// classifyVarMutability implements the per-variable half of spec §4.9
// "Mutability": Mutable if declared mutable AND ever written (observed
// anywhere this var-decl's symbol is the target of an assignment
// within any function body); Constexpr if its initializer
// evaluated at compile time or is a literal array; otherwise
// NonMutableRuntime.
func (a *Analyzer) classifyVarMutability(facts *Facts) {
	for _, inst := range a.Prog.Instances {
		info := a.Prog.ModuleByID(inst.ModuleID)
		a.classifyVarsInStmts(facts, inst.ID, info.Module.Statements)
	}
}

func (a *Analyzer) classifyVarsInStmts(facts *Facts, instanceID int, stmts []ast.Statement) {
	for _, s := range stmts {
		switch n := s.(type) {
		case *ast.VarDeclStatement:
			facts.VarMutability[n] = a.classifyOneVar(instanceID, n)
		case *ast.FuncDeclStatement:
			a.classifyVarsInExpr(facts, instanceID, n.Body)
		case *ast.ConditionalStatement:
			a.classifyVarsInStmts(facts, instanceID, []ast.Statement{n.Then})
		}
	}
}

// classifyVarsInExpr continues the var-decl walk into every nested
// block-shaped expression (loop/conditional/repeat bodies), since
// nothing prevents a var-decl statement from appearing inside one even
// though the ordinary local-variable idiom is assignment (spec §4.2
// step 3).
func (a *Analyzer) classifyVarsInExpr(facts *Facts, instanceID int, e ast.Expression) {
	if e == nil {
		return
	}
	a.classifyVarsInStmts(facts, instanceID, childStmtsOf(e))
	for _, child := range childExprsOf(e) {
		a.classifyVarsInExpr(facts, instanceID, child)
	}
	a.classifyVarsInExpr(facts, instanceID, trailingOf(e))
}

func (a *Analyzer) classifyOneVar(instanceID int, decl *ast.VarDeclStatement) VarMutability {
	if decl.Mutable && a.symbolEverWritten(instanceID, decl.Name) {
		return Mutable
	}
	if decl.Init != nil {
		if _, ok := a.Opt.Stable(optimize.Key{InstanceID: instanceID, Expr: decl.Init}); ok {
			return Constexpr
		}
		if _, ok := decl.Init.(*ast.ArrayLiteral); ok {
			return Constexpr
		}
	}
	return NonMutableRuntime
}

// symbolEverWritten reports whether the symbol bound to name's
// declaration is ever the target of an assignment anywhere in the
// program's function bodies — the "AND ever written" half of spec
// §4.9's Mutable rule.
func (a *Analyzer) symbolEverWritten(instanceID int, name *ast.Identifier) bool {
	sym, ok := a.Bindings.SymbolFor(instanceID, name)
	if !ok {
		return false
	}
	for key := range a.funcDecls {
		if key.Decl.Body == nil {
			continue
		}
		if a.bodyAssignsSymbol(key.InstanceID, key.Decl.Body, sym) {
			return true
		}
	}
	return false
}

// bodyAssignsSymbol reports whether body contains an assignment whose
// target identifier (at any depth of an index/member chain's root)
// is bound to sym.
func (a *Analyzer) bodyAssignsSymbol(instanceID int, body ast.Expression, sym *symbols.Symbol) bool {
	found := false
	rootIdent := func(target ast.Expression) *ast.Identifier {
		for {
			switch n := target.(type) {
			case *ast.Identifier:
				return n
			case *ast.IndexExpression:
				target = n.Left
			case *ast.MemberExpression:
				target = n.Left
			default:
				return nil
			}
		}
	}
	var walkExpr func(e ast.Expression)
	var walkStmt func(s ast.Statement)

	walkExpr = func(e ast.Expression) {
		if e == nil || found {
			return
		}
		if asn, ok := e.(*ast.AssignmentExpression); ok {
			if ident := rootIdent(asn.Target); ident != nil {
				if s, ok := a.Bindings.SymbolFor(instanceID, ident); ok && s == sym {
					found = true
					return
				}
			}
		}
		for _, child := range childExprsOf(e) {
			walkExpr(child)
		}
		for _, s := range childStmtsOf(e) {
			walkStmt(s)
		}
		walkExpr(trailingOf(e))
	}
	walkStmt = func(s ast.Statement) {
		if found {
			return
		}
		switch n := s.(type) {
		case *ast.ExpressionStatement:
			walkExpr(n.Expression)
		case *ast.ReturnStatement:
			walkExpr(n.Value)
		case *ast.VarDeclStatement:
			walkExpr(n.Init)
		case *ast.ConditionalStatement:
			walkExpr(n.Condition)
			walkStmt(n.Then)
		}
	}
	walkExpr(body)
	return found
}

// childExprsOf, childStmtsOf, trailingOf mirror internal/optimize's
// collect.go helpers of the same shape, duplicated here since the two
// packages' walks serve different predicates and neither should import
// the other just for tree-shape glue.
func childExprsOf(e ast.Expression) []ast.Expression {
	switch n := e.(type) {
	case *ast.BinaryExpression:
		return []ast.Expression{n.Left, n.Right}
	case *ast.UnaryExpression:
		return []ast.Expression{n.Operand}
	case *ast.CallExpression:
		out := append([]ast.Expression{}, n.Receivers...)
		out = append(out, n.Arguments...)
		return out
	case *ast.IndexExpression:
		return []ast.Expression{n.Left, n.Index}
	case *ast.MemberExpression:
		return []ast.Expression{n.Left}
	case *ast.ArrayLiteral:
		return n.Elements
	case *ast.TupleLiteral:
		return n.Elements
	case *ast.ConditionalExpression:
		out := []ast.Expression{n.Condition, n.Then}
		if n.Else != nil {
			out = append(out, n.Else)
		}
		return out
	case *ast.CastExpression:
		return []ast.Expression{n.Operand}
	case *ast.AssignmentExpression:
		return []ast.Expression{n.Target, n.Value}
	case *ast.RangeExpression:
		return []ast.Expression{n.Low, n.High}
	case *ast.LengthExpression:
		return []ast.Expression{n.Operand}
	case *ast.IterationExpression:
		return []ast.Expression{n.Iterable}
	case *ast.RepeatExpression:
		return []ast.Expression{n.Condition}
	case *ast.ProcessExpression:
		return []ast.Expression{n.Command}
	default:
		return nil
	}
}

func childStmtsOf(e ast.Expression) []ast.Statement {
	switch n := e.(type) {
	case *ast.BlockExpression:
		return n.Statements
	case *ast.IterationExpression:
		if b, ok := n.Body.(*ast.BlockExpression); ok {
			return b.Statements
		}
	case *ast.RepeatExpression:
		if b, ok := n.Body.(*ast.BlockExpression); ok {
			return b.Statements
		}
	}
	return nil
}

func trailingOf(e ast.Expression) ast.Expression {
	switch n := e.(type) {
	case *ast.BlockExpression:
		return n.Trailing
	case *ast.IterationExpression:
		if b, ok := n.Body.(*ast.BlockExpression); ok {
			return b.Trailing
		}
	case *ast.RepeatExpression:
		if b, ok := n.Body.(*ast.BlockExpression); ok {
			return b.Trailing
		}
	}
	return nil
}
