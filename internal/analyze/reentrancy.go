package analyze

import (
	"github.com/vexel-lang/vexel/internal/ast"
	"github.com/vexel-lang/vexel/internal/diagnostics"
)

// reentrancy implements spec §4.9 "Reentrancy": each reachable function
// gets a non-empty subset of {R, N}. An explicit [[reentrant]] or
// [[nonreentrant]] annotation seeds the function's own set directly
// (conflicting annotations on the same declaration are a hard error);
// otherwise it inherits every context its callers were analyzed under.
// A non-constexpr global initializer's call sites are always analyzed
// in context N (spec: "force N onto every function they call
// transitively"). The pass is a fixpoint: entries keep propagating
// along the call graph until a round adds nothing.
func (a *Analyzer) reentrancy(facts *Facts) {
	for key := range facts.ReachableFunctions {
		facts.ReentrancyVariants[key] = map[Reentrancy]bool{}
		if hasAnnotation(key.Decl, "reentrant") && hasAnnotation(key.Decl, "nonreentrant") {
			a.report(diagnostics.New(diagnostics.PhaseAnalyze, diagnostics.ErrAnalyzeConflict, key.Decl.Pos(), key.Decl.QualifiedName()))
		}
	}

	seed := func(key FuncKey, ctx Reentrancy) bool {
		if _, ok := facts.ReachableFunctions[key]; !ok {
			return false
		}
		set := facts.ReentrancyVariants[key]
		if set[ctx] {
			return false
		}
		set[ctx] = true
		return true
	}

	// Entry seeding: an exported function explicitly annotated carries
	// that context; an unannotated exported function (an entry point)
	// seeds from the backend's default_entry_reentrancy.
	for key := range facts.ReachableFunctions {
		if !key.Decl.Exported {
			continue
		}
		switch {
		case hasAnnotation(key.Decl, "reentrant"):
			seed(key, R)
		case hasAnnotation(key.Decl, "nonreentrant"):
			seed(key, N)
		default:
			seed(key, a.Defaults.DefaultEntryReentrancy)
		}
	}

	for {
		progress := false
		for key := range facts.ReachableFunctions {
			ctxs := facts.ReentrancyVariants[key]
			for _, site := range a.calls[key] {
				if site.external {
					continue
				}
				for ctx := range ctxs {
					calleeCtx := ctx
					if hasAnnotation(site.callee.Decl, "reentrant") {
						calleeCtx = R
					} else if hasAnnotation(site.callee.Decl, "nonreentrant") {
						calleeCtx = N
					}
					if seed(site.callee, calleeCtx) {
						progress = true
					}
				}
			}
		}
		for _, g := range a.globals {
			if !a.globalIsRuntime(g) {
				continue
			}
			for _, site := range a.globalCalls[g] {
				if !site.external && seed(site.callee, N) {
					progress = true
				}
			}
		}
		if !progress {
			break
		}
	}

	a.checkReentrancyBoundaries(facts)
}

// checkReentrancyBoundaries implements the hard error case: a call
// site reached in context R targeting a nonreentrant external is
// rejected at the caller's site (spec §4.9 "If a path in context R
// calls a non-reentrant external, that is a hard error").
func (a *Analyzer) checkReentrancyBoundaries(facts *Facts) {
	for key := range facts.ReachableFunctions {
		ctxs := facts.ReentrancyVariants[key]
		if !ctxs[R] {
			continue
		}
		if key.Decl.Body == nil {
			continue
		}
		collectCallsInExpr(key.Decl.Body, func(call *ast.CallExpression) {
			site := a.classifyCall(key.InstanceID, key, call)
			if !site.external {
				return
			}
			if a.boundaryIsNonreentrant(site.extName) {
				a.report(diagnostics.New(diagnostics.PhaseAnalyze, diagnostics.ErrAnalyzeReentrancy, key.Decl.Pos(), site.extName))
			}
		})
	}
}

// boundaryIsNonreentrant reports whether the named external symbol was
// declared [[nonreentrant]]; an external with no annotation is assumed
// reentrant-safe (conservatively permissive, since the backend's own
// default_exit_reentrancy only governs entries this frontend doesn't
// itself synthesize).
func (a *Analyzer) boundaryIsNonreentrant(name string) bool {
	for key := range a.funcDecls {
		if !key.Decl.External {
			continue
		}
		if key.Decl.QualifiedName() == name && hasAnnotation(key.Decl, "nonreentrant") {
			return true
		}
	}
	return false
}

func (a *Analyzer) report(d *diagnostics.DiagnosticError) {
	if a.Sink != nil {
		a.Sink.Report(d)
	}
}
