package analyze

// effects implements spec §4.9 "Effects": function_writes_global is a
// fixpoint closure (writes a non-local mutable binding directly, or
// calls an external, or calls another writer); function_is_pure is the
// dual closure requiring no writes, no unknown (external) calls, no
// mutating receivers, and every callee also pure.
func (a *Analyzer) effects(facts *Facts) {
	for key := range facts.ReachableFunctions {
		facts.FunctionWritesGlobal[key] = key.Decl.Body != nil && a.writesNonLocalMutableGlobal(facts, key)
	}

	for {
		progress := false
		for key := range facts.ReachableFunctions {
			if facts.FunctionWritesGlobal[key] {
				continue
			}
			for _, site := range a.calls[key] {
				if site.external {
					facts.FunctionWritesGlobal[key] = true
					progress = true
					break
				}
				if facts.FunctionWritesGlobal[site.callee] {
					facts.FunctionWritesGlobal[key] = true
					progress = true
					break
				}
			}
		}
		if !progress {
			break
		}
	}

	for key := range facts.ReachableFunctions {
		facts.FunctionIsPure[key] = a.computePurity(facts, key, map[FuncKey]bool{})
	}
}

// writesNonLocalMutableGlobal reports whether fn's body assigns
// through a module-level mutable var's symbol (the direct half of
// function_writes_global, before the external/transitive closure above).
func (a *Analyzer) writesNonLocalMutableGlobal(facts *Facts, fn FuncKey) bool {
	for _, g := range a.globals {
		if !g.decl.Mutable {
			continue
		}
		sym, ok := a.Bindings.SymbolFor(g.instanceID, g.decl.Name)
		if !ok {
			continue
		}
		if a.bodyAssignsSymbol(fn.InstanceID, fn.Decl.Body, sym) {
			return true
		}
	}
	return false
}

// computePurity is a recursion-guarded (cycle-safe) purity check: a
// function is pure iff it writes nothing, calls nothing external or
// receiver-mutating, and every function it calls is itself pure.
// Reachable-function sets are finite and call edges only form the
// ordinary call graph (no first-class function values per the AST),
// so a visited-set guard suffices for any recursive cycle.
func (a *Analyzer) computePurity(facts *Facts, key FuncKey, visiting map[FuncKey]bool) bool {
	if facts.FunctionWritesGlobal[key] {
		return false
	}
	if mutates := facts.ReceiverMutates[key]; mutatesAny(mutates) {
		return false
	}
	if visiting[key] {
		return true // cycle: assume pure pending the rest of the closure
	}
	visiting[key] = true
	for _, site := range a.calls[key] {
		if site.external {
			return false
		}
		if !a.computePurity(facts, site.callee, visiting) {
			return false
		}
	}
	return true
}

func mutatesAny(bs []bool) bool {
	for _, b := range bs {
		if b {
			return true
		}
	}
	return false
}
