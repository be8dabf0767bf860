package analyze

// reachability implements spec §4.9 "Reachability": roots are every
// exported function plus every global whose initializer was *not*
// constexpr-evaluated (it still needs runtime code, so any function it
// calls must be emitted too). A worklist DFS over the calls collected
// by collectDeclsAndCalls closes the set under every callee key
// reachable from a root; externals are leaves and are never walked
// further.
func (a *Analyzer) reachability(facts *Facts) {
	var queue []FuncKey
	for key := range a.funcDecls {
		if key.Decl.Exported {
			queue = append(queue, key)
		}
	}
	for _, g := range a.globals {
		if !a.globalIsRuntime(g) {
			continue
		}
		for _, site := range a.globalCalls[g] {
			if !site.external {
				queue = append(queue, site.callee)
			}
		}
	}

	visited := map[FuncKey]bool{}
	for len(queue) > 0 {
		key := queue[0]
		queue = queue[1:]
		if visited[key] {
			continue
		}
		visited[key] = true
		facts.ReachableFunctions[key] = true
		for _, site := range a.calls[key] {
			if site.external {
				continue
			}
			if !visited[site.callee] {
				queue = append(queue, site.callee)
			}
		}
	}
}
