package analyze

// refVariants implements spec §4.9 "Ref variants": for every call site
// targeting a reachable function, record the observed per-receiver M/N
// pattern; RefVariants[callee] is the closure (set) of every distinct
// pattern observed across all reachable call sites, spec GLOSSARY
// "Ref variant".
func (a *Analyzer) refVariants(facts *Facts) {
	for key := range facts.ReachableFunctions {
		facts.RefVariants[key] = map[string]bool{}
	}
	for caller := range facts.ReachableFunctions {
		for _, site := range a.calls[caller] {
			if site.external {
				continue
			}
			if set, ok := facts.RefVariants[site.callee]; ok {
				set[site.pattern] = true
			}
		}
	}
	for _, g := range a.globals {
		if !a.globalIsRuntime(g) {
			continue
		}
		for _, site := range a.globalCalls[g] {
			if site.external {
				continue
			}
			if set, ok := facts.RefVariants[site.callee]; ok {
				set[site.pattern] = true
			}
		}
	}
}
