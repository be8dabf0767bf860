package frontend

import "github.com/vexel-lang/vexel/internal/analyze"

// BackendRequirements is the contract a backend hands back before the
// pipeline runs the analyzer (spec §6 "Backend requirements query").
type BackendRequirements struct {
	EnabledPasses          []string
	DefaultEntryReentrancy analyze.Reentrancy
	DefaultExitReentrancy  analyze.Reentrancy
}

// Backend is the caller-supplied collaborator the frontend validates
// before running the pipeline (spec §6). It is deliberately minimal:
// everything the frontend itself needs to make analysis decisions,
// nothing about code generation (out of scope for this module).
type Backend interface {
	AnalysisRequirements(options map[string]string) (BackendRequirements, error)
}

// BoundaryReentrancyProvider is an optional capability a Backend may
// also implement: a per-symbol override of the reentrancy a call
// crossing into that external symbol must honor, beyond the two
// process-wide defaults in BackendRequirements (spec §6 "optionally a
// per-symbol boundary-reentrancy callback").
type BoundaryReentrancyProvider interface {
	BoundaryReentrancy(symbolName string) (analyze.Reentrancy, bool)
}

// EnabledPass reports whether name is present in r.EnabledPasses. An
// empty list enables every pass.
func (r BackendRequirements) EnabledPass(name string) bool {
	if len(r.EnabledPasses) == 0 {
		return true
	}
	for _, p := range r.EnabledPasses {
		if p == name {
			return true
		}
	}
	return false
}
