package frontend

import (
	"fmt"
	"strings"

	"github.com/vexel-lang/vexel/internal/analyze"
)

// GenericBackend satisfies the Backend contract (spec §6 "Backend
// requirements query") entirely from a manifest's options map, with no
// target-specific code generation behind it. Concrete backends (C,
// banked, megalinker) are out of scope for this module; GenericBackend
// is what cmd/vexelc links against so the pipeline always has
// something to negotiate with.
//
// Grounded on the teacher's cmd/funxy BackendType ldflags-selected
// variable: one build-time name picks a behavior out of a small set,
// rather than a full plugin system.
type GenericBackend struct {
	// Name is the opaque backend identifier from the manifest, kept
	// only for diagnostics.
	Name string
}

// passesOption is the manifest option key listing enabled pass names,
// comma-separated. Absent or empty means every pass is enabled.
const passesOption = "passes"

// entryReentrancyOption and exitReentrancyOption hold "R" or "N"
// (spec GLOSSARY); absent defaults to "N" (non-reentrant), the more
// conservative default for a backend that hasn't said otherwise.
const (
	entryReentrancyOption = "entry_reentrancy"
	exitReentrancyOption  = "exit_reentrancy"
)

func (b GenericBackend) AnalysisRequirements(options map[string]string) (BackendRequirements, error) {
	reqs := BackendRequirements{
		DefaultEntryReentrancy: analyze.N,
		DefaultExitReentrancy:  analyze.N,
	}
	if raw, ok := options[passesOption]; ok && raw != "" {
		for _, p := range strings.Split(raw, ",") {
			reqs.EnabledPasses = append(reqs.EnabledPasses, strings.TrimSpace(p))
		}
	}
	if raw, ok := options[entryReentrancyOption]; ok {
		r, err := parseReentrancy(raw)
		if err != nil {
			return BackendRequirements{}, fmt.Errorf("backend %q: %s=%w", b.Name, entryReentrancyOption, err)
		}
		reqs.DefaultEntryReentrancy = r
	}
	if raw, ok := options[exitReentrancyOption]; ok {
		r, err := parseReentrancy(raw)
		if err != nil {
			return BackendRequirements{}, fmt.Errorf("backend %q: %s=%w", b.Name, exitReentrancyOption, err)
		}
		reqs.DefaultExitReentrancy = r
	}
	return reqs, nil
}

func parseReentrancy(raw string) (analyze.Reentrancy, error) {
	switch analyze.Reentrancy(raw) {
	case analyze.R, analyze.N:
		return analyze.Reentrancy(raw), nil
	default:
		return "", fmt.Errorf("invalid reentrancy %q, want R or N", raw)
	}
}
