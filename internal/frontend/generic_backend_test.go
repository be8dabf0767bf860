package frontend

import (
	"testing"

	"github.com/vexel-lang/vexel/internal/analyze"
)

func TestGenericBackendDefaults(t *testing.T) {
	b := GenericBackend{Name: "c"}
	reqs, err := b.AnalysisRequirements(nil)
	if err != nil {
		t.Fatalf("AnalysisRequirements: %v", err)
	}
	if reqs.DefaultEntryReentrancy != analyze.N || reqs.DefaultExitReentrancy != analyze.N {
		t.Fatalf("expected both defaults to be N, got entry=%v exit=%v", reqs.DefaultEntryReentrancy, reqs.DefaultExitReentrancy)
	}
	if len(reqs.EnabledPasses) != 0 {
		t.Fatalf("expected an empty pass list by default, got %v", reqs.EnabledPasses)
	}
}

func TestGenericBackendParsesOptions(t *testing.T) {
	b := GenericBackend{Name: "c"}
	reqs, err := b.AnalysisRequirements(map[string]string{
		"passes":           "reachability, mutability",
		"entry_reentrancy": "R",
		"exit_reentrancy":  "N",
	})
	if err != nil {
		t.Fatalf("AnalysisRequirements: %v", err)
	}
	if !reqs.EnabledPass("reachability") || !reqs.EnabledPass("mutability") {
		t.Fatalf("expected both passes enabled, got %v", reqs.EnabledPasses)
	}
	if reqs.EnabledPass("effects") {
		t.Fatal("effects was not listed and should not be enabled")
	}
	if reqs.DefaultEntryReentrancy != analyze.R {
		t.Fatalf("DefaultEntryReentrancy = %v, want R", reqs.DefaultEntryReentrancy)
	}
}

func TestGenericBackendRejectsInvalidReentrancy(t *testing.T) {
	b := GenericBackend{Name: "c"}
	if _, err := b.AnalysisRequirements(map[string]string{"entry_reentrancy": "bogus"}); err == nil {
		t.Fatal("expected an error for an invalid reentrancy value")
	}
}
