package frontend

import (
	"fmt"
	"sort"
	"strings"
)

// RenderAnalysisReport formats ap's AnalysisFacts and OptimizationFacts
// as the text file spec §6 calls `<stem>.analysis.txt`.
func RenderAnalysisReport(ap *AnalyzedProgram) string {
	var b strings.Builder

	fmt.Fprintf(&b, "build %s\n\n", ap.BuildID)

	fmt.Fprintf(&b, "reachable functions: %d\n", len(ap.Analysis.ReachableFunctions))
	names := make([]string, 0, len(ap.Analysis.ReachableFunctions))
	for key := range ap.Analysis.ReachableFunctions {
		names = append(names, key.Decl.QualifiedName())
	}
	sort.Strings(names)
	for _, n := range names {
		b.WriteString("  " + n + "\n")
	}

	pure := 0
	writers := 0
	for key := range ap.Analysis.ReachableFunctions {
		if ap.Analysis.FunctionIsPure[key] {
			pure++
		}
		if ap.Analysis.FunctionWritesGlobal[key] {
			writers++
		}
	}
	fmt.Fprintf(&b, "\npure functions: %d\n", pure)
	fmt.Fprintf(&b, "functions writing a global: %d\n", writers)

	fmt.Fprintf(&b, "\nused globals: %d\n", len(ap.Analysis.UsedGlobalVars))
	fmt.Fprintf(&b, "used type names: %d\n", len(ap.Analysis.UsedTypeNames))
	typeNames := make([]string, 0, len(ap.Analysis.UsedTypeNames))
	for n := range ap.Analysis.UsedTypeNames {
		typeNames = append(typeNames, n)
	}
	sort.Strings(typeNames)
	for _, n := range typeNames {
		b.WriteString("  " + n + "\n")
	}

	fmt.Fprintf(&b, "\nstable compile-time values: %d\n", len(ap.Optimization.StableValues))
	fmt.Fprintf(&b, "unstable keys: %d\n", len(ap.Optimization.UnstableKeys))
	fmt.Fprintf(&b, "foldable zero-arity functions: %d\n", len(ap.Optimization.FoldableFunctions))

	return b.String()
}
