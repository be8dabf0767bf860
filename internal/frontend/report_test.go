package frontend

import (
	"strings"
	"testing"

	"github.com/vexel-lang/vexel/internal/analyze"
	"github.com/vexel-lang/vexel/internal/ast"
	"github.com/vexel-lang/vexel/internal/optimize"
	"github.com/vexel-lang/vexel/internal/symbols"
)

func TestRenderAnalysisReport(t *testing.T) {
	mainFn := &ast.FuncDeclStatement{Name: &ast.Identifier{Name: "main"}}
	helperFn := &ast.FuncDeclStatement{Name: &ast.Identifier{Name: "helper"}}

	mainKey := analyze.FuncKey{InstanceID: 0, Decl: mainFn}
	helperKey := analyze.FuncKey{InstanceID: 0, Decl: helperFn}

	ap := &AnalyzedProgram{
		BuildID: "test-build",
		Analysis: &analyze.Facts{
			ReachableFunctions: map[analyze.FuncKey]bool{
				mainKey:   true,
				helperKey: true,
			},
			FunctionIsPure:       map[analyze.FuncKey]bool{helperKey: true},
			FunctionWritesGlobal: map[analyze.FuncKey]bool{mainKey: true},
			UsedGlobalVars:       map[*symbols.Symbol]bool{},
			UsedTypeNames:        map[string]bool{"Point": true},
		},
		Optimization: &optimize.Facts{
			UnstableKeys:      map[optimize.Key]bool{},
			FoldableFunctions: map[string]bool{"zero": true},
		},
	}

	report := RenderAnalysisReport(ap)

	if !strings.Contains(report, "build test-build") {
		t.Fatalf("missing build id in report:\n%s", report)
	}
	if !strings.Contains(report, "reachable functions: 2") {
		t.Fatalf("missing reachable function count:\n%s", report)
	}
	if !strings.Contains(report, "  main\n") || !strings.Contains(report, "  helper\n") {
		t.Fatalf("missing function names:\n%s", report)
	}
	if !strings.Contains(report, "pure functions: 1") {
		t.Fatalf("missing pure function count:\n%s", report)
	}
	if !strings.Contains(report, "functions writing a global: 1") {
		t.Fatalf("missing global-writer count:\n%s", report)
	}
	if !strings.Contains(report, "Point") {
		t.Fatalf("missing used type name:\n%s", report)
	}
	if !strings.Contains(report, "foldable zero-arity functions: 1") {
		t.Fatalf("missing foldable function count:\n%s", report)
	}
}
