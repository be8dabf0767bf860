// Command vexelc is the thin entry point around internal/frontend:
// find and load a project manifest, run the pipeline, print
// diagnostics, and optionally persist the analysis report.
//
// Grounded on the teacher's cmd/funxy/main.go overall shape: a small
// flag surface, almost everything delegated to internal packages.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vexel-lang/vexel/internal/ast"
	"github.com/vexel-lang/vexel/internal/cache"
	"github.com/vexel-lang/vexel/internal/config"
	"github.com/vexel-lang/vexel/internal/diagnostics"
	"github.com/vexel-lang/vexel/internal/frontend"
	"github.com/vexel-lang/vexel/internal/token"
)

// unlinkedParser satisfies internal/modules.Parser without lexing or
// parsing anything: that stage is explicitly out of scope for this
// module (spec §1). A real vexelc build swaps this type out for a
// concrete Parser implementation at the call site below.
type unlinkedParser struct{}

func (unlinkedParser) Parse(path string, src []byte) (*ast.Program, []*diagnostics.DiagnosticError) {
	return nil, []*diagnostics.DiagnosticError{
		diagnostics.Internal(diagnostics.PhaseLoad, token.Position{}, "no parser linked into this vexelc build: "+path),
	}
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("vexelc", flag.ContinueOnError)
	manifestPath := fs.String("manifest", "", "path to vexel.yaml (default: search upward from the working directory)")
	cachePath := fs.String("cache", "", "path to a build cache file (default: disabled)")
	versionFlag := fs.Bool("version", false, "print the vexelc version and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *versionFlag {
		fmt.Println("vexelc", config.Version)
		return 0
	}

	path := *manifestPath
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			fmt.Fprintln(os.Stderr, "vexelc:", err)
			return 1
		}
		found, err := config.FindManifest(wd)
		if err != nil {
			fmt.Fprintln(os.Stderr, "vexelc:", err)
			return 1
		}
		if found == "" {
			fmt.Fprintln(os.Stderr, "vexelc: no", config.ManifestFileName, "found above", wd)
			return 1
		}
		path = found
	}

	manifest, err := config.LoadManifest(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "vexelc:", err)
		return 1
	}

	var buildCache *cache.Store
	if *cachePath != "" {
		buildCache, err = cache.Open(*cachePath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "vexelc:", err)
			return 1
		}
	}

	sink := diagnostics.NewTerminalSink(os.Stderr)
	backend := frontend.GenericBackend{Name: manifest.Backend}

	pipeline := frontend.New(manifest, unlinkedParser{}, backend, sink)
	pipeline.Cache = buildCache

	analyzed, err := pipeline.Run()
	if err != nil {
		return 1
	}

	if manifest.EmitAnalysis {
		report := frontend.RenderAnalysisReport(analyzed)
		if err := os.MkdirAll(filepath.Dir(manifest.AnalysisReportPath()), 0o755); err != nil {
			fmt.Fprintln(os.Stderr, "vexelc:", err)
			return 1
		}
		if err := os.WriteFile(manifest.AnalysisReportPath(), []byte(report), 0o644); err != nil {
			fmt.Fprintln(os.Stderr, "vexelc:", err)
			return 1
		}
	}

	if buildCache != nil {
		if err := buildCache.Save(); err != nil {
			fmt.Fprintln(os.Stderr, "vexelc:", err)
			return 1
		}
	}

	return 0
}
