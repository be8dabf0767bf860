package modules

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vexel-lang/vexel/internal/ast"
	"github.com/vexel-lang/vexel/internal/diagnostics"
	"golang.org/x/tools/txtar"
)

// fakeParser understands a tiny textual format sufficient to exercise
// the loader without a real lexer/parser (out of scope for this
// module, spec §1): one `import a::b` directive per line, anywhere in
// the file, nothing else.
type fakeParser struct{}

func (fakeParser) Parse(path string, src []byte) (*ast.Program, []*diagnostics.DiagnosticError) {
	prog := &ast.Program{File: path}
	for _, line := range strings.Split(string(src), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "import ") {
			continue
		}
		segs := strings.Split(strings.TrimPrefix(line, "import "), "::")
		prog.Statements = append(prog.Statements, &ast.ImportStatement{Segments: segs})
	}
	return prog, nil
}

// writeArchive materializes a txtar archive's files under dir.
func writeArchive(t *testing.T, dir string, archive string) {
	t.Helper()
	ar := txtar.Parse([]byte(archive))
	for _, f := range ar.Files {
		full := filepath.Join(dir, f.Name)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, f.Data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

const simpleProject = `
-- main.vx --
import util
-- util.vx --
&^helper() -> #i32 { 0 }
`

func TestLoaderLoadsTransitiveImports(t *testing.T) {
	dir := t.TempDir()
	writeArchive(t, dir, simpleProject)

	loader := NewLoader(dir, fakeParser{})
	prog, diags := loader.Load(filepath.Join(dir, "main.vx"))
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if len(prog.Modules) != 2 {
		t.Fatalf("expected 2 modules loaded, got %d", len(prog.Modules))
	}
	if _, ok := prog.ModuleByPath(filepath.Join(dir, "util.vx")); !ok {
		t.Fatalf("expected util.vx to be loaded")
	}
}

const cyclicProject = `
-- a.vx --
import b
-- b.vx --
import a
`

func TestLoaderDetectsImportCycle(t *testing.T) {
	dir := t.TempDir()
	writeArchive(t, dir, cyclicProject)

	loader := NewLoader(dir, fakeParser{})
	_, diags := loader.Load(filepath.Join(dir, "a.vx"))
	if len(diags) == 0 {
		t.Fatalf("expected a cycle diagnostic")
	}
	found := false
	for _, d := range diags {
		if d.Code == diagnostics.ErrLoadCycle {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected ErrLoadCycle among diagnostics, got %v", diags)
	}
}

const dedupProject = `
-- main.vx --
import shared
import ./shared
import also/shared
-- shared.vx --
&^noop() -> #i32 { 0 }
-- also/shared.vx --
&^other() -> #i32 { 1 }
`

func TestLoaderDeduplicatesByNormalizedPath(t *testing.T) {
	dir := t.TempDir()
	writeArchive(t, dir, dedupProject)

	loader := NewLoader(dir, fakeParser{})
	prog, diags := loader.Load(filepath.Join(dir, "main.vx"))
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	// main.vx + shared.vx + also/shared.vx == 3 distinct modules, not 4.
	if len(prog.Modules) != 3 {
		t.Fatalf("expected 3 distinct modules, got %d", len(prog.Modules))
	}
}

func TestLoaderMissingImportIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	writeArchive(t, dir, "-- main.vx --\nimport does_not_exist\n")

	loader := NewLoader(dir, fakeParser{})
	_, diags := loader.Load(filepath.Join(dir, "main.vx"))
	if len(diags) != 0 {
		t.Fatalf("missing imports must not be a load-time error, got %v", diags)
	}
}
