package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vexel-lang/vexel/internal/ast"
	"github.com/vexel-lang/vexel/internal/diagnostics"
	"github.com/vexel-lang/vexel/internal/modules"
)

func ident(name string) *ast.Identifier { return &ast.Identifier{Name: name} }

func newProgramWithModule(stmts ...ast.Statement) *modules.Program {
	prog := modules.NewProgram()
	prog.AddModule("entry.vx", &ast.Program{File: "entry.vx", Statements: stmts})
	return prog
}

func TestPredeclareAllowsForwardReference(t *testing.T) {
	// &^a() -> #i32 { b() }
	// &^b() -> #i32 { 0 }
	callB := &ast.CallExpression{Callee: ident("b")}
	a := &ast.FuncDeclStatement{
		Name: ident("a"),
		Body: &ast.BlockExpression{Trailing: callB},
	}
	b := &ast.FuncDeclStatement{
		Name: ident("b"),
		Body: &ast.BlockExpression{Trailing: &ast.IntLiteral{Value: 0}},
	}
	prog := newProgramWithModule(a, b)

	sink := diagnostics.NewCollectingSink()
	r := NewResolver(prog, sink)
	r.Resolve(".")

	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Errors())
	}
	sym, ok := r.Bindings.SymbolFor(0, callB.Callee)
	if !ok {
		t.Fatalf("expected callee 'b' to be bound")
	}
	if sym.Name != "b" {
		t.Fatalf("expected binding to function b, got %s", sym.Name)
	}
}

func TestDuplicateTopLevelSymbolIsError(t *testing.T) {
	a1 := &ast.FuncDeclStatement{Name: ident("dup"), Body: &ast.BlockExpression{}}
	a2 := &ast.FuncDeclStatement{Name: ident("dup"), Body: &ast.BlockExpression{}}
	prog := newProgramWithModule(a1, a2)

	sink := diagnostics.NewCollectingSink()
	r := NewResolver(prog, sink)
	r.Resolve(".")

	found := false
	for _, e := range sink.Errors() {
		if e.Code == diagnostics.ErrResolveDupSymbol {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected ErrResolveDupSymbol, got %v", sink.Errors())
	}
}

func TestAssignmentIntroducesNewLocal(t *testing.T) {
	// &^f() -> #i32 { x = 5; x }
	assign := &ast.AssignmentExpression{Target: ident("x"), Value: &ast.IntLiteral{Value: 5}}
	trailing := ident("x")
	f := &ast.FuncDeclStatement{
		Name: ident("f"),
		Body: &ast.BlockExpression{
			Statements: []ast.Statement{&ast.ExpressionStatement{Expression: assign}},
			Trailing:   trailing,
		},
	}
	prog := newProgramWithModule(f)

	sink := diagnostics.NewCollectingSink()
	r := NewResolver(prog, sink)
	r.Resolve(".")

	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Errors())
	}
	if !assign.Introduces {
		t.Fatalf("expected assignment to mark Introduces")
	}
	if !r.Bindings.IntroducesVariable(0, assign) {
		t.Fatalf("expected Bindings to record the introduction fact")
	}
	sym, ok := r.Bindings.SymbolFor(0, trailing)
	if !ok || sym.Name != "x" {
		t.Fatalf("expected trailing reference to 'x' to resolve to the new local")
	}
}

func TestUndefinedIdentifierIsError(t *testing.T) {
	f := &ast.FuncDeclStatement{
		Name: ident("f"),
		Body: &ast.BlockExpression{Trailing: ident("nope")},
	}
	prog := newProgramWithModule(f)

	sink := diagnostics.NewCollectingSink()
	r := NewResolver(prog, sink)
	r.Resolve(".")

	found := false
	for _, e := range sink.Errors() {
		if e.Code == diagnostics.ErrResolveUndefined {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected ErrResolveUndefined, got %v", sink.Errors())
	}
}

func TestUnknownAnnotationIsError(t *testing.T) {
	f := &ast.FuncDeclStatement{
		Name:        ident("f"),
		Annotations: []*ast.Annotation{{Name: "not_a_real_annotation"}},
		Body:        &ast.BlockExpression{},
	}
	prog := newProgramWithModule(f)

	sink := diagnostics.NewCollectingSink()
	r := NewResolver(prog, sink)
	r.Resolve(".")

	found := false
	for _, e := range sink.Errors() {
		if e.Code == diagnostics.ErrAnnotationUnknown {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected ErrAnnotationUnknown, got %v", sink.Errors())
	}
}

func TestImportExposesQualifiedName(t *testing.T) {
	dir := t.TempDir()
	entryPath := filepath.Join(dir, "entry.vx")
	utilPath := filepath.Join(dir, "util.vx")
	for _, p := range []string{entryPath, utilPath} {
		if err := os.WriteFile(p, nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	prog := modules.NewProgram()
	prog.AddModule(entryPath, &ast.Program{
		File: entryPath,
		Statements: []ast.Statement{
			&ast.ImportStatement{Segments: []string{"util"}},
		},
	})
	prog.AddModule(utilPath, &ast.Program{
		File: utilPath,
		Statements: []ast.Statement{
			&ast.FuncDeclStatement{Name: ident("helper"), Exported: true, Body: &ast.BlockExpression{}},
		},
	})

	sink := diagnostics.NewCollectingSink()
	r := NewResolver(prog, sink)
	r.Resolve(dir)

	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Errors())
	}
	entryScope := prog.EntryInstance().Scope
	if _, ok := entryScope.LookupLocal("util::helper"); !ok {
		t.Fatalf("expected entry scope to carry qualified symbol util::helper")
	}
}

func TestImportCycleIsError(t *testing.T) {
	dir := t.TempDir()
	aPath := filepath.Join(dir, "a.vx")
	bPath := filepath.Join(dir, "b.vx")
	for _, p := range []string{aPath, bPath} {
		if err := os.WriteFile(p, nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	prog := modules.NewProgram()
	prog.AddModule(aPath, &ast.Program{
		File: aPath,
		Statements: []ast.Statement{
			&ast.ImportStatement{Segments: []string{"b"}},
		},
	})
	prog.AddModule(bPath, &ast.Program{
		File: bPath,
		Statements: []ast.Statement{
			&ast.ImportStatement{Segments: []string{"a"}},
		},
	})

	sink := diagnostics.NewCollectingSink()
	r := NewResolver(prog, sink)
	r.Resolve(dir)

	found := false
	for _, e := range sink.Errors() {
		if e.Code == diagnostics.ErrResolveCycle {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected ErrResolveCycle, got %v", sink.Errors())
	}
}
