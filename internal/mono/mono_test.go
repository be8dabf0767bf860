package mono

import (
	"testing"

	"github.com/vexel-lang/vexel/internal/ast"
	"github.com/vexel-lang/vexel/internal/diagnostics"
	"github.com/vexel-lang/vexel/internal/modules"
	"github.com/vexel-lang/vexel/internal/resolver"
	"github.com/vexel-lang/vexel/internal/symbols"
	"github.com/vexel-lang/vexel/internal/typecheck"
	"github.com/vexel-lang/vexel/internal/typesystem"
)

func TestCloneFuncDeclIsIndependent(t *testing.T) {
	orig := &ast.FuncDeclStatement{
		Name: &ast.Identifier{Name: "identity"},
		Params: []*ast.Param{
			{Name: &ast.Identifier{Name: "x"}},
		},
		Body: &ast.Identifier{Name: "x"},
	}

	clone := cloneFuncDecl(orig)
	clone.Params[0].Name.Name = "renamed"
	clone.Name.Name = "identity_clone"

	if orig.Params[0].Name.Name != "x" {
		t.Fatalf("mutating the clone's param renamed the original's: %q", orig.Params[0].Name.Name)
	}
	if orig.Name.Name != "identity" {
		t.Fatalf("mutating the clone's name renamed the original's: %q", orig.Name.Name)
	}
	if clone.Body == orig.Body {
		t.Fatalf("clone's body expression shares a pointer with the original's")
	}
}

func TestSubstituteSignatureFillsUntypedSlots(t *testing.T) {
	clone := &ast.FuncDeclStatement{
		Receivers: []*ast.Receiver{
			{Name: &ast.Identifier{Name: "self"}}, // untyped receiver
		},
		Params: []*ast.Param{
			{Name: &ast.Identifier{Name: "n"}},                    // untyped value param
			{Name: &ast.Identifier{Name: "body"}, Expression: true}, // expression param, never substituted
		},
	}

	argTypes := []typesystem.Type{
		typesystem.Named{Name: "List"},
		typesystem.I(32),
	}
	substituteSignature(clone, argTypes)

	recvAnn, ok := clone.Receivers[0].TypeAnn.(*ast.NamedTypeAnn)
	if !ok || recvAnn.Name != "List" {
		t.Fatalf("expected the receiver to be substituted with #List, got %#v", clone.Receivers[0].TypeAnn)
	}
	paramAnn, ok := clone.Params[0].TypeAnn.(*ast.PrimitiveTypeAnn)
	if !ok || paramAnn.Width != 32 {
		t.Fatalf("expected the value param to be substituted with a 32-bit primitive, got %#v", clone.Params[0].TypeAnn)
	}
	if clone.Params[1].TypeAnn != nil {
		t.Fatalf("expression params must never be substituted, got %#v", clone.Params[1].TypeAnn)
	}
}

func TestTypeToAnnRoundTripsArrayShape(t *testing.T) {
	arr := typesystem.Array{Elem: typesystem.I(8), Size: 3}
	ann, ok := typeToAnn(arr).(*ast.ArrayTypeAnn)
	if !ok {
		t.Fatalf("expected an *ast.ArrayTypeAnn, got %T", typeToAnn(arr))
	}
	size, ok := ann.Size.(*ast.IntLiteral)
	if !ok || size.Value != 3 {
		t.Fatalf("expected the array's size literal to read back as 3, got %#v", ann.Size)
	}
	if _, ok := ann.Elem.(*ast.PrimitiveTypeAnn); !ok {
		t.Fatalf("expected the array's element annotation to be a primitive, got %T", ann.Elem)
	}
}

// TestMonomorphizerMaterializesPendingInstantiation exercises the full
// clone/substitute/rebind/recheck loop end to end: a generic function
// with one untyped parameter, called once with a concrete i32 argument,
// must come out the other side as a distinctly-named, fully typed
// clone appended to the module, with the call site's placeholder type
// fixed up to the clone's real result type.
func TestMonomorphizerMaterializesPendingInstantiation(t *testing.T) {
	prog := modules.NewProgram()
	paramName := &ast.Identifier{Name: "n"}
	generic := &ast.FuncDeclStatement{
		Name:   &ast.Identifier{Name: "identity"},
		Params: []*ast.Param{{Name: paramName}},
		ReturnTypes: []ast.Type{
			&ast.PrimitiveTypeAnn{Kind: "i", Width: 32},
		},
		Body:    &ast.Identifier{Name: "n"},
		Generic: true,
	}
	info := prog.AddModule("entry.vx", &ast.Program{File: "entry.vx", Statements: []ast.Statement{generic}})

	scope := symbols.NewScope(symbols.ScopeModule, nil)
	inst := prog.NewInstance(info.ID, -1, nil, scope)

	sink := diagnostics.NewCollectingSink()
	res := resolver.NewResolver(prog, sink)
	res.PredeclareFunc(inst, generic)

	checker := typecheck.NewChecker(prog, res.Bindings, sink)

	callSite := &ast.CallExpression{Callee: &ast.Identifier{Name: "identity"}}
	checker.Pending = append(checker.Pending, &typecheck.PendingInstantiation{
		Generic:     generic,
		InstanceID:  inst.ID,
		ArgTypes:    []typesystem.Type{typesystem.I(32)},
		MangledName: "identity_i32",
		CallSite:    callSite,
	})

	m := New(prog, res.Bindings, res, checker)
	m.Run()

	if sink.HasErrors() {
		t.Fatalf("unexpected errors materializing the instantiation: %v", sink.Errors())
	}
	if len(checker.Pending) != 0 {
		t.Fatalf("expected Run to drain Pending, got %d left", len(checker.Pending))
	}

	var clone *ast.FuncDeclStatement
	for _, stmt := range info.Module.Statements {
		if fd, ok := stmt.(*ast.FuncDeclStatement); ok && fd.Instantiation {
			clone = fd
		}
	}
	if clone == nil {
		t.Fatalf("expected a monomorphized clone appended to the module's statements")
	}
	if clone.Name.Name != "identity_i32" {
		t.Fatalf("expected the clone's name to be the mangled name, got %q", clone.Name.Name)
	}
	if clone.MangledKey != "identity_i32" {
		t.Fatalf("expected the clone's MangledKey to be recorded, got %q", clone.MangledKey)
	}
	if clone == generic {
		t.Fatalf("the clone must be a distinct declaration from the generic template")
	}
	if callSite.ExprType() == nil {
		t.Fatalf("expected the call site's placeholder type to be fixed up to the clone's result type")
	}
	calleeIdent, ok := callSite.Callee.(*ast.Identifier)
	if !ok || calleeIdent.Name != "identity_i32" {
		t.Fatalf("expected the call site's callee to be rewritten to the mangled name, got %#v", callSite.Callee)
	}
}
