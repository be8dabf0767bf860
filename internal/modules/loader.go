package modules

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/vexel-lang/vexel/internal/ast"
	"github.com/vexel-lang/vexel/internal/diagnostics"
	"github.com/vexel-lang/vexel/internal/token"
)

// SourceExt is the only recognized Vexel source extension.
const SourceExt = ".vx"

// Parser is the external collaborator that turns source bytes into an
// AST (lexing/parsing are explicitly out of scope for this module,
// spec §1). The loader depends on this interface rather than a
// concrete parser package.
type Parser interface {
	Parse(path string, src []byte) (*ast.Program, []*diagnostics.DiagnosticError)
}

// Loader resolves an entry file and every module it transitively
// imports into a Program, per spec §4.1.
type Loader struct {
	ProjectRoot string
	Parser      Parser
	loaded      map[string]bool // normalized path -> fully loaded
}

func NewLoader(projectRoot string, parser Parser) *Loader {
	return &Loader{ProjectRoot: projectRoot, Parser: parser, loaded: map[string]bool{}}
}

// normalize lexically cleans a path and makes it absolute against the
// project root when it isn't already, per spec §4.1 "normalizes paths
// lexically."
func (l *Loader) normalize(path string) string {
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.ProjectRoot, path)
	}
	return filepath.Clean(path)
}

// Load parses entryPath and every module it (transitively) imports.
// Duplicate loads are suppressed by normalized path (spec §4.1).
func (l *Loader) Load(entryPath string) (*Program, []*diagnostics.DiagnosticError) {
	prog := NewProgram()
	var diags []*diagnostics.DiagnosticError
	l.loadOne(prog, l.normalize(entryPath), map[string]bool{}, &diags)
	return prog, diags
}

func (l *Loader) loadOne(prog *Program, path string, onStack map[string]bool, diags *[]*diagnostics.DiagnosticError) {
	if onStack[path] {
		*diags = append(*diags, diagnostics.New(diagnostics.PhaseLoad, diagnostics.ErrLoadCycle, token.NoPosition, path))
		return
	}
	if _, already := prog.ModuleByPath(path); already {
		return
	}
	onStack[path] = true
	defer delete(onStack, path)

	src, err := readFile(path)
	if err != nil {
		*diags = append(*diags, diagnostics.New(diagnostics.PhaseLoad, diagnostics.ErrLoadCannotOpen, token.NoPosition, path))
		return
	}

	mod, perrs := l.Parser.Parse(path, src)
	*diags = append(*diags, perrs...)
	if mod == nil {
		return
	}
	prog.AddModule(path, mod)

	// Imports may appear at any lexical scope (spec §4.1): walk the
	// whole parsed module structurally, not just top-level statements.
	for _, imp := range CollectImports(mod) {
		target, ok := l.resolveImport(path, imp.Segments)
		if !ok {
			// Missing imports are not errors at load time (spec §4.1);
			// the resolver reports them later at symbol resolution.
			continue
		}
		l.loadOne(prog, target, onStack, diags)
	}
}

// resolveImport finds a/b.vx first relative to the importing file,
// then relative to the project root, per spec §4.1.
func (l *Loader) resolveImport(importingFile string, segments []string) (string, bool) {
	return ResolveImportPath(l.ProjectRoot, importingFile, segments)
}

// ResolveImportPath applies the same file-then-root search the loader
// uses, exported so internal/resolver can recover the normalized path
// an already-loaded ImportStatement refers to without re-walking the
// filesystem search order itself.
func ResolveImportPath(projectRoot, importingFile string, segments []string) (string, bool) {
	rel := filepath.Join(segments...) + SourceExt
	fromFile := filepath.Join(filepath.Dir(importingFile), rel)
	if fileExists(fromFile) {
		return filepath.Clean(fromFile), true
	}
	fromRoot := filepath.Join(projectRoot, rel)
	if fileExists(fromRoot) {
		return filepath.Clean(fromRoot), true
	}
	return "", false
}

func readFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// CollectImports walks every statement/expression in mod and returns
// every ImportStatement found, at any nesting depth (spec §4.1).
func CollectImports(mod *ast.Program) []*ast.ImportStatement {
	var out []*ast.ImportStatement
	var walkStmt func(ast.Statement)
	var walkExpr func(ast.Expression)

	walkExpr = func(e ast.Expression) {
		if e == nil {
			return
		}
		switch n := e.(type) {
		case *ast.BinaryExpression:
			walkExpr(n.Left)
			walkExpr(n.Right)
		case *ast.UnaryExpression:
			walkExpr(n.Operand)
		case *ast.CallExpression:
			walkExpr(n.Callee)
			for _, r := range n.Receivers {
				walkExpr(r)
			}
			for _, a := range n.Arguments {
				walkExpr(a)
			}
		case *ast.IndexExpression:
			walkExpr(n.Left)
			walkExpr(n.Index)
		case *ast.MemberExpression:
			walkExpr(n.Left)
		case *ast.ArrayLiteral:
			for _, el := range n.Elements {
				walkExpr(el)
			}
		case *ast.TupleLiteral:
			for _, el := range n.Elements {
				walkExpr(el)
			}
		case *ast.BlockExpression:
			for _, s := range n.Statements {
				walkStmt(s)
			}
			walkExpr(n.Trailing)
		case *ast.ConditionalExpression:
			walkExpr(n.Condition)
			walkExpr(n.Then)
			walkExpr(n.Else)
		case *ast.CastExpression:
			walkExpr(n.Operand)
		case *ast.AssignmentExpression:
			walkExpr(n.Target)
			walkExpr(n.Value)
		case *ast.RangeExpression:
			walkExpr(n.Low)
			walkExpr(n.High)
		case *ast.LengthExpression:
			walkExpr(n.Operand)
		case *ast.IterationExpression:
			walkExpr(n.Iterable)
			walkExpr(n.Body)
		case *ast.RepeatExpression:
			walkExpr(n.Condition)
			walkExpr(n.Body)
		case *ast.ProcessExpression:
			walkExpr(n.Command)
		}
	}

	walkStmt = func(s ast.Statement) {
		switch n := s.(type) {
		case *ast.ImportStatement:
			out = append(out, n)
		case *ast.ExpressionStatement:
			walkExpr(n.Expression)
		case *ast.ReturnStatement:
			walkExpr(n.Value)
		case *ast.VarDeclStatement:
			walkExpr(n.Init)
		case *ast.FuncDeclStatement:
			walkExpr(n.Body)
		case *ast.ConditionalStatement:
			walkExpr(n.Condition)
			walkStmt(n.Then)
		}
	}

	for _, s := range mod.Statements {
		walkStmt(s)
	}
	return out
}

// ImportAlias returns the conventional local name for an import path:
// its last segment, e.g. ::a::b -> "b".
func ImportAlias(segments []string) string {
	if len(segments) == 0 {
		return ""
	}
	return segments[len(segments)-1]
}

// JoinSegments renders import segments back to "::a::b" form for
// diagnostics.
func JoinSegments(segments []string) string {
	return "::" + strings.Join(segments, "::")
}
