// Package symbols implements the Scope/Symbol/Bindings model from spec
// §3: named-entity lookup with no shadowing across the scope chain
// (except the loop variable `_`), and a side table mapping
// (instance, AST node) to the Symbol it resolves to. Grounded on the
// teacher's internal/symbols package (Symbol struct shape, ScopeType
// enum) adapted to Vexel's four symbol kinds.
package symbols

import (
	"github.com/vexel-lang/vexel/internal/ast"
	"github.com/vexel-lang/vexel/internal/token"
	"github.com/vexel-lang/vexel/internal/typesystem"
)

type Kind int

const (
	KindVariable Kind = iota
	KindConstant
	KindFunction
	KindType
)

func (k Kind) String() string {
	switch k {
	case KindVariable:
		return "variable"
	case KindConstant:
		return "constant"
	case KindFunction:
		return "function"
	case KindType:
		return "type"
	default:
		return "?"
	}
}

// Symbol is a named entity bound somewhere in a module instance.
type Symbol struct {
	Name       string
	Kind       Kind
	Type       typesystem.Type
	Mutable    bool
	Exported   bool
	External   bool
	Decl       ast.Node
	ModuleID   int
	InstanceID int
	Local      bool
}

// ScopeKind records why a scope exists, for diagnostics only.
type ScopeKind int

const (
	ScopeModule ScopeKind = iota
	ScopeFunction
	ScopeBlock
	ScopeLoop
)

// Scope is a named-entity container with a parent pointer; shadowing
// across the chain is forbidden except for the loop binding `_`
// (spec GLOSSARY "Scope").
type Scope struct {
	ID     int
	Kind   ScopeKind
	Parent *Scope
	names  map[string]*Symbol
}

// idCounter is a package-level monotonic counter: Scope.ID only needs
// to be unique within a Program, and a Program is never analyzed by
// more than one goroutine at once (spec §5: single-threaded).
var idCounter int

func NewScope(kind ScopeKind, parent *Scope) *Scope {
	idCounter++
	return &Scope{ID: idCounter, Kind: kind, Parent: parent, names: map[string]*Symbol{}}
}

// Define adds name to this scope. It returns false if name already
// exists in this scope or any ancestor scope (shadowing), unless name
// is "_" inside a loop scope, the one documented exception.
func (s *Scope) Define(name string, sym *Symbol) bool {
	if name != "_" {
		if _, exists := s.lookupChain(name); exists {
			return false
		}
	} else if s.Kind != ScopeLoop {
		if _, exists := s.lookupChain(name); exists {
			return false
		}
	}
	s.names[name] = sym
	return true
}

// DefineLocal binds name in the immediate scope with no duplicate
// check, overwriting any existing entry; used when the caller (e.g. the
// resolver after a shadow check already ran) wants to (re)bind.
func (s *Scope) DefineLocal(name string, sym *Symbol) {
	s.names[name] = sym
}

func (s *Scope) lookupChain(name string) (*Symbol, bool) {
	for cur := s; cur != nil; cur = cur.Parent {
		if sym, ok := cur.names[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// Lookup resolves name in this scope or any ancestor.
func (s *Scope) Lookup(name string) (*Symbol, bool) {
	return s.lookupChain(name)
}

// LookupLocal resolves name only within this exact scope.
func (s *Scope) LookupLocal(name string) (*Symbol, bool) {
	sym, ok := s.names[name]
	return sym, ok
}

// All returns every name bound directly in this scope (not ancestors),
// used by the resolver to re-export an imported instance's top-level
// symbols under a qualified alias.
func (s *Scope) All() map[string]*Symbol {
	out := make(map[string]*Symbol, len(s.names))
	for k, v := range s.names {
		out[k] = v
	}
	return out
}

// BindingKey identifies one (instance, AST node) pair.
type BindingKey struct {
	InstanceID int
	Node       ast.Node
}

// Bindings is the side table `(instance_id, node) -> Symbol`, plus the
// parallel "assignment introduces new variable" fact, per spec §3.
// Keyed independently of AST allocation, as the spec's Design Notes
// §9 require.
type Bindings struct {
	symbolOf  map[BindingKey]*Symbol
	isNewVar  map[BindingKey]bool
}

func NewBindings() *Bindings {
	return &Bindings{symbolOf: map[BindingKey]*Symbol{}, isNewVar: map[BindingKey]bool{}}
}

func (b *Bindings) Bind(instance int, node ast.Node, sym *Symbol) {
	b.symbolOf[BindingKey{instance, node}] = sym
}

func (b *Bindings) SymbolFor(instance int, node ast.Node) (*Symbol, bool) {
	sym, ok := b.symbolOf[BindingKey{instance, node}]
	return sym, ok
}

func (b *Bindings) MarkIntroducesVariable(instance int, node ast.Node) {
	b.isNewVar[BindingKey{instance, node}] = true
}

func (b *Bindings) IntroducesVariable(instance int, node ast.Node) bool {
	return b.isNewVar[BindingKey{instance, node}]
}

// PositionOf is a small convenience used by diagnostics to recover a
// location from whatever node a binding failure references.
func PositionOf(n ast.Node) token.Position {
	if n == nil {
		return token.NoPosition
	}
	return n.Pos()
}
