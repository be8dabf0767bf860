package resolver

import (
	"github.com/vexel-lang/vexel/internal/ast"
	"github.com/vexel-lang/vexel/internal/diagnostics"
)

// KnownAnnotations is the small recognized annotation vocabulary from
// spec §3: everything else passes through verbatim rather than being
// rejected, except at the validator boundary described in spec §4.2,
// where *every* annotation name (recognized or not) must have been
// seen and accounted for — unknown names are rejected outright.
var KnownAnnotations = map[string]bool{
	"hot":          true,
	"cold":         true,
	"reentrant":    true,
	"nonreentrant": true,
	"nonbanked":    true,
}

// validPlacement reports whether a known annotation name is allowed on
// the given declaration kind; an invalid placement is a warning, not
// an error (spec §4.2: "placements with a known name on an invalid
// node are warnings").
func validPlacement(name string, onFunc, onVar bool) bool {
	switch name {
	case "reentrant", "nonreentrant", "hot", "cold":
		return onFunc
	case "nonbanked":
		return onFunc || onVar
	default:
		return true
	}
}

// validateAnnotations checks every annotation attached to a
// declaration: an unrecognized name is an error, a recognized name in
// an invalid position is a warning (spec §4.2 "inline annotation
// validation").
func (r *Resolver) validateAnnotations(annotations []*ast.Annotation, onFunc, onVar bool) {
	for _, a := range annotations {
		if !KnownAnnotations[a.Name] {
			r.report(diagnostics.New(diagnostics.PhaseAnnotate, diagnostics.ErrAnnotationUnknown, a.Position, a.Name))
			continue
		}
		if !validPlacement(a.Name, onFunc, onVar) {
			r.report(diagnostics.NewWarning(diagnostics.PhaseAnnotate, diagnostics.ErrAnnotationUnknown, a.Position, a.Name).WithHint("recognized annotation used in an invalid position"))
		}
	}
}
