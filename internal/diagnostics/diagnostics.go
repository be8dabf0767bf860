// Package diagnostics implements the single structured error kind used
// across every pass of the frontend (spec §7): one error type, a
// severity, a phase tag, an optional source location and hint.
package diagnostics

import (
	"fmt"

	"github.com/vexel-lang/vexel/internal/token"
)

// Phase identifies which pipeline stage raised a diagnostic.
type Phase string

const (
	PhaseLoad      Phase = "load"
	PhaseResolve   Phase = "resolve"
	PhaseAnnotate  Phase = "annotate"
	PhaseTypeCheck Phase = "typecheck"
	PhaseMono      Phase = "mono"
	PhaseCTE       Phase = "cte"
	PhaseOptimize  Phase = "optimize"
	PhaseAnalyze   Phase = "analyze"
	PhaseTypeUse   Phase = "typeuse"
	PhaseInternal  Phase = "internal"
)

// Severity distinguishes errors (abort the pipeline) from warnings and
// notes (accumulate).
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityNote
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityNote:
		return "note"
	default:
		return "unknown"
	}
}

// ErrorCode tags a diagnostic with a stable, greppable identifier.
type ErrorCode string

const (
	// Load/parse (spec §7 "Load/parse")
	ErrLoadCannotOpen   ErrorCode = "M001" // cannot open source file
	ErrLoadParse        ErrorCode = "M002" // parse error at location (handoff boundary; core never parses itself)
	ErrLoadCycle        ErrorCode = "M003" // cyclic module import
	NoteLoadCacheHit    ErrorCode = "M004" // module unchanged since the last cached build

	// Resolution (spec §7 "Resolution")
	ErrResolveUndefined  ErrorCode = "R001" // undefined identifier
	ErrResolveShadow     ErrorCode = "R002" // shadowing across scope chain
	ErrResolveReimport   ErrorCode = "R003" // ambiguous/incompatible re-import
	ErrResolveDupSymbol  ErrorCode = "R004" // duplicate top-level symbol
	ErrResolveCycle      ErrorCode = "R005" // cyclic import chain discovered while resolving instances

	// Annotation
	ErrAnnotationUnknown ErrorCode = "N001" // unknown annotation name

	// Type (spec §7 "Type")
	ErrTypeMismatch    ErrorCode = "T001"
	ErrTypeArity       ErrorCode = "T002"
	ErrTypeUnify       ErrorCode = "T003"
	ErrTypeABI         ErrorCode = "T004" // non-primitive ABI at exported/external boundary
	ErrTypeTupleABI    ErrorCode = "T005" // tuple rejected at ABI
	ErrTypeUnresolved  ErrorCode = "T006" // missing concrete type for used value
	ErrTypeCastSize    ErrorCode = "T007" // cast-size mismatch
	ErrTypeOperator    ErrorCode = "T008" // unsupported operator operand types
	ErrTypeGeneric     ErrorCode = "T009" // generic exported/external, or other generic-form error
	ErrTypeIteration   ErrorCode = "T010" // no usable iteration method

	// Monomorphizer
	ErrMonoInternal ErrorCode = "G001"

	// Compile-time (spec §7 "Compile-time")
	ErrCTEDivByZero   ErrorCode = "C001"
	ErrCTEOutOfRange  ErrorCode = "C002"
	ErrCTEMutGlobal   ErrorCode = "C003"
	ErrCTEExternal    ErrorCode = "C004"
	ErrCTECycle       ErrorCode = "C005"
	ErrCTEBound       ErrorCode = "C006" // recursion/loop bound exceeded
	ErrCTEReceiverMut ErrorCode = "C007" // mutation of a receiver alias
	ErrCTEProcess     ErrorCode = "C008" // process expression not opted in / failed

	// Analysis (spec §7 "Analysis")
	ErrAnalyzeReentrancy ErrorCode = "A001" // reentrant path calls nonreentrant external
	ErrAnalyzeConflict   ErrorCode = "A002" // conflicting reentrant/nonreentrant annotations

	// Internal (bugs, not user errors)
	ErrInternal ErrorCode = "I001"
)

var errorTemplates = map[ErrorCode]string{
	ErrLoadCannotOpen:    "cannot open module file: %s",
	ErrLoadParse:         "parse error: %s",
	ErrLoadCycle:         "cyclic module import involving %q",
	NoteLoadCacheHit:     "module unchanged since last cached build: %s",
	ErrResolveUndefined:  "undefined identifier %q",
	ErrResolveShadow:     "identifier %q shadows a declaration in an enclosing scope",
	ErrResolveReimport:   "re-import of module %q is not textually/evaluation equal to its first import in this scope",
	ErrResolveDupSymbol:  "duplicate top-level declaration %q",
	ErrResolveCycle:      "cyclic import involving %q",
	ErrAnnotationUnknown: "unknown annotation %q",
	ErrTypeMismatch:      "type mismatch: expected %s, got %s",
	ErrTypeArity:         "arity mismatch: expected %d argument(s), got %d",
	ErrTypeUnify:         "cannot unify %s with %s",
	ErrTypeABI:           "type %s is not ABI-safe at an exported/external boundary",
	ErrTypeTupleABI:      "tuple types are not ABI-safe",
	ErrTypeUnresolved:    "value has no concrete type (%s)",
	ErrTypeCastSize:      "cast size mismatch: %s",
	ErrTypeOperator:      "operator %s is not defined for operand type(s) %s",
	ErrTypeGeneric:       "%s",
	ErrTypeIteration:     "type %s has no usable iteration method %s",
	ErrMonoInternal:      "monomorphization error: %s",
	ErrCTEDivByZero:      "division or modulo by zero in compile-time evaluation",
	ErrCTEOutOfRange:     "index %d out of range (length %d) in compile-time evaluation",
	ErrCTEMutGlobal:      "compile-time evaluation cannot write to mutable global %q",
	ErrCTEExternal:       "compile-time evaluation cannot call external function %q",
	ErrCTECycle:          "cyclic dependency through constant %q",
	ErrCTEBound:          "compile-time evaluation exceeded its %s bound",
	ErrCTEReceiverMut:    "compile-time evaluation cannot mutate receiver alias %q",
	ErrCTEProcess:        "process expression: %s",
	ErrAnalyzeReentrancy: "reentrant-context call to nonreentrant external %q",
	ErrAnalyzeConflict:   "conflicting reentrant/nonreentrant annotations on %q",
	ErrInternal:          "internal error: %s",
}

// DiagnosticError is the one structured error kind produced by every
// pass in this module.
type DiagnosticError struct {
	Code     ErrorCode
	Phase    Phase
	Severity Severity
	Args     []interface{}
	Pos      token.Position
	Hint     string
}

func (e *DiagnosticError) Error() string {
	template, ok := errorTemplates[e.Code]
	if !ok {
		template = string(e.Code)
	}
	msg := template
	if len(e.Args) > 0 {
		msg = fmt.Sprintf(template, e.Args...)
	}

	prefix := ""
	if e.Pos.IsValid() {
		prefix = e.Pos.String() + ": "
	}
	phaseStr := ""
	if e.Phase != "" {
		phaseStr = fmt.Sprintf("[%s] ", e.Phase)
	}

	out := fmt.Sprintf("%s%s%s %s (%s)", prefix, phaseStr, e.Severity, msg, e.Code)
	if e.Hint != "" {
		out += "\n  hint: " + e.Hint
	}
	return out
}

// New builds an error-severity diagnostic at the given phase/position.
func New(phase Phase, code ErrorCode, pos token.Position, args ...interface{}) *DiagnosticError {
	return &DiagnosticError{Code: code, Phase: phase, Severity: SeverityError, Args: args, Pos: pos}
}

// NewWarning builds a warning-severity diagnostic.
func NewWarning(phase Phase, code ErrorCode, pos token.Position, args ...interface{}) *DiagnosticError {
	return &DiagnosticError{Code: code, Phase: phase, Severity: SeverityWarning, Args: args, Pos: pos}
}

// NewNote builds a note-severity diagnostic: informational, never
// aborts a pass and is never itself a correctness concern.
func NewNote(phase Phase, code ErrorCode, pos token.Position, args ...interface{}) *DiagnosticError {
	return &DiagnosticError{Code: code, Phase: phase, Severity: SeverityNote, Args: args, Pos: pos}
}

// Internal builds an "this should never happen" diagnostic: a pass
// invariant violation, not a user-facing mistake.
func Internal(phase Phase, pos token.Position, message string) *DiagnosticError {
	return &DiagnosticError{Code: ErrInternal, Phase: phase, Severity: SeverityError, Args: []interface{}{message}, Pos: pos}
}

// WithHint returns a copy of e carrying the given hint.
func (e *DiagnosticError) WithHint(hint string) *DiagnosticError {
	clone := *e
	clone.Hint = hint
	return &clone
}
