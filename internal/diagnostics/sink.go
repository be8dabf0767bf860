package diagnostics

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/mattn/go-isatty"
)

// Sink collects diagnostics in emission order. Compilation aborts the
// owning pass at the first error-severity diagnostic; warnings and
// notes accumulate for the caller to print at the end.
type Sink interface {
	Report(*DiagnosticError)
	Errors() []*DiagnosticError
	Warnings() []*DiagnosticError
	HasErrors() bool
}

// CollectingSink is the in-memory Sink implementation used by every
// pass: it never prints, it just accumulates, the way a compiler's
// diagnostic bag should.
type CollectingSink struct {
	errors   []*DiagnosticError
	warnings []*DiagnosticError
	notes    []*DiagnosticError
}

func NewCollectingSink() *CollectingSink {
	return &CollectingSink{}
}

func (s *CollectingSink) Report(d *DiagnosticError) {
	switch d.Severity {
	case SeverityError:
		s.errors = append(s.errors, d)
	case SeverityWarning:
		s.warnings = append(s.warnings, d)
	default:
		s.notes = append(s.notes, d)
	}
}

func (s *CollectingSink) Errors() []*DiagnosticError   { return s.errors }
func (s *CollectingSink) Warnings() []*DiagnosticError { return s.warnings }
func (s *CollectingSink) HasErrors() bool              { return len(s.errors) > 0 }

// First returns the earliest-reported error, or nil.
func (s *CollectingSink) First() *DiagnosticError {
	if len(s.errors) == 0 {
		return nil
	}
	return s.errors[0]
}

// SortByPosition orders diagnostics deterministically by (line, column),
// matching the teacher's own diagnostic-sorting convention.
func SortByPosition(diags []*DiagnosticError) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i].Pos, diags[j].Pos
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
}

// TerminalSink prints diagnostics to an io.Writer as they are reported,
// colorizing output only when that writer is backed by a real terminal
// (the same is-this-a-tty check the teacher uses to decide whether to
// double-buffer its runtime terminal output).
type TerminalSink struct {
	*CollectingSink
	out   io.Writer
	color bool
}

// NewTerminalSink wraps stdout/stderr-style output. Pass os.Stdout or
// os.Stderr as out; color is auto-detected via go-isatty when out is
// an *os.File.
func NewTerminalSink(out io.Writer) *TerminalSink {
	color := false
	if f, ok := out.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &TerminalSink{CollectingSink: NewCollectingSink(), out: out, color: color}
}

func (s *TerminalSink) Report(d *DiagnosticError) {
	s.CollectingSink.Report(d)
	line := d.Error()
	if s.color {
		switch d.Severity {
		case SeverityError:
			line = "\x1b[31m" + line + "\x1b[0m"
		case SeverityWarning:
			line = "\x1b[33m" + line + "\x1b[0m"
		}
	}
	fmt.Fprintln(s.out, line)
}
