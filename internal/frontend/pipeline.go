// Package frontend implements spec §2's top-level orchestration: the
// fixed pass order (load, resolve, check, monomorphize, lower,
// optimize, residualize, analyze, validate), the AnalyzedProgram
// handoff, and the backend-requirements contract (spec §6).
//
// Grounded on the teacher's internal/pipeline.Pipeline/Processor
// chain-of-stages shape, generalized from "continue on error to
// collect every stage's diagnostics" (useful for an LSP) to "abort at
// the first error-severity diagnostic" per spec §7.
package frontend

import (
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/vexel-lang/vexel/internal/analyze"
	"github.com/vexel-lang/vexel/internal/cache"
	"github.com/vexel-lang/vexel/internal/config"
	"github.com/vexel-lang/vexel/internal/diagnostics"
	"github.com/vexel-lang/vexel/internal/lower"
	"github.com/vexel-lang/vexel/internal/mono"
	"github.com/vexel-lang/vexel/internal/modules"
	"github.com/vexel-lang/vexel/internal/optimize"
	"github.com/vexel-lang/vexel/internal/residual"
	"github.com/vexel-lang/vexel/internal/resolver"
	"github.com/vexel-lang/vexel/internal/symbols"
	"github.com/vexel-lang/vexel/internal/token"
	"github.com/vexel-lang/vexel/internal/typecheck"
	"github.com/vexel-lang/vexel/internal/typeuse"
)

// maxResidualRounds bounds the residualize/observe loop: a single pass
// is correct per spec §4.8, but a collapsed conditional can expose a
// parent expression that is now itself foldable, so a few rounds
// squeeze the tree tighter before analysis runs. Small relative to the
// optimizer's own 64-round fixpoint bound, since no new Facts are
// being discovered here — only the AST catching up to facts already known.
const maxResidualRounds = 8

// Pipeline runs the fixed-order sequence of passes from spec §2 over
// one project.
type Pipeline struct {
	Manifest *config.ProjectManifest
	Parser   modules.Parser
	Backend  Backend
	Sink     diagnostics.Sink
	Cache    *cache.Store // optional; nil disables the build cache
}

func New(manifest *config.ProjectManifest, parser modules.Parser, backend Backend, sink diagnostics.Sink) *Pipeline {
	return &Pipeline{Manifest: manifest, Parser: parser, Backend: backend, Sink: sink}
}

// errAborted reports that the pipeline stopped at the failing pass;
// the caller is expected to print p.Sink.Errors() itself (spec §7
// "Errors abort the pipeline at the failing pass; prior state is
// discarded").
var errAborted = fmt.Errorf("compilation aborted: see diagnostics")

// Run executes every pass in order, stopping at the first pass that
// reports an error-severity diagnostic.
func (p *Pipeline) Run() (*AnalyzedProgram, error) {
	reqs, err := p.Backend.AnalysisRequirements(p.Manifest.Options)
	if err != nil {
		return nil, fmt.Errorf("backend requirements: %w", err)
	}

	loader := modules.NewLoader(p.Manifest.Root, p.Parser)
	prog, diags := loader.Load(p.Manifest.Entry)
	for _, d := range diags {
		p.Sink.Report(d)
	}
	if p.Sink.HasErrors() {
		return nil, errAborted
	}

	moduleSources := p.checkCache(prog)
	defer p.saveCache(moduleSources)

	res := resolver.NewResolver(prog, p.Sink)
	res.Resolve(p.Manifest.Root)
	if p.Sink.HasErrors() {
		return nil, errAborted
	}
	bindings := res.Bindings

	checker := typecheck.NewChecker(prog, bindings, p.Sink)
	checker.Strictness = p.Manifest.StrictnessLevel()
	checker.AllowProcess = p.Manifest.AllowProcess
	checker.ResourceRoot = p.Manifest.Root
	checker.CheckProgram()
	if p.Sink.HasErrors() {
		return nil, errAborted
	}

	monomorphizer := mono.New(prog, bindings, res, checker)
	monomorphizer.Run()
	if p.Sink.HasErrors() {
		return nil, errAborted
	}

	p.lowerEveryModule(prog)

	opt := optimize.New(prog, bindings)
	optFacts, err := opt.Run()
	if err != nil {
		p.Sink.Report(diagnostics.Internal(diagnostics.PhaseOptimize, symbols.PositionOf(nil), err.Error()))
		return nil, errAborted
	}

	p.residualizeToFixpoint(prog, optFacts)

	defaults := analyze.BackendDefaults{
		DefaultEntryReentrancy: reqs.DefaultEntryReentrancy,
		DefaultExitReentrancy:  reqs.DefaultExitReentrancy,
	}
	analyzer := analyze.New(prog, bindings, p.Sink, optFacts, defaults)
	analysisFacts := analyzer.Run()
	if p.Sink.HasErrors() {
		return nil, errAborted
	}

	validator := typeuse.New(prog, bindings, analysisFacts, optFacts, p.Sink)
	validator.Run()
	if p.Sink.HasErrors() {
		return nil, errAborted
	}

	entry := prog.ModuleByID(prog.EntryInstance().ModuleID)
	return &AnalyzedProgram{
		Module:          entry.Module,
		Prog:            prog,
		Analysis:        analysisFacts,
		Optimization:    optFacts,
		EntryInstanceID: 0,
		ForcedTuples:    checker.TupleTypes,
		BuildID:         uuid.NewString(),
		bindings:        bindings,
	}, nil
}

// moduleSource pairs a loaded module's path with the source bytes it
// was parsed from, so saveCache can hash it without re-reading the
// file after the pipeline finishes.
type moduleSource struct {
	path string
	src  []byte
}

// checkCache reports a note for every module whose content hash
// matches p.Cache's record of a prior clean build (spec §5 "Ownership" —
// no AST/Facts survive across process boundaries, so a cache hit is a
// change-detection signal reported to the user, not a skip of any
// pass below). Returns every module's source so saveCache can record
// fresh hashes once this run finishes.
func (p *Pipeline) checkCache(prog *modules.Program) []moduleSource {
	sources := make([]moduleSource, 0, len(prog.Modules))
	for _, info := range prog.Modules {
		src, err := os.ReadFile(info.Path)
		if err != nil {
			continue
		}
		sources = append(sources, moduleSource{path: info.Path, src: src})
		if p.Cache == nil {
			continue
		}
		if sum, hit := p.Cache.Lookup(info.Path, src); hit && !sum.HadErrors {
			p.Sink.Report(diagnostics.NewNote(diagnostics.PhaseLoad, diagnostics.NoteLoadCacheHit, token.NoPosition, info.Path))
		}
	}
	return sources
}

// saveCache records this run's outcome for every module loaded, so the
// next invocation's checkCache can tell which modules are unchanged.
func (p *Pipeline) saveCache(sources []moduleSource) {
	if p.Cache == nil {
		return
	}
	hadErrors := p.Sink.HasErrors()
	var warningText []string
	for _, w := range p.Sink.Warnings() {
		warningText = append(warningText, w.Error())
	}
	for _, ms := range sources {
		p.Cache.Put(cache.Summary{
			Path:        ms.path,
			SourceHash:  cache.Hash(ms.src),
			HadErrors:   hadErrors,
			WarningText: warningText,
		})
	}
}

// lowerEveryModule runs the syntactic lowering pass once per distinct
// module (not once per instance — lowering is purely structural and
// two instances of the same module share the same ast.Program).
func (p *Pipeline) lowerEveryModule(prog *modules.Program) {
	l := lower.New()
	for _, info := range prog.Modules {
		l.LowerProgram(info.Module)
	}
}

// residualizeToFixpoint reruns the residualizer until it reports no
// further change or the round bound is hit, matching spec §8
// property 1 ("running residualization a second time yields no
// further changes").
func (p *Pipeline) residualizeToFixpoint(prog *modules.Program, facts *optimize.Facts) {
	for i := 0; i < maxResidualRounds; i++ {
		r := residual.New(prog, facts)
		if !r.Run() {
			return
		}
	}
}
