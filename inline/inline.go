// Package inline implements the zinc inlining engine. It replaces eligible
// call expressions with duplicated, parameter-bound copies of the callee's
// body, and merges the independent bodies of event handlers into a single
// sequential body when that is safe. Only functions the call-graph analyzer
// proved non-recursive are ever expansion targets, so expansion always
// terminates.
package inline

import (
	"github.com/rs/zerolog"

	"github.com/zinclang/zinc/callgraph"
	"github.com/zinclang/zinc/program"
)

// DefaultMaxSize is the default ceiling on the pass-wide inlining budget,
// in statement+expression units.
const DefaultMaxSize = 1000

// DefaultMergeExempt names event handlers exempted from body merging. The
// canonical case is the one-shot bulk initializer: it has many handlers and
// runs exactly once, so the compile-time cost of merging outweighs any
// run-time win.
var DefaultMergeExempt = []string{"zinc_init"}

// Option configures an Inliner.
type Option func(*Inliner)

// WithLogger sets the logger used to report recursion and skipped sites.
func WithLogger(logger zerolog.Logger) Option {
	return func(i *Inliner) {
		i.logger = logger
	}
}

// WithMaxSize sets the ceiling on the pass-wide inlining budget.
func WithMaxSize(n int) Option {
	return func(i *Inliner) {
		i.maxSize = n
	}
}

// WithMergeExempt replaces the set of event-handler names exempted from
// body merging.
func WithMergeExempt(names ...string) Option {
	return func(i *Inliner) {
		i.mergeExempt = make(map[string]bool, len(names))
		for _, n := range names {
			i.mergeExempt[n] = true
		}
	}
}

// Inliner performs one whole-program inlining pass. It is single-threaded:
// all state below has exactly one writer and no concurrent readers.
type Inliner struct {
	infos       []*program.FuncInfo
	funcsByName map[string]*program.Function

	// Functions eligible for inlining, with the profile of their single body.
	inlineAbles map[*program.Function]*program.Profile

	// Functions we decided not to inline somewhere; never retried.
	skipped map[*program.Function]bool

	// Functions inlined at least once.
	didInline map[*program.Function]bool

	// Running pass-wide budget of duplicated statement+expression nodes.
	budgetUsed int
	maxSize    int

	// Statement/expression counts of the function currently being rewritten,
	// written back to its body when the function is done.
	numStmts int
	numExprs int

	// Frame accounting for the expansion in progress. currFrameSize is the
	// enclosing function's own frame; maxInlinedFrameSize is the largest
	// inlined-callee frame observed at the current nesting level.
	currFrameSize       int
	maxInlinedFrameSize int

	mergeExempt map[string]bool
	logger      zerolog.Logger
}

// New creates an Inliner over the given function-body entries.
func New(infos []*program.FuncInfo, opts ...Option) *Inliner {
	i := &Inliner{
		infos:       infos,
		funcsByName: make(map[string]*program.Function),
		inlineAbles: make(map[*program.Function]*program.Profile),
		skipped:     make(map[*program.Function]bool),
		didInline:   make(map[*program.Function]bool),
		maxSize:     DefaultMaxSize,
		mergeExempt: make(map[string]bool),
		logger:      zerolog.Nop(),
	}
	for _, name := range DefaultMergeExempt {
		i.mergeExempt[name] = true
	}
	for _, opt := range opts {
		opt(i)
	}
	for _, fi := range infos {
		i.funcsByName[fi.Func().Name()] = fi.Func()
	}
	return i
}

// Analyze runs the full pass: call-graph analysis, candidate selection,
// event-handler merging, and inlining of every analyzable body.
func (i *Inliner) Analyze() {
	res := callgraph.Analyze(i.infos, callgraph.WithLogger(i.logger))

	// Candidates are plain functions (not events or hooks) proven
	// non-recursive, whose single body is a native statement tree.
	for _, fi := range i.infos {
		if fi.ShouldSkip() {
			continue
		}

		fn := fi.Func()

		if fn.Flavor() != program.FlavorFunction {
			continue
		}
		if !res.NonRecursive(fn) {
			continue
		}
		if len(fn.Bodies()) != 1 || fi.Body().Foreign {
			continue
		}

		i.inlineAbles[fn] = fi.Profile()
	}

	i.collapseEventHandlers()

	for _, fi := range i.infos {
		if fi.ShouldAnalyze() {
			i.inlineFunction(fi)
		}
	}
}

// DidInline reports whether the function was inlined at least once.
func (i *Inliner) DidInline(f *program.Function) bool { return i.didInline[f] }

// Skipped reports whether inlining the function was refused at some site.
func (i *Inliner) Skipped(f *program.Function) bool { return i.skipped[f] }

// BudgetUsed returns the statement+expression budget consumed so far.
func (i *Inliner) BudgetUsed() int { return i.budgetUsed }

// inlineFunction rewrites one function body in place.
func (i *Inliner) inlineFunction(fi *program.FuncInfo) {
	i.preInline(fi.Body(), fi.Scope().Length())
	i.inlineStmt(fi.Body().Stmts)
	i.postInline(fi.Body(), fi.Func())
}

func (i *Inliner) preInline(b *program.Body, frameSize int) {
	i.maxInlinedFrameSize = 0
	i.currFrameSize = frameSize
	i.numStmts = b.NumStmts
	i.numExprs = b.NumExprs
}

func (i *Inliner) postInline(b *program.Body, f *program.Function) {
	b.NumStmts = i.numStmts
	b.NumExprs = i.numExprs

	f.GrowFrameSize(i.currFrameSize + i.maxInlinedFrameSize)
}
