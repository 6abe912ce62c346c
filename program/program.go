// Package program models the function table the zinc front end exposes to
// the optimizer: functions with their flavor, bodies, scopes, frame sizes,
// and the per-function call profiles extracted by a prior analysis pass.
package program

import "github.com/zinclang/zinc/ast"

// Flavor distinguishes how a function is invoked.
type Flavor int

const (
	// FlavorFunction is an ordinary function with a single body.
	FlavorFunction Flavor = iota
	// FlavorEvent is an event handler, potentially with several
	// independently registered bodies ordered by priority.
	FlavorEvent
	// FlavorHook is a hook whose bodies run until one breaks.
	FlavorHook
)

// String returns the flavor's name.
func (f Flavor) String() string {
	switch f {
	case FlavorFunction:
		return "function"
	case FlavorEvent:
		return "event"
	case FlavorHook:
		return "hook"
	default:
		return "unknown"
	}
}

// Kind distinguishes script functions from built-ins implemented natively
// by the runtime.
type Kind int

const (
	KindScript Kind = iota
	KindBuiltin
)

// Body is one statement-tree body of a function, together with its cached
// node counts. Event handlers may have several bodies; plain functions have
// exactly one.
type Body struct {
	Stmts    ast.Stmt
	Priority int

	// Cached statement/expression counts, used for inlining budget
	// accounting. Maintained by the front end and by the inliner when it
	// rewrites bodies.
	NumStmts int
	NumExprs int

	// Foreign marks a body already lowered to a compiled representation;
	// such bodies are opaque to the inliner.
	Foreign bool
}

// NewBody wraps a statement tree as a body, computing its node counts.
func NewBody(stmts ast.Stmt, priority int) *Body {
	ns, ne := ast.Count(stmts)
	return &Body{Stmts: stmts, Priority: priority, NumStmts: ns, NumExprs: ne}
}

// Function is one entry in the function table.
type Function struct {
	name      string
	flavor    Flavor
	kind      Kind
	numParams int
	bodies    []*Body
	frameSize int
	scope     *ast.Scope
}

// NewFunction creates a script function. The scope belongs to the primary
// body; per-body scopes for event handlers live on their FuncInfo entries.
func NewFunction(name string, flavor Flavor, scope *ast.Scope, bodies ...*Body) *Function {
	return &Function{
		name:      name,
		flavor:    flavor,
		kind:      KindScript,
		numParams: scope.NumParams(),
		bodies:    bodies,
		frameSize: scope.Length(),
		scope:     scope,
	}
}

// NewBuiltin creates a built-in function entry. Built-ins have no script
// bodies; they exist in the table so call sites can resolve them.
func NewBuiltin(name string, numParams int) *Function {
	return &Function{name: name, flavor: FlavorFunction, kind: KindBuiltin, numParams: numParams}
}

func (f *Function) Name() string      { return f.name }
func (f *Function) Flavor() Flavor    { return f.flavor }
func (f *Function) Kind() Kind        { return f.kind }
func (f *Function) NumParams() int    { return f.numParams }
func (f *Function) Bodies() []*Body   { return f.bodies }
func (f *Function) FrameSize() int    { return f.frameSize }
func (f *Function) Scope() *ast.Scope { return f.scope }

// GrowFrameSize raises the function's frame size. Frame sizes grow
// monotonically during optimization and never shrink.
func (f *Function) GrowFrameSize(n int) {
	if n > f.frameSize {
		f.frameSize = n
	}
}

// SetScope replaces the function's scope, used when event-handler bodies
// are merged under a fresh parameter scope.
func (f *Function) SetScope(s *ast.Scope) { f.scope = s }

// ReplaceBodies discards all existing bodies in favor of a single merged
// body.
func (f *Function) ReplaceBodies(b *Body) { f.bodies = []*Body{b} }

// Profile is the slice of a prior analysis pass the optimizer consumes: the
// script functions a body calls directly, and which identifiers it assigns.
type Profile struct {
	calls     []*Function
	assignees map[*ast.ID]bool
}

// NewProfile builds a profile from a body's direct callees and assignees.
func NewProfile(calls []*Function, assignees []*ast.ID) *Profile {
	p := &Profile{calls: calls, assignees: make(map[*ast.ID]bool, len(assignees))}
	for _, id := range assignees {
		p.assignees[id] = true
	}
	return p
}

// Calls returns the script functions called directly by the profiled body.
func (p *Profile) Calls() []*Function { return p.calls }

// Assigns reports whether the profiled body ever assigns to the identifier.
func (p *Profile) Assigns(id *ast.ID) bool { return p.assignees[id] }

// FuncInfo pairs one function body with its scope and profile. The
// optimizer iterates over FuncInfo entries: event handlers contribute one
// entry per registered body.
type FuncInfo struct {
	fn      *Function
	body    *Body
	scope   *ast.Scope
	profile *Profile

	skip             bool
	shouldNotAnalyze bool
}

// NewFuncInfo pairs a function body with its scope and profile.
func NewFuncInfo(fn *Function, body *Body, scope *ast.Scope, profile *Profile) *FuncInfo {
	return &FuncInfo{fn: fn, body: body, scope: scope, profile: profile}
}

func (fi *FuncInfo) Func() *Function   { return fi.fn }
func (fi *FuncInfo) Body() *Body       { return fi.body }
func (fi *FuncInfo) Scope() *ast.Scope { return fi.scope }
func (fi *FuncInfo) Profile() *Profile { return fi.profile }

// SetBody points the entry at a different body, used after merging.
func (fi *FuncInfo) SetBody(b *Body) { fi.body = b }

// SetScope points the entry at a different scope.
func (fi *FuncInfo) SetScope(s *ast.Scope) { fi.scope = s }

// SetProfile replaces the entry's profile, used after re-profiling a
// merged body.
func (fi *FuncInfo) SetProfile(p *Profile) { fi.profile = p }

// ShouldSkip reports whether the entry is excluded from optimization.
func (fi *FuncInfo) ShouldSkip() bool { return fi.skip }

// SetShouldSkip excludes the entry from optimization.
func (fi *FuncInfo) SetShouldSkip() { fi.skip = true }

// ShouldAnalyze reports whether later stages should still analyze the
// entry's body. Secondary bodies folded into a merge are deactivated.
func (fi *FuncInfo) ShouldAnalyze() bool {
	return !fi.skip && !fi.shouldNotAnalyze && fi.body != nil
}

// SetShouldNotAnalyze deactivates script analysis for this entry.
func (fi *FuncInfo) SetShouldNotAnalyze() { fi.shouldNotAnalyze = true }
