// Package callgraph computes the direct and transitive call relation over
// all script functions and identifies those free of self- or indirect
// recursion. Its output narrows the inliner's candidate set; the analysis
// itself never fails.
package callgraph

import (
	"github.com/rs/zerolog"

	"github.com/zinclang/zinc/program"
)

// Option configures an analysis.
type Option func(*analyzer)

// WithLogger sets the logger used to report recursion discoveries.
func WithLogger(logger zerolog.Logger) Option {
	return func(a *analyzer) {
		a.logger = logger
	}
}

// Result holds the outcome of call-graph analysis: per-function transitive
// call sets and the set of functions proven non-recursive.
type Result struct {
	callSets     map[*program.Function]map[*program.Function]bool
	nonRecursive map[*program.Function]bool
}

// NonRecursive reports whether the function was proven free of self- or
// indirect recursion.
func (r *Result) NonRecursive(f *program.Function) bool {
	return r.nonRecursive[f]
}

// CallSet returns the set of functions f calls, directly or transitively.
func (r *Result) CallSet(f *program.Function) map[*program.Function]bool {
	return r.callSets[f]
}

type analyzer struct {
	logger zerolog.Logger
}

// Analyze builds the call graph over the given function-body entries and
// computes the non-recursive set. Each entry seeds its function's call set
// with the direct callees from its profile; the transitive closure then
// runs to a fixed point. This is a plain iterated closure rather than
// Warshall's algorithm: script call graphs are shallow, and the cost is
// dwarfed by the compilation of inlined functions afterward.
func Analyze(infos []*program.FuncInfo, opts ...Option) *Result {
	a := &analyzer{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(a)
	}

	res := &Result{
		callSets:     make(map[*program.Function]map[*program.Function]bool),
		nonRecursive: make(map[*program.Function]bool),
	}

	// Prime the call set for each function with the functions it directly
	// calls, evicting directly recursive functions immediately.
	for _, fi := range infos {
		f := fi.Func()

		cs := res.callSets[f]
		if cs == nil {
			cs = make(map[*program.Function]bool)
			res.callSets[f] = cs

			// Aspirational ....
			res.nonRecursive[f] = true
		}

		for _, callee := range fi.Profile().Calls() {
			cs[callee] = true

			if callee == f {
				a.logger.Debug().Str("func", f.Name()).Msg("directly recursive")
				delete(res.nonRecursive, f)
			}
		}
	}

	// Transitive closure, iterated until a full pass adds nothing.
	didAddition := true
	for didAddition {
		didAddition = false

		for f, cs := range res.callSets {
			var addls []*program.Function

			for callee := range cs {
				if callee == f {
					// Don't loop over ourselves.
					continue
				}

				for indirect := range res.callSets[callee] {
					if cs[indirect] {
						// We already have it.
						continue
					}

					addls = append(addls, indirect)

					if indirect != f {
						// Non-recursive.
						continue
					}

					a.logger.Debug().
						Str("func", f.Name()).
						Str("via", callee.Name()).
						Msg("indirectly recursive")

					delete(res.nonRecursive, f)
					delete(res.nonRecursive, callee)
				}
			}

			if len(addls) > 0 {
				didAddition = true
				for _, add := range addls {
					cs[add] = true
				}
			}
		}
	}

	return res
}
