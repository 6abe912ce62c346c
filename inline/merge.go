package inline

import (
	"github.com/zinclang/zinc/ast"
	"github.com/zinclang/zinc/program"
)

// collapseEventHandlers merges the independent bodies of event-handler
// functions into one sequential body, so the whole handler compiles as a
// single unit. A merge is only attempted when every body of the function
// participates: merging some-but-not-all bodies can reorder priority-ordered
// handler invocation, which is unsound.
func (i *Inliner) collapseEventHandlers() {
	handlerBodies := make(map[*program.Function]int)
	bodyToInfo := make(map[*program.Body]*program.FuncInfo)

	for _, fi := range i.infos {
		if !fi.ShouldAnalyze() {
			continue
		}

		fn := fi.Func()

		if fn.Flavor() != program.FlavorEvent {
			continue
		}

		if fi.Scope().HasAttr(ast.AttrGroup) {
			// Grouped handlers can be enabled and disabled at run time;
			// merging them would fuse their lifetimes.
			continue
		}

		if i.mergeExempt[fn.Name()] {
			// One-shot bulk initializers have many handlers and run once:
			// compiling the merged body costs more than it ever saves.
			continue
		}

		if fn.Kind() == program.KindScript && len(fn.Bodies()) > 1 {
			handlerBodies[fn]++
			bodyToInfo[fi.Body()] = fi
		}
	}

	for fn, n := range handlerBodies {
		if len(fn.Bodies()) != n {
			// Not every body is analyzable, so a merge would be partial.
			continue
		}
		i.collapse(fn, bodyToInfo)
	}
}

// collapse merges all bodies of one event handler. All-or-nothing: if any
// body fails to expand, the function is left completely untouched.
func (i *Inliner) collapse(fn *program.Function, bodyToInfo map[*program.Body]*program.FuncInfo) {
	bodies := fn.Bodies()
	merged := &ast.StmtList{}

	nparams := fn.NumParams()
	emptyBody := &program.Body{}
	i.preInline(emptyBody, nparams)

	// The first body is the primary: on success its FuncInfo entry keeps
	// the merged body and the other entries are deactivated.
	info0 := bodyToInfo[bodies[0]]
	vars := info0.Scope().OrderedVars()

	// A fresh parameter scope is required: reusing the primary body's scope
	// would confuse identifiers about whether they name the outer instance
	// or the inlined inner one.
	paramIDs := make([]*ast.ID, nparams)
	for p := 0; p < nparams; p++ {
		paramIDs[p] = ast.NewID(vars[p].Name, vars[p].Typ)
	}
	newScope := ast.NewScope(paramIDs, nparams, nil)

	oldScope := fn.Scope()
	fn.SetScope(newScope)

	success := true

	for _, b := range bodies {
		bi := bodyToInfo[b]

		// Each body is lowered through the same expansion machinery as an
		// ordinary call, with the fresh parameters as the arguments.
		args := make([]ast.Expr, nparams)
		for p, id := range paramIDs {
			args[p] = &ast.NameExpr{ID: id}
		}

		ie := i.doInline(fn, b, args, bi.Scope(), bi.Profile())
		if ie == nil {
			success = false
			break
		}

		merged.Stmts = append(merged.Stmts, &ast.ExprStmt{E: ie})
	}

	if !success {
		fn.SetScope(oldScope)
		return
	}

	mergedBody := &program.Body{Stmts: merged, NumStmts: i.numStmts, NumExprs: i.numExprs}
	fn.GrowFrameSize(i.currFrameSize + i.maxInlinedFrameSize)

	calls, assignees := i.buildProfile(merged)
	info0.SetScope(newScope)
	info0.SetProfile(program.NewProfile(calls, assignees))

	// Deactivate script analysis for all of the other bodies.
	for _, b := range bodies {
		bi := bodyToInfo[b]
		if b == bodies[0] {
			bi.SetBody(mergedBody)
		} else {
			bi.SetShouldNotAnalyze()
			bi.SetBody(nil)
		}
	}

	fn.ReplaceBodies(mergedBody)
}
