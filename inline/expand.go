package inline

import (
	"github.com/zinclang/zinc/ast"
	"github.com/zinclang/zinc/program"
)

// checkForInlining decides whether a call site can be replaced with an
// inline expansion. Sites that fail any check are returned unchanged so
// later compiler stages treat them as ordinary calls.
func (i *Inliner) checkForInlining(c *ast.CallExpr) ast.Expr {
	n, ok := c.Func.(*ast.NameExpr)
	if !ok {
		// We don't inline indirect calls.
		return c
	}

	if !n.ID.Global {
		return c
	}

	fn := i.funcsByName[n.ID.Name]
	if fn == nil || fn.Kind() != program.KindScript {
		return c
	}

	pf, ok := i.inlineAbles[fn]
	if !ok {
		return c
	}

	if i.skipped[fn] {
		// Refused once; never retried.
		return c
	}

	if c.InWhen {
		// Don't inline these, as doing so requires propagating the
		// deferred-execution attribute to the inlined function body.
		i.skip(fn, c, "call inside when context")
		return c
	}

	// Check for mismatches in argument count due to the single-arg-of-type-
	// any loophole used for variadic built-ins. Script functions misusing
	// the loophole must not be inlined with a bogus binding.
	if fn.NumParams() == 1 && len(c.Args) != 1 {
		i.skip(fn, c, "variadic arity mismatch")
		return c
	}

	if len(c.Args) != fn.NumParams() {
		i.skip(fn, c, "arity mismatch")
		return c
	}

	// We're going to inline the body, unless it's too large.
	body := fn.Bodies()[0] // there's only 1 body
	ie := i.doInline(fn, body, c.Args, fn.Scope(), pf)

	if ie == nil {
		return c
	}

	ie.Original = c
	ie.Location = c.Location
	i.didInline[fn] = true
	return ie
}

// doInline duplicates the callee body, binds its parameters to the caller's
// argument expressions, recursively inlines inside the duplicate, and
// accounts for the frame growth. Returns nil if the budget refuses the
// callee.
func (i *Inliner) doInline(fn *program.Function, body *program.Body, args []ast.Expr, scope *ast.Scope, pf *program.Profile) *ast.InlineExpr {
	cost := body.NumStmts + body.NumExprs
	if i.budgetUsed+cost > i.maxSize {
		i.skip(fn, nil, "budget exceeded")
		return nil
	}
	i.budgetUsed += cost
	i.numStmts += body.NumStmts
	i.numExprs += body.NumExprs

	bodyDup := body.Stmts.Duplicate()

	// The parameters are the first NumParams variables declared in the
	// scope, in declaration order.
	vars := scope.OrderedVars()
	nparams := fn.NumParams()

	params := make([]*ast.ID, nparams)
	paramIsModified := make([]bool, nparams)
	for p := 0; p < nparams; p++ {
		params[p] = vars[p]
		paramIsModified[p] = pf.Assigns(vars[p])
	}

	// Recursively inline the duplicated body. This terminates because only
	// non-recursive functions are expansion targets, but the frame-size
	// accounting has to be saved and restored around the recursion.
	frameSize := fn.FrameSize()

	holdCurrFrameSize := i.currFrameSize
	i.currFrameSize = frameSize

	holdMaxInlinedFrameSize := i.maxInlinedFrameSize
	i.maxInlinedFrameSize = 0

	i.inlineStmt(bodyDup)

	i.currFrameSize = holdCurrFrameSize

	newFrameSize := frameSize + i.maxInlinedFrameSize
	if newFrameSize > holdMaxInlinedFrameSize {
		i.maxInlinedFrameSize = newFrameSize
	} else {
		i.maxInlinedFrameSize = holdMaxInlinedFrameSize
	}

	return &ast.InlineExpr{
		Args:            args,
		Params:          params,
		ParamIsModified: paramIsModified,
		Body:            bodyDup,
		FrameOffset:     i.currFrameSize,
		Typ:             scope.ReturnType(),
	}
}

func (i *Inliner) skip(fn *program.Function, c *ast.CallExpr, reason string) {
	i.skipped[fn] = true
	ev := i.logger.Debug().Str("func", fn.Name()).Str("reason", reason)
	if c != nil {
		ev = ev.Str("site", c.Location.String())
	}
	ev.Msg("skipped inlining")
}
