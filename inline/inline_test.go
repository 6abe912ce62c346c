package inline

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zinclang/zinc/ast"
	"github.com/zinclang/zinc/program"
	"github.com/zinclang/zinc/types"
	"github.com/zinclang/zinc/value"
)

var intT = types.Base(types.TagInt)

func constInt(i int64) *ast.ConstExpr {
	return &ast.ConstExpr{Const: ast.Const{Val: value.Int(i), Typ: intT}}
}

// addOne builds f(x) { return x + 1 } and its FuncInfo entry.
func addOne(name string) (*program.Function, *program.FuncInfo) {
	x := ast.NewID("x", intT)
	scope := ast.NewScope([]*ast.ID{x}, 1, intT)
	body := program.NewBody(&ast.StmtList{Stmts: []ast.Stmt{
		&ast.ReturnStmt{E: &ast.BinaryExpr{
			Op:  ast.AddOp,
			L:   &ast.NameExpr{ID: x},
			R:   constInt(1),
			Typ: intT,
		}},
	}}, 0)
	fn := program.NewFunction(name, program.FlavorFunction, scope, body)
	return fn, program.NewFuncInfo(fn, body, scope, program.NewProfile(nil, nil))
}

// callerOf builds g() { y = <call> } and its FuncInfo entry.
func callerOf(callee *program.Function, call *ast.CallExpr) (*program.Function, *program.FuncInfo, *ast.AssignStmt) {
	y := ast.NewID("y", intT)
	scope := ast.NewScope([]*ast.ID{y}, 0, nil)
	assign := &ast.AssignStmt{Target: &ast.NameExpr{ID: y}, E: call}
	body := program.NewBody(&ast.StmtList{Stmts: []ast.Stmt{assign}}, 0)
	fn := program.NewFunction("g", program.FlavorFunction, scope, body)
	fi := program.NewFuncInfo(fn, body, scope,
		program.NewProfile([]*program.Function{callee}, nil))
	return fn, fi, assign
}

func callTo(fn *program.Function, args ...ast.Expr) *ast.CallExpr {
	return &ast.CallExpr{
		Func: &ast.NameExpr{ID: ast.NewGlobalID(fn.Name(), intT)},
		Args: args,
		Typ:  intT,
	}
}

func TestInlineSimpleCall(t *testing.T) {
	f, fInfo := addOne("f")
	call := callTo(f, constInt(5))
	g, gInfo, assign := callerOf(f, call)

	inl := New([]*program.FuncInfo{fInfo, gInfo})
	inl.Analyze()

	require.True(t, inl.DidInline(f))
	require.False(t, inl.Skipped(f))

	ie, ok := assign.E.(*ast.InlineExpr)
	require.True(t, ok)

	// The expansion binds the caller's argument to the callee's parameter
	// and remembers the call it replaced.
	require.Len(t, ie.Params, 1)
	require.Equal(t, "x", ie.Params[0].Name)
	require.False(t, ie.ParamIsModified[0])
	require.Same(t, call, ie.Original)

	// The duplicated body must not alias the callee's own statements.
	require.NotSame(t, f.Bodies()[0].Stmts, ie.Body)

	// Slots for the inlined body start past the caller's own frame.
	require.Equal(t, 1, ie.FrameOffset)

	// f's body costs 1 statement + 3 expressions.
	require.Equal(t, 4, inl.BudgetUsed())

	// The caller's frame now also holds the callee's locals.
	require.Equal(t, 2, g.FrameSize())

	// The caller body's cached counts reflect the added nodes.
	require.Equal(t, 1+1, gInfo.Body().NumStmts)
}

func TestBudgetRefusesAndNeverRetries(t *testing.T) {
	f, fInfo := addOne("f")
	call := callTo(f, constInt(5))
	_, gInfo, assign := callerOf(f, call)

	inl := New([]*program.FuncInfo{fInfo, gInfo}, WithMaxSize(3))
	inl.Analyze()

	require.False(t, inl.DidInline(f))
	require.True(t, inl.Skipped(f))
	require.Equal(t, 0, inl.BudgetUsed())

	// The call site is left as an ordinary call.
	require.Same(t, call, assign.E)
}

func TestBudgetSpansWholePass(t *testing.T) {
	// Two independent callers draw on one shared budget: the first
	// expansion fits, the second is refused.
	f, fInfo := addOne("f")

	call1 := callTo(f, constInt(1))
	_, g1Info, a1 := callerOf(f, call1)
	call2 := callTo(f, constInt(2))
	_, g2Info, a2 := callerOf(f, call2)

	inl := New([]*program.FuncInfo{fInfo, g1Info, g2Info}, WithMaxSize(5))
	inl.Analyze()

	_, inlined1 := a1.E.(*ast.InlineExpr)
	_, inlined2 := a2.E.(*ast.InlineExpr)
	require.True(t, inlined1)
	require.False(t, inlined2)
	require.Equal(t, 4, inl.BudgetUsed())
	require.True(t, inl.Skipped(f))
}

func TestRecursiveCalleeNotInlined(t *testing.T) {
	x := ast.NewID("x", intT)
	scope := ast.NewScope([]*ast.ID{x}, 1, intT)
	selfCall := &ast.CallExpr{Typ: intT}
	body := program.NewBody(&ast.StmtList{Stmts: []ast.Stmt{&ast.ReturnStmt{E: selfCall}}}, 0)
	f := program.NewFunction("f", program.FlavorFunction, scope, body)
	selfCall.Func = &ast.NameExpr{ID: ast.NewGlobalID("f", intT)}
	selfCall.Args = []ast.Expr{&ast.NameExpr{ID: x}}
	fInfo := program.NewFuncInfo(f, body, scope,
		program.NewProfile([]*program.Function{f}, nil))

	call := callTo(f, constInt(5))
	_, gInfo, assign := callerOf(f, call)

	inl := New([]*program.FuncInfo{fInfo, gInfo})
	inl.Analyze()

	require.False(t, inl.DidInline(f))
	require.Same(t, call, assign.E)
}

func TestSkipInWhenContext(t *testing.T) {
	f, fInfo := addOne("f")
	call := callTo(f, constInt(5))
	call.InWhen = true
	_, gInfo, assign := callerOf(f, call)

	inl := New([]*program.FuncInfo{fInfo, gInfo})
	inl.Analyze()

	require.True(t, inl.Skipped(f))
	require.Same(t, call, assign.E)
}

func TestSkipVariadicArityMismatch(t *testing.T) {
	// A single-parameter function invoked with a different argument count
	// is using the any-typed variadic loophole; binding would be bogus.
	f, fInfo := addOne("f")
	call := callTo(f, constInt(1), constInt(2))
	_, gInfo, assign := callerOf(f, call)

	inl := New([]*program.FuncInfo{fInfo, gInfo})
	inl.Analyze()

	require.True(t, inl.Skipped(f))
	require.Same(t, call, assign.E)
}

func TestNestedInlining(t *testing.T) {
	// h calls f, f is also called by g; inlining g's call to h must expand
	// the inner call to f inside the duplicated body.
	f, fInfo := addOne("f")

	hx := ast.NewID("hx", intT)
	hScope := ast.NewScope([]*ast.ID{hx}, 1, intT)
	hBody := program.NewBody(&ast.StmtList{Stmts: []ast.Stmt{
		&ast.ReturnStmt{E: callTo(f, &ast.NameExpr{ID: hx})},
	}}, 0)
	h := program.NewFunction("h", program.FlavorFunction, hScope, hBody)
	hInfo := program.NewFuncInfo(h, hBody, hScope,
		program.NewProfile([]*program.Function{f}, nil))

	call := callTo(h, constInt(5))
	g, gInfo, assign := callerOf(h, call)

	inl := New([]*program.FuncInfo{fInfo, hInfo, gInfo})
	inl.Analyze()

	outer, ok := assign.E.(*ast.InlineExpr)
	require.True(t, ok)

	ret := outer.Body.(*ast.StmtList).Stmts[0].(*ast.ReturnStmt)
	inner, ok := ret.E.(*ast.InlineExpr)
	require.True(t, ok)

	// The outer expansion starts past g's own frame; the inner one's offset
	// is relative to the duplicated body it sits in, so the compiler can
	// stack offsets as it descends.
	require.Equal(t, 1, outer.FrameOffset)
	require.Equal(t, 1, inner.FrameOffset)

	// h's own pass already folded f's frame into h's; g's frame covers its
	// own local plus the grown callee frame.
	require.Equal(t, 2, h.FrameSize())
	require.True(t, inl.DidInline(f))
	require.Equal(t, 1+h.FrameSize(), g.FrameSize())
}

// newEvent builds an event handler with the given number of independent
// bodies, each `ev(n) { n + <k> }` under its own scope.
func newEvent(name string, nbodies int) (*program.Function, []*program.FuncInfo) {
	var bodies []*program.Body
	var scopes []*ast.Scope

	for k := 0; k < nbodies; k++ {
		n := ast.NewID("n", intT)
		scope := ast.NewScope([]*ast.ID{n}, 1, nil)
		body := program.NewBody(&ast.StmtList{Stmts: []ast.Stmt{
			&ast.ExprStmt{E: &ast.BinaryExpr{
				Op:  ast.AddOp,
				L:   &ast.NameExpr{ID: n},
				R:   constInt(int64(k)),
				Typ: intT,
			}},
		}}, -k)
		bodies = append(bodies, body)
		scopes = append(scopes, scope)
	}

	fn := program.NewFunction(name, program.FlavorEvent, scopes[0], bodies...)
	var infos []*program.FuncInfo
	for k := range bodies {
		infos = append(infos, program.NewFuncInfo(fn, bodies[k], scopes[k],
			program.NewProfile(nil, nil)))
	}
	return fn, infos
}

func TestMergeEventHandlers(t *testing.T) {
	ev, infos := newEvent("my_event", 3)
	oldScope := ev.Scope()

	inl := New([]*program.FuncInfo{infos[0], infos[1], infos[2]})
	inl.Analyze()

	require.Len(t, ev.Bodies(), 1)
	merged := ev.Bodies()[0]

	// One expansion per original body, in registration order.
	list := merged.Stmts.(*ast.StmtList)
	require.Len(t, list.Stmts, 3)
	for _, s := range list.Stmts {
		es := s.(*ast.ExprStmt)
		_, ok := es.E.(*ast.InlineExpr)
		require.True(t, ok)
	}

	// The merged body lives under a fresh parameter scope.
	require.NotSame(t, oldScope, ev.Scope())
	require.Equal(t, 1, ev.Scope().NumParams())
	require.NotSame(t, oldScope.OrderedVars()[0], ev.Scope().OrderedVars()[0])

	// The primary entry carries the merged body; the others are done.
	require.Same(t, merged, infos[0].Body())
	require.True(t, infos[0].ShouldAnalyze())
	require.False(t, infos[1].ShouldAnalyze())
	require.False(t, infos[2].ShouldAnalyze())
}

func TestMergeAllOrNothing(t *testing.T) {
	ev, infos := newEvent("my_event", 3)
	oldScope := ev.Scope()

	// Each body costs 4 units; room for two expansions only.
	inl := New([]*program.FuncInfo{infos[0], infos[1], infos[2]}, WithMaxSize(10))
	inl.Analyze()

	// The merge failed partway, so the function is untouched.
	require.Len(t, ev.Bodies(), 3)
	require.Same(t, oldScope, ev.Scope())
	require.True(t, infos[1].ShouldAnalyze())
	require.True(t, infos[2].ShouldAnalyze())
}

func TestMergeExemption(t *testing.T) {
	ev, infos := newEvent("zinc_init", 2)

	inl := New([]*program.FuncInfo{infos[0], infos[1]})
	inl.Analyze()

	require.Len(t, ev.Bodies(), 2)
}

func TestMergeExemptionConfigurable(t *testing.T) {
	ev, infos := newEvent("boot", 2)

	inl := New([]*program.FuncInfo{infos[0], infos[1]}, WithMergeExempt("boot"))
	inl.Analyze()

	require.Len(t, ev.Bodies(), 2)
}

func TestNoMergeForGroupedHandlers(t *testing.T) {
	ev, infos := newEvent("my_event", 2)
	infos[0].Scope().SetAttrs([]ast.Attr{{Kind: ast.AttrGroup, Name: "g"}})

	inl := New([]*program.FuncInfo{infos[0], infos[1]})
	inl.Analyze()

	// One body opted out, and a partial merge is unsound.
	require.Len(t, ev.Bodies(), 2)
}

func TestSingleBodyEventNotMerged(t *testing.T) {
	ev, infos := newEvent("my_event", 1)

	inl := New([]*program.FuncInfo{infos[0]})
	inl.Analyze()

	require.Len(t, ev.Bodies(), 1)
	_, isList := ev.Bodies()[0].Stmts.(*ast.StmtList)
	require.True(t, isList)
	require.Same(t, infos[0].Body(), ev.Bodies()[0])
}
