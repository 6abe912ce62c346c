package callgraph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zinclang/zinc/ast"
	"github.com/zinclang/zinc/program"
)

func newFunc(name string) *program.Function {
	scope := ast.NewScope(nil, 0, nil)
	body := program.NewBody(&ast.StmtList{}, 0)
	return program.NewFunction(name, program.FlavorFunction, scope, body)
}

func newInfo(fn *program.Function, calls ...*program.Function) *program.FuncInfo {
	return program.NewFuncInfo(fn, fn.Bodies()[0], fn.Scope(), program.NewProfile(calls, nil))
}

func TestNonRecursiveChain(t *testing.T) {
	a := newFunc("a")
	b := newFunc("b")
	c := newFunc("c")

	res := Analyze([]*program.FuncInfo{
		newInfo(a, b),
		newInfo(b, c),
		newInfo(c),
	})

	require.True(t, res.NonRecursive(a))
	require.True(t, res.NonRecursive(b))
	require.True(t, res.NonRecursive(c))

	// a reaches c transitively through b.
	require.True(t, res.CallSet(a)[b])
	require.True(t, res.CallSet(a)[c])
	require.False(t, res.CallSet(c)[a])
}

func TestDirectRecursion(t *testing.T) {
	f := newFunc("f")
	g := newFunc("g")

	res := Analyze([]*program.FuncInfo{
		newInfo(f, f),
		newInfo(g, f),
	})

	require.False(t, res.NonRecursive(f))

	// Calling into a recursive function is not itself recursion.
	require.True(t, res.NonRecursive(g))
}

func TestIndirectRecursion(t *testing.T) {
	a := newFunc("a")
	b := newFunc("b")
	c := newFunc("c")
	d := newFunc("d")

	res := Analyze([]*program.FuncInfo{
		newInfo(a, b),
		newInfo(b, c),
		newInfo(c, a),
		newInfo(d, a),
	})

	require.False(t, res.NonRecursive(a))
	require.False(t, res.NonRecursive(b))
	require.False(t, res.NonRecursive(c))
	require.True(t, res.NonRecursive(d))

	// d's transitive call set covers the whole cycle.
	cs := res.CallSet(d)
	require.True(t, cs[a])
	require.True(t, cs[b])
	require.True(t, cs[c])
}

func TestMultipleBodiesMergeCallSets(t *testing.T) {
	// An event handler contributes one entry per registered body; the
	// function's call set is the union across them.
	x := newFunc("x")
	y := newFunc("y")

	scope := ast.NewScope(nil, 0, nil)
	b1 := program.NewBody(&ast.StmtList{}, 0)
	b2 := program.NewBody(&ast.StmtList{}, -5)
	ev := program.NewFunction("ev", program.FlavorEvent, scope, b1, b2)

	res := Analyze([]*program.FuncInfo{
		program.NewFuncInfo(ev, b1, scope, program.NewProfile([]*program.Function{x}, nil)),
		program.NewFuncInfo(ev, b2, scope, program.NewProfile([]*program.Function{y}, nil)),
		newInfo(x),
		newInfo(y),
	})

	require.True(t, res.NonRecursive(ev))
	require.True(t, res.CallSet(ev)[x])
	require.True(t, res.CallSet(ev)[y])
}

func TestSelfCallThroughSecondBody(t *testing.T) {
	scope := ast.NewScope(nil, 0, nil)
	b1 := program.NewBody(&ast.StmtList{}, 0)
	b2 := program.NewBody(&ast.StmtList{}, 0)
	ev := program.NewFunction("ev", program.FlavorEvent, scope, b1, b2)

	// The second body re-raises the event; the first entry alone looks
	// innocent, so the eviction must survive the later entry's priming.
	res := Analyze([]*program.FuncInfo{
		program.NewFuncInfo(ev, b1, scope, program.NewProfile([]*program.Function{ev}, nil)),
		program.NewFuncInfo(ev, b2, scope, program.NewProfile(nil, nil)),
	})

	require.False(t, res.NonRecursive(ev))
}
