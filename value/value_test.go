package value

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zinclang/zinc/types"
)

var (
	intT = types.Base(types.TagInt)
	strT = types.Base(types.TagString)
)

func TestScalarValues(t *testing.T) {
	require.Equal(t, int64(-3), Int(-3).AsInt())
	require.Equal(t, uint64(7), Count(7).AsCount())
	require.True(t, Bool(true).AsBool())
	require.False(t, Bool(false).AsBool())
	require.Equal(t, 2.5, Double(2.5).AsDouble())

	// The zero Val is a cleared slot.
	var zero Val
	require.True(t, zero.IsCleared())
	require.Equal(t, int64(0), zero.AsInt())
	zero.Release() // no-op
}

func TestReferenceCounting(t *testing.T) {
	s := Str("x")
	require.Equal(t, int32(1), s.Refs())

	s2 := s.Ref()
	require.Equal(t, int32(2), s.Refs())

	s2.Release()
	require.Equal(t, int32(1), s.Refs())

	s.Release()
	require.Equal(t, int32(0), s.Refs())
}

func TestDoubleReleasePanics(t *testing.T) {
	s := Str("x")
	s.Release()
	require.Panics(t, func() { s.Release() })
}

func TestAnyBoxReleasesInner(t *testing.T) {
	inner := Str("payload")
	box := Box(strT, inner) // adopts inner's reference

	require.Same(t, strT, box.AsAny().Type())
	require.Equal(t, "payload", box.AsAny().Value().AsString().String())

	box.Release()
	require.Equal(t, int32(0), inner.Refs())
}

func TestVectorSetElemReleasesOld(t *testing.T) {
	vec := NewVector(strT, 1)

	a := Str("a")
	vec.SetElem(0, Some(a))
	require.Equal(t, int32(1), a.Refs())

	b := Str("b")
	vec.SetElem(0, Some(b))
	require.Equal(t, int32(0), a.Refs())

	Vec(vec).Release()
	require.Equal(t, int32(0), b.Refs())
}

func TestVectorGrowsOnSet(t *testing.T) {
	vec := NewVector(intT, 1)
	vec.SetElem(3, Some(Int(9)))

	require.Equal(t, 4, vec.Len())
	require.False(t, vec.Elem(1).Present)
	require.Equal(t, int64(9), vec.Elem(3).V.AsInt())
}

func TestRecordFields(t *testing.T) {
	rt := types.NewRecord("r",
		types.Field{Name: "host", Type: strT},
		types.Field{Name: "n", Type: intT})

	rec := NewRecord(rt)
	require.False(t, rec.Field(0).Present)

	h := Str("example")
	rec.SetField(0, Some(h))
	rec.SetField(1, Some(Int(3)))
	require.Equal(t, "example", rec.Field(0).V.AsString().String())

	Rec(rec).Release()
	require.Equal(t, int32(0), h.Refs())
}

func TestRender(t *testing.T) {
	require.Equal(t, "T", Render(Bool(true), types.Base(types.TagBool)))
	require.Equal(t, "F", Render(Bool(false), types.Base(types.TagBool)))
	require.Equal(t, "-12", Render(Int(-12), intT))
	require.Equal(t, "3.5", Render(Double(3.5), types.Base(types.TagDouble)))

	s := Str("hi")
	require.Equal(t, "hi", Render(s, strT))
	s.Release()

	vec := NewVector(intT, 3)
	vec.SetElem(0, Some(Int(1)))
	vec.SetElem(2, Some(Int(3)))
	v := Vec(vec)
	require.Equal(t, "[1, -, 3]", Render(v, types.VectorOf(intT)))
	v.Release()

	inner := Int(5)
	box := Box(intT, inner)
	require.Equal(t, "5", Render(box, types.Base(types.TagAny)))
	box.Release()
}
