package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBaseSingletons(t *testing.T) {
	require.Same(t, Base(TagInt), Base(TagInt))
	require.Equal(t, "int", Base(TagInt).Name())
	require.Panics(t, func() { Base(TagVector) })
}

func TestSame(t *testing.T) {
	require.True(t, Same(Base(TagInt), Base(TagInt)))
	require.False(t, Same(Base(TagInt), Base(TagCount)))
	require.False(t, Same(Base(TagInt), nil))

	require.True(t, Same(VectorOf(Base(TagInt)), VectorOf(Base(TagInt))))
	require.False(t, Same(VectorOf(Base(TagInt)), VectorOf(Base(TagDouble))))

	r1 := NewRecord("r", Field{Name: "a", Type: Base(TagInt)})
	r2 := NewRecord("r", Field{Name: "a", Type: Base(TagInt)})
	r3 := NewRecord("r", Field{Name: "a", Type: Base(TagCount)})
	require.True(t, Same(r1, r2))
	require.False(t, Same(r1, r3))
}

func TestPromotionCompatible(t *testing.T) {
	expected := NewRecord("base",
		Field{Name: "host", Type: Base(TagString)},
		Field{Name: "port", Type: Base(TagCount)})

	wider := NewRecord("ext",
		Field{Name: "port", Type: Base(TagCount)},
		Field{Name: "host", Type: Base(TagString)},
		Field{Name: "iface", Type: Base(TagString)})

	narrower := NewRecord("narrow",
		Field{Name: "host", Type: Base(TagString)})

	mistyped := NewRecord("bad",
		Field{Name: "host", Type: Base(TagString)},
		Field{Name: "port", Type: Base(TagInt)})

	// Extra fields are fine; field order does not matter.
	require.True(t, PromotionCompatible(expected, wider))

	// Missing or mistyped fields refuse the promotion.
	require.False(t, PromotionCompatible(expected, narrower))
	require.False(t, PromotionCompatible(expected, mistyped))

	require.False(t, PromotionCompatible(expected, Base(TagString)))
}

func TestIsManaged(t *testing.T) {
	require.True(t, Base(TagString).IsManaged())
	require.True(t, Base(TagAny).IsManaged())
	require.True(t, VectorOf(Base(TagInt)).IsManaged())
	require.False(t, Base(TagInt).IsManaged())
	require.False(t, Base(TagDouble).IsManaged())
}
