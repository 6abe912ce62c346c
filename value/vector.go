package value

import "github.com/zinclang/zinc/types"

// Opt is a possibly-absent vector element or record field. Absence is a
// distinct marker, not a value: element-wise vector operations propagate it,
// so an absent operand element yields an absent result element.
type Opt struct {
	V       Val
	Present bool
}

// Some wraps a value as a present element.
func Some(v Val) Opt { return Opt{V: v, Present: true} }

// None is an absent element.
func None() Opt { return Opt{} }

// release drops the element's managed reference if it is present and its
// element type is managed.
func (o *Opt) release(t *types.Type) {
	if o.Present && t != nil && t.IsManaged() {
		o.V.Release()
	}
}

// Vector is a managed ordered sequence of optional values with a fixed
// element type.
type Vector struct {
	refCount
	yield *types.Type
	elems []Opt
}

// NewVector returns an empty vector with the given element type and one
// reference.
func NewVector(yield *types.Type, n int) *Vector {
	return &Vector{refCount: refCount{n: 1}, yield: yield, elems: make([]Opt, n)}
}

// Yield returns the element type.
func (v *Vector) Yield() *types.Type { return v.yield }

// Len returns the number of elements, present or absent.
func (v *Vector) Len() int { return len(v.elems) }

// Elem returns the i'th element.
func (v *Vector) Elem(i int) Opt { return v.elems[i] }

// SetElem stores an owned value into the i'th element, growing the vector
// if needed and releasing any managed value previously stored there.
func (v *Vector) SetElem(i int, e Opt) {
	if i >= len(v.elems) {
		grown := make([]Opt, i+1)
		copy(grown, v.elems)
		v.elems = grown
	}
	v.elems[i].release(v.yield)
	v.elems[i] = e
}

// Reserve grows the vector's capacity without changing its length.
func (v *Vector) Reserve(n int) {
	if n <= cap(v.elems) {
		return
	}
	grown := make([]Opt, len(v.elems), n)
	copy(grown, v.elems)
	v.elems = grown
}

// Elems exposes the raw element slice for the VM's element-wise loops.
func (v *Vector) Elems() []Opt { return v.elems }

func (v *Vector) unref() bool {
	if v.dec() != 0 {
		return false
	}
	for i := range v.elems {
		v.elems[i].release(v.yield)
		v.elems[i] = Opt{}
	}
	return true
}
