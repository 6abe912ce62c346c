// Package value defines the tagged register values operated on by the zinc
// virtual machine. A Val is a compact union of an integer, a float, and a
// pointer to a managed payload. Managed payloads (strings, vectors, records,
// boxed "any" values) are reference counted and must be explicitly released
// when they leave a frame slot; the compiler knows statically which slots
// ever hold managed data, so frames track those slots by index.
package value

import (
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/zinclang/zinc/errz"
	"github.com/zinclang/zinc/types"
)

// Val is a tagged register value. The zero Val is a cleared slot: it holds
// no reference and reads as int/count/bool zero.
type Val struct {
	i int64
	d float64
	m managed
}

// managed is implemented by reference-counted payloads.
type managed interface {
	ref()
	// unref decrements the reference count and returns true when the count
	// reached zero and the payload's own references were dropped.
	unref() bool
}

// refCount provides the shared reference-count plumbing for payloads.
type refCount struct {
	n int32
}

func (r *refCount) ref() { atomic.AddInt32(&r.n, 1) }

func (r *refCount) dec() int32 {
	n := atomic.AddInt32(&r.n, -1)
	if n < 0 {
		panic(errz.Internalf("managed value released after reaching zero references"))
	}
	return n
}

// Int returns a Val holding a signed integer.
func Int(i int64) Val { return Val{i: i} }

// Count returns a Val holding an unsigned integer.
func Count(u uint64) Val { return Val{i: int64(u)} }

// Bool returns a Val holding a boolean.
func Bool(b bool) Val {
	if b {
		return Val{i: 1}
	}
	return Val{}
}

// Double returns a Val holding a float.
func Double(d float64) Val { return Val{d: d} }

// Str returns a Val holding a new managed string with one reference.
func Str(s string) Val {
	sv := &StringVal{refCount: refCount{n: 1}, s: s}
	return Val{m: sv}
}

// Vec returns a Val referencing the given vector without adjusting its count.
func Vec(v *Vector) Val { return Val{m: v} }

// Rec returns a Val referencing the given record without adjusting its count.
func Rec(r *Record) Val { return Val{m: r} }

// Box wraps a concrete value and its type as a managed "any" value with one
// reference. The inner value's reference is adopted by the box.
func Box(t *types.Type, v Val) Val {
	return Val{m: &AnyVal{refCount: refCount{n: 1}, t: t, v: v}}
}

// AsInt returns the value as a signed integer.
func (v Val) AsInt() int64 { return v.i }

// AsCount returns the value as an unsigned integer.
func (v Val) AsCount() uint64 { return uint64(v.i) }

// AsBool returns the value as a boolean.
func (v Val) AsBool() bool { return v.i != 0 }

// AsDouble returns the value as a float.
func (v Val) AsDouble() float64 { return v.d }

// AsString returns the managed string payload, or nil.
func (v Val) AsString() *StringVal {
	s, _ := v.m.(*StringVal)
	return s
}

// AsVector returns the managed vector payload, or nil.
func (v Val) AsVector() *Vector {
	vec, _ := v.m.(*Vector)
	return vec
}

// AsRecord returns the managed record payload, or nil.
func (v Val) AsRecord() *Record {
	r, _ := v.m.(*Record)
	return r
}

// AsAny returns the managed "any" box payload, or nil.
func (v Val) AsAny() *AnyVal {
	a, _ := v.m.(*AnyVal)
	return a
}

// IsManaged reports whether the value holds a managed payload.
func (v Val) IsManaged() bool { return v.m != nil }

// IsCleared reports whether the value holds no managed reference.
func (v Val) IsCleared() bool { return v.m == nil }

// Ref increments the managed payload's reference count (if any) and returns
// the value, so a second owned copy can be stored elsewhere.
func (v Val) Ref() Val {
	if v.m != nil {
		v.m.ref()
	}
	return v
}

// Release drops the value's managed reference, if it holds one. Releasing a
// payload whose count already reached zero is an internal consistency
// failure and panics.
func (v Val) Release() {
	if v.m != nil {
		v.m.unref()
	}
}

// Refs returns the current reference count of the managed payload, or 0.
func (v Val) Refs() int32 {
	switch m := v.m.(type) {
	case *StringVal:
		return m.n
	case *Vector:
		return m.n
	case *Record:
		return m.n
	case *AnyVal:
		return m.n
	default:
		return 0
	}
}

// StringVal is a managed string payload.
type StringVal struct {
	refCount
	s string
}

// NewString returns a string payload with one reference.
func NewString(s string) *StringVal { return &StringVal{refCount: refCount{n: 1}, s: s} }

func (s *StringVal) String() string { return s.s }

func (s *StringVal) unref() bool { return s.dec() == 0 }

// AnyVal is a managed box holding a dynamically typed value together with
// its concrete type, used for slots statically typed "any".
type AnyVal struct {
	refCount
	t *types.Type
	v Val
}

func (a *AnyVal) Type() *types.Type { return a.t }
func (a *AnyVal) Value() Val        { return a.v }

func (a *AnyVal) unref() bool {
	if a.dec() != 0 {
		return false
	}
	a.v.Release()
	a.v = Val{}
	return true
}

// Record is a managed record payload with optional (possibly unset) fields.
type Record struct {
	refCount
	t      *types.Type
	fields []Opt
}

// NewRecord returns a record of the given type with all fields unset and
// one reference.
func NewRecord(t *types.Type) *Record {
	return &Record{refCount: refCount{n: 1}, t: t, fields: make([]Opt, len(t.Fields()))}
}

func (r *Record) Type() *types.Type { return r.t }

// Field returns the i'th field.
func (r *Record) Field(i int) Opt { return r.fields[i] }

// SetField stores an owned value into the i'th field, releasing any managed
// value previously stored there.
func (r *Record) SetField(i int, v Opt) {
	r.fields[i].release(r.t.Fields()[i].Type)
	r.fields[i] = v
}

func (r *Record) unref() bool {
	if r.dec() != 0 {
		return false
	}
	for i := range r.fields {
		r.fields[i].release(r.t.Fields()[i].Type)
		r.fields[i] = Opt{}
	}
	return true
}

// Render formats a value of the given type the way the script-level cat()
// builtin does.
func Render(v Val, t *types.Type) string {
	if t == nil {
		return "<untyped>"
	}
	switch t.Tag() {
	case types.TagBool:
		if v.AsBool() {
			return "T"
		}
		return "F"
	case types.TagInt:
		return strconv.FormatInt(v.AsInt(), 10)
	case types.TagCount:
		return strconv.FormatUint(v.AsCount(), 10)
	case types.TagDouble, types.TagTime:
		return strconv.FormatFloat(v.AsDouble(), 'g', -1, 64)
	case types.TagString:
		if s := v.AsString(); s != nil {
			return s.String()
		}
		return ""
	case types.TagVector:
		vec := v.AsVector()
		if vec == nil {
			return "[]"
		}
		out := "["
		for i := 0; i < vec.Len(); i++ {
			if i > 0 {
				out += ", "
			}
			e := vec.Elem(i)
			if !e.Present {
				out += "-"
				continue
			}
			out += Render(e.V, t.Yield())
		}
		return out + "]"
	case types.TagAny:
		if a := v.AsAny(); a != nil {
			return Render(a.Value(), a.Type())
		}
		return "<unset any>"
	default:
		return fmt.Sprintf("<%s>", t.Name())
	}
}
