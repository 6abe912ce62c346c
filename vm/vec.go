package vm

import (
	"math"

	"github.com/zinclang/zinc/bytecode"
	"github.com/zinclang/zinc/errz"
	"github.com/zinclang/zinc/op"
	"github.com/zinclang/zinc/types"
	"github.com/zinclang/zinc/value"
)

// vecExecBinary evaluates an element-wise binary operation over two vectors
// of the same length, writing a fresh result vector. An absent element in
// either operand yields an absent result element.
func (m *Machine) vecExecBinary(b *Body, frame []value.Val, z *bytecode.Inst) {
	v2 := frame[z.V2].AsVector()
	v3 := frame[z.V3].AsVector()
	if v2 == nil || v3 == nil {
		m.raise(errz.New(errz.ErrValue, z.Loc, "vector operation on unset vector"))
		return
	}
	if v2.Len() != v3.Len() {
		m.raise(errz.Newf(errz.ErrValue, z.Loc, "vector operands differ in size (%d/%d)", v2.Len(), v3.Len()))
		return
	}

	yield := z.T.Yield()
	res := value.NewVector(yield, v2.Len())
	out := res.Elems()

	e2 := v2.Elems()
	e3 := v3.Elems()
	for i := range e2 {
		if !e2[i].Present || !e3[i].Present {
			continue
		}
		out[i] = value.Some(elemBinary(z.Op, yield.Tag(), e2[i].V, e3[i].V))
	}

	m.assign(b, frame, z.V1, value.Vec(res))
}

// vecExecUnary evaluates an element-wise unary operation, propagating
// absence.
func (m *Machine) vecExecUnary(b *Body, frame []value.Val, z *bytecode.Inst) {
	v2 := frame[z.V2].AsVector()
	if v2 == nil {
		m.raise(errz.New(errz.ErrValue, z.Loc, "vector operation on unset vector"))
		return
	}

	yield := z.T.Yield()
	res := value.NewVector(yield, v2.Len())
	out := res.Elems()

	for i, e := range v2.Elems() {
		if !e.Present {
			continue
		}
		if yield.Tag() == types.TagDouble {
			out[i] = value.Some(value.Double(-e.V.AsDouble()))
		} else {
			out[i] = value.Some(value.Int(-e.V.AsInt()))
		}
	}

	m.assign(b, frame, z.V1, value.Vec(res))
}

func elemBinary(code op.Code, tag types.Tag, a, b value.Val) value.Val {
	if tag == types.TagDouble {
		x, y := a.AsDouble(), b.AsDouble()
		switch code {
		case op.VecAddVVV:
			return value.Double(x + y)
		case op.VecSubVVV:
			return value.Double(x - y)
		case op.VecMulVVV:
			return value.Double(x * y)
		}
	} else {
		x, y := a.AsInt(), b.AsInt()
		switch code {
		case op.VecAddVVV:
			return value.Int(x + y)
		case op.VecSubVVV:
			return value.Int(x - y)
		case op.VecMulVVV:
			return value.Int(x * y)
		}
	}
	panic(errz.Internalf("bad element-wise opcode %q", code))
}

// vecCoerce converts a vector's elements to a different arithmetic type.
// An element whose value does not fit the target type becomes absent in the
// result, and the conversion records a non-fatal diagnostic; execution
// continues.
func (m *Machine) vecCoerce(b *Body, frame []value.Val, z *bytecode.Inst) {
	src := frame[z.V2].AsVector()
	if src == nil {
		m.raise(errz.New(errz.ErrValue, z.Loc, "coercion of unset vector"))
		return
	}

	res := value.NewVector(z.T.Yield(), src.Len())
	out := res.Elems()

	for i, e := range src.Elems() {
		if !e.Present {
			continue
		}
		cv, ok := coerceElem(z.Op, e.V)
		if !ok {
			m.diag(errz.Newf(errz.ErrOverflow, z.Loc, "overflow promoting from %s arithmetic value", coerceSrcName(z.Op)))
			continue
		}
		out[i] = value.Some(cv)
	}

	m.assign(b, frame, z.V1, value.Vec(res))
}

func coerceElem(code op.Code, v value.Val) (value.Val, bool) {
	switch code {
	case op.VecCoerceDI:
		return value.Double(float64(v.AsInt())), true
	case op.VecCoerceDU:
		return value.Double(float64(v.AsCount())), true
	case op.VecCoerceID:
		d := v.AsDouble()
		if math.IsNaN(d) || d >= math.MaxInt64 || d < math.MinInt64 {
			return value.Val{}, false
		}
		return value.Int(int64(d)), true
	case op.VecCoerceIU:
		u := v.AsCount()
		if u > math.MaxInt64 {
			return value.Val{}, false
		}
		return value.Int(int64(u)), true
	case op.VecCoerceUD:
		d := v.AsDouble()
		if math.IsNaN(d) || d < 0 || d >= math.MaxUint64 {
			return value.Val{}, false
		}
		return value.Count(uint64(d)), true
	case op.VecCoerceUI:
		i := v.AsInt()
		if i < 0 {
			return value.Val{}, false
		}
		return value.Count(uint64(i)), true
	default:
		panic(errz.Internalf("bad coercion opcode %q", code))
	}
}

func coerceSrcName(code op.Code) string {
	switch code {
	case op.VecCoerceID, op.VecCoerceUD:
		return "double"
	case op.VecCoerceDI, op.VecCoerceUI:
		return "signed"
	default:
		return "unsigned"
	}
}
