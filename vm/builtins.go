package vm

import (
	"sort"
	"strings"

	"github.com/zinclang/zinc/bytecode"
	"github.com/zinclang/zinc/errz"
	"github.com/zinclang/zinc/types"
	"github.com/zinclang/zinc/value"
)

// catArgs renders and concatenates the arguments described by a
// concatenation instruction's aux table. Constant arguments were rendered at
// compile time and carry their final string form.
func (m *Machine) catArgs(frame []value.Val, aux *bytecode.Aux) string {
	var sb strings.Builder
	for _, el := range aux.Elems {
		if el.IsConst {
			sb.WriteString(el.C.AsString().String())
			continue
		}
		sb.WriteString(value.Render(frame[el.Slot], el.T))
	}
	return sb.String()
}

// strstrVal returns the 1-based position of little within big, or 0 when
// absent.
func strstrVal(big, little string) value.Val {
	return value.Count(uint64(strings.Index(big, little) + 1))
}

// subBytesVal extracts n bytes of s starting at the 1-based position start.
// A negative n, or one reaching past the end, takes the rest of the string.
func subBytesVal(s string, start uint64, n int64) value.Val {
	b := int(start)
	if b > 0 {
		b--
	}
	if b >= len(s) {
		return value.Str("")
	}
	if n < 0 || b+int(n) > len(s) {
		return value.Str(s[b:])
	}
	return value.Str(s[b : b+int(n)])
}

// sortVector orders the vector's present elements ascending, moving absent
// elements to the end.
func (m *Machine) sortVector(vec *value.Vector, z *bytecode.Inst) {
	if vec == nil {
		m.raise(errz.New(errz.ErrValue, z.Loc, "sort of unset vector"))
		return
	}

	elems := vec.Elems()
	yt := vec.Yield().Tag()

	sort.SliceStable(elems, func(i, j int) bool {
		a, b := elems[i], elems[j]
		if !a.Present {
			return false
		}
		if !b.Present {
			return true
		}
		switch yt {
		case types.TagDouble, types.TagTime:
			return a.V.AsDouble() < b.V.AsDouble()
		case types.TagCount:
			return a.V.AsCount() < b.V.AsCount()
		default:
			return a.V.AsInt() < b.V.AsInt()
		}
	})
}

// reserveVector pre-sizes a vector's backing storage.
func (m *Machine) reserveVector(vec *value.Vector, n int, z *bytecode.Inst) {
	if vec == nil {
		m.raise(errz.New(errz.ErrValue, z.Loc, "reserve of unset vector"))
		return
	}
	vec.Reserve(n)
}

// flusher is satisfied by buffered writers such as bufio.Writer.
type flusher interface {
	Flush() error
}

// flushStreams forces out any output buffered in the machine's writer,
// returning the number of streams flushed.
func (m *Machine) flushStreams() uint64 {
	m.flushCount++
	var flushed uint64
	if f, ok := m.out.(flusher); ok {
		if err := f.Flush(); err == nil {
			flushed++
		}
	}
	return flushed
}
