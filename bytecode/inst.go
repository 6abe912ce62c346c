// Package bytecode defines the linear instruction form executed by the zinc
// virtual machine, and the Assembler that the instruction selector and the
// bytecode compiler emit into.
package bytecode

import (
	"github.com/zinclang/zinc/errz"
	"github.com/zinclang/zinc/op"
	"github.com/zinclang/zinc/types"
	"github.com/zinclang/zinc/value"
)

// Inst is one instruction: an opcode, up to four operand slots (frame
// index, embedded small immediate, or jump target depending on the opcode),
// an optional embedded constant, an optional type, and an optional Aux side
// table for variable-arity operations.
type Inst struct {
	Op             op.Code
	V1, V2, V3, V4 int
	C              value.Val
	T              *types.Type
	Aux            *Aux
	Loc            errz.SourceLocation
}

// AuxElem describes one argument of a variable-arity operation: either a
// compile-time constant or a frame slot with its type.
type AuxElem struct {
	IsConst bool
	C       value.Val
	T       *types.Type
	Slot    int
}

// ConstElem describes a constant argument.
func ConstElem(c value.Val, t *types.Type) AuxElem {
	return AuxElem{IsConst: true, C: c, T: t}
}

// SlotElem describes a frame-slot argument.
func SlotElem(slot int, t *types.Type) AuxElem {
	return AuxElem{Slot: slot, T: t}
}

// Aux is the auxiliary payload for instructions whose arguments do not fit
// the fixed operand slots, e.g. N-ary concatenation, or calls that must
// describe how caller values map onto callee parameters.
type Aux struct {
	Elems []AuxElem

	// Callee names the compiled body invoked by a call instruction.
	Callee string
}

// Flow is the control-flow outcome of executing a body: a normal return or
// a non-local exit signal.
type Flow int

const (
	FlowReturn Flow = iota
	FlowBreak
	FlowNext
	FlowFallthrough
)

// String returns the flow tag's name.
func (f Flow) String() string {
	switch f {
	case FlowReturn:
		return "return"
	case FlowBreak:
		return "break"
	case FlowNext:
		return "next"
	case FlowFallthrough:
		return "fallthrough"
	default:
		return "unknown"
	}
}
