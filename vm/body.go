// Package vm implements the zinc bytecode virtual machine: a register-based
// interpreter executing a flat instruction array against a frame of tagged
// values, with explicit release of managed slots, element-wise vector
// operations that propagate element absence, and optional per-instruction
// execution profiling.
package vm

import (
	"github.com/zinclang/zinc/bytecode"
	"github.com/zinclang/zinc/value"
)

// Body is one compiled function body: the finished instruction array plus
// the frame metadata the interpreter needs.
type Body struct {
	name      string
	insts     []bytecode.Inst
	frameSize int

	// Slot indices holding managed values, tracked by index rather than by
	// runtime type tag: the compiler knows statically which slots ever hold
	// managed data.
	managedSlots []int
	managedSet   map[int]bool

	slotNames []string
	globals   []string

	// Non-recursive bodies reuse a single pre-allocated frame across
	// invocations, avoiding per-call allocation. Anything that might
	// recurse gets a fresh frame per call instead.
	nonRecursive bool
	fixedFrame   []value.Val

	// Profiling state. defaultProf covers top-level invocations; profVecs
	// breaks execution out per caller call-stack context.
	defaultProf *ProfVec
	profVecs    map[string]*ProfVec
	cpuTime     float64 // seconds, profiling overhead not yet subtracted
	ninst       uint64
}

// NewBody assembles a Body from the given assembler's instructions and
// frame layout.
func NewBody(asm *bytecode.Assembler) *Body {
	b := &Body{
		name:         asm.Name(),
		insts:        asm.Insts(),
		frameSize:    asm.FrameSize(),
		managedSlots: asm.ManagedSlots(),
		managedSet:   make(map[int]bool),
		globals:      asm.Globals(),
		nonRecursive: asm.NonRecursive,
		profVecs:     make(map[string]*ProfVec),
	}
	for i := 0; i < b.frameSize; i++ {
		b.slotNames = append(b.slotNames, asm.SlotName(i))
	}
	for _, ms := range b.managedSlots {
		b.managedSet[ms] = true
	}

	if b.nonRecursive {
		b.fixedFrame = make([]value.Val, b.frameSize)
		// The zero Val is a cleared slot, so the managed slots start out
		// cleared as required.
	}

	return b
}

// Name returns the body's function name.
func (b *Body) Name() string { return b.name }

// Insts returns the body's instruction array.
func (b *Body) Insts() []bytecode.Inst { return b.insts }

// FrameSize returns the number of frame slots the body needs.
func (b *Body) FrameSize() int { return b.frameSize }

// ManagedSlots returns the indices of slots requiring explicit release.
func (b *Body) ManagedSlots() []int { return b.managedSlots }

// SlotName returns the identifier occupying the given frame slot, for
// disassembly and profile reports.
func (b *Body) SlotName(slot int) string {
	if slot >= 0 && slot < len(b.slotNames) {
		return b.slotNames[slot]
	}
	return "?"
}

// Globals returns the global-variable names referenced by the body, indexed
// by the operand values of global load and store instructions.
func (b *Body) Globals() []string { return b.globals }

// NonRecursive reports whether the body reuses a fixed frame.
func (b *Body) NonRecursive() bool { return b.nonRecursive }

// FixedFrame exposes the reused frame for tests verifying the managed-slot
// discipline; nil for recursive bodies.
func (b *Body) FixedFrame() []value.Val { return b.fixedFrame }

func (b *Body) buildProfVec() *ProfVec {
	pv := make(ProfVec, len(b.insts))
	return &pv
}
