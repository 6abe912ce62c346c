package bytecode

import (
	"fmt"

	"github.com/zinclang/zinc/ast"
	"github.com/zinclang/zinc/types"
)

// Assembler accumulates the instructions for one compiled body and owns its
// frame layout: it assigns frame slots to identifiers on first use and
// records which slots ever hold managed data, so the finished body can
// clear and release exactly those slots.
type Assembler struct {
	name      string
	insts     []Inst
	slots     map[string]int
	slotTypes []*types.Type
	slotNames []string
	globals   []string
	globalIdx map[string]int

	// NonRecursive marks bodies the analyzer proved non-recursive; the VM
	// gives them a fixed, reused frame instead of allocating per call.
	NonRecursive bool
}

// NewAssembler creates an assembler for a body with the given name.
func NewAssembler(name string) *Assembler {
	return &Assembler{
		name:      name,
		slots:     make(map[string]int),
		globalIdx: make(map[string]int),
	}
}

// Name returns the body name.
func (a *Assembler) Name() string { return a.name }

// FrameSlot returns the frame slot holding the named value, allocating one
// on first use.
func (a *Assembler) FrameSlot(n *ast.NameExpr) int {
	return a.slotFor(n.ID.Name, n.ID.Typ)
}

// Frame1Slot returns the frame slot written by an assignment to the name.
// The write target shares the read slot: slot renumbering for inlined
// bodies already happened upstream.
func (a *Assembler) Frame1Slot(n *ast.NameExpr) int {
	return a.slotFor(n.ID.Name, n.ID.Typ)
}

// NamedSlot allocates or returns the slot for an explicitly named value of
// the given type, for callers without an AST node at hand (tests, the call
// lowering's temporaries).
func (a *Assembler) NamedSlot(name string, t *types.Type) int {
	return a.slotFor(name, t)
}

// TempSlot allocates a fresh anonymous slot of the given type.
func (a *Assembler) TempSlot(t *types.Type) int {
	return a.slotFor(fmt.Sprintf("#%d", len(a.slotTypes)), t)
}

func (a *Assembler) slotFor(name string, t *types.Type) int {
	if s, ok := a.slots[name]; ok {
		return s
	}
	s := len(a.slotTypes)
	a.slots[name] = s
	a.slotTypes = append(a.slotTypes, t)
	a.slotNames = append(a.slotNames, name)
	return s
}

// Global returns the index of the named global binding, registering it on
// first use.
func (a *Assembler) Global(name string) int {
	if g, ok := a.globalIdx[name]; ok {
		return g
	}
	g := len(a.globals)
	a.globalIdx[name] = g
	a.globals = append(a.globals, name)
	return g
}

// AddInst appends an instruction and returns its offset.
func (a *Assembler) AddInst(z Inst) int {
	a.insts = append(a.insts, z)
	return len(a.insts) - 1
}

// Insts returns the accumulated instruction array.
func (a *Assembler) Insts() []Inst { return a.insts }

// FrameSize returns the number of slots allocated so far.
func (a *Assembler) FrameSize() int { return len(a.slotTypes) }

// SlotName returns the identifier occupying the given slot.
func (a *Assembler) SlotName(slot int) string { return a.slotNames[slot] }

// SlotType returns the type of the value occupying the given slot.
func (a *Assembler) SlotType(slot int) *types.Type { return a.slotTypes[slot] }

// Globals returns the global binding names in index order.
func (a *Assembler) Globals() []string { return a.globals }

// ManagedSlots returns the indices of slots whose types require explicit
// release, in ascending order.
func (a *Assembler) ManagedSlots() []int {
	var managed []int
	for i, t := range a.slotTypes {
		if t != nil && t.IsManaged() {
			managed = append(managed, i)
		}
	}
	return managed
}
