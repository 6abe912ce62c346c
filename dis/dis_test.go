package dis

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zinclang/zinc/bytecode"
	"github.com/zinclang/zinc/op"
	"github.com/zinclang/zinc/types"
	"github.com/zinclang/zinc/value"
	"github.com/zinclang/zinc/vm"
)

func testBody() *vm.Body {
	intT := types.Base(types.TagInt)
	asm := bytecode.NewAssembler("main")
	x := asm.NamedSlot("x", intT)
	y := asm.NamedSlot("y", intT)
	g := asm.Global("total")
	asm.AddInst(bytecode.Inst{Op: op.AssignVC, V1: x, C: value.Int(11), T: intT})
	asm.AddInst(bytecode.Inst{Op: op.AddVVC, V1: y, V2: x, C: value.Int(31), T: intT})
	asm.AddInst(bytecode.Inst{Op: op.StoreGlobalGV, V1: g, V2: y})
	asm.AddInst(bytecode.Inst{Op: op.Jump, V1: 4})
	asm.AddInst(bytecode.Inst{Op: op.ReturnV, V1: y, T: intT})
	return vm.NewBody(asm)
}

func TestDisassemble(t *testing.T) {
	instructions := Disassemble(testBody())
	require.Len(t, instructions, 5)

	require.Equal(t, 0, instructions[0].PC)
	require.Equal(t, "assign-VC", instructions[0].Name)
	require.Equal(t, "11", instructions[0].Constant)

	// Slot operands are annotated with the identifiers occupying them.
	require.Equal(t, "y, x", instructions[1].Annotation)

	// Globals and jump targets are spelled out.
	require.Equal(t, ":total <- y", instructions[2].Annotation)
	require.Equal(t, "-> 4", instructions[3].Annotation)

	require.Equal(t, "y", instructions[4].Annotation)
	require.Empty(t, instructions[4].Constant)
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	Print(Disassemble(testBody()), &buf)

	out := buf.String()
	require.Contains(t, out, "assign-VC")
	require.Contains(t, out, "return-V")
	require.Contains(t, out, ":total <- y")
}
