// Package dis supports analysis of compiled zinc bodies by disassembling
// them. This works with the opcodes defined in the `op` package and the
// instruction form defined in the `bytecode` package.
package dis

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/zinclang/zinc/op"
	"github.com/zinclang/zinc/value"
	"github.com/zinclang/zinc/vm"
)

// Instruction represents a single instruction and its operands.
type Instruction struct {
	PC         int
	Name       string
	Opcode     op.Code
	Operands   []int
	Annotation string
	Constant   string
}

// Disassemble returns a parsed representation of the given body's
// instructions, with frame slots annotated by the identifiers occupying them.
func Disassemble(b *vm.Body) []Instruction {
	insts := b.Insts()
	out := make([]Instruction, 0, len(insts))

	for pc := range insts {
		z := &insts[pc]

		var annotation string
		switch z.Op {
		case op.Jump:
			annotation = fmt.Sprintf("-> %d", z.V1)
		case op.JumpIfFalseV:
			annotation = fmt.Sprintf("%s -> %d", b.SlotName(z.V1), z.V2)
		case op.LoadGlobalVg:
			annotation = fmt.Sprintf("%s <- :%s", b.SlotName(z.V1), b.Globals()[z.V2])
		case op.StoreGlobalGV:
			annotation = fmt.Sprintf(":%s <- %s", b.Globals()[z.V1], b.SlotName(z.V2))
		case op.CallV:
			annotation = z.Aux.Callee
		default:
			annotation = slotAnnotation(b, z.Op, z.V1, z.V2, z.V3, z.V4)
		}

		// The shape suffix of the mnemonic says whether the instruction
		// carries an embedded constant.
		var constant string
		if name := z.Op.String(); strings.Contains(name[strings.LastIndex(name, "-")+1:], "C") {
			constant = value.Render(z.C, z.T)
		}

		out = append(out, Instruction{
			PC:         pc,
			Name:       z.Op.String(),
			Opcode:     z.Op,
			Operands:   []int{z.V1, z.V2, z.V3, z.V4},
			Annotation: annotation,
			Constant:   constant,
		})
	}
	return out
}

// slotAnnotation names the frame slots an opcode's V operands refer to,
// using the operand-shape suffix of the mnemonic to know how many are live.
func slotAnnotation(b *vm.Body, code op.Code, vs ...int) string {
	name := code.String()
	dash := strings.LastIndex(name, "-")
	if dash < 0 {
		return ""
	}
	shape := name[dash+1:]

	var parts []string
	for i, r := range shape {
		if i >= len(vs) {
			break
		}
		if r == 'V' {
			parts = append(parts, b.SlotName(vs[i]))
		}
	}
	return strings.Join(parts, ", ")
}

// Print writes a string representation of the given instructions to the
// given writer.
func Print(instructions []Instruction, writer io.Writer) {
	bold := color.New(color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()

	for _, instr := range instructions {
		line := fmt.Sprintf("%4d  %-18s %s", instr.PC, bold(instr.Name), formatOperands(instr.Operands))
		if instr.Constant != "" {
			line += "  " + green(fmt.Sprintf("%q", instr.Constant))
		}
		if instr.Annotation != "" {
			line += "  " + cyan(instr.Annotation)
		}
		fmt.Fprintln(writer, line)
	}
}

func formatOperands(ops []int) string {
	var sb strings.Builder
	for i, o := range ops {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%d", o)
	}
	return sb.String()
}
