package lower

import (
	"github.com/zinclang/zinc/ast"
	"github.com/zinclang/zinc/bytecode"
	"github.com/zinclang/zinc/op"
	"github.com/zinclang/zinc/types"
	"github.com/zinclang/zinc/value"
)

// builtins maps built-in names to their lowering strategies.
var builtins = map[string]builtin{
	"cat":           catBuiltin{},
	"current_time":  directBuiltin{op: op.CurrentTimeV, nargs: 0, retMatters: true},
	"to_lower":      directBuiltin{op: op.ToLowerVV, nargs: 1, retMatters: true},
	"sort":          sortBuiltin{},
	"strstr":        strstrBuiltin{},
	"sub_bytes":     newSubBytes(),
	"flush_streams": directOptAssign{direct: directBuiltin{op: op.FlushStreamsV, nargs: 0}, op2: op.FlushStreamsX},
	"reserve":       reserveBuiltin{},
}

// directBuiltin lowers a zero- or one-argument built-in to a single fixed
// instruction.
type directBuiltin struct {
	op         op.Code
	nargs      int
	retMatters bool
}

func (d directBuiltin) returnValMatters() bool { return d.retMatters }
func (d directBuiltin) haveBoth() bool         { return false }

func (d directBuiltin) build(lw *Lowerer, n *ast.NameExpr, args []ast.Expr) bool {
	var z bytecode.Inst
	if d.nargs == 0 {
		if n != nil {
			z = bytecode.Inst{Op: d.op, V1: lw.asm.Frame1Slot(n)}
		} else {
			z = bytecode.Inst{Op: d.op}
		}
	} else {
		a0, ok := args[0].(*ast.NameExpr)
		if !ok {
			return false
		}
		slot := lw.asm.FrameSlot(a0)
		if n != nil {
			z = bytecode.Inst{Op: d.op, V1: lw.asm.Frame1Slot(n), V2: slot}
		} else {
			z = bytecode.Inst{Op: d.op, V1: slot}
		}
		z.T = args[0].Type()
	}

	lw.asm.AddInst(z)
	return true
}

// directOptAssign lowers a built-in that has both an assigning and an
// assignment-less instruction form.
type directOptAssign struct {
	direct directBuiltin
	op2    op.Code // assignment-less flavor
}

func (d directOptAssign) returnValMatters() bool { return false }
func (d directOptAssign) haveBoth() bool         { return true }

func (d directOptAssign) build(lw *Lowerer, n *ast.NameExpr, args []ast.Expr) bool {
	if n != nil {
		return d.direct.build(lw, n, args)
	}

	var z bytecode.Inst
	if d.direct.nargs == 0 {
		z = bytecode.Inst{Op: d.op2}
	} else {
		a0, ok := args[0].(*ast.NameExpr)
		if !ok {
			return false
		}
		z = bytecode.Inst{Op: d.direct.op, V1: lw.asm.FrameSlot(a0)}
		z.T = args[0].Type()
	}

	lw.asm.AddInst(z)
	return true
}

// opInfo pairs the opcode selected for one constness mask.
type opInfo struct {
	op op.Code
}

// multiArgBuiltin lowers a built-in with a full constness-mask
// specialization table: each mask of constant vs. register argument
// positions selects a distinct instruction variant, and unsupported masks
// decline.
type multiArgBuiltin struct {
	retMatters bool
	argsInfo   map[uint]opInfo
	constTags  []types.Tag // expected tags for folded constant operands
}

func (m multiArgBuiltin) returnValMatters() bool { return m.retMatters }
func (m multiArgBuiltin) haveBoth() bool         { return false }

func (m multiArgBuiltin) build(lw *Lowerer, n *ast.NameExpr, args []ast.Expr) bool {
	if len(args) != len(m.constTags) {
		return false
	}

	mask := constArgsMask(args)
	info, ok := m.argsInfo[mask]
	if !ok {
		return false
	}

	// A constant first argument travels in the instruction's embedded
	// constant; constant integer arguments in later positions fold into
	// immediate operand slots.
	var c *ast.ConstExpr
	if ce, ok := args[0].(*ast.ConstExpr); ok {
		c = ce
	}

	v := make([]int, 0, len(args))
	for i, a := range args {
		switch a := a.(type) {
		case *ast.NameExpr:
			v = append(v, lw.asm.FrameSlot(a))
		case *ast.ConstExpr:
			if i == 0 && c != nil {
				v = append(v, 0)
				continue
			}
			switch m.constTags[i] {
			case types.TagInt:
				v = append(v, int(a.Const.Val.AsInt()))
			case types.TagCount:
				v = append(v, int(a.Const.Val.AsCount()))
			default:
				return false
			}
		default:
			return false
		}
	}

	if len(args) == 3 {
		switch mask {
		case maskVVV, maskVVC, maskVCC:
			// Operand order already matches the variant.
		case maskVCV:
			v[2], v[1] = v[1], v[2]
		case maskCCV:
			v[2], v[1] = v[1], v[2]
			v = v[1:]
		case maskCVV, maskCVC, maskCCC:
			v = v[1:]
		}
	}

	z := bytecode.Inst{Op: info.op}
	slots := v
	if n != nil {
		z.V1 = lw.asm.Frame1Slot(n)
		z.V2 = slots[0]
		if len(slots) > 1 {
			z.V3 = slots[1]
		}
		if len(slots) > 2 {
			z.V4 = slots[2]
		}
	} else {
		z.V1 = slots[0]
		if len(slots) > 1 {
			z.V2 = slots[1]
		}
		if len(slots) > 2 {
			z.V3 = slots[2]
		}
	}
	if c != nil {
		z.C = c.Const.Val
		z.T = c.Const.Typ
	}

	lw.asm.AddInst(z)
	return true
}

func newSubBytes() multiArgBuiltin {
	return multiArgBuiltin{
		retMatters: true,
		constTags:  []types.Tag{types.TagString, types.TagCount, types.TagInt},
		argsInfo: map[uint]opInfo{
			maskVVV: {op.SubBytesVVVV},
			maskVVC: {op.SubBytesVVVi},
			maskVCV: {op.SubBytesVViV},
			maskVCC: {op.SubBytesVVii},
			maskCVV: {op.SubBytesVVVC},
			maskCVC: {op.SubBytesVViC},
			maskCCV: {op.SubBytesViVC},
			maskCCC: {op.SubBytesViiC},
		},
	}
}

// strstrBuiltin lowers strstr(big, little) for every shape with at least
// one register operand; the all-constant shape is left to constant folding
// elsewhere.
type strstrBuiltin struct{}

func (strstrBuiltin) returnValMatters() bool { return true }
func (strstrBuiltin) haveBoth() bool         { return false }

func (strstrBuiltin) build(lw *Lowerer, n *ast.NameExpr, args []ast.Expr) bool {
	if len(args) != 2 {
		return false
	}
	big, bigIsName := args[0].(*ast.NameExpr)
	little, littleIsName := args[1].(*ast.NameExpr)

	var z bytecode.Inst
	switch {
	case bigIsName && littleIsName:
		z = bytecode.Inst{Op: op.StrstrVVV, V1: lw.asm.Frame1Slot(n), V2: lw.asm.FrameSlot(big), V3: lw.asm.FrameSlot(little)}
	case bigIsName:
		ce := args[1].(*ast.ConstExpr)
		z = bytecode.Inst{Op: op.StrstrVVC, V1: lw.asm.Frame1Slot(n), V2: lw.asm.FrameSlot(big), C: ce.Const.Val, T: ce.Const.Typ}
	case littleIsName:
		ce := args[0].(*ast.ConstExpr)
		z = bytecode.Inst{Op: op.StrstrVCV, V1: lw.asm.Frame1Slot(n), V2: lw.asm.FrameSlot(little), C: ce.Const.Val, T: ce.Const.Typ}
	default:
		return false
	}

	lw.asm.AddInst(z)
	return true
}

// sortBuiltin lowers sort(v) over vectors of integral or double elements.
// The comparator form compiles as an ordinary call.
type sortBuiltin struct{}

func (sortBuiltin) returnValMatters() bool { return false }
func (sortBuiltin) haveBoth() bool         { return false }

func (sortBuiltin) build(lw *Lowerer, n *ast.NameExpr, args []ast.Expr) bool {
	if len(args) != 1 {
		return false
	}

	v, ok := args[0].(*ast.NameExpr)
	if !ok || v.Type().Tag() != types.TagVector {
		return false
	}

	elt := v.Type().Yield()
	if !types.IsIntegral(elt.Tag()) && elt.Tag() != types.TagDouble {
		return false
	}

	z := bytecode.Inst{Op: op.SortV, V1: lw.asm.FrameSlot(v), T: v.Type()}
	lw.asm.AddInst(z)
	return true
}

// reserveBuiltin lowers reserve(v, n), which pre-sizes a vector's backing
// storage and produces no value.
type reserveBuiltin struct{}

func (reserveBuiltin) returnValMatters() bool { return false }
func (reserveBuiltin) haveBoth() bool         { return false }

func (reserveBuiltin) build(lw *Lowerer, n *ast.NameExpr, args []ast.Expr) bool {
	if len(args) != 2 {
		return false
	}

	v, ok := args[0].(*ast.NameExpr)
	if !ok {
		// Weird!
		return false
	}

	vSlot := lw.asm.FrameSlot(v)

	var z bytecode.Inst
	if cnt, ok := args[1].(*ast.NameExpr); ok {
		z = bytecode.Inst{Op: op.ReserveVV, V1: vSlot, V2: lw.asm.FrameSlot(cnt)}
	} else {
		ce := args[1].(*ast.ConstExpr)
		z = bytecode.Inst{Op: op.ReserveVC, V1: vSlot, V2: int(ce.Const.Val.AsCount())}
	}
	z.T = v.Type()

	lw.asm.AddInst(z)
	return true
}

// catBuiltin lowers cat(...) by arity and operand shape, attaching an aux
// side table of per-argument descriptors for the multi-argument forms.
type catBuiltin struct{}

func (catBuiltin) returnValMatters() bool { return true }
func (catBuiltin) haveBoth() bool         { return false }

func (catBuiltin) build(lw *Lowerer, n *ast.NameExpr, args []ast.Expr) bool {
	nslot := lw.asm.Frame1Slot(n)
	var z bytecode.Inst

	switch {
	case len(args) == 0:
		// Weird, but easy enough to support.
		z = bytecode.Inst{Op: op.Cat1VC, V1: nslot, C: value.Str(""), T: n.Type()}

	case len(args) > 1:
		var code op.Code
		switch len(args) {
		case 2:
			code = op.Cat2V
		case 3:
			code = op.Cat3V
		case 4:
			code = op.Cat4V
		case 5:
			code = op.Cat5V
		case 6:
			code = op.Cat6V
		case 7:
			code = op.Cat7V
		case 8:
			code = op.Cat8V
		default:
			code = op.CatNV
		}
		z = bytecode.Inst{Op: code, V1: nslot, Aux: buildCatAux(lw, args)}

	case args[0].Type().Tag() != types.TagString:
		if a0, ok := args[0].(*ast.NameExpr); ok {
			z = bytecode.Inst{Op: op.Cat1FullVV, V1: nslot, V2: lw.asm.FrameSlot(a0), T: args[0].Type()}
		} else {
			ce := args[0].(*ast.ConstExpr)
			z = bytecode.Inst{Op: op.Cat1VC, V1: nslot, C: value.Str(value.Render(ce.Const.Val, ce.Const.Typ)), T: n.Type()}
		}

	default:
		if ce, ok := args[0].(*ast.ConstExpr); ok {
			z = bytecode.Inst{Op: op.Cat1VC, V1: nslot, C: ce.Const.Val, T: n.Type()}
		} else {
			a0 := args[0].(*ast.NameExpr)
			z = bytecode.Inst{Op: op.Cat1VV, V1: nslot, V2: lw.asm.FrameSlot(a0), T: n.Type()}
		}
	}

	lw.asm.AddInst(z)
	return true
}

// buildCatAux describes each concatenation argument: constants are rendered
// to their final string at compile time, registers record slot and type so
// the VM renders them at run time.
func buildCatAux(lw *Lowerer, args []ast.Expr) *bytecode.Aux {
	aux := &bytecode.Aux{Elems: make([]bytecode.AuxElem, len(args))}
	for i, a := range args {
		if ce, ok := a.(*ast.ConstExpr); ok {
			rendered := value.Render(ce.Const.Val, ce.Const.Typ)
			aux.Elems[i] = bytecode.ConstElem(value.Str(rendered), types.Base(types.TagString))
		} else {
			name := a.(*ast.NameExpr)
			aux.Elems[i] = bytecode.SlotElem(lw.asm.FrameSlot(name), a.Type())
		}
	}
	return aux
}
