package vm

import (
	"strings"
	"time"

	"github.com/zinclang/zinc/bytecode"
	"github.com/zinclang/zinc/errz"
	"github.com/zinclang/zinc/op"
	"github.com/zinclang/zinc/types"
	"github.com/zinclang/zinc/value"
)

// assign stores an owned value into a frame slot, releasing whatever
// managed value the slot previously held. Every write to the frame goes
// through here so a managed slot is always either cleared or holding
// exactly one live reference.
func (m *Machine) assign(b *Body, frame []value.Val, slot int, v value.Val) {
	if b.managedSet[slot] {
		frame[slot].Release()
	}
	frame[slot] = v
}

// refOf returns a value read from a frame slot, adding a reference when the
// slot is managed so the copy is independently owned.
func refOf(b *Body, frame []value.Val, slot int) value.Val {
	v := frame[slot]
	if b.managedSet[slot] {
		return v.Ref()
	}
	return v
}

// exec runs a body with no arguments.
func (m *Machine) exec(b *Body) (value.Val, *types.Type, bytecode.Flow) {
	return m.execWith(b, nil)
}

// execWith runs a body, seeding its first frame slots with the given owned
// argument values.
func (m *Machine) execWith(b *Body, args []value.Val) (value.Val, *types.Type, bytecode.Flow) {
	var curProf *ProfVec
	var bodyStart time.Time
	if m.profile {
		curProf = m.selectProfVec(b)
		bodyStart = time.Now()
	}

	frame := b.fixedFrame
	if frame == nil {
		frame = make([]value.Val, b.frameSize)
	}
	// On entry every managed slot is cleared: fresh frames are zeroed, and
	// fixed frames are left cleared by the previous invocation's exit.

	for i, a := range args {
		frame[i] = a
	}

	flow := bytecode.FlowReturn
	var retVal value.Val
	var retType *types.Type

	pc := 0
	end := len(b.insts)

	for pc < end && !m.errFlag {
		z := &b.insts[pc]
		npc := pc + 1

		var instStart time.Time
		if m.profile {
			opCount[z.Op]++
			b.ninst++
			instStart = time.Now()
		}

		switch z.Op {
		case op.Nop:

		case op.ReturnV:
			retVal = frame[z.V1]
			if b.managedSet[z.V1] {
				retVal = retVal.Ref()
			}
			retType = z.T
			npc = end

		case op.ReturnC:
			retVal = z.C
			if retVal.IsManaged() {
				retVal = retVal.Ref()
			}
			retType = z.T
			npc = end

		case op.ReturnX:
			npc = end

		case op.HookBreakX:
			flow = bytecode.FlowBreak
			npc = end

		case op.CallV:
			m.execCall(b, frame, z)

		case op.Jump:
			npc = z.V1

		case op.JumpIfFalseV:
			if !frame[z.V1].AsBool() {
				npc = z.V2
			}

		case op.AssignVV:
			m.assign(b, frame, z.V1, refOf(b, frame, z.V2))

		case op.AssignVC:
			c := z.C
			if c.IsManaged() {
				c = c.Ref()
			}
			m.assign(b, frame, z.V1, c)

		case op.LoadGlobalVg:
			g := m.globals[b.globals[z.V2]]
			if g.IsManaged() {
				g = g.Ref()
			}
			m.assign(b, frame, z.V1, g)

		case op.StoreGlobalGV:
			m.SetGlobal(b.globals[z.V1], refOf(b, frame, z.V2))

		case op.AddVVV:
			m.assign(b, frame, z.V1, value.Int(frame[z.V2].AsInt()+frame[z.V3].AsInt()))

		case op.AddVVC:
			m.assign(b, frame, z.V1, value.Int(frame[z.V2].AsInt()+z.C.AsInt()))

		case op.SubVVV:
			m.assign(b, frame, z.V1, value.Int(frame[z.V2].AsInt()-frame[z.V3].AsInt()))

		case op.SubVVC:
			m.assign(b, frame, z.V1, value.Int(frame[z.V2].AsInt()-z.C.AsInt()))

		case op.MulVVV:
			m.assign(b, frame, z.V1, value.Int(frame[z.V2].AsInt()*frame[z.V3].AsInt()))

		case op.LtVVV:
			m.assign(b, frame, z.V1, value.Bool(frame[z.V2].AsInt() < frame[z.V3].AsInt()))

		case op.EqVVV:
			m.assign(b, frame, z.V1, value.Bool(frame[z.V2].AsInt() == frame[z.V3].AsInt()))

		case op.AddDblVVV:
			m.assign(b, frame, z.V1, value.Double(frame[z.V2].AsDouble()+frame[z.V3].AsDouble()))

		case op.SubDblVVV:
			m.assign(b, frame, z.V1, value.Double(frame[z.V2].AsDouble()-frame[z.V3].AsDouble()))

		case op.MulDblVVV:
			m.assign(b, frame, z.V1, value.Double(frame[z.V2].AsDouble()*frame[z.V3].AsDouble()))

		case op.BoxAnyVV:
			m.assign(b, frame, z.V1, value.Box(z.T, refOf(b, frame, z.V2)))

		case op.CheckAnyVV:
			m.checkAny(b, frame, z)

		case op.VecAddVVV, op.VecSubVVV, op.VecMulVVV:
			m.vecExecBinary(b, frame, z)

		case op.VecNegVV:
			m.vecExecUnary(b, frame, z)

		case op.VecCoerceDI, op.VecCoerceDU, op.VecCoerceID,
			op.VecCoerceIU, op.VecCoerceUD, op.VecCoerceUI:
			m.vecCoerce(b, frame, z)

		case op.Cat1VC:
			c := z.C.Ref()
			m.assign(b, frame, z.V1, c)

		case op.Cat1VV:
			m.assign(b, frame, z.V1, refOf(b, frame, z.V2))

		case op.Cat1FullVV:
			m.assign(b, frame, z.V1, value.Str(value.Render(frame[z.V2], z.T)))

		case op.Cat2V, op.Cat3V, op.Cat4V, op.Cat5V,
			op.Cat6V, op.Cat7V, op.Cat8V, op.CatNV:
			m.assign(b, frame, z.V1, value.Str(m.catArgs(frame, z.Aux)))

		case op.ToLowerVV:
			s := frame[z.V2].AsString()
			m.assign(b, frame, z.V1, value.Str(strings.ToLower(s.String())))

		case op.StrstrVVV:
			m.assign(b, frame, z.V1, strstrVal(frame[z.V2].AsString().String(), frame[z.V3].AsString().String()))

		case op.StrstrVVC:
			m.assign(b, frame, z.V1, strstrVal(frame[z.V2].AsString().String(), z.C.AsString().String()))

		case op.StrstrVCV:
			m.assign(b, frame, z.V1, strstrVal(z.C.AsString().String(), frame[z.V2].AsString().String()))

		case op.SubBytesVVVV:
			m.assign(b, frame, z.V1, subBytesVal(frame[z.V2].AsString().String(), frame[z.V3].AsCount(), frame[z.V4].AsInt()))

		case op.SubBytesVVVi:
			m.assign(b, frame, z.V1, subBytesVal(frame[z.V2].AsString().String(), frame[z.V3].AsCount(), int64(z.V4)))

		case op.SubBytesVViV:
			m.assign(b, frame, z.V1, subBytesVal(frame[z.V2].AsString().String(), uint64(z.V4), frame[z.V3].AsInt()))

		case op.SubBytesVVii:
			m.assign(b, frame, z.V1, subBytesVal(frame[z.V2].AsString().String(), uint64(z.V3), int64(z.V4)))

		case op.SubBytesVVVC:
			m.assign(b, frame, z.V1, subBytesVal(z.C.AsString().String(), frame[z.V2].AsCount(), frame[z.V3].AsInt()))

		case op.SubBytesVViC:
			m.assign(b, frame, z.V1, subBytesVal(z.C.AsString().String(), frame[z.V2].AsCount(), int64(z.V3)))

		case op.SubBytesViVC:
			m.assign(b, frame, z.V1, subBytesVal(z.C.AsString().String(), uint64(z.V3), frame[z.V2].AsInt()))

		case op.SubBytesViiC:
			m.assign(b, frame, z.V1, subBytesVal(z.C.AsString().String(), uint64(z.V2), int64(z.V3)))

		case op.SortV:
			m.sortVector(frame[z.V1].AsVector(), z)

		case op.CurrentTimeV:
			m.assign(b, frame, z.V1, value.Double(float64(time.Now().UnixNano())/1e9))

		case op.FlushStreamsV:
			m.assign(b, frame, z.V1, value.Count(m.flushStreams()))

		case op.FlushStreamsX:
			m.flushStreams()

		case op.ReserveVV:
			m.reserveVector(frame[z.V1].AsVector(), int(frame[z.V2].AsCount()), z)

		case op.ReserveVC:
			m.reserveVector(frame[z.V1].AsVector(), z.V2, z)

		default:
			panic(errz.Internalf("bad opcode %q (%d) at pc %d in %s", z.Op, int(z.Op), pc, b.name))
		}

		if m.profile {
			dt := time.Since(instStart)
			(*curProf)[pc].Count++
			(*curProf)[pc].Time += dt
			opTime[z.Op] += dt
		}

		pc = npc
	}

	if b.fixedFrame != nil {
		// Free slots for which we do explicit memory management, leaving
		// them cleared for the next invocation.
		for _, ms := range b.managedSlots {
			frame[ms].Release()
			frame[ms] = value.Val{}
		}
	} else {
		// Free managed slots; no need to clear them, the frame is being
		// discarded.
		for _, ms := range b.managedSlots {
			frame[ms].Release()
		}
	}

	if m.profile {
		b.cpuTime += time.Since(bodyStart).Seconds()
	}

	return retVal, retType, flow
}

// execCall invokes another compiled body, marshaling arguments per the
// instruction's aux descriptors. A negative V1 discards the callee's value.
func (m *Machine) execCall(b *Body, frame []value.Val, z *bytecode.Inst) {
	callee := m.bodies[z.Aux.Callee]
	if callee == nil {
		m.raise(errz.Newf(errz.ErrValue, z.Loc, "call to unknown body %q", z.Aux.Callee))
		return
	}

	args := make([]value.Val, len(z.Aux.Elems))
	for i, el := range z.Aux.Elems {
		if el.IsConst {
			a := el.C
			if a.IsManaged() {
				a = a.Ref()
			}
			args[i] = a
		} else {
			args[i] = refOf(b, frame, el.Slot)
		}
	}

	if m.profile {
		m.callerLocs = append(m.callerLocs, b.name+"@"+z.Loc.String())
	}

	rv, rt, _ := m.execWith(callee, args)

	if m.profile {
		m.callerLocs = m.callerLocs[:len(m.callerLocs)-1]
	}

	if z.V1 >= 0 {
		m.assign(b, frame, z.V1, rv)
	} else if rt != nil && rt.IsManaged() {
		rv.Release()
	}
}

// checkAny guards the use of a dynamically typed value: the boxed concrete
// type must match the use site's expected type, with record types permitted
// to satisfy the check through promotion compatibility.
func (m *Machine) checkAny(b *Body, frame []value.Val, z *bytecode.Inst) {
	av := frame[z.V2].AsAny()
	if av == nil {
		m.raise(errz.New(errz.ErrValue, z.Loc, "use of unset dynamic value"))
		return
	}

	expected := z.T
	observed := av.Type()

	if !anyTypeOK(observed, expected) {
		m.raise(errz.Newf(errz.ErrType, z.Loc, "run-time type clash (%s/%s)", observed.Name(), expected.Name()))
		return
	}

	v := av.Value()
	if observed.IsManaged() {
		v = v.Ref()
	}
	m.assign(b, frame, z.V1, v)
}

func anyTypeOK(observed, expected *types.Type) bool {
	if expected.IsAny() {
		return true
	}
	if types.Same(observed, expected) {
		return true
	}
	if observed.Tag() == types.TagRecord && expected.Tag() == types.TagRecord {
		return types.PromotionCompatible(expected, observed)
	}
	return false
}

func (m *Machine) selectProfVec(b *Body) *ProfVec {
	if len(m.callerLocs) == 0 {
		if b.defaultProf == nil {
			b.defaultProf = b.buildProfVec()
		}
		return b.defaultProf
	}
	key := strings.Join(m.callerLocs, ";")
	pv := b.profVecs[key]
	if pv == nil {
		pv = b.buildProfVec()
		b.profVecs[key] = pv
	}
	return pv
}
