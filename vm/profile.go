package vm

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/zinclang/zinc/op"
)

// ProfEntry is the accumulated execution profile of one instruction.
type ProfEntry struct {
	Count uint64
	Time  time.Duration
}

// ProfVec holds one ProfEntry per instruction of a body. Each distinct
// caller call-stack context gets its own vector, so a body invoked from two
// different sites is profiled separately for each.
type ProfVec []ProfEntry

// Process-wide per-opcode totals, aggregated across all bodies.
var (
	opCount [op.NOp]uint64
	opTime  [op.NOp]time.Duration
)

var (
	calibrateOnce sync.Once
	overheadNsec  int64
)

// calibrateOverheadOnce measures the cost of one per-instruction timing pair
// so reports can state how much of the measured time is the profiler itself.
func calibrateOverheadOnce() {
	calibrateOnce.Do(func() {
		const reps = 1_000_000
		start := time.Now()
		for i := 0; i < reps; i++ {
			t := time.Now()
			_ = time.Since(t)
		}
		overheadNsec = time.Since(start).Nanoseconds() / reps
	})
}

// profOverheadNsec returns the calibrated per-instruction profiling overhead
// in nanoseconds.
func profOverheadNsec() int64 { return overheadNsec }

// writeBodyProfile reports a body's execution profile: overall CPU and
// instruction totals, then a per-instruction breakdown for each caller
// context that invoked the body.
func (m *Machine) writeBodyProfile(w io.Writer, b *Body) {
	if b.ninst == 0 {
		return
	}

	// Subtract the calibrated cost of the timing pairs themselves.
	overhead := float64(b.ninst) * float64(overheadNsec) * 1e-9
	cpu := b.cpuTime - overhead
	if cpu < 0 {
		cpu = 0
	}
	fmt.Fprintf(w, "%s: %.6f sec CPU, %d instructions (%.6f sec timing overhead removed)\n",
		b.name, cpu, b.ninst, overhead)

	if b.defaultProf != nil {
		m.writeProfVec(w, b, "<top level>", b.defaultProf)
	}

	ctxs := make([]string, 0, len(b.profVecs))
	for ctx := range b.profVecs {
		ctxs = append(ctxs, ctx)
	}
	sort.Strings(ctxs)
	for _, ctx := range ctxs {
		m.writeProfVec(w, b, ctx, b.profVecs[ctx])
	}
}

func (m *Machine) writeProfVec(w io.Writer, b *Body, ctx string, pv *ProfVec) {
	fmt.Fprintf(w, "  context %s:\n", ctx)
	for pc, pe := range *pv {
		if pe.Count == 0 {
			continue
		}
		fmt.Fprintf(w, "    %d %d %.6f %s\n", pc, pe.Count, pe.Time.Seconds(), b.insts[pc].Op)
	}
}

// WriteOpTotals reports the process-wide per-opcode execution totals.
func WriteOpTotals(w io.Writer) {
	for c := op.Code(0); c < op.NOp; c++ {
		if opCount[c] == 0 {
			continue
		}
		fmt.Fprintf(w, "%s %d %.6f\n", c, opCount[c], opTime[c].Seconds())
	}
}
