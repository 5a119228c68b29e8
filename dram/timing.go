// Package dram implements the channel/rank/bank DRAM controller (spec
// section 4.9): a JEDEC-timed state machine with an FR-FCFS-with-
// drain-when-full scheduler, wired in as the last pipeline stage every
// core's requests fall through to.
package dram

import "github.com/sarchlab/cachesim/sim"

// CmdKind is one of the four DRAM commands the controller issues. Its
// value doubles as the index into a Bank's or Channel's per-command
// nextIssueCycle table, matching the teacher's own tight enum-as-index
// idiom for small fixed command sets (mem/dram/internal/signal).
type CmdKind int

const (
	CmdActivate CmdKind = iota
	CmdRead
	CmdWrite
	CmdPrecharge

	numCmdKinds = 4
)

func (k CmdKind) String() string {
	switch k {
	case CmdActivate:
		return "ACT"
	case CmdRead:
		return "READ"
	case CmdWrite:
		return "WRITE"
	case CmdPrecharge:
		return "PRE"
	default:
		return "?"
	}
}

// Timing holds every JEDEC parameter spec section 4.9 names, in the
// controller's own clock units. Values are supplied in memory-clock
// units at construction and must be passed through Scale before use, per
// spec's "all timing parameters are multiplied by memProcessorRatio at
// startup" rule.
type Timing struct {
	TRC   sim.Cycle
	TRCD  sim.Cycle
	TRAS  sim.Cycle
	TCL   sim.Cycle
	TCWL  sim.Cycle
	TCCD  sim.Cycle
	TBL   sim.Cycle
	TRP   sim.Cycle
	TRTW  sim.Cycle
	TWTR  sim.Cycle
	TWR   sim.Cycle
	TRTRS sim.Cycle
	TFAW  sim.Cycle
}

// Scale multiplies every parameter by ratio (the number of controller
// clock ticks per memory clock), converting memory-clock-specified
// timings into the controller's own local cycle units.
func (t Timing) Scale(ratio int) Timing {
	r := sim.Cycle(ratio)

	return Timing{
		TRC:   t.TRC * r,
		TRCD:  t.TRCD * r,
		TRAS:  t.TRAS * r,
		TCL:   t.TCL * r,
		TCWL:  t.TCWL * r,
		TCCD:  t.TCCD * r,
		TBL:   t.TBL * r,
		TRP:   t.TRP * r,
		TRTW:  t.TRTW * r,
		TWTR:  t.TWTR * r,
		TWR:   t.TWR * r,
		TRTRS: t.TRTRS * r,
		TFAW:  t.TFAW * r,
	}
}

// DefaultTiming returns a representative DDR3-class parameter set (memory
// clock units, before Scale), grounded on the values the teacher's
// mem/dram/builder.go ships as its own defaults.
func DefaultTiming() Timing {
	return Timing{
		TRC:   39,
		TRCD:  11,
		TRAS:  28,
		TCL:   11,
		TCWL:  8,
		TCCD:  4,
		TBL:   4,
		TRP:   11,
		TRTW:  5,
		TWTR:  6,
		TWR:   12,
		TRTRS: 2,
		TFAW:  20,
	}
}

// ReadLatency is the column-to-data latency of a scheduled read: tCL+tBL.
func (t Timing) ReadLatency() sim.Cycle { return t.TCL + t.TBL }

// WriteLatency is the column-to-data latency of a scheduled write: tCWL+tBL.
func (t Timing) WriteLatency() sim.Cycle { return t.TCWL + t.TBL }
