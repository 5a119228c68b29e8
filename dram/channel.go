package dram

import (
	"github.com/sarchlab/cachesim/request"
	"github.com/sarchlab/cachesim/sim"
)

// Mode is the channel's current read/write bus direction (spec section
// 3, "Channel: { ... mode ∈ {Read, Write} ... }").
type Mode int

const (
	ModeRead Mode = iota
	ModeWrite
)

// Channel owns a set of ranks and the FR-FCFS-DWF per-mode request
// queues (spec section 4.9). Column-command channel-level bus-turnaround
// timing (invariant D3) is tracked here, separately from any one bank's
// timing, since it gates the shared data bus rather than a single bank.
type Channel struct {
	Ranks []*Rank

	Mode Mode

	// NextIssue[CmdRead]/[CmdWrite] are the channel-wide bus-turnaround
	// gates; the Activate/Precharge slots are unused at channel scope.
	NextIssue [numCmdKinds]sim.Cycle

	ReadQ  []*queuedCmd
	WriteQ []*queuedCmd

	ReadToWriteSwitches uint64
	WriteToReadSwitches uint64
}

// queuedCmd pairs a request with the resolved bank/rank location the
// controller mapped it to, avoiding a re-lookup on every scheduling pass.
type queuedCmd struct {
	req  *request.Request
	rank int
	bank int
	row  uint64
}

// NewChannel builds a channel of numRanks ranks, each with numBanks banks.
func NewChannel(numRanks, numBanks int) *Channel {
	ranks := make([]*Rank, numRanks)
	for i := range ranks {
		ranks[i] = NewRank(numBanks)
	}

	return &Channel{Ranks: ranks}
}

// CanIssue reports whether the channel bus itself (independent of any
// bank) permits cmd at cycle now.
func (c *Channel) CanIssue(cmd CmdKind, now sim.Cycle) bool {
	return now >= c.NextIssue[cmd]
}

// IssueRead advances the channel-wide bus-turnaround timing per spec's
// READ row: "channel.READ+tCCD, channel.WRITE+tCL+tBL+tRTW-tCWL".
func (c *Channel) IssueRead(now sim.Cycle, t Timing) {
	c.NextIssue[CmdRead] = now + t.TCCD
	c.NextIssue[CmdWrite] = now + t.TCL + t.TBL + t.TRTW - t.TCWL
}

// IssueWrite advances the channel-wide bus-turnaround timing per spec's
// WRITE row: "channel.WRITE+tCCD, channel.READ+tCWL+tBL+tWTR".
func (c *Channel) IssueWrite(now sim.Cycle, t Timing) {
	c.NextIssue[CmdWrite] = now + t.TCCD
	c.NextIssue[CmdRead] = now + t.TCWL + t.TBL + t.TWTR
}

// MaybeSwitchMode implements the FR-FCFS-DWF mode-flip rule (spec section
// 4.9 step 1): flip to write-mode once the write queue is saturated
// (drain-when-full), flip back once it drains empty.
func (c *Channel) MaybeSwitchMode(writeQueueCapacity int) {
	switch c.Mode {
	case ModeRead:
		if len(c.WriteQ) >= writeQueueCapacity {
			c.Mode = ModeWrite
			c.ReadToWriteSwitches++
		}
	case ModeWrite:
		if len(c.WriteQ) == 0 {
			c.Mode = ModeRead
			c.WriteToReadSwitches++
		}
	}
}

func (c *Channel) activeQueue() *[]*queuedCmd {
	if c.Mode == ModeWrite {
		return &c.WriteQ
	}

	return &c.ReadQ
}

func (c *Channel) activeCmdKind() CmdKind {
	if c.Mode == ModeWrite {
		return CmdWrite
	}

	return CmdRead
}
