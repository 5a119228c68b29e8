package dram

import "github.com/sarchlab/cachesim/sim"

// BankState is a bank's precharge/activate status (spec section 3, "DRAM
// bank / rank / channel").
type BankState int

const (
	Precharged BankState = iota
	Activated
)

// Bank is one DRAM bank's timing and open-row state. Every issued
// command updates NextIssue for the commands it gates, per the JEDEC
// table in spec section 4.9; CmdCounters is exposed for statistics
// (row-buffer hit rate, activate count, ...).
type Bank struct {
	State      BankState
	OpenRow    uint64
	HasOpenRow bool

	NextIssue [numCmdKinds]sim.Cycle
	LastIssue [numCmdKinds]sim.Cycle

	CmdCounters [numCmdKinds]uint64
}

// NewBank returns a freshly precharged bank with no timing restrictions.
func NewBank() *Bank {
	return &Bank{State: Precharged}
}

// CanIssue reports whether cmd may be issued to this bank at cycle now,
// invariant D1: no command issued before bank.nextIssueCycle[cmd].
func (b *Bank) CanIssue(cmd CmdKind, now sim.Cycle) bool {
	return now >= b.NextIssue[cmd]
}

// IsRowHit reports whether row is already open in this bank.
func (b *Bank) IsRowHit(row uint64) bool {
	return b.HasOpenRow && b.OpenRow == row
}

func (b *Bank) record(cmd CmdKind, now sim.Cycle) {
	b.LastIssue[cmd] = now
	b.CmdCounters[cmd]++
}

// IssueActivate opens row and advances every command this activate
// gates, per spec's ACT row: "ACT+tRC, READ+tRCD, WRITE+tRCD, PRE+tRAS".
func (b *Bank) IssueActivate(now sim.Cycle, row uint64, t Timing) {
	b.record(CmdActivate, now)

	b.State = Activated
	b.OpenRow = row
	b.HasOpenRow = true

	b.NextIssue[CmdActivate] = now + t.TRC
	b.NextIssue[CmdRead] = now + t.TRCD
	b.NextIssue[CmdWrite] = now + t.TRCD
	b.NextIssue[CmdPrecharge] = now + t.TRAS
}

// IssueRead advances the bank-local timing table per spec's READ row
// ("ACT+tCL, READ+tCCD, WRITE+tCCD, PRE+tCL"). Channel-level advances are
// the caller's responsibility (Channel.IssueRead).
func (b *Bank) IssueRead(now sim.Cycle, t Timing) {
	b.record(CmdRead, now)

	b.NextIssue[CmdActivate] = now + t.TCL
	b.NextIssue[CmdRead] = now + t.TCCD
	b.NextIssue[CmdWrite] = now + t.TCCD
	b.NextIssue[CmdPrecharge] = now + t.TCL
}

// IssueWrite advances the bank-local timing table per spec's WRITE row
// ("ACT+tCL+tWR, READ+tCCD, WRITE+tCCD, PRE+tCWL+tWR").
func (b *Bank) IssueWrite(now sim.Cycle, t Timing) {
	b.record(CmdWrite, now)

	b.NextIssue[CmdActivate] = now + t.TCL + t.TWR
	b.NextIssue[CmdRead] = now + t.TCCD
	b.NextIssue[CmdWrite] = now + t.TCCD
	b.NextIssue[CmdPrecharge] = now + t.TCWL + t.TWR
}

// IssuePrecharge closes the open row and advances the bank-local timing
// table per spec's PRE row ("ACT+tRP, READ+tRP+tRCD, WRITE+tRP+tRCD,
// PRE+tRC").
func (b *Bank) IssuePrecharge(now sim.Cycle, t Timing) {
	b.record(CmdPrecharge, now)

	b.State = Precharged
	b.HasOpenRow = false

	b.NextIssue[CmdActivate] = now + t.TRP
	b.NextIssue[CmdRead] = now + t.TRP + t.TRCD
	b.NextIssue[CmdWrite] = now + t.TRP + t.TRCD
	b.NextIssue[CmdPrecharge] = now + t.TRC
}

// Rank groups banks that share the tFAW activation window (spec section
// 3, invariant D2).
type Rank struct {
	Banks []*Bank

	activateRing  [4]sim.Cycle
	activatePos   int
	activateCount int
	NextActivate  sim.Cycle
}

// NewRank builds a rank of numBanks freshly precharged banks.
func NewRank(numBanks int) *Rank {
	banks := make([]*Bank, numBanks)
	for i := range banks {
		banks[i] = NewBank()
	}

	return &Rank{Banks: banks}
}

// CanActivate reports whether any bank in this rank may be activated at
// cycle now without violating tFAW.
func (r *Rank) CanActivate(now sim.Cycle) bool {
	return now >= r.NextActivate
}

// RecordActivate rotates the four-activate ring and derives the next
// window boundary: invariant D2, "rank.nextActivate = (oldest of last 4
// activates) + tFAW". The gate only takes effect from the fifth
// activation onward; the first four in a rank's lifetime are unrestricted
// since there are not yet four prior activates within any window.
func (r *Rank) RecordActivate(now sim.Cycle, tFAW sim.Cycle) {
	r.activateRing[r.activatePos] = now
	r.activatePos = (r.activatePos + 1) % len(r.activateRing)
	r.activateCount++

	if r.activateCount >= len(r.activateRing) {
		oldest := r.activateRing[r.activatePos]
		if candidate := oldest + tFAW; candidate > r.NextActivate {
			r.NextActivate = candidate
		}
	}
}
