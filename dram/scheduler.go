package dram

import "github.com/sarchlab/cachesim/sim"

// scheduleResult reports what one FR-FCFS-DWF scheduling attempt did, so
// the controller component can decide the next command's completion
// timing and how far to advance its local clock before retrying.
type scheduleResult struct {
	issued  bool
	cmd     CmdKind
	done    *queuedCmd // set only when a column command completed a request
	latency sim.Cycle  // completion delay from now, valid when done != nil
}

// scheduleOnce runs one pass of the FR-FCFS-with-drain-when-full
// algorithm (spec section 4.9) over channel at cycle now: mode-flip,
// then column-command row hits, then activate-ready requests, then a
// precharge to make room for one of them. It issues at most one command.
func scheduleOnce(ch *Channel, now sim.Cycle, t Timing, writeQueueCapacity int) scheduleResult {
	ch.MaybeSwitchMode(writeQueueCapacity)

	queue := *ch.activeQueue()
	cmdKind := ch.activeCmdKind()

	if cmd, idx, ok := findRowHit(ch, queue, cmdKind, now, t); ok {
		issueColumn(ch, cmd, cmdKind, now, t)

		latency := t.ReadLatency()
		if cmdKind == CmdWrite {
			latency = t.WriteLatency()
		}

		*ch.activeQueue() = removeAt(queue, idx)

		return scheduleResult{issued: true, cmd: cmdKind, done: cmd, latency: latency}
	}

	if cmd, ok := findActivateReady(ch, queue, now); ok {
		bank := ch.Ranks[cmd.rank].Banks[cmd.bank]
		bank.IssueActivate(now, cmd.row, t)
		ch.Ranks[cmd.rank].RecordActivate(now, t.TFAW)

		return scheduleResult{issued: true, cmd: CmdActivate}
	}

	if cmd, ok := findPrechargeReady(ch, queue, now); ok {
		bank := ch.Ranks[cmd.rank].Banks[cmd.bank]
		bank.IssuePrecharge(now, t)

		return scheduleResult{issued: true, cmd: CmdPrecharge}
	}

	return scheduleResult{}
}

// findRowHit implements step 2(a): the earliest-queued request whose
// bank already has the right row open and is schedulable this cycle at
// both bank and channel granularity (invariant D3).
func findRowHit(ch *Channel, queue []*queuedCmd, cmdKind CmdKind, now sim.Cycle, _ Timing) (*queuedCmd, int, bool) {
	for i, cmd := range queue {
		bank := ch.Ranks[cmd.rank].Banks[cmd.bank]
		if !bank.IsRowHit(cmd.row) {
			continue
		}

		if !bank.CanIssue(cmdKind, now) || !ch.CanIssue(cmdKind, now) {
			continue
		}

		return cmd, i, true
	}

	return nil, -1, false
}

// findActivateReady implements step 2(b): the earliest-queued request
// whose bank is precharged and ready to activate its row, subject to the
// rank's tFAW window (invariant D2).
func findActivateReady(ch *Channel, queue []*queuedCmd, now sim.Cycle) (*queuedCmd, bool) {
	for _, cmd := range queue {
		rank := ch.Ranks[cmd.rank]
		bank := rank.Banks[cmd.bank]

		if bank.HasOpenRow {
			continue
		}

		if !bank.CanIssue(CmdActivate, now) || !rank.CanActivate(now) {
			continue
		}

		return cmd, true
	}

	return nil, false
}

// findPrechargeReady implements step 2(c): the oldest request whose bank
// holds a conflicting open row (no request in the queue currently hits
// it) and is ready to precharge.
func findPrechargeReady(ch *Channel, queue []*queuedCmd, now sim.Cycle) (*queuedCmd, bool) {
	for _, cmd := range queue {
		bank := ch.Ranks[cmd.rank].Banks[cmd.bank]

		if !bank.HasOpenRow || bank.OpenRow == cmd.row {
			continue
		}

		if hasRowHitQueued(queue, cmd.rank, cmd.bank, bank.OpenRow) {
			continue
		}

		if !bank.CanIssue(CmdPrecharge, now) {
			continue
		}

		return cmd, true
	}

	return nil, false
}

func hasRowHitQueued(queue []*queuedCmd, rank, bank int, row uint64) bool {
	for _, cmd := range queue {
		if cmd.rank == rank && cmd.bank == bank && cmd.row == row {
			return true
		}
	}

	return false
}

func issueColumn(ch *Channel, cmd *queuedCmd, cmdKind CmdKind, now sim.Cycle, t Timing) {
	bank := ch.Ranks[cmd.rank].Banks[cmd.bank]

	if cmdKind == CmdWrite {
		bank.IssueWrite(now, t)
		ch.IssueWrite(now, t)
	} else {
		bank.IssueRead(now, t)
		ch.IssueRead(now, t)
	}
}

// removeAt returns queue with the element at idx deleted, preserving the
// FIFO order of the remaining elements (partition-style, per spec
// section 9's note against erase-while-iterating on the write queue).
func removeAt(queue []*queuedCmd, idx int) []*queuedCmd {
	out := make([]*queuedCmd, 0, len(queue)-1)
	out = append(out, queue[:idx]...)
	out = append(out, queue[idx+1:]...)

	return out
}
