package dram

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sarchlab/cachesim/request"
)

func TestRowHitWinsOverActivateReady(t *testing.T) {
	// FR-FCFS fairness floor (spec section 8): when a row-hit request and
	// an activate-ready request are simultaneously schedulable, the
	// row-hit wins.
	timing := DefaultTiming().Scale(1)
	ch := NewChannel(1, 2)

	// Bank 0 already has row 5 open; bank 1 is precharged and ready.
	ch.Ranks[0].Banks[0].IssueActivate(0, 5, timing)
	now := timing.TRCD // both a row-hit read and a fresh activate are legal now

	rowHit := &request.Request{Type: request.Read}
	activateReady := &request.Request{Type: request.Read}

	ch.ReadQ = []*queuedCmd{
		{req: activateReady, rank: 0, bank: 1, row: 9},
		{req: rowHit, rank: 0, bank: 0, row: 5},
	}

	result := scheduleOnce(ch, now, timing, 8)

	require.True(t, result.issued)
	require.Equal(t, CmdRead, result.cmd)
	require.NotNil(t, result.done)
	require.Same(t, rowHit, result.done.req)
}

func TestDrainWhenFullSwitchesToWriteMode(t *testing.T) {
	ch := NewChannel(1, 1)

	ch.WriteQ = []*queuedCmd{
		{req: &request.Request{Type: request.Writeback}, rank: 0, bank: 0, row: 1},
		{req: &request.Request{Type: request.Writeback}, rank: 0, bank: 0, row: 1},
	}

	ch.MaybeSwitchMode(2)
	require.Equal(t, ModeWrite, ch.Mode)

	ch.WriteQ = nil
	ch.MaybeSwitchMode(2)
	require.Equal(t, ModeRead, ch.Mode)
}

func TestPrechargeIsSkippedWhileARowHitIsStillQueued(t *testing.T) {
	timing := DefaultTiming().Scale(1)
	ch := NewChannel(1, 1)

	ch.Ranks[0].Banks[0].IssueActivate(0, 1, timing)
	now := timing.TCL // row 1 is open; a precharge would otherwise be ready

	ch.ReadQ = []*queuedCmd{
		{req: &request.Request{Type: request.Read}, rank: 0, bank: 0, row: 2},
		{req: &request.Request{Type: request.Read}, rank: 0, bank: 0, row: 1},
	}

	cmd, ok := findPrechargeReady(ch, ch.ReadQ, now)
	require.False(t, ok)
	require.Nil(t, cmd)
}
