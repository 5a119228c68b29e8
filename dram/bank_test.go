package dram

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sarchlab/cachesim/sim"
)

func TestActivateGatesFollowingActivateByTRC(t *testing.T) {
	// Invariant D1/tRC (spec section 8, scenario 6): a second ACT to the
	// same bank issued before tRC has elapsed must be deferred.
	timing := DefaultTiming().Scale(1)

	bank := NewBank()
	bank.IssueActivate(0, 7, timing)

	require.False(t, bank.CanIssue(CmdActivate, timing.TRC-1))
	require.True(t, bank.CanIssue(CmdActivate, timing.TRC))
}

func TestPrechargeThenActivateHonorsTRP(t *testing.T) {
	timing := DefaultTiming().Scale(1)

	bank := NewBank()
	bank.IssueActivate(0, 3, timing)
	bank.IssuePrecharge(timing.TRAS, timing)

	nextActivateAllowed := timing.TRAS + timing.TRP
	require.False(t, bank.CanIssue(CmdActivate, nextActivateAllowed-1))
	require.True(t, bank.CanIssue(CmdActivate, nextActivateAllowed))
}

func TestRowHitDetection(t *testing.T) {
	timing := DefaultTiming().Scale(1)

	bank := NewBank()
	require.False(t, bank.IsRowHit(5))

	bank.IssueActivate(0, 5, timing)
	require.True(t, bank.IsRowHit(5))
	require.False(t, bank.IsRowHit(6))

	bank.IssuePrecharge(timing.TRAS, timing)
	require.False(t, bank.IsRowHit(5))
}

func TestFourActivateWindowGatesTheFifthActivate(t *testing.T) {
	// Invariant D2: at most four activations may occur within tFAW per
	// rank, regardless of which bank each targets.
	timing := DefaultTiming().Scale(1)
	rank := NewRank(4)

	var now sim.Cycle
	for i := 0; i < 4; i++ {
		require.True(t, rank.CanActivate(now))
		rank.Banks[i].IssueActivate(now, 0, timing)
		rank.RecordActivate(now, timing.TFAW)
		now += 2
	}

	// The fifth activate (any bank) must wait until tFAW after the first.
	require.False(t, rank.CanActivate(now))
	require.True(t, rank.CanActivate(timing.TFAW))
}
