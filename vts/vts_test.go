package vts_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sarchlab/cachesim/vts"
)

func TestExactClearsOnOverflowByDefault(t *testing.T) {
	s := vts.New(vts.Exact, 4)

	s.Insert(1)
	s.Insert(2)
	s.Insert(3)
	s.Insert(4)
	require.True(t, s.Test(1))

	s.Insert(5) // fills+1, triggers the default mass clear
	require.False(t, s.Test(1))
	require.True(t, s.Test(5))
}

func TestFIFOEvictsOneOnOverflow(t *testing.T) {
	s := vts.New(vts.FIFO, 2)

	s.Insert(1)
	s.Insert(2)
	require.True(t, s.Test(1))
	require.True(t, s.Test(2))

	s.Insert(3) // evicts 1, the oldest, rather than clearing
	require.False(t, s.Test(1))
	require.True(t, s.Test(2))
	require.True(t, s.Test(3))
}

func TestNoClearOptionAppliesToExactMode(t *testing.T) {
	s := vts.New(vts.Exact, 2, vts.NoClear())

	s.Insert(1)
	s.Insert(2)
	s.Insert(3) // evicts 1 instead of clearing, since NoClear is set

	require.False(t, s.Test(1))
	require.True(t, s.Test(3))
}

func TestIdealRemovesOnHit(t *testing.T) {
	s := vts.New(vts.Exact, 4, vts.Ideal())

	s.Insert(1)
	require.True(t, s.Test(1))
	require.False(t, s.Test(1)) // ideal mode removed it on the first hit
}

func TestClearForgetsEverything(t *testing.T) {
	s := vts.New(vts.FIFO, 4)

	s.Insert(10)
	s.Clear()

	require.False(t, s.Test(10))
}

func TestSegmentedAgesOutInBatches(t *testing.T) {
	s := vts.New(vts.Segmented, 8) // 4 segments of size 2 each

	s.Insert(1)
	require.True(t, s.Test(1))

	// 1's segment survives until the ring of 4 segments wraps all the
	// way back around to it (7 more inserts at segment size 2).
	for i := uint64(2); i <= 7; i++ {
		s.Insert(i)
		require.True(t, s.Test(1))
	}

	s.Insert(8)
	require.False(t, s.Test(1))
}

func TestDecoupledClearWipesOnPeriodRegardlessOfCapacity(t *testing.T) {
	s := vts.New(vts.DecoupledClear, 8)

	s.Insert(1)
	require.True(t, s.Test(1))

	// Default clear period is 2x capacity inserts.
	for i := 0; i < 16; i++ {
		s.Insert(uint64(100 + i))
	}

	require.False(t, s.Test(1))
}

func TestBloomApproxHasNoFalseNegatives(t *testing.T) {
	s := vts.New(vts.BloomApprox, 64)

	for i := uint64(0); i < 32; i++ {
		s.Insert(i)
	}

	for i := uint64(0); i < 32; i++ {
		require.True(t, s.Test(i))
	}
}
