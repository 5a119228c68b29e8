package trace_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sarchlab/cachesim/request"
	"github.com/sarchlab/cachesim/trace"
)

func TestSyntheticSequentialAdvancesByBlockSize(t *testing.T) {
	g := trace.NewSyntheticGenerator(0, trace.SyntheticConfig{
		Pattern:    trace.PatternSequential,
		Count:      3,
		StartAddr:  0x10000,
		BlockBytes: 64,
	})

	var addrs []uint64
	for {
		ref, ok := g.Next()
		if !ok {
			break
		}
		addrs = append(addrs, ref.PAddr)
		require.Equal(t, request.KindRead, ref.Kind)
	}

	require.Len(t, addrs, 3)
	require.Equal(t, addrs[0]+64, addrs[1])
	require.Equal(t, addrs[1]+64, addrs[2])
}

func TestSyntheticWriteEveryNth(t *testing.T) {
	g := trace.NewSyntheticGenerator(0, trace.SyntheticConfig{
		Pattern:    trace.PatternSequential,
		Count:      4,
		BlockBytes: 64,
		WriteEvery: 2,
	})

	var kinds []request.Kind
	for {
		ref, ok := g.Next()
		if !ok {
			break
		}
		kinds = append(kinds, ref.Kind)
	}

	require.Equal(t, []request.Kind{
		request.KindRead, request.KindWrite, request.KindRead, request.KindWrite,
	}, kinds)
}

func TestSyntheticUnboundedWhenCountZero(t *testing.T) {
	g := trace.NewSyntheticGenerator(0, trace.SyntheticConfig{
		Pattern:    trace.PatternRandom,
		BlockBytes: 64,
		Gap:        4096,
		Seed:       42,
	})

	for i := 0; i < 100; i++ {
		_, ok := g.Next()
		require.True(t, ok)
	}
}
