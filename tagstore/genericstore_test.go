package tagstore_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sarchlab/cachesim/tagstore"
)

func TestGenericTagStoreSplitRoundTripsWithinSet(t *testing.T) {
	g := tagstore.NewGenericTagStore[int](16, 4, 64, func() tagstore.Policy { return tagstore.NewLRU() })

	g.Insert(0x1000, 42, tagstore.Bimodal)
	require.True(t, g.Contains(0x1000))

	hit := g.Read(0x1000, tagstore.Bimodal)
	require.True(t, hit.Valid)
	require.Equal(t, 42, hit.Value)
}

func TestGenericTagStoreDistinctAddressesDoNotCollideAcrossSets(t *testing.T) {
	g := tagstore.NewGenericTagStore[string](8, 2, 64, func() tagstore.Policy { return tagstore.NewFIFO() })

	set, _ := g.Split(0x40) // block index 1, set 1 (of 8)
	require.Equal(t, uint64(1), set)

	g.Insert(0x40, "a", tagstore.Bimodal)
	g.Insert(0x440, "b", tagstore.Bimodal) // same set, different tag
	require.True(t, g.Contains(0x40))
	require.True(t, g.Contains(0x440))
}

func TestBypassTagStoreSkipsVetoedInserts(t *testing.T) {
	b := tagstore.NewBypassTagStore[int](4, 2, 64, func() tagstore.Policy { return tagstore.NewLRU() }, func(addr uint64) bool {
		return addr%2 == 0
	})

	b.Insert(2, 1, tagstore.Bimodal)
	require.False(t, b.Contains(2))
	require.Equal(t, uint64(1), b.Bypassed())

	b.Insert(3, 1, tagstore.Bimodal)
	require.True(t, b.Contains(3))
	require.Equal(t, uint64(1), b.Inserted())
}

func TestSetDuelingTagStoreSteersFollowersByPSEL(t *testing.T) {
	s := tagstore.NewSetDuelingTagStore[string](
		64, 4, 64, 4, 1,
		func() tagstore.Policy { return tagstore.NewDRRIP(tagstore.DefaultRRPVMax, tagstore.DefaultDRRIPBIPPeriod) },
		tagstore.High, tagstore.Low,
	)

	require.Equal(t, "A", s.FavoredStrategy(0))

	for i := 0; i < tagstore.DefaultPSELMax; i++ {
		s.RecordMiss(0, 0) // set 0 is app 0's leader-A set by construction
	}

	require.Equal(t, "B", s.FavoredStrategy(0))
}
