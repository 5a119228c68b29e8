package tagstore_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sarchlab/cachesim/tagstore"
)

// TestLRUScenarioFromSpec reproduces: capacity 4, LRU; insert keys
// 1,2,3,4; read 1; insert 5. The evicted entry's key must be 2.
func TestLRUScenarioFromSpec(t *testing.T) {
	tb := tagstore.New[int, string](4, tagstore.NewLRU())

	for _, k := range []int{1, 2, 3, 4} {
		tb.Insert(k, "v", tagstore.Bimodal)
	}

	tb.Read(1, tagstore.Bimodal)

	evicted := tb.Insert(5, "v", tagstore.Bimodal)
	require.True(t, evicted.Valid)
	require.Equal(t, 2, evicted.Key)
}

// TestDRRIPScenarioFromSpec reproduces: capacity 4, SRRIP-max=3,
// insertions with pval=High; after filling and one read on slot 0, the
// victim is slot 1 (lowest aged RRPV among non-MRU).
func TestDRRIPScenarioFromSpec(t *testing.T) {
	tb := tagstore.New[int, string](4, tagstore.NewDRRIP(tagstore.DefaultRRPVMax, tagstore.DefaultDRRIPBIPPeriod))

	for i := 0; i < 4; i++ {
		tb.Insert(i, "v", tagstore.High)
	}

	tb.Read(0, tagstore.High)

	evicted := tb.Insert(4, "v", tagstore.High)
	require.True(t, evicted.Valid)
	require.Equal(t, 1, evicted.Key)
}
