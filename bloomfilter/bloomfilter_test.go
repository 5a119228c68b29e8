package bloomfilter_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sarchlab/cachesim/bloomfilter"
)

func TestFilterClearRemovesAllMembership(t *testing.T) {
	f := bloomfilter.New(1024, 4)

	for i := uint64(0); i < 50; i++ {
		f.Insert(i)
	}

	f.Clear()

	for i := uint64(0); i < 50; i++ {
		require.False(t, f.Test(i), "key %d should not test positive after Clear", i)
	}
}

func TestFilterNoFalseNegatives(t *testing.T) {
	f := bloomfilter.New(4096, 3)

	keys := make([]uint64, 200)
	for i := range keys {
		keys[i] = uint64(i) * 97
		f.Insert(keys[i])
	}

	for _, k := range keys {
		require.True(t, f.Test(k))
	}
}

func TestH3FilterNoFalseNegatives(t *testing.T) {
	f := bloomfilter.NewH3(4096, 4)

	keys := make([]uint64, 200)
	for i := range keys {
		keys[i] = uint64(i)*131 + 7
		f.Insert(keys[i])
	}

	for _, k := range keys {
		require.True(t, f.Test(k))
	}
}

func TestFilterDeterministicAcrossInstances(t *testing.T) {
	a := bloomfilter.New(2048, 4)
	b := bloomfilter.New(2048, 4)

	a.Insert(12345)
	b.Insert(12345)

	require.Equal(t, a.Test(999), b.Test(999))
}
