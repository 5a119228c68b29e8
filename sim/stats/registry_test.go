package stats_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sarchlab/cachesim/sim/stats"
)

func TestRegistryRegistrationOrderDump(t *testing.T) {
	r := stats.NewRegistry()
	misses := r.Register("misses", "Cache Misses")
	hits := r.Register("hits", "Cache Hits")

	r.Inc(hits)
	r.Inc(hits)
	r.Add(misses, 5)

	var sb strings.Builder
	require.NoError(t, r.Dump(&sb))

	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	require.Equal(t, []string{"Cache Misses: 5", "Cache Hits: 2"}, lines)
}

func TestRegistryDuplicateNamePanics(t *testing.T) {
	r := stats.NewRegistry()
	r.Register("misses", "Cache Misses")

	require.Panics(t, func() {
		r.Register("misses", "Cache Misses Again")
	})
}

func TestRegistryResetPreservesRegistrations(t *testing.T) {
	r := stats.NewRegistry()
	h := r.Register("x", "X")
	r.Add(h, 10)
	r.Reset()

	require.Equal(t, uint64(0), r.Value(h))

	h2, ok := r.Handle("x")
	require.True(t, ok)
	require.Equal(t, h, h2)
}

func TestRegistrySnapshot(t *testing.T) {
	r := stats.NewRegistry()
	h := r.Register("y", "Y")
	r.Add(h, 3)

	snap := r.Snapshot()
	require.Equal(t, uint64(3), snap["y"])
}
