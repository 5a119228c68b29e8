package profiling_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sarchlab/cachesim/profiling"
)

func TestCollectorCountsSamplesByIP(t *testing.T) {
	c := profiling.NewCollector()

	c.Sample(0x1000)
	c.Sample(0x1000)
	c.Sample(0x2000)

	require.Equal(t, int64(2), c.Count(0x1000))
	require.Equal(t, int64(1), c.Count(0x2000))
	require.Equal(t, int64(0), c.Count(0x3000))
}

func TestProfileHasOneSamplePerDistinctIP(t *testing.T) {
	c := profiling.NewCollector()
	c.Sample(0x1000)
	c.Sample(0x1000)
	c.Sample(0x2000)

	prof := c.Profile()

	require.Len(t, prof.Sample, 2)
	require.Len(t, prof.Function, 2)
	require.Len(t, prof.Location, 2)

	total := int64(0)
	for _, s := range prof.Sample {
		total += s.Value[0]
	}
	require.Equal(t, int64(3), total)
}

func TestWriteProducesNonEmptyPprofBytes(t *testing.T) {
	c := profiling.NewCollector()
	c.Sample(0x4242)

	var buf bytes.Buffer
	require.NoError(t, c.Write(&buf))
	require.NotEmpty(t, buf.Bytes())
}
