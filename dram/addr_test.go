package dram

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddressMapperRoundTripsDistinctBanks(t *testing.T) {
	mapper := NewAddressMapper(Geometry{
		BlockBytes:     64,
		NumChannels:    2,
		NumRanks:       2,
		NumBanks:       8,
		RowBufferBytes: 1024,
		ColumnBits:     10,
	})

	a := mapper.Map(0x0000_0000)
	b := mapper.Map(0x0000_0000 | (1 << 10)) // next channel, same everything else

	require.NotEqual(t, a.Channel, b.Channel)
	require.Equal(t, a.Rank, b.Rank)
	require.Equal(t, a.Bank, b.Bank)
	require.Equal(t, a.Row, b.Row)
}

func TestAddressMapperSeparatesRows(t *testing.T) {
	mapper := NewAddressMapper(Geometry{
		BlockBytes:     64,
		NumChannels:    1,
		NumRanks:       1,
		NumBanks:       1,
		RowBufferBytes: 1024,
		ColumnBits:     10,
	})

	low := mapper.Map(0)
	high := mapper.Map(1 << 20)

	require.NotEqual(t, low.Row, high.Row)
}
