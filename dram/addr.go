package dram

import "math/bits"

// AddressMapper turns a block address into the (channel, rank, bank,
// row, column) tuple spec section 4.9 requires be stamped onto every
// request routed to the controller.
type AddressMapper struct {
	blockOffsetBits int
	colLowBits      int
	channelBits     int
	colHighBits     int
	rankBits        int
	bankBits        int
}

// Geometry is the construction-time bit-width configuration for the
// default "rbRcC" mapping named in spec section 4.9: peel a low column
// slice, then the channel, then the rest of the column, then rank, then
// bank; whatever remains is the row.
type Geometry struct {
	BlockBytes     int `param:"blockBytes"`
	NumChannels    int `param:"numChannels"`
	NumRanks       int `param:"numRanks"`
	NumBanks       int `param:"numBanks"`
	RowBufferBytes int `param:"rowBufferBytes"` // determines how many low column bits precede the channel field
	ColumnBits     int `param:"columnBits"`     // total column address width
}

// NewAddressMapper builds an rbRcC mapper from g. Every *Bits field is
// derived from the corresponding count via bits.Len, so callers configure
// counts (as spec's own parameter tables do) rather than raw bit widths.
func NewAddressMapper(g Geometry) AddressMapper {
	colLowBits := ceilLog2(g.RowBufferBytes / g.BlockBytes)
	if colLowBits < 0 {
		colLowBits = 0
	}

	return AddressMapper{
		blockOffsetBits: ceilLog2(g.BlockBytes),
		colLowBits:      colLowBits,
		channelBits:     ceilLog2(g.NumChannels),
		colHighBits:     g.ColumnBits - colLowBits,
		rankBits:        ceilLog2(g.NumRanks),
		bankBits:        ceilLog2(g.NumBanks),
	}
}

func ceilLog2(n int) int {
	if n <= 1 {
		return 0
	}

	return bits.Len(uint(n - 1))
}

// Mapped is the resolved DRAM location of a request's block address.
type Mapped struct {
	Channel int
	Rank    int
	Bank    int
	Row     uint64
	Column  uint64
}

// Map peels bit fields off paddr in the literal order spec section 4.9
// gives: column(low), channel, column(high), rank, bank, row(remainder).
func (m AddressMapper) Map(paddr uint64) Mapped {
	addr := paddr >> uint(m.blockOffsetBits)

	colLow, addr := take(addr, m.colLowBits)
	channel, addr := take(addr, m.channelBits)
	colHigh, addr := take(addr, m.colHighBits)
	rank, addr := take(addr, m.rankBits)
	bank, addr := take(addr, m.bankBits)
	row := addr

	return Mapped{
		Channel: int(channel),
		Rank:    int(rank),
		Bank:    int(bank),
		Row:     row,
		Column:  colHigh<<uint(m.colLowBits) | colLow,
	}
}

// take extracts the low width bits of v, returning (field, remainder).
func take(v uint64, width int) (uint64, uint64) {
	if width <= 0 {
		return 0, v
	}

	mask := uint64(1)<<uint(width) - 1

	return v & mask, v >> uint(width)
}
