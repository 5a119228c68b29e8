package vts

import "github.com/sarchlab/cachesim/bloomfilter"

// bloomApprox stores victim membership in a Bloom filter: fixed space
// regardless of how many victims are recorded, at the cost of occasional
// false positives (an address that was never evicted testing as if it
// had been).
type bloomApprox struct {
	filter *bloomfilter.Filter
}

func newBloomApprox(numBits, numHashes int) *bloomApprox {
	return &bloomApprox{filter: bloomfilter.New(numBits, numHashes)}
}

func (b *bloomApprox) Insert(addr uint64) {
	b.filter.Insert(addr)
}

func (b *bloomApprox) Test(addr uint64) bool {
	return b.filter.Test(addr)
}

func (b *bloomApprox) Clear() {
	b.filter.Clear()
}
