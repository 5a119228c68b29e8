// Package bloomfilter implements the set-membership approximators used by
// the Victim Tag Store / Evicted Address Filter (spec section 3, "Bloom
// filter"): a fixed-width bit array tested by numHashFunctions independent
// hashes, with a default multiply-shift hash family and an alternate H3
// (per-bit-position random mask + parity) family.
package bloomfilter

import "math/bits"

// Filter is a fixed-size bloom filter keyed on uint64 block tags.
type Filter struct {
	bits             []uint64
	numBits          int
	numHashFunctions int
	hashes           []hashFunc

	positiveTests uint64
	insertions    uint64
}

type hashFunc func(key uint64) uint64

// New creates a flat multiply-shift bloom filter with numBits bits and
// numHashFunctions independent hash functions, seeded deterministically so
// that two filters built with the same parameters behave identically
// (required for reproducible simulation runs).
func New(numBits, numHashFunctions int) *Filter {
	if numBits <= 0 {
		panic("bloomfilter: numBits must be positive")
	}

	if numHashFunctions <= 0 {
		panic("bloomfilter: numHashFunctions must be positive")
	}

	f := &Filter{
		bits:             make([]uint64, (numBits+63)/64),
		numBits:          numBits,
		numHashFunctions: numHashFunctions,
	}

	seed := uint64(0x9E3779B97F4A7C15)
	for i := 0; i < numHashFunctions; i++ {
		multiplier := splitmix(&seed) | 1 // keep it odd for a full-period LCG-like multiplier
		shift := uint(splitmix(&seed)%32) + 16
		f.hashes = append(f.hashes, multiplyShiftHash(multiplier, shift, numBits))
	}

	return f
}

// NewH3 creates an H3-family bloom filter: each hash function is a table of
// random 64-bit masks, one per input bit, combined by XOR; the combined
// word is reduced to a bit index from its population count (see h3Hash).
func NewH3(numBits, numHashFunctions int) *Filter {
	if numBits <= 0 {
		panic("bloomfilter: numBits must be positive")
	}

	if numHashFunctions <= 0 {
		panic("bloomfilter: numHashFunctions must be positive")
	}

	f := &Filter{
		bits:             make([]uint64, (numBits+63)/64),
		numBits:          numBits,
		numHashFunctions: numHashFunctions,
	}

	seed := uint64(0xD1B54A32D192ED03)
	for i := 0; i < numHashFunctions; i++ {
		masks := make([]uint64, 64)
		for b := range masks {
			masks[b] = splitmix(&seed)
		}

		f.hashes = append(f.hashes, h3Hash(masks, numBits))
	}

	return f
}

func splitmix(state *uint64) uint64 {
	*state += 0x9E3779B97F4A7C15
	z := *state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

func multiplyShiftHash(multiplier uint64, shift uint, numBits int) hashFunc {
	return func(key uint64) uint64 {
		return ((key * multiplier) >> shift) % uint64(numBits)
	}
}

// h3Hash implements the classic H3 universal hash family: for each set bit
// of key, XOR in the corresponding random mask, then map the 64-bit
// result into the range [0, numBits) by multiplying its popcount by a
// fixed odd constant and taking the remainder mod numBits. Because the
// popcount is in [0, 64], one hash function reaches at most 65 distinct
// bit positions.
func h3Hash(masks []uint64, numBits int) hashFunc {
	return func(key uint64) uint64 {
		var acc uint64
		for b := 0; b < 64; b++ {
			if key&(1<<uint(b)) != 0 {
				acc ^= masks[b]
			}
		}

		return uint64(bits.OnesCount64(acc)*2654435761) % uint64(numBits)
	}
}

// Insert adds key's membership to the filter.
func (f *Filter) Insert(key uint64) {
	f.insertions++

	for _, h := range f.hashes {
		idx := h(key)
		f.setBit(idx)
	}
}

// Test reports whether key may be a member. False positives are possible;
// false negatives are not.
func (f *Filter) Test(key uint64) bool {
	for _, h := range f.hashes {
		if !f.getBit(h(key)) {
			return false
		}
	}

	f.positiveTests++

	return true
}

// Clear resets every bit, used by the Victim Tag Store's mass-clear
// strategy.
func (f *Filter) Clear() {
	for i := range f.bits {
		f.bits[i] = 0
	}

	f.positiveTests = 0
	f.insertions = 0
}

// PositiveTests returns the number of Test calls that returned true,
// including true positives; callers that know ground truth can subtract
// true positives to get the false-positive count for statistics.
func (f *Filter) PositiveTests() uint64 {
	return f.positiveTests
}

// Insertions returns the number of Insert calls since the last Clear.
func (f *Filter) Insertions() uint64 {
	return f.insertions
}

func (f *Filter) setBit(idx uint64) {
	f.bits[idx/64] |= 1 << (idx % 64)
}

func (f *Filter) getBit(idx uint64) bool {
	return f.bits[idx/64]&(1<<(idx%64)) != 0
}
