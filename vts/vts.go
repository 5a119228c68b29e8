// Package vts implements the Victim Tag Store / Evicted Address Filter: a
// membership set over recently evicted block addresses, consulted by a
// cache's insertion policy to tell a genuine first-touch miss from a
// thrashing re-miss on a block this same cache just threw out (spec
// section 3, "Victim Tag Store (VTS) / Evicted Address Filter (EAF)").
// Five modes trade exactness for space: Exact and FIFO never forget a
// victim except by capacity pressure, Segmented ages victims out in
// batches, DecoupledClear wipes the whole filter on an insertion-count
// period independent of capacity, and BloomApprox trades false positives for O(1) space.
package vts

// Mode selects which backing strategy a Store uses.
type Mode int

const (
	// Exact keeps every victim address and, by default, wipes the whole
	// list at once when an insert would overflow capacity (the NoClear
	// option switches this to evicting one entry at a time instead).
	Exact Mode = iota
	// FIFO is Exact with NoClear forced on: a capacity-bounded,
	// eviction-order victim list that evicts its oldest entry one at a
	// time on overflow rather than clearing. Kept as a distinct mode name
	// because the spec lists Exact and FIFO as separate constructor
	// choices even though both share the same backing list.
	FIFO
	// Segmented partitions capacity into fixed-size segments and clears
	// the oldest segment wholesale once the newest one fills, rather than
	// evicting one entry at a time.
	Segmented
	// DecoupledClear keeps an exact list but wipes it entirely on a fixed
	// insertion-count period, independent of capacity.
	DecoupledClear
	// BloomApprox stores membership in a Bloom filter instead of an exact
	// list, accepting false positives in exchange for fixed space.
	BloomApprox
)

// Store is the membership test every mode implements.
type Store interface {
	// Insert records addr as a recently evicted victim.
	Insert(addr uint64)
	// Test reports whether addr was recently evicted. Exact, FIFO,
	// Segmented and DecoupledClear never false-positive, though Segmented
	// and DecoupledClear can forget a victim early across a clear
	// boundary; BloomApprox can false-positive on any unrelated address.
	Test(addr uint64) bool
	// Clear removes all recorded victims.
	Clear()
}

// options carries the boolean constructor knobs New accepts on top of
// mode and capacity.
type options struct {
	noClear bool
	ideal   bool
}

// Option configures a Store beyond its mode and capacity.
type Option func(*options)

// NoClear makes Exact mode evict its single oldest entry on overflow
// instead of clearing the whole list (Exact's default). FIFO mode always
// behaves this way regardless of NoClear.
func NoClear() Option {
	return func(o *options) { o.noClear = true }
}

// Ideal removes an address from the store the moment it is tested and
// found present, modeling an idealized filter that never re-reports a
// victim it has already answered for once.
func Ideal() Option {
	return func(o *options) { o.ideal = true }
}

// New creates a Store in the given mode with the given capacity
// (BloomApprox turns it into a filter of capacity*8 bits with 3 hashes).
func New(mode Mode, capacity int, opts ...Option) Store {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	switch mode {
	case Exact, FIFO:
		return newExact(capacity, o.noClear || mode == FIFO, o.ideal)
	case Segmented:
		return newSegmented(capacity, defaultNumSegments)
	case DecoupledClear:
		return newDecoupledClear(capacity, capacity*defaultClearPeriodMultiplier)
	case BloomApprox:
		return newBloomApprox(capacity*defaultBloomBitsPerEntry, defaultBloomHashes)
	default:
		panic("vts: unknown mode")
	}
}

const (
	defaultNumSegments           = 4
	defaultClearPeriodMultiplier = 2
	defaultBloomBitsPerEntry     = 8
	defaultBloomHashes           = 3
)
