package tagstore

// BypassTagStore wraps a GenericTagStore with a per-set bypass decision: a
// predicate consulted on every miss that, when true, skips installation
// entirely (the request is serviced but never cached), used by dynamic
// bypass schemes that route around sets/ways predicted to thrash.
type BypassTagStore[V any] struct {
	*GenericTagStore[V]

	shouldBypass func(addr uint64) bool

	bypassed uint64
	inserted uint64
}

// NewBypassTagStore creates a tag store that skips installation for any
// address where shouldBypass returns true.
func NewBypassTagStore[V any](numSets, waysPerSet, blockBytes int, policyFactory func() Policy, shouldBypass func(addr uint64) bool) *BypassTagStore[V] {
	return &BypassTagStore[V]{
		GenericTagStore: NewGenericTagStore[V](numSets, waysPerSet, blockBytes, policyFactory),
		shouldBypass:    shouldBypass,
	}
}

// Insert installs (addr, v) unless shouldBypass(addr) vetoes it, in which
// case Insert is a no-op and returns a Valid-false Entry.
func (b *BypassTagStore[V]) Insert(addr uint64, v V, pval PVal) Entry[uint64, V] {
	if b.shouldBypass != nil && b.shouldBypass(addr) {
		b.bypassed++
		return Entry[uint64, V]{}
	}

	b.inserted++

	return b.GenericTagStore.Insert(addr, v, pval)
}

// Bypassed returns how many Insert calls were vetoed.
func (b *BypassTagStore[V]) Bypassed() uint64 {
	return b.bypassed
}

// Inserted returns how many Insert calls actually installed a block.
func (b *BypassTagStore[V]) Inserted() uint64 {
	return b.inserted
}
