package tagstore

import "math/bits"

// GenericTagStore composes numSets independent Tables, one per cache set,
// each with waysPerSet ways and its own Policy instance built by
// policyFactory, splitting a byte address into block offset, set index,
// and tag the standard way (low bits are the block offset, the next
// log2(numSets) bits select the set, the remainder is the tag). This is
// the set-associative tag array every concrete cache variant is built on.
type GenericTagStore[V any] struct {
	numSets    int
	waysPerSet int
	blockBytes int
	offsetBits uint
	setBits    uint
	sets       []*Table[uint64, V]
}

// NewGenericTagStore creates a tag store with numSets sets of waysPerSet
// ways each, blockBytes bytes per block, and a fresh Policy (from
// policyFactory) per set. numSets and blockBytes must be powers of two.
func NewGenericTagStore[V any](numSets, waysPerSet, blockBytes int, policyFactory func() Policy) *GenericTagStore[V] {
	if numSets <= 0 || waysPerSet <= 0 || blockBytes <= 0 {
		panic("tagstore: numSets, waysPerSet, and blockBytes must be positive")
	}

	g := &GenericTagStore[V]{
		numSets:    numSets,
		waysPerSet: waysPerSet,
		blockBytes: blockBytes,
		offsetBits: uint(bits.Len(uint(blockBytes - 1))),
		setBits:    uint(bits.Len(uint(numSets - 1))),
		sets:       make([]*Table[uint64, V], numSets),
	}

	for i := range g.sets {
		g.sets[i] = New[uint64, V](waysPerSet, policyFactory())
	}

	return g
}

// Split decomposes a byte address into its set index and tag.
func (g *GenericTagStore[V]) Split(addr uint64) (set uint64, tag uint64) {
	blockAddr := addr >> g.offsetBits
	mask := uint64(1)<<g.setBits - 1

	return blockAddr & mask, blockAddr >> g.setBits
}

// NumSets returns the number of sets.
func (g *GenericTagStore[V]) NumSets() int {
	return g.numSets
}

// WaysPerSet returns the associativity.
func (g *GenericTagStore[V]) WaysPerSet() int {
	return g.waysPerSet
}

// Table returns the underlying Table for a given set index, for callers
// (set-dueling, bypass wrappers) that need direct access.
func (g *GenericTagStore[V]) Table(set uint64) *Table[uint64, V] {
	return g.sets[set]
}

// Insert installs addr's block in its set.
func (g *GenericTagStore[V]) Insert(addr uint64, v V, pval PVal) Entry[uint64, V] {
	set, tag := g.Split(addr)
	return g.sets[set].Insert(tag, v, pval)
}

// Read looks up addr, promoting it on a hit.
func (g *GenericTagStore[V]) Read(addr uint64, pval PVal) Entry[uint64, V] {
	set, tag := g.Split(addr)
	return g.sets[set].Read(tag, pval)
}

// Update overwrites addr's value, promoting it on a hit.
func (g *GenericTagStore[V]) Update(addr uint64, v V, pval PVal) Entry[uint64, V] {
	set, tag := g.Split(addr)
	return g.sets[set].Update(tag, v, pval)
}

// SilentUpdate promotes addr without changing its value.
func (g *GenericTagStore[V]) SilentUpdate(addr uint64, pval PVal) Entry[uint64, V] {
	set, tag := g.Split(addr)
	return g.sets[set].SilentUpdate(tag, pval)
}

// Peek looks up addr without promoting it or touching the replacement
// policy at all.
func (g *GenericTagStore[V]) Peek(addr uint64) Entry[uint64, V] {
	set, tag := g.Split(addr)
	return g.sets[set].Peek(tag)
}

// Invalidate removes addr if present.
func (g *GenericTagStore[V]) Invalidate(addr uint64) Entry[uint64, V] {
	set, tag := g.Split(addr)
	return g.sets[set].Invalidate(tag)
}

// ToBeEvicted peeks at what addr's set would currently evict.
func (g *GenericTagStore[V]) ToBeEvicted(addr uint64) Entry[uint64, V] {
	set, _ := g.Split(addr)
	return g.sets[set].ToBeEvicted()
}

// Combine rebuilds a byte address from a set index and tag, the inverse
// of Split, for callers (eviction writeback address reconstruction) that
// only have a victim's stored tag and the set it came from.
func (g *GenericTagStore[V]) Combine(set, tag uint64) uint64 {
	return (tag<<g.setBits | set) << g.offsetBits
}

// Contains reports whether addr currently hits, without promoting it.
func (g *GenericTagStore[V]) Contains(addr uint64) bool {
	set, tag := g.Split(addr)
	_, ok := g.sets[set].lookup(tag)

	return ok
}
