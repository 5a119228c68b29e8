package tagstore

import "reflect"

// Entry is a snapshot of a table slot returned by Table's operations. Valid
// reports whether Key/Value/Index carry real data: for Insert/Read/Update/
// Invalidate it is true whenever an existing occupant's data is being
// reported (a hit, or the entry evicted/removed to make room); it is false
// when a free slot was used and nothing was displaced. AlreadyPresent
// distinguishes a hit on an existing key (true) from a reported eviction
// (false), since both set Valid.
type Entry[K comparable, V any] struct {
	Valid          bool
	AlreadyPresent bool
	Index          int
	Key            K
	Value          V
}

// Table is a fixed-capacity associative array with policy-driven eviction.
// It is the unit a set-associative cache allocates one of per set; higher
// layers (GenericTagStore) compose many Tables into a full tag array.
type Table[K comparable, V any] struct {
	capacity int
	valid    []bool
	keys     []K
	values   []V
	index    map[K]int
	free     []int
	policy   Policy

	indexAsKey bool
}

// New creates a Table with the given capacity governed by policy.
func New[K comparable, V any](capacity int, policy Policy) *Table[K, V] {
	return newTable[K, V](capacity, policy, false)
}

// NewIndexKeyed creates a Table whose keys are always their own slot index
// (K must be an integer type convertible from int), skipping the hash-map
// lookup entirely. Used by direct-mapped structures such as per-way dirty
// bit vectors where the "key" is simply the way number.
func NewIndexKeyed[K ~int, V any](capacity int, policy Policy) *Table[K, V] {
	return newTable[K, V](capacity, policy, true)
}

func newTable[K comparable, V any](capacity int, policy Policy, indexAsKey bool) *Table[K, V] {
	if capacity <= 0 {
		panic("tagstore: capacity must be positive")
	}

	t := &Table[K, V]{
		capacity:   capacity,
		valid:      make([]bool, capacity),
		keys:       make([]K, capacity),
		values:     make([]V, capacity),
		free:       make([]int, capacity),
		policy:     policy,
		indexAsKey: indexAsKey,
	}

	if !indexAsKey {
		t.index = make(map[K]int, capacity)
	}

	for i := 0; i < capacity; i++ {
		t.free[i] = capacity - 1 - i
	}

	if wp, ok := policy.(WeightedPolicy); ok {
		wp.SetWeightFunc(func(i int) int { return weightOf(t.values[i]) })
	}

	policy.Init(capacity)

	return t
}

// weightOf extracts an integer weight from a value for WeightedPolicy use.
// Values used with MaxW/MinW must implement Weigher; other value types
// never reach this path because only weighted policies call it.
func weightOf(v any) int {
	if w, ok := v.(Weigher); ok {
		return w.Weight()
	}

	panic("tagstore: value type does not implement Weigher, required by a weighted policy")
}

// Weigher is implemented by values stored in a Table governed by MaxW or
// MinW, such as a per-way dirty-bit bitset (spec's DBI dynamic-bypass
// design), so the policy can rank slots by population count or any other
// caller-defined notion of weight.
type Weigher interface {
	Weight() int
}

// Capacity returns the table's fixed slot count.
func (t *Table[K, V]) Capacity() int {
	return t.capacity
}

// Len returns the number of occupied slots.
func (t *Table[K, V]) Len() int {
	return t.capacity - len(t.free)
}

func (t *Table[K, V]) lookup(k K) (int, bool) {
	if t.indexAsKey {
		return t.lookupIndexAsKey(k)
	}

	idx, ok := t.index[k]
	return idx, ok
}

func (t *Table[K, V]) lookupIndexAsKey(k K) (int, bool) {
	idx := toInt(k)
	if idx < 0 || idx >= t.capacity {
		return 0, false
	}

	if !t.valid[idx] || t.keys[idx] != k {
		return 0, false
	}

	return idx, true
}

// toInt converts an index-keyed K (guaranteed ~int by NewIndexKeyed) to a
// plain int via reflection, since Table itself is only constrained on K
// comparable.
func toInt(k any) int {
	return int(reflect.ValueOf(k).Int())
}

// ValueAt returns a pointer to the value stored at index for in-place
// mutation (e.g. flipping a dirty bit without a key lookup), and whether
// the slot is occupied.
func (t *Table[K, V]) ValueAt(index int) (*V, bool) {
	if index < 0 || index >= t.capacity || !t.valid[index] {
		return nil, false
	}

	return &t.values[index], true
}

// KeyAt returns the key occupying index, if any.
func (t *Table[K, V]) KeyAt(index int) (K, bool) {
	var zero K
	if index < 0 || index >= t.capacity || !t.valid[index] {
		return zero, false
	}

	return t.keys[index], true
}

func (t *Table[K, V]) popFree() (int, bool) {
	if len(t.free) == 0 {
		return 0, false
	}

	idx := t.free[len(t.free)-1]
	t.free = t.free[:len(t.free)-1]

	return idx, true
}

func (t *Table[K, V]) install(idx int, k K, v V) {
	t.valid[idx] = true
	t.keys[idx] = k
	t.values[idx] = v

	if !t.indexAsKey {
		t.index[k] = idx
	}
}

func (t *Table[K, V]) remove(idx int) Entry[K, V] {
	old := Entry[K, V]{Valid: true, Index: idx, Key: t.keys[idx], Value: t.values[idx]}

	t.valid[idx] = false

	if !t.indexAsKey {
		delete(t.index, t.keys[idx])
	}

	var zero K
	var zeroV V
	t.keys[idx] = zero
	t.values[idx] = zeroV

	return old
}

// Insert adds (k, v) to the table. If k already occupies a slot, Insert is
// a no-op and returns that slot's current entry with AlreadyPresent=true.
// Otherwise it uses a free slot if one exists, or evicts the policy's
// chosen victim, installs (k, v), and returns what (if anything) was
// displaced.
func (t *Table[K, V]) Insert(k K, v V, pval PVal) Entry[K, V] {
	if idx, ok := t.lookup(k); ok {
		return Entry[K, V]{Valid: true, AlreadyPresent: true, Index: idx, Key: t.keys[idx], Value: t.values[idx]}
	}

	if idx, ok := t.popFree(); ok {
		t.install(idx, k, v)
		t.policy.OnInsert(idx, pval)

		return Entry[K, V]{Valid: false, Index: idx}
	}

	victim := t.policy.VictimIndex()
	evicted := t.remove(victim)
	t.install(victim, k, v)
	t.policy.OnInsert(victim, pval)

	return evicted
}

// InsertVictim installs (k, v) reusing a victim entry a caller already
// resolved via ToBeEvicted, instead of calling the policy's VictimIndex
// again. VictimIndex may mutate a clock-style policy's aging state as a
// side effect (NRU's sweep hand, Reuse's decaying counters, Generation's
// sweep hand), so calling it twice between a peek and the real eviction
// evicts two different slots and desynchronizes the caller's own
// eviction bookkeeping (writeback spawn, OnEvict hook, stats) from what
// actually gets displaced. hasVictim false means the caller found no
// victim (a free slot was available), in which case InsertVictim falls
// back to the ordinary free-slot/VictimIndex path itself.
func (t *Table[K, V]) InsertVictim(k K, v V, pval PVal, victim Entry[K, V], hasVictim bool) Entry[K, V] {
	if idx, ok := t.lookup(k); ok {
		return Entry[K, V]{Valid: true, AlreadyPresent: true, Index: idx, Key: t.keys[idx], Value: t.values[idx]}
	}

	if !hasVictim {
		if idx, ok := t.popFree(); ok {
			t.install(idx, k, v)
			t.policy.OnInsert(idx, pval)

			return Entry[K, V]{Valid: false, Index: idx}
		}

		victim = Entry[K, V]{Index: t.policy.VictimIndex()}
	}

	evicted := t.remove(victim.Index)
	t.install(victim.Index, k, v)
	t.policy.OnInsert(victim.Index, pval)

	return evicted
}

// Read returns k's current entry and promotes it under pval, or a Valid
// false Entry if k is absent.
func (t *Table[K, V]) Read(k K, pval PVal) Entry[K, V] {
	idx, ok := t.lookup(k)
	if !ok {
		return Entry[K, V]{}
	}

	t.policy.OnAccess(idx, pval)

	return Entry[K, V]{Valid: true, AlreadyPresent: true, Index: idx, Key: t.keys[idx], Value: t.values[idx]}
}

// Update replaces k's value with v and promotes it under pval, or is a
// no-op returning a Valid false Entry if k is absent.
func (t *Table[K, V]) Update(k K, v V, pval PVal) Entry[K, V] {
	idx, ok := t.lookup(k)
	if !ok {
		return Entry[K, V]{}
	}

	t.values[idx] = v
	t.policy.OnAccess(idx, pval)

	return Entry[K, V]{Valid: true, AlreadyPresent: true, Index: idx, Key: t.keys[idx], Value: t.values[idx]}
}

// SilentUpdate promotes k under pval without changing its stored value,
// used when a policy-visible touch happens independently of a data write
// (e.g. a tag-only probe).
func (t *Table[K, V]) SilentUpdate(k K, pval PVal) Entry[K, V] {
	idx, ok := t.lookup(k)
	if !ok {
		return Entry[K, V]{}
	}

	t.policy.OnAccess(idx, pval)

	return Entry[K, V]{Valid: true, AlreadyPresent: true, Index: idx, Key: t.keys[idx], Value: t.values[idx]}
}

// Peek returns k's current entry without touching the replacement
// policy's bookkeeping at all, for callers that need to inspect a slot's
// contents without counting as an access (PACMan-H's non-promoting hit).
func (t *Table[K, V]) Peek(k K) Entry[K, V] {
	idx, ok := t.lookup(k)
	if !ok {
		return Entry[K, V]{}
	}

	return Entry[K, V]{Valid: true, AlreadyPresent: true, Index: idx, Key: t.keys[idx], Value: t.values[idx]}
}

// Invalidate removes k if present, notifying the policy that the slot is
// now free, and returns the removed entry (Valid false if k was absent).
func (t *Table[K, V]) Invalidate(k K) Entry[K, V] {
	idx, ok := t.lookup(k)
	if !ok {
		return Entry[K, V]{}
	}

	old := t.remove(idx)
	t.policy.OnInvalidate(idx)
	t.free = append(t.free, idx)

	return old
}

// ToBeEvicted peeks at the entry the policy would currently evict, without
// removing it from the table. See Policy's doc comment for why this may
// still advance a clock-style policy's internal aging state.
func (t *Table[K, V]) ToBeEvicted() Entry[K, V] {
	if _, ok := t.popFreePeek(); ok {
		return Entry[K, V]{}
	}

	idx := t.policy.VictimIndex()

	return Entry[K, V]{Valid: true, Index: idx, Key: t.keys[idx], Value: t.values[idx]}
}

func (t *Table[K, V]) popFreePeek() (int, bool) {
	if len(t.free) == 0 {
		return 0, false
	}

	return t.free[len(t.free)-1], true
}

// ForceEvict removes whatever the policy currently chooses as victim (even
// though a free slot exists elsewhere, this evicts anyway), returning what
// was removed. Used by explicit capacity-shrink or cold-start-skip paths.
func (t *Table[K, V]) ForceEvict() Entry[K, V] {
	idx := t.policy.VictimIndex()
	old := t.remove(idx)
	t.policy.OnInvalidate(idx)
	t.free = append(t.free, idx)

	return old
}
