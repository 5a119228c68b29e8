package tagstore

// Policy governs which slot a Table evicts and how it reacts to inserts,
// hits, and invalidations. Table calls Init once, then OnInsert/OnAccess/
// OnInvalidate as slots change occupancy, and VictimIndex only when the
// table is completely full (every index in [0, capacity) is occupied), so
// policies never need to track occupancy themselves for victim selection.
//
// VictimIndex may mutate a policy's internal aging state (clock hands,
// RRPV decay, reuse-counter decay): under the clock-style policies below,
// "finding" the victim is the aging process, so Table's ToBeEvicted (a
// non-mutating peek at the table's key/value contents) is allowed to
// advance replacement-metadata aging even though it never touches the
// table's slots. Under SRRIP/DRRIP a repeated peek names the same slot
// again, since that slot's RRPV is already zero; under NRU, Reuse and
// Generation the sweep hand has already moved past the last victim, so a
// repeated peek can name a different slot (see Table.InsertVictim).
type Policy interface {
	// Init is called once, before any other method, with the table's fixed
	// capacity.
	Init(capacity int)

	// OnInsert is called when a new key occupies index, whether index came
	// from a free slot or from an eviction.
	OnInsert(index int, pval PVal)

	// OnAccess is called on a hit: Read, Update, or SilentUpdate.
	OnAccess(index int, pval PVal)

	// OnInvalidate is called when index's occupant is removed without the
	// policy itself having chosen it (explicit Invalidate).
	OnInvalidate(index int)

	// VictimIndex returns the slot the policy recommends evicting. Only
	// called when every slot is occupied.
	VictimIndex() int
}

// WeightedPolicy is implemented by policies (MaxW, MinW) that choose a
// victim by inspecting the value stored in each slot rather than by purely
// positional metadata. Table wires SetWeightFunc with an accessor into its
// own value storage at construction time.
type WeightedPolicy interface {
	Policy

	// SetWeightFunc installs a function that returns the integer weight of
	// the value currently stored at index.
	SetWeightFunc(weight func(index int) int)
}
