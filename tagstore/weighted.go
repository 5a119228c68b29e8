package tagstore

// Weighted is the MaxW/MinW policy family: the victim is whichever
// occupied slot has the largest (MaxW) or smallest (MinW) weight, as
// reported by the value stored there. Used for dirty-bit-vector tables
// where weight is a per-way bitset's population count, so eviction can be
// biased toward the most (or least) dirty way. Insertion order carries no
// special meaning, so ties fall back to the lowest index.
type Weighted struct {
	weight  func(index int) int
	maximum bool
	n       int
}

// NewMaxW creates a policy that evicts the slot with the greatest weight.
func NewMaxW() *Weighted {
	return &Weighted{maximum: true}
}

// NewMinW creates a policy that evicts the slot with the least weight.
func NewMinW() *Weighted {
	return &Weighted{maximum: false}
}

func (p *Weighted) Init(capacity int) {
	p.n = capacity
}

// SetWeightFunc installs the table's value-weight accessor.
func (p *Weighted) SetWeightFunc(weight func(index int) int) {
	p.weight = weight
}

// OnInsert does nothing: weight is read live from the table's stored
// value, not tracked separately.
func (p *Weighted) OnInsert(int, PVal) {}

// OnAccess does nothing, for the same reason.
func (p *Weighted) OnAccess(int, PVal) {}

// OnInvalidate does nothing, for the same reason.
func (p *Weighted) OnInvalidate(int) {}

// VictimIndex scans every slot and returns the extreme-weighted one.
func (p *Weighted) VictimIndex() int {
	best := 0
	bestW := p.weight(0)

	for i := 1; i < p.n; i++ {
		w := p.weight(i)

		if (p.maximum && w > bestW) || (!p.maximum && w < bestW) {
			best = i
			bestW = w
		}
	}

	return best
}
