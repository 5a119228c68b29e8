package tagstore

import "github.com/sarchlab/cachesim/primitives"

// NRU is a not-recently-used clock policy: a sweep hand walks the slots,
// clearing each referenced bit it passes over until it finds one already
// clear, which becomes the victim.
type NRU struct {
	hand primitives.Cyclic
	ref  []bool
}

// NewNRU creates an NRU policy.
func NewNRU() *NRU {
	return &NRU{}
}

func (p *NRU) Init(capacity int) {
	p.hand = primitives.NewCyclic(capacity)
	p.ref = make([]bool, capacity)
}

// OnInsert marks index unreferenced: a fresh block has not yet been
// touched again since its initial fetch, so it is an immediate eviction
// candidate until a later hit protects it.
func (p *NRU) OnInsert(index int, _ PVal) {
	p.ref[index] = false
}

// OnAccess marks index referenced.
func (p *NRU) OnAccess(index int, _ PVal) {
	p.ref[index] = true
}

// OnInvalidate clears index's referenced bit.
func (p *NRU) OnInvalidate(index int) {
	p.ref[index] = false
}

// VictimIndex sweeps forward, clearing referenced bits, until it reaches a
// slot whose referenced bit is already clear.
func (p *NRU) VictimIndex() int {
	size := p.hand.Size()

	for i := 0; i <= size; i++ {
		idx := p.hand.Hand()
		if !p.ref[idx] {
			p.hand.Add(1)
			return idx
		}

		p.ref[idx] = false
		p.hand.Add(1)
	}

	return p.hand.Hand()
}
