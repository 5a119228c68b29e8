package tagstore

import "github.com/sarchlab/cachesim/primitives"

// SRRIP is the static re-reference interval prediction policy: every slot
// carries an RRPV saturating counter. A hit moves a slot's RRPV away from
// zero (protecting it from near-term eviction); the victim search looks
// for a zero-valued RRPV and, failing that, ages every slot down by one
// and searches again, guaranteeing a victim within RRPVMax sweeps.
type SRRIP struct {
	rrpv    []primitives.Saturating
	rrpvMax int
}

// DefaultRRPVMax is the standard two-bit RRPV ceiling.
const DefaultRRPVMax = 3

// NewSRRIP creates an SRRIP policy with the given RRPV ceiling.
func NewSRRIP(rrpvMax int) *SRRIP {
	return &SRRIP{rrpvMax: rrpvMax}
}

func (p *SRRIP) Init(capacity int) {
	p.rrpv = make([]primitives.Saturating, capacity)

	for i := range p.rrpv {
		p.rrpv[i] = primitives.NewSaturating(0, p.rrpvMax)
	}
}

// OnInsert sets index's RRPV to 1, the standard SRRIP long-re-reference
// prediction.
func (p *SRRIP) OnInsert(index int, _ PVal) {
	p.rrpv[index].Set(1)
}

// OnAccess increments index's RRPV on a hit, moving it away from the
// zero-valued victim condition.
func (p *SRRIP) OnAccess(index int, _ PVal) {
	p.rrpv[index].Increment()
}

// OnInvalidate resets index's RRPV to its ceiling so a stale slot does not
// linger as an accidental near-victim.
func (p *SRRIP) OnInvalidate(index int) {
	p.rrpv[index].Set(p.rrpvMax)
}

// VictimIndex returns the first slot with RRPV zero, aging every slot down
// by one and retrying when none exists.
func (p *SRRIP) VictimIndex() int {
	return srripSweep(p.rrpv, p.rrpvMax)
}

func srripSweep(rrpv []primitives.Saturating, rrpvMax int) int {
	for round := 0; round <= rrpvMax+1; round++ {
		for idx := range rrpv {
			if rrpv[idx].Value() == 0 {
				return idx
			}
		}

		for idx := range rrpv {
			rrpv[idx].Decrement()
		}
	}

	return 0
}
