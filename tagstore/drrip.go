package tagstore

import "github.com/sarchlab/cachesim/primitives"

// DRRIP layers a DIP-style bimodal insertion throttle on top of SRRIP's
// RRPV victim search: High insertions get the standard SRRIP insertion
// value (RRPV 1), Low
// insertions are immediately victim-eligible, and Bimodal insertions use
// the standard SRRIP insertion value except for a thin slice (one in
// bipPeriod) that instead gets the aggressive Low treatment, mirroring how
// DIP throttles its LRU-end insertions.
type DRRIP struct {
	rrpv    []primitives.Saturating
	rrpvMax int

	bipPeriod  int
	bipCounter int

	hitPriority bool
}

// DefaultDRRIPBIPPeriod is the standard DRRIP bimodal-insertion throttle.
const DefaultDRRIPBIPPeriod = 67

// NewDRRIP creates a DRRIP policy.
func NewDRRIP(rrpvMax, bipPeriod int) *DRRIP {
	return &DRRIP{rrpvMax: rrpvMax, bipPeriod: bipPeriod}
}

// NewDRRIPHP creates a DRRIP-HP (hit-priority) policy: a hit sets RRPV
// directly to its ceiling rather than incrementing, giving re-referenced
// blocks immediate full protection.
func NewDRRIPHP(rrpvMax, bipPeriod int) *DRRIP {
	return &DRRIP{rrpvMax: rrpvMax, bipPeriod: bipPeriod, hitPriority: true}
}

func (p *DRRIP) Init(capacity int) {
	p.rrpv = make([]primitives.Saturating, capacity)

	for i := range p.rrpv {
		p.rrpv[i] = primitives.NewSaturating(0, p.rrpvMax)
	}
}

// OnInsert sets index's RRPV according to pval: High always gets the
// standard SRRIP insertion value (1), Low always gets the immediately
// victim-eligible value (0), and Bimodal normally matches High but flips
// to Low's value once every bipPeriod insertions.
func (p *DRRIP) OnInsert(index int, pval PVal) {
	switch pval {
	case Low:
		p.rrpv[index].Set(0)
	case Bimodal:
		p.bipCounter++
		if p.bipCounter%p.bipPeriod == 0 {
			p.rrpv[index].Set(0)
			return
		}

		p.rrpv[index].Set(1)
	default:
		p.rrpv[index].Set(1)
	}
}

// OnAccess protects index on a hit: DRRIP-HP jumps straight to full
// protection, plain DRRIP increments like SRRIP.
func (p *DRRIP) OnAccess(index int, _ PVal) {
	if p.hitPriority {
		p.rrpv[index].Set(p.rrpvMax)
		return
	}

	p.rrpv[index].Increment()
}

// OnInvalidate resets index's RRPV to its ceiling.
func (p *DRRIP) OnInvalidate(index int) {
	p.rrpv[index].Set(p.rrpvMax)
}

// VictimIndex returns the first zero-valued RRPV slot, aging all slots
// down and retrying when none exists.
func (p *DRRIP) VictimIndex() int {
	return srripSweep(p.rrpv, p.rrpvMax)
}
