package sim

// Cycle is a point in simulated time, measured in the owning component's
// clock domain. Components that run at different frequencies still share
// the same Cycle type; the Memory Simulator driver is responsible for
// translating between a component's local notion of "now" and the cycle
// stamped onto a request, exactly as described in spec section 4.1.
type Cycle uint64

// Max returns the larger of two cycles.
func Max(a, b Cycle) Cycle {
	if a > b {
		return a
	}

	return b
}

// Min returns the smaller of two cycles.
func Min(a, b Cycle) Cycle {
	if a < b {
		return a
	}

	return b
}
