package trace

import (
	"github.com/sarchlab/cachesim/request"
)

// SyntheticPattern selects the synthetic generator's address stream shape.
type SyntheticPattern int

const (
	PatternSequential SyntheticPattern = iota
	PatternStrided
	PatternRandom
)

// SyntheticConfig configures a SyntheticGenerator (the `--synthetic
// W --mem-gap G` driver flags, spec section 6).
type SyntheticConfig struct {
	Pattern    SyntheticPattern
	Count      uint64 // number of references to produce, 0 = unbounded
	StartAddr  uint64
	Gap        uint64 // stride between references (mem-gap)
	BlockBytes uint32
	WriteEvery int // every Nth reference is a write; 0 disables writes
	Seed       uint64
}

// SyntheticGenerator produces a deterministic address stream matching one
// of three shapes (sequential, strided, or a linear-congruential
// pseudo-random walk) without reading a trace file at all, standing in
// for a trace file wherever the driver only needs "a sequence of
// MemoryReference values, and a completion callback" (spec's own framing
// of what the front-end interface actually requires).
type SyntheticGenerator struct {
	cfg     SyntheticConfig
	cpuID   int
	issued  uint64
	addr    uint64
	rngSeed uint64
}

// NewSyntheticGenerator builds a generator for cpuID.
func NewSyntheticGenerator(cpuID int, cfg SyntheticConfig) *SyntheticGenerator {
	if cfg.Gap == 0 {
		cfg.Gap = uint64(cfg.BlockBytes)
	}

	return &SyntheticGenerator{
		cfg:     cfg,
		cpuID:   cpuID,
		addr:    cfg.StartAddr,
		rngSeed: cfg.Seed,
	}
}

// Next produces the next synthetic reference.
func (g *SyntheticGenerator) Next() (request.Reference, bool) {
	if g.cfg.Count != 0 && g.issued >= g.cfg.Count {
		return request.Reference{}, false
	}

	var addr uint64

	switch g.cfg.Pattern {
	case PatternSequential:
		addr = g.cfg.StartAddr + g.issued*uint64(g.cfg.BlockBytes)
	case PatternStrided:
		addr = g.cfg.StartAddr + g.issued*g.cfg.Gap
	case PatternRandom:
		addr = g.nextPseudoRandom()
	}

	kind := request.KindRead
	if g.cfg.WriteEvery > 0 && int(g.issued+1)%g.cfg.WriteEvery == 0 {
		kind = request.KindWrite
	}

	ref := request.Reference{
		ICount: g.issued,
		IP:     request.NormalizeTraceAddress(addr, g.cpuID, false),
		VAddr:  request.NormalizeTraceAddress(addr, g.cpuID, false),
		PAddr:  request.NormalizeTraceAddress(addr, g.cpuID, true),
		Size:   g.cfg.BlockBytes,
		Kind:   kind,
	}

	g.issued++

	return ref, true
}

// nextPseudoRandom advances a 64-bit linear congruential generator (the
// constants Numerical Recipes attributes to Knuth) and folds the result
// onto a block-aligned window starting at StartAddr, keeping the stream
// reproducible across runs for a given Seed.
func (g *SyntheticGenerator) nextPseudoRandom() uint64 {
	g.rngSeed = g.rngSeed*6364136223846793005 + 1442695040888963407

	window := g.cfg.Gap
	if window == 0 {
		window = 1 << 20
	}

	offset := (g.rngSeed >> 16) % window

	return g.cfg.StartAddr + (offset &^ (uint64(g.cfg.BlockBytes) - 1))
}

// Close is a no-op; SyntheticGenerator owns no external resource.
func (g *SyntheticGenerator) Close() error { return nil }
