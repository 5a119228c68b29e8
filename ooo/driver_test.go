package ooo_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sarchlab/cachesim/component"
	"github.com/sarchlab/cachesim/ooo"
	"github.com/sarchlab/cachesim/request"
	"github.com/sarchlab/cachesim/simulator"
	"github.com/sarchlab/cachesim/trace"
)

// relay is a single-cycle pass-through stage standing in for a cache
// level not under test here.
type relay struct {
	component.Base
}

func newRelay(name string, router component.Router) *relay {
	r := &relay{}
	r.Base.Init(name, router, r)
	return r
}

func (r *relay) ProcessRequest(_ *request.Request) int { return 1 }
func (r *relay) ProcessReturn(_ *request.Request) int  { return 1 }

func TestCoreRetiresEveryReferenceFromABoundedSyntheticStream(t *testing.T) {
	sim := simulator.New(1)
	stage := newRelay("l1", sim)
	sim.Register(stage)
	sim.AppendToPipeline(0, "l1")

	src := trace.NewSyntheticGenerator(0, trace.SyntheticConfig{
		Pattern:    trace.PatternSequential,
		Count:      20,
		BlockBytes: 64,
	})

	core := ooo.NewCore(0, sim, src, 4)

	for i := 0; i < 1000 && !core.Done(); i++ {
		core.Step()

		if !sim.AutoAdvance() {
			break
		}
	}

	require.True(t, core.Done())
	require.Equal(t, uint64(20), core.Retired())
}

func TestCoreNeverExceedsItsWindow(t *testing.T) {
	sim := simulator.New(1)
	stage := newRelay("l1", sim)
	sim.Register(stage)
	sim.AppendToPipeline(0, "l1")

	src := trace.NewSyntheticGenerator(0, trace.SyntheticConfig{
		Pattern:    trace.PatternSequential,
		Count:      50,
		BlockBytes: 64,
	})

	core := ooo.NewCore(0, sim, src, 3)

	for i := 0; i < 5; i++ {
		core.Step()
		require.LessOrEqual(t, core.InFlightCount(), 3)
	}
}
