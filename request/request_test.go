package request_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sarchlab/cachesim/request"
	"github.com/sarchlab/cachesim/sim"
)

type fakeComponent struct {
	sim.NamedBase
}

func TestBuilderProducesDistinctSequenceNumbers(t *testing.T) {
	a := request.NewBuilder(0).WithType(request.Read).Build()
	b := request.NewBuilder(0).WithType(request.Read).Build()

	require.NotEqual(t, a.Seq(), b.Seq())
}

func TestFromReferenceMapsKindToType(t *testing.T) {
	ref := request.Reference{ICount: 100, VAddr: 0x1000, PAddr: 0x2000, Size: 8, Kind: request.KindWrite}

	r := request.FromReference(3, ref).Build()

	require.Equal(t, request.Write, r.Type)
	require.Equal(t, 3, r.CPUID)
	require.Equal(t, uint64(100), r.ICount)
}

func TestDerivedFromStampsComponentOrigin(t *testing.T) {
	c := &fakeComponent{NamedBase: sim.MakeNamedBase("llc")}

	parent := request.NewBuilder(1).WithAddresses(0, 0x4000, 0x4000).WithCurrentCycle(50).Build()

	wb := request.DerivedFrom(parent, c, request.Writeback).Build()

	require.Equal(t, request.InitiatorComponent, wb.IniType)
	require.Equal(t, c, wb.IniRef)
	require.Equal(t, sim.Cycle(50), wb.CurrentCycle)
	require.Equal(t, request.Writeback, wb.Type)
}

func TestBlockAddrClearsOffsetBits(t *testing.T) {
	require.Equal(t, uint64(0x1000), request.BlockAddr(0x1034, 64))
	require.Equal(t, uint64(0x1000), request.BlockAddr(0x103F, 64))
}

func TestNormalizeTraceAddressSeparatesCores(t *testing.T) {
	a := request.NormalizeTraceAddress(0x100, 0, false)
	b := request.NormalizeTraceAddress(0x100, 1, false)

	require.NotEqual(t, a, b)
}
