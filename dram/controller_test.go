package dram_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/component"
	"github.com/sarchlab/cachesim/dram"
	"github.com/sarchlab/cachesim/request"
)

type fakeRouter struct {
	stages []component.Component
}

func (f *fakeRouter) ComponentAt(_, cmpID int) component.Component { return f.stages[cmpID] }
func (f *fakeRouter) PipelineLength(_ int) int                     { return len(f.stages) }

func newSoloController() (*fakeRouter, *dram.Controller) {
	router := &fakeRouter{}

	ctrl := dram.New("dram0", router, dram.Config{
		Geometry: dram.Geometry{
			BlockBytes:     64,
			NumChannels:    1,
			NumRanks:       1,
			NumBanks:       4,
			RowBufferBytes: 2048,
			ColumnBits:     12,
		},
		Timing:             dram.DefaultTiming(),
		MemProcessorRatio:  1,
		WriteQueueCapacity: 4,
	})
	router.stages = []component.Component{ctrl}

	return router, ctrl
}

var _ = Describe("Controller", func() {
	It("services a single read to completion", func() {
		_, ctrl := newSoloController()

		req := request.NewBuilder(0).
			WithType(request.Read).
			WithAddresses(0, 0x1000, 0x1000).
			WithCurrentCycle(0).
			Build()

		ctrl.AddRequest(req)
		ctrl.AdvanceTo(500)

		Expect(req.Finished).To(BeTrue())
		Expect(req.Stalling).To(BeFalse())
	})

	It("services reads to different rows of the same bank via activate+precharge", func() {
		_, ctrl := newSoloController()

		reqA := request.NewBuilder(0).WithType(request.Read).WithAddresses(0, 0, 0).WithCurrentCycle(0).Build()
		reqB := request.NewBuilder(0).WithType(request.Read).WithAddresses(0, 0, 1<<24).WithCurrentCycle(0).Build()

		ctrl.AddRequest(reqA)
		ctrl.AddRequest(reqB)
		ctrl.AdvanceTo(1000)

		Expect(reqA.Finished).To(BeTrue())
		Expect(reqB.Finished).To(BeTrue())
	})

	It("drains a full write queue before serving reads (drain-when-full)", func() {
		_, ctrl := newSoloController()

		for i := 0; i < 5; i++ {
			wb := request.NewBuilder(0).
				WithType(request.Writeback).
				WithAddresses(0, 0, uint64(i)<<16).
				WithCurrentCycle(0).
				Build()
			ctrl.AddRequest(wb)
		}

		ctrl.AdvanceTo(2000)

		ch := ctrl.Channel(0)
		Expect(ch.ReadToWriteSwitches).To(BeNumerically(">=", uint64(1)))
	})

	It("panics on a direct Write request", func() {
		_, ctrl := newSoloController()

		req := request.NewBuilder(0).WithType(request.Write).WithAddresses(0, 0, 0).WithCurrentCycle(0).Build()

		Expect(func() { ctrl.AddRequest(req) }).To(Panic())
	})
})
