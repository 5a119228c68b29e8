package simulator_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/component"
	"github.com/sarchlab/cachesim/request"
	"github.com/sarchlab/cachesim/simulator"
)

// relay is a single-cycle pass-through stage, standing in for a cache or
// prefetcher stage that isn't under test here.
type relay struct {
	component.Base
	starts, ends int
}

func newRelay(name string, router component.Router) *relay {
	r := &relay{}
	r.Base.Init(name, router, r)
	return r
}

func (r *relay) ProcessRequest(_ *request.Request) int { return 1 }
func (r *relay) ProcessReturn(_ *request.Request) int  { return 1 }
func (r *relay) StartSimulation()                      { r.starts++ }
func (r *relay) EndSimulation()                        { r.ends++ }

var _ = Describe("Simulator", func() {
	It("routes a request through a two-stage per-core pipeline to completion", func() {
		sim := simulator.New(1)

		l1 := newRelay("l1", sim)
		llc := newRelay("llc", sim)
		sim.Register(l1)
		sim.Register(llc)
		sim.AppendToPipeline(0, "l1")
		sim.AppendToPipeline(0, "llc")

		req := request.NewBuilder(0).WithType(request.Read).WithAddresses(0, 0x4000, 0x4000).Build()
		sim.IssueRequest(req)

		for i := 0; i < 10 && !req.Finished; i++ {
			if !sim.AutoAdvance() {
				break
			}
		}

		Expect(req.Finished).To(BeTrue())
	})

	It("broadcasts lifecycle hooks to every registered component", func() {
		sim := simulator.New(1)

		l1 := newRelay("l1", sim)
		sim.Register(l1)
		sim.AppendToPipeline(0, "l1")

		sim.StartSimulation()
		sim.EndSimulation()

		Expect(l1.starts).To(Equal(1))
		Expect(l1.ends).To(Equal(1))
	})

	It("returns false from AutoAdvance once every component is idle", func() {
		sim := simulator.New(1)

		l1 := newRelay("l1", sim)
		sim.Register(l1)
		sim.AppendToPipeline(0, "l1")

		Expect(sim.AutoAdvance()).To(BeFalse())
	})
})
