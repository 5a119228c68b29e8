// Package request defines the universal in-flight message type threaded
// through every pipeline stage (spec section 3, "Memory Request") and the
// immutable trace record it originates from ("Memory Reference").
package request

// Kind is a reference's read/write direction, as carried by the trace.
type Kind int

const (
	KindRead Kind = iota
	KindWrite
)

// Reference is an immutable record of one traced memory access, produced
// by a trace reader, the synthetic generator, or the out-of-order driver.
type Reference struct {
	ICount uint64
	IP     uint64
	VAddr  uint64
	PAddr  uint64
	Size   uint32
	Kind   Kind
}
