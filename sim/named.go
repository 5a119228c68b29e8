// Package sim provides the small set of foundational types shared by every
// component in the memory hierarchy simulator: naming, cycle counting, and
// the hookable-event mechanism used for logging and statistics.
package sim

// Named describes an object that has a name, used for log file naming and
// error messages throughout the simulator.
type Named interface {
	Name() string
}

// NamedBase is a base implementation of Named.
type NamedBase struct {
	name string
}

// MakeNamedBase creates a new NamedBase.
func MakeNamedBase(name string) NamedBase {
	return NamedBase{name: name}
}

// Name returns the name of the object.
func (b *NamedBase) Name() string {
	return b.name
}
