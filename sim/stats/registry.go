// Package stats implements the insertion-ordered counter registry called
// for in spec section 9 ("Macro-heavy statistics"): the original simulator
// registers a counter once per component with NEW_COUNTER/INCREMENT/
// DUMP_STATISTICS macros. Registry reproduces that contract as an ordinary
// Go type: Register returns a stable Handle, Inc/Add mutate by handle, and
// Dump walks counters in registration order so textual statistics output
// stays stable across runs.
package stats

import (
	"fmt"
	"io"
)

// Handle identifies a registered counter.
type Handle int

// Registry is a per-component collection of named counters.
type Registry struct {
	names  []string
	long   []string
	values []uint64
	index  map[string]Handle
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]Handle)}
}

// Register creates a new counter and returns its Handle. longName is the
// human-readable description used in the dump; name is the short key. It
// panics if name was already registered, since that always indicates a
// programming error in a component's constructor.
func (r *Registry) Register(name, longName string) Handle {
	if _, ok := r.index[name]; ok {
		panic(fmt.Sprintf("counter %q already registered", name))
	}

	h := Handle(len(r.names))
	r.names = append(r.names, name)
	r.long = append(r.long, longName)
	r.values = append(r.values, 0)
	r.index[name] = h

	return h
}

// Inc increments the counter by 1.
func (r *Registry) Inc(h Handle) {
	r.values[h]++
}

// Add increments the counter by delta.
func (r *Registry) Add(h Handle, delta uint64) {
	r.values[h] += delta
}

// Value returns the current value of the counter.
func (r *Registry) Value(h Handle) uint64 {
	return r.values[h]
}

// Handle looks up a previously registered counter's handle by name.
func (r *Registry) Handle(name string) (Handle, bool) {
	h, ok := r.index[name]
	return h, ok
}

// Reset zeroes every counter without forgetting registrations.
func (r *Registry) Reset() {
	for i := range r.values {
		r.values[i] = 0
	}
}

// Dump writes every counter, in registration order, as "longName: value".
func (r *Registry) Dump(w io.Writer) error {
	for i := range r.names {
		_, err := fmt.Fprintf(w, "%s: %d\n", r.long[i], r.values[i])
		if err != nil {
			return err
		}
	}

	return nil
}

// Snapshot returns a name->value map for the registry's current state,
// consumed by the live-stats HTTP endpoint and the sqlite run archive.
func (r *Registry) Snapshot() map[string]uint64 {
	snap := make(map[string]uint64, len(r.names))
	for i, name := range r.names {
		snap[name] = r.values[i]
	}

	return snap
}

// Names returns the registered short names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)

	return out
}
