// Package tagstore implements the generic set-associative tag array used by
// every cache variant: a fixed-capacity Table of key/value slots plus a
// pluggable replacement Policy, following the same Visit/FindVictim split as
// a tag-and-victim-finder cache model, generalized from a single hardcoded
// LRU array into a Policy seam that LRU, FIFO, NRU, SRRIP, DRRIP, DIP,
// reuse-counter, generation, and weight-ordered policies all plug into
// without changing Table itself (spec section 3, "Generic Table" /
// "Generic Tag Store").
package tagstore

// PVal is the insertion-priority hint a caller passes to Insert, Read,
// Update, or SilentUpdate. Policies interpret it however their algorithm
// calls for (e.g. DIP treats High as "insert at MRU", Low as "insert at
// LRU"); policies that ignore priority hints are free to do so.
type PVal int

const (
	// Low signals the entry is unlikely to be reused soon.
	Low PVal = iota
	// Bimodal signals no strong prediction either way.
	Bimodal
	// High signals the entry is likely to be reused soon.
	High
)
