// Package clock implements the node-global vector clock used to order
// causally-dependent writes across the cluster.
//
// Unlike a per-key version vector (one clock per stored value, used to
// detect conflicting writes to the same key), this is a single clock per
// node: one counter per peer, advanced only by that peer's own
// locally-originated writes. It exists to drive the delivery predicate in
// internal/replication, not to resolve conflicts — this store adopts
// last-writer-wins by arrival instead (see internal/store).
package clock

import "maps"

// VectorClock maps peer id to a monotonically non-decreasing counter.
//
// Every peer configured for the cluster must be present as a key, even if
// its counter is still zero — callers construct clocks with New, which
// seeds every peer, rather than relying on Go's zero-value-for-missing-key
// semantics (the delivery predicate compares ALL peers, including ones
// that have never sent anything).
type VectorClock map[string]uint64

// New returns a clock with an entry for every given peer, all starting at
// zero.
func New(peers []string) VectorClock {
	vc := make(VectorClock, len(peers))
	for _, p := range peers {
		vc[p] = 0
	}
	return vc
}

// Tick increments the counter for nodeID in place. Callers must only ever
// call this with their own node id — ticking on behalf of another peer (or
// on remote apply) breaks the delivery predicate at downstream nodes (see
// spec §4.4).
func (vc VectorClock) Tick(nodeID string) {
	vc[nodeID]++
}

// Merge sets, for every peer in other, vc[p] = max(vc[p], other[p]).
// Merge never advances the local entry by itself — ticking is a separate,
// explicit act. Merge is monotone and idempotent: merging the same clock
// twice is a no-op the second time.
func (vc VectorClock) Merge(other VectorClock) {
	for peer, count := range other {
		if count > vc[peer] {
			vc[peer] = count
		}
	}
}

// Copy returns an independent copy of vc. Vector clocks are maps, which are
// reference types in Go — every snapshot handed to a caller (an HTTP
// response, a replica message) must be a Copy, never the live clock.
func (vc VectorClock) Copy() VectorClock {
	c := make(VectorClock, len(vc))
	maps.Copy(c, vc)
	return c
}

// Relation describes how two clocks order with respect to each other.
// Not used by the delivery predicate (which has its own, narrower
// arithmetic — see internal/replication.Deliverable) but kept for
// diagnostics: the node logs a metric when it observes two concurrent
// writes to the same key, even though no conflict resolution follows from
// that observation.
type Relation int

const (
	Equal Relation = iota
	Before
	After
	Concurrent
)

// Compare reports how vc relates to other.
func (vc VectorClock) Compare(other VectorClock) Relation {
	vcGreater := false
	otherGreater := false

	seen := make(map[string]bool, len(vc)+len(other))
	for peer, count := range vc {
		seen[peer] = true
		if count > other[peer] {
			vcGreater = true
		} else if count < other[peer] {
			otherGreater = true
		}
	}
	for peer, count := range other {
		if seen[peer] {
			continue
		}
		if count > 0 {
			otherGreater = true
		}
	}

	switch {
	case !vcGreater && !otherGreater:
		return Equal
	case vcGreater && !otherGreater:
		return After
	case !vcGreater && otherGreater:
		return Before
	default:
		return Concurrent
	}
}
