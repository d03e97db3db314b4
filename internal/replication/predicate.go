package replication

import "github.com/ppriyankuu/causalkv/internal/clock"

// Deliverable implements the causal-broadcast delivery rule of spec.md
// §4.3: a message m with timestamp T from sender s may be applied against
// the receiver's current clock V iff
//
//  1. T[s] == V[s] + 1 — m is exactly the next update expected from s, and
//  2. for every other peer p, T[p] <= V[p] — every other causal dependency
//     m's sender had observed has already been seen here too.
//
// Equality in (2) is fine: the dependency was met exactly. Strict
// inequality T[p] > V[p] means the receiver is missing something m depends
// on, and m must wait.
func Deliverable(timestamp clock.VectorClock, sender string, current clock.VectorClock) bool {
	if timestamp[sender] != current[sender]+1 {
		return false
	}
	for peer, t := range timestamp {
		if peer == sender {
			continue
		}
		if t > current[peer] {
			return false
		}
	}
	return true
}
