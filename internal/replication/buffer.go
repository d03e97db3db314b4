package replication

import "sync"

// Buffer holds replica messages that arrived before their causal
// prerequisites did. Ordering of entries is not semantically significant
// on insertion, but a sweep that drains the buffer and reconsiders each
// entry in turn means an entry that becomes eligible earlier in a pass is
// applied before a later entry of the same pass — see
// internal/node.Node.sweepOnce.
//
// Buffer has its own mutex so it can be unit tested in isolation; the
// running node always accesses it while already holding the node-level
// mutex, so contention here never happens in practice — same posture as
// internal/store.Store.
type Buffer struct {
	mu      sync.Mutex
	entries []Message
}

// NewBuffer returns an empty Buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Append adds msg to the buffer.
func (b *Buffer) Append(msg Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries, msg)
}

// Drain removes and returns every buffered entry, leaving the buffer
// empty. Callers are expected to re-Append whatever remains ineligible
// after reconsidering each entry.
func (b *Buffer) Drain() []Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.entries
	b.entries = nil
	return out
}

// Len reports how many messages are currently buffered.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}
