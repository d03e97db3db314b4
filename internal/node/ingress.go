package node

import (
	"time"

	"go.uber.org/zap"

	"github.com/ppriyankuu/causalkv/internal/auditlog"
	"github.com/ppriyankuu/causalkv/internal/clock"
	"github.com/ppriyankuu/causalkv/internal/replication"
)

// WriteResult is returned by LocalWrite: the vector clock snapshot
// captured at the moment the write was applied.
type WriteResult struct {
	Timestamp clock.VectorClock
}

// LocalWrite accepts a client-initiated write. It merges the optional
// causal context into the clock, stores the value, ticks this node's own
// clock entry, and hands the applied write off to the replicator outside
// the critical section.
//
// key must be non-empty or ErrBadInput is returned. context may be nil,
// meaning the client expressed no causal dependency.
func (n *Node) LocalWrite(key string, value any, context clock.VectorClock) (WriteResult, error) {
	if key == "" {
		return WriteResult{}, ErrBadInput
	}

	n.metrics.LocalWrites.Inc()

	n.mu.Lock()
	if context != nil {
		n.clock.Merge(context)
	}
	n.store.Put(key, value)
	n.clock.Tick(n.cfg.SelfID)
	timestamp := n.clock.Copy()
	n.observeKeyTimestampLocked(key, timestamp)
	n.mu.Unlock()

	n.logger.Info("local write applied",
		zap.String("key", key),
		zap.Any("clock", timestamp),
	)
	n.audit.Record(auditlog.Entry{
		Transition: auditlog.TransitionLocalWrite,
		Key:        key,
		Sender:     n.cfg.SelfID,
	})

	msg := replication.NewMessage(key, value, n.cfg.SelfID, timestamp)
	go n.dispatchToAllPeers(msg)

	return WriteResult{Timestamp: timestamp}, nil
}

// Read returns the current value for key (nil if absent) along with a
// snapshot of the node's clock. Read never blocks on replication.
func (n *Node) Read(key string) (any, clock.VectorClock) {
	n.mu.Lock()
	defer n.mu.Unlock()
	value, _ := n.store.Get(key)
	return value, n.clock.Copy()
}

// RemoteReceive handles an incoming replica message. If the delivery
// predicate permits it, the message is applied immediately (store write +
// clock merge, no local tick). A stale message, whose sender entry this
// node has already reached, is dropped. Otherwise it is parked in the
// buffer for a later sweep to retry. In every case the call succeeds — a
// network ack signals receipt, never delivery (spec.md §4.4).
func (n *Node) RemoteReceive(msg replication.Message) {
	n.metrics.RemoteReceives.Inc()
	n.audit.Record(auditlog.Entry{
		Transition: auditlog.TransitionReceived,
		Key:        msg.Key,
		Sender:     msg.Sender,
		TraceID:    msg.TraceID,
	})

	n.mu.Lock()
	deliverable := replication.Deliverable(msg.Timestamp, msg.Sender, n.clock)
	stale := !deliverable && msg.Timestamp[msg.Sender] <= n.clock[msg.Sender]
	switch {
	case deliverable:
		n.applyLocked(msg)
	case stale:
		// Already observed this or a later update from msg.Sender — a
		// replay or duplicate delivery. Dropped, not buffered: a stale
		// message will never satisfy the predicate no matter how long it
		// waits, since the sender's counter only moves forward.
	default:
		n.buffer.Append(msg)
	}
	depth := n.buffer.Len()
	n.mu.Unlock()

	n.metrics.BufferDepth.Set(float64(depth))

	switch {
	case deliverable:
		n.metrics.AppliedImmediately.Inc()
		n.audit.Record(auditlog.Entry{
			Transition: auditlog.TransitionAppliedNow,
			Key:        msg.Key,
			Sender:     msg.Sender,
			TraceID:    msg.TraceID,
		})
	case stale:
		n.logger.Debug("dropping stale/duplicate replica",
			zap.String("key", msg.Key),
			zap.String("sender", msg.Sender),
			zap.Any("timestamp", msg.Timestamp),
		)
	default:
		n.metrics.Buffered.Inc()
		n.logger.Info("buffering replica, not yet deliverable",
			zap.String("key", msg.Key),
			zap.String("sender", msg.Sender),
			zap.Any("timestamp", msg.Timestamp),
			zap.Any("current_clock", n.ClockSnapshot()),
		)
		n.audit.Record(auditlog.Entry{
			Transition: auditlog.TransitionBuffered,
			Key:        msg.Key,
			Sender:     msg.Sender,
			TraceID:    msg.TraceID,
		})
	}
}

// applyLocked applies msg's write and merges its clock into the node's
// clock. Callers must hold n.mu. It never ticks the local entry — ticking
// on remote apply would break the delivery predicate at downstream peers
// (spec.md §4.4 rationale).
func (n *Node) applyLocked(msg replication.Message) {
	// last-writer-by-arrival: whatever was stored for msg.Key is simply
	// overwritten, no sibling or conflict resolution.
	n.store.Put(msg.Key, msg.Value)
	n.clock.Merge(msg.Timestamp)
	n.observeKeyTimestampLocked(msg.Key, msg.Timestamp)

	n.logger.Debug("applied replica",
		zap.String("key", msg.Key),
		zap.String("sender", msg.Sender),
		zap.Time("at", time.Now()),
	)
}

// observeKeyTimestampLocked compares ts against the last timestamp this
// node applied for key — local or remote — and increments ConcurrentWrites
// when clock.Compare finds them concurrent. It never changes what's
// stored for key: last-writer-by-arrival still wins, unconditionally.
// This is purely the diagnostic hook clock.Compare exists for. Callers
// must hold n.mu.
func (n *Node) observeKeyTimestampLocked(key string, ts clock.VectorClock) {
	if prev, ok := n.keyTimestamps[key]; ok && prev.Compare(ts) == clock.Concurrent {
		n.metrics.ConcurrentWrites.Inc()
		n.logger.Debug("concurrent writes observed for key",
			zap.String("key", key),
			zap.Any("previous", prev),
			zap.Any("current", ts),
		)
	}
	n.keyTimestamps[key] = ts.Copy()
}
