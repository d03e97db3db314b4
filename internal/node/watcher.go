package node

import (
	"time"

	"go.uber.org/zap"

	"github.com/ppriyankuu/causalkv/internal/auditlog"
	"github.com/ppriyankuu/causalkv/internal/replication"
)

// runBufferWatcher periodically drains the buffer and re-checks every
// parked message against the current clock. A message that has become
// deliverable is applied; everything else is re-appended for the next
// sweep. This is the only mechanism that ever retries a buffered message
// — there is no per-message timer or exponential backoff (spec.md §4.6).
func (n *Node) runBufferWatcher() {
	defer close(n.watcherDone)

	ticker := time.NewTicker(n.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-n.stopWatcher:
			return
		case <-ticker.C:
			n.sweepOnce()
		}
	}
}

// sweepOnce runs a single drain-and-reconsider pass. The whole pass —
// draining the buffer, re-checking each entry, and re-appending what is
// still not deliverable — runs under n.mu, so the (Clock, Store, Buffer)
// tuple is never seen half-swept; RemoteReceive and LocalWrite wait for
// the pass to finish.
func (n *Node) sweepOnce() {
	start := time.Now()
	defer func() {
		n.metrics.BufferSweepLatency.Observe(time.Since(start).Seconds())
	}()

	n.mu.Lock()
	defer n.mu.Unlock()

	pending := n.buffer.Drain()
	if len(pending) == 0 {
		return
	}

	var applied, stillBuffered, dropped int
	for _, msg := range pending {
		deliverable := replication.Deliverable(msg.Timestamp, msg.Sender, n.clock)
		stale := !deliverable && msg.Timestamp[msg.Sender] <= n.clock[msg.Sender]
		if deliverable {
			n.applyLocked(msg)
		}

		switch {
		case deliverable:
			applied++
			n.metrics.AppliedFromBuffer.Inc()
			n.audit.Record(auditlog.Entry{
				Transition: auditlog.TransitionAppliedSweep,
				Key:        msg.Key,
				Sender:     msg.Sender,
				TraceID:    msg.TraceID,
			})
		case stale:
			// Superseded while parked — some other path already brought
			// the sender's counter past this message. Drop it rather than
			// re-buffering forever.
			dropped++
		default:
			stillBuffered++
			n.buffer.Append(msg)
			n.audit.Record(auditlog.Entry{
				Transition: auditlog.TransitionStillBuffered,
				Key:        msg.Key,
				Sender:     msg.Sender,
				TraceID:    msg.TraceID,
			})
		}
	}

	n.metrics.BufferDepth.Set(float64(n.buffer.Len()))

	if applied > 0 || stillBuffered > 0 || dropped > 0 {
		n.logger.Debug("buffer sweep complete",
			zap.Int("applied", applied),
			zap.Int("still_buffered", stillBuffered),
			zap.Int("dropped_stale", dropped),
		)
	}
}
