package node

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ppriyankuu/causalkv/internal/auditlog"
	"github.com/ppriyankuu/causalkv/internal/metrics"
	"github.com/ppriyankuu/causalkv/internal/replication"
)

// newTestNode builds a Node wired for direct, in-process driving: no real
// HTTP, no artificial sleeps. The buffer watcher still runs on a short
// interval so sweep behavior is exercised; tests that need a sweep to
// have happened call waitForSweep, which sleeps for three sweep intervals.
func newTestNode(t *testing.T, id string, peers []string) *Node {
	t.Helper()
	audit, err := auditlog.Open("")
	require.NoError(t, err)

	n := New(Config{
		SelfID:             id,
		Peers:              peers,
		SweepInterval:      10 * time.Millisecond,
		ReplicationTimeout: time.Second,
	}, zap.NewNop(), metrics.New(id), audit)

	t.Cleanup(n.Stop)
	return n
}

// waitForSweep gives the background buffer watcher a couple of its own
// intervals to run at least once.
func waitForSweep() {
	time.Sleep(30 * time.Millisecond)
}

func TestLocalWriteRejectsEmptyKey(t *testing.T) {
	n := newTestNode(t, "a", []string{"a", "b"})
	_, err := n.LocalWrite("", "v", nil)
	assert.ErrorIs(t, err, ErrBadInput)
}

func TestLocalWriteTicksOwnClockEntry(t *testing.T) {
	n := newTestNode(t, "a", []string{"a", "b"})

	res, err := n.LocalWrite("x", 1, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), res.Timestamp["a"])
	assert.Equal(t, uint64(0), res.Timestamp["b"])

	value, _ := n.Read("x")
	assert.Equal(t, 1, value)
}

func TestLocalWriteIsMonotonic(t *testing.T) {
	n := newTestNode(t, "a", []string{"a", "b"})

	first, err := n.LocalWrite("x", 1, nil)
	require.NoError(t, err)
	second, err := n.LocalWrite("x", 2, nil)
	require.NoError(t, err)

	assert.Less(t, first.Timestamp["a"], second.Timestamp["a"])
}

// TestRemoteReceiveInOrderAppliesImmediately mirrors spec.md §8 S1: a
// message whose sender entry is exactly current+1 and whose other entries
// are already satisfied is deliverable on first receipt.
func TestRemoteReceiveInOrderAppliesImmediately(t *testing.T) {
	n := newTestNode(t, "a", []string{"a", "b"})

	msg := replication.NewMessage("k", "v", "b", map[string]uint64{"a": 0, "b": 1})
	n.RemoteReceive(msg)

	value, clk := n.Read("k")
	assert.Equal(t, "v", value)
	assert.Equal(t, uint64(1), clk["b"])
	assert.Equal(t, 0, n.BufferDepth())
}

// TestRemoteReceiveOutOfOrderBuffersThenApplies mirrors spec.md §8 S2: a
// message that skips ahead of its sender's expected sequence is buffered,
// and becomes deliverable only once the prerequisite has arrived and a
// sweep re-evaluates it.
func TestRemoteReceiveOutOfOrderBuffersThenApplies(t *testing.T) {
	n := newTestNode(t, "a", []string{"a", "b"})

	ahead := replication.NewMessage("k2", "second", "b", map[string]uint64{"a": 0, "b": 2})
	n.RemoteReceive(ahead)
	assert.Equal(t, 1, n.BufferDepth())

	value, _ := n.Read("k2")
	assert.Nil(t, value, "message out of order must not be applied yet")

	prerequisite := replication.NewMessage("k1", "first", "b", map[string]uint64{"a": 0, "b": 1})
	n.RemoteReceive(prerequisite)

	waitForSweep()

	value, clk := n.Read("k2")
	assert.Equal(t, "second", value)
	assert.Equal(t, uint64(2), clk["b"])
	assert.Equal(t, 0, n.BufferDepth())
}

// TestDuplicateReplicaIsIgnoredOnReapply mirrors spec.md §8 S3: replaying
// a message whose sender entry the node has already advanced past must
// not move the clock backward or re-buffer.
func TestDuplicateReplicaIsIgnoredOnReapply(t *testing.T) {
	n := newTestNode(t, "a", []string{"a", "b"})

	msg := replication.NewMessage("k", "v", "b", map[string]uint64{"a": 0, "b": 1})
	n.RemoteReceive(msg)
	_, firstClock := n.Read("k")

	n.RemoteReceive(msg)
	_, secondClock := n.Read("k")

	assert.Equal(t, firstClock["b"], secondClock["b"])
	assert.Equal(t, 0, n.BufferDepth(), "stale duplicate must be dropped, not buffered")
}

// TestConcurrentWritesDoNotBlockEachOther mirrors spec.md §8 S4: writes at
// two different nodes that depend on nothing from each other both apply
// without one waiting on the other.
func TestConcurrentWritesDoNotBlockEachOther(t *testing.T) {
	a := newTestNode(t, "a", []string{"a", "b"})
	b := newTestNode(t, "b", []string{"a", "b"})

	resA, err := a.LocalWrite("x", "from-a", nil)
	require.NoError(t, err)
	resB, err := b.LocalWrite("y", "from-b", nil)
	require.NoError(t, err)

	a.RemoteReceive(replication.NewMessage("y", "from-b", "b", resB.Timestamp))
	b.RemoteReceive(replication.NewMessage("x", "from-a", "a", resA.Timestamp))

	valueOnA, _ := a.Read("y")
	valueOnB, _ := b.Read("x")
	assert.Equal(t, "from-b", valueOnA)
	assert.Equal(t, "from-a", valueOnB)
}

// TestMissingDependencyNeverDelivered mirrors spec.md §8 S5: if the
// prerequisite message never arrives, the dependent message stays
// buffered indefinitely rather than being applied out of causal order.
func TestMissingDependencyNeverDelivered(t *testing.T) {
	n := newTestNode(t, "a", []string{"a", "b"})

	ahead := replication.NewMessage("k", "v", "b", map[string]uint64{"a": 0, "b": 2})
	n.RemoteReceive(ahead)

	waitForSweep()
	waitForSweep()

	value, _ := n.Read("k")
	assert.Nil(t, value)
	assert.Equal(t, 1, n.BufferDepth())
}

func TestReadOfAbsentKeyReturnsNilWithCurrentClock(t *testing.T) {
	n := newTestNode(t, "a", []string{"a", "b", "c"})
	value, clk := n.Read("missing")
	assert.Nil(t, value)
	assert.Equal(t, uint64(0), clk["a"])
	assert.Equal(t, uint64(0), clk["b"])
	assert.Equal(t, uint64(0), clk["c"])
}
