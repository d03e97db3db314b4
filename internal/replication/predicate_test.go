package replication

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ppriyankuu/causalkv/internal/clock"
)

func TestDeliverableNextExpectedFromSender(t *testing.T) {
	current := clock.VectorClock{"n1": 0, "n2": 0, "n3": 0}
	ts := clock.VectorClock{"n1": 1, "n2": 0, "n3": 0}
	require.True(t, Deliverable(ts, "n1", current))
}

func TestNotDeliverableWhenSenderAheadByMoreThanOne(t *testing.T) {
	current := clock.VectorClock{"n1": 0, "n2": 0, "n3": 0}
	ts := clock.VectorClock{"n1": 2, "n2": 0, "n3": 0}
	require.False(t, Deliverable(ts, "n1", current))
}

func TestNotDeliverableWhenSenderIsStale(t *testing.T) {
	current := clock.VectorClock{"n1": 1, "n2": 0, "n3": 0}
	ts := clock.VectorClock{"n1": 1, "n2": 0, "n3": 0}
	require.False(t, Deliverable(ts, "n1", current))
}

func TestNotDeliverableWhenDependencyMissing(t *testing.T) {
	current := clock.VectorClock{"n1": 0, "n2": 0, "n3": 0}
	ts := clock.VectorClock{"n1": 1, "n2": 1, "n3": 0}
	require.False(t, Deliverable(ts, "n1", current))
}

func TestDeliverableWhenDependencyMetExactly(t *testing.T) {
	current := clock.VectorClock{"n1": 0, "n2": 1, "n3": 0}
	ts := clock.VectorClock{"n1": 1, "n2": 1, "n3": 0}
	require.True(t, Deliverable(ts, "n1", current))
}

func TestDuplicateReplicaIsRejectedSecondTime(t *testing.T) {
	current := clock.VectorClock{"n1": 0, "n2": 0, "n3": 0}
	ts := clock.VectorClock{"n1": 1, "n2": 0, "n3": 0}
	require.True(t, Deliverable(ts, "n1", current))

	current.Merge(ts)
	require.False(t, Deliverable(ts, "n1", current))
}

func TestMissingDependencyNeverBecomesDeliverable(t *testing.T) {
	current := clock.VectorClock{"n1": 0, "n2": 0, "n3": 0}
	ts := clock.VectorClock{"n1": 5, "n2": 0, "n3": 0}
	for i := 0; i < 10; i++ {
		require.False(t, Deliverable(ts, "n1", current))
	}
}
