package clock

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSeedsEveryPeer(t *testing.T) {
	vc := New([]string{"node1", "node2", "node3"})
	require.Equal(t, VectorClock{"node1": 0, "node2": 0, "node3": 0}, vc)
}

func TestTickOnlyAdvancesNamedPeer(t *testing.T) {
	vc := New([]string{"node1", "node2"})
	vc.Tick("node1")
	vc.Tick("node1")

	require.EqualValues(t, 2, vc["node1"])
	require.EqualValues(t, 0, vc["node2"])
}

func TestMergeTakesMax(t *testing.T) {
	vc := VectorClock{"node1": 1, "node2": 0}
	other := VectorClock{"node1": 0, "node2": 3}

	vc.Merge(other)

	require.EqualValues(t, 1, vc["node1"])
	require.EqualValues(t, 3, vc["node2"])
}

func TestMergeIsIdempotent(t *testing.T) {
	vc := VectorClock{"node1": 1, "node2": 2}
	other := VectorClock{"node1": 5, "node2": 1}

	vc.Merge(other)
	once := vc.Copy()
	vc.Merge(other)

	require.Equal(t, once, vc)
}

func TestCopyIsIndependent(t *testing.T) {
	vc := VectorClock{"node1": 1}
	cp := vc.Copy()
	cp["node1"] = 99

	require.EqualValues(t, 1, vc["node1"])
	require.EqualValues(t, 99, cp["node1"])
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b VectorClock
		want Relation
	}{
		{"equal", VectorClock{"n1": 1}, VectorClock{"n1": 1}, Equal},
		{"after", VectorClock{"n1": 2}, VectorClock{"n1": 1}, After},
		{"before", VectorClock{"n1": 1}, VectorClock{"n1": 2}, Before},
		{"concurrent", VectorClock{"n1": 2, "n2": 0}, VectorClock{"n1": 0, "n2": 3}, Concurrent},
		{"missing key treated as zero", VectorClock{"n1": 1}, VectorClock{"n1": 1, "n2": 2}, Before},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.a.Compare(tt.b))
		})
	}
}
