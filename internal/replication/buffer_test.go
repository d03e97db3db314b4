package replication

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ppriyankuu/causalkv/internal/clock"
)

func TestBufferAppendAndDrain(t *testing.T) {
	b := NewBuffer()
	require.Equal(t, 0, b.Len())

	m1 := NewMessage("x", 1, "n1", clock.VectorClock{"n1": 1})
	m2 := NewMessage("y", 2, "n2", clock.VectorClock{"n2": 1})
	b.Append(m1)
	b.Append(m2)
	require.Equal(t, 2, b.Len())

	drained := b.Drain()
	require.Len(t, drained, 2)
	require.Equal(t, 0, b.Len())
}

func TestBufferDrainIsEmptyWhenNothingBuffered(t *testing.T) {
	b := NewBuffer()
	require.Empty(t, b.Drain())
}
