package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetAbsent(t *testing.T) {
	s := New()
	v, ok := s.Get("missing")
	require.False(t, ok)
	require.Nil(t, v)
}

func TestPutThenGet(t *testing.T) {
	s := New()
	s.Put("x", float64(5))
	v, ok := s.Get("x")
	require.True(t, ok)
	require.Equal(t, float64(5), v)
}

func TestPutOverwrites(t *testing.T) {
	s := New()
	s.Put("x", "first")
	s.Put("x", "second")
	v, _ := s.Get("x")
	require.Equal(t, "second", v)
}

func TestSnapshotIsIndependentCopy(t *testing.T) {
	s := New()
	s.Put("x", 1)
	snap := s.Snapshot()
	s.Put("x", 2)
	require.Equal(t, 1, snap["x"])
}

func TestKeys(t *testing.T) {
	s := New()
	s.Put("a", 1)
	s.Put("b", 2)
	require.ElementsMatch(t, []string{"a", "b"}, s.Keys())
}
