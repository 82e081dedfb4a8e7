package ca

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIDAllocatorIncrementsAndWraps(t *testing.T) {
	alloc := NewIDAllocatorFrom(0xFFFFFFFE)
	require.Equal(t, uint32(0xFFFFFFFE), alloc.Next())
	require.Equal(t, uint32(0xFFFFFFFF), alloc.Next())
	require.Equal(t, uint32(0), alloc.Next()) // wraps silently
}

func TestIDAllocatorUniqueWithinRun(t *testing.T) {
	alloc := NewIDAllocatorFrom(100)
	seen := make(map[uint32]bool)
	for i := 0; i < 1000; i++ {
		id := alloc.Next()
		require.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
}

func TestNewIDAllocatorIsRandomlySeeded(t *testing.T) {
	a := NewIDAllocator()
	b := NewIDAllocator()
	// Not a strict guarantee, but a randomized start should not collide with
	// another freshly-seeded allocator in practice.
	require.NotEqual(t, a.Next(), b.Next())
}
