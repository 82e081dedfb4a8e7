package ca

import (
	"math/rand"
)

// IDAllocator hands out monotonically increasing uint32 identifiers
// starting from a randomized offset, for cid/sid/ioid/subscriptionid pools.
// A randomized start reduces the chance that a reconnecting client reuses
// an identifier still live in a server's stale state. See companion spec
// §9 design note. Not safe for concurrent use; each VirtualCircuit or
// Broadcaster owns its own allocators and is expected to be driven from a
// single goroutine.
type IDAllocator struct {
	next uint32
}

// NewIDAllocator builds an allocator seeded from the package's random
// source. Use NewIDAllocatorFrom for deterministic tests.
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{next: rand.Uint32()}
}

// NewIDAllocatorFrom builds an allocator starting at a caller-chosen value.
func NewIDAllocatorFrom(start uint32) *IDAllocator {
	return &IDAllocator{next: start}
}

// Next returns the next identifier and advances the allocator. The
// sequence wraps silently at 2^32; a single circuit is never expected to
// live long enough to exhaust it.
func (sf *IDAllocator) Next() uint32 {
	id := sf.next
	sf.next++
	return id
}
