// Package ring implements a bounded single-producer/single-consumer ring
// buffer: two monotonic counters, slot index by mask, no allocation on the
// hot path. The producer and consumer sides are split into distinct typed
// handles so that single-writer/single-reader is enforced by the type
// system instead of relying on callers to honor a convention.
package ring

import (
	"runtime"
	"sync/atomic"
)

// Ring is the shared backing store. Capacity must be a power of two so slot
// indexing can use a mask instead of a modulo, mirroring the teacher's
// RingBufferSemaphoreBatchSafe (lightning-exchange/matching) and femto_go's
// RingBuffer[T].
type Ring[T any] struct {
	buf  []T
	mask uint64

	// head is advanced by the producer, tail by the consumer. Both are
	// monotonically increasing; the slot index is counter&mask.
	head atomic.Uint64
	tail atomic.Uint64
}

// New allocates a ring of the given capacity and returns split
// producer/consumer handles. Panics if capacity is not a power of two.
func New[T any](capacity int) (*Producer[T], *Consumer[T]) {
	if capacity <= 0 || capacity&(capacity-1) != 0 {
		panic("ring: capacity must be a power of two")
	}
	r := &Ring[T]{
		buf:  make([]T, capacity),
		mask: uint64(capacity - 1),
	}
	return &Producer[T]{r: r}, &Consumer[T]{r: r}
}

// Producer is the single-writer half of a Ring.
type Producer[T any] struct {
	r *Ring[T]
}

// Consumer is the single-reader half of a Ring.
type Consumer[T any] struct {
	r *Ring[T]
}

// Cap returns the ring's fixed capacity.
func (p *Producer[T]) Cap() int { return len(p.r.buf) }

// TryPush appends v and reports success. It fails when the ring is full
// (head-tail == capacity).
func (p *Producer[T]) TryPush(v T) bool {
	r := p.r
	head := r.head.Load()
	tail := r.tail.Load() // acquire: must see consumer's latest progress
	if head-tail == uint64(len(r.buf)) {
		return false
	}
	r.buf[head&r.mask] = v
	r.head.Store(head + 1) // release: publish the slot write
	return true
}

// ForcePush spin-yields until the push succeeds. Used by callers that must
// never drop an event and would rather backpressure than lose one.
func (p *Producer[T]) ForcePush(v T) {
	for !p.TryPush(v) {
		runtime.Gosched()
	}
}

// Cap returns the ring's fixed capacity.
func (c *Consumer[T]) Cap() int { return len(c.r.buf) }

// TryPop removes and returns the oldest element. It fails when the ring is
// empty (head == tail).
func (c *Consumer[T]) TryPop() (T, bool) {
	r := c.r
	var zero T
	tail := r.tail.Load()
	head := r.head.Load() // acquire: must see producer's latest write
	if head == tail {
		return zero, false
	}
	v := r.buf[tail&r.mask]
	r.tail.Store(tail + 1) // release: free the slot
	return v, true
}
