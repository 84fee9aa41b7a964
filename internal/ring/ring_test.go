package ring

import (
	"sync"
	"testing"
)

func TestTryPushFailsWhenFull(t *testing.T) {
	p, _ := New[int](4)

	for i := 0; i < 4; i++ {
		if !p.TryPush(i) {
			t.Fatalf("TryPush(%d) should have succeeded, ring not yet full", i)
		}
	}

	if p.TryPush(99) {
		t.Fatalf("TryPush should fail once the ring is full")
	}
}

func TestTryPopFailsWhenEmpty(t *testing.T) {
	_, c := New[int](4)

	if _, ok := c.TryPop(); ok {
		t.Fatalf("TryPop should fail on an empty ring")
	}
}

func TestRoundTripPreservesOrder(t *testing.T) {
	p, c := New[int](8)

	for i := 0; i < 8; i++ {
		if !p.TryPush(i) {
			t.Fatalf("TryPush(%d) unexpectedly failed", i)
		}
	}

	for i := 0; i < 8; i++ {
		v, ok := c.TryPop()
		if !ok {
			t.Fatalf("TryPop() failed at index %d", i)
		}
		if v != i {
			t.Fatalf("TryPop() = %d, want %d", v, i)
		}
	}
}

// TestForcePushFallback follows spec.md's Scenario E on a power-of-two ring:
// capacity 4, push e1..e7 with no intervening pop. The first 4 succeed via
// TryPush; the rest are force-pushed from a second goroutine while the test
// drains, and the final pop order must be e1..e7 with no loss.
func TestForcePushFallback(t *testing.T) {
	const capacity = 4
	const n = 7
	p, c := New[int](capacity)

	for i := 0; i < capacity; i++ {
		if !p.TryPush(i + 1) {
			t.Fatalf("TryPush(%d) should have succeeded within capacity", i+1)
		}
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := capacity; i < n; i++ {
			p.ForcePush(i + 1)
		}
	}()

	got := make([]int, 0, n)
	for len(got) < n {
		v, ok := c.TryPop()
		if !ok {
			continue
		}
		got = append(got, v)
	}
	wg.Wait()

	for i, v := range got {
		if v != i+1 {
			t.Fatalf("pop order broken at index %d: got %d, want %d", i, v, i+1)
		}
	}
}

func TestCapReportsCapacity(t *testing.T) {
	p, c := New[int](16)
	if p.Cap() != 16 {
		t.Fatalf("Producer.Cap() = %d, want 16", p.Cap())
	}
	if c.Cap() != 16 {
		t.Fatalf("Consumer.Cap() = %d, want 16", c.Cap())
	}
}

func TestNewPanicsOnNonPowerOfTwo(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("New(3) should panic: capacity must be a power of two")
		}
	}()
	New[int](3)
}
