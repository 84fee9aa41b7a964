package notifier

import (
	"testing"
	"time"

	"github.com/mkrzyzan/exengine/internal/event"
	"github.com/mkrzyzan/exengine/internal/ring"
)

func drain(t *testing.T, c *ring.Consumer[event.Event], n int) []event.Event {
	t.Helper()
	events := make([]event.Event, 0, n)
	deadline := time.Now().Add(2 * time.Second)
	for len(events) < n {
		if v, ok := c.TryPop(); ok {
			events = append(events, v)
			continue
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d events, got %d", n, len(events))
		}
	}
	return events
}

func TestRoutesExecAndPlacedToRegisteredClient(t *testing.T) {
	inP, inC := ring.New[event.Event](16)
	clientP, clientC := ring.New[event.Event](16)

	n := New(inC)
	n.RegisterClient(7, clientP)
	n.Start()
	defer n.Stop()

	inP.TryPush(event.Event{Kind: event.OrderPlaced, Instrument: 'A', Trader: 7, Qty: 10, Side: event.Buy})
	inP.TryPush(event.Event{Kind: event.Exec, Instrument: 'A', Trader: 7, Qty: 10, Side: event.Buy})

	got := drain(t, clientC, 2)
	if got[0].Kind != event.OrderPlaced || got[1].Kind != event.Exec {
		t.Fatalf("unexpected routed events: %+v", got)
	}
}

func TestTickDiscardedByDefault(t *testing.T) {
	inP, inC := ring.New[event.Event](16)
	clientP, clientC := ring.New[event.Event](16)

	n := New(inC)
	n.RegisterClient(1, clientP)
	n.Start()
	defer n.Stop()

	inP.TryPush(event.Event{Kind: event.Tick, Instrument: 'A', Qty: 5, Side: event.Buy})
	inP.TryPush(event.Event{Kind: event.OrderPlaced, Instrument: 'A', Trader: 1, Qty: 5, Side: event.Buy})

	got := drain(t, clientC, 1)
	if got[0].Kind != event.OrderPlaced {
		t.Fatalf("Tick must never reach a client ring: %+v", got)
	}
}

func TestTickForwardedWhenMarketDataConfigured(t *testing.T) {
	inP, inC := ring.New[event.Event](16)
	md := make(chan event.Event, 4)

	n := New(inC, WithMarketData(md))
	n.Start()
	defer n.Stop()

	inP.TryPush(event.Event{Kind: event.Tick, Instrument: 'A', Qty: 5, Side: event.Buy})

	select {
	case ev := <-md:
		if ev.Kind != event.Tick {
			t.Fatalf("expected a Tick on the market-data channel, got %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for Tick fan-out")
	}
}

func TestUnregisteredTraderPanics(t *testing.T) {
	// Exercise dispatch directly (rather than through Start/Stop) so the
	// panic surfaces on the test goroutine, where recover can observe it.
	_, inC := ring.New[event.Event](16)
	n := New(inC)

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected a panic for an unregistered trader")
		}
	}()
	n.dispatch(event.Event{Kind: event.Exec, Instrument: 'A', Trader: 99, Qty: 1, Side: event.Buy})
}
