package tradingtool

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/mkrzyzan/exengine/internal/event"
	"github.com/mkrzyzan/exengine/internal/ring"
)

type fakeSubmitter struct {
	submitted []event.InputOrder
}

func (f *fakeSubmitter) Submit(o event.InputOrder) {
	f.submitted = append(f.submitted, o)
}

func TestInitRunsOnceBeforeAlgo(t *testing.T) {
	var initCount, algoCount atomic.Int32

	_, inC := ring.New[event.Event](16)
	sub := &fakeSubmitter{}
	tool := New(1, sub, inC,
		func(self *Tool) { initCount.Add(1) },
		func(self *Tool, ev event.Event) { algoCount.Add(1) },
	)

	tool.Start()
	defer tool.Stop()

	time.Sleep(50 * time.Millisecond)
	if initCount.Load() != 1 {
		t.Fatalf("init must run exactly once, ran %d times", initCount.Load())
	}
	if algoCount.Load() != 0 {
		t.Fatalf("algo must not run with an empty ring, ran %d times", algoCount.Load())
	}
}

func TestAlgoRunsPerInboundEventInOrder(t *testing.T) {
	inP, inC := ring.New[event.Event](16)
	sub := &fakeSubmitter{}

	var got []event.Event
	done := make(chan struct{})
	tool := New(2, sub, inC, nil, func(self *Tool, ev event.Event) {
		got = append(got, ev)
		if len(got) == 3 {
			close(done)
		}
	})

	tool.Start()
	defer tool.Stop()

	inP.TryPush(event.Event{Kind: event.OrderPlaced, Trader: 2, Qty: 1})
	inP.TryPush(event.Event{Kind: event.Exec, Trader: 2, Qty: 1})
	inP.TryPush(event.Event{Kind: event.Tick, Qty: 0, Side: event.None})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for algo to process all events")
	}

	if got[0].Kind != event.OrderPlaced || got[1].Kind != event.Exec || got[2].Kind != event.Tick {
		t.Fatalf("events delivered out of order: %+v", got)
	}
}

func TestSubmitForwardsToExchangeHandle(t *testing.T) {
	_, inC := ring.New[event.Event](16)
	sub := &fakeSubmitter{}
	tool := New(3, sub, inC, nil, nil)

	order := event.InputOrder{Instrument: 'A', Trader: 3, Qty: 10, Side: event.Buy}
	tool.Submit(order)

	if len(sub.submitted) != 1 || sub.submitted[0] != order {
		t.Fatalf("expected Submit to forward to the exchange handle, got %+v", sub.submitted)
	}
}
