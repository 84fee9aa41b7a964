// Package tradingtool implements the client-side trading abstraction:
// per-client local state built on the same Worker primitive as Engine and
// Notifier, so a client's algo runs on its own goroutine independent of the
// matching loop.
package tradingtool

import (
	"runtime"

	"github.com/mkrzyzan/exengine/internal/event"
	"github.com/mkrzyzan/exengine/internal/ring"
	"github.com/mkrzyzan/exengine/internal/worker"
)

// Submitter is the subset of Exchange a TradingTool needs: the submission
// entry point. Accepting an interface here (rather than *exchange.Exchange)
// keeps tradingtool independent of the exchange package.
type Submitter interface {
	Submit(o event.InputOrder)
}

// InitFunc runs exactly once after the worker starts, before any AlgoFunc
// call, so a client can place its opening orders before reacting to events.
type InitFunc func(t *Tool)

// AlgoFunc runs once per event received on the tool's inbound ring, in
// delivery order, on the tool's own worker thread.
type AlgoFunc func(t *Tool, ev event.Event)

// Tool is a client's local state: its id, a handle to submit orders, the
// consumer half of its inbound ring, and the two user-supplied hooks.
type Tool struct {
	ID   event.TraderID
	sub  Submitter
	in   *ring.Consumer[event.Event]
	init InitFunc
	algo AlgoFunc
	wrk  *worker.Worker
}

// New returns a Tool that will run init once and then algo per inbound
// event, once Start is called. in is this tool's inbound ring consumer;
// the matching Producer half must be registered with the Exchange via
// Exchange.RegisterClient before Start.
func New(id event.TraderID, sub Submitter, in *ring.Consumer[event.Event], init InitFunc, algo AlgoFunc) *Tool {
	t := &Tool{ID: id, sub: sub, in: in, init: init, algo: algo}
	t.wrk = worker.New(t.run)
	return t
}

// Submit enqueues o with the exchange this tool is attached to.
func (t *Tool) Submit(o event.InputOrder) {
	t.sub.Submit(o)
}

// Start starts the tool's worker: init runs first, then the inbound-ring
// drain loop.
func (t *Tool) Start() {
	t.wrk.Start()
}

// Stop stops the worker. The tool has no blocking input to unblock (it
// polls its ring), so unblock is nil.
func (t *Tool) Stop() {
	t.wrk.Stop(nil)
}

func (t *Tool) run(stopped func() bool) {
	if t.init != nil {
		t.init(t)
	}
	for {
		if stopped() {
			return
		}
		ev, ok := t.in.TryPop()
		if !ok {
			runtime.Gosched()
			continue
		}
		if t.algo != nil {
			t.algo(t, ev)
		}
	}
}
