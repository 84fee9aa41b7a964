// Package engine implements the matching engine: it owns the submission
// queue and all per-instrument books, and runs one worker that matches
// submissions and pushes the resulting events onto an outbound ring.
package engine

import (
	"sync"

	"go.uber.org/zap"

	"github.com/mkrzyzan/exengine/internal/book"
	"github.com/mkrzyzan/exengine/internal/event"
	"github.com/mkrzyzan/exengine/internal/mpmc"
	"github.com/mkrzyzan/exengine/internal/ring"
	"github.com/mkrzyzan/exengine/internal/worker"
)

// Engine consumes submissions from its MPMC queue, matches them against the
// relevant instrument's book, and pushes the resulting Events onto an
// engine-owned SPSC ring. Only the worker goroutine ever touches a Book, so
// matching needs no per-book locking.
type Engine struct {
	submissions *mpmc.Queue[event.InputOrder]
	out         *ring.Producer[event.Event]
	logger      *zap.SugaredLogger
	wrk         *worker.Worker

	mu     sync.Mutex // guards books; PlaceOrder runs on the worker, or directly from tests on an unstarted Engine
	books  map[event.Instrument]book.Matcher
	priced map[event.Instrument]bool

	forcePushWarned sync.Once
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithLogger overrides the default no-op logger.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithPricedInstruments marks instruments that should be matched with the
// price-indexed book instead of the base single-side book. This is a
// construction-time choice, not a runtime toggle: an instrument's book
// variant is decided once, the first time an order for it is matched.
func WithPricedInstruments(instruments ...event.Instrument) Option {
	return func(e *Engine) {
		for _, i := range instruments {
			e.priced[i] = true
		}
	}
}

// New returns an Engine that will push events onto out once started.
func New(out *ring.Producer[event.Event], opts ...Option) *Engine {
	e := &Engine{
		submissions: mpmc.New[event.InputOrder](),
		out:         out,
		logger:      zap.NewNop().Sugar(),
		books:       make(map[event.Instrument]book.Matcher),
		priced:      make(map[event.Instrument]bool),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.wrk = worker.New(e.run)
	return e
}

// Submit enqueues an order for matching and returns immediately; the caller
// never waits on the matching loop.
func (e *Engine) Submit(o event.InputOrder) {
	e.submissions.Push(o)
}

// Start starts the matching worker.
func (e *Engine) Start() {
	e.wrk.Start()
}

// Stop stops the MPMC (unblocking a pending Pop) and joins the worker.
func (e *Engine) Stop() {
	e.wrk.Stop(e.submissions.Stop)
}

func (e *Engine) run(stopped func() bool) {
	for {
		o, ok := e.submissions.Pop()
		if !ok {
			return
		}
		e.PlaceOrder(o)
	}
}

// PlaceOrder runs synchronous matching for a single submission. Invoked by
// the worker in normal operation; tests may call it directly on a stopped
// Engine. Invalid submissions (qty == 0 or side == None) are silently
// ignored, since a trusted in-process caller should never send one and
// there is no response channel to report a rejection through.
func (e *Engine) PlaceOrder(o event.InputOrder) {
	if !o.Valid() {
		return
	}

	e.mu.Lock()
	b, ok := e.books[o.Instrument]
	if !ok {
		if e.priced[o.Instrument] {
			b = book.NewPriced(o.Instrument)
		} else {
			b = book.New(o.Instrument)
		}
		e.books[o.Instrument] = b
	}
	e.mu.Unlock()

	events := b.MatchOrder(o)
	e.emit(events)
}

// emit pushes events onto the engine→notifier ring in order, falling back
// to a spin-yield ForcePush when the ring is momentarily full rather than
// ever dropping an event.
func (e *Engine) emit(events []event.Event) {
	for _, ev := range events {
		if e.out.TryPush(ev) {
			continue
		}
		e.forcePushWarned.Do(func() {
			e.logger.Warnw("engine: output ring full, falling back to forced push", "instrument", ev.Instrument)
		})
		e.out.ForcePush(ev)
	}
}
