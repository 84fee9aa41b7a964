// Package notifier drains the engine's outbound ring and routes
// Exec/OrderPlaced events to the addressee's per-client ring, discarding
// Tick by default (or forwarding it to an optional market-data subscriber).
package notifier

import (
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/mkrzyzan/exengine/internal/event"
	"github.com/mkrzyzan/exengine/internal/ring"
	"github.com/mkrzyzan/exengine/internal/worker"
)

// Notifier owns the engine-to-notifier ring's consumer half and a registry
// mapping trader id to that client's inbound ring. One worker thread.
type Notifier struct {
	in     *ring.Consumer[event.Event]
	logger *zap.SugaredLogger
	wrk    *worker.Worker

	// Populated only before Start, one registration per trader id; reads
	// during Run are intentionally unsynchronized since nothing mutates the
	// map once the worker is running.
	clients map[event.TraderID]*ring.Producer[event.Event]

	// Optional Tick subscriber. Nil by default, which discards Tick
	// entirely.
	marketData chan<- event.Event

	forcePushWarned sync.Once
}

// Option configures a Notifier at construction time.
type Option func(*Notifier)

// WithLogger overrides the default no-op logger.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(n *Notifier) { n.logger = logger }
}

// WithMarketData forwards every Tick event to ch instead of discarding it.
// The send is non-blocking: a full or unread channel drops ticks rather
// than stalling the exec/placed delivery path, which is the part of the
// pipeline that must never fall behind.
func WithMarketData(ch chan<- event.Event) Option {
	return func(n *Notifier) { n.marketData = ch }
}

// New returns a Notifier draining in once started.
func New(in *ring.Consumer[event.Event], opts ...Option) *Notifier {
	n := &Notifier{
		in:      in,
		logger:  zap.NewNop().Sugar(),
		clients: make(map[event.TraderID]*ring.Producer[event.Event]),
	}
	for _, opt := range opts {
		opt(n)
	}
	n.wrk = worker.New(n.run)
	return n
}

// RegisterClient maps trader to p. Must be called before Start; calling it
// concurrently with a running Notifier is not supported, since the client
// registry is read without synchronization once the worker is running.
func (n *Notifier) RegisterClient(trader event.TraderID, p *ring.Producer[event.Event]) {
	n.clients[trader] = p
}

// Start starts the notifier's hot-spin worker.
func (n *Notifier) Start() {
	n.wrk.Start()
}

// Stop sets the cooperative stop flag and joins the worker. The Notifier
// has no blocking input to unblock (it polls the ring), so unblock is nil.
func (n *Notifier) Stop() {
	n.wrk.Stop(nil)
}

func (n *Notifier) run(stopped func() bool) {
	for {
		if stopped() {
			return
		}
		ev, ok := n.in.TryPop()
		if !ok {
			runtime.Gosched()
			continue
		}
		n.dispatch(ev)
	}
}

func (n *Notifier) dispatch(ev event.Event) {
	if ev.Kind == event.Tick {
		n.forwardTick(ev)
		return
	}

	p, ok := n.clients[ev.Trader]
	if !ok {
		// An event for a trader nobody registered a ring for is a
		// programmer error upstream, not a recoverable runtime condition;
		// swallowing it would silently drop a fill.
		panic(fmt.Sprintf("notifier: event for unregistered trader %d: %+v", ev.Trader, ev))
	}

	if p.TryPush(ev) {
		return
	}
	n.forcePushWarned.Do(func() {
		n.logger.Warnw("notifier: client ring full, falling back to forced push", "trader", ev.Trader)
	})
	p.ForcePush(ev)
}

func (n *Notifier) forwardTick(ev event.Event) {
	if n.marketData == nil {
		return
	}
	select {
	case n.marketData <- ev:
	default:
	}
}
