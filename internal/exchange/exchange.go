// Package exchange implements the composition root tying an Engine and a
// Notifier together through the engine→notifier SPSC ring, and orchestrates
// their startup/shutdown order so neither side runs unpaired.
package exchange

import (
	"go.uber.org/zap"

	"github.com/mkrzyzan/exengine/internal/engine"
	"github.com/mkrzyzan/exengine/internal/event"
	"github.com/mkrzyzan/exengine/internal/notifier"
	"github.com/mkrzyzan/exengine/internal/ring"
)

// Exchange wires an Engine's output ring into a Notifier and exposes the
// submission/registration/lifecycle surface clients use.
type Exchange struct {
	eng *engine.Engine
	ntf *notifier.Notifier
}

// Option configures an Exchange at construction time.
type Option struct {
	ringCapacity      int
	logger            *zap.SugaredLogger
	pricedInstruments []event.Instrument
	marketData        chan<- event.Event
}

// ExchangeOption mutates Option; functional-options, matching the rest of
// the pipeline's construction style.
type ExchangeOption func(*Option)

// WithRingCapacity overrides the default engine→notifier ring capacity.
// Must be a power of two (internal/ring requirement).
func WithRingCapacity(capacity int) ExchangeOption {
	return func(o *Option) { o.ringCapacity = capacity }
}

// WithLogger propagates a logger to both the Engine and the Notifier.
func WithLogger(logger *zap.SugaredLogger) ExchangeOption {
	return func(o *Option) { o.logger = logger }
}

// WithPricedInstruments marks instruments matched by the priced-book
// extension, forwarded to engine.WithPricedInstruments.
func WithPricedInstruments(instruments ...event.Instrument) ExchangeOption {
	return func(o *Option) { o.pricedInstruments = instruments }
}

// WithMarketData forwards Tick events to ch, forwarded to
// notifier.WithMarketData.
func WithMarketData(ch chan<- event.Event) ExchangeOption {
	return func(o *Option) { o.marketData = ch }
}

const defaultRingCapacity = 4096

// New builds an Exchange with a fresh engine→notifier ring and a fresh
// Engine/Notifier pair, neither yet started.
func New(opts ...ExchangeOption) *Exchange {
	o := &Option{ringCapacity: defaultRingCapacity, logger: zap.NewNop().Sugar()}
	for _, opt := range opts {
		opt(o)
	}

	producer, consumer := ring.New[event.Event](o.ringCapacity)

	engineOpts := []engine.Option{engine.WithLogger(o.logger)}
	if len(o.pricedInstruments) > 0 {
		engineOpts = append(engineOpts, engine.WithPricedInstruments(o.pricedInstruments...))
	}
	eng := engine.New(producer, engineOpts...)

	notifierOpts := []notifier.Option{notifier.WithLogger(o.logger)}
	if o.marketData != nil {
		notifierOpts = append(notifierOpts, notifier.WithMarketData(o.marketData))
	}
	ntf := notifier.New(consumer, notifierOpts...)

	return &Exchange{eng: eng, ntf: ntf}
}

// Submit enqueues a submission for matching.
func (x *Exchange) Submit(o event.InputOrder) {
	x.eng.Submit(o)
}

// RegisterClient maps trader to its inbound ring. Must be called before
// Start, since the Notifier reads its client registry without
// synchronization once its worker is running.
func (x *Exchange) RegisterClient(trader event.TraderID, p *ring.Producer[event.Event]) {
	x.ntf.RegisterClient(trader, p)
}

// Start starts the Engine, then the Notifier. Events the Engine emits before
// the Notifier's worker is running wait in the ring until it drains them.
func (x *Exchange) Start() {
	x.eng.Start()
	x.ntf.Start()
}

// Stop stops the Notifier first, so it exits its spin loop, then the
// Engine, which also stops its submission queue to unblock a pending Pop.
// Idempotent: calling it again after a full stop is a no-op.
func (x *Exchange) Stop() {
	x.ntf.Stop()
	x.eng.Stop()
}
