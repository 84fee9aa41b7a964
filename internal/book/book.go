// Package book implements the per-instrument matching state: the base
// single-active-side book here, and (in priced.go) a price-indexed variant
// for instruments that need limit-price levels. Only the Engine worker ever
// calls into a Book, so there is no internal locking; a single writer makes
// the matching loop safe without one.
package book

import (
	"container/list"

	"github.com/mkrzyzan/exengine/internal/event"
)

// Matcher is what the Engine needs from a book, regardless of which variant
// (base or priced) an instrument is configured to use.
type Matcher interface {
	MatchOrder(o event.InputOrder) []event.Event
}

// Book is the base single-side variant: one FIFO of resting orders, all on
// the same actual side.
type Book struct {
	instrument event.Instrument

	actualSide      event.Side
	orders          *list.List // FIFO of event.InternalOrder, front = oldest
	outstandingQty  uint32
	openedOrdersQty uint32
}

var _ Matcher = (*Book)(nil)

// New returns an empty book for instrument.
func New(instrument event.Instrument) *Book {
	return &Book{
		instrument: instrument,
		actualSide: event.None,
		orders:     list.New(),
	}
}

// Side returns the active side, or event.None if the book is empty.
func (b *Book) Side() event.Side { return b.actualSide }

// OutstandingQty returns the unfilled quantity on the active side.
func (b *Book) OutstandingQty() uint32 { return b.outstandingQty }

// OpenedOrdersQty returns the sum of original quantities of resting orders.
func (b *Book) OpenedOrdersQty() uint32 { return b.openedOrdersQty }

// Len returns the number of resting orders.
func (b *Book) Len() int { return b.orders.Len() }

// Match applies one submission to the book and returns the events it
// produces, in emission order: consumed-resting Execs (FIFO), then an
// aggressor Exec or OrderPlaced, then exactly one Tick so every caller sees
// a consistent post-submission snapshot. The caller (Engine) is responsible
// for validating side != event.None and qty > 0 before calling Match.
func (b *Book) Match(side event.Side, trader event.TraderID, qty uint16) []event.Event {
	var events []event.Event

	if b.orders.Len() == 0 || side == b.actualSide {
		// Passive add: fresh book or same-side order joins the queue.
		b.place(side, trader, qty)
		events = append(events, b.placedEvent(trader, qty, side))
	} else {
		remain := uint32(qty)
		for remain > 0 && b.orders.Len() > 0 {
			front := b.orders.Front()
			top := front.Value.(event.InternalOrder)
			topRemain := uint32(top.Qty) + b.outstandingQty - b.openedOrdersQty

			if topRemain > remain {
				// Top order partially filled: stays resting, no Exec.
				b.outstandingQty -= remain
				remain = 0
				continue
			}

			remain -= topRemain
			b.orders.Remove(front)
			b.outstandingQty -= topRemain
			b.openedOrdersQty -= uint32(top.Qty)
			events = append(events, event.Event{
				Kind:       event.Exec,
				Instrument: b.instrument,
				Trader:     top.Trader,
				Qty:        uint32(top.Qty),
				Side:       b.actualSide,
			})
		}

		if remain == 0 {
			events = append(events, event.Event{
				Kind:       event.Exec,
				Instrument: b.instrument,
				Trader:     trader,
				Qty:        uint32(qty),
				Side:       side,
			})
		} else {
			// Aggressor survived a now-empty book: rests with the residual
			// as outstanding, but openedOrdersQty keeps the *original* qty
			// so the head-remaining formula stays consistent with a
			// partially filled head order.
			b.actualSide = side
			b.orders.PushBack(event.InternalOrder{Trader: trader, Qty: qty})
			b.outstandingQty += remain
			b.openedOrdersQty += uint32(qty)
			events = append(events, b.placedEvent(trader, qty, side))
		}
	}

	events = append(events, b.tick())
	return events
}

// MatchOrder adapts Match to the Matcher interface the Engine uses.
func (b *Book) MatchOrder(o event.InputOrder) []event.Event {
	return b.Match(o.Side, o.Trader, o.Qty)
}

func (b *Book) place(side event.Side, trader event.TraderID, qty uint16) {
	b.actualSide = side
	b.orders.PushBack(event.InternalOrder{Trader: trader, Qty: qty})
	b.outstandingQty += uint32(qty)
	b.openedOrdersQty += uint32(qty)
}

func (b *Book) placedEvent(trader event.TraderID, qty uint16, side event.Side) event.Event {
	return event.Event{
		Kind:       event.OrderPlaced,
		Instrument: b.instrument,
		Trader:     trader,
		Qty:        uint32(qty),
		Side:       side,
	}
}

func (b *Book) tick() event.Event {
	if b.orders.Len() == 0 {
		b.actualSide = event.None
		return event.Event{Kind: event.Tick, Instrument: b.instrument, Trader: 0, Qty: 0, Side: event.None}
	}
	return event.Event{Kind: event.Tick, Instrument: b.instrument, Trader: 0, Qty: b.outstandingQty, Side: b.actualSide}
}
