// Priced implements limit-price matching: two price-indexed level maps
// instead of a single FIFO, so an instrument can rest orders at more than
// one price and still give O(1) access to the best price on each side.
//
// The level index is a github.com/emirpasic/gods/v2/trees/redblacktree,
// the same library the teacher's ShardedPriceTree (orderbook/price_tree_sharded.go)
// uses for its bucket index. Here one level equals one price, so there is
// no bucket layer: redblacktree.Tree[event.Price,*Level] directly gives
// O(log n) insert/lookup and O(1) best-price access via Left(), exactly as
// ShardedPriceTree gets O(1) best-bucket access.
package book

import (
	"container/list"

	rbt "github.com/emirpasic/gods/v2/trees/redblacktree"

	"github.com/mkrzyzan/exengine/internal/event"
)

// Level holds all resting orders at one price, obeying the same
// outstandingQty/openedOrdersQty invariant as the base Book.
type Level struct {
	price           event.Price
	orders          *list.List
	outstandingQty  uint32
	openedOrdersQty uint32
}

func newLevel(price event.Price) *Level {
	return &Level{price: price, orders: list.New()}
}

// drain applies an aggressor's remaining quantity against this level's FIFO,
// returning the Execs produced (one per fully consumed resting order, in
// FIFO order) and the aggressor quantity left over.
func (lv *Level) drain(remain uint32, instrument event.Instrument, restingSide event.Side) ([]event.Event, uint32) {
	var events []event.Event
	for remain > 0 && lv.orders.Len() > 0 {
		front := lv.orders.Front()
		top := front.Value.(event.InternalOrder)
		topRemain := uint32(top.Qty) + lv.outstandingQty - lv.openedOrdersQty

		if topRemain > remain {
			lv.outstandingQty -= remain
			remain = 0
			break
		}

		remain -= topRemain
		lv.orders.Remove(front)
		lv.outstandingQty -= topRemain
		lv.openedOrdersQty -= uint32(top.Qty)
		events = append(events, event.Event{
			Kind:       event.Exec,
			Instrument: instrument,
			Trader:     top.Trader,
			Qty:        uint32(top.Qty),
			Side:       restingSide,
		})
	}
	return events, remain
}

// restingAdd appends a new order whose original quantity is origQty and
// whose unfilled quantity is remainQty (remainQty == origQty for a fresh,
// non-crossing order; remainQty < origQty for a residual after a partial
// cross). Using origQty for openedOrdersQty and remainQty for outstandingQty
// keeps the head-remaining formula correct the same way the base Book's
// residual-add branch does.
func (lv *Level) restingAdd(trader event.TraderID, origQty uint16, remainQty uint32) {
	lv.orders.PushBack(event.InternalOrder{Trader: trader, Qty: origQty})
	lv.outstandingQty += remainQty
	lv.openedOrdersQty += uint32(origQty)
}

func ascendingPrice(a, b event.Price) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func descendingPrice(a, b event.Price) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	default:
		return 0
	}
}

// Priced is the priced-matching book: two price-indexed level maps, bids
// sorted descending and asks ascending, so Left() on either tree is always
// the best price.
type Priced struct {
	instrument event.Instrument
	bids       *rbt.Tree[event.Price, *Level]
	asks       *rbt.Tree[event.Price, *Level]
}

var _ Matcher = (*Priced)(nil)

// NewPriced returns an empty priced book for instrument.
func NewPriced(instrument event.Instrument) *Priced {
	return &Priced{
		instrument: instrument,
		bids:       rbt.NewWith[event.Price, *Level](descendingPrice),
		asks:       rbt.NewWith[event.Price, *Level](ascendingPrice),
	}
}

// BestBid returns the best (highest) resting bid price, if any.
func (pb *Priced) BestBid() (event.Price, bool) {
	node := pb.bids.Left()
	if node == nil {
		return 0, false
	}
	return node.Key, true
}

// BestAsk returns the best (lowest) resting ask price, if any.
func (pb *Priced) BestAsk() (event.Price, bool) {
	node := pb.asks.Left()
	if node == nil {
		return 0, false
	}
	return node.Key, true
}

// Match applies a priced submission: walks the opposite side's levels from
// best outward while the order crosses, draining each via the single-side
// FIFO rule, then rests any residual on the order's own side at exactly
// price. Returns events in the same ordering contract as the base Book.
func (pb *Priced) Match(side event.Side, trader event.TraderID, qty uint16, price event.Price) []event.Event {
	var events []event.Event
	remain := uint32(qty)

	ownTree, oppTree, restingSide, crosses := pb.sideContext(side, price)

	for remain > 0 {
		node := oppTree.Left()
		if node == nil || !crosses(node.Key) {
			break
		}
		lv := node.Value
		var levelEvents []event.Event
		levelEvents, remain = lv.drain(remain, pb.instrument, restingSide)
		events = append(events, levelEvents...)
		if lv.orders.Len() == 0 {
			oppTree.Remove(node.Key)
		}
	}

	if remain == 0 {
		events = append(events, event.Event{
			Kind:       event.Exec,
			Instrument: pb.instrument,
			Trader:     trader,
			Qty:        uint32(qty),
			Side:       side,
		})
	} else {
		lv, found := ownTree.Get(price)
		if !found {
			lv = newLevel(price)
			ownTree.Put(price, lv)
		}
		lv.restingAdd(trader, qty, remain)
		events = append(events, event.Event{
			Kind:       event.OrderPlaced,
			Instrument: pb.instrument,
			Trader:     trader,
			Qty:        uint32(qty), // original qty, not the residual
			Side:       side,
		})
	}

	events = append(events, pb.tick(side, ownTree))
	return events
}

// MatchOrder adapts Match to the Matcher interface the Engine uses.
func (pb *Priced) MatchOrder(o event.InputOrder) []event.Event {
	return pb.Match(o.Side, o.Trader, o.Qty, o.Price)
}

// sideContext returns the own/opposite level trees, the side label to stamp
// on Execs against the opposite side's resting orders, and the crossing
// predicate for the given aggressor side and price: a buy crosses when its
// price is at or above the best ask, a sell when its price is at or below
// the best bid.
func (pb *Priced) sideContext(side event.Side, price event.Price) (own, opp *rbt.Tree[event.Price, *Level], restingSide event.Side, crosses func(event.Price) bool) {
	if side == event.Buy {
		return pb.bids, pb.asks, event.Sell, func(levelPrice event.Price) bool { return price >= levelPrice }
	}
	return pb.asks, pb.bids, event.Buy, func(levelPrice event.Price) bool { return price <= levelPrice }
}

// tick reports the post-submission state of the submitting order's own
// side at its best price. The base Book always has one active side to
// report; a priced book can have resting orders on both sides at once, so
// tick reports the side the submission just touched instead.
func (pb *Priced) tick(side event.Side, ownTree *rbt.Tree[event.Price, *Level]) event.Event {
	node := ownTree.Left()
	if node == nil {
		return event.Event{Kind: event.Tick, Instrument: pb.instrument, Trader: 0, Qty: 0, Side: event.None}
	}
	return event.Event{Kind: event.Tick, Instrument: pb.instrument, Trader: 0, Qty: node.Value.outstandingQty, Side: side}
}
