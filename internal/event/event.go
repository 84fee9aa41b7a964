// Package event holds the wire types shared across the matching pipeline:
// client submissions, resting orders, and the three outbound event kinds.
package event

// Side identifies which side of a book an order or event belongs to.
type Side uint8

const (
	Buy Side = iota
	Sell
	None
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "Buy"
	case Sell:
		return "Sell"
	default:
		return "None"
	}
}

// Instrument is the byte-sized instrument key used to route submissions to
// the correct book.
type Instrument byte

// TraderID identifies a submitting client.
type TraderID uint16

// Qty is an order quantity. Per-order quantities fit in uint16; aggregate
// outstanding quantities (qty on Event) are carried as uint32 since a book
// can accumulate more outstanding quantity than any single order holds.
type Qty = uint32

// Price is a limit price, used only by the priced-book variant. The base
// single-side book has no notion of price.
type Price int64

// InputOrder is a client-submitted intent to trade. Immutable once enqueued.
// Price is only meaningful for instruments matched by the priced book
// variant; base-book instruments ignore it.
type InputOrder struct {
	Instrument Instrument
	Trader     TraderID
	Qty        uint16
	Side       Side
	Price      Price
}

// Valid reports whether the submission has a quantity and a real side; a
// zero quantity or an unset side can never match or rest, so callers treat
// it as a no-op rather than constructing an error path for it.
func (o InputOrder) Valid() bool {
	return o.Qty > 0 && o.Side != None
}

// InternalOrder is a resting order inside a book. Remaining quantity is
// derived from the book's running totals rather than stored per order, so a
// partial fill only updates the book's outstanding counter and never touches
// the order itself.
type InternalOrder struct {
	Trader TraderID
	Qty    uint16
}

// Kind distinguishes the three Event variants.
type Kind uint8

const (
	OrderPlaced Kind = iota
	Exec
	Tick
)

func (k Kind) String() string {
	switch k {
	case OrderPlaced:
		return "Placed"
	case Exec:
		return "Exec"
	case Tick:
		return "Tick"
	default:
		return "Unknown"
	}
}

// Event is the on-the-wire struct pushed through the engine→notifier ring
// and the per-client rings.
type Event struct {
	Kind       Kind
	Instrument Instrument
	Trader     TraderID
	Qty        uint32
	Side       Side
}
