package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is a single resting or terminal order. Fields and invariants match
// the data model: traded+remaining=total always; status follows the DAG
// Pending -> {Rejected, Active} -> {PartiallyFilled} -> {Filled, Cancelled};
// Active is true iff the order currently sits in a book index.
type Order struct {
	ID                uuid.UUID
	Ticker            string
	Side              Side
	OrderType         OrderType
	LimitPrice        decimal.Decimal // zero for market orders
	TotalQuantity     uint64
	RemainingQuantity uint64
	TradedQuantity    uint64
	// TradedNotional is the accumulated sum of (fill_qty * fill_price) across
	// every fill this order has received. VWAP is derived, never stored, to
	// avoid rounding drift: VWAP() = TradedNotional / TradedQuantity.
	TradedNotional decimal.Decimal
	Status         Status
	Active         bool
	OwnerID        *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// VWAP returns the volume-weighted average execution price of this order's
// fills so far, or zero if it has not traded.
func (o *Order) VWAP() decimal.Decimal {
	if o.TradedQuantity == 0 {
		return decimal.Zero
	}
	return o.TradedNotional.Div(decimal.NewFromInt(int64(o.TradedQuantity)))
}

// ApplyFill records a fill of qty at price against this order. It mutates
// Remaining/Traded/TradedNotional and advances Status. A fill that exhausts
// the order clears Active; otherwise Active is left as it was — whether a
// partially filled order rests is the caller's (matching kernel's or
// lane's) decision, since it depends on book-side context the order itself
// does not have.
func (o *Order) ApplyFill(qty uint64, price decimal.Decimal) {
	o.RemainingQuantity -= qty
	o.TradedQuantity += qty
	o.TradedNotional = o.TradedNotional.Add(price.Mul(decimal.NewFromInt(int64(qty))))
	o.UpdatedAt = time.Now()

	if o.RemainingQuantity == 0 {
		o.Status = Filled
		o.Active = false
	} else {
		o.Status = PartiallyFilled
	}
}

// MarkResting transitions a newly-admitted (or re-admitted) order into the
// book: Active, and ACTIVE/PARTIALLY_FILLED depending on whether it has
// already traded (e.g. a partial fill before resting the remainder).
func (o *Order) MarkResting() {
	o.Active = true
	if o.TradedQuantity > 0 {
		o.Status = PartiallyFilled
	} else {
		o.Status = Active
	}
	o.UpdatedAt = time.Now()
}

// Cancel freezes Remaining/Traded and marks the order terminal. Rejects
// (returns false) if the order is not currently active.
func (o *Order) Cancel() bool {
	if !o.Active {
		return false
	}
	o.Active = false
	o.Status = Cancelled
	o.UpdatedAt = time.Now()
	return true
}

// Reject marks a PENDING order terminal without ever having rested.
func (o *Order) Reject() {
	o.Active = false
	o.Status = Rejected
	o.UpdatedAt = time.Now()
}

// FinalizeUnrestable closes out a market order's unfillable remainder: it
// never rests, so any quantity left after sweeping the book is discarded.
// An order that traded at least once before running out of liquidity is
// Cancelled for its remainder; one that never traded at all is Rejected.
func (o *Order) FinalizeUnrestable() {
	o.Active = false
	if o.TradedQuantity > 0 {
		o.Status = Cancelled
	} else {
		o.Status = Rejected
	}
	o.UpdatedAt = time.Now()
}
