// Package matching implements the matching kernel (C4): a pure state
// transition over a book.Book given a newly admitted order, producing the
// trades that resulted and the order's final resting/filled state.
//
// Grounded on fenrir's internal/engine/orderbook.go Match/handleLimit/
// handleMarket, generalized to operate over book.Book's O(1)-excision
// index instead of slice-shifting a flat []*Order, and over
// shopspring/decimal prices instead of float64 per spec.md's REDESIGN
// FLAGS (decimal arithmetic via fixed-point, never floating point).
//
// The kernel performs no blocking operation and is infallible given
// well-formed input: any invariant violation detected mid-match is a
// programmer error (see InvariantViolation), not a recoverable
// condition, matching spec.md §4.3's "Failure semantics".
package matching

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lumenex/matchbook/internal/book"
	"github.com/lumenex/matchbook/internal/domain"
)

// InvariantViolation is panicked by the kernel when it detects book state
// that should be impossible given well-formed input. Callers (internal/lane)
// are expected to let this propagate to a lane-level recover that logs it
// and rebuilds that lane's book from storage, per spec.md §7's "Fatal"
// error kind; the process keeps running.
type InvariantViolation struct {
	Reason string
}

func (e InvariantViolation) Error() string {
	return fmt.Sprintf("matching: invariant violation: %s", e.Reason)
}

// Match crosses incoming against the resting side of b it opposes, in
// strict price-time priority, until incoming is exhausted or the book no
// longer crosses. incoming must not already be in the book (Active=false);
// it may carry fills from before, as a modified order does. On return, incoming has been mutated in place to
// its final fill state, and every resting order that absorbed a fill is
// returned in touched, already synced out of b's index by SyncHead
// (removed if it filled, still present as the new head otherwise).
//
// Match never inserts incoming into b itself: whether remaining quantity
// should rest, and under what bookkeeping (order registry, index), is a
// decision for the caller (internal/lane), since the kernel has no notion
// of anything beyond this one book.
//
// now is passed in (rather than called internally) so callers can use a
// single consistent timestamp across a batch, and so tests can supply a
// deterministic clock.
func Match(b *book.Book, incoming *domain.Order, now func() time.Time) (trades []domain.Trade, touched []*domain.Order) {
	if incoming.RemainingQuantity == 0 {
		panic(InvariantViolation{Reason: "zero-remaining order reached the kernel"})
	}

	opposing := b.OpposingSideFor(incoming.Side)

	for incoming.RemainingQuantity > 0 {
		lvl, ok := opposing.Best()
		if !ok {
			break
		}

		if incoming.OrderType == domain.LimitOrder {
			if incoming.Side == domain.Buy && incoming.LimitPrice.LessThan(lvl.Price) {
				break
			}
			if incoming.Side == domain.Sell && incoming.LimitPrice.GreaterThan(lvl.Price) {
				break
			}
		}

		resting := opposing.HeadOrder(lvl)
		qty := min(incoming.RemainingQuantity, resting.RemainingQuantity)
		execPrice := lvl.Price // resting (passive) side sets the execution price

		var buyID, sellID uuid.UUID
		if incoming.Side == domain.Buy {
			buyID, sellID = incoming.ID, resting.ID
		} else {
			buyID, sellID = resting.ID, incoming.ID
		}

		incoming.ApplyFill(qty, execPrice)
		resting.ApplyFill(qty, execPrice)
		opposing.SyncHead(lvl, resting, qty)
		touched = append(touched, resting)

		trades = append(trades, domain.Trade{
			ID:          uuid.New(),
			Ticker:      b.Ticker,
			Price:       execPrice,
			Quantity:    qty,
			BuyOrderID:  buyID,
			SellOrderID: sellID,
			ExecutedAt:  now(),
		})
	}

	return trades, touched
}

func min(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
