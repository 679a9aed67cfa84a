package lane

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lumenex/matchbook/internal/domain"
	"github.com/lumenex/matchbook/internal/matching"
)

// PlaceRequest describes a new order admission (spec.md §4.1/§6.1).
type PlaceRequest struct {
	Side       domain.Side
	OrderType  domain.OrderType
	Quantity   uint64
	LimitPrice decimal.Decimal // ignored for MarketOrder
	OwnerID    *string
}

// validate applies the C5 admission checks from spec.md §4.4: side
// well-formed, quantity positive, and for limit orders a positive price
// with at most two fractional digits.
func (r PlaceRequest) validate() error {
	if r.Side != domain.Buy && r.Side != domain.Sell {
		return fmt.Errorf("%w: side must be buy or sell", domain.ErrValidation)
	}
	if r.Quantity == 0 {
		return fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)
	}
	if r.OrderType == domain.LimitOrder {
		if r.LimitPrice.Sign() <= 0 {
			return fmt.Errorf("%w: price must be positive", domain.ErrValidation)
		}
		if !r.LimitPrice.Equal(r.LimitPrice.Round(2)) {
			return fmt.Errorf("%w: price may not carry more than 2 fractional digits", domain.ErrValidation)
		}
	}
	return nil
}

// Place admits a new order onto the book, running it through the matching
// kernel before it is acknowledged.
func (l *Lane) Place(ctx context.Context, req PlaceRequest) (domain.Order, []domain.Trade, error) {
	if err := req.validate(); err != nil {
		l.metrics.OrdersRejected.WithLabelValues(l.Ticker, "validation").Inc()
		return domain.Order{}, nil, err
	}

	var (
		order  domain.Order
		trades []domain.Trade
		outErr error
	)
	l.submit(func() {
		now := l.clock()
		order = domain.Order{
			ID:                uuid.New(),
			Ticker:            l.Ticker,
			Side:              req.Side,
			OrderType:         req.OrderType,
			LimitPrice:        req.LimitPrice,
			TotalQuantity:     req.Quantity,
			RemainingQuantity: req.Quantity,
			TradedNotional:    decimal.Zero,
			Status:            domain.Pending,
			OwnerID:           req.OwnerID,
			CreatedAt:         now,
			UpdatedAt:         now,
		}

		var touched []*domain.Order
		trades, touched = matching.Match(l.book, &order, l.clock)

		if order.RemainingQuantity > 0 {
			if order.OrderType == domain.MarketOrder {
				order.FinalizeUnrestable()
			} else {
				order.MarkResting()
				l.book.SideFor(order.Side).Insert(&order)
				l.orders[order.ID] = &order
			}
		}

		outErr = l.afterMutation(ctx, &order, trades, touched)

		if order.Status == domain.Rejected {
			l.metrics.OrdersRejected.WithLabelValues(l.Ticker, "unfilled_market_remainder").Inc()
		} else {
			l.metrics.OrdersPlaced.WithLabelValues(l.Ticker, order.Side.String()).Inc()
		}
	})
	return order, trades, outErr
}

// Modify re-prices a still-active order. Per spec.md's Open Question
// decision, a modify always forfeits time priority: the order re-enters
// matching and, if it still rests afterward, joins the tail of its new
// price level.
func (l *Lane) Modify(ctx context.Context, id uuid.UUID, newPrice decimal.Decimal) (domain.Order, []domain.Trade, error) {
	if newPrice.Sign() <= 0 {
		return domain.Order{}, nil, fmt.Errorf("%w: price must be positive", domain.ErrValidation)
	}
	if !newPrice.Equal(newPrice.Round(2)) {
		return domain.Order{}, nil, fmt.Errorf("%w: price may not carry more than 2 fractional digits", domain.ErrValidation)
	}

	var (
		order  domain.Order
		trades []domain.Trade
		outErr error
	)
	l.submit(func() {
		existing, ok := l.orders[id]
		if !ok || !existing.Active {
			outErr = fmt.Errorf("%w: order %s is not active", domain.ErrStateConflict, id)
			return
		}

		l.book.SideFor(existing.Side).Remove(id)
		existing.LimitPrice = newPrice
		existing.Active = false

		var touched []*domain.Order
		trades, touched = matching.Match(l.book, existing, l.clock)

		if existing.RemainingQuantity > 0 {
			existing.MarkResting()
			l.book.SideFor(existing.Side).Insert(existing)
		} else {
			delete(l.orders, id)
		}

		outErr = l.afterMutation(ctx, existing, trades, touched)
		l.metrics.OrdersModified.WithLabelValues(l.Ticker).Inc()
		order = *existing
	})
	return order, trades, outErr
}

// Cancel removes a still-active order from the book.
func (l *Lane) Cancel(ctx context.Context, id uuid.UUID) (domain.Order, error) {
	var (
		order  domain.Order
		outErr error
	)
	l.submit(func() {
		existing, ok := l.orders[id]
		if !ok || !existing.Active {
			outErr = fmt.Errorf("%w: order %s is not active", domain.ErrStateConflict, id)
			return
		}
		l.book.SideFor(existing.Side).Remove(id)
		existing.Cancel()
		delete(l.orders, id)

		if err := l.store.UpsertOrder(ctx, existing); err != nil {
			l.log.Error().Err(err).Str("order_id", existing.ID.String()).Msg("failed to persist cancelled order")
			outErr = fmt.Errorf("%w: failed to persist order %s", domain.ErrTransient, existing.ID)
			return
		}
		l.metrics.OrdersCancelled.WithLabelValues(l.Ticker).Inc()
		order = *existing
	})
	return order, outErr
}

// LookupResting returns a copy of an order still resting on this lane's
// book, for the in-memory half of the Query path.
func (l *Lane) LookupResting(id uuid.UUID) (domain.Order, bool) {
	var (
		order domain.Order
		found bool
	)
	l.submit(func() {
		if existing, ok := l.orders[id]; ok {
			order, found = *existing, true
		}
	})
	return order, found
}

// afterMutation persists the request's own order and every resting order
// the kernel touched, drops touched orders that filled from the lane's
// registry, then feeds matched trades to the publisher. Must be called
// from inside the lane goroutine. A failure to durably persist a
// terminal order or a trade is returned wrapped in domain.ErrTransient, per
// spec.md §7: the caller surfaces it as HTTP 503 rather than reporting
// success for a fill that never reached storage.
func (l *Lane) afterMutation(ctx context.Context, own *domain.Order, trades []domain.Trade, touched []*domain.Order) error {
	var outErr error

	if own.Status.Terminal() {
		if err := l.store.UpsertOrder(ctx, own); err != nil {
			l.log.Error().Err(err).Str("order_id", own.ID.String()).Msg("failed to persist terminal order")
			outErr = fmt.Errorf("%w: failed to persist order %s", domain.ErrTransient, own.ID)
		}
	} else {
		l.store.UpsertOrderAsync(*own)
	}

	for _, t := range touched {
		if !t.Status.Terminal() {
			l.store.UpsertOrderAsync(*t)
			continue
		}
		delete(l.orders, t.ID)
		if err := l.store.UpsertOrder(ctx, t); err != nil {
			l.log.Error().Err(err).Str("order_id", t.ID.String()).Msg("failed to persist terminal order")
			if outErr == nil {
				outErr = fmt.Errorf("%w: failed to persist order %s", domain.ErrTransient, t.ID)
			}
		}
	}

	for _, tr := range trades {
		if err := l.store.InsertTrade(ctx, &tr); err != nil {
			l.log.Error().Err(err).Str("trade_id", tr.ID.String()).Msg("failed to persist trade")
			if outErr == nil {
				outErr = fmt.Errorf("%w: failed to persist trade %s", domain.ErrTransient, tr.ID)
			}
		}
	}
	if len(trades) > 0 {
		l.pub.RecordTrades(trades)
		l.metrics.TradesMatched.WithLabelValues(l.Ticker).Add(float64(len(trades)))
	}
	return outErr
}
