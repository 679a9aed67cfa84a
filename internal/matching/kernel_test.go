package matching

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenex/matchbook/internal/book"
	"github.com/lumenex/matchbook/internal/domain"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newLimitOrder(side domain.Side, price string, qty uint64) *domain.Order {
	return &domain.Order{
		ID:                uuid.New(),
		Ticker:             "EQUITY",
		Side:               side,
		OrderType:          domain.LimitOrder,
		LimitPrice:         decimal.RequireFromString(price),
		TotalQuantity:      qty,
		RemainingQuantity:  qty,
		TradedNotional:     decimal.Zero,
		Status:             domain.Pending,
	}
}

func newMarketOrder(side domain.Side, qty uint64) *domain.Order {
	return &domain.Order{
		ID:                uuid.New(),
		Ticker:             "EQUITY",
		Side:               side,
		OrderType:          domain.MarketOrder,
		LimitPrice:         decimal.Zero,
		TotalQuantity:      qty,
		RemainingQuantity:  qty,
		TradedNotional:     decimal.Zero,
		Status:             domain.Pending,
	}
}

func TestMatch_SimpleFullFill(t *testing.T) {
	b := book.New("EQUITY")
	sell := newLimitOrder(domain.Sell, "100.00", 10)
	sell.MarkResting()
	b.Asks.Insert(sell)

	buy := newLimitOrder(domain.Buy, "100.00", 10)
	trades, touched := Match(b, buy, fixedClock(time.Now()))

	require.Len(t, trades, 1)
	assert.Equal(t, uint64(10), trades[0].Quantity)
	assert.True(t, trades[0].Price.Equal(decimal.RequireFromString("100.00")))
	assert.Equal(t, uint64(0), buy.RemainingQuantity)
	assert.Equal(t, domain.Filled, buy.Status)
	require.Len(t, touched, 1)
	assert.Equal(t, domain.Filled, touched[0].Status)

	_, ok := b.Asks.Best()
	assert.False(t, ok, "ask side should be empty after a full fill")
}

func TestMatch_PartialFillRests(t *testing.T) {
	b := book.New("EQUITY")
	sell := newLimitOrder(domain.Sell, "100.00", 5)
	sell.MarkResting()
	b.Asks.Insert(sell)

	buy := newLimitOrder(domain.Buy, "100.00", 10)
	trades, _ := Match(b, buy, fixedClock(time.Now()))

	require.Len(t, trades, 1)
	assert.Equal(t, uint64(5), buy.RemainingQuantity)
	assert.Equal(t, domain.PartiallyFilled, buy.Status)

	// Caller is responsible for resting the remainder.
	buy.MarkResting()
	b.Bids.Insert(buy)
	lvl, ok := b.Bids.Best()
	require.True(t, ok)
	assert.Equal(t, uint64(5), lvl.AggregateQuantity)
}

func TestMatch_MultiLevelPriceTimePriority(t *testing.T) {
	b := book.New("EQUITY")
	s1 := newLimitOrder(domain.Sell, "100.00", 5)
	s1.MarkResting()
	b.Asks.Insert(s1)
	s2 := newLimitOrder(domain.Sell, "101.00", 5)
	s2.MarkResting()
	b.Asks.Insert(s2)

	buy := newLimitOrder(domain.Buy, "101.00", 8)
	trades, _ := Match(b, buy, fixedClock(time.Now()))

	require.Len(t, trades, 2)
	assert.True(t, trades[0].Price.Equal(decimal.RequireFromString("100.00")))
	assert.Equal(t, uint64(5), trades[0].Quantity)
	assert.True(t, trades[1].Price.Equal(decimal.RequireFromString("101.00")))
	assert.Equal(t, uint64(3), trades[1].Quantity)
	assert.Equal(t, uint64(0), buy.RemainingQuantity)

	lvl, ok := b.Asks.Best()
	require.True(t, ok)
	assert.True(t, lvl.Price.Equal(decimal.RequireFromString("101.00")))
	assert.Equal(t, uint64(2), lvl.AggregateQuantity)
}

func TestMatch_NonCrossingLimitRestsUntouched(t *testing.T) {
	b := book.New("EQUITY")
	sell := newLimitOrder(domain.Sell, "101.00", 10)
	sell.MarkResting()
	b.Asks.Insert(sell)

	buy := newLimitOrder(domain.Buy, "100.00", 10)
	trades, _ := Match(b, buy, fixedClock(time.Now()))

	assert.Empty(t, trades)
	assert.Equal(t, uint64(10), buy.RemainingQuantity)
}

func TestMatch_MarketOrderSweepsThenCallerFinalizes(t *testing.T) {
	b := book.New("EQUITY")
	sell := newLimitOrder(domain.Sell, "100.00", 5)
	sell.MarkResting()
	b.Asks.Insert(sell)

	buy := newMarketOrder(domain.Buy, 10)
	trades, _ := Match(b, buy, fixedClock(time.Now()))

	require.Len(t, trades, 1)
	assert.Equal(t, uint64(5), buy.RemainingQuantity)

	buy.FinalizeUnrestable()
	assert.Equal(t, domain.Cancelled, buy.Status)
	assert.False(t, buy.Active)
}

func TestMatch_ZeroRemainingPanics(t *testing.T) {
	b := book.New("EQUITY")
	buy := newLimitOrder(domain.Buy, "100.00", 1)
	buy.RemainingQuantity = 0

	assert.Panics(t, func() {
		Match(b, buy, fixedClock(time.Now()))
	})
}
