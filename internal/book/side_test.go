package book

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenex/matchbook/internal/domain"
)

func restingOrder(side domain.Side, price string, qty uint64) *domain.Order {
	o := &domain.Order{
		ID:                uuid.New(),
		Ticker:            "EQUITY",
		Side:              side,
		OrderType:         domain.LimitOrder,
		LimitPrice:        decimal.RequireFromString(price),
		TotalQuantity:     qty,
		RemainingQuantity: qty,
		TradedNotional:    decimal.Zero,
	}
	o.MarkResting()
	return o
}

func TestSide_BestBidIsHighestPrice(t *testing.T) {
	b := New("EQUITY")
	b.Bids.Insert(restingOrder(domain.Buy, "99.00", 1))
	b.Bids.Insert(restingOrder(domain.Buy, "101.00", 1))
	b.Bids.Insert(restingOrder(domain.Buy, "100.00", 1))

	lvl, ok := b.Bids.Best()
	require.True(t, ok)
	assert.True(t, lvl.Price.Equal(decimal.RequireFromString("101.00")))
}

func TestSide_BestAskIsLowestPrice(t *testing.T) {
	b := New("EQUITY")
	b.Asks.Insert(restingOrder(domain.Sell, "101.00", 1))
	b.Asks.Insert(restingOrder(domain.Sell, "99.00", 1))
	b.Asks.Insert(restingOrder(domain.Sell, "100.00", 1))

	lvl, ok := b.Asks.Best()
	require.True(t, ok)
	assert.True(t, lvl.Price.Equal(decimal.RequireFromString("99.00")))
}

func TestSide_InsertAggregatesAtSameLevel(t *testing.T) {
	b := New("EQUITY")
	b.Bids.Insert(restingOrder(domain.Buy, "100.00", 3))
	b.Bids.Insert(restingOrder(domain.Buy, "100.00", 4))

	lvl, ok := b.Bids.Best()
	require.True(t, ok)
	assert.Equal(t, uint64(7), lvl.AggregateQuantity)
	assert.Equal(t, 2, lvl.Orders.Len())
}

func TestSide_RemoveExcisesAndDropsEmptyLevel(t *testing.T) {
	b := New("EQUITY")
	first := restingOrder(domain.Buy, "100.00", 3)
	second := restingOrder(domain.Buy, "100.00", 4)
	b.Bids.Insert(first)
	b.Bids.Insert(second)

	ok := b.Bids.Remove(first.ID)
	assert.True(t, ok)
	lvl, found := b.Bids.Best()
	require.True(t, found)
	assert.Equal(t, uint64(4), lvl.AggregateQuantity)

	b.Bids.Remove(second.ID)
	_, found = b.Bids.Best()
	assert.False(t, found, "level should be dropped once its last order is removed")
}

func TestSide_RemoveUnknownIDIsNoop(t *testing.T) {
	b := New("EQUITY")
	assert.False(t, b.Bids.Remove(uuid.New()))
}

func TestSide_HeadOrderIsFIFOWithinLevel(t *testing.T) {
	b := New("EQUITY")
	first := restingOrder(domain.Sell, "100.00", 1)
	second := restingOrder(domain.Sell, "100.00", 1)
	b.Asks.Insert(first)
	b.Asks.Insert(second)

	lvl, ok := b.Asks.Best()
	require.True(t, ok)
	assert.Equal(t, first.ID, b.Asks.HeadOrder(lvl).ID)
}

func TestSide_TopNRespectsOrdering(t *testing.T) {
	b := New("EQUITY")
	b.Bids.Insert(restingOrder(domain.Buy, "98.00", 1))
	b.Bids.Insert(restingOrder(domain.Buy, "100.00", 1))
	b.Bids.Insert(restingOrder(domain.Buy, "99.00", 1))

	top := b.Bids.TopN(2)
	require.Len(t, top, 2)
	assert.True(t, top[0].Price.Equal(decimal.RequireFromString("100.00")))
	assert.True(t, top[1].Price.Equal(decimal.RequireFromString("99.00")))
}
