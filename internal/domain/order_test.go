package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrder(qty uint64) *Order {
	return &Order{
		ID:                uuid.New(),
		Ticker:            "EQUITY",
		Side:              Buy,
		OrderType:         LimitOrder,
		LimitPrice:        decimal.RequireFromString("100.00"),
		TotalQuantity:     qty,
		RemainingQuantity: qty,
		TradedNotional:    decimal.Zero,
		Status:            Pending,
	}
}

func TestOrder_ApplyFill_PartialThenFull(t *testing.T) {
	o := newOrder(10)

	o.ApplyFill(4, decimal.RequireFromString("100.00"))
	assert.Equal(t, uint64(6), o.RemainingQuantity)
	assert.Equal(t, uint64(4), o.TradedQuantity)
	assert.Equal(t, PartiallyFilled, o.Status)

	o.ApplyFill(6, decimal.RequireFromString("101.00"))
	assert.Equal(t, uint64(0), o.RemainingQuantity)
	assert.Equal(t, Filled, o.Status)
	assert.False(t, o.Active)
}

func TestOrder_VWAP_WeightsByFillQuantity(t *testing.T) {
	o := newOrder(10)
	o.ApplyFill(4, decimal.RequireFromString("100.00"))
	o.ApplyFill(6, decimal.RequireFromString("102.00"))

	// (4*100 + 6*102) / 10 = 101.20
	require.True(t, o.VWAP().Equal(decimal.RequireFromString("101.2")))
}

func TestOrder_VWAP_ZeroBeforeAnyFill(t *testing.T) {
	o := newOrder(10)
	assert.True(t, o.VWAP().IsZero())
}

func TestOrder_MarkResting_ReflectsPriorPartialFill(t *testing.T) {
	o := newOrder(10)
	o.ApplyFill(3, decimal.RequireFromString("100.00"))
	o.MarkResting()
	assert.True(t, o.Active)
	assert.Equal(t, PartiallyFilled, o.Status)
}

func TestOrder_Cancel_RejectsWhenNotActive(t *testing.T) {
	o := newOrder(10)
	assert.False(t, o.Cancel())

	o.MarkResting()
	assert.True(t, o.Cancel())
	assert.Equal(t, Cancelled, o.Status)
	assert.False(t, o.Active)
}

func TestOrder_FinalizeUnrestable_RejectsIfNeverTraded(t *testing.T) {
	o := newOrder(10)
	o.FinalizeUnrestable()
	assert.Equal(t, Rejected, o.Status)
}

func TestOrder_FinalizeUnrestable_CancelsRemainderIfPartiallyTraded(t *testing.T) {
	o := newOrder(10)
	o.ApplyFill(3, decimal.RequireFromString("100.00"))
	o.FinalizeUnrestable()
	assert.Equal(t, Cancelled, o.Status)
}

func TestStatus_Terminal(t *testing.T) {
	assert.True(t, Filled.Terminal())
	assert.True(t, Cancelled.Terminal())
	assert.True(t, Rejected.Terminal())
	assert.False(t, Active.Terminal())
	assert.False(t, Pending.Terminal())
	assert.False(t, PartiallyFilled.Terminal())
}
