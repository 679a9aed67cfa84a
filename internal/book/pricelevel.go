// Package book implements the price-level index (C2) and resting-order
// index (C3): two ordered maps from price to aggregated liquidity, each
// backed by a doubly linked queue per level so that cancellation and
// price-modification can excise a resting order in O(1) given its id.
//
// Grounded on fenrir's internal/engine/orderbook.go PriceLevels
// (tidwall/btree.BTreeG[*PriceLevel]) for the ordered-by-price side, and
// generalized with a side-wide id index (absent from the teacher, which
// did flat []*Order slice scans) so Cancel/Modify never need to walk a
// level's orders to find the one being touched.
package book

import (
	"container/list"

	"github.com/shopspring/decimal"
)

// PriceLevel aggregates all resting orders at one (side, price) key. Orders
// is a queue in arrival order; AggregateQuantity is always the sum of the
// remaining quantities of its queued orders.
type PriceLevel struct {
	Price             decimal.Decimal
	Orders            *list.List // of *domain.Order
	AggregateQuantity uint64
}

func newPriceLevel(price decimal.Decimal) *PriceLevel {
	return &PriceLevel{
		Price:  price,
		Orders: list.New(),
	}
}

// Head returns the earliest-arrived order at this level, or nil if empty.
func (l *PriceLevel) Head() *list.Element {
	return l.Orders.Front()
}

// Empty reports whether the level has no resting orders left.
func (l *PriceLevel) Empty() bool {
	return l.Orders.Len() == 0
}
