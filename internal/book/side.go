package book

import (
	"container/list"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tidwall/btree"

	"github.com/lumenex/matchbook/internal/domain"
)

// entry is the resting-order index's value: enough to excise an order's
// queue node in O(1) without touching the price-level btree.
type entry struct {
	level *PriceLevel
	elem  *list.Element
}

// Side is one half of the book (all bids, or all asks): a btree ordered by
// price (best-first for that side) plus a flat id -> queue-position index.
type Side struct {
	side   domain.Side
	levels *btree.BTreeG[*PriceLevel]
	index  map[uuid.UUID]entry
}

func newSide(side domain.Side) *Side {
	var less func(a, b *PriceLevel) bool
	if side == domain.Buy {
		// Bids: highest price first (best bid).
		less = func(a, b *PriceLevel) bool { return a.Price.GreaterThan(b.Price) }
	} else {
		// Asks: lowest price first (best ask).
		less = func(a, b *PriceLevel) bool { return a.Price.LessThan(b.Price) }
	}
	return &Side{
		side:   side,
		levels: btree.NewBTreeG(less),
		index:  make(map[uuid.UUID]entry),
	}
}

// Best returns the best (top-of-book) price level for this side, if any.
func (s *Side) Best() (*PriceLevel, bool) {
	return s.levels.Min()
}

// getOrCreate returns the level at price, creating an empty one if absent.
func (s *Side) getOrCreate(price decimal.Decimal) *PriceLevel {
	probe := &PriceLevel{Price: price}
	if lvl, ok := s.levels.Get(probe); ok {
		return lvl
	}
	lvl := newPriceLevel(price)
	s.levels.Set(lvl)
	return lvl
}

// Insert admits order at the tail of its LimitPrice level's queue and
// registers it in the resting-order index. The caller is responsible for
// having already set order.Active/Status appropriately (see domain.Order.
// MarkResting).
func (s *Side) Insert(order *domain.Order) {
	lvl := s.getOrCreate(order.LimitPrice)
	elem := lvl.Orders.PushBack(order)
	lvl.AggregateQuantity += order.RemainingQuantity
	s.index[order.ID] = entry{level: lvl, elem: elem}
}

// Remove excises order id from wherever it sits in the book (O(1) given the
// index) and drops its level if that empties the queue. Returns false if
// the id was not resting on this side.
func (s *Side) Remove(id uuid.UUID) bool {
	e, ok := s.index[id]
	if !ok {
		return false
	}
	order := e.elem.Value.(*domain.Order)
	e.level.AggregateQuantity -= order.RemainingQuantity
	e.level.Orders.Remove(e.elem)
	delete(s.index, id)
	if e.level.Empty() {
		s.levels.Delete(e.level)
	}
	return true
}

// HeadOrder peeks at (without mutating) the earliest-arrived order resting
// at lvl.
func (s *Side) HeadOrder(lvl *PriceLevel) *domain.Order {
	return lvl.Head().Value.(*domain.Order)
}

// SyncHead reconciles the book index after the matching kernel has already
// applied a fill of qty to lvl's head order (via domain.Order.ApplyFill):
// it deducts qty from the level's aggregate and, if that fill emptied the
// order's remaining quantity, excises it from the queue and index (and
// drops the level if that was its last order). order must be lvl's current
// head.
func (s *Side) SyncHead(lvl *PriceLevel, order *domain.Order, qty uint64) {
	lvl.AggregateQuantity -= qty
	if order.RemainingQuantity > 0 {
		return
	}
	elem := lvl.Head()
	lvl.Orders.Remove(elem)
	delete(s.index, order.ID)
	if lvl.Empty() {
		s.levels.Delete(lvl)
	}
}

// TopN returns up to n best-to-worst price levels for this side.
func (s *Side) TopN(n int) []*PriceLevel {
	if n <= 0 {
		return nil
	}
	out := make([]*PriceLevel, 0, n)
	s.levels.Scan(func(lvl *PriceLevel) bool {
		out = append(out, lvl)
		return len(out) < n
	})
	return out
}

// Lookup returns the level an order id currently rests at, if any.
func (s *Side) Lookup(id uuid.UUID) (*PriceLevel, bool) {
	e, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return e.level, true
}
