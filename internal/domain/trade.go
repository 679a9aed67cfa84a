package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Trade is an immutable execution record, except for the one-shot
// Settled false->true transition.
type Trade struct {
	ID          uuid.UUID
	Ticker      string
	Price       decimal.Decimal
	Quantity    uint64
	BuyOrderID  uuid.UUID
	SellOrderID uuid.UUID
	ExecutedAt  time.Time
	Settled     bool
	SettledAt   *time.Time
}

// Settle performs the one-shot false->true transition. Returns false if the
// trade is already settled (caller should surface state_conflict).
func (t *Trade) Settle(at time.Time) bool {
	if t.Settled {
		return false
	}
	t.Settled = true
	t.SettledAt = &at
	return true
}
