// Package feed is the snapshot publisher (C6): it turns a lane-consistent
// read of the book into the aggregated bid/ask ladders and recent-trade
// lists that the REST query endpoints and the WS streaming feed both
// serve, at a fixed cadence while subscribers exist.
//
// Grounded on VictorVVedtion-perp-dex's periodic market-data broadcast
// idea and fenrir's internal/net.Server fan-out-to-sessions pattern,
// generalized from "push to TCP sessions" to "push to WS subscriber
// channels", and from a poll-from-storage cadence to a pull-under-lane-
// exclusion cadence per spec.md §9's redesign note.
package feed

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LevelView is one aggregated price level as exposed to query/stream
// consumers.
type LevelView struct {
	Price    decimal.Decimal `json:"price"`
	Quantity uint64          `json:"quantity"`
}

// BookSnapshot is a point-in-time view of the book, aggregated by price.
// It corresponds to a prefix of the lane's applied-operation log (spec.md
// §8 property 8): every field was read under the lane's exclusion at the
// same logical instant.
type BookSnapshot struct {
	Ticker string      `json:"ticker"`
	Bids   []LevelView `json:"bids"`
	Asks   []LevelView `json:"asks"`
	AsOf   time.Time   `json:"as_of"`
}

// TradeView is one trade as exposed to query/stream consumers.
type TradeView struct {
	TradeID     uuid.UUID       `json:"trade_id"`
	Price       decimal.Decimal `json:"price"`
	Quantity    uint64          `json:"quantity"`
	ExecutedAt  time.Time       `json:"execution_timestamp"`
	BuyOrderID  uuid.UUID       `json:"bid_order_id"`
	SellOrderID uuid.UUID       `json:"ask_order_id"`
}

// TradeSnapshot is the most recent N trades, bounded suffix per spec.md
// §4.5.
type TradeSnapshot struct {
	Ticker string      `json:"ticker"`
	Trades []TradeView `json:"trades"`
	AsOf   time.Time   `json:"as_of"`
}
