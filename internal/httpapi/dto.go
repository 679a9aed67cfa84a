package httpapi

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lumenex/matchbook/internal/domain"
)

// orderDTO is the wire representation of domain.Order (spec.md §6.5:
// decimal prices, canonical-hex ids, ISO-8601 timestamps).
type orderDTO struct {
	ID                uuid.UUID       `json:"id"`
	Side              string          `json:"side"`
	OrderType         string          `json:"order_type"`
	LimitPrice        decimal.Decimal `json:"price"`
	TotalQuantity     uint64          `json:"total_quantity"`
	RemainingQuantity uint64          `json:"remaining_quantity"`
	TradedQuantity    uint64          `json:"traded_quantity"`
	VWAP              decimal.Decimal `json:"vwap"`
	Status            string          `json:"status"`
	Active            bool            `json:"active"`
	OwnerID           *string         `json:"owner_id,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func toOrderDTO(o domain.Order) orderDTO {
	return orderDTO{
		ID:                o.ID,
		Side:              o.Side.String(),
		OrderType:         orderTypeString(o.OrderType),
		LimitPrice:        o.LimitPrice,
		TotalQuantity:     o.TotalQuantity,
		RemainingQuantity: o.RemainingQuantity,
		TradedQuantity:    o.TradedQuantity,
		VWAP:              o.VWAP(),
		Status:            o.Status.String(),
		Active:            o.Active,
		OwnerID:           o.OwnerID,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
}

func orderTypeString(t domain.OrderType) string {
	if t == domain.MarketOrder {
		return "market"
	}
	return "limit"
}

// tradeDTO is the wire representation of domain.Trade.
type tradeDTO struct {
	ID          uuid.UUID       `json:"trade_id"`
	Price       decimal.Decimal `json:"price"`
	Quantity    uint64          `json:"quantity"`
	ExecutedAt  time.Time       `json:"execution_timestamp"`
	BuyOrderID  uuid.UUID       `json:"bid_order_id"`
	SellOrderID uuid.UUID       `json:"ask_order_id"`
	Settled     bool            `json:"settled"`
	SettledAt   *time.Time      `json:"settled_at,omitempty"`
}

func toTradeDTO(t domain.Trade) tradeDTO {
	return tradeDTO{
		ID:          t.ID,
		Price:       t.Price,
		Quantity:    t.Quantity,
		ExecutedAt:  t.ExecutedAt,
		BuyOrderID:  t.BuyOrderID,
		SellOrderID: t.SellOrderID,
		Settled:     t.Settled,
		SettledAt:   t.SettledAt,
	}
}

// placeOrderRequest is the POST /orders/ body.
type placeOrderRequest struct {
	Side     string          `json:"side" binding:"required"`
	Quantity uint64          `json:"quantity" binding:"required"`
	Price    decimal.Decimal `json:"price"`
	OwnerID  *string         `json:"owner_id,omitempty"`
}

func parseSide(s string) (domain.Side, bool) {
	switch s {
	case "buy":
		return domain.Buy, true
	case "sell":
		return domain.Sell, true
	default:
		return domain.Side(0), false
	}
}

// modifyOrderRequest is the PUT /orders/{id}/ body.
type modifyOrderRequest struct {
	Price decimal.Decimal `json:"price" binding:"required"`
}

// orderBookDTO is the GET /orderbook/ response shape.
type orderBookDTO struct {
	Bids []levelDTO `json:"bids"`
	Asks []levelDTO `json:"asks"`
}

type levelDTO struct {
	Price    decimal.Decimal `json:"price"`
	Quantity uint64          `json:"quantity"`
}
