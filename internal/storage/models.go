// Package storage is the write-through persistence sink (C7): it is the
// source of truth for terminal data and trade history, but never for the
// live book — the in-memory lane (internal/lane) owns that while the
// process runs, per spec.md §9's redesign away from "per-instance ORM rows
// as live book elements".
//
// Grounded on web3guy0-polybot's gorm usage (models, AutoMigrate, driver
// selection) and lightsgoout-go-quantcup's db.go schema/upsert shape,
// translated from raw SQL to gorm models.
package storage

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lumenex/matchbook/internal/domain"
)

// OrderModel is the gorm row shape for the orders relation. Required
// indexes per spec.md §6: status, owner_id.
type OrderModel struct {
	ID                string `gorm:"primaryKey;size:36"`
	Ticker            string `gorm:"size:16;index"`
	Side              int
	OrderType         int
	LimitPrice        string `gorm:"size:32"`
	TotalQuantity     uint64
	RemainingQuantity uint64
	TradedQuantity    uint64
	TradedNotional    string `gorm:"size:48"`
	Status            int    `gorm:"index"`
	Active            bool
	OwnerID           *string `gorm:"size:128;index"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (OrderModel) TableName() string { return "orders" }

// TradeModel is the gorm row shape for the trades relation. Required
// index per spec.md §6: execution_timestamp desc.
type TradeModel struct {
	ID          string `gorm:"primaryKey;size:36"`
	Ticker      string `gorm:"size:16;index"`
	Price       string `gorm:"size:32"`
	Quantity    uint64
	BuyOrderID  string `gorm:"size:36;index"`
	SellOrderID string `gorm:"size:36;index"`
	ExecutedAt  time.Time `gorm:"index:,sort:desc"`
	Settled     bool
	SettledAt   *time.Time
}

func (TradeModel) TableName() string { return "trades" }

func orderToModel(o *domain.Order) OrderModel {
	return OrderModel{
		ID:                o.ID.String(),
		Ticker:            o.Ticker,
		Side:              int(o.Side),
		OrderType:         int(o.OrderType),
		LimitPrice:        o.LimitPrice.String(),
		TotalQuantity:     o.TotalQuantity,
		RemainingQuantity: o.RemainingQuantity,
		TradedQuantity:    o.TradedQuantity,
		TradedNotional:    o.TradedNotional.String(),
		Status:            int(o.Status),
		Active:            o.Active,
		OwnerID:           o.OwnerID,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
}

func modelToOrder(m OrderModel) (domain.Order, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return domain.Order{}, err
	}
	price, err := decimal.NewFromString(m.LimitPrice)
	if err != nil {
		return domain.Order{}, err
	}
	notional, err := decimal.NewFromString(m.TradedNotional)
	if err != nil {
		return domain.Order{}, err
	}
	return domain.Order{
		ID:                id,
		Ticker:            m.Ticker,
		Side:              domain.Side(m.Side),
		OrderType:         domain.OrderType(m.OrderType),
		LimitPrice:        price,
		TotalQuantity:     m.TotalQuantity,
		RemainingQuantity: m.RemainingQuantity,
		TradedQuantity:    m.TradedQuantity,
		TradedNotional:    notional,
		Status:            domain.Status(m.Status),
		Active:            m.Active,
		OwnerID:           m.OwnerID,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}, nil
}

func tradeToModel(t *domain.Trade) TradeModel {
	return TradeModel{
		ID:          t.ID.String(),
		Ticker:      t.Ticker,
		Price:       t.Price.String(),
		Quantity:    t.Quantity,
		BuyOrderID:  t.BuyOrderID.String(),
		SellOrderID: t.SellOrderID.String(),
		ExecutedAt:  t.ExecutedAt,
		Settled:     t.Settled,
		SettledAt:   t.SettledAt,
	}
}

func modelToTrade(m TradeModel) (domain.Trade, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return domain.Trade{}, err
	}
	price, err := decimal.NewFromString(m.Price)
	if err != nil {
		return domain.Trade{}, err
	}
	buyID, err := uuid.Parse(m.BuyOrderID)
	if err != nil {
		return domain.Trade{}, err
	}
	sellID, err := uuid.Parse(m.SellOrderID)
	if err != nil {
		return domain.Trade{}, err
	}
	return domain.Trade{
		ID:          id,
		Ticker:      m.Ticker,
		Price:       price,
		Quantity:    m.Quantity,
		BuyOrderID:  buyID,
		SellOrderID: sellID,
		ExecutedAt:  m.ExecutedAt,
		Settled:     m.Settled,
		SettledAt:   m.SettledAt,
	}, nil
}
