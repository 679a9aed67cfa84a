package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/lumenex/matchbook/internal/domain"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared&_busy_timeout=5000"
	repo, err := Open(SQLite, dsn, zerolog.Nop())
	require.NoError(t, err)
	return repo
}

func sampleOrder() *domain.Order {
	now := time.Now()
	return &domain.Order{
		ID:                uuid.New(),
		Ticker:            "EQUITY",
		Side:              domain.Buy,
		OrderType:         domain.LimitOrder,
		LimitPrice:        decimal.RequireFromString("100.00"),
		TotalQuantity:     10,
		RemainingQuantity: 10,
		TradedNotional:    decimal.Zero,
		Status:            domain.Active,
		Active:            true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func TestRepository_UpsertThenGetOrder(t *testing.T) {
	repo := newTestRepository(t)
	order := sampleOrder()

	require.NoError(t, repo.UpsertOrder(context.Background(), order))

	got, err := repo.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, order.ID, got.ID)
	require.True(t, got.LimitPrice.Equal(order.LimitPrice))
	require.Equal(t, order.RemainingQuantity, got.RemainingQuantity)
}

func TestRepository_GetOrder_UnknownIDReturnsNotFound(t *testing.T) {
	repo := newTestRepository(t)
	_, err := repo.GetOrder(context.Background(), uuid.New())
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRepository_RestingOrdersOnlyReturnsActive(t *testing.T) {
	repo := newTestRepository(t)

	resting := sampleOrder()
	require.NoError(t, repo.UpsertOrder(context.Background(), resting))

	terminal := sampleOrder()
	terminal.Active = false
	terminal.Status = domain.Filled
	require.NoError(t, repo.UpsertOrder(context.Background(), terminal))

	rows, err := repo.RestingOrders(context.Background(), "EQUITY")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, resting.ID, rows[0].ID)
}

func TestRepository_SettleTrade_IsOneShot(t *testing.T) {
	repo := newTestRepository(t)
	trade := &domain.Trade{
		ID:          uuid.New(),
		Ticker:      "EQUITY",
		Price:       decimal.RequireFromString("100.00"),
		Quantity:    5,
		BuyOrderID:  uuid.New(),
		SellOrderID: uuid.New(),
		ExecutedAt:  time.Now(),
	}
	require.NoError(t, repo.InsertTrade(context.Background(), trade))

	settled, err := repo.SettleTrade(context.Background(), trade.ID, time.Now())
	require.NoError(t, err)
	require.True(t, settled.Settled)

	_, err = repo.SettleTrade(context.Background(), trade.ID, time.Now())
	require.ErrorIs(t, err, domain.ErrStateConflict)
}
