package feed

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/lumenex/matchbook/internal/domain"
)

func emptyBook(depth int) BookSnapshot {
	return BookSnapshot{Ticker: "EQUITY", AsOf: time.Now()}
}

func TestPublisher_SkipsTicksWithNoSubscribers(t *testing.T) {
	calls := 0
	reader := func(depth int) BookSnapshot {
		calls++
		return emptyBook(depth)
	}
	p := New("EQUITY", 5, reader, zerolog.Nop())
	p.interval = 10 * time.Millisecond

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() { p.Run(stop); close(done) }()
	time.Sleep(50 * time.Millisecond)
	close(stop)
	<-done

	require.Zero(t, calls, "publisher must not read the book while it has no subscribers")
}

func TestPublisher_DeliversSnapshotOnceSubscribed(t *testing.T) {
	p := New("EQUITY", 5, emptyBook, zerolog.Nop())
	p.interval = 5 * time.Millisecond

	ch, unsub := p.SubscribeBook()
	defer unsub()

	stop := make(chan struct{})
	defer close(stop)
	go p.Run(stop)

	select {
	case snap := <-ch:
		require.Equal(t, "EQUITY", snap.Ticker)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a book snapshot")
	}
}

func TestPublisher_RecordTradesAreDrainedOnce(t *testing.T) {
	p := New("EQUITY", 5, emptyBook, zerolog.Nop())
	p.interval = 5 * time.Millisecond

	ch, unsub := p.SubscribeTrades()
	defer unsub()

	trade := domain.Trade{
		ID:          uuid.New(),
		Ticker:      "EQUITY",
		Price:       decimal.RequireFromString("100.00"),
		Quantity:    3,
		BuyOrderID:  uuid.New(),
		SellOrderID: uuid.New(),
		ExecutedAt:  time.Now(),
	}
	p.RecordTrades([]domain.Trade{trade})

	stop := make(chan struct{})
	defer close(stop)
	go p.Run(stop)

	select {
	case snap := <-ch:
		require.Len(t, snap.Trades, 1)
		require.Equal(t, trade.ID, snap.Trades[0].TradeID)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a trade snapshot")
	}

	recent := p.RecentTrades(10)
	require.Len(t, recent, 1)
}

func TestPublisher_RecentTradesCapBounds(t *testing.T) {
	p := New("EQUITY", 5, emptyBook, zerolog.Nop())
	for i := 0; i < recentTradesCap+10; i++ {
		p.RecordTrades([]domain.Trade{{
			ID:          uuid.New(),
			Ticker:      "EQUITY",
			Price:       decimal.RequireFromString("1.00"),
			Quantity:    1,
			BuyOrderID:  uuid.New(),
			SellOrderID: uuid.New(),
			ExecutedAt:  time.Now(),
		}})
	}
	require.Len(t, p.RecentTrades(0), recentTradesCap)
}
