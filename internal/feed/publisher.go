package feed

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lumenex/matchbook/internal/domain"
)

const (
	// DefaultDepth is the default number of price levels per side in a
	// book snapshot (spec.md §4.5).
	DefaultDepth = 5
	// DefaultInterval is the default snapshot cadence (spec.md §4.5).
	DefaultInterval = time.Second
	// recentTradesCap bounds the trade-snapshot ring buffer.
	recentTradesCap = 500
)

// BookReader is satisfied by internal/lane.Lane: it produces a
// lane-consistent snapshot of the current book, never an interleaving that
// exposes a partially-applied match.
type BookReader func(depth int) BookSnapshot

// Publisher fans a single instrument's periodic book/trade snapshots out
// to any number of subscribers. It is suppressed (does no work) whenever
// it has no subscribers, per spec.md §4.5's cadence contract.
type Publisher struct {
	ticker   string
	depth    int
	interval time.Duration
	readBook BookReader
	log      zerolog.Logger

	mu        sync.Mutex
	nextSubID int
	bookSubs  map[int]chan BookSnapshot
	tradeSubs map[int]chan TradeSnapshot

	tradesMu     sync.Mutex
	recentTrades []domain.Trade
	sinceLastRun int // index into recentTrades of the first unpublished trade
}

// New constructs a publisher for ticker, snapshotting depth price levels
// per side. A depth <= 0 falls back to DefaultDepth. readBook must return a
// lane-consistent snapshot (see internal/lane.Lane.Snapshot).
func New(ticker string, depth int, readBook BookReader, log zerolog.Logger) *Publisher {
	if depth <= 0 {
		depth = DefaultDepth
	}
	return &Publisher{
		ticker:    ticker,
		depth:     depth,
		interval:  DefaultInterval,
		readBook:  readBook,
		log:       log.With().Str("component", "feed").Str("ticker", ticker).Logger(),
		bookSubs:  make(map[int]chan BookSnapshot),
		tradeSubs: make(map[int]chan TradeSnapshot),
	}
}

// RecordTrades appends newly matched trades to the recent-trade window.
// Called by the lane immediately after a successful match, before the
// caller is acknowledged.
func (p *Publisher) RecordTrades(trades []domain.Trade) {
	if len(trades) == 0 {
		return
	}
	p.tradesMu.Lock()
	defer p.tradesMu.Unlock()
	p.recentTrades = append(p.recentTrades, trades...)
	if overflow := len(p.recentTrades) - recentTradesCap; overflow > 0 {
		p.recentTrades = p.recentTrades[overflow:]
		p.sinceLastRun -= overflow
		if p.sinceLastRun < 0 {
			p.sinceLastRun = 0
		}
	}
}

// SubscribeBook registers a new book-feed subscriber and returns its
// channel and an unsubscribe function.
func (p *Publisher) SubscribeBook() (<-chan BookSnapshot, func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextSubID
	p.nextSubID++
	ch := make(chan BookSnapshot, 4)
	p.bookSubs[id] = ch
	return ch, func() { p.unsubscribeBook(id) }
}

func (p *Publisher) unsubscribeBook(id int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ch, ok := p.bookSubs[id]; ok {
		delete(p.bookSubs, id)
		close(ch)
	}
}

// SubscribeTrades registers a new trade-feed subscriber.
func (p *Publisher) SubscribeTrades() (<-chan TradeSnapshot, func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextSubID
	p.nextSubID++
	ch := make(chan TradeSnapshot, 4)
	p.tradeSubs[id] = ch
	return ch, func() { p.unsubscribeTrades(id) }
}

func (p *Publisher) unsubscribeTrades(id int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ch, ok := p.tradeSubs[id]; ok {
		delete(p.tradeSubs, id)
		close(ch)
	}
}

func (p *Publisher) subscriberCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.bookSubs) + len(p.tradeSubs)
}

// Run drives the fixed-cadence publish loop until stop is closed. It is a
// no-op on ticks where there are no subscribers attached.
func (p *Publisher) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if p.subscriberCount() == 0 {
				continue
			}
			p.publishOnce()
		}
	}
}

func (p *Publisher) publishOnce() {
	now := time.Now()

	snap := p.readBook(p.depth)
	p.mu.Lock()
	for _, ch := range p.bookSubs {
		select {
		case ch <- snap:
		default:
			p.log.Warn().Msg("book feed subscriber too slow; dropping snapshot")
		}
	}
	p.mu.Unlock()

	tradeSnap := p.drainTradeWindow(now)
	if len(tradeSnap.Trades) == 0 {
		return
	}
	p.mu.Lock()
	for _, ch := range p.tradeSubs {
		select {
		case ch <- tradeSnap:
		default:
			p.log.Warn().Msg("trade feed subscriber too slow; dropping snapshot")
		}
	}
	p.mu.Unlock()
}

func (p *Publisher) drainTradeWindow(now time.Time) TradeSnapshot {
	p.tradesMu.Lock()
	defer p.tradesMu.Unlock()

	fresh := p.recentTrades[p.sinceLastRun:]
	views := make([]TradeView, len(fresh))
	for i, t := range fresh {
		views[i] = TradeView{
			TradeID:     t.ID,
			Price:       t.Price,
			Quantity:    t.Quantity,
			ExecutedAt:  t.ExecutedAt,
			BuyOrderID:  t.BuyOrderID,
			SellOrderID: t.SellOrderID,
		}
	}
	p.sinceLastRun = len(p.recentTrades)
	return TradeSnapshot{Ticker: p.ticker, Trades: views, AsOf: now}
}

// RecentTrades returns up to n of the most recently recorded trades,
// newest last (all of the retained window when n <= 0). The REST trade
// endpoints read from storage, not from this window.
func (p *Publisher) RecentTrades(n int) []domain.Trade {
	p.tradesMu.Lock()
	defer p.tradesMu.Unlock()
	if n <= 0 || n > len(p.recentTrades) {
		n = len(p.recentTrades)
	}
	out := make([]domain.Trade, n)
	copy(out, p.recentTrades[len(p.recentTrades)-n:])
	return out
}
