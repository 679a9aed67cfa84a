// Package lane implements the book controller (C5): the single logical
// serialization point per instrument through which every Place/Modify/
// Cancel request is ordered before it reaches the matching kernel, plus
// the read paths (Query/List) and the one-shot trade Settle operation.
//
// Grounded on fenrir's internal/net.Server (session dispatch) and
// internal/worker.go (tomb-supervised pool), generalized from "dispatch
// raw TCP frames to one session handler goroutine" to "serialize closures
// from any collaborator (HTTP handler, WS handler, CLI) through one
// goroutine per instrument, submitted over a buffered channel".
package lane

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	tomb "gopkg.in/tomb.v2"

	"github.com/lumenex/matchbook/internal/book"
	"github.com/lumenex/matchbook/internal/domain"
	"github.com/lumenex/matchbook/internal/feed"
	"github.com/lumenex/matchbook/internal/matching"
	"github.com/lumenex/matchbook/internal/metrics"
	"github.com/lumenex/matchbook/internal/storage"
)

const requestQueueCapacity = 256

// Lane owns one instrument's book exclusively: every mutation runs inside
// its single goroutine (Run), so C2/C3 never need their own lock. Reads
// that must be linearizable with the mutation stream (Snapshot, the
// in-memory half of Query) are submitted the same way.
type Lane struct {
	Ticker string

	book    *book.Book
	orders  map[uuid.UUID]*domain.Order // every order currently resting on this instrument
	clock   func() time.Time
	store   *storage.Repository
	pub     *feed.Publisher
	metrics *metrics.Metrics
	log     zerolog.Logger

	reqCh chan func()
}

// newLane constructs a lane for ticker, publishing book snapshots depth
// levels deep per side. Call Run in its own goroutine (e.g. via a tomb)
// before submitting requests. Only Controller constructs lanes.
func newLane(ticker string, depth int, store *storage.Repository, m *metrics.Metrics, log zerolog.Logger) *Lane {
	l := &Lane{
		Ticker:  ticker,
		book:    book.New(ticker),
		orders:  make(map[uuid.UUID]*domain.Order),
		clock:   time.Now,
		store:   store,
		metrics: m,
		log:     log.With().Str("component", "lane").Str("ticker", ticker).Logger(),
		reqCh:   make(chan func(), requestQueueCapacity),
	}
	l.pub = feed.New(ticker, depth, l.Snapshot, log)
	return l
}

// Publisher returns this lane's snapshot publisher, for wiring into the WS
// streaming layer.
func (l *Lane) Publisher() *feed.Publisher { return l.pub }

// Recover rebuilds the in-memory book from persisted ACTIVE/
// PARTIALLY_FILLED orders — used both at startup and after a fatal kernel
// invariant violation (spec.md §7's crash-recovery contract).
func (l *Lane) Recover(ctx context.Context) error {
	resting, err := l.store.RestingOrders(ctx, l.Ticker)
	if err != nil {
		return fmt.Errorf("lane %s: recover: %w", l.Ticker, err)
	}
	l.book = book.New(l.Ticker)
	l.orders = make(map[uuid.UUID]*domain.Order, len(resting))
	for i := range resting {
		o := resting[i]
		l.book.SideFor(o.Side).Insert(&o)
		l.orders[o.ID] = &o
	}
	l.log.Info().Int("resting_orders", len(resting)).Msg("recovered book from storage")
	return nil
}

// Run is the lane's single mutation goroutine. It must be started exactly
// once, e.g. t.Go(lane.Run).
func (l *Lane) Run(t *tomb.Tomb) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case req := <-l.reqCh:
			l.metrics.LaneQueueDepth.WithLabelValues(l.Ticker).Set(float64(len(l.reqCh)))
			l.dispatch(req)
		}
	}
}

// dispatch runs req, recovering the lane's in-memory book from storage if
// req panics (for example with a matching.InvariantViolation) rather than letting a
// kernel bug silently corrupt C2/C3 (spec.md §7's "Fatal" policy). req must
// unconditionally close its own done channel, panic or not, so the caller
// blocked in submit is always woken.
func (l *Lane) dispatch(req func()) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error().Interface("panic", r).
				Msg("fatal invariant violation in matching kernel; rebuilding book from storage")
			if err := l.Recover(context.Background()); err != nil {
				l.log.Error().Err(err).Msg("failed to recover lane after fatal error")
			}
		}
	}()
	req()
}

// submit enqueues fn on the lane and blocks until it has run, returning its
// ack. This is the hand-off point described in spec.md §5: a request may
// wait at lane ingress, but once it is through, it is ordered. done closes
// even if fn panics, so a fatal kernel invariant violation still unblocks
// the waiting caller once dispatch has rebuilt the book.
func (l *Lane) submit(fn func()) {
	done := make(chan struct{})
	l.reqCh <- func() {
		defer close(done)
		fn()
	}
	<-done
}

// Snapshot returns a lane-consistent book snapshot: always produced inside
// the lane goroutine, so it never straddles a partially-applied match.
func (l *Lane) Snapshot(depth int) feed.BookSnapshot {
	var snap feed.BookSnapshot
	l.submit(func() {
		snap = feed.BookSnapshot{
			Ticker: l.Ticker,
			Bids:   levelViews(l.book.Bids.TopN(depth)),
			Asks:   levelViews(l.book.Asks.TopN(depth)),
			AsOf:   l.clock(),
		}
	})
	return snap
}

func levelViews(levels []*book.PriceLevel) []feed.LevelView {
	out := make([]feed.LevelView, len(levels))
	for i, lvl := range levels {
		out[i] = feed.LevelView{Price: lvl.Price, Quantity: lvl.AggregateQuantity}
	}
	return out
}
