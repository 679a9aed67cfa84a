package lane

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	tomb "gopkg.in/tomb.v2"

	"github.com/lumenex/matchbook/internal/domain"
	"github.com/lumenex/matchbook/internal/metrics"
	"github.com/lumenex/matchbook/internal/storage"
)

// Controller owns one Lane per configured instrument and is the seam the
// external layers (internal/httpapi, internal/wsapi, cmd/server) talk to.
// The HTTP/WS contracts in spec.md §6 name no instrument field on any
// request — the book is single-instrument at the wire boundary, per
// spec.md's Non-goals — so Controller routes every request to its primary
// lane while still keeping the door open, internally, to more than one.
type Controller struct {
	lanes   map[string]*Lane
	primary string
	store   *storage.Repository
	tomb    *tomb.Tomb
	log     zerolog.Logger
}

// New constructs a Controller with one lane per ticker, each publishing
// book snapshots snapshotDepth levels deep per side. tickers must be
// non-empty; the first entry is the primary instrument served over HTTP/WS.
func New(tickers []string, snapshotDepth int, store *storage.Repository, m *metrics.Metrics, log zerolog.Logger) (*Controller, error) {
	if len(tickers) == 0 {
		return nil, fmt.Errorf("lane: at least one ticker is required")
	}
	c := &Controller{
		lanes:   make(map[string]*Lane, len(tickers)),
		primary: tickers[0],
		store:   store,
		tomb:    new(tomb.Tomb),
		log:     log.With().Str("component", "lane_controller").Logger(),
	}
	for _, t := range tickers {
		c.lanes[t] = newLane(t, snapshotDepth, store, m, log)
	}
	return c, nil
}

// Start recovers every lane's book from storage and launches its goroutine
// under the controller's supervising tomb.
func (c *Controller) Start(ctx context.Context) error {
	for ticker, l := range c.lanes {
		if err := l.Recover(ctx); err != nil {
			return fmt.Errorf("lane controller: start %s: %w", ticker, err)
		}
		ln := l
		c.tomb.Go(ln.Run)
		c.tomb.Go(func() error {
			stop := make(chan struct{})
			go func() {
				<-c.tomb.Dying()
				close(stop)
			}()
			ln.Publisher().Run(stop)
			return nil
		})
	}
	return nil
}

// Stop signals every lane goroutine and its publisher to exit and waits for
// them to finish.
func (c *Controller) Stop() error {
	c.tomb.Kill(nil)
	return c.tomb.Wait()
}

// Primary returns the controller's default instrument's lane, for wiring
// the WS streaming layer's book/trade subscriptions directly.
func (c *Controller) Primary() *Lane { return c.lanes[c.primary] }

// Place admits a new order onto the primary instrument.
func (c *Controller) Place(ctx context.Context, req PlaceRequest) (domain.Order, []domain.Trade, error) {
	return c.Primary().Place(ctx, req)
}

// Modify re-prices an order resting on the primary instrument.
func (c *Controller) Modify(ctx context.Context, id uuid.UUID, newPrice decimal.Decimal) (domain.Order, []domain.Trade, error) {
	return c.Primary().Modify(ctx, id, newPrice)
}

// Cancel removes an order resting on the primary instrument.
func (c *Controller) Cancel(ctx context.Context, id uuid.UUID) (domain.Order, error) {
	return c.Primary().Cancel(ctx, id)
}

// Query returns an order by id, checking the in-memory resting index first
// and falling back to storage for terminal orders.
func (c *Controller) Query(ctx context.Context, id uuid.UUID) (domain.Order, error) {
	if order, ok := c.Primary().LookupResting(id); ok {
		return order, nil
	}
	return c.store.GetOrder(ctx, id)
}

// ListOrders lists orders from storage, matching f.
func (c *Controller) ListOrders(ctx context.Context, f storage.OrderFilter) ([]domain.Order, error) {
	return c.store.ListOrders(ctx, f)
}

// GetTrade returns a single trade by id.
func (c *Controller) GetTrade(ctx context.Context, id uuid.UUID) (domain.Trade, error) {
	return c.store.GetTrade(ctx, id)
}

// ListTrades lists trades from storage, matching f.
func (c *Controller) ListTrades(ctx context.Context, f storage.TradeFilter) ([]domain.Trade, error) {
	return c.store.ListTrades(ctx, f)
}

// Settle marks a trade settled (spec.md §4.6): a one-shot, idempotency-
// guarded transition with no effect on the book or either order.
func (c *Controller) Settle(ctx context.Context, id uuid.UUID) (domain.Trade, error) {
	return c.store.SettleTrade(ctx, id, time.Now())
}
