package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lumenex/matchbook/internal/domain"
)

// Driver selects the gorm dialect. Postgres is the production target;
// sqlite is the local/dev/test default — grounded on web3guy0-polybot's
// dual gorm.io/driver/postgres + gorm.io/driver/sqlite wiring.
type Driver string

const (
	SQLite   Driver = "sqlite"
	Postgres Driver = "postgres"
)

// Repository is the write-through persistence sink. It is safe for
// concurrent use; gorm serializes at the *sql.DB connection-pool level.
type Repository struct {
	db  *gorm.DB
	log zerolog.Logger
}

// Open connects to the configured database and runs AutoMigrate for the
// orders/trades relations.
func Open(driver Driver, dsn string, log zerolog.Logger) (*Repository, error) {
	var dialector gorm.Dialector
	switch driver {
	case Postgres:
		dialector = postgres.Open(dsn)
	case SQLite, "":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("storage: open: %w", err)
	}
	if err := db.AutoMigrate(&OrderModel{}, &TradeModel{}); err != nil {
		return nil, fmt.Errorf("storage: migrate: %w", err)
	}
	return &Repository{db: db, log: log.With().Str("component", "storage").Logger()}, nil
}

// retryBackoff bounds the write-behind retry schedule for non-terminal
// order upserts: absorb transient failures, never block the caller.
var retryBackoff = []time.Duration{10 * time.Millisecond, 50 * time.Millisecond, 200 * time.Millisecond}

// UpsertOrderAsync persists a non-terminal status transition in the
// background with bounded retry; failures are logged and the in-memory
// book remains authoritative, per spec.md §7's transient-error policy.
func (r *Repository) UpsertOrderAsync(order domain.Order) {
	go func() {
		var err error
		for attempt := 0; attempt <= len(retryBackoff); attempt++ {
			if attempt > 0 {
				time.Sleep(retryBackoff[attempt-1])
			}
			if err = r.UpsertOrder(context.Background(), &order); err == nil {
				return
			}
		}
		r.log.Error().Err(err).Str("order_id", order.ID.String()).
			Msg("giving up persisting non-terminal order after retries; book remains authoritative")
	}()
}

// UpsertOrder persists order synchronously. Callers on the terminal-state
// path (Fill/Cancel/Reject) should check the returned error and surface it
// to the external caller, per spec.md §7.
func (r *Repository) UpsertOrder(ctx context.Context, order *domain.Order) error {
	m := orderToModel(order)
	return r.db.WithContext(ctx).Save(&m).Error
}

func (r *Repository) GetOrder(ctx context.Context, id uuid.UUID) (domain.Order, error) {
	var m OrderModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id.String()).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Order{}, domain.ErrNotFound
		}
		return domain.Order{}, err
	}
	return modelToOrder(m)
}

// OrderFilter narrows List results; nil/zero fields are unconstrained.
type OrderFilter struct {
	Status   *domain.Status
	Side     *domain.Side
	OwnerID  *string
	Page     int
	PageSize int
}

func (f OrderFilter) normalized() (page, pageSize int) {
	page = f.Page
	if page < 1 {
		page = 1
	}
	pageSize = f.PageSize
	if pageSize < 1 {
		pageSize = 50
	}
	return page, pageSize
}

func (r *Repository) ListOrders(ctx context.Context, f OrderFilter) ([]domain.Order, error) {
	q := r.db.WithContext(ctx).Model(&OrderModel{})
	if f.Status != nil {
		q = q.Where("status = ?", int(*f.Status))
	}
	if f.Side != nil {
		q = q.Where("side = ?", int(*f.Side))
	}
	if f.OwnerID != nil {
		q = q.Where("owner_id = ?", *f.OwnerID)
	}
	page, pageSize := f.normalized()
	q = q.Order("created_at desc").Limit(pageSize).Offset((page - 1) * pageSize)

	var rows []OrderModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Order, 0, len(rows))
	for _, m := range rows {
		o, err := modelToOrder(m)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

// RestingOrders loads every ACTIVE/PARTIALLY_FILLED order for ticker, used
// to rebuild a lane's in-memory book on startup or after a fatal kernel
// invariant violation (spec.md §7's crash-recovery contract).
func (r *Repository) RestingOrders(ctx context.Context, ticker string) ([]domain.Order, error) {
	var rows []OrderModel
	err := r.db.WithContext(ctx).
		Where("ticker = ? AND active = ?", ticker, true).
		Order("created_at asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Order, 0, len(rows))
	for _, m := range rows {
		o, err := modelToOrder(m)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func (r *Repository) InsertTrade(ctx context.Context, trade *domain.Trade) error {
	m := tradeToModel(trade)
	return r.db.WithContext(ctx).Create(&m).Error
}

func (r *Repository) GetTrade(ctx context.Context, id uuid.UUID) (domain.Trade, error) {
	var m TradeModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id.String()).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Trade{}, domain.ErrNotFound
		}
		return domain.Trade{}, err
	}
	return modelToTrade(m)
}

// TradeFilter narrows trade history queries.
type TradeFilter struct {
	Ticker   string
	Page     int
	PageSize int
}

func (r *Repository) ListTrades(ctx context.Context, f TradeFilter) ([]domain.Trade, error) {
	q := r.db.WithContext(ctx).Model(&TradeModel{})
	if f.Ticker != "" {
		q = q.Where("ticker = ?", f.Ticker)
	}
	page := f.Page
	if page < 1 {
		page = 1
	}
	pageSize := f.PageSize
	if pageSize < 1 {
		pageSize = 50
	}
	q = q.Order("executed_at desc").Limit(pageSize).Offset((page - 1) * pageSize)

	var rows []TradeModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Trade, 0, len(rows))
	for _, m := range rows {
		t, err := modelToTrade(m)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// SettleTrade performs the one-shot settlement update. Returns
// domain.ErrStateConflict if the trade is already settled.
func (r *Repository) SettleTrade(ctx context.Context, id uuid.UUID, settledAt time.Time) (domain.Trade, error) {
	trade, err := r.GetTrade(ctx, id)
	if err != nil {
		return domain.Trade{}, err
	}
	if !trade.Settle(settledAt) {
		return domain.Trade{}, domain.ErrStateConflict
	}
	m := tradeToModel(&trade)
	if err := r.db.WithContext(ctx).Model(&TradeModel{}).Where("id = ?", id.String()).
		Updates(map[string]any{"settled": true, "settled_at": m.SettledAt}).Error; err != nil {
		return domain.Trade{}, err
	}
	return trade, nil
}

// Close releases the underlying connection pool, for graceful shutdown and
// for tests that need to force subsequent writes to fail.
func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
