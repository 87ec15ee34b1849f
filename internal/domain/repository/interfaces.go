package repository

import (
	"context"
	"time"

	"GoldDesk/internal/domain/models"
)

// MarketSource supplies already-fetched, time-ordered, deduplicated candles.
type MarketSource interface {
	Fetch(ctx context.Context, from, to time.Time) ([]models.Candle, error)
	Latest(ctx context.Context, count int) ([]models.Candle, error)
}

// Publisher moves candles onto the transport (Kafka topic or direct store).
type Publisher interface {
	Publish(ctx context.Context, c *models.Candle) error
	PublishBatch(ctx context.Context, candles []*models.Candle) error
	Close() error
}

// CandleStore persists raw intraday candles.
type CandleStore interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Store(ctx context.Context, c *models.Candle) error
	StoreBatch(ctx context.Context, candles []*models.Candle) error
	Query(ctx context.Context, from, to time.Time, limit int) ([]models.Candle, error)
	Health(ctx context.Context) error // ping
	Close() error
}

// SnapshotStore persists one row per trading day. Upsert semantics keyed by
// trade date.
type SnapshotStore interface {
	Init(ctx context.Context) error
	Upsert(ctx context.Context, rows []models.DailySnapshot) error
	Fetch(ctx context.Context, fromDate, toDate string) ([]models.DailySnapshot, error)
	Stats(ctx context.Context) (count int, minDate, maxDate string, err error)
}

// JournalStore persists trade samples keyed by trade id.
type JournalStore interface {
	Init(ctx context.Context) error
	Upsert(ctx context.Context, t *models.TradeSample) error
	List(ctx context.Context, limit int) ([]models.TradeSample, error)
	Delete(ctx context.Context, tradeID string) error
	Count(ctx context.Context) (int, error)
}

// Metrics is the domain instrumentation surface.
type Metrics interface {
	RecordCandleStored(backend string)
	RecordSignalIssued(window, direction string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
