package usecase

import (
	"context"
	"fmt"
	"time"

	"GoldDesk/internal/domain/models"
	drepo "GoldDesk/internal/domain/repository"
)

// CandleProcessor routes fetched candles to the configured backend.
type CandleProcessor struct {
	pub     drepo.Publisher
	store   drepo.CandleStore
	metrics drepo.Metrics
	backend string
}

// NewCandleProcessor creates a new CandleProcessor instance.
func NewCandleProcessor(pub drepo.Publisher, store drepo.CandleStore, metrics drepo.Metrics, backend string) *CandleProcessor {
	return &CandleProcessor{pub: pub, store: store, metrics: metrics, backend: backend}
}

// Process processes a single candle and routes it to the configured backend.
func (p *CandleProcessor) Process(ctx context.Context, c *models.Candle) error {
	if c == nil {
		return fmt.Errorf("candle is nil")
	}
	if err := c.Validate(); err != nil {
		p.metrics.RecordError("process_validate")
		return err
	}

	start := time.Now()
	var err error

	switch p.backend {
	case "kafka":
		err = p.pub.Publish(ctx, c)
	case "clickhouse":
		err = p.store.Store(ctx, c)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process")
		return fmt.Errorf("process candle: %w", err)
	}

	p.metrics.RecordCandleStored(p.backend)
	p.metrics.RecordLatency("process", time.Since(start).Seconds())

	return nil
}

// ProcessBatch processes multiple candles in a batch.
func (p *CandleProcessor) ProcessBatch(ctx context.Context, candles []*models.Candle) error {
	if len(candles) == 0 {
		return nil
	}

	start := time.Now()
	var err error

	switch p.backend {
	case "kafka":
		err = p.pub.PublishBatch(ctx, candles)
	case "clickhouse":
		err = p.store.StoreBatch(ctx, candles)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process_batch")
		return fmt.Errorf("process batch: %w", err)
	}

	for range candles {
		p.metrics.RecordCandleStored(p.backend)
	}
	p.metrics.RecordLatency("process_batch", time.Since(start).Seconds())

	return nil
}

// Close closes underlying resources if available.
func (p *CandleProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.store != nil {
		_ = p.store.Close()
	}
}
