package usecase

import (
	"context"
	"time"

	"GoldDesk/internal/domain/models"
	drepo "GoldDesk/internal/domain/repository"
	"GoldDesk/pkg/logger"
)

// SignalSink receives the newest completed candle after it has been
// persisted. The signal usecase implements it.
type SignalSink interface {
	OnCandle(ctx context.Context, c models.Candle)
}

// CandleCollector polls the market source on a fixed interval and hands new
// candles to the processor. Polling replaces streaming because the broker
// REST API only serves completed candles.
type CandleCollector struct {
	source     drepo.MarketSource
	proc       *CandleProcessor
	metrics    drepo.Metrics
	log        *logger.Logger
	sink       SignalSink
	instrument string
	interval   time.Duration

	lastSeen time.Time
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewCandleCollector creates a new CandleCollector instance.
func NewCandleCollector(
	source drepo.MarketSource,
	proc *CandleProcessor,
	metrics drepo.Metrics,
	log *logger.Logger,
	sink SignalSink,
	instrument string,
	interval time.Duration,
) *CandleCollector {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &CandleCollector{
		source:     source,
		proc:       proc,
		metrics:    metrics,
		log:        log,
		sink:       sink,
		instrument: instrument,
		interval:   interval,
	}
}

func (c *CandleCollector) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	go c.poll(runCtx)
	return nil
}

func (c *CandleCollector) poll(ctx context.Context) {
	defer close(c.done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.collect(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.collect(ctx)
		}
	}
}

func (c *CandleCollector) collect(ctx context.Context) {
	candles, err := c.source.Latest(ctx, 50)
	if err != nil {
		c.metrics.RecordError("collect")
		c.log.Warn("collector fetch failed", logger.Error(err))
		return
	}

	fresh := make([]*models.Candle, 0, len(candles))
	for i := range candles {
		if !candles[i].Time.After(c.lastSeen) {
			continue
		}
		fresh = append(fresh, &candles[i])
	}
	if len(fresh) == 0 {
		return
	}

	if err := c.proc.ProcessBatch(ctx, fresh); err != nil {
		c.log.Warn("collector process failed", logger.Error(err))
		return
	}

	last := fresh[len(fresh)-1]
	c.lastSeen = last.Time
	c.metrics.RecordLastPrice(c.instrument, last.Close)
	if c.sink != nil {
		c.sink.OnCandle(ctx, *last)
	}
}

// Processor returns the underlying CandleProcessor for lifecycle management.
func (c *CandleCollector) Processor() *CandleProcessor { return c.proc }

// Shutdown stops the poll loop and waits for the in-flight cycle.
func (c *CandleCollector) Shutdown(ctx context.Context) error {
	if c.cancel == nil {
		return nil
	}
	c.cancel()
	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
