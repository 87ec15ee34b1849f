package usecase

import (
	"context"
	"fmt"
	"time"

	"GoldDesk/internal/domain/models"
	drepo "GoldDesk/internal/domain/repository"
	"GoldDesk/internal/services/killzone"
	"GoldDesk/internal/services/volatility"
	"GoldDesk/pkg/logger"
)

// SnapshotBuilderConfig describes how daily rows are anchored. With UseUTC
// the anchor time-of-day is matched in UTC, which keeps days comparable
// across DST changes. Otherwise the anchor is matched in Location.
type SnapshotBuilderConfig struct {
	Instrument  string
	Granularity string
	Anchor      killzone.TimeOfDay
	UseUTC      bool
	Location    *time.Location
	Years       int
}

// BuildReport summarizes one rebuild run.
type BuildReport struct {
	Candles int      `json:"candles"`
	Days    int      `json:"days"`
	Notes   []string `json:"notes"`
}

// SnapshotBuilder recomputes the daily Asia-open table from raw intraday
// candles. Each run fetches the full lookback and upserts every day, so a
// rebuild is idempotent.
type SnapshotBuilder struct {
	source  drepo.MarketSource
	store   drepo.SnapshotStore
	metrics drepo.Metrics
	log     *logger.Logger
	cfg     SnapshotBuilderConfig
}

func NewSnapshotBuilder(
	source drepo.MarketSource,
	store drepo.SnapshotStore,
	metrics drepo.Metrics,
	log *logger.Logger,
	cfg SnapshotBuilderConfig,
) *SnapshotBuilder {
	if cfg.Years <= 0 {
		cfg.Years = 5
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &SnapshotBuilder{source: source, store: store, metrics: metrics, log: log, cfg: cfg}
}

// candle counts for the post-open aggregate windows on M5 data
const (
	h1Candles = 12
	h3Candles = 36
)

// Rebuild fetches the lookback window, rebuilds every daily row and upserts
// the result. Years and anchor override the configured defaults when set.
func (b *SnapshotBuilder) Rebuild(ctx context.Context, years int, anchor *killzone.TimeOfDay) (*BuildReport, error) {
	cfg := b.cfg
	if years > 0 {
		cfg.Years = years
	}
	if anchor != nil {
		cfg.Anchor = *anchor
	}

	now := time.Now().UTC()
	from := now.AddDate(0, 0, -(365*cfg.Years + 30))

	start := time.Now()
	candles, err := b.source.Fetch(ctx, from, now)
	if err != nil {
		b.metrics.RecordError("rebuild_fetch")
		return nil, fmt.Errorf("fetch candles: %w", err)
	}
	b.metrics.RecordLatency("rebuild_fetch", time.Since(start).Seconds())

	report := &BuildReport{Candles: len(candles)}
	if len(candles) == 0 {
		report.Notes = append(report.Notes, "no candles returned; check API key and instrument")
		return report, nil
	}

	rows, notes := b.buildRows(candles, cfg)
	report.Notes = append(report.Notes, notes...)
	report.Days = len(rows)
	if len(rows) == 0 {
		return report, nil
	}

	if err := b.store.Upsert(ctx, rows); err != nil {
		b.metrics.RecordError("rebuild_upsert")
		return nil, fmt.Errorf("upsert snapshots: %w", err)
	}
	b.log.Info("snapshot rebuild complete",
		logger.Int("days", len(rows)),
		logger.Int("candles", len(candles)))
	return report, nil
}

func (b *SnapshotBuilder) buildRows(candles []models.Candle, cfg SnapshotBuilderConfig) ([]models.DailySnapshot, []string) {
	var notes []string

	loc := time.UTC
	if !cfg.UseUTC {
		loc = cfg.Location
	}

	bars, skipped := volatility.AggregateDaily(candles, loc)
	if skipped > 0 {
		notes = append(notes, fmt.Sprintf("skipped %d malformed candles", skipped))
	}
	atr14 := volatility.FromDailyBars(bars)
	if len(atr14) == 0 {
		notes = append(notes, "ATR14 unavailable; need at least 14 days of history")
	}

	// One anchor candle per trade date. A DST fallback can produce two local
	// occurrences of the anchor time; the first one wins.
	type anchorHit struct {
		tradeDate string
		index     int
		openUTC   time.Time
	}
	var hits []anchorHit
	seen := make(map[string]bool)
	for i, c := range candles {
		lt := c.Time.In(loc)
		if lt.Hour() != cfg.Anchor.Hour || lt.Minute() != cfg.Anchor.Minute {
			continue
		}
		tradeDate := lt.Format("2006-01-02")
		if seen[tradeDate] {
			continue
		}
		seen[tradeDate] = true
		hits = append(hits, anchorHit{tradeDate: tradeDate, index: i, openUTC: c.Time.UTC()})
	}
	if len(hits) == 0 {
		basis := "UTC"
		if !cfg.UseUTC {
			basis = cfg.Location.String()
		}
		notes = append(notes, fmt.Sprintf("no candles at %s (%s); check granularity", cfg.Anchor.String(), basis))
		return nil, notes
	}

	mode := "utc"
	tzName := "UTC"
	if !cfg.UseUTC {
		mode = "local"
		tzName = cfg.Location.String()
	}
	source := fmt.Sprintf("oanda:%s:%s:%s:%s:%02d%02d",
		cfg.Instrument, cfg.Granularity, mode, tzName, cfg.Anchor.Hour, cfg.Anchor.Minute)

	rows := make([]models.DailySnapshot, 0, len(hits))
	for _, hit := range hits {
		if hit.index+h3Candles-1 >= len(candles) {
			continue
		}
		h1 := candles[hit.index : hit.index+h1Candles]
		h3 := candles[hit.index : hit.index+h3Candles]

		row := models.DailySnapshot{
			TradeDate: hit.tradeDate,
			OpenTime:  hit.openUTC.Format(time.RFC3339),
			Open:      candles[hit.index].Open,
			H1High:    ptr(windowHigh(h1)),
			H1Low:     ptr(windowLow(h1)),
			H1Close:   ptr(h1[len(h1)-1].Close),
			H3High:    ptr(windowHigh(h3)),
			H3Low:     ptr(windowLow(h3)),
			H3Close:   ptr(h3[len(h3)-1].Close),
			Source:    source,
		}
		if a, ok := atr14[hit.tradeDate]; ok {
			row.ATR14 = ptr(a)
		}
		rows = append(rows, row)
	}

	if len(rows) < 300 {
		notes = append(notes, "fewer than 300 days generated; verify the download covers the full lookback")
	}
	return rows, notes
}

// Stats reports the persisted snapshot coverage.
func (b *SnapshotBuilder) Stats(ctx context.Context) (count int, minDate, maxDate string, err error) {
	return b.store.Stats(ctx)
}

func windowHigh(candles []models.Candle) float64 {
	v := candles[0].High
	for _, c := range candles[1:] {
		if c.High > v {
			v = c.High
		}
	}
	return v
}

func windowLow(candles []models.Candle) float64 {
	v := candles[0].Low
	for _, c := range candles[1:] {
		if c.Low < v {
			v = c.Low
		}
	}
	return v
}

func ptr(v float64) *float64 { return &v }
