package usecase

import (
	"context"
	"fmt"
	"time"

	"GoldDesk/internal/domain/models"
	drepo "GoldDesk/internal/domain/repository"
	"GoldDesk/pkg/logger"
)

// JournalUsecase manages the journaled trade samples behind the patterns
// engine.
type JournalUsecase struct {
	store   drepo.JournalStore
	metrics drepo.Metrics
	log     *logger.Logger
}

func NewJournalUsecase(store drepo.JournalStore, metrics drepo.Metrics, log *logger.Logger) *JournalUsecase {
	return &JournalUsecase{store: store, metrics: metrics, log: log}
}

// Upsert stores one trade sample, replacing any existing row with the same
// trade id.
func (u *JournalUsecase) Upsert(ctx context.Context, req *models.UpsertTradeRequest) (*models.TradeSample, error) {
	ts, err := time.Parse(time.RFC3339, req.TimestampUTC)
	if err != nil {
		return nil, fmt.Errorf("parse timestamp_utc: %w", err)
	}
	var local time.Time
	if req.LocalTime != "" {
		local, err = time.Parse(time.RFC3339, req.LocalTime)
		if err != nil {
			return nil, fmt.Errorf("parse local_time: %w", err)
		}
	}

	dir, err := models.ParseDirection(req.Direction)
	if err != nil {
		return nil, err
	}

	sample := &models.TradeSample{
		TradeID:      req.TradeID,
		TimestampUTC: ts.UTC(),
		LocalTime:    local,
		Symbol:       req.Symbol,
		Direction:    dir,
		Timeframe:    req.Timeframe,
		Entry:        req.Entry,
		Stop:         req.Stop,
		Target:       req.Target,
		LevelValue:   req.LevelValue,
		LevelKind:    models.ParseLevelKind(req.LevelKind),
		LevelStep:    req.LevelStep,
		Touched:      req.Touched,
		Rejection:    req.Rejection,
		Confirmation: req.Confirmation,
		ATR:          req.ATR,
		ResultR:      req.ResultR,
		Notes:        req.Notes,
	}

	start := time.Now()
	if err := u.store.Upsert(ctx, sample); err != nil {
		u.metrics.RecordError("journal_upsert")
		return nil, fmt.Errorf("upsert trade: %w", err)
	}
	u.metrics.RecordLatency("journal_upsert", time.Since(start).Seconds())
	u.log.Info("trade journaled", logger.String("trade_id", sample.TradeID))
	return sample, nil
}

// List returns the newest trades first.
func (u *JournalUsecase) List(ctx context.Context, limit int) ([]models.TradeSample, error) {
	trades, err := u.store.List(ctx, limit)
	if err != nil {
		u.metrics.RecordError("journal_list")
		return nil, fmt.Errorf("list trades: %w", err)
	}
	return trades, nil
}

// Delete removes one trade by id.
func (u *JournalUsecase) Delete(ctx context.Context, tradeID string) error {
	if tradeID == "" {
		return fmt.Errorf("trade id is required")
	}
	if err := u.store.Delete(ctx, tradeID); err != nil {
		u.metrics.RecordError("journal_delete")
		return fmt.Errorf("delete trade: %w", err)
	}
	u.log.Info("trade deleted", logger.String("trade_id", tradeID))
	return nil
}

// Count reports the journal size.
func (u *JournalUsecase) Count(ctx context.Context) (int, error) {
	return u.store.Count(ctx)
}
