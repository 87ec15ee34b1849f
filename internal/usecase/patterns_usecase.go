package usecase

import (
	"context"
	"fmt"
	"time"

	"GoldDesk/internal/domain/models"
	drepo "GoldDesk/internal/domain/repository"
	"GoldDesk/internal/services/patterns"
	"GoldDesk/pkg/logger"
)

// SimilarResult pairs the ranked neighbors with the cohort statistics of
// those neighbors.
type SimilarResult struct {
	TradeID   string               `json:"trade_id"`
	Neighbors []models.Neighbor    `json:"neighbors"`
	Trades    []models.TradeSample `json:"trades"`
	Cohort    patterns.Summary     `json:"cohort"`
	Skipped   int                  `json:"skipped_rows"`
}

// PatternsUsecase answers similarity and summary queries over the journal.
type PatternsUsecase struct {
	journal drepo.JournalStore
	metrics drepo.Metrics
	log     *logger.Logger
}

func NewPatternsUsecase(journal drepo.JournalStore, metrics drepo.Metrics, log *logger.Logger) *PatternsUsecase {
	return &PatternsUsecase{journal: journal, metrics: metrics, log: log}
}

const journalScanLimit = 2000

// Similar ranks the journal against one target trade.
func (u *PatternsUsecase) Similar(ctx context.Context, req *models.SimilarRequest) (*SimilarResult, error) {
	trades, err := u.loadTrades(ctx, req.AsiaOnly)
	if err != nil {
		return nil, err
	}

	features, skipped := patterns.Extract(trades, req.DefaultStep)
	neighbors := patterns.Nearest(features, req.TradeID, req.K, nil)
	if neighbors == nil {
		return nil, fmt.Errorf("trade %s not found or not scorable", req.TradeID)
	}

	byID := make(map[string]models.TradeSample, len(trades))
	for _, t := range trades {
		byID[t.TradeID] = t
	}
	featByID := make(map[string]models.TradeFeatures, len(features))
	for _, f := range features {
		featByID[f.TradeID] = f
	}

	cohortTrades := make([]models.TradeSample, 0, len(neighbors))
	cohortFeatures := make([]models.TradeFeatures, 0, len(neighbors))
	for _, n := range neighbors {
		if t, ok := byID[n.TradeID]; ok {
			cohortTrades = append(cohortTrades, t)
		}
		if f, ok := featByID[n.TradeID]; ok {
			cohortFeatures = append(cohortFeatures, f)
		}
	}

	return &SimilarResult{
		TradeID:   req.TradeID,
		Neighbors: neighbors,
		Trades:    cohortTrades,
		Cohort:    patterns.Summarize(cohortFeatures, cohortTrades),
		Skipped:   skipped,
	}, nil
}

// Summarize aggregates the whole journal (optionally Asia hours only).
func (u *PatternsUsecase) Summarize(ctx context.Context, asiaOnly bool, defaultStep float64) (*patterns.Summary, error) {
	trades, err := u.loadTrades(ctx, asiaOnly)
	if err != nil {
		return nil, err
	}
	features, _ := patterns.Extract(trades, defaultStep)
	s := patterns.Summarize(features, trades)
	return &s, nil
}

func (u *PatternsUsecase) loadTrades(ctx context.Context, asiaOnly bool) ([]models.TradeSample, error) {
	start := time.Now()
	trades, err := u.journal.List(ctx, journalScanLimit)
	if err != nil {
		u.metrics.RecordError("patterns_list")
		return nil, fmt.Errorf("list trades: %w", err)
	}
	u.metrics.RecordLatency("patterns_list", time.Since(start).Seconds())

	if !asiaOnly {
		return trades, nil
	}
	kept := trades[:0]
	for _, t := range trades {
		if inAsiaHours(t) {
			kept = append(kept, t)
		}
	}
	return kept, nil
}

// Asia session hours, matching the kill-zone session range.
func inAsiaHours(t models.TradeSample) bool {
	ts := t.LocalTime
	if ts.IsZero() {
		ts = t.TimestampUTC
	}
	h := ts.Hour()
	return h >= 23 || h < 6
}
