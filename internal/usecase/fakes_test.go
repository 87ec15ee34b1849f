package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"GoldDesk/internal/domain/models"
	"GoldDesk/pkg/logger"
)

func testLogger() *logger.Logger {
	l, err := logger.New(&logger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		panic(err)
	}
	return l
}

type fakeMetrics struct {
	mu      sync.Mutex
	stored  map[string]int
	errors  map[string]int
	signals int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{stored: make(map[string]int), errors: make(map[string]int)}
}

func (m *fakeMetrics) RecordCandleStored(backend string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored[backend]++
}

func (m *fakeMetrics) RecordSignalIssued(window, direction string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signals++
}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[kind]++
}

func (m *fakeMetrics) RecordLastPrice(symbol string, price float64) {}
func (m *fakeMetrics) RecordLatency(op string, seconds float64)     {}

type fakePublisher struct {
	published []*models.Candle
	fail      bool
}

func (p *fakePublisher) Publish(ctx context.Context, c *models.Candle) error {
	if p.fail {
		return fmt.Errorf("publish failed")
	}
	p.published = append(p.published, c)
	return nil
}

func (p *fakePublisher) PublishBatch(ctx context.Context, candles []*models.Candle) error {
	if p.fail {
		return fmt.Errorf("publish failed")
	}
	p.published = append(p.published, candles...)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

type fakeCandleStore struct {
	stored []*models.Candle
}

func (s *fakeCandleStore) Init(ctx context.Context) error { return nil }

func (s *fakeCandleStore) Store(ctx context.Context, c *models.Candle) error {
	s.stored = append(s.stored, c)
	return nil
}

func (s *fakeCandleStore) StoreBatch(ctx context.Context, candles []*models.Candle) error {
	s.stored = append(s.stored, candles...)
	return nil
}

func (s *fakeCandleStore) Query(ctx context.Context, from, to time.Time, limit int) ([]models.Candle, error) {
	return nil, nil
}

func (s *fakeCandleStore) Health(ctx context.Context) error { return nil }
func (s *fakeCandleStore) Close() error                     { return nil }

type fakeSnapshotStore struct {
	rows []models.DailySnapshot
}

func (s *fakeSnapshotStore) Init(ctx context.Context) error { return nil }

func (s *fakeSnapshotStore) Upsert(ctx context.Context, rows []models.DailySnapshot) error {
	s.rows = append(s.rows, rows...)
	return nil
}

func (s *fakeSnapshotStore) Fetch(ctx context.Context, fromDate, toDate string) ([]models.DailySnapshot, error) {
	return s.rows, nil
}

func (s *fakeSnapshotStore) Stats(ctx context.Context) (int, string, string, error) {
	if len(s.rows) == 0 {
		return 0, "", "", nil
	}
	return len(s.rows), s.rows[0].TradeDate, s.rows[len(s.rows)-1].TradeDate, nil
}

type fakeJournalStore struct {
	trades map[string]models.TradeSample
	order  []string
}

func newFakeJournalStore() *fakeJournalStore {
	return &fakeJournalStore{trades: make(map[string]models.TradeSample)}
}

func (s *fakeJournalStore) Init(ctx context.Context) error { return nil }

func (s *fakeJournalStore) Upsert(ctx context.Context, t *models.TradeSample) error {
	if _, ok := s.trades[t.TradeID]; !ok {
		s.order = append(s.order, t.TradeID)
	}
	s.trades[t.TradeID] = *t
	return nil
}

func (s *fakeJournalStore) List(ctx context.Context, limit int) ([]models.TradeSample, error) {
	out := make([]models.TradeSample, 0, len(s.order))
	for _, id := range s.order {
		if t, ok := s.trades[id]; ok {
			out = append(out, t)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *fakeJournalStore) Delete(ctx context.Context, tradeID string) error {
	delete(s.trades, tradeID)
	return nil
}

func (s *fakeJournalStore) Count(ctx context.Context) (int, error) { return len(s.trades), nil }

type fakeMarketSource struct {
	candles []models.Candle
	err     error
}

func (f *fakeMarketSource) Fetch(ctx context.Context, from, to time.Time) ([]models.Candle, error) {
	return f.candles, f.err
}

func (f *fakeMarketSource) Latest(ctx context.Context, count int) ([]models.Candle, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.candles) > count {
		return f.candles[len(f.candles)-count:], nil
	}
	return f.candles, nil
}
