package usecase

import (
	"context"
	"testing"
	"time"

	"GoldDesk/internal/domain/models"
)

func testCandle(price float64) *models.Candle {
	return &models.Candle{
		Time:  time.Date(2025, 6, 1, 3, 0, 0, 0, time.UTC),
		Open:  price,
		High:  price,
		Low:   price,
		Close: price,
	}
}

func TestProcessRoutesToKafka(t *testing.T) {
	pub := &fakePublisher{}
	store := &fakeCandleStore{}
	m := newFakeMetrics()
	p := NewCandleProcessor(pub, store, m, "kafka")

	if err := p.Process(context.Background(), testCandle(2000)); err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(pub.published) != 1 || len(store.stored) != 0 {
		t.Fatalf("expected kafka routing, got pub=%d store=%d", len(pub.published), len(store.stored))
	}
	if m.stored["kafka"] != 1 {
		t.Fatalf("expected stored metric for kafka, got %v", m.stored)
	}
}

func TestProcessRoutesToClickHouse(t *testing.T) {
	pub := &fakePublisher{}
	store := &fakeCandleStore{}
	m := newFakeMetrics()
	p := NewCandleProcessor(pub, store, m, "clickhouse")

	batch := []*models.Candle{testCandle(2000), testCandle(2001)}
	if err := p.ProcessBatch(context.Background(), batch); err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if len(store.stored) != 2 || len(pub.published) != 0 {
		t.Fatalf("expected clickhouse routing, got pub=%d store=%d", len(pub.published), len(store.stored))
	}
	if m.stored["clickhouse"] != 2 {
		t.Fatalf("expected 2 stored metrics, got %v", m.stored)
	}
}

func TestProcessUnknownBackend(t *testing.T) {
	p := NewCandleProcessor(&fakePublisher{}, &fakeCandleStore{}, newFakeMetrics(), "postgres")
	if err := p.Process(context.Background(), testCandle(2000)); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestProcessRejectsMalformedCandle(t *testing.T) {
	m := newFakeMetrics()
	p := NewCandleProcessor(&fakePublisher{}, &fakeCandleStore{}, m, "kafka")

	bad := testCandle(2000)
	bad.High = 1990 // below low
	if err := p.Process(context.Background(), bad); err == nil {
		t.Fatal("expected validation error")
	}
	if m.errors["process_validate"] != 1 {
		t.Fatalf("expected validation error metric, got %v", m.errors)
	}
}

func TestProcessNilCandle(t *testing.T) {
	p := NewCandleProcessor(&fakePublisher{}, &fakeCandleStore{}, newFakeMetrics(), "kafka")
	if err := p.Process(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil candle")
	}
}

func TestProcessBatchEmptyIsNoop(t *testing.T) {
	pub := &fakePublisher{}
	p := NewCandleProcessor(pub, &fakeCandleStore{}, newFakeMetrics(), "kafka")
	if err := p.ProcessBatch(context.Background(), nil); err != nil {
		t.Fatalf("empty batch: %v", err)
	}
	if len(pub.published) != 0 {
		t.Fatal("expected no publishes")
	}
}
