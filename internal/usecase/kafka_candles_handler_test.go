package usecase

import (
	"context"
	"testing"
)

func TestKafkaHandlerStoresCandle(t *testing.T) {
	store := &fakeCandleStore{}
	m := newFakeMetrics()
	h := NewKafkaCandlesHandler("golddesk.candles", store, m)

	if h.Topic() != "golddesk.candles" {
		t.Fatalf("unexpected topic %q", h.Topic())
	}

	msg := []byte(`{"ts":"2025-06-01T03:00:00Z","o":2003,"h":2006,"l":1998.5,"c":2004,"v":120}`)
	if err := h.Handle(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(store.stored) != 1 {
		t.Fatalf("expected 1 stored candle, got %d", len(store.stored))
	}
	c := store.stored[0]
	if c.Open != 2003 || c.High != 2006 || c.Low != 1998.5 || c.Close != 2004 || c.Volume != 120 {
		t.Fatalf("unexpected candle %+v", c)
	}
	if m.stored["clickhouse"] != 1 {
		t.Fatalf("expected stored metric, got %v", m.stored)
	}
}

func TestKafkaHandlerRejectsBadJSON(t *testing.T) {
	m := newFakeMetrics()
	h := NewKafkaCandlesHandler("t", &fakeCandleStore{}, m)
	if err := h.Handle(context.Background(), []byte("{not json")); err == nil {
		t.Fatal("expected unmarshal error")
	}
	if m.errors["consumer_unmarshal"] != 1 {
		t.Fatalf("expected unmarshal error metric, got %v", m.errors)
	}
}

func TestKafkaHandlerRejectsBadTimestamp(t *testing.T) {
	h := NewKafkaCandlesHandler("t", &fakeCandleStore{}, newFakeMetrics())
	msg := []byte(`{"ts":"yesterday","o":2003,"h":2006,"l":1998.5,"c":2004,"v":0}`)
	if err := h.Handle(context.Background(), msg); err == nil {
		t.Fatal("expected timestamp error")
	}
}

func TestKafkaHandlerRejectsMalformedCandle(t *testing.T) {
	store := &fakeCandleStore{}
	h := NewKafkaCandlesHandler("t", store, newFakeMetrics())
	msg := []byte(`{"ts":"2025-06-01T03:00:00Z","o":2003,"h":1990,"l":1998.5,"c":2004,"v":0}`)
	if err := h.Handle(context.Background(), msg); err == nil {
		t.Fatal("expected validation error")
	}
	if len(store.stored) != 0 {
		t.Fatal("malformed candle must not be stored")
	}
}
