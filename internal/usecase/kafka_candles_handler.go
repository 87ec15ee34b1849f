package usecase

import (
	"context"
	"encoding/json"
	"time"

	"GoldDesk/internal/domain/models"
	domrepo "GoldDesk/internal/domain/repository"
	pkgkafka "GoldDesk/pkg/kafka"
)

// KafkaCandlesHandler consumes candle messages and writes them to storage.
type KafkaCandlesHandler struct {
	topic   string
	store   domrepo.CandleStore
	metrics domrepo.Metrics
}

func NewKafkaCandlesHandler(topic string, store domrepo.CandleStore, metrics domrepo.Metrics) *KafkaCandlesHandler {
	return &KafkaCandlesHandler{topic: topic, store: store, metrics: metrics}
}

func (h *KafkaCandlesHandler) Topic() string { return h.topic }

// incoming message schema: {ts, o, h, l, c, v}
func (h *KafkaCandlesHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		TS string  `json:"ts"`
		O  float64 `json:"o"`
		H  float64 `json:"h"`
		L  float64 `json:"l"`
		C  float64 `json:"c"`
		V  float64 `json:"v"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	ts, err := time.Parse(time.RFC3339Nano, m.TS)
	if err != nil {
		h.metrics.RecordError("consumer_timestamp")
		return err
	}
	h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(ts).Seconds())

	candle := &models.Candle{Time: ts, Open: m.O, High: m.H, Low: m.L, Close: m.C, Volume: m.V}
	if err := candle.Validate(); err != nil {
		h.metrics.RecordError("consumer_validate")
		return err
	}

	start := time.Now()
	err = h.store.Store(ctx, candle)
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordCandleStored("clickhouse")
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaCandlesHandler)(nil)
