package repository

import (
	"context"
	"time"

	"GoldDesk/internal/domain/models"
	"GoldDesk/internal/domain/repository"
	pkgkafka "GoldDesk/pkg/kafka"
)

// KafkaCandlePublisher implements Publisher on the candles topic. Messages
// are keyed by the candle day so one day's candles stay in partition order.
type KafkaCandlePublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaCandlePublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaCandlePublisher{producer: producer, topic: topic}
}

func candlePayload(c *models.Candle) map[string]interface{} {
	return map[string]interface{}{
		"ts": c.Time.UTC().Format(time.RFC3339Nano),
		"o":  c.Open,
		"h":  c.High,
		"l":  c.Low,
		"c":  c.Close,
		"v":  c.Volume,
	}
}

func candleKey(c *models.Candle) []byte {
	return []byte(c.Time.UTC().Format("2006-01-02"))
}

func (p *KafkaCandlePublisher) Publish(ctx context.Context, c *models.Candle) error {
	return p.producer.Publish(ctx, p.topic, candleKey(c), candlePayload(c))
}

func (p *KafkaCandlePublisher) PublishBatch(ctx context.Context, candles []*models.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(candles))
	for i, c := range candles {
		msgs[i] = pkgkafka.Message{Key: candleKey(c), Value: candlePayload(c)}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaCandlePublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
