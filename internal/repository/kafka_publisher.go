package repository

import (
	"context"
	"fmt"

	"MarketRadar/internal/domain/models"
	pkgkafka "MarketRadar/pkg/kafka"
)

// KafkaPublisher fans normalized ticks out to a Kafka topic, keyed by symbol
// so per-symbol ordering survives partitioning.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, t *models.Tick) error {
	if t == nil {
		return fmt.Errorf("tick is nil")
	}
	return p.producer.Publish(ctx, p.topic, []byte(t.Symbol), t)
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
