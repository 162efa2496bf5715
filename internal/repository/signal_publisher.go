package repository

import (
	"context"
	"fmt"

	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
	"StockPulse/pkg/kafka"
	"StockPulse/pkg/logger"
)

// KafkaSignalPublisher emits trade signals onto a Kafka topic, keyed by
// symbol so one instrument's signals stay ordered within a partition.
type KafkaSignalPublisher struct {
	producer *kafka.Producer
	topic    string
	l        *logger.Logger
}

func NewKafkaSignalPublisher(producer *kafka.Producer, topic string, l *logger.Logger) *KafkaSignalPublisher {
	return &KafkaSignalPublisher{producer: producer, topic: topic, l: l}
}

var _ drepo.SignalPublisher = (*KafkaSignalPublisher)(nil)

func (p *KafkaSignalPublisher) Publish(ctx context.Context, sig models.Signal) error {
	if err := p.producer.Publish(ctx, p.topic, []byte(sig.Symbol), sig); err != nil {
		return fmt.Errorf("publish signal %s: %w", sig.Symbol, err)
	}
	p.l.Debug("signal published",
		logger.String("symbol", sig.Symbol),
		logger.String("action", string(sig.Action)))
	return nil
}

func (p *KafkaSignalPublisher) Close() error {
	return p.producer.Close()
}
