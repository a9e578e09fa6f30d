// Package producers publishes completed-transaction events to Kafka for
// downstream consumers (receipts, analytics, NGO dashboards). Events
// originate from the transactional outbox, never directly from request
// handlers.
package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/opengive/donation-ledger/internal/config"
	"github.com/segmentio/kafka-go"
)

// TransactionEventsProducer publishes completed transaction records, keyed
// by transaction ID
type TransactionEventsProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// NewTransactionEventsProducer creates the producer and ensures the events
// topic exists
func NewTransactionEventsProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*TransactionEventsProducer, error) {
	if cfg.EventsTopic == "" {
		return nil, fmt.Errorf("kafka events topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for events producer: %w", err)
	}
	defer conn.Close()

	err = createKafkaTopicIfNotExists(conn, cfg.EventsTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure events topic %s exists: %w", cfg.EventsTopic, err)
	}

	// Synchronous writes: the outbox poller only marks a message processed
	// after the broker acknowledged it.
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.EventsTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: cfg.MaxWait,
	}

	return &TransactionEventsProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.EventsTopic,
	}, nil
}

// Publish sends one event to the events topic
func (p *TransactionEventsProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal event value: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish transaction event",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish event to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published transaction event",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

func (p *TransactionEventsProducer) Close() error {
	p.logger.Info("Closing transaction events producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
